package gamemath

// DecomposeDigits splits a non-negative amount into base-10 digits,
// least significant first. Zero yields [0]. Negative input is treated as zero.
func DecomposeDigits(amount int) []int {
	if amount <= 0 {
		return []int{0}
	}
	digits := make([]int, 0, 4)
	for amount > 0 {
		digits = append(digits, amount%10)
		amount /= 10
	}
	return digits
}

// JoinDigits is the inverse of DecomposeDigits.
func JoinDigits(digits []int) int {
	n := 0
	for i := len(digits) - 1; i >= 0; i-- {
		n = n*10 + digits[i]
	}
	return n
}
