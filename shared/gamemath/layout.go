package gamemath

import (
	"math"
	"math/rand/v2"
)

// LayoutParams tunes how damage digits are fanned out around a victim.
type LayoutParams struct {
	DistanceThreshold float64 // attacker distance beyond which spacing scales up
	BaseSpacing       float64

	StandHeight      float64
	CrouchHeight     float64
	HeightJitter     float64
	CritStandHeight  float64
	CritCrouchHeight float64
	CritHeightJitter float64
}

// DefaultLayoutParams returns the stock tuning.
func DefaultLayoutParams() LayoutParams {
	return LayoutParams{
		DistanceThreshold: 700,
		BaseSpacing:       6,
		StandHeight:       35,
		CrouchHeight:      25,
		HeightJitter:      20,
		CritStandHeight:   60,
		CritCrouchHeight:  45,
		CritHeightJitter:  10,
	}
}

// DigitSlot is where a single digit is placed.
type DigitSlot struct {
	Position     Vec3
	RightAligned bool
}

// Spacing returns the per-digit spacing for an attacker at the given distance.
// Far attackers get wider spacing so the number stays readable.
func (p LayoutParams) Spacing(distance float64) float64 {
	if distance > p.DistanceThreshold {
		return distance / p.DistanceThreshold * p.BaseSpacing
	}
	return p.BaseSpacing
}

// HeightBase returns the base height offset and its jitter range.
func (p LayoutParams) HeightBase(critical, ducking bool) (base, jitter float64) {
	if critical {
		if ducking {
			return p.CritCrouchHeight, p.CritHeightJitter
		}
		return p.CritStandHeight, p.CritHeightJitter
	}
	if ducking {
		return p.CrouchHeight, p.HeightJitter
	}
	return p.StandHeight, p.HeightJitter
}

// Layout computes one slot per digit. Slot i is meant for the digit at
// DecomposeDigits(amount)[digitCount-1-i], so the most significant digit
// lands on slot 0. Digits step by (spacing, spacing) on X and Y, which skews
// the number diagonally; that skew is part of the look.
func Layout(digitCount int, attacker, victim Vec3, ducking, critical bool, p LayoutParams, rng *rand.Rand) []DigitSlot {
	if digitCount <= 0 {
		return nil
	}

	spacing := p.Spacing(Distance(attacker, victim))

	offsetX := (rng.Float64() - 0.5) * spacing
	offsetY := (rng.Float64() - 0.5) * spacing

	base, jitter := p.HeightBase(critical, ducking)
	height := base + rng.Float64()*jitter

	halfCount := int(math.Ceil(float64(digitCount) / 2))

	slots := make([]DigitSlot, digitCount)
	for i := range slots {
		step := float64(i-halfCount) * spacing
		slots[i] = DigitSlot{
			Position: Vec3{
				X: victim.X + offsetX + step,
				Y: victim.Y + offsetY + step,
				Z: victim.Z + height,
			},
			RightAligned: i > halfCount,
		}
	}
	return slots
}
