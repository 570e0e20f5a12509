package messages

// DamageReport is sent by the game client that dealt a hit. The attacker is
// the sending client.
type DamageReport struct {
	VictimNetworkID uint
	Amount          int
	Hitgroup        int // netconfig.HitgroupHead marks a critical hit
	Weapon          string
}

// ToggleHits asks the server to flip the sender's hit number display.
type ToggleHits struct{}

// HitsToggled answers ToggleHits.
type HitsToggled struct {
	Enabled bool
	Denied  bool // the player has no access
}
