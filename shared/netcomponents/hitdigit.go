package netcomponents

import (
	"github.com/automoto/hitmarkers/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetHitDigitData is one digit of a damage number. Its position lives in a
// NetPosition component on the same entity.
type NetHitDigitData struct {
	OwnerNetworkID uint // attacker that caused the hit
	Digit          int
	Tier           netconfig.EffectTier
	Critical       bool
	RightAligned   bool
	Active         bool   // false until the server has placed the effect
	Effect         string // client effect asset, see netconfig.EffectName
}

var NetHitDigit = donburi.NewComponentType[NetHitDigitData]()
