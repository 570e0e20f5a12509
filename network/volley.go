package network

import (
	"github.com/automoto/hitmarkers/shared/messages"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/automoto/hitmarkers/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// Volley describes a scripted burst of hits on one victim.
type Volley struct {
	Victim    uint
	Weapon    string
	Pellets   int
	Damage    int // per pellet
	Headshots int // the first Headshots pellets hit the head
}

// Reports expands the volley into one DamageReport per pellet.
func (v Volley) Reports() []messages.DamageReport {
	if v.Pellets <= 0 {
		return nil
	}
	out := make([]messages.DamageReport, v.Pellets)
	for i := range out {
		hg := netconfig.HitgroupGeneric
		if i < v.Headshots {
			hg = netconfig.HitgroupHead
		}
		out[i] = messages.DamageReport{
			VictimNetworkID: v.Victim,
			Amount:          v.Damage,
			Hitgroup:        hg,
			Weapon:          v.Weapon,
		}
	}
	return out
}

// Total is the amount a burst weapon should display for the whole volley.
func (v Volley) Total() int {
	if v.Pellets <= 0 || v.Damage <= 0 {
		return 0
	}
	return v.Pellets * v.Damage
}

// HitDigits decodes the hit digit components carried by a snapshot.
func HitDigits(snapshot esync.WorldSnapshot) []netcomponents.NetHitDigitData {
	var out []netcomponents.NetHitDigitData
	for _, ent := range snapshot {
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			if d, ok := instance.(netcomponents.NetHitDigitData); ok {
				out = append(out, d)
			}
		}
	}
	return out
}
