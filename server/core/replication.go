package core

import (
	"fmt"

	"github.com/automoto/hitmarkers/damage"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// replicator marks entities for network sync and flushes world state to
// clients once per tick.
type replicator interface {
	TrackPlayer(world donburi.World, entity *donburi.Entity) (damage.PlayerID, error)
	TrackEffect(world donburi.World, entity *donburi.Entity) error
	Flush() error
}

type esyncReplicator struct{}

func newEsyncReplicator(world donburi.World) *esyncReplicator {
	srvsync.UseEsync(world)
	return &esyncReplicator{}
}

func (esyncReplicator) TrackPlayer(world donburi.World, entity *donburi.Entity) (damage.PlayerID, error) {
	err := srvsync.NetworkSync(world, entity,
		srvsync.WithInterp(netcomponents.NetPosition),
		netcomponents.NetPlayerState,
	)
	if err != nil {
		return 0, fmt.Errorf("network sync player: %w", err)
	}
	nid := esync.GetNetworkId(world.Entry(*entity))
	if nid == nil {
		return 0, fmt.Errorf("player entity has no network id")
	}
	return damage.PlayerID(*nid), nil
}

func (esyncReplicator) TrackEffect(world donburi.World, entity *donburi.Entity) error {
	if err := srvsync.NetworkSync(world, entity,
		netcomponents.NetHitDigit,
		netcomponents.NetPosition,
	); err != nil {
		return fmt.Errorf("network sync hit digit: %w", err)
	}
	return nil
}

func (esyncReplicator) Flush() error {
	return srvsync.DoSync()
}
