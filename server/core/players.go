package core

import (
	"sort"

	"github.com/automoto/hitmarkers/config"
	"github.com/automoto/hitmarkers/damage"
	"github.com/automoto/hitmarkers/shared/gamemath"
	"github.com/automoto/hitmarkers/shared/messages"
	"github.com/automoto/hitmarkers/shared/netcomponents"
	"github.com/automoto/hitmarkers/shared/netconfig"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// Player is the server's view of a joined client. Body is never synced; the
// replicated position is copied from it after each input.
type Player struct {
	ID     damage.PlayerID
	Name   string
	Bot    bool
	Entity donburi.Entity
	Body   *resolv.Object

	Crouching    bool
	LastSequence uint32
}

// playerSet indexes joined players by id and answers position queries for the
// damage engine.
type playerSet struct {
	byID map[damage.PlayerID]*Player
}

func newPlayerSet() *playerSet {
	return &playerSet{byID: make(map[damage.PlayerID]*Player)}
}

func (s *playerSet) Add(p *Player)                          { s.byID[p.ID] = p }
func (s *playerSet) Remove(id damage.PlayerID)              { delete(s.byID, id) }
func (s *playerSet) Len() int                               { return len(s.byID) }
func (s *playerSet) Get(id damage.PlayerID) (*Player, bool) { p, ok := s.byID[id]; return p, ok }

// All returns players ordered by id.
func (s *playerSet) All() []*Player {
	out := make([]*Player, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Position returns the center of the player's footprint on the arena floor.
func (s *playerSet) Position(id damage.PlayerID) (gamemath.Vec3, bool) {
	p, ok := s.byID[id]
	if !ok || p.Body == nil {
		return gamemath.Vec3{}, false
	}
	return bodyCenter(p.Body), true
}

func (s *playerSet) IsCrouching(id damage.PlayerID) bool {
	p, ok := s.byID[id]
	return ok && p.Crouching
}

func bodyCenter(obj *resolv.Object) gamemath.Vec3 {
	return gamemath.Vec3{X: obj.X + obj.W/2, Y: obj.Y + obj.H/2}
}

func newPlayerBody(arena *ServerArena, cfg config.ArenaConfig, x, y float64) *resolv.Object {
	obj := resolv.NewObject(x, y, cfg.CollisionWidth, cfg.CollisionHeight, tagPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, cfg.CollisionWidth, cfg.CollisionHeight))
	arena.Space.Add(obj)
	return obj
}

// applyInput moves the player one step. Inputs older than the last processed
// sequence are ignored.
func (p *Player) applyInput(in messages.PlayerInput, arena *ServerArena, speed float64) bool {
	if in.Sequence != 0 && in.Sequence <= p.LastSequence {
		return false
	}
	p.LastSequence = in.Sequence
	p.Crouching = in.Pressed(netconfig.ActionCrouch)

	var dx, dy float64
	if in.Pressed(netconfig.ActionMoveLeft) {
		dx -= speed
	}
	if in.Pressed(netconfig.ActionMoveRight) {
		dx += speed
	}
	if in.Pressed(netconfig.ActionMoveUp) {
		dy -= speed
	}
	if in.Pressed(netconfig.ActionMoveDown) {
		dy += speed
	}

	obj := p.Body
	if dx != 0 {
		if check := obj.Check(dx, 0, tagSolid); check != nil {
			if solids := check.ObjectsByTags(tagSolid); len(solids) > 0 {
				dx = check.ContactWithObject(solids[0]).X()
			}
		}
		obj.X += dx
	}
	if dy != 0 {
		if check := obj.Check(0, dy, tagSolid); check != nil {
			if solids := check.ObjectsByTags(tagSolid); len(solids) > 0 {
				dy = check.ContactWithObject(solids[0]).Y()
			}
		}
		obj.Y += dy
	}

	obj.X = gamemath.ClampFloat(obj.X, 0, float64(arena.MapWidth)-obj.W)
	obj.Y = gamemath.ClampFloat(obj.Y, 0, float64(arena.MapHeight)-obj.H)
	obj.Update()
	return true
}

// syncEntity copies server state into the replicated components.
func (p *Player) syncEntity(world donburi.World) {
	if !world.Valid(p.Entity) {
		return
	}
	entry := world.Entry(p.Entity)
	pos := netcomponents.NetPosition.Get(entry)
	c := bodyCenter(p.Body)
	pos.X, pos.Y, pos.Z = c.X, c.Y, 0

	state := netcomponents.NetPlayerState.Get(entry)
	state.Crouching = p.Crouching
	state.LastSequence = p.LastSequence
}
