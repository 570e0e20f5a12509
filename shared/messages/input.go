package messages

import "github.com/automoto/hitmarkers/shared/netconfig"

// PlayerInput is sent from client to server each frame with the player's input state.
type PlayerInput struct {
	Sequence  uint32                      // Incrementing ID for reconciliation
	Actions   map[netconfig.ActionID]bool // Which actions are currently pressed
	Timestamp int64                       // Client timestamp (Unix ms)
}

// NewPlayerInput creates a PlayerInput with initialized map
func NewPlayerInput(seq uint32) PlayerInput {
	return PlayerInput{
		Sequence: seq,
		Actions:  make(map[netconfig.ActionID]bool),
	}
}

// Pressed reports whether an action is held.
func (in PlayerInput) Pressed(a netconfig.ActionID) bool {
	return in.Actions[a]
}
