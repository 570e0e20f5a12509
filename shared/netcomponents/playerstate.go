package netcomponents

import "github.com/yohamta/donburi"

type NetPlayerStateData struct {
	Name         string
	Crouching    bool
	Bot          bool
	LastSequence uint32 // Last input sequence processed by the server
}

var NetPlayerState = donburi.NewComponentType[NetPlayerStateData]()
