// Package leveldata provides TMX arena parsing for the server.
// It has no dependencies on donburi or resolv: pure data only.
package leveldata

// ArenaData holds the collision-relevant data parsed from a TMX arena file.
// The map is read top-down: tile X/Y become world X/Y and the floor is Z=0.
type ArenaData struct {
	Walls       []Wall
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
}

// Wall represents a solid collision tile.
type Wall struct {
	X, Y, W, H float64
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// OpenArena returns an arena with no walls and a single spawn at its center.
// Used when no arena files are available.
func OpenArena(width, height int) *ArenaData {
	return &ArenaData{
		MapWidth:  width,
		MapHeight: height,
		SpawnPoints: []SpawnPoint{
			{X: float64(width) / 2, Y: float64(height) / 2},
		},
	}
}
