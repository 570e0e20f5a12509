package core

import (
	"fmt"
	"log"
	"os"

	"github.com/automoto/hitmarkers/shared/leveldata"
	"github.com/solarlune/resolv"
)

const (
	tagSolid  = "solid"
	tagPlayer = "player"

	// Size of the arena used when no TMX files are available.
	openArenaSize = 1024

	arenaSubdir = "arenas"
)

// ServerArena holds the server's collision space and spawn data for an arena.
type ServerArena struct {
	Name        string
	Space       *resolv.Space
	SpawnPoints []leveldata.SpawnPoint
	MapWidth    int
	MapHeight   int

	nextSpawn int
}

// NewServerArena builds a resolv.Space from parsed arena data.
func NewServerArena(name string, data *leveldata.ArenaData) *ServerArena {
	space := resolv.NewSpace(data.MapWidth, data.MapHeight, 16, 16)

	for _, w := range data.Walls {
		obj := resolv.NewObject(w.X, w.Y, w.W, w.H, tagSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, w.W, w.H))
		space.Add(obj)
	}

	log.Printf("[server] loaded arena %q: %d walls, %d spawn points, %dx%d",
		name, len(data.Walls), len(data.SpawnPoints), data.MapWidth, data.MapHeight)

	return &ServerArena{
		Name:        name,
		Space:       space,
		SpawnPoints: data.SpawnPoints,
		MapWidth:    data.MapWidth,
		MapHeight:   data.MapHeight,
	}
}

// NextSpawn hands out spawn points round robin.
func (a *ServerArena) NextSpawn() leveldata.SpawnPoint {
	if len(a.SpawnPoints) == 0 {
		return leveldata.SpawnPoint{X: float64(a.MapWidth) / 2, Y: float64(a.MapHeight) / 2}
	}
	sp := a.SpawnPoints[a.nextSpawn%len(a.SpawnPoints)]
	a.nextSpawn++
	return sp
}

// LoadServerArena loads the named arena from assetsDir/arenas. An empty name
// picks the first arena in sorted order. When the directory holds no arenas
// the server falls back to an open arena without walls.
func LoadServerArena(assetsDir, name string) (*ServerArena, error) {
	arenas, names, err := leveldata.LoadAllArenas(os.DirFS(assetsDir), arenaSubdir)
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("load arena %q: %w", name, err)
		}
		log.Printf("[server] no arenas in %s (%v), using open arena", assetsDir, err)
		return NewServerArena("open", leveldata.OpenArena(openArenaSize, openArenaSize)), nil
	}

	if name == "" {
		name = names[0]
	}
	data, ok := arenas[name]
	if !ok {
		return nil, fmt.Errorf("arena %q not found (have %v)", name, names)
	}
	return NewServerArena(name, data), nil
}
