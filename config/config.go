package config

import (
	"time"

	"github.com/automoto/hitmarkers/shared/gamemath"
)

// HitsConfig tunes the damage number engine.
type HitsConfig struct {
	// Timing. Durations are converted to ticks using the server tick rate.
	AggregationDelay time.Duration `yaml:"aggregation_delay"` // burst window length
	PrimaryLifetime  time.Duration `yaml:"primary_lifetime"`
	ChildLifetime    time.Duration `yaml:"child_lifetime"`

	// Layout
	DistanceThreshold float64 `yaml:"distance_threshold"` // spacing scales up beyond this distance
	BaseSpacing       float64 `yaml:"base_spacing"`

	// Height offsets above the victim origin
	StandHeight      float64 `yaml:"stand_height"`
	CrouchHeight     float64 `yaml:"crouch_height"`
	HeightJitter     float64 `yaml:"height_jitter"`
	CritStandHeight  float64 `yaml:"crit_stand_height"`
	CritCrouchHeight float64 `yaml:"crit_crouch_height"`
	CritHeightJitter float64 `yaml:"crit_height_jitter"`

	// Weapons whose pellets are summed before display
	BurstWeapons []string `yaml:"burst_weapons"`

	// Access
	FreeAccess bool `yaml:"free_access"` // everyone may use hit numbers without a grant
}

// ServerConfig contains dedicated server settings.
type ServerConfig struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"` // required client version, empty accepts any
	Port       uint   `yaml:"port"`
	TickRate   int    `yaml:"tick_rate"`
	MaxPlayers int    `yaml:"max_players"`
	ArenaDir   string `yaml:"arena_dir"`
	Arena      string `yaml:"arena"`     // arena stem name, empty picks the first
	PrefsApp   string `yaml:"prefs_app"` // gdata application name for saved preferences
}

// ArenaConfig contains player movement settings for the server arena.
type ArenaConfig struct {
	MoveSpeed       float64 `yaml:"move_speed"`
	CollisionWidth  float64 `yaml:"collision_width"`
	CollisionHeight float64 `yaml:"collision_height"`
}

var Hits HitsConfig
var Server ServerConfig
var Arena ArenaConfig

func init() {
	Hits = DefaultHits()
	Server = DefaultServer()
	Arena = DefaultArena()
}

// DefaultHits returns the stock engine tuning.
func DefaultHits() HitsConfig {
	layout := gamemath.DefaultLayoutParams()
	return HitsConfig{
		AggregationDelay: 100 * time.Millisecond,
		PrimaryLifetime:  500 * time.Millisecond,
		ChildLifetime:    2500 * time.Millisecond,

		DistanceThreshold: layout.DistanceThreshold,
		BaseSpacing:       layout.BaseSpacing,

		StandHeight:      layout.StandHeight,
		CrouchHeight:     layout.CrouchHeight,
		HeightJitter:     layout.HeightJitter,
		CritStandHeight:  layout.CritStandHeight,
		CritCrouchHeight: layout.CritCrouchHeight,
		CritHeightJitter: layout.CritHeightJitter,

		BurstWeapons: []string{"xm1014", "nova", "mag7", "sawedoff"},

		FreeAccess: true,
	}
}

// DefaultServer returns the stock server settings.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Name:       "Hitmarkers Server",
		Port:       7373,
		TickRate:   64,
		MaxPlayers: 32,
		ArenaDir:   "assets",
		PrefsApp:   "hitmarkers",
	}
}

// DefaultArena returns the stock arena movement settings.
func DefaultArena() ArenaConfig {
	return ArenaConfig{
		MoveSpeed:       4.0,
		CollisionWidth:  32,
		CollisionHeight: 32,
	}
}

// Layout returns the layout parameters for the geometry helpers.
func (c HitsConfig) Layout() gamemath.LayoutParams {
	return gamemath.LayoutParams{
		DistanceThreshold: c.DistanceThreshold,
		BaseSpacing:       c.BaseSpacing,
		StandHeight:       c.StandHeight,
		CrouchHeight:      c.CrouchHeight,
		HeightJitter:      c.HeightJitter,
		CritStandHeight:   c.CritStandHeight,
		CritCrouchHeight:  c.CritCrouchHeight,
		CritHeightJitter:  c.CritHeightJitter,
	}
}

// Ticks converts a duration into a tick count at the given tick rate,
// rounding up. Anything positive lasts at least one tick.
func Ticks(d time.Duration, tickRate int) uint64 {
	if d <= 0 || tickRate <= 0 {
		return 1
	}
	n := (int64(d)*int64(tickRate) + int64(time.Second) - 1) / int64(time.Second)
	if n < 1 {
		n = 1
	}
	return uint64(n)
}
