package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a server config file. Every section is
// optional; missing fields keep their defaults.
type File struct {
	Hits   HitsConfig   `yaml:"hits"`
	Server ServerConfig `yaml:"server"`
	Arena  ArenaConfig  `yaml:"arena"`
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*File, error) {
	f := &File{
		Hits:   DefaultHits(),
		Server: DefaultServer(),
		Arena:  DefaultArena(),
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads a config file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Apply installs the file's values as the package-level config.
func (f *File) Apply() {
	Hits = f.Hits
	Server = f.Server
	Arena = f.Arena
}

// Validate rejects values the engine cannot work with.
func (f *File) Validate() error {
	var errs []error

	h := f.Hits
	if h.AggregationDelay <= 0 {
		errs = append(errs, errors.New("hits.aggregation_delay must be positive"))
	}
	if h.PrimaryLifetime <= 0 {
		errs = append(errs, errors.New("hits.primary_lifetime must be positive"))
	}
	if h.ChildLifetime <= 0 {
		errs = append(errs, errors.New("hits.child_lifetime must be positive"))
	}
	if h.DistanceThreshold <= 0 {
		errs = append(errs, errors.New("hits.distance_threshold must be positive"))
	}
	if h.BaseSpacing <= 0 {
		errs = append(errs, errors.New("hits.base_spacing must be positive"))
	}
	if h.HeightJitter < 0 || h.CritHeightJitter < 0 {
		errs = append(errs, errors.New("hits height jitter must not be negative"))
	}
	for _, w := range h.BurstWeapons {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, errors.New("hits.burst_weapons contains an empty name"))
			break
		}
	}

	s := f.Server
	if s.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate must be positive, got %d", s.TickRate))
	}
	if s.MaxPlayers <= 0 {
		errs = append(errs, fmt.Errorf("server.max_players must be positive, got %d", s.MaxPlayers))
	}

	if f.Arena.MoveSpeed < 0 {
		errs = append(errs, errors.New("arena.move_speed must not be negative"))
	}

	return errors.Join(errs...)
}
