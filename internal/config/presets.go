package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"zombie-arena/internal/game"
)

// ErrUnknownPreset is returned when a preset name is not defined.
var ErrUnknownPreset = errors.New("unknown preset")

// Presets maps a preset name to the match rules it stands for.
type Presets map[string]game.MatchSettings

// presetFile is the YAML layout of a presets file:
//
//	presets:
//	  hardcore:
//	    mode: ZOMBIE_SURVIVAL
//	    difficulty: NIGHTMARE
//	    spawnRate: 1.5
type presetFile struct {
	Presets map[string]game.MatchSettings `yaml:"presets"`
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() Presets {
	easy := game.DefaultSettings(game.ModeZombieSurvival)
	easy.Difficulty = game.DifficultyEasy

	nightmare := game.DefaultSettings(game.ModeZombieSurvival)
	nightmare.Difficulty = game.DifficultyNightmare
	nightmare.SpawnRate = 1.5
	nightmare.MaxCreatures = 60

	return Presets{
		"survival-easy":      easy,
		"survival-nightmare": nightmare,
		"tdm":                game.DefaultSettings(game.ModeTeamDeathmatch),
		"gem-grab":           game.DefaultSettings(game.ModeGemGrab),
		"brawl-ball":         game.DefaultSettings(game.ModeBrawlBall),
		"gun-game":           game.DefaultSettings(game.ModeGunGame),
	}
}

// LoadPresets returns the built-in presets merged with the ones in the YAML
// file at path. File entries win on name clashes and unset numeric fields take
// the mode defaults. An empty path yields the built-ins.
func LoadPresets(path string) (Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for name, s := range file.Presets {
		presets[name] = s.Normalized()
	}
	return presets, nil
}

// Get returns the settings of preset name.
func (p Presets) Get(name string) (game.MatchSettings, error) {
	s, ok := p[name]
	if !ok {
		return game.MatchSettings{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return s, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
