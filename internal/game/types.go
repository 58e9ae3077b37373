package game

import (
	"fmt"
	"strings"
)

// Arena geometry and shared limits.
const (
	MapSize        = 1120.0
	PlayerRadius   = 18.0
	CreatureRadius = 16.0
	ItemRadius     = 14.0
	BallRadius     = 16.0
	PlayerSpeed    = 4.2

	// FrameMillis is the length of one frame unit. Tick dt is expressed in frames.
	FrameMillis = 1000.0 / 60.0

	WaveRestTime = 8000.0 // ms
	MaxShield    = 50.0
	MaxWallKits  = 5
)

// ResourceLimits bounds every collection that could otherwise grow without limit.
type ResourceLimits struct {
	MaxProjectiles   int // oldest dropped first
	MaxParticles     int // oldest dropped first
	MaxMines         int // oldest forced to detonate
	MaxAnnouncements int
	MaxAmbientItems  int
}

// DefaultLimits are the caps used when a Simulator is built without overrides.
var DefaultLimits = ResourceLimits{
	MaxProjectiles:   300,
	MaxParticles:     400,
	MaxMines:         12,
	MaxAnnouncements: 5,
	MaxAmbientItems:  30,
}

// parseEnum looks s up case-insensitively in names. It backs the text
// round trip of every enum below.
func parseEnum(kind, s string, names []string) (int, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == up {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "UNKNOWN"
	}
	return names[i]
}

// =============================================================================
// GAME MODE
// =============================================================================

// GameMode selects the rule set of a match.
type GameMode uint8

const (
	ModeZombieSurvival GameMode = iota
	ModeTeamDeathmatch
	ModeGemGrab
	ModeBrawlBall
	ModeGunGame
	modeCount
)

var modeNames = []string{"ZOMBIE_SURVIVAL", "TEAM_DEATHMATCH", "GEM_GRAB", "BRAWL_BALL", "GUN_GAME"}

func (m GameMode) String() string { return enumName(modeNames, int(m)) }

// ParseMode converts a mode name such as "BRAWL_BALL" to a GameMode.
func ParseMode(s string) (GameMode, error) {
	i, err := parseEnum("game mode", s, modeNames)
	return GameMode(i), err
}

func (m GameMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *GameMode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IsPvP reports whether players fight each other rather than creatures.
func (m GameMode) IsPvP() bool { return m != ModeZombieSurvival }

// IsTeamMode reports whether players are split into RED and BLUE.
func (m GameMode) IsTeamMode() bool {
	return m == ModeTeamDeathmatch || m == ModeBrawlBall || m == ModeGemGrab
}

// IsTimed reports whether the match clock ends the match.
func (m GameMode) IsTimed() bool {
	return m == ModeGemGrab || m == ModeBrawlBall || m == ModeTeamDeathmatch
}

// =============================================================================
// DIFFICULTY
// =============================================================================

// Difficulty scales the players, not the creatures: easier tiers buff survivability.
type Difficulty uint8

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
	DifficultyNightmare
	difficultyCount
)

var difficultyNames = []string{"EASY", "NORMAL", "HARD", "NIGHTMARE"}

func (d Difficulty) String() string { return enumName(difficultyNames, int(d)) }

// ParseDifficulty converts a difficulty name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	i, err := parseEnum("difficulty", s, difficultyNames)
	return Difficulty(i), err
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DifficultyMultipliers holds the per-tier scaling factors.
type DifficultyMultipliers struct {
	PlayerHP      float64
	PlayerDamage  float64
	CreatureCount float64
}

var difficultyTable = [difficultyCount]DifficultyMultipliers{
	DifficultyEasy:      {PlayerHP: 2.0, PlayerDamage: 2.0, CreatureCount: 0.60},
	DifficultyNormal:    {PlayerHP: 1.5, PlayerDamage: 1.5, CreatureCount: 0.75},
	DifficultyHard:      {PlayerHP: 1.25, PlayerDamage: 1.25, CreatureCount: 0.90},
	DifficultyNightmare: {PlayerHP: 1.0, PlayerDamage: 1.0, CreatureCount: 1.0},
}

// Multipliers returns the scaling factors of d.
func (d Difficulty) Multipliers() DifficultyMultipliers {
	if d >= difficultyCount {
		return difficultyTable[DifficultyNightmare]
	}
	return difficultyTable[d]
}

// =============================================================================
// TEAM
// =============================================================================

// Team affiliation. TeamNone means free-for-all.
type Team uint8

const (
	TeamNone Team = iota
	TeamRed
	TeamBlue
)

var teamNames = []string{"NONE", "RED", "BLUE"}

func (t Team) String() string { return enumName(teamNames, int(t)) }

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Team) UnmarshalText(b []byte) error {
	i, err := parseEnum("team", string(b), teamNames)
	if err != nil {
		return err
	}
	*t = Team(i)
	return nil
}

// Opponent returns the other side of a two-team match.
func (t Team) Opponent() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	default:
		return TeamNone
	}
}

// Allied reports whether a and b share a real team (NONE is never allied).
func Allied(a, b Team) bool { return a != TeamNone && a == b }

// =============================================================================
// WAVE STATE
// =============================================================================

// WaveState is the survival round state machine.
type WaveState uint8

const (
	WaveFighting WaveState = iota
	WaveRest
)

var waveStateNames = []string{"FIGHTING", "REST"}

func (w WaveState) String() string { return enumName(waveStateNames, int(w)) }

func (w WaveState) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *WaveState) UnmarshalText(b []byte) error {
	i, err := parseEnum("wave state", string(b), waveStateNames)
	if err != nil {
		return err
	}
	*w = WaveState(i)
	return nil
}

// =============================================================================
// WALL TYPE
// =============================================================================

// WallType tags a terrain rectangle.
type WallType uint8

const (
	WallSolid WallType = iota
	WallBush
	WallWater
	WallDestructible
	WallBarrel
	WallCrate
	WallPond
	WallSwamp
	WallPlayerBuilt
	wallTypeCount
)

var wallTypeNames = []string{"SOLID", "BUSH", "WATER", "DESTRUCTIBLE", "BARREL", "CRATE", "POND", "SWAMP", "PLAYER_BUILT"}

func (w WallType) String() string { return enumName(wallTypeNames, int(w)) }

func (w WallType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *WallType) UnmarshalText(b []byte) error {
	i, err := parseEnum("wall type", string(b), wallTypeNames)
	if err != nil {
		return err
	}
	*w = WallType(i)
	return nil
}

// Passable terrain never blocks movement.
func (w WallType) Passable() bool {
	return w == WallBush || w == WallWater || w == WallSwamp
}

// BlocksProjectiles reports whether bullets and sight lines stop at this terrain.
func (w WallType) BlocksProjectiles() bool {
	return !w.Passable() && w != WallPond
}

// Damageable reports whether the wall carries hit points.
func (w WallType) Damageable() bool {
	switch w {
	case WallDestructible, WallBarrel, WallCrate, WallPlayerBuilt:
		return true
	}
	return false
}

// =============================================================================
// PARTICLE TYPE
// =============================================================================

// ParticleType is a rendering hint for VisualParticle.
type ParticleType uint8

const (
	ParticleCircle ParticleType = iota
	ParticleText
	ParticleBlood
	ParticleExplosion
	ParticleMuzzleFlash
	ParticleDust
	ParticleSparkle
	ParticleSmoke
	ParticleHealAura
	ParticleShadow
)

var particleTypeNames = []string{"CIRCLE", "TEXT", "BLOOD", "EXPLOSION", "MUZZLE_FLASH", "DUST", "SPARKLE", "SMOKE", "HEAL_AURA", "SHADOW"}

func (p ParticleType) String() string { return enumName(particleTypeNames, int(p)) }

func (p ParticleType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *ParticleType) UnmarshalText(b []byte) error {
	i, err := parseEnum("particle type", string(b), particleTypeNames)
	if err != nil {
		return err
	}
	*p = ParticleType(i)
	return nil
}
