// Package config provides centralized configuration management.
// Every tunable of the server, the simulation loop and the default match
// rules is read here, with environment overrides applied on top of defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"zombie-arena/internal/game"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int
	MaxRooms          int
	MaxPlayersPerRoom int
	AllowedOrigins    []string
	RequestsPerSecond float64 // per client IP
	RequestBurst      int
	MaxWSConnections  int // across all rooms
	MaxWSPerIP        int
	ShutdownTimeout   time.Duration
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              3000,
		MaxRooms:          50,
		MaxPlayersPerRoom: 8,
		AllowedOrigins:    []string{"*"},
		RequestsPerSecond: 20,
		RequestBurst:      40,
		MaxWSConnections:  500,
		MaxWSPerIP:        10,
		ShutdownTimeout:   10 * time.Second,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if n := getEnvInt("MAX_ROOMS", 0); n > 0 {
		cfg.MaxRooms = n
	}
	if n := getEnvInt("MAX_PLAYERS_PER_ROOM", 0); n > 0 {
		cfg.MaxPlayersPerRoom = n
	}
	if r := getEnvFloat("RATE_LIMIT_RPS", 0); r > 0 {
		cfg.RequestsPerSecond = r
	}
	if n := getEnvInt("RATE_LIMIT_BURST", 0); n > 0 {
		cfg.RequestBurst = n
	}
	if n := getEnvInt("MAX_WS_CONNECTIONS", 0); n > 0 {
		cfg.MaxWSConnections = n
	}
	if n := getEnvInt("MAX_WS_PER_IP", 0); n > 0 {
		cfg.MaxWSPerIP = n
	}
	if o := getEnvString("ALLOWED_ORIGINS", ""); o != "" {
		cfg.AllowedOrigins = strings.Split(o, ",")
	}

	return cfg
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimulationConfig controls the room tick loop and bot throttling.
type SimulationConfig struct {
	TickRate     int     // ticks per second
	BotFireRate  float64 // shots per second per bot, 0 = unthrottled
	BotFireBurst int
}

// DefaultSimulation returns a 60 TPS loop with the stock bot throttle.
func DefaultSimulation() SimulationConfig {
	d := game.DefaultSimConfig()
	return SimulationConfig{
		TickRate:     60,
		BotFireRate:  d.BotFireRate,
		BotFireBurst: d.BotFireBurst,
	}
}

// SimulationFromEnv returns simulation configuration with environment overrides.
func SimulationFromEnv() SimulationConfig {
	cfg := DefaultSimulation()

	if r := getEnvInt("TICK_RATE", 0); r > 0 {
		cfg.TickRate = r
	}
	if r := getEnvFloat("BOT_FIRE_RATE", -1); r >= 0 {
		cfg.BotFireRate = r
	}
	if b := getEnvInt("BOT_FIRE_BURST", 0); b > 0 {
		cfg.BotFireBurst = b
	}

	return cfg
}

// TickInterval is the wall-clock period of one tick.
func (c SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// SimConfig converts to the simulator settings with the given limits.
func (c SimulationConfig) SimConfig(limits game.ResourceLimits) game.SimConfig {
	return game.SimConfig{
		Limits:       limits,
		BotFireRate:  c.BotFireRate,
		BotFireBurst: c.BotFireBurst,
	}
}

// =============================================================================
// MATCH DEFAULTS
// =============================================================================

// MatchConfig holds the rules used for rooms created without explicit settings.
type MatchConfig struct {
	Settings    game.MatchSettings
	PresetsPath string // optional YAML file of named presets
	DefaultRoom string // created at startup; empty disables
}

// DefaultMatch returns a NORMAL zombie survival match.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		Settings:    game.DefaultSettings(game.ModeZombieSurvival),
		DefaultRoom: "lobby",
	}
}

// MatchFromEnv returns match defaults with environment overrides. Unknown
// mode or difficulty names keep the default.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if m, err := game.ParseMode(getEnvString("GAME_MODE", "")); err == nil {
		cfg.Settings = game.DefaultSettings(m)
	}
	if d, err := game.ParseDifficulty(getEnvString("DIFFICULTY", "")); err == nil {
		cfg.Settings.Difficulty = d
	}
	if r := getEnvFloat("SPAWN_RATE", 0); r > 0 {
		cfg.Settings.SpawnRate = r
	}
	if n := getEnvInt("MAX_ZOMBIES", 0); n > 0 {
		cfg.Settings.MaxCreatures = n
	}
	if t := getEnvFloat("TIME_LIMIT", 0); t > 0 {
		cfg.Settings.TimeLimit = t
	}
	if n := getEnvInt("SCORE_TO_WIN", 0); n > 0 {
		cfg.Settings.ScoreToWin = n
	}
	cfg.PresetsPath = getEnvString("PRESETS_PATH", "")
	cfg.DefaultRoom = getEnvString("DEFAULT_ROOM", cfg.DefaultRoom)

	return cfg
}

// =============================================================================
// GAME RESOURCE LIMITS
// =============================================================================

// DefaultLimits returns the default per-room collection caps.
func DefaultLimits() game.ResourceLimits {
	return game.DefaultLimits
}

// LimitsFromEnv returns collection caps with environment overrides.
func LimitsFromEnv() game.ResourceLimits {
	cfg := DefaultLimits()

	if n := getEnvInt("MAX_PROJECTILES", 0); n > 0 {
		cfg.MaxProjectiles = n
	}
	if n := getEnvInt("MAX_PARTICLES", 0); n > 0 {
		cfg.MaxParticles = n
	}

	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig controls the JSONL event log. An empty Path keeps events in
// memory only.
type EventLogConfig struct {
	Path               string
	MaxEventsPerRoom   float64 // per second
	MaxEventsPerPlayer float64 // per second, within one room
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return EventLogConfig{
		MaxEventsPerRoom:   2000,
		MaxEventsPerPlayer: 100,
	}
}

// EventLogFromEnv returns event log configuration with environment overrides.
func EventLogFromEnv() EventLogConfig {
	cfg := DefaultEventLog()
	cfg.Path = getEnvString("EVENT_LOG_PATH", "")
	return cfg
}

// =============================================================================
// DEBUG CONFIGURATION
// =============================================================================

// DebugConfig controls the pprof and metrics server.
type DebugConfig struct {
	Enabled       bool
	Addr          string // forced onto localhost unless AllowExternal
	AllowExternal bool
	BasicAuthUser string // optional
	BasicAuthPass string
}

// DefaultDebug returns the default debug server configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled: true,
		Addr:    "127.0.0.1:6060",
	}
}

// DebugFromEnv returns debug configuration with environment overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if a := getEnvString("DEBUG_ADDR", ""); a != "" {
		cfg.Addr = a
	}
	cfg.Enabled = getEnvBool("DEBUG_ENABLED", cfg.Enabled)
	cfg.AllowExternal = getEnvBool("ALLOW_DEBUG_EXTERNAL", false)
	cfg.BasicAuthUser = getEnvString("DEBUG_USER", "")
	cfg.BasicAuthPass = getEnvString("DEBUG_PASS", "")

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server     ServerConfig
	Simulation SimulationConfig
	Match      MatchConfig
	Limits     game.ResourceLimits
	EventLog   EventLogConfig
	Debug      DebugConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:     ServerFromEnv(),
		Simulation: SimulationFromEnv(),
		Match:      MatchFromEnv(),
		Limits:     LimitsFromEnv(),
		EventLog:   EventLogFromEnv(),
		Debug:      DebugFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
