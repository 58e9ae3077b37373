package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"zombie-arena/internal/game"
)

// TestLoadDefaults checks the configuration with a clean environment.
func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Simulation.TickRate != 60 {
		t.Errorf("Expected 60 TPS, got %d", cfg.Simulation.TickRate)
	}
	if cfg.Match.Settings.Mode != game.ModeZombieSurvival {
		t.Errorf("Expected survival, got %v", cfg.Match.Settings.Mode)
	}
	if cfg.Limits != game.DefaultLimits {
		t.Errorf("Expected default limits, got %+v", cfg.Limits)
	}
	if cfg.Debug.Addr != "127.0.0.1:6060" {
		t.Errorf("Expected debug on localhost, got %s", cfg.Debug.Addr)
	}
}

// TestEnvOverrides sets every supported key.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_ROOMS", "3")
	t.Setenv("MAX_PLAYERS_PER_ROOM", "4")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("GAME_MODE", "brawl_ball")
	t.Setenv("DIFFICULTY", "hard")
	t.Setenv("SPAWN_RATE", "2.5")
	t.Setenv("MAX_ZOMBIES", "25")
	t.Setenv("TIME_LIMIT", "90")
	t.Setenv("SCORE_TO_WIN", "5")
	t.Setenv("BOT_FIRE_RATE", "0")
	t.Setenv("EVENT_LOG_PATH", "/tmp/events.jsonl")
	t.Setenv("PRESETS_PATH", "/etc/presets.yaml")
	t.Setenv("DEBUG_ADDR", "127.0.0.1:7070")
	t.Setenv("DEBUG_ENABLED", "false")
	t.Setenv("DEBUG_USER", "ops")
	t.Setenv("DEBUG_PASS", "secret")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("MAX_WS_PER_IP", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DEFAULT_ROOM", "main")

	cfg := Load()
	if cfg.Server.Port != 8080 || cfg.Server.MaxRooms != 3 || cfg.Server.MaxPlayersPerRoom != 4 {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Simulation.TickRate != 30 || cfg.Simulation.BotFireRate != 0 {
		t.Errorf("simulation overrides not applied: %+v", cfg.Simulation)
	}
	m := cfg.Match.Settings
	if m.Mode != game.ModeBrawlBall || m.Difficulty != game.DifficultyHard {
		t.Errorf("Expected BRAWL_BALL HARD, got %v %v", m.Mode, m.Difficulty)
	}
	if m.SpawnRate != 2.5 || m.MaxCreatures != 25 || m.TimeLimit != 90 || m.ScoreToWin != 5 {
		t.Errorf("match overrides not applied: %+v", m)
	}
	if cfg.EventLog.Path != "/tmp/events.jsonl" || cfg.Match.PresetsPath != "/etc/presets.yaml" {
		t.Errorf("path overrides not applied")
	}
	if cfg.Debug.Enabled || cfg.Debug.Addr != "127.0.0.1:7070" {
		t.Errorf("debug overrides not applied: %+v", cfg.Debug)
	}
	if cfg.Debug.BasicAuthUser != "ops" || cfg.Debug.BasicAuthPass != "secret" {
		t.Errorf("debug auth not applied: %+v", cfg.Debug)
	}
	if cfg.Server.RequestsPerSecond != 5 || cfg.Server.MaxWSPerIP != 2 || len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("limit overrides not applied: %+v", cfg.Server)
	}
	if cfg.Match.DefaultRoom != "main" {
		t.Errorf("Expected default room main, got %q", cfg.Match.DefaultRoom)
	}
}

// TestEnvInvalidValues keeps defaults for values that do not parse.
func TestEnvInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("GAME_MODE", "CAPTURE_THE_FLAG")
	t.Setenv("DEBUG_ENABLED", "maybe")

	cfg := Load()
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Match.Settings.Mode != game.ModeZombieSurvival {
		t.Errorf("Expected default mode, got %v", cfg.Match.Settings.Mode)
	}
	if !cfg.Debug.Enabled {
		t.Error("Expected debug to stay enabled")
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		rate int
		want int64 // microseconds
	}{
		{60, 16666},
		{30, 33333},
		{20, 50000},
	}
	for _, tt := range tests {
		got := SimulationConfig{TickRate: tt.rate}.TickInterval().Microseconds()
		if got != tt.want {
			t.Errorf("rate %d: Expected %dus, got %dus", tt.rate, tt.want, got)
		}
	}
}

func TestDefaultPresets(t *testing.T) {
	p := DefaultPresets()
	want := []string{"brawl-ball", "gem-grab", "gun-game", "survival-easy", "survival-nightmare", "tdm"}
	names := p.Names()
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, names)
		}
	}
	s, err := p.Get("survival-nightmare")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Difficulty != game.DifficultyNightmare {
		t.Errorf("Expected NIGHTMARE, got %v", s.Difficulty)
	}
	if _, err := p.Get("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
}

// TestLoadPresetsFile merges a YAML file over the built-ins.
func TestLoadPresetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	body := `presets:
  hardcore:
    mode: ZOMBIE_SURVIVAL
    difficulty: NIGHTMARE
    spawnRate: 2
  tdm:
    mode: TEAM_DEATHMATCH
    scoreToWin: 5
    bots: 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	hc, err := p.Get("hardcore")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hc.Difficulty != game.DifficultyNightmare || hc.SpawnRate != 2 {
		t.Errorf("hardcore not parsed: %+v", hc)
	}
	if hc.MaxCreatures != 40 {
		t.Errorf("Expected normalized max creatures 40, got %d", hc.MaxCreatures)
	}
	tdm, _ := p.Get("tdm")
	if tdm.ScoreToWin != 5 || tdm.TimeLimit != 300 {
		t.Errorf("tdm override wrong: %+v", tdm)
	}
	if tdm.Bots == nil || *tdm.Bots != 0 {
		t.Errorf("Expected explicit zero bots, got %v", tdm.Bots)
	}
	if _, err := p.Get("gun-game"); err != nil {
		t.Error("built-in preset lost after merge")
	}
}

func TestLoadPresetsErrors(t *testing.T) {
	if _, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("presets:\n  x:\n    mode: POLO\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Error("Expected an error for an unknown mode")
	}

	p, err := LoadPresets("")
	if err != nil || len(p) != len(DefaultPresets()) {
		t.Errorf("Expected built-ins for an empty path, got %d presets, err %v", len(p), err)
	}
}
