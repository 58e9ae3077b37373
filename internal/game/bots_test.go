package game

import (
	"testing"
)

func TestBotThrottle(t *testing.T) {
	th := NewBotThrottle(4, 1)
	var bot1 FireBucket
	steps := []struct {
		now  float64
		want bool
	}{
		{0, true},
		{10, false},
		{200, false},
		{300, true},
		{310, false},
	}
	for _, st := range steps {
		if got := th.Allow(&bot1, st.now); got != st.want {
			t.Errorf("Expected Allow at %vms = %v, got %v", st.now, st.want, got)
		}
	}
	var bot2 FireBucket
	if !th.Allow(&bot2, 310) {
		t.Error("Expected a fresh bucket to start full")
	}

	open := NewBotThrottle(0, 1)
	for i := 0; i < 10; i++ {
		if !open.Allow(&bot1, 0) {
			t.Fatal("Expected a zero rate to allow every shot")
		}
	}
}

// TestBotThrottleCarriedInBucket hands a copied bucket to a second throttle:
// the decisions only depend on the bucket.
func TestBotThrottleCarriedInBucket(t *testing.T) {
	var b FireBucket
	first := NewBotThrottle(4, 2)
	first.Allow(&b, 0)
	first.Allow(&b, 50)

	copied := b
	second := NewBotThrottle(4, 2)
	for _, now := range []float64{60, 120, 260, 300, 520} {
		want := first.Allow(&b, now)
		if got := second.Allow(&copied, now); got != want {
			t.Errorf("Expected %v at %vms, got %v", want, now, got)
		}
		if copied != b {
			t.Fatalf("Expected equal buckets at %vms, got %+v and %+v", now, copied, b)
		}
	}
}

// TestBotsPlayGunGame lets the default gun game bots run for a few seconds.
func TestBotsPlayGunGame(t *testing.T) {
	s := NewMatch("bot-room", DefaultSettings(ModeGunGame))
	start := make(map[string][2]float64)
	for _, p := range s.Players {
		start[p.ID] = [2]float64{p.X, p.Y}
	}
	sim := NewSimulator(DefaultSimConfig())
	for i := 0; i < 300 && !s.GameOver; i++ {
		s = sim.Tick(s, nil, 1)
	}
	moved := 0
	for _, p := range s.Players {
		if pos, ok := start[p.ID]; ok && (pos[0] != p.X || pos[1] != p.Y) {
			moved++
		}
	}
	if moved == 0 {
		t.Error("no bot moved")
	}
}

// TestBotCarrierShootsAtGoal gives a bot the ball right in front of the goal.
func TestBotCarrierShootsAtGoal(t *testing.T) {
	settings := DefaultSettings(ModeBrawlBall)
	settings.Bots = intPtr(1)
	s := NewMatch("carrier-room", settings)
	clearField(s)
	bot := s.Players[0]
	if bot.Team != TeamBlue {
		t.Fatalf("Expected the single bot on BLUE, got %v", bot.Team)
	}
	bot.X, bot.Y, bot.AimRotation = 150, MapSize/2, 3.14
	bot.HasBall = true
	s.Ball.HeldBy = bot.ID

	sim := NewSimulator(DefaultSimConfig())
	for i := 0; i < 60 && s.TeamScores.Blue == 0; i++ {
		s = sim.Tick(s, nil, 1)
	}
	if s.TeamScores.Blue != 1 {
		t.Errorf("Expected the bot to score, got %+v", s.TeamScores)
	}
}
