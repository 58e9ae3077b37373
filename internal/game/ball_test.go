package game

import (
	"testing"
)

// clearField removes crates, barrels and destructibles so ball tests are not
// at the mercy of the random crate layout.
func clearField(s *WorldState) {
	kept := s.Walls[:0]
	for _, w := range s.Walls {
		if !w.Type.Damageable() {
			kept = append(kept, w)
		}
	}
	s.Walls = kept
}

// TestBallGoal shoots a held ball into the BLUE goal from close range.
func TestBallGoal(t *testing.T) {
	s, ids := newTestMatch(t, "goal-room", ModeBrawlBall, "striker", "keeper")
	clearField(s)
	striker, keeper := s.Player(ids[0]), s.Player(ids[1])
	if striker.Team != TeamRed {
		t.Fatalf("Expected striker on RED, got %v", striker.Team)
	}
	keeper.X, keeper.Y = 900, 200
	striker.X, striker.Y, striker.AimRotation = 1020, MapSize/2, 0
	striker.HasBall = true
	s.Ball.HeldBy = striker.ID

	sim := NewSimulator(DefaultSimConfig())
	next := sim.Tick(s, map[string]Input{striker.ID: {Fire: true}}, 1)

	if next.TeamScores.Red != 1 || next.TeamScores.Blue != 0 {
		t.Fatalf("Expected 1-0, got %+v", next.TeamScores)
	}
	if next.Ball.X != MapSize/2 || next.Ball.Y != MapSize/2 || next.Ball.HeldBy != "" {
		t.Errorf("ball not reset: %+v", *next.Ball)
	}
	for _, p := range next.Players {
		if p.HasBall {
			t.Errorf("%s still has the ball", p.Name)
		}
		if !spawnClear(next.Walls, p.X, p.Y) && (p.X != MapSize/2 || p.Y != MapSize/2) {
			t.Errorf("%s reset into a wall at (%v,%v)", p.Name, p.X, p.Y)
		}
		if p.CanPickBallAt != next.Now+goalPickDelay {
			t.Errorf("%s can pick the ball at %v", p.Name, p.CanPickBallAt)
		}
	}
	if p := next.Player(striker.ID); p.X > MapSize/2 {
		t.Errorf("RED striker reset to the BLUE side: %v", p.X)
	}
	if next.GoalCelebrationUntil != next.Now+goalCelebration {
		t.Errorf("Expected celebration until %v, got %v", next.Now+goalCelebration, next.GoalCelebrationUntil)
	}
	if countEvents(next, EventTypeGoal) != 1 {
		t.Error("missing goal event")
	}

	frozen := sim.Tick(next, map[string]Input{striker.ID: {Right: true}}, 1)
	if fp := frozen.Player(striker.ID); fp.X != next.Player(striker.ID).X {
		t.Error("player moved during the goal celebration")
	}
}

// TestBallCarryAndKick checks pickup, carry position and kick velocity.
func TestBallCarryAndKick(t *testing.T) {
	s, ids := newTestMatch(t, "kick-room", ModeBrawlBall, "runner")
	p := s.Player(ids[0])
	f := newTestFrame(s, 1000)
	p.X, p.Y, p.AimRotation = s.Ball.X-20, s.Ball.Y, 0

	f.carryBall(p)
	if s.Ball.HeldBy != p.ID || !p.HasBall {
		t.Fatal("ball not picked up")
	}
	if s.Ball.X != p.X+ballCarryDistance {
		t.Errorf("Expected ball at %v, got %v", p.X+ballCarryDistance, s.Ball.X)
	}

	if !f.kickBall(p) {
		t.Fatal("kick failed")
	}
	if s.Ball.VX != ballKickSpeed || s.Ball.HeldBy != "" || p.HasBall {
		t.Errorf("unexpected ball after kick: %+v", *s.Ball)
	}
	if p.CanPickBallAt != 1000+ballKickPickDelay {
		t.Errorf("Expected pick delay until %v, got %v", 1000+ballKickPickDelay, p.CanPickBallAt)
	}
	f.carryBall(p)
	if s.Ball.HeldBy == p.ID {
		t.Error("kicker re-grabbed the ball immediately")
	}
}

// TestBallScoreToWin ends the match on the winning goal.
func TestBallScoreToWin(t *testing.T) {
	s, _ := newTestMatch(t, "final-room", ModeBrawlBall, "striker")
	s.TeamScores.Blue = s.Settings.ScoreToWin - 1
	f := newTestFrame(s, 0)
	f.scoreGoal(s.Goals[0]) // RED goal: BLUE scores
	if !s.GameOver || s.Winner != TeamBlue {
		t.Errorf("Expected BLUE win, got over=%v winner=%v", s.GameOver, s.Winner)
	}
}
