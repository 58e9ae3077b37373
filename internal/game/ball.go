package game

import (
	"fmt"
	"math"
)

const (
	ballKickSpeed      = 18.0
	ballKickPickDelay  = 400.0
	ballFriction       = 0.97
	goalCelebration    = 3000.0
	goalPickDelay      = 4000.0
	ballCarryDistance  = PlayerRadius + BallRadius + 3
	ballPickupDistance = PlayerRadius + BallRadius + 5
)

// newBrawlField returns the ball at center and the two goal mouths. Each goal
// is defended by the team spawning on its side.
func newBrawlField() (*Ball, []Goal) {
	return &Ball{X: MapSize / 2, Y: MapSize / 2}, []Goal{
		{X: 0, Y: MapSize/2 - 100, W: 50, H: 200, Team: TeamRed},
		{X: MapSize - 50, Y: MapSize/2 - 100, W: 50, H: 200, Team: TeamBlue},
	}
}

// carryBall lets p pick up a free ball and keeps a held ball in front of p.
func (f *frame) carryBall(p *Player) {
	b := f.s.Ball
	if b == nil || f.mode() != ModeBrawlBall {
		return
	}
	if b.HeldBy == "" && f.now >= p.CanPickBallAt && dist(b.X, b.Y, p.X, p.Y) < ballPickupDistance {
		b.HeldBy = p.ID
		b.VX, b.VY = 0, 0
		p.HasBall = true
		f.s.LastGoalScorer = p.ID
	}
	if b.HeldBy == p.ID {
		b.X = p.X + math.Cos(p.AimRotation)*ballCarryDistance
		b.Y = p.Y + math.Sin(p.AimRotation)*ballCarryDistance
		b.Rotation += 0.15 * f.dt
	}
}

// kickBall shoots a held ball along p's aim. It reports whether p had the ball.
func (f *frame) kickBall(p *Player) bool {
	b := f.s.Ball
	if b == nil || b.HeldBy != p.ID {
		return false
	}
	b.VX = math.Cos(p.AimRotation) * ballKickSpeed
	b.VY = math.Sin(p.AimRotation) * ballKickSpeed
	b.HeldBy = ""
	p.HasBall = false
	p.CanPickBallAt = f.now + ballKickPickDelay
	f.s.LastGoalScorer = p.ID
	return true
}

// releaseBall drops the ball p holds with a random nudge of up to speed/2 on
// each axis.
func (f *frame) releaseBall(p *Player, speed, pickDelay float64) {
	b := f.s.Ball
	if b == nil || b.HeldBy != p.ID {
		return
	}
	b.HeldBy = ""
	b.VX = f.rng.Centered(speed)
	b.VY = f.rng.Centered(speed)
	p.HasBall = false
	p.CanPickBallAt = f.now + pickDelay
}

// knockBall makes a hit player fumble the ball.
func (f *frame) knockBall(p *Player) {
	f.releaseBall(p, 6, 800)
}

// updateBall integrates a free ball and checks the goals. It reports whether a
// goal was scored, in which case the rest of the tick is skipped.
func (f *frame) updateBall() bool {
	b := f.s.Ball
	if b == nil || b.HeldBy != "" {
		return false
	}
	b.X += b.VX * f.dt
	b.Y += b.VY * f.dt
	damp := math.Pow(ballFriction, f.dt)
	b.VX *= damp
	b.VY *= damp
	b.Rotation += math.Hypot(b.VX, b.VY) * 0.04 * f.dt
	bounceBall(b, f.s.Walls)

	for _, g := range f.s.Goals {
		if b.X > g.X && b.X < g.X+g.W && b.Y > g.Y && b.Y < g.Y+g.H {
			f.scoreGoal(g)
			return true
		}
	}
	return false
}

// bounceBall pushes the ball out of blocking walls, reflecting the velocity
// component along the push, and bounces it off the arena edge.
func bounceBall(b *Ball, walls []*Wall) {
	for _, w := range walls {
		if w.Type == WallBush || w.Type == WallWater || w.destroyed {
			continue
		}
		cx := clamp(b.X, w.X, w.X+w.W)
		cy := clamp(b.Y, w.Y, w.Y+w.H)
		dx, dy := b.X-cx, b.Y-cy
		d := math.Hypot(dx, dy)
		if d >= BallRadius {
			continue
		}
		if d > 0 {
			overlap := BallRadius - d + 1
			b.X += dx / d * overlap
			b.Y += dy / d * overlap
			if math.Abs(dx) > math.Abs(dy) {
				b.VX *= -0.6
			} else {
				b.VY *= -0.6
			}
			continue
		}
		if w.X+w.W/2 > b.X {
			b.X = w.X - BallRadius - 5
		} else {
			b.X = w.X + w.W + BallRadius + 5
		}
		b.VX *= -0.5
	}
	if b.X < BallRadius {
		b.X, b.VX = BallRadius, math.Abs(b.VX)*0.7
	}
	if b.X > MapSize-BallRadius {
		b.X, b.VX = MapSize-BallRadius, -math.Abs(b.VX)*0.7
	}
	if b.Y < BallRadius {
		b.Y, b.VY = BallRadius, math.Abs(b.VY)*0.7
	}
	if b.Y > MapSize-BallRadius {
		b.Y, b.VY = MapSize-BallRadius, -math.Abs(b.VY)*0.7
	}
}

// scoreGoal credits the team attacking goal g, re-centers the ball, sends
// every player back to a spawn point and starts the celebration freeze.
func (f *frame) scoreGoal(g Goal) {
	s := f.s
	scoring := g.Team.Opponent()
	s.TeamScores.add(scoring, 1)

	scorerID := ""
	name := scoring.String() + " Team"
	if p := s.Player(s.LastGoalScorer); p != nil && p.Team == scoring {
		scorerID = p.ID
		name = p.Name
	}
	s.LastGoalScorer = scorerID

	color := "#4444ff"
	if scoring == TeamRed {
		color = "#ff4444"
	}
	gx, gy := g.X+g.W/2, g.Y+g.H/2
	f.text(gx, gy, "⚽ GOAL!", color, 32, 3)
	f.text(gx, gy+40, name, "#ffffff", 16, 3)
	f.burst(gx, gy, 30, 10, 2, color, 4, ParticleSparkle)
	f.announce(fmt.Sprintf("⚽ GOAL! %s scores", name), color, goalCelebration)

	s.Ball = &Ball{X: MapSize / 2, Y: MapSize / 2}
	for _, p := range s.Players {
		p.X, p.Y = SafePosition(s.Walls, p.Team, f.rng)
		p.HasBall = false
		p.CanPickBallAt = f.now + goalPickDelay
	}
	s.GoalCelebrationUntil = f.now + goalCelebration

	f.emit(EventTypeGoal, scorerID, GoalPayload{
		Team:     scoring,
		ScorerID: scorerID,
		Red:      s.TeamScores.Red,
		Blue:     s.TeamScores.Blue,
	})
	if s.TeamScores.Get(scoring) >= s.Settings.ScoreToWin {
		f.endMatch(scoring, "", "")
	}
}
