package game

import "math"

// botInput decides a bot's intention for this frame. Weapon fire (not ball
// kicks) is throttled by the bot's fire bucket.
func (f *frame) botInput(p *Player) Input {
	var in Input
	switch f.mode() {
	case ModeBrawlBall:
		if f.s.Ball != nil {
			f.brawlBot(p, &in)
			break
		}
		f.combatBot(p, &in)
	case ModeGemGrab:
		f.gemBot(p, &in)
	default:
		f.combatBot(p, &in)
	}
	if in.Fire && !p.HasBall && !f.sim.throttle.Allow(&p.BotFire, f.now) {
		in.Fire = false
	}
	return in
}

// moveToward sets the direction flags that bring p toward (x, y), sidestepping
// when a wall sits right ahead. Larger eagerness values need a larger offset
// before an axis is pressed.
func (f *frame) moveToward(p *Player, in *Input, x, y, eagerness float64) {
	dx, dy := x-p.X, y-p.Y
	d := math.Hypot(dx, dy)
	if d < 20 {
		return
	}
	tx, ty := p.X+dx/d*30, p.Y+dy/d*30
	for _, w := range f.s.Walls {
		if w.Type == WallBush || w.Type == WallWater || w.destroyed {
			continue
		}
		if pointInRect(w, tx, ty, PlayerRadius) {
			px, py := -dy/d, dx/d
			dx = px*50 + dx*0.3
			dy = py*50 + dy*0.3
			break
		}
	}
	th := 15 * eagerness
	in.Right = dx > th
	in.Left = dx < -th
	in.Down = dy > th
	in.Up = dy < -th
}

func aimAt(in *Input, x, y float64) { in.AimAt(x, y) }

// combatBot closes in on the nearest enemy, backs off when too close, and
// shoots inside 350 px. Survival bots only hunt creatures.
func (f *frame) combatBot(p *Player, in *Input) {
	var tx, ty float64
	best := math.Inf(1)
	if !f.survival() {
		for _, o := range f.s.Players {
			if o == p || o.Dead || Allied(o.Team, p.Team) {
				continue
			}
			if d := dist(p.X, p.Y, o.X, o.Y); d < best {
				best, tx, ty = d, o.X, o.Y
			}
		}
	}
	for _, c := range f.s.Creatures {
		if c.dead {
			continue
		}
		if d := dist(p.X, p.Y, c.X, c.Y); d < best {
			best, tx, ty = d, c.X, c.Y
		}
	}
	if math.IsInf(best, 1) {
		return
	}
	f.engage(p, in, tx, ty, best)
}

func (f *frame) engage(p *Player, in *Input, tx, ty, d float64) {
	switch {
	case d > 180:
		f.moveToward(p, in, tx, ty, 0.8)
	case d < 80:
		f.moveToward(p, in, p.X*2-tx, p.Y*2-ty, 0.6)
	}
	in.Fire = d < 350
	aimAt(in, tx, ty)
}

// brawlBot plays brawl ball by role: the carrier shoots or passes, the
// closest free player chases the ball, others support or defend.
func (f *frame) brawlBot(p *Player, in *Input) {
	s := f.s
	ball := s.Ball
	goalX, ownGoalX := MapSize-25.0, 25.0
	if p.Team == TeamBlue {
		goalX, ownGoalX = ownGoalX, goalX
	}
	side := 1.0
	if p.Team == TeamBlue {
		side = -1
	}
	var mates, enemies []*Player
	for _, o := range s.Players {
		if o == p || o.Dead {
			continue
		}
		if o.Team == p.Team {
			mates = append(mates, o)
		} else if o.Team != TeamNone {
			enemies = append(enemies, o)
		}
	}

	switch {
	case ball.HeldBy == p.ID:
		toGoal := math.Abs(p.X - goalX)
		clear := true
		for _, e := range enemies {
			tgx, tex := goalX-p.X, e.X-p.X
			if math.Signbit(tgx) != math.Signbit(tex) || math.Abs(tex) > math.Abs(tgx) {
				continue
			}
			laneY := p.Y + (e.Y-p.Y)*(tex/tgx)
			if math.Abs(laneY-MapSize/2) < 80 {
				clear = false
				break
			}
		}
		if toGoal < 350 || (toGoal < 500 && clear) {
			in.Fire = true
			aimAt(in, goalX, MapSize/2+f.rng.Centered(100))
			f.moveToward(p, in, goalX, MapSize/2, 0.7)
			return
		}
		nearestEnemy := math.Inf(1)
		for _, e := range enemies {
			nearestEnemy = math.Min(nearestEnemy, dist(p.X, p.Y, e.X, e.Y))
		}
		for _, m := range mates {
			if math.Abs(goalX-m.X) < toGoal-150 && dist(p.X, p.Y, m.X, m.Y) < 350 && nearestEnemy < 120 {
				in.Fire = true
				aimAt(in, m.X+30*side, m.Y)
				return
			}
		}
		f.moveToward(p, in, goalX, MapSize/2, 0.85)

	case ball.HeldBy == "":
		mine := dist(p.X, p.Y, ball.X, ball.Y)
		closer := 0
		for _, m := range mates {
			if dist(m.X, m.Y, ball.X, ball.Y) < mine {
				closer++
			}
		}
		switch closer {
		case 0:
			f.moveToward(p, in, ball.X, ball.Y, 1)
		case 1:
			f.moveToward(p, in, (ball.X+goalX)/2, ball.Y, 0.6)
		default:
			f.moveToward(p, in, ownGoalX+200*side, MapSize/2+f.rng.Centered(200), 0.5)
		}

	default:
		holder := s.Player(ball.HeldBy)
		if holder == nil {
			return
		}
		if holder.Team == p.Team {
			f.moveToward(p, in, goalX-200*side, holder.Y+f.rng.Centered(300), 0.6)
			return
		}
		d := dist(p.X, p.Y, holder.X, holder.Y)
		if d < 200 || math.Abs(holder.X-ownGoalX) < 300 {
			f.moveToward(p, in, holder.X, holder.Y, 0.9)
			if d < 150 {
				in.Fire = true
				aimAt(in, holder.X, holder.Y)
			}
			return
		}
		f.moveToward(p, in, (holder.X+ownGoalX)/2, holder.Y, 0.7)
	}
}

// gemBot works down a priority list: rob the richest enemy in reach, guard the
// richest teammate, collect the nearest gem, then fight.
func (f *frame) gemBot(p *Player, in *Input) {
	s := f.s
	var richEnemy, richMate *Player
	for _, o := range s.Players {
		if o == p || o.Dead || o.Gems == 0 {
			continue
		}
		if Allied(o.Team, p.Team) {
			if richMate == nil || o.Gems > richMate.Gems {
				richMate = o
			}
		} else if dist(p.X, p.Y, o.X, o.Y) < 400 && (richEnemy == nil || o.Gems > richEnemy.Gems) {
			richEnemy = o
		}
	}
	if richEnemy != nil {
		f.engage(p, in, richEnemy.X, richEnemy.Y, dist(p.X, p.Y, richEnemy.X, richEnemy.Y))
		return
	}
	if richMate != nil && richMate.Gems >= 3 {
		for _, e := range s.Players {
			if e.Dead || Allied(e.Team, p.Team) || e == p {
				continue
			}
			if dist(e.X, e.Y, richMate.X, richMate.Y) < 250 {
				f.moveToward(p, in, richMate.X, richMate.Y, 0.8)
				d := dist(p.X, p.Y, e.X, e.Y)
				in.Fire = d < 350
				aimAt(in, e.X, e.Y)
				return
			}
		}
	}
	var gem *Item
	best := math.Inf(1)
	for _, it := range s.Items {
		if it.Type != ItemGem || it.gone {
			continue
		}
		if d := dist(p.X, p.Y, it.X, it.Y); d < best {
			best, gem = d, it
		}
	}
	if gem != nil {
		f.moveToward(p, in, gem.X, gem.Y, 1)
		return
	}
	f.combatBot(p, in)
}
