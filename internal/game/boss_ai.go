package game

import "math"

const (
	jumpMinRange   = 100.0
	jumpMaxRange   = 320.0
	jumpWindup     = 700.0
	jumpAirtime    = 500.0
	jumpRadius     = 110.0
	jumpBurn       = 3000.0
	tankJumpCD     = 5000.0
	bossJumpCD     = 4000.0
	trailInterval  = 800.0
	maxFirePuddles = 8
	volleyInterval = 2000.0

	tongueRange    = 250.0
	tongueWindup   = 400.0
	tongueCooldown = 4000.0
	tonguePull     = 12.0
)

// jumpSlam drives the leap of tanks and bosses: a telegraphed windup, a short
// flight to the locked point, and a radial slam on landing. It reports whether
// the leap owns the creature this frame.
func (f *frame) jumpSlam(c *Creature, target *Player, d float64) bool {
	js := c.AI.Jump
	if js == nil {
		return false
	}
	switch js.Phase {
	case JumpIdle:
		if d <= jumpMinRange || d >= jumpMaxRange || f.now < js.NextJumpAt {
			return false
		}
		js.Phase = JumpWindup
		js.PhaseStartedAt = f.now
		js.FromX, js.FromY = c.X, c.Y
		js.TargetX, js.TargetY = target.X, target.Y
		f.particle(Particle{X: target.X, Y: target.Y, Life: jumpWindup / FrameMillis * 0.02, Color: "#000000", Size: jumpRadius, Type: ParticleShadow})
		f.text(c.X, c.Y-30, "⚠️ JUMP!", "#ffaa00", 16, 0.8)
		return true

	case JumpWindup:
		if f.now-js.PhaseStartedAt >= jumpWindup {
			js.Phase = JumpAirborne
			js.PhaseStartedAt = f.now
		}
		return true

	case JumpAirborne:
		t := math.Min(1, (f.now-js.PhaseStartedAt)/jumpAirtime)
		c.X = js.FromX + (js.TargetX-js.FromX)*t
		c.Y = js.FromY + (js.TargetY-js.FromY)*t
		if t < 1 {
			return true
		}
		c.X, c.Y = ResolveWallCollision(c.X, c.Y, c.Radius(), f.s.Walls)
		js.Phase = JumpIdle
		js.PhaseStartedAt = f.now
		if c.Kind == CreatureBoss {
			js.NextJumpAt = f.now + bossJumpCD
		} else {
			js.NextJumpAt = f.now + tankJumpCD
		}
		f.slam(c)
		return true
	}
	return false
}

func (f *frame) slam(c *Creature) {
	burns := c.Kind == CreatureBoss
	f.burst(c.X, c.Y, 16, 10, 0.6, "#886644", 6, ParticleDust)
	if burns {
		for i := 0; i < 16; i++ {
			a := float64(i) / 16 * 2 * math.Pi
			f.particle(Particle{X: c.X, Y: c.Y, VX: math.Cos(a) * 6, VY: math.Sin(a) * 6, Life: 0.8, Color: "#ff4400", Size: 10, Type: ParticleExplosion})
		}
	}
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		fo := ExplosionFalloff(dist(c.X, c.Y, p.X, p.Y), jumpRadius)
		if fo <= 0 {
			continue
		}
		if burns {
			p.BurningUntil = math.Max(p.BurningUntil, f.now+jumpBurn)
		}
		f.knockBall(p)
		f.damagePlayer(p, c.AttackDamage*fo, c.ID, c.Kind.String())
	}
	for _, w := range f.s.Walls {
		if !w.Type.Damageable() || w.destroyed {
			continue
		}
		cx, cy := w.Center()
		if dist(c.X, c.Y, cx, cy) < jumpRadius {
			f.damageWall(w, c.AttackDamage*0.5, "")
		}
	}
}

// fireTrail leaves burning puddles behind a hunting boss.
func (f *frame) fireTrail(c *Creature) {
	tr := c.AI.Trail
	if f.now < tr.NextTrailAt {
		return
	}
	n := 0
	for _, it := range f.s.Items {
		if it.Type == ItemVenomPuddle && it.Fire && !it.gone {
			n++
		}
	}
	if n >= maxFirePuddles {
		return
	}
	tr.NextTrailAt = f.now + trailInterval
	f.particle(Particle{X: c.X, Y: c.Y, Life: 1, Color: "#ff4400", Size: 15, Type: ParticleSmoke})
	f.addItem(&Item{
		Type:      ItemVenomPuddle,
		X:         c.X,
		Y:         c.Y,
		SpawnedAt: f.now,
		Duration:  firePuddleDuration,
		Fire:      true,
	})
}

// flameVolley fans five fireballs at the target.
func (f *frame) flameVolley(c *Creature, target *Player, d float64) {
	fl := c.AI.Flame
	if fl == nil || d >= c.AttackRange || f.now < fl.NextVolleyAt {
		return
	}
	fl.NextVolleyAt = f.now + volleyInterval
	angle := math.Atan2(target.Y-c.Y, target.X-c.X)
	for i := -2; i <= 2; i++ {
		a := angle + float64(i)*0.25
		f.s.Projectiles = append(f.s.Projectiles, &Projectile{
			ID:      f.rng.NewID("proj"),
			OwnerID: c.ID,
			X:       c.X,
			Y:       c.Y,
			VX:      math.Cos(a) * 10,
			VY:      math.Sin(a) * 10,
			Damage:  c.AttackDamage,
			Weapon:  WeaponFlamethrower,
			Life:    1.5,
			Hostile: true,
		})
	}
	for i := 0; i < 12; i++ {
		v := 8 + f.rng.Float64()*4
		color := "#ff4400"
		if f.rng.Chance(0.5) {
			color = "#ff8800"
		}
		f.particle(Particle{X: c.X, Y: c.Y, VX: math.Cos(angle) * v, VY: math.Sin(angle) * v, Life: 0.6, Color: color, Size: 8, Type: ParticleExplosion})
	}
}

// witch runs the tongue grapple. While aiming the witch skitters toward its
// prey and uses the generic chase; every other phase owns the creature.
func (f *frame) witch(c *Creature, target *Player, d float64) bool {
	ws := c.AI.Witch
	if ws == nil {
		return false
	}
	defer func() {
		c.X = clamp(c.X, 50, MapSize-50)
		c.Y = clamp(c.Y, 50, MapSize-50)
	}()

	switch ws.Phase {
	case TongueAiming:
		if d < tongueRange && d > 80 && f.now >= ws.NextTongueAt {
			ws.Phase = TongueWindup
			ws.PhaseStartedAt = f.now
			ws.Progress = 0
			ws.TargetID = target.ID
			f.text(c.X, c.Y-40, "👅 TONGUE!", "#8844aa", 18, 1.2)
			return true
		}
		if math.Mod(f.now, 800)/800 < 0.15 && f.rng.Chance(0.3) {
			a := math.Atan2(target.Y-c.Y, target.X-c.X) + f.rng.Centered(0.5)
			hop := 40 + f.rng.Float64()*30
			c.X += math.Cos(a) * hop
			c.Y += math.Sin(a) * hop
			f.burst(c.X, c.Y, 4, 6, 0.3, "#aa66cc", 5, ParticleDust)
		}
		return false

	case TongueWindup:
		if f.now-ws.PhaseStartedAt >= tongueWindup {
			ws.Phase = TongueExtending
			ws.PhaseStartedAt = f.now
		}

	case TongueExtending:
		ws.Progress = math.Min(1, ws.Progress+0.08*f.dt)
		if t := f.s.Player(ws.TargetID); t != nil && !t.Dead && t.TongueGrabbedBy == "" &&
			dist(c.X, c.Y, t.X, t.Y) < tongueRange*ws.Progress+PlayerRadius {
			t.TongueGrabbedBy = c.ID
			ws.Phase = TongueRetracting
			ws.PhaseStartedAt = f.now
			f.knockBall(t)
			f.text(t.X, t.Y-20, "🎣 CAUGHT!", "#ff4444", 14, 1)
			return true
		}
		if ws.Progress >= 1 {
			f.resetTongue(ws)
		}

	case TongueRetracting:
		ws.Progress = math.Max(0, ws.Progress-0.06*f.dt)
		t := f.grabbedBy(c, ws)
		if t == nil {
			f.resetTongue(ws)
			return true
		}
		if pd := dist(c.X, c.Y, t.X, t.Y); pd > 40 {
			pull := math.Min(tonguePull*f.dt, pd-40)
			t.X += (c.X - t.X) / pd * pull
			t.Y += (c.Y - t.Y) / pd * pull
			t.X, t.Y = ResolveWallCollision(t.X, t.Y, PlayerRadius, f.s.Walls)
			if f.rng.Chance(0.3) {
				f.particle(Particle{X: t.X, Y: t.Y, VX: f.rng.Centered(4), VY: -2, Life: 0.4, Color: "#ffaa00", Size: 8, Type: ParticleSparkle})
			}
		}
		if ws.Progress <= 0 {
			ws.Phase = TongueAttacking
			ws.PhaseStartedAt = f.now
		}

	case TongueAttacking:
		if t := f.grabbedBy(c, ws); t != nil {
			t.TongueGrabbedBy = ""
			for i := 0; i < 3 && !t.Dead; i++ {
				f.damagePlayer(t, c.AttackDamage*0.6, c.ID, c.Kind.String())
			}
			for i := 0; i < 15; i++ {
				f.particle(Particle{
					X: t.X + f.rng.Centered(40), Y: t.Y + f.rng.Centered(40),
					VX: f.rng.Centered(8), VY: f.rng.Centered(8),
					Life: 0.5, Color: "#ff4444", Size: 6, Type: ParticleBlood,
				})
			}
			f.text(t.X, t.Y-25, "💀 SLASH!", "#ff4444", 18, 1)
			a := math.Atan2(t.Y-c.Y, t.X-c.X)
			t.X, t.Y = ResolveWallCollision(t.X+math.Cos(a)*60, t.Y+math.Sin(a)*60, PlayerRadius, f.s.Walls)
		}
		f.resetTongue(ws)
	}
	return true
}

// grabbedBy returns the living player held by c's tongue, if any.
func (f *frame) grabbedBy(c *Creature, ws *WitchState) *Player {
	t := f.s.Player(ws.TargetID)
	if t == nil || t.Dead || t.TongueGrabbedBy != c.ID {
		return nil
	}
	return t
}

func (f *frame) resetTongue(ws *WitchState) {
	if t := f.s.Player(ws.TargetID); t != nil && t.TongueGrabbedBy != "" {
		for _, c := range f.s.Creatures {
			if c.ID == t.TongueGrabbedBy && c.AI.Witch == ws {
				t.TongueGrabbedBy = ""
			}
		}
	}
	ws.Phase = TongueAiming
	ws.PhaseStartedAt = f.now
	ws.Progress = 0
	ws.TargetID = ""
	ws.NextTongueAt = f.now + tongueCooldown
}
