package game

import "math"

const (
	spitterCooldown = 4000.0
	spitterMinRange = 60.0
	spitterMaxRange = 200.0

	healerCadence = 1000.0
	healerRadius  = 150.0
	healerAmount  = 15.0

	chargerRange     = 350.0
	chargerWindup    = 400.0
	chargerDuration  = 2000.0
	chargerRecharge  = 2500.0
	chargerSpeed     = 7.0
	chargerStun      = 1500.0
	chargerKnockback = 80.0

	smokeRange    = 200.0
	smokeCooldown = 6000.0

	freezerCooldown = 2000.0
)

// updateCreatures runs every living creature's behavior against the nearest
// living player.
func (f *frame) updateCreatures() {
	for _, c := range f.s.Creatures {
		if c.dead {
			continue
		}
		target := f.nearestPlayer(c.X, c.Y)
		if target == nil {
			c.TargetID = ""
			continue
		}
		c.TargetID = target.ID
		d := dist(c.X, c.Y, target.X, target.Y)
		if f.special(c, target, d) {
			continue
		}
		f.chase(c, target, d)
	}
}

func (f *frame) nearestPlayer(x, y float64) *Player {
	var best *Player
	bestD := math.Inf(1)
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		if d := dist(x, y, p.X, p.Y); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// special runs the kind-specific part of c's behavior. It reports whether the
// generic chase-and-bite step must be skipped this frame.
func (f *frame) special(c *Creature, target *Player, d float64) bool {
	if c.AI.Trail != nil {
		f.fireTrail(c)
	}
	switch c.Kind {
	case CreatureSpitter:
		f.spit(c, target, d)
	case CreatureHealer:
		return f.heal(c, target)
	case CreatureCharger:
		f.charge(c, target, d)
		return true
	case CreatureFreezer:
		f.freeze(c, target, d)
	case CreatureSmoke:
		f.smoke(c, d)
	case CreatureTank, CreatureBoss:
		return f.jumpSlam(c, target, d)
	case CreatureFlameBoss:
		f.flameVolley(c, target, d)
	case CreatureWitch:
		return f.witch(c, target, d)
	}
	return false
}

// canBite reports whether the kind deals contact damage.
func canBite(k CreatureKind) bool {
	return k != CreatureHealer && k != CreatureCharger && k != CreatureSpitter
}

// chase walks c toward target until it is in attack range, then bites on a
// fixed cooldown.
func (f *frame) chase(c *Creature, target *Player, d float64) {
	if d > c.AttackRange {
		c.Rotation = lerpAngle(c.Rotation, math.Atan2(target.Y-c.Y, target.X-c.X), math.Min(1, 0.08*f.dt))
		f.step(c, c.Rotation, c.Speed)
		return
	}
	if !canBite(c.Kind) || f.now < c.NextAttackAt {
		return
	}
	cooldown := 900.0
	if c.IsBoss {
		cooldown = 1200
	}
	c.NextAttackAt = f.now + cooldown
	if c.Kind == CreatureFreezer {
		target.SlowedUntil = math.Max(target.SlowedUntil, f.now+2500)
	}
	f.damagePlayer(target, c.AttackDamage, c.ID, c.Kind.String())
}

// step moves c along angle at speed units per frame, halved in a swamp, and
// slides it along walls.
func (f *frame) step(c *Creature, angle, speed float64) {
	if onTerrain(f.s.Walls, WallSwamp, c.X, c.Y, CreatureRadius) {
		speed *= 0.5
	}
	speed *= f.dt
	c.X, c.Y = ResolveWallCollision(c.X+math.Cos(angle)*speed, c.Y+math.Sin(angle)*speed, c.Radius(), f.s.Walls)
}

func (f *frame) spit(c *Creature, target *Player, d float64) {
	st := c.AI.Spitter
	if st == nil || d <= spitterMinRange || d >= spitterMaxRange || f.now < st.NextSpitAt {
		return
	}
	if !LineOfSight(c.X, c.Y, target.X, target.Y, 10, f.s.Walls) {
		return
	}
	st.NextSpitAt = f.now + spitterCooldown
	angle := math.Atan2(target.Y-c.Y, target.X-c.X)
	f.s.Projectiles = append(f.s.Projectiles, &Projectile{
		ID:      f.rng.NewID("proj"),
		OwnerID: c.ID,
		X:       c.X,
		Y:       c.Y,
		VX:      math.Cos(angle) * 3,
		VY:      math.Sin(angle) * 3,
		Damage:  6,
		Weapon:  WeaponRocket,
		Life:    3,
		Hostile: true,
		Venom:   true,
	})
	for i := 0; i < 12; i++ {
		a := angle + f.rng.Centered(0.8)
		v := 4 + f.rng.Float64()*4
		f.particle(Particle{X: c.X, Y: c.Y, VX: math.Cos(a) * v, VY: math.Sin(a) * v, Life: 0.8, Color: "#cc44ff", Size: 10, Type: ParticleSparkle})
	}
	f.text(c.X, c.Y-25, "☠️ SPIT!", "#cc44ff", 14, 0.7)
}

// heal mends nearby creatures on a cadence and keeps the healer behind its
// escort. It never bites.
func (f *frame) heal(c *Creature, target *Player) bool {
	st := c.AI.Healer
	if st != nil && f.now >= st.NextHealAt {
		st.NextHealAt = f.now + healerCadence
		for _, o := range f.s.Creatures {
			if o == c || o.dead || dist(c.X, c.Y, o.X, o.Y) >= healerRadius {
				continue
			}
			o.HP = math.Min(o.MaxHP, o.HP+healerAmount)
			f.text(o.X, o.Y-10, "+15", "#44ff44", 12, 0.8)
		}
		f.particle(Particle{X: c.X, Y: c.Y, Life: 0.5, Color: "#44ff44", Size: 60, Type: ParticleHealAura})
	}

	escorts, alive := 0, 0
	for _, o := range f.s.Creatures {
		if o.dead {
			continue
		}
		alive++
		if o != c && dist(c.X, c.Y, o.X, o.Y) < 200 {
			escorts++
		}
	}
	if escorts >= 2 && alive >= 4 {
		away := math.Atan2(c.Y-target.Y, c.X-target.X)
		c.Rotation = lerpAngle(c.Rotation, away, math.Min(1, 0.08*f.dt))
		f.step(c, c.Rotation, c.Speed)
		return true
	}
	return false
}

// charge walks toward the target, winds up, then rushes along a locked
// direction until it hits a player or a wall or runs out of time.
func (f *frame) charge(c *Creature, target *Player, d float64) {
	st := c.AI.Charger
	if st == nil {
		return
	}
	if !st.Charging && d > 50 {
		c.Rotation = lerpAngle(c.Rotation, math.Atan2(target.Y-c.Y, target.X-c.X), math.Min(1, 0.1*f.dt))
		f.step(c, c.Rotation, c.Speed*1.2)
	}

	if !st.Charging && d < chargerRange && d > 50 && (st.StartedAt == 0 || f.now-st.StartedAt > chargerRecharge) {
		a := math.Atan2(target.Y-c.Y, target.X-c.X)
		st.Charging = true
		st.DirX, st.DirY = math.Cos(a), math.Sin(a)
		st.StartedAt = f.now
		f.text(c.X, c.Y-30, "🐗 CHARGE!", "#ff4444", 18, 1)
		for i := 0; i < 8; i++ {
			a := float64(i) * math.Pi / 4
			f.particle(Particle{X: c.X, Y: c.Y, VX: math.Cos(a) * 5, VY: math.Sin(a) * 5, Life: 0.5, Color: "#ff6644", Size: 10, Type: ParticleSmoke})
		}
	}
	if !st.Charging {
		return
	}

	elapsed := f.now - st.StartedAt
	if elapsed >= chargerDuration {
		st.Charging = false
		return
	}
	if elapsed <= chargerWindup {
		return
	}

	c.X = clamp(c.X+st.DirX*chargerSpeed*f.dt, 30, MapSize-30)
	c.Y = clamp(c.Y+st.DirY*chargerSpeed*f.dt, 30, MapSize-30)
	c.Rotation = math.Atan2(st.DirY, st.DirX)
	f.particle(Particle{X: c.X, Y: c.Y, VX: f.rng.Centered(4), VY: f.rng.Centered(4), Life: 0.4, Color: "#ff4400", Size: 12, Type: ParticleSmoke})

	hit := false
	for _, p := range f.s.Players {
		if p.Dead || p.StunnedUntil > f.now {
			continue
		}
		if dist(p.X, p.Y, c.X, c.Y) >= PlayerRadius+c.Radius()+5 || f.now < c.NextAttackAt {
			continue
		}
		c.NextAttackAt = f.now + 300
		p.StunnedUntil = f.now + chargerStun
		a := math.Atan2(p.Y-c.Y, p.X-c.X)
		p.X, p.Y = ResolveWallCollision(p.X+math.Cos(a)*chargerKnockback, p.Y+math.Sin(a)*chargerKnockback, PlayerRadius, f.s.Walls)
		f.text(p.X, p.Y-20, "💫 STUNNED!", "#ffff00", 16, 1.5)
		f.knockBall(p)
		f.damagePlayer(p, c.AttackDamage, c.ID, c.Kind.String())
		hit = true
	}
	if hit || f.chargeBlocked(c) {
		st.Charging = false
	}
}

func (f *frame) chargeBlocked(c *Creature) bool {
	for _, w := range f.s.Walls {
		if (w.Type == WallSolid || w.Type == WallDestructible) && !w.destroyed && pointInRect(w, c.X, c.Y, 20) {
			return true
		}
	}
	return false
}

func (f *frame) freeze(c *Creature, target *Player, d float64) {
	st := c.AI.Freezer
	if st == nil || d <= 40 || d >= 120 || f.now < st.NextBlastAt {
		return
	}
	st.NextBlastAt = f.now + freezerCooldown
	angle := math.Atan2(target.Y-c.Y, target.X-c.X)
	for i := 0; i < 8; i++ {
		a := angle + f.rng.Centered(0.5)
		v := 6 + f.rng.Float64()*3
		f.particle(Particle{X: c.X, Y: c.Y, VX: math.Cos(a) * v, VY: math.Sin(a) * v, Life: 0.6, Color: "#88ddff", Size: 8, Type: ParticleSparkle})
	}
	f.text(c.X, c.Y-20, "❄️ FREEZE!", "#88ddff", 14, 0.8)
	target.SlowedUntil = math.Max(target.SlowedUntil, f.now+3000)
	f.text(target.X, target.Y-15, "🐌 FROZEN!", "#88ddff", 12, 0.8)
	f.damagePlayer(target, 5, c.ID, c.Kind.String())
}

// smoke drops a long-lived cloud near the creature. The cloud only blurs
// players that walk into it.
func (f *frame) smoke(c *Creature, d float64) {
	st := c.AI.Smoke
	if st == nil || d >= smokeRange || f.now < st.NextCloudAt {
		return
	}
	st.NextCloudAt = f.now + smokeCooldown
	x := c.X + f.rng.Centered(60)
	y := c.Y + f.rng.Centered(60)
	f.addItem(&Item{Type: ItemSmokeCloud, X: x, Y: y, SpawnedAt: f.now, Duration: smokeCloudDuration})
	for i := 0; i < 20; i++ {
		f.particle(Particle{
			X: x + f.rng.Centered(80), Y: y + f.rng.Centered(80),
			VX: f.rng.Centered(3), VY: f.rng.Centered(3),
			Life: 2, Color: "#555555", Size: 35 + f.rng.Float64()*30, Type: ParticleSmoke,
		})
	}
	f.text(x, y-30, "💨 SMOKE!", "#888888", 14, 1.5)
}
