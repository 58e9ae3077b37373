package game

import (
	"math"
	"slices"

	"zombie-arena/internal/game/spatial"
)

const (
	projectileDecay = 0.016 // life lost per frame
	grenadeFriction = 0.98
	grenadeBounce   = 0.7
	grenadeEdge     = 20.0
	grenadeWallPad  = 10.0

	// maxCreatureReach bounds the broad-phase query: the largest creature
	// radius plus the explosive contact margin.
	maxCreatureReach = CreatureRadius*2.8 + 10
	// knockbackSlack covers entities shoved out of their cell earlier in the
	// same pass.
	knockbackSlack = 60.0
)

// updateProjectiles moves every projectile and resolves what it hits. Spent
// projectiles are removed.
func (f *frame) updateProjectiles() {
	s := f.s
	f.grid = nil
	kept := s.Projectiles[:0]
	for _, b := range s.Projectiles {
		if f.advanceProjectile(b) {
			kept = append(kept, b)
		}
	}
	clear(s.Projectiles[len(kept):])
	s.Projectiles = kept
	f.grid = nil
}

// entityGrid returns the broad-phase grid over the living creatures and
// players, building it on first use.
func (f *frame) entityGrid() *spatial.Grid {
	if f.grid != nil {
		return f.grid
	}
	g := f.sim.grid
	g.Reset()
	for i, c := range f.s.Creatures {
		if !c.dead {
			g.Insert(spatial.KindCreature, i, c.X, c.Y)
		}
	}
	for i, p := range f.s.Players {
		if !p.Dead {
			g.Insert(spatial.KindPlayer, i, p.X, p.Y)
		}
	}
	f.grid = g
	return g
}

// advanceProjectile reports whether b is still in flight.
func (f *frame) advanceProjectile(b *Projectile) bool {
	px, py := b.X, b.Y
	b.X += b.VX * f.dt
	b.Y += b.VY * f.dt
	b.Life -= projectileDecay * f.dt

	grenade := b.Weapon == WeaponGrenade && !b.Hostile
	if grenade {
		f.bounceGrenade(b, px, py)
	}

	if b.Life <= 0 || b.X < 0 || b.X > MapSize || b.Y < 0 || b.Y > MapSize {
		f.detonate(b)
		return false
	}

	if !grenade {
		if w := f.projectileWall(b.X, b.Y); w != nil {
			if b.ExplosionRadius > 0 {
				f.detonate(b)
			} else {
				f.damageWall(w, b.Damage, b.OwnerID)
				f.particle(Particle{X: b.X, Y: b.Y, VX: f.rng.Centered(3), VY: f.rng.Centered(3), Life: 0.2, Color: "#aaaaaa", Size: 3, Type: ParticleDust})
			}
			return false
		}
	}

	if !b.Hostile && f.hitCreature(b) {
		return false
	}
	return !f.hitPlayer(b)
}

// detonate explodes b if it carries a blast radius.
func (f *frame) detonate(b *Projectile) {
	if b.ExplosionRadius <= 0 {
		return
	}
	bl := weaponBlast(b.Weapon, b.OwnerID, b.X, b.Y, b.Damage)
	bl.radius = b.ExplosionRadius
	f.explode(bl)
}

func (f *frame) projectileWall(x, y float64) *Wall {
	for _, w := range f.s.Walls {
		if w.Type.BlocksProjectiles() && !w.destroyed && pointInRect(w, x, y, 0) {
			return w
		}
	}
	return nil
}

// bounceGrenade applies rolling friction and reflects a grenade off the
// arena edge and blocking walls. The side of the wall is taken from the
// previous position.
func (f *frame) bounceGrenade(b *Projectile, px, py float64) {
	damp := math.Pow(grenadeFriction, f.dt)
	b.VX *= damp
	b.VY *= damp
	if b.X < grenadeEdge || b.X > MapSize-grenadeEdge {
		b.VX *= -grenadeBounce
		b.X = clamp(b.X, grenadeEdge, MapSize-grenadeEdge)
	}
	if b.Y < grenadeEdge || b.Y > MapSize-grenadeEdge {
		b.VY *= -grenadeBounce
		b.Y = clamp(b.Y, grenadeEdge, MapSize-grenadeEdge)
	}
	for _, w := range f.s.Walls {
		if !w.Type.BlocksProjectiles() || w.destroyed || !pointInRect(w, b.X, b.Y, grenadeWallPad) {
			continue
		}
		if px <= w.X-grenadeWallPad || px >= w.X+w.W+grenadeWallPad {
			b.VX *= -grenadeBounce
			b.X = px
		} else {
			b.VY *= -grenadeBounce
			b.Y = py
		}
		break
	}
}

// hitCreature resolves a player projectile against the creatures near it,
// visited in creature order.
func (f *frame) hitCreature(b *Projectile) bool {
	near := f.entityGrid().Near(spatial.KindCreature, b.X, b.Y, maxCreatureReach+knockbackSlack)
	if len(near) == 0 {
		return false
	}
	for _, ref := range slices.Clone(near) {
		c := f.s.Creatures[ref.Index]
		if c.dead {
			continue
		}
		d := dist(b.X, b.Y, c.X, c.Y)
		if b.ExplosionRadius > 0 {
			if d < c.Radius()+10 {
				f.detonate(b)
				return true
			}
			continue
		}
		if d >= c.Radius() {
			continue
		}
		a := math.Atan2(b.VY, b.VX)
		k := knockbackFor(b.Weapon)
		c.X, c.Y = ResolveWallCollision(c.X+math.Cos(a)*k, c.Y+math.Sin(a)*k, c.Radius(), f.s.Walls)
		f.particle(Particle{X: b.X, Y: b.Y, VX: f.rng.Centered(3), VY: f.rng.Centered(3), Life: 0.4, Color: "#550000", Size: 5, Type: ParticleBlood})
		f.damageCreature(c, b.Damage, b.OwnerID, b.Weapon.String())
		return true
	}
	return false
}

// hitPlayer resolves b against players. Creature projectiles hit anyone;
// player projectiles skip the shooter, teammates, and everybody in co-op
// survival.
func (f *frame) hitPlayer(b *Projectile) bool {
	for _, ref := range slices.Clone(f.entityGrid().Near(spatial.KindPlayer, b.X, b.Y, PlayerRadius+knockbackSlack)) {
		p := f.s.Players[ref.Index]
		if p.Dead {
			continue
		}
		if !b.Hostile && (f.survival() || p.ID == b.OwnerID || Allied(p.Team, b.OwnerTeam)) {
			continue
		}
		if dist(p.X, p.Y, b.X, b.Y) >= PlayerRadius {
			continue
		}
		if b.ExplosionRadius > 0 {
			f.detonate(b)
			return true
		}
		a := math.Atan2(b.VY, b.VX)
		k := knockbackFor(b.Weapon) * 0.7
		p.X, p.Y = ResolveWallCollision(p.X+math.Cos(a)*k, p.Y+math.Sin(a)*k, PlayerRadius, f.s.Walls)
		f.knockBall(p)
		if b.Venom {
			f.burst(p.X, p.Y, 6, 4, 0.5, "#cc44ff", 6, ParticleSparkle)
		}
		f.damagePlayer(p, b.Damage, b.OwnerID, b.Weapon.String())
		return true
	}
	return false
}
