package game

import (
	"fmt"
	"math"
)

// Kill streak banners, keyed by streak length.
var streakBanners = map[int]struct{ text, color string }{
	2:  {"DOUBLE KILL", "#ffdd44"},
	3:  {"TRIPLE KILL", "#ffaa00"},
	5:  {"RAMPAGE", "#ff6600"},
	8:  {"UNSTOPPABLE", "#ff2222"},
	12: {"GODLIKE", "#ff00ff"},
}

const (
	pvpKillScore      = 50
	creatureKillScore = 15
	bossKillScore     = 100

	barrelBlastRadius = 100.0
	boomerBlastRadius = 240.0
)

// =============================================================================
// DAMAGE AND KILL ATTRIBUTION
// =============================================================================

// damagePlayer applies damage shield-first and runs death handling when the
// hit is lethal. attackerID may name a player, a creature, or nothing.
func (f *frame) damagePlayer(p *Player, damage float64, attackerID, weapon string) bool {
	if !ApplyDamage(p, damage, f.now, f.respawnDelay()) {
		return false
	}
	f.onPlayerKilled(p, attackerID, weapon)
	return true
}

// dotPlayer applies damage-over-time. A shield soaks the tick's damage but
// never passes the excess to hp in the same frame.
func (f *frame) dotPlayer(p *Player, amount float64) {
	if p.Shield > 0 {
		amount = math.Min(amount, p.Shield)
	}
	f.damagePlayer(p, amount, "", "")
}

func (f *frame) onPlayerKilled(victim *Player, killerID, weapon string) {
	s := f.s
	if victim.Gems > 0 {
		for i := 0; i < victim.Gems; i++ {
			f.addItem(&Item{
				Type:  ItemGem,
				X:     victim.X + f.rng.Centered(35),
				Y:     victim.Y + f.rng.Centered(35),
				Value: 1,
			})
		}
		victim.Gems = 0
	}
	if s.Ball != nil && s.Ball.HeldBy == victim.ID {
		f.releaseBall(victim, 6, 800)
	}
	victim.HasBall = false
	victim.TongueGrabbedBy = ""
	victim.KillStreak = 0
	victim.Reloading = false

	f.burst(victim.X, victim.Y, 15, 8, 0.8, "#aa0000", 5, ParticleBlood)
	f.emit(EventTypePlayerDeath, victim.ID, DeathPayload{
		PlayerID:  victim.ID,
		KillerID:  killerID,
		Deaths:    victim.Deaths,
		RespawnAt: victim.RespawnAt,
	})

	killer := s.Player(killerID)
	if killer == nil || killer == victim {
		return
	}
	killer.Kills++
	killer.Score += pvpKillScore
	if f.mode() == ModeTeamDeathmatch {
		s.TeamScores.add(killer.Team, 1)
	}
	f.creditStreak(killer)
	f.emit(EventTypeKill, killer.ID, KillPayload{
		KillerID:    killer.ID,
		VictimID:    victim.ID,
		Weapon:      weapon,
		KillerKills: killer.Kills,
		Streak:      killer.KillStreak,
	})
	if f.mode() == ModeGunGame {
		f.gunGameCredit(killer)
	}
}

// damageCreature reports whether this hit killed c. A creature dies exactly once.
func (f *frame) damageCreature(c *Creature, damage float64, attackerID, weapon string) bool {
	if c.dead || damage <= 0 {
		return false
	}
	c.HP -= damage
	if c.HP > 0 {
		return false
	}
	c.dead = true
	f.onCreatureKilled(c, attackerID, weapon)
	return true
}

func (f *frame) onCreatureKilled(c *Creature, killerID, weapon string) {
	s := f.s
	s.CreaturesKilledThisWave++
	f.burst(c.X, c.Y, 10, 7, 0.7, "#330000", 4, ParticleBlood)

	for _, p := range s.Players {
		if p.TongueGrabbedBy == c.ID {
			p.TongueGrabbedBy = ""
		}
	}

	if killer := s.Player(killerID); killer != nil {
		killer.Kills++
		if c.IsBoss {
			killer.Score += bossKillScore
		} else {
			killer.Score += creatureKillScore
		}
		f.creditStreak(killer)
		f.emit(EventTypeKill, killer.ID, KillPayload{
			KillerID:    killer.ID,
			VictimID:    c.ID,
			VictimKind:  c.Kind.String(),
			Weapon:      weapon,
			KillerKills: killer.Kills,
			Streak:      killer.KillStreak,
		})
	}

	if c.Kind == CreatureBoomer {
		f.boomerBlast(c)
	}
	f.rollLoot(c)
}

// creditStreak extends or restarts the killer's streak and raises a banner at
// the milestone lengths.
func (f *frame) creditStreak(killer *Player) {
	window := 4000.0
	if f.survival() {
		window = 3000
	}
	if killer.LastKillAt > 0 && f.now-killer.LastKillAt <= window {
		killer.KillStreak++
	} else {
		killer.KillStreak = 1
	}
	killer.LastKillAt = f.now
	if b, ok := streakBanners[killer.KillStreak]; ok {
		f.announce(fmt.Sprintf("%s %s!", killer.Name, b.text), b.color, 2500)
	}
}

// rollLoot drops items where c died. Bosses always drop, bigger creatures
// drop more often.
func (f *frame) rollLoot(c *Creature) {
	size := c.Kind.Stats().Size
	chance := 0.25
	switch {
	case c.IsBoss:
		chance = 1
	case size > 1.2:
		chance = 0.5
	case size > 1:
		chance = 0.35
	}
	if !f.rng.Chance(chance) {
		return
	}
	roll := f.rng.Float64()
	if c.IsBoss {
		f.dropLoot(c.X, c.Y, f.bossLoot(roll))
		bonus := ItemHealth
		if f.rng.Chance(0.5) {
			bonus = ItemAmmo
		}
		f.dropLoot(c.X+20, c.Y, Loot{Type: bonus})
		return
	}
	t := ItemShield
	switch {
	case roll < 0.40:
		t = ItemHealth
	case roll < 0.65:
		t = ItemAmmo
	case roll < 0.75:
		t = ItemSpeedBoost
	case roll < 0.90:
		t = ItemDamageBoost
	}
	f.dropLoot(c.X, c.Y, Loot{Type: t})
}

func (f *frame) bossLoot(roll float64) Loot {
	switch {
	case roll < 0.2:
		return Loot{Type: ItemHealth}
	case roll < 0.35:
		return Loot{Type: ItemShield}
	case f.s.Wave >= 10 && roll < 0.5:
		return Loot{Type: ItemWallKit}
	}
	var pool []WeaponType
	for _, t := range AllWeapons() {
		if t != WeaponPistol && t.Stats().UnlockWave <= f.s.Wave+2 {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return Loot{Type: ItemHealth}
	}
	return Loot{Type: ItemWeapon, Weapon: pool[f.rng.Intn(len(pool))]}
}

// =============================================================================
// FIRING
// =============================================================================

// tryFire pulls the trigger of p's current weapon if it is off cooldown and
// loaded. It reports whether a shot went off.
func (f *frame) tryFire(p *Player) bool {
	w := p.Weapon()
	if p.Reloading || f.now < w.ReadyAt || w.Ammo == 0 {
		return false
	}
	rate := w.FireRate * p.FireRateMult
	if p.FireRateBoostUntil > f.now {
		rate *= 0.5
	}
	w.ReadyAt = f.now + rate
	if !w.Infinite() {
		w.Ammo--
	}

	damage := w.Damage * p.DamageMult
	if p.DamageBoostUntil > f.now {
		damage *= 1.5
	}

	switch {
	case w.Type.IsMelee():
		f.melee(p, w.Type, damage)
	case w.Type == WeaponLandmine:
		f.placeMine(p, damage)
	default:
		f.shoot(p, w, damage)
	}
	return true
}

func (f *frame) shoot(p *Player, w *Weapon, damage float64) {
	life := 0.7
	if w.Type == WeaponRocket || w.Type == WeaponGrenade {
		life = 1.5
	}
	ox := p.X + math.Cos(p.AimRotation)*(PlayerRadius+8)
	oy := p.Y + math.Sin(p.AimRotation)*(PlayerRadius+8)
	for i := 0; i < w.Type.Pellets(); i++ {
		angle := p.AimRotation + f.rng.Centered(w.Spread)
		f.s.Projectiles = append(f.s.Projectiles, &Projectile{
			ID:              f.rng.NewID("proj"),
			OwnerID:         p.ID,
			OwnerTeam:       p.Team,
			X:               ox,
			Y:               oy,
			VX:              math.Cos(angle) * w.Speed,
			VY:              math.Sin(angle) * w.Speed,
			Damage:          damage,
			Weapon:          w.Type,
			Life:            life,
			ExplosionRadius: w.Type.Stats().ExplosionRadius,
		})
	}
	f.particle(Particle{
		X:    p.X + math.Cos(p.AimRotation)*(PlayerRadius+12),
		Y:    p.Y + math.Sin(p.AimRotation)*(PlayerRadius+12),
		Life: 0.1, Color: "#ffcc00", Size: 10, Type: ParticleMuzzleFlash,
	})
}

// melee hits every creature, opposing player and damageable wall inside the
// weapon's arc with one swing.
func (f *frame) melee(p *Player, t WeaponType, damage float64) {
	arc, _ := MeleeArcFor(t)
	knockback := knockbackFor(t)
	color := "#8B4513"
	if t == WeaponChainsaw {
		color = "#ff6600"
	}
	sx := p.X + math.Cos(p.AimRotation)*(PlayerRadius+15)
	sy := p.Y + math.Sin(p.AimRotation)*(PlayerRadius+15)
	for _, da := range []float64{0.5, -0.5} {
		f.particle(Particle{
			X: sx, Y: sy,
			VX: math.Cos(p.AimRotation+da) * 4, VY: math.Sin(p.AimRotation+da) * 4,
			Life: 0.15, Color: color, Size: 15, Type: ParticleDust,
		})
	}

	for _, c := range f.s.Creatures {
		if c.dead || !arc.CheckHit(p.X, p.Y, c.X, c.Y, c.Radius(), p.AimRotation) {
			continue
		}
		a := math.Atan2(c.Y-p.Y, c.X-p.X)
		c.X += math.Cos(a) * knockback
		c.Y += math.Sin(a) * knockback
		f.particle(Particle{X: c.X, Y: c.Y, Life: 0.3, Color: "#550000", Size: 8, Type: ParticleBlood})
		f.damageCreature(c, damage, p.ID, t.String())
	}

	for _, w := range f.s.Walls {
		if !w.Type.Damageable() || w.destroyed {
			continue
		}
		cx, cy := w.Center()
		if !arc.CheckHit(p.X, p.Y, cx, cy, w.W/2, p.AimRotation) {
			continue
		}
		f.particle(Particle{X: cx, Y: cy, VX: f.rng.Centered(4), VY: f.rng.Centered(4), Life: 0.3, Color: color, Size: 5, Type: ParticleDust})
		f.damageWall(w, damage, p.ID)
	}

	if f.survival() {
		return
	}
	for _, e := range f.s.Players {
		if e == p || e.Dead || Allied(e.Team, p.Team) {
			continue
		}
		if !arc.CheckHit(p.X, p.Y, e.X, e.Y, PlayerRadius, p.AimRotation) {
			continue
		}
		a := math.Atan2(e.Y-p.Y, e.X-p.X)
		e.X += math.Cos(a) * knockback * 0.7
		e.Y += math.Sin(a) * knockback * 0.7
		e.X, e.Y = ResolveWallCollision(e.X, e.Y, PlayerRadius, f.s.Walls)
		f.knockBall(e)
		f.damagePlayer(e, damage, p.ID, t.String())
	}
}

// =============================================================================
// EXPLOSIONS
// =============================================================================

// ExplosionFalloff is the linear damage factor at distance d from the center
// of a blast of radius r: 1 at the center, 0 at and beyond the edge.
func ExplosionFalloff(d, r float64) float64 {
	if r <= 0 || d >= r {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return 1 - d/r
}

// ExplosionDamage is base damage scaled by ExplosionFalloff.
func ExplosionDamage(base, d, r float64) float64 {
	return base * ExplosionFalloff(d, r)
}

// blast describes one radial explosion. Damage values are the amounts taken at
// the center.
type blast struct {
	source       string
	ownerID      string
	x, y         float64
	radius       float64
	damage       float64 // creatures
	playerDamage float64
	selfDamage   float64 // the owner, when it is a player
	knockback    float64
}

// weaponBlast is the explosion of a rocket, grenade or landmine.
func weaponBlast(t WeaponType, ownerID string, x, y, damage float64) blast {
	s := t.Stats()
	return blast{
		source:       t.String(),
		ownerID:      ownerID,
		x:            x,
		y:            y,
		radius:       s.ExplosionRadius,
		damage:       damage,
		playerDamage: damage * 0.5,
		selfDamage:   damage * 0.25,
		knockback:    s.Knockback,
	}
}

// explode resolves a blast against every creature, player and damageable wall
// in range. Explosions ignore teams.
func (f *frame) explode(b blast) {
	s := f.s
	f.burst(b.x, b.y, 20, 12, 0.8, "#ff6600", 6, ParticleExplosion)
	f.emit(EventTypeExplosion, b.ownerID, ExplosionPayload{
		Source:  b.source,
		OwnerID: b.ownerID,
		X:       b.x,
		Y:       b.y,
		Radius:  b.radius,
		Damage:  b.damage,
	})

	for _, c := range s.Creatures {
		if c.dead {
			continue
		}
		d := dist(b.x, b.y, c.X, c.Y)
		fo := ExplosionFalloff(d, b.radius)
		if fo <= 0 {
			continue
		}
		if b.knockback > 0 {
			a := math.Atan2(c.Y-b.y, c.X-b.x)
			c.X, c.Y = ResolveWallCollision(c.X+math.Cos(a)*b.knockback*fo, c.Y+math.Sin(a)*b.knockback*fo, c.Radius(), s.Walls)
		}
		f.damageCreature(c, b.damage*fo, b.ownerID, b.source)
	}

	for _, p := range s.Players {
		if p.Dead {
			continue
		}
		d := dist(b.x, b.y, p.X, p.Y)
		fo := ExplosionFalloff(d, b.radius)
		if fo <= 0 {
			continue
		}
		dmg := b.playerDamage
		if p.ID == b.ownerID {
			dmg = b.selfDamage
		}
		if b.knockback > 0 {
			a := math.Atan2(p.Y-b.y, p.X-b.x)
			p.X, p.Y = ResolveWallCollision(p.X+math.Cos(a)*b.knockback*fo, p.Y+math.Sin(a)*b.knockback*fo, PlayerRadius, s.Walls)
		}
		f.damagePlayer(p, dmg*fo, b.ownerID, b.source)
	}

	for _, w := range s.Walls {
		if !w.Type.Damageable() || w.destroyed {
			continue
		}
		cx, cy := w.Center()
		if dist(b.x, b.y, cx, cy) < b.radius {
			f.damageWall(w, b.damage*0.5, b.ownerID)
		}
	}
}

// damageWall chips a damageable wall. A broken crate drops its loot and a
// broken barrel explodes, which can chain into neighbouring barrels.
func (f *frame) damageWall(w *Wall, damage float64, attackerID string) {
	if !w.Type.Damageable() || w.destroyed || damage <= 0 {
		return
	}
	w.HP -= damage
	if w.HP > 0 {
		return
	}
	w.destroyed = true
	cx, cy := w.Center()
	switch w.Type {
	case WallCrate:
		if w.Drop != nil {
			f.dropLoot(cx, cy, *w.Drop)
		}
		f.burst(cx, cy, 8, 8, 0.6, "#8B4513", 4, ParticleDust)
	case WallBarrel:
		f.burst(cx, cy, 25, 14, 0.9, "#ff4400", 5, ParticleExplosion)
		f.explode(blast{
			source:       "BARREL",
			ownerID:      attackerID,
			x:            cx,
			y:            cy,
			radius:       barrelBlastRadius,
			damage:       60,
			playerDamage: 50,
			selfDamage:   50,
		})
	default:
		f.burst(cx, cy, 10, 6, 0.6, "#777777", 4, ParticleDust)
	}
}

// boomerBlast slimes everyone near a dead boomer and leaves a puddle. The
// damage falls to 30% at the edge instead of zero.
func (f *frame) boomerBlast(c *Creature) {
	f.burst(c.X, c.Y, 30, 12, 1.2, "#88ff44", 8, ParticleExplosion)
	f.text(c.X, c.Y-20, "💥 SPLAT!", "#88ff44", 16, 1)
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		d := dist(p.X, p.Y, c.X, c.Y)
		if d >= boomerBlastRadius {
			continue
		}
		p.SlowedUntil = math.Max(p.SlowedUntil, f.now+2500)
		p.SlimeUntil = math.Max(p.SlimeUntil, f.now+4000)
		f.text(p.X, p.Y-15, "🐌 SLIMED!", "#88ff44", 12, 0.8)
		f.damagePlayer(p, 15*(1-0.7*d/boomerBlastRadius), c.ID, c.Kind.String())
	}
	f.addItem(&Item{
		Type:      ItemVenomPuddle,
		X:         c.X,
		Y:         c.Y,
		SpawnedAt: f.now,
		Duration:  slimePuddleDuration,
		Value:     5,
	})
}
