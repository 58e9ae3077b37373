package game

import (
	"math"
)

const (
	burnDamage  = 0.15 // hp per frame
	slimeDamage = 0.04

	buildDistance  = 50.0
	buildClearance = 30.0
	builtWallSize  = 40.0
	builtWallHP    = 200.0
	buildMinWave   = 10
)

// updatePlayers applies every player's input for this tick: respawn timers,
// reloads, movement, aim, weapon switching, wall building, firing and status
// damage.
func (f *frame) updatePlayers(inputs map[string]Input) {
	for _, p := range f.s.Players {
		if p.Dead {
			if f.now >= p.RespawnAt {
				f.respawnPlayer(p)
			}
			continue
		}
		f.finishReload(p)

		var in Input
		if p.IsBot {
			in = f.botInput(p)
		} else {
			in = inputs[p.ID]
		}

		f.movePlayer(p, in)
		p.InBush = onTerrain(f.s.Walls, WallBush, p.X, p.Y, 0)
		f.aim(p, in)
		f.carryBall(p)

		if in.SwitchWeapon != nil && len(p.Weapons) > 0 {
			n := len(p.Weapons)
			p.CurrentWeapon = ((*in.SwitchWeapon % n) + n) % n
			p.Reloading = false
		}
		if in.BuildWall {
			f.buildWall(p)
		}
		if in.Fire && f.now >= p.StunnedUntil {
			if !f.kickBall(p) {
				f.tryFire(p)
			}
		}

		if p.BurningUntil > f.now {
			f.dotPlayer(p, burnDamage*f.dt)
		}
		if !p.Dead && p.SlimeUntil > f.now {
			f.dotPlayer(p, slimeDamage*f.dt)
		}
		if p.Dead {
			continue
		}
		f.startReload(p)
	}
}

func (f *frame) respawnPlayer(p *Player) {
	p.respawn(f.s.Walls, f.rng)
	if f.mode() == ModeGunGame {
		p.Weapons = gunGameLoadout(f.s.GunGameOrder, p.GunGameRank)
		p.CurrentWeapon = 0
	}
	f.text(p.X, p.Y-30, "RESPAWN!", "#44ff44", 14, 1)
	f.emit(EventTypeRespawn, p.ID, RespawnPayload{PlayerID: p.ID, SpawnX: p.X, SpawnY: p.Y})
}

// finishReload refills the current weapon once its reload time has passed.
func (f *frame) finishReload(p *Player) {
	if !p.Reloading {
		return
	}
	w := p.Weapon()
	if f.now-p.ReloadStartedAt < w.ReloadTime {
		return
	}
	w.MaxAmmo = scaledMaxAmmo(w.Type, p.AmmoMult)
	w.Ammo = w.MaxAmmo
	p.Reloading = false
}

// startReload enters the reloading state when the current weapon runs dry.
func (f *frame) startReload(p *Player) {
	w := p.Weapon()
	if p.Reloading || w.Ammo != 0 || w.ReloadTime <= 0 {
		return
	}
	p.Reloading = true
	p.ReloadStartedAt = f.now
	f.text(p.X, p.Y-30, "RELOADING...", "#ffaa00", 12, 1)
}

// movePlayer integrates the movement flags. Stunned and tongue-grabbed
// players stand still.
func (f *frame) movePlayer(p *Player, in Input) {
	p.IsMoving = false
	if f.now < p.StunnedUntil || p.TongueGrabbedBy != "" {
		return
	}
	var dx, dy float64
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	if dx == 0 && dy == 0 {
		return
	}

	speed := PlayerSpeed
	if p.SpeedBoostUntil > f.now {
		speed *= 1.2
	}
	if p.SlowedUntil > f.now {
		speed *= 0.6
	}
	if onTerrain(f.s.Walls, WallSwamp, p.X, p.Y, PlayerRadius) {
		speed *= 0.6
	}
	if p.IsBot && f.mode() == ModeBrawlBall {
		speed *= 0.85
	}
	l := math.Hypot(dx, dy)
	step := speed * f.dt / l
	p.X, p.Y = ResolveWallCollision(p.X+dx*step, p.Y+dy*step, PlayerRadius, f.s.Walls)
	p.Rotation = lerpAngle(p.Rotation, math.Atan2(dy, dx), math.Min(1, 0.15*f.dt))
	p.IsMoving = true
}

// aim turns toward an absolute aim point, or snaps to a joystick vector once
// it leaves the dead zone.
func (f *frame) aim(p *Player, in Input) {
	if in.MouseX != nil && in.MouseY != nil {
		target := math.Atan2(*in.MouseY-p.Y, *in.MouseX-p.X)
		p.AimRotation = lerpAngle(p.AimRotation, target, math.Min(1, 0.25*f.dt))
	}
	if in.AimX != nil && in.AimY != nil && (math.Abs(*in.AimX) > 10 || math.Abs(*in.AimY) > 10) {
		p.AimRotation = math.Atan2(*in.AimY, *in.AimX)
	}
}

// buildWall spends a wall kit on a PLAYER_BUILT block in front of p.
func (f *frame) buildWall(p *Player) {
	s := f.s
	if !f.survival() || s.Wave < buildMinWave || p.WallKits <= 0 {
		return
	}
	bx := p.X + math.Cos(p.AimRotation)*buildDistance
	by := p.Y + math.Sin(p.AimRotation)*buildDistance
	for _, w := range s.Walls {
		if !w.destroyed && pointInRect(w, bx, by, buildClearance) {
			return
		}
	}
	half := builtWallSize / 2
	w := damageable(bx-half, by-half, builtWallSize, builtWallSize, WallPlayerBuilt, builtWallHP)
	w.OwnerID = p.ID
	s.Walls = append(s.Walls, w)
	p.WallKits--
	f.text(bx, by-25, "🧱 Built!", "#8866aa", 14, 1)
}
