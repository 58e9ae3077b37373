package game

import (
	"math"
	"testing"
)

// TestApplyDamageShieldInvariant checks shield-first absorption for a grid of
// shield, hp and damage values.
func TestApplyDamageShieldInvariant(t *testing.T) {
	tests := []struct {
		name       string
		shield, hp float64
		damage     float64
		wantShield float64
		wantHP     float64
		wantDead   bool
	}{
		{"shield absorbs all", 30, 100, 20, 10, 100, false},
		{"shield exactly consumed", 30, 100, 30, 0, 100, false},
		{"overflow into hp", 30, 100, 50, 0, 80, false},
		{"no shield", 0, 100, 40, 0, 60, false},
		{"lethal through shield", 10, 20, 40, 0, -10, true},
		{"exactly lethal", 0, 40, 40, 0, 0, true},
		{"zero damage", 5, 50, 0, 5, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{HP: tt.hp, MaxHP: 100, Shield: tt.shield, MaxShield: MaxShield}
			killed := ApplyDamage(p, tt.damage, 1000, 2500)

			if p.Shield != tt.wantShield {
				t.Errorf("Expected shield %v, got %v", tt.wantShield, p.Shield)
			}
			if p.HP != tt.wantHP {
				t.Errorf("Expected hp %v, got %v", tt.wantHP, p.HP)
			}
			if killed != tt.wantDead || p.Dead != tt.wantDead {
				t.Errorf("Expected dead %v, got killed=%v dead=%v", tt.wantDead, killed, p.Dead)
			}
			if tt.wantDead && p.RespawnAt != 3500 {
				t.Errorf("Expected respawnAt 3500, got %v", p.RespawnAt)
			}
		})
	}
}

// TestSequentialHitsKillOnce takes a 100 hp player through three 40 damage hits.
func TestSequentialHitsKillOnce(t *testing.T) {
	p := &Player{HP: 100, MaxHP: 100}
	want := []float64{60, 20, -20}
	for i, hp := range want {
		killed := ApplyDamage(p, 40, 0, 2500)
		if p.HP != hp {
			t.Fatalf("hit %d: Expected hp %v, got %v", i+1, hp, p.HP)
		}
		if killed != (i == 2) {
			t.Errorf("hit %d: killed = %v", i+1, killed)
		}
	}
	if !p.Dead || p.Deaths != 1 {
		t.Errorf("Expected dead with 1 death, got dead=%v deaths=%d", p.Dead, p.Deaths)
	}
	if ApplyDamage(p, 40, 0, 2500) || p.Deaths != 1 || p.HP != -20 {
		t.Errorf("dead player took damage again: hp=%v deaths=%d", p.HP, p.Deaths)
	}
}

// TestLethalHitIsClampedInSnapshot checks that a tick never surfaces negative hp.
func TestLethalHitIsClampedInSnapshot(t *testing.T) {
	s, ids := newTestMatch(t, "clamp-room", ModeTeamDeathmatch, "alice")
	f := newTestFrame(s, 0)
	p := s.Player(ids[0])
	p.HP, p.Shield = 100, 0
	for i := 0; i < 3; i++ {
		f.damagePlayer(p, 40, "", "")
	}
	f.finalize()
	if p.HP != 0 || !p.Dead || p.Deaths != 1 {
		t.Errorf("Expected hp 0, dead, 1 death; got hp=%v dead=%v deaths=%d", p.HP, p.Dead, p.Deaths)
	}
	if countEvents(s, EventTypePlayerDeath) != 1 {
		t.Errorf("Expected one player_death event, got %d", countEvents(s, EventTypePlayerDeath))
	}
}

// TestNewPlayerDifficulty checks the difficulty scaling of a fresh player.
func TestNewPlayerDifficulty(t *testing.T) {
	tests := []struct {
		d      Difficulty
		wantHP float64
		wantDM float64
	}{
		{DifficultyEasy, 200, 2.0},
		{DifficultyNormal, 150, 1.5},
		{DifficultyHard, 125, 1.25},
		{DifficultyNightmare, 100, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			p := NewPlayer("p1", "Test", nil, TeamNone, 0, false, tt.d, NewRand(1))
			if p.HP != tt.wantHP || p.MaxHP != tt.wantHP {
				t.Errorf("Expected hp %v, got %v/%v", tt.wantHP, p.HP, p.MaxHP)
			}
			if p.DamageMult != tt.wantDM {
				t.Errorf("Expected damage mult %v, got %v", tt.wantDM, p.DamageMult)
			}
			if w := p.Weapon(); w.Type != WeaponPistol || !w.Infinite() {
				t.Errorf("Expected an infinite pistol, got %v ammo %d", w.Type, w.Ammo)
			}
		})
	}
}

// TestLevelUp checks the wave progression bonuses.
func TestLevelUp(t *testing.T) {
	p := NewPlayer("p1", "Test", nil, TeamNone, 0, false, DifficultyNightmare, NewRand(1))
	rifle := NewWeapon(WeaponRifle)
	rifle.Ammo = 10
	p.Weapons = append(p.Weapons, rifle)
	p.HP = 50

	p.levelUp(3, DifficultyNightmare)

	if p.Level != 3 {
		t.Errorf("Expected level 3, got %d", p.Level)
	}
	if p.MaxHP != 120 {
		t.Errorf("Expected maxHp 120, got %v", p.MaxHP)
	}
	if p.HP != 70 {
		t.Errorf("Expected hp 70, got %v", p.HP)
	}
	if math.Abs(p.FireRateMult-1/1.1) > 1e-9 {
		t.Errorf("Expected fire rate mult %v, got %v", 1/1.1, p.FireRateMult)
	}
	if got := p.Weapons[1].Ammo; got != 25 {
		t.Errorf("Expected rifle ammo 25, got %d", got)
	}
	if p.Weapons[0].Ammo != -1 {
		t.Errorf("pistol ammo changed to %d", p.Weapons[0].Ammo)
	}
}

// TestAmmoMaxDoesNotCompound applies repeated ammo pickups and level-ups at
// a raised ammo multiplier; the max stays table x multiplier.
func TestAmmoMaxDoesNotCompound(t *testing.T) {
	s, ids := newTestMatch(t, "ammo-room", ModeZombieSurvival, "alice")
	p := s.Player(ids[0])
	shotgun := NewWeapon(WeaponShotgun)
	shotgun.Ammo = 0
	p.Weapons = append(p.Weapons, shotgun)
	p.AmmoMult = 1.4
	f := newTestFrame(s, 1000)

	want := scaledMaxAmmo(WeaponShotgun, 1.4)
	if want != 34 {
		t.Fatalf("Expected scaled shotgun max 34, got %d", want)
	}
	for i := 1; i <= 4; i++ {
		f.applyPickup(p, &Item{Type: ItemAmmo, X: p.X, Y: p.Y})
		w := p.Weapons[1]
		if w.MaxAmmo != want {
			t.Errorf("pickup %d: Expected max ammo %d, got %d", i, want, w.MaxAmmo)
		}
		if w.Ammo > w.MaxAmmo {
			t.Errorf("pickup %d: Expected ammo capped at %d, got %d", i, w.MaxAmmo, w.Ammo)
		}
	}

	for i := 0; i < 3; i++ {
		p.levelUp(5, DifficultyNightmare)
	}
	if got := p.Weapons[1].MaxAmmo; got != want {
		t.Errorf("Expected max ammo %d after level-ups, got %d", want, got)
	}
	if got := p.Weapons[1].Ammo; got != want {
		t.Errorf("Expected a full shotgun, got %d", got)
	}
}

// TestReloadCycle drains a rifle and checks the reload state machine.
func TestReloadCycle(t *testing.T) {
	s, ids := newTestMatch(t, "reload-room", ModeTeamDeathmatch, "alice")
	p := s.Player(ids[0])
	rifle := NewWeapon(WeaponRifle)
	rifle.Ammo = 0
	p.Weapons = []Weapon{rifle}
	p.CurrentWeapon = 0

	f := newTestFrame(s, 100)
	f.startReload(p)
	if !p.Reloading || p.ReloadStartedAt != 100 {
		t.Fatalf("Expected reloading from 100, got %v at %v", p.Reloading, p.ReloadStartedAt)
	}
	if f.tryFire(p) {
		t.Error("fired while reloading")
	}

	f.now = 100 + rifle.ReloadTime - 1
	f.finishReload(p)
	if !p.Reloading {
		t.Error("reload finished early")
	}
	f.now = 100 + rifle.ReloadTime
	f.finishReload(p)
	if p.Reloading || p.Weapon().Ammo != 45 {
		t.Errorf("Expected full rifle, got reloading=%v ammo=%d", p.Reloading, p.Weapon().Ammo)
	}
}
