package game

import "math"

// WeaponType identifies a weapon. Values index weaponTable.
type WeaponType uint8

const (
	WeaponPistol WeaponType = iota
	WeaponShotgun
	WeaponRifle
	WeaponMachineGun
	WeaponBat
	WeaponChainsaw
	WeaponSniper
	WeaponMinigun
	WeaponGrenade
	WeaponFlamethrower
	WeaponLandmine
	WeaponRocket
	WeaponLaser
	weaponTypeCount
)

var weaponNames = []string{
	"PISTOL", "SHOTGUN", "RIFLE", "MACHINE_GUN", "BAT", "CHAINSAW", "SNIPER",
	"MINIGUN", "GRENADE", "FLAMETHROWER", "LANDMINE", "ROCKET", "LASER",
}

func (w WeaponType) String() string { return enumName(weaponNames, int(w)) }

// ParseWeapon converts a weapon name such as "MACHINE_GUN" to a WeaponType.
func ParseWeapon(s string) (WeaponType, error) {
	i, err := parseEnum("weapon", s, weaponNames)
	return WeaponType(i), err
}

func (w WeaponType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *WeaponType) UnmarshalText(b []byte) error {
	v, err := ParseWeapon(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// AllWeapons lists every weapon type in table order.
func AllWeapons() []WeaponType {
	out := make([]WeaponType, weaponTypeCount)
	for i := range out {
		out[i] = WeaponType(i)
	}
	return out
}

// WeaponStats is the static stat line of a weapon type.
type WeaponStats struct {
	Name            string  `json:"name"`
	MaxAmmo         int     `json:"maxAmmo"`  // -1 = infinite
	FireRate        float64 `json:"fireRate"` // ms between shots
	Damage          float64 `json:"damage"`
	Speed           float64 `json:"speed"`
	Spread          float64 `json:"spread"` // radians, full width
	UnlockWave      int     `json:"unlockWave"`
	ExplosionRadius float64 `json:"explosionRadius,omitempty"`
	ReloadTime      float64 `json:"reloadTime"` // ms, 0 = never reloads
	Knockback       float64 `json:"knockback"`
}

var weaponTable = [weaponTypeCount]WeaponStats{
	WeaponPistol:       {Name: "Pistol", MaxAmmo: -1, FireRate: 350, Damage: 20, Speed: 16, Spread: 0.02, UnlockWave: 1, Knockback: 3},
	WeaponShotgun:      {Name: "Shotgun", MaxAmmo: 24, FireRate: 800, Damage: 15, Speed: 14, Spread: 0.5, UnlockWave: 1, ReloadTime: 2000, Knockback: 8},
	WeaponRifle:        {Name: "Rifle", MaxAmmo: 45, FireRate: 180, Damage: 28, Speed: 22, Spread: 0.01, UnlockWave: 2, ReloadTime: 1500, Knockback: 4},
	WeaponMachineGun:   {Name: "M-Gun", MaxAmmo: 120, FireRate: 120, Damage: 18, Speed: 18, Spread: 0.06, UnlockWave: 3, ReloadTime: 2500, Knockback: 2},
	WeaponBat:          {Name: "Bat", MaxAmmo: -1, FireRate: 700, Damage: 50, UnlockWave: 4, Knockback: 45},
	WeaponChainsaw:     {Name: "Chainsaw", MaxAmmo: -1, FireRate: 200, Damage: 40, Spread: 0.4, UnlockWave: 5, Knockback: 3},
	WeaponSniper:       {Name: "Sniper", MaxAmmo: 12, FireRate: 1000, Damage: 110, Speed: 30, UnlockWave: 6, ReloadTime: 2200, Knockback: 12},
	WeaponMinigun:      {Name: "Minigun", MaxAmmo: 200, FireRate: 100, Damage: 20, Speed: 20, Spread: 0.08, UnlockWave: 7, ReloadTime: 3500, Knockback: 3},
	WeaponGrenade:      {Name: "Grenade", MaxAmmo: 12, FireRate: 1000, Damage: 130, Speed: 10, UnlockWave: 8, ExplosionRadius: 150, ReloadTime: 1000, Knockback: 20},
	WeaponFlamethrower: {Name: "Flame", MaxAmmo: 80, FireRate: 120, Damage: 12, Speed: 12, Spread: 0.35, UnlockWave: 9, ReloadTime: 2000, Knockback: 1},
	WeaponLandmine:     {Name: "Mine", MaxAmmo: 6, FireRate: 1200, Damage: 160, UnlockWave: 10, ExplosionRadius: 100, ReloadTime: 1500, Knockback: 30},
	WeaponRocket:       {Name: "Rocket", MaxAmmo: 10, FireRate: 1200, Damage: 220, Speed: 16, UnlockWave: 12, ExplosionRadius: 160, ReloadTime: 2500, Knockback: 15},
	WeaponLaser:        {Name: "Laser", MaxAmmo: 30, FireRate: 200, Damage: 50, Speed: 40, UnlockWave: 15, ReloadTime: 1800, Knockback: 6},
}

// Stats returns the static stat line of w.
func (w WeaponType) Stats() WeaponStats {
	if w >= weaponTypeCount {
		return weaponTable[WeaponPistol]
	}
	return weaponTable[w]
}

// IsMelee reports whether w strikes directly instead of firing projectiles.
func (w WeaponType) IsMelee() bool { return w == WeaponBat || w == WeaponChainsaw }

// Pellets is the number of projectiles one trigger pull emits.
func (w WeaponType) Pellets() int {
	switch w {
	case WeaponShotgun:
		return 6
	case WeaponFlamethrower:
		return 3
	default:
		return 1
	}
}

// Weapon is one inventory slot. Cooldown is tracked as an absolute ready time.
type Weapon struct {
	Type       WeaponType `json:"type"`
	Ammo       int        `json:"ammo"`    // -1 = infinite
	MaxAmmo    int        `json:"maxAmmo"` // scaled by the owner's ammo multiplier
	FireRate   float64    `json:"fireRate"`
	Damage     float64    `json:"damage"`
	Speed      float64    `json:"speed"`
	Spread     float64    `json:"spread"`
	ReadyAt    float64    `json:"readyAt"`
	ReloadTime float64    `json:"reloadTime"`
	UnlockWave int        `json:"unlockWave"`
}

// NewWeapon builds a weapon of type t with full base ammo.
func NewWeapon(t WeaponType) Weapon {
	s := t.Stats()
	return Weapon{
		Type:       t,
		Ammo:       s.MaxAmmo,
		MaxAmmo:    s.MaxAmmo,
		FireRate:   s.FireRate,
		Damage:     s.Damage,
		Speed:      s.Speed,
		Spread:     s.Spread,
		ReloadTime: s.ReloadTime,
		UnlockWave: s.UnlockWave,
	}
}

// Infinite reports whether the weapon never runs dry.
func (w *Weapon) Infinite() bool { return w.Ammo < 0 }

// scaledMaxAmmo returns round(base max ammo * mult), or -1 for infinite weapons.
func scaledMaxAmmo(t WeaponType, mult float64) int {
	base := t.Stats().MaxAmmo
	if base < 0 {
		return -1
	}
	if mult <= 0 {
		mult = 1
	}
	return int(math.Round(float64(base) * mult))
}

// knockbackFor returns the impulse a hit from t applies.
func knockbackFor(t WeaponType) float64 {
	k := t.Stats().Knockback
	if k == 0 {
		return 3
	}
	return k
}
