package game

import "math"

// GenerateMap builds the terrain of a room. It is a pure function of
// (roomID, mode): the RNG is seeded from the room id, so every peer derives
// the same layout.
func GenerateMap(roomID string, mode GameMode) []*Wall {
	rng := NewRand(SeedFromString(roomID))
	walls := []*Wall{
		{X: -50, Y: -50, W: MapSize + 100, H: 50, Type: WallSolid},
		{X: -50, Y: MapSize, W: MapSize + 100, H: 50, Type: WallSolid},
		{X: -50, Y: 0, W: 50, H: MapSize, Type: WallSolid},
		{X: MapSize, Y: 0, W: 50, H: MapSize, Type: WallSolid},
	}

	switch mode {
	case ModeBrawlBall:
		walls = brawlBallLayout(walls, rng)
	case ModeGemGrab:
		walls = gemGrabLayout(walls, rng)
	case ModeTeamDeathmatch:
		walls = deathmatchLayout(walls, rng)
	default:
		walls = survivalLayout(walls, rng, mode == ModeGunGame)
	}
	return walls
}

func crate(x, y, size, hp float64, drop Loot) *Wall {
	return &Wall{X: x, Y: y, W: size, H: size, Type: WallCrate, HP: hp, MaxHP: hp, Drop: &drop}
}

func damageable(x, y, w, h float64, t WallType, hp float64) *Wall {
	return &Wall{X: x, Y: y, W: w, H: h, Type: t, HP: hp, MaxHP: hp}
}

func brawlBallLayout(walls []*Wall, rng *Rand) []*Wall {
	const cx, cy = MapSize / 2, MapSize / 2
	// goal mouths are the 200px gaps left between these pairs
	walls = append(walls,
		&Wall{X: 0, Y: 0, W: 50, H: cy - 100, Type: WallSolid},
		&Wall{X: 0, Y: cy + 100, W: 50, H: cy - 100, Type: WallSolid},
		&Wall{X: MapSize - 50, Y: 0, W: 50, H: cy - 100, Type: WallSolid},
		&Wall{X: MapSize - 50, Y: cy + 100, W: 50, H: cy - 100, Type: WallSolid},
		damageable(cx-30, cy-200, 60, 30, WallDestructible, 80),
		damageable(cx-30, cy+170, 60, 30, WallDestructible, 80),
		&Wall{X: cx - 180, Y: cy - 40, W: 60, H: 80, Type: WallBush},
		&Wall{X: cx + 120, Y: cy - 40, W: 60, H: 80, Type: WallBush},
	)
	for _, t := range []ItemType{ItemHealth, ItemSpeedBoost, ItemHealth} {
		x := rng.Float64()*(MapSize-200) + 100
		y := rng.Float64()*(MapSize-200) + 100
		walls = append(walls, crate(x, y, 26, 30, Loot{Type: t}))
	}
	return walls
}

func gemGrabLayout(walls []*Wall, rng *Rand) []*Wall {
	const cx, cy = MapSize / 2, MapSize / 2
	for i := 0; i < 6; i++ {
		a := float64(i) / 6 * math.Pi * 2
		walls = append(walls, damageable(cx+math.Cos(a)*280-35, cy+math.Sin(a)*280-35, 70, 70, WallDestructible, 100))
	}
	for i := 0; i < 4; i++ {
		a := float64(i)/4*math.Pi*2 + 0.4
		walls = append(walls, &Wall{X: cx + math.Cos(a)*180 - 40, Y: cy + math.Sin(a)*180 - 40, W: 80, H: 80, Type: WallBush})
	}
	for _, t := range []ItemType{ItemHealth, ItemAmmo, ItemSpeedBoost, ItemDamageBoost} {
		x := rng.Float64()*(MapSize-200) + 100
		y := rng.Float64()*(MapSize-200) + 100
		walls = append(walls, crate(x, y, 26, 30, Loot{Type: t}))
	}
	return walls
}

var deathmatchDrops = []Loot{
	{Type: ItemHealth}, {Type: ItemHealth}, {Type: ItemAmmo}, {Type: ItemAmmo},
	{Type: ItemWeapon, Weapon: WeaponShotgun}, {Type: ItemWeapon, Weapon: WeaponRifle},
	{Type: ItemWeapon, Weapon: WeaponMachineGun}, {Type: ItemWeapon, Weapon: WeaponBat},
	{Type: ItemSpeedBoost}, {Type: ItemDamageBoost},
}

func deathmatchLayout(walls []*Wall, rng *Rand) []*Wall {
	n := 6 + rng.Intn(4)
	for i := 0; i < n; i++ {
		x := rng.Float64()*(MapSize-200) + 100
		y := rng.Float64()*(MapSize-200) + 100
		w := rng.Float64()*50 + 30
		h := rng.Float64()*50 + 30
		if rng.Chance(0.2) {
			walls = append(walls, damageable(x, y, w, h, WallDestructible, 100))
		} else {
			walls = append(walls, &Wall{X: x, Y: y, W: w, H: h, Type: WallSolid})
		}
	}
	for i := 0; i < 10; i++ {
		x := rng.Float64()*(MapSize-80) + 40
		y := rng.Float64()*(MapSize-80) + 40
		walls = append(walls, crate(x, y, 28, 35, deathmatchDrops[rng.Intn(len(deathmatchDrops))]))
	}
	for i := 0; i < 6; i++ {
		walls = append(walls, &Wall{
			X: rng.Float64()*(MapSize-100) + 40, Y: rng.Float64()*(MapSize-100) + 40,
			W: rng.Float64()*60 + 50, H: rng.Float64()*60 + 50, Type: WallBush,
		})
	}
	for i := 0; i < 2; i++ {
		walls = append(walls, &Wall{
			X: rng.Float64()*(MapSize-200) + 60, Y: rng.Float64()*(MapSize-200) + 60,
			W: rng.Float64()*100 + 80, H: rng.Float64()*100 + 80, Type: WallPond,
		})
	}
	for i := 0; i < 2; i++ {
		walls = append(walls, &Wall{
			X: rng.Float64()*(MapSize-120) + 40, Y: rng.Float64()*(MapSize-120) + 40,
			W: rng.Float64()*60 + 50, H: rng.Float64()*60 + 50, Type: WallSwamp,
		})
	}
	return walls
}

const maxMapCrates = 35

var (
	rangedCrateWeapons = []WeaponType{WeaponShotgun, WeaponRifle, WeaponMachineGun, WeaponShotgun, WeaponRifle, WeaponLandmine}
	meleeCrateWeapons  = []WeaponType{WeaponBat, WeaponChainsaw}
)

// survivalLayout scatters obstacles by rejection sampling. A placement that
// fails 20 times is skipped. Gun game reuses it with weapon crates turned into
// ammo so loadouts stay under the rank ladder's control.
func survivalLayout(walls []*Wall, rng *Rand, gunGame bool) []*Wall {
	overlaps := func(x, y, w, h float64) bool {
		const margin = 10
		for _, o := range walls {
			if x < o.X+o.W+margin && x+w+margin > o.X && y < o.Y+o.H+margin && y+h+margin > o.Y {
				return true
			}
		}
		return false
	}
	place := func(build func(x, y float64) *Wall, w, h float64) bool {
		for attempt := 0; attempt < 20; attempt++ {
			x := rng.Float64()*(MapSize-w-80) + 40
			y := rng.Float64()*(MapSize-h-80) + 40
			if !overlaps(x, y, w, h) {
				nw := build(x, y)
				nw.W, nw.H = w, h
				walls = append(walls, nw)
				return true
			}
		}
		return false
	}
	plain := func(t WallType) func(x, y float64) *Wall {
		return func(x, y float64) *Wall { return &Wall{X: x, Y: y, Type: t} }
	}
	crateOf := func(hp float64, drop Loot) func(x, y float64) *Wall {
		return func(x, y float64) *Wall { return crate(x, y, 28, hp, drop) }
	}

	n := 6 + rng.Intn(4)
	for i := 0; i < n; i++ {
		w := rng.Float64()*60 + 30
		h := rng.Float64()*60 + 30
		t := WallSolid
		if rng.Chance(0.3) {
			t = WallDestructible
		}
		place(func(x, y float64) *Wall {
			if t == WallDestructible {
				return damageable(x, y, 0, 0, t, 150)
			}
			return &Wall{X: x, Y: y, Type: t}
		}, w, h)
	}
	for i := 0; i < 8; i++ {
		place(func(x, y float64) *Wall { return damageable(x, y, 0, 0, WallBarrel, 50) }, 25, 25)
	}

	crates := 0
	supply := []struct {
		drop  Loot
		count int
	}{
		{Loot{Type: ItemHealth}, 6},
		{Loot{Type: ItemShield}, 4},
		{Loot{Type: ItemAmmo}, 6},
	}
	for _, s := range supply {
		for i := 0; i < s.count && crates < maxMapCrates; i++ {
			if place(crateOf(30, s.drop), 28, 28) {
				crates++
			}
		}
	}
	if crates < maxMapCrates {
		boost := Loot{Type: ItemSpeedBoost}
		if rng.Intn(2) == 1 {
			boost.Type = ItemDamageBoost
		}
		if place(crateOf(30, boost), 28, 28) {
			crates++
		}
	}
	for i := 0; i < 10 && crates < maxMapCrates; i++ {
		var wt WeaponType
		if rng.Chance(0.12) {
			wt = meleeCrateWeapons[rng.Intn(len(meleeCrateWeapons))]
		} else {
			wt = rangedCrateWeapons[rng.Intn(len(rangedCrateWeapons))]
		}
		drop := Loot{Type: ItemWeapon, Weapon: wt}
		if gunGame {
			drop = Loot{Type: ItemAmmo}
		}
		if place(crateOf(40, drop), 28, 28) {
			crates++
		}
	}

	for i := 0; i < 4; i++ {
		w, h := rng.Float64()*60+50, rng.Float64()*60+50
		place(plain(WallBush), w, h)
	}
	for i := 0; i < 2; i++ {
		w, h := rng.Float64()*120+100, rng.Float64()*120+100
		place(plain(WallPond), w, h)
	}
	for i := 0; i < 4; i++ {
		scale := 1.0
		if rng.Chance(0.4) {
			scale = 2
		}
		w, h := (rng.Float64()*60+50)*scale, (rng.Float64()*60+50)*scale
		place(plain(WallSwamp), w, h)
	}
	return walls
}
