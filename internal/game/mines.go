package game

import "math"

const (
	mineArmDelay       = 2000.0 // ms before anyone can trigger a mine
	mineOwnerSafeDelay = 3000.0 // ms before the owner can trigger their own mine
)

// MineArmed reports whether it is a mine that can be triggered at now.
func MineArmed(it *Item, now float64) bool {
	return it.Type == ItemMine && now-it.SpawnedAt >= mineArmDelay
}

// placeMine drops a mine in front of p. When the room already holds
// MaxMines live mines the oldest one goes off first.
func (f *frame) placeMine(p *Player, damage float64) {
	if limit := f.limits().MaxMines; limit > 0 {
		for f.liveMines() >= limit {
			oldest := f.oldestMine()
			if oldest == nil {
				break
			}
			f.detonateMine(oldest)
		}
	}
	x := p.X + math.Cos(p.AimRotation)*(PlayerRadius+20)
	y := p.Y + math.Sin(p.AimRotation)*(PlayerRadius+20)
	f.addItem(&Item{
		Type:      ItemMine,
		X:         x,
		Y:         y,
		OwnerID:   p.ID,
		SpawnedAt: f.now,
		Value:     damage,
	})
	f.text(x, y, "💣 MINE!", "#ff4444", 12, 0.8)
}

func (f *frame) liveMines() int {
	n := 0
	for _, it := range f.s.Items {
		if it.Type == ItemMine && !it.gone {
			n++
		}
	}
	return n
}

// oldestMine returns the live mine with the smallest spawn time, the first in
// item order on ties.
func (f *frame) oldestMine() *Item {
	var oldest *Item
	for _, it := range f.s.Items {
		if it.Type != ItemMine || it.gone {
			continue
		}
		if oldest == nil || it.SpawnedAt < oldest.SpawnedAt {
			oldest = it
		}
	}
	return oldest
}

func (f *frame) detonateMine(it *Item) {
	if it.gone {
		return
	}
	it.gone = true
	f.text(it.X, it.Y-20, "💥 BOOM!", "#ff4400", 18, 1)
	f.explode(weaponBlast(WeaponLandmine, it.OwnerID, it.X, it.Y, it.Value))
}

// creatureMines sets off armed mines a living creature steps on.
func (f *frame) creatureMines() {
	for _, it := range f.s.Items {
		if it.gone || !MineArmed(it, f.now) {
			continue
		}
		for _, c := range f.s.Creatures {
			if c.dead {
				continue
			}
			if dist(c.X, c.Y, it.X, it.Y) < c.Radius()+ItemRadius {
				f.detonateMine(it)
				break
			}
		}
	}
}

// playerMines sets off armed mines a living player steps on. Owners get a
// longer grace period on their own mines.
func (f *frame) playerMines() {
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		for _, it := range f.s.Items {
			if it.gone || !MineArmed(it, f.now) {
				continue
			}
			if it.OwnerID == p.ID && f.now-it.SpawnedAt < mineOwnerSafeDelay {
				continue
			}
			if dist(p.X, p.Y, it.X, it.Y) < PlayerRadius+ItemRadius {
				f.detonateMine(it)
			}
			if p.Dead {
				break
			}
		}
	}
}
