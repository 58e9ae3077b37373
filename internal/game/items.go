package game

import (
	"fmt"
	"math"
)

// ItemType tags a ground item: a pickup, a mine, or a hazard.
type ItemType uint8

const (
	ItemHealth ItemType = iota
	ItemAmmo
	ItemSpeedBoost
	ItemDamageBoost
	ItemArmor
	ItemShield
	ItemFireRateBoost
	ItemWallKit
	ItemGem
	ItemMine
	ItemVenomPuddle
	ItemSmokeCloud
	ItemWeapon
)

var itemTypeNames = []string{
	"HEALTH", "AMMO", "SPEED_BOOST", "DAMAGE_BOOST", "ARMOR", "SHIELD", "FIRE_RATE_BOOST",
	"WALL_KIT", "GEM", "MINE", "VENOM_PUDDLE", "SMOKE_CLOUD", "WEAPON",
}

func (t ItemType) String() string { return enumName(itemTypeNames, int(t)) }

func (t ItemType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ItemType) UnmarshalText(b []byte) error {
	i, err := parseEnum("item type", string(b), itemTypeNames)
	if err != nil {
		return err
	}
	*t = ItemType(i)
	return nil
}

// Hazard reports whether the item is a persistent area effect rather than a pickup.
func (t ItemType) Hazard() bool { return t == ItemVenomPuddle || t == ItemSmokeCloud }

const (
	puddleRadius     = ItemRadius * 2
	smokeCloudRadius = ItemRadius * 5

	slimePuddleDuration = 5000.0
	firePuddleDuration  = 6000.0
	smokeCloudDuration  = 25000.0
)

// Loot is what a crate or a creature leaves behind.
type Loot struct {
	Type   ItemType   `json:"type"`
	Weapon WeaponType `json:"weapon,omitempty"` // only for ItemWeapon
}

func (l Loot) String() string {
	if l.Type == ItemWeapon {
		return "WEAPON_" + l.Weapon.String()
	}
	return l.Type.String()
}

// Item is a pickup, an armed mine, or a hazard on the ground.
type Item struct {
	ID        string     `json:"id"`
	Type      ItemType   `json:"type"`
	Weapon    WeaponType `json:"weapon,omitempty"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Rotation  float64    `json:"rotation"`
	Value     float64    `json:"value,omitempty"` // gem count, mine damage
	OwnerID   string     `json:"ownerId,omitempty"`
	SpawnedAt float64    `json:"spawnedAt,omitempty"`
	Duration  float64    `json:"duration,omitempty"` // hazards
	Fire      bool       `json:"fire,omitempty"`     // boss fire trail rather than slime

	gone bool
}

func (f *frame) dropLoot(x, y float64, l Loot) {
	f.addItem(&Item{Type: l.Type, Weapon: l.Weapon, X: x, Y: y})
}

// =============================================================================
// AMBIENT SPAWNING
// =============================================================================

func (f *frame) spawnAmbientItems() {
	s := f.s
	mode := f.mode()

	waveMult := 1.0
	if f.survival() {
		waveMult = math.Max(1, 1+float64(s.Wave-1)*0.1)
	}
	baseInterval, baseMax := 10000.0, 6.0
	if mode == ModeGemGrab {
		baseInterval, baseMax = 4000, 15
	}
	interval := math.Max(4000, baseInterval/waveMult)
	maxItems := int(math.Floor(baseMax * waveMult))
	if limit := f.limits().MaxAmbientItems; limit > 0 && maxItems > limit {
		maxItems = limit
	}

	var needy *Player
	if f.survival() {
		for _, p := range s.Players {
			if !p.Dead && p.HP/p.MaxHP < 0.25 && !healingNear(s.Items, p.X, p.Y, 300) {
				needy = p
				break
			}
		}
	}

	for _, it := range s.Items {
		it.Rotation += 0.05 * f.dt
	}

	if f.now-s.LastItemSpawnAt <= interval && needy == nil {
		return
	}
	if countPickups(s.Items) >= maxItems {
		return
	}

	var x, y float64
	if needy != nil {
		x, y = nearbySafePosition(s.Walls, needy.X, needy.Y, 150, f.rng)
	} else {
		x, y = SafePosition(s.Walls, TeamNone, f.rng)
	}

	t := ItemHealth
	roll := f.rng.Float64()
	switch {
	case mode == ModeGemGrab:
		t = ItemGem
	case f.survival():
		switch {
		case needy != nil || roll < 0.65:
			t = ItemHealth
		case roll < 0.85:
			t = ItemAmmo
		default:
			t = ItemShield
		}
	case roll >= 0.6:
		t = ItemAmmo
	}
	it := &Item{Type: t, X: x, Y: y}
	if t == ItemGem {
		it.Value = 1
	}
	f.addItem(it)
	s.LastItemSpawnAt = f.now

	if needy != nil && f.rng.Chance(0.5) {
		f.addItem(&Item{Type: ItemHealth, X: x + f.rng.Centered(100), Y: y + f.rng.Centered(100)})
	}
}

func healingNear(items []*Item, x, y, r float64) bool {
	for _, it := range items {
		if (it.Type == ItemHealth || it.Type == ItemShield) && !it.gone && dist(x, y, it.X, it.Y) < r {
			return true
		}
	}
	return false
}

// countPickups counts items the ambient cap applies to.
func countPickups(items []*Item) int {
	n := 0
	for _, it := range items {
		if !it.gone && it.Type != ItemMine && !it.Type.Hazard() {
			n++
		}
	}
	return n
}

// nearbySafePosition looks for a clear spot within spread of (x, y) and falls
// back to a map-wide search.
func nearbySafePosition(walls []*Wall, x, y, spread float64, rng *Rand) (float64, float64) {
	for attempt := 0; attempt < 20; attempt++ {
		px := clamp(x+rng.Centered(spread*2), 60, MapSize-60)
		py := clamp(y+rng.Centered(spread*2), 60, MapSize-60)
		if spawnClear(walls, px, py) {
			return px, py
		}
	}
	return SafePosition(walls, TeamNone, rng)
}

// =============================================================================
// HAZARDS AND PICKUPS
// =============================================================================

func (f *frame) expireHazards() {
	for _, it := range f.s.Items {
		if it.Type.Hazard() && f.now-it.SpawnedAt > it.Duration {
			it.gone = true
		}
	}
}

// hazardEffects applies puddles and smoke clouds to players standing in them.
// Both only act on overlap; spawning one never affects anybody by itself.
func (f *frame) hazardEffects() {
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		for _, it := range f.s.Items {
			if it.gone {
				continue
			}
			switch it.Type {
			case ItemVenomPuddle:
				if dist(p.X, p.Y, it.X, it.Y) >= puddleRadius+PlayerRadius {
					continue
				}
				// bots mostly step around puddles
				if p.IsBot && !f.rng.Chance(0.15) {
					continue
				}
				f.dotPlayer(p, 0.08*f.dt)
				p.SlowedUntil = math.Max(p.SlowedUntil, f.now+200)
			case ItemSmokeCloud:
				if dist(p.X, p.Y, it.X, it.Y) < smokeCloudRadius+PlayerRadius {
					p.BlurredUntil = math.Max(p.BlurredUntil, f.now+2000)
				}
			}
			if p.Dead {
				break
			}
		}
	}
}

// collectPickups hands every touched pickup to the first living player
// touching it, in player order.
func (f *frame) collectPickups() {
	for _, p := range f.s.Players {
		if p.Dead {
			continue
		}
		for _, it := range f.s.Items {
			if it.gone || it.Type == ItemMine || it.Type.Hazard() {
				continue
			}
			if dist(p.X, p.Y, it.X, it.Y) >= PlayerRadius+ItemRadius {
				continue
			}
			f.applyPickup(p, it)
			it.gone = true
		}
	}
}

func (f *frame) applyPickup(p *Player, it *Item) {
	label, color := "", "#ffffff"
	switch it.Type {
	case ItemHealth:
		heal := math.Round(p.MaxHP * 0.5)
		actual := math.Min(p.MaxHP-p.HP, heal)
		p.HP = math.Min(p.MaxHP, p.HP+heal)
		label, color = fmt.Sprintf("❤️+%d", int(actual)), "#44ff44"
	case ItemAmmo:
		for i := range p.Weapons {
			w := &p.Weapons[i]
			if w.Infinite() {
				continue
			}
			scaled := scaledMaxAmmo(w.Type, p.AmmoMult)
			gain := int(math.Round(float64(scaled) * 0.6))
			w.Ammo = min(scaled, w.Ammo+gain)
			w.MaxAmmo = scaled
		}
		label, color = "🔫 AMMO!", "#ffaa00"
	case ItemGem:
		n := int(it.Value)
		if n <= 0 {
			n = 1
		}
		p.Gems += n
		p.Score += 10
	case ItemSpeedBoost:
		p.SpeedBoostUntil = f.now + 10000
	case ItemDamageBoost:
		p.DamageBoostUntil = f.now + 10000
	case ItemArmor:
		p.MaxHP += 20
		p.HP += 20
	case ItemShield:
		gain := math.Round(p.MaxShield * 0.4)
		p.Shield = math.Min(p.MaxShield, p.Shield+gain)
		label, color = fmt.Sprintf("🛡️+%d", int(gain)), "#4488ff"
	case ItemFireRateBoost:
		p.FireRateBoostUntil = f.now + 8000
		label, color = "⚡FAST!", "#ff8800"
	case ItemWallKit:
		p.WallKits = min(MaxWallKits, p.WallKits+1)
		label, color = "🧱+1", "#8866aa"
	case ItemWeapon:
		scaled := scaledMaxAmmo(it.Weapon, p.AmmoMult)
		if idx := p.HasWeapon(it.Weapon); idx >= 0 {
			w := &p.Weapons[idx]
			if !w.Infinite() {
				w.MaxAmmo = scaled
				w.Ammo = scaled
			}
		} else {
			w := NewWeapon(it.Weapon)
			w.MaxAmmo, w.Ammo = scaled, scaled
			p.Weapons = append(p.Weapons, w)
			label, color = "🔫 "+it.Weapon.Stats().Name+"!", "#ff66ff"
		}
	}
	if label != "" {
		f.text(p.X, p.Y-15, label, color, 14, 0.8)
	}

	payload := PickupPayload{PlayerID: p.ID, Item: it.Type}
	if it.Type == ItemWeapon {
		payload.Weapon = it.Weapon.String()
	}
	f.emit(EventTypePickup, p.ID, payload)
}
