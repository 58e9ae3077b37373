package game

import "math"

var playerColors = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4",
	"#ffeaa7", "#dfe6e9", "#fd79a8", "#00b894",
	"#6c5ce7", "#fdcb6e", "#e17055", "#00cec9",
}

// Player is a human or bot participant.
type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Team        Team    `json:"team"`
	IsBot       bool    `json:"isBot"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
	AimRotation float64 `json:"aimRotation"`
	IsMoving    bool    `json:"isMoving"`
	InBush      bool    `json:"inBush"`

	HP        float64 `json:"hp"`
	MaxHP     float64 `json:"maxHp"`
	Shield    float64 `json:"shield"`
	MaxShield float64 `json:"maxShield"`

	Weapons       []Weapon `json:"weapons"`
	CurrentWeapon int      `json:"currentWeapon"`
	WallKits      int      `json:"wallKits"`

	Kills              int     `json:"kills"`
	Deaths             int     `json:"deaths"`
	Score              int     `json:"score"`
	Gems               int     `json:"gems"`
	HasBall            bool    `json:"hasBall"`
	CanPickBallAt      float64 `json:"canPickBallAt"`
	GunGameRank        int     `json:"gunGameRank"`
	GunGameKillsAtRank int     `json:"gunGameKillsAtRank"`
	KillStreak         int     `json:"killStreak"`
	LastKillAt         float64 `json:"lastKillAt"`

	// Status effects, all absolute "until" times.
	SpeedBoostUntil    float64 `json:"speedBoostUntil"`
	DamageBoostUntil   float64 `json:"damageBoostUntil"`
	FireRateBoostUntil float64 `json:"fireRateBoostUntil"`
	SlowedUntil        float64 `json:"slowedUntil"`
	StunnedUntil       float64 `json:"stunnedUntil"`
	SlimeUntil         float64 `json:"slimeUntil"`
	BurningUntil       float64 `json:"burningUntil"`
	BlurredUntil       float64 `json:"blurredUntil"`
	TongueGrabbedBy    string  `json:"tongueGrabbedBy,omitempty"`

	Reloading       bool    `json:"reloading"`
	ReloadStartedAt float64 `json:"reloadStartedAt"`

	Dead      bool    `json:"dead"`
	RespawnAt float64 `json:"respawnAt"`

	Level        int     `json:"level"`
	DamageMult   float64 `json:"damageMult"`
	FireRateMult float64 `json:"fireRateMult"`
	AmmoMult     float64 `json:"ammoMult"`

	BotFire FireBucket `json:"botFire"` // bots only
}

// BaseHP is the starting max hp of a player at difficulty d.
func BaseHP(d Difficulty) float64 {
	return math.Round(100 * d.Multipliers().PlayerHP)
}

// NewPlayer creates a player with difficulty-scaled vitals at a free spawn
// point on team's side of the map.
func NewPlayer(id, name string, walls []*Wall, team Team, colorIndex int, isBot bool, d Difficulty, rng *Rand) *Player {
	x, y := SafePosition(walls, team, rng)
	hp := BaseHP(d)
	return &Player{
		ID:           id,
		Name:         name,
		Color:        playerColors[colorIndex%len(playerColors)],
		Team:         team,
		IsBot:        isBot,
		X:            x,
		Y:            y,
		HP:           hp,
		MaxHP:        hp,
		MaxShield:    MaxShield,
		Weapons:      []Weapon{NewWeapon(WeaponPistol)},
		Level:        1,
		DamageMult:   d.Multipliers().PlayerDamage,
		FireRateMult: 1,
		AmmoMult:     1,
	}
}

func (p *Player) clone() *Player {
	c := *p
	c.Weapons = append([]Weapon(nil), p.Weapons...)
	return &c
}

// Weapon returns the current weapon. Every player owns at least one.
func (p *Player) Weapon() *Weapon {
	if len(p.Weapons) == 0 {
		p.Weapons = []Weapon{NewWeapon(WeaponPistol)}
	}
	if p.CurrentWeapon < 0 || p.CurrentWeapon >= len(p.Weapons) {
		p.CurrentWeapon = 0
	}
	return &p.Weapons[p.CurrentWeapon]
}

// HasWeapon returns the index of weapon t in p's inventory, or -1.
func (p *Player) HasWeapon(t WeaponType) int {
	for i := range p.Weapons {
		if p.Weapons[i].Type == t {
			return i
		}
	}
	return -1
}

// ApplyDamage subtracts damage from shield first and hp second. It reports
// whether the hit killed the player, flagging it dead with a respawn time of
// now+respawnDelay. Dead players are not damaged again.
func ApplyDamage(p *Player, damage, now, respawnDelay float64) bool {
	if p.Dead || damage <= 0 {
		return false
	}
	if p.Shield > 0 {
		if p.Shield >= damage {
			p.Shield -= damage
			return false
		}
		damage -= p.Shield
		p.Shield = 0
	}
	p.HP -= damage
	if p.HP <= 0 {
		p.Dead = true
		p.Deaths++
		p.RespawnAt = now + respawnDelay
		p.Reloading = false
		return true
	}
	return false
}

// levelUp applies the new-wave progression to a living player.
func (p *Player) levelUp(wave int, d Difficulty) {
	w := float64(wave - 1)
	p.Level = wave
	p.MaxHP = math.Round(BaseHP(d) * (1 + 0.1*w))
	p.HP = math.Min(p.HP+20, p.MaxHP)
	p.DamageMult = d.Multipliers().PlayerDamage * (1 + 0.05*w)
	p.FireRateMult = 1 / (1 + 0.05*w)
	p.AmmoMult = 1 + 0.1*w
	for i := range p.Weapons {
		wp := &p.Weapons[i]
		if wp.Infinite() {
			continue
		}
		wp.MaxAmmo = scaledMaxAmmo(wp.Type, p.AmmoMult)
		wp.Ammo = min(wp.MaxAmmo, wp.Ammo+15)
	}
}

// respawn restores a dead player in place.
func (p *Player) respawn(walls []*Wall, rng *Rand) {
	p.Dead = false
	p.HP = p.MaxHP
	p.X, p.Y = SafePosition(walls, p.Team, rng)
	p.Gems = 0
	p.HasBall = false
	p.Reloading = false
	p.TongueGrabbedBy = ""
	p.KillStreak = 0
	p.StunnedUntil = 0
	p.BurningUntil = 0
	p.SlimeUntil = 0
}
