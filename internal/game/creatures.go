package game

import "math"

// CreatureKind identifies a hostile creature variant. Values index creatureTable.
type CreatureKind uint8

const (
	CreatureNormal CreatureKind = iota
	CreatureFast
	CreatureTank
	CreatureBoomer
	CreatureSpitter
	CreatureFreezer
	CreatureHealer
	CreatureCharger
	CreatureSmoke
	CreatureBoss
	CreatureFlameBoss
	CreatureWitch
	creatureKindCount
)

var creatureNames = []string{
	"NORMAL", "FAST", "TANK", "BOOMER", "SPITTER", "SLOW", "HEALER", "CHARGER",
	"SMOKE", "BOSS", "FLAME_BOSS", "WITCH",
}

func (k CreatureKind) String() string { return enumName(creatureNames, int(k)) }

// ParseCreature converts a creature name such as "FLAME_BOSS" to a CreatureKind.
func ParseCreature(s string) (CreatureKind, error) {
	i, err := parseEnum("creature", s, creatureNames)
	return CreatureKind(i), err
}

func (k CreatureKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *CreatureKind) UnmarshalText(b []byte) error {
	v, err := ParseCreature(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// CreatureStats is the static stat line of a creature kind.
type CreatureStats struct {
	Name         string  `json:"name"`
	HP           float64 `json:"hp"`
	Speed        float64 `json:"speed"`
	AttackRange  float64 `json:"attackRange"`
	AttackDamage float64 `json:"attackDamage"`
	Size         float64 `json:"size"`
	SpawnWeight  float64 `json:"spawnWeight"` // 0 = only spawned as a boss
	MinWave      int     `json:"minWave"`
}

var creatureTable = [creatureKindCount]CreatureStats{
	CreatureNormal:    {Name: "Walker", HP: 60, Speed: 2.0, AttackRange: 28, AttackDamage: 12, Size: 1, SpawnWeight: 40, MinWave: 1},
	CreatureFast:      {Name: "Runner", HP: 35, Speed: 3.2, AttackRange: 35, AttackDamage: 8, Size: 0.85, SpawnWeight: 20, MinWave: 2},
	CreatureTank:      {Name: "Brute", HP: 210, Speed: 1.2, AttackRange: 35, AttackDamage: 45, Size: 1.5, SpawnWeight: 7, MinWave: 3},
	CreatureBoomer:    {Name: "Boomer", HP: 120, Speed: 1.4, AttackRange: 35, AttackDamage: 15, Size: 1.5, SpawnWeight: 10, MinWave: 4},
	CreatureSpitter:   {Name: "Spitter", HP: 55, Speed: 1.3, AttackRange: 200, AttackDamage: 12, Size: 1, SpawnWeight: 10, MinWave: 4},
	CreatureFreezer:   {Name: "Freezer", HP: 80, Speed: 2.2, AttackRange: 120, AttackDamage: 15, Size: 1.1, SpawnWeight: 12, MinWave: 5},
	CreatureHealer:    {Name: "Healer", HP: 90, Speed: 1.8, AttackRange: 200, AttackDamage: 5, Size: 1.1, SpawnWeight: 10, MinWave: 5},
	CreatureCharger:   {Name: "Charger", HP: 200, Speed: 2.2, AttackRange: 40, AttackDamage: 40, Size: 1.4, SpawnWeight: 8, MinWave: 7},
	CreatureSmoke:     {Name: "Smoke", HP: 60, Speed: 2.2, AttackRange: 100, AttackDamage: 10, Size: 1.1, SpawnWeight: 6, MinWave: 8},
	CreatureBoss:      {Name: "BOSS", HP: 800, Speed: 1.6, AttackRange: 60, AttackDamage: 70, Size: 2.5, MinWave: 5},
	CreatureFlameBoss: {Name: "Inferno", HP: 1200, Speed: 1.3, AttackRange: 200, AttackDamage: 40, Size: 2.8, MinWave: 8},
	CreatureWitch:     {Name: "Witch", HP: 600, Speed: 2.5, AttackRange: 150, AttackDamage: 20, Size: 1.8, MinWave: 10},
}

// Stats returns the static stat line of k.
func (k CreatureKind) Stats() CreatureStats {
	if k >= creatureKindCount {
		return creatureTable[CreatureNormal]
	}
	return creatureTable[k]
}

// AllCreatures lists every creature kind in table order.
func AllCreatures() []CreatureKind {
	out := make([]CreatureKind, creatureKindCount)
	for i := range out {
		out[i] = CreatureKind(i)
	}
	return out
}

// Radius is the collision radius of a creature of kind k.
func (k CreatureKind) Radius() float64 { return CreatureRadius * k.Stats().Size }

// =============================================================================
// PER-KIND AI STATE
// =============================================================================

// JumpPhase is the jump-slam state of tanks and bosses.
type JumpPhase uint8

const (
	JumpIdle JumpPhase = iota
	JumpWindup
	JumpAirborne
)

var jumpPhaseNames = []string{"IDLE", "WINDUP", "AIRBORNE"}

func (p JumpPhase) String() string { return enumName(jumpPhaseNames, int(p)) }

func (p JumpPhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *JumpPhase) UnmarshalText(b []byte) error {
	i, err := parseEnum("jump phase", string(b), jumpPhaseNames)
	if err != nil {
		return err
	}
	*p = JumpPhase(i)
	return nil
}

// TonguePhase is the witch grapple state.
type TonguePhase uint8

const (
	TongueAiming TonguePhase = iota
	TongueWindup
	TongueExtending
	TongueRetracting
	TongueAttacking
)

var tonguePhaseNames = []string{"AIMING", "WINDUP", "EXTENDING", "RETRACTING", "ATTACKING"}

func (p TonguePhase) String() string { return enumName(tonguePhaseNames, int(p)) }

func (p TonguePhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *TonguePhase) UnmarshalText(b []byte) error {
	i, err := parseEnum("tongue phase", string(b), tonguePhaseNames)
	if err != nil {
		return err
	}
	*p = TonguePhase(i)
	return nil
}

type SpitterState struct {
	NextSpitAt float64 `json:"nextSpitAt"`
}

type ChargerState struct {
	Charging  bool    `json:"charging"`
	DirX      float64 `json:"dirX"`
	DirY      float64 `json:"dirY"`
	StartedAt float64 `json:"startedAt"`
}

type HealerState struct {
	NextHealAt float64 `json:"nextHealAt"`
}

type JumpState struct {
	Phase          JumpPhase `json:"phase"`
	PhaseStartedAt float64   `json:"phaseStartedAt"`
	FromX          float64   `json:"fromX"`
	FromY          float64   `json:"fromY"`
	TargetX        float64   `json:"targetX"`
	TargetY        float64   `json:"targetY"`
	NextJumpAt     float64   `json:"nextJumpAt"`
}

// TrailState paces the burning puddles bosses leave behind.
type TrailState struct {
	NextTrailAt float64 `json:"nextTrailAt"`
}

type FlameState struct {
	NextVolleyAt float64 `json:"nextVolleyAt"`
}

type WitchState struct {
	Phase          TonguePhase `json:"phase"`
	Progress       float64     `json:"progress"`
	TargetID       string      `json:"targetId,omitempty"`
	PhaseStartedAt float64     `json:"phaseStartedAt"`
	NextTongueAt   float64     `json:"nextTongueAt"`
}

type SmokeState struct {
	NextCloudAt float64 `json:"nextCloudAt"`
}

type FreezerState struct {
	NextBlastAt float64 `json:"nextBlastAt"`
}

// CreatureAI holds the transient state of a creature's behavior. Exactly the
// fields its kind needs are set; see newCreatureAI.
type CreatureAI struct {
	Spitter *SpitterState `json:"spitter,omitempty"`
	Charger *ChargerState `json:"charger,omitempty"`
	Healer  *HealerState  `json:"healer,omitempty"`
	Jump    *JumpState    `json:"jump,omitempty"`
	Trail   *TrailState   `json:"trail,omitempty"`
	Flame   *FlameState   `json:"flame,omitempty"`
	Witch   *WitchState   `json:"witch,omitempty"`
	Smoke   *SmokeState   `json:"smoke,omitempty"`
	Freezer *FreezerState `json:"freezer,omitempty"`
}

func newCreatureAI(k CreatureKind) CreatureAI {
	switch k {
	case CreatureSpitter:
		return CreatureAI{Spitter: &SpitterState{}}
	case CreatureCharger:
		return CreatureAI{Charger: &ChargerState{}}
	case CreatureHealer:
		return CreatureAI{Healer: &HealerState{}}
	case CreatureTank:
		return CreatureAI{Jump: &JumpState{}}
	case CreatureBoss:
		return CreatureAI{Jump: &JumpState{}, Trail: &TrailState{}}
	case CreatureFlameBoss:
		return CreatureAI{Flame: &FlameState{}, Trail: &TrailState{}}
	case CreatureWitch:
		return CreatureAI{Witch: &WitchState{}}
	case CreatureSmoke:
		return CreatureAI{Smoke: &SmokeState{}}
	case CreatureFreezer:
		return CreatureAI{Freezer: &FreezerState{}}
	}
	return CreatureAI{}
}

func (a CreatureAI) clone() CreatureAI {
	out := a
	if a.Spitter != nil {
		v := *a.Spitter
		out.Spitter = &v
	}
	if a.Charger != nil {
		v := *a.Charger
		out.Charger = &v
	}
	if a.Healer != nil {
		v := *a.Healer
		out.Healer = &v
	}
	if a.Jump != nil {
		v := *a.Jump
		out.Jump = &v
	}
	if a.Trail != nil {
		v := *a.Trail
		out.Trail = &v
	}
	if a.Flame != nil {
		v := *a.Flame
		out.Flame = &v
	}
	if a.Witch != nil {
		v := *a.Witch
		out.Witch = &v
	}
	if a.Smoke != nil {
		v := *a.Smoke
		out.Smoke = &v
	}
	if a.Freezer != nil {
		v := *a.Freezer
		out.Freezer = &v
	}
	return out
}

// Creature is a hostile entity of survival mode.
type Creature struct {
	ID           string       `json:"id"`
	Kind         CreatureKind `json:"kind"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Rotation     float64      `json:"rotation"`
	HP           float64      `json:"hp"`
	MaxHP        float64      `json:"maxHp"`
	Speed        float64      `json:"speed"`
	TargetID     string       `json:"targetId,omitempty"`
	AttackRange  float64      `json:"attackRange"`
	AttackDamage float64      `json:"attackDamage"`
	NextAttackAt float64      `json:"nextAttackAt"`
	IsBoss       bool         `json:"isBoss"`
	AI           CreatureAI   `json:"ai"`

	dead bool
}

// Radius is the collision radius of c.
func (c *Creature) Radius() float64 { return c.Kind.Radius() }

// Dead reports whether c was killed during the current tick.
func (c *Creature) Dead() bool { return c.dead || c.HP <= 0 }

// WaveContext carries what the spawner needs to scale a new creature.
type WaveContext struct {
	Wave          int
	SpawnedInWave int
	X, Y          float64
}

// NewCreature builds a creature of kind k scaled to the wave in ctx.
func NewCreature(id string, k CreatureKind, boss bool, ctx WaveContext) *Creature {
	s := k.Stats()
	waveMult := 1 + float64(ctx.Wave)*0.1
	bossMult := 1.0
	if boss {
		bossMult = 1 + math.Floor(float64(ctx.Wave)/5)*0.3
	}
	speed := s.Speed
	if boss && ctx.Wave >= 10 {
		speed *= 1.2
	}
	hp := s.HP * waveMult * bossMult
	return &Creature{
		ID:           id,
		Kind:         k,
		X:            ctx.X,
		Y:            ctx.Y,
		HP:           hp,
		MaxHP:        hp,
		Speed:        speed,
		AttackRange:  s.AttackRange,
		AttackDamage: (s.AttackDamage + math.Floor(float64(ctx.Wave)*1.5)) * bossMult,
		IsBoss:       boss,
		AI:           newCreatureAI(k),
	}
}

// rollCreature picks the kind of the next creature of a wave and whether it is
// a boss. Bosses appear on every fifth wave until the wave has spawned
// floor(wave/5) of them.
func rollCreature(rng *Rand, wave, spawnedInWave int) (CreatureKind, bool) {
	total := 0.0
	for k := CreatureKind(0); k < creatureKindCount; k++ {
		s := creatureTable[k]
		if wave >= s.MinWave && s.SpawnWeight > 0 {
			total += s.SpawnWeight
		}
	}
	roll := rng.Float64() * total
	chosen := CreatureNormal
	for k := CreatureKind(0); k < creatureKindCount; k++ {
		s := creatureTable[k]
		if wave < s.MinWave || s.SpawnWeight <= 0 {
			continue
		}
		roll -= s.SpawnWeight
		if roll <= 0 {
			chosen = k
			break
		}
	}

	isBoss := wave%5 == 0 && spawnedInWave < wave/5
	isMiniBoss := !isBoss && wave >= 8 && rng.Chance(0.05)
	switch {
	case isBoss:
		switch {
		case wave >= 10:
			chosen = [...]CreatureKind{CreatureBoss, CreatureFlameBoss, CreatureWitch}[spawnedInWave%3]
		case wave >= 8:
			chosen = [...]CreatureKind{CreatureBoss, CreatureFlameBoss}[spawnedInWave%2]
		default:
			chosen = CreatureBoss
		}
	case isMiniBoss:
		chosen = CreatureTank
	}
	return chosen, isBoss
}
