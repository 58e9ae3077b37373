package game

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"zombie-arena/internal/game/spatial"
)

// =============================================================================
// SIMULATOR
// =============================================================================

// SimConfig tunes the parts of the simulation that bound cost rather than
// gameplay.
type SimConfig struct {
	Limits ResourceLimits

	// BotFireRate is the number of trigger pulls per second a bot may make.
	// Zero disables the throttle.
	BotFireRate  float64
	BotFireBurst int
}

// DefaultSimConfig returns the stock limits with bots throttled to 4 shots/s.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Limits:       DefaultLimits,
		BotFireRate:  4,
		BotFireBurst: 2,
	}
}

// Simulator advances WorldState snapshots. Everything a tick depends on lives
// in the state; the simulator only keeps scratch space, so one Simulator
// serves one room and is not safe for concurrent use.
type Simulator struct {
	cfg      SimConfig
	grid     *spatial.Grid
	throttle BotThrottle
}

// NewSimulator creates a simulator. Zero limits fall back to DefaultLimits.
func NewSimulator(cfg SimConfig) *Simulator {
	if cfg.Limits == (ResourceLimits{}) {
		cfg.Limits = DefaultLimits
	}
	return &Simulator{
		cfg:      cfg,
		grid:     spatial.NewGrid(MapSize, MapSize, 80),
		throttle: NewBotThrottle(cfg.BotFireRate, cfg.BotFireBurst),
	}
}

// Config returns the simulator settings.
func (sim *Simulator) Config() SimConfig { return sim.cfg }

// =============================================================================
// BOT THROTTLE
// =============================================================================

// FireBucket is the token bucket of a bot's fire throttle as carried in the
// snapshot.
type FireBucket struct {
	Tokens float64 `json:"tokens"`
	At     float64 `json:"at"` // simulation ms the token count refers to
	Primed bool    `json:"primed"`
}

// BotThrottle caps how often each bot may fire. It holds no state of its
// own: each decision rebuilds a rate.Limiter from the bot's FireBucket and
// writes the bucket back, so a match resumed from any snapshot makes the same
// decisions.
type BotThrottle struct {
	limit rate.Limit
	burst int
}

// NewBotThrottle allows perSecond shots per bot with the given burst.
func NewBotThrottle(perSecond float64, burst int) BotThrottle {
	if burst < 1 {
		burst = 1
	}
	return BotThrottle{limit: rate.Limit(perSecond), burst: burst}
}

// Allow reports whether the bot owning b may fire at simulation time now (ms)
// and updates b.
func (t BotThrottle) Allow(b *FireBucket, now float64) bool {
	if t.limit <= 0 {
		return true
	}
	lim := rate.NewLimiter(t.limit, t.burst)
	if b.Primed {
		// empty a full bucket at the instant it would refill to b.Tokens by b.At
		tokens := math.Min(math.Max(b.Tokens, 0), float64(t.burst))
		lim.ReserveN(simTime(b.At-tokens/float64(t.limit)*1000), t.burst)
	}
	at := simTime(now)
	ok := lim.AllowN(at, 1)
	*b = FireBucket{Tokens: lim.TokensAt(at), At: now, Primed: true}
	return ok
}

// simTime maps simulation milliseconds onto a time.Time for the limiter.
func simTime(ms float64) time.Time {
	return time.Unix(0, int64(ms*float64(time.Millisecond)))
}

// =============================================================================
// MATCH SETUP
// =============================================================================

const initialGems = 12

// botCounts is the default RED/BLUE (or free-for-all) bot roster of a mode.
func botCounts(m GameMode) (red, blue, ffa int) {
	switch m {
	case ModeBrawlBall:
		return 2, 3, 0
	case ModeGemGrab:
		return 1, 2, 0
	case ModeTeamDeathmatch:
		return 1, 1, 0
	case ModeGunGame:
		return 0, 0, 3
	}
	return 0, 0, 0
}

// NewMatch builds the opening state of a room: terrain, bots, and the
// mode-specific pieces (gems, ball, gun game order, first wave).
func NewMatch(roomID string, settings MatchSettings) *WorldState {
	settings = settings.Normalized()
	s := &WorldState{
		RoomID:             roomID,
		Settings:           settings,
		RNG:                *NewRand(SeedFromString("match:" + roomID + ":" + settings.Mode.String())),
		Walls:              GenerateMap(roomID, settings.Mode),
		Wave:               1,
		WaveState:          WaveFighting,
		CreaturesToSpawn:   InitialWaveQuota(settings.Difficulty),
		MatchTimeRemaining: settings.TimeLimit,
	}
	f := &frame{s: s, rng: &s.RNG}

	if settings.Mode == ModeGunGame {
		order := AllWeapons()
		f.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		s.GunGameOrder = order
	}
	if settings.Mode == ModeBrawlBall {
		s.Ball, s.Goals = newBrawlField()
	}
	if settings.Mode == ModeGemGrab {
		for i := 0; i < initialGems; i++ {
			x, y := SafePosition(s.Walls, TeamNone, f.rng)
			f.addItem(&Item{Type: ItemGem, X: x, Y: y, Value: 1})
		}
	}

	red, blue, ffa := botCounts(settings.Mode)
	if n := settings.Bots; n != nil {
		red, blue, ffa = 0, 0, 0
		if settings.Mode.IsTeamMode() {
			red, blue = *n/2, *n-*n/2
		} else {
			ffa = *n
		}
	}
	for i := 0; i < red; i++ {
		f.addBot(TeamRed)
	}
	for i := 0; i < blue; i++ {
		f.addBot(TeamBlue)
	}
	for i := 0; i < ffa; i++ {
		f.addBot(TeamNone)
	}
	return s
}

func (f *frame) addBot(team Team) *Player {
	s := f.s
	n := 0
	for _, p := range s.Players {
		if p.IsBot {
			n++
		}
	}
	name := fmt.Sprintf("Bot %d", n+1)
	p := NewPlayer(f.rng.NewID("bot"), name, s.Walls, team, len(s.Players), true, s.Settings.Difficulty, f.rng)
	if s.Settings.Mode == ModeGunGame {
		p.Weapons = gunGameLoadout(s.GunGameOrder, 0)
	}
	s.Players = append(s.Players, p)
	return p
}

// =============================================================================
// TICK
// =============================================================================

// Tick computes the state that follows prev after dt frame units with the
// given inputs. prev is never modified. A finished match is returned as is.
func (sim *Simulator) Tick(prev *WorldState, inputs map[string]Input, dt float64) *WorldState {
	if prev == nil || prev.GameOver {
		return prev
	}
	if dt <= 0 || math.IsNaN(dt) {
		dt = 0
	}

	s := prev.Clone()
	s.Events = nil
	s.Now += dt * FrameMillis
	s.TickNum++
	f := &frame{s: s, sim: sim, rng: &s.RNG, now: s.Now, dt: dt}

	live := s.Announcements[:0]
	for _, a := range s.Announcements {
		if f.now-a.StartedAt < a.Duration {
			live = append(live, a)
		}
	}
	s.Announcements = live

	f.checkEnd()
	if s.GameOver || f.now < s.GoalCelebrationUntil {
		f.updateParticles()
		f.finalize()
		return s
	}

	f.updateWaves()
	f.spawnAmbientItems()
	f.updatePlayers(inputs)
	f.updateCreatures()
	f.creatureMines()
	if f.updateBall() {
		f.finalize()
		return s
	}
	f.expireHazards()
	f.hazardEffects()
	f.collectPickups()
	f.playerMines()
	f.updateProjectiles()
	f.updateParticles()
	f.finalize()
	return s
}

// finalize compacts removed entities, clamps vitals and applies the
// collection caps before the snapshot leaves the tick.
func (f *frame) finalize() {
	s := f.s
	lim := f.limits()

	items := s.Items[:0]
	for _, it := range s.Items {
		if !it.gone {
			items = append(items, it)
		}
	}
	clear(s.Items[len(items):])
	s.Items = items

	walls := s.Walls[:0]
	for _, w := range s.Walls {
		if !w.destroyed {
			walls = append(walls, w)
		}
	}
	clear(s.Walls[len(walls):])
	s.Walls = walls

	creatures := s.Creatures[:0]
	for _, c := range s.Creatures {
		if !c.dead {
			creatures = append(creatures, c)
		}
	}
	clear(s.Creatures[len(creatures):])
	s.Creatures = creatures

	for _, p := range s.Players {
		p.HP = math.Max(0, p.HP)
		p.Shield = clamp(p.Shield, 0, p.MaxShield)
		for i := range p.Weapons {
			if p.Weapons[i].Ammo < -1 {
				p.Weapons[i].Ammo = 0
			}
		}
	}

	s.Projectiles = dropOldest(s.Projectiles, lim.MaxProjectiles)
	s.Particles = dropOldest(s.Particles, lim.MaxParticles)
	s.Announcements = dropOldest(s.Announcements, lim.MaxAnnouncements)

	if f.survival() && !s.GameOver {
		s.SurvivalTime += f.dt * FrameMillis / 1000
	}
	if s.Settings.Mode.IsTimed() {
		s.MatchTimeRemaining = math.Max(0, s.Settings.TimeLimit-f.now/1000)
	}
}
