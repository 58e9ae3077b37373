// Package room hosts matches: each Room owns one authoritative WorldState,
// advances it on a fixed-rate loop and fans the snapshots out to observers.
package room

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"zombie-arena/internal/game"
)

// Config controls a single room.
type Config struct {
	TickRate   int // ticks per second
	MaxPlayers int // human players
	Sim        game.SimConfig
}

// DefaultConfig returns a 60 TPS room for 8 humans.
func DefaultConfig() Config {
	return Config{
		TickRate:   60,
		MaxPlayers: 8,
		Sim:        game.DefaultSimConfig(),
	}
}

// dt is the simulation step of one loop tick in frame units.
func (c Config) dt() float64 {
	return (1000 / float64(c.TickRate)) / game.FrameMillis
}

// TickObserver is called after every tick with the time the tick took.
type TickObserver func(roomID string, took time.Duration, s *game.WorldState)

// Info summarizes a room for listings.
type Info struct {
	ID         string          `json:"id"`
	Mode       game.GameMode   `json:"mode"`
	Difficulty game.Difficulty `json:"difficulty"`
	Players    int             `json:"players"`
	Humans     int             `json:"humans"`
	MaxPlayers int             `json:"maxPlayers"`
	Tick       uint64          `json:"tick"`
	Wave       int             `json:"wave,omitempty"`
	GameOver   bool            `json:"gameOver"`
	Running    bool            `json:"running"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Room owns a match between ticks. Snapshots handed out by Snapshot and
// Subscribe are never modified afterwards and may be read concurrently.
type Room struct {
	id        string
	cfg       Config
	createdAt time.Time

	mu     sync.Mutex // guards state, inputs, sim
	sim    *game.Simulator
	state  *game.WorldState
	inputs map[string]game.Input

	latest atomic.Pointer[game.WorldState]

	subMu   sync.Mutex
	subs    map[int]chan *game.WorldState
	nextSub int

	events     *EventLog // may be nil
	scoreboard *Scoreboard
	onTick     atomic.Pointer[TickObserver]

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a room with a fresh match. events may be nil.
func New(id string, settings game.MatchSettings, cfg Config, events *EventLog) *Room {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultConfig().MaxPlayers
	}
	r := &Room{
		id:         id,
		cfg:        cfg,
		createdAt:  time.Now(),
		sim:        game.NewSimulator(cfg.Sim),
		state:      game.NewMatch(id, settings),
		inputs:     make(map[string]game.Input),
		subs:       make(map[int]chan *game.WorldState),
		events:     events,
		scoreboard: NewScoreboard(),
		stopChan:   make(chan struct{}),
	}
	r.afterChange(r.state)
	return r
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// Snapshot returns the latest published state.
func (r *Room) Snapshot() *game.WorldState { return r.latest.Load() }

// Scoreboard returns the room scoreboard.
func (r *Room) Scoreboard() *Scoreboard { return r.scoreboard }

// SetOnTick installs the per-tick observer.
func (r *Room) SetOnTick(fn TickObserver) {
	r.onTick.Store(&fn)
}

// Info returns a summary of the latest snapshot.
func (r *Room) Info() Info {
	s := r.Snapshot()
	humans := 0
	for _, p := range s.Players {
		if !p.IsBot {
			humans++
		}
	}
	return Info{
		ID:         r.id,
		Mode:       s.Settings.Mode,
		Difficulty: s.Settings.Difficulty,
		Players:    len(s.Players),
		Humans:     humans,
		MaxPlayers: r.cfg.MaxPlayers,
		Tick:       s.TickNum,
		Wave:       s.Wave,
		GameOver:   s.GameOver,
		Running:    r.running.Load(),
		CreatedAt:  r.createdAt,
	}
}

// =============================================================================
// ROSTER & INPUT
// =============================================================================

// Join adds a human player and returns the new player id.
func (r *Room) Join(name string) (string, error) {
	r.mu.Lock()
	humans := 0
	for _, p := range r.state.Players {
		if !p.IsBot {
			humans++
		}
	}
	if humans >= r.cfg.MaxPlayers {
		r.mu.Unlock()
		return "", ErrRoomFull
	}
	next, id := game.AddPlayer(r.state, name)
	r.state = next
	r.afterChange(next)
	r.mu.Unlock()

	log.Printf("👤 %s joined room %s as %s", name, r.id, id)
	return id, nil
}

// Leave removes a player and clears its input slot.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	next, ok := game.RemovePlayer(r.state, playerID)
	if !ok {
		r.mu.Unlock()
		return ErrPlayerNotFound
	}
	delete(r.inputs, playerID)
	r.state = next
	r.afterChange(next)
	r.mu.Unlock()

	log.Printf("👋 Player %s left room %s", playerID, r.id)
	return nil
}

// SetInput replaces the input slot of a player. The latest input wins and
// stays applied until replaced.
func (r *Room) SetInput(playerID string, in game.Input) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Player(playerID) == nil {
		return ErrPlayerNotFound
	}
	r.inputs[playerID] = in
	return nil
}

// =============================================================================
// TICK LOOP
// =============================================================================

// Start begins the fixed-rate tick loop.
func (r *Room) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	r.wg.Add(1)
	go r.loop()
	log.Printf("🎮 Room %s started at %d TPS", r.id, r.cfg.TickRate)
}

// Stop ends the loop and closes every subscription. It is safe to call more
// than once.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
		r.running.Store(false)

		r.subMu.Lock()
		for id, ch := range r.subs {
			close(ch)
			delete(r.subs, id)
		}
		r.subMu.Unlock()
		if r.events != nil {
			r.events.CloseRoom(r.id)
		}
		log.Printf("🛑 Room %s stopped", r.id)
	})
}

func (r *Room) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Step()
		case <-r.stopChan:
			return
		}
	}
}

// Step advances the match by one loop tick.
func (r *Room) Step() *game.WorldState {
	start := time.Now()

	r.mu.Lock()
	prev := r.state
	next := r.sim.Tick(prev, r.inputs, r.cfg.dt())
	r.state = next
	if next != prev {
		r.afterChange(next)
	}
	r.mu.Unlock()

	if next.GameOver && !prev.GameOver {
		log.Printf("🏁 Match over in room %s (winner: %s %s)", r.id, next.Winner, next.WinnerName)
	}

	if fn := r.onTick.Load(); fn != nil && *fn != nil {
		(*fn)(r.id, time.Since(start), next)
	}
	return next
}

// afterChange drains events, refreshes the scoreboard and publishes s.
// Callers hold r.mu so snapshots are published in order.
func (r *Room) afterChange(s *game.WorldState) {
	if r.events != nil && len(s.Events) > 0 {
		r.events.Drain(r.id, s.Events)
	}
	r.scoreboard.Update(s.Players)
	r.publish(s)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe returns a channel of snapshots and a cancel func. A subscriber
// that falls behind loses the older snapshots, never the newest one.
func (r *Room) Subscribe(buffer int) (<-chan *game.WorldState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *game.WorldState, buffer)

	r.subMu.Lock()
	if s := r.Snapshot(); s != nil {
		ch <- s
	}
	select {
	case <-r.stopChan:
		// stopped: the caller still gets the final snapshot
		r.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			close(c)
			delete(r.subs, id)
		}
	}
	return ch, cancel
}

func (r *Room) publish(s *game.WorldState) {
	r.latest.Store(s)

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- s:
		default:
			// full: drop the oldest frame; publish is the only sender
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
