package room

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"zombie-arena/internal/config"
	"zombie-arena/internal/game"
)

const (
	journalQueueSize  = 1024
	journalFlushLines = 64
	journalFlushEvery = 100 * time.Millisecond
	shooterIdleAfter  = 5 * time.Minute
)

// Record is one journal line: an event and the room it happened in.
type Record struct {
	RoomID string `json:"roomId"`
	game.Event
}

// RoomJournalStats counts what a single room has sent to the log.
type RoomJournalStats struct {
	Logged   uint64 `json:"logged"`
	Dropped  uint64 `json:"dropped"`
	Sequence uint64 `json:"sequence"`
}

// EventLogStats is a point-in-time view of the whole log.
type EventLogStats struct {
	Logged  uint64                      `json:"logged"`
	Dropped uint64                      `json:"dropped"`
	Pending int                         `json:"pending"`
	Running bool                        `json:"running"`
	Rooms   map[string]RoomJournalStats `json:"rooms"`
}

// roomJournal is the per-room side of the log. Sequences are dense per room
// so a replay of one room can spot gaps.
type roomJournal struct {
	seq      uint64
	logged   uint64
	dropped  uint64
	limiter  *rate.Limiter
	shooters map[string]*shooterLimit
}

type shooterLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// EventLog journals the events of every room to an append-only JSONL file.
// Each room is flood limited on its own, and so is each player inside a
// room. When the writer falls behind the oldest queued line is dropped.
type EventLog struct {
	perRoom   rate.Limit
	perPlayer rate.Limit
	path      string

	mu    sync.Mutex // guards rooms and enqueue order
	rooms map[string]*roomJournal
	queue chan Record

	logged  atomic.Uint64
	dropped atomic.Uint64
	running atomic.Bool

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewEventLog creates a stopped log. Call Start before draining rooms into it.
func NewEventLog(cfg config.EventLogConfig) *EventLog {
	def := config.DefaultEventLog()
	perRoom := cfg.MaxEventsPerRoom
	if perRoom <= 0 {
		perRoom = def.MaxEventsPerRoom
	}
	perPlayer := cfg.MaxEventsPerPlayer
	if perPlayer <= 0 {
		perPlayer = def.MaxEventsPerPlayer
	}
	return &EventLog{
		perRoom:   rate.Limit(perRoom),
		perPlayer: rate.Limit(perPlayer),
		path:      cfg.Path,
		rooms:     make(map[string]*roomJournal),
		queue:     make(chan Record, journalQueueSize),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// burstFor allows a tenth of a second of traffic at once.
func burstFor(r rate.Limit) int { return int(r/10) + 1 }

// Start opens the journal file, if one is configured, and starts the writer.
func (el *EventLog) Start() error {
	if el.running.Load() {
		return nil
	}
	var w *bufio.Writer
	var f *os.File
	if el.path != "" {
		var err error
		f, err = os.OpenFile(el.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		w = bufio.NewWriter(f)
	}
	el.running.Store(true)
	go el.write(f, w)
	return nil
}

// Stop writes out what is queued and closes the file. Safe to call twice.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Swap(false) {
			return
		}
		close(el.stopChan)
		<-el.done
	})
}

// Drain journals the events of one room snapshot and returns how many were
// accepted.
func (el *EventLog) Drain(roomID string, events []game.Event) int {
	n := 0
	for _, e := range events {
		if el.Emit(roomID, e) {
			n++
		}
	}
	return n
}

// Emit stamps e with the room's next sequence number and the wall clock and
// queues it. It reports false when the log is stopped or the room or player
// is over its rate.
func (el *EventLog) Emit(roomID string, e game.Event) bool {
	if !el.running.Load() {
		return false
	}
	now := time.Now()

	el.mu.Lock()
	defer el.mu.Unlock()

	j := el.journal(roomID)
	if !j.limiter.AllowN(now, 1) || (e.PlayerID != "" && !j.shooter(e.PlayerID, el.perPlayer, now).AllowN(now, 1)) {
		j.dropped++
		el.dropped.Add(1)
		return false
	}

	j.seq++
	j.logged++
	e.Sequence = j.seq
	e.Timestamp = now.UnixNano()
	rec := Record{RoomID: roomID, Event: e}
	for {
		select {
		case el.queue <- rec:
			el.logged.Add(1)
			return true
		default:
		}
		// writer is behind: make room by dropping the oldest line
		select {
		case old := <-el.queue:
			el.dropped.Add(1)
			if oj := el.rooms[old.RoomID]; oj != nil {
				oj.dropped++
			}
		default:
		}
	}
}

// journal returns the journal of roomID, creating it. Callers hold el.mu.
func (el *EventLog) journal(roomID string) *roomJournal {
	j := el.rooms[roomID]
	if j == nil {
		j = &roomJournal{
			limiter:  rate.NewLimiter(el.perRoom, burstFor(el.perRoom)),
			shooters: make(map[string]*shooterLimit),
		}
		el.rooms[roomID] = j
	}
	return j
}

func (j *roomJournal) shooter(playerID string, limit rate.Limit, now time.Time) *rate.Limiter {
	s := j.shooters[playerID]
	if s == nil {
		s = &shooterLimit{limiter: rate.NewLimiter(limit, burstFor(limit))}
		j.shooters[playerID] = s
	}
	s.lastSeen = now
	return s.limiter
}

// CloseRoom forgets a room's sequence and limiters. Lines already queued
// are still written.
func (el *EventLog) CloseRoom(roomID string) {
	el.mu.Lock()
	delete(el.rooms, roomID)
	el.mu.Unlock()
}

// forgetIdleShooters drops player limiters not used since cutoff.
func (el *EventLog) forgetIdleShooters(cutoff time.Time) int {
	el.mu.Lock()
	defer el.mu.Unlock()

	n := 0
	for _, j := range el.rooms {
		for id, s := range j.shooters {
			if s.lastSeen.Before(cutoff) {
				delete(j.shooters, id)
				n++
			}
		}
	}
	return n
}

// write is the single writer goroutine. It flushes every journalFlushLines
// lines or journalFlushEvery, whichever comes first.
func (el *EventLog) write(f *os.File, w *bufio.Writer) {
	defer close(el.done)

	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	unflushed := 0
	flush := func() {
		if w == nil || unflushed == 0 {
			return
		}
		if err := w.Flush(); err != nil {
			log.Printf("⚠️ Event log flush failed: %v", err)
		}
		unflushed = 0
	}
	put := func(rec Record) {
		if enc == nil {
			return
		}
		if err := enc.Encode(rec); err != nil {
			log.Printf("⚠️ Event log write failed for room %s: %v", rec.RoomID, err)
			return
		}
		if unflushed++; unflushed >= journalFlushLines {
			flush()
		}
	}

	ticker := time.NewTicker(journalFlushEvery)
	defer ticker.Stop()
	sweep := time.NewTicker(shooterIdleAfter)
	defer sweep.Stop()

	for {
		select {
		case rec := <-el.queue:
			put(rec)
		case <-ticker.C:
			flush()
		case <-sweep.C:
			el.forgetIdleShooters(time.Now().Add(-shooterIdleAfter))
		case <-el.stopChan:
		drain:
			for {
				select {
				case rec := <-el.queue:
					put(rec)
				default:
					break drain
				}
			}
			flush()
			if f != nil {
				if err := f.Close(); err != nil {
					log.Printf("⚠️ Event log close failed: %v", err)
				}
			}
			return
		}
	}
}

// Stats returns the log totals and a per-room breakdown.
func (el *EventLog) Stats() EventLogStats {
	el.mu.Lock()
	defer el.mu.Unlock()

	rooms := make(map[string]RoomJournalStats, len(el.rooms))
	for id, j := range el.rooms {
		rooms[id] = RoomJournalStats{Logged: j.logged, Dropped: j.dropped, Sequence: j.seq}
	}
	return EventLogStats{
		Logged:  el.logged.Load(),
		Dropped: el.dropped.Load(),
		Pending: len(el.queue),
		Running: el.running.Load(),
		Rooms:   rooms,
	}
}

// Logged returns how many lines were accepted since start.
func (el *EventLog) Logged() uint64 { return el.logged.Load() }

// Dropped returns how many lines were rate limited or pushed out.
func (el *EventLog) Dropped() uint64 { return el.dropped.Load() }
