package room

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"zombie-arena/internal/game"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomExists     = errors.New("room already exists")
	ErrRoomFull       = errors.New("room is full")
	ErrTooManyRooms   = errors.New("room limit reached")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidRoomID  = errors.New("invalid room id")
)

// MaxRoomIDLength bounds client-chosen room ids.
const MaxRoomIDLength = 32

// Manager owns the set of live rooms.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	maxRooms int
	roomCfg  Config
	events   *EventLog
	onTick   TickObserver
}

// NewManager creates a manager for at most maxRooms rooms. events may be nil.
func NewManager(maxRooms int, roomCfg Config, events *EventLog) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		maxRooms: maxRooms,
		roomCfg:  roomCfg,
		events:   events,
	}
}

// SetOnTick installs the observer on every room created afterwards.
func (m *Manager) SetOnTick(fn TickObserver) {
	m.mu.Lock()
	m.onTick = fn
	m.mu.Unlock()
}

// Create starts a new room. An empty id gets a generated one.
func (m *Manager) Create(id string, settings game.MatchSettings) (*Room, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()[:8]
	}
	if !validRoomID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoomID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, id)
	}
	if m.maxRooms > 0 && len(m.rooms) >= m.maxRooms {
		return nil, ErrTooManyRooms
	}

	r := New(id, settings, m.roomCfg, m.events)
	if m.onTick != nil {
		r.SetOnTick(m.onTick)
	}
	m.rooms[id] = r
	r.Start()

	s := r.Snapshot().Settings
	log.Printf("🏠 Room %s created (%s, %s)", id, s.Mode, s.Difficulty)
	return r, nil
}

// Get returns the room with id.
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r, nil
}

// List returns a summary of every room, sorted by id.
func (m *Manager) List() []Info {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live rooms.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Close stops and removes a room.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	r.Stop()
	log.Printf("🗑️ Room %s closed", id)
	return nil
}

// CloseAll stops every room.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			r.Stop()
		}(r)
	}
	wg.Wait()
	if len(rooms) > 0 {
		log.Printf("🛑 Closed %d rooms", len(rooms))
	}
}

func validRoomID(id string) bool {
	if len(id) > MaxRoomIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
