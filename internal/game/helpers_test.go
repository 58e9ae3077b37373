package game

import (
	"encoding/json"
	"testing"
)

func intPtr(n int) *int { return &n }

// newTestMatch starts a bot-free match of mode with the given humans.
func newTestMatch(t testing.TB, roomID string, mode GameMode, humans ...string) (*WorldState, []string) {
	t.Helper()
	settings := DefaultSettings(mode)
	settings.Bots = intPtr(0)
	s := NewMatch(roomID, settings)
	ids := make([]string, 0, len(humans))
	for _, name := range humans {
		var id string
		s, id = AddPlayer(s, name)
		ids = append(ids, id)
	}
	return s, ids
}

// newTestFrame wraps s for calling tick stages directly.
func newTestFrame(s *WorldState, now float64) *frame {
	s.Now = now
	return &frame{s: s, sim: NewSimulator(DefaultSimConfig()), rng: &s.RNG, now: now, dt: 1}
}

func mustJSON(t testing.TB, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func countEvents(s *WorldState, typ EventType) int {
	n := 0
	for _, e := range s.Events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
