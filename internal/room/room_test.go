package room

import (
	"errors"
	"testing"
	"time"

	"zombie-arena/internal/game"
)

func intPtr(n int) *int { return &n }

func testSettings(mode game.GameMode, bots int) game.MatchSettings {
	s := game.DefaultSettings(mode)
	s.Bots = intPtr(bots)
	return s
}

// TestRoomJoinLeave covers capacity and the bot a human replaces.
func TestRoomJoinLeave(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 1
	r := New("join-room", testSettings(game.ModeTeamDeathmatch, 2), cfg, nil)

	id, err := r.Join("alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	s := r.Snapshot()
	if len(s.Players) != 2 {
		t.Errorf("Expected alice to replace a bot, got %d players", len(s.Players))
	}
	if p := s.Player(id); p == nil || p.IsBot {
		t.Fatal("alice missing from the snapshot")
	}

	if _, err := r.Join("bob"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if err := r.Leave("ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}
	if err := r.Leave(id); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if r.Snapshot().Player(id) != nil {
		t.Error("player still present after Leave")
	}
	if err := r.SetInput(id, game.Input{Up: true}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound for a departed player, got %v", err)
	}
}

// TestRoomLastInputWins checks that an input stays applied until replaced.
func TestRoomLastInputWins(t *testing.T) {
	r := New("input-room", testSettings(game.ModeTeamDeathmatch, 0), DefaultConfig(), nil)
	id, err := r.Join("mover")
	if err != nil {
		t.Fatal(err)
	}

	if err := r.SetInput(id, game.Input{Left: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.SetInput(id, game.Input{Right: true}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		s := r.Step()
		if !s.Player(id).IsMoving {
			t.Fatalf("tick %d: held input not applied", i)
		}
	}

	if err := r.SetInput(id, game.Input{}); err != nil {
		t.Fatal(err)
	}
	if s := r.Step(); s.Player(id).IsMoving {
		t.Error("player still moving after releasing the keys")
	}
}

// TestRoomStepAdvancesTime checks dt for a non-default tick rate.
func TestRoomStepAdvancesTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickRate = 30
	r := New("rate-room", testSettings(game.ModeTeamDeathmatch, 0), cfg, nil)
	s := r.Step()
	if want := 1000.0 / 30; s.Now < want-1e-9 || s.Now > want+1e-9 {
		t.Errorf("Expected now %v, got %v", want, s.Now)
	}
	if s.TickNum != 1 {
		t.Errorf("Expected tick 1, got %d", s.TickNum)
	}
}

// TestRoomSubscribeDropsOldest lets a subscriber fall behind.
func TestRoomSubscribeDropsOldest(t *testing.T) {
	r := New("sub-room", testSettings(game.ModeGunGame, 2), DefaultConfig(), nil)
	ch, cancel := r.Subscribe(1)
	defer cancel()

	var last *game.WorldState
	for i := 0; i < 5; i++ {
		last = r.Step()
	}
	got := <-ch
	if got != last {
		t.Errorf("Expected the newest snapshot (tick %d), got tick %d", last.TickNum, got.TickNum)
	}
	select {
	case s := <-ch:
		t.Errorf("Expected an empty channel, got tick %d", s.TickNum)
	default:
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("Expected the channel closed after cancel")
	}
	cancel()
}

// TestRoomObserverAndEvents wires the tick observer and the event log.
func TestRoomObserverAndEvents(t *testing.T) {
	el := NewEventLog(testEventLogConfig(""))
	if err := el.Start(); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	r := New("obs-room", testSettings(game.ModeZombieSurvival, 0), DefaultConfig(), el)
	calls := 0
	r.SetOnTick(func(roomID string, took time.Duration, s *game.WorldState) {
		calls++
		if roomID != "obs-room" || took < 0 || s == nil {
			t.Errorf("bad observer call: %q %v %v", roomID, took, s)
		}
	})
	if _, err := r.Join("alice"); err != nil {
		t.Fatal(err)
	}
	r.Step()
	r.Step()

	if calls != 2 {
		t.Errorf("Expected 2 observer calls, got %d", calls)
	}
	if el.Logged() == 0 {
		t.Error("join event was not logged")
	}
	if r.Scoreboard().Len() != 1 {
		t.Errorf("Expected 1 ranked player, got %d", r.Scoreboard().Len())
	}
}

// TestRoomStartStop runs the real loop briefly.
func TestRoomStartStop(t *testing.T) {
	r := New("loop-room", testSettings(game.ModeGunGame, 2), DefaultConfig(), nil)
	ch, _ := r.Subscribe(4)
	r.Start()
	r.Start()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.TickNum < 3 {
				continue
			}
		case <-deadline:
			t.Fatal("loop did not tick")
		}
		break
	}
	if !r.Info().Running {
		t.Error("Expected Running in Info")
	}

	r.Stop()
	r.Stop()
	for range ch {
	}
	if r.Info().Running {
		t.Error("Expected stopped room")
	}
}

func TestRoomSubscribeAfterStop(t *testing.T) {
	r := New("stopped-room", testSettings(game.ModeTeamDeathmatch, 2), DefaultConfig(), nil)
	r.Stop()

	ch, cancel := r.Subscribe(2)
	defer cancel()

	s, ok := <-ch
	if !ok || s == nil {
		t.Fatal("Expected the final snapshot")
	}
	if _, ok := <-ch; ok {
		t.Error("Expected a closed channel")
	}
}
