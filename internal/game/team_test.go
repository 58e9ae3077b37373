package game

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice", "alice"},
		{"  bob  ", "bob"},
		{"", "Player"},
		{"   ", "Player"},
		{strings.Repeat("x", 30), strings.Repeat("x", MaxNameLength)},
		{strings.Repeat("é", 25), strings.Repeat("é", MaxNameLength)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestAddPlayerReplacesBot joins two humans into a default brawl ball match.
func TestAddPlayerReplacesBot(t *testing.T) {
	s := NewMatch("join-room", DefaultSettings(ModeBrawlBall))
	if len(s.Players) != 5 {
		t.Fatalf("Expected 5 bots, got %d", len(s.Players))
	}

	s1, alice := AddPlayer(s, "alice")
	if len(s.Players) != 5 {
		t.Fatal("AddPlayer modified its input state")
	}
	if len(s1.Players) != 5 {
		t.Errorf("Expected a bot to make room, got %d players", len(s1.Players))
	}
	a := s1.Player(alice)
	if a == nil || a.IsBot || a.Team != TeamRed {
		t.Fatalf("Expected human alice on RED, got %+v", a)
	}
	if countEvents(s1, EventTypePlayerLeave) != 1 || countEvents(s1, EventTypePlayerJoin) != 1 {
		t.Errorf("Expected one leave and one join, got %d and %d",
			countEvents(s1, EventTypePlayerLeave), countEvents(s1, EventTypePlayerJoin))
	}

	s2, bob := AddPlayer(s1, "bob")
	if b := s2.Player(bob); b.Team != TeamBlue {
		t.Errorf("Expected bob on BLUE, got %v", b.Team)
	}
	if len(s2.Players) != 5 {
		t.Errorf("Expected 5 players, got %d", len(s2.Players))
	}
}

// TestAddPlayerFreeForAll keeps bots in modes without teams.
func TestAddPlayerFreeForAll(t *testing.T) {
	s := NewMatch("ffa-room", DefaultSettings(ModeGunGame))
	bots := len(s.Players)
	s, id := AddPlayer(s, "solo")
	if len(s.Players) != bots+1 {
		t.Errorf("Expected %d players, got %d", bots+1, len(s.Players))
	}
	p := s.Player(id)
	if p.Team != TeamNone {
		t.Errorf("Expected no team, got %v", p.Team)
	}
	if len(p.Weapons) != 1 || p.Weapons[0].Type != s.GunGameOrder[0] {
		t.Errorf("Expected the first gun game weapon, got %v", p.Weapons)
	}
}

// TestLateSurvivalJoinScales checks that late joiners match the wave.
func TestLateSurvivalJoinScales(t *testing.T) {
	s, ids := newTestMatch(t, "late-room", ModeZombieSurvival, "early")
	s.Wave = 5
	s, late := AddPlayer(s, "late")
	early, p := s.Player(ids[0]), s.Player(late)
	if p.MaxHP <= early.MaxHP {
		t.Errorf("Expected scaled max hp above %v, got %v", early.MaxHP, p.MaxHP)
	}
	if p.HP != p.MaxHP {
		t.Errorf("Expected full hp, got %v/%v", p.HP, p.MaxHP)
	}
}

// TestRemovePlayer drops a ball carrier and an unknown id.
func TestRemovePlayer(t *testing.T) {
	s, ids := newTestMatch(t, "leave-room", ModeBrawlBall, "carrier", "other")
	p := s.Player(ids[0])
	p.HasBall = true
	s.Ball.HeldBy = p.ID
	s.LastGoalScorer = p.ID

	next, ok := RemovePlayer(s, ids[0])
	if !ok {
		t.Fatal("Expected the player to be removed")
	}
	if next.Player(ids[0]) != nil || len(next.Players) != 1 {
		t.Errorf("player still present: %d players", len(next.Players))
	}
	if next.Ball.HeldBy != "" || next.LastGoalScorer != "" {
		t.Errorf("ball still tied to the leaver: held=%q last=%q", next.Ball.HeldBy, next.LastGoalScorer)
	}
	if countEvents(next, EventTypePlayerLeave) != 1 {
		t.Error("missing player_leave event")
	}
	if s.Player(ids[0]) == nil {
		t.Error("RemovePlayer modified its input state")
	}

	same, ok := RemovePlayer(next, "nobody")
	if ok || same != next {
		t.Error("Expected unknown id to be a no-op")
	}
}
