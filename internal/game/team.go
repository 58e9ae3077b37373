package game

import (
	"strings"
)

// MaxNameLength bounds display names.
const MaxNameLength = 20

// SanitizeName trims a display name and caps its length. Empty names become
// "Player".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	if name == "" {
		return "Player"
	}
	return name
}

// assignTeam picks the side with fewer humans, RED on ties. Free-for-all
// modes use TeamNone.
func assignTeam(s *WorldState) Team {
	if !s.Settings.Mode.IsTeamMode() {
		return TeamNone
	}
	red, blue := 0, 0
	for _, p := range s.Players {
		if p.IsBot {
			continue
		}
		switch p.Team {
		case TeamRed:
			red++
		case TeamBlue:
			blue++
		}
	}
	if blue < red {
		return TeamBlue
	}
	return TeamRed
}

// AddPlayer returns a copy of prev with a new human player and the new
// player's id. In team modes the player takes the place of a bot on the
// assigned team when there is one.
func AddPlayer(prev *WorldState, name string) (*WorldState, string) {
	s := prev.Clone()
	s.Events = nil
	f := &frame{s: s, rng: &s.RNG, now: s.Now}
	team := assignTeam(s)

	if team != TeamNone {
		for i, p := range s.Players {
			if p.IsBot && p.Team == team {
				f.dropPlayer(i)
				break
			}
		}
	}

	p := NewPlayer(f.rng.NewID("player"), SanitizeName(name), s.Walls, team, len(s.Players), false, s.Settings.Difficulty, f.rng)
	switch s.Settings.Mode {
	case ModeGunGame:
		p.Weapons = gunGameLoadout(s.GunGameOrder, 0)
	case ModeZombieSurvival:
		if s.Wave > 1 {
			p.levelUp(s.Wave, s.Settings.Difficulty)
			p.HP = p.MaxHP
		}
	}
	s.Players = append(s.Players, p)
	f.emit(EventTypePlayerJoin, p.ID, PlayerJoinPayload{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Team:       p.Team,
		IsBot:      p.IsBot,
		SpawnX:     p.X,
		SpawnY:     p.Y,
	})
	return s, p.ID
}

// RemovePlayer returns a copy of prev without player id. The second result
// is false when no such player exists, in which case prev is returned.
func RemovePlayer(prev *WorldState, id string) (*WorldState, bool) {
	idx := -1
	for i, p := range prev.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return prev, false
	}
	s := prev.Clone()
	s.Events = nil
	f := &frame{s: s, rng: &s.RNG, now: s.Now}
	f.dropPlayer(idx)
	return s, true
}

// dropPlayer hard-removes the player at index i, letting go of the ball and
// any tongue holding the player.
func (f *frame) dropPlayer(i int) {
	s := f.s
	p := s.Players[i]
	f.releaseBall(p, 0, 0)
	if s.LastGoalScorer == p.ID {
		s.LastGoalScorer = ""
	}
	for _, c := range s.Creatures {
		if c.TargetID == p.ID {
			c.TargetID = ""
		}
		if ws := c.AI.Witch; ws != nil && ws.TargetID == p.ID {
			f.resetTongue(ws)
		}
	}
	s.Players = append(s.Players[:i:i], s.Players[i+1:]...)
	f.emit(EventTypePlayerLeave, p.ID, PlayerLeavePayload{PlayerID: p.ID, PlayerName: p.Name})
}
