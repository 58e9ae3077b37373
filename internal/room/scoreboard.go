package room

import (
	"sync"

	"zombie-arena/internal/game"
	"zombie-arena/internal/game/spatial"
)

// Scoreboard ranks the players of a room by score using a skip list.
// Ties are broken by player id so the order is stable between ticks.
//
// Operations:
//   - Update: O(n log n) per tick, O(log n) per changed player
//   - Rank: O(log n)
//   - Top: O(log n + k)
type Scoreboard struct {
	ranks *spatial.SkipList

	mu      sync.RWMutex
	players map[string]ScoreboardEntry
}

// ScoreboardEntry is one row of the scoreboard.
type ScoreboardEntry struct {
	Rank     int       `json:"rank"`
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Team     game.Team `json:"team"`
	IsBot    bool      `json:"isBot"`
	Score    int       `json:"score"`
	Kills    int       `json:"kills"`
	Deaths   int       `json:"deaths"`
	Gems     int       `json:"gems,omitempty"`
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		ranks:   spatial.NewSkipList(1),
		players: make(map[string]ScoreboardEntry),
	}
}

// Update syncs the scoreboard with the players of a snapshot. Players that
// left are removed. Unchanged scores are not reinserted.
func (sb *Scoreboard) Update(players []*game.Player) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		seen[p.ID] = struct{}{}
		prev, ok := sb.players[p.ID]
		if !ok || prev.Score != p.Score {
			sb.ranks.Insert(p.ID, float64(p.Score))
		}
		sb.players[p.ID] = ScoreboardEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Team:     p.Team,
			IsBot:    p.IsBot,
			Score:    p.Score,
			Kills:    p.Kills,
			Deaths:   p.Deaths,
			Gems:     p.Gems,
		}
	}
	for id := range sb.players {
		if _, ok := seen[id]; !ok {
			sb.ranks.Remove(id)
			delete(sb.players, id)
		}
	}
}

// Rank returns the 1-based rank of a player, or 0 if unknown.
func (sb *Scoreboard) Rank(playerID string) int {
	return sb.ranks.GetRank(playerID)
}

// Top returns the n best players. n <= 0 returns everyone.
func (sb *Scoreboard) Top(n int) []ScoreboardEntry {
	if n <= 0 {
		n = sb.ranks.Length()
	}
	return sb.rangeOf(1, n)
}

// Around returns the rows from `above` ranks ahead of a player to `below`
// ranks behind. It is nil for unknown players.
func (sb *Scoreboard) Around(playerID string, above, below int) []ScoreboardEntry {
	rank := sb.ranks.GetRank(playerID)
	if rank == 0 {
		return nil
	}
	return sb.rangeOf(max(1, rank-above), rank+below)
}

// Len returns the number of ranked players.
func (sb *Scoreboard) Len() int {
	return sb.ranks.Length()
}

func (sb *Scoreboard) rangeOf(start, end int) []ScoreboardEntry {
	entries := sb.ranks.GetRange(start, end)

	sb.mu.RLock()
	defer sb.mu.RUnlock()

	out := make([]ScoreboardEntry, 0, len(entries))
	for i, e := range entries {
		row, ok := sb.players[e.Key]
		if !ok {
			continue
		}
		row.Rank = start + i
		out = append(out, row)
	}
	return out
}
