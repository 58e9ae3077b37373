package game

import (
	"encoding/json"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeKill
	EventTypePlayerDeath
	EventTypeRespawn
	EventTypeWaveComplete
	EventTypeWaveStart
	EventTypeGoal
	EventTypePromotion
	EventTypeExplosion
	EventTypePickup
	EventTypeMatchOver
	EventTypePlayerJoin
	EventTypePlayerLeave
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

var eventTypeNames = []string{
	"unknown", "kill", "player_death", "respawn", "wave_complete", "wave_start",
	"goal", "promotion", "explosion", "pickup", "match_over", "player_join", "player_leave",
}

// String returns human-readable event type
func (t EventType) String() string {
	if int(t) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[t]
}

func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *EventType) UnmarshalText(b []byte) error {
	for i, n := range eventTypeNames {
		if n == string(b) {
			*t = EventType(i)
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// Event is one notable happening of a tick. The simulation leaves Timestamp
// and Sequence zero; the room's EventLog stamps them when it drains a snapshot.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp,omitempty"` // Unix nano
	Sequence  uint64          `json:"sequence,omitempty"`
	TickNum   uint64          `json:"tickNum"`
	PlayerID  string          `json:"playerId,omitempty"` // Source player (for rate limiting)
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Typed payloads for different event types

// KillPayload is attached to kill events. VictimKind is the creature kind for
// creature kills and empty for player kills.
type KillPayload struct {
	KillerID    string `json:"killerId"`
	VictimID    string `json:"victimId"`
	VictimKind  string `json:"victimKind,omitempty"`
	Weapon      string `json:"weapon,omitempty"`
	KillerKills int    `json:"killerKills"`
	Streak      int    `json:"streak"`
}

// DeathPayload is attached to player_death events.
type DeathPayload struct {
	PlayerID  string  `json:"playerId"`
	KillerID  string  `json:"killerId,omitempty"`
	Deaths    int     `json:"deaths"`
	RespawnAt float64 `json:"respawnAt"`
}

// RespawnPayload contains respawn event details
type RespawnPayload struct {
	PlayerID string  `json:"playerId"`
	SpawnX   float64 `json:"spawnX"`
	SpawnY   float64 `json:"spawnY"`
}

// WavePayload is attached to wave_complete and wave_start events.
type WavePayload struct {
	Wave    int `json:"wave"`
	ToSpawn int `json:"toSpawn,omitempty"`
	Crates  int `json:"crates,omitempty"`
}

// GoalPayload is attached to goal events.
type GoalPayload struct {
	Team     Team   `json:"team"`
	ScorerID string `json:"scorerId,omitempty"`
	Red      int    `json:"red"`
	Blue     int    `json:"blue"`
}

// PromotionPayload is attached to gun game promotions.
type PromotionPayload struct {
	PlayerID string     `json:"playerId"`
	Rank     int        `json:"rank"`
	Weapon   WeaponType `json:"weapon"`
}

// ExplosionPayload is attached to explosion events.
type ExplosionPayload struct {
	Source  string  `json:"source"`
	OwnerID string  `json:"ownerId,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Damage  float64 `json:"damage"`
}

// PickupPayload is attached to pickup events.
type PickupPayload struct {
	PlayerID string   `json:"playerId"`
	Item     ItemType `json:"item"`
	Weapon   string   `json:"weapon,omitempty"`
}

// MatchOverPayload is attached to match_over events.
type MatchOverPayload struct {
	Mode         GameMode `json:"mode"`
	Winner       Team     `json:"winner"`
	WinnerID     string   `json:"winnerId,omitempty"`
	WinnerName   string   `json:"winnerName,omitempty"`
	Red          int      `json:"red"`
	Blue         int      `json:"blue"`
	Wave         int      `json:"wave,omitempty"`
	SurvivalTime float64  `json:"survivalTime,omitempty"`
}

// PlayerJoinPayload contains player join details
type PlayerJoinPayload struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Team       Team    `json:"team"`
	IsBot      bool    `json:"isBot"`
	SpawnX     float64 `json:"spawnX"`
	SpawnY     float64 `json:"spawnY"`
}

// PlayerLeavePayload contains player leave details
type PlayerLeavePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an unstamped event for tick tickNum.
func NewEvent(eventType EventType, tickNum uint64, playerID string, payload interface{}) Event {
	return Event{
		Version:  EventVersion,
		Type:     eventType,
		TickNum:  tickNum,
		PlayerID: playerID,
		Payload:  EncodePayload(payload),
	}
}
