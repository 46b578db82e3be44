package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeFishEaten
	EventTypeLevelUp
	EventTypeCombo
	EventTypePowerUpCollected
	EventTypePowerUpExpired
	EventTypeUltimateReady
	EventTypeUltimateActivated
	EventTypeUltimateEnded
	EventTypePlayerHit
	EventTypeBossSpawned
	EventTypeBossHit
	EventTypeBossDefeated
	EventTypeGameOver
	EventTypeVictory
	EventTypeSessionReset
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is one signal produced during a tick.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // Tick time, unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic per engine
	TickNum   uint64          `json:"tickNum"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeFishEaten:
		return "fish_eaten"
	case EventTypeLevelUp:
		return "level_up"
	case EventTypeCombo:
		return "combo"
	case EventTypePowerUpCollected:
		return "power_up_collected"
	case EventTypePowerUpExpired:
		return "power_up_expired"
	case EventTypeUltimateReady:
		return "ultimate_ready"
	case EventTypeUltimateActivated:
		return "ultimate_activated"
	case EventTypeUltimateEnded:
		return "ultimate_ended"
	case EventTypePlayerHit:
		return "player_hit"
	case EventTypeBossSpawned:
		return "boss_spawned"
	case EventTypeBossHit:
		return "boss_hit"
	case EventTypeBossDefeated:
		return "boss_defeated"
	case EventTypeGameOver:
		return "game_over"
	case EventTypeVictory:
		return "victory"
	case EventTypeSessionReset:
		return "session_reset"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so logs and clients read it directly.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name; unknown names become EventTypeUnknown.
func (t *EventType) UnmarshalText(b []byte) error {
	name := string(b)
	for c := EventTypeFishEaten; c <= EventTypeSessionReset; c++ {
		if c.String() == name {
			*t = c
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// Typed payloads for different event types

// FishEatenPayload is sent when the player eats a bot.
type FishEatenPayload struct {
	BotID  uint64 `json:"botId"`
	Level  int    `json:"level"`
	Points int    `json:"points"`
	Combo  int    `json:"combo"`
}

// LevelUpPayload is sent for each level gained.
type LevelUpPayload struct {
	Level int     `json:"level"`
	Score int     `json:"score"`
	Size  float64 `json:"size"`
}

// ComboPayload is sent when the streak reaches a milestone.
type ComboPayload struct {
	Count      int     `json:"count"`
	Multiplier float64 `json:"multiplier"`
}

// PowerUpPayload is sent on pickup and expiry.
type PowerUpPayload struct {
	Kind PowerUpKind `json:"kind"`
}

// PlayerHitPayload is sent when the player loses health.
type PlayerHitPayload struct {
	Source string `json:"source"` // "bot" or "boss"
	Level  int    `json:"level"`
	Health int    `json:"health"`
}

// BossPayload describes the boss for spawn, hit and defeat events.
type BossPayload struct {
	Tier      int `json:"tier"`
	Level     int `json:"level"`
	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
	Reward    int `json:"reward,omitempty"`
}

// SessionPayload carries the final tally on game over, victory and reset.
type SessionPayload struct {
	Outcome   string `json:"outcome"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	FishEaten int    `json:"fishEaten"`
	MaxCombo  int    `json:"maxCombo"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an event stamped with the tick time.
func NewEvent(eventType EventType, tickNum uint64, now time.Time, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: now.UnixNano(),
		TickNum:   tickNum,
		Payload:   EncodePayload(payload),
	}
}
