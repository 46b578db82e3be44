package game

import (
	"sync"
	"time"

	"feeding-frenzy/internal/config"
)

// GameStatus is the session state machine.
type GameStatus uint8

const (
	StatusPlaying GameStatus = iota
	StatusGameOver
	StatusVictory
)

// String returns the wire name of the status.
func (s GameStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusGameOver:
		return "game_over"
	case StatusVictory:
		return "victory"
	}
	return "unknown"
}

// MarshalText encodes the status by name in JSON payloads.
func (s GameStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the session has ended.
func (s GameStatus) Terminal() bool {
	return s != StatusPlaying
}

// PlayerSnapshot is an immutable copy of player state for rendering.
// Remaining durations are measured at the snapshot's tick time.
type PlayerSnapshot struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Size            float64 `json:"size"`
	Level           int     `json:"level"`
	Score           int     `json:"score"`
	ScoreToNext     int     `json:"scoreToNext"`
	IsEating        bool    `json:"isEating"`
	Health          int     `json:"health"`
	MaxHealth       int     `json:"maxHealth"`
	Invincible      bool    `json:"invincible"`
	InvincibleMs    int64   `json:"invincibleMs"`
	SpeedMultiplier float64 `json:"speedMultiplier"`
	MagnetRadius    float64 `json:"magnetRadius"`
	DoubleXP        bool    `json:"doubleXp"`
	FreezeEnemies   bool    `json:"freezeEnemies"`
	SizeMultiplier  float64 `json:"sizeMultiplier"`
	UltimateCharge  float64 `json:"ultimateCharge"`
	UltimateReady   bool    `json:"ultimateReady"`
	UltimateActive  bool    `json:"ultimateActive"`
	UltimateMs      int64   `json:"ultimateMs"`
	ComboCount      int     `json:"comboCount"`
	ComboMs         int64   `json:"comboMs"`
	MaxCombo        int     `json:"maxCombo"`
	FishEaten       int     `json:"fishEaten"`
	BossesDefeated  int     `json:"bossesDefeated"`

	PowerUps []ActivePowerUpSnapshot `json:"powerUps"`
}

// ActivePowerUpSnapshot is one running buff.
type ActivePowerUpSnapshot struct {
	Kind        PowerUpKind `json:"kind"`
	RemainingMs int64       `json:"remainingMs"`
}

// BotSnapshot is an immutable bot fish for rendering.
type BotSnapshot struct {
	ID        uint64   `json:"id"`
	Level     int      `json:"level"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Size      float64  `json:"size"`
	Direction float64  `json:"direction"`
	Behavior  Behavior `json:"behavior"`
	MouthOpen bool     `json:"mouthOpen"`
}

// BossSnapshot is an immutable boss for rendering.
type BossSnapshot struct {
	Tier      int         `json:"tier"`
	Level     int         `json:"level"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Size      float64     `json:"size"`
	Direction float64     `json:"direction"`
	Health    int         `json:"health"`
	MaxHealth int         `json:"maxHealth"`
	Pattern   BossPattern `json:"pattern"`
	Guarded   bool        `json:"guarded"`
}

// PowerUpSnapshot is an immutable pickup for rendering.
type PowerUpSnapshot struct {
	ID          uint64      `json:"id"`
	Kind        PowerUpKind `json:"kind"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Bob         float64     `json:"bob"`
	Size        float64     `json:"size"`
	RemainingMs int64       `json:"remainingMs"`
}

// NotificationSnapshot is an on-screen message with its current opacity.
type NotificationSnapshot struct {
	Text  string  `json:"text"`
	Color string  `json:"color"`
	Large bool    `json:"large"`
	Alpha float64 `json:"alpha"`
}

// GameSnapshot is an immutable copy of everything a tick produced.
type GameSnapshot struct {
	Sequence  uint64     `json:"sequence"`
	TickNum   uint64     `json:"tick"`
	Timestamp time.Time  `json:"timestamp"`
	Status    GameStatus `json:"status"`

	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScoreToWin int     `json:"scoreToWin"`

	Player        PlayerSnapshot         `json:"player"`
	Bots          []BotSnapshot          `json:"bots"`
	HasBoss       bool                   `json:"hasBoss"`
	Boss          BossSnapshot           `json:"boss"`
	PowerUps      []PowerUpSnapshot      `json:"powerUps"`
	Notifications []NotificationSnapshot `json:"notifications"`
	Events        []Event                `json:"events"`
}

// Clone deep-copies the snapshot's slices.
func (s *GameSnapshot) Clone() GameSnapshot {
	c := *s
	c.Player.PowerUps = append([]ActivePowerUpSnapshot(nil), s.Player.PowerUps...)
	c.Bots = append([]BotSnapshot(nil), s.Bots...)
	c.PowerUps = append([]PowerUpSnapshot(nil), s.PowerUps...)
	c.Notifications = append([]NotificationSnapshot(nil), s.Notifications...)
	c.Events = append([]Event(nil), s.Events...)
	return c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// The writer never fills the slot readers copy from.
type SnapshotPool struct {
	mu        sync.RWMutex
	snapshots [3]GameSnapshot
	limits    config.ResourceLimits
	readIdx   int
	writeIdx  int
	sequence  uint64
	published bool
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}

	for i := range pool.snapshots {
		pool.snapshots[i] = GameSnapshot{
			Bots:          make([]BotSnapshot, 0, limits.MaxBots),
			PowerUps:      make([]PowerUpSnapshot, 0, limits.MaxPowerUps),
			Notifications: make([]NotificationSnapshot, 0, limits.MaxNotifications),
			Events:        make([]Event, 0, limits.MaxEvents),
		}
		pool.snapshots[i].Player.PowerUps = make([]ActivePowerUpSnapshot, 0, len(AllPowerUpKinds))
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	p.mu.Lock()
	p.writeIdx = (p.readIdx + 1) % len(p.snapshots)
	p.sequence++
	seq := p.sequence
	p.mu.Unlock()

	snap := &p.snapshots[p.writeIdx]
	snap.Player.PowerUps = snap.Player.PowerUps[:0]
	snap.Bots = snap.Bots[:0]
	snap.PowerUps = snap.PowerUps[:0]
	snap.Notifications = snap.Notifications[:0]
	snap.Events = snap.Events[:0]
	snap.HasBoss = false
	snap.Boss = BossSnapshot{}
	snap.Sequence = seq
	return snap
}

// PublishWrite makes the last acquired slot the read slot.
func (p *SnapshotPool) PublishWrite() {
	p.mu.Lock()
	p.readIdx = p.writeIdx
	p.published = true
	p.mu.Unlock()
}

// Read returns a deep copy of the latest published snapshot.
// ok is false before the first tick.
func (p *SnapshotPool) Read() (snap GameSnapshot, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.published {
		return GameSnapshot{}, false
	}
	return p.snapshots[p.readIdx].Clone(), true
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() config.ResourceLimits {
	return p.limits
}
