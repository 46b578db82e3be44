package game

import (
	"math"
	"math/rand/v2"
	"time"

	"feeding-frenzy/internal/config"
)

// Behavior is the movement rule a bot keeps for its whole life.
type Behavior uint8

const (
	BehaviorNormal Behavior = iota
	BehaviorZigzag
	BehaviorFlee
	BehaviorChase

	behaviorCount
)

// String returns the wire name of the behavior.
func (b Behavior) String() string {
	switch b {
	case BehaviorNormal:
		return "normal"
	case BehaviorZigzag:
		return "zigzag"
	case BehaviorFlee:
		return "flee"
	case BehaviorChase:
		return "chase"
	}
	return "unknown"
}

// MarshalText encodes the behavior by name in JSON payloads.
func (b Behavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Target is the read-only view of the player handed to entity updates.
type Target struct {
	X, Y   float64
	Level  int
	Frozen bool
}

// BotFish is an AI fish crossing the screen horizontally.
type BotFish struct {
	ID        uint64
	Level     int
	X, Y      float64
	Direction float64 // +1 swims right, -1 swims left
	Behavior  Behavior
	Size      float64
	BaseSpeed float64
	Speed     float64
	MouthOpen bool

	nextAnim     time.Time
	animInterval time.Duration

	originY   float64
	phase     float64
	amplitude float64

	tuning *config.Tuning
}

// NewBotFish spawns a fish of level just off a random screen edge.
func NewBotFish(id uint64, level int, behavior Behavior, t *config.Tuning, rng *rand.Rand, now time.Time) *BotFish {
	bt := t.Bots
	size := t.Levels.BaseSizes[level] * (1 - bt.SizeJitter + rng.Float64()*2*bt.SizeJitter)

	b := &BotFish{
		ID:        id,
		Level:     level,
		Behavior:  behavior,
		Size:      size,
		Direction: 1,
		tuning:    t,
	}
	if rng.IntN(2) == 0 {
		b.Direction = -1
	}
	if b.Direction > 0 {
		b.X = -size
	} else {
		b.X = t.Screen.Width + size
	}

	half := size / 2
	lo, hi := half, t.Screen.Height-half
	if hi < lo {
		lo, hi = t.Screen.Height/2, t.Screen.Height/2
	}
	b.Y = lo + rng.Float64()*(hi-lo)
	b.originY = b.Y

	b.BaseSpeed = float64(bt.SpeedMin+rng.IntN(bt.SpeedMax-bt.SpeedMin+1)) + float64(level)/3
	b.Speed = b.BaseSpeed

	span := bt.AnimationMax - bt.AnimationMin
	b.animInterval = bt.AnimationMin
	if span > 0 {
		b.animInterval += time.Duration(rng.Int64N(int64(span) + 1))
	}
	b.nextAnim = now.Add(b.animInterval)

	if behavior == BehaviorZigzag {
		b.amplitude = bt.ZigzagAmplitudeMin + rng.Float64()*(bt.ZigzagAmplitudeMax-bt.ZigzagAmplitudeMin)
		b.phase = rng.Float64() * 2 * math.Pi
	}
	return b
}

// Rect returns the fish's bounding region.
func (b *BotFish) Rect() Rect {
	return RectAround(b.X, b.Y, b.Size)
}

// Update applies drift and behavior for one tick. It returns false once the
// fish has left the screen in its direction of travel.
func (b *BotFish) Update(pl Target, now time.Time) bool {
	bt := b.tuning.Bots

	b.Speed = b.BaseSpeed
	if pl.Frozen {
		b.Speed = b.BaseSpeed * b.tuning.PowerUps.FreezeSlowdown
	}
	b.X += b.Speed * b.Direction

	dist := distance(b.X, b.Y, pl.X, pl.Y)
	predator := b.Level > pl.Level && !pl.Frozen

	switch b.Behavior {
	case BehaviorZigzag:
		b.phase += bt.ZigzagStep
		b.Y = b.originY + math.Sin(b.phase)*b.amplitude

	case BehaviorFlee:
		if b.Level < pl.Level && dist < bt.FleeDistance {
			if b.Y < pl.Y {
				b.Y -= bt.FleeStep
			} else {
				b.Y += bt.FleeStep
			}
			b.X += b.Speed * b.Direction * bt.FleeBoost
		}

	case BehaviorChase:
		if predator && dist < bt.ThreatZone*bt.ChaseRangeFactor {
			b.X, b.Y = stepToward(b.X, b.Y, pl.X, pl.Y, bt.ChaseStep)
		}

	default:
		if predator && dist < bt.ThreatZone {
			switch {
			case b.Y < pl.Y:
				b.Y = math.Min(b.Y+bt.StalkStep, pl.Y)
			case b.Y > pl.Y:
				b.Y = math.Max(b.Y-bt.StalkStep, pl.Y)
			}
		}
	}

	if !now.Before(b.nextAnim) {
		b.MouthOpen = !b.MouthOpen
		b.nextAnim = now.Add(b.animInterval)
	}

	b.Y = clamp(b.Y, bt.EdgeMargin, b.tuning.Screen.Height-bt.EdgeMargin)

	r := b.Rect()
	if b.Direction > 0 && r.Left > b.tuning.Screen.Width+bt.DespawnMargin {
		return false
	}
	if b.Direction < 0 && r.Right < -bt.DespawnMargin {
		return false
	}
	return true
}
