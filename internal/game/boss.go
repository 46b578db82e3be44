package game

import (
	"math"
	"math/rand/v2"
	"time"

	"feeding-frenzy/internal/config"
)

// BossPattern is the boss's current attack pattern.
type BossPattern uint8

const (
	PatternChase BossPattern = iota
	PatternSweep
	PatternCharge

	patternCount
)

// String returns the wire name of the pattern.
func (p BossPattern) String() string {
	switch p {
	case PatternChase:
		return "chase"
	case PatternSweep:
		return "sweep"
	case PatternCharge:
		return "charge"
	}
	return "unknown"
}

// MarshalText encodes the pattern by name in JSON payloads.
func (p BossPattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// BossFish is the one-off high-health antagonist of a boss tier.
type BossFish struct {
	Tier      int // trigger level that spawned it
	Level     int
	Health    int
	MaxHealth int
	X, Y      float64
	Direction float64
	Size      float64
	Speed     float64
	Pattern   BossPattern
	Defeated  bool

	nextPattern   time.Time
	hitGuardUntil time.Time // zero when unset
	sweepPhase    float64

	rng    *rand.Rand
	tuning *config.Tuning
}

// NewBossFish creates the boss for trigger, entering from a random side.
func NewBossFish(trigger config.BossTrigger, t *config.Tuning, rng *rand.Rand, now time.Time) *BossFish {
	bt := t.Boss
	level := min(trigger.Level+bt.LevelOffset, t.Levels.Max)
	health := trigger.Health
	if health <= 0 {
		health = 5
	}

	b := &BossFish{
		Tier:      trigger.Level,
		Level:     level,
		Health:    health,
		MaxHealth: health,
		Y:         t.Screen.Height / 2,
		Direction: 1,
		Size:      t.Levels.BaseSizes[level] * bt.SizeMultiplier,
		Speed:     bt.Speed,
		rng:       rng,
		tuning:    t,
	}
	if rng.IntN(2) == 0 {
		b.Direction = -1
	}
	if b.Direction > 0 {
		b.X = -b.Size / 2
	} else {
		b.X = t.Screen.Width + b.Size/2
	}
	b.Pattern = BossPattern(rng.IntN(int(patternCount)))
	b.nextPattern = now.Add(bt.PatternInterval)
	return b
}

// Rect returns the boss's bounding region.
func (b *BossFish) Rect() Rect {
	return RectAround(b.X, b.Y, b.Size)
}

// Update re-rolls the pattern when due and moves the boss one tick.
func (b *BossFish) Update(pl Target, now time.Time) {
	bt := b.tuning.Boss

	if !now.Before(b.nextPattern) {
		b.Pattern = BossPattern(b.rng.IntN(int(patternCount)))
		b.nextPattern = now.Add(bt.PatternInterval)
	}

	switch b.Pattern {
	case PatternChase:
		b.X, b.Y = stepToward(b.X, b.Y, pl.X, pl.Y, b.Speed*bt.ChaseMultiplier)
		b.face(pl.X)
	case PatternCharge:
		b.X, b.Y = stepToward(b.X, b.Y, pl.X, pl.Y, b.Speed*bt.ChargeMultiplier)
		b.face(pl.X)
	case PatternSweep:
		b.sweepPhase += bt.SweepStep
		b.Y = b.tuning.Screen.Height/2 + math.Sin(b.sweepPhase)*bt.SweepAmplitude
		b.X += b.Speed * bt.SweepMultiplier * b.Direction

		r := b.Rect()
		if b.Direction < 0 && r.Right < 0 {
			b.Direction = 1
		} else if b.Direction > 0 && r.Left > b.tuning.Screen.Width {
			b.Direction = -1
		}
	}
}

func (b *BossFish) face(targetX float64) {
	switch {
	case targetX > b.X:
		b.Direction = 1
	case targetX < b.X:
		b.Direction = -1
	}
}

// Guarded reports whether the post-hit window is still open at now.
func (b *BossFish) Guarded(now time.Time) bool {
	return !b.hitGuardUntil.IsZero() && now.Before(b.hitGuardUntil)
}

// TakeDamage removes one health unless guarded. It returns whether the hit
// landed; Defeated is set when health reaches zero.
func (b *BossFish) TakeDamage(now time.Time) bool {
	if b.Defeated || b.Guarded(now) {
		return false
	}
	b.Health--
	b.hitGuardUntil = now.Add(b.tuning.Boss.HitGuard)
	if b.Health <= 0 {
		b.Health = 0
		b.Defeated = true
	}
	return true
}

// Reward is the score granted for defeating this boss.
func (b *BossFish) Reward() int {
	return b.Level * b.tuning.Boss.RewardPerLevel
}
