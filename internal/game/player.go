package game

import (
	"math"
	"time"

	"feeding-frenzy/internal/config"
)

// statusKind keys the player's non-power-up timers.
type statusKind uint8

const (
	statusHitGuard statusKind = iota // post-damage invincibility
	statusUltimate
	statusCombo
)

// Player is the tracked fish. Position follows the tracking target with lag.
type Player struct {
	X, Y        float64
	Level       int
	Score       int
	ScoreToNext int
	CurrentSize float64
	IsEating    bool

	Health    int
	MaxHealth int

	SpeedMultiplier float64
	MagnetRadius    float64
	DoubleXP        bool
	FreezeEnemies   bool
	SizeMultiplier  float64

	UltimateCharge float64

	ComboCount int
	MaxCombo   int
	FishEaten  int

	BossesDefeated int

	powerUps *Timers[PowerUpKind]
	status   *Timers[statusKind]
	tuning   *config.Tuning
}

// PlayerUpdate reports what expired during Update.
type PlayerUpdate struct {
	ExpiredPowerUps []PowerUpKind
	UltimateEnded   bool
	ComboEnded      int // combo that lapsed, 0 if none
}

// NewPlayer creates a player at screen center with baseline stats.
func NewPlayer(t *config.Tuning) *Player {
	p := &Player{
		X:           t.Screen.Width / 2,
		Y:           t.Screen.Height / 2,
		Level:       t.Levels.Start,
		CurrentSize: t.Levels.BaseSizes[t.Levels.Start],
		Health:      t.Player.MaxHealth,
		MaxHealth:   t.Player.MaxHealth,
		powerUps:    NewTimers[PowerUpKind](),
		status:      NewTimers[statusKind](),
		tuning:      t,
	}
	p.resetEffects()
	p.ScoreToNext = p.thresholdFor(p.Level)
	return p
}

func (p *Player) resetEffects() {
	p.SpeedMultiplier = 1.0
	p.MagnetRadius = 0
	p.DoubleXP = false
	p.FreezeEnemies = false
	p.SizeMultiplier = 1.0
}

// Size is the effective edge length of the player's bounding square.
func (p *Player) Size() float64 {
	return p.CurrentSize * p.SizeMultiplier
}

// Rect returns the player's bounding region.
func (p *Player) Rect() Rect {
	return RectAround(p.X, p.Y, p.Size())
}

// Update follows the target, stores the eating flag and expires timers.
func (p *Player) Update(targetX, targetY float64, eating bool, now time.Time) PlayerUpdate {
	factor := math.Min(p.tuning.Player.FollowFactor*p.SpeedMultiplier, 1)
	p.X += (targetX - p.X) * factor
	p.Y += (targetY - p.Y) * factor
	p.IsEating = eating

	var res PlayerUpdate
	for _, kind := range p.powerUps.Tick(now) {
		p.clearEffect(kind)
		res.ExpiredPowerUps = append(res.ExpiredPowerUps, kind)
	}
	for _, s := range p.status.Tick(now) {
		switch s {
		case statusUltimate:
			res.UltimateEnded = true
		case statusCombo:
			res.ComboEnded = p.ComboCount
			p.ComboCount = 0
		}
	}
	return res
}

// --- progression ---

// thresholdFor returns the cumulative score that leaves level.
func (p *Player) thresholdFor(level int) int {
	idx := level - p.tuning.Levels.Start
	th := p.tuning.Derived.LevelThresholds
	if idx >= 0 && idx < len(th) {
		return th[idx]
	}
	return p.tuning.Derived.TotalScoreToWin
}

// ScoreMultiplier is the double-XP factor times the highest matching combo tier.
func (p *Player) ScoreMultiplier() float64 {
	m := 1.0
	for _, tier := range p.tuning.Combo.Tiers {
		if p.ComboCount >= tier.Min {
			m = tier.Multiplier
			break
		}
	}
	if p.DoubleXP {
		m *= p.tuning.Combo.DoubleXPMultiplier
	}
	return m
}

// AddScore awards floor(points × multiplier) and levels up as many times as
// the new score allows. It returns the awarded points and levels gained.
func (p *Player) AddScore(points int) (awarded, levels int) {
	awarded = int(math.Floor(float64(points) * p.ScoreMultiplier()))
	p.Score += awarded
	for p.Level < p.tuning.Levels.Max && p.Score >= p.ScoreToNext {
		if !p.LevelUp() {
			break
		}
		levels++
	}
	return awarded, levels
}

// LevelUp grows the player one level. It returns false at max level.
func (p *Player) LevelUp() bool {
	if p.Level >= p.tuning.Levels.Max {
		return false
	}
	p.Level++
	p.CurrentSize *= p.tuning.Levels.Growth
	p.ScoreToNext = p.thresholdFor(p.Level)
	return true
}

// --- combo ---

// AddCombo extends the streak and re-arms its timeout. It returns the new count.
func (p *Player) AddCombo(now time.Time) int {
	p.ComboCount++
	if p.ComboCount > p.MaxCombo {
		p.MaxCombo = p.ComboCount
	}
	p.status.Activate(statusCombo, now, p.tuning.Combo.Timeout)
	return p.ComboCount
}

// ComboExpiry returns when the current streak lapses, zero if none.
func (p *Player) ComboExpiry() time.Time {
	return p.status.Expiry(statusCombo)
}

// --- damage ---

// Invincible reports whether any invincibility source is active.
// Sources are the post-hit guard, the shield power-up and the ultimate.
func (p *Player) Invincible() bool {
	return p.status.Active(statusHitGuard) || p.powerUps.Active(PowerUpShield) || p.status.Active(statusUltimate)
}

// InvincibleUntil returns the latest expiry among active sources, zero if none.
func (p *Player) InvincibleUntil() time.Time {
	var until time.Time
	for _, exp := range []time.Time{
		p.status.Expiry(statusHitGuard),
		p.powerUps.Expiry(PowerUpShield),
		p.status.Expiry(statusUltimate),
	} {
		if exp.After(until) {
			until = exp
		}
	}
	return until
}

// TakeDamage removes one health unless invincible. A hit arms the post-hit
// guard and breaks the combo. fatal is true once health reaches zero.
func (p *Player) TakeDamage(now time.Time) (damaged, fatal bool) {
	if p.Invincible() || p.UltimateActive() {
		return false, false
	}
	p.Health--
	if p.Health < 0 {
		p.Health = 0
	}
	p.status.Activate(statusHitGuard, now, p.tuning.Player.Invincibility)
	p.ComboCount = 0
	p.status.Deactivate(statusCombo)
	return true, p.Health <= 0
}

// --- power-ups ---

// ActivatePowerUp starts or refreshes kind and applies its effect.
func (p *Player) ActivatePowerUp(kind PowerUpKind, now time.Time) {
	p.powerUps.Activate(kind, now, p.tuning.PowerUps.Durations[kind.String()])
	pt := p.tuning.PowerUps
	switch kind {
	case PowerUpSpeed:
		p.SpeedMultiplier = pt.SpeedMultiplier
	case PowerUpMagnet:
		p.MagnetRadius = pt.MagnetRadius
	case PowerUpDoubleXP:
		p.DoubleXP = true
	case PowerUpFreeze:
		p.FreezeEnemies = true
	case PowerUpSizeBoost:
		p.SizeMultiplier = pt.SizeMultiplier
	}
}

// DeactivatePowerUp ends kind early and restores its baseline.
func (p *Player) DeactivatePowerUp(kind PowerUpKind) {
	p.powerUps.Deactivate(kind)
	p.clearEffect(kind)
}

func (p *Player) clearEffect(kind PowerUpKind) {
	switch kind {
	case PowerUpSpeed:
		p.SpeedMultiplier = 1.0
	case PowerUpMagnet:
		p.MagnetRadius = 0
	case PowerUpDoubleXP:
		p.DoubleXP = false
	case PowerUpFreeze:
		p.FreezeEnemies = false
	case PowerUpSizeBoost:
		p.SizeMultiplier = 1.0
	}
}

// PowerUpActive reports whether kind is running.
func (p *Player) PowerUpActive(kind PowerUpKind) bool {
	return p.powerUps.Active(kind)
}

// PowerUpRemaining returns the time left on kind.
func (p *Player) PowerUpRemaining(kind PowerUpKind, now time.Time) time.Duration {
	return p.powerUps.Remaining(kind, now)
}

// ActivePowerUps returns a copy of the running kinds and their expiries.
func (p *Player) ActivePowerUps() map[PowerUpKind]time.Time {
	out := make(map[PowerUpKind]time.Time, p.powerUps.Len())
	p.powerUps.Each(func(k PowerUpKind, exp time.Time) { out[k] = exp })
	return out
}

// InMagnetRange reports whether (x, y) is within the magnet radius.
func (p *Player) InMagnetRange(x, y float64) bool {
	return p.MagnetRadius > 0 && distance(p.X, p.Y, x, y) <= p.MagnetRadius
}

// --- ultimate ---

// ChargeUltimate adds charge while the ultimate is idle. It returns true
// on the call that fills the meter.
func (p *Player) ChargeUltimate(amount float64) bool {
	if p.UltimateActive() {
		return false
	}
	full := p.tuning.Ultimate.ChargeMax
	wasFull := p.UltimateCharge >= full
	p.UltimateCharge = math.Min(full, p.UltimateCharge+amount)
	return !wasFull && p.UltimateCharge >= full
}

// UltimateReady reports whether the meter is full and idle.
func (p *Player) UltimateReady() bool {
	return !p.UltimateActive() && p.UltimateCharge >= p.tuning.Ultimate.ChargeMax
}

// UltimateActive reports whether the ultimate window is open.
func (p *Player) UltimateActive() bool {
	return p.status.Active(statusUltimate)
}

// UltimateUntil returns when the ultimate ends, zero if idle.
func (p *Player) UltimateUntil() time.Time {
	return p.status.Expiry(statusUltimate)
}

// ActivateUltimate consumes a full meter and opens the ultimate window.
func (p *Player) ActivateUltimate(now time.Time) bool {
	if !p.UltimateReady() {
		return false
	}
	p.UltimateCharge = 0
	p.status.Activate(statusUltimate, now, p.tuning.Ultimate.Duration)
	return true
}

// DeactivateUltimate closes the ultimate window. Invincibility granted by
// other sources is untouched.
func (p *Player) DeactivateUltimate() {
	p.status.Deactivate(statusUltimate)
}
