package game

import (
	"math/rand/v2"
	"time"

	"feeding-frenzy/internal/config"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SpawnWeights returns the unnormalized probability of each bot level
// (index 0 is level 1) for a player at playerLevel.
//
// Level 1 always carries the bracket base weight. Prey levels strictly
// between 1 and the player share the prey weight evenly, predator levels
// share the predator weight, and the player's own level is never chosen.
func SpawnWeights(playerLevel, maxLevel int) []float64 {
	w := make([]float64, maxLevel)
	set := func(level int, v float64) {
		if level >= 1 && level <= maxLevel {
			w[level-1] = v
		}
	}
	spread := func(from, to int, total float64) {
		if to < from {
			return
		}
		share := total / float64(to-from+1)
		for lvl := from; lvl <= to; lvl++ {
			set(lvl, share)
		}
	}

	switch {
	case playerLevel <= 5:
		set(1, 0.7)
		spread(2, playerLevel-1, 0.2)
		set(playerLevel+1, 0.07)
		set(playerLevel+2, 0.03)
	case playerLevel <= 10:
		set(1, 0.4)
		spread(2, playerLevel-1, 0.3)
		spread(playerLevel+1, maxLevel, 0.3)
	default:
		set(1, 0.3)
		spread(2, playerLevel-1, 0.5)
		spread(playerLevel+1, maxLevel, 0.2)
	}

	set(playerLevel, 0)
	return w
}

// SpawnLevel draws a bot level for playerLevel. An all-zero table yields 1.
func SpawnLevel(playerLevel, maxLevel int, rng *rand.Rand) int {
	w := SpawnWeights(playerLevel, maxLevel)
	if floats.Sum(w) <= 0 {
		return 1
	}
	return int(distuv.NewCategorical(w, rng).Rand()) + 1
}

// Spawner gates bot, power-up and boss spawns by cadence, caps and triggers.
type Spawner struct {
	lastBots      time.Time
	lastPowerUp   time.Time
	firedTriggers map[int]bool

	rng    *rand.Rand
	tuning *config.Tuning
}

// NewSpawner starts the cadence clocks at now.
func NewSpawner(t *config.Tuning, rng *rand.Rand, now time.Time) *Spawner {
	return &Spawner{
		lastBots:      now,
		lastPowerUp:   now,
		firedTriggers: make(map[int]bool),
		rng:           rng,
		tuning:        t,
	}
}

// BotBatch returns how many bots to spawn this tick given the live count.
// The batch never pushes the population past the cap.
func (s *Spawner) BotBatch(now time.Time, live int) int {
	bt := s.tuning.Bots
	if live >= bt.MaxTotal || now.Sub(s.lastBots) < bt.SpawnInterval {
		return 0
	}
	s.lastBots = now
	n := bt.BatchMin + s.rng.IntN(bt.BatchMax-bt.BatchMin+1)
	return min(n, bt.MaxTotal-live)
}

// NewBot rolls level and behavior for one bot.
func (s *Spawner) NewBot(id uint64, playerLevel int, now time.Time) *BotFish {
	level := SpawnLevel(playerLevel, s.tuning.Levels.Max, s.rng)
	behavior := Behavior(s.rng.IntN(int(behaviorCount)))
	return NewBotFish(id, level, behavior, s.tuning, s.rng, now)
}

// PowerUp rolls for a power-up spawn. It returns nil when the cooldown is
// running, the cap is reached or the roll fails.
func (s *Spawner) PowerUp(id uint64, now time.Time, live int) *PowerUp {
	pt := s.tuning.PowerUps
	if live >= pt.MaxActive || now.Sub(s.lastPowerUp) < pt.SpawnCooldown {
		return nil
	}
	if s.rng.Float64() >= pt.SpawnChance {
		return nil
	}
	s.lastPowerUp = now

	kind := AllPowerUpKinds[s.rng.IntN(len(AllPowerUpKinds))]
	w, h, m := s.tuning.Screen.Width, s.tuning.Screen.Height, pt.SpawnMargin
	x := m + s.rng.Float64()*max(w-2*m, 0)
	y := m + s.rng.Float64()*max(h-2*m, 0)
	return NewPowerUp(id, kind, x, y, pt.Size, now, pt.Lifetime, s.rng.Float64()*6.28)
}

// BossTrigger returns the lowest unfired trigger at or below playerLevel and
// marks it fired. bossAlive holds triggers back until the current boss is gone.
func (s *Spawner) BossTrigger(playerLevel int, bossAlive bool) (config.BossTrigger, bool) {
	if bossAlive {
		return config.BossTrigger{}, false
	}
	for _, tr := range s.tuning.Boss.Triggers {
		if tr.Level <= playerLevel && !s.firedTriggers[tr.Level] {
			s.firedTriggers[tr.Level] = true
			return tr, true
		}
	}
	return config.BossTrigger{}, false
}
