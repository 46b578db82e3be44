package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"feeding-frenzy/internal/config"
)

func TestSpawnWeights(t *testing.T) {
	tests := []struct {
		name        string
		playerLevel int
		want        map[int]float64 // level -> weight, every other level 0
	}{
		{"level 2 all prey is level 1", 2, map[int]float64{1: 0.7, 3: 0.07, 4: 0.03}},
		{"level 3", 3, map[int]float64{1: 0.7, 2: 0.2, 4: 0.07, 5: 0.03}},
		{"level 8 shares predators", 8, map[int]float64{
			1: 0.4, 2: 0.05, 3: 0.05, 4: 0.05, 5: 0.05, 6: 0.05, 7: 0.05,
			9: 0.3 / 7, 10: 0.3 / 7, 11: 0.3 / 7, 12: 0.3 / 7, 13: 0.3 / 7, 14: 0.3 / 7, 15: 0.3 / 7,
		}},
		{"max level has no predators", 15, map[int]float64{1: 0.3,
			2: 0.5 / 13, 3: 0.5 / 13, 4: 0.5 / 13, 5: 0.5 / 13, 6: 0.5 / 13, 7: 0.5 / 13, 8: 0.5 / 13,
			9: 0.5 / 13, 10: 0.5 / 13, 11: 0.5 / 13, 12: 0.5 / 13, 13: 0.5 / 13, 14: 0.5 / 13,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := SpawnWeights(tt.playerLevel, 15)
			if len(w) != 15 {
				t.Fatalf("Expected 15 weights, got %d", len(w))
			}
			for lvl := 1; lvl <= 15; lvl++ {
				if got, want := w[lvl-1], tt.want[lvl]; math.Abs(got-want) > 1e-9 {
					t.Errorf("Level %d: expected %v, got %v", lvl, want, got)
				}
			}
		})
	}
}

func TestSpawnLevelDistribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const samples = 20000

	counts := make(map[int]int)
	for i := 0; i < samples; i++ {
		counts[SpawnLevel(3, 15, rng)]++
	}

	if counts[3] != 0 {
		t.Errorf("Expected the player's own level never spawned, got %d", counts[3])
	}
	if p := float64(counts[1]) / samples; math.Abs(p-0.7) > 0.02 {
		t.Errorf("Expected level 1 near 0.7, got %.3f", p)
	}
	for lvl := range counts {
		if lvl < 1 || lvl > 5 {
			t.Errorf("Unexpected level %d for player 3", lvl)
		}
	}
}

func TestBotBatchRespectsIntervalAndCap(t *testing.T) {
	tuning := config.DefaultTuning()
	rng := rand.New(rand.NewPCG(3, 4))
	s := NewSpawner(tuning, rng, t0)

	if n := s.BotBatch(t0.Add(tuning.Bots.SpawnInterval/2), 0); n != 0 {
		t.Errorf("Expected no batch before the interval, got %d", n)
	}
	n := s.BotBatch(t0.Add(tuning.Bots.SpawnInterval), 0)
	if n < tuning.Bots.BatchMin || n > tuning.Bots.BatchMax {
		t.Errorf("Expected batch within [%d, %d], got %d", tuning.Bots.BatchMin, tuning.Bots.BatchMax, n)
	}
	if n := s.BotBatch(t0.Add(2*tuning.Bots.SpawnInterval), tuning.Bots.MaxTotal-1); n != 1 {
		t.Errorf("Expected batch clipped to the remaining cap, got %d", n)
	}
	if n := s.BotBatch(t0.Add(3*tuning.Bots.SpawnInterval), tuning.Bots.MaxTotal); n != 0 {
		t.Errorf("Expected no batch at the cap, got %d", n)
	}
}

func TestNewBotNeverMatchesPlayerLevel(t *testing.T) {
	tuning := config.DefaultTuning()
	s := NewSpawner(tuning, rand.New(rand.NewPCG(5, 6)), t0)

	for i := 0; i < 500; i++ {
		bot := s.NewBot(uint64(i), 6, t0)
		if bot.Level == 6 {
			t.Fatal("Expected no bot at the player's level")
		}
		onLeft := bot.X < 0 && bot.Direction > 0
		onRight := bot.X > tuning.Screen.Width && bot.Direction < 0
		if !onLeft && !onRight {
			t.Fatalf("Expected bot to enter from an edge, got x=%v dir=%v", bot.X, bot.Direction)
		}
	}
}

func TestPowerUpSpawnGates(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.PowerUps.SpawnChance = 1
	s := NewSpawner(tuning, rand.New(rand.NewPCG(7, 8)), t0)
	cooldown := tuning.PowerUps.SpawnCooldown

	if pu := s.PowerUp(1, t0.Add(cooldown/2), 0); pu != nil {
		t.Error("Expected no power-up during the cooldown")
	}
	pu := s.PowerUp(2, t0.Add(cooldown), 0)
	if pu == nil {
		t.Fatal("Expected a power-up once the cooldown passed")
	}
	m := tuning.PowerUps.SpawnMargin
	if pu.X < m || pu.X > tuning.Screen.Width-m || pu.Y < m || pu.Y > tuning.Screen.Height-m {
		t.Errorf("Expected spawn inside the margin, got (%v, %v)", pu.X, pu.Y)
	}
	if pu := s.PowerUp(3, t0.Add(3*cooldown), tuning.PowerUps.MaxActive); pu != nil {
		t.Error("Expected no power-up at the cap")
	}

	tuning.PowerUps.SpawnChance = 0
	if pu := s.PowerUp(4, t0.Add(10*cooldown), 0); pu != nil {
		t.Error("Expected no power-up when the roll fails")
	}
}

func TestBossTriggersFireOnceInOrder(t *testing.T) {
	tuning := config.DefaultTuning()
	s := NewSpawner(tuning, rand.New(rand.NewPCG(9, 10)), t0)

	if _, ok := s.BossTrigger(4, false); ok {
		t.Error("Expected no trigger below level 5")
	}
	if _, ok := s.BossTrigger(12, true); ok {
		t.Error("Expected triggers held while a boss is alive")
	}

	tr, ok := s.BossTrigger(12, false)
	if !ok || tr.Level != 5 || tr.Health != 5 {
		t.Errorf("Expected the level 5 trigger first, got %+v", tr)
	}
	tr, ok = s.BossTrigger(12, false)
	if !ok || tr.Level != 10 || tr.Health != 8 {
		t.Errorf("Expected the level 10 trigger second, got %+v", tr)
	}
	if _, ok := s.BossTrigger(15, false); ok {
		t.Error("Expected every trigger to fire only once")
	}
}
