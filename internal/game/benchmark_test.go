package game

import (
	"math/rand/v2"
	"testing"

	"feeding-frenzy/internal/config"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

func BenchmarkEngineTick_5Bots(b *testing.B)  { benchmarkEngineTick(b, 5) }
func BenchmarkEngineTick_15Bots(b *testing.B) { benchmarkEngineTick(b, 15) }
func BenchmarkEngineTick_32Bots(b *testing.B) { benchmarkEngineTick(b, 32) }

func benchmarkEngineTick(b *testing.B, bots int) {
	tuning := config.DefaultTuning()
	tuning.Bots.MaxTotal = bots
	tuning.Bots.SpawnInterval = 0
	clock := newFakeClock()
	engine := NewEngine(EngineConfig{Tuning: tuning, Seed: 7, Clock: clock})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.Step(clock.Advance(testTick))
		if engine.status.Terminal() {
			engine.Reset()
		}
	}
}

func BenchmarkProduceSnapshot(b *testing.B) {
	engine := NewEngine(EngineConfig{Seed: 7, Clock: newFakeClock()})
	now := engine.clock.Now()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.produceSnapshot(now)
	}
}

func BenchmarkSnapshotRead(b *testing.B) {
	engine := NewEngine(EngineConfig{Seed: 7, Clock: newFakeClock()})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = engine.GetSnapshot()
	}
}

func BenchmarkSpawnLevel(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < b.N; i++ {
		_ = SpawnLevel(i%15+1, 15, rng)
	}
}
