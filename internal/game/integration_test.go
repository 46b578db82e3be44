package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// INTEGRATION TESTS: FULL LOOP WITH CONCURRENT READERS
// The ticker runs the engine while renderers and input feeders hit it
// =============================================================================

// TestIntegration_GameLoopWithReaders runs the real ticker while a renderer
// pulls snapshots and a tracker pushes input, then checks snapshots stayed
// ordered and consistent.
func TestIntegration_GameLoopWithReaders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timed integration test in short mode")
	}

	sink := &recordingSink{}
	engine := NewEngine(EngineConfig{TickRate: 60, Seed: 99, Sinks: []SessionSink{sink}})

	var events atomic.Int64
	engine.SetEventHandler(func(Event) { events.Add(1) })

	engine.Start()
	defer engine.Stop()

	var (
		wg        sync.WaitGroup
		stop      = make(chan struct{})
		reads     atomic.Int64
		outOfSync atomic.Int64
	)

	// Renderer
	wg.Add(1)
	go func() {
		defer wg.Done()
		var lastSeq uint64
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := engine.GetSnapshot()
			if snap.Sequence < lastSeq {
				outOfSync.Add(1)
			}
			lastSeq = snap.Sequence
			if len(snap.Bots) > engine.limits.MaxBots {
				outOfSync.Add(1)
			}
			reads.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Tracker sweeping the screen with the mouth flapping
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				i++
				engine.SetInput(Input{X: float64(i*7%1280), Y: float64(i*3%720), Eating: i%4 != 0})
				if i%100 == 0 {
					engine.RequestUltimate()
				}
			}
		}
	}()

	time.Sleep(time.Second)
	engine.Reset()
	time.Sleep(500 * time.Millisecond)
	close(stop)
	wg.Wait()

	if outOfSync.Load() != 0 {
		t.Errorf("Expected ordered, bounded snapshots, got %d violations", outOfSync.Load())
	}
	if reads.Load() == 0 {
		t.Error("Expected the renderer to read snapshots")
	}
	if events.Load() == 0 {
		t.Error("Expected at least the reset event")
	}
	if got := engine.GetSnapshot().TickNum; got < 30 {
		t.Errorf("Expected the loop to tick steadily, got %d ticks", got)
	}
}
