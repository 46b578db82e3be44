package game

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"feeding-frenzy/internal/config"
)

// Input is what the tracking front-end feeds the core each frame.
type Input struct {
	X, Y   float64
	Eating bool
}

// TickStats is handed to the tick observer after every tick.
type TickStats struct {
	Duration time.Duration
	TickNum  uint64
	Status   GameStatus
	Bots     int
	PowerUps int
	HasBoss  bool
	Score    int
	Level    int
	Events   int
}

// EngineConfig wires the engine's tuning and collaborators.
// Zero-valued collaborators fall back to noops.
type EngineConfig struct {
	Tuning   *config.Tuning
	Limits   config.ResourceLimits
	TickRate int
	Seed     int64 // 0 picks a time-based seed
	Clock    Clock
	Audio    AudioProvider
	Assets   AssetProvider
	Sinks    []SessionSink
	EventLog *EventLog
}

// Engine runs the fixed-tick game loop. All game state is mutated only
// inside a tick; collaborators feed Input and read snapshots.
type Engine struct {
	mu sync.Mutex

	tuning        *config.Tuning
	pendingTuning *config.Tuning
	limits        config.ResourceLimits

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	clock Clock
	rng   *rand.Rand
	seed  uint64

	// Session state
	status   GameStatus
	player   *Player
	bots     []*BotFish
	boss     *BossFish
	powerUps []*PowerUp
	notes    *notifications
	spawner  *Spawner

	// Bots whose current contact already dealt damage
	contacts     map[uint64]bool
	nextContacts map[uint64]bool
	bossContact  bool // current boss contact already dealt damage

	// Latest external input, applied at the start of the next tick
	input             Input
	ultimateRequested bool

	tickNum      uint64
	eventSeq     uint64
	nextID       uint64
	sessionStart time.Time
	sessionDone  bool

	// Per-tick outputs, dispatched after the lock is released
	events   []Event
	cues     []Cue
	finished []SessionSummary

	snapshotPool *SnapshotPool
	eventLog     *EventLog
	audio        AudioProvider
	assets       AssetProvider
	sinks        []SessionSink

	onEvent func(Event)
	onTick  func(TickStats)
	onTuned func(*config.Tuning)
}

// NewEngine creates an engine with a fresh session ready to tick.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Tuning == nil {
		cfg.Tuning = config.DefaultTuning()
	}
	if cfg.Limits == (config.ResourceLimits{}) {
		cfg.Limits = config.DefaultLimits()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}
	if cfg.Audio == nil {
		cfg.Audio = NoopAudio{}
	}
	if cfg.Assets == nil {
		cfg.Assets = NoopAssets{}
	}
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Engine{
		tuning:       cfg.Tuning,
		limits:       cfg.Limits,
		tickRate:     cfg.TickRate,
		stopChan:     make(chan struct{}),
		clock:        cfg.Clock,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed:         seed,
		notes:        newNotifications(cfg.Limits.MaxNotifications),
		contacts:     make(map[uint64]bool),
		nextContacts: make(map[uint64]bool),
		events:       make([]Event, 0, cfg.Limits.MaxEvents),
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     cfg.EventLog,
		audio:        cfg.Audio,
		assets:       cfg.Assets,
		sinks:        cfg.Sinks,
	}

	now := e.clock.Now()
	e.newSession(now)
	e.produceSnapshot(now)
	return e
}

// Start loads collaborators and begins the game loop. A stopped engine can
// be started again.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	stop := e.stopChan
	e.mu.Unlock()

	if err := e.audio.Load(); err != nil {
		log.Printf("⚠️ Audio unavailable, continuing silent: %v", err)
		e.audio = NoopAudio{}
	}
	if err := e.assets.Load(); err != nil {
		log.Printf("⚠️ Assets unavailable, using placeholders: %v", err)
	}

	ticker := time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.mu.Lock()
	e.ticker = ticker
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS (seed %d)", e.tickRate, e.seed)
}

// Stop stops the game loop and tears collaborators down. An unfinished
// session is recorded as abandoned and a fresh one takes its place.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)

	now := e.clock.Now()
	var finished []SessionSummary
	tuned := false
	if sum, ok := e.abandonLocked(now); ok {
		finished = append(finished, sum)
		tuned = e.newSession(now)
		e.produceSnapshot(now)
	}
	audio, onTuned, tuning := e.audio, e.onTuned, e.tuning
	e.mu.Unlock()

	e.dispatch(nil, nil, finished, audio, nil)
	if tuned && onTuned != nil {
		onTuned(tuning)
	}
	e.audio.Teardown()
	e.assets.Teardown()
	log.Println("🛑 Game engine stopped")
}

// tick samples the clock once and advances the game.
func (e *Engine) tick() {
	e.Step(e.clock.Now())
}

// Step advances the game by exactly one tick at now.
func (e *Engine) Step(now time.Time) {
	start := time.Now()

	e.mu.Lock()
	e.tickNum++
	e.events = e.events[:0]
	e.cues = e.cues[:0]
	e.finished = e.finished[:0]

	if !e.status.Terminal() {
		// 1. external input
		in := e.input
		e.applyUltimateRequest(now)

		// 2. player
		upd := e.player.Update(in.X, in.Y, in.Eating, now)
		for _, kind := range upd.ExpiredPowerUps {
			e.emit(EventTypePowerUpExpired, now, PowerUpPayload{Kind: kind})
		}
		if upd.UltimateEnded {
			e.emit(EventTypeUltimateEnded, now, nil)
		}

		// 3. bots, boss, power-ups
		e.updateBots(now)
		e.updateBoss(now)
		e.updatePowerUps(now)
		e.applyMagnet()

		// 4. collisions
		e.resolveCollisions(now)

		// 5. progression and win
		e.checkProgression(now)
	}

	// 6. cosmetic timers
	e.notes.expire(now)

	e.produceSnapshot(now)

	events := append([]Event(nil), e.events...)
	cues := append([]Cue(nil), e.cues...)
	finished := append([]SessionSummary(nil), e.finished...)
	stats := e.tickStats(len(events))
	onEvent, onTick := e.onEvent, e.onTick
	audio := e.audio
	e.mu.Unlock()

	e.dispatch(events, cues, finished, audio, onEvent)

	stats.Duration = time.Since(start)
	if onTick != nil {
		onTick(stats)
	}
}

// dispatch hands tick outputs to collaborators outside the engine lock.
func (e *Engine) dispatch(events []Event, cues []Cue, finished []SessionSummary, audio AudioProvider, onEvent func(Event)) {
	for _, cue := range cues {
		audio.Play(cue)
	}
	for _, ev := range events {
		if e.eventLog != nil {
			e.eventLog.Emit(ev)
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
	for _, summary := range finished {
		for _, sink := range e.sinks {
			if err := sink.RecordSession(summary); err != nil {
				log.Printf("⚠️ Session sink failed: %v", err)
			}
		}
	}
}

func (e *Engine) tickStats(events int) TickStats {
	return TickStats{
		TickNum:  e.tickNum,
		Status:   e.status,
		Bots:     len(e.bots),
		PowerUps: len(e.powerUps),
		HasBoss:  e.boss != nil,
		Score:    e.player.Score,
		Level:    e.player.Level,
		Events:   events,
	}
}

// newSession reinitializes every piece of session state at now.
// It reports whether a pending tuning took effect.
func (e *Engine) newSession(now time.Time) (tuned bool) {
	if e.pendingTuning != nil {
		e.tuning = e.pendingTuning
		e.pendingTuning = nil
		tuned = true
	}
	e.status = StatusPlaying
	e.player = NewPlayer(e.tuning)
	e.bots = e.bots[:0]
	e.boss = nil
	e.powerUps = e.powerUps[:0]
	e.notes.clear()
	e.spawner = NewSpawner(e.tuning, e.rng, now)
	clear(e.contacts)
	clear(e.nextContacts)
	e.bossContact = false
	e.input = Input{X: e.player.X, Y: e.player.Y}
	e.ultimateRequested = false
	e.sessionStart = now
	e.sessionDone = false
	return tuned
}

// abandonLocked summarizes an unfinished session that scored.
func (e *Engine) abandonLocked(now time.Time) (SessionSummary, bool) {
	if e.sessionDone || e.player.Score == 0 {
		return SessionSummary{}, false
	}
	return e.summary(OutcomeAbandoned, now), true
}

// Reset atomically ends the current session and starts a new one.
// An unfinished session is recorded as abandoned.
func (e *Engine) Reset() {
	e.mu.Lock()
	now := e.clock.Now()
	e.events = e.events[:0]
	e.cues = e.cues[:0]
	e.finished = e.finished[:0]

	if sum, ok := e.abandonLocked(now); ok {
		e.finished = append(e.finished, sum)
	}
	tuned := e.newSession(now)
	e.emit(EventTypeSessionReset, now, nil)
	e.produceSnapshot(now)

	events := append([]Event(nil), e.events...)
	finished := append([]SessionSummary(nil), e.finished...)
	onEvent, onTuned, tuning := e.onEvent, e.onTuned, e.tuning
	audio := e.audio
	e.mu.Unlock()

	log.Println("🔄 Game reset")
	if tuned && onTuned != nil {
		onTuned(tuning)
	}
	e.dispatch(events, nil, finished, audio, onEvent)
}

// SetInput records the latest tracking input. Missing updates leave the
// previous input in place.
func (e *Engine) SetInput(in Input) {
	e.mu.Lock()
	e.input = in
	e.mu.Unlock()
}

// RequestUltimate asks for the ultimate on the next tick.
func (e *Engine) RequestUltimate() {
	e.mu.Lock()
	e.ultimateRequested = true
	e.mu.Unlock()
}

// SetTuning queues new tuning; it takes effect on the next reset.
func (e *Engine) SetTuning(t *config.Tuning) {
	e.mu.Lock()
	e.pendingTuning = t
	e.mu.Unlock()
}

// Tuning returns the tuning of the running session.
func (e *Engine) Tuning() *config.Tuning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tuning
}

// SetEventHandler registers fn to receive every event after its tick.
// fn must not call back into the engine's mutating methods synchronously.
func (e *Engine) SetEventHandler(fn func(Event)) {
	e.mu.Lock()
	e.onEvent = fn
	e.mu.Unlock()
}

// SetTickObserver registers fn to receive per-tick stats.
func (e *Engine) SetTickObserver(fn func(TickStats)) {
	e.mu.Lock()
	e.onTick = fn
	e.mu.Unlock()
}

// SetTuningObserver installs fn, called with the new tuning whenever a
// pending SetTuning takes effect at a session start.
func (e *Engine) SetTuningObserver(fn func(*config.Tuning)) {
	e.mu.Lock()
	e.onTuned = fn
	e.mu.Unlock()
}

// AddSink registers another session sink.
func (e *Engine) AddSink(s SessionSink) {
	e.mu.Lock()
	e.sinks = append(e.sinks, s)
	e.mu.Unlock()
}

// Assets returns the injected asset provider.
func (e *Engine) Assets() AssetProvider {
	return e.assets
}

// GetSnapshot returns a copy of the latest tick's snapshot.
func (e *Engine) GetSnapshot() GameSnapshot {
	snap, _ := e.snapshotPool.Read()
	return snap
}

// EventLogStats returns event log counters, nil without a log.
func (e *Engine) EventLogStats() *EventLogStats {
	if e.eventLog == nil {
		return nil
	}
	stats := e.eventLog.Stats()
	return &stats
}

func (e *Engine) nextEntityID() uint64 {
	e.nextID++
	return e.nextID
}

func (e *Engine) target() Target {
	return Target{X: e.player.X, Y: e.player.Y, Level: e.player.Level, Frozen: e.player.FreezeEnemies}
}
