package game

import (
	"sync"
	"testing"
	"time"

	"feeding-frenzy/internal/config"
)

const testTick = time.Second / 30

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// recordingSink collects session summaries.
type recordingSink struct {
	mu       sync.Mutex
	sessions []SessionSummary
}

func (s *recordingSink) RecordSession(sum SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sum)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// recordingAudio collects played cues.
type recordingAudio struct {
	NoopAudio
	mu   sync.Mutex
	cues []Cue
}

func (a *recordingAudio) Play(c Cue) {
	a.mu.Lock()
	a.cues = append(a.cues, c)
	a.mu.Unlock()
}

func (a *recordingAudio) played(c Cue) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, x := range a.cues {
		if x == c {
			n++
		}
	}
	return n
}

type testRig struct {
	engine *Engine
	clock  *fakeClock
	sink   *recordingSink
	audio  *recordingAudio
	events []Event
}

// newTestRig builds an engine on a fake clock. Random spawning is switched
// off so tests place every entity themselves.
func newTestRig(t *testing.T, mutate func(*config.Tuning)) *testRig {
	t.Helper()
	tuning := config.DefaultTuning()
	tuning.Bots.MaxTotal = 0
	tuning.PowerUps.SpawnChance = 0
	if mutate != nil {
		mutate(tuning)
	}
	r := &testRig{
		clock: newFakeClock(),
		sink:  &recordingSink{},
		audio: &recordingAudio{},
	}
	r.engine = NewEngine(EngineConfig{
		Tuning: tuning,
		Seed:   42,
		Clock:  r.clock,
		Audio:  r.audio,
		Sinks:  []SessionSink{r.sink},
	})
	r.engine.SetEventHandler(func(ev Event) { r.events = append(r.events, ev) })
	return r
}

// step advances the clock one tick and runs it.
func (r *testRig) step() {
	r.engine.Step(r.clock.Advance(testTick))
}

func (r *testRig) stepN(n int) {
	for i := 0; i < n; i++ {
		r.step()
	}
}

// hold keeps the input on the player's current position.
func (r *testRig) hold(eating bool) {
	p := r.engine.player
	r.engine.SetInput(Input{X: p.X, Y: p.Y, Eating: eating})
}

// placeBot puts a stationary bot of level on top of the player.
func (r *testRig) placeBot(level int) *BotFish {
	e := r.engine
	bot := NewBotFish(e.nextEntityID(), level, BehaviorNormal, e.tuning, e.rng, r.clock.Now())
	bot.X, bot.Y = e.player.X, e.player.Y
	bot.BaseSpeed = 0
	e.bots = append(e.bots, bot)
	return bot
}

func (r *testRig) countEvents(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	r := newTestRig(t, nil)

	snap := r.engine.GetSnapshot()
	if snap.Status != StatusPlaying {
		t.Errorf("Expected status playing, got %s", snap.Status)
	}
	if snap.Player.Level != 2 {
		t.Errorf("Expected level 2, got %d", snap.Player.Level)
	}
	if snap.Player.Health != 3 {
		t.Errorf("Expected health 3, got %d", snap.Player.Health)
	}
	if snap.Player.X != 640 || snap.Player.Y != 360 {
		t.Errorf("Expected player at screen center, got (%v, %v)", snap.Player.X, snap.Player.Y)
	}
	if snap.ScoreToWin != 8340 {
		t.Errorf("Expected score to win 8340, got %d", snap.ScoreToWin)
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 1})

	engine.Start()
	time.Sleep(100 * time.Millisecond)
	engine.Stop()

	// Should not panic on double stop
	engine.Stop()

	if engine.GetSnapshot().TickNum == 0 {
		t.Error("Expected at least one tick while running")
	}
}

func TestEngineRestartsAfterStop(t *testing.T) {
	engine := NewEngine(EngineConfig{Seed: 1})

	engine.Start()
	time.Sleep(60 * time.Millisecond)
	engine.Stop()
	first := engine.GetSnapshot().TickNum

	engine.Start()
	time.Sleep(60 * time.Millisecond)
	engine.Stop()

	if got := engine.GetSnapshot().TickNum; got <= first {
		t.Errorf("Expected ticks to resume after restart, got %d then %d", first, got)
	}
}

func TestStopAbandonsUnfinishedSession(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(true)
	r.placeBot(1)
	r.step()
	if r.engine.player.Score == 0 {
		t.Fatal("Expected a scoring session before stop")
	}

	r.engine.Start()
	r.engine.Stop()

	if r.sink.count() != 1 || r.sink.sessions[0].Outcome != OutcomeAbandoned {
		t.Fatalf("Expected one abandoned session on stop, got %+v", r.sink.sessions)
	}
	if r.sink.sessions[0].FishEaten != 1 {
		t.Errorf("Expected 1 fish eaten in summary, got %d", r.sink.sessions[0].FishEaten)
	}

	// The recorded session is not reported a second time.
	r.engine.Reset()
	if r.sink.count() != 1 {
		t.Errorf("Expected no further session after reset, got %d", r.sink.count())
	}
}

func TestStopWithoutScoreRecordsNothing(t *testing.T) {
	r := newTestRig(t, nil)
	r.engine.Start()
	r.engine.Stop()
	if r.sink.count() != 0 {
		t.Errorf("Expected no session for an empty game, got %d", r.sink.count())
	}
}

func TestFiveLevelOneEatsBuildCombo(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(true)

	for i := 0; i < 5; i++ {
		r.placeBot(1)
		r.step()
	}

	p := r.engine.player
	if p.ComboCount != 5 {
		t.Errorf("Expected combo 5, got %d", p.ComboCount)
	}
	if p.FishEaten != 5 {
		t.Errorf("Expected 5 fish eaten, got %d", p.FishEaten)
	}
	// Each award uses the streak before the eat: 1, 1, 1, floor(1.5), floor(1.5)
	if p.Score != 5 {
		t.Errorf("Expected score 5, got %d", p.Score)
	}
	if m := p.ScoreMultiplier(); m != 2.0 {
		t.Errorf("Expected multiplier 2.0 at combo 5, got %v", m)
	}
	if p.UltimateCharge != 50 {
		t.Errorf("Expected ultimate charge 50, got %v", p.UltimateCharge)
	}
	if n := r.countEvents(EventTypeCombo); n != 2 {
		t.Errorf("Expected combo milestones at 3 and 5, got %d events", n)
	}
	if r.audio.played(CueCombo5) != 1 {
		t.Error("Expected combo_5 cue")
	}
	if r.audio.played(CueEat) != 5 {
		t.Errorf("Expected 5 eat cues, got %d", r.audio.played(CueEat))
	}
}

func TestComboLapsesAfterTimeout(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(true)
	r.placeBot(1)
	r.step()

	r.engine.Step(r.clock.Advance(3 * time.Second))

	if c := r.engine.player.ComboCount; c != 0 {
		t.Errorf("Expected combo reset after timeout, got %d", c)
	}
}

func TestEatingRules(t *testing.T) {
	tests := []struct {
		name      string
		botLevel  int
		eating    bool
		ultimate  bool
		wantEaten bool
		wantHit   bool
	}{
		{"smaller fish eaten", 1, true, false, true, false},
		{"smaller fish ignored when not eating", 1, false, false, false, false},
		{"equal level is neutral", 2, true, false, false, false},
		{"equal level neutral when idle", 2, false, false, false, false},
		{"bigger fish bites", 4, true, false, false, true},
		{"bigger fish bites idle player", 4, false, false, false, true},
		{"ultimate eats bigger fish", 9, true, true, true, false},
		{"ultimate blocks bite", 9, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t, nil)
			p := r.engine.player
			if tt.ultimate {
				p.UltimateCharge = p.tuning.Ultimate.ChargeMax
				r.engine.RequestUltimate()
			}
			r.hold(tt.eating)
			r.placeBot(tt.botLevel)
			r.step()

			eaten := len(r.engine.bots) == 0
			if eaten != tt.wantEaten {
				t.Errorf("Expected eaten=%v, got %v", tt.wantEaten, eaten)
			}
			hit := p.Health < p.MaxHealth
			if hit != tt.wantHit {
				t.Errorf("Expected hit=%v, got %v (health %d)", tt.wantHit, hit, p.Health)
			}
		})
	}
}

func TestContactDamagePolicies(t *testing.T) {
	tests := []struct {
		policy     string
		wantHealth int
	}{
		// 90 ticks is three seconds: the guard lapses once at two seconds
		{config.ContactDamageEdge, 2},
		{config.ContactDamageTick, 1},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			r := newTestRig(t, func(tu *config.Tuning) { tu.Collision.ContactDamage = tt.policy })
			r.hold(false)
			r.placeBot(6)
			r.stepN(90)

			if h := r.engine.player.Health; h != tt.wantHealth {
				t.Errorf("Expected health %d, got %d", tt.wantHealth, h)
			}
		})
	}
}

func TestContactDuringGuardHitsOnceAfterwards(t *testing.T) {
	r := newTestRig(t, nil)
	p := r.engine.player
	p.ActivatePowerUp(PowerUpShield, r.clock.Now())
	r.hold(false)
	r.placeBot(6)

	// Shield lasts eight seconds; the contact hits once when it ends.
	r.stepN(10 * 30)

	if p.Health != p.MaxHealth-1 {
		t.Errorf("Expected exactly one hit after shield, got health %d", p.Health)
	}
}

func TestHealthNeverIncreases(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(false)
	r.placeBot(8)

	last := r.engine.player.Health
	for i := 0; i < 300 && !r.engine.status.Terminal(); i++ {
		r.step()
		h := r.engine.player.Health
		if h > last {
			t.Fatalf("Health increased from %d to %d at tick %d", last, h, i)
		}
		last = h
	}
}

func TestGameOverRecordsSessionOnce(t *testing.T) {
	r := newTestRig(t, func(tu *config.Tuning) { tu.Player.MaxHealth = 1 })
	r.hold(false)
	r.placeBot(6)
	r.step()

	if r.engine.status != StatusGameOver {
		t.Fatalf("Expected game over, got %s", r.engine.status)
	}
	r.stepN(10)

	if r.sink.count() != 1 {
		t.Errorf("Expected 1 recorded session, got %d", r.sink.count())
	}
	if got := r.sink.sessions[0].Outcome; got != OutcomeGameOver {
		t.Errorf("Expected outcome game_over, got %s", got)
	}
	if r.countEvents(EventTypeGameOver) != 1 {
		t.Error("Expected one game_over event")
	}
	if r.audio.played(CueGameOver) != 1 {
		t.Error("Expected game_over cue")
	}

	// A finished session is not recorded again on reset
	r.engine.Reset()
	if r.sink.count() != 1 {
		t.Errorf("Expected reset after game over not to record, got %d sessions", r.sink.count())
	}
}

func TestTerminalStateFreezesWorld(t *testing.T) {
	r := newTestRig(t, func(tu *config.Tuning) { tu.Player.MaxHealth = 1 })
	r.hold(false)
	bot := r.placeBot(6)
	bot.BaseSpeed = 2
	r.step()
	x := bot.X

	r.stepN(30)
	if bot.X != x {
		t.Errorf("Expected bots frozen after game over, moved %v -> %v", x, bot.X)
	}
}

func TestVictoryLocksMaxLevel(t *testing.T) {
	r := newTestRig(t, nil)
	p := r.engine.player
	p.Score = p.tuning.Derived.TotalScoreToWin - 1
	r.hold(true)
	r.placeBot(1)
	r.step()

	if r.engine.status != StatusVictory {
		t.Fatalf("Expected victory, got %s", r.engine.status)
	}
	if p.Level != 15 {
		t.Errorf("Expected level 15, got %d", p.Level)
	}
	if r.sink.count() != 1 || r.sink.sessions[0].Outcome != OutcomeVictory {
		t.Errorf("Expected one victory session, got %+v", r.sink.sessions)
	}
	if n := r.countEvents(EventTypeLevelUp); n != 13 {
		t.Errorf("Expected 13 level ups, got %d", n)
	}
}

func TestTuningObserverFiresWhenTuningApplies(t *testing.T) {
	r := newTestRig(t, nil)
	var applied []*config.Tuning
	r.engine.SetTuningObserver(func(tun *config.Tuning) { applied = append(applied, tun) })

	next := config.DefaultTuning()
	next.Screen.Width, next.Screen.Height = 1920, 1080
	r.engine.SetTuning(next)
	r.stepN(3)
	if len(applied) != 0 {
		t.Fatalf("Expected no observer call mid-session, got %d", len(applied))
	}

	r.engine.Reset()
	if len(applied) != 1 || applied[0] != next {
		t.Fatalf("Expected the new tuning observed once on reset, got %v", applied)
	}

	r.engine.Reset()
	if len(applied) != 1 {
		t.Errorf("Expected no observer call without a pending tuning, got %d", len(applied))
	}
}

func TestResetAbandonsUnfinishedSession(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(true)
	r.placeBot(1)
	r.step()
	r.placeBot(6)

	r.engine.Reset()

	if r.sink.count() != 1 || r.sink.sessions[0].Outcome != OutcomeAbandoned {
		t.Fatalf("Expected one abandoned session, got %+v", r.sink.sessions)
	}
	e := r.engine
	if len(e.bots) != 0 || e.boss != nil || len(e.powerUps) != 0 {
		t.Error("Expected all entities cleared on reset")
	}
	if e.player.Score != 0 || e.player.ComboCount != 0 {
		t.Error("Expected fresh player on reset")
	}
	if r.countEvents(EventTypeSessionReset) != 1 {
		t.Error("Expected session_reset event")
	}
	if snap := e.GetSnapshot(); snap.Player.FishEaten != 0 {
		t.Error("Expected snapshot to reflect reset immediately")
	}
}

func TestResetWithoutScoreRecordsNothing(t *testing.T) {
	r := newTestRig(t, nil)
	r.stepN(5)
	r.engine.Reset()

	if r.sink.count() != 0 {
		t.Errorf("Expected no session for an empty game, got %d", r.sink.count())
	}
}

func TestSetTuningAppliesOnReset(t *testing.T) {
	r := newTestRig(t, nil)

	next := config.DefaultTuning()
	next.Player.MaxHealth = 5
	r.engine.SetTuning(next)
	r.step()

	if h := r.engine.player.MaxHealth; h != 3 {
		t.Errorf("Expected running session to keep max health 3, got %d", h)
	}

	r.engine.Reset()
	if h := r.engine.player.MaxHealth; h != 5 {
		t.Errorf("Expected max health 5 after reset, got %d", h)
	}
}

func TestBossEncounter(t *testing.T) {
	r := newTestRig(t, nil)
	e := r.engine
	p := e.player
	p.Level = 5
	p.ScoreToNext = p.thresholdFor(5)
	p.Score = 120
	r.hold(false)
	r.step()

	if e.boss == nil {
		t.Fatal("Expected boss spawned at level 5")
	}
	if e.boss.Level != 7 || e.boss.MaxHealth != 5 {
		t.Errorf("Expected level 7 boss with 5 health, got level %d health %d", e.boss.Level, e.boss.MaxHealth)
	}

	boss := e.boss
	boss.X, boss.Y = p.X, p.Y
	boss.Speed = 0
	boss.Pattern = PatternChase
	boss.nextPattern = r.clock.Now().Add(time.Hour)

	// Touching without the ultimate costs exactly one health per contact
	r.stepN(15)
	if p.Health != 2 {
		t.Fatalf("Expected one boss hit, got health %d", p.Health)
	}

	p.UltimateCharge = p.tuning.Ultimate.ChargeMax
	e.RequestUltimate()
	r.hold(true)
	r.stepN(100)

	if e.boss != nil {
		t.Fatalf("Expected boss defeated, health %d", boss.Health)
	}
	if p.BossesDefeated != 1 {
		t.Errorf("Expected 1 boss defeated, got %d", p.BossesDefeated)
	}
	if n := r.countEvents(EventTypeBossHit); n != 4 {
		t.Errorf("Expected 4 boss hits before the final blow, got %d", n)
	}
	if r.countEvents(EventTypeBossDefeated) != 1 {
		t.Error("Expected boss_defeated event")
	}
	if p.Score < 120+350 {
		t.Errorf("Expected boss reward of 350, score %d", p.Score)
	}
	if p.Health != 2 {
		t.Errorf("Expected no damage under ultimate, got health %d", p.Health)
	}

	// Trigger 5 fired; no second boss until level 10
	r.step()
	if e.boss != nil {
		t.Error("Expected trigger to fire once per session")
	}
}

func TestPowerUpPickupAndExpiry(t *testing.T) {
	r := newTestRig(t, nil)
	e := r.engine
	p := e.player
	r.hold(false)
	e.powerUps = append(e.powerUps, NewPowerUp(e.nextEntityID(), PowerUpSpeed, p.X, p.Y, 30, r.clock.Now(), 10*time.Second, 0))
	r.step()

	if len(e.powerUps) != 0 {
		t.Fatal("Expected power-up consumed on overlap without eating")
	}
	if p.SpeedMultiplier != 2.0 {
		t.Errorf("Expected speed 2.0, got %v", p.SpeedMultiplier)
	}

	r.engine.Step(r.clock.Advance(5 * time.Second))
	if p.SpeedMultiplier != 1.0 {
		t.Errorf("Expected speed restored to 1.0, got %v", p.SpeedMultiplier)
	}
	if r.countEvents(EventTypePowerUpExpired) != 1 {
		t.Error("Expected power_up_expired event")
	}
}

func TestMagnetPullsEdibleFish(t *testing.T) {
	r := newTestRig(t, nil)
	e := r.engine
	p := e.player
	p.ActivatePowerUp(PowerUpMagnet, r.clock.Now())
	r.hold(false)

	prey := r.placeBot(1)
	prey.X = p.X + 150
	predator := r.placeBot(6)
	predator.X, predator.Y = p.X-150, p.Y
	predator.Behavior = BehaviorZigzag

	r.step()

	if prey.X >= p.X+150 {
		t.Errorf("Expected prey pulled toward player, x=%v", prey.X)
	}
	if predator.X != p.X-150 {
		t.Errorf("Expected predator unaffected by magnet, x=%v", predator.X)
	}
}

func TestUltimateRequestNeedsFullMeter(t *testing.T) {
	r := newTestRig(t, nil)
	p := r.engine.player
	p.UltimateCharge = 40
	r.engine.RequestUltimate()
	r.step()

	if p.UltimateActive() {
		t.Fatal("Expected ultimate to stay idle with a partial meter")
	}

	// The request is consumed, not queued
	p.UltimateCharge = p.tuning.Ultimate.ChargeMax
	r.step()
	if p.UltimateActive() {
		t.Error("Expected stale request not to fire")
	}

	r.engine.RequestUltimate()
	r.step()
	if !p.UltimateActive() {
		t.Error("Expected ultimate active after request")
	}
	if snap := r.engine.GetSnapshot(); !snap.Player.UltimateActive || snap.Player.UltimateMs <= 0 {
		t.Error("Expected snapshot to show running ultimate")
	}
}

func TestUltimateAutoActivate(t *testing.T) {
	r := newTestRig(t, func(tu *config.Tuning) { tu.Ultimate.AutoActivate = true })
	p := r.engine.player
	p.UltimateCharge = p.tuning.Ultimate.ChargeMax
	r.step()

	if !p.UltimateActive() {
		t.Error("Expected auto activation with a full meter")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := newTestRig(t, nil)
	r.placeBot(1)
	r.step()

	snap := r.engine.GetSnapshot()
	if len(snap.Bots) != 1 {
		t.Fatalf("Expected 1 bot in snapshot, got %d", len(snap.Bots))
	}
	snap.Bots[0].Level = 99

	again := r.engine.GetSnapshot()
	if again.Bots[0].Level == 99 {
		t.Error("Expected snapshot reads to be independent copies")
	}
	if again.TickNum != 1 {
		t.Errorf("Expected tick 1, got %d", again.TickNum)
	}
}

func TestEventSequenceIsMonotonic(t *testing.T) {
	r := newTestRig(t, nil)
	r.hold(true)
	for i := 0; i < 4; i++ {
		r.placeBot(1)
		r.step()
	}

	var last uint64
	for _, ev := range r.events {
		if ev.Sequence <= last {
			t.Fatalf("Expected increasing sequence, got %d after %d", ev.Sequence, last)
		}
		last = ev.Sequence
	}
}

func TestTickObserver(t *testing.T) {
	r := newTestRig(t, nil)
	var stats []TickStats
	r.engine.SetTickObserver(func(s TickStats) { stats = append(stats, s) })
	r.stepN(3)

	if len(stats) != 3 {
		t.Fatalf("Expected 3 observations, got %d", len(stats))
	}
	if stats[2].TickNum != 3 {
		t.Errorf("Expected tick 3, got %d", stats[2].TickNum)
	}
}
