package game

import (
	"image"
	"time"
)

// Cue is an audio cue key.
type Cue string

const (
	CueEat              Cue = "eat"
	CueLevelUp          Cue = "level_up"
	CuePowerUpCollect   Cue = "power_up_collect"
	CueUltimateReady    Cue = "ultimate_ready"
	CueUltimateActivate Cue = "ultimate_activate"
	CueHit              Cue = "hit"
	CueGameOver         Cue = "game_over"
	CueVictory          Cue = "victory"
	CueBossHit          Cue = "boss_hit"
	CueBossDefeated     Cue = "boss_defeated"
	CueCombo3           Cue = "combo_3"
	CueCombo5           Cue = "combo_5"
	CueCombo10          Cue = "combo_10"
)

// AllCues lists every cue key.
var AllCues = []Cue{
	CueEat, CueLevelUp, CuePowerUpCollect, CueUltimateReady, CueUltimateActivate,
	CueHit, CueGameOver, CueVictory, CueBossHit, CueBossDefeated,
	CueCombo3, CueCombo5, CueCombo10,
}

// AudioProvider plays cues. Play is called from the tick and must not block.
type AudioProvider interface {
	Load() error
	Teardown()
	Play(cue Cue)
}

// AssetProvider supplies sprites to renderers.
type AssetProvider interface {
	Load() error
	Teardown()
	FishSprite(level int, mouthOpen bool) image.Image
}

// SessionSummary is the final tally handed to persistence.
type SessionSummary struct {
	Outcome        string
	Score          int
	FishEaten      int
	Level          int
	MaxCombo       int
	BossesDefeated int
	StartedAt      time.Time
	EndedAt        time.Time
}

// Duration is the session's playtime.
func (s SessionSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Session outcomes.
const (
	OutcomeGameOver  = "game_over"
	OutcomeVictory   = "victory"
	OutcomeAbandoned = "abandoned"
)

// SessionSink receives one summary per finished session.
type SessionSink interface {
	RecordSession(SessionSummary) error
}

// Clock samples the tick time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// NoopAudio discards cues.
type NoopAudio struct{}

func (NoopAudio) Load() error { return nil }
func (NoopAudio) Teardown()   {}
func (NoopAudio) Play(Cue)    {}

// NoopAssets returns no sprites; renderers fall back to shapes.
type NoopAssets struct{}

func (NoopAssets) Load() error                      { return nil }
func (NoopAssets) Teardown()                        {}
func (NoopAssets) FishSprite(int, bool) image.Image { return nil }
