// Package audio plays game cues through a beep mixer.
//
// Each cue is rendered once into a PCM buffer at Load: from <SoundsDir>/<cue>.ogg
// when that file exists, otherwise from a short synthesized tone sequence.
// Play only appends a buffer streamer to the mixer, so it never blocks the tick.
package audio

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"

	"feeding-frenzy/internal/config"
	"feeding-frenzy/internal/game"
)

// MaxVoices caps concurrently mixed cues; extra cues are dropped.
const MaxVoices = 16

// note is one step of a synthesized cue. Freq 0 is a rest.
type note struct {
	freq float64
	dur  time.Duration
}

// recipes are the synthesized fallbacks for every cue.
var recipes = map[game.Cue][]note{
	game.CueEat:              {{660, 50 * time.Millisecond}, {880, 60 * time.Millisecond}},
	game.CueLevelUp:          {{523, 90 * time.Millisecond}, {659, 90 * time.Millisecond}, {784, 90 * time.Millisecond}, {1047, 160 * time.Millisecond}},
	game.CuePowerUpCollect:   {{784, 70 * time.Millisecond}, {1175, 110 * time.Millisecond}},
	game.CueUltimateReady:    {{880, 80 * time.Millisecond}, {0, 40 * time.Millisecond}, {880, 80 * time.Millisecond}},
	game.CueUltimateActivate: {{220, 80 * time.Millisecond}, {440, 80 * time.Millisecond}, {880, 200 * time.Millisecond}},
	game.CueHit:              {{180, 120 * time.Millisecond}, {120, 160 * time.Millisecond}},
	game.CueGameOver:         {{392, 200 * time.Millisecond}, {311, 200 * time.Millisecond}, {262, 400 * time.Millisecond}},
	game.CueVictory:          {{523, 120 * time.Millisecond}, {659, 120 * time.Millisecond}, {784, 120 * time.Millisecond}, {1047, 400 * time.Millisecond}},
	game.CueBossHit:          {{150, 90 * time.Millisecond}},
	game.CueBossDefeated:     {{262, 100 * time.Millisecond}, {392, 100 * time.Millisecond}, {523, 300 * time.Millisecond}},
	game.CueCombo3:           {{988, 60 * time.Millisecond}},
	game.CueCombo5:           {{988, 60 * time.Millisecond}, {1319, 80 * time.Millisecond}},
	game.CueCombo10:          {{988, 60 * time.Millisecond}, {1319, 60 * time.Millisecond}, {1760, 120 * time.Millisecond}},
}

// Player implements game.AudioProvider.
type Player struct {
	mu      sync.Mutex
	cfg     config.AudioConfig
	format  beep.Format
	buffers map[game.Cue]*beep.Buffer
	mixer   *beep.Mixer
	speaker bool
	dropped int
}

// NewPlayer creates an unloaded player.
func NewPlayer(cfg config.AudioConfig) *Player {
	return &Player{
		cfg: cfg,
		format: beep.Format{
			SampleRate:  beep.SampleRate(cfg.SampleRate),
			NumChannels: 2,
			Precision:   2,
		},
		buffers: make(map[game.Cue]*beep.Buffer),
		mixer:   &beep.Mixer{},
	}
}

// Load renders every cue and, when enabled, opens the speaker.
func (p *Player) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, cue := range game.AllCues {
		buf, err := p.renderCue(cue)
		if err != nil {
			return fmt.Errorf("audio: cue %s: %w", cue, err)
		}
		p.buffers[cue] = buf
	}

	if !p.cfg.Enabled {
		return nil
	}

	sr := p.format.SampleRate
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	speaker.Play(p.mixer)
	p.speaker = true
	log.Printf("🔊 Audio ready: %d cues at %d Hz", len(p.buffers), sr)
	return nil
}

// renderCue prefers an .ogg override and falls back to the tone recipe.
func (p *Player) renderCue(cue game.Cue) (*beep.Buffer, error) {
	if p.cfg.SoundsDir != "" {
		path := filepath.Join(p.cfg.SoundsDir, string(cue)+".ogg")
		buf, err := p.decodeFile(path)
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Sound %s unusable, synthesizing: %v", path, err)
		}
	}
	return p.synthesize(recipes[cue])
}

func (p *Player) decodeFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != p.format.SampleRate {
		s = beep.Resample(4, format.SampleRate, p.format.SampleRate, streamer)
	}

	buf := beep.NewBuffer(p.format)
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *Player) synthesize(notes []note) (*beep.Buffer, error) {
	sr := p.format.SampleRate
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sr.N(n.dur)
		if n.freq == 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(samples, tone))
	}

	buf := beep.NewBuffer(p.format)
	buf.Append(beep.Seq(parts...))
	return buf, nil
}

// Play queues cue on the mixer. Unknown cues and cues over MaxVoices are dropped.
func (p *Player) Play(cue game.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.buffers[cue]
	if !ok {
		return
	}
	voice := newVolume(buf.Streamer(0, buf.Len()), p.cfg.Volume)

	if p.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	if p.mixer.Len() >= MaxVoices {
		p.dropped++
		return
	}
	p.mixer.Add(voice)
}

// Teardown silences the mixer and releases the speaker stream.
func (p *Player) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.speaker {
		speaker.Clear()
		p.speaker = false
	}
	p.mixer.Clear()
}

// Voices reports how many cues are currently mixing.
func (p *Player) Voices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.mixer.Len()
}

// Dropped reports how many cues were discarded at the voice cap.
func (p *Player) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// CueLength returns the rendered duration of cue, zero if unknown.
func (p *Player) CueLength(cue game.Cue) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf, ok := p.buffers[cue]
	if !ok {
		return 0
	}
	return p.format.SampleRate.D(buf.Len())
}

// Drain pulls n samples through the mixer when no speaker is attached.
func (p *Player) Drain(n int) [][2]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][2]float64, n)
	if p.speaker {
		return out
	}
	p.mixer.Stream(out)
	return out
}

// newVolume maps a linear gain onto effects.Volume; zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
