// Package tracking maps raw face metrics onto screen input for the game core.
package tracking

import (
	"sync"

	"feeding-frenzy/internal/config"
)

// Raw is one face-tracker reading. NoseX and NoseY are normalized camera
// coordinates in 0..1; LipGap is the normalized vertical lip distance.
// Lost marks a frame where no face was found.
type Raw struct {
	NoseX  float64 `json:"nose_x"`
	NoseY  float64 `json:"nose_y"`
	LipGap float64 `json:"lip_gap"`
	Lost   bool    `json:"lost"`
}

// Sample is the mapped screen input.
type Sample struct {
	X, Y   float64
	Eating bool
}

// Mapper converts raw readings through the tracking window. It is safe for
// concurrent use.
type Mapper struct {
	mu     sync.Mutex
	window config.TrackingTuning
	width  float64
	height float64
	last   Sample
}

// NewMapper creates a mapper for the screen in t. Until the first reading it
// reports the screen center with the mouth closed.
func NewMapper(t *config.Tuning) *Mapper {
	return &Mapper{
		window: t.Tracking,
		width:  t.Screen.Width,
		height: t.Screen.Height,
		last:   Sample{X: t.Screen.Width / 2, Y: t.Screen.Height / 2},
	}
}

// Map converts raw into screen input. A lost reading returns the last known
// sample unchanged.
func (m *Mapper) Map(raw Raw) Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw.Lost {
		return m.last
	}

	w := m.window
	m.last = Sample{
		X:      normalize(raw.NoseX, w.XMin, w.XMax) * m.width,
		Y:      normalize(raw.NoseY, w.YMin, w.YMax) * m.height,
		Eating: raw.LipGap > w.MouthOpenThreshold,
	}
	return m.last
}

// Last returns the most recent sample.
func (m *Mapper) Last() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// SetWindow swaps the tracking window, e.g. after a tuning reload.
func (m *Mapper) SetWindow(t *config.Tuning) {
	m.mu.Lock()
	m.window = t.Tracking
	m.width, m.height = t.Screen.Width, t.Screen.Height
	m.mu.Unlock()
}

// normalize maps v from [lo, hi] onto [0, 1], clamped.
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	p := (v - lo) / (hi - lo)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
