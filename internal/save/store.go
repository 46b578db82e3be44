// Package save persists cumulative player statistics across sessions.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"feeding-frenzy/internal/game"
)

// MaxTopScores bounds the top-score table.
const MaxTopScores = 10

// Data is the persisted save file.
type Data struct {
	HighScore       int          `json:"high_score"`
	TotalFishEaten  int          `json:"total_fish_eaten"`
	TotalPlaytime   float64      `json:"total_playtime"` // seconds
	GamesPlayed     int          `json:"games_played"`
	MaxLevelReached int          `json:"max_level_reached"`
	MaxCombo        int          `json:"max_combo"`
	TopScores       []ScoreEntry `json:"top_scores,omitempty"`
}

// ScoreEntry is one row of the top-score table.
type ScoreEntry struct {
	Score    int       `json:"score"`
	Level    int       `json:"level"`
	Outcome  string    `json:"outcome"`
	PlayedAt time.Time `json:"played_at"`
}

// DefaultData returns the stats of a fresh install.
func DefaultData() Data {
	return Data{MaxLevelReached: 2}
}

// Store is a JSON-file backed save. It implements game.SessionSink.
type Store struct {
	mu   sync.Mutex
	path string
	data Data
}

// Open loads path. Missing or malformed files start from defaults; only a
// read failure other than not-exist is returned.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: DefaultData()}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save: read %s: %w", path, err)
	}

	data := DefaultData()
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("⚠️ Save file %s is malformed, starting fresh: %v", path, err)
		return s, nil
	}
	s.data = sanitize(data)
	return s, nil
}

// sanitize replaces out-of-range fields with their defaults.
func sanitize(d Data) Data {
	def := DefaultData()
	if d.HighScore < 0 {
		d.HighScore = def.HighScore
	}
	if d.TotalFishEaten < 0 {
		d.TotalFishEaten = def.TotalFishEaten
	}
	if d.TotalPlaytime < 0 {
		d.TotalPlaytime = def.TotalPlaytime
	}
	if d.GamesPlayed < 0 {
		d.GamesPlayed = def.GamesPlayed
	}
	if d.MaxLevelReached < def.MaxLevelReached {
		d.MaxLevelReached = def.MaxLevelReached
	}
	if d.MaxCombo < 0 {
		d.MaxCombo = def.MaxCombo
	}
	sortScores(d.TopScores)
	if len(d.TopScores) > MaxTopScores {
		d.TopScores = d.TopScores[:MaxTopScores]
	}
	return d
}

// Data returns a copy of the current stats.
func (s *Store) Data() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data
	d.TopScores = append([]ScoreEntry(nil), s.data.TopScores...)
	return d
}

// RecordSession folds a finished session into the stats and saves.
func (s *Store) RecordSession(sum game.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &s.data
	d.HighScore = max(d.HighScore, sum.Score)
	d.TotalFishEaten += sum.FishEaten
	d.TotalPlaytime += sum.Duration().Seconds()
	d.GamesPlayed++
	d.MaxLevelReached = max(d.MaxLevelReached, sum.Level)
	d.MaxCombo = max(d.MaxCombo, sum.MaxCombo)

	d.TopScores = append(d.TopScores, ScoreEntry{
		Score:    sum.Score,
		Level:    sum.Level,
		Outcome:  sum.Outcome,
		PlayedAt: sum.EndedAt,
	})
	sortScores(d.TopScores)
	if len(d.TopScores) > MaxTopScores {
		d.TopScores = d.TopScores[:MaxTopScores]
	}

	if err := s.writeLocked(); err != nil {
		return err
	}
	log.Printf("💾 Session saved: score=%d high=%d games=%d", sum.Score, d.HighScore, d.GamesPlayed)
	return nil
}

// writeLocked replaces the save file atomically via a temp file and rename.
func (s *Store) writeLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		return fmt.Errorf("save: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".savegame-*.tmp")
	if err != nil {
		return fmt.Errorf("save: temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save: write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save: close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save: write %s: %w", s.path, err)
	}
	return nil
}

func sortScores(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
