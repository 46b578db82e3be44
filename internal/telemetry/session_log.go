// Package telemetry appends one CSV row per finished session.
package telemetry

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"feeding-frenzy/internal/game"
)

// SessionRecord is one row of sessions.csv.
type SessionRecord struct {
	EndedAt         string  `csv:"ended_at"`
	Outcome         string  `csv:"outcome"`
	Score           int     `csv:"score"`
	Level           int     `csv:"level"`
	FishEaten       int     `csv:"fish_eaten"`
	MaxCombo        int     `csv:"max_combo"`
	BossesDefeated  int     `csv:"bosses_defeated"`
	DurationSeconds float64 `csv:"duration_s"`
}

// NewRecord flattens a session summary into a CSV row.
func NewRecord(sum game.SessionSummary) SessionRecord {
	return SessionRecord{
		EndedAt:         sum.EndedAt.UTC().Format(time.RFC3339),
		Outcome:         sum.Outcome,
		Score:           sum.Score,
		Level:           sum.Level,
		FishEaten:       sum.FishEaten,
		MaxCombo:        sum.MaxCombo,
		BossesDefeated:  sum.BossesDefeated,
		DurationSeconds: sum.Duration().Seconds(),
	}
}

// SessionLog writes session rows to a CSV file. It implements
// game.SessionSink. A nil *SessionLog discards everything.
type SessionLog struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// OpenSessionLog opens path for appending. Returns nil if path is empty
// (logging disabled). An existing non-empty file keeps its header.
func OpenSessionLog(path string) (*SessionLog, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening session log: %w", err)
	}

	return &SessionLog{file: f, headerWritten: info.Size() > 0}, nil
}

// RecordSession appends sum as one row.
func (l *SessionLog) RecordSession(sum game.SessionSummary) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records := []SessionRecord{NewRecord(sum)}

	if !l.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing session log: %w", err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing session log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *SessionLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadSessions loads every row from a session log.
func ReadSessions(path string) ([]SessionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}
	defer f.Close()

	var records []SessionRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}
	return records, nil
}
