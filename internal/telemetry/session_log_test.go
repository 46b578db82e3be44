package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feeding-frenzy/internal/game"
)

func testSummary(score int, outcome string) game.SessionSummary {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return game.SessionSummary{
		Outcome:        outcome,
		Score:          score,
		FishEaten:      score / 2,
		Level:          4,
		MaxCombo:       6,
		BossesDefeated: 1,
		StartedAt:      start,
		EndedAt:        start.Add(45 * time.Second),
	}
}

func TestSessionLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	l, err := OpenSessionLog(path)
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}
	if err := l.RecordSession(testSummary(40, game.OutcomeGameOver)); err != nil {
		t.Fatal(err)
	}
	if err := l.RecordSession(testSummary(80, game.OutcomeAbandoned)); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines:\n%s", len(lines), raw)
	}
	if !strings.HasPrefix(lines[0], "ended_at,outcome,score") {
		t.Errorf("Expected header row, got %q", lines[0])
	}
}

func TestSessionLogAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")

	for i, score := range []int{10, 20} {
		l, err := OpenSessionLog(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := l.RecordSession(testSummary(score, game.OutcomeVictory)); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
		l.Close()
	}

	records, err := ReadSessions(path)
	if err != nil {
		t.Fatalf("ReadSessions failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Score != 10 || records[1].Score != 20 {
		t.Errorf("Expected scores 10 and 20, got %d and %d", records[0].Score, records[1].Score)
	}
	if records[1].DurationSeconds != 45 || records[1].Outcome != game.OutcomeVictory {
		t.Errorf("Expected 45s victory, got %+v", records[1])
	}
	if records[0].EndedAt != "2026-01-01T12:00:45Z" {
		t.Errorf("Expected RFC3339 end time, got %q", records[0].EndedAt)
	}
}

func TestSessionLogDisabled(t *testing.T) {
	l, err := OpenSessionLog("")
	if err != nil {
		t.Fatal(err)
	}
	if l != nil {
		t.Fatal("Expected nil log for an empty path")
	}
	if err := l.RecordSession(testSummary(1, game.OutcomeGameOver)); err != nil {
		t.Errorf("Expected nil log to discard, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Expected nil Close to succeed, got %v", err)
	}
}

func TestOpenSessionLogBadPath(t *testing.T) {
	if _, err := OpenSessionLog(filepath.Join(t.TempDir(), "missing", "sessions.csv")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
