package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// WatchTuning reloads the tuning file whenever it changes on disk and passes
// each valid result to onChange. Invalid edits are logged and skipped.
// The directory is watched rather than the file so editor rename-saves are seen.
// It blocks until ctx is cancelled.
func WatchTuning(ctx context.Context, path string, onChange func(*Tuning)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tuning watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("tuning watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("tuning watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	// Each matching event re-arms the timer, so a burst of writes reloads
	// once, after the last of them.
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != abs {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			t, err := LoadTuning(path)
			if err != nil {
				log.Printf("⚠️ Tuning reload rejected: %v", err)
				continue
			}
			log.Printf("🔧 Tuning reloaded from %s (applies on next reset)", path)
			onChange(t)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("⚠️ Tuning watcher error: %v", err)
		}
	}
}
