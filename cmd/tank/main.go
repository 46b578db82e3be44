// Command tank plays the game in a terminal. The mouse stands in for the
// tracked nose; holding a mouse button or tapping space opens the mouth.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"feeding-frenzy/internal/audio"
	"feeding-frenzy/internal/config"
	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/save"
	"feeding-frenzy/internal/telemetry"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

const (
	frameInterval = 33 * time.Millisecond
	// Terminals send no key-up, so space keeps the mouth open this long.
	spaceHold = 250 * time.Millisecond
)

type tank struct {
	screen tcell.Screen
	engine *game.Engine

	mouseX, mouseY int
	mouseDown      bool
	spaceUntil     time.Time
}

func (t *tank) view() view {
	cols, rows := t.screen.Size()
	tun := t.engine.Tuning()
	return view{worldW: tun.Screen.Width, worldH: tun.Screen.Height, cols: cols, rows: rows}
}

func (t *tank) pushInput(now time.Time) {
	x, y := t.view().toWorld(t.mouseX, t.mouseY)
	t.engine.SetInput(game.Input{
		X:      x,
		Y:      y,
		Eating: t.mouseDown || now.Before(t.spaceUntil),
	})
}

// handle returns false when the user asked to quit.
func (t *tank) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'u', 'U':
				t.engine.RequestUltimate()
			case 'r', 'R':
				t.engine.Reset()
			case ' ':
				t.spaceUntil = time.Now().Add(spaceHold)
			}
		}
	case *tcell.EventMouse:
		t.mouseX, t.mouseY = ev.Position()
		t.mouseDown = ev.Buttons()&tcell.Button1 != 0
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *tank) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !t.handle(ev) {
				return
			}
		case now := <-ticker.C:
			t.pushInput(now)
			snap := t.engine.GetSnapshot()
			drawSnapshot(t.screen, &snap)
		}
	}
}

func main() {
	_ = godotenv.Load(".env")

	// The screen owns stdout; logs go to TANK_LOG or nowhere.
	if path := os.Getenv("TANK_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	appConfig := config.Load()
	tuning, err := config.LoadTuning(appConfig.Paths.TuningFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load tuning: %v\n", err)
		os.Exit(1)
	}

	store, err := save.Open(appConfig.Paths.SaveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open save file: %v\n", err)
		os.Exit(1)
	}
	sinks := []game.SessionSink{store}
	sessionLog, err := telemetry.OpenSessionLog(appConfig.Paths.SessionLog)
	if err != nil {
		log.Printf("⚠️ Session log disabled: %v", err)
	} else if sessionLog != nil {
		sinks = append(sinks, sessionLog)
	}
	defer sessionLog.Close()

	engine := game.NewEngine(game.EngineConfig{
		Tuning:   tuning,
		Limits:   appConfig.Limits,
		TickRate: appConfig.Loop.TickRate,
		Seed:     appConfig.Loop.Seed,
		Audio:    audio.NewPlayer(appConfig.Audio),
		Sinks:    sinks,
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	t := &tank{screen: screen, engine: engine}
	cols, rows := screen.Size()
	t.mouseX, t.mouseY = cols/2, rows/2

	engine.Start()
	t.run()
	engine.Stop()
	screen.Fini()

	best := store.Data()
	fmt.Printf("High score %d, best level %d, %d games played\n",
		best.HighScore, best.MaxLevelReached, best.GamesPlayed)
}
