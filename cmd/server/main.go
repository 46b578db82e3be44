package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"feeding-frenzy/internal/api"
	"feeding-frenzy/internal/audio"
	"feeding-frenzy/internal/config"
	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/render"
	"feeding-frenzy/internal/save"
	"feeding-frenzy/internal/telemetry"
	"feeding-frenzy/internal/tracking"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  FEEDING FRENZY - GAME SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	paths := appConfig.Paths

	tuning, err := config.LoadTuning(paths.TuningFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("🔧 Tuning: %d levels, %d to win, contact policy %s",
		tuning.Levels.Max, tuning.Derived.TotalScoreToWin, tuning.Collision.ContactDamage)

	// Session sinks
	store, err := save.Open(paths.SaveFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	sinks := []game.SessionSink{store, api.SessionMetrics{}}

	sessionLog, err := telemetry.OpenSessionLog(paths.SessionLog)
	if err != nil {
		log.Printf("⚠️ Session log disabled: %v", err)
	} else if sessionLog != nil {
		sinks = append(sinks, sessionLog)
		log.Printf("📝 Session log: %s", paths.SessionLog)
	}

	var eventLog *game.EventLog
	if paths.EventLog != "" {
		eventLog = game.NewEventLog()
		if err := eventLog.Start(paths.EventLog); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
			eventLog = nil
		} else {
			log.Printf("📝 Event log: %s", paths.EventLog)
		}
	}

	sprites := render.NewSpriteSet(paths.AssetsDir, tuning.Levels.Max)

	engine := game.NewEngine(game.EngineConfig{
		Tuning:   tuning,
		Limits:   appConfig.Limits,
		TickRate: appConfig.Loop.TickRate,
		Seed:     appConfig.Loop.Seed,
		Audio:    audio.NewPlayer(appConfig.Audio),
		Assets:   sprites,
		Sinks:    sinks,
		EventLog: eventLog,
	})

	tracker := tracking.NewMapper(tuning)
	renderer := render.NewRenderer(int(tuning.Screen.Width), int(tuning.Screen.Height), sprites)

	rlCfg := api.RateLimitFromServer(appConfig.Server)
	server := api.NewServer(api.RouterConfig{
		Engine:          engine,
		Tracker:         tracker,
		Stats:           store,
		Renderer:        renderer,
		RateLimitConfig: &rlCfg,
	})
	engine.SetEventHandler(server.OnEvent)
	// The tracker follows the engine so input always maps onto the live playfield.
	engine.SetTuningObserver(tracker.SetWindow)
	engine.SetTickObserver(api.ObserveTick)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if paths.TuningFile != "" {
		go func() {
			err := config.WatchTuning(ctx, paths.TuningFile, engine.SetTuning)
			if err != nil {
				log.Printf("⚠️ Tuning hot reload disabled: %v", err)
			}
		}()
	}

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = appConfig.Server.DebugAddr
		debugCfg.BasicAuthUser = os.Getenv("DEBUG_USER")
		debugCfg.BasicAuthPass = os.Getenv("DEBUG_PASS")
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	engine.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + strconv.Itoa(appConfig.Server.Port))
	}()

	select {
	case <-ctx.Done():
		log.Println("🛑 Shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Printf("❌ %v", err)
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ %v", err)
	}

	engine.Stop()
	if eventLog != nil {
		eventLog.Stop()
	}
	if err := sessionLog.Close(); err != nil {
		log.Printf("⚠️ Session log close: %v", err)
	}
	log.Println("👋 Goodbye")
}
