// Package config provides centralized configuration management.
// Process settings (ports, paths, audio) come from the environment; game
// balance comes from the YAML tuning file layered over embedded defaults.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// LOOP CONFIGURATION
// =============================================================================

// LoopConfig holds the fixed-tick scheduling settings.
type LoopConfig struct {
	TickRate int   // Ticks per second
	Seed     int64 // RNG seed, 0 means time-based
}

// DefaultLoop returns the default loop configuration.
func DefaultLoop() LoopConfig {
	return LoopConfig{
		TickRate: 30,
	}
}

// LoopFromEnv returns loop configuration with environment variable overrides.
func LoopFromEnv() LoopConfig {
	cfg := DefaultLoop()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if s := getEnvInt("GAME_SEED", 0); s != 0 {
		cfg.Seed = int64(s)
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits caps what a single snapshot carries.
type ResourceLimits struct {
	MaxBots          int // Snapshot bot slots
	MaxPowerUps      int // Snapshot power-up slots
	MaxNotifications int // Live notifications, oldest dropped first
	MaxEvents        int // Events recorded per tick
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxBots:          32,
		MaxPowerUps:      8,
		MaxNotifications: 8,
		MaxEvents:        64,
	}
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio cue settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Whether cues reach the speaker
	SoundsDir  string  // Optional directory of <cue>.ogg overrides
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.5,
		Enabled:    false,
		SoundsDir:  "assets/sounds",
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "true" {
		cfg.Enabled = true
	}
	if dir := os.Getenv("SOUNDS_DIR"); dir != "" {
		cfg.SoundsDir = dir
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	DebugAddr      string
	RequestsPerSec float64 // Per-IP request budget, input posts included
	Burst          int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		DebugAddr:      "127.0.0.1:6060",
		RequestsPerSec: 60,
		Burst:          120,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.DebugAddr = addr
	}
	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.RequestsPerSec = rps
	}
	if b := getEnvInt("RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// =============================================================================
// PATHS
// =============================================================================

// PathsConfig holds file locations used by the collaborators.
type PathsConfig struct {
	SaveFile   string // Cumulative stats JSON
	SessionLog string // Per-session CSV
	EventLog   string // JSONL event stream, empty disables
	AssetsDir  string // Fish sprite PNGs
	TuningFile string // User tuning YAML, empty means defaults only
}

// DefaultPaths returns the default file locations.
func DefaultPaths() PathsConfig {
	return PathsConfig{
		SaveFile:   "savegame.json",
		SessionLog: "sessions.csv",
		EventLog:   "",
		AssetsDir:  "assets/images",
		TuningFile: "",
	}
}

// PathsFromEnv returns file locations with environment variable overrides.
func PathsFromEnv() PathsConfig {
	cfg := DefaultPaths()

	if v, ok := os.LookupEnv("SAVE_PATH"); ok {
		cfg.SaveFile = v
	}
	if v, ok := os.LookupEnv("SESSION_LOG"); ok {
		cfg.SessionLog = v
	}
	if v, ok := os.LookupEnv("EVENT_LOG"); ok {
		cfg.EventLog = v
	}
	if v := os.Getenv("ASSETS_DIR"); v != "" {
		cfg.AssetsDir = v
	}
	if v := os.Getenv("TUNING_PATH"); v != "" {
		cfg.TuningFile = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Loop   LoopConfig
	Audio  AudioConfig
	Server ServerConfig
	Paths  PathsConfig
	Limits ResourceLimits
}

// Load returns the complete process configuration with environment overrides.
// Game tuning is loaded separately with LoadTuning(cfg.Paths.TuningFile).
func Load() AppConfig {
	return AppConfig{
		Loop:   LoopFromEnv(),
		Audio:  AudioFromEnv(),
		Server: ServerFromEnv(),
		Paths:  PathsFromEnv(),
		Limits: DefaultLimits(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
