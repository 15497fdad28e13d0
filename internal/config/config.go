// Package config is the single source of truth for the inspector
// process's runtime settings: the HTTP surface, the live input queue,
// and the default simulation seed.
//
// When changing values, only modify this file; other packages should
// reference these, not redeclare their own defaults.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the defaults a freshly reset Engine starts from.
type SimConfig struct {
	PRNGSeed      string // default PRNG seed when none is supplied per-request
	TickRate      int    // nominal ticks/second the surrounding driver advances at
	InputCapacity int    // LiveInput ring buffer capacity (rounded up to a power of two)
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		PRNGSeed:      "clockwork",
		TickRate:      60,
		InputCapacity: 1024,
	}
}

// SimFromEnv returns the simulation configuration with environment
// variable overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if seed := os.Getenv("SIM_SEED"); seed != "" {
		cfg.PRNGSeed = seed
	}
	if tr := getEnvInt("SIM_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if capacity := getEnvInt("SIM_INPUT_CAPACITY", 0); capacity > 0 {
		cfg.InputCapacity = capacity
	}

	return cfg
}

// =============================================================================
// INPUT RATE LIMITING
// =============================================================================

// InputLimits bounds the rate external producers may enqueue UserInput
// payloads at, protecting the engine thread from an unbounded fan-in.
type InputLimits struct {
	EventsPerSecond float64
	Burst           int
}

// DefaultInputLimits returns the default input rate limit.
func DefaultInputLimits() InputLimits {
	return InputLimits{
		EventsPerSecond: 50,
		Burst:           100,
	}
}

// InputLimitsFromEnv returns input rate limits with environment
// variable overrides.
func InputLimitsFromEnv() InputLimits {
	cfg := DefaultInputLimits()

	if v := getEnvFloat("INPUT_EVENTS_PER_SECOND", -1); v >= 0 {
		cfg.EventsPerSecond = v
	}
	if b := getEnvInt("INPUT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the inspector HTTP server's settings.
type ServerConfig struct {
	Port             int
	MetricsPort      int
	AllowedOrigins   []string
	RecordingSocket  string // unix socket path internal/ipc publishes recordings on
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            8080,
		MetricsPort:     9090,
		AllowedOrigins:  []string{"*"},
		RecordingSocket: "/tmp/clockwork-inspector.sock",
	}
}

// ServerFromEnv returns the server configuration with environment
// variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if mp := getEnvInt("METRICS_PORT", 0); mp > 0 {
		cfg.MetricsPort = mp
	}
	if sock := os.Getenv("RECORDING_SOCKET"); sock != "" {
		cfg.RecordingSocket = sock
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete inspector process configuration.
type AppConfig struct {
	Sim         SimConfig
	InputLimits InputLimits
	Server      ServerConfig
}

// Load returns the complete configuration with environment overrides
// applied. Callers that also want .env support should call
// godotenv.Load() once at process start, before Load.
func Load() AppConfig {
	return AppConfig{
		Sim:         SimFromEnv(),
		InputLimits: InputLimitsFromEnv(),
		Server:      ServerFromEnv(),
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
