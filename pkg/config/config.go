// Package config loads arena-coder settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultMetricsNamespace = "arena_coder"
	defaultMinFreeBytes     = 1 << 20
	maxStartupWorkers       = 64
)

// Config holds the plugin settings. The host constructs plugins without
// arguments, so everything comes from the process environment.
type Config struct {
	// Workspace is the directory projects are generated into.
	Workspace string `env:"CODER_WORKSPACE"`
	// LanguagesFile optionally replaces the embedded language definitions.
	LanguagesFile string `env:"CODER_LANGUAGES_FILE"`
	LogLevel      int    `env:"CODER_LOG_LEVEL" envDefault:"3"`
	DebugMode     bool   `env:"CODER_DEBUG_MODE"`
	// Cacheable is what the plugin answers to IsCacheable.
	Cacheable        bool   `env:"CODER_CACHEABLE" envDefault:"true"`
	MetricsNamespace string `env:"CODER_METRICS_NAMESPACE" envDefault:"arena_coder"`
	// MinFreeBytes is the free space required on the workspace volume before generating.
	MinFreeBytes uint64 `env:"CODER_MIN_FREE_BYTES" envDefault:"1048576"`
	// SubmissionRetries bounds the re-reads of a solution file that is being saved.
	SubmissionRetries       uint64        `env:"CODER_SUBMISSION_RETRIES" envDefault:"3"`
	SubmissionRetryInterval time.Duration `env:"CODER_SUBMISSION_RETRY_INTERVAL" envDefault:"50ms"`
	// StartupWorkers sizes the pool that preloads plugins at host startup.
	StartupWorkers int `env:"CODER_STARTUP_WORKERS" envDefault:"2"`
	// HeartbeatWindow is how long a plugin may go without a host call before
	// /live fails. Zero only requires one heartbeat since SetName.
	HeartbeatWindow time.Duration `env:"CODER_HEARTBEAT_WINDOW" envDefault:"0s"`
}

// DefaultConfig returns the settings used when the environment sets nothing.
func DefaultConfig() *Config {
	return &Config{
		Workspace:               defaultWorkspace(),
		LogLevel:                3,
		Cacheable:               true,
		MetricsNamespace:        defaultMetricsNamespace,
		MinFreeBytes:            defaultMinFreeBytes,
		SubmissionRetries:       3,
		SubmissionRetryInterval: 50 * time.Millisecond,
		StartupWorkers:          2,
	}
}

func defaultWorkspace() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "arena-coder")
	}
	return filepath.Join(os.TempDir(), "arena-coder")
}

// Load reads a .env file from the working directory if there is one, then
// the environment, and verifies the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.Workspace == "" {
		cfg.Workspace = defaultWorkspace()
	}
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// VerifyConfig rejects settings the plugin cannot run with.
func VerifyConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if cfg.Workspace == "" {
		return errors.New("config: workspace must not be empty")
	}
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("config: log level %d out of range [0,5]", cfg.LogLevel)
	}
	if cfg.MetricsNamespace == "" {
		return errors.New("config: metrics namespace must not be empty")
	}
	if cfg.SubmissionRetryInterval < 0 {
		return fmt.Errorf("config: negative submission retry interval %s", cfg.SubmissionRetryInterval)
	}
	if cfg.HeartbeatWindow < 0 {
		return fmt.Errorf("config: negative heartbeat window %s", cfg.HeartbeatWindow)
	}
	if cfg.StartupWorkers < 1 || cfg.StartupWorkers > maxStartupWorkers {
		return fmt.Errorf("config: startup workers %d out of range [1,%d]", cfg.StartupWorkers, maxStartupWorkers)
	}
	return nil
}
