package stockroom

import (
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config holds global configuration for stores and schedulers
var Config config = config{logger: zerolog.Nop()}

type config struct {
	logger zerolog.Logger
}

// SetLogger sets the logger used by command buffer flushes and by schedulers created afterwards
func (c *config) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (c *config) Logger() zerolog.Logger {
	return c.logger
}

const (
	defaultLogLevel        = "info"
	defaultExecutorScratch = 64
)

// Settings are the environment-driven knobs of a stockroom deployment.
type Settings struct {
	// Capacity pre-sizes stores created with Factory.NewStoreFromSettings.
	Capacity int `config:"STOCKROOM_CAPACITY"`
	// LogLevel is a zerolog level name.
	LogLevel string `config:"STOCKROOM_LOG_LEVEL"`
	// ExecutorScratch is the initial pending-task capacity for executors.
	ExecutorScratch int `config:"STOCKROOM_EXECUTOR_SCRATCH"`
}

// LoadSettings reads Settings from the environment, filling in defaults for unset variables.
func LoadSettings() (Settings, error) {
	s := Settings{
		LogLevel:        defaultLogLevel,
		ExecutorScratch: defaultExecutorScratch,
	}
	if err := jlconfig.FromEnv().To(&s); err != nil {
		return Settings{}, eris.Wrap(err, "failed to read settings from environment")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.Capacity < 0 {
		return eris.Errorf("STOCKROOM_CAPACITY must not be negative, got %d", s.Capacity)
	}
	if s.ExecutorScratch < 0 {
		return eris.Errorf("STOCKROOM_EXECUTOR_SCRATCH must not be negative, got %d", s.ExecutorScratch)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid STOCKROOM_LOG_LEVEL %q", s.LogLevel)
	}
	return nil
}

// Level returns the parsed log level. Settings must be valid.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// ApplyLogger installs logger, filtered to the configured level, as the global logger.
func (s Settings) ApplyLogger(logger zerolog.Logger) {
	Config.SetLogger(logger.Level(s.Level()))
}
