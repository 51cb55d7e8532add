package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/cartridge/pacman/internal/policy"
)

// Config holds all agent service configuration
type Config struct {
	// Listen addresses
	GRPCAddr string `mapstructure:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr"`

	// Agent settings
	ActorID         string `mapstructure:"actor_id"`
	DefaultAgent    string `mapstructure:"default_agent"`
	ThreatThreshold int    `mapstructure:"threat_threshold"`
	Seed            int64  `mapstructure:"seed"`

	// Episode management
	MaxEpisodes    int           `mapstructure:"max_episodes"`
	EpisodeTimeout time.Duration `mapstructure:"episode_timeout"`

	// Trace settings
	BatchSize      int           `mapstructure:"batch_size"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	MaxTransitions uint64        `mapstructure:"max_transitions"`

	// Events
	NATSURL     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		GRPCAddr:        ":50052",
		HTTPAddr:        ":8081",
		ActorID:         "pacman-1",
		DefaultAgent:    policy.AgentForage,
		ThreatThreshold: policy.DefaultThreatThreshold,
		Seed:            0, // time based
		MaxEpisodes:     64,
		EpisodeTimeout:  5 * time.Minute,
		BatchSize:       32,
		FlushInterval:   5 * time.Second,
		MaxTransitions:  100000,
		NATSURL:         "", // events disabled
		NATSSubject:     "pacman",
		LogLevel:        "info",
	}
}

// Load overlays values known to v (flags, env, config file) onto the defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr is required")
	}
	if c.ActorID == "" {
		return fmt.Errorf("actor_id is required")
	}
	if _, err := policy.New(c.DefaultAgent, policy.Options{}); err != nil {
		return fmt.Errorf("default_agent: %w", err)
	}
	if c.ThreatThreshold < 0 {
		return fmt.Errorf("threat_threshold must not be negative")
	}
	if c.MaxEpisodes <= 0 {
		return fmt.Errorf("max_episodes must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.EpisodeTimeout <= 0 {
		return fmt.Errorf("episode_timeout must be positive")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
