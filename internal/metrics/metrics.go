package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// Collector emits metric events as structured log lines.
type Collector struct {
	logger zerolog.Logger
}

func NewCollector(logger zerolog.Logger) *Collector {
	return &Collector{
		logger: logger,
	}
}

// Track a single turn decision
func (c *Collector) Decision(episodeID, agent, direction, mode string, fallback bool, latency time.Duration) {
	c.logger.Debug().
		Str("metric", "decision").
		Str("episode_id", episodeID).
		Str("agent", agent).
		Str("direction", direction).
		Str("mode", mode).
		Bool("fallback", fallback).
		Dur("latency", latency).
		Msg("Decision metric")
}

// Track behaviour switches
func (c *Collector) ModeChange(episodeID string, step uint32, fromMode, toMode string) {
	c.logger.Info().
		Str("metric", "mode_change").
		Str("episode_id", episodeID).
		Uint32("step", step).
		Str("from_mode", fromMode).
		Str("to_mode", toMode).
		Msg("Mode change metric")
}

// Track episode lifecycle
func (c *Collector) Episode(episodeID, agent, event string, steps uint32) {
	c.logger.Info().
		Str("metric", "episode").
		Str("episode_id", episodeID).
		Str("agent", agent).
		Str("event", event).
		Uint32("steps", steps).
		Msg("Episode metric")
}

// Track trace flushes
func (c *Collector) Flush(count int, duration time.Duration, err error) {
	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.
		Str("metric", "trace_flush").
		Int("count", count).
		Dur("duration", duration).
		Msg("Trace flush metric")
}
