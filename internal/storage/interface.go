package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cartridge/pacman/internal/game"
)

// ErrNotFound is returned when an episode has no recorded transitions.
var ErrNotFound = errors.New("not found")

// Transition records one decision made during an episode
type Transition struct {
	ID         string         `json:"id"`
	EpisodeID  string         `json:"episode_id"`
	Agent      string         `json:"agent"`
	StepNumber uint32         `json:"step_number"`
	Position   game.Position  `json:"position"`
	Action     game.Direction `json:"action"`
	Mode       string         `json:"mode,omitempty"`
	Target     *game.Position `json:"target,omitempty"`
	Fallback   bool           `json:"fallback"`
	Ghosts     int            `json:"ghosts"`
	Food       int            `json:"food"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Stats represents trace buffer statistics
type Stats struct {
	TotalTransitions   uint64            `json:"total_transitions"`
	TotalEpisodes      uint64            `json:"total_episodes"`
	TransitionsByAgent map[string]uint64 `json:"transitions_by_agent"`
	OldestTimestamp    *time.Time        `json:"oldest_timestamp,omitempty"`
	NewestTimestamp    *time.Time        `json:"newest_timestamp,omitempty"`
}

// Backend defines the interface for decision trace storage implementations
type Backend interface {
	// Store a single transition
	Store(ctx context.Context, transition *Transition) error

	// Store multiple transitions in a batch
	StoreBatch(ctx context.Context, transitions []*Transition) ([]string, error)

	// Episode returns an episode's transitions ordered by step
	Episode(ctx context.Context, episodeID string) ([]*Transition, error)

	// Get buffer statistics, optionally restricted to one agent
	GetStats(ctx context.Context, agent string) (*Stats, error)

	// Clear drops every transition of an episode
	Clear(ctx context.Context, episodeID string) (uint64, error)

	// Close the backend and cleanup resources
	Close() error
}
