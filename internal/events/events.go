package events

import "context"

// Publisher is implemented by downstream fan-out mechanisms.
type Publisher interface {
	PublishEpisodeEvent(ctx context.Context, payload EpisodeEvent) error
	PublishModeChange(ctx context.Context, payload ModeChangeEvent) error
}

// Episode lifecycle event names.
const (
	EpisodeStarted = "started"
	EpisodeEnded   = "ended"
	EpisodeExpired = "expired"
)

// EpisodeEvent is emitted when an episode starts, ends or is reaped.
type EpisodeEvent struct {
	EpisodeID string `json:"episode_id"`
	ActorID   string `json:"actor_id"`
	Agent     string `json:"agent"`
	Event     string `json:"event"`
	Steps     uint32 `json:"steps"`
}

// ModeChangeEvent tracks foraging/surviving switches of the forage agent.
type ModeChangeEvent struct {
	EpisodeID string `json:"episode_id"`
	Step      uint32 `json:"step"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// NoopPublisher drops everything; useful for tests.
type NoopPublisher struct{}

// PublishEpisodeEvent satisfies Publisher.
func (NoopPublisher) PublishEpisodeEvent(context.Context, EpisodeEvent) error { return nil }

// PublishModeChange satisfies Publisher.
func (NoopPublisher) PublishModeChange(context.Context, ModeChangeEvent) error { return nil }
