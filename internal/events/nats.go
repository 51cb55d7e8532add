package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher implements Publisher using NATS
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher creates a new NATS-backed publisher
func NewNATSPublisher(natsURL, subject string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(natsURL, nats.Name("pacman-agent"))
	if err != nil {
		return nil, err
	}

	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}, nil
}

// Close closes the NATS connection
func (n *NATSPublisher) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// PublishEpisodeEvent publishes episode lifecycle events to <subject>.episode
func (n *NATSPublisher) PublishEpisodeEvent(ctx context.Context, event EpisodeEvent) error {
	return n.publish(n.subject+".episode", event)
}

// PublishModeChange publishes mode switches to <subject>.mode, and to
// <subject>.mode.surviving when the agent starts fleeing.
func (n *NATSPublisher) PublishModeChange(ctx context.Context, event ModeChangeEvent) error {
	if err := n.publish(n.subject+".mode", event); err != nil {
		return err
	}
	if event.To == "surviving" {
		return n.publish(n.subject+".mode.surviving", event)
	}
	return nil
}

func (n *NATSPublisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(subject, data); err != nil {
		n.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
		return err
	}
	n.logger.Debug().Str("subject", subject).Msg("Published event")
	return nil
}
