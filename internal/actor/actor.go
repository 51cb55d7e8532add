package actor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cartridge/pacman/internal/config"
	"github.com/cartridge/pacman/internal/events"
	"github.com/cartridge/pacman/internal/game"
	"github.com/cartridge/pacman/internal/metrics"
	"github.com/cartridge/pacman/internal/policy"
	"github.com/cartridge/pacman/internal/storage"
)

var (
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrTooManyEpisodes = errors.New("too many active episodes")
)

// Actor hosts game-playing agents, one policy instance per episode
type Actor struct {
	cfg *config.Config

	backend   storage.Backend
	publisher events.Publisher
	metrics   *metrics.Collector
	logger    zerolog.Logger

	mu           sync.Mutex
	episodes     map[string]*episode
	episodeCount int64

	bufMu            sync.Mutex
	transitionBuffer []*storage.Transition
}

// episode is the state owned by a single game. Turns are serialised by mu.
type episode struct {
	mu       sync.Mutex
	id       string
	agent    string
	policy   policy.Policy
	step     uint32
	mode     policy.Mode
	lastSeen atomic.Int64
	done     atomic.Bool
}

// Move is the outcome of one turn.
type Move struct {
	Direction game.Direction
	Mode      policy.Mode
	Step      uint32
	Fallback  bool
}

// New creates a new actor instance
func New(cfg *config.Config, backend storage.Backend, publisher events.Publisher, logger zerolog.Logger) (*Actor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	a := &Actor{
		cfg:              cfg,
		backend:          backend,
		publisher:        publisher,
		metrics:          metrics.NewCollector(logger),
		logger:           logger,
		episodes:         make(map[string]*episode),
		transitionBuffer: make([]*storage.Transition, 0, cfg.BatchSize),
	}

	logger.Info().
		Str("actor_id", cfg.ActorID).
		Str("default_agent", cfg.DefaultAgent).
		Int("threat_threshold", cfg.ThreatThreshold).
		Msg("Actor initialized")

	return a, nil
}

// Close flushes any buffered transitions
func (a *Actor) Close() error {
	if err := a.flushBuffer(context.Background()); err != nil {
		a.logger.Error().Err(err).Msg("Failed to flush buffer on close")
		return err
	}
	return nil
}

// Run flushes partial batches and reaps idle episodes until ctx is done
func (a *Actor) Run(ctx context.Context) error {
	a.logger.Info().Str("actor_id", a.cfg.ActorID).Msg("Actor starting main loop")

	flushTicker := time.NewTicker(a.cfg.FlushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Context cancelled, stopping actor")
			return ctx.Err()

		case <-flushTicker.C:
			if err := a.flushBuffer(ctx); err != nil {
				a.logger.Error().Err(err).Msg("Failed to flush buffer")
			}
			a.reapIdle(ctx, time.Now())
		}
	}
}

// Agents lists the agent names episodes can be started with.
func (a *Actor) Agents() []string {
	return policy.Names()
}

// ActiveEpisodes returns the number of episodes currently hosted.
func (a *Actor) ActiveEpisodes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.episodes)
}

// StartEpisode creates a fresh agent for a new game and returns the episode
// id and the agent actually used. An empty name selects the default.
func (a *Actor) StartEpisode(ctx context.Context, agent string) (string, string, error) {
	if agent == "" {
		agent = a.cfg.DefaultAgent
	}

	a.mu.Lock()
	if len(a.episodes) >= a.cfg.MaxEpisodes {
		a.mu.Unlock()
		return "", "", fmt.Errorf("%w: limit is %d", ErrTooManyEpisodes, a.cfg.MaxEpisodes)
	}
	a.episodeCount++
	seed := a.cfg.Seed + a.episodeCount
	a.mu.Unlock()

	if a.cfg.Seed == 0 {
		seed = time.Now().UnixNano()
	}

	threshold := a.cfg.ThreatThreshold
	p, err := policy.New(agent, policy.Options{
		Rand:            rand.New(rand.NewSource(seed)),
		ThreatThreshold: &threshold,
		Logger:          a.logger.With().Str("agent", agent).Logger(),
	})
	if err != nil {
		return "", "", err
	}

	ep := &episode{
		id:     uuid.New().String(),
		agent:  agent,
		policy: p,
	}
	ep.lastSeen.Store(time.Now().UnixNano())

	a.mu.Lock()
	a.episodes[ep.id] = ep
	a.mu.Unlock()

	a.metrics.Episode(ep.id, agent, events.EpisodeStarted, 0)
	a.publish(ctx, events.EpisodeEvent{EpisodeID: ep.id, ActorID: a.cfg.ActorID, Agent: agent, Event: events.EpisodeStarted})

	return ep.id, agent, nil
}

// Act asks the episode's agent for its move on the observed turn.
func (a *Actor) Act(ctx context.Context, episodeID string, obs game.Observation) (Move, error) {
	ep, err := a.lookup(episodeID)
	if err != nil {
		return Move{}, err
	}

	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.done.Load() {
		return Move{}, fmt.Errorf("%w: %s", ErrEpisodeNotFound, episodeID)
	}
	ep.lastSeen.Store(time.Now().UnixNano())

	start := time.Now()
	direction, err := ep.policy.SelectAction(obs)
	if err != nil {
		return Move{}, fmt.Errorf("episode %s step %d: %w", episodeID, ep.step, err)
	}
	latency := time.Since(start)

	move := Move{Direction: direction, Step: ep.step}
	var target *game.Position
	if r, ok := ep.policy.(policy.Reporter); ok {
		decision := r.LastDecision()
		move.Mode = decision.Mode
		move.Fallback = decision.Fallback
		target = decision.Target
	}

	if move.Mode != "" && ep.mode != "" && move.Mode != ep.mode {
		a.metrics.ModeChange(ep.id, ep.step, string(ep.mode), string(move.Mode))
		if err := a.publisher.PublishModeChange(ctx, events.ModeChangeEvent{
			EpisodeID: ep.id,
			Step:      ep.step,
			From:      string(ep.mode),
			To:        string(move.Mode),
		}); err != nil {
			a.logger.Warn().Err(err).Str("episode_id", ep.id).Msg("Failed to publish mode change")
		}
	}
	if move.Mode != "" {
		ep.mode = move.Mode
	}

	a.metrics.Decision(ep.id, ep.agent, string(direction), string(move.Mode), move.Fallback, latency)

	a.record(ctx, &storage.Transition{
		EpisodeID:  ep.id,
		Agent:      ep.agent,
		StepNumber: ep.step,
		Position:   obs.WhereAmI(),
		Action:     direction,
		Mode:       string(move.Mode),
		Target:     target,
		Fallback:   move.Fallback,
		Ghosts:     len(obs.Ghosts()),
		Food:       len(obs.Food()),
		Timestamp:  time.Now(),
	})

	ep.step++
	return move, nil
}

// EndEpisode releases an episode and returns how many turns it played.
func (a *Actor) EndEpisode(ctx context.Context, episodeID string) (uint32, error) {
	ep, err := a.remove(episodeID)
	if err != nil {
		return 0, err
	}

	ep.mu.Lock()
	steps := ep.step
	ep.mu.Unlock()

	if err := a.flushBuffer(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to flush buffer at episode end")
	}

	a.metrics.Episode(ep.id, ep.agent, events.EpisodeEnded, steps)
	a.publish(ctx, events.EpisodeEvent{EpisodeID: ep.id, ActorID: a.cfg.ActorID, Agent: ep.agent, Event: events.EpisodeEnded, Steps: steps})
	return steps, nil
}

// Trace returns every recorded decision of an episode, active or not.
func (a *Actor) Trace(ctx context.Context, episodeID string) ([]*storage.Transition, error) {
	if err := a.flushBuffer(ctx); err != nil {
		return nil, err
	}
	return a.backend.Episode(ctx, episodeID)
}

// PurgeTrace drops the recorded decisions of an episode and returns how many
// were removed.
func (a *Actor) PurgeTrace(ctx context.Context, episodeID string) (uint64, error) {
	if err := a.flushBuffer(ctx); err != nil {
		return 0, err
	}
	removed, err := a.backend.Clear(ctx, episodeID)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s", storage.ErrNotFound, episodeID)
	}
	a.logger.Info().Str("episode_id", episodeID).Uint64("removed", removed).Msg("Episode trace purged")
	return removed, nil
}

// Stats returns trace buffer statistics.
func (a *Actor) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := a.flushBuffer(ctx); err != nil {
		return nil, err
	}
	return a.backend.GetStats(ctx, "")
}

func (a *Actor) lookup(episodeID string) (*episode, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ep, ok := a.episodes[episodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEpisodeNotFound, episodeID)
	}
	return ep, nil
}

func (a *Actor) remove(episodeID string) (*episode, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ep, ok := a.episodes[episodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEpisodeNotFound, episodeID)
	}
	delete(a.episodes, episodeID)
	ep.done.Store(true)
	return ep, nil
}

// reapIdle drops episodes that have not acted within the episode timeout.
func (a *Actor) reapIdle(ctx context.Context, now time.Time) {
	cutoff := now.Add(-a.cfg.EpisodeTimeout).UnixNano()

	a.mu.Lock()
	var expired []*episode
	for id, ep := range a.episodes {
		if ep.lastSeen.Load() < cutoff {
			delete(a.episodes, id)
			ep.done.Store(true)
			expired = append(expired, ep)
		}
	}
	a.mu.Unlock()

	for _, ep := range expired {
		ep.mu.Lock()
		steps := ep.step
		ep.mu.Unlock()

		a.logger.Warn().Str("episode_id", ep.id).Uint32("steps", steps).Msg("Episode expired")
		a.metrics.Episode(ep.id, ep.agent, events.EpisodeExpired, steps)
		a.publish(ctx, events.EpisodeEvent{EpisodeID: ep.id, ActorID: a.cfg.ActorID, Agent: ep.agent, Event: events.EpisodeExpired, Steps: steps})
	}
}

func (a *Actor) publish(ctx context.Context, event events.EpisodeEvent) {
	if err := a.publisher.PublishEpisodeEvent(ctx, event); err != nil {
		a.logger.Warn().Err(err).Str("episode_id", event.EpisodeID).Str("event", event.Event).Msg("Failed to publish episode event")
	}
}

// record buffers a transition and flushes once a batch is full
func (a *Actor) record(ctx context.Context, t *storage.Transition) {
	a.bufMu.Lock()
	a.transitionBuffer = append(a.transitionBuffer, t)
	full := len(a.transitionBuffer) >= a.cfg.BatchSize
	a.bufMu.Unlock()

	if full {
		if err := a.flushBuffer(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to flush buffer")
		}
	}
}

// flushBuffer sends accumulated transitions to the trace backend
func (a *Actor) flushBuffer(ctx context.Context) error {
	a.bufMu.Lock()
	defer a.bufMu.Unlock()

	if len(a.transitionBuffer) == 0 {
		return nil
	}

	start := time.Now()
	ids, err := a.backend.StoreBatch(ctx, a.transitionBuffer)
	a.metrics.Flush(len(ids), time.Since(start), err)
	if err != nil {
		a.transitionBuffer = append(a.transitionBuffer[:0], a.transitionBuffer[len(ids):]...)
		return fmt.Errorf("failed to store batch: %w", err)
	}

	a.transitionBuffer = a.transitionBuffer[:0]
	return nil
}
