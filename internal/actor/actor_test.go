package actor

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/pacman/internal/config"
	"github.com/cartridge/pacman/internal/events"
	"github.com/cartridge/pacman/internal/game"
	"github.com/cartridge/pacman/internal/policy"
	"github.com/cartridge/pacman/internal/storage"
)

type recordingPublisher struct {
	mu       sync.Mutex
	episodes []events.EpisodeEvent
	modes    []events.ModeChangeEvent
}

func (r *recordingPublisher) PublishEpisodeEvent(_ context.Context, e events.EpisodeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.episodes = append(r.episodes, e)
	return nil
}

func (r *recordingPublisher) PublishModeChange(_ context.Context, e events.ModeChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, e)
	return nil
}

func newTestActor(t *testing.T, mutate func(*config.Config)) (*Actor, *storage.MemoryBackend, *recordingPublisher) {
	t.Helper()

	cfg := config.Default()
	cfg.Seed = 1
	if mutate != nil {
		mutate(cfg)
	}
	backend := storage.NewMemoryBackend(1000)
	t.Cleanup(func() { backend.Close() })
	pub := &recordingPublisher{}

	a, err := New(cfg, backend, pub, zerolog.New(io.Discard))
	require.NoError(t, err)
	return a, backend, pub
}

func turn(self game.Position, legal []game.Direction, ghosts ...game.Position) *game.Snapshot {
	return game.NewSnapshot(game.SnapshotParams{Pacman: self, Legal: legal, Ghosts: ghosts})
}

var open = []game.Direction{game.North, game.South, game.East, game.West, game.Stop}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BatchSize = 0
	_, err := New(cfg, storage.NewMemoryBackend(10), nil, zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestStartEpisode_DefaultAndUnknownAgent(t *testing.T) {
	a, _, pub := newTestActor(t, nil)
	ctx := context.Background()

	id, agent, err := a.StartEpisode(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, policy.AgentForage, agent)
	assert.Equal(t, 1, a.ActiveEpisodes())

	_, _, err = a.StartEpisode(ctx, "pacifist")
	assert.ErrorIs(t, err, policy.ErrUnknownAgent)

	require.Len(t, pub.episodes, 1)
	assert.Equal(t, policy.AgentForage, pub.episodes[0].Agent)
	assert.Equal(t, events.EpisodeStarted, pub.episodes[0].Event)
}

func TestStartEpisode_Limit(t *testing.T) {
	a, _, _ := newTestActor(t, func(c *config.Config) { c.MaxEpisodes = 1 })
	ctx := context.Background()

	_, _, err := a.StartEpisode(ctx, policy.AgentRandom)
	require.NoError(t, err)
	_, _, err = a.StartEpisode(ctx, policy.AgentRandom)
	assert.ErrorIs(t, err, ErrTooManyEpisodes)
}

func TestAct_RecordsTrace(t *testing.T) {
	a, _, _ := newTestActor(t, nil)
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentCorner)
	require.NoError(t, err)

	// First corner is (18,1); heading East from (16,1) arrives in two moves.
	move, err := a.Act(ctx, id, turn(game.Position{X: 16, Y: 1}, open))
	require.NoError(t, err)
	assert.Equal(t, game.East, move.Direction)
	assert.Equal(t, uint32(0), move.Step)
	assert.Equal(t, policy.ModeForaging, move.Mode)

	move, err = a.Act(ctx, id, turn(game.Position{X: 17, Y: 1}, open))
	require.NoError(t, err)
	assert.Equal(t, game.East, move.Direction)

	move, err = a.Act(ctx, id, turn(game.Position{X: 18, Y: 1}, open))
	require.NoError(t, err)
	assert.Equal(t, game.Stop, move.Direction)
	assert.Equal(t, uint32(2), move.Step)

	trace, err := a.Trace(ctx, id)
	require.NoError(t, err)
	require.Len(t, trace, 3)
	assert.Equal(t, game.Position{X: 16, Y: 1}, trace[0].Position)
	assert.Equal(t, game.Stop, trace[2].Action)
	require.NotNil(t, trace[2].Target)
	assert.Equal(t, game.Position{X: 18, Y: 1}, *trace[2].Target)
	assert.Equal(t, policy.AgentCorner, trace[1].Agent)
}

func TestAct_PolicyErrorsSurface(t *testing.T) {
	a, _, _ := newTestActor(t, nil)
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentRandom)
	require.NoError(t, err)

	_, err = a.Act(ctx, id, turn(game.Position{}, nil))
	assert.ErrorIs(t, err, policy.ErrNoLegalMoves)
}

func TestAct_UnknownEpisode(t *testing.T) {
	a, _, _ := newTestActor(t, nil)
	_, err := a.Act(context.Background(), "nope", turn(game.Position{}, open))
	assert.ErrorIs(t, err, ErrEpisodeNotFound)
}

func TestAct_PublishesModeChanges(t *testing.T) {
	a, _, pub := newTestActor(t, nil)
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentForage)
	require.NoError(t, err)

	move, err := a.Act(ctx, id, turn(game.Position{X: 5, Y: 5}, open, game.Position{X: 5, Y: 15}))
	require.NoError(t, err)
	assert.Equal(t, policy.ModeForaging, move.Mode)

	move, err = a.Act(ctx, id, turn(game.Position{X: 5, Y: 4}, open, game.Position{X: 5, Y: 6}))
	require.NoError(t, err)
	assert.Equal(t, policy.ModeSurviving, move.Mode)
	assert.Equal(t, game.South, move.Direction)

	require.Len(t, pub.modes, 1)
	assert.Equal(t, "foraging", pub.modes[0].From)
	assert.Equal(t, "surviving", pub.modes[0].To)
	assert.Equal(t, uint32(1), pub.modes[0].Step)
}

func TestEndEpisode(t *testing.T) {
	a, _, pub := newTestActor(t, nil)
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentGoWest)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := a.Act(ctx, id, turn(game.Position{X: 10 - i, Y: 1}, open))
		require.NoError(t, err)
	}

	steps, err := a.EndEpisode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), steps)
	assert.Equal(t, 0, a.ActiveEpisodes())

	_, err = a.Act(ctx, id, turn(game.Position{X: 7, Y: 1}, open))
	assert.ErrorIs(t, err, ErrEpisodeNotFound)
	_, err = a.EndEpisode(ctx, id)
	assert.ErrorIs(t, err, ErrEpisodeNotFound)

	// The trace outlives the episode.
	trace, err := a.Trace(ctx, id)
	require.NoError(t, err)
	assert.Len(t, trace, 3)

	require.Len(t, pub.episodes, 2)
	assert.Equal(t, events.EpisodeEnded, pub.episodes[1].Event)
	assert.Equal(t, uint32(3), pub.episodes[1].Steps)
}

func TestRecord_FlushesFullBatches(t *testing.T) {
	a, backend, _ := newTestActor(t, func(c *config.Config) { c.BatchSize = 2 })
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentRandom)
	require.NoError(t, err)

	_, err = a.Act(ctx, id, turn(game.Position{}, open))
	require.NoError(t, err)
	stats, err := backend.GetStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.TotalTransitions)

	_, err = a.Act(ctx, id, turn(game.Position{}, open))
	require.NoError(t, err)
	stats, err = backend.GetStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.TotalTransitions)
}

func TestReapIdle(t *testing.T) {
	a, _, pub := newTestActor(t, func(c *config.Config) { c.EpisodeTimeout = time.Minute })
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentRandom)
	require.NoError(t, err)

	a.reapIdle(ctx, time.Now())
	assert.Equal(t, 1, a.ActiveEpisodes())

	a.reapIdle(ctx, time.Now().Add(2*time.Minute))
	assert.Equal(t, 0, a.ActiveEpisodes())

	_, err = a.Act(ctx, id, turn(game.Position{}, open))
	assert.ErrorIs(t, err, ErrEpisodeNotFound)
	require.Len(t, pub.episodes, 2)
	assert.Equal(t, events.EpisodeExpired, pub.episodes[1].Event)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, backend, _ := newTestActor(t, func(c *config.Config) { c.FlushInterval = 10 * time.Millisecond })
	ctx, cancel := context.WithCancel(context.Background())

	id, _, err := a.StartEpisode(ctx, policy.AgentRandom)
	require.NoError(t, err)
	_, err = a.Act(ctx, id, turn(game.Position{}, open))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	assert.Eventually(t, func() bool {
		stats, err := backend.GetStats(context.Background(), "")
		return err == nil && stats.TotalTransitions == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	require.NoError(t, a.Close())
}

func TestStartEpisode_HonoursZeroThreatThreshold(t *testing.T) {
	a, _, _ := newTestActor(t, func(c *config.Config) { c.ThreatThreshold = 0 })
	ctx := context.Background()

	id, _, err := a.StartEpisode(ctx, policy.AgentForage)
	require.NoError(t, err)

	move, err := a.Act(ctx, id, turn(game.Position{X: 10, Y: 5}, []game.Direction{game.North, game.South, game.East, game.West}, game.Position{X: 10, Y: 7}))
	require.NoError(t, err)
	assert.Equal(t, policy.ModeForaging, move.Mode)
}
