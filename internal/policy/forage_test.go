package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/pacman/internal/game"
)

func TestForageSafely_FleesCloseGhost(t *testing.T) {
	policy := NewForageSafely(game.Corners, DefaultThreatThreshold, stubRand{})

	got, err := policy.SelectAction(snap(pos(5, 5), moves(game.West, game.East, game.Stop), withGhosts(pos(5, 6))))
	require.NoError(t, err)
	assert.Equal(t, game.East, got)
	assert.Equal(t, ModeSurviving, policy.LastDecision().Mode)
	assert.Nil(t, policy.LastDecision().Target)
}

func TestForageSafely_DistantGhostKeepsForaging(t *testing.T) {
	policy := NewForageSafely(game.Corners, DefaultThreatThreshold, stubRand{})

	got, err := policy.SelectAction(snap(pos(10, 5), allMoves, withGhosts(pos(10, 9))))
	require.NoError(t, err)
	// First corner is (18,1): East and South tie at 11 and South comes first in compass order.
	assert.Equal(t, game.South, got)
	decision := policy.LastDecision()
	assert.Equal(t, ModeForaging, decision.Mode)
	assert.Equal(t, pos(18, 1), *decision.Target)
}

func TestForageSafely_ChasesFoodAfterTour(t *testing.T) {
	policy := NewForageSafely([]game.Position{pos(1, 1)}, DefaultThreatThreshold, stubRand{n: 1})

	got, err := policy.SelectAction(snap(pos(1, 1), allMoves))
	require.NoError(t, err)
	assert.Equal(t, game.Stop, got)

	got, err = policy.SelectAction(snap(pos(1, 1), moves(game.North, game.East), withFood(pos(5, 1), pos(1, 5))))
	require.NoError(t, err)
	assert.Equal(t, game.North, got)
	assert.Equal(t, pos(1, 5), *policy.LastDecision().Target)
}

func TestForageSafely_RandomCornerWhenBoardIsClear(t *testing.T) {
	policy := NewForageSafely([]game.Position{pos(1, 1)}, DefaultThreatThreshold, stubRand{})

	_, err := policy.SelectAction(snap(pos(1, 1), allMoves))
	require.NoError(t, err)

	got, err := policy.SelectAction(snap(pos(4, 1), moves(game.West, game.East)))
	require.NoError(t, err)
	assert.Equal(t, game.West, got)
	assert.Equal(t, pos(1, 1), *policy.LastDecision().Target)
}

func TestForageSafely_FleeFallback(t *testing.T) {
	policy := NewForageSafely(game.Corners, DefaultThreatThreshold, stubRand{})

	got, err := policy.SelectAction(snap(pos(5, 5), moves(game.Stop), withGhosts(pos(5, 7))))
	require.NoError(t, err)
	assert.Equal(t, game.Stop, got)
	assert.True(t, policy.LastDecision().Fallback)
}

func TestForageSafely_FailedTurnKeepsLastPosition(t *testing.T) {
	policy := NewForageSafely(nil, DefaultThreatThreshold, stubRand{})

	_, err := policy.SelectAction(snap(pos(5, 5), allMoves))
	require.ErrorIs(t, err, ErrGoalsExhausted)
	assert.Nil(t, policy.last)

	// With food on the board the same agent can move, and only then remembers where it was.
	_, err = policy.SelectAction(snap(pos(5, 5), allMoves, withFood(pos(5, 8))))
	require.NoError(t, err)
	require.NotNil(t, policy.last)
	assert.Equal(t, pos(5, 5), *policy.last)
}
