package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionStep(t *testing.T) {
	origin := Position{X: 5, Y: 5}

	assert.Equal(t, Position{X: 5, Y: 6}, North.Step(origin))
	assert.Equal(t, Position{X: 5, Y: 4}, South.Step(origin))
	assert.Equal(t, Position{X: 6, Y: 5}, East.Step(origin))
	assert.Equal(t, Position{X: 4, Y: 5}, West.Step(origin))
	assert.Equal(t, origin, Stop.Step(origin))
}

func TestManhattan(t *testing.T) {
	assert.Equal(t, 7, Manhattan(Position{X: 5, Y: 6}, Position{X: 1, Y: 9}))
	assert.Equal(t, 8, Manhattan(Position{X: 6, Y: 5}, Position{X: 1, Y: 9}))
	assert.Equal(t, 0, Manhattan(Position{X: 3, Y: 3}, Position{X: 3, Y: 3}))
}

func TestMakeMove(t *testing.T) {
	legal := []Direction{North, East, Stop}

	d, err := MakeMove(East, legal)
	require.NoError(t, err)
	assert.Equal(t, East, d)

	_, err = MakeMove(West, legal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalMove))
}

func TestWithout(t *testing.T) {
	legal := []Direction{North, Stop, West}
	out := Without(legal, Stop)

	assert.Equal(t, []Direction{North, West}, out)
	assert.Len(t, legal, 3, "input must not be modified")
}

func TestSnapshotIsolatesCaller(t *testing.T) {
	legal := []Direction{North, South}
	walls := NewWalls(Position{X: 0, Y: 0})
	snap := NewSnapshot(SnapshotParams{
		Pacman: Position{X: 1, Y: 1},
		Legal:  legal,
		Ghosts: []Position{{X: 4, Y: 4}},
		Walls:  walls,
	})

	legal[0] = West
	walls[Position{X: 9, Y: 9}] = struct{}{}

	assert.Equal(t, []Direction{North, South}, snap.LegalActions())
	assert.False(t, snap.Walls().Has(Position{X: 9, Y: 9}))
	assert.True(t, snap.Walls().Has(Position{X: 0, Y: 0}))
	assert.Equal(t, Position{X: 1, Y: 1}, snap.WhereAmI())
	assert.Empty(t, snap.Food())
}

func TestDirectionIsValid(t *testing.T) {
	for _, d := range append(Compass, Stop) {
		assert.True(t, d.IsValid(), d)
	}
	assert.False(t, Direction("Up").IsValid())
}
