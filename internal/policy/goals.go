package policy

import (
	"errors"

	"github.com/cartridge/pacman/internal/game"
)

// ErrGoalsExhausted signals a caller asked for a goal without first
// resetting a fully visited tour.
var ErrGoalsExhausted = errors.New("all goals visited")

// SelectGoal returns the first goal, in list order, that is not in visited.
func SelectGoal(visited, goals []game.Position) (game.Position, error) {
	for _, g := range goals {
		if !containsPosition(visited, g) {
			return g, nil
		}
	}
	return game.Position{}, ErrGoalsExhausted
}

// GoalTracker is the per-episode memory of a waypoint tour.
type GoalTracker struct {
	goals   []game.Position
	visited []game.Position
	current *game.Position
}

// NewGoalTracker starts a tour over goals, which must not be empty.
func NewGoalTracker(goals []game.Position) *GoalTracker {
	return &GoalTracker{goals: append([]game.Position(nil), goals...)}
}

// Exhausted reports whether every goal has been visited this cycle.
func (t *GoalTracker) Exhausted() bool {
	return len(t.visited) == len(t.goals)
}

// Reset clears the visited set so a new cycle can begin.
func (t *GoalTracker) Reset() {
	t.visited = t.visited[:0]
}

// Current returns the goal being pursued, selecting one if none is set.
func (t *GoalTracker) Current() (game.Position, error) {
	if t.current != nil {
		return *t.current, nil
	}
	g, err := SelectGoal(t.visited, t.goals)
	if err != nil {
		return game.Position{}, err
	}
	t.current = &g
	return g, nil
}

// Arrive marks the current goal visited when p is on it.
func (t *GoalTracker) Arrive(p game.Position) bool {
	if t.current == nil || *t.current != p {
		return false
	}
	t.visited = append(t.visited, p)
	t.current = nil
	return true
}

// Visited returns a copy of the goals reached this cycle, in arrival order.
func (t *GoalTracker) Visited() []game.Position {
	return append([]game.Position(nil), t.visited...)
}

func containsPosition(ps []game.Position, p game.Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
