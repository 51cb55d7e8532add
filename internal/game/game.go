// Package game describes the read-only view of a Pacman board that agents
// receive each turn, and the single way an agent emits a move.
package game

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a move is emitted that the simulation did
// not report as legal for the current turn.
var ErrIllegalMove = errors.New("illegal move")

// Position is a grid cell. Validity is decided by the simulation, not here.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns |dx| + |dy| between two cells.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the five moves the simulation understands.
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
	Stop  Direction = "Stop"
)

// Compass lists the moving directions in their fixed enumeration order.
// Greedy choices break ties in this order.
var Compass = []Direction{North, South, East, West}

// IsValid reports whether d is a recognised direction.
func (d Direction) IsValid() bool {
	switch d {
	case North, South, East, West, Stop:
		return true
	default:
		return false
	}
}

// Step returns the cell reached by moving from p in direction d.
// Stop leaves p unchanged.
func (d Direction) Step(p Position) Position {
	switch d {
	case North:
		return Position{X: p.X, Y: p.Y + 1}
	case South:
		return Position{X: p.X, Y: p.Y - 1}
	case East:
		return Position{X: p.X + 1, Y: p.Y}
	case West:
		return Position{X: p.X - 1, Y: p.Y}
	default:
		return p
	}
}

// Contains reports whether d is present in moves.
func Contains(moves []Direction, d Direction) bool {
	for _, m := range moves {
		if m == d {
			return true
		}
	}
	return false
}

// Without returns a copy of moves with every occurrence of d removed.
func Without(moves []Direction, d Direction) []Direction {
	out := make([]Direction, 0, len(moves))
	for _, m := range moves {
		if m != d {
			out = append(out, m)
		}
	}
	return out
}

// MakeMove is the only way an agent hands a decision back to the
// simulation. A direction outside legal is a bug in the caller.
func MakeMove(d Direction, legal []Direction) (Direction, error) {
	if !Contains(legal, d) {
		return "", fmt.Errorf("%w: %s not in %v", ErrIllegalMove, d, legal)
	}
	return d, nil
}
