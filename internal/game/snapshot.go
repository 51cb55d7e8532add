package game

// Corners are the four waypoint cells toured by the corner-seeking agents.
// They match the medium classic layout used by the simulation.
var Corners = []Position{{X: 18, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 9}, {X: 18, Y: 9}}

// Walls is the set of impassable cells for the current map.
type Walls map[Position]struct{}

// NewWalls builds a wall set from a list of cells.
func NewWalls(cells ...Position) Walls {
	w := make(Walls, len(cells))
	for _, c := range cells {
		w[c] = struct{}{}
	}
	return w
}

// Has reports whether p is a wall. A nil set has no walls.
func (w Walls) Has(p Position) bool {
	_, ok := w[p]
	return ok
}

// Cells returns the walls as a slice in no particular order.
func (w Walls) Cells() []Position {
	out := make([]Position, 0, len(w))
	for p := range w {
		out = append(out, p)
	}
	return out
}

// Observation is the per-turn query surface offered by the simulation.
type Observation interface {
	LegalActions() []Direction
	WhereAmI() Position
	Ghosts() []Position
	Food() []Position
	Capsules() []Position
	Walls() Walls
}

// Snapshot is an immutable Observation captured once per turn.
type Snapshot struct {
	pacman   Position
	legal    []Direction
	ghosts   []Position
	food     []Position
	capsules []Position
	walls    Walls
}

// SnapshotParams carries the raw fields of a Snapshot.
type SnapshotParams struct {
	Pacman   Position
	Legal    []Direction
	Ghosts   []Position
	Food     []Position
	Capsules []Position
	Walls    Walls
}

// NewSnapshot copies params into a Snapshot so later mutation by the caller
// cannot leak into a decision in progress.
func NewSnapshot(params SnapshotParams) *Snapshot {
	walls := make(Walls, len(params.Walls))
	for p := range params.Walls {
		walls[p] = struct{}{}
	}
	return &Snapshot{
		pacman:   params.Pacman,
		legal:    append([]Direction(nil), params.Legal...),
		ghosts:   append([]Position(nil), params.Ghosts...),
		food:     append([]Position(nil), params.Food...),
		capsules: append([]Position(nil), params.Capsules...),
		walls:    walls,
	}
}

func (s *Snapshot) LegalActions() []Direction { return append([]Direction(nil), s.legal...) }
func (s *Snapshot) WhereAmI() Position        { return s.pacman }
func (s *Snapshot) Ghosts() []Position        { return append([]Position(nil), s.ghosts...) }
func (s *Snapshot) Food() []Position          { return append([]Position(nil), s.food...) }
func (s *Snapshot) Capsules() []Position      { return append([]Position(nil), s.capsules...) }

// Walls returns the wall set. Callers must treat it as read-only.
func (s *Snapshot) Walls() Walls { return s.walls }
