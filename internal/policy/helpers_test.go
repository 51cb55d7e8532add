package policy

import "github.com/cartridge/pacman/internal/game"

// stubRand always answers n modulo the requested bound.
type stubRand struct{ n int }

func (s stubRand) Intn(bound int) int { return s.n % bound }

type snapOption func(*game.SnapshotParams)

func withGhosts(ps ...game.Position) snapOption {
	return func(p *game.SnapshotParams) { p.Ghosts = ps }
}

func withFood(ps ...game.Position) snapOption {
	return func(p *game.SnapshotParams) { p.Food = ps }
}

func withWalls(ps ...game.Position) snapOption {
	return func(p *game.SnapshotParams) { p.Walls = game.NewWalls(ps...) }
}

func snap(self game.Position, legal []game.Direction, opts ...snapOption) *game.Snapshot {
	params := game.SnapshotParams{Pacman: self, Legal: legal}
	for _, opt := range opts {
		opt(&params)
	}
	return game.NewSnapshot(params)
}

func pos(x, y int) game.Position { return game.Position{X: x, Y: y} }

func moves(ds ...game.Direction) []game.Direction { return ds }
