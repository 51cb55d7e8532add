package policy

import (
	"github.com/cartridge/pacman/internal/game"
)

type candidate struct {
	dir  game.Direction
	cell game.Position
}

// candidates walks the compass in its fixed order, keeping legal moves whose
// resulting cell is neither a wall nor avoid. Stop is never a candidate.
func candidates(self game.Position, legal []game.Direction, walls game.Walls, avoid *game.Position) []candidate {
	out := make([]candidate, 0, len(game.Compass))
	for _, d := range game.Compass {
		if !game.Contains(legal, d) {
			continue
		}
		next := d.Step(self)
		if walls.Has(next) {
			continue
		}
		if avoid != nil && next == *avoid {
			continue
		}
		out = append(out, candidate{dir: d, cell: next})
	}
	return out
}

// BestMove picks the legal move whose resulting cell is closest to target.
// Moves into walls or into avoid are excluded outright, even when that
// leaves nothing; ok is false in that case and the caller falls back.
func BestMove(self, target game.Position, legal []game.Direction, walls game.Walls, avoid *game.Position) (game.Direction, bool) {
	var (
		best     game.Direction
		bestDist int
		found    bool
	)
	for _, c := range candidates(self, legal, walls, avoid) {
		dist := game.Manhattan(c.cell, target)
		if !found || dist < bestDist {
			best, bestDist, found = c.dir, dist, true
		}
	}
	return best, found
}

// FleeMove picks the legal move that maximises the distance to the nearest
// threat. Only walls filter candidates; the previous cell is allowed.
func FleeMove(self game.Position, threats []game.Position, legal []game.Direction, walls game.Walls) (game.Direction, bool) {
	if len(threats) == 0 {
		return "", false
	}
	var (
		best    game.Direction
		bestMin int
		found   bool
	)
	for _, c := range candidates(self, legal, walls, nil) {
		nearest := nearestDistance(c.cell, threats)
		if !found || nearest > bestMin {
			best, bestMin, found = c.dir, nearest, true
		}
	}
	return best, found
}

func nearestDistance(p game.Position, threats []game.Position) int {
	nearest := game.Manhattan(p, threats[0])
	for _, t := range threats[1:] {
		if d := game.Manhattan(p, t); d < nearest {
			nearest = d
		}
	}
	return nearest
}
