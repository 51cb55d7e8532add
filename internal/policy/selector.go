package policy

import "github.com/cartridge/pacman/internal/game"

// DefaultThreatThreshold is the distance at or below which a ghost forces
// the forage agent to flee.
const DefaultThreatThreshold = 3

// ThreatDistances returns the Manhattan distance from self to each threat.
func ThreatDistances(self game.Position, threats []game.Position) []int {
	out := make([]int, len(threats))
	for i, t := range threats {
		out[i] = game.Manhattan(self, t)
	}
	return out
}

// Classify derives this turn's mode from threat distances.
func Classify(distances []int, threshold int) Mode {
	for _, d := range distances {
		if d <= threshold {
			return ModeSurviving
		}
	}
	return ModeForaging
}
