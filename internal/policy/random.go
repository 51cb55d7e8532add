package policy

import (
	"github.com/cartridge/pacman/internal/game"
)

// RandomPolicy picks uniformly among legal moves, never stopping unless it
// has to.
type RandomPolicy struct {
	rng Rand
}

// NewRandom creates a new random policy
func NewRandom(rng Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

// SelectAction implements Policy interface
func (p *RandomPolicy) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	moving, err := movingOptions(legal)
	if err != nil {
		return "", err
	}
	return game.MakeMove(randomChoice(p.rng, moving), legal)
}

// RandomishPolicy keeps going in one direction until it is blocked, then
// picks a new direction at random.
type RandomishPolicy struct {
	rng  Rand
	last game.Direction
}

// NewRandomish creates a policy that starts out stopped.
func NewRandomish(rng Rand) *RandomishPolicy {
	return &RandomishPolicy{rng: rng, last: game.Stop}
}

// SelectAction implements Policy interface
func (p *RandomishPolicy) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	moving, err := movingOptions(legal)
	if err != nil {
		return "", err
	}
	if game.Contains(moving, p.last) {
		return game.MakeMove(p.last, legal)
	}
	p.last = randomChoice(p.rng, moving)
	return game.MakeMove(p.last, legal)
}

// movingOptions drops Stop from legal unless it is the only option left.
func movingOptions(legal []game.Direction) ([]game.Direction, error) {
	if len(legal) == 0 {
		return nil, ErrNoLegalMoves
	}
	moving := game.Without(legal, game.Stop)
	if len(moving) == 0 {
		return legal, nil
	}
	return moving, nil
}
