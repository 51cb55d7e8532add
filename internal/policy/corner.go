package policy

import (
	"github.com/cartridge/pacman/internal/game"
)

// CornerSeeking tours the corner goals forever, moving greedily towards the
// current one and never stepping straight back onto its previous cell.
type CornerSeeking struct {
	rng      Rand
	goals    *GoalTracker
	last     *game.Position
	decision Decision
}

// NewCornerSeeking creates a corner touring policy over corners.
func NewCornerSeeking(corners []game.Position, rng Rand) *CornerSeeking {
	return &CornerSeeking{rng: rng, goals: NewGoalTracker(corners)}
}

// LastDecision implements Reporter.
func (p *CornerSeeking) LastDecision() Decision { return p.decision }

// SelectAction implements Policy interface
func (p *CornerSeeking) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	if len(legal) == 0 {
		return "", ErrNoLegalMoves
	}
	self := obs.WhereAmI()

	d, err := p.decide(self, legal, obs.Walls())
	if err != nil {
		return "", err
	}
	p.last = &self
	return d, nil
}

func (p *CornerSeeking) decide(self game.Position, legal []game.Direction, walls game.Walls) (game.Direction, error) {
	if p.goals.Exhausted() {
		p.goals.Reset()
	}
	goal, err := p.goals.Current()
	if err != nil {
		return "", err
	}

	if p.goals.Arrive(self) {
		p.decision = Decision{Mode: ModeForaging, Target: &goal}
		if game.Contains(legal, game.Stop) {
			return game.MakeMove(game.Stop, legal)
		}
		if p.goals.Exhausted() {
			p.goals.Reset()
		}
		if goal, err = p.goals.Current(); err != nil {
			return "", err
		}
	}

	p.decision = Decision{Mode: ModeForaging, Target: &goal}
	if d, ok := BestMove(self, goal, legal, walls, p.last); ok {
		return game.MakeMove(d, legal)
	}
	p.decision.Fallback = true
	return game.MakeMove(randomChoice(p.rng, legal), legal)
}
