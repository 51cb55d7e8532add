package policy

import (
	"github.com/cartridge/pacman/internal/game"
)

// ForageSafely tours the corners once, then chases food, and flees whenever
// a ghost gets within its threat threshold.
type ForageSafely struct {
	rng       Rand
	corners   []game.Position
	threshold int
	goals     *GoalTracker
	last      *game.Position
	decision  Decision
}

// NewForageSafely creates a forage/flee policy.
func NewForageSafely(corners []game.Position, threshold int, rng Rand) *ForageSafely {
	return &ForageSafely{
		rng:       rng,
		corners:   append([]game.Position(nil), corners...),
		threshold: threshold,
		goals:     NewGoalTracker(corners),
	}
}

// LastDecision implements Reporter.
func (p *ForageSafely) LastDecision() Decision { return p.decision }

// SelectAction implements Policy interface
func (p *ForageSafely) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	if len(legal) == 0 {
		return "", ErrNoLegalMoves
	}
	self := obs.WhereAmI()

	var d game.Direction
	var err error
	ghosts := obs.Ghosts()
	if Classify(ThreatDistances(self, ghosts), p.threshold) == ModeSurviving {
		d, err = p.survive(self, ghosts, legal, obs.Walls())
	} else {
		d, err = p.forage(self, obs.Food(), legal, obs.Walls())
	}
	if err != nil {
		return "", err
	}
	p.last = &self
	return d, nil
}

func (p *ForageSafely) survive(self game.Position, ghosts []game.Position, legal []game.Direction, walls game.Walls) (game.Direction, error) {
	p.decision = Decision{Mode: ModeSurviving}
	if d, ok := FleeMove(self, ghosts, legal, walls); ok {
		return game.MakeMove(d, legal)
	}
	p.decision.Fallback = true
	return game.MakeMove(randomChoice(p.rng, legal), legal)
}

func (p *ForageSafely) forage(self game.Position, food []game.Position, legal []game.Direction, walls game.Walls) (game.Direction, error) {
	if !p.goals.Exhausted() {
		goal, err := p.goals.Current()
		if err != nil {
			return "", err
		}
		if p.goals.Arrive(self) && game.Contains(legal, game.Stop) {
			p.decision = Decision{Mode: ModeForaging, Target: &goal}
			return game.MakeMove(game.Stop, legal)
		}
	}

	target, err := p.target(food)
	if err != nil {
		return "", err
	}
	p.decision = Decision{Mode: ModeForaging, Target: &target}
	if d, ok := BestMove(self, target, legal, walls, p.last); ok {
		return game.MakeMove(d, legal)
	}
	p.decision.Fallback = true
	return game.MakeMove(randomChoice(p.rng, legal), legal)
}

// target is the next unvisited corner while the tour lasts, then a random
// food pellet, or a random corner once the board is clear.
func (p *ForageSafely) target(food []game.Position) (game.Position, error) {
	if !p.goals.Exhausted() {
		return p.goals.Current()
	}
	if len(food) > 0 {
		return food[p.rng.Intn(len(food))], nil
	}
	if len(p.corners) == 0 {
		return game.Position{}, ErrGoalsExhausted
	}
	return p.corners[p.rng.Intn(len(p.corners))], nil
}
