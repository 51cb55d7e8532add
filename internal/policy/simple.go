package policy

import (
	"github.com/rs/zerolog"

	"github.com/cartridge/pacman/internal/game"
)

// GoWest heads West whenever it can, then North, then South, then any other
// moving option. It stops only when nothing else is legal.
type GoWest struct{}

// SelectAction implements Policy interface
func (GoWest) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	for _, d := range []game.Direction{game.West, game.North, game.South} {
		if game.Contains(legal, d) {
			return game.MakeMove(d, legal)
		}
	}
	options, err := movingOptions(legal)
	if err != nil {
		return "", err
	}
	return game.MakeMove(options[0], legal)
}

// SensingPolicy stays put and logs everything it can observe.
type SensingPolicy struct {
	logger zerolog.Logger
}

// NewSensing creates a policy that reports every observation to logger.
func NewSensing(logger zerolog.Logger) *SensingPolicy {
	return &SensingPolicy{logger: logger}
}

// SelectAction implements Policy interface
func (p *SensingPolicy) SelectAction(obs game.Observation) (game.Direction, error) {
	legal := obs.LegalActions()
	pacman := obs.WhereAmI()
	ghosts := obs.Ghosts()

	p.logger.Info().
		Interface("legal", legal).
		Stringer("pacman", pacman).
		Interface("ghosts", ghosts).
		Ints("ghost_distances", ThreatDistances(pacman, ghosts)).
		Interface("capsules", obs.Capsules()).
		Interface("food", obs.Food()).
		Interface("walls", obs.Walls().Cells()).
		Msg("Sensor readings")

	return game.MakeMove(game.Stop, legal)
}
