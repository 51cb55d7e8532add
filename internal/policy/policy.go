// Package policy provides move selection strategies for Pacman agents.
package policy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartridge/pacman/internal/game"
)

var (
	// ErrUnknownAgent is returned by New for an unregistered agent name.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrNoLegalMoves is returned when a turn offers no legal action at all.
	ErrNoLegalMoves = errors.New("no legal moves")
)

// Policy interface for action selection
type Policy interface {
	// SelectAction chooses a legal move for the observed turn.
	SelectAction(obs game.Observation) (game.Direction, error)
}

// Rand is the source of randomness used for fallback and target choices.
// *rand.Rand satisfies it; tests inject a stub.
type Rand interface {
	Intn(n int) int
}

// Mode is the behaviour classification of a single turn.
type Mode string

const (
	ModeForaging  Mode = "foraging"
	ModeSurviving Mode = "surviving"
)

// Decision explains the most recent move of a stateful policy.
type Decision struct {
	Mode     Mode
	Target   *game.Position
	Fallback bool
}

// Reporter is implemented by policies that can explain their last move.
type Reporter interface {
	LastDecision() Decision
}

// Options configure a policy built through New.
type Options struct {
	Rand            Rand
	Corners         []game.Position
	ThreatThreshold *int // nil selects DefaultThreatThreshold; 0 is honoured
	Logger          zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(o.Corners) == 0 {
		o.Corners = game.Corners
	}
	if o.ThreatThreshold == nil {
		threshold := DefaultThreatThreshold
		o.ThreatThreshold = &threshold
	}
	return o
}

// Registered agent names.
const (
	AgentRandom    = "random"
	AgentRandomish = "randomish"
	AgentSensing   = "sensing"
	AgentGoWest    = "gowest"
	AgentCorner    = "corner"
	AgentForage    = "forage"
)

var registry = map[string]func(Options) Policy{
	AgentRandom:    func(o Options) Policy { return NewRandom(o.Rand) },
	AgentRandomish: func(o Options) Policy { return NewRandomish(o.Rand) },
	AgentSensing:   func(o Options) Policy { return NewSensing(o.Logger) },
	AgentGoWest:    func(Options) Policy { return GoWest{} },
	AgentCorner:    func(o Options) Policy { return NewCornerSeeking(o.Corners, o.Rand) },
	AgentForage:    func(o Options) Policy { return NewForageSafely(o.Corners, *o.ThreatThreshold, o.Rand) },
}

// New creates a fresh policy instance. Each game episode needs its own.
func New(name string, opts Options) (Policy, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}
	return build(opts.withDefaults()), nil
}

// Names lists the registered agents in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func randomChoice(rng Rand, moves []game.Direction) game.Direction {
	return moves[rng.Intn(len(moves))]
}
