package server

import (
	"errors"
	"fmt"

	"github.com/cartridge/pacman/internal/game"
	"github.com/cartridge/pacman/internal/storage"
)

var errInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the wire form of one turn's observation.
type Snapshot struct {
	Pacman   game.Position    `json:"pacman"`
	Legal    []game.Direction `json:"legal"`
	Ghosts   []game.Position  `json:"ghosts,omitempty"`
	Food     []game.Position  `json:"food,omitempty"`
	Capsules []game.Position  `json:"capsules,omitempty"`
	Walls    []game.Position  `json:"walls,omitempty"`
}

func (s *Snapshot) toGame() (*game.Snapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing", errInvalidSnapshot)
	}
	if len(s.Legal) == 0 {
		return nil, fmt.Errorf("%w: no legal moves", errInvalidSnapshot)
	}
	for _, d := range s.Legal {
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: unknown direction %q", errInvalidSnapshot, d)
		}
	}
	return game.NewSnapshot(game.SnapshotParams{
		Pacman:   s.Pacman,
		Legal:    s.Legal,
		Ghosts:   s.Ghosts,
		Food:     s.Food,
		Capsules: s.Capsules,
		Walls:    game.NewWalls(s.Walls...),
	}), nil
}

type StartEpisodeRequest struct {
	Agent string `json:"agent,omitempty"`
}

type StartEpisodeResponse struct {
	EpisodeID string `json:"episode_id"`
	Agent     string `json:"agent"`
}

type ActRequest struct {
	EpisodeID string    `json:"episode_id"`
	Snapshot  *Snapshot `json:"snapshot"`
}

type ActResponse struct {
	Direction game.Direction `json:"direction"`
	Mode      string         `json:"mode,omitempty"`
	Step      uint32         `json:"step"`
	Fallback  bool           `json:"fallback"`
}

type EndEpisodeRequest struct {
	EpisodeID string `json:"episode_id"`
}

type EndEpisodeResponse struct {
	EpisodeID string `json:"episode_id"`
	Steps     uint32 `json:"steps"`
}

type TraceRequest struct {
	EpisodeID string `json:"episode_id"`
}

type TraceResponse struct {
	Transitions []*storage.Transition `json:"transitions"`
}
