package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartridge/pacman/internal/game"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, ModeSurviving, Classify([]int{5, 2}, 3))
	assert.Equal(t, ModeSurviving, Classify([]int{3}, 3))
	assert.Equal(t, ModeForaging, Classify([]int{5, 4}, 3))
	assert.Equal(t, ModeForaging, Classify(nil, 3))
}

func TestThreatDistances(t *testing.T) {
	got := ThreatDistances(pos(1, 1), []game.Position{pos(1, 6), pos(3, 1)})
	assert.Equal(t, []int{5, 2}, got)
	assert.Equal(t, ModeSurviving, Classify(got, DefaultThreatThreshold))
}
