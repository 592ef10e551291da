package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatPresetsHaveSixteenSteps(t *testing.T) {
	for _, p := range BeatPresets {
		assert.Len(t, p.Kick, 16, p.Name)
		assert.Len(t, p.Snare, 16, p.Name)
		assert.Len(t, p.HiHat, 16, p.Name)
		assert.Len(t, p.Bass, 16, p.Name)
	}
}

func TestGridToNotationEmitsOneAtomPerStep(t *testing.T) {
	grid := []int{1, 0, 1, 0}
	s := gridToNotation("bd", grid)
	assert.Equal(t, "bd ~ bd ~", s)
}

func TestBuildKitProducesAllFourDrumVoices(t *testing.T) {
	bank := buildKit()
	for _, name := range []string{"bd", "sn", "hh", "bs"} {
		data, ok := bank.Lookup(name, 0)
		require.True(t, ok, name)
		require.NotNil(t, data)
		assert.Greater(t, data.Len(), 0, name)
	}
}

func TestKitBankMissingNameNotFound(t *testing.T) {
	bank := buildKit()
	_, ok := bank.Lookup("nope", 0)
	assert.False(t, ok)
}
