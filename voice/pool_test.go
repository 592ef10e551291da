package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonon/pattern"
)

func sampleData(n int) *SampleData {
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	return &SampleData{Samples: data, SampleRate: 44100}
}

func basicParams(t int64) TriggerParams {
	return TriggerParams{
		Sample:         sampleData(44100),
		Gain:           1,
		Speed:          1,
		End:            1,
		AttackSamples:  10,
		ReleaseSamples: 10,
		TriggerTime:    pattern.FromInt(t),
		Owner:          NoOwner,
	}
}

func TestVoiceConservationNoSteal(t *testing.T) {
	p := NewPool(4, 4, None)
	triggered := 0
	for i := int64(0); i < 6; i++ {
		if v := p.Trigger(basicParams(i)); v != nil {
			triggered++
		}
	}
	assert.LessOrEqual(t, p.Active(), 4)
	snap := p.Stats().Snapshot()
	assert.Equal(t, uint64(4), snap.Triggered)
	assert.Equal(t, uint64(2), snap.Dropped)
	assert.Equal(t, 4, triggered)
}

func TestVoiceStealingOldest(t *testing.T) {
	p := NewPool(4, 4, Oldest)
	for i := int64(0); i < 6; i++ {
		require.NotNil(t, p.Trigger(basicParams(i)))
	}
	assert.Equal(t, 4, p.Active())
	snap := p.Stats().Snapshot()
	assert.Equal(t, uint64(2), snap.Stolen)

	var times []int64
	for i := range p.voices {
		if p.voices[i].state != Free {
			times = append(times, p.voices[i].TriggerTime.Num)
		}
	}
	assert.ElementsMatch(t, []int64{2, 3, 4, 5}, times)
}

func TestGrowthBeforeMax(t *testing.T) {
	p := NewPool(2, 0, Oldest)
	for i := int64(0); i < 10; i++ {
		require.NotNil(t, p.Trigger(basicParams(i)))
	}
	assert.Equal(t, 10, p.Active())
	assert.GreaterOrEqual(t, p.Len(), 10)
}

func TestCutGroupReleasesPeers(t *testing.T) {
	p := NewPool(4, 4, None)
	p1 := basicParams(0)
	p1.CutGroup = 1
	p2 := basicParams(1)
	p2.CutGroup = 1

	v1 := p.Trigger(p1)
	require.NotNil(t, v1)
	v2 := p.Trigger(p2)
	require.NotNil(t, v2)

	assert.Equal(t, Releasing, v1.State())
	assert.Equal(t, Playing, v2.State())
}

func TestChordExpansion(t *testing.T) {
	offsets, ok := ExpandChord("maj7")
	require.True(t, ok)
	assert.Equal(t, []int{0, 4, 7, 11}, offsets)

	_, ok = ExpandChord("nope")
	assert.False(t, ok)
}

func TestVoiceAdvanceProducesOutputThenFrees(t *testing.T) {
	p := NewPool(1, 1, None)
	params := basicParams(0)
	params.Sample = sampleData(4)
	params.AttackSamples = 1
	params.ReleaseSamples = 1
	v := p.Trigger(params)
	require.NotNil(t, v)

	sawNonZero := false
	for i := 0; i < 10; i++ {
		p.AdvanceSample()
		l, r := p.MixOwned(NoOwner)
		if l != 0 || r != 0 {
			sawNonZero = true
		}
	}
	assert.True(t, sawNonZero)
	assert.Equal(t, Free, v.State())
}
