package signalgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonon/notation"
	"phonon/voice"
)

func TestConstantSignalIsUniform(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	id := g.AddNode(NewOscillator(Sine, ConstSignal(440)))
	g.SetOutput("out", id)
	l, r := g.Sample()
	assert.Equal(t, l, r) // mono source, no Pan in the chain
}

func TestOscillatorProducesNonZeroSignal(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	id := g.AddNode(NewOscillator(Saw, ConstSignal(220)))
	g.SetOutput("out", id)
	var sawNonZero bool
	for i := 0; i < 200; i++ {
		l, _ := g.Sample()
		if l != 0 {
			sawNonZero = true
		}
	}
	assert.True(t, sawNonZero)
}

func TestReplaceNodeKeepsDownstreamEdgesIntact(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	src := g.AddNode(NewOscillator(Sine, ConstSignal(100)))
	gainNode := g.AddNode(NewMul(NodeSignal(src), ConstSignal(0.5)))
	g.SetOutput("out", gainNode)

	g.ReplaceNode(src, NewOscillator(Sine, ConstSignal(1000)))
	l, _ := g.Sample()
	_ = l // just verifying this doesn't panic and gainNode's edge to src still resolves
	assert.Equal(t, gainNode, gainNode)
}

func TestMissingBusIsCountedNotFatal(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	_, ok := g.Bus("nope")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), g.MissingBuses)
}

func TestHoleEvaluatesToSilence(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	id := g.AddNode(NewOscillator(Sine, ConstSignal(440)))
	g.SetOutput("out", id)
	g.RemoveNode(id)
	l, r := g.Sample()
	assert.Equal(t, float32(0), l)
	assert.Equal(t, float32(0), r)
}

func TestClampedFilterParamsRaiseNoAnomaly(t *testing.T) {
	g := NewGraph(44100, 1, nil)
	id := g.AddNode(NewFilter(FilterLowPass, ConstSignal(1), ConstSignal(0), ConstSignal(0)))
	g.SetOutput("out", id)
	g.Sample()
	// freq<=0 is clamped internally, so this should not actually produce
	// NaN; this test instead exercises that a well-behaved chain never
	// increments the anomaly counter.
	assert.Equal(t, uint64(0), g.NumericAnomalies)
}

type fakeBank struct {
	data *voice.SampleData
}

func (b *fakeBank) Lookup(name string, index int) (*voice.SampleData, bool) {
	if name == "missing" {
		return nil, false
	}
	return b.data, true
}

func TestSamplePatternTriggersVoicesOnOnset(t *testing.T) {
	pool := voice.NewPool(4, 4, voice.None)
	g := NewGraph(44100, 1, pool)

	pat, err := notation.Compile("bd bd")
	require.NoError(t, err)
	bank := &fakeBank{data: &voice.SampleData{Samples: make([]float32, 44100), SampleRate: 44100}}
	for i := range bank.data.Samples {
		bank.data.Samples[i] = 1
	}
	sp := NewSamplePattern(pat, bank)
	id := g.AddSamplePattern(sp)
	g.SetOutput("out", id)

	samplesPerCycle := 44100
	for i := 0; i < samplesPerCycle; i++ {
		g.Sample()
	}
	snap := pool.Stats().Snapshot()
	assert.Equal(t, uint64(2), snap.Triggered)
}

func TestSamplePatternMissingSampleIsCounted(t *testing.T) {
	pool := voice.NewPool(4, 4, voice.None)
	g := NewGraph(44100, 1, pool)
	pat, err := notation.Compile("missing")
	require.NoError(t, err)
	sp := NewSamplePattern(pat, &fakeBank{data: &voice.SampleData{Samples: []float32{1}, SampleRate: 44100}})
	id := g.AddSamplePattern(sp)
	g.SetOutput("out", id)

	for i := 0; i < 44100; i++ {
		g.Sample()
	}
	assert.Equal(t, uint64(1), g.MissingSamples)
}

func TestBusReferenceAtomTriggersOneShotVoice(t *testing.T) {
	pool := voice.NewPool(4, 4, voice.None)
	g := NewGraph(44100, 1, pool)

	osc := g.AddNode(NewOscillator(Sine, ConstSignal(440)))
	g.SetBus("tone", osc)

	pat, err := notation.Compile("~tone")
	require.NoError(t, err)
	sp := NewSamplePattern(pat, nil) // no sample bank needed for bus atoms
	id := g.AddSamplePattern(sp)
	g.SetOutput("out", id)

	for i := 0; i < 44100; i++ {
		g.Sample()
	}
	snap := pool.Stats().Snapshot()
	assert.Equal(t, uint64(1), snap.Triggered)
	assert.Equal(t, uint64(0), g.MissingBuses)
}

func TestUnknownBusReferenceAtomIsCountedNotFatal(t *testing.T) {
	pool := voice.NewPool(4, 4, voice.None)
	g := NewGraph(44100, 1, pool)

	pat, err := notation.Compile("~nope")
	require.NoError(t, err)
	sp := NewSamplePattern(pat, nil)
	id := g.AddSamplePattern(sp)
	g.SetOutput("out", id)

	for i := 0; i < 44100; i++ {
		g.Sample()
	}
	snap := pool.Stats().Snapshot()
	assert.Equal(t, uint64(0), snap.Triggered)
	assert.Equal(t, uint64(1), g.MissingBuses)
}

func TestChordExpansionTriggersMultipleVoices(t *testing.T) {
	pool := voice.NewPool(4, 4, voice.None)
	g := NewGraph(44100, 1, pool)
	pat, err := notation.Compile("bd'maj")
	require.NoError(t, err)
	bank := &fakeBank{data: &voice.SampleData{Samples: []float32{1, 1, 1, 1}, SampleRate: 44100}}
	sp := NewSamplePattern(pat, bank)
	id := g.AddSamplePattern(sp)
	g.SetOutput("out", id)

	for i := 0; i < 44100; i++ {
		g.Sample()
	}
	snap := pool.Stats().Snapshot()
	assert.Equal(t, uint64(3), snap.Triggered) // maj = 3 tones
}
