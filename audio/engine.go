// Package audio builds the demo mixer's instrument kit and wires it into
// a control.Engine: one SamplePattern per drum channel driven from the
// active BeatPreset's step grid, plus a handful of always-on oscillator
// channels, summed through per-channel gain/pan controls into a master
// bus. It is the bridge between the mixer/ui's channel-strip model and
// the core signalgraph/control/voice packages.
package audio

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"phonon/control"
	"phonon/notation"
	"phonon/signalgraph"
	"phonon/voice"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2

	// DefaultBPM is the tempo a fresh Engine starts at.
	DefaultBPM = 120
)

// Channel types, matching mixer/ui channel-strip indices.
const (
	ChKick = iota
	ChSnare
	ChHiHat
	ChBass
	ChLead1
	ChLead2
	ChPad
	ChFX
)

// ChannelNames labels each channel strip.
var ChannelNames = []string{"KICK", "SNARE", "HIHAT", "BASS", "LEAD1", "LEAD2", "PAD", "FX"}

// BeatPreset names a 16-step grid for each drum voice.
type BeatPreset struct {
	Name        string
	Description string
	Kick        []int
	Snare       []int
	HiHat       []int
	Bass        []int
}

// BeatPresets are the selectable step patterns, cycled with NextPattern/
// PrevPattern. Preset 0 is the teacher's original four-on-the-floor grid.
var BeatPresets = []BeatPreset{
	{
		Name:        "Four on the Floor",
		Description: "steady kick, backbeat snare",
		Kick:        []int{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
		Snare:       []int{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0},
		HiHat:       []int{1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0},
		Bass:        []int{1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
	},
	{
		Name:        "Breakbeat",
		Description: "syncopated kick, ghost snares",
		Kick:        []int{1, 0, 0, 1, 0, 0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 0},
		Snare:       []int{0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1},
		HiHat:       []int{1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1},
		Bass:        []int{1, 0, 1, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0},
	},
	{
		Name:        "Halftime",
		Description: "sparse, spacious, heavy snare",
		Kick:        []int{1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0},
		Snare:       []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
		HiHat:       []int{1, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		Bass:        []int{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
	},
}

// gridToNotation turns a 16-step 1/0 grid into a mini-notation sequence,
// one atom per step, so BeatPresets can drive a SamplePattern node.
func gridToNotation(name string, grid []int) string {
	s := ""
	for i, hit := range grid {
		if i > 0 {
			s += " "
		}
		if hit == 1 {
			s += name
		} else {
			s += "~"
		}
	}
	return s
}

// ChannelState mirrors one channel strip's mixer controls.
type ChannelState struct {
	Volume uint8 // 0-127
	Pan    uint8 // 0-127, 64 = center
	Mute   bool
	Solo   bool
}

type kitBank struct {
	samples map[string]*voice.SampleData
}

func (b *kitBank) Lookup(name string, index int) (*voice.SampleData, bool) {
	d, ok := b.samples[name]
	return d, ok
}

// buildKit pre-renders the four drum voices once, reusing the original
// per-voice synthesis formulas (pitch-dropping sine kick, noise+tone
// snare, decaying noise hihat, saw bass) as fixed-length one-shot
// samples instead of a live phase accumulator.
func buildKit() *kitBank {
	const dur = 0.35
	n := int(dur * sampleRate)
	bank := &kitBank{samples: map[string]*voice.SampleData{}}

	kick := make([]float32, n)
	phase := 0.0
	for i := range kick {
		t := float64(i) / float64(n)
		freq := 150*math.Exp(-5*t) + 40
		phase += 2 * math.Pi * freq / sampleRate
		env := math.Exp(-4 * t)
		kick[i] = float32(math.Sin(phase) * env * 1.2)
	}
	bank.samples["bd"] = &voice.SampleData{Samples: kick, SampleRate: sampleRate}

	snare := make([]float32, n)
	tonePhase := 0.0
	for i := range snare {
		t := float64(i) / float64(n)
		tonePhase += 200.0 / sampleRate
		noise := (rand.Float64()*2 - 1) * 0.6
		tone := math.Sin(tonePhase*2*math.Pi) * 0.4
		env := math.Exp(-8 * t)
		snare[i] = float32((noise + tone) * env)
	}
	bank.samples["sn"] = &voice.SampleData{Samples: snare, SampleRate: sampleRate}

	hihat := make([]float32, n/3)
	for i := range hihat {
		t := float64(i) / float64(len(hihat))
		noise := rand.Float64()*2 - 1
		hihat[i] = float32(noise * 0.5 * math.Exp(-10*t))
	}
	bank.samples["hh"] = &voice.SampleData{Samples: hihat, SampleRate: sampleRate}

	bass := make([]float32, n)
	for i := range bass {
		t := float64(i) / float64(n)
		saw := 2*math.Mod(t*55, 1) - 1
		env := math.Exp(-2 * t)
		bass[i] = float32(saw * env * 0.7)
	}
	bank.samples["bs"] = &voice.SampleData{Samples: bass, SampleRate: sampleRate}

	return bank
}

type tone struct {
	node *signalgraph.Oscillator
	gain *signalgraph.ControlValue
	pan  *signalgraph.ControlValue
}

// Engine is the demo mixer's audio backend: it owns a control.Engine,
// the drum kit's sample bank, and per-channel gain/pan controls, and
// drives an oto player off the engine's ring-buffered output.
type Engine struct {
	ctrl *control.Engine
	ctx  *oto.Context
	player oto.Player

	bank *kitBank

	mu       sync.RWMutex
	channels []ChannelState
	master   uint8

	drumPatterns [4]*signalgraph.SamplePattern
	drumGains    [4]*signalgraph.ControlValue
	drumPans     [4]*signalgraph.ControlValue
	tones        []tone
	masterGain   *signalgraph.ControlValue

	bpm        int
	patternIdx int
}

// NewEngine builds a numChannels-wide mixer backend and starts playback.
func NewEngine(numChannels int) (*Engine, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, bitDepth)
	if err != nil {
		return nil, err
	}
	<-ready

	e := &Engine{
		ctx:      ctx,
		bank:     buildKit(),
		channels: make([]ChannelState, numChannels),
		master:   100,
		bpm:      DefaultBPM,
	}
	for i := range e.channels {
		e.channels[i] = ChannelState{Volume: 100, Pan: 64}
	}

	e.ctrl = control.NewEngine(sampleRate, float64(e.bpm)/60/4, 64, voice.Oldest)
	e.masterGain = signalgraph.NewControlValue(float32(e.master) / 127)
	e.buildGraph(numChannels)

	if err := e.ctrl.Start(); err != nil {
		return nil, err
	}
	e.player = ctx.NewPlayer(e.ctrl.Reader())
	e.player.Play()

	return e, nil
}

func (e *Engine) buildGraph(numChannels int) {
	g := e.ctrl.Graph()

	names := [4]string{"bd", "sn", "hh", "bs"}
	grids := [4][]int{
		BeatPresets[0].Kick, BeatPresets[0].Snare, BeatPresets[0].HiHat, BeatPresets[0].Bass,
	}

	var mixInputs []signalgraph.Signal

	for i := 0; i < 4; i++ {
		pat, _ := notation.Compile(gridToNotation(names[i], grids[i]))
		sp := signalgraph.NewSamplePattern(pat, e.bank)
		gain := signalgraph.NewControlValue(100.0 / 127)
		pan := signalgraph.NewControlValue(0)
		sp.Gain = signalgraph.NodeSignal(g.AddNode(gain))
		sp.Pan = signalgraph.NodeSignal(g.AddNode(pan))
		id := g.AddSamplePattern(sp)

		e.drumPatterns[i] = sp
		e.drumGains[i] = gain
		e.drumPans[i] = pan

		mixInputs = append(mixInputs, signalgraph.NodeSignal(id))
	}

	defaultFreqs := []float64{0, 0, 0, 0, 440, 523, 220, 1000}
	for i := 4; i < numChannels; i++ {
		freq := 440.0
		if i < len(defaultFreqs) && defaultFreqs[i] > 0 {
			freq = defaultFreqs[i]
		}
		osc := signalgraph.NewOscillator(signalgraph.Sine, signalgraph.ConstSignal(float32(freq)))
		gain := signalgraph.NewControlValue(60.0 / 127)
		pan := signalgraph.NewControlValue(0)
		oscID := g.AddNode(osc)
		gainID := g.AddNode(gain)
		panID := g.AddNode(pan)
		scaled := g.AddNode(signalgraph.NewMul(signalgraph.NodeSignal(oscID), signalgraph.NodeSignal(gainID)))
		panNode := signalgraph.NewPan(signalgraph.NodeSignal(scaled), signalgraph.NodeSignal(panID))
		panID2 := g.AddNode(panNode)

		e.tones = append(e.tones, tone{node: osc, gain: gain, pan: pan})
		mixInputs = append(mixInputs, signalgraph.NodeSignal(panID2))
	}

	mix := signalgraph.NewMix(mixInputs, nil)
	mixID := g.AddNode(mix)
	out := g.AddNode(signalgraph.NewMul(signalgraph.NodeSignal(mixID), signalgraph.NodeSignal(g.AddNode(e.masterGain))))
	g.SetOutput("out", out)
}

// SetChannelVolume sets a channel's gain, heard immediately (no graph
// rebuild: it pushes straight into that channel's ControlValue node).
func (e *Engine) SetChannelVolume(channel int, value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if channel < 0 || channel >= len(e.channels) {
		return
	}
	e.channels[channel].Volume = value
	e.applyChannelGain(channel)
}

// SetChannelPan sets a channel's stereo position.
func (e *Engine) SetChannelPan(channel int, value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if channel < 0 || channel >= len(e.channels) {
		return
	}
	e.channels[channel].Pan = value
	pos := (float32(value)/127)*2 - 1
	if channel < 4 {
		e.drumPans[channel].Set(pos)
	} else if idx := channel - 4; idx < len(e.tones) {
		e.tones[idx].pan.Set(pos)
	}
}

// SetChannelMute toggles a channel's mute state.
func (e *Engine) SetChannelMute(channel int, muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if channel < 0 || channel >= len(e.channels) {
		return
	}
	e.channels[channel].Mute = muted
	e.applyChannelGain(channel)
}

// SetChannelSolo toggles solo on one channel and recomputes every
// channel's effective gain under the new solo state.
func (e *Engine) SetChannelSolo(channel int, solo bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if channel < 0 || channel >= len(e.channels) {
		return
	}
	e.channels[channel].Solo = solo
	for i := range e.channels {
		e.applyChannelGain(i)
	}
}

// applyChannelGain recomputes channel i's audible gain from its
// volume/mute/solo state; caller must hold e.mu.
func (e *Engine) applyChannelGain(i int) {
	anySolo := false
	for _, ch := range e.channels {
		if ch.Solo {
			anySolo = true
			break
		}
	}
	ch := e.channels[i]
	audible := !ch.Mute && (!anySolo || ch.Solo)
	gain := float32(0)
	if audible {
		gain = float32(ch.Volume) / 127
	}
	if i < 4 {
		e.drumGains[i].Set(gain)
	} else if idx := i - 4; idx < len(e.tones) {
		e.tones[idx].gain.Set(gain)
	}
}

// SetMasterVolume sets the overall output gain.
func (e *Engine) SetMasterVolume(value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = value
	e.masterGain.Set(float32(value) / 127)
}

// SetGain implements control.MasterGainSetter, so a MIDIBridge can drive
// master volume directly from an incoming CC.
func (e *Engine) SetGain(linear float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = uint8(linear * 127)
	e.masterGain.Set(linear)
}

// GetBPM returns the current tempo.
func (e *Engine) GetBPM() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bpm
}

// SetBPM updates tempo, clamped to a sane playable range.
func (e *Engine) SetBPM(bpm int) {
	if bpm < 40 {
		bpm = 40
	}
	if bpm > 300 {
		bpm = 300
	}
	e.mu.Lock()
	e.bpm = bpm
	e.mu.Unlock()
	e.ctrl.SetTempo(float64(bpm) / 60 / 4)
}

// NextPattern cycles to the next BeatPreset and recompiles the drum
// grids in place.
func (e *Engine) NextPattern() {
	e.mu.Lock()
	e.patternIdx = (e.patternIdx + 1) % len(BeatPresets)
	idx := e.patternIdx
	e.mu.Unlock()
	e.applyPreset(idx)
}

// PrevPattern cycles to the previous BeatPreset.
func (e *Engine) PrevPattern() {
	e.mu.Lock()
	e.patternIdx = (e.patternIdx - 1 + len(BeatPresets)) % len(BeatPresets)
	idx := e.patternIdx
	e.mu.Unlock()
	e.applyPreset(idx)
}

func (e *Engine) applyPreset(idx int) {
	preset := BeatPresets[idx]
	names := [4]string{"bd", "sn", "hh", "bs"}
	grids := [4][]int{preset.Kick, preset.Snare, preset.HiHat, preset.Bass}
	for i := 0; i < 4; i++ {
		pat, err := notation.Compile(gridToNotation(names[i], grids[i]))
		if err != nil {
			continue
		}
		e.drumPatterns[i].Pat = pat
	}
}

// GetPattern returns the active BeatPreset index.
func (e *Engine) GetPattern() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.patternIdx
}

// GetCurrentStep estimates the current 16th-note step from the engine's
// transport position, for the step-sequencer display.
func (e *Engine) GetCurrentStep() int {
	cyclePos := e.ctrl.Graph().CyclePosition().Float64()
	step := int(cyclePos*16) % 16
	if step < 0 {
		step += 16
	}
	return step
}

// GetWaveform returns a coarse per-channel level trace, identical on both
// sides: each channel's volume/127, or 0 when the channel is muted (solo
// state is not taken into account). It is not a literal waveform capture
// (there is no separate scope buffer in the graph-based engine).
func (e *Engine) GetWaveform() ([]float64, []float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	left := make([]float64, len(e.channels))
	right := make([]float64, len(e.channels))
	for i, ch := range e.channels {
		v := float64(ch.Volume) / 127
		if ch.Mute {
			v = 0
		}
		left[i] = v
		right[i] = v
	}
	return left, right
}

// Close stops playback and releases the oto context.
func (e *Engine) Close() {
	if e.player != nil {
		e.player.Close()
	}
	e.ctrl.Stop()
}
