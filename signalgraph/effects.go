package signalgraph

import "math"

// Delay is a feedback delay line with an independent dry/wet Mix, distinct
// from Comb (filters.go) which always sums dry and delayed in place.
type Delay struct {
	In       Signal
	TimeMs   Signal
	Feedback Signal
	Mix      Signal

	buf   []float64
	write int
}

func NewDelay(in, timeMs, feedback, mix Signal, sampleRate, maxDelayMs float64) *Delay {
	n := int(maxDelayMs/1000*sampleRate) + 1
	if n < 1 {
		n = 1
	}
	return &Delay{In: in, TimeMs: timeMs, Feedback: feedback, Mix: mix, buf: make([]float64, n)}
}

func (d *Delay) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(d.In))
	delaySamples := float64(g.evalSignal(d.TimeMs)) / 1000 * g.SampleRate
	fb := float64(g.evalSignal(d.Feedback))
	mix := float64(g.evalSignal(d.Mix))

	wet := readInterpolated(d.buf, d.write, delaySamples)
	d.buf[d.write] = x + wet*fb
	d.write = (d.write + 1) % len(d.buf)

	return float32(x*(1-mix) + wet*mix)
}

func readInterpolated(buf []float64, write int, delaySamples float64) float64 {
	n := len(buf)
	readPos := float64(write) - delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}
	lo := int(readPos) % n
	hi := (lo + 1) % n
	frac := readPos - math.Floor(readPos)
	return buf[lo] + frac*(buf[hi]-buf[lo])
}

// modulatedDelay is the shared engine behind Chorus and Flanger: a short
// delay line whose read position is swept by a sine LFO.
type modulatedDelay struct {
	buf     []float64
	write   int
	lfoPos  float64
}

func newModulatedDelay(sampleRate, maxDelayMs float64) modulatedDelay {
	n := int(maxDelayMs/1000*sampleRate) + 1
	if n < 1 {
		n = 1
	}
	return modulatedDelay{buf: make([]float64, n)}
}

func (m *modulatedDelay) process(sampleRate float64, x, rateHz, depthMs, baseMs, mix float64) float64 {
	m.lfoPos += rateHz / sampleRate
	m.lfoPos -= math.Floor(m.lfoPos)
	mod := math.Sin(2 * math.Pi * m.lfoPos)
	delayMs := baseMs + depthMs*mod
	if delayMs < 0 {
		delayMs = 0
	}
	delaySamples := delayMs / 1000 * sampleRate

	wet := readInterpolated(m.buf, m.write, delaySamples)
	m.buf[m.write] = x
	m.write = (m.write + 1) % len(m.buf)
	return x*(1-mix) + wet*mix
}

// Chorus thickens In with a short, slowly swept modulated delay.
type Chorus struct {
	In            Signal
	RateHz        Signal
	DepthMs       Signal
	Mix           Signal
	md            modulatedDelay
}

func NewChorus(in, rateHz, depthMs, mix Signal, sampleRate float64) *Chorus {
	return &Chorus{In: in, RateHz: rateHz, DepthMs: depthMs, Mix: mix, md: newModulatedDelay(sampleRate, 50)}
}

func (c *Chorus) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(c.In))
	rate := float64(g.evalSignal(c.RateHz))
	depth := float64(g.evalSignal(c.DepthMs))
	mix := float64(g.evalSignal(c.Mix))
	return float32(c.md.process(g.SampleRate, x, rate, depth, 15, mix))
}

// Flanger is a Chorus with a much shorter base delay and typically more
// feedback-rich character; modeled here with a sub-5ms base delay.
type Flanger struct {
	In      Signal
	RateHz  Signal
	DepthMs Signal
	Mix     Signal
	md      modulatedDelay
}

func NewFlanger(in, rateHz, depthMs, mix Signal, sampleRate float64) *Flanger {
	return &Flanger{In: in, RateHz: rateHz, DepthMs: depthMs, Mix: mix, md: newModulatedDelay(sampleRate, 20)}
}

func (f *Flanger) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(f.In))
	rate := float64(g.evalSignal(f.RateHz))
	depth := float64(g.evalSignal(f.DepthMs))
	mix := float64(g.evalSignal(f.Mix))
	return float32(f.md.process(g.SampleRate, x, rate, depth, 2, mix))
}

// onePoleAllpass is a single-sample-memory allpass stage, the building
// block of Phaser's sweep chain.
type onePoleAllpass struct {
	x1, y1 float64
}

func (a *onePoleAllpass) process(x, coeff float64) float64 {
	y := -coeff*x + a.x1 + coeff*a.y1
	a.x1, a.y1 = x, y
	return y
}

// Phaser sweeps a chain of allpass stages with a shared LFO, the classic
// swept-notch effect.
type Phaser struct {
	In      Signal
	RateHz  Signal
	Depth   Signal
	Mix     Signal

	stages []onePoleAllpass
	lfoPos float64
}

func NewPhaser(in, rateHz, depth, mix Signal, numStages int) *Phaser {
	if numStages < 1 {
		numStages = 4
	}
	return &Phaser{In: in, RateHz: rateHz, Depth: depth, Mix: mix, stages: make([]onePoleAllpass, numStages)}
}

func (p *Phaser) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(p.In))
	rate := float64(g.evalSignal(p.RateHz))
	depth := float64(g.evalSignal(p.Depth))
	mix := float64(g.evalSignal(p.Mix))

	p.lfoPos += rate / g.SampleRate
	p.lfoPos -= math.Floor(p.lfoPos)
	coeff := depth * math.Sin(2*math.Pi*p.lfoPos)
	if coeff > 0.99 {
		coeff = 0.99
	}
	if coeff < -0.99 {
		coeff = -0.99
	}

	wet := x
	for i := range p.stages {
		wet = p.stages[i].process(wet, coeff)
	}
	return float32(x*(1-mix) + wet*mix)
}

// dampedComb is a comb filter whose feedback path runs through a one-pole
// lowpass (Damping), the Freeverb trick that makes the tail darken as it
// decays instead of ringing at a fixed, metallic brightness forever. The
// comb's raw (undamped) delayed sample is still what's returned, matching
// the classic Freeverb structure, grounded on the read/filter-feedback
// split in `combFilter.process` (cbegin-mmlfm-go/internal/effects/reverb.go).
type dampedComb struct {
	buf     []float64
	write   int
	damped  float64 // one-pole lowpass state, fed back instead of the raw sample
}

func newDampedComb(sampleRate, delayMs float64) dampedComb {
	n := int(delayMs/1000*sampleRate) + 1
	if n < 1 {
		n = 1
	}
	return dampedComb{buf: make([]float64, n)}
}

func (c *dampedComb) process(x, feedback, damping float64) float64 {
	out := c.buf[c.write]
	c.damped = out*(1-damping) + c.damped*damping
	c.buf[c.write] = x + c.damped*feedback
	c.write++
	if c.write >= len(c.buf) {
		c.write = 0
	}
	return out
}

// reverbAllpass is a delay-line allpass stage (distinct from onePoleAllpass,
// which is Phaser's single-sample sweep stage): it holds its own ring
// buffer so its delay time can be tuned in milliseconds like a comb,
// grounded on `allpassFilter.process` (cbegin-mmlfm-go/internal/effects/reverb.go).
type reverbAllpass struct {
	buf   []float64
	write int
}

func newReverbAllpass(sampleRate, delayMs float64) reverbAllpass {
	n := int(delayMs/1000*sampleRate) + 1
	if n < 1 {
		n = 1
	}
	return reverbAllpass{buf: make([]float64, n)}
}

func (a *reverbAllpass) process(x, feedback float64) float64 {
	bufOut := a.buf[a.write]
	out := -x + bufOut
	a.buf[a.write] = x + bufOut*feedback
	a.write++
	if a.write >= len(a.buf) {
		a.write = 0
	}
	return out
}

// Reverb is a Freeverb-style network (§4.3): eight parallel damped combs
// feeding four series allpass stages, run independently per stereo
// channel with a small delay-length offset between L and R (the
// "stereo spread" that keeps the tail from collapsing to mono).
// RoomSize drives comb feedback and Damping drives the comb lowpass,
// both 0..1, grounded on the same comb/allpass Schroeder shape as
// `cbegin-mmlfm-go/internal/effects/reverb.go`, expanded to the
// spec's 8-comb/4-allpass-per-channel topology.
type Reverb struct {
	In       Signal
	RoomSize Signal // feeds comb feedback, 0..1
	Damping  Signal // feeds comb lowpass, 0..1
	Mix      Signal

	combsL   [8]dampedComb
	combsR   [8]dampedComb
	allpassL [4]reverbAllpass
	allpassR [4]reverbAllpass
}

// Classic Freeverb tuning, expressed in ms so it scales with sample rate
// instead of being hardcoded to 44100 samples. Right channel adds the
// standard ~23-sample stereo spread.
var reverbCombMs = [8]float64{25.31, 26.94, 28.96, 30.75, 32.25, 33.88, 35.41, 36.67}
var reverbAllpassMs = [4]float64{12.61, 10.00, 7.73, 5.10}

const reverbStereoSpreadMs = 0.52 // ~23 samples at 44100Hz

func NewReverb(in, roomSize, damping, mix Signal, sampleRate float64) *Reverb {
	r := &Reverb{In: in, RoomSize: roomSize, Damping: damping, Mix: mix}
	for i, ms := range reverbCombMs {
		r.combsL[i] = newDampedComb(sampleRate, ms)
		r.combsR[i] = newDampedComb(sampleRate, ms+reverbStereoSpreadMs)
	}
	for i, ms := range reverbAllpassMs {
		r.allpassL[i] = newReverbAllpass(sampleRate, ms)
		r.allpassR[i] = newReverbAllpass(sampleRate, ms+reverbStereoSpreadMs)
	}
	return r
}

func (r *Reverb) Eval(g *Graph) float32 {
	l, right := r.EvalStereo(g)
	return (l + right) / 2
}

func (r *Reverb) EvalStereo(g *Graph) (float32, float32) {
	x := float64(g.evalSignal(r.In))
	room := float64(g.evalSignal(r.RoomSize))
	damping := float64(g.evalSignal(r.Damping))
	mix := float64(g.evalSignal(r.Mix))
	fb := 0.7 + 0.28*room

	left := r.tail(x, fb, damping, r.combsL[:], r.allpassL[:])
	right := r.tail(x, fb, damping, r.combsR[:], r.allpassR[:])

	return float32(x*(1-mix) + left*mix), float32(x*(1-mix) + right*mix)
}

func (r *Reverb) tail(x, feedback, damping float64, combs []dampedComb, allpasses []reverbAllpass) float64 {
	var sum float64
	for i := range combs {
		sum += combs[i].process(x, feedback, damping) / float64(len(combs))
	}
	wet := sum
	for i := range allpasses {
		wet = allpasses[i].process(wet, 0.5)
	}
	return wet
}

// Distortion is a tanh waveshaper; Drive pushes the signal into the
// saturation curve before normalizing back down.
type Distortion struct {
	In    Signal
	Drive Signal
}

func NewDistortion(in, drive Signal) *Distortion { return &Distortion{In: in, Drive: drive} }

func (d *Distortion) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(d.In))
	drive := float64(g.evalSignal(d.Drive))
	if drive < 1 {
		drive = 1
	}
	return float32(math.Tanh(x * drive))
}

// Bitcrush reduces both sample rate (via hold) and bit depth.
type Bitcrush struct {
	In      Signal
	Bits    Signal
	RateDiv Signal // sample-and-hold every RateDiv samples, >=1

	held    float32
	counter int
}

func NewBitcrush(in, bits, rateDiv Signal) *Bitcrush {
	return &Bitcrush{In: in, Bits: bits, RateDiv: rateDiv}
}

func (b *Bitcrush) Eval(g *Graph) float32 {
	x := g.evalSignal(b.In)
	bits := g.evalSignal(b.Bits)
	div := int(g.evalSignal(b.RateDiv))
	if div < 1 {
		div = 1
	}
	if b.counter%div == 0 {
		levels := math.Pow(2, float64(bits))
		b.held = float32(math.Round(float64(x)*levels/2) / (levels / 2))
	}
	b.counter++
	return b.held
}

// dynamicsFollower is the shared envelope-follower + gain-reduction engine
// behind Compressor and Limiter: they differ only in typical ratio/attack
// defaults, which callers supply.
type dynamicsFollower struct {
	envelope float64
}

func (d *dynamicsFollower) process(sampleRate float64, x float64, thresholdDb, ratio, attackMs, releaseMs float64) float64 {
	level := math.Abs(x)
	attackCoeff := math.Exp(-1 / (attackMs / 1000 * sampleRate))
	releaseCoeff := math.Exp(-1 / (releaseMs / 1000 * sampleRate))
	if level > d.envelope {
		d.envelope = attackCoeff*d.envelope + (1-attackCoeff)*level
	} else {
		d.envelope = releaseCoeff*d.envelope + (1-releaseCoeff)*level
	}

	envDb := 20 * math.Log10(math.Max(d.envelope, 1e-9))
	over := envDb - thresholdDb
	if over <= 0 {
		return x
	}
	reducedDb := over - over/ratio
	gain := math.Pow(10, -reducedDb/20)
	return x * gain
}

// Compressor is a standard threshold/ratio/attack/release downward
// compressor.
type Compressor struct {
	In          Signal
	ThresholdDb Signal
	Ratio       Signal
	AttackMs    Signal
	ReleaseMs   Signal

	follower dynamicsFollower
}

func NewCompressor(in, thresholdDb, ratio, attackMs, releaseMs Signal) *Compressor {
	return &Compressor{In: in, ThresholdDb: thresholdDb, Ratio: ratio, AttackMs: attackMs, ReleaseMs: releaseMs}
}

func (c *Compressor) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(c.In))
	th := float64(g.evalSignal(c.ThresholdDb))
	ratio := float64(g.evalSignal(c.Ratio))
	if ratio < 1 {
		ratio = 1
	}
	attack := float64(g.evalSignal(c.AttackMs))
	release := float64(g.evalSignal(c.ReleaseMs))
	return float32(c.follower.process(g.SampleRate, x, th, ratio, attack, release))
}

// Limiter is a Compressor fixed at an effectively infinite ratio with a
// fast attack, exposed as its own node type for clarity at call sites.
type Limiter struct {
	In          Signal
	ThresholdDb Signal
	ReleaseMs   Signal

	follower dynamicsFollower
}

func NewLimiter(in, thresholdDb, releaseMs Signal) *Limiter {
	return &Limiter{In: in, ThresholdDb: thresholdDb, ReleaseMs: releaseMs}
}

func (l *Limiter) Eval(g *Graph) float32 {
	x := float64(g.evalSignal(l.In))
	th := float64(g.evalSignal(l.ThresholdDb))
	release := float64(g.evalSignal(l.ReleaseMs))
	return float32(l.follower.process(g.SampleRate, x, th, 1000, 0.5, release))
}
