package render

import "phonon/signalgraph"

// Renderer drives a signalgraph.Graph one sample at a time from the
// synthesis thread and hands finished frames to a RingBuffer for the
// device callback to drain, decoupling graph evaluation from whatever
// cadence the audio device calls back at (§4.5).
type Renderer struct {
	Graph *signalgraph.Graph
	Ring  *RingBuffer
}

// NewRenderer wires g to a freshly allocated ring sized for roughly
// two seconds of audio at g's sample rate.
func NewRenderer(g *signalgraph.Graph) *Renderer {
	capacity := int(g.SampleRate * 2)
	return &Renderer{Graph: g, Ring: NewRingBuffer(capacity)}
}

// FillRing pushes up to n freshly rendered frames into the ring, stopping
// early if the ring fills up (backpressure; the caller should yield and
// retry rather than busy-loop). It returns the number of frames pushed.
func (rnd *Renderer) FillRing(n int) int {
	pushed := 0
	for i := 0; i < n; i++ {
		l, r := rnd.Graph.Sample()
		if !rnd.Ring.Push(Frame{L: softClip(l), R: softClip(r)}) {
			break
		}
		pushed++
	}
	return pushed
}

// Read implements io.Reader as a PCM16LE stereo byte stream, draining the
// ring buffer and substituting silence on underrun rather than blocking
// (the device thread must never stall waiting on the synthesis thread).
func (rnd *Renderer) Read(buf []byte) (int, error) {
	frames := len(buf) / 4
	for i := 0; i < frames; i++ {
		f, ok := rnd.Ring.Pop()
		idx := i * 4
		if !ok {
			buf[idx], buf[idx+1], buf[idx+2], buf[idx+3] = 0, 0, 0, 0
			continue
		}
		li := int16(f.L * 32767)
		ri := int16(f.R * 32767)
		buf[idx] = byte(li)
		buf[idx+1] = byte(li >> 8)
		buf[idx+2] = byte(ri)
		buf[idx+3] = byte(ri >> 8)
	}
	return len(buf), nil
}

// softClip is a cheap cubic soft clipper, applied once per frame right
// before it leaves the synthesis thread so an overdriven graph doesn't
// produce hard digital clipping downstream.
func softClip(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return 1.5*x - 0.5*x*x*x
}

// RenderOffline evaluates g for exactly numSamples samples and returns
// the resulting stereo buffer directly, bypassing the ring buffer
// entirely. This is the engine's non-realtime "render to buffer" path
// (§4.5 external interface), used for bounce-to-file or deterministic
// test fixtures; it calls the exact same Graph.Sample() loop the
// realtime path does; buffer-mode and single-sample mode are
// bit-identical by construction.
func RenderOffline(g *signalgraph.Graph, numSamples int) [][2]float32 {
	out := make([][2]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		l, r := g.Sample()
		out[i] = [2]float32{softClip(l), softClip(r)}
	}
	return out
}
