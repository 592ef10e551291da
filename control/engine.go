// Package control is the engine facade (§4.5/§6): Start/Stop the
// synthesis loop, hot-swap the signal graph, and drive tempo/panic/hush
// from outside the synthesis thread.
package control

import (
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"phonon/notation"
	"phonon/pattern"
	"phonon/render"
	"phonon/signalgraph"
	"phonon/voice"
)

// Default/clamp bounds for PHONON_BUFFER_SIZE (§6): how many samples the
// synthesis goroutine renders per iteration before checking for a stop
// signal or a graph swap.
const (
	defaultBufferSize = 128
	minBufferSize     = 32
	maxBufferSize     = 2048
)

// bufferSizeFromEnv resolves PHONON_BUFFER_SIZE, clamped to
// [minBufferSize, maxBufferSize], falling back to defaultBufferSize when
// the variable is unset or not a valid integer.
func bufferSizeFromEnv() int {
	raw := os.Getenv("PHONON_BUFFER_SIZE")
	if raw == "" {
		return defaultBufferSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultBufferSize
	}
	if n < minBufferSize {
		return minBufferSize
	}
	if n > maxBufferSize {
		return maxBufferSize
	}
	return n
}

// Engine owns the voice pool (stable across graph swaps, so in-flight
// voices survive a ReplaceGraph) and hot-swaps the signalgraph.Graph the
// synthesis loop reads from via an atomic pointer, per the "replace a
// running graph without clicks" requirement (§4.3, §6).
type Engine struct {
	graphPtr atomic.Pointer[signalgraph.Graph]
	pool     *voice.Pool
	renderer *render.Renderer

	sampleRate float64
	fillBatch  int
	running    atomic.Bool
	stopCh     chan struct{}
}

// NewEngine builds an Engine with an empty graph, ready for ReplaceGraph
// calls to populate it. The synthesis loop's fill chunk size comes from
// PHONON_BUFFER_SIZE (§6), read once at construction.
func NewEngine(sampleRate, cps float64, maxVoices int, steal voice.StealMode) *Engine {
	pool := voice.NewPool(64, maxVoices, steal)
	g := signalgraph.NewGraph(sampleRate, cps, pool)
	e := &Engine{pool: pool, sampleRate: sampleRate, fillBatch: bufferSizeFromEnv()}
	e.graphPtr.Store(g)
	e.renderer = render.NewRenderer(g)
	return e
}

// Graph returns the currently active graph.
func (e *Engine) Graph() *signalgraph.Graph { return e.graphPtr.Load() }

// ReplaceGraph swaps in a new graph atomically. The voice pool is shared
// across the swap (it is not owned by the graph), so voices triggered by
// the old graph keep ringing out under the new one.
func (e *Engine) ReplaceGraph(g *signalgraph.Graph) error {
	if g == nil {
		return ErrNilGraph
	}
	e.graphPtr.Store(g)
	return nil
}

// CompilePattern compiles mini-notation source into a Pattern[string],
// wrapping any parse failure as a PatternError.
func (e *Engine) CompilePattern(src string) (pattern.Pattern[string], error) {
	p, err := notation.Compile(src)
	if err != nil {
		return pattern.Silence[string](), &PatternError{Source: src, Err: err}
	}
	return p, nil
}

// Start begins the synthesis loop on a background goroutine, filling the
// ring buffer continuously. Returns ErrAlreadyRunning if already started.
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	e.stopCh = make(chan struct{})
	go e.runLoop(e.stopCh)
	return nil
}

// Stop halts the synthesis loop. Returns ErrNotRunning if not started.
func (e *Engine) Stop() error {
	if !e.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	close(e.stopCh)
	return nil
}

func (e *Engine) runLoop(stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		e.renderer.Graph = e.graphPtr.Load()
		if e.renderer.FillRing(e.fillBatch) == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// Reader exposes the engine's audio output as a PCM16LE stereo byte
// stream (an io.Reader), suitable for handing directly to an oto.Player.
func (e *Engine) Reader() *render.Renderer { return e.renderer }

// SetTempo updates the active graph's transport rate (cycles per
// second). Safe to call while running: it only rationalizes a new
// per-sample cycle step, it never resets cycle position.
func (e *Engine) SetTempo(cps float64) {
	e.graphPtr.Load().SetCps(cps)
}

// Tempo returns the active graph's current cps.
func (e *Engine) Tempo() float64 { return e.graphPtr.Load().Cps() }

// Hush releases every active voice with a short fade, per the live-coding
// convention of silencing output without restarting the transport.
func (e *Engine) Hush() { e.pool.Panic() }

// Panic is Hush's emergency-stop alias: at the voice layer there is only
// one "stop everything, now" primitive, so both call it.
func (e *Engine) Panic() { e.pool.Panic() }

// RenderBuffer renders numSamples samples of the active graph offline,
// bypassing the ring buffer (§4.5 non-realtime render path).
func (e *Engine) RenderBuffer(numSamples int) [][2]float32 {
	return render.RenderOffline(e.graphPtr.Load(), numSamples)
}

// Pool exposes the shared voice pool, e.g. for a UI's active-voice meter.
func (e *Engine) Pool() *voice.Pool { return e.pool }
