package control

import "sync/atomic"

// Counters is a point-in-time aggregate of every observability counter
// the engine exposes (§6/§7/§8): voice pool activity, graph-level
// anomalies, and ring buffer over/underruns. A UI polls this rather than
// reaching into the graph or pool directly.
type Counters struct {
	VoicesTriggered uint64
	VoicesStolen    uint64
	VoicesDropped   uint64
	VoicesPeak      uint64

	NumericAnomalies uint64
	MissingSamples   uint64
	MissingBuses     uint64

	RingOverruns  uint64
	RingUnderruns uint64
}

// Counters snapshots the engine's current observability state.
func (e *Engine) Counters() Counters {
	snap := e.pool.Stats().Snapshot()
	g := e.graphPtr.Load()
	c := Counters{
		VoicesTriggered: snap.Triggered,
		VoicesStolen:    snap.Stolen,
		VoicesDropped:   snap.Dropped,
		VoicesPeak:      snap.PeakActive,
	}
	if g != nil {
		c.NumericAnomalies = atomic.LoadUint64(&g.NumericAnomalies)
		c.MissingSamples = atomic.LoadUint64(&g.MissingSamples)
		c.MissingBuses = atomic.LoadUint64(&g.MissingBuses)
	}
	if e.renderer != nil {
		c.RingOverruns = atomic.LoadUint64(&e.renderer.Ring.Overruns)
		c.RingUnderruns = atomic.LoadUint64(&e.renderer.Ring.Underruns)
	}
	return c
}
