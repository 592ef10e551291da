package voice

import (
	"sync/atomic"
)

// StealMode selects which voice is sacrificed when the pool is full and a
// new trigger arrives (§4.4).
type StealMode int

const (
	Oldest StealMode = iota
	Quietest
	Priority
	None
)

// Stats holds the pool's observable counters (§6/§8). Updated with
// atomics since spec.md §6 lists them as part of the engine's
// observability surface, which a monitor (ui/) may read from a different
// goroutine than the synthesis thread that owns the pool.
type Stats struct {
	Triggered   uint64
	Stolen      uint64
	Dropped     uint64
	PeakActive  uint64
}

func (s *Stats) addTriggered() { atomic.AddUint64(&s.Triggered, 1) }
func (s *Stats) addStolen()    { atomic.AddUint64(&s.Stolen, 1) }
func (s *Stats) addDropped()   { atomic.AddUint64(&s.Dropped, 1) }
func (s *Stats) observePeak(active int) {
	for {
		cur := atomic.LoadUint64(&s.PeakActive)
		if uint64(active) <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(&s.PeakActive, cur, uint64(active)) {
			return
		}
	}
}

// Snapshot is a point-in-time, race-free copy of Stats.
type Snapshot struct {
	Triggered  uint64
	Stolen     uint64
	Dropped    uint64
	PeakActive uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Triggered:  atomic.LoadUint64(&s.Triggered),
		Stolen:     atomic.LoadUint64(&s.Stolen),
		Dropped:    atomic.LoadUint64(&s.Dropped),
		PeakActive: atomic.LoadUint64(&s.PeakActive),
	}
}

// Pool is the dynamically sized voice pool. It is owned exclusively by the
// synthesis thread (§5); no internal locking is performed.
type Pool struct {
	voices          []Voice
	maxVoices       int // 0 = unbounded
	stealMode       StealMode
	initialCapacity int
	nextID          uint64
	cycleCount      uint64
	stats           Stats
}

// NewPool creates a pool with initialCapacity pre-allocated (Free) voices.
// maxVoices of 0 means unbounded growth.
func NewPool(initialCapacity, maxVoices int, steal StealMode) *Pool {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	p := &Pool{
		voices:          make([]Voice, initialCapacity),
		maxVoices:       maxVoices,
		stealMode:       steal,
		initialCapacity: initialCapacity,
	}
	return p
}

// Stats returns the pool's observability counters.
func (p *Pool) Stats() *Stats { return &p.stats }

// Active returns the number of non-Free voices.
func (p *Pool) Active() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].state != Free {
			n++
		}
	}
	return n
}

// Len returns the current pool size (allocated slots, not active count).
func (p *Pool) Len() int { return len(p.voices) }

// Trigger allocates (growing or stealing as needed) and starts a voice.
// Returns nil if the trigger was dropped (steal mode None at capacity).
func (p *Pool) Trigger(params TriggerParams) *Voice {
	idx := p.findFree()
	if idx < 0 {
		idx = p.grow()
	}
	if idx < 0 {
		idx = p.steal()
		if idx < 0 {
			p.stats.addDropped()
			return nil
		}
		p.stats.addStolen()
	}

	p.nextID++
	v := &p.voices[idx]
	v.trigger(p.nextID, params)
	p.stats.addTriggered()

	if params.CutGroup > 0 {
		p.releaseCutGroup(params.CutGroup, idx)
	}

	p.stats.observePeak(p.Active())
	return v
}

func (p *Pool) findFree() int {
	for i := range p.voices {
		if p.voices[i].state == Free {
			return i
		}
	}
	return -1
}

// grow extends the pool geometrically (1.5x, minimum +16) up to
// maxVoices. Returns the index of a newly available Free slot, or -1 if
// maxVoices disallows growth.
func (p *Pool) grow() int {
	cur := len(p.voices)
	next := cur + cur/2
	if next < cur+16 {
		next = cur + 16
	}
	if p.maxVoices > 0 && next > p.maxVoices {
		next = p.maxVoices
	}
	if next <= cur {
		return -1
	}
	p.voices = append(p.voices, make([]Voice, next-cur)...)
	return cur
}

// steal picks a victim per stealMode and frees it immediately (no
// release ramp: spec.md §4.4 doesn't mandate a ramped steal, only cut
// groups get one). Returns -1 under StealMode None.
func (p *Pool) steal() int {
	if p.stealMode == None {
		return -1
	}
	best := -1
	switch p.stealMode {
	case Oldest:
		for i := range p.voices {
			if p.voices[i].state == Free {
				continue
			}
			if best < 0 || p.voices[i].TriggerTime.Lt(p.voices[best].TriggerTime) {
				best = i
			}
		}
	case Quietest:
		bestLevel := 2.0
		for i := range p.voices {
			if p.voices[i].state == Free {
				continue
			}
			lvl := p.voices[i].EnvelopeLevel()
			if best < 0 || lvl < bestLevel {
				best, bestLevel = i, lvl
			}
		}
	case Priority:
		for i := range p.voices {
			if p.voices[i].state == Free {
				continue
			}
			if best < 0 ||
				p.voices[i].Priority < p.voices[best].Priority ||
				(p.voices[i].Priority == p.voices[best].Priority && p.voices[i].TriggerTime.Lt(p.voices[best].TriggerTime)) {
				best = i
			}
		}
	}
	if best < 0 {
		return -1
	}
	p.voices[best].state = Free
	return best
}

// releaseCutGroup transitions every other active voice sharing group to
// Releasing with a short (<=5ms-equivalent, in samples) release, so a new
// trigger in the same group doesn't click against the old one.
func (p *Pool) releaseCutGroup(group uint32, exceptIdx int) {
	const shortReleaseSamples = 220 // ~5ms at 44.1kHz
	for i := range p.voices {
		if i == exceptIdx {
			continue
		}
		if p.voices[i].state == Free || p.voices[i].CutGroup != group {
			continue
		}
		p.voices[i].release(shortReleaseSamples)
	}
}

// Panic transitions every active voice to Releasing with a short release,
// per the §5/§6 "panic" command.
func (p *Pool) Panic() {
	const shortReleaseSamples = 220
	for i := range p.voices {
		if p.voices[i].state == Playing {
			p.voices[i].release(shortReleaseSamples)
		}
	}
}

// AdvanceSample steps every active voice by one output sample, caching
// each voice's stereo contribution for this sample. Must be called
// exactly once per output sample, before any node reads voice mixes.
func (p *Pool) AdvanceSample() {
	p.cycleCount++
	for i := range p.voices {
		if p.voices[i].state != Free {
			p.voices[i].advance()
		} else {
			p.voices[i].lastLeft, p.voices[i].lastRight = 0, 0
		}
	}
	if p.cycleCount%44100 == 0 {
		p.maybeShrink()
	}
}

// MixOwned sums the cached stereo contribution of every voice owned by
// node, for the sample most recently advanced. A voice that just freed
// itself inside this sample's advance() still contributed real output for
// this sample, so ownership (not liveness) gates inclusion here.
func (p *Pool) MixOwned(node NodeRef) (float32, float32) {
	return p.mixBy(func(v *Voice) bool { return v.Owner == node })
}

// MixUnowned sums the cached stereo contribution of every voice with no
// owning node (NoOwner), the VoiceManager's "global mix" (§4.3).
func (p *Pool) MixUnowned() (float32, float32) {
	return p.mixBy(func(v *Voice) bool { return v.Owner == NoOwner })
}

func (p *Pool) mixBy(pred func(*Voice) bool) (float32, float32) {
	var l, r float32
	for i := range p.voices {
		if pred(&p.voices[i]) {
			l += p.voices[i].lastLeft
			r += p.voices[i].lastRight
		}
	}
	return l, r
}

// maybeShrink shrinks the pool to max(1.5*active, initialCapacity) when
// utilization is below 25%, per spec.md §4.4.
func (p *Pool) maybeShrink() {
	active := p.Active()
	if len(p.voices) == 0 {
		return
	}
	if float64(active)/float64(len(p.voices)) >= 0.25 {
		return
	}
	target := int(float64(active) * 1.5)
	if target < p.initialCapacity {
		target = p.initialCapacity
	}
	if target >= len(p.voices) {
		return
	}
	kept := make([]Voice, 0, target)
	for i := range p.voices {
		if p.voices[i].state != Free {
			kept = append(kept, p.voices[i])
		}
	}
	for len(kept) < target {
		kept = append(kept, Voice{})
	}
	p.voices = kept
}
