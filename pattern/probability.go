package pattern

import (
	"hash/fnv"
	"math/rand"
)

// seedFor derives a deterministic PRNG seed from an event's whole-begin
// time so that the same event always makes the same probabilistic
// decision, regardless of how many times or from how many threads it is
// queried — required for idempotent rendering (§4.1).
func seedFor(t Fraction, salt string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.String()))
	_, _ = h.Write([]byte(salt))
	return int64(h.Sum64())
}

// rollFor returns a float in [0,1) deterministic in (t, salt).
func rollFor(t Fraction, salt string) float64 {
	r := rand.New(rand.NewSource(seedFor(t, salt)))
	return r.Float64()
}

// DegradeBy randomly drops each event with probability p (0..1),
// deterministically per event onset.
func DegradeBy[T any](p Pattern[T], prob float64) Pattern[T] {
	return FilterEvents(p, func(h Hap[T]) bool {
		anchor := h.Part.Begin
		if h.Whole != nil {
			anchor = h.Whole.Begin
		}
		return rollFor(anchor, "degrade") >= prob
	})
}

// UnDegradeBy is the complement of DegradeBy: it keeps exactly the events
// DegradeBy(p, prob) would drop.
func UnDegradeBy[T any](p Pattern[T], prob float64) Pattern[T] {
	return FilterEvents(p, func(h Hap[T]) bool {
		anchor := h.Part.Begin
		if h.Whole != nil {
			anchor = h.Whole.Begin
		}
		return rollFor(anchor, "degrade") < prob
	})
}

// Sometimes applies f to a randomly chosen fraction (0.5 by default via
// SometimesBy) of events, determined per-cycle-position so the same event
// always resolves the same way.
func Sometimes[T any](p Pattern[T], f func(Pattern[T]) Pattern[T]) Pattern[T] {
	return SometimesBy(p, 0.5, f)
}

// SometimesBy applies f to events selected with probability prob and
// leaves the rest untouched, merging both subsets back into one pattern.
func SometimesBy[T any](p Pattern[T], prob float64, f func(Pattern[T]) Pattern[T]) Pattern[T] {
	affected := f(UnDegradeBy(p, prob))
	unaffected := DegradeBy(p, prob)
	return Stack(unaffected, affected)
}
