package pattern

// Value is the set of scalar types a pattern may carry. The mini-notation
// compiler only ever produces Pattern[string]; numeric/boolean patterns
// arise from combinators (euclid) and from signalgraph bridges.
type Value interface {
	string | float64 | bool
}

// State is the query argument: the span of time being asked about, plus
// optional per-query controls. Controls are carried through but unused by
// the basic combinators in this package; signalgraph bridges populate them.
type State struct {
	Span     TimeSpan
	Controls map[string]any
}

// WithSpan returns a copy of s with a different Span.
func (s State) WithSpan(span TimeSpan) State {
	return State{Span: span, Controls: s.Controls}
}

// Hap ("happening") is a single event produced by a query: Whole is its
// full natural extent (absent for fragments with no defined whole, such as
// analog/continuous signals), Part is the intersection with the queried
// span, and Value is the event's payload.
type Hap[T any] struct {
	Whole *TimeSpan
	Part  TimeSpan
	Value T
}

// HasOnset reports whether this Hap's Part begins at its Whole's begin,
// i.e. whether the query span captured the event's actual onset rather
// than a later fragment of it (the query span truncated only the end, or
// there is no whole at all, treated as always-onset).
func (h Hap[T]) HasOnset() bool {
	if h.Whole == nil {
		return true
	}
	return h.Whole.Begin.Eq(h.Part.Begin)
}

// WithHapTime maps f over a Hap's Whole (if present) and Part spans.
func WithHapTime[T any](h Hap[T], f func(Fraction) Fraction) Hap[T] {
	out := Hap[T]{Part: h.Part.WithTime(f), Value: h.Value}
	if h.Whole != nil {
		w := h.Whole.WithTime(f)
		out.Whole = &w
	}
	return out
}

// Pattern is a lazy function of time: Query maps a State to the events
// active during it. Combinators wrap Query; nothing is ever materialized
// ahead of being queried, and Query must be referentially transparent
// (same State in, same []Hap out, every time, with no side effects).
type Pattern[T any] struct {
	Query func(State) []Hap[T]
}

// New wraps a raw query function as a Pattern.
func New[T any](query func(State) []Hap[T]) Pattern[T] {
	return Pattern[T]{Query: query}
}

// Silence is the empty pattern: it returns no events for any query.
func Silence[T any]() Pattern[T] {
	return New(func(State) []Hap[T] { return nil })
}

// Pure returns a pattern that repeats v once per cycle, with a whole
// spanning exactly that cycle, fragmented to whatever sub-span of each
// cycle the query covers.
func Pure[T any](v T) Pattern[T] {
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, part := range st.Span.Cycles() {
			whole := CycleSpan(part.Begin)
			out = append(out, Hap[T]{Whole: &whole, Part: part, Value: v})
		}
		return out
	})
}

// WithQueryTime returns a pattern whose query transforms the incoming
// span's endpoints by f before querying p, and returns p's events
// untouched. One of the two fundamental reshaping primitives (§4.1).
func WithQueryTime[T any](p Pattern[T], f func(Fraction) Fraction) Pattern[T] {
	return New(func(st State) []Hap[T] {
		return p.Query(st.WithSpan(st.Span.WithTime(f)))
	})
}

// WithEventTime returns a pattern whose query calls p unchanged, then maps
// f over every returned event's Whole and Part endpoints. The second of
// the two fundamental reshaping primitives (§4.1).
func WithEventTime[T any](p Pattern[T], f func(Fraction) Fraction) Pattern[T] {
	return New(func(st State) []Hap[T] {
		haps := p.Query(st)
		out := make([]Hap[T], len(haps))
		for i, h := range haps {
			out[i] = WithHapTime(h, f)
		}
		return out
	})
}

// FilterEvents keeps only the events for which keep returns true.
func FilterEvents[T any](p Pattern[T], keep func(Hap[T]) bool) Pattern[T] {
	return New(func(st State) []Hap[T] {
		haps := p.Query(st)
		out := haps[:0:0]
		for _, h := range haps {
			if keep(h) {
				out = append(out, h)
			}
		}
		return out
	})
}

// FilterOnsets keeps only events whose Part begins at their Whole's begin.
func FilterOnsets[T any](p Pattern[T]) Pattern[T] {
	return FilterEvents(p, Hap[T].HasOnset)
}

// Fmap maps f over every event's value, producing a pattern of a
// (possibly different) type.
func Fmap[T, U any](p Pattern[T], f func(T) U) Pattern[U] {
	return New(func(st State) []Hap[U] {
		haps := p.Query(st)
		out := make([]Hap[U], len(haps))
		for i, h := range haps {
			out[i] = Hap[U]{Whole: h.Whole, Part: h.Part, Value: f(h.Value)}
		}
		return out
	})
}
