package pattern

// TimeSpan is a half-open interval [Begin, End) of cycle-relative time.
type TimeSpan struct {
	Begin Fraction
	End   Fraction
}

// NewTimeSpan builds a TimeSpan, panicking if End < Begin since the event
// algebra never constructs an inverted span.
func NewTimeSpan(begin, end Fraction) TimeSpan {
	if end.Lt(begin) {
		panic("pattern: timespan end before begin")
	}
	return TimeSpan{Begin: begin, End: end}
}

// Duration returns End-Begin.
func (s TimeSpan) Duration() Fraction { return s.End.Sub(s.Begin) }

// WithTime maps f over both endpoints.
func (s TimeSpan) WithTime(f func(Fraction) Fraction) TimeSpan {
	return TimeSpan{Begin: f(s.Begin), End: f(s.End)}
}

// Intersection returns the overlap of s and o. The second result is false
// if the spans do not overlap (or only touch at a single point).
func (s TimeSpan) Intersection(o TimeSpan) (TimeSpan, bool) {
	begin := s.Begin
	if o.Begin.Gt(begin) {
		begin = o.Begin
	}
	end := s.End
	if o.End.Lt(end) {
		end = o.End
	}
	if begin.Gt(end) {
		return TimeSpan{}, false
	}
	if begin.Eq(end) && !s.Begin.Eq(s.End) && !o.Begin.Eq(o.End) {
		return TimeSpan{}, false
	}
	return TimeSpan{Begin: begin, End: end}, true
}

// Contains reports whether o is fully contained within s.
func (s TimeSpan) Contains(o TimeSpan) bool {
	return s.Begin.Lte(o.Begin) && o.End.Lte(s.End)
}

// Cycles splits s at every integer cycle boundary it crosses, yielding a
// sequence of sub-spans each fully contained within a single cycle. A
// zero-width span yields itself unchanged (a point query).
func (s TimeSpan) Cycles() []TimeSpan {
	if s.Begin.Eq(s.End) {
		return []TimeSpan{s}
	}
	var out []TimeSpan
	begin := s.Begin
	for begin.Lt(s.End) {
		nextCycle := begin.Floor().Add(FromInt(1))
		end := s.End
		if nextCycle.Lt(end) {
			end = nextCycle
		}
		out = append(out, TimeSpan{Begin: begin, End: end})
		begin = end
	}
	return out
}

// CycleSpan returns the whole-cycle span [c, c+1) containing time t.
func CycleSpan(t Fraction) TimeSpan {
	c := t.Floor()
	return TimeSpan{Begin: c, End: c.Add(FromInt(1))}
}
