package pattern

// Fast speeds up p by factor k: k cycles of p now fit in one cycle of the
// result. fast(k) = withQueryTime(t -> t*k) . withEventTime(t -> t/k).
func Fast[T any](p Pattern[T], k Fraction) Pattern[T] {
	if k.IsZero() {
		return Silence[T]()
	}
	scaled := WithQueryTime(p, func(t Fraction) Fraction { return t.Mul(k) })
	return WithEventTime(scaled, func(t Fraction) Fraction { return t.Div(k) })
}

// Slow is Fast(1/k).
func Slow[T any](p Pattern[T], k Fraction) Pattern[T] {
	if k.IsZero() {
		return Silence[T]()
	}
	return Fast(p, NewFraction(1, 1).Div(k))
}

// Early shifts p earlier in time by d: early(d) = withQueryTime(t -> t+d) .
// withEventTime(t -> t-d).
func Early[T any](p Pattern[T], d Fraction) Pattern[T] {
	shifted := WithQueryTime(p, func(t Fraction) Fraction { return t.Add(d) })
	return WithEventTime(shifted, func(t Fraction) Fraction { return t.Sub(d) })
}

// Late is Early(-d).
func Late[T any](p Pattern[T], d Fraction) Pattern[T] {
	return Early(p, d.Neg())
}

// Rev reflects every event within its own cycle: an event spanning [b,e)
// becomes (floor(b)+ceil(e)) - e .. (floor(b)+ceil(e)) - b.
func Rev[T any](p Pattern[T]) Pattern[T] {
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, qspan := range st.Span.Cycles() {
			cycle := qspan.Begin.Floor()
			next := cycle.Add(FromInt(1))
			reflect := func(t Fraction) Fraction { return cycle.Add(next).Sub(t) }
			// Querying with the reflected span, since reflect is its own inverse
			// within a cycle, and mapping reflect back over the resulting events'
			// endpoints (swapping begin/end implicitly via the subtraction).
			reflectedSpan := TimeSpan{Begin: reflect(qspan.End), End: reflect(qspan.Begin)}
			haps := p.Query(st.WithSpan(reflectedSpan))
			reflectSpan := func(s TimeSpan) TimeSpan {
				return TimeSpan{Begin: reflect(s.End), End: reflect(s.Begin)}
			}
			for _, h := range haps {
				nh := Hap[T]{Part: reflectSpan(h.Part), Value: h.Value}
				if h.Whole != nil {
					w := reflectSpan(*h.Whole)
					nh.Whole = &w
				}
				out = append(out, nh)
			}
		}
		return out
	})
}

// Stack queries every pattern in ps with the unchanged input span and
// concatenates the results (a polyrhythmic union).
func Stack[T any](ps ...Pattern[T]) Pattern[T] {
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, p := range ps {
			out = append(out, p.Query(st)...)
		}
		return out
	})
}

// Slowcat selects one pattern per cycle, cycling through ps in order: in
// integer cycle c it plays ps[c mod len(ps)], queried with its own local
// time set to floor(state.span.begin), then shifts results back to
// absolute time.
func Slowcat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, qspan := range st.Span.Cycles() {
			cycle := qspan.Begin.FloorInt()
			idx := cycle % n
			if idx < 0 {
				idx += n
			}
			// Local cycle number: which repetition of ps[idx] we're in, so that
			// sub-patterns with their own cycle-dependent behavior see a
			// consistent local cycle index rather than the global one.
			localCycle := floorDiv(cycle, n)
			offset := FromInt(cycle - localCycle)
			shifted := qspan.WithTime(func(t Fraction) Fraction { return t.Sub(offset) })
			haps := ps[idx].Query(st.WithSpan(shifted))
			for _, h := range haps {
				out = append(out, WithHapTime(h, func(t Fraction) Fraction { return t.Add(offset) }))
			}
		}
		return out
	})
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Fastcat is Slowcat(ps...).Fast(len(ps)): a sequence that fills exactly
// one cycle.
func Fastcat[T any](ps ...Pattern[T]) Pattern[T] {
	if len(ps) == 0 {
		return Silence[T]()
	}
	return Fast(Slowcat(ps...), FromInt(int64(len(ps))))
}

// Seq is an alias for Fastcat, matching mini-notation's "a b c" sequencing.
func Seq[T any](ps ...Pattern[T]) Pattern[T] { return Fastcat(ps...) }
