package pattern

// Weighted pairs a pattern with its relative duration weight inside a
// TimeCat sequence.
type Weighted[T any] struct {
	Weight Fraction
	Pat    Pattern[T]
}

// TimeCat lays out items within each cycle proportional to their weights,
// generalizing Fastcat (which is TimeCat with every weight equal to 1).
// Mini-notation's "!" and "@w" step modifiers are implemented on top of
// this.
func TimeCat[T any](items ...Weighted[T]) Pattern[T] {
	if len(items) == 0 {
		return Silence[T]()
	}
	total := Fraction{Num: 0, Den: 1}
	for _, it := range items {
		total = total.Add(it.Weight)
	}
	if total.IsZero() {
		return Silence[T]()
	}
	parts := make([]Pattern[T], 0, len(items))
	acc := Fraction{Num: 0, Den: 1}
	for _, it := range items {
		if it.Weight.IsZero() {
			continue
		}
		b := acc.Div(total)
		acc = acc.Add(it.Weight)
		e := acc.Div(total)
		parts = append(parts, compressSpan(b, e, it.Pat))
	}
	return Stack(parts...)
}

// compressSpan squeezes one cycle of p into [b,e) of every cycle of the
// result, leaving the rest of the cycle silent. 0 <= b < e <= 1.
func compressSpan[T any](b, e Fraction, p Pattern[T]) Pattern[T] {
	dur := e.Sub(b)
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, qspan := range st.Span.Cycles() {
			cycle := qspan.Begin.Floor()
			winBegin := cycle.Add(b)
			winEnd := cycle.Add(e)
			overlap, ok := qspan.Intersection(TimeSpan{Begin: winBegin, End: winEnd})
			if !ok {
				continue
			}
			toInner := func(t Fraction) Fraction {
				return cycle.Add(t.Sub(winBegin).Div(dur))
			}
			fromInner := func(t Fraction) Fraction {
				return winBegin.Add(t.Sub(cycle).Mul(dur))
			}
			innerSpan := overlap.WithTime(toInner)
			haps := p.Query(st.WithSpan(innerSpan))
			for _, h := range haps {
				out = append(out, WithHapTime(h, fromInner))
			}
		}
		return out
	})
}
