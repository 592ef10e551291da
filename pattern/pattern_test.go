package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(b, e int64) TimeSpan {
	return NewTimeSpan(FromInt(b), FromInt(e))
}

func queryCycle0(t *testing.T, p Pattern[string]) []Hap[string] {
	t.Helper()
	return p.Query(State{Span: span(0, 1)})
}

func TestPurityDeterministic(t *testing.T) {
	p := Fastcat(Pure("bd"), Pure("sn"), Pure("hh"), Pure("cp"))
	st := State{Span: span(0, 2)}
	a := p.Query(st)
	b := p.Query(st)
	require.Equal(t, a, b)
}

func TestSilenceAlwaysEmpty(t *testing.T) {
	s := Silence[string]()
	assert.Empty(t, s.Query(State{Span: span(0, 4)}))
	assert.Empty(t, s.Query(State{Span: span(-3, 10)}))
}

func TestPureOnePerCycle(t *testing.T) {
	p := Pure("x")
	haps := p.Query(State{Span: span(0, 3)})
	require.Len(t, haps, 3)
	for i, h := range haps {
		assert.Equal(t, "x", h.Value)
		assert.Equal(t, FromInt(int64(i)), h.Whole.Begin)
		assert.Equal(t, FromInt(int64(i+1)), h.Whole.End)
	}
}

func TestQueryContainment(t *testing.T) {
	p := Fastcat(Pure("a"), Pure("b"), Pure("c"))
	st := State{Span: NewTimeSpan(NewFraction(1, 4), NewFraction(3, 4))}
	for _, h := range p.Query(st) {
		assert.True(t, st.Span.Begin.Lte(h.Part.Begin))
		assert.True(t, h.Part.End.Lte(st.Span.End))
		if h.Whole != nil {
			assert.True(t, h.Whole.Contains(h.Part))
		}
	}
}

func TestFastSlowDuality(t *testing.T) {
	p := Fastcat(Pure("bd"), Pure("sn"), Pure("hh"), Pure("cp"))
	k := NewFraction(3, 1)
	roundtrip := Slow(Fast(p, k), k)
	st := State{Span: span(0, 4)}
	assert.Equal(t, p.Query(st), roundtrip.Query(st))
}

func TestRevInvolution(t *testing.T) {
	p := Fastcat(Pure("a"), Pure("b"), Pure("c"))
	twice := Rev(Rev(p))
	st := State{Span: span(0, 5)}
	assert.Equal(t, p.Query(st), twice.Query(st))
}

func TestStackCommutativeAsMultiset(t *testing.T) {
	a := Pure("a")
	b := Pure("b")
	st := State{Span: span(0, 2)}

	ab := Stack(a, b).Query(st)
	ba := Stack(b, a).Query(st)

	assert.ElementsMatch(t, ab, ba)
}

func TestSlowcatPeriod(t *testing.T) {
	ps := []Pattern[string]{Pure("bd"), Pure("sn"), Pure("hh")}
	combined := Slowcat(ps...)

	for n := int64(0); n < 9; n++ {
		got := combined.Query(State{Span: span(n, n+1)})
		want := ps[n%3].Query(State{Span: span(n, n+1)})
		require.Equal(t, want, got, "cycle %d", n)
	}
}

func TestEuclid3_8(t *testing.T) {
	p := Euclid(3, 8)
	haps := FilterOnsets(p).Query(State{Span: span(0, 1)})
	var onsets []Hap[bool]
	for _, h := range haps {
		if h.Value {
			onsets = append(onsets, h)
		}
	}
	require.Len(t, onsets, 3)
	expected := []Fraction{NewFraction(0, 8), NewFraction(3, 8), NewFraction(6, 8)}
	for i, h := range onsets {
		assert.True(t, h.Part.Begin.Eq(expected[i]), "onset %d: got %s want %s", i, h.Part.Begin, expected[i])
	}
}

func TestEuclidRotZeroMatchesEuclid(t *testing.T) {
	base := Euclid(3, 8)
	rotated := EuclidRot(3, 8, 0)
	st := State{Span: span(0, 1)}
	assert.Equal(t, base.Query(st), rotated.Query(st))
}

func TestFractionArithmetic(t *testing.T) {
	a := NewFraction(1, 2)
	b := NewFraction(1, 3)
	assert.Equal(t, NewFraction(5, 6), a.Add(b))
	assert.Equal(t, NewFraction(1, 6), a.Sub(b))
	assert.Equal(t, NewFraction(1, 6), a.Mul(b))
	assert.Equal(t, NewFraction(3, 2), a.Div(b))
	assert.True(t, NewFraction(2, 4).Eq(NewFraction(1, 2)))
}

func TestFractionFloorCeilNegative(t *testing.T) {
	f := NewFraction(-1, 2)
	assert.Equal(t, FromInt(-1), f.Floor())
	assert.Equal(t, FromInt(0), f.Ceil())
}

func TestDegradeByDeterministic(t *testing.T) {
	p := Fastcat(Pure("a"), Pure("b"), Pure("c"), Pure("d"))
	degraded := DegradeBy(p, 0.5)
	st := State{Span: span(0, 1)}
	first := degraded.Query(st)
	second := degraded.Query(st)
	require.Equal(t, first, second)
}
