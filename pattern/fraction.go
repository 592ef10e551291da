// Package pattern implements the time-value algebra: exact-rational time,
// half-open spans, and the lazy query-function pattern combinators built on
// top of them.
package pattern

import "fmt"

// Fraction is an exact rational number held in canonical reduced form with
// a strictly positive denominator. Pattern time is always a Fraction so
// that long-running sessions never accumulate floating point drift.
type Fraction struct {
	Num int64
	Den int64
}

// NewFraction builds a reduced Fraction. Den must be non-zero; a zero
// denominator panics since it can never arise from well-formed pattern
// arithmetic.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		panic("pattern: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g == 0 {
		g = 1
	}
	return Fraction{Num: num / g, Den: den / g}
}

// FromInt builds a whole-number Fraction.
func FromInt(n int64) Fraction { return Fraction{Num: n, Den: 1} }

// FromFloat approximates a float64 as a Fraction with a bounded denominator.
// Used to rationalize cps values (Graph.SetCps, on start and on every
// tempo change) and the numeric factors and weights of mini-notation.
func FromFloat(f float64) Fraction {
	const maxDen = 1_000_000
	if f == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	sign := int64(1)
	if f < 0 {
		sign = -1
		f = -f
	}
	bestNum, bestDen := int64(0), int64(1)
	bestErr := f
	for den := int64(1); den <= maxDen; den++ {
		num := int64(f*float64(den) + 0.5)
		approx := float64(num) / float64(den)
		err := approx - f
		if err < 0 {
			err = -err
		}
		if err < bestErr {
			bestErr, bestNum, bestDen = err, num, den
		}
		if bestErr == 0 {
			break
		}
	}
	return NewFraction(sign*bestNum, bestDen)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Add returns f+g.
func (f Fraction) Add(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den+g.Num*f.Den, f.Den*g.Den)
}

// Sub returns f-g.
func (f Fraction) Sub(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den-g.Num*f.Den, f.Den*g.Den)
}

// Mul returns f*g.
func (f Fraction) Mul(g Fraction) Fraction {
	return NewFraction(f.Num*g.Num, f.Den*g.Den)
}

// Div returns f/g. Panics if g is zero, mirroring NewFraction.
func (f Fraction) Div(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den, f.Den*g.Num)
}

// Neg returns -f.
func (f Fraction) Neg() Fraction { return Fraction{Num: -f.Num, Den: f.Den} }

// Cmp returns -1, 0, or 1 as f is less than, equal to, or greater than g.
func (f Fraction) Cmp(g Fraction) int {
	lhs := f.Num * g.Den
	rhs := g.Num * f.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func (f Fraction) Lt(g Fraction) bool  { return f.Cmp(g) < 0 }
func (f Fraction) Lte(g Fraction) bool { return f.Cmp(g) <= 0 }
func (f Fraction) Gt(g Fraction) bool  { return f.Cmp(g) > 0 }
func (f Fraction) Gte(g Fraction) bool { return f.Cmp(g) >= 0 }
func (f Fraction) Eq(g Fraction) bool  { return f.Cmp(g) == 0 }

// Floor returns the greatest integer <= f, as a Fraction with Den 1.
func (f Fraction) Floor() Fraction {
	q := f.Num / f.Den
	if f.Num%f.Den != 0 && (f.Num < 0) != (f.Den < 0) {
		q--
	}
	return Fraction{Num: q, Den: 1}
}

// Ceil returns the least integer >= f, as a Fraction with Den 1.
func (f Fraction) Ceil() Fraction {
	flo := f.Floor()
	if flo.Eq(f) {
		return flo
	}
	return flo.Add(FromInt(1))
}

// FloorInt is Floor truncated to an int64, a common need when indexing by
// integer cycle number.
func (f Fraction) FloorInt() int64 { return f.Floor().Num }

// Frac returns f - f.Floor(), i.e. the fractional part in [0,1).
func (f Fraction) Frac() Fraction { return f.Sub(f.Floor()) }

// Float64 converts to a float64 approximation. Used only at the DSP
// boundary (oscillator phase increments etc.), never in pattern query math.
func (f Fraction) Float64() float64 { return float64(f.Num) / float64(f.Den) }

// IsZero reports whether f == 0.
func (f Fraction) IsZero() bool { return f.Num == 0 }

func (f Fraction) String() string {
	if f.Den == 1 {
		return fmt.Sprintf("%d", f.Num)
	}
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}
