package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonon/pattern"
)

func oneCycle(t *testing.T, src string) []pattern.Hap[string] {
	t.Helper()
	p, err := Compile(src)
	require.NoError(t, err)
	return pattern.FilterOnsets(p).Query(pattern.State{
		Span: pattern.NewTimeSpan(pattern.FromInt(0), pattern.FromInt(1)),
	})
}

func TestSimpleSequence(t *testing.T) {
	haps := oneCycle(t, "bd sn hh cp")
	require.Len(t, haps, 4)
	want := []string{"bd", "sn", "hh", "cp"}
	for i, h := range haps {
		assert.Equal(t, want[i], h.Value)
		assert.Equal(t, pattern.NewFraction(int64(i), 4), h.Part.Begin)
	}
}

func TestSilenceToken(t *testing.T) {
	haps := oneCycle(t, "bd ~ sn ~")
	require.Len(t, haps, 2)
	assert.Equal(t, "bd", haps[0].Value)
	assert.Equal(t, "sn", haps[1].Value)
}

func TestNestedGroup(t *testing.T) {
	haps := oneCycle(t, "bd [sn sn]")
	require.Len(t, haps, 3)
	assert.Equal(t, "bd", haps[0].Value)
	assert.Equal(t, pattern.NewFraction(0, 2), haps[0].Part.Begin)
	assert.Equal(t, "sn", haps[1].Value)
	assert.Equal(t, pattern.NewFraction(1, 2), haps[1].Part.Begin)
	assert.Equal(t, "sn", haps[2].Value)
	assert.Equal(t, pattern.NewFraction(3, 4), haps[2].Part.Begin)
}

func TestAlternation(t *testing.T) {
	p, err := Compile("<bd sn hh>")
	require.NoError(t, err)
	for c, want := range []string{"bd", "sn", "hh", "bd"} {
		haps := pattern.FilterOnsets(p).Query(pattern.State{
			Span: pattern.NewTimeSpan(pattern.FromInt(int64(c)), pattern.FromInt(int64(c+1))),
		})
		require.Len(t, haps, 1, "cycle %d", c)
		assert.Equal(t, want, haps[0].Value)
	}
}

func TestStack(t *testing.T) {
	haps := oneCycle(t, "[bd, hh hh]")
	var values []string
	for _, h := range haps {
		values = append(values, h.Value)
	}
	assert.ElementsMatch(t, []string{"bd", "hh", "hh"}, values)
}

func TestFastModifier(t *testing.T) {
	haps := oneCycle(t, "bd*2 sn")
	require.Len(t, haps, 3)
	assert.Equal(t, "bd", haps[0].Value)
	assert.Equal(t, "bd", haps[1].Value)
	assert.Equal(t, "sn", haps[2].Value)
}

func TestSlowModifier(t *testing.T) {
	p, err := Compile("bd/2")
	require.NoError(t, err)
	haps0 := pattern.FilterOnsets(p).Query(pattern.State{Span: pattern.NewTimeSpan(pattern.FromInt(0), pattern.FromInt(1))})
	haps1 := pattern.FilterOnsets(p).Query(pattern.State{Span: pattern.NewTimeSpan(pattern.FromInt(1), pattern.FromInt(2))})
	assert.Len(t, haps0, 1)
	assert.Empty(t, haps1)
}

func TestEuclideanRhythm(t *testing.T) {
	haps := oneCycle(t, "bd(3,8)")
	require.Len(t, haps, 3)
	want := []pattern.Fraction{pattern.NewFraction(0, 8), pattern.NewFraction(3, 8), pattern.NewFraction(6, 8)}
	for i, h := range haps {
		assert.Equal(t, "bd", h.Value)
		assert.True(t, h.Part.Begin.Eq(want[i]))
	}
}

func TestSampleBankSelector(t *testing.T) {
	haps := oneCycle(t, "bd:3")
	require.Len(t, haps, 1)
	assert.Equal(t, "bd:3", haps[0].Value)
}

func TestWeightModifier(t *testing.T) {
	haps := oneCycle(t, "bd@3 sn")
	require.Len(t, haps, 2)
	assert.Equal(t, pattern.NewFraction(0, 4), haps[0].Part.Begin)
	assert.Equal(t, pattern.NewFraction(3, 4), haps[0].Part.End)
	assert.Equal(t, pattern.NewFraction(3, 4), haps[1].Part.Begin)
}

func TestAttachedBangDoublesWeight(t *testing.T) {
	haps := oneCycle(t, "bd! sn")
	require.Len(t, haps, 2)
	assert.Equal(t, pattern.NewFraction(0, 3), haps[0].Part.Begin)
	assert.Equal(t, pattern.NewFraction(2, 3), haps[0].Part.End)
	assert.Equal(t, "sn", haps[1].Value)
}

func TestStandaloneBangRepeatsStep(t *testing.T) {
	haps := oneCycle(t, "bd ! sn")
	require.Len(t, haps, 3)
	assert.Equal(t, "bd", haps[0].Value)
	assert.Equal(t, "bd", haps[1].Value)
	assert.Equal(t, "sn", haps[2].Value)
}

func TestUnbalancedBracketsIsFatal(t *testing.T) {
	_, err := Compile("[bd sn")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
