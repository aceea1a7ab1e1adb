package uncertain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanOf(t *testing.T) {
	v := MeanOf([]float64{1, 0, 1, 0})
	assert.InDelta(t, 0.5, v.Mean, 1e-12)
	// population std = 0.5, n = 4 -> 0.25
	assert.InDelta(t, 0.25, v.StdDev, 1e-12)

	assert.True(t, MeanOf(nil).IsNaN())
}

func TestMeanOfConstantSamplesHasNoError(t *testing.T) {
	v := MeanOf([]float64{3, 3, 3})
	assert.Equal(t, 3.0, v.Mean)
	assert.Equal(t, 0.0, v.StdDev)
}

func TestWeightedMeanOf(t *testing.T) {
	v := WeightedMeanOf([]float64{10, 20}, []float64{1, 3})
	assert.InDelta(t, 17.5, v.Mean, 1e-12)
	assert.Greater(t, v.StdDev, 0.0)

	equal := WeightedMeanOf([]float64{2, 2}, []float64{0.5, 0.25})
	assert.InDelta(t, 2, equal.Mean, 1e-12)
	assert.InDelta(t, 0, equal.StdDev, 1e-12)

	assert.True(t, WeightedMeanOf([]float64{1}, []float64{0}).IsNaN())
}

func TestArithmeticPropagation(t *testing.T) {
	a := New(10, 3)
	b := New(5, 4)

	sum := a.Add(b)
	assert.InDelta(t, 15, sum.Mean, 1e-12)
	assert.InDelta(t, 5, sum.StdDev, 1e-12)

	diff := a.Sub(b)
	assert.InDelta(t, 5, diff.Mean, 1e-12)
	assert.InDelta(t, 5, diff.StdDev, 1e-12)

	quot := a.Div(b)
	assert.InDelta(t, 2, quot.Mean, 1e-12)
	assert.InDelta(t, math.Hypot(3.0/5, 2*4.0/5), quot.StdDev, 1e-9)

	scaled := a.Scale(-2)
	assert.InDelta(t, -20, scaled.Mean, 1e-12)
	assert.InDelta(t, 6, scaled.StdDev, 1e-12)
}

func TestExactOperandsKeepErrorUnchanged(t *testing.T) {
	v := New(4, 0.5).Add(Exact(2))
	assert.InDelta(t, 6, v.Mean, 1e-12)
	assert.InDelta(t, 0.5, v.StdDev, 1e-12)

	q := Exact(0).Div(New(0.002, 0.0005))
	assert.Zero(t, q.Mean)
	assert.Zero(t, q.StdDev)
}

func TestRelative(t *testing.T) {
	assert.InDelta(t, 0.1, New(-10, 1).Relative(), 1e-12)
	assert.Equal(t, 0.0, Exact(0).Relative())
	assert.True(t, math.IsInf(New(0, 1).Relative(), 1))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.23% ± 0.10%", New(0.0123, 0.001).Percent())
	assert.Equal(t, "2+/-0.5", New(2, -0.5).String())
}
