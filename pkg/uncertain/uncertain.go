// Package uncertain provides a small numeric type carrying a value together
// with its standard error, propagated to first order through arithmetic under
// the assumption that operands are independent.
package uncertain

import (
	"fmt"
	"math"
)

// Value is a point estimate with a standard deviation.
type Value struct {
	Mean   float64 `json:"value"`
	StdDev float64 `json:"std_dev"`
}

// New returns a Value; a negative std-dev is taken by magnitude.
func New(mean, stdDev float64) Value { return Value{Mean: mean, StdDev: math.Abs(stdDev)} }

// Exact returns a Value with no uncertainty.
func Exact(x float64) Value { return Value{Mean: x} }

// MeanOf estimates the mean of independent samples with the standard error
// std/sqrt(n), using the population standard deviation.
func MeanOf(samples []float64) Value {
	n := float64(len(samples))
	if n == 0 {
		return Value{Mean: math.NaN(), StdDev: math.NaN()}
	}
	var sum float64
	for _, x := range samples {
		sum += x
	}
	mean := sum / n
	var ss float64
	for _, x := range samples {
		d := x - mean
		ss += d * d
	}
	return Value{Mean: mean, StdDev: math.Sqrt(ss/n) / math.Sqrt(n)}
}

// WeightedMeanOf estimates sum(w*x)/sum(w) with its delta-method standard
// error. It returns NaN when the weights sum to zero.
func WeightedMeanOf(samples, weights []float64) Value {
	var sw, swx float64
	for i, x := range samples {
		sw += weights[i]
		swx += weights[i] * x
	}
	if sw == 0 {
		return Value{Mean: math.NaN(), StdDev: math.NaN()}
	}
	mean := swx / sw
	var v float64
	for i, x := range samples {
		d := weights[i] * (x - mean)
		v += d * d
	}
	return Value{Mean: mean, StdDev: math.Sqrt(v) / sw}
}

// Add returns v + o.
func (v Value) Add(o Value) Value {
	return Value{Mean: v.Mean + o.Mean, StdDev: math.Hypot(v.StdDev, o.StdDev)}
}

// Sub returns v - o.
func (v Value) Sub(o Value) Value {
	return Value{Mean: v.Mean - o.Mean, StdDev: math.Hypot(v.StdDev, o.StdDev)}
}

// Div returns v / o.
func (v Value) Div(o Value) Value {
	q := v.Mean / o.Mean
	return Value{Mean: q, StdDev: math.Hypot(v.StdDev/o.Mean, q*o.StdDev/o.Mean)}
}

// Scale multiplies by an exact constant.
func (v Value) Scale(k float64) Value {
	return Value{Mean: k * v.Mean, StdDev: math.Abs(k) * v.StdDev}
}

// Relative returns StdDev/|Mean|, or +Inf for a zero mean with nonzero error.
func (v Value) Relative() float64 {
	if v.Mean == 0 {
		if v.StdDev == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return v.StdDev / math.Abs(v.Mean)
}

// IsNaN reports whether the mean is undefined.
func (v Value) IsNaN() bool { return math.IsNaN(v.Mean) }

func (v Value) String() string { return fmt.Sprintf("%g+/-%g", v.Mean, v.StdDev) }

// Percent formats the value as a percentage, e.g. "1.23% ± 0.10%".
func (v Value) Percent() string {
	return fmt.Sprintf("%.2f%% ± %.2f%%", 100*v.Mean, 100*v.StdDev)
}
