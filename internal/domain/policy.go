package domain

import (
	"math"
	"sort"
)

// WeightTolerance bounds how far allocation weights may sum away from 1.
const WeightTolerance = 1e-6

// Allocation maps asset class to portfolio weight. The policy is reapplied to
// the post-withdrawal balance every period.
type Allocation map[string]float64

// Validate checks weights are in [0,1], exclude inflation and sum to 1.
func (a Allocation) Validate() error {
	if len(a) == 0 {
		return NewConfigurationError("allocation", "no asset weights provided")
	}
	var sum float64
	for asset, w := range a {
		if asset == InflationKey {
			return NewConfigurationError("allocation", "%q is not an investable asset", InflationKey)
		}
		if math.IsNaN(w) || w < 0 || w > 1 {
			return NewConfigurationError("allocation", "weight for %q must be within [0,1], got %v", asset, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightTolerance {
		return NewConfigurationError("allocation", "weights sum to %v, expected 1", sum)
	}
	return nil
}

// Assets returns the allocation's asset classes in sorted order.
func (a Allocation) Assets() []string {
	out := make([]string, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Indexing selects how the withdrawal grows from period to period.
type Indexing string

const (
	// IndexInflation grows the withdrawal by each sampled inflation rate.
	IndexInflation Indexing = "inflation"
	// IndexFixed keeps the nominal withdrawal constant.
	IndexFixed Indexing = "fixed"
)

// WithdrawalPolicy is the annual spending drawn from the portfolio.
type WithdrawalPolicy struct {
	Annual   float64  `json:"annual"`
	Indexing Indexing `json:"indexing"`
}

// Validate checks the withdrawal amount and indexing rule.
func (w WithdrawalPolicy) Validate() error {
	if math.IsNaN(w.Annual) || math.IsInf(w.Annual, 0) || w.Annual < 0 {
		return NewConfigurationError("withdrawal.annual", "must be a finite non-negative amount, got %v", w.Annual)
	}
	switch w.Indexing {
	case "", IndexInflation, IndexFixed:
		return nil
	default:
		return NewConfigurationError("withdrawal.indexing", "must be %q or %q, got %q", IndexInflation, IndexFixed, w.Indexing)
	}
}
