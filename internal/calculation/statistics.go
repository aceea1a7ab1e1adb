package calculation

import (
	"sort"

	"github.com/rpgo/outlive/internal/domain"
	money "github.com/rpgo/outlive/pkg/decimal"
	"github.com/rpgo/outlive/pkg/uncertain"
)

// Summarize combines trial outcomes with the survival curve.
//
// The probability of outliving savings is the mean over trials of the
// survival probability at the trial's depletion period (zero for trials that
// never deplete). A depleting trial's shortfall is its unpaid withdrawal in
// the depletion period plus every later scheduled withdrawal, each weighted by
// the conditional probability of still being alive to need it. The required
// insurance is the survival-weighted mean of those shortfalls; its error is
// the delta-method error of a ratio estimator. All other errors are standard
// errors of a mean over independent trials. Money amounts are rounded to
// cents.
func Summarize(outcomes []domain.TrialOutcome, survival []float64) (*domain.SimulationResult, error) {
	if len(outcomes) == 0 {
		return nil, domain.NewConfigurationError("trials", "no trial outcomes to summarize")
	}
	horizon := len(survival)
	if horizon == 0 {
		return nil, domain.NewConfigurationError("survival", "survival curve is empty")
	}

	n := len(outcomes)
	dist := domain.DepletionDistribution{Counts: make([]int, horizon)}
	depleted := make([]float64, n)
	outlive := make([]float64, n)
	expected := make([]float64, n)
	var shortfalls, weights []float64
	var periods []int

	for i, o := range outcomes {
		if !o.Depleted {
			dist.Never++
			continue
		}
		t := o.Period
		if t < 0 || t >= horizon {
			return nil, domain.NewConfigurationError("trials", "trial %d depleted at period %d outside horizon %d", i, t, horizon)
		}
		dist.Counts[t]++
		periods = append(periods, t)

		s := survival[t]
		short := trialShortfall(o, survival)
		depleted[i] = 1
		outlive[i] = s
		expected[i] = s * short
		shortfalls = append(shortfalls, short)
		weights = append(weights, s)
	}

	insurance := uncertain.Exact(0)
	if w := uncertain.WeightedMeanOf(shortfalls, weights); len(shortfalls) > 0 && !w.IsNaN() {
		insurance = w
	}

	return &domain.SimulationResult{
		DepletionProbability: uncertain.MeanOf(depleted),
		OutliveProbability:   uncertain.MeanOf(outlive),
		ExpectedShortfall:    estimate(uncertain.MeanOf(expected)),
		RequiredInsurance:    estimate(insurance),
		Distribution:         dist,
		DepletionPercentiles: percentileRanges(periods),
		Survival:             append([]float64(nil), survival...),
		Outcomes:             outcomes,
		Trials:               n,
		Horizon:              horizon,
	}, nil
}

// trialShortfall is the spending a depleted trial leaves unfunded, measured
// at the depletion period: later withdrawals count by the conditional
// probability of surviving to them.
func trialShortfall(o domain.TrialOutcome, survival []float64) float64 {
	short := o.Deficit
	s := survival[o.Period]
	if s == 0 {
		return short
	}
	for j, amount := range o.Unfunded {
		k := o.Period + 1 + j
		if k >= len(survival) {
			break
		}
		short += amount * survival[k] / s
	}
	return short
}

// percentileRanges returns nearest-rank percentiles of depletion periods.
func percentileRanges(periods []int) domain.PercentileRanges {
	n := len(periods)
	if n == 0 {
		return domain.PercentileRanges{}
	}
	sorted := append([]int(nil), periods...)
	sort.Ints(sorted)
	return domain.PercentileRanges{
		P10: sorted[n/10],
		P25: sorted[n/4],
		P50: sorted[n/2],
		P75: sorted[3*n/4],
		P90: sorted[9*n/10],
	}
}

func estimate(v uncertain.Value) money.Estimate { return money.NewEstimate(v.Mean, v.StdDev) }
