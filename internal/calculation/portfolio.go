package calculation

import (
	"math"

	"github.com/rpgo/outlive/internal/domain"
)

// balanceDust absorbs floating point residue: a balance within a millionth
// of the period's withdrawal counts as spent.
const balanceDust = 1e-6

type weightedAsset struct {
	asset  string
	weight float64
}

// RunTrial evolves a portfolio along one sampled trial. Each period the
// allocation's weighted return is applied, then the period's withdrawal is
// taken; the first period that leaves the balance at or below zero ends the
// trial as depleted. Withdrawals are never reduced to fit the balance.
func RunTrial(trial *domain.Trial, initialBalance float64, allocation domain.Allocation, withdrawal domain.WithdrawalPolicy) (domain.TrialOutcome, error) {
	if math.IsNaN(initialBalance) || math.IsInf(initialBalance, 0) {
		return domain.TrialOutcome{}, domain.NewConfigurationError("initial_balance", "must be finite, got %v", initialBalance)
	}
	if trial == nil || trial.Len() == 0 {
		return domain.TrialOutcome{}, domain.NewConfigurationError("trial", "trial has no periods")
	}
	weights, err := allocationWeights(trial.Series, allocation)
	if err != nil {
		return domain.TrialOutcome{}, err
	}
	indexed := withdrawal.Indexing != domain.IndexFixed

	amount := withdrawal.Annual
	balance := initialBalance
	if balance <= 0 {
		return depletedAt(trial, 0, amount-balance, amount, indexed), nil
	}

	for t := 0; t < trial.Len(); t++ {
		period := trial.Period(t)
		growth := balance * portfolioReturn(weights, period)
		balance += growth
		balance -= amount
		if balance <= 0 || (amount > 0 && balance <= balanceDust*amount) {
			return depletedAt(trial, t, math.Max(-balance, 0), amount, indexed), nil
		}
		if indexed {
			amount *= 1 + period.Inflation()
		}
	}
	return domain.TrialOutcome{Period: trial.Len()}, nil
}

// portfolioReturn is the allocation-weighted return of a period.
func portfolioReturn(weights []weightedAsset, period domain.Period) float64 {
	var r float64
	for _, w := range weights {
		r += w.weight * period.Values[w.asset]
	}
	return r
}

func allocationWeights(series *domain.ReturnSeries, allocation domain.Allocation) ([]weightedAsset, error) {
	weights := make([]weightedAsset, 0, len(allocation))
	for _, asset := range allocation.Assets() {
		if !series.HasAsset(asset) {
			return nil, domain.NewConfigurationError("allocation", "asset %q is not in the return series %v", asset, series.Assets)
		}
		weights = append(weights, weightedAsset{asset: asset, weight: allocation[asset]})
	}
	return weights, nil
}

// depletedAt records depletion at period t together with the withdrawals the
// portfolio can no longer fund for the rest of the trial.
func depletedAt(trial *domain.Trial, t int, deficit, amount float64, indexed bool) domain.TrialOutcome {
	outcome := domain.TrialOutcome{Depleted: true, Period: t, Deficit: deficit}
	rest := trial.Len() - t - 1
	if rest <= 0 {
		return outcome
	}
	outcome.Unfunded = make([]float64, rest)
	for k := t + 1; k < trial.Len(); k++ {
		if indexed {
			amount *= 1 + trial.Period(k-1).Inflation()
		}
		outcome.Unfunded[k-t-1] = amount
	}
	return outcome
}
