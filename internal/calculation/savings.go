package calculation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rpgo/outlive/internal/domain"
	money "github.com/rpgo/outlive/pkg/decimal"
	"github.com/rpgo/outlive/pkg/uncertain"
	"github.com/shopspring/decimal"
)

const (
	savingsRelTolerance = 1e-2
	savingsMaxWidenings = 6
	savingsMaxBisects   = 60
	sweepFloor          = 0.01
	// sweepNoisy is the relative error above which a sweep estimate is
	// reported as unreliable.
	sweepNoisy = 0.5
)

// SavingsTarget is the initial balance at which the probability of outliving
// savings meets the acceptable risk. The balance carries the sampling error of
// the outlive probability at the target, converted through the local slope of
// the probability curve.
type SavingsTarget struct {
	InitialBalance money.Estimate  `json:"initial_balance"`
	AcceptableRisk float64         `json:"acceptable_risk"`
	Outlive        uncertain.Value `json:"outlive_probability"`
	Trials         int             `json:"trials"`
	Evaluations    int             `json:"evaluations"`
	Seed           uint64          `json:"seed"`
}

// HowMuchToSave searches for the initial balance whose outlive probability
// equals acceptableRisk. The search starts between 5 and 40 years of
// withdrawals; while that interval does not straddle the target, the trial
// count doubles and the interval widens. Every evaluation reuses the same seed
// so that estimates at different balances share their random paths.
func (e *MonteCarloEngine) HowMuchToSave(ctx context.Context, cfg Config, acceptableRisk float64) (*SavingsTarget, error) {
	if acceptableRisk <= 0 || acceptableRisk >= 1 {
		return nil, domain.NewConfigurationError("acceptable_risk", "must be within (0,1), got %v", acceptableRisk)
	}
	if cfg.Withdrawal.Annual <= 0 {
		return nil, domain.NewConfigurationError("withdrawal.annual", "must be positive to size savings, got %v", cfg.Withdrawal.Annual)
	}
	cfg.Seed = NewSeedStream(cfg.Seed).Seed

	evaluations := 0
	outlive := func(balance float64) (uncertain.Value, error) {
		evaluations++
		c := cfg
		c.InitialBalance = balance
		res, err := e.Estimate(ctx, c)
		if err != nil {
			return uncertain.Value{}, err
		}
		return res.OutliveProbability, nil
	}

	lo, hi := 5*cfg.Withdrawal.Annual, 40*cfg.Withdrawal.Annual
	var pLo, pHi uncertain.Value
	for attempt := 0; ; attempt++ {
		var err error
		if pLo, err = outlive(lo); err != nil {
			return nil, err
		}
		if pHi, err = outlive(hi); err != nil {
			return nil, err
		}
		if pLo.Mean >= acceptableRisk && pHi.Mean <= acceptableRisk {
			break
		}
		if attempt == savingsMaxWidenings {
			return nil, &domain.DataGapError{
				Subject:   "savings target",
				Requested: fmt.Sprintf("outlive probability %v", acceptableRisk),
				Available: fmt.Sprintf("%v..%v between balances %.0f and %.0f", pHi.Mean, pLo.Mean, lo, hi),
			}
		}
		cfg.Trials *= 2
		lo /= 2
		hi *= 2
		e.Logger.Debugf("savings target: widening to [%.0f, %.0f] with %d trials", lo, hi, cfg.Trials)
	}

	for i := 0; i < savingsMaxBisects && hi-lo > savingsRelTolerance*0.5*(lo+hi); i++ {
		mid := 0.5 * (lo + hi)
		p, err := outlive(mid)
		if err != nil {
			return nil, err
		}
		if p.Mean > acceptableRisk {
			lo, pLo = mid, p
		} else {
			hi, pHi = mid, p
		}
	}

	target := 0.5 * (lo + hi)
	c := cfg
	c.InitialBalance = target
	res, err := e.Estimate(ctx, c)
	if err != nil {
		return nil, err
	}
	evaluations++
	balance := balanceUncertainty(target, res.OutliveProbability, pLo, pHi, lo, hi)
	e.Logger.Infof("savings target: %s for risk %v after %d evaluations", balance, acceptableRisk, evaluations)
	return &SavingsTarget{
		InitialBalance: money.NewEstimate(balance.Mean, balance.StdDev),
		AcceptableRisk: acceptableRisk,
		Outlive:        res.OutliveProbability,
		Trials:         cfg.Trials,
		Evaluations:    evaluations,
		Seed:           cfg.Seed,
	}, nil
}

// balanceUncertainty converts the error of the outlive probability p at the
// target into an error on the balance, dividing by the slope of the
// probability across the final bracket [lo, hi]. A bracket with no drop in
// probability leaves the balance known only to within half its width.
func balanceUncertainty(target float64, p, pLo, pHi uncertain.Value, lo, hi float64) uncertain.Value {
	if hi <= lo || pLo.Mean <= pHi.Mean {
		return uncertain.New(target, 0.5*(hi-lo))
	}
	slope := pLo.Sub(pHi).Scale(1 / (hi - lo))
	offset := uncertain.New(0, p.StdDev).Div(slope)
	return uncertain.Exact(target).Add(offset)
}

// SweepPoint is one estimate on a balance sweep curve.
type SweepPoint struct {
	Label          string            `json:"label"`
	Allocation     domain.Allocation `json:"allocation"`
	InitialBalance decimal.Decimal   `json:"initial_balance"`
	Outlive        uncertain.Value   `json:"outlive_probability"`
}

// SweepBalances estimates the outlive probability over increasing initial
// balances for each allocation. A curve stops once the probability falls
// below one percent.
func (e *MonteCarloEngine) SweepBalances(ctx context.Context, cfg Config, balances []float64, allocations []domain.Allocation) ([]SweepPoint, error) {
	if len(balances) == 0 {
		return nil, domain.NewConfigurationError("sweep.balances", "no balances to sweep")
	}
	if len(allocations) == 0 {
		allocations = []domain.Allocation{cfg.Allocation}
	}
	sorted := append([]float64(nil), balances...)
	sort.Float64s(sorted)
	cfg.Seed = NewSeedStream(cfg.Seed).Seed

	var points []SweepPoint
	for _, alloc := range allocations {
		label := AllocationLabel(alloc)
		for _, balance := range sorted {
			c := cfg
			c.Allocation = alloc
			c.InitialBalance = balance
			res, err := e.Estimate(ctx, c)
			if err != nil {
				return nil, fmt.Errorf("sweep %s at %.0f: %w", label, balance, err)
			}
			p := res.OutliveProbability
			if p.Mean > 0 && p.Relative() > sweepNoisy {
				e.Logger.Warnf("sweep %s at %.0f: outlive probability %s is noisy, consider more trials", label, balance, p.Percent())
			}
			points = append(points, SweepPoint{
				Label:          label,
				Allocation:     alloc,
				InitialBalance: money.Cents(balance),
				Outlive:        p,
			})
			if p.Mean < sweepFloor {
				break
			}
		}
	}
	return points, nil
}

// AllocationLabel renders an allocation like "50% bonds / 50% stocks".
func AllocationLabel(a domain.Allocation) string {
	parts := make([]string, 0, len(a))
	for _, asset := range a.Assets() {
		parts = append(parts, fmt.Sprintf("%.0f%% %s", math.Round(100*a[asset]), asset))
	}
	return strings.Join(parts, " / ")
}
