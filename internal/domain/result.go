package domain

import (
	money "github.com/rpgo/outlive/pkg/decimal"
	"github.com/rpgo/outlive/pkg/uncertain"
	"github.com/shopspring/decimal"
)

// TrialOutcome is the fate of one simulated portfolio path.
type TrialOutcome struct {
	Depleted bool `json:"depleted"`
	// Period is the index at which the balance first reached zero or below.
	// It is meaningless when Depleted is false.
	Period int `json:"period"`
	// Deficit is the part of the depletion period's withdrawal left unpaid.
	Deficit float64 `json:"deficit"`
	// Unfunded holds the scheduled withdrawals for every period after the
	// depletion period, indexed as in the trial.
	Unfunded []float64 `json:"unfunded,omitempty"`
}

// DepletionDistribution is the empirical histogram of depletion periods.
type DepletionDistribution struct {
	Counts []int `json:"counts"`
	Never  int   `json:"never"`
}

// Total returns the number of trials recorded.
func (d DepletionDistribution) Total() int {
	n := d.Never
	for _, c := range d.Counts {
		n += c
	}
	return n
}

// Depleted returns the number of trials that ran out of money.
func (d DepletionDistribution) Depleted() int { return d.Total() - d.Never }

// PercentileRanges summarizes depletion periods of the depleted trials.
type PercentileRanges struct {
	P10 int `json:"p10"`
	P25 int `json:"p25"`
	P50 int `json:"p50"`
	P75 int `json:"p75"`
	P90 int `json:"p90"`
}

// SimulationResult is the immutable product of one Monte Carlo run.
type SimulationResult struct {
	// DepletionProbability ignores mortality: the share of trials whose
	// portfolio ran out within the horizon.
	DepletionProbability uncertain.Value `json:"depletion_probability"`
	// OutliveProbability is the probability of being alive in the period the
	// portfolio is depleted.
	OutliveProbability uncertain.Value `json:"outlive_probability"`
	// ExpectedShortfall is the survival-weighted unfunded spending per trial.
	ExpectedShortfall money.Estimate `json:"expected_shortfall"`
	// RequiredInsurance is the survival-weighted mean shortfall of the
	// depleting trials: the face value that covers an expected shortfall.
	RequiredInsurance money.Estimate `json:"required_insurance"`

	Distribution         DepletionDistribution `json:"distribution"`
	DepletionPercentiles PercentileRanges      `json:"depletion_percentiles"`
	Survival             []float64             `json:"survival"`
	Outcomes             []TrialOutcome        `json:"-"`

	Trials         int              `json:"trials"`
	Horizon        int              `json:"horizon"`
	BlockSize      int              `json:"block_size"`
	StartAge       int              `json:"start_age"`
	Seed           uint64           `json:"seed"`
	InitialBalance decimal.Decimal  `json:"initial_balance"`
	Withdrawal     WithdrawalPolicy `json:"withdrawal"`
	Allocation     Allocation       `json:"allocation"`
}
