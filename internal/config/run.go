package config

import (
	"fmt"
	"time"

	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/domain"
	"github.com/rpgo/outlive/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// nowFunc returns the current time (override in tests).
var nowFunc = time.Now

// BuildEngineConfig loads the data files named by a validated configuration
// and converts it into the engine's form.
func BuildEngineConfig(config *domain.Configuration) (calculation.Config, error) {
	var (
		series *domain.ReturnSeries
		err    error
	)
	switch config.Data.ReturnsFormat {
	case "shiller":
		series, err = calculation.LoadShillerFile(config.Data.ReturnsFile)
	default:
		series, err = calculation.LoadReturnSeriesFile(config.Data.ReturnsFile)
	}
	if err != nil {
		return calculation.Config{}, err
	}
	if config.Data.From != "" || config.Data.To != "" {
		if series, err = series.Window(config.Data.From, config.Data.To); err != nil {
			return calculation.Config{}, fmt.Errorf("failed to window return series: %w", err)
		}
	}

	table, err := calculation.LoadLifeTableFile(config.Data.LifeTableFile)
	if err != nil {
		return calculation.Config{}, err
	}

	return calculation.Config{
		Series:         series,
		LifeTable:      table,
		Horizon:        config.Simulation.Horizon,
		Trials:         config.Simulation.Trials,
		BlockSize:      config.Simulation.BlockSize,
		Allocation:     domain.AllocationFromDecimals(config.Allocation),
		Withdrawal:     WithdrawalPolicy(config.Withdrawal),
		InitialBalance: config.Retiree.InitialBalance.InexactFloat64(),
		StartAge:       StartingAge(config.Retiree),
		Seed:           config.Simulation.Seed,
		Workers:        config.Simulation.Workers,
	}, nil
}

// WithdrawalPolicy converts the file form of the withdrawal.
func WithdrawalPolicy(w domain.WithdrawalSettings) domain.WithdrawalPolicy {
	return domain.WithdrawalPolicy{
		Annual:   w.Annual.InexactFloat64(),
		Indexing: domain.Indexing(w.Indexing),
	}
}

// SweepInputs returns the sweep balances and allocations. Without configured
// allocations the sweep covers the main allocation only.
func SweepInputs(config *domain.Configuration) ([]float64, []domain.Allocation) {
	balances := floats(config.Sweep.Balances)
	allocations := make([]domain.Allocation, 0, len(config.Sweep.Allocations))
	for _, a := range config.Sweep.Allocations {
		allocations = append(allocations, domain.AllocationFromDecimals(a))
	}
	if len(allocations) == 0 {
		allocations = append(allocations, domain.AllocationFromDecimals(config.Allocation))
	}
	return balances, allocations
}

// SensitivityInputs returns the factor ranges of the sensitivity analysis:
// configured values where given, otherwise ranges around the base case cfg.
func SensitivityInputs(config *domain.Configuration, cfg calculation.Config, acceptableRisk float64) []calculation.SensitivityRange {
	s := config.Sensitivity
	ages := make([]float64, len(s.StartingAges))
	for i, a := range s.StartingAges {
		ages[i] = float64(a)
	}
	values := map[calculation.SensitivityFactor][]float64{
		calculation.FactorStockFraction:  s.StockFractions,
		calculation.FactorAcceptableRisk: s.AcceptableRisks,
		calculation.FactorWithdrawal:     floats(s.Withdrawals),
		calculation.FactorStartingAge:    ages,
	}
	for _, r := range calculation.DefaultSensitivityRanges(cfg, acceptableRisk) {
		if len(values[r.Factor]) == 0 {
			values[r.Factor] = r.Values
		}
	}

	factors := calculation.SensitivityFactors
	if len(s.Factors) > 0 {
		factors = make([]calculation.SensitivityFactor, len(s.Factors))
		for i, f := range s.Factors {
			factors[i] = calculation.SensitivityFactor(f)
		}
	}
	var ranges []calculation.SensitivityRange
	for _, f := range factors {
		if len(values[f]) > 0 {
			ranges = append(ranges, calculation.SensitivityRange{Factor: f, Values: values[f]})
		}
	}
	return ranges
}

func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}

// StartingAge returns the retiree's age at the start of the simulation.
func StartingAge(r domain.RetireeDetails) int {
	if r.BirthDate.IsZero() {
		return r.StartingAge
	}
	asOf := r.AsOf
	if asOf.IsZero() {
		asOf = nowFunc()
	}
	return dateutil.Age(r.BirthDate, asOf)
}
