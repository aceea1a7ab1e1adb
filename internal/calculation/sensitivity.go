package calculation

import (
	"context"
	"fmt"
	"math"

	"github.com/rpgo/outlive/internal/domain"
)

// SensitivityFactor names an input varied one at a time around a base case.
type SensitivityFactor string

const (
	FactorStockFraction  SensitivityFactor = "stock_fraction"
	FactorAcceptableRisk SensitivityFactor = "acceptable_risk"
	FactorWithdrawal     SensitivityFactor = "withdrawal"
	FactorStartingAge    SensitivityFactor = "starting_age"
)

// SensitivityFactors lists every factor in report order.
var SensitivityFactors = []SensitivityFactor{FactorStockFraction, FactorAcceptableRisk, FactorWithdrawal, FactorStartingAge}

// StockAsset is the asset whose weight the stock fraction factor sets; when
// an allocation holds nothing else the remainder goes to BondAsset.
const (
	StockAsset = "stocks"
	BondAsset  = "bonds"
)

// SensitivityRange is the list of values tried for one factor.
type SensitivityRange struct {
	Factor SensitivityFactor `json:"factor"`
	Values []float64         `json:"values"`
}

// SensitivityPoint is the savings target with one factor changed.
type SensitivityPoint struct {
	Factor SensitivityFactor `json:"factor"`
	Value  float64           `json:"value"`
	Target *SavingsTarget    `json:"target"`
}

// SensitivityAnalysis is the base savings target and every one-factor
// variation of it.
type SensitivityAnalysis struct {
	Base   *SavingsTarget     `json:"base"`
	Points []SensitivityPoint `json:"points"`
}

// Sensitivity recomputes the savings target while each factor in turn takes
// the values of its range, all other inputs staying at the base case. Every
// search shares one seed.
func (e *MonteCarloEngine) Sensitivity(ctx context.Context, cfg Config, acceptableRisk float64, ranges []SensitivityRange) (*SensitivityAnalysis, error) {
	if len(ranges) == 0 {
		return nil, domain.NewConfigurationError("sensitivity", "no factors to vary")
	}
	for _, r := range ranges {
		if !validFactor(r.Factor) {
			return nil, domain.NewConfigurationError("sensitivity", "unknown factor %q", r.Factor)
		}
		if len(r.Values) == 0 {
			return nil, domain.NewConfigurationError("sensitivity", "factor %s has no values", r.Factor)
		}
	}
	cfg.Seed = NewSeedStream(cfg.Seed).Seed

	base, err := e.HowMuchToSave(ctx, cfg, acceptableRisk)
	if err != nil {
		return nil, fmt.Errorf("sensitivity base case: %w", err)
	}
	analysis := &SensitivityAnalysis{Base: base}
	for _, r := range ranges {
		for _, v := range r.Values {
			c, risk, err := varyFactor(cfg, acceptableRisk, r.Factor, v)
			if err != nil {
				return nil, err
			}
			target, err := e.HowMuchToSave(ctx, c, risk)
			if err != nil {
				return nil, fmt.Errorf("sensitivity %s=%v: %w", r.Factor, v, err)
			}
			analysis.Points = append(analysis.Points, SensitivityPoint{Factor: r.Factor, Value: v, Target: target})
		}
		e.Logger.Debugf("sensitivity: %s done with %d values", r.Factor, len(r.Values))
	}
	e.Logger.Infof("sensitivity: %d variations around %s", len(analysis.Points), base.InitialBalance.Format())
	return analysis, nil
}

func validFactor(f SensitivityFactor) bool {
	for _, known := range SensitivityFactors {
		if f == known {
			return true
		}
	}
	return false
}

// varyFactor returns the base configuration and risk with one factor set to v.
func varyFactor(cfg Config, risk float64, factor SensitivityFactor, v float64) (Config, float64, error) {
	switch factor {
	case FactorStockFraction:
		alloc, err := WithStockFraction(cfg.Allocation, v)
		if err != nil {
			return cfg, risk, err
		}
		cfg.Allocation = alloc
	case FactorAcceptableRisk:
		risk = v
	case FactorWithdrawal:
		cfg.Withdrawal.Annual = v
	case FactorStartingAge:
		if math.IsNaN(v) || v != math.Trunc(v) {
			return cfg, risk, domain.NewConfigurationError("sensitivity", "starting age must be a whole number, got %v", v)
		}
		cfg.StartAge = int(v)
	}
	return cfg, risk, nil
}

// WithStockFraction returns a copy of a with the stock weight set to f and
// the rest spread over the other assets in their current proportions.
func WithStockFraction(a domain.Allocation, f float64) (domain.Allocation, error) {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return nil, domain.NewConfigurationError("sensitivity", "stock fraction must be within [0,1], got %v", f)
	}
	var rest float64
	for asset, w := range a {
		if asset != StockAsset {
			rest += w
		}
	}
	out := domain.Allocation{StockAsset: f}
	if rest == 0 {
		if f < 1 {
			out[BondAsset] = 1 - f
		}
		return out, nil
	}
	for asset, w := range a {
		if asset != StockAsset {
			out[asset] = w * (1 - f) / rest
		}
	}
	return out, nil
}

// DefaultSensitivityRanges brackets the base case: stock fractions in
// quarters, the acceptable risk halved and doubled, the withdrawal from half
// to one and a half times, and the starting age five and ten years either
// side where the life table covers it.
func DefaultSensitivityRanges(cfg Config, acceptableRisk float64) []SensitivityRange {
	var ranges []SensitivityRange
	if cfg.Series != nil && cfg.Series.HasAsset(StockAsset) {
		ranges = append(ranges, SensitivityRange{Factor: FactorStockFraction, Values: []float64{0, 0.25, 0.5, 0.75, 1}})
	}

	var risks []float64
	for _, k := range []float64{0.5, 2, 4} {
		if r := k * acceptableRisk; r > 0 && r < 1 {
			risks = append(risks, r)
		}
	}
	if len(risks) > 0 {
		ranges = append(ranges, SensitivityRange{Factor: FactorAcceptableRisk, Values: risks})
	}

	if w := cfg.Withdrawal.Annual; w > 0 {
		ranges = append(ranges, SensitivityRange{Factor: FactorWithdrawal, Values: []float64{0.5 * w, 0.75 * w, 1.25 * w, 1.5 * w}})
	}

	var ages []float64
	for _, d := range []int{-10, -5, 5, 10} {
		age := cfg.StartAge + d
		if age >= 0 && cfg.LifeTable != nil && cfg.LifeTable.Covers(age) {
			ages = append(ages, float64(age))
		}
	}
	if len(ages) > 0 {
		ranges = append(ranges, SensitivityRange{Factor: FactorStartingAge, Values: ages})
	}
	return ranges
}
