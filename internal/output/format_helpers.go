package output

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/domain"
	money "github.com/rpgo/outlive/pkg/decimal"
)

// FormatCurrency formats an amount as USD currency with 2 decimals.
func FormatCurrency(amount float64) string { return money.NewMoney(amount).Format() }

// FormatMoney formats a decimal amount as USD currency with 2 decimals.
func FormatMoney(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Format() }

// FormatEstimate formats an amount with its standard error.
func FormatEstimate(e money.Estimate) string { return e.Format() }

// FormatPercentage formats a fraction as a percentage with 2 decimals.
func FormatPercentage(fraction float64) string { return fmt.Sprintf("%.2f%%", 100*fraction) }

func describeWithdrawal(w domain.WithdrawalPolicy) string {
	if w.Indexing == domain.IndexFixed {
		return FormatCurrency(w.Annual) + " per period (fixed)"
	}
	return FormatCurrency(w.Annual) + " per period (inflation indexed)"
}

// describeFactor renders a sensitivity value in the units of its factor.
func describeFactor(f calculation.SensitivityFactor, v float64) string {
	switch f {
	case calculation.FactorStockFraction, calculation.FactorAcceptableRisk:
		return FormatPercentage(v)
	case calculation.FactorWithdrawal:
		return FormatCurrency(v)
	default:
		return fmt.Sprintf("%g", v)
	}
}
