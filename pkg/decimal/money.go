package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Cents rounds a float amount to a two-place decimal.
func Cents(value float64) decimal.Decimal {
	return NewMoney(value).Round().Decimal
}

// Round rounds the money amount to cents
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	return Money{m.Decimal.Abs()}
}

// Format renders the amount as dollars with thousands separators,
// e.g. "$1,234,567.89" or "-$12.00".
func (m Money) Format() string {
	s := m.Decimal.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if m.Decimal.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(cents)
	return b.String()
}

// Estimate is an estimated amount with its standard error, both in cents.
type Estimate struct {
	Amount decimal.Decimal `json:"amount"`
	StdErr decimal.Decimal `json:"std_err"`
}

// NewEstimate rounds an amount and its standard error to cents. The sign of
// stdErr is ignored.
func NewEstimate(amount, stdErr float64) Estimate {
	return Estimate{Amount: Cents(amount), StdErr: NewMoney(stdErr).Abs().Round().Decimal}
}

// Format renders the estimate, e.g. "$250,000.00 ± $1,520.33".
func (e Estimate) Format() string {
	return NewMoneyFromDecimal(e.Amount).Format() + " ± " + NewMoneyFromDecimal(e.StdErr).Format()
}
