package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAllocationFromDecimals(t *testing.T) {
	a := AllocationFromDecimals(mustDecimals(t, map[string]string{"stocks": "0.6", "bonds": "0.4"}))
	assert.Equal(t, Allocation{"stocks": 0.6, "bonds": 0.4}, a)
}

func mustDecimals(t *testing.T, in map[string]string) map[string]decimal.Decimal {
	t.Helper()
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		d, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatalf("bad decimal %q: %v", v, err)
		}
		out[k] = d
	}
	return out
}
