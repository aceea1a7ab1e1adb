package calculation

import (
	"testing"

	"github.com/rpgo/outlive/internal/domain"
	"github.com/stretchr/testify/require"
)

// singleAssetSeries builds a series with one "stocks" asset.
func singleAssetSeries(t *testing.T, returns, inflation []float64) *domain.ReturnSeries {
	t.Helper()
	require.Equal(t, len(returns), len(inflation))
	periods := make([]domain.Period, len(returns))
	for i := range returns {
		periods[i] = domain.Period{
			Label:  string(rune('a' + i)),
			Values: map[string]float64{"stocks": returns[i], domain.InflationKey: inflation[i]},
		}
	}
	series, err := domain.NewReturnSeries(periods)
	require.NoError(t, err)
	return series
}

// flatSeries has n periods of zero returns and zero inflation for stocks and bonds.
func flatSeries(t *testing.T, n int) *domain.ReturnSeries {
	t.Helper()
	periods := make([]domain.Period, n)
	for i := range periods {
		periods[i] = domain.Period{Values: map[string]float64{"stocks": 0, "bonds": 0, domain.InflationKey: 0}}
	}
	series, err := domain.NewReturnSeries(periods)
	require.NoError(t, err)
	return series
}

// marketSeries is a small, volatile two-asset history.
func marketSeries(t *testing.T) *domain.ReturnSeries {
	t.Helper()
	stocks := []float64{0.21, -0.09, -0.12, -0.22, 0.28, 0.11, 0.05, 0.16, 0.32, -0.37, 0.26, 0.15, 0.02, 0.13, 0.01}
	bonds := []float64{0.04, 0.05, 0.06, 0.05, 0.04, 0.04, 0.03, 0.05, 0.02, 0.03, 0.04, 0.03, 0.02, 0.02, 0.02}
	infl := []float64{0.03, 0.03, 0.02, 0.02, 0.02, 0.03, 0.03, 0.03, 0.04, 0.00, 0.03, 0.02, 0.02, 0.01, 0.01}
	periods := make([]domain.Period, len(stocks))
	for i := range stocks {
		periods[i] = domain.Period{
			Label:  string(rune('A' + i)),
			Values: map[string]float64{"stocks": stocks[i], "bonds": bonds[i], domain.InflationKey: infl[i]},
		}
	}
	series, err := domain.NewReturnSeries(periods)
	require.NoError(t, err)
	return series
}

// uniformLifeTable has the same qx at every age.
func uniformLifeTable(startAge, ages int, q float64) *domain.LifeTable {
	qx := make([]float64, ages)
	for i := range qx {
		qx[i] = q
	}
	return &domain.LifeTable{Name: "uniform", StartAge: startAge, Qx: qx}
}

func baseConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Series:         marketSeries(t),
		LifeTable:      uniformLifeTable(60, 50, 0.05),
		Horizon:        30,
		Trials:         500,
		BlockSize:      1,
		Allocation:     domain.Allocation{"stocks": 0.6, "bonds": 0.4},
		Withdrawal:     domain.WithdrawalPolicy{Annual: 40000, Indexing: domain.IndexInflation},
		InitialBalance: 1000000,
		StartAge:       65,
		Seed:           12345,
		Workers:        4,
	}
}
