package calculation

import (
	"context"
	"testing"

	"github.com/rpgo/outlive/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateDepletesImmediatelyWhenFirstWithdrawalExceedsGrowth(t *testing.T) {
	series := singleAssetSeries(t, []float64{0.10, -0.10, 0.05}, []float64{0.02, 0.02, 0.02})
	cfg := Config{
		Series:         series,
		LifeTable:      uniformLifeTable(60, 40, 0.02),
		Horizon:        3,
		Trials:         200,
		BlockSize:      1,
		Allocation:     allStocks,
		Withdrawal:     domain.WithdrawalPolicy{Annual: 110, Indexing: domain.IndexInflation},
		InitialBalance: 100,
		StartAge:       65,
		Seed:           1,
	}

	result, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Distribution.Counts[0])
	assert.Equal(t, 0, result.Distribution.Never)
	assert.Equal(t, 1.0, result.DepletionProbability.Mean)
	assert.Equal(t, 1.0, result.OutliveProbability.Mean)
}

func TestEstimateIsReproducible(t *testing.T) {
	cfg := baseConfig(t)
	engine := NewMonteCarloEngine()

	cfg.Workers = 1
	serial, err := engine.Estimate(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := engine.Estimate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, serial.Outcomes, parallel.Outcomes)
	assert.Equal(t, serial.Distribution, parallel.Distribution)
	assert.Equal(t, serial.OutliveProbability, parallel.OutliveProbability)
	assert.Equal(t, serial.RequiredInsurance, parallel.RequiredInsurance)
}

func TestEstimateReportsGeneratedSeed(t *testing.T) {
	orig := seedFunc
	SetSeedFunc(func() uint64 { return 4242 })
	defer SetSeedFunc(orig)

	cfg := baseConfig(t)
	cfg.Seed = 0
	cfg.Trials = 50
	result, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), result.Seed)

	cfg.Seed = 4242
	again, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, result.Outcomes, again.Outcomes)
}

func TestEstimateMonotoneInBalance(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Trials = 1000
	cfg.BlockSize = 3
	engine := NewMonteCarloEngine()

	prevOutlive, prevDepletion := 2.0, 2.0
	for _, balance := range []float64{200000, 400000, 600000, 800000, 1200000, 2000000} {
		cfg.InitialBalance = balance
		result, err := engine.Estimate(context.Background(), cfg)
		require.NoError(t, err)

		assert.LessOrEqual(t, result.OutliveProbability.Mean, prevOutlive, "balance %.0f", balance)
		assert.LessOrEqual(t, result.DepletionProbability.Mean, prevDepletion, "balance %.0f", balance)
		prevOutlive = result.OutliveProbability.Mean
		prevDepletion = result.DepletionProbability.Mean
	}
}

func TestEstimateResultInvariants(t *testing.T) {
	cfg := baseConfig(t)
	cfg.InitialBalance = 600000
	result, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Trials, result.Distribution.Total())
	assert.Len(t, result.Distribution.Counts, cfg.Horizon)
	assert.Len(t, result.Survival, cfg.Horizon)
	assert.LessOrEqual(t, result.OutliveProbability.Mean, result.DepletionProbability.Mean)
	assert.GreaterOrEqual(t, result.OutliveProbability.Mean, 0.0)
	assert.LessOrEqual(t, result.DepletionProbability.Mean, 1.0)
	// amounts are in cents, so the product holds to about a cent
	insurance := result.RequiredInsurance.Amount.InexactFloat64()
	shortfall := result.ExpectedShortfall.Amount.InexactFloat64()
	assert.InDelta(t, result.OutliveProbability.Mean*insurance, shortfall, 1e-6*shortfall+0.011)

	p := result.DepletionPercentiles
	assert.LessOrEqual(t, p.P10, p.P25)
	assert.LessOrEqual(t, p.P25, p.P50)
	assert.LessOrEqual(t, p.P50, p.P75)
	assert.LessOrEqual(t, p.P75, p.P90)

	assert.Equal(t, cfg.StartAge, result.StartAge)
	assert.Equal(t, "600000.00", result.InitialBalance.StringFixed(2))
	assert.Equal(t, cfg.Seed, result.Seed)
}

func TestEstimateDefaultsHorizonToLifeTable(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Horizon = 0
	cfg.Trials = 20
	result, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
	require.NoError(t, err)
	// life table ages 60..109, starting at 65
	assert.Equal(t, 45, result.Horizon)
}

func TestEstimateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"zero trials", func(c *Config) { c.Trials = 0 }, domain.ErrConfiguration},
		{"allocation sum", func(c *Config) { c.Allocation = domain.Allocation{"stocks": 0.5, "bonds": 0.4} }, domain.ErrConfiguration},
		{"unknown asset", func(c *Config) { c.Allocation = domain.Allocation{"gold": 1} }, domain.ErrConfiguration},
		{"negative withdrawal", func(c *Config) { c.Withdrawal.Annual = -1 }, domain.ErrConfiguration},
		{"start age outside table", func(c *Config) { c.StartAge = 30 }, domain.ErrConfiguration},
		{"missing life table", func(c *Config) { c.LifeTable = nil }, domain.ErrConfiguration},
		{"missing series", func(c *Config) { c.Series = nil }, domain.ErrConfiguration},
		{"negative block size", func(c *Config) { c.BlockSize = -2 }, domain.ErrConfiguration},
		{"block longer than history", func(c *Config) { c.BlockSize = 100 }, domain.ErrDataGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(t)
			tt.mutate(&cfg)

			assert.ErrorIs(t, cfg.withDefaults().Validate(), tt.target)

			result, err := NewMonteCarloEngine().Estimate(context.Background(), cfg)
			assert.ErrorIs(t, err, tt.target)
			assert.Nil(t, result)
		})
	}
}

func TestEstimateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewMonteCarloEngine().Estimate(ctx, baseConfig(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestSetLoggerNilRestoresNop(t *testing.T) {
	engine := NewMonteCarloEngine()
	engine.SetLogger(nil)
	assert.Equal(t, NopLogger{}, engine.Logger)
}
