package calculation

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/rpgo/outlive/internal/domain"
	money "github.com/rpgo/outlive/pkg/decimal"
	"golang.org/x/sync/errgroup"
)

// Config holds everything one Monte Carlo estimate needs. Series and
// LifeTable are borrowed read-only for the duration of the run.
type Config struct {
	Series    *domain.ReturnSeries
	LifeTable *domain.LifeTable

	// Horizon is the number of simulated periods; zero means through the
	// life table's terminal age.
	Horizon   int
	Trials    int
	BlockSize int

	Allocation     domain.Allocation
	Withdrawal     domain.WithdrawalPolicy
	InitialBalance float64
	StartAge       int

	// Seed keys the seed stream; zero draws a fresh seed which is reported
	// back in the result.
	Seed uint64
	// Workers bounds trial concurrency; zero uses GOMAXPROCS.
	Workers int
}

// withDefaults fills derived and optional settings.
func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = 1
	}
	if c.Horizon == 0 && c.LifeTable != nil && len(c.LifeTable.Qx) > 0 {
		c.Horizon = RemainingHorizon(c.LifeTable, c.StartAge)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Withdrawal.Indexing == "" {
		c.Withdrawal.Indexing = domain.IndexInflation
	}
	return c
}

// Validate checks the whole configuration before any trial runs.
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return domain.NewConfigurationError("trials", "must be positive, got %d", c.Trials)
	}
	if c.Series == nil {
		return domain.NewConfigurationError("series", "historical return series is required")
	}
	if err := c.Series.Validate(); err != nil {
		return err
	}
	if err := c.Allocation.Validate(); err != nil {
		return err
	}
	for _, asset := range c.Allocation.Assets() {
		if !c.Series.HasAsset(asset) {
			return domain.NewConfigurationError("allocation", "asset %q is not in the return series %v", asset, c.Series.Assets)
		}
	}
	if err := c.Withdrawal.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.InitialBalance) || math.IsInf(c.InitialBalance, 0) {
		return domain.NewConfigurationError("initial_balance", "must be finite, got %v", c.InitialBalance)
	}
	if err := c.LifeTable.Validate(); err != nil {
		return err
	}
	if !c.LifeTable.Covers(c.StartAge) {
		return domain.NewConfigurationError("starting_age", "age %d is outside the life table (%d..%d)", c.StartAge, c.LifeTable.StartAge, c.LifeTable.TerminalAge())
	}
	if c.Horizon < 1 {
		return domain.NewConfigurationError("horizon", "must be at least 1, got %d", c.Horizon)
	}
	if c.BlockSize < 1 {
		return domain.NewConfigurationError("block_size", "must be at least 1, got %d", c.BlockSize)
	}
	if c.BlockSize > c.Series.Len() {
		return &domain.DataGapError{
			Subject:   "return series",
			Requested: fmt.Sprintf("blocks of %d periods", c.BlockSize),
			Available: fmt.Sprintf("%d periods", c.Series.Len()),
		}
	}
	return nil
}

// MonteCarloEngine drives the sampler and the portfolio simulator across
// many independent trials.
type MonteCarloEngine struct {
	Logger Logger
}

// NewMonteCarloEngine creates an engine with a no-op logger.
func NewMonteCarloEngine() *MonteCarloEngine {
	return &MonteCarloEngine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger; nil restores the no-op logger.
func (e *MonteCarloEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// Estimate runs cfg.Trials trials and summarizes them against the survival
// curve. Trial i always draws from the i-th generator of the seed stream and
// lands in slot i, so the outcome distribution is identical for identical
// configurations regardless of scheduling. Any error aborts the run and no
// partial result is returned.
func (e *MonteCarloEngine) Estimate(ctx context.Context, cfg Config) (*domain.SimulationResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	survival, err := SurvivalProbability(cfg.LifeTable, cfg.StartAge, cfg.Horizon)
	if err != nil {
		return nil, err
	}

	stream := NewSeedStream(cfg.Seed)
	e.Logger.Debugf("monte carlo: %d trials, horizon %d, block size %d, seed %d, %d workers",
		cfg.Trials, cfg.Horizon, cfg.BlockSize, stream.Seed, cfg.Workers)

	outcomes := make([]domain.TrialOutcome, cfg.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Trials; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			trial, err := Sample(cfg.Series, cfg.Horizon, cfg.BlockSize, stream.Trial(i))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			outcome, err := RunTrial(trial, cfg.InitialBalance, cfg.Allocation, cfg.Withdrawal)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.Logger.Errorf("monte carlo aborted: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := Summarize(outcomes, survival)
	if err != nil {
		return nil, err
	}
	result.BlockSize = cfg.BlockSize
	result.StartAge = cfg.StartAge
	result.Seed = stream.Seed
	result.InitialBalance = money.Cents(cfg.InitialBalance)
	result.Withdrawal = cfg.Withdrawal
	result.Allocation = cfg.Allocation

	e.Logger.Infof("monte carlo: depletion %s, outlive %s, insurance %s",
		result.DepletionProbability.Percent(), result.OutliveProbability.Percent(), result.RequiredInsurance.Format())
	return result, nil
}
