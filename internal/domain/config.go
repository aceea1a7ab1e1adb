package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Configuration is the file model for one outlive run. Money amounts and
// weights are decimals so that the file is read without rounding.
type Configuration struct {
	Simulation  SimulationSettings         `yaml:"simulation" toml:"simulation" json:"simulation"`
	Retiree     RetireeDetails             `yaml:"retiree" toml:"retiree" json:"retiree"`
	Withdrawal  WithdrawalSettings         `yaml:"withdrawal" toml:"withdrawal" json:"withdrawal"`
	Allocation  map[string]decimal.Decimal `yaml:"allocation" toml:"allocation" json:"allocation" validate:"required,min=1"`
	Data        DataSources                `yaml:"data" toml:"data" json:"data"`
	Savings     SavingsSettings            `yaml:"savings,omitempty" toml:"savings" json:"savings"`
	Sweep       SweepSettings              `yaml:"sweep,omitempty" toml:"sweep" json:"sweep"`
	Sensitivity SensitivitySettings        `yaml:"sensitivity,omitempty" toml:"sensitivity" json:"sensitivity"`
	Logging     LoggingConfig              `yaml:"logging,omitempty" toml:"logging" json:"logging"`
	Output      OutputConfig               `yaml:"output,omitempty" toml:"output" json:"output"`
}

// SimulationSettings controls the Monte Carlo run.
type SimulationSettings struct {
	Trials int `yaml:"trials" toml:"trials" json:"trials" default:"1000" validate:"gte=1"`
	// Horizon in periods; zero derives it from the life table.
	Horizon   int    `yaml:"horizon,omitempty" toml:"horizon" json:"horizon" validate:"gte=0"`
	BlockSize int    `yaml:"block_size" toml:"block_size" json:"block_size" default:"1" validate:"gte=1"`
	Seed      uint64 `yaml:"seed,omitempty" toml:"seed" json:"seed"`
	Workers   int    `yaml:"workers,omitempty" toml:"workers" json:"workers" validate:"gte=0"`
}

// RetireeDetails describes the person and their savings.
type RetireeDetails struct {
	StartingAge int `yaml:"starting_age" toml:"starting_age" json:"starting_age" default:"65" validate:"gte=0,lte=130"`
	// BirthDate, when set, replaces StartingAge with the age at AsOf (or
	// today when AsOf is unset).
	BirthDate      time.Time       `yaml:"birth_date,omitempty" toml:"birth_date" json:"birth_date,omitempty"`
	AsOf           time.Time       `yaml:"as_of,omitempty" toml:"as_of" json:"as_of,omitempty"`
	InitialBalance decimal.Decimal `yaml:"initial_balance" toml:"initial_balance" json:"initial_balance"`
}

// WithdrawalSettings is the file form of WithdrawalPolicy.
type WithdrawalSettings struct {
	Annual   decimal.Decimal `yaml:"annual" toml:"annual" json:"annual"`
	Indexing string          `yaml:"indexing" toml:"indexing" json:"indexing" default:"inflation" validate:"oneof=inflation fixed"`
}

// DataSources locates the historical returns and the life table.
type DataSources struct {
	ReturnsFile   string `yaml:"returns_file" toml:"returns_file" json:"returns_file" validate:"required"`
	ReturnsFormat string `yaml:"returns_format" toml:"returns_format" json:"returns_format" default:"series" validate:"oneof=series shiller"`
	// From and To restrict the series to a labelled window, inclusive.
	From          string `yaml:"from,omitempty" toml:"from" json:"from,omitempty"`
	To            string `yaml:"to,omitempty" toml:"to" json:"to,omitempty"`
	LifeTableFile string `yaml:"life_table_file" toml:"life_table_file" json:"life_table_file" validate:"required"`
}

// SavingsSettings configures the savings target search.
type SavingsSettings struct {
	AcceptableRisk float64 `yaml:"acceptable_risk" toml:"acceptable_risk" json:"acceptable_risk" default:"0.01" validate:"gt=0,lt=1"`
}

// SweepSettings configures the balance sweep.
type SweepSettings struct {
	Balances    []decimal.Decimal            `yaml:"balances,omitempty" toml:"balances" json:"balances,omitempty"`
	Allocations []map[string]decimal.Decimal `yaml:"allocations,omitempty" toml:"allocations" json:"allocations,omitempty"`
}

// SensitivitySettings lists the values tried for each factor of the
// sensitivity analysis. Factors limits the analysis to the named factors; a
// factor without values is varied around the base case.
type SensitivitySettings struct {
	Factors         []string          `yaml:"factors,omitempty" toml:"factors" json:"factors,omitempty" validate:"dive,oneof=stock_fraction acceptable_risk withdrawal starting_age"`
	StockFractions  []float64         `yaml:"stock_fractions,omitempty" toml:"stock_fractions" json:"stock_fractions,omitempty" validate:"dive,gte=0,lte=1"`
	AcceptableRisks []float64         `yaml:"acceptable_risks,omitempty" toml:"acceptable_risks" json:"acceptable_risks,omitempty" validate:"dive,gt=0,lt=1"`
	Withdrawals     []decimal.Decimal `yaml:"withdrawals,omitempty" toml:"withdrawals" json:"withdrawals,omitempty"`
	StartingAges    []int             `yaml:"starting_ages,omitempty" toml:"starting_ages" json:"starting_ages,omitempty" validate:"dive,gte=0,lte=130"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" toml:"level" json:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" toml:"format" json:"format" default:"console" validate:"oneof=json console"`
	OutputFile string `yaml:"output_file,omitempty" toml:"output_file" json:"output_file,omitempty"`
}

// OutputConfig selects the report formatter.
type OutputConfig struct {
	Format string `yaml:"format,omitempty" toml:"format" json:"format" default:"console"`
}

// AllocationFromDecimals converts file weights to an Allocation.
func AllocationFromDecimals(weights map[string]decimal.Decimal) Allocation {
	a := make(Allocation, len(weights))
	for k, w := range weights {
		a[k] = w.InexactFloat64()
	}
	return a
}
