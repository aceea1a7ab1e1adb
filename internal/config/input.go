package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rpgo/outlive/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// weightTolerance is the allowed distance of an allocation sum from 1.
var weightTolerance = decimal.NewFromFloat(domain.WeightTolerance)

// InputParser handles parsing of input configuration files
type InputParser struct {
	validate *validator.Validate
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &InputParser{validate: v}
}

// LoadFromFile loads configuration from a YAML or TOML file. Data file paths
// are resolved relative to the configuration file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if _, err := toml.DecodeFile(filename, &config); err != nil {
			return nil, fmt.Errorf("failed to decode TOML %s: %w", filename, err)
		}
	default:
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	dir := filepath.Dir(filename)
	config.Data.ReturnsFile = resolvePath(dir, config.Data.ReturnsFile)
	config.Data.LifeTableFile = resolvePath(dir, config.Data.LifeTableFile)

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// ValidateConfiguration applies defaults to unset fields, then validates the
// configuration. Every failure is a *domain.ConfigurationError.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config == nil {
		return domain.NewConfigurationError("", "configuration is nil")
	}
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ip.validate.Struct(config); err != nil {
		return fieldError(err)
	}

	if r := config.Retiree; !r.BirthDate.IsZero() {
		asOf := r.AsOf
		if asOf.IsZero() {
			asOf = nowFunc()
		}
		if r.BirthDate.After(asOf) {
			return domain.NewConfigurationError("retiree.birth_date", "%s is after as_of %s", r.BirthDate.Format("2006-01-02"), asOf.Format("2006-01-02"))
		}
	}
	if config.Withdrawal.Annual.IsNegative() {
		return domain.NewConfigurationError("withdrawal.annual", "cannot be negative, got %s", config.Withdrawal.Annual)
	}
	if err := validateWeights("allocation", config.Allocation); err != nil {
		return err
	}
	for i, alloc := range config.Sweep.Allocations {
		if err := validateWeights(fmt.Sprintf("sweep.allocations[%d]", i), alloc); err != nil {
			return err
		}
	}
	for i, b := range config.Sweep.Balances {
		if b.IsNegative() {
			return domain.NewConfigurationError(fmt.Sprintf("sweep.balances[%d]", i), "cannot be negative, got %s", b)
		}
	}
	for i, w := range config.Sensitivity.Withdrawals {
		if !w.IsPositive() {
			return domain.NewConfigurationError(fmt.Sprintf("sensitivity.withdrawals[%d]", i), "must be positive, got %s", w)
		}
	}
	return nil
}

// validateWeights checks weights in decimal so that the sum is exact.
func validateWeights(field string, weights map[string]decimal.Decimal) error {
	if len(weights) == 0 {
		return domain.NewConfigurationError(field, "no asset weights provided")
	}
	sum := decimal.Zero
	for asset, w := range weights {
		if asset == domain.InflationKey {
			return domain.NewConfigurationError(field, "%q is not an investable asset", domain.InflationKey)
		}
		if w.IsNegative() || w.GreaterThan(decimal.NewFromInt(1)) {
			return domain.NewConfigurationError(field, "weight for %q must be within [0,1], got %s", asset, w)
		}
		sum = sum.Add(w)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightTolerance) {
		return domain.NewConfigurationError(field, "weights sum to %s, expected 1", sum)
	}
	return nil
}

// fieldError reports the first validator failure as a ConfigurationError.
func fieldError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return domain.NewConfigurationError("", "%v", err)
	}
	fe := validationErrors[0]
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Configuration."))
	switch fe.Tag() {
	case "required":
		return domain.NewConfigurationError(field, "is required")
	case "min", "gte":
		return domain.NewConfigurationError(field, "must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return domain.NewConfigurationError(field, "must be at most %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return domain.NewConfigurationError(field, "must be greater than %s, got %v", fe.Param(), fe.Value())
	case "lt":
		return domain.NewConfigurationError(field, "must be less than %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return domain.NewConfigurationError(field, "must be one of: %s, got %v", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return domain.NewConfigurationError(field, "failed validation: %s", fe.Tag())
	}
}

// CreateExampleConfiguration creates an example configuration file
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Simulation: domain.SimulationSettings{
			Trials:    10000,
			BlockSize: 5,
			Seed:      20240101,
		},
		Retiree: domain.RetireeDetails{
			StartingAge:    65,
			InitialBalance: decimal.NewFromInt(1000000),
		},
		Withdrawal: domain.WithdrawalSettings{
			Annual:   decimal.NewFromInt(40000),
			Indexing: string(domain.IndexInflation),
		},
		Allocation: map[string]decimal.Decimal{
			"stocks": decimal.RequireFromString("0.6"),
			"bonds":  decimal.RequireFromString("0.4"),
		},
		Data: domain.DataSources{
			ReturnsFile:   "data/returns.csv",
			ReturnsFormat: "series",
			LifeTableFile: "data/life_table.csv",
		},
		Savings: domain.SavingsSettings{
			AcceptableRisk: 0.01,
		},
		Sweep: domain.SweepSettings{
			Balances: []decimal.Decimal{
				decimal.NewFromInt(500000),
				decimal.NewFromInt(750000),
				decimal.NewFromInt(1000000),
				decimal.NewFromInt(1250000),
				decimal.NewFromInt(1500000),
			},
			Allocations: []map[string]decimal.Decimal{
				{"stocks": decimal.NewFromInt(1)},
				{"stocks": decimal.RequireFromString("0.6"), "bonds": decimal.RequireFromString("0.4")},
				{"stocks": decimal.RequireFromString("0.3"), "bonds": decimal.RequireFromString("0.7")},
			},
		},
		Logging: domain.LoggingConfig{Level: "info", Format: "console"},
		Output:  domain.OutputConfig{Format: "console"},
	}
}

// WriteExampleConfiguration writes the example configuration as YAML.
func (ip *InputParser) WriteExampleConfiguration(filename string) error {
	data, err := yaml.Marshal(ip.CreateExampleConfiguration())
	if err != nil {
		return fmt.Errorf("failed to marshal example configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
