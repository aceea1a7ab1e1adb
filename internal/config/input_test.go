package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpgo/outlive/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `retiree:
  starting_age: 67
  initial_balance: 850000.50
withdrawal:
  annual: 38000
allocation:
  stocks: 0.55
  bonds: 0.45
data:
  returns_file: returns.csv
  life_table_file: tables/life.csv
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "outlive.yaml", minimalYAML)

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 67, config.Retiree.StartingAge)
	assert.True(t, config.Retiree.InitialBalance.Equal(decimal.RequireFromString("850000.50")))
	assert.True(t, config.Withdrawal.Annual.Equal(decimal.NewFromInt(38000)))
	assert.True(t, config.Allocation["bonds"].Equal(decimal.RequireFromString("0.45")))
	assert.Equal(t, filepath.Join(dir, "returns.csv"), config.Data.ReturnsFile)
	assert.Equal(t, filepath.Join(dir, "tables", "life.csv"), config.Data.LifeTableFile)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "outlive.yml", minimalYAML)

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, config.Simulation.Trials)
	assert.Equal(t, 1, config.Simulation.BlockSize)
	assert.Zero(t, config.Simulation.Horizon)
	assert.Equal(t, "inflation", config.Withdrawal.Indexing)
	assert.Equal(t, "series", config.Data.ReturnsFormat)
	assert.Equal(t, 0.01, config.Savings.AcceptableRisk)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Output.Format)
}

func TestLoadFromFile_TOML(t *testing.T) {
	content := `[simulation]
trials = 250
block_size = 3
seed = 99

[retiree]
starting_age = 62
initial_balance = "1200000"

[withdrawal]
annual = 45000
indexing = "fixed"

[allocation]
stocks = 0.7
bonds = 0.3

[data]
returns_file = "/data/shiller.csv"
returns_format = "shiller"
life_table_file = "/data/life.csv"
`
	path := writeFile(t, t.TempDir(), "outlive.toml", content)

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250, config.Simulation.Trials)
	assert.Equal(t, 3, config.Simulation.BlockSize)
	assert.Equal(t, uint64(99), config.Simulation.Seed)
	assert.True(t, config.Retiree.InitialBalance.Equal(decimal.NewFromInt(1200000)))
	assert.True(t, config.Withdrawal.Annual.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, "fixed", config.Withdrawal.Indexing)
	assert.True(t, config.Allocation["stocks"].Equal(decimal.RequireFromString("0.7")))
	assert.Equal(t, "shiller", config.Data.ReturnsFormat)
	assert.Equal(t, "/data/shiller.csv", config.Data.ReturnsFile)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()
	config, err := parser.LoadFromFile("nonexistent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "retiree:\n\tstarting_age: [\n")

	config, err := NewInputParser().LoadFromFile(path)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Configuration)
		contains string
	}{
		{
			name: "allocation does not sum to one",
			mutate: func(c *domain.Configuration) {
				c.Allocation = map[string]decimal.Decimal{"stocks": decimal.RequireFromString("0.5"), "bonds": decimal.RequireFromString("0.4")}
			},
			contains: "weights sum to 0.9",
		},
		{
			name: "negative weight",
			mutate: func(c *domain.Configuration) {
				c.Allocation = map[string]decimal.Decimal{"stocks": decimal.RequireFromString("1.2"), "bonds": decimal.RequireFromString("-0.2")}
			},
			contains: "must be within [0,1]",
		},
		{
			name:     "inflation as asset",
			mutate:   func(c *domain.Configuration) { c.Allocation = map[string]decimal.Decimal{domain.InflationKey: decimal.NewFromInt(1)} },
			contains: "not an investable asset",
		},
		{
			name:     "missing allocation",
			mutate:   func(c *domain.Configuration) { c.Allocation = nil },
			contains: "allocation: is required",
		},
		{
			name:     "negative trials",
			mutate:   func(c *domain.Configuration) { c.Simulation.Trials = -5 },
			contains: "simulation.trials",
		},
		{
			name:     "unknown indexing",
			mutate:   func(c *domain.Configuration) { c.Withdrawal.Indexing = "cpi" },
			contains: "must be one of: inflation, fixed",
		},
		{
			name:     "missing returns file",
			mutate:   func(c *domain.Configuration) { c.Data.ReturnsFile = "" },
			contains: "data.returns_file: is required",
		},
		{
			name:     "acceptable risk out of range",
			mutate:   func(c *domain.Configuration) { c.Savings.AcceptableRisk = 1.5 },
			contains: "savings.acceptable_risk",
		},
		{
			name:     "negative withdrawal",
			mutate:   func(c *domain.Configuration) { c.Withdrawal.Annual = decimal.NewFromInt(-1) },
			contains: "withdrawal.annual",
		},
		{
			name: "bad sweep allocation",
			mutate: func(c *domain.Configuration) {
				c.Sweep.Allocations = append(c.Sweep.Allocations, map[string]decimal.Decimal{"stocks": decimal.RequireFromString("0.3")})
			},
			contains: "sweep.allocations[3]",
		},
		{
			name:     "negative sweep balance",
			mutate:   func(c *domain.Configuration) { c.Sweep.Balances[1] = decimal.NewFromInt(-10) },
			contains: "sweep.balances[1]",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := parser.CreateExampleConfiguration()
			tt.mutate(config)

			err := parser.ValidateConfiguration(config)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidateConfiguration_AllowsZeroBalance(t *testing.T) {
	parser := NewInputParser()
	config := parser.CreateExampleConfiguration()
	config.Retiree.InitialBalance = decimal.Zero
	assert.NoError(t, parser.ValidateConfiguration(config))
}

func TestCreateExampleConfiguration(t *testing.T) {
	parser := NewInputParser()
	config := parser.CreateExampleConfiguration()

	require.NoError(t, parser.ValidateConfiguration(config))
	assert.Equal(t, 10000, config.Simulation.Trials)
	assert.Len(t, config.Allocation, 2)
	assert.Len(t, config.Sweep.Allocations, 3)
}

func TestWriteExampleConfiguration_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.yaml")

	parser := NewInputParser()
	require.NoError(t, parser.WriteExampleConfiguration(path))

	config, err := parser.LoadFromFile(path)
	require.NoError(t, err)

	example := parser.CreateExampleConfiguration()
	assert.Equal(t, example.Simulation, config.Simulation)
	assert.True(t, example.Retiree.InitialBalance.Equal(config.Retiree.InitialBalance))
	assert.True(t, example.Allocation["stocks"].Equal(config.Allocation["stocks"]))
	assert.Len(t, config.Sweep.Balances, len(example.Sweep.Balances))
	assert.Equal(t, filepath.Join(dir, "data", "returns.csv"), config.Data.ReturnsFile)
}
