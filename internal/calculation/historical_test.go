package calculation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/outlive/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const returnsCSV = `year,Stocks,Bonds,Inflation
1990,-0.031,0.062,0.061
1991,0.305,0.150,0.031
1992,0.076,0.094,0.029
`

func TestLoadReturnSeriesCSV(t *testing.T) {
	series, err := LoadReturnSeriesCSV(strings.NewReader(returnsCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"bonds", "stocks"}, series.Assets)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, "1991", series.Periods[1].Label)
	assert.Equal(t, 0.305, series.Periods[1].Values["stocks"])
	assert.Equal(t, 0.029, series.Periods[2].Inflation())
}

func TestLoadReturnSeriesCSVErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		target error
	}{
		{"no inflation column", "year,stocks,bonds\n1990,0.1,0.05\n", domain.ErrConfiguration},
		{"missing value", "year,stocks,inflation\n1990,,0.02\n", domain.ErrDataGap},
		{"bad number", "year,stocks,inflation\n1990,abc,0.02\n", domain.ErrConfiguration},
		{"no rows", "year,stocks,inflation\n", domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReturnSeriesCSV(strings.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoadShillerCSV(t *testing.T) {
	data := `Date,P,D,CPI,RLONG
1900.01,100,0,50,4
1901.01,110,5,55,4.5
1902.01,99,4,55,5
1902.06,101,1,56,5.1
`
	series, err := LoadShillerCSV(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"bonds", "stocks"}, series.Assets)
	require.Equal(t, 2, series.Len())

	first := series.Periods[0]
	assert.Equal(t, "1901.01", first.Label)
	assert.InDelta(t, 15.0/110.0, first.Values["stocks"], 1e-12)
	assert.InDelta(t, 0.045, first.Values["bonds"], 1e-12)
	assert.InDelta(t, 5.0/55.0, first.Inflation(), 1e-12)

	second := series.Periods[1]
	assert.Equal(t, "1902.01", second.Label)
	assert.InDelta(t, -7.0/99.0, second.Values["stocks"], 1e-12)
	assert.Zero(t, second.Inflation())
}

func TestLoadShillerCSVDropsTrailingRow(t *testing.T) {
	data := "Date,P,D,CPI,RLONG\n1900.01,100,0,50,4\n1901.01,110,5,55,4.5\n"
	_, err := LoadShillerCSV(strings.NewReader(data))
	assert.ErrorIs(t, err, domain.ErrConfiguration, "two rows leave no complete period")
}

func TestLoadShillerCSVMissingColumn(t *testing.T) {
	_, err := LoadShillerCSV(strings.NewReader("Date,P,D,CPI\n1900.01,100,0,50\n"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadReturnSeriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, os.WriteFile(path, []byte(returnsCSV), 0o644))

	series, err := LoadReturnSeriesFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())

	_, err = LoadReturnSeriesFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
