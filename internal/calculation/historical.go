package calculation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rpgo/outlive/internal/domain"
)

// LoadReturnSeriesFile loads a return series CSV from disk.
func LoadReturnSeriesFile(filePath string) (*domain.ReturnSeries, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	series, err := LoadReturnSeriesCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load return series %s: %w", filePath, err)
	}
	return series, nil
}

// LoadShillerFile loads Shiller-style market data from disk.
func LoadShillerFile(filePath string) (*domain.ReturnSeries, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	series, err := LoadShillerCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load shiller data %s: %w", filePath, err)
	}
	return series, nil
}

// LoadReturnSeriesCSV reads a table whose first column labels the period and
// whose remaining columns are asset returns plus an inflation column, all as
// fractions (0.05 is five percent).
func LoadReturnSeriesCSV(r io.Reader) (*domain.ReturnSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 3 {
		return nil, domain.NewConfigurationError("series", "expected a period column, at least one asset and %s", domain.InflationKey)
	}
	columns := make([]string, len(header))
	hasInflation := false
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
		if i > 0 && columns[i] == domain.InflationKey {
			hasInflation = true
		}
	}
	if !hasInflation {
		return nil, domain.NewConfigurationError("series", "header has no %q column", domain.InflationKey)
	}

	var periods []domain.Period
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row %d: %w", line, err)
		}
		period := domain.Period{Label: strings.TrimSpace(record[0]), Values: make(map[string]float64, len(columns)-1)}
		for i := 1; i < len(columns); i++ {
			v, err := parseCell(record, i, columns[i], period.Label)
			if err != nil {
				return nil, err
			}
			period.Values[columns[i]] = v
		}
		periods = append(periods, period)
	}
	return domain.NewReturnSeries(periods)
}

// LoadShillerCSV derives a series from Shiller's market table with columns
// Date, P (price), D (dividend), CPI and RLONG (long rate, percent). Stock
// return is (P - P_prev + D) / P, bond return is RLONG / 100 and inflation is
// (CPI - CPI_prev) / CPI. The first row only seeds the differences and the
// last row, a partial year in the published table, is dropped.
func LoadShillerCSV(r io.Reader) (*domain.ReturnSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"DATE", "P", "D", "CPI", "RLONG"} {
		if _, ok := col[name]; !ok {
			return nil, domain.NewConfigurationError("series", "shiller data has no %q column", name)
		}
	}

	var periods []domain.Period
	var prevPrice, prevCPI float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row %d: %w", line, err)
		}
		label := strings.TrimSpace(record[col["DATE"]])
		price, err := parseCell(record, col["P"], "P", label)
		if err != nil {
			return nil, err
		}
		div, err := parseCell(record, col["D"], "D", label)
		if err != nil {
			return nil, err
		}
		cpi, err := parseCell(record, col["CPI"], "CPI", label)
		if err != nil {
			return nil, err
		}
		rlong, err := parseCell(record, col["RLONG"], "RLONG", label)
		if err != nil {
			return nil, err
		}
		if price == 0 || cpi == 0 {
			return nil, domain.NewConfigurationError("series", "period %s has zero price or CPI", label)
		}
		if line > 2 {
			periods = append(periods, domain.Period{
				Label: label,
				Values: map[string]float64{
					"stocks":            (price - prevPrice + div) / price,
					"bonds":             rlong / 100,
					domain.InflationKey: (cpi - prevCPI) / cpi,
				},
			})
		}
		prevPrice, prevCPI = price, cpi
	}
	if len(periods) > 0 {
		periods = periods[:len(periods)-1]
	}
	return domain.NewReturnSeries(periods)
}

// parseCell reads a numeric cell; a blank or absent cell is a data gap.
func parseCell(record []string, i int, column, label string) (float64, error) {
	if i >= len(record) || strings.TrimSpace(record[i]) == "" {
		return 0, &domain.DataGapError{Subject: "return series", Requested: fmt.Sprintf("%s in period %s", column, label), Available: "missing value"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
	if err != nil {
		return 0, domain.NewConfigurationError("series", "period %s column %s: %v", label, column, err)
	}
	return v, nil
}
