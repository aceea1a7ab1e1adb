package calculation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rpgo/outlive/internal/domain"
)

// LoadLifeTableFile loads a life table CSV from disk, naming it after the file.
func LoadLifeTableFile(filePath string) (*domain.LifeTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	table, err := LoadLifeTableCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load life table %s: %w", filePath, err)
	}
	table.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return table, nil
}

// LoadLifeTableCSV reads a life table with an age column and either a qx
// column (probability of dying within the year) or an lx survivorship column.
// Age labels such as "0-1" or "100 and over" are read by their leading
// number, and ages must be consecutive.
func LoadLifeTableCSV(r io.Reader) (*domain.LifeTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	ageCol, qxCol, lxCol := 0, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "age":
			ageCol = i
		case "qx":
			qxCol = i
		case "lx":
			lxCol = i
		}
	}
	valueCol := qxCol
	if valueCol < 0 {
		valueCol = lxCol
	}
	if valueCol < 0 {
		return nil, domain.NewConfigurationError("life_table", "header needs a qx or lx column")
	}

	var ages []int
	var values []float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row %d: %w", line, err)
		}
		if ageCol >= len(record) {
			continue
		}
		age, ok := leadingInt(record[ageCol])
		if !ok {
			continue // footnote rows
		}
		if valueCol >= len(record) {
			return nil, domain.NewConfigurationError("life_table", "row %d has %d columns", line, len(record))
		}
		cell := strings.TrimSpace(record[valueCol])
		if cell == "" {
			return nil, &domain.DataGapError{Subject: "life table", Requested: fmt.Sprintf("age %d", age), Available: "missing value"}
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, domain.NewConfigurationError("life_table", "age %d: %v", age, err)
		}
		if len(ages) > 0 && age != ages[len(ages)-1]+1 {
			return nil, &domain.DataGapError{
				Subject:   "life table",
				Requested: fmt.Sprintf("age %d", ages[len(ages)-1]+1),
				Available: fmt.Sprintf("next row is age %d", age),
			}
		}
		ages = append(ages, age)
		values = append(values, v)
	}
	if len(ages) == 0 {
		return nil, domain.NewConfigurationError("life_table", "no rows")
	}

	qx := values
	if qxCol < 0 {
		qx = survivorshipToQx(values)
	}
	table := &domain.LifeTable{StartAge: ages[0], Qx: qx}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// survivorshipToQx converts lx counts to one-year death probabilities; the
// last age is certain death.
func survivorshipToQx(lx []float64) []float64 {
	qx := make([]float64, len(lx))
	for i := range lx {
		switch {
		case i == len(lx)-1 || lx[i] <= 0:
			qx[i] = 1
		default:
			qx[i] = 1 - lx[i+1]/lx[i]
		}
	}
	return qx
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, false
	}
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
