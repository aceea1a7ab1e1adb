package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/domain"
)

// CSVFormatter exports each report section as its own CSV table, separated
// by a blank line.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	sections := 0
	next := func() {
		if sections > 0 {
			w.Flush()
			buf.WriteByte('\n')
		}
		sections++
	}

	if report != nil && report.Result != nil {
		next()
		if err := writeHistogram(w, report.Result); err != nil {
			return nil, err
		}
	}
	if report != nil && report.Savings != nil {
		next()
		if err := writeSavingsCSV(w, report.Savings); err != nil {
			return nil, err
		}
	}
	if report != nil && len(report.Sweep) > 0 {
		next()
		if err := writeSweepCSV(w, report.Sweep); err != nil {
			return nil, err
		}
	}
	if report != nil && report.Sensitivity != nil {
		next()
		if err := writeSensitivityCSV(w, report.Sensitivity); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func writeHistogram(w *csv.Writer, r *domain.SimulationResult) error {
	if err := w.Write([]string{"period", "age", "depleted", "share", "survival"}); err != nil {
		return err
	}
	for t, count := range r.Distribution.Counts {
		row := []string{
			intToString(t),
			intToString(r.StartAge + t),
			intToString(count),
			floatToString(float64(count) / float64(r.Trials)),
			floatToString(r.Survival[t]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Write([]string{"never", "", intToString(r.Distribution.Never), floatToString(float64(r.Distribution.Never) / float64(r.Trials)), ""})
}

func writeSavingsCSV(w *csv.Writer, s *calculation.SavingsTarget) error {
	if err := w.Write([]string{"acceptable_risk", "initial_balance", "balance_std_err", "outlive_probability", "std_dev", "trials", "evaluations", "seed"}); err != nil {
		return err
	}
	return w.Write([]string{
		floatToString(s.AcceptableRisk),
		s.InitialBalance.Amount.StringFixed(2),
		s.InitialBalance.StdErr.StringFixed(2),
		floatToString(s.Outlive.Mean),
		floatToString(s.Outlive.StdDev),
		intToString(s.Trials),
		intToString(s.Evaluations),
		strconv.FormatUint(s.Seed, 10),
	})
}

func writeSweepCSV(w *csv.Writer, points []calculation.SweepPoint) error {
	if err := w.Write([]string{"allocation", "initial_balance", "outlive_probability", "std_dev"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			p.Label,
			p.InitialBalance.StringFixed(2),
			floatToString(p.Outlive.Mean),
			floatToString(p.Outlive.StdDev),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeSensitivityCSV writes the base case as a row with an empty factor.
func writeSensitivityCSV(w *csv.Writer, a *calculation.SensitivityAnalysis) error {
	if err := w.Write([]string{"factor", "value", "initial_balance", "std_err", "outlive_probability", "trials"}); err != nil {
		return err
	}
	row := func(factor, value string, t *calculation.SavingsTarget) []string {
		return []string{
			factor,
			value,
			t.InitialBalance.Amount.StringFixed(2),
			t.InitialBalance.StdErr.StringFixed(2),
			floatToString(t.Outlive.Mean),
			intToString(t.Trials),
		}
	}
	if a.Base != nil {
		if err := w.Write(row("base", "", a.Base)); err != nil {
			return err
		}
	}
	for _, p := range a.Points {
		if err := w.Write(row(string(p.Factor), floatToString(p.Value), p.Target)); err != nil {
			return err
		}
	}
	return nil
}

func intToString(v int) string { return strconv.Itoa(v) }

func floatToString(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
