package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/domain"
)

// ConsoleFormatter renders a plain text summary.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if report.IsEmpty() {
		fmt.Fprintln(&buf, "No results.")
		return buf.Bytes(), nil
	}
	if report.Result != nil {
		writeResult(&buf, report.Result, report.LifeTable)
	}
	if report.Savings != nil {
		if buf.Len() > 0 {
			fmt.Fprintln(&buf)
		}
		writeSavings(&buf, report.Savings)
	}
	if len(report.Sweep) > 0 {
		if buf.Len() > 0 {
			fmt.Fprintln(&buf)
		}
		writeSweep(&buf, report.Sweep)
	}
	if report.Sensitivity != nil {
		if buf.Len() > 0 {
			fmt.Fprintln(&buf)
		}
		writeSensitivity(&buf, report.Sensitivity)
	}
	return buf.Bytes(), nil
}

func writeResult(buf *bytes.Buffer, r *domain.SimulationResult, lifeTable string) {
	fmt.Fprintln(buf, "OUTLIVE RISK SUMMARY")
	fmt.Fprintln(buf, "================================")
	fmt.Fprintf(buf, "Initial balance:      %s\n", FormatMoney(r.InitialBalance))
	fmt.Fprintf(buf, "Withdrawal:           %s\n", describeWithdrawal(r.Withdrawal))
	if len(r.Allocation) > 0 {
		fmt.Fprintf(buf, "Allocation:           %s\n", calculation.AllocationLabel(r.Allocation))
	}
	if lifeTable != "" {
		fmt.Fprintf(buf, "Starting age:         %d (%s)\n", r.StartAge, lifeTable)
	} else {
		fmt.Fprintf(buf, "Starting age:         %d\n", r.StartAge)
	}
	fmt.Fprintf(buf, "Simulation:           %d trials, %d periods, block size %d, seed %d\n", r.Trials, r.Horizon, r.BlockSize, r.Seed)
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Probability of depletion:          %s\n", r.DepletionProbability.Percent())
	fmt.Fprintf(buf, "Probability of outliving savings:  %s\n", r.OutliveProbability.Percent())
	fmt.Fprintf(buf, "Expected shortfall:                %s\n", FormatEstimate(r.ExpectedShortfall))
	fmt.Fprintf(buf, "Insurance to cover a shortfall:    %s\n", FormatEstimate(r.RequiredInsurance))

	depleted := r.Distribution.Depleted()
	if depleted == 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "No trial ran out of money within the horizon.")
		return
	}
	p := r.DepletionPercentiles
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Depletion age among %d depleted trials: p10=%d p25=%d p50=%d p75=%d p90=%d\n",
		depleted, r.StartAge+p.P10, r.StartAge+p.P25, r.StartAge+p.P50, r.StartAge+p.P75, r.StartAge+p.P90)
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "%-8s %-5s %8s %9s %9s\n", "Period", "Age", "Trials", "Share", "Alive")
	for t, count := range r.Distribution.Counts {
		if count == 0 {
			continue
		}
		share := float64(count) / float64(r.Trials)
		fmt.Fprintf(buf, "%-8d %-5d %8d %9s %9s\n", t, r.StartAge+t, count, FormatPercentage(share), FormatPercentage(r.Survival[t]))
	}
	fmt.Fprintf(buf, "%-8s %-5s %8d %9s\n", "never", "-", r.Distribution.Never, FormatPercentage(float64(r.Distribution.Never)/float64(r.Trials)))
}

func writeSavings(buf *bytes.Buffer, s *calculation.SavingsTarget) {
	fmt.Fprintln(buf, "SAVINGS TARGET")
	fmt.Fprintln(buf, "================================")
	fmt.Fprintf(buf, "Acceptable risk:          %s\n", FormatPercentage(s.AcceptableRisk))
	fmt.Fprintf(buf, "Required initial balance: %s\n", FormatEstimate(s.InitialBalance))
	fmt.Fprintf(buf, "Outlive probability:      %s\n", s.Outlive.Percent())
	fmt.Fprintf(buf, "Search:                   %d estimates of %d trials, seed %d\n", s.Evaluations, s.Trials, s.Seed)
}

func writeSweep(buf *bytes.Buffer, points []calculation.SweepPoint) {
	fmt.Fprintln(buf, "BALANCE SWEEP")
	fmt.Fprintln(buf, "================================")
	label := ""
	for _, p := range points {
		if p.Label != label {
			label = p.Label
			fmt.Fprintf(buf, "%s\n", label)
		}
		fmt.Fprintf(buf, "  %18s  %s\n", FormatMoney(p.InitialBalance), p.Outlive.Percent())
	}
}

func writeSensitivity(buf *bytes.Buffer, a *calculation.SensitivityAnalysis) {
	fmt.Fprintln(buf, "SENSITIVITY")
	fmt.Fprintln(buf, "================================")
	if a.Base != nil {
		fmt.Fprintf(buf, "Base case:  %s at %s risk\n", FormatEstimate(a.Base.InitialBalance), FormatPercentage(a.Base.AcceptableRisk))
	}
	var factor calculation.SensitivityFactor
	for _, p := range a.Points {
		if p.Factor != factor {
			factor = p.Factor
			fmt.Fprintf(buf, "%s\n", factor)
		}
		fmt.Fprintf(buf, "  %-14s  %s\n", describeFactor(p.Factor, p.Value), FormatEstimate(p.Target.InitialBalance))
	}
}
