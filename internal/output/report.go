package output

import (
	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/domain"
)

// Report is everything a command produced. Formatters render whichever
// sections are present.
type Report struct {
	LifeTable   string                           `json:"life_table,omitempty"`
	Result      *domain.SimulationResult         `json:"result,omitempty"`
	Savings     *calculation.SavingsTarget       `json:"savings,omitempty"`
	Sweep       []calculation.SweepPoint         `json:"sweep,omitempty"`
	Sensitivity *calculation.SensitivityAnalysis `json:"sensitivity,omitempty"`
}

// IsEmpty reports whether the report has nothing to render.
func (r *Report) IsEmpty() bool {
	return r == nil || (r.Result == nil && r.Savings == nil && len(r.Sweep) == 0 && r.Sensitivity == nil)
}
