package domain

import (
	"fmt"
	"math"
)

// LifeTable holds one-period death probabilities (qx) by integer age,
// starting at StartAge. Anyone alive past the terminal age is assumed dead.
type LifeTable struct {
	Name     string    `json:"name,omitempty"`
	StartAge int       `json:"start_age"`
	Qx       []float64 `json:"qx"`
}

// TerminalAge is the last age covered by the table.
func (lt *LifeTable) TerminalAge() int { return lt.StartAge + len(lt.Qx) - 1 }

// Covers reports whether age falls inside the table.
func (lt *LifeTable) Covers(age int) bool {
	return age >= lt.StartAge && age <= lt.TerminalAge()
}

// DeathProbability returns qx for age; ages past the table are certain death.
func (lt *LifeTable) DeathProbability(age int) float64 {
	if age > lt.TerminalAge() {
		return 1
	}
	return lt.Qx[age-lt.StartAge]
}

// Validate checks that the table is non-empty with probabilities in [0,1].
func (lt *LifeTable) Validate() error {
	if lt == nil || len(lt.Qx) == 0 {
		return NewConfigurationError("life_table", "life table is empty")
	}
	if lt.StartAge < 0 {
		return NewConfigurationError("life_table", "start age %d is negative", lt.StartAge)
	}
	for i, q := range lt.Qx {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return NewConfigurationError("life_table", "qx at age %d must be within [0,1], got %v", lt.StartAge+i, q)
		}
	}
	return nil
}

func (lt *LifeTable) String() string {
	return fmt.Sprintf("life table %q ages %d..%d", lt.Name, lt.StartAge, lt.TerminalAge())
}
