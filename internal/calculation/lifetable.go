package calculation

import "github.com/rpgo/outlive/internal/domain"

// SurvivalProbability returns, for each of horizon periods, the probability of
// being alive at the start of the period given alive at startAge. Entry 0 is
// 1; entries past the table's terminal age are 0.
func SurvivalProbability(table *domain.LifeTable, startAge, horizon int) ([]float64, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if !table.Covers(startAge) {
		return nil, domain.NewConfigurationError("starting_age", "age %d is outside the life table (%d..%d)", startAge, table.StartAge, table.TerminalAge())
	}
	if horizon < 1 {
		return nil, domain.NewConfigurationError("horizon", "must be at least 1, got %d", horizon)
	}

	survival := make([]float64, horizon)
	survival[0] = 1
	for t := 1; t < horizon; t++ {
		survival[t] = survival[t-1] * (1 - table.DeathProbability(startAge+t-1))
	}
	return survival, nil
}

// RemainingHorizon is the number of periods from startAge through the table's
// terminal age, used when no horizon is configured.
func RemainingHorizon(table *domain.LifeTable, startAge int) int {
	h := table.TerminalAge() - startAge + 1
	if h < 0 {
		return 0
	}
	return h
}
