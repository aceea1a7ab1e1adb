package domain

import (
	"fmt"
	"math"
	"sort"
)

// InflationKey is the pseudo-asset carrying the period's inflation rate.
const InflationKey = "inflation"

// Period is one observed period of returns. Values maps every asset class,
// plus InflationKey, to its return for the period.
type Period struct {
	Label  string             `json:"label"`
	Values map[string]float64 `json:"values"`
}

// Inflation returns the period's inflation rate.
func (p Period) Inflation() float64 { return p.Values[InflationKey] }

// ReturnSeries is an ordered, read-only table of historical period returns.
// It is safe for concurrent reads once validated.
type ReturnSeries struct {
	Assets  []string `json:"assets"`
	Periods []Period `json:"periods"`
}

// NewReturnSeries builds a series from periods, deriving the sorted asset list
// (inflation excluded) from the first period, and validates it.
func NewReturnSeries(periods []Period) (*ReturnSeries, error) {
	if len(periods) == 0 {
		return nil, NewConfigurationError("series", "historical return series is empty")
	}
	assets := make([]string, 0, len(periods[0].Values))
	for k := range periods[0].Values {
		if k != InflationKey {
			assets = append(assets, k)
		}
	}
	sort.Strings(assets)
	s := &ReturnSeries{Assets: assets, Periods: periods}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of periods.
func (s *ReturnSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Periods)
}

// HasAsset reports whether asset is one of the series' asset classes.
func (s *ReturnSeries) HasAsset(asset string) bool {
	for _, a := range s.Assets {
		if a == asset {
			return true
		}
	}
	return false
}

// Validate checks that the series is non-empty, that every period carries the
// same asset classes plus inflation, and that every value is finite.
func (s *ReturnSeries) Validate() error {
	if s.Len() == 0 {
		return NewConfigurationError("series", "historical return series is empty")
	}
	if len(s.Assets) == 0 {
		return NewConfigurationError("series", "no asset classes besides inflation")
	}
	want := len(s.Assets) + 1
	for i, p := range s.Periods {
		if len(p.Values) != want {
			return NewConfigurationError("series", "period %d (%s) has %d columns, expected %d", i, p.Label, len(p.Values), want)
		}
		if _, ok := p.Values[InflationKey]; !ok {
			return NewConfigurationError("series", "period %d (%s) has no %s value", i, p.Label, InflationKey)
		}
		for _, a := range s.Assets {
			v, ok := p.Values[a]
			if !ok {
				return NewConfigurationError("series", "period %d (%s) is missing asset %q", i, p.Label, a)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewConfigurationError("series", "period %d (%s) asset %q is not finite", i, p.Label, a)
			}
		}
		if infl := p.Inflation(); math.IsNaN(infl) || math.IsInf(infl, 0) {
			return NewConfigurationError("series", "period %d (%s) inflation is not finite", i, p.Label)
		}
	}
	return nil
}

// Window returns the sub-series between the labelled periods, inclusive.
// Empty labels mean the start or end of the series.
func (s *ReturnSeries) Window(from, to string) (*ReturnSeries, error) {
	start, end := 0, s.Len()-1
	if from != "" {
		start = s.indexOf(from)
		if start < 0 {
			return nil, &DataGapError{Subject: "return series", Requested: "from " + from, Available: s.coverage()}
		}
	}
	if to != "" {
		end = s.indexOf(to)
		if end < 0 {
			return nil, &DataGapError{Subject: "return series", Requested: "to " + to, Available: s.coverage()}
		}
	}
	if end < start {
		return nil, NewConfigurationError("series.window", "%q precedes %q", to, from)
	}
	return &ReturnSeries{Assets: s.Assets, Periods: s.Periods[start : end+1]}, nil
}

func (s *ReturnSeries) indexOf(label string) int {
	for i, p := range s.Periods {
		if p.Label == label {
			return i
		}
	}
	return -1
}

func (s *ReturnSeries) coverage() string {
	if s.Len() == 0 {
		return "none"
	}
	return fmt.Sprintf("%s..%s", s.Periods[0].Label, s.Periods[s.Len()-1].Label)
}

// Trial is one sampled future: a sequence of period indexes into Series.
// Asset returns and inflation of a period always travel together.
type Trial struct {
	Series *ReturnSeries
	Index  []int
}

// Len returns the trial horizon.
func (t *Trial) Len() int { return len(t.Index) }

// Period returns the historical period used at step i.
func (t *Trial) Period(i int) Period { return t.Series.Periods[t.Index[i]] }
