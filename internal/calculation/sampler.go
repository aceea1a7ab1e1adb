package calculation

import (
	"fmt"
	"math/rand/v2"

	"github.com/rpgo/outlive/internal/domain"
)

// Sample draws a trial of horizon periods from series by resampling with
// replacement. Blocks of blockSize contiguous periods start at uniformly
// random offsets that keep the whole block inside the series; the last block
// is truncated to fit the horizon. blockSize 1 is plain independent
// resampling. Each period is drawn whole, so asset returns and inflation keep
// their contemporaneous correlation.
func Sample(series *domain.ReturnSeries, horizon, blockSize int, rng *rand.Rand) (*domain.Trial, error) {
	if horizon < 1 {
		return nil, domain.NewConfigurationError("horizon", "must be at least 1, got %d", horizon)
	}
	if blockSize < 1 {
		return nil, domain.NewConfigurationError("block_size", "must be at least 1, got %d", blockSize)
	}
	n := series.Len()
	if n == 0 {
		return nil, domain.NewConfigurationError("series", "historical return series is empty")
	}
	if blockSize > n {
		return nil, &domain.DataGapError{
			Subject:   "return series",
			Requested: fmt.Sprintf("blocks of %d periods", blockSize),
			Available: fmt.Sprintf("%d periods", n),
		}
	}
	if rng == nil {
		return nil, domain.NewConfigurationError("rng", "random source is required")
	}

	offsets := n - blockSize + 1
	index := make([]int, 0, horizon)
	for len(index) < horizon {
		start := rng.IntN(offsets)
		for k := 0; k < blockSize && len(index) < horizon; k++ {
			index = append(index, start+k)
		}
	}
	return &domain.Trial{Series: series, Index: index}, nil
}
