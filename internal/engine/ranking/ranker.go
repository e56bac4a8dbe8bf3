package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Order reports whether observation a ranks ahead of b within a month:
// higher trailing return first, ties broken by ascending security id.
// The tie-break is a correctness property, not a style choice — rank
// deltas downstream depend on identical input producing identical
// ranks on every run — so the ordering lives here as a declared,
// independently testable function rather than an incidental consequence
// of a stable sort.
func Order(a, b contracts.ReturnObservation) bool {
	if a.TrailingReturn != b.TrailingReturn {
		return a.TrailingReturn > b.TrailingReturn
	}
	return a.SecurityID < b.SecurityID
}

// Ranker assigns cross-sectional ranks per month-end.
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker.
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank partitions the return observations by month-end and assigns
// dense ranks 1..N inside each partition, N being the count of
// securities with a defined return that month. Every input observation
// yields exactly one ranked observation. An empty input produces an
// empty set, not an error.
func (r *Ranker) Rank(ctx context.Context, set *contracts.ReturnSet) (*contracts.RankingSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byMonth := make(map[int64][]contracts.ReturnObservation)
	monthAt := make(map[int64]time.Time)
	for _, obs := range set.Observations {
		key := obs.AsOf.Unix()
		byMonth[key] = append(byMonth[key], obs)
		monthAt[key] = obs.AsOf
	}

	keys := make([]int64, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ranked := &contracts.RankingSet{}
	for _, key := range keys {
		partition := byMonth[key]
		sort.Slice(partition, func(i, j int) bool {
			return Order(partition[i], partition[j])
		})

		for i, obs := range partition {
			ranked.Observations = append(ranked.Observations, contracts.RankedObservation{
				SecurityID:     obs.SecurityID,
				AsOf:           monthAt[key],
				TrailingReturn: obs.TrailingReturn,
				Rank:           i + 1,
			})
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"months":       len(keys),
		"observations": len(ranked.Observations),
	}).Info("Ranking completed")

	return ranked, nil
}
