package delta

import (
	"context"
	"sort"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Calculator computes month-over-month rank movement. Each ranked month
// is paired with the chronologically previous distinct ranked month in
// the series — the previous available month, not a fixed one-month
// offset, so calendar gaps are skipped gracefully.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a rank-delta calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{logger: log}
}

// Calculate emits one RankDeltaRecord per ranked observation, keyed by
// current-month presence. A security absent from the previous ranked
// month is a new entrant and carries nil previous rank and delta. In
// the first month of the series every record is a new entrant. Records
// come out sorted by (month, current rank) so pipeline output is
// byte-stable; no stronger ordering is part of the contract.
func (c *Calculator) Calculate(ctx context.Context, ranked *contracts.RankingSet) (*contracts.DeltaSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	months := ranked.Months()
	set := &contracts.DeltaSet{}
	newEntrants := 0

	var prevRanks map[string]int
	for _, month := range months {
		partition := ranked.Month(month)

		for _, obs := range partition {
			record := contracts.RankDeltaRecord{
				SecurityID:     obs.SecurityID,
				AsOf:           obs.AsOf,
				TrailingReturn: obs.TrailingReturn,
				CurrentRank:    obs.Rank,
			}

			if prev, ok := prevRanks[obs.SecurityID]; ok {
				d := obs.Rank - prev
				record.PreviousRank = &prev
				record.RankDelta = &d
			} else {
				newEntrants++
			}

			set.Records = append(set.Records, record)
		}

		prevRanks = make(map[string]int, len(partition))
		for _, obs := range partition {
			prevRanks[obs.SecurityID] = obs.Rank
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"months":       len(months),
		"records":      len(set.Records),
		"new_entrants": newEntrants,
	}).Info("Calculated rank deltas")

	return set, nil
}

// Exits returns the securities ranked in the previous partition but
// absent from the current one, ascending by id. RankDeltaRecord is
// indexed by current-month presence, so exits are exposed through this
// helper instead of the record stream.
func Exits(previous, current []contracts.RankedObservation) []string {
	present := make(map[string]bool, len(current))
	for _, obs := range current {
		present[obs.SecurityID] = true
	}

	var out []string
	for _, obs := range previous {
		if !present[obs.SecurityID] {
			out = append(out, obs.SecurityID)
		}
	}
	sort.Strings(out)
	return out
}
