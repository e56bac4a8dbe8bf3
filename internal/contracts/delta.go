package contracts

import (
	"sort"
	"time"
)

// RankDeltaRecord is one security's month-over-month rank movement.
// PreviousRank and RankDelta are nil for a new entrant: a security with
// no rank in the previous ranked month. A nil delta is distinct from a
// delta of zero and must stay that way through serialization.
//
// Delta is current minus previous, so negative means the security moved
// toward rank 1 (improvement) and positive means it declined.
type RankDeltaRecord struct {
	SecurityID     string    `json:"security_id"`
	AsOf           time.Time `json:"as_of"`
	TrailingReturn float64   `json:"trailing_return"`
	CurrentRank    int       `json:"current_rank"`
	PreviousRank   *int      `json:"previous_rank,omitempty"`
	RankDelta      *int      `json:"rank_delta,omitempty"`
}

// IsNewEntrant reports whether the security had no rank in the previous
// ranked month.
func (r *RankDeltaRecord) IsNewEntrant() bool {
	return r.PreviousRank == nil
}

// Improved reports whether the rank moved toward 1. New entrants never
// count as improved.
func (r *RankDeltaRecord) Improved() bool {
	return r.RankDelta != nil && *r.RankDelta < 0
}

// Declined reports whether the rank moved away from 1.
func (r *RankDeltaRecord) Declined() bool {
	return r.RankDelta != nil && *r.RankDelta > 0
}

// DeltaSet holds rank-delta records for all months. Records are indexed
// by current-month presence; exits (ranked previously, absent now) are
// derivable by comparing adjacent months' security sets and are not part
// of this output.
type DeltaSet struct {
	Records []RankDeltaRecord `json:"records"`
}

// Months returns the distinct month-ends present, ascending.
func (s *DeltaSet) Months() []time.Time {
	return distinctMonths(len(s.Records), func(i int) time.Time {
		return s.Records[i].AsOf
	})
}

// Month returns the records for one month-end, current rank ascending.
func (s *DeltaSet) Month(asOf time.Time) []RankDeltaRecord {
	var out []RankDeltaRecord
	for _, r := range s.Records {
		if r.AsOf.Equal(asOf) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrentRank < out[j].CurrentRank })
	return out
}

// Latest returns the most recent month's records.
func (s *DeltaSet) Latest() ([]RankDeltaRecord, time.Time, error) {
	months := s.Months()
	if len(months) == 0 {
		return nil, time.Time{}, ErrNoRankedData
	}
	latest := months[len(months)-1]
	return s.Month(latest), latest, nil
}
