package contracts

import (
	"sort"
	"time"
)

// RankedObservation is one security's cross-sectional rank at one
// month-end. Within a month ranks are a dense permutation 1..N, rank 1
// being the highest trailing return.
type RankedObservation struct {
	SecurityID     string    `json:"security_id"`
	AsOf           time.Time `json:"as_of"`
	TrailingReturn float64   `json:"trailing_return"`
	Rank           int       `json:"rank"`
}

// IsTopRanked reports whether the observation is within the top n ranks.
func (r *RankedObservation) IsTopRanked(n int) bool {
	return r.Rank > 0 && r.Rank <= n
}

// RankingSet holds all ranked months, sorted by (month asc, rank asc).
type RankingSet struct {
	Observations []RankedObservation `json:"observations"`
}

// Months returns the distinct ranked month-ends, ascending.
func (s *RankingSet) Months() []time.Time {
	return distinctMonths(len(s.Observations), func(i int) time.Time {
		return s.Observations[i].AsOf
	})
}

// Month returns the ranked partition for one month-end, rank ascending.
// An unknown month yields an empty partition, not an error.
func (s *RankingSet) Month(asOf time.Time) []RankedObservation {
	var out []RankedObservation
	for _, o := range s.Observations {
		if o.AsOf.Equal(asOf) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Latest returns the most recent month's partition. This is a view over
// the set, not a separately computed artifact. Requesting it on an empty
// set is a fatal condition.
func (s *RankingSet) Latest() ([]RankedObservation, time.Time, error) {
	months := s.Months()
	if len(months) == 0 {
		return nil, time.Time{}, ErrNoRankedData
	}
	latest := months[len(months)-1]
	return s.Month(latest), latest, nil
}

// distinctMonths collects unique timestamps via an index accessor and
// returns them ascending.
func distinctMonths(n int, at func(i int) time.Time) []time.Time {
	seen := make(map[int64]time.Time, n)
	for i := 0; i < n; i++ {
		t := at(i)
		seen[t.Unix()] = t
	}
	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
