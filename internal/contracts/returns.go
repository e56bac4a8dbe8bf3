package contracts

import "time"

// ReturnObservation is the trailing 12-month return of one security at
// one month-end. TrailingReturn is a percentage rounded to two decimal
// places; month-ends without a resolvable prior-year price are omitted
// from the set entirely, never zero-filled.
type ReturnObservation struct {
	SecurityID     string    `json:"security_id"`
	AsOf           time.Time `json:"as_of"`
	TrailingReturn float64   `json:"trailing_return"`
}

// ReturnSet is the return calculator's result: the observations plus the
// structured warning summary accumulated while producing them.
type ReturnSet struct {
	Observations []ReturnObservation `json:"observations"`
	Quality      QualityReport       `json:"quality"`
}

// Months returns the distinct month-ends present, ascending.
func (s *ReturnSet) Months() []time.Time {
	return distinctMonths(len(s.Observations), func(i int) time.Time {
		return s.Observations[i].AsOf
	})
}

// Month returns the observations for one month-end.
func (s *ReturnSet) Month(asOf time.Time) []ReturnObservation {
	var out []ReturnObservation
	for _, o := range s.Observations {
		if o.AsOf.Equal(asOf) {
			out = append(out, o)
		}
	}
	return out
}
