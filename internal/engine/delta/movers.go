package delta

import (
	"sort"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/engineconfig"
)

// Mover summarizes one security's directional consistency across its
// delta observations.
type Mover struct {
	SecurityID string  `json:"security_id"`
	Months     int     `json:"months"` // delta observations considered
	Ratio      float64 `json:"ratio"`  // share of months moving the classified way
}

// ConsistentMovers classifies securities whose rank moved the same way
// in at least cfg.Threshold of their delta months, requiring at least
// cfg.MinMonths delta observations. New-entrant records carry no delta
// and are excluded from the denominator.
func ConsistentMovers(set *contracts.DeltaSet, cfg engineconfig.Movers) (improvers, decliners []Mover) {
	type tally struct {
		improved int
		declined int
		total    int
	}

	byID := make(map[string]*tally)
	for _, r := range set.Records {
		if r.RankDelta == nil {
			continue
		}
		t, ok := byID[r.SecurityID]
		if !ok {
			t = &tally{}
			byID[r.SecurityID] = t
		}
		t.total++
		if *r.RankDelta < 0 {
			t.improved++
		} else if *r.RankDelta > 0 {
			t.declined++
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := byID[id]
		if t.total < cfg.MinMonths {
			continue
		}
		if ratio := float64(t.improved) / float64(t.total); ratio >= cfg.Threshold {
			improvers = append(improvers, Mover{SecurityID: id, Months: t.total, Ratio: ratio})
		}
		if ratio := float64(t.declined) / float64(t.total); ratio >= cfg.Threshold {
			decliners = append(decliners, Mover{SecurityID: id, Months: t.total, Ratio: ratio})
		}
	}

	return improvers, decliners
}
