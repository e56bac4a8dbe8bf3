package contracts

import (
	"sort"
	"time"
)

// PricePoint is a single month-end closing price observation.
// Produced by the loader; never mutated afterwards.
type PricePoint struct {
	SecurityID string    `json:"security_id"`
	AsOf       time.Time `json:"as_of"`
	Price      float64   `json:"price"`
}

// PricePanel holds the full long-form price panel, keyed by security id
// with each series kept in ascending date order. The panel is the sole
// input to the return calculator and is treated as immutable once built.
type PricePanel struct {
	series map[string][]PricePoint
}

// NewPricePanel creates an empty panel.
func NewPricePanel() *PricePanel {
	return &PricePanel{series: make(map[string][]PricePoint)}
}

// Append adds a price point to its security's series. Ordering is not
// enforced on insert; call Normalize once loading is complete.
func (p *PricePanel) Append(pt PricePoint) {
	p.series[pt.SecurityID] = append(p.series[pt.SecurityID], pt)
}

// Normalize sorts every series ascending by date. Points sharing a date
// keep their insertion order so duplicate resolution stays deterministic.
func (p *PricePanel) Normalize() {
	for id := range p.series {
		pts := p.series[id]
		sort.SliceStable(pts, func(i, j int) bool {
			return pts[i].AsOf.Before(pts[j].AsOf)
		})
	}
}

// SecurityIDs returns all security ids in ascending order.
func (p *PricePanel) SecurityIDs() []string {
	ids := make([]string, 0, len(p.series))
	for id := range p.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Series returns the price points for one security, ascending by date.
func (p *PricePanel) Series(id string) []PricePoint {
	return p.series[id]
}

// Replace swaps in a cleaned series for a security.
func (p *PricePanel) Replace(id string, pts []PricePoint) {
	if len(pts) == 0 {
		delete(p.series, id)
		return
	}
	p.series[id] = pts
}

// Securities returns the number of securities in the panel.
func (p *PricePanel) Securities() int {
	return len(p.series)
}

// Observations returns the total number of price points.
func (p *PricePanel) Observations() int {
	n := 0
	for _, pts := range p.series {
		n += len(pts)
	}
	return n
}

// IsEmpty reports whether the panel has no price points at all.
func (p *PricePanel) IsEmpty() bool {
	return p.Observations() == 0
}
