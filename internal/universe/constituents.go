package universe

import (
	"sort"

	"github.com/dmehra/niftyrank/internal/contracts"
)

// Security is one entry of the index reference data. The engine never
// consumes it; reports join it onto engine output by security id.
type Security struct {
	ID     string `json:"security_id"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Sector string `json:"sector"`
}

// Constituents is the reference list of index members, keyed by id.
type Constituents struct {
	byID map[string]Security
}

// NewConstituents builds the reference set. Later duplicates of an id
// are ignored so the set stays deterministic.
func NewConstituents(securities []Security) *Constituents {
	byID := make(map[string]Security, len(securities))
	for _, s := range securities {
		if _, exists := byID[s.ID]; !exists {
			byID[s.ID] = s
		}
	}
	return &Constituents{byID: byID}
}

// Get returns the reference entry for an id.
func (c *Constituents) Get(id string) (Security, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Len returns the number of constituents.
func (c *Constituents) Len() int {
	return len(c.byID)
}

// IDs returns all constituent ids in ascending order.
func (c *Constituents) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MissingFrom returns constituents that have no price series in the
// panel, ascending by id. Surfaced as a coverage warning, not an error.
func (c *Constituents) MissingFrom(panel *contracts.PricePanel) []string {
	var missing []string
	for _, id := range c.IDs() {
		if len(panel.Series(id)) == 0 {
			missing = append(missing, id)
		}
	}
	return missing
}
