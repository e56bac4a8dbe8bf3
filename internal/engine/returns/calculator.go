package returns

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/engineconfig"
	"github.com/dmehra/niftyrank/pkg/logger"
)

// Calculator computes trailing 12-month returns on a monthly rolling
// basis. For every security and month-end it looks for a price roughly
// one year earlier and, when one resolves inside the configured window,
// emits the percentage return for that month-end. Month-ends with no
// resolvable prior price are omitted, never zero-filled.
type Calculator struct {
	window   engineconfig.ReturnWindow
	decimals int32
	logger   *logger.Logger
}

// NewCalculator creates a return calculator.
func NewCalculator(cfg *engineconfig.Config, log *logger.Logger) *Calculator {
	return &Calculator{
		window:   cfg.ReturnWindow,
		decimals: cfg.Rounding.Decimals,
		logger:   log,
	}
}

// Calculate produces a ReturnObservation for every (security, month-end)
// pair with a matching prior-year price. Recoverable data problems are
// skipped and accumulated on the result's QualityReport; only an empty
// panel is fatal.
func (c *Calculator) Calculate(ctx context.Context, panel *contracts.PricePanel) (*contracts.ReturnSet, error) {
	if panel == nil || panel.IsEmpty() {
		return nil, contracts.ErrNoData
	}

	set := &contracts.ReturnSet{}

	for _, id := range panel.SecurityIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series := c.cleanSeries(id, panel.Series(id), &set.Quality)

		if len(series) < c.window.MinHistory {
			set.Quality.InsufficientHistory++
			c.logger.WithFields(map[string]interface{}{
				"security_id": id,
				"month_ends":  len(series),
				"required":    c.window.MinHistory,
			}).Debug("Insufficient history, security contributes no returns")
			continue
		}

		c.calculateSecurity(id, series, set)
	}

	c.logSummary(set)
	return set, nil
}

// cleanSeries drops non-positive prices and duplicate dates, recording a
// fault for each dropped point. Duplicates resolve to the first
// occurrence; the series is already date-sorted with stable insertion
// order, so the choice is deterministic across runs.
func (c *Calculator) cleanSeries(id string, series []contracts.PricePoint, quality *contracts.QualityReport) []contracts.PricePoint {
	clean := make([]contracts.PricePoint, 0, len(series))

	for _, pt := range series {
		if pt.Price <= 0 {
			quality.AddFault(contracts.DataQualityFault{
				SecurityID: id,
				AsOf:       pt.AsOf,
				Reason:     contracts.FaultNonPositivePrice,
			})
			c.logger.WithFields(map[string]interface{}{
				"security_id": id,
				"as_of":       pt.AsOf.Format("2006-01-02"),
				"price":       pt.Price,
			}).Warn("Skipping non-positive price")
			continue
		}

		if n := len(clean); n > 0 && clean[n-1].AsOf.Equal(pt.AsOf) {
			quality.AddFault(contracts.DataQualityFault{
				SecurityID: id,
				AsOf:       pt.AsOf,
				Reason:     contracts.FaultDuplicateDate,
				Detail:     "kept first occurrence",
			})
			continue
		}

		clean = append(clean, pt)
	}

	return clean
}

// calculateSecurity walks one cleaned series and emits an observation
// for every month-end whose prior-year anchor resolves.
func (c *Calculator) calculateSecurity(id string, series []contracts.PricePoint, set *contracts.ReturnSet) {
	for i, pt := range series {
		prior, ok := c.findPriorYear(series[:i], pt)
		if !ok {
			continue
		}

		ret := c.round((pt.Price/prior.Price - 1) * 100)

		if ret > 500 {
			set.Quality.ExtremeHighReturns++
		} else if ret < -90 {
			set.Quality.ExtremeLowReturns++
		}

		set.Observations = append(set.Observations, contracts.ReturnObservation{
			SecurityID:     id,
			AsOf:           pt.AsOf,
			TrailingReturn: ret,
		})
	}
}

// findPriorYear resolves the price ~12 months before pt. The candidate
// is the most recent earlier point dated no later than the exact
// anniversary plus the slack allowance; it is accepted only when the
// span between both ends falls inside the configured day bounds, which
// tolerates 28th-vs-last-day month-end conventions without ever pairing
// across a different calendar month's worth of drift.
func (c *Calculator) findPriorYear(earlier []contracts.PricePoint, pt contracts.PricePoint) (contracts.PricePoint, bool) {
	target := pt.AsOf.AddDate(-1, 0, 0)
	cutoff := target.AddDate(0, 0, c.window.SlackDays)

	for i := len(earlier) - 1; i >= 0; i-- {
		prior := earlier[i]
		if prior.AsOf.After(cutoff) {
			continue
		}

		span := int(pt.AsOf.Sub(prior.AsOf).Hours() / 24)
		if span >= c.window.MinDays && span <= c.window.MaxDays {
			return prior, true
		}
		// Most recent candidate inside the cutoff is too old; anything
		// before it is older still.
		return contracts.PricePoint{}, false
	}

	return contracts.PricePoint{}, false
}

// round fixes the observation to the configured number of decimal
// places. decimal.Round half-away-from-zero is reproducible across
// values where naive float formatting is not.
func (c *Calculator) round(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(c.decimals).Float64()
	return out
}

func (c *Calculator) logSummary(set *contracts.ReturnSet) {
	q := set.Quality
	c.logger.WithFields(map[string]interface{}{
		"observations":         len(set.Observations),
		"skipped_points":       q.SkippedPoints,
		"duplicate_points":     q.DuplicatePoints,
		"insufficient_history": q.InsufficientHistory,
	}).Info("Calculated trailing 12-month returns")

	if q.ExtremeHighReturns > 0 {
		c.logger.Warnf("Found %d extremely high returns (>500%%)", q.ExtremeHighReturns)
	}
	if q.ExtremeLowReturns > 0 {
		c.logger.Warnf("Found %d extremely low returns (<-90%%)", q.ExtremeLowReturns)
	}
}
