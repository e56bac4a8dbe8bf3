package returns

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/engineconfig"
	"github.com/dmehra/niftyrank/pkg/logger"
)

func newCalculator() *Calculator {
	return NewCalculator(engineconfig.Default(), logger.NewNop())
}

func monthEnd(year int, month time.Month) time.Time {
	// Last day of the month
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// monthlySeries appends count month-end prices starting at (year, month).
func monthlySeries(panel *contracts.PricePanel, id string, year int, month time.Month, prices []float64) {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for _, price := range prices {
		panel.Append(contracts.PricePoint{
			SecurityID: id,
			AsOf:       monthEnd(d.Year(), d.Month()),
			Price:      price,
		})
		d = d.AddDate(0, 1, 0)
	}
}

func flatPrices(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCalculate_TrailingReturnScenario(t *testing.T) {
	panel := contracts.NewPricePanel()

	// A: 100 -> 150 over 13 month-ends = +50.00%
	a := flatPrices(13, 100)
	a[12] = 150
	monthlySeries(panel, "A", 2023, time.January, a)

	// B: 200 -> 180 = -10.00%
	b := flatPrices(13, 200)
	b[12] = 180
	monthlySeries(panel, "B", 2023, time.January, b)

	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	byID := map[string]float64{}
	final := monthEnd(2024, time.January)
	for _, obs := range set.Month(final) {
		byID[obs.SecurityID] = obs.TrailingReturn
	}

	assert.Equal(t, 50.00, byID["A"])
	assert.Equal(t, -10.00, byID["B"])
}

func TestCalculate_TwelvePointsYieldNothing(t *testing.T) {
	panel := contracts.NewPricePanel()
	monthlySeries(panel, "SHORT", 2023, time.January, flatPrices(12, 100))
	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	assert.Empty(t, set.Observations)
	assert.Equal(t, 1, set.Quality.InsufficientHistory)
}

func TestCalculate_ThirteenPointsYieldOneObservation(t *testing.T) {
	panel := contracts.NewPricePanel()
	monthlySeries(panel, "FULL", 2023, time.January, flatPrices(13, 100))
	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	require.Len(t, set.Observations, 1)
	obs := set.Observations[0]
	assert.Equal(t, "FULL", obs.SecurityID)
	assert.Equal(t, monthEnd(2024, time.January), obs.AsOf)
	assert.Equal(t, 0.00, obs.TrailingReturn)
}

func TestCalculate_MonthEndConventionSlack(t *testing.T) {
	panel := contracts.NewPricePanel()

	// Prior year ends on the 28th, current on the 31st: same calendar
	// month one year apart, inside the slack allowance.
	id := "CONV"
	d := time.Date(2023, time.January, 28, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		panel.Append(contracts.PricePoint{SecurityID: id, AsOf: d, Price: 100})
		// Advance from the 1st so a 31st never overflows past the next month.
		next := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		d = monthEnd(next.Year(), next.Month())
	}
	panel.Append(contracts.PricePoint{SecurityID: id, AsOf: monthEnd(2024, time.January), Price: 120})
	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	obs := set.Month(monthEnd(2024, time.January))
	require.Len(t, obs, 1)
	assert.Equal(t, 20.00, obs[0].TrailingReturn)
}

func TestCalculate_NonPositivePriceIsSkippedNotFatal(t *testing.T) {
	panel := contracts.NewPricePanel()
	prices := flatPrices(14, 100)
	monthlySeries(panel, "BAD", 2023, time.January, prices)
	panel.Normalize()

	// Corrupt one point in the middle
	series := panel.Series("BAD")
	series[5].Price = -1
	panel.Replace("BAD", series)

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	assert.Equal(t, 1, set.Quality.SkippedPoints)
	require.Len(t, set.Quality.Faults, 1)
	assert.Equal(t, contracts.FaultNonPositivePrice, set.Quality.Faults[0].Reason)
	assert.NotEmpty(t, set.Observations, "remaining clean points should still produce returns")
}

func TestCalculate_DuplicateDateKeepsFirst(t *testing.T) {
	panel := contracts.NewPricePanel()
	monthlySeries(panel, "DUP", 2023, time.January, flatPrices(13, 100))
	// Second observation on an existing date with a different price;
	// the first occurrence must win.
	panel.Append(contracts.PricePoint{
		SecurityID: "DUP",
		AsOf:       monthEnd(2023, time.January),
		Price:      999,
	})
	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	assert.Equal(t, 1, set.Quality.DuplicatePoints)
	require.Len(t, set.Observations, 1)
	// 100 -> 100 against the kept first occurrence
	assert.Equal(t, 0.00, set.Observations[0].TrailingReturn)
}

func TestCalculate_GapBreaksAnniversary(t *testing.T) {
	panel := contracts.NewPricePanel()

	// Jan 2023 is missing, so Jan 2024 has no anniversary: the nearest
	// earlier candidate (Dec 2022) spans 396 days and must be rejected.
	panel.Append(contracts.PricePoint{SecurityID: "GAP", AsOf: monthEnd(2022, time.November), Price: 100})
	panel.Append(contracts.PricePoint{SecurityID: "GAP", AsOf: monthEnd(2022, time.December), Price: 100})
	d := time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		panel.Append(contracts.PricePoint{
			SecurityID: "GAP",
			AsOf:       monthEnd(d.Year(), d.Month()),
			Price:      100,
		})
		d = d.AddDate(0, 1, 0)
	}
	panel.Normalize()

	set, err := newCalculator().Calculate(context.Background(), panel)
	require.NoError(t, err)

	assert.NotEmpty(t, set.Observations, "months with valid anniversaries still produce returns")
	for _, obs := range set.Observations {
		assert.NotEqual(t, monthEnd(2024, time.January), obs.AsOf,
			"January 2024 has no valid anniversary and must be omitted")
	}
}

func TestCalculate_EmptyPanelIsFatal(t *testing.T) {
	_, err := newCalculator().Calculate(context.Background(), contracts.NewPricePanel())
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestCalculate_Deterministic(t *testing.T) {
	build := func() *contracts.PricePanel {
		panel := contracts.NewPricePanel()
		monthlySeries(panel, "X", 2023, time.January, []float64{90, 91, 95, 92, 97, 99, 101, 98, 103, 105, 104, 108, 111, 115})
		monthlySeries(panel, "Y", 2023, time.March, flatPrices(14, 250))
		panel.Normalize()
		return panel
	}

	first, err := newCalculator().Calculate(context.Background(), build())
	require.NoError(t, err)
	second, err := newCalculator().Calculate(context.Background(), build())
	require.NoError(t, err)

	assert.Equal(t, first.Observations, second.Observations)
}
