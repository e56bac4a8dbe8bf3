package report

import (
	"math"
	"sort"
	"strconv"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/internal/engine/delta"
	"github.com/dmehra/niftyrank/internal/universe"
)

// Summary collects run-level descriptive statistics over the ranked
// series and its deltas.
type Summary struct {
	MonthsCovered      int
	AvgSecuritiesMonth float64
	DistinctRankOne    int
	NewEntrants        int
	MeanAbsDelta       float64
	MaxImprovement     int // most negative delta
	MaxDecline         int // most positive delta
	Improvers          int
	Decliners          int
}

// BuildSummary computes summary statistics from engine output.
func BuildSummary(ranked *contracts.RankingSet, deltas *contracts.DeltaSet, improvers, decliners []delta.Mover) Summary {
	s := Summary{
		Improvers: len(improvers),
		Decliners: len(decliners),
	}

	months := ranked.Months()
	s.MonthsCovered = len(months)
	if len(months) > 0 {
		s.AvgSecuritiesMonth = float64(len(ranked.Observations)) / float64(len(months))
	}

	rankOne := map[string]bool{}
	for _, o := range ranked.Observations {
		if o.Rank == 1 {
			rankOne[o.SecurityID] = true
		}
	}
	s.DistinctRankOne = len(rankOne)

	var absSum, deltaCount int
	for _, r := range deltas.Records {
		if r.RankDelta == nil {
			s.NewEntrants++
			continue
		}
		d := *r.RankDelta
		deltaCount++
		if d < 0 {
			absSum -= d
		} else {
			absSum += d
		}
		if d < s.MaxImprovement {
			s.MaxImprovement = d
		}
		if d > s.MaxDecline {
			s.MaxDecline = d
		}
	}
	if deltaCount > 0 {
		s.MeanAbsDelta = float64(absSum) / float64(deltaCount)
	}

	return s
}

// Rows renders the summary as metric/value pairs in a fixed order.
func (s Summary) Rows() [][]string {
	return [][]string{
		{"months_covered", strconv.Itoa(s.MonthsCovered)},
		{"avg_securities_per_month", strconv.FormatFloat(s.AvgSecuritiesMonth, 'f', 1, 64)},
		{"distinct_rank_one_securities", strconv.Itoa(s.DistinctRankOne)},
		{"new_entrant_records", strconv.Itoa(s.NewEntrants)},
		{"mean_abs_rank_delta", strconv.FormatFloat(s.MeanAbsDelta, 'f', 2, 64)},
		{"max_rank_improvement", strconv.Itoa(s.MaxImprovement)},
		{"max_rank_decline", strconv.Itoa(s.MaxDecline)},
		{"consistent_improvers", strconv.Itoa(s.Improvers)},
		{"consistent_decliners", strconv.Itoa(s.Decliners)},
	}
}

// SectorStat is one sector's distribution of latest trailing returns.
type SectorStat struct {
	Sector string
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// sectorStats groups the latest month's returns by the constituent
// sector attribute and takes descriptive statistics. Securities without
// reference data fall into the "Unclassified" bucket.
func sectorStats(obs []contracts.RankedObservation, cons *universe.Constituents) []SectorStat {
	bySector := map[string][]float64{}
	for _, o := range obs {
		sector := "Unclassified"
		if ref, ok := cons.Get(o.SecurityID); ok && ref.Sector != "" {
			sector = ref.Sector
		}
		bySector[sector] = append(bySector[sector], o.TrailingReturn)
	}

	sectors := make([]string, 0, len(bySector))
	for sector := range bySector {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	out := make([]SectorStat, 0, len(sectors))
	for _, sector := range sectors {
		returns := bySector[sector]
		sort.Float64s(returns)

		stat := SectorStat{
			Sector: sector,
			Count:  len(returns),
			Min:    returns[0],
			Max:    returns[len(returns)-1],
			Median: median(returns),
		}
		sum := 0.0
		for _, v := range returns {
			sum += v
		}
		stat.Mean = round2(sum / float64(len(returns)))
		out = append(out, stat)
	}

	return out
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return round2((sorted[n/2-1] + sorted[n/2]) / 2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
