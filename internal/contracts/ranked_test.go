package contracts

import (
	"testing"
	"time"
)

func TestRankingSet_MonthsAndLatest(t *testing.T) {
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	set := &RankingSet{Observations: []RankedObservation{
		{SecurityID: "B", AsOf: feb, TrailingReturn: 4.2, Rank: 2},
		{SecurityID: "A", AsOf: jan, TrailingReturn: 9.1, Rank: 1},
		{SecurityID: "A", AsOf: feb, TrailingReturn: 8.8, Rank: 1},
	}}

	months := set.Months()
	if len(months) != 2 || !months[0].Equal(jan) || !months[1].Equal(feb) {
		t.Fatalf("Months() = %v, want [jan feb]", months)
	}

	latest, month, err := set.Latest()
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if !month.Equal(feb) {
		t.Errorf("Latest month = %v, want %v", month, feb)
	}
	if len(latest) != 2 || latest[0].Rank != 1 || latest[1].Rank != 2 {
		t.Errorf("Latest partition should be rank-ordered, got %+v", latest)
	}
}

func TestRankingSet_LatestEmpty(t *testing.T) {
	set := &RankingSet{}
	if _, _, err := set.Latest(); err != ErrNoRankedData {
		t.Errorf("Latest() on empty set = %v, want ErrNoRankedData", err)
	}
}

func TestRankingSet_UnknownMonthIsEmptyNotError(t *testing.T) {
	set := &RankingSet{Observations: []RankedObservation{
		{SecurityID: "A", AsOf: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Rank: 1},
	}}

	got := set.Month(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	if len(got) != 0 {
		t.Errorf("unknown month should yield empty partition, got %+v", got)
	}
}

func TestQualityReport_Merge(t *testing.T) {
	a := QualityReport{}
	a.AddFault(DataQualityFault{SecurityID: "A", Reason: FaultNonPositivePrice})
	a.AddFault(DataQualityFault{SecurityID: "A", Reason: FaultDuplicateDate})

	b := QualityReport{InsufficientHistory: 3}
	b.AddFault(DataQualityFault{SecurityID: "B", Reason: FaultMalformedRow})

	a.Merge(b)

	if a.SkippedPoints != 1 || a.DuplicatePoints != 1 || a.MalformedRows != 1 {
		t.Errorf("merged counters wrong: %+v", a)
	}
	if a.InsufficientHistory != 3 {
		t.Errorf("InsufficientHistory = %d, want 3", a.InsufficientHistory)
	}
	if len(a.Faults) != 3 {
		t.Errorf("Faults count = %d, want 3", len(a.Faults))
	}
	if !a.HasWarnings() {
		t.Error("merged report should have warnings")
	}
}
