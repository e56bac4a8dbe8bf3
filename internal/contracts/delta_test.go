package contracts

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestRankDeltaRecord_IsNewEntrant(t *testing.T) {
	tests := []struct {
		name   string
		record RankDeltaRecord
		want   bool
	}{
		{
			name: "new entrant",
			record: RankDeltaRecord{
				SecurityID:  "INE002A01018",
				CurrentRank: 7,
			},
			want: true,
		},
		{
			name: "carried over",
			record: RankDeltaRecord{
				SecurityID:   "INE002A01018",
				CurrentRank:  7,
				PreviousRank: intPtr(12),
				RankDelta:    intPtr(-5),
			},
			want: false,
		},
		{
			name: "unchanged rank is not a new entrant",
			record: RankDeltaRecord{
				SecurityID:   "INE009A01021",
				CurrentRank:  3,
				PreviousRank: intPtr(3),
				RankDelta:    intPtr(0),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.IsNewEntrant(); got != tt.want {
				t.Errorf("IsNewEntrant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankDeltaRecord_SignConvention(t *testing.T) {
	improved := RankDeltaRecord{CurrentRank: 5, PreviousRank: intPtr(10), RankDelta: intPtr(-5)}
	if !improved.Improved() || improved.Declined() {
		t.Error("delta -5 should classify as improvement")
	}

	declined := RankDeltaRecord{CurrentRank: 10, PreviousRank: intPtr(5), RankDelta: intPtr(5)}
	if declined.Improved() || !declined.Declined() {
		t.Error("delta +5 should classify as decline")
	}

	entrant := RankDeltaRecord{CurrentRank: 1}
	if entrant.Improved() || entrant.Declined() {
		t.Error("new entrant should be neither improved nor declined")
	}
}

// A nil delta must serialize as an absent field, never as 0, so that
// downstream consumers cannot confuse a new entrant with an unchanged rank.
func TestRankDeltaRecord_NewEntrantJSON(t *testing.T) {
	record := RankDeltaRecord{
		SecurityID:     "INE040A01034",
		AsOf:           time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		TrailingReturn: 18.42,
		CurrentRank:    4,
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	if strings.Contains(string(data), "previous_rank") {
		t.Errorf("new entrant JSON should omit previous_rank: %s", data)
	}
	if strings.Contains(string(data), "rank_delta") {
		t.Errorf("new entrant JSON should omit rank_delta: %s", data)
	}

	var decoded RankDeltaRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded.PreviousRank != nil || decoded.RankDelta != nil {
		t.Error("decoded new entrant should keep nil previous rank and delta")
	}
}

func TestDeltaSet_Latest(t *testing.T) {
	jan := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	set := &DeltaSet{Records: []RankDeltaRecord{
		{SecurityID: "A", AsOf: mar, CurrentRank: 2},
		{SecurityID: "B", AsOf: jan, CurrentRank: 1},
		{SecurityID: "C", AsOf: mar, CurrentRank: 1},
	}}

	records, month, err := set.Latest()
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if !month.Equal(mar) {
		t.Errorf("Latest month = %v, want %v", month, mar)
	}
	if len(records) != 2 || records[0].SecurityID != "C" {
		t.Errorf("Latest records should be rank-ordered, got %+v", records)
	}
}

func TestDeltaSet_LatestEmpty(t *testing.T) {
	set := &DeltaSet{}
	if _, _, err := set.Latest(); err != ErrNoRankedData {
		t.Errorf("Latest() on empty set = %v, want ErrNoRankedData", err)
	}
}
