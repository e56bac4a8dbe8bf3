package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra/niftyrank/internal/contracts"
	"github.com/dmehra/niftyrank/pkg/logger"
)

var march = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

func rankAll(t *testing.T, obs []contracts.ReturnObservation) *contracts.RankingSet {
	t.Helper()
	ranker := NewRanker(logger.NewNop())
	set, err := ranker.Rank(context.Background(), &contracts.ReturnSet{Observations: obs})
	require.NoError(t, err)
	return set
}

func TestRank_DescendingByReturn(t *testing.T) {
	set := rankAll(t, []contracts.ReturnObservation{
		{SecurityID: "A", AsOf: march, TrailingReturn: 50.00},
		{SecurityID: "B", AsOf: march, TrailingReturn: -10.00},
	})

	partition := set.Month(march)
	require.Len(t, partition, 2)
	assert.Equal(t, "A", partition[0].SecurityID)
	assert.Equal(t, 1, partition[0].Rank)
	assert.Equal(t, "B", partition[1].SecurityID)
	assert.Equal(t, 2, partition[1].Rank)
}

func TestRank_DensePermutation(t *testing.T) {
	obs := []contracts.ReturnObservation{
		{SecurityID: "E", AsOf: march, TrailingReturn: 3.3},
		{SecurityID: "A", AsOf: march, TrailingReturn: 12.1},
		{SecurityID: "C", AsOf: march, TrailingReturn: -4.0},
		{SecurityID: "B", AsOf: march, TrailingReturn: 12.1},
		{SecurityID: "D", AsOf: march, TrailingReturn: 0.0},
	}

	partition := rankAll(t, obs).Month(march)
	require.Len(t, partition, len(obs))

	seen := map[int]bool{}
	for _, r := range partition {
		seen[r.Rank] = true
	}
	for want := 1; want <= len(obs); want++ {
		assert.True(t, seen[want], "rank %d missing from dense permutation", want)
	}
}

func TestRank_TieBrokenBySecurityID(t *testing.T) {
	// C and D return exactly the same; C must deterministically take
	// the better rank on every run.
	for i := 0; i < 10; i++ {
		partition := rankAll(t, []contracts.ReturnObservation{
			{SecurityID: "D", AsOf: march, TrailingReturn: 12.34},
			{SecurityID: "C", AsOf: march, TrailingReturn: 12.34},
		}).Month(march)

		require.Len(t, partition, 2)
		assert.Equal(t, "C", partition[0].SecurityID)
		assert.Equal(t, 1, partition[0].Rank)
		assert.Equal(t, "D", partition[1].SecurityID)
		assert.Equal(t, 2, partition[1].Rank)
	}
}

func TestRank_MonthsRankedIndependently(t *testing.T) {
	april := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)

	set := rankAll(t, []contracts.ReturnObservation{
		{SecurityID: "A", AsOf: march, TrailingReturn: 5},
		{SecurityID: "B", AsOf: march, TrailingReturn: 10},
		{SecurityID: "A", AsOf: april, TrailingReturn: 10},
		{SecurityID: "B", AsOf: april, TrailingReturn: 5},
	})

	marchPart := set.Month(march)
	aprilPart := set.Month(april)
	assert.Equal(t, "B", marchPart[0].SecurityID)
	assert.Equal(t, "A", aprilPart[0].SecurityID)
}

func TestRank_EmptyInputIsNotAnError(t *testing.T) {
	set := rankAll(t, nil)
	assert.Empty(t, set.Observations)

	_, _, err := set.Latest()
	assert.ErrorIs(t, err, contracts.ErrNoRankedData)
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b contracts.ReturnObservation
		want bool
	}{
		{
			name: "higher return wins",
			a:    contracts.ReturnObservation{SecurityID: "Z", TrailingReturn: 10},
			b:    contracts.ReturnObservation{SecurityID: "A", TrailingReturn: 5},
			want: true,
		},
		{
			name: "lower return loses",
			a:    contracts.ReturnObservation{SecurityID: "A", TrailingReturn: -3},
			b:    contracts.ReturnObservation{SecurityID: "Z", TrailingReturn: 0},
			want: false,
		},
		{
			name: "tie breaks by ascending id",
			a:    contracts.ReturnObservation{SecurityID: "AAA", TrailingReturn: 7.77},
			b:    contracts.ReturnObservation{SecurityID: "AAB", TrailingReturn: 7.77},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Order(tt.a, tt.b))
		})
	}
}
