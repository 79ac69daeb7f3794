package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_CoversEveryPointTotal(t *testing.T) {
	table := Default()

	for p := int64(0); p <= TopRankCeiling; p++ {
		matches := 0
		for _, r := range table.Ranks() {
			if r.Contains(p) {
				matches++
			}
		}
		require.Equalf(t, 1, matches, "points %d must map to exactly one rank", p)

		rank := table.RankOf(p)
		assert.True(t, rank.Min <= p && p <= rank.Max)
	}
}

func TestDefaultTable_RanksAreOrdered(t *testing.T) {
	ranks := Default().Ranks()

	assert.Equal(t, int64(0), ranks[0].Min)
	for i := 1; i < len(ranks); i++ {
		assert.Equal(t, ranks[i-1].Max+1, ranks[i].Min)
	}
	assert.Equal(t, int64(TopRankCeiling), ranks[len(ranks)-1].Max)
}

func TestRankOf_Boundaries(t *testing.T) {
	table := Default()

	cases := []struct {
		points int64
		want   string
	}{
		{0, "E"},
		{9, "E"},
		{10, "D"},
		{19, "D"},
		{20, "C"},
		{50, "S"},
		{69, "S+"},
		{70, "NATIONAL LEVEL"},
		{80, "SHADOW MONARCH"},
		{1000, "SHADOW MONARCH"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, table.RankOf(tc.points).Name, "points=%d", tc.points)
	}
}

func TestRankOf_ClampsOutOfBandValues(t *testing.T) {
	table := Default()

	// Manual point edits have no upper cap; values past the sentinel stay
	// in the top band
	assert.Equal(t, "SHADOW MONARCH", table.RankOf(5000).Name)
	assert.Equal(t, "E", table.RankOf(-1).Name)
}

func TestNewTable_RejectsBrokenTables(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewTable(nil)
		assert.Error(t, err)
	})

	t.Run("does not start at zero", func(t *testing.T) {
		_, err := NewTable([]Rank{{Name: "X", Min: 1, Max: 10}})
		assert.Error(t, err)
	})

	t.Run("gap between ranks", func(t *testing.T) {
		_, err := NewTable([]Rank{
			{Name: "X", Min: 0, Max: 9},
			{Name: "Y", Min: 11, Max: 20},
		})
		assert.Error(t, err)
	})

	t.Run("overlap between ranks", func(t *testing.T) {
		_, err := NewTable([]Rank{
			{Name: "X", Min: 0, Max: 10},
			{Name: "Y", Min: 10, Max: 20},
		})
		assert.Error(t, err)
	})

	t.Run("inverted interval", func(t *testing.T) {
		_, err := NewTable([]Rank{{Name: "X", Min: 0, Max: -1}})
		assert.Error(t, err)
	})
}

func TestAchievements(t *testing.T) {
	cases := []struct {
		points int64
		want   []string
	}{
		{0, nil},
		{9, nil},
		{10, []string{"🥉"}},
		{29, []string{"🥉"}},
		{30, []string{"🥉", "🥈"}},
		{50, []string{"🥉", "🥈", "🥇"}},
		{80, []string{"🥉", "🥈", "🥇", "🏆"}},
		{500, []string{"🥉", "🥈", "🥇", "🏆"}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Achievements(tc.points), "points=%d", tc.points)
	}
}

func TestAchievements_Cumulative(t *testing.T) {
	// Reaching a higher threshold never removes a lower badge
	prev := 0
	for p := int64(0); p <= 100; p++ {
		got := Achievements(p)
		require.GreaterOrEqual(t, len(got), prev, "points=%d", p)
		prev = len(got)
	}
}
