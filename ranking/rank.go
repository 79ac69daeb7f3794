package ranking

import (
	"fmt"
)

// Rank is a labeled, non-overlapping point interval with a display emoji.
// Intervals are inclusive on both ends.
type Rank struct {
	Name  string
	Min   int64
	Max   int64
	Emoji string
}

// Contains reports whether points falls inside the rank's interval.
func (r Rank) Contains(points int64) bool {
	return points >= r.Min && points <= r.Max
}

// TopRankCeiling is the sentinel upper bound of the highest rank. Points may
// exceed it (manual point edits have no upper cap); RankOf clamps such values
// into the top band.
const TopRankCeiling = 1000

// Table is an ordered, validated set of ranks covering [0, TopRankCeiling]
// with no gaps or overlaps.
type Table struct {
	ranks []Rank
}

// NewTable validates that the given ranks are contiguous and total starting
// at 0 and returns a Table. The ranks must already be ordered by Min.
func NewTable(ranks []Rank) (*Table, error) {
	if len(ranks) == 0 {
		return nil, fmt.Errorf("rank table is empty")
	}
	if ranks[0].Min != 0 {
		return nil, fmt.Errorf("rank table must start at 0, got %d", ranks[0].Min)
	}
	for i, r := range ranks {
		if r.Max < r.Min {
			return nil, fmt.Errorf("rank %q has inverted interval [%d, %d]", r.Name, r.Min, r.Max)
		}
		if i > 0 && r.Min != ranks[i-1].Max+1 {
			return nil, fmt.Errorf("rank table has a gap or overlap between %q and %q", ranks[i-1].Name, r.Name)
		}
	}
	return &Table{ranks: ranks}, nil
}

// Default returns the built-in rank table.
func Default() *Table {
	table, err := NewTable([]Rank{
		{Name: "E", Min: 0, Max: 9, Emoji: "🟤"},
		{Name: "D", Min: 10, Max: 19, Emoji: "🟣"},
		{Name: "C", Min: 20, Max: 29, Emoji: "🔵"},
		{Name: "B", Min: 30, Max: 39, Emoji: "🟢"},
		{Name: "A", Min: 40, Max: 49, Emoji: "🟡"},
		{Name: "S", Min: 50, Max: 59, Emoji: "🟠"},
		{Name: "S+", Min: 60, Max: 69, Emoji: "🔴"},
		{Name: "NATIONAL LEVEL", Min: 70, Max: 79, Emoji: "🌐"},
		{Name: "SHADOW MONARCH", Min: 80, Max: TopRankCeiling, Emoji: "👑"},
	})
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return table
}

// RankOf returns the single rank whose interval contains points. Negative
// points map to the lowest rank and points beyond the top ceiling map to the
// highest rank, so the function is total.
func (t *Table) RankOf(points int64) Rank {
	for _, r := range t.ranks {
		if r.Contains(points) {
			return r
		}
	}
	if points < 0 {
		return t.ranks[0]
	}
	return t.ranks[len(t.ranks)-1]
}

// Ranks returns the ordered rank list.
func (t *Table) Ranks() []Rank {
	out := make([]Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}
