package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_MatchesYear(t *testing.T) {
	const cutover = 2025

	t.Run("zero year matches everything", func(t *testing.T) {
		q := Query{CutoverYear: cutover}
		assert.True(t, q.MatchesYear(2020))
		assert.True(t, q.MatchesYear(2030))
	})

	t.Run("legacy query returns the whole legacy epoch", func(t *testing.T) {
		q := Query{Year: 2023, CutoverYear: cutover}
		assert.True(t, q.MatchesYear(2021))
		assert.True(t, q.MatchesYear(2025))
		assert.False(t, q.MatchesYear(2026))
	})

	t.Run("post-cutover query is exact", func(t *testing.T) {
		q := Query{Year: 2026, CutoverYear: cutover}
		assert.True(t, q.MatchesYear(2026))
		assert.False(t, q.MatchesYear(2025))
		assert.False(t, q.MatchesYear(2027))
	})
}

func TestQuery_MatchesText(t *testing.T) {
	record := AllocationRecord{Sheet: "10", Plot: "155", LinkedRecordCode: "HS-2025-0042"}

	assert.True(t, Query{}.MatchesText(record))
	assert.True(t, Query{Text: "155"}.MatchesText(record))
	assert.True(t, Query{Text: "hs-2025"}.MatchesText(record), "case-insensitive")
	assert.False(t, Query{Text: "999"}.MatchesText(record))
}

func TestQuery_Matches(t *testing.T) {
	record := AllocationRecord{Ward: "Minh Hưng", Year: 2024, Sheet: "10", Plot: "155"}
	q := Query{Ward: "Minh Hưng", Year: 2024, CutoverYear: 2025}
	assert.True(t, q.Matches(record))

	q.Ward = "Nha Bích"
	assert.False(t, q.Matches(record))
}
