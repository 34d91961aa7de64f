package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgressRow(t *testing.T) {
	t.Parallel()

	row, ok := parseProgressRow([]string{"123456789", "alice", "3", "42", "2024-01-01 00:00:00"})
	require.True(t, ok)
	assert.Equal(t, ProgressRow{UserID: "123456789", Username: "alice", Level: 3, XP: 42}, row)
}

func TestParseProgressRowTextTypedID(t *testing.T) {
	t.Parallel()

	// Upserts store the id with a leading apostrophe to keep Sheets from
	// treating it as a number.
	row, ok := parseProgressRow([]string{"'123456789", "alice", "1", "10"})
	require.True(t, ok)
	assert.Equal(t, "123456789", row.UserID)
}

func TestParseProgressRowSkipsHeader(t *testing.T) {
	t.Parallel()

	_, ok := parseProgressRow([]string{"user_id", "username", "level", "xp", "last_update"})
	assert.False(t, ok)
}

func TestParseProgressRowSkipsNonNumericID(t *testing.T) {
	t.Parallel()

	_, ok := parseProgressRow([]string{"not-an-id", "alice", "1", "10"})
	assert.False(t, ok)

	_, ok = parseProgressRow([]string{"", "alice", "1", "10"})
	assert.False(t, ok)
}

func TestParseProgressRowSkipsShortRow(t *testing.T) {
	t.Parallel()

	_, ok := parseProgressRow([]string{"123", "alice", "1"})
	assert.False(t, ok)
}

func TestParseProgressRowToleratesMalformedNumbers(t *testing.T) {
	t.Parallel()

	row, ok := parseProgressRow([]string{"123", "alice", "three", "oops"})
	require.True(t, ok)
	assert.Equal(t, 0, row.Level)
	assert.Equal(t, 0, row.XP)
}

func TestSkippedRowDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	raw := [][]string{
		{"user_id", "username", "level", "xp", "last_update"},
		{"111", "alice", "2", "30"},
		{"bogus", "mallory", "1", "10"},
		{"222", "bob", "0", "5"},
	}

	var rows []ProgressRow
	for _, cells := range raw {
		if row, ok := parseProgressRow(cells); ok {
			rows = append(rows, row)
		}
	}

	require.Len(t, rows, 2)
	assert.Equal(t, "111", rows[0].UserID)
	assert.Equal(t, "222", rows[1].UserID)
}

func TestNormalizeIDCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123", normalizeIDCell(" '123 "))
	assert.Equal(t, "123", normalizeIDCell("123"))
	assert.Equal(t, "", normalizeIDCell(""))
}
