package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUserMention(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<@123>", FormatUserMention("123"))
}

func TestFormatRoleMention(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<@&456>", FormatRoleMention("456"))
}

func TestExtractRoleIDFromMention(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "456", ExtractRoleIDFromMention("<@&456>"))
	assert.Equal(t, "456", ExtractRoleIDFromMention("456"))
}

func TestFormatLeaderboardEntry(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "🥇 alice — Lv 3 • 42 XP", FormatLeaderboardEntry(1, "alice", 3, 42))
	assert.Equal(t, "🥈 bob — Lv 2 • 10 XP", FormatLeaderboardEntry(2, "bob", 2, 10))
	assert.Equal(t, "🥉 carol — Lv 1 • 5 XP", FormatLeaderboardEntry(3, "carol", 1, 5))
	assert.Equal(t, "4. dave — Lv 0 • 99 XP", FormatLeaderboardEntry(4, "dave", 0, 99))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "longer ...", TruncateString("longer string", 10))
}
