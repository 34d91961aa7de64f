package utils

import (
	"fmt"
	"strings"
)

// FormatUserMention formats a user ID as a Discord mention
func FormatUserMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatRoleMention formats a role ID as a Discord role mention
func FormatRoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// ExtractRoleIDFromMention extracts the role ID from a Discord role
// mention, passing a bare ID through unchanged.
func ExtractRoleIDFromMention(mention string) string {
	roleID := strings.TrimPrefix(mention, "<@&")
	roleID = strings.TrimSuffix(roleID, ">")
	return roleID
}

// FormatLeaderboardEntry formats a leaderboard entry with rank, name, and
// level/XP standing
func FormatLeaderboardEntry(rank int, name string, level, xp int) string {
	medal := ""
	switch rank {
	case 1:
		medal = "🥇"
	case 2:
		medal = "🥈"
	case 3:
		medal = "🥉"
	default:
		medal = fmt.Sprintf("%d.", rank)
	}

	return fmt.Sprintf("%s %s — Lv %d • %d XP", medal, name, level, xp)
}

// TruncateString truncates a string to max length and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
