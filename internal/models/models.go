package models

// UserProgress represents a member's XP state within a guild.
// XP counts toward the current level only; it resets to the remainder
// on every level-up.
type UserProgress struct {
	GuildID       string
	UserID        string
	XP            int
	Level         int
	LastMessageTS int64
}

// VoiceSession represents an open voice-credit interval. At most one
// exists per (guild, user); its presence means the member is accruing
// voice XP since StartTS.
type VoiceSession struct {
	GuildID string
	UserID  string
	StartTS int64
}

// LevelRoleBinding maps a level to the role granted on reaching it.
type LevelRoleBinding struct {
	GuildID string
	Level   int
	RoleID  string
}
