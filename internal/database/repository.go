package database

import (
	"database/sql"
	"fmt"

	"levelbot/internal/models"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateProgress returns the progress record for a member, creating
// a zeroed one on first observed activity.
func (r *Repository) GetOrCreateProgress(guildID, userID string) (models.UserProgress, error) {
	progress := models.UserProgress{GuildID: guildID, UserID: userID}

	err := r.db.conn.QueryRow(
		"SELECT xp, level, last_msg_ts FROM users WHERE guild_id = $1 AND user_id = $2",
		guildID, userID).Scan(&progress.XP, &progress.Level, &progress.LastMessageTS)
	if err == sql.ErrNoRows {
		_, err = r.db.conn.Exec(`
			INSERT INTO users (guild_id, user_id, xp, level, last_msg_ts)
			VALUES ($1, $2, 0, 0, 0)
			ON CONFLICT (guild_id, user_id) DO NOTHING`,
			guildID, userID)
		if err != nil {
			return progress, fmt.Errorf("failed to create progress: %w", err)
		}
		return progress, nil
	}
	if err != nil {
		return progress, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// UpdateProgress writes the post-grant (xp, level) pair in one statement.
func (r *Repository) UpdateProgress(guildID, userID string, xp, level int) error {
	_, err := r.db.conn.Exec(
		"UPDATE users SET xp = $1, level = $2 WHERE guild_id = $3 AND user_id = $4",
		xp, level, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// SetLastMessageTime records the timestamp of the last text-XP-eligible
// message. Bookkeeping only; leveling does not depend on it.
func (r *Repository) SetLastMessageTime(guildID, userID string, ts int64) error {
	_, err := r.db.conn.Exec(
		"UPDATE users SET last_msg_ts = $1 WHERE guild_id = $2 AND user_id = $3",
		ts, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to set last message time: %w", err)
	}
	return nil
}

// ImportProgress overwrites a member's progress with externally sourced
// state (sheet bootstrap).
func (r *Repository) ImportProgress(guildID, userID string, xp, level int) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO users (guild_id, user_id, xp, level, last_msg_ts)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET xp = EXCLUDED.xp, level = EXCLUDED.level`,
		guildID, userID, xp, level)
	if err != nil {
		return fmt.Errorf("failed to import progress: %w", err)
	}
	return nil
}

// TopProgress returns the top members of a guild ordered by XP descending.
func (r *Repository) TopProgress(guildID string, limit int) ([]models.UserProgress, error) {
	rows, err := r.db.conn.Query(
		"SELECT user_id, xp, level FROM users WHERE guild_id = $1 ORDER BY xp DESC LIMIT $2",
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top progress: %w", err)
	}
	defer rows.Close()

	var top []models.UserProgress
	for rows.Next() {
		p := models.UserProgress{GuildID: guildID}
		if err := rows.Scan(&p.UserID, &p.XP, &p.Level); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		top = append(top, p)
	}
	return top, rows.Err()
}

// StartVoiceSession opens a voice-credit interval, replacing any stale
// record left by a missed end event.
func (r *Repository) StartVoiceSession(guildID, userID string, startTS int64) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO voice_sessions (guild_id, user_id, start_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET start_ts = EXCLUDED.start_ts`,
		guildID, userID, startTS)
	if err != nil {
		return fmt.Errorf("failed to start voice session: %w", err)
	}
	return nil
}

// PopVoiceSession atomically removes and returns the open session start
// timestamp. The second result reports whether a session existed.
func (r *Repository) PopVoiceSession(guildID, userID string) (int64, bool, error) {
	var startTS int64
	err := r.db.conn.QueryRow(
		"DELETE FROM voice_sessions WHERE guild_id = $1 AND user_id = $2 RETURNING start_ts",
		guildID, userID).Scan(&startTS)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to pop voice session: %w", err)
	}
	return startTS, true, nil
}

// HasVoiceSession reports whether a member has an open voice session.
func (r *Repository) HasVoiceSession(guildID, userID string) (bool, error) {
	var one int
	err := r.db.conn.QueryRow(
		"SELECT 1 FROM voice_sessions WHERE guild_id = $1 AND user_id = $2",
		guildID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check voice session: %w", err)
	}
	return true, nil
}

// SetLevelRole binds a role to a level, replacing any existing binding.
func (r *Repository) SetLevelRole(guildID string, level int, roleID string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO level_roles (guild_id, level, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, level) DO UPDATE SET role_id = EXCLUDED.role_id`,
		guildID, level, roleID)
	if err != nil {
		return fmt.Errorf("failed to set level role: %w", err)
	}
	return nil
}

// RoleForLevel looks up the reward role bound to a level, if any.
func (r *Repository) RoleForLevel(guildID string, level int) (string, bool, error) {
	var roleID string
	err := r.db.conn.QueryRow(
		"SELECT role_id FROM level_roles WHERE guild_id = $1 AND level = $2",
		guildID, level).Scan(&roleID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get role for level: %w", err)
	}
	return roleID, true, nil
}

// ListLevelRoles returns all level-role bindings of a guild ordered by level.
func (r *Repository) ListLevelRoles(guildID string) ([]models.LevelRoleBinding, error) {
	rows, err := r.db.conn.Query(
		"SELECT level, role_id FROM level_roles WHERE guild_id = $1 ORDER BY level ASC",
		guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list level roles: %w", err)
	}
	defer rows.Close()

	var bindings []models.LevelRoleBinding
	for rows.Next() {
		b := models.LevelRoleBinding{GuildID: guildID}
		if err := rows.Scan(&b.Level, &b.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan level role row: %w", err)
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}
