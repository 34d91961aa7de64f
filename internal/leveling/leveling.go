// Package leveling implements the XP accrual and leveling engine: the
// leveling rule, the accrual engine resolving level-ups and reward roles,
// the text-XP cooldown gate, and the voice session tracker.
package leveling

import (
	"fmt"

	"go.uber.org/zap"

	"levelbot/internal/models"
)

// RequiredXP returns the XP needed to advance from level to level+1.
// Strictly positive and strictly increasing for all non-negative levels.
func RequiredXP(level int) int {
	return 100 + 50*level + 5*level*level
}

// ProgressStore is the subset of the persistent store the engine mutates.
type ProgressStore interface {
	GetOrCreateProgress(guildID, userID string) (models.UserProgress, error)
	UpdateProgress(guildID, userID string, xp, level int) error
	RoleForLevel(guildID string, level int) (string, bool, error)
}

// RoleGranter requests a reward role for a member. Failures are the
// caller's to swallow; a grant must never block or roll back an XP update.
type RoleGranter interface {
	GrantRole(guildID, userID, roleID string) error
}

// MirrorUpdate is the post-grant state replicated to the external mirror.
type MirrorUpdate struct {
	GuildID  string
	UserID   string
	Username string
	Level    int
	XP       int
}

// ProgressMirror accepts mirror updates without blocking.
type ProgressMirror interface {
	Enqueue(update MirrorUpdate)
}

// Result is the outcome of a grant.
type Result struct {
	LeveledUp bool
	Level     int
	XP        int
}

// Engine applies XP grants to the progress store and resolves the side
// effects of crossing level thresholds. Granter and mirror are optional;
// a nil collaborator disables that side effect.
type Engine struct {
	store   ProgressStore
	granter RoleGranter
	mirror  ProgressMirror
	logger  *zap.Logger
}

// NewEngine creates an accrual engine.
func NewEngine(store ProgressStore, granter RoleGranter, mirror ProgressMirror, logger *zap.Logger) *Engine {
	return &Engine{
		store:   store,
		granter: granter,
		mirror:  mirror,
		logger:  logger,
	}
}

// GrantXP adds amount to a member's XP, resolving any level-ups by
// repeated subtraction so one large grant can cross several thresholds.
// Each level crossed triggers at most one reward-role request. The final
// (xp, level) is written back as a single update, after which
// 0 <= xp < RequiredXP(level) holds. A zero amount is a legal no-op;
// a negative amount is a programming defect and is rejected.
func (e *Engine) GrantXP(guildID, userID, username string, amount int) (Result, error) {
	if amount < 0 {
		return Result{}, fmt.Errorf("negative xp amount %d for user %s", amount, userID)
	}

	progress, err := e.store.GetOrCreateProgress(guildID, userID)
	if err != nil {
		return Result{}, err
	}

	xp := progress.XP + amount
	level := progress.Level
	var rolesToGrant []string

	for xp >= RequiredXP(level) {
		xp -= RequiredXP(level)
		level++

		roleID, ok, err := e.store.RoleForLevel(guildID, level)
		if err != nil {
			e.logger.Warn("level role lookup failed",
				zap.String("guild_id", guildID),
				zap.Int("level", level),
				zap.Error(err))
			continue
		}
		if ok {
			rolesToGrant = append(rolesToGrant, roleID)
		}
	}

	if err := e.store.UpdateProgress(guildID, userID, xp, level); err != nil {
		return Result{}, err
	}

	// Grants run off the XP path: a slow or failing Discord call must not
	// stall event processing. One goroutine keeps the per-level order.
	if e.granter != nil && len(rolesToGrant) > 0 {
		go e.requestRoles(guildID, userID, rolesToGrant)
	}

	if e.mirror != nil {
		e.mirror.Enqueue(MirrorUpdate{
			GuildID:  guildID,
			UserID:   userID,
			Username: username,
			Level:    level,
			XP:       xp,
		})
	}

	return Result{
		LeveledUp: level > progress.Level,
		Level:     level,
		XP:        xp,
	}, nil
}

// requestRoles issues the reward-role grants collected during level
// resolution. Grant failures (missing permission, deleted role) are
// logged and swallowed; the XP update has already been committed.
func (e *Engine) requestRoles(guildID, userID string, roleIDs []string) {
	for _, roleID := range roleIDs {
		if err := e.granter.GrantRole(guildID, userID, roleID); err != nil {
			e.logger.Warn("reward role grant failed",
				zap.String("guild_id", guildID),
				zap.String("user_id", userID),
				zap.String("role_id", roleID),
				zap.Error(err))
		}
	}
}
