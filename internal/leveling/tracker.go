package leveling

import (
	"time"

	"go.uber.org/zap"
)

// SessionStore is the subset of the persistent store holding open voice
// sessions. Sessions are durable so a restart does not lose credit for
// members already connected.
type SessionStore interface {
	StartVoiceSession(guildID, userID string, startTS int64) error
	PopVoiceSession(guildID, userID string) (int64, bool, error)
	HasVoiceSession(guildID, userID string) (bool, error)
}

// Tracker converts voice-channel presence into XP. A session accrues from
// Start until End; only whole elapsed minutes count.
type Tracker struct {
	store       SessionStore
	xpPerMinute int
	logger      *zap.Logger
}

// NewTracker creates a voice session tracker.
func NewTracker(store SessionStore, xpPerMinute int, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:       store,
		xpPerMinute: xpPerMinute,
		logger:      logger,
	}
}

// Start opens a session at now, replacing any stale record left by a
// missed end event.
func (t *Tracker) Start(guildID, userID string, now time.Time) error {
	return t.store.StartVoiceSession(guildID, userID, now.Unix())
}

// Tracked reports whether the member has an open session.
func (t *Tracker) Tracked(guildID, userID string) (bool, error) {
	return t.store.HasVoiceSession(guildID, userID)
}

// End closes the member's session, if any, and returns the XP earned:
// floor(elapsed minutes) * xpPerMinute. No open session yields zero XP and
// no error; sub-minute sessions yield zero XP.
func (t *Tracker) End(guildID, userID string, now time.Time) (int, error) {
	startTS, ok, err := t.store.PopVoiceSession(guildID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	elapsed := now.Unix() - startTS
	if elapsed < 0 {
		// Clock skew between the recorded start and now; treat as empty.
		t.logger.Warn("voice session ended before it started",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.Int64("elapsed_seconds", elapsed))
		return 0, nil
	}

	minutes := elapsed / 60
	return int(minutes) * t.xpPerMinute, nil
}
