package leveling

import (
	"sync"
	"time"
)

// Gate rate-limits text XP per (guild, user). State is process-local and
// ephemeral: losing it on restart only shortens the next enforced wait.
type Gate struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
}

// NewGate creates a cooldown gate with the given minimum spacing.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// Admit reports whether a text-XP grant is allowed for the member at now,
// recording now as the last accepted timestamp when it is.
func (g *Gate) Admit(guildID, userID string, now time.Time) bool {
	key := guildID + ":" + userID

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[key]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.last[key] = now
	return true
}
