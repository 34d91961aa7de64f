package leveling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"levelbot/internal/leveling"
)

func TestGateAdmitsFirstMessage(t *testing.T) {
	t.Parallel()
	gate := leveling.NewGate(10 * time.Second)

	assert.True(t, gate.Admit("g", "u", time.Now()))
}

func TestGateDeniesWithinCooldown(t *testing.T) {
	t.Parallel()
	gate := leveling.NewGate(10 * time.Second)
	now := time.Now()

	assert.True(t, gate.Admit("g", "u", now))
	assert.False(t, gate.Admit("g", "u", now.Add(9*time.Second)))
}

func TestGateAdmitsAfterCooldown(t *testing.T) {
	t.Parallel()
	gate := leveling.NewGate(10 * time.Second)
	now := time.Now()

	assert.True(t, gate.Admit("g", "u", now))
	assert.True(t, gate.Admit("g", "u", now.Add(10*time.Second)))
}

func TestGateDenialDoesNotResetTimer(t *testing.T) {
	t.Parallel()
	gate := leveling.NewGate(10 * time.Second)
	now := time.Now()

	assert.True(t, gate.Admit("g", "u", now))
	assert.False(t, gate.Admit("g", "u", now.Add(5*time.Second)))
	// 10s after the accepted message, not the denied one.
	assert.True(t, gate.Admit("g", "u", now.Add(10*time.Second)))
}

func TestGateTracksMembersIndependently(t *testing.T) {
	t.Parallel()
	gate := leveling.NewGate(10 * time.Second)
	now := time.Now()

	assert.True(t, gate.Admit("g", "u1", now))
	assert.True(t, gate.Admit("g", "u2", now))
	assert.True(t, gate.Admit("g2", "u1", now))
}
