package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_DSN", "postgres://localhost/levelbot")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TextXPMin)
	assert.Equal(t, 20, cfg.TextXPMax)
	assert.Equal(t, 10*time.Second, cfg.TextCooldown)
	assert.Equal(t, 6, cfg.VoiceXPPerMinute)
	assert.Equal(t, "LevelBotXP", cfg.SheetName)
	assert.Equal(t, "10000", cfg.Port)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_DSN", "postgres://localhost/levelbot")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DISCORD_TOKEN", cfgErr.Field)
}

func TestLoadMissingDSN(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TEXT_XP_MIN", "5")
	t.Setenv("TEXT_XP_MAX", "15")
	t.Setenv("TEXT_COOLDOWN_S", "30")
	t.Setenv("VOICE_XP_PER_MIN", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.TextXPMin)
	assert.Equal(t, 15, cfg.TextXPMax)
	assert.Equal(t, 30*time.Second, cfg.TextCooldown)
	assert.Equal(t, 2, cfg.VoiceXPPerMinute)
}

func TestLoadRejectsNonIntegerOption(t *testing.T) {
	setRequired(t)
	t.Setenv("TEXT_XP_MIN", "lots")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvertedXPRange(t *testing.T) {
	setRequired(t)
	t.Setenv("TEXT_XP_MIN", "20")
	t.Setenv("TEXT_XP_MAX", "10")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNegativeCooldown(t *testing.T) {
	setRequired(t)
	t.Setenv("TEXT_COOLDOWN_S", "-1")

	_, err := Load()
	require.Error(t, err)
}
