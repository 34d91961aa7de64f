package discord

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"levelbot/internal/config"
	"levelbot/internal/database"
	"levelbot/internal/leveling"
	"levelbot/pkg/utils"
)

const leaderboardSize = 10

// NewSession creates a Discord session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return session, nil
}

// RoleGranter grants reward roles through the Discord API.
type RoleGranter struct {
	session *discordgo.Session
}

// NewRoleGranter creates a role granter over the session.
func NewRoleGranter(session *discordgo.Session) *RoleGranter {
	return &RoleGranter{session: session}
}

// GrantRole adds a role to a guild member.
func (g *RoleGranter) GrantRole(guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// Bot represents the Discord bot
type Bot struct {
	session *discordgo.Session
	repo    *database.Repository
	engine  *leveling.Engine
	tracker *leveling.Tracker
	gate    *leveling.Gate
	cfg     *config.Config
	logger  *zap.Logger
}

// New creates a new Discord bot over an existing session.
func New(session *discordgo.Session, repo *database.Repository, engine *leveling.Engine,
	tracker *leveling.Tracker, gate *leveling.Gate, cfg *config.Config, logger *zap.Logger,
) *Bot {
	bot := &Bot{
		session: session,
		repo:    repo,
		engine:  engine,
		tracker: tracker,
		gate:    gate,
		cfg:     cfg,
		logger:  logger,
	}

	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.voiceStateUpdate)

	return bot
}

// Start starts the bot
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	b.logger.Info("bot is running")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	return b.session.Close()
}

// messageCreate awards cooldown-gated text XP, then dispatches commands.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	now := time.Now()
	if b.gate.Admit(m.GuildID, m.Author.ID, now) {
		if err := b.repo.SetLastMessageTime(m.GuildID, m.Author.ID, now.Unix()); err != nil {
			b.logger.Warn("failed to record message time", zap.Error(err))
		}

		amount := b.cfg.TextXPMin + rand.Intn(b.cfg.TextXPMax-b.cfg.TextXPMin+1)
		result, err := b.engine.GrantXP(m.GuildID, m.Author.ID, m.Author.Username, amount)
		if err != nil {
			b.logger.Error("text xp grant failed",
				zap.String("guild_id", m.GuildID),
				zap.String("user_id", m.Author.ID),
				zap.Error(err))
		} else if result.LeveledUp {
			msg := fmt.Sprintf("🎉 %s reached **level %d**!",
				utils.FormatUserMention(m.Author.ID), result.Level)
			if _, err := s.ChannelMessageSend(m.ChannelID, msg); err != nil {
				b.logger.Warn("failed to announce level-up", zap.Error(err))
			}
		}
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case content == "!rank" || strings.HasPrefix(content, "!rank "):
		b.handleRankCommand(s, m)
	case content == "!leaderboard":
		b.handleLeaderboardCommand(s, m)
	case strings.HasPrefix(content, "!setrole "):
		b.handleSetRoleCommand(s, m)
	case content == "!roles":
		b.handleRolesCommand(s, m)
	}
}

// voiceStateUpdate drives the session tracker from voice presence
// transitions and converts settled sessions into XP.
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
		return
	}

	var beforeChannel string
	var beforeMute, beforeDeaf bool
	if vs.BeforeUpdate != nil {
		beforeChannel = vs.BeforeUpdate.ChannelID
		beforeMute = vs.BeforeUpdate.SelfMute
		beforeDeaf = vs.BeforeUpdate.SelfDeaf
	}

	from := presenceOf(beforeChannel, beforeMute, beforeDeaf)
	to := presenceOf(vs.ChannelID, vs.SelfMute, vs.SelfDeaf)
	actions := transitionActions(from, to, beforeChannel != vs.ChannelID)
	now := time.Now()

	if actions.end {
		b.settleVoiceSession(vs, now)
	}

	if actions.startIfUntracked {
		tracked, err := b.tracker.Tracked(vs.GuildID, vs.UserID)
		if err != nil {
			b.logger.Warn("voice session lookup failed", zap.Error(err))
			return
		}
		actions.start = !tracked
	}

	if actions.start {
		if err := b.tracker.Start(vs.GuildID, vs.UserID, now); err != nil {
			b.logger.Warn("failed to start voice session",
				zap.String("guild_id", vs.GuildID),
				zap.String("user_id", vs.UserID),
				zap.Error(err))
		}
	}
}

// settleVoiceSession ends the member's open session, if any, and grants
// the earned XP. Voice level-ups are logged rather than announced since
// there is no originating text channel.
func (b *Bot) settleVoiceSession(vs *discordgo.VoiceStateUpdate, now time.Time) {
	amount, err := b.tracker.End(vs.GuildID, vs.UserID, now)
	if err != nil {
		b.logger.Warn("failed to end voice session",
			zap.String("guild_id", vs.GuildID),
			zap.String("user_id", vs.UserID),
			zap.Error(err))
		return
	}
	if amount == 0 {
		return
	}

	username := vs.UserID
	if vs.Member != nil && vs.Member.User != nil {
		username = vs.Member.User.Username
	}

	result, err := b.engine.GrantXP(vs.GuildID, vs.UserID, username, amount)
	if err != nil {
		b.logger.Error("voice xp grant failed",
			zap.String("guild_id", vs.GuildID),
			zap.String("user_id", vs.UserID),
			zap.Error(err))
		return
	}
	if result.LeveledUp {
		b.logger.Info("voice level-up",
			zap.String("guild_id", vs.GuildID),
			zap.String("user_id", vs.UserID),
			zap.Int("level", result.Level))
	}
}

// handleRankCommand handles !rank [@member]
func (b *Bot) handleRankCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	userID := m.Author.ID
	if len(m.Mentions) > 0 {
		userID = m.Mentions[0].ID
	}

	progress, err := b.repo.GetOrCreateProgress(m.GuildID, userID)
	if err != nil {
		b.logger.Error("rank lookup failed", zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong fetching that rank.")
		return
	}

	msg := fmt.Sprintf("📊 %s — level **%d**, XP **%d/%d**",
		utils.FormatUserMention(userID), progress.Level, progress.XP,
		leveling.RequiredXP(progress.Level))
	s.ChannelMessageSend(m.ChannelID, msg)
}

// handleLeaderboardCommand handles !leaderboard
func (b *Bot) handleLeaderboardCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	top, err := b.repo.TopProgress(m.GuildID, leaderboardSize)
	if err != nil {
		b.logger.Error("leaderboard query failed", zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong fetching the leaderboard.")
		return
	}
	if len(top) == 0 {
		s.ChannelMessageSend(m.ChannelID, "No one is ranked yet.")
		return
	}

	var lines []string
	for i, p := range top {
		name := b.memberDisplayName(s, m.GuildID, p.UserID)
		lines = append(lines, utils.FormatLeaderboardEntry(i+1, name, p.Level, p.XP))
	}
	s.ChannelMessageSend(m.ChannelID, strings.Join(lines, "\n"))
}

// handleSetRoleCommand handles !setrole <level> <@role|roleID>
func (b *Bot) handleSetRoleCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil || perms&discordgo.PermissionManageRoles == 0 {
		s.ChannelMessageSend(m.ChannelID, "You need the Manage Roles permission to do that.")
		return
	}

	args := strings.Fields(strings.TrimPrefix(strings.TrimSpace(m.Content), "!setrole"))
	if len(args) != 2 {
		s.ChannelMessageSend(m.ChannelID, "Usage: `!setrole <level> <@role>`")
		return
	}

	level, err := strconv.Atoi(args[0])
	if err != nil || level < 1 {
		s.ChannelMessageSend(m.ChannelID, "Level must be a positive number.")
		return
	}

	roleID := utils.ExtractRoleIDFromMention(args[1])
	if _, err := s.State.Role(m.GuildID, roleID); err != nil {
		s.ChannelMessageSend(m.ChannelID, "I can't find that role.")
		return
	}

	if err := b.repo.SetLevelRole(m.GuildID, level, roleID); err != nil {
		b.logger.Error("failed to set level role", zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong saving that binding.")
		return
	}

	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("✅ %s is now the reward for **level %d**.",
		utils.FormatRoleMention(roleID), level))
}

// handleRolesCommand handles !roles
func (b *Bot) handleRolesCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	bindings, err := b.repo.ListLevelRoles(m.GuildID)
	if err != nil {
		b.logger.Error("failed to list level roles", zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong listing the role rewards.")
		return
	}
	if len(bindings) == 0 {
		s.ChannelMessageSend(m.ChannelID, "No role rewards configured. Use `!setrole <level> <@role>`.")
		return
	}

	lines := []string{"🎯 Level rewards:"}
	for _, binding := range bindings {
		label := binding.RoleID
		if _, err := s.State.Role(m.GuildID, binding.RoleID); err == nil {
			label = utils.FormatRoleMention(binding.RoleID)
		}
		lines = append(lines, fmt.Sprintf("• Lv %d → %s", binding.Level, label))
	}
	s.ChannelMessageSend(m.ChannelID, strings.Join(lines, "\n"))
}

// memberDisplayName resolves a member's display name from state, then the
// API, degrading to a mention when the member is gone.
func (b *Bot) memberDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
	}
	if err != nil || member == nil || member.User == nil {
		return utils.FormatUserMention(userID)
	}
	if member.Nick != "" {
		return utils.TruncateString(member.Nick, 32)
	}
	return utils.TruncateString(member.User.Username, 32)
}
