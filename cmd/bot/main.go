package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"levelbot/internal/config"
	"levelbot/internal/database"
	"levelbot/internal/discord"
	"levelbot/internal/health"
	"levelbot/internal/leveling"
	"levelbot/internal/sheets"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	repo := database.NewRepository(db)

	// The sheets mirror is best-effort: if it cannot be set up the bot
	// runs without it.
	var progressMirror leveling.ProgressMirror
	mirror, err := sheets.New(ctx, cfg, logger)
	if err != nil {
		logger.Warn("sheets mirror disabled", zap.Error(err))
	} else {
		progressMirror = mirror
		go mirror.Run(ctx)
	}

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		logger.Fatal("failed to create Discord session", zap.Error(err))
	}

	engine := leveling.NewEngine(repo, discord.NewRoleGranter(session), progressMirror, logger)
	tracker := leveling.NewTracker(repo, cfg.VoiceXPPerMinute, logger)
	gate := leveling.NewGate(cfg.TextCooldown)

	bot := discord.New(session, repo, engine, tracker, gate, cfg, logger)
	if err := bot.Start(); err != nil {
		logger.Fatal("failed to start bot", zap.Error(err))
	}
	defer bot.Stop()

	if mirror != nil && cfg.BootstrapGuildID != "" {
		go bootstrapFromSheet(ctx, mirror, repo, cfg.BootstrapGuildID, logger)
	}

	srv := health.NewServer(cfg.Port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", zap.Error(err))
		}
	}()
	defer srv.Shutdown(context.Background())

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("shutting down bot")
}

// bootstrapFromSheet repopulates the local store from the sheet replica.
// Best-effort: any failure is logged and the bot keeps running on local
// state.
func bootstrapFromSheet(ctx context.Context, mirror *sheets.Mirror, repo *database.Repository,
	guildID string, logger *zap.Logger,
) {
	rows, err := mirror.Bootstrap(ctx)
	if err != nil {
		logger.Warn("sheet bootstrap failed", zap.Error(err))
		return
	}

	imported := 0
	for _, row := range rows {
		if err := repo.ImportProgress(guildID, row.UserID, row.XP, row.Level); err != nil {
			logger.Warn("failed to import sheet row",
				zap.String("user_id", row.UserID),
				zap.Error(err))
			continue
		}
		imported++
	}
	logger.Info("sheet bootstrap complete", zap.Int("imported", imported))
}
