package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
	"github.com/jkirui/shellbot-agent/internal/bot"
	"github.com/jkirui/shellbot-agent/internal/executor"
	"github.com/jkirui/shellbot-agent/internal/llm"
	"github.com/jkirui/shellbot-agent/internal/logging"
	"github.com/jkirui/shellbot-agent/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := llm.NewClient(cfg, logger)
	exec := executor.New(cfg.WorkingDir, cfg.CommandTimeout, logger)

	b, err := bot.New(cfg, gateway, exec, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	if cfg.StatusEnabled() {
		srv := server.New(cfg, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("status server error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("status API disabled, no STATUS_API_KEY configured")
	}

	logger.Info("agent starting",
		zap.Int("allowed_chats", len(cfg.AllowedChatIDs)),
		zap.String("model", cfg.LLMModel),
		zap.String("working_dir", cfg.WorkingDir))

	// Tell systemd we are up; a no-op outside a systemd unit
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	if err := b.Run(ctx); err != nil {
		logger.Fatal("bot error", zap.Error(err))
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	logger.Info("agent stopped")
}
