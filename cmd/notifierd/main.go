package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/centavo-app/notifier/internal/config"
	"github.com/centavo-app/notifier/internal/database"
	"github.com/centavo-app/notifier/internal/native"
	"github.com/centavo-app/notifier/internal/notify"
	"github.com/centavo-app/notifier/internal/remindercache"
	"github.com/centavo-app/notifier/internal/repository"
	"github.com/centavo-app/notifier/internal/scheduler"
	"github.com/centavo-app/notifier/internal/session"
	"github.com/centavo-app/notifier/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}

	zlog := logger.New(cfg.LoggerLevel, cfg.LoggerFormat)
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	zlog.Info("database ready")

	repo := repository.NewReminderRepository(db)
	sess := session.New(cfg.UserID)
	cache := remindercache.New(repo, sess, zlog)

	// This binary has no OS notification scheduler of its own; the mobile
	// shells plug a real Host in here.
	projector := native.NewProjector(native.NoopHost{}, cfg.Lookahead(), cfg.MaxProjected, zlog)

	center := notify.NewCenter(16, notify.DefaultDismissAfter)
	sinks := []notify.Sink{center}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			zlog.Fatal("failed to create telegram sink", zap.Error(err))
		}
		sinks = append(sinks, tg)
		zlog.Info("telegram delivery enabled")
	}

	sched := scheduler.New(scheduler.Config{
		FireInterval:    cfg.FireInterval,
		RefreshInterval: cfg.RefreshInterval,
	}, cache, projector, zlog, sinks...)

	// Change signals: reminder mutations and user switches trigger an
	// immediate refresh-and-evaluate pass.
	repo.OnChange(sched.Notify)
	sess.OnChange(func(string) { sched.Notify() })

	// The banner stream normally feeds the UI; headless, it goes to the log.
	go func() {
		for b := range center.Banners() {
			zlog.Info("banner",
				zap.String("name", b.Name),
				zap.String("meta", b.Meta),
			)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		zlog.Info("shutting down")
		cancel()
	}()

	sched.Start(ctx)
}
