package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/notify"
	"goalkeeper/backend/internal/slumps"
	"goalkeeper/backend/internal/storage"
	"goalkeeper/backend/internal/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// App holds the connections and services shared by the server and the admin CLI.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Storage  *storage.Service
	Engine   *slumps.Engine
	Registry *prometheus.Registry
	Log      *slog.Logger
}

// New connects to PostgreSQL and, when configured, Redis, then wires the engine.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set, escalation events and run summaries are not persisted")
	}

	s := storage.NewStorageService(db, rdb)
	engine := slumps.NewEngine(s, newNotifier(cfg, log), cfg.StaleThreshold, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engine.Metrics = slumps.NewMetrics(reg)

	if cfg.TelegramEnabled() {
		reporter, err := telegram.NewReporter(cfg.TelegramBotToken, cfg.TelegramReportChatID)
		if err != nil {
			log.Warn("telegram reporter disabled", "error", err)
		} else {
			engine.Reporter = reporter
		}
	}

	log.Info("database and redis connections established", "redis", rdb != nil)
	return &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Storage:  s,
		Engine:   engine,
		Registry: reg,
		Log:      log,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return storage.Migrate(ctx, sqlDB)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func newNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if !cfg.EmailEnabled() {
		log.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, SOS emails are disabled")
		return notify.Noop{}
	}
	return notify.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.SendGridFromEmail, log)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
