package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"anonchat/backend/internal/api/handler"
	"anonchat/backend/internal/config"
	"anonchat/backend/internal/localization"
	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/pairing"
	"anonchat/backend/internal/registry"
	"anonchat/backend/internal/relay"
	"anonchat/backend/internal/storage"
	"anonchat/backend/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// A missing .env is fine in production, the environment is set
	// by the orchestrator there.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := setupStorage(ctx, cfg, log)

	loc, err := localization.NewLocalizer()
	if err != nil {
		log.Fatal("failed to load locales", zap.Error(err))
	}

	promReg := prometheus.NewRegistry()
	collector := metrics.NewPromCollector(promReg)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("failed to connect to Telegram", zap.Error(err))
	}
	client := telegram.NewClient(api, log)

	registrySvc := registry.NewService(store, log)
	pairingEng := pairing.NewEngine(store, collector, log)
	relayRouter := relay.NewRouter(store, client, collector, log)
	moderationSvc := moderation.NewService(store, client, collector, log, cfg.AdminID)

	bot := telegram.NewBotService(telegram.Deps{
		API:            api,
		Registry:       registrySvc,
		Pairing:        pairingEng,
		Relay:          relayRouter,
		Moderation:     moderationSvc,
		Storage:        store,
		Localizer:      loc,
		Log:            log,
		AdminID:        cfg.AdminID,
		BroadcastPause: cfg.BroadcastPause,
	})

	promo := bot.StartPromo(ctx, cfg.PromoInterval)
	defer promo.Stop()

	h := handler.NewHandler(registrySvc, moderationSvc, store, log, cfg.AdminID, cfg.JWTSecret)
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      handler.NewRouter(h, metrics.Handler(promReg)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("admin API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("admin API stopped", zap.Error(err))
		}
	}()

	bot.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin API shutdown failed", zap.Error(err))
	}
	log.Info("bye")
}

func setupStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) *storage.Service {
	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey, which the storage layer relies on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}

	store := storage.NewService(db, rdb)
	if err := store.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database and Redis connections established, migrations complete")
	return store
}
