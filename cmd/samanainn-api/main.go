// README: Entry point; loads config, wires the chat pipeline, serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"samanainn/internal/ai"
	"samanainn/internal/config"
	httptransport "samanainn/internal/http"
	"samanainn/internal/infra"
	"samanainn/internal/maps"
	"samanainn/internal/modules/analytics"
	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/conversation"
	"samanainn/internal/responders"
	"samanainn/internal/service"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	defer dbPool.Close()

	if cfg.DB.AutoMigrate {
		dir, err := infra.MigrationsDir()
		if err != nil {
			logger.Fatal("locate migrations", zap.Error(err))
		}
		if err := infra.ApplyMigrations(ctx, dbPool, dir); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()
	if err := infra.PingRedis(ctx, redisClient); err != nil {
		logger.Fatal("redis init", zap.Error(err))
	}

	catalogStore := catalog.NewStore(dbPool)

	convSvc := conversation.NewService(
		conversation.NewStore(dbPool),
		conversation.NewCache(redisClient, cfg.Redis.ContextTTL),
		conversation.NewRedisLocker(redisClient, cfg.Redis.LockTTL),
		logger,
	)
	analyticsSvc := analytics.NewService(analytics.NewStore(dbPool), logger)

	var provider ai.CompletionProvider
	gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.Model)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("gemini key not set; free-form answers will apologize")
	case err != nil:
		logger.Fatal("gemini init", zap.Error(err))
	default:
		defer gemini.Close()
		provider = gemini
	}

	var places responders.PlaceLookup
	if cfg.Maps.APIKey != "" {
		ps, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("places init", zap.Error(err))
		}
		places = ps
	}

	now := time.Now
	booking := responders.NewBooking(cfg.Booking.BaseURL, logger)
	dispatcher := service.NewTurnDispatcher(
		service.NewCoordinator(logger),
		responders.NewQuery(catalogStore, places, now, logger),
		booking,
		responders.NewGeneric(provider, analyticsSvc, cfg.AI.Timeout, logger),
		[]responders.Responder{
			responders.NewLodging(catalogStore, logger),
			responders.NewFood(catalogStore, logger),
			responders.NewActivities(catalogStore, now, logger),
			responders.NewTransport(catalogStore, logger),
		},
		logger,
	)
	chatSvc := service.NewChatService(convSvc, dispatcher, analyticsSvc, logger)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Chat:           chatSvc,
		Booking:        booking,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RatePerMinute:  cfg.RateLimit.PerMinute,
		RateBurst:      cfg.RateLimit.Burst,
		Logger:         logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.Bool("production", cfg.IsProduction()))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
