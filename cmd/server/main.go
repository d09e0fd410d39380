package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/config"
	"github.com/B1acB1rd/SolSwap/internal/database"
	"github.com/B1acB1rd/SolSwap/internal/handler"
	"github.com/B1acB1rd/SolSwap/internal/jobs"
	"github.com/B1acB1rd/SolSwap/internal/middleware"
	"github.com/B1acB1rd/SolSwap/internal/redis"
	"github.com/B1acB1rd/SolSwap/internal/repository"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	sessionRepo := repository.NewSessionRepository(db.DB)
	orderRepo := repository.NewOrderRepository(db.DB)

	var replyService service.ReplyGenerator
	if cfg.ReplyAPIURL != "" {
		replyService = service.NewReplyService(cfg.ReplyAPIURL, cfg.ReplyAPIKey, cfg.ReplyModel)
	} else {
		log.Warn().Msg("REPLY_API_URL not set, replies use fixed templates")
	}
	quoteService := service.NewQuoteService(cfg.PriceAPIURL)
	walletService := service.NewWalletService(cfg.WalletAPIURL)
	payoutService := service.NewPayoutService(cfg.PayoutAPIURL, cfg.PayoutAPIKey)

	conversationService := service.NewConversationService(
		sessionRepo, orderRepo, replyService, quoteService, walletService, payoutService,
	)

	rateLimiter := middleware.NewRedisRateLimiter(redisClient.Client)
	webhookSignatureMiddleware := middleware.NewWebhookSignatureMiddleware(cfg.WebhookSecret)
	adminAuthMiddleware := middleware.NewAdminAuthMiddleware(cfg.AdminTokenHash)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	chatHandler := handler.NewChatHandler(conversationService, rateLimiter, cfg.RateLimitPerMin)
	eventsHandler := handler.NewEventsHandler(conversationService)
	adminHandler := handler.NewAdminHandler(conversationService, adminAuthMiddleware.Handler)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/", chatHandler.Routes())
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(webhookSignatureMiddleware.Handler)
		r.Mount("/", eventsHandler.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Mount("/", adminHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(
		sessionRepo, conversationService, cfg.SessionRetention(), config.CleanupJobInterval,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
