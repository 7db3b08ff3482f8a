package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/easyfit-labs/trialbot/internal/booking"
	"github.com/easyfit-labs/trialbot/internal/config"
	"github.com/easyfit-labs/trialbot/internal/conversation"
	"github.com/easyfit-labs/trialbot/internal/extract"
	"github.com/easyfit-labs/trialbot/internal/llm"
	"github.com/easyfit-labs/trialbot/internal/magicline"
	"github.com/easyfit-labs/trialbot/internal/messaging/whatsapp"
	"github.com/easyfit-labs/trialbot/internal/observability/metrics"
	"github.com/easyfit-labs/trialbot/internal/profile"
	"github.com/easyfit-labs/trialbot/internal/webhook"
	"github.com/easyfit-labs/trialbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting trialbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	loc, err := time.LoadLocation(cfg.StudioTimezone)
	if err != nil {
		logger.Error("invalid studio timezone", "tz", cfg.StudioTimezone, "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to initialize gemini client", "error", err)
		os.Exit(1)
	}
	defer gemini.Close()

	registry := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(registry)

	profiles := profile.NewRedisStore(redisClient, nil)
	provider := magicline.NewClient(magicline.Config{
		BaseURL:            cfg.MagiclineBaseURL,
		APIKey:             cfg.MagiclineAPIKey,
		StudioID:           cfg.MagiclineStudioID,
		BookableID:         cfg.MagiclineBookableID,
		TrialOfferConfigID: cfg.MagiclineTrialConfigID,
		Timeout:            cfg.MagiclineTimeout,
	}, logger)

	orchestrator := booking.NewOrchestrator(
		provider,
		profiles,
		time.Duration(cfg.SlotDurationMinutes)*time.Minute,
		loc,
		logger,
	)
	extractor := extract.New(gemini, logger).WithMetrics(botMetrics)

	service := conversation.NewService(conversation.Options{
		Chat:         gemini,
		Extractor:    extractor,
		Profiles:     profiles,
		Redis:        redisClient,
		HistoryLimit: cfg.HistoryLimit,
		Orchestrator: orchestrator,
		Metrics:      botMetrics,
		Logger:       logger,
		Location:     loc,
	})

	sender := whatsapp.NewClient(cfg.WhatsAppGraphBaseURL, cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID, logger)
	webhookHandler := webhook.NewHandler(cfg.WhatsAppVerifyToken, service, sender, webhook.NewDeduper(10*time.Minute, 4096), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	webhookHandler.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
