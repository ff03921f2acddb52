// File: skybook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skybook/config"
	"skybook/cron"
	"skybook/database"
	bookingRepo "skybook/database/repository/booking"
	"skybook/handlers"
	"skybook/middleware"
	"skybook/routes"
	"skybook/services/agent"
	"skybook/services/booking"
	"skybook/services/farecache"
	ai "skybook/services/intelligence"
	"skybook/services/normalizer"
	"skybook/services/notification"
	"skybook/services/provider"
	"skybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	cfg := config.AppConfig

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	recordsRepo := bookingRepo.NewMongoBookingRepo()

	// provider client with retry and circuit breaking.
	providerClient := provider.NewHTTPClient(
		cfg.ProviderBaseURL,
		cfg.ProviderAPIKey,
		time.Duration(cfg.ProviderTimeoutSec)*time.Second,
	)
	retryPolicy := provider.RetryPolicy{
		MaxAttempts: cfg.ProviderMaxRetries,
		BaseBackoff: time.Duration(cfg.ProviderBackoffMS) * time.Millisecond,
		MaxBackoff:  8 * time.Second,
	}
	breaker := provider.NewCircuitBreaker("flight-provider", 30*time.Second, uint32(cfg.ProviderBreakerTrip))

	// notification queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer asynqClient.Close()
	go cron.InitNotificationWorker()

	// services.
	fareCache := farecache.NewRedisCache(
		utils.GetFareCacheClient(),
		time.Duration(cfg.FareCacheTTLMinutes)*time.Minute,
	)
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	bookingService := &booking.DefaultBookingSessionService{
		Store:    booking.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL),
		Cache:    fareCache,
		Provider: providerClient,
		Retry:    retryPolicy,
		Breaker:  breaker,
		Records:  recordsRepo,
		Notifier: notification.NewQueueDispatcher(asynqClient),
		Locks:    utils.NewSessionLocks(),
		Policy: booking.Policy{
			SessionTTL:      sessionTTL,
			CancellationFee: cfg.CancellationFee,
			Currency:        "INR",
		},
	}

	var extractor ai.Extractor = ai.KeywordExtractor{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiExtractor(cfg.GeminiAPIKey)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize gemini extractor: %v", err)
		}
		extractor = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, falling back to keyword extraction")
	}

	ctxStore := ai.NewRedisContextStore(utils.GetContextCacheClient(), sessionTTL)
	conversationAgent := &agent.Agent{
		Extractor: extractor,
		Context:   ctxStore,
		Booking:   bookingService,
		AgePolicy: normalizer.AgePolicy{
			ChildMinAge: cfg.ChildMinAge,
			AdultMinAge: cfg.AdultMinAge,
		},
	}

	webhookHandler := handlers.NewWebhookHandler(conversationAgent)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		HandleInbound:   webhookHandler.HandleInbound,
		GetBookingByPNR: bookingHandler.GetBookingByPNR,
		GetSession:      bookingHandler.GetSession,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
