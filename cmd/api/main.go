package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starmf-gateway/config"
	httpHandler "starmf-gateway/internal/adapter/http/handler"
	pgStorage "starmf-gateway/internal/adapter/storage/postgres"
	redisStorage "starmf-gateway/internal/adapter/storage/redis"
	"starmf-gateway/internal/bse"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/internal/service"
	"starmf-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting StAR MF Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	orderRepo := pgStorage.NewOrderRepo(pool)
	clientRepo := pgStorage.NewClientRepo(pool)
	userRepo := pgStorage.NewUserRepo(pool)

	// Initialize Redis stores
	statusCache := redisStorage.NewStatusCache(rdb)
	refGuard := redisStorage.NewReferenceGuard(rdb)

	// Initialize exchange gateway
	classifier := bse.NewClassifier()
	parser := bse.NewResponseParser(classifier)
	transport := bse.NewHTTPTransport(cfg.BSE.BaseURL, cfg.BSE.OrderPath, cfg.BSE.RequestTimeout, log)
	session := bse.NewSessionManager(transport, parser, classifier, cfg.BSE.UserID, cfg.BSE.Password, cfg.BSE.SessionTimeout, log)
	orderCodec := bse.NewOrderCodec(parser, cfg.BSE.UserID, cfg.BSE.MemberCode)
	regCodec := bse.NewRegistrationCodec(cfg.BSE.UserID, cfg.BSE.MemberCode)
	gateway := bse.NewGateway(session, orderCodec, regCodec, transport, classifier, cfg.BSE.RegistrationPath, log)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, gateway)
	orderSvc := service.NewOrderService(orderRepo, refGuard, statusCache, gateway, log)
	clientSvc := service.NewClientService(clientRepo, gateway, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		OrderSvc:       orderSvc,
		ClientSvc:      clientSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
