package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-presence/internal/api/routes"
	"chat-presence/internal/chat"
	"chat-presence/internal/config"
	"chat-presence/internal/database"
	"chat-presence/internal/directory"
	"chat-presence/internal/kafka"
	"chat-presence/internal/presence"
	"chat-presence/internal/websocket"

	_ "chat-presence/docs"
)

// @title           Chat Presence Service API
// @version         1.0
// @description     Real-time presence tracking and broadcast service for the chat platform.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var publisher presence.StatusPublisher
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		statusProducer := kafka.NewStatusProducer(producer, cfg.Kafka.StatusTopic)
		defer statusProducer.Close()
		publisher = statusProducer
		logger.Info("kafka status publishing enabled", "topic", cfg.Kafka.StatusTopic)
	}

	registry := presence.NewRegistry()
	wsHub := websocket.NewHub(logger)
	broadcaster := presence.NewBroadcaster(wsHub, publisher, logger)
	chatHub := chat.NewHub(registry, broadcaster, wsHub, logger)
	facade := presence.NewQueryFacade(registry)
	userStore := directory.NewUserRepository(db)

	router := routes.NewRouter(routes.Dependencies{
		Facade:      facade,
		Users:       userStore,
		WSHub:       wsHub,
		ChatHub:     chatHub,
		RedisClient: redisClient,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsHub.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
