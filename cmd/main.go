package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaseyLotteBenett/textroleplay/internal/cache"
	"github.com/CaseyLotteBenett/textroleplay/internal/config"
	"github.com/CaseyLotteBenett/textroleplay/internal/domain"
	"github.com/CaseyLotteBenett/textroleplay/internal/handler"
	"github.com/CaseyLotteBenett/textroleplay/internal/hub"
	"github.com/CaseyLotteBenett/textroleplay/internal/identity"
	"github.com/CaseyLotteBenett/textroleplay/internal/kafka"
	"github.com/CaseyLotteBenett/textroleplay/internal/repository"
	"github.com/CaseyLotteBenett/textroleplay/internal/service"
	"github.com/CaseyLotteBenett/textroleplay/pkg/database"
	"github.com/CaseyLotteBenett/textroleplay/pkg/jwt"
	"github.com/CaseyLotteBenett/textroleplay/pkg/log"
	"github.com/CaseyLotteBenett/textroleplay/pkg/middleware"
	"github.com/CaseyLotteBenett/textroleplay/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(log.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "textroleplay-chat",
	})
	logger := log.L()

	if cfg.Auth.Secret == "" {
		logger.Fatal().Msg("auth.secret is required (set SESSION_SECRET)")
	}

	// Database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Only the chat-owned tables migrate here; the characters table
	// belongs to the account system and is read-only for this service.
	if err := database.AutoMigrate(db, &domain.ChatRoomModel{}, &domain.MessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	roomRepo := repository.NewGormRoomRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	characters := identity.NewGormCharacterProvider(db)

	tokens := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenLifetime)

	// History cache is optional; without redis every page read hits the store.
	var historyCache cache.HistoryCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisHistoryCache(cfg.Redis, cfg.Redis.CachePrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		historyCache = redisCache
		logger.Info().Str("address", cfg.Redis.Address).Msg("history cache enabled")
	}

	// Archive stream is optional; the noop producer keeps the chat path identical.
	var producer kafka.ArchiveProducer = kafka.NewNoopProducer()
	if cfg.Kafka.Enabled {
		confluentProducer, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		producer = confluentProducer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("archive stream enabled")
	}

	archiveStorage, err := newArchiveStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise archive storage")
	}

	// Hub
	chatHub := hub.NewHub(cfg.WebSocket)
	go chatHub.Run()

	// Services
	chatService := service.NewChatService(chatHub, tokens, characters, roomRepo, messageRepo, producer)
	roomService := service.NewRoomService(roomRepo)
	historyService := service.NewHistoryService(messageRepo, roomRepo, characters, historyCache, cfg.Redis.CacheTTL, archiveStorage)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := roomService.EnsureDefaultRooms(seedCtx); err != nil {
		seedCancel()
		logger.Fatal().Err(err).Msg("failed to seed default rooms")
	}
	seedCancel()

	// HTTP + WebSocket
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(log.GinMiddleware(*logger), gin.Recovery())

	auth := middleware.NewAuthMiddleware(tokens)
	httpHandler := handler.NewHTTPHandler(roomService, historyService)
	httpHandler.RegisterRoutes(router, auth)

	wsHandler := handler.NewWSHandler(chatHub, chatService, cfg.WebSocket)
	router.GET("/ws/chat", gin.WrapF(wsHandler.HandleWebSocket))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("address", addr).Msg("chat server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	if err := chatService.Stop(); err != nil {
		logger.Warn().Err(err).Msg("chat service stop error")
	}
	if historyCache != nil {
		if err := historyCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close error")
		}
	}

	logger.Info().Msg("shutdown complete")
}

func newArchiveStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, cfg.Storage.S3)
	case "local":
		return storage.NewLocalStorage(cfg.Storage.Local)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
