package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"versebattle/internal/cache"
	"versebattle/internal/config"
	"versebattle/internal/game"
	"versebattle/internal/logger"
	"versebattle/internal/repository"
	"versebattle/internal/store"
	"versebattle/internal/transport/rest"
	"versebattle/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.LogLevel)
	defer zap.L().Sync()
	log := zap.S()

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalw("failed to connect to mongodb", "error", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatalw("failed to ping mongodb", "error", err)
	}
	log.Info("connected to mongodb")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(cfg.RedisURI, "redis://"),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalw("failed to ping redis", "error", err)
	}
	log.Info("connected to redis")

	// Wire the game service
	rooms := store.NewRedisStore(rdb)
	verseRepo := repository.NewVerseRepo(db)
	verseCache := cache.NewVerseCache(rdb)

	gameCfg := game.DefaultConfig()
	gameCfg.Countdown = cfg.Game.Countdown
	gameCfg.TypingTimeLimit = cfg.Game.TypingTimeLimit
	gameCfg.ProgressiveTimeLimit = cfg.Game.ProgressiveTimeLimit
	gameCfg.TypingRounds = cfg.Game.TypingRounds
	gameCfg.ProgressiveRounds = cfg.Game.ProgressiveRounds
	gameCfg.CanonicalTranslation = cfg.Game.CanonicalTranslation

	svc := game.NewService(rooms, verseRepo, verseCache, gameCfg)
	defer svc.Close()

	tokens := game.NewTokenService(cfg.JWTSecret)

	hub := ws.NewHub(svc, cfg.Game.PresenceGrace, log)
	defer hub.Close()

	router := rest.NewRouter(&rest.Container{
		GameService:  svc,
		TokenService: tokens,
		WSHub:        hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen and serve", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
