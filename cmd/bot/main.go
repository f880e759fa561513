package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"versebattle/internal/bot"
	"versebattle/internal/cache"
	"versebattle/internal/config"
	"versebattle/internal/game"
	"versebattle/internal/logger"
	"versebattle/internal/repository"
	"versebattle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.BotToken == "" {
		panic("BOT_TOKEN is required")
	}

	logger.Init(cfg.LogLevel)
	defer zap.L().Sync()
	log := zap.S()

	ctx := context.Background()

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

	db := mongoClient.Database(cfg.MongoDB)

	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(cfg.RedisURI, "redis://"),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalw("failed to ping redis", "error", err)
	}

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

	b, err := bot.New(cfg.BotToken, svc, log)
	if err != nil {
		log.Fatalw("failed to create bot", "error", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(runCtx); err != nil && err != context.Canceled {
		log.Fatalw("bot stopped", "error", err)
	}

	log.Info("bot exited")
}
