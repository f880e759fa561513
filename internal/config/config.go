package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	RedisURI  string
	JWTSecret string
	BotToken  string
	LogLevel  string

	Game GameConfig
}

type GameConfig struct {
	Countdown            time.Duration
	TypingTimeLimit      time.Duration
	ProgressiveTimeLimit time.Duration
	TypingRounds         int
	ProgressiveRounds    int
	CanonicalTranslation string
	PresenceGrace        time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "versebattle"),
		RedisURI:  getEnv("REDIS_URI", "redis://localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		BotToken:  getEnv("BOT_TOKEN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Game: GameConfig{
			Countdown:            getEnvSeconds("GAME_COUNTDOWN_SECONDS", 3),
			TypingTimeLimit:      getEnvSeconds("GAME_TYPING_SECONDS", 90),
			ProgressiveTimeLimit: getEnvSeconds("GAME_PROGRESSIVE_SECONDS", 60),
			TypingRounds:         getEnvInt("GAME_TYPING_ROUNDS", 3),
			ProgressiveRounds:    getEnvInt("GAME_PROGRESSIVE_ROUNDS", 3),
			CanonicalTranslation: getEnv("GAME_CANONICAL_TRANSLATION", "ESV"),
			PresenceGrace:        getEnvSeconds("WS_PRESENCE_GRACE_SECONDS", 10),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}
