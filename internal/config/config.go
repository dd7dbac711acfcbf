package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseURL            string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	RefreshIntervalSeconds int
	TrendWindowDays        int
	TopNProducts           int
}

// Load reads configuration from the environment. Invalid numeric values
// fall back to their defaults rather than failing startup.
func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	refresh, err := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "30"))
	if err != nil || refresh < 1 {
		refresh = 30
	}
	window, err := strconv.Atoi(getEnv("TREND_WINDOW_DAYS", "30"))
	if err != nil || window < 1 {
		window = 30
	}
	topN, err := strconv.Atoi(getEnv("TOP_N_PRODUCTS", "5"))
	if err != nil || topN < 1 {
		topN = 5
	}

	return Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		RefreshIntervalSeconds: refresh,
		TrendWindowDays:        window,
		TopNProducts:           topN,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
