package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SearchBaseURL string
	DetailBaseURL string
	RatesURL      string

	// PriceBrackets partitions the discovery space so no single search
	// query needs more results than the source's result-count ceiling.
	// Format: "1-20000,20000-50000000" (half-open [min,max) intervals).
	PriceBrackets      string
	MaxPagesPerBracket int

	DiscoverWorkers int
	EnrichWorkers   int
	FetchTimeout    time.Duration
	RateLimit       time.Duration

	// GoneTTL bounds how long a delisted id is skipped before enrichment
	// retries it.
	GoneTTL time.Duration

	// FetchMode selects the discovery fetch adapter: "browser" renders
	// pages through headless Chrome, "http" uses a plain client.
	FetchMode string
}

// Load reads the optional .env file and returns configuration from
// environment variables with defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment")
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),

		SearchBaseURL: getEnv("SEARCH_BASE_URL", "https://www.list.am/en/category/23"),
		DetailBaseURL: getEnv("DETAIL_BASE_URL", "https://www.list.am/en/item"),
		RatesURL:      getEnv("RATES_URL", "https://api.exchangerate-api.com/v4/latest/USD"),

		PriceBrackets:      getEnv("PRICE_BRACKETS", "1-20000,20000-50000000"),
		MaxPagesPerBracket: getEnvAsInt("MAX_PAGES_PER_BRACKET", 200),

		DiscoverWorkers: getEnvAsInt("DISCOVER_WORKERS", 4),
		EnrichWorkers:   getEnvAsInt("ENRICH_WORKERS", 30),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT_SECONDS", 15),
		RateLimit:       time.Duration(getEnvAsInt("RATE_LIMIT_MS", 0)) * time.Millisecond,
		GoneTTL:         time.Duration(getEnvAsInt("GONE_TTL_HOURS", 168)) * time.Hour,

		FetchMode: getEnv("FETCH_MODE", "browser"),
	}
}

// PostgresDSN returns the pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

// Brackets parses PriceBrackets into (min, max) pairs. Malformed entries
// are skipped.
func (c *Config) Brackets() [][2]int {
	var out [][2]int
	for _, part := range strings.Split(c.PriceBrackets, ",") {
		bounds := strings.SplitN(strings.TrimSpace(part), "-", 2)
		if len(bounds) != 2 {
			continue
		}
		lo, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err1 != nil || err2 != nil || hi <= lo {
			continue
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
