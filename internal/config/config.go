package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string

	PublicAppOrigin string

	NowPaymentsAPIURL string
	NowPaymentsAPIKey string
	RateTimeout       time.Duration
	RateCacheTTL      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StrictTaxRates bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "cryptrac"),
		DBPassword:  getEnv("DB_PASSWORD", "cryptrac_secret"),
		DBName:      getEnv("DB_NAME", "cryptrac"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:     getEnv("GIN_MODE", "debug"),

		PublicAppOrigin: getEnv("PUBLIC_APP_ORIGIN", "http://localhost:3000"),

		NowPaymentsAPIURL: getEnv("NOWPAYMENTS_API_URL", "https://api.nowpayments.io"),
		NowPaymentsAPIKey: getEnv("NOWPAYMENTS_API_KEY", ""),
		RateTimeout:       getDuration("RATE_TIMEOUT", 8*time.Second),
		RateCacheTTL:      getDuration("RATE_CACHE_TTL", 60*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		StrictTaxRates: getEnv("STRICT_TAX_RATES", "false") == "true",
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDuration accepts Go durations ("5s") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
