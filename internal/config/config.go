package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. A .env file in the
// working directory is loaded first if present.
type Config struct {
	Port int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort int
	CacheTTL  time.Duration

	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string

	// ConsulAddr empty disables service registration.
	ConsulAddr string

	JWTSecret   string
	TokenExpiry time.Duration

	// Seed admin account, created at startup if the email is absent.
	AdminName     string
	AdminEmail    string
	AdminPassword string

	LowStockThreshold int
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: envInt("PORT", 8080),

		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     env("DB_USER", "dukaflow"),
		DBPassword: env("DB_PASSWORD", "dukaflow"),
		DBName:     env("DB_NAME", "dukaflow"),

		RedisHost: env("REDIS_HOST", "localhost"),
		RedisPort: envInt("REDIS_PORT", 6379),
		CacheTTL:  envDuration("CACHE_TTL", 5*time.Minute),

		RabbitHost:     env("RABBITMQ_HOST", "localhost"),
		RabbitPort:     envInt("RABBITMQ_PORT", 5672),
		RabbitUser:     env("RABBITMQ_USER", "guest"),
		RabbitPassword: env("RABBITMQ_PASSWORD", "guest"),

		ConsulAddr: env("CONSUL_ADDR", ""),

		JWTSecret:   env("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry: envDuration("TOKEN_EXPIRY", 24*time.Hour),

		AdminName:     env("ADMIN_NAME", "Administrator"),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		LowStockThreshold: envInt("LOW_STOCK_THRESHOLD", 5),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
