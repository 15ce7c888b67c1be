package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string
	MySQLDSN  string
	RedisURL  string
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration

	// Allowed CORS origins, comma-separated. "*" allows everything.
	CORSOrigins []string
}

// Load reads configuration from environment variables.
// A .env file is loaded first if present, for local development.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8082"),
		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(127.0.0.1:3306)/whatsapp?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisURL:  os.Getenv("REDIS_URL"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 72*time.Hour),
		OTPTTL:    getDurationEnv("OTP_TTL", 5*time.Minute),
	}

	origins := getEnv("CORS_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
