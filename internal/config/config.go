package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	RedisAddr      string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	EmailFrom      string
	PublicBaseURL  string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "estore"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		SMTPHost:       getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:       getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUsername:   getEnvOrDefault("SMTP_USERNAME", ""),
		SMTPPassword:   getEnvOrDefault("SMTP_PASSWORD", ""),
		EmailFrom:      getEnvOrDefault("EMAIL_FROM", "noreply@estore.com"),
		PublicBaseURL:  getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:3000"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
