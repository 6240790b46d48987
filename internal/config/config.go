package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	HTTPPort       string
	MigrationsPath string

	BookingCodePrefix string

	RedisAddr string

	TelegramToken     string
	TelegramOpsChatID int64

	// Пороги уровней лояльности (0 — использовать дефолты политики)
	LoyaltySilverThreshold int
	LoyaltyGoldThreshold   int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		Environment:       os.Getenv("ENV"),
		HTTPPort:          os.Getenv("HTTP_PORT"),
		MigrationsPath:    os.Getenv("MIGRATIONS_PATH"),
		BookingCodePrefix: os.Getenv("BOOKING_CODE_PREFIX"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if cfg.BookingCodePrefix == "" {
		cfg.BookingCodePrefix = "WTR"
	}

	cfg.TelegramOpsChatID = envInt64("TELEGRAM_OPS_CHAT_ID", 0)
	cfg.LoyaltySilverThreshold = int(envInt64("LOYALTY_SILVER_THRESHOLD", 0))
	cfg.LoyaltyGoldThreshold = int(envInt64("LOYALTY_GOLD_THRESHOLD", 0))

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

func envInt64(key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}
