package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port         string
	Env          string
	LogLevel     string
	TemplatesDir string
	Store        StoreConfig
	RabbitMQURL  string
	Shop         ShopConfig
	Admin        AdminConfig
}

type StoreConfig struct {
	Driver        string // sqlite | mongo
	DSN           string
	MongoURI      string
	MongoDatabase string
	Timeout       time.Duration

	// WriteConcurrency bounds the document writes in flight during publish.
	WriteConcurrency int
}

type ShopConfig struct {
	Name          string
	WhatsAppPhone string
	DeliveryFee   decimal.Decimal
	EstimatedTime string
}

type AdminConfig struct {
	// Code is the plain access code; CodeHash a bcrypt hash of it. The hash
	// wins when both are set.
	Code       string
	CodeHash   string
	SessionTTL time.Duration
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", ""),
		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
		Store: StoreConfig{
			Driver:           getEnv("STORE_DRIVER", "sqlite"),
			DSN:              getEnv("DB_DSN", "storefront.db"),
			MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase:    getEnv("MONGO_DATABASE", "storefront"),
			Timeout:          getDuration("MONGO_TIMEOUT", 10*time.Second),
			WriteConcurrency: getInt("STORE_WRITE_CONCURRENCY", 8),
		},
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		Shop: ShopConfig{
			Name:          getEnv("RESTAURANT_NAME", "TOCA DO FRANGO"),
			WhatsAppPhone: getEnv("WHATSAPP_PHONE", "5584999397770"),
			DeliveryFee:   getDecimal("DELIVERY_FEE", decimal.NewFromInt(5)),
			EstimatedTime: getEnv("ESTIMATED_TIME", "40-60 min"),
		},
		Admin: AdminConfig{
			Code:       getEnv("ADMIN_CODE", ""),
			CodeHash:   getEnv("ADMIN_CODE_HASH", ""),
			SessionTTL: getDuration("ADMIN_SESSION_TTL", 12*time.Hour),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
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

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
