package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisFareDB    int    `mapstructure:"REDIS_FARE_DB"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Flight inventory provider.
	ProviderBaseURL     string `mapstructure:"PROVIDER_BASE_URL"`
	ProviderAPIKey      string `mapstructure:"PROVIDER_API_KEY"`
	ProviderTimeoutSec  int    `mapstructure:"PROVIDER_TIMEOUT_SEC"`
	ProviderMaxRetries  int    `mapstructure:"PROVIDER_MAX_RETRIES"`
	ProviderBackoffMS   int    `mapstructure:"PROVIDER_BACKOFF_MS"`
	ProviderBreakerTrip int    `mapstructure:"PROVIDER_BREAKER_TRIP"`

	// Gemini entity extraction.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Booking policy knobs. Age boundaries and the flat cancellation fee are
	// airline policy, not hard rules, so they stay configurable.
	SessionTTLMinutes   int     `mapstructure:"SESSION_TTL_MINUTES"`
	FareCacheTTLMinutes int     `mapstructure:"FARE_CACHE_TTL_MINUTES"`
	CancellationFee     float64 `mapstructure:"CANCELLATION_FEE"`
	ChildMinAge         int     `mapstructure:"CHILD_MIN_AGE"`
	AdultMinAge         int     `mapstructure:"ADULT_MIN_AGE"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_FARE_DB", 1)
	viper.SetDefault("REDIS_CONTEXT_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("PROVIDER_BASE_URL", "http://localhost:9090")
	viper.SetDefault("PROVIDER_API_KEY", "")
	viper.SetDefault("PROVIDER_TIMEOUT_SEC", 30)
	viper.SetDefault("PROVIDER_MAX_RETRIES", 3)
	viper.SetDefault("PROVIDER_BACKOFF_MS", 500)
	viper.SetDefault("PROVIDER_BREAKER_TRIP", 5)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("FARE_CACHE_TTL_MINUTES", 15)
	viper.SetDefault("CANCELLATION_FEE", 1000)
	viper.SetDefault("CHILD_MIN_AGE", 2)
	viper.SetDefault("ADULT_MIN_AGE", 12)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
