package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`
	RedisRetryQueueDB int    `mapstructure:"REDIS_RETRY_QUEUE_DB"`

	// External backends.
	AppointmentsURL         string `mapstructure:"APPOINTMENTS_URL"`
	AppointmentsTimeoutSec  int    `mapstructure:"APPOINTMENTS_TIMEOUT_SEC"`
	ProfessionalsURL        string `mapstructure:"PROFESSIONALS_URL"`
	ProfessionalsTimeoutSec int    `mapstructure:"PROFESSIONALS_TIMEOUT_SEC"`

	// Session lifetime in the durability store, in hours.
	SessionTTLHours int `mapstructure:"SESSION_TTL_HOURS"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_RETRY_QUEUE_DB", 1)
	viper.SetDefault("APPOINTMENTS_URL", "http://localhost:9080")
	viper.SetDefault("APPOINTMENTS_TIMEOUT_SEC", 10)
	viper.SetDefault("PROFESSIONALS_URL", "http://localhost:9081")
	viper.SetDefault("PROFESSIONALS_TIMEOUT_SEC", 5)
	viper.SetDefault("SESSION_TTL_HOURS", 72)

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
