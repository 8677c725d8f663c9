package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB          int    `mapstructure:"REDIS_AUTH_DB"`
	RedisCodeDB          int    `mapstructure:"REDIS_CODE_DB"`
	RedisRecoveryQueueDB int    `mapstructure:"REDIS_RECOVERY_QUEUE_DB"`

	// Firebase Cloud Messaging.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Dispatch engine tuning. Radii are in kilometres, intervals in seconds.
	DispatchInitialRadiusKm    float64 `mapstructure:"DISPATCH_INITIAL_RADIUS_KM"`
	DispatchRadiusStepKm       float64 `mapstructure:"DISPATCH_RADIUS_STEP_KM"`
	DispatchMaxRadiusKm        float64 `mapstructure:"DISPATCH_MAX_RADIUS_KM"`
	DispatchWaveIntervalSecs   int     `mapstructure:"DISPATCH_WAVE_INTERVAL_SECS"`
	DispatchTotalTimeoutSecs   int     `mapstructure:"DISPATCH_TOTAL_TIMEOUT_SECS"`
	DispatchRedispatchDeclined bool    `mapstructure:"DISPATCH_REDISPATCH_DECLINED"`

	// Cancellation fees applied by stage reached.
	FeeCancellation float64 `mapstructure:"FEE_CANCELLATION"`
	FeeVisiting     float64 `mapstructure:"FEE_VISITING"`
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
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_CODE_DB", 2)
	viper.SetDefault("REDIS_RECOVERY_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	viper.SetDefault("DISPATCH_INITIAL_RADIUS_KM", 2.0)
	viper.SetDefault("DISPATCH_RADIUS_STEP_KM", 2.0)
	viper.SetDefault("DISPATCH_MAX_RADIUS_KM", 10.0)
	viper.SetDefault("DISPATCH_WAVE_INTERVAL_SECS", 30)
	viper.SetDefault("DISPATCH_TOTAL_TIMEOUT_SECS", 300)
	viper.SetDefault("DISPATCH_REDISPATCH_DECLINED", false)
	viper.SetDefault("FEE_CANCELLATION", 150.0)
	viper.SetDefault("FEE_VISITING", 250.0)

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
