package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	WebPort                 int           `mapstructure:"WEB_PORT"`
	StorageDriver           string        `mapstructure:"STORAGE_DRIVER"`
	StoragePath             string        `mapstructure:"STORAGE_PATH"`
	StorageDSN              string        `mapstructure:"STORAGE_DSN"`
	AutosaveInterval        time.Duration `mapstructure:"AUTOSAVE_INTERVAL"`
	CategoryWeight          int           `mapstructure:"CATEGORY_WEIGHT"`
	TopicWeight             int           `mapstructure:"TOPIC_WEIGHT"`
	KeywordWeight           int           `mapstructure:"KEYWORD_WEIGHT"`
	EntityWeight            int           `mapstructure:"ENTITY_WEIGHT"`
	EdgeThreshold           int           `mapstructure:"EDGE_THRESHOLD"`
	SimilarLimit            int           `mapstructure:"SIMILAR_LIMIT"`
	MaxSources              int           `mapstructure:"MAX_SOURCES"`
	StrategyTimeout         time.Duration `mapstructure:"STRATEGY_TIMEOUT"`
	AnswerCacheSize         int           `mapstructure:"ANSWER_CACHE_SIZE"`
	LLMProvider             string        `mapstructure:"LLM_PROVIDER"`
	LLMModel                string        `mapstructure:"LLM_MODEL"`
	LLMBaseURL              string        `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey               string        `mapstructure:"LLM_API_KEY"`
	LLMRequestTimeout       time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	RateLimitRequestsPerMin int           `mapstructure:"RATE_LIMIT_REQUESTS_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("STORAGE_DRIVER", "file")
	viper.SetDefault("STORAGE_PATH", "data/newsgraph.json")
	viper.SetDefault("STORAGE_DSN", "")
	viper.SetDefault("AUTOSAVE_INTERVAL", 30)
	viper.SetDefault("CATEGORY_WEIGHT", 3)
	viper.SetDefault("TOPIC_WEIGHT", 2)
	viper.SetDefault("KEYWORD_WEIGHT", 1)
	viper.SetDefault("ENTITY_WEIGHT", 2)
	viper.SetDefault("EDGE_THRESHOLD", 3)
	viper.SetDefault("SIMILAR_LIMIT", 5)
	viper.SetDefault("MAX_SOURCES", 5)
	viper.SetDefault("STRATEGY_TIMEOUT", 3)
	viper.SetDefault("ANSWER_CACHE_SIZE", 256)
	viper.SetDefault("LLM_PROVIDER", "")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_BASE_URL", "")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 120)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_MIN", 60)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 10)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			// Fallback if logger not available (should not happen in practice)
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.AutosaveInterval = config.AutosaveInterval * time.Second
	config.StrategyTimeout = config.StrategyTimeout * time.Second
	config.LLMRequestTimeout = config.LLMRequestTimeout * time.Second

	return &config
}
