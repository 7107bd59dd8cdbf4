package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host    string `mapstructure:"HOST"`
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Database (chunks + chat history, pgvector extension required)
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Embedding service (OpenAI compatible)
	EmbeddingAPIKey     string `mapstructure:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL    string `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingModel      string `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `mapstructure:"EMBEDDING_DIMENSIONS"`

	// Chat model (OpenAI compatible; Groq works via base URL)
	ChatAPIKey  string `mapstructure:"GROQ_API_KEY"`
	ChatBaseURL string `mapstructure:"CHAT_BASE_URL"`
	ChatModel   string `mapstructure:"CHAT_MODEL"`

	// File storage
	UploadDir     string `mapstructure:"UPLOAD_DIR"`
	MaxUploadSize int64  `mapstructure:"MAX_UPLOAD_SIZE"`
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("GIN_MODE", "release")
	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/docchat?sslmode=disable")
	viper.SetDefault("EMBEDDING_BASE_URL", "http://localhost:8080/v1")
	viper.SetDefault("EMBEDDING_MODEL", "BAAI/bge-small-en-v1.5")
	viper.SetDefault("EMBEDDING_DIMENSIONS", 384)
	viper.SetDefault("CHAT_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("CHAT_MODEL", "llama-3.3-70b-versatile")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", 50*1024*1024)

	// .env file is optional
	_ = viper.ReadInConfig()

	for _, key := range []string{
		"HOST", "PORT", "GIN_MODE", "DATABASE_URL",
		"EMBEDDING_API_KEY", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
		"GROQ_API_KEY", "CHAT_BASE_URL", "CHAT_MODEL",
		"UPLOAD_DIR", "MAX_UPLOAD_SIZE",
	} {
		if val := os.Getenv(key); val != "" {
			viper.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.GinMode) == "debug"
}
