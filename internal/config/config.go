package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete FinGuard configuration
// The structure matches the config.yaml file and can be overridden by environment variables

type Config struct {
	FinGuard FinGuardConfig `json:"finguard" mapstructure:"finguard"`
}

// FinGuardConfig contains the main service configuration

type FinGuardConfig struct {
	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Gemini   GeminiConfig   `json:"gemini" mapstructure:"gemini"`
	TTS      TTSConfig      `json:"tts" mapstructure:"tts"`
	Storage  StorageConfig  `json:"storage" mapstructure:"storage"`
	Database DatabaseConfig `json:"database" mapstructure:"database"`
}

// ServerConfig contains server-specific configuration

type ServerConfig struct {
	Addr    string `json:"addr" mapstructure:"addr"`
	Timeout string `json:"timeout" mapstructure:"timeout"`
}

// GeminiConfig contains the LLM provider configuration

type GeminiConfig struct {
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Model    string `json:"model" mapstructure:"model"`
}

// TTSConfig contains the speech synthesis provider configuration

type TTSConfig struct {
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	APIKey   string `json:"api_key" mapstructure:"api_key"`
}

// StorageConfig contains the audio cache object store configuration

type StorageConfig struct {
	Endpoint  string `json:"endpoint" mapstructure:"endpoint"`
	AccessKey string `json:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `json:"use_ssl" mapstructure:"use_ssl"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
}

// DatabaseConfig contains the analyses store configuration

type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.finguard")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("FINGUARD")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.FinGuard.Database.Path = resolvePath(cfg.FinGuard.Database.Path)
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("FINGUARD.SERVER.ADDR", ":8080")
	viper.SetDefault("FINGUARD.SERVER.TIMEOUT", "180s")

	// Gemini defaults
	viper.SetDefault("FINGUARD.GEMINI.ENDPOINT", "https://generativelanguage.googleapis.com")
	viper.SetDefault("FINGUARD.GEMINI.MODEL", "gemini-2.0-flash-001")

	// TTS defaults
	viper.SetDefault("FINGUARD.TTS.ENDPOINT", "https://texttospeech.googleapis.com")

	// Object store defaults
	viper.SetDefault("FINGUARD.STORAGE.ENDPOINT", "127.0.0.1:9000")
	viper.SetDefault("FINGUARD.STORAGE.ACCESS_KEY", "minioadmin")
	viper.SetDefault("FINGUARD.STORAGE.SECRET_KEY", "minioadmin")
	viper.SetDefault("FINGUARD.STORAGE.USE_SSL", false)
	viper.SetDefault("FINGUARD.STORAGE.BUCKET", "finguard-audio")

	// Database defaults
	viper.SetDefault("FINGUARD.DATABASE.PATH", "~/.finguard/finguard.db")
}

// resolvePath resolves ~ to home directory and cleans the path
func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
