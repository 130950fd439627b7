package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                  string   `yaml:"port"`
	DatabaseURL           string   `yaml:"databaseURL"`
	LogLevel              string   `yaml:"logLevel"`
	HFAPIURL              string   `yaml:"hfAPIURL"`
	HFAPIToken            string   `yaml:"-"`
	ChatTimeoutSeconds    int      `yaml:"chatTimeoutSeconds"`
	RedisAddr             string   `yaml:"redisAddr"`
	RedisPassword         string   `yaml:"-"`
	ChatRateLimit         int      `yaml:"chatRateLimit"`
	ChatRateWindowSeconds int      `yaml:"chatRateWindowSeconds"`
	TrustedProxies        []string `yaml:"trustedProxies"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables. The upstream credential is
	// env-only, never written to the config file.
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HF_API_URL"); v != "" {
		cfg.HFAPIURL = v
	}
	cfg.HFAPIToken = os.Getenv("HUGGING_FACE_API_TOKEN")
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("CHAT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChatTimeoutSeconds = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.HFAPIURL == "" {
		return errors.New("config: hfAPIURL is required (set in config.yaml or HF_API_URL)")
	}
	if cfg.ChatTimeoutSeconds < 0 {
		return errors.New("config: chatTimeoutSeconds must not be negative")
	}
	return nil
}
