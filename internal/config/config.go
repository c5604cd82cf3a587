package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	do "github.com/samber/do/v2"
)

const (
	envPrefix     = "MRDIGEST_"
	envConfigPath = "MRDIGEST_CONFIG"
)

var Package = do.Package(
	do.Lazy[*Config](NewConfig),
)

// LLMConfig configures the best practices extractor.
type LLMConfig struct {
	Provider string        `koanf:"provider"`
	APIKey   string        `koanf:"api_key"`
	Model    string        `koanf:"model"`
	BaseURL  string        `koanf:"base_url"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Config holds the application configuration.
type Config struct {
	BaseURL         string        `koanf:"base_url"`
	Token           string        `koanf:"token"`
	ImagesDir       string        `koanf:"images_dir"`
	ServerAddress   string        `koanf:"server_address"`
	LogLevel        string        `koanf:"log_level"`
	DownloadWorkers int           `koanf:"download_workers"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	LLM             LLMConfig     `koanf:"llm"`
}

// NewConfig creates a new configuration (for DI).
func NewConfig(_ do.Injector) (*Config, error) {
	return New()
}

// New loads the configuration from defaults, the TOML file named by
// MRDIGEST_CONFIG or found in a default location, and MRDIGEST_*
// environment variables, in that order.
func New() (*Config, error) {
	return Load(os.Getenv(envConfigPath))
}

// Load is New with an explicit config file path. An empty path searches
// ./mrdigest.toml and $HOME/.mrdigest.toml.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"base_url":         "https://gitlab.com",
		"images_dir":       "images",
		"server_address":   ":8080",
		"log_level":        "info",
		"download_workers": 4,
		"request_timeout":  "30s",
		"llm.provider":     "openai",
		"llm.timeout":      "60s",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else {
		for _, path := range []string{"./mrdigest.toml", "$HOME/.mrdigest.toml"} {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}

			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Token == "" {
		return nil, errors.New("token is required: set MRDIGEST_TOKEN or token in mrdigest.toml")
	}

	return &cfg, nil
}

// envKey maps MRDIGEST_LLM_API_KEY to llm.api_key and MRDIGEST_BASE_URL
// to base_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "llm_"); ok {
		return "llm." + rest
	}
	if key == "config" {
		return ""
	}

	return key
}
