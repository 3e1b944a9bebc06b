package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Apify    ApifyConfig    `yaml:"apify" mapstructure:"apify"`
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Validation ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ApifyConfig holds map-data provider settings.
type ApifyConfig struct {
	Token            string  `yaml:"token" mapstructure:"token"`
	Actor            string  `yaml:"actor" mapstructure:"actor"`
	PollIntervalSecs int     `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	MaxWaitSecs      int     `yaml:"max_wait_secs" mapstructure:"max_wait_secs"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AIConfig selects and configures the text-generation provider.
type AIConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Model      string  `yaml:"model" mapstructure:"model"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures website content fetching.
type FetchConfig struct {
	TimeoutSecs  int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars     int `yaml:"max_chars" mapstructure:"max_chars"`
	CacheTTLMins int `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// ValidateConfig configures the validation batch.
type ValidateConfig struct {
	BatchSize    int    `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
	CriteriaFile string `yaml:"criteria_file" mapstructure:"criteria_file"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.path", "leadgen.db")
	v.SetDefault("apify.token", "")
	v.SetDefault("apify.actor", "compass/google-maps-extractor")
	v.SetDefault("apify.poll_interval_secs", 5)
	v.SetDefault("apify.max_wait_secs", 600)
	v.SetDefault("apify.rate_per_sec", 2)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.key", "")
	v.SetDefault("ai.gemini.base_url", "")
	v.SetDefault("ai.anthropic.key", "")
	v.SetDefault("ai.gemini.model", "gemini-1.5-pro")
	v.SetDefault("ai.gemini.rate_per_sec", 1)
	v.SetDefault("ai.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("ai.anthropic.max_tokens", 1024)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.max_chars", 2000)
	v.SetDefault("fetch.cache_ttl_mins", 30)
	v.SetDefault("validate.batch_size", 50)
	v.SetDefault("validate.concurrency", 1)
	v.SetDefault("validate.criteria_file", "criteria.yaml")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(needs ...string) error {
	for _, need := range needs {
		switch need {
		case "apify":
			if c.Apify.Token == "" {
				return eris.New("config: apify.token is required (LEADGEN_APIFY_TOKEN)")
			}
		case "ai":
			switch c.AI.Provider {
			case "gemini":
				if c.AI.Gemini.Key == "" {
					return eris.New("config: ai.gemini.key is required (LEADGEN_AI_GEMINI_KEY)")
				}
			case "anthropic":
				if c.AI.Anthropic.Key == "" {
					return eris.New("config: ai.anthropic.key is required (LEADGEN_AI_ANTHROPIC_KEY)")
				}
			default:
				return eris.Errorf("config: unknown ai.provider %q", c.AI.Provider)
			}
		case "store":
			if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
				return eris.New("config: store.database_url is required for the postgres driver")
			}
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
