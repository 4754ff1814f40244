package config

import (
	"fmt"
	"os"
	"time"

	"socialguard/internal/llm"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SOCIALGUARD_SERVER_PORT.
const EnvPrefix = "SOCIALGUARD"

const placeholderKey = "YOUR_API_KEY_HERE"

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" validate:"required"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Corpus struct {
		Path string `yaml:"path"`
	} `yaml:"corpus"`

	Classifier struct {
		CallTimeout time.Duration `yaml:"call_timeout" validate:"gte=0"`
	} `yaml:"classifier"`

	// Multiple providers configuration
	Providers []llm.ProviderConfig `yaml:"providers" validate:"dive"`

	// Single provider config, used when no providers are listed
	Gemini struct {
		APIKey            string `yaml:"api_key"`
		ModelName         string `yaml:"model_name"`
		RequestsPerMinute int    `yaml:"requests_per_minute" validate:"gte=0"`
	} `yaml:"gemini"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch" validate:"gte=0"`

	Batch struct {
		Delay        time.Duration `yaml:"delay" validate:"gte=0"`
		FailureDelay time.Duration `yaml:"failure_delay" validate:"gte=0"`
	} `yaml:"batch"`

	Analysis struct {
		// nil when the key is absent; 0 is a valid threshold
		DefaultThreshold   *float64 `yaml:"default_threshold" validate:"omitempty,gte=0,lte=1"`
		DefaultMaxComments int      `yaml:"default_max_comments" validate:"gte=1,lte=5000"`
	} `yaml:"analysis"`

	Scraper struct {
		URL     string        `yaml:"url" validate:"omitempty,url"`
		Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	} `yaml:"scraper"`

	Database struct {
		Type string `yaml:"type" validate:"oneof=sqlite postgres"`
		Path string `yaml:"path"`
		URL  string `yaml:"url" validate:"required_if=Type postgres"`
	} `yaml:"database"`

	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token" validate:"required_if=Enabled true"`
		ChatID   int64  `yaml:"chat_id" validate:"required_if=Enabled true"`
	} `yaml:"telegram"`

	Storage struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"storage"`
}

// overrides are read from SOCIALGUARD_* variables; unset ones leave the
// file value alone.
type overrides struct {
	ServerPort       string   `envconfig:"SERVER_PORT"`
	LogLevel         string   `envconfig:"LOG_LEVEL"`
	CorpusPath       string   `envconfig:"CORPUS_PATH"`
	GeminiAPIKey     string   `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string   `envconfig:"GEMINI_MODEL"`
	ScraperURL       string   `envconfig:"SCRAPER_URL"`
	DatabaseType     string   `envconfig:"DATABASE_TYPE"`
	DatabasePath     string   `envconfig:"DATABASE_PATH"`
	DatabaseURL      string   `envconfig:"DATABASE_URL"`
	TelegramEnabled  *bool    `envconfig:"TELEGRAM_ENABLED"`
	TelegramToken    string   `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   *int64   `envconfig:"TELEGRAM_CHAT_ID"`
	DefaultThreshold *float64 `envconfig:"DEFAULT_THRESHOLD"`
	OutputDir        string   `envconfig:"OUTPUT_DIR"`
}

// LoadConfig loads configuration from a YAML file, then applies a .env file
// and SOCIALGUARD_* environment overrides, defaults and validation.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.setDefaults()

	// Expand environment variables in secrets
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Telegram.BotToken = os.ExpandEnv(config.Telegram.BotToken)
	config.Database.URL = os.ExpandEnv(config.Database.URL)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	var o overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, o.ServerPort)
	set(&c.Log.Level, o.LogLevel)
	set(&c.Corpus.Path, o.CorpusPath)
	set(&c.Gemini.APIKey, o.GeminiAPIKey)
	set(&c.Gemini.ModelName, o.GeminiModel)
	set(&c.Scraper.URL, o.ScraperURL)
	set(&c.Database.Type, o.DatabaseType)
	set(&c.Database.Path, o.DatabasePath)
	set(&c.Database.URL, o.DatabaseURL)
	set(&c.Telegram.BotToken, o.TelegramToken)
	set(&c.Storage.OutputDir, o.OutputDir)

	if o.TelegramEnabled != nil {
		c.Telegram.Enabled = *o.TelegramEnabled
	}
	if o.TelegramChatID != nil {
		c.Telegram.ChatID = *o.TelegramChatID
	}
	if o.DefaultThreshold != nil {
		c.Analysis.DefaultThreshold = o.DefaultThreshold
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Corpus.Path == "" {
		c.Corpus.Path = "./data/dataset.csv"
	}
	if c.Classifier.CallTimeout == 0 {
		c.Classifier.CallTimeout = 30 * time.Second
	}
	if c.Gemini.ModelName == "" {
		c.Gemini.ModelName = "gemini-2.0-flash"
	}
	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}
	if c.Batch.Delay == 0 {
		c.Batch.Delay = 500 * time.Millisecond
	}
	if c.Batch.FailureDelay == 0 {
		c.Batch.FailureDelay = time.Second
	}
	if c.Analysis.DefaultThreshold == nil {
		threshold := 0.8
		c.Analysis.DefaultThreshold = &threshold
	}
	if c.Analysis.DefaultMaxComments == 0 {
		c.Analysis.DefaultMaxComments = 100
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 5 * time.Minute
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/socialguard.db"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "./data"
	}
}

// GenerativeProviders returns the configured providers. Without a providers
// list, a Gemini key yields a single Gemini provider. Placeholder and empty
// keys are dropped, so an empty result means classification runs on the
// fallback vote only.
func (c *Config) GenerativeProviders() []llm.ProviderConfig {
	var out []llm.ProviderConfig
	for _, p := range c.Providers {
		if usableKey(p.APIKey) {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(c.Providers) == 0 && usableKey(c.Gemini.APIKey) {
		out = append(out, llm.ProviderConfig{
			Type:              llm.ProviderGemini,
			APIKey:            c.Gemini.APIKey,
			ModelName:         c.Gemini.ModelName,
			RequestsPerMinute: c.Gemini.RequestsPerMinute,
		})
	}
	return out
}

func usableKey(key string) bool {
	return key != "" && key != placeholderKey
}

// NewLogger builds the zap logger described by the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if c.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
