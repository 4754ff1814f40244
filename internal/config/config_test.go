package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"socialguard/internal/llm"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	req.NoError(err)

	req.Equal("9000", cfg.Server.Port)
	req.Equal("info", cfg.Log.Level)
	req.Equal(30*time.Second, cfg.Classifier.CallTimeout)
	req.Equal(500*time.Millisecond, cfg.Batch.Delay)
	req.Equal(time.Second, cfg.Batch.FailureDelay)
	req.Equal(0.8, *cfg.Analysis.DefaultThreshold)
	req.Equal(100, cfg.Analysis.DefaultMaxComments)
	req.Equal("sqlite", cfg.Database.Type)
	req.Equal(3, cfg.MaxFailuresBeforeSwitch)
	req.Empty(cfg.GenerativeProviders())
}

func TestLoadConfig_FileValuesAndExpansion(t *testing.T) {
	req := require.New(t)
	t.Setenv("TEST_GROQ_KEY", "gsk-123")

	cfg, err := LoadConfig(writeConfig(t, `
classifier:
  call_timeout: 10s
batch:
  delay: 250ms
  failure_delay: 2s
providers:
  - type: groq
    api_key: ${TEST_GROQ_KEY}
    requests_per_minute: 30
  - type: gemini
    api_key: YOUR_API_KEY_HERE
analysis:
  default_threshold: 0.6
`))
	req.NoError(err)
	req.Equal(10*time.Second, cfg.Classifier.CallTimeout)
	req.Equal(250*time.Millisecond, cfg.Batch.Delay)
	req.Equal(2*time.Second, cfg.Batch.FailureDelay)
	req.Equal(0.6, *cfg.Analysis.DefaultThreshold)

	providers := cfg.GenerativeProviders()
	req.Len(providers, 1)
	req.Equal(llm.ProviderGroq, providers[0].Type)
	req.Equal("gsk-123", providers[0].APIKey)
	req.Equal(30, providers[0].RequestsPerMinute)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("SOCIALGUARD_SERVER_PORT", "7777")
	t.Setenv("SOCIALGUARD_GEMINI_API_KEY", "AIza-test")
	t.Setenv("SOCIALGUARD_DEFAULT_THRESHOLD", "0.5")
	t.Setenv("SOCIALGUARD_TELEGRAM_ENABLED", "true")
	t.Setenv("SOCIALGUARD_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SOCIALGUARD_TELEGRAM_CHAT_ID", "-100200")

	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	req.NoError(err)
	req.Equal("7777", cfg.Server.Port)
	req.Equal(0.5, *cfg.Analysis.DefaultThreshold)
	req.True(cfg.Telegram.Enabled)
	req.Equal(int64(-100200), cfg.Telegram.ChatID)

	providers := cfg.GenerativeProviders()
	req.Len(providers, 1)
	req.Equal(llm.ProviderGemini, providers[0].Type)
	req.Equal("gemini-2.0-flash", providers[0].ModelName)
}

func TestLoadConfig_ZeroThresholdIsKept(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "analysis:\n  default_threshold: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.DefaultThreshold)
	require.Zero(t, *cfg.Analysis.DefaultThreshold)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown database":     "database:\n  type: mysql\n",
		"postgres without url": "database:\n  type: postgres\n",
		"threshold above one":  "analysis:\n  default_threshold: 1.5\n",
		"negative threshold":   "analysis:\n  default_threshold: -0.1\n",
		"telegram no token":    "telegram:\n  enabled: true\n  chat_id: 5\n",
		"unknown provider":     "providers:\n  - type: openai\n    api_key: x\n",
		"bad log level":        "log:\n  level: loud\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log:\n  level: debug\n  development: true\n"))
	require.NoError(t, err)

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
