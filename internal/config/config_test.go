package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) Config {
	t.Helper()
	v := viper.New()
	Bind(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	cfg := load(t)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 10, cfg.Chat.HistoryTurns)
	assert.Equal(t, 25*time.Millisecond, cfg.Terminal.TypeDelay)
	assert.Equal(t, "prompt", cfg.Terminal.Restore)
	assert.False(t, cfg.Contact.Enabled())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENROUTER_API_KEY", "sk-plain")
	t.Setenv("CRTFOLIO_CHAT_HISTORY_TURNS", "4")
	t.Setenv("CRTFOLIO_TERMINAL_RESTORE", "auto")
	t.Setenv("CRTFOLIO_CHAT_TIMEOUT", "30s")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASS", "app-password")

	cfg := load(t)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sk-plain", cfg.OpenRouter.APIKey)
	assert.Equal(t, 4, cfg.Chat.HistoryTurns)
	assert.Equal(t, "auto", cfg.Terminal.Restore)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.True(t, cfg.Contact.Enabled())
	assert.Equal(t, "smtp.gmail.com", cfg.Contact.SMTPHost)

	t.Setenv("CRTFOLIO_SERVER_PORT", "7070")
	assert.Equal(t, "7070", load(t).Server.Port, "prefixed name wins")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crtfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chat:
  provider: gemini
  rate_per_minute: 0
terminal:
  restore: never
  save_debounce: 250ms
`), 0o600))

	v := viper.New()
	Bind(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Chat.Provider)
	assert.Equal(t, 0, cfg.Chat.RatePerMinute)
	assert.Equal(t, "never", cfg.Terminal.Restore)
	assert.Equal(t, 250*time.Millisecond, cfg.Terminal.SaveDebounce)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"provider":      func(c *Config) { c.Chat.Provider = "anthropic" },
		"mode":          func(c *Config) { c.Server.Mode = "prod" },
		"restore":       func(c *Config) { c.Terminal.Restore = "sometimes" },
		"history turns": func(c *Config) { c.Chat.HistoryTurns = 0 },
		"rate":          func(c *Config) { c.Chat.RatePerMinute = -1 },
		"timeout":       func(c *Config) { c.Chat.Timeout = 0 },
		"type delay":    func(c *Config) { c.Terminal.TypeDelay = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestModel(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "moonshotai/kimi-k2", cfg.Model())

	cfg.Server.Mode = "release"
	assert.Equal(t, "moonshotai/kimi-k2:free", cfg.Model())

	cfg.Chat.Model = "openai/gpt-4o-mini"
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Model())

	cfg = Defaults()
	cfg.Chat.Provider = "gemini"
	assert.Equal(t, "gemini-2.5-flash", cfg.Model())
}
