// Package config provides configuration types and defaults for crtfolio.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/geo"
	"github.com/Zachkp/crtfolio/internal/persist"
	"github.com/Zachkp/crtfolio/internal/session"
)

// EnvPrefix prefixes every environment override, e.g. CRTFOLIO_SERVER_PORT.
const EnvPrefix = "CRTFOLIO"

// Config holds all configuration options for crtfolio.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Chat       ChatConfig       `mapstructure:"chat"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Persona    PersonaConfig    `mapstructure:"persona"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Geo        GeoConfig        `mapstructure:"geo"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Contact    ContactConfig    `mapstructure:"contact"`
	Terminal   TerminalConfig   `mapstructure:"terminal"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release or test
	// SiteURL is sent to the provider for attribution.
	SiteURL string `mapstructure:"site_url"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type ChatConfig struct {
	Provider      string        `mapstructure:"provider"` // openrouter or gemini
	Model         string        `mapstructure:"model"`
	HistoryTurns  int           `mapstructure:"history_turns"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"` // 0 disables limiting
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type PersonaConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type GeoConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AdminConfig struct {
	// Token guards /admin. Empty generates a random one at startup.
	Token string `mapstructure:"token"`
}

// ContactConfig configures the SMTP relay behind POST /contact. The form is
// disabled until User and Pass are set.
type ContactConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port"`
	SMTPUser string `mapstructure:"smtp_user"`
	SMTPPass string `mapstructure:"smtp_pass"`
	To       string `mapstructure:"to"`
}

// Enabled reports whether credentials are present.
func (c ContactConfig) Enabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

type TerminalConfig struct {
	ServerURL    string        `mapstructure:"server_url"`
	Restore      string        `mapstructure:"restore"` // prompt, auto or never
	TypeDelay    time.Duration `mapstructure:"type_delay"`
	SaveDebounce time.Duration `mapstructure:"save_debounce"`
	StorageKey   string        `mapstructure:"storage_key"`
	LogFile      string        `mapstructure:"log_file"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// DataDir is where the database and terminal log live by default.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "crtfolio")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crtfolio"
	}
	return filepath.Join(home, ".local", "share", "crtfolio")
}

// Defaults returns the default configuration.
func Defaults() Config {
	data := DataDir()
	return Config{
		Server: ServerConfig{Port: "8080", Mode: "debug"},
		Chat: ChatConfig{
			Provider:      "openrouter",
			HistoryTurns:  10,
			Timeout:       2 * time.Minute,
			RatePerMinute: 20,
		},
		OpenRouter: OpenRouterConfig{BaseURL: chat.DefaultOpenRouterURL},
		Storage:    StorageConfig{Path: filepath.Join(data, "crtfolio.db")},
		Geo:        GeoConfig{Endpoint: geo.DefaultEndpoint, CacheTTL: geo.DefaultTTL},
		Contact:    ContactConfig{SMTPHost: "smtp.gmail.com", SMTPPort: "587"},
		Terminal: TerminalConfig{
			ServerURL:    "http://localhost:8080",
			Restore:      string(session.PolicyPrompt),
			TypeDelay:    25 * time.Millisecond,
			SaveDebounce: persist.DefaultDelay,
			StorageKey:   persist.DefaultKey,
			LogFile:      filepath.Join(data, "terminal.log"),
		},
	}
}

// plainEnv are unprefixed variable names honored for compatibility with
// common hosting setups.
var plainEnv = map[string]string{
	"server.port":        "PORT",
	"openrouter.api_key": "OPENROUTER_API_KEY",
	"gemini.api_key":     "GEMINI_API_KEY",
	"admin.token":        "ADMIN_TOKEN",
	"server.mode":        "GIN_MODE",
	"contact.smtp_host":  "SMTP_HOST",
	"contact.smtp_port":  "SMTP_PORT",
	"contact.smtp_user":  "SMTP_USER",
	"contact.smtp_pass":  "SMTP_PASS",
	"contact.to":         "TO_EMAIL",
}

// Bind registers defaults and environment overrides on v.
func Bind(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.site_url", d.Server.SiteURL)
	v.SetDefault("chat.provider", d.Chat.Provider)
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.history_turns", d.Chat.HistoryTurns)
	v.SetDefault("chat.timeout", d.Chat.Timeout)
	v.SetDefault("chat.rate_per_minute", d.Chat.RatePerMinute)
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", d.OpenRouter.BaseURL)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("persona.path", d.Persona.Path)
	v.SetDefault("persona.watch", d.Persona.Watch)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("geo.endpoint", d.Geo.Endpoint)
	v.SetDefault("geo.cache_ttl", d.Geo.CacheTTL)
	v.SetDefault("admin.token", "")
	v.SetDefault("contact.smtp_host", d.Contact.SMTPHost)
	v.SetDefault("contact.smtp_port", d.Contact.SMTPPort)
	v.SetDefault("contact.smtp_user", "")
	v.SetDefault("contact.smtp_pass", "")
	v.SetDefault("contact.to", "")
	v.SetDefault("terminal.server_url", d.Terminal.ServerURL)
	v.SetDefault("terminal.restore", d.Terminal.Restore)
	v.SetDefault("terminal.type_delay", d.Terminal.TypeDelay)
	v.SetDefault("terminal.save_debounce", d.Terminal.SaveDebounce)
	v.SetDefault("terminal.storage_key", d.Terminal.StorageKey)
	v.SetDefault("terminal.log_file", d.Terminal.LogFile)
	v.SetDefault("log.debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range plainEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, name)
	}
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the program cannot run with. A missing API key
// is not an error here; it surfaces on the first chat request.
func (c Config) Validate() error {
	switch c.Chat.Provider {
	case "openrouter", "gemini":
	default:
		return fmt.Errorf("chat.provider: unknown provider %q (want openrouter or gemini)", c.Chat.Provider)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode: unknown mode %q (want debug, release or test)", c.Server.Mode)
	}
	if _, err := session.ParsePolicy(c.Terminal.Restore); err != nil {
		return fmt.Errorf("terminal.restore: %w", err)
	}
	if c.Chat.HistoryTurns <= 0 {
		return fmt.Errorf("chat.history_turns must be positive, got %d", c.Chat.HistoryTurns)
	}
	if c.Chat.RatePerMinute < 0 {
		return fmt.Errorf("chat.rate_per_minute must not be negative, got %d", c.Chat.RatePerMinute)
	}
	for name, d := range map[string]time.Duration{
		"chat.timeout":           c.Chat.Timeout,
		"geo.cache_ttl":          c.Geo.CacheTTL,
		"terminal.type_delay":    c.Terminal.TypeDelay,
		"terminal.save_debounce": c.Terminal.SaveDebounce,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Model is the chat model to request. OpenRouter's free tier is used in
// release mode unless a model is configured.
func (c Config) Model() string {
	if c.Chat.Model != "" {
		return c.Chat.Model
	}
	if c.Chat.Provider == "gemini" {
		return chat.DefaultGeminiModel
	}
	if c.Server.Mode == "release" {
		return chat.DefaultModel + ":free"
	}
	return chat.DefaultModel
}
