package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Provider presets. Dida365 is the mainland-China deployment of the same service.
const (
	ProviderTickTick = "ticktick"
	ProviderDida365  = "dida365"

	// DefaultScope is the only scope the client ever requests.
	DefaultScope = "tasks:read tasks:write"
)

type providerEndpoints struct {
	authURL  string
	tokenURL string
	baseURL  string
}

var providers = map[string]providerEndpoints{
	ProviderTickTick: {
		authURL:  "https://ticktick.com/oauth/authorize",
		tokenURL: "https://ticktick.com/oauth/token",
		baseURL:  "https://api.ticktick.com/open/v1",
	},
	ProviderDida365: {
		authURL:  "https://dida365.com/oauth/authorize",
		tokenURL: "https://dida365.com/oauth/token",
		baseURL:  "https://api.dida365.com/open/v1",
	},
}

// Config represents the complete application configuration.
// It is built once at startup and passed by pointer; nothing reads the
// environment after Load returns.
type Config struct {
	OAuth       OAuthConfig       `yaml:"oauth"`
	API         APIConfig         `yaml:"api"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Callback    CallbackConfig    `yaml:"callback"`
	Log         LogConfig         `yaml:"log"`
	// Dev routes every client call to the synthetic data source.
	Dev bool `yaml:"dev"`
}

// OAuthConfig contains the OAuth client registration and endpoints.
type OAuthConfig struct {
	Provider     string `yaml:"provider"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	AuthURL      string `yaml:"auth_url"`
	TokenURL     string `yaml:"token_url"`
	Scope        string `yaml:"scope"`
	// StrictState rejects a redirect whose state does not match the one sent.
	StrictState bool `yaml:"strict_state"`
}

// APIConfig contains the resource API settings.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	UTLS      bool          `yaml:"utls"`
}

// CredentialsConfig selects where the credential record lives.
type CredentialsConfig struct {
	Backend string `yaml:"backend"` // file, sqlite or memory
	Path    string `yaml:"path"`
}

// CallbackConfig selects how the authorization redirect is captured.
type CallbackConfig struct {
	Mode    string        `yaml:"mode"` // prompt or listener
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		OAuth: OAuthConfig{
			Provider:    ProviderTickTick,
			Scope:       DefaultScope,
			StrictState: true,
		},
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "ticktui/" + Version,
		},
		Credentials: CredentialsConfig{
			Backend: "file",
			Path:    "token_cache.json",
		},
		Callback: CallbackConfig{
			Mode:    "prompt",
			Timeout: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Version is reported by the CLI and sent in the User-Agent header.
const Version = "0.3.0"

// Validate validates the configuration and fills derived defaults.
func (c *Config) Validate() error {
	if err := c.OAuth.Validate(c.Dev); err != nil {
		return fmt.Errorf("oauth: %w", err)
	}
	if err := c.API.Validate(c.OAuth.Provider); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Credentials.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if err := c.Callback.Validate(); err != nil {
		return fmt.Errorf("callback: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Validate validates OAuth configuration. Client registration is only
// required outside dev mode, where no token is ever exchanged.
func (o *OAuthConfig) Validate(dev bool) error {
	if o.Provider == "" {
		o.Provider = ProviderTickTick
	}
	endpoints, ok := providers[o.Provider]
	if !ok {
		return fmt.Errorf("provider must be one of: %s, %s", ProviderTickTick, ProviderDida365)
	}
	if o.AuthURL == "" {
		o.AuthURL = endpoints.authURL
	}
	if o.TokenURL == "" {
		o.TokenURL = endpoints.tokenURL
	}
	if o.Scope == "" {
		o.Scope = DefaultScope
	}
	if err := checkURL("auth_url", o.AuthURL); err != nil {
		return err
	}
	if err := checkURL("token_url", o.TokenURL); err != nil {
		return err
	}
	if dev {
		return nil
	}
	if o.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if o.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}
	if o.RedirectURL == "" {
		return fmt.Errorf("redirect_url is required")
	}
	return checkURL("redirect_url", o.RedirectURL)
}

// Validate validates API configuration.
func (a *APIConfig) Validate(provider string) error {
	if a.BaseURL == "" {
		a.BaseURL = providers[provider].baseURL
	}
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")
	if err := checkURL("base_url", a.BaseURL); err != nil {
		return err
	}
	if a.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if a.Timeout == 0 {
		a.Timeout = 15 * time.Second
	}
	if a.UserAgent == "" {
		a.UserAgent = "ticktui/" + Version
	}
	return nil
}

// Validate validates credential storage configuration.
func (c *CredentialsConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = "file"
	}
	switch c.Backend {
	case "file":
		if c.Path == "" {
			c.Path = "token_cache.json"
		}
	case "sqlite":
		if c.Path == "" {
			c.Path = "token_cache.db"
		}
	case "memory":
	default:
		return fmt.Errorf("backend must be one of: file, sqlite, memory")
	}
	return nil
}

// Validate validates callback configuration.
func (c *CallbackConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = "prompt"
	}
	if c.Mode != "prompt" && c.Mode != "listener" {
		return fmt.Errorf("mode must be one of: prompt, listener")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
	return nil
}

// Validate validates logging configuration.
func (l *LogConfig) Validate() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of: debug, info, warn, error")
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("format must be one of: json, text")
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
