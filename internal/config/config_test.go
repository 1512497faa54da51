package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticktui/ticktui/internal/errors"
)

func validConfig() *Config {
	cfg := Default()
	cfg.OAuth.ClientID = "client"
	cfg.OAuth.ClientSecret = "secret"
	cfg.OAuth.RedirectURL = "http://localhost:8080/callback"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.OAuth.ClientID = "" },
			wantErr: true,
			errMsg:  "client_id is required",
		},
		{
			name:    "missing client secret",
			mutate:  func(c *Config) { c.OAuth.ClientSecret = "" },
			wantErr: true,
			errMsg:  "client_secret is required",
		},
		{
			name:    "missing redirect url",
			mutate:  func(c *Config) { c.OAuth.RedirectURL = "" },
			wantErr: true,
			errMsg:  "redirect_url is required",
		},
		{
			name: "dev mode needs no client registration",
			mutate: func(c *Config) {
				c.Dev = true
				c.OAuth.ClientID = ""
				c.OAuth.ClientSecret = ""
				c.OAuth.RedirectURL = ""
			},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.OAuth.Provider = "todoist" },
			wantErr: true,
			errMsg:  "provider must be one of",
		},
		{
			name:    "bad redirect scheme",
			mutate:  func(c *Config) { c.OAuth.RedirectURL = "ftp://localhost/cb" },
			wantErr: true,
			errMsg:  "redirect_url must use http or https",
		},
		{
			name:    "negative api timeout",
			mutate:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: true,
			errMsg:  "timeout must be positive",
		},
		{
			name:    "unknown credential backend",
			mutate:  func(c *Config) { c.Credentials.Backend = "redis" },
			wantErr: true,
			errMsg:  "backend must be one of",
		},
		{
			name:    "unknown callback mode",
			mutate:  func(c *Config) { c.Callback.Mode = "browser" },
			wantErr: true,
			errMsg:  "mode must be one of",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: true,
			errMsg:  "level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOAuthConfig_ProviderDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://ticktick.com/oauth/authorize", cfg.OAuth.AuthURL)
	assert.Equal(t, "https://ticktick.com/oauth/token", cfg.OAuth.TokenURL)
	assert.Equal(t, "https://api.ticktick.com/open/v1", cfg.API.BaseURL)
	assert.Equal(t, DefaultScope, cfg.OAuth.Scope)

	dida := validConfig()
	dida.OAuth.Provider = ProviderDida365
	require.NoError(t, dida.Validate())
	assert.Equal(t, "https://dida365.com/oauth/token", dida.OAuth.TokenURL)
	assert.Equal(t, "https://api.dida365.com/open/v1", dida.API.BaseURL)
}

func TestAPIConfig_TrimsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = "http://127.0.0.1:9999/open/v1/"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://127.0.0.1:9999/open/v1", cfg.API.BaseURL)
}

func TestCredentialsConfig_Defaults(t *testing.T) {
	c := CredentialsConfig{Backend: "sqlite"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "token_cache.db", c.Path)

	c = CredentialsConfig{}
	require.NoError(t, c.Validate())
	assert.Equal(t, "file", c.Backend)
	assert.Equal(t, "token_cache.json", c.Path)
}

func TestParse(t *testing.T) {
	yamlContent := `
oauth:
  provider: dida365
  client_id: abc
  client_secret: def
  redirect_url: http://localhost:8080/callback
  strict_state: false
api:
  timeout: 3s
  utls: true
credentials:
  backend: sqlite
  path: /tmp/creds.db
callback:
  mode: listener
log:
  level: debug
  format: text
`
	cfg, err := Parse([]byte(yamlContent))
	require.NoError(t, err)
	assert.Equal(t, ProviderDida365, cfg.OAuth.Provider)
	assert.Equal(t, "abc", cfg.OAuth.ClientID)
	assert.False(t, cfg.OAuth.StrictState)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.UTLS)
	assert.Equal(t, "sqlite", cfg.Credentials.Backend)
	assert.Equal(t, "/tmp/creds.db", cfg.Credentials.Path)
	assert.Equal(t, "listener", cfg.Callback.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Callback.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_DefaultsKeepStrictState(t *testing.T) {
	cfg, err := Parse([]byte("dev: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Dev)
	assert.True(t, cfg.OAuth.StrictState)
	assert.Equal(t, "prompt", cfg.Callback.Mode)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("oauth: [unterminated"))
	require.Error(t, err)
	var parseErr *errors.ErrConfigParse
	assert.ErrorAs(t, err, &parseErr)
}

func TestParse_InvalidConfig(t *testing.T) {
	_, err := Parse([]byte("oauth:\n  client_id: only\n"))
	require.Error(t, err)
	var validationErr *errors.ErrConfigValidation
	assert.ErrorAs(t, err, &validationErr)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TICKTUI_TEST_SECRET", "from-env")
	out := substituteEnvVars([]byte("client_secret: ${TICKTUI_TEST_SECRET}"))
	assert.Equal(t, "client_secret: from-env", string(out))
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvClientID:     "env-id",
		EnvClientSecret: "env-secret",
		EnvRedirectURL:  "http://127.0.0.1:9000/cb",
		EnvDev:          "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.OAuth.ClientID = "file-id"
	applyEnvOverrides(cfg, lookup)

	assert.Equal(t, "env-id", cfg.OAuth.ClientID)
	assert.Equal(t, "env-secret", cfg.OAuth.ClientSecret)
	assert.Equal(t, "http://127.0.0.1:9000/cb", cfg.OAuth.RedirectURL)
	assert.True(t, cfg.Dev, "DEV presence alone enables dev mode")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
oauth:
  client_id: abc
  client_secret: def
  redirect_url: http://localhost:8080/callback
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader(path)
	loader.lookup = func(string) (string, bool) { return "", false }
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.OAuth.ClientID)
	assert.False(t, cfg.Dev)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.Error(t, err)
	var notFound *errors.ErrConfigNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestLoad_OptionalFileUsesEnvironment(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Optional()
	loader.lookup = func(k string) (string, bool) {
		switch k {
		case EnvClientID:
			return "id", true
		case EnvClientSecret:
			return "secret", true
		case EnvRedirectURL:
			return "http://localhost:8080/callback", true
		}
		return "", false
	}

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.OAuth.ClientID)
	assert.Equal(t, "token_cache.json", cfg.Credentials.Path)
}

func TestLoad_ForceDevSkipsClientRegistration(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Optional().ForceDev()
	loader.lookup = func(string) (string, bool) { return "", false }

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Dev)

	strict := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Optional()
	strict.lookup = loader.lookup
	_, err = strict.Load()
	require.Error(t, err, "without dev mode client registration is required")
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev: true\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Dev)
}

func TestLoadFromEnv_ExplicitPathMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadFromEnv()
	require.Error(t, err)
	var notFound *errors.ErrConfigNotFound
	assert.ErrorAs(t, err, &notFound)
}
