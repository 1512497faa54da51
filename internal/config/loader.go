package config

import (
	"os"
	"strings"

	"github.com/subosito/gotenv"
	"github.com/ticktui/ticktui/internal/errors"
	"gopkg.in/yaml.v3"
)

// Environment inputs. The names match the .env files users already keep
// next to the binary.
const (
	EnvConfigPath   = "TICKTUI_CONFIG_PATH"
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
	EnvRedirectURL  = "REDIRECT_URL"
	EnvDev          = "DEV"
)

// Loader reads a configuration file once.
type Loader struct {
	path     string
	optional bool
	forceDev bool
	lookup   func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{
		path:   path,
		lookup: os.LookupEnv,
	}
}

// Optional makes a missing file fall back to defaults instead of failing.
func (l *Loader) Optional() *Loader {
	l.optional = true
	return l
}

// ForceDev turns dev mode on regardless of file and environment, before
// validation runs.
func (l *Loader) ForceDev() *Loader {
	l.forceDev = true
	return l
}

// Load reads the configuration file, substitutes ${VARS}, applies the
// environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	content, err := os.ReadFile(l.path)
	switch {
	case err == nil:
	case os.IsNotExist(err) && l.optional:
		content = nil
	case os.IsNotExist(err):
		return nil, &errors.ErrConfigNotFound{Path: l.path}
	default:
		return nil, &errors.ErrFileRead{Path: l.path, Err: err}
	}

	cfg, err := parse(substituteEnvVars(content))
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, l.lookup)
	if l.forceDev {
		cfg.Dev = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, &errors.ErrConfigValidation{Err: err}
	}
	return cfg, nil
}

// NewEnvLoader loads a .env file from the working directory if present and
// returns a loader for the file named by TICKTUI_CONFIG_PATH (default
// config.yaml, optional).
func NewEnvLoader() *Loader {
	_ = gotenv.Load(".env")

	path, explicit := os.LookupEnv(EnvConfigPath)
	if path == "" {
		path = "config.yaml"
		explicit = false
	}
	loader := NewLoader(path)
	if !explicit {
		loader.Optional()
	}
	return loader
}

// LoadFromEnv is NewEnvLoader().Load().
func LoadFromEnv() (*Config, error) {
	return NewEnvLoader().Load()
}

// Parse parses configuration from byte slice
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &errors.ErrConfigValidation{Err: err}
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &errors.ErrConfigParse{Err: err}
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file. DEV is a
// presence flag: any value, even empty, turns dev mode on.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvClientID); ok && v != "" {
		cfg.OAuth.ClientID = v
	}
	if v, ok := lookup(EnvClientSecret); ok && v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v, ok := lookup(EnvRedirectURL); ok && v != "" {
		cfg.OAuth.RedirectURL = v
	}
	if _, ok := lookup(EnvDev); ok {
		cfg.Dev = true
	}
}

func substituteEnvVars(content []byte) []byte {
	return []byte(os.ExpandEnv(string(content)))
}
