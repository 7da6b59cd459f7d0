// Package config loads the YAML configuration shared by the binaries.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfig is written to disk by LoadOrDefault when no file exists.
//
//go:embed default_config.yml
var DefaultConfig []byte

const (
	ModeAnthropic = "anthropic"
	ModeMock      = "mock"
)

type Config struct {
	Mode         string        `yaml:"mode"`
	Model        string        `yaml:"model"`
	MaxTokens    int64         `yaml:"max_tokens"`
	ModelTimeout time.Duration `yaml:"model_timeout"`
	TokenBudget  int           `yaml:"token_budget"`

	Prompt       Prompt       `yaml:"prompt"`
	HTTP         HTTP         `yaml:"http"`
	ToolProvider ToolProvider `yaml:"tool_provider"`
	ToolServer   ToolServer   `yaml:"tool_server"`
	Telemetry    Telemetry    `yaml:"telemetry"`
}

// Prompt is the tutor persona. The gating message is the exact reply for
// questions outside mathematics; it is appended to the system prompt so the
// model can quote it verbatim.
type Prompt struct {
	Version       string `yaml:"version"`
	System        string `yaml:"system"`
	GatingMessage string `yaml:"gating_message"`
}

// Render returns the system prompt sent to the model.
func (p *Prompt) Render() string {
	s := strings.TrimSpace(p.System)
	if p.GatingMessage == "" {
		return s
	}
	return s + "\n\"" + p.GatingMessage + "\""
}

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ToolProvider struct {
	URL string `yaml:"url"`
}

type ToolServer struct {
	Addr string `yaml:"addr"`
}

type Telemetry struct {
	ObserveJSON  bool   `yaml:"observe_json"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	c := &Config{}
	if err := c.decode(DefaultConfig); err != nil {
		return nil, fmt.Errorf("embedded default config: %w", err)
	}
	return c, nil
}

// LoadOrDefault loads path, writing the default configuration there first if
// it does not exist. An empty path uses the embedded defaults. Environment
// overrides are applied last, then the result is validated.
func (c *Config) LoadOrDefault(path string) error {
	b := DefaultConfig
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			b = DefaultConfig
			if err = os.WriteFile(path, b, 0o644); err != nil {
				return fmt.Errorf("failed to write default config: %w", err)
			}
		} else if err != nil {
			return err
		}
	}
	if err := c.decode(b); err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := c.applyEnv(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) decode(b []byte) error {
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	return d.Decode(c)
}

// applyEnv overrides fields from MATHTUTOR_* variables. Unset or empty
// variables leave the field alone.
func (c *Config) applyEnv() error {
	c.Mode = getEnv("MATHTUTOR_MODE", c.Mode)
	c.Model = getEnv("MATHTUTOR_MODEL", c.Model)
	c.HTTP.Addr = getEnv("MATHTUTOR_HTTP_ADDR", c.HTTP.Addr)
	c.ToolProvider.URL = getEnv("MATHTUTOR_TOOL_PROVIDER_URL", c.ToolProvider.URL)
	c.ToolServer.Addr = getEnv("MATHTUTOR_TOOL_SERVER_ADDR", c.ToolServer.Addr)
	c.Telemetry.ArtifactsDir = getEnv("MATHTUTOR_ARTIFACTS_DIR", c.Telemetry.ArtifactsDir)
	if v := os.Getenv("MATHTUTOR_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = strings.Split(v, ",")
	}

	var err error
	if c.TokenBudget, err = getEnvInt("MATHTUTOR_TOKEN_BUDGET", c.TokenBudget); err != nil {
		return err
	}
	ms, err := getEnvInt("MATHTUTOR_MODEL_TIMEOUT_MS", int(c.ModelTimeout/time.Millisecond))
	if err != nil {
		return err
	}
	c.ModelTimeout = time.Duration(ms) * time.Millisecond
	if v := os.Getenv("MATHTUTOR_OBSERVE_JSON"); v != "" {
		c.Telemetry.ObserveJSON = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeAnthropic:
		if c.Model == "" {
			errs = append(errs, errors.New("model is required in anthropic mode"))
		}
	case ModeMock:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q, want %q or %q", c.Mode, ModeAnthropic, ModeMock))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.ModelTimeout < 0 {
		errs = append(errs, fmt.Errorf("model_timeout must not be negative, got %s", c.ModelTimeout))
	}
	if c.TokenBudget < 0 {
		errs = append(errs, fmt.Errorf("token_budget must not be negative, got %d", c.TokenBudget))
	}
	if strings.TrimSpace(c.Prompt.System) == "" {
		errs = append(errs, errors.New("prompt.system is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return i, nil
}
