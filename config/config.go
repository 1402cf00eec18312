// Package config loads the reactqa configuration from flags, REACTQA_* environment
// variables, an optional YAML file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rickchristie/reactqa/models"
	"github.com/rickchristie/reactqa/tools"
)

// EnvPrefix prefixes every environment variable, e.g. REACTQA_MAX_ITERATIONS.
const EnvPrefix = "REACTQA"

// Keys.
const (
	KeyProvider      = "provider"
	KeyAPIKey        = "api_key"
	KeyModel         = "model"
	KeyBaseURL       = "base_url"
	KeyPacingDelay   = "pacing_delay"
	KeyMaxIterations = "max_iterations"
	KeyMemoryEnabled = "memory_enabled"
	KeyStepMode      = "step_mode"
	KeyTimeout       = "timeout"
	KeyTools         = "tools"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyMetricsAddr   = "metrics_addr"
)

// Step modes.
const (
	StepModeText     = "text"
	StepModeFunction = "function"
)

// Defaults.
const (
	DefaultProvider      = string(models.ProviderGemini)
	DefaultPacingDelay   = time.Second
	DefaultMaxIterations = 3
	DefaultTimeout       = 2 * time.Minute
)

var (
	// ErrMissingCredential is returned when no API key is configured for the provider.
	ErrMissingCredential = models.ErrMissingToken

	// ErrInvalidConfig is returned for out-of-range or unknown values.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// credentialEnv lists the provider specific variables consulted when api_key is unset.
var credentialEnv = map[models.Provider][]string{
	models.ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	models.ProviderOpenAI: {"OPENAI_API_KEY"},
	models.ProviderGitHub: {"GITHUB_TOKEN"},
}

// Config is the resolved configuration.
type Config struct {
	Provider      string        `mapstructure:"provider"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	PacingDelay   time.Duration `mapstructure:"pacing_delay"`
	MaxIterations int           `mapstructure:"max_iterations"`
	MemoryEnabled bool          `mapstructure:"memory_enabled"`
	StepMode      string        `mapstructure:"step_mode"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Tools         []string      `mapstructure:"tools"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`

	// MetricsAddr is the listen address of the Prometheus endpoint. Empty disables it.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, DefaultProvider)
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyModel, "")
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyPacingDelay, DefaultPacingDelay)
	v.SetDefault(KeyMaxIterations, DefaultMaxIterations)
	v.SetDefault(KeyMemoryEnabled, true)
	v.SetDefault(KeyStepMode, StepModeText)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyTools, tools.DefaultNames)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMetricsAddr, "")
}

// LoadDotEnv loads variables from the given .env files into the process environment.
// Existing variables win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("error loading %s: %w", p, err)
		}
	}
	return nil
}

// ReadFile reads the YAML config file at path. With an empty path it looks for
// reactqa.yaml in the working directory and in the user config directory, and a
// missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("reactqa")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "reactqa"))
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load resolves the configuration from v, fills the credential from the provider
// variables when api_key is unset, and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.StepMode = strings.ToLower(strings.TrimSpace(cfg.StepMode))
	cfg.Tools = splitTools(cfg.Tools)

	if cfg.APIKey == "" {
		for _, name := range credentialEnv[models.Provider(cfg.Provider)] {
			if key := os.Getenv(name); key != "" {
				cfg.APIKey = key
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field. An empty credential is ErrMissingCredential.
func (c *Config) Validate() error {
	provider, err := models.ParseProvider(c.Provider)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set %s_API_KEY or one of %s",
			ErrMissingCredential, EnvPrefix, strings.Join(credentialEnv[provider], ", "))
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be at least 1, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.PacingDelay < 0 {
		return fmt.Errorf("%w: pacing_delay must not be negative", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.StepMode != StepModeText && c.StepMode != StepModeFunction {
		return fmt.Errorf("%w: step_mode must be %q or %q, got %q",
			ErrInvalidConfig, StepModeText, StepModeFunction, c.StepMode)
	}
	if len(c.Tools) == 0 {
		return fmt.Errorf("%w: at least one tool is required", ErrInvalidConfig)
	}
	available := tools.Available()
	for _, name := range c.Tools {
		if !contains(available, name) {
			return fmt.Errorf("%w: unknown tool %q (available: %s)",
				ErrInvalidConfig, name, strings.Join(available, ", "))
		}
	}
	return nil
}

// ModelSpec returns the model selection for models.New.
func (c *Config) ModelSpec() models.Spec {
	return models.Spec{
		Provider: models.Provider(c.Provider),
		APIKey:   c.APIKey,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
	}
}

// ModelName returns the configured model, or the provider default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return models.Provider(c.Provider).DefaultModel()
}

// splitTools accepts both list values and a single comma separated string.
func splitTools(in []string) []string {
	var out []string
	for _, item := range in {
		for _, name := range strings.Split(item, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
