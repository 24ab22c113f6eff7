// Package config loads mdtran settings from a config file, MDTRAN_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/mdtran/internal/fragmenter"
	"github.com/valpere/mdtran/internal/translator"
)

const (
	EnvPrefix         = "MDTRAN"
	DefaultConfigName = "config"
	DefaultLogFile    = "mdtran.log"
	DefaultDatabase   = "data/mdtran.db"
	DefaultProvider   = "openai"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Providers lists the accepted service.provider values.
var Providers = []string{"openai", "openrouter", "ollama", "google"}

// Config is the complete run configuration.
type Config struct {
	GlossaryFolder string                   `mapstructure:"glossary_folder"`
	SourceFile     string                   `mapstructure:"source_file"`
	OutputFile     string                   `mapstructure:"output_file"`
	OutputHTML     string                   `mapstructure:"output_html"`
	Instructions   string                   `mapstructure:"instructions"`
	MaxWords       int                      `mapstructure:"max_words"`
	SourceLang     string                   `mapstructure:"source_lang"`
	TargetLang     string                   `mapstructure:"target_lang"`
	Strict         bool                     `mapstructure:"strict"`
	LogFile        string                   `mapstructure:"log_file"`
	Database       string                   `mapstructure:"database"`
	Journal        bool                     `mapstructure:"journal"`
	Service        translator.ServiceConfig `mapstructure:"service"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// FlagKeys maps command-line flag names to configuration keys. Only flags
// present in the set passed to Load are bound.
var FlagKeys = map[string]string{
	"glossary":     "glossary_folder",
	"source":       "source_file",
	"output":       "output_file",
	"html":         "output_html",
	"instructions": "instructions",
	"max-words":    "max_words",
	"source-lang":  "source_lang",
	"target-lang":  "target_lang",
	"strict":       "strict",
	"log-file":     "log_file",
	"db":           "database",
	"provider":     "service.provider",
	"model":        "service.model",
	"base-url":     "service.base_url",
	"credentials":  "service.credentials",
	"timeout":      "service.timeout",
	"rpm":          "service.requests_per_minute",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("glossary_folder", "")
	v.SetDefault("source_file", "")
	v.SetDefault("output_file", "")
	v.SetDefault("output_html", "")
	v.SetDefault("instructions", "")
	v.SetDefault("max_words", fragmenter.DefaultMaxWords)
	v.SetDefault("source_lang", "")
	v.SetDefault("target_lang", "")
	v.SetDefault("strict", false)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("journal", true)

	v.SetDefault("service.provider", DefaultProvider)
	v.SetDefault("service.api_key", "")
	v.SetDefault("service.model", "")
	v.SetDefault("service.base_url", "")
	v.SetDefault("service.timeout", 120*time.Second)
	v.SetDefault("service.credentials", "")
	v.SetDefault("service.target_lang", "")
	v.SetDefault("service.requests_per_minute", 0)
}

func bindEnvVars(v *viper.Viper) error {
	// The API key keeps its conventional provider variable names.
	return v.BindEnv("service.api_key", EnvPrefix+"_SERVICE_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")
}

// Load reads the configuration. An empty path looks for config.yaml (or any
// format viper knows) in the working directory and tolerates its absence; a
// non-empty path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Service.TargetLang == "" {
		cfg.Service.TargetLang = cfg.TargetLang
	}
	return cfg, nil
}

// Validate checks the settings a translation run needs.
func (c *Config) Validate() error {
	if c.SourceFile == "" {
		return fmt.Errorf("%w: source_file is required", ErrInvalid)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("%w: output_file is required", ErrInvalid)
	}
	if samePath(c.SourceFile, c.OutputFile) {
		return fmt.Errorf("%w: source_file and output_file cannot be the same", ErrInvalid)
	}
	if c.OutputHTML != "" && samePath(c.OutputHTML, c.OutputFile) {
		return fmt.Errorf("%w: output_html and output_file cannot be the same", ErrInvalid)
	}
	if c.MaxWords <= 0 {
		return fmt.Errorf("%w: max_words must be positive, got %d", ErrInvalid, c.MaxWords)
	}
	return c.ValidateService()
}

// ValidateService checks the translation service settings alone.
func (c *Config) ValidateService() error {
	known := false
	for _, p := range Providers {
		if c.Service.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown provider %q (expected one of %s)", ErrInvalid, c.Service.Provider, strings.Join(Providers, ", "))
	}
	if c.Service.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests_per_minute must not be negative", ErrInvalid)
	}
	if c.Service.Provider == "google" && c.Service.TargetLang == "" {
		return fmt.Errorf("%w: target_lang is required for the google provider", ErrInvalid)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
