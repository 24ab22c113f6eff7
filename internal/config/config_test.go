package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/mdtran/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY", "MDTRAN_SERVICE_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearKeyEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.MaxWords)
	assert.Equal(t, "openai", cfg.Service.Provider)
	assert.Equal(t, "mdtran.log", cfg.LogFile)
	assert.Equal(t, "data/mdtran.db", cfg.Database)
	assert.True(t, cfg.Journal)
	assert.Equal(t, 120*time.Second, cfg.Service.Timeout)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
glossary_folder: glossary
source_file: book.md
output_file: book.pl.md
instructions: Translate into Polish, keep Markdown.
max_words: 400
target_lang: pl
service:
  provider: ollama
  model: qwen3:14b
  timeout: 45s
  requests_per_minute: 30
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "glossary", cfg.GlossaryFolder)
	assert.Equal(t, "book.md", cfg.SourceFile)
	assert.Equal(t, "book.pl.md", cfg.OutputFile)
	assert.Equal(t, "Translate into Polish, keep Markdown.", cfg.Instructions)
	assert.Equal(t, 400, cfg.MaxWords)
	assert.Equal(t, "ollama", cfg.Service.Provider)
	assert.Equal(t, "qwen3:14b", cfg.Service.Model)
	assert.Equal(t, 45*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 30, cfg.Service.RequestsPerMinute)
	assert.Equal(t, "pl", cfg.Service.TargetLang, "top-level target_lang feeds the service")
	assert.Equal(t, path, cfg.File)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load(writeConfig(t, "source_file: a.md\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Service.APIKey)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("MDTRAN_MAX_WORDS", "99")
	t.Setenv("MDTRAN_SERVICE_PROVIDER", "openrouter")

	cfg, err := config.Load(writeConfig(t, "max_words: 400\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxWords)
	assert.Equal(t, "openrouter", cfg.Service.Provider)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("MDTRAN_MAX_WORDS", "99")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-words", 0, "")
	flags.String("source", "", "")
	flags.String("provider", "", "")
	require.NoError(t, flags.Parse([]string{"--max-words", "120", "--source", "cli.md"}))

	cfg, err := config.Load(writeConfig(t, "max_words: 400\nsource_file: file.md\n"), flags)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.MaxWords)
	assert.Equal(t, "cli.md", cfg.SourceFile)
	assert.Equal(t, "openai", cfg.Service.Provider, "unset flags do not shadow defaults")
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			SourceFile: "in.md",
			OutputFile: "out.md",
			MaxWords:   250,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"missing source", func(c *config.Config) { c.SourceFile = "" }},
		{"missing output", func(c *config.Config) { c.OutputFile = "" }},
		{"same file", func(c *config.Config) { c.OutputFile = "./in.md" }},
		{"html over output", func(c *config.Config) { c.OutputHTML = "out.md" }},
		{"zero budget", func(c *config.Config) { c.MaxWords = 0 }},
		{"unknown provider", func(c *config.Config) { c.Service.Provider = "babelfish" }},
		{"negative rpm", func(c *config.Config) { c.Service.RequestsPerMinute = -1 }},
		{"google without target", func(c *config.Config) { c.Service.Provider = "google" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			c.Service.Provider = "openai"
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), config.ErrInvalid)
		})
	}

	c := valid()
	c.Service.Provider = "openai"
	assert.NoError(t, c.Validate())
}
