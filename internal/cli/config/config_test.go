package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pqdeps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringSlice("parser-cmd", nil, "parser command")
	flags.String("locale", "", "locale")
	flags.Duration("timeout", 0, "timeout")
	flags.String("marker", "", "marker")
	flags.String("default-name", "", "default name")
	flags.Int("concurrency", 0, "concurrency")
	flags.StringP("output", "o", "", "output")
	flags.BoolP("verbose", "v", false, "verbose")
	flags.Bool("strict", false, "strict")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Parser.Command)
	assert.Equal(t, DefaultLocale, cfg.Parser.Locale)
	assert.Equal(t, DefaultTimeout, cfg.Parser.Timeout)
	assert.Equal(t, DefaultMarker, cfg.Split.Marker)
	assert.Equal(t, DefaultName, cfg.Split.DefaultName)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Strict)
	assert.Empty(t, GetConfigFileUsed())
	assert.Empty(t, cfg.ConfigDir)
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `parser:
  command: ["./tools/parse.js", "--json"]
  locale: de-DE
  timeout: 5s
split:
  marker: "--#"
  default_name: Main
concurrency: 8
output: yaml
strict: true
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "tools", "parse.js"), "--json"}, cfg.Parser.Command)
	assert.Equal(t, "de-DE", cfg.Parser.Locale)
	assert.Equal(t, 5*time.Second, cfg.Parser.Timeout)
	assert.Equal(t, "--#", cfg.Split.Marker)
	assert.Equal(t, "Main", cfg.Split.DefaultName)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.True(t, cfg.Strict)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ConfigDir)
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "parser:\n  command: [pq-parse]\n")
	nested := filepath.Join(root, "queries", "sales")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// bare program names are left for PATH lookup
	assert.Equal(t, []string{"pq-parse"}, cfg.Parser.Command)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "parser:\n  locale: de-DE\nconcurrency: 2\n")
	t.Setenv("PQDEPS_PARSER__LOCALE", "fr-FR")
	t.Setenv("PQDEPS_CONCURRENCY", "6")
	t.Setenv("PQDEPS_SPLIT__DEFAULT_NAME", "FromEnv")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "fr-FR", cfg.Parser.Locale, "env var should override config file")
	assert.Equal(t, 6, cfg.Concurrency)
	assert.Equal(t, "FromEnv", cfg.Split.DefaultName)
}

func TestLoadConfig_EnvCommand(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("PQ_HOME", "/opt/pq")
	t.Setenv("PQDEPS_PARSER__COMMAND", "node ${PQ_HOME}/parse.js")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"node", "/opt/pq/parse.js"}, cfg.Parser.Command)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "parser:\n  locale: de-DE\nsplit:\n  marker: \"--#\"\n")
	t.Setenv("PQDEPS_PARSER__LOCALE", "fr-FR")

	flags := testFlags()
	require.NoError(t, flags.Set("locale", "nl-NL"))
	require.NoError(t, flags.Set("parser-cmd", "pq-parse"))
	require.NoError(t, flags.Set("parser-cmd", "--stdin"))
	require.NoError(t, flags.Set("timeout", "2s"))
	require.NoError(t, flags.Set("default-name", "Flagged"))
	require.NoError(t, flags.Set("output", "json"))
	require.NoError(t, flags.Set("strict", "true"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "nl-NL", cfg.Parser.Locale, "flag value should override config file and env var")
	assert.Equal(t, []string{"pq-parse", "--stdin"}, cfg.Parser.Command)
	assert.Equal(t, 2*time.Second, cfg.Parser.Timeout)
	assert.Equal(t, "Flagged", cfg.Split.DefaultName)
	assert.Equal(t, "--#", cfg.Split.Marker, "unset flag keeps file value")
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Strict)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("PQDEPS_OUTPUT", "markdown")

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat, "env var should be used when flag is not set")
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "output: html\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), `got "html"`)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Parser:       ParserConfig{Locale: DefaultLocale, Timeout: time.Second},
			Split:        SplitConfig{Marker: DefaultMarker, DefaultName: DefaultName},
			Concurrency:  1,
			OutputFormat: "text",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, errSubstr: "concurrency must be between"},
		{name: "huge concurrency", mutate: func(c *Config) { c.Concurrency = 1000 }, errSubstr: "concurrency must be between"},
		{name: "unknown output", mutate: func(c *Config) { c.OutputFormat = "csv" }, errSubstr: "output must be one of"},
		{name: "negative timeout", mutate: func(c *Config) { c.Parser.Timeout = -time.Second }, errSubstr: "parser.timeout"},
		{name: "empty locale", mutate: func(c *Config) { c.Parser.Locale = " " }, errSubstr: "parser.locale is required"},
		{name: "empty marker", mutate: func(c *Config) { c.Split.Marker = "" }, errSubstr: "split.marker is required"},
		{name: "marker with space", mutate: func(c *Config) { c.Split.Marker = "// " }, errSubstr: "whitespace"},
		{name: "empty default name", mutate: func(c *Config) { c.Split.DefaultName = "" }, errSubstr: "split.default_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateParser(t *testing.T) {
	assert.Error(t, (&Config{}).ValidateParser())
	assert.Error(t, (&Config{Parser: ParserConfig{Command: []string{""}}}).ValidateParser())
	assert.NoError(t, (&Config{Parser: ParserConfig{Command: []string{"pq-parse"}}}).ValidateParser())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain", expected: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestGetConfig(t *testing.T) {
	def := GetConfig(context.Background())
	assert.Equal(t, DefaultMarker, def.Split.Marker)
	assert.Equal(t, DefaultConcurrency, def.Concurrency)
	assert.NoError(t, def.Validate())

	cfg := &Config{Concurrency: 9}
	ctx := context.WithValue(context.Background(), ConfigKey(), cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}
