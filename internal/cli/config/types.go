// Package config loads pqdeps CLI configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the config
// file (pqdeps.yaml), PQDEPS_ environment variables, and command-line flags
// that were explicitly set.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Parser       ParserConfig `koanf:"parser"`
	Split        SplitConfig  `koanf:"split"`
	Concurrency  int          `koanf:"concurrency"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	Strict       bool         `koanf:"strict"`

	// ConfigDir is the directory of the loaded config file ("" when none)
	ConfigDir string `koanf:"-"`
}

// ParserConfig configures the external parser process.
type ParserConfig struct {
	// Command is the parser argv, e.g. ["node", "parse.js"]
	Command []string      `koanf:"command"`
	Locale  string        `koanf:"locale"`
	Timeout time.Duration `koanf:"timeout"`
}

// SplitConfig configures how a combined source is split into documents.
type SplitConfig struct {
	Marker      string `koanf:"marker"`
	DefaultName string `koanf:"default_name"`
}

// Default configuration values.
const (
	DefaultLocale      = "en-US"
	DefaultTimeout     = 30 * time.Second
	DefaultMarker      = "//"
	DefaultName        = "Query1"
	DefaultConcurrency = 4
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=json
)

// Config file names searched for, in order.
var configFileNames = []string{"pqdeps.yaml", "pqdeps.yml"}

// envPrefix prefixes environment variables. A double underscore separates
// nested keys: PQDEPS_PARSER__LOCALE sets parser.locale.
const envPrefix = "PQDEPS_"

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			Locale:  DefaultLocale,
			Timeout: DefaultTimeout,
		},
		Split: SplitConfig{
			Marker:      DefaultMarker,
			DefaultName: DefaultName,
		},
		Concurrency:  DefaultConcurrency,
		OutputFormat: DefaultOutput,
	}
}
