package config

import (
	"errors"
	"fmt"
	"strings"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// maxConcurrency bounds the concurrency key.
const maxConcurrency = 256

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Concurrency < 1 || c.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency must be between 1 and %d, got %d", maxConcurrency, c.Concurrency))
	}
	if !validOutput(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q", strings.Join(OutputFormats, "|"), c.OutputFormat))
	}
	if c.Parser.Timeout < 0 {
		errs = append(errs, fmt.Errorf("parser.timeout must not be negative, got %s", c.Parser.Timeout))
	}
	if strings.TrimSpace(c.Parser.Locale) == "" {
		errs = append(errs, errors.New("parser.locale is required"))
	}
	if strings.TrimSpace(c.Split.Marker) == "" {
		errs = append(errs, errors.New("split.marker is required"))
	} else if strings.ContainsAny(c.Split.Marker, " \t\r\n") {
		errs = append(errs, fmt.Errorf("split.marker must not contain whitespace, got %q", c.Split.Marker))
	}
	if strings.TrimSpace(c.Split.DefaultName) == "" {
		errs = append(errs, errors.New("split.default_name is required"))
	}

	return errors.Join(errs...)
}

// ValidateParser checks that a parser command is configured. Only commands
// that parse need it.
func (c *Config) ValidateParser() error {
	if len(c.Parser.Command) == 0 || strings.TrimSpace(c.Parser.Command[0]) == "" {
		return errors.New("parser.command is not configured\nHint: set parser.command in pqdeps.yaml, PQDEPS_PARSER__COMMAND, or pass --parser-cmd")
	}
	return nil
}

func validOutput(format string) bool {
	for _, f := range OutputFormats {
		if format == f {
			return true
		}
	}
	return false
}
