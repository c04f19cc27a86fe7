// Package config reads the optional YAML file that sets defaults for a scenario run.
// Command-line flags override anything set here.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the runner looks for a config file when none is given.
const DefaultPath = ".mytested.yaml"

type Config struct {
	// Parallelism is how many scenarios may run at once. Zero means no limit.
	Parallelism int           `yaml:"parallelism"`
	Timeout     time.Duration `yaml:"timeout"`
	Debug       bool          `yaml:"debug"`
	DebugAll    bool          `yaml:"debug_all"`
	NoColor     bool          `yaml:"no_color"`
	Run         []string      `yaml:"run,omitempty"`
	Skip        []string      `yaml:"skip,omitempty"`
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Default() Config {
	return Config{
		Parallelism: 1,
		Timeout:     10 * time.Second,
	}
}

// LoadFile reads the file at path over the defaults. A missing file at DefaultPath is not
// an error; a missing file anywhere else is.
func LoadFile(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a config, rejecting unknown fields, and validates it.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate returns every problem with c joined into one error, or nil.
func (c Config) Validate() error {
	var errs []error
	if c.Parallelism < 0 {
		errs = append(errs, &ValidationError{Field: "parallelism", Message: "must not be negative"})
	}
	if c.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "timeout", Message: "must not be negative"})
	}
	for i, p := range c.Run {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("run[%d]", i), Message: err.Error()})
		}
	}
	for i, p := range c.Skip {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("skip[%d]", i), Message: err.Error()})
		}
	}
	return errors.Join(errs...)
}

// Filters converts the run and skip patterns into test filters.
func (c Config) Filters() (framework.RegexFilters, error) {
	var f framework.RegexFilters
	for _, p := range c.Run {
		if err := f.MustMatch.Set(p); err != nil {
			return f, err
		}
	}
	for _, p := range c.Skip {
		if err := f.MustNotMatch.Set(p); err != nil {
			return f, err
		}
	}
	return f, nil
}
