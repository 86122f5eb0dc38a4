package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thesyncim/todo-e2e/pkg/browser"
	"github.com/thesyncim/todo-e2e/pkg/todo"
)

// Config is the CLI configuration. Values come from defaults, then the
// YAML file, then flags.
type Config struct {
	URL             string        `yaml:"url"`
	Driver          string        `yaml:"driver"`
	Headless        bool          `yaml:"headless"`
	NoSandbox       bool          `yaml:"no_sandbox"`
	Timeout         time.Duration `yaml:"timeout"`
	ExpectTimeout   time.Duration `yaml:"expect_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	ScenarioTimeout time.Duration `yaml:"scenario_timeout"`
	Run             string        `yaml:"run"`
	Output          string        `yaml:"output"`
}

// DefaultConfig mirrors the package defaults of browser and todo.
func DefaultConfig() Config {
	b := browser.DefaultConfig()
	r := todo.DefaultConfig()
	return Config{
		URL:             r.BaseURL,
		Driver:          string(b.Driver),
		Headless:        b.Headless,
		NoSandbox:       b.NoSandbox,
		Timeout:         b.Timeout,
		ExpectTimeout:   r.Expect.Timeout,
		PollInterval:    r.Expect.Interval,
		ScenarioTimeout: r.ScenarioTimeout,
		Output:          outputText,
	}
}

// LoadConfig reads path over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that flags and YAML cannot type-check.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q: want an absolute http(s) URL", c.URL)
	}
	if _, err := browser.ParseDriver(c.Driver); err != nil {
		return err
	}
	switch c.Output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("invalid output %q: want text, json or yaml", c.Output)
	}
	for name, d := range map[string]time.Duration{
		"timeout":          c.Timeout,
		"expect_timeout":   c.ExpectTimeout,
		"poll_interval":    c.PollInterval,
		"scenario_timeout": c.ScenarioTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	return nil
}

// BrowserConfig returns the launch options for browser.Open.
func (c Config) BrowserConfig() browser.Config {
	return browser.Config{
		Driver:    browser.Driver(c.Driver),
		Headless:  c.Headless,
		NoSandbox: c.NoSandbox,
		Timeout:   c.Timeout,
	}
}

// RunnerConfig returns the scenario runner settings, keeping package
// defaults for values the CLI does not expose.
func (c Config) RunnerConfig() todo.Config {
	cfg := todo.DefaultConfig()
	cfg.BaseURL = c.URL
	cfg.Expect = todo.ExpectConfig{Timeout: c.ExpectTimeout, Interval: c.PollInterval}
	cfg.ScenarioTimeout = c.ScenarioTimeout
	return cfg
}
