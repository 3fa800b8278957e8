// Package config loads jstyle.toml / .jstyle.yaml and resolves rule options.
package config

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/multierr"

	"jstyle/internal/diag"
)

// File names looked up in every directory, in priority order.
var FileNames = []string{"jstyle.toml", ".jstyle.yaml", ".jstyle.yml"}

// RuleSettings is the raw configuration of one rule.
type RuleSettings struct {
	Enabled  *bool
	Severity *diag.Severity
	Options  map[string]any
}

// Config is the project configuration. It is read-only during a scan.
type Config struct {
	Path           string // пусто, если использованы значения по умолчанию
	Root           string
	Exclude        []string
	TestRoots      []string
	SourceRoots    []string
	MaxDiagnostics int
	Rules          map[string]RuleSettings
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		TestRoots:   []string{"src/test/java"},
		SourceRoots: []string{"src/main/java", "src/test/java"},
		Rules:       make(map[string]RuleSettings),
	}
}

// Rule returns the settings of rule id, zero settings if absent.
func (c *Config) Rule(id string) RuleSettings {
	if c == nil {
		return RuleSettings{}
	}
	return c.Rules[id]
}

// Enabled reports whether rule id is on, def applies when unset.
func (c *Config) Enabled(id string, def bool) bool {
	if s := c.Rule(id); s.Enabled != nil {
		return *s.Enabled
	}
	return def
}

// SetEnabled overrides the enabled flag of rule id.
func (c *Config) SetEnabled(id string, on bool) {
	s := c.Rules[id]
	s.Enabled = &on
	c.Rules[id] = s
}

// CheckRules reports configured rule ids that are not in known.
func (c *Config) CheckRules(known func(id string) bool) error {
	var errs error
	for _, id := range slices.Sorted(maps.Keys(c.Rules)) {
		if !known(id) {
			errs = multierr.Append(errs, &ConfigurationError{Rule: id, Err: ErrUnknownRule})
		}
	}
	return errs
}

// raw is the decoded file before validation, shared by both formats.
type raw struct {
	Exclude        []string                  `toml:"exclude" yaml:"exclude"`
	TestRoots      []string                  `toml:"testRoots" yaml:"testRoots"`
	SourceRoots    []string                  `toml:"sourceRoots" yaml:"sourceRoots"`
	MaxDiagnostics int                       `toml:"maxDiagnostics" yaml:"maxDiagnostics"`
	Rules          map[string]map[string]any `toml:"rules" yaml:"rules"`
}

func fromRaw(r raw, path, root string) (*Config, error) {
	cfg := Default()
	cfg.Path, cfg.Root = path, root
	cfg.Exclude = r.Exclude
	cfg.MaxDiagnostics = r.MaxDiagnostics
	if r.TestRoots != nil {
		cfg.TestRoots = r.TestRoots
	}
	if r.SourceRoots != nil {
		cfg.SourceRoots = r.SourceRoots
	}

	var errs error
	for _, id := range sortedKeys(r.Rules) {
		entry := r.Rules[id]
		var s RuleSettings
		opts := make(map[string]any, len(entry))
		for k, v := range entry {
			switch k {
			case "enabled":
				b, err := convert(OptionBool, v)
				if err != nil {
					errs = multierr.Append(errs, &ConfigurationError{Rule: id, Option: k, Value: v, Err: err})
					continue
				}
				on := b.(bool)
				s.Enabled = &on
			case "severity":
				str, _ := v.(string)
				sev, err := diag.ParseSeverity(str)
				if err != nil {
					errs = multierr.Append(errs, &ConfigurationError{Rule: id, Option: k, Value: v, Err: err})
					continue
				}
				s.Severity = &sev
			default:
				opts[k] = v
			}
		}
		s.Options = opts
		cfg.Rules[id] = s
	}
	if errs != nil {
		return cfg, fmt.Errorf("%s: %w", path, errs)
	}
	return cfg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
