package rules

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"jstyle/internal/config"
	"jstyle/internal/diag"
)

// ErrDuplicateRule is returned when two rules share an id.
var ErrDuplicateRule = errors.New("duplicate rule id")

// Registry indexes rules by id, keeping registration order.
type Registry struct {
	rules []Rule
	byID  map[string]Rule
}

// NewRegistry registers rules in order.
func NewRegistry(rs ...Rule) (*Registry, error) {
	r := &Registry{byID: make(map[string]Rule, len(rs))}
	for _, rule := range rs {
		if _, dup := r.byID[rule.ID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
		}
		r.byID[rule.ID()] = rule
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// Default returns a registry with every built-in rule.
func Default() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) All() []Rule { return append([]Rule(nil), r.rules...) }

func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

func (r *Registry) Known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Active is a rule with its resolved configuration.
type Active struct {
	Rule     Rule
	Options  config.Options
	Severity diag.Severity
}

// Activate resolves every enabled rule against cfg. Configuration errors are
// aggregated; the returned set is always usable, malformed options keep
// their defaults.
func (r *Registry) Activate(cfg *config.Config) ([]Active, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	errs := cfg.CheckRules(r.Known)
	var out []Active
	for _, rule := range r.rules {
		if !cfg.Enabled(rule.ID(), true) {
			continue
		}
		settings := cfg.Rule(rule.ID())
		opts, err := config.Resolve(rule.ID(), settings.Options, rule.Options(), config.Defaults(rule.Options()))
		errs = multierr.Append(errs, err)

		sev := rule.DefaultSeverity()
		if settings.Severity != nil {
			sev = *settings.Severity
		}
		out = append(out, Active{Rule: rule, Options: opts, Severity: sev})
	}
	return out, errs
}

// ActivateDefaults returns the rules with default options, for tests and hosts
// without a configuration file.
func ActivateDefaults(rs ...Rule) []Active {
	out := make([]Active, 0, len(rs))
	for _, rule := range rs {
		out = append(out, Active{
			Rule:     rule,
			Options:  config.Defaults(rule.Options()),
			Severity: rule.DefaultSeverity(),
		})
	}
	return out
}
