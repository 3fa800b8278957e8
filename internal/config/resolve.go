package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"jstyle/internal/convention"
	"jstyle/internal/diag"
)

var (
	// ErrUnknownOption marks keys that are not part of a rule's schema.
	ErrUnknownOption = errors.New("unknown option")
	// ErrUnknownRule marks configuration for a rule that does not exist.
	ErrUnknownRule = errors.New("unknown rule")
)

// ConfigurationError reports one malformed option. The option keeps its
// previous valid value.
type ConfigurationError struct {
	Rule   string
	Option string
	Value  any
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%s: rule %q: %v", e.Code().ID(), e.Rule, e.Err)
	}
	return fmt.Sprintf("%s: rule %q option %q = %v: %v", e.Code().ID(), e.Rule, e.Option, e.Value, e.Err)
}

func (e *ConfigurationError) Code() diag.Code {
	if errors.Is(e.Err, ErrUnknownRule) {
		return diag.CfgUnknownRule
	}
	return diag.CfgInvalidOption
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Resolve applies raw option values over prev. Every malformed value leaves
// the previous value in place and contributes a *ConfigurationError to the
// returned multierr; the returned Options are always usable.
func Resolve(rule string, raw map[string]any, schema []OptionSpec, prev Options) (Options, error) {
	out := prev.clone()
	if out.values == nil {
		out = Defaults(schema)
	}
	known := make(map[string]OptionSpec, len(schema))
	for _, s := range schema {
		known[s.Name] = s
		if !out.Has(s.Name) {
			out.values[s.Name], _ = convert(s.Kind, s.Default)
		}
	}

	var errs error
	for _, name := range sortedKeys(raw) {
		value := raw[name]
		spec, ok := known[name]
		if !ok {
			errs = multierr.Append(errs, &ConfigurationError{Rule: rule, Option: name, Value: value, Err: ErrUnknownOption})
			continue
		}
		v, err := convert(spec.Kind, value)
		if err == nil && spec.Check != nil {
			err = spec.Check(v)
		}
		if err != nil {
			errs = multierr.Append(errs, &ConfigurationError{Rule: rule, Option: name, Value: value, Err: err})
			continue
		}
		out.values[name] = v
	}
	return out, errs
}

func convert(kind OptionKind, value any) (any, error) {
	switch kind {
	case OptionInt:
		return toInt(value)
	case OptionBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected bool, got %q", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("expected bool, got %T", value)
	case OptionString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected string, got %T", value)
	case OptionStringSet:
		return toStringSet(value)
	case OptionRegex:
		switch v := value.(type) {
		case string:
			re, err := convention.Compile(v)
			if err != nil {
				return nil, fmt.Errorf("bad pattern: %w", err)
			}
			return re, nil
		case *regexp.Regexp:
			return v, nil
		}
		return nil, fmt.Errorf("expected pattern string, got %T", value)
	}
	return nil, fmt.Errorf("unsupported option kind %d", kind)
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
		return int(v), nil // #nosec G115 -- checked above
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected integer, got %T", value)
}

// toStringSet accepts a list or a comma separated string.
func toStringSet(value any) ([]string, error) {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	case []any:
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, found %T", it)
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out, nil
}

// Positive is a Check accepting ints greater than zero.
func Positive(v any) error {
	if n, _ := v.(int); n <= 0 {
		return fmt.Errorf("must be positive, got %v", v)
	}
	return nil
}
