package config

import (
	"maps"
	"regexp"
	"slices"
)

// OptionKind is the type of a rule option.
type OptionKind uint8

const (
	OptionInt OptionKind = iota
	OptionBool
	OptionString
	OptionStringSet
	OptionRegex
)

func (k OptionKind) String() string {
	switch k {
	case OptionInt:
		return "int"
	case OptionBool:
		return "bool"
	case OptionString:
		return "string"
	case OptionStringSet:
		return "string set"
	case OptionRegex:
		return "regex"
	}
	return "unknown"
}

// OptionSpec declares one option of a rule. Default must already have the
// Go type of the kind: int, bool, string, []string or a pattern string for regex.
// Check, when set, rejects values that convert but are out of range.
type OptionSpec struct {
	Name    string
	Kind    OptionKind
	Default any
	Doc     string
	Check   func(any) error
}

// Options are the resolved option values of one rule. Read-only after Resolve.
type Options struct {
	values map[string]any
}

// Defaults builds the options from the schema defaults.
func Defaults(schema []OptionSpec) Options {
	o := Options{values: make(map[string]any, len(schema))}
	for _, s := range schema {
		v, err := convert(s.Kind, s.Default)
		if err != nil {
			panic("config: bad default for " + s.Name + ": " + err.Error())
		}
		o.values[s.Name] = v
	}
	return o
}

func (o Options) clone() Options {
	return Options{values: maps.Clone(o.values)}
}

// Has reports whether the option has a value.
func (o Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

func (o Options) Int(name string) int {
	v, _ := o.values[name].(int)
	return v
}

func (o Options) Bool(name string) bool {
	v, _ := o.values[name].(bool)
	return v
}

func (o Options) String(name string) string {
	v, _ := o.values[name].(string)
	return v
}

// StringSet returns the set values in declaration order.
func (o Options) StringSet(name string) []string {
	v, _ := o.values[name].([]string)
	return slices.Clone(v)
}

// Contains reports whether s is in the string set option.
func (o Options) Contains(name, s string) bool {
	v, _ := o.values[name].([]string)
	return slices.Contains(v, s)
}

func (o Options) Regex(name string) *regexp.Regexp {
	v, _ := o.values[name].(*regexp.Regexp)
	return v
}

// Names returns the option names in sorted order.
func (o Options) Names() []string {
	return slices.Sorted(maps.Keys(o.values))
}

// Raw returns the value in its printable form.
func (o Options) Raw(name string) any {
	v := o.values[name]
	if re, ok := v.(*regexp.Regexp); ok {
		return re.String()
	}
	return v
}
