// Package rules holds the convention checks. A rule is a predicate over one
// node kind plus an optional fix recipe; it owns no state beyond its
// configuration and reports only through its Context.
package rules

import (
	"jstyle/internal/config"
	"jstyle/internal/diag"
	"jstyle/internal/tree"
)

// Family groups rules by what they inspect.
type Family uint8

const (
	FamilyNaming Family = iota
	FamilyStructural
	FamilyPositional
)

func (f Family) String() string {
	switch f {
	case FamilyNaming:
		return "naming"
	case FamilyStructural:
		return "structural"
	case FamilyPositional:
		return "positional"
	}
	return "unknown"
}

// Rule is one convention check.
type Rule interface {
	ID() string
	Code() diag.Code
	Family() Family
	Kinds() []tree.Kind
	DefaultSeverity() diag.Severity
	Options() []config.OptionSpec
	Check(ctx *Context, n tree.Node) error
}

// base carries the static description shared by all rules.
type base struct {
	id       string
	code     diag.Code
	family   Family
	kinds    []tree.Kind
	severity diag.Severity
	options  []config.OptionSpec
}

func (b *base) ID() string                     { return b.id }
func (b *base) Code() diag.Code                { return b.code }
func (b *base) Family() Family                 { return b.family }
func (b *base) Kinds() []tree.Kind             { return b.kinds }
func (b *base) DefaultSeverity() diag.Severity { return b.severity }
func (b *base) Options() []config.OptionSpec   { return b.options }

// Builtin returns a fresh instance of every built-in rule, naming rules first.
func Builtin() []Rule {
	return []Rule{
		newBooleanNaming(),
		newConstantNaming(),
		newArrayDefinition(),
		newNamingConvention(),
		newMixedScript(),
		newClassNaming(),
		newClassNameAffixes(),
		newMethodNaming(),
		newPackageNaming(),
		newEnumNaming(),
		newSensitiveWords(),

		newMagicValue(),
		newFieldHiding(),
		newRedundantAccessor(),
		newOverrideAnnotation(),
		newLongLiteral(),

		newBraceSpacing(),
		newBraceStyle(),
		newCommentSpacing(),
		newIndentationTab(),
		newLineLength(),
		newCastSpacing(),
		newOperatorSpacing(),
		newReservedWordSpacing(),
	}
}
