package rules

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"jstyle/internal/config"
	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/tree"
)

// boolean-naming: mutable boolean fields must not start with "is".
type booleanNaming struct{ base }

func newBooleanNaming() *booleanNaming {
	return &booleanNaming{base{
		id:       "boolean-naming",
		code:     diag.NamBooleanField,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindField},
		severity: diag.SevWarning,
	}}
}

func hasIsPrefix(name string) bool {
	if len(name) <= 2 || !strings.HasPrefix(name, "is") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[2:])
	return unicode.IsUpper(r)
}

func (r *booleanNaming) Check(ctx *Context, field tree.Node) error {
	mods := convention.ModifiersOf(field)
	if mods.IsStatic() || mods.IsFinal() {
		return nil
	}
	if !convention.IsBooleanType(convention.DeclaredType(field).Text()) {
		return nil
	}
	for _, d := range convention.Declarators(field) {
		name := convention.DeclaredName(d)
		text := name.Text()
		if !hasIsPrefix(text) {
			continue
		}
		renamed := "has" + text[2:]
		ctx.Report(r.code, name, fmt.Sprintf("boolean field %q should not start with 'is'", text)).
			WithFix(diag.RenameIdentifier("rename to "+renamed, name, renamed).
				WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
				Preferred()).
			Emit()
	}
	return nil
}

// constant-naming: static final fields are written in constant case.
type constantNaming struct{ base }

func newConstantNaming() *constantNaming {
	return &constantNaming{base{
		id:       "constant-naming",
		code:     diag.NamConstant,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindField},
		severity: diag.SevError,
		options: []config.OptionSpec{
			{Name: "pattern", Kind: config.OptionRegex, Default: convention.ConstantPattern, Doc: "shape of constant names"},
			{Name: "ignore", Kind: config.OptionStringSet, Default: []string{"serialVersionUID"}, Doc: "names never reported"},
		},
	}}
}

func (r *constantNaming) Check(ctx *Context, field tree.Node) error {
	mods := convention.ModifiersOf(field)
	if !mods.IsStatic() || !mods.IsFinal() {
		return nil
	}
	pattern := ctx.Options.Regex("pattern")
	for _, d := range convention.Declarators(field) {
		name := convention.DeclaredName(d)
		text := name.Text()
		if pattern.MatchString(text) || ctx.Options.Contains("ignore", text) {
			continue
		}
		b := ctx.Report(r.code, name, fmt.Sprintf("constant %q is not in constant case", text))
		if renamed := convention.ToConstantCase(text); renamed != text && pattern.MatchString(renamed) {
			// поле пересобирается целиком: модификаторы и инициализатор остаются как есть
			b.WithFix(diag.ReplaceNode("rename to "+renamed, field, tree.CategoryField,
				func(target tree.Node) (string, error) {
					return spliceText(target, name, renamed), nil
				}).
				WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
				Preferred())
		}
		b.Emit()
	}
	return nil
}

// array-definition: brackets belong to the type, not to the variable name.
type arrayDefinition struct{ base }

func newArrayDefinition() *arrayDefinition {
	return &arrayDefinition{base{
		id:       "array-definition",
		code:     diag.NamArrayDefinition,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindField, tree.KindLocalVar, tree.KindParameter},
		severity: diag.SevWarning,
	}}
}

func (r *arrayDefinition) Check(ctx *Context, decl tree.Node) error {
	holders := convention.Declarators(decl)
	if decl.Kind() == tree.KindParameter {
		holders = []tree.Node{decl}
	}
	for _, h := range holders {
		dims := h.ChildByField("dimensions")
		if dims.IsNil() {
			continue
		}
		name := convention.DeclaredName(h)
		b := ctx.Report(r.code, name, fmt.Sprintf("array brackets of %q belong to the type", name.Text()))
		if len(holders) == 1 {
			b.WithFix(r.fix(decl, dims))
		}
		b.Emit()
	}
	return nil
}

func (r *arrayDefinition) fix(decl, dims tree.Node) *diag.Fix {
	cat := tree.CategoryOf(decl)
	typ := convention.DeclaredType(decl)
	return diag.ReplaceNode("move brackets to the type", decl, cat, func(target tree.Node) (string, error) {
		if typ.IsNil() {
			return "", fmt.Errorf("declaration without a type")
		}
		text := target.Text()
		base := target.Start()
		compact := strings.Join(strings.Fields(dims.Text()), "")
		head := text[:typ.End()-base]
		middle := strings.TrimRight(text[typ.End()-base:dims.Start()-base], " \t")
		return head + compact + middle + text[dims.End()-base:], nil
	}).WithApplicability(diag.FixApplicabilityAlwaysSafe).Preferred()
}

// hasSuffixIn reports whether name ends with one of suffixes.
func hasSuffixIn(name string, suffixes []string) bool {
	return slices.ContainsFunc(suffixes, func(s string) bool {
		s = strings.TrimSpace(s)
		return s != "" && strings.HasSuffix(name, s)
	})
}
