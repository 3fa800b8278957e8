package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"jstyle/internal/config"
	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

func rename(ident tree.Node, to string) *diag.Fix {
	return diag.RenameIdentifier("rename to "+to, ident, to).
		WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
		Preferred()
}

// class-naming: type names are UpperCamelCase unless they end with a
// domain-object suffix such as DO or DTO.
type classNaming struct{ base }

func newClassNaming() *classNaming {
	return &classNaming{base{
		id:       "class-naming",
		code:     diag.NamClass,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindClass, tree.KindInterface, tree.KindEnum, tree.KindRecord, tree.KindAnnotationType},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "exemptSuffixes", Kind: config.OptionStringSet, Default: []string{"DO", "PO", "DTO", "BO", "VO", "UID"}, Doc: "suffixes that exempt a name"},
		},
	}}
}

func (r *classNaming) Check(ctx *Context, decl tree.Node) error {
	name := convention.DeclaredName(decl)
	text := name.Text()
	if text == "" || hasSuffixIn(text, ctx.Options.StringSet("exemptSuffixes")) || convention.IsUpperCamel(text) {
		return nil
	}
	b := ctx.Report(r.code, name, fmt.Sprintf("type name %q is not UpperCamelCase", text))
	if fixed := convention.ToUpperCamel(text); fixed != text && convention.IsUpperCamel(fixed) && validIdentifier(fixed) {
		b.WithFix(rename(name, fixed))
	}
	b.Emit()
	return nil
}

// class-name-affixes: abstract classes start with Abstract or Base, exception
// classes end with Exception, classes under a test root end with Test.
type classNameAffixes struct{ base }

func newClassNameAffixes() *classNameAffixes {
	return &classNameAffixes{base{
		id:       "class-name-affixes",
		code:     diag.NamClassAffix,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindClass, tree.KindEnum, tree.KindRecord},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "abstractPrefixes", Kind: config.OptionStringSet, Default: []string{"Abstract", "Base"}, Doc: "accepted prefixes of abstract classes"},
			{Name: "testSuffix", Kind: config.OptionString, Default: "Test", Doc: "required suffix of classes under test roots"},
		},
	}}
}

func (r *classNameAffixes) Check(ctx *Context, decl tree.Node) error {
	name := convention.DeclaredName(decl)
	text := name.Text()
	if text == "" {
		return nil
	}
	abstract := decl.Kind() == tree.KindClass && convention.ModifiersOf(decl).IsAbstract()

	if abstract {
		prefixes := ctx.Options.StringSet("abstractPrefixes")
		ok := false
		for _, p := range prefixes {
			ok = ok || strings.HasPrefix(text, p)
		}
		if !ok && len(prefixes) > 0 {
			fixed := prefixes[0] + text
			ctx.Report(r.code, name, fmt.Sprintf("abstract class %q should start with %s", text, strings.Join(prefixes, " or "))).
				WithFix(rename(name, fixed)).
				Emit()
		}
	}

	if decl.Kind() == tree.KindClass && r.isException(ctx, decl) && !strings.HasSuffix(text, "Exception") {
		ctx.Report(r.code, name, fmt.Sprintf("exception class %q should end with Exception", text)).
			WithFix(rename(name, text+"Exception")).
			Emit()
	}

	suffix := ctx.Options.String("testSuffix")
	if suffix != "" && !abstract && convention.EnclosingType(decl).IsNil() &&
		ctx.Layout.IsTest(ctx.Path()) && !strings.HasSuffix(text, suffix) {
		ctx.Report(r.code, name, fmt.Sprintf("test class %q should end with %s", text, suffix)).
			WithFix(rename(name, text+suffix)).
			Emit()
	}
	return nil
}

// isException follows the superclass chain; a supertype whose simple name
// ends with Exception marks an exception class.
func (r *classNameAffixes) isException(ctx *Context, decl tree.Node) bool {
	info := ctx.TypeOf(decl)
	if info.Super == "" {
		return false
	}
	if strings.HasSuffix(typeindex.SimpleName(info.Super), "Exception") {
		return true
	}
	chain, unresolved := ctx.Index().SuperclassChain(info)
	for _, t := range chain {
		if strings.HasSuffix(t.Name, "Exception") {
			return true
		}
	}
	return strings.HasSuffix(typeindex.SimpleName(unresolved), "Exception")
}

// enum-naming: enums end with Enum, enum constants are in constant case.
type enumNaming struct{ base }

func newEnumNaming() *enumNaming {
	return &enumNaming{base{
		id:       "enum-naming",
		code:     diag.NamEnum,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindEnum, tree.KindEnumConstant},
		severity: diag.SevError,
	}}
}

func (r *enumNaming) Check(ctx *Context, n tree.Node) error {
	name := convention.DeclaredName(n)
	text := name.Text()
	if text == "" {
		return nil
	}
	if n.Kind() == tree.KindEnum {
		if !strings.HasSuffix(text, "Enum") {
			ctx.Report(r.code, name, fmt.Sprintf("enum %q should end with Enum", text)).
				WithFix(rename(name, text+"Enum")).
				Emit()
		}
		return nil
	}

	if convention.IsConstantCase(text) {
		return nil
	}
	b := ctx.Report(diag.NamEnumConstantCase, name, fmt.Sprintf("enum constant %q is not in constant case", text))
	if fixed := convention.ToConstantCase(text); fixed != text && convention.IsConstantCase(fixed) {
		b.WithFix(diag.ReplaceNode("rename to "+fixed, n, tree.CategoryEnumConstant,
			func(target tree.Node) (string, error) {
				return spliceText(target, name, fixed), nil
			}).
			WithApplicability(diag.FixApplicabilitySafeWithHeuristics).
			Preferred())
	}
	b.Emit()
	return nil
}

// package-naming: package declarations and source directories are lower case.
type packageNaming struct{ base }

func newPackageNaming() *packageNaming {
	return &packageNaming{base{
		id:       "package-naming",
		code:     diag.NamPackage,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindPackage, tree.KindFile},
		severity: diag.SevError,
	}}
}

func packageNameNode(pkg tree.Node) tree.Node {
	for _, c := range pkg.Significant() {
		if c.Grammar() == "identifier" || c.Grammar() == "scoped_identifier" {
			return c
		}
	}
	return tree.Node{}
}

func (r *packageNaming) Check(ctx *Context, n tree.Node) error {
	if n.Kind() == tree.KindPackage {
		name := packageNameNode(n)
		text := name.Text()
		if lower := strings.ToLower(text); lower != text {
			b := ctx.Report(r.code, name, fmt.Sprintf("package %q is not lower case", text))
			if !slices.ContainsFunc(strings.Split(lower, "."), func(s string) bool { return !validIdentifier(s) }) {
				b.WithFix(diag.ReplaceNode("rename to "+lower, n, tree.CategoryPackage,
					func(target tree.Node) (string, error) {
						return spliceText(target, name, lower), nil
					}).
					WithApplicability(diag.FixApplicabilityManualReview))
			}
			b.Emit()
		}
		return nil
	}

	dir, ok := ctx.Layout.PackageDir(ctx.Path())
	if !ok || dir == strings.ToLower(dir) {
		return nil
	}
	anchor := n.ChildOfKind(tree.KindPackage)
	primary := anchor.Span()
	if anchor.IsNil() {
		anchor = n
		primary = source.Span{File: n.Span().File}
	}
	ctx.ReportAt(r.code, anchor, primary, fmt.Sprintf("source directory %q is not lower case", dir)).Emit()
	return nil
}

// method-naming: methods, parameters, annotation element keys and Javadoc
// @param names are lowerCamelCase.
type methodNaming struct{ base }

var javadocParam = regexp.MustCompile(`@param\s+([^\s<>]+)`)

func newMethodNaming() *methodNaming {
	return &methodNaming{base{
		id:       "method-naming",
		code:     diag.NamMethod,
		family:   FamilyNaming,
		kinds:    []tree.Kind{tree.KindMethod, tree.KindParameter, tree.KindAnnotation, tree.KindComment},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "pattern", Kind: config.OptionRegex, Default: convention.LowerCamelPattern, Doc: "shape of method and parameter names"},
			{Name: "ignoreInJavadoc", Kind: config.OptionBool, Default: false, Doc: "skip @param names in Javadoc"},
		},
	}}
}

func (r *methodNaming) Check(ctx *Context, n tree.Node) error {
	switch n.Kind() {
	case tree.KindMethod:
		fixable := !convention.ModifiersOf(n).HasAnnotation("Override")
		r.checkName(ctx, convention.DeclaredName(n), "method", fixable)
	case tree.KindParameter:
		owner := n.Parent().Parent()
		if n.Parent().Kind() == tree.KindParameterList &&
			(owner.Kind() == tree.KindMethod || owner.Kind() == tree.KindConstructor) {
			r.checkName(ctx, convention.DeclaredName(n), "parameter", true)
		}
	case tree.KindAnnotation:
		for _, arg := range n.ChildByField("arguments").Children() {
			if arg.Grammar() == "element_value_pair" {
				r.checkName(ctx, arg.ChildByField("key"), "annotation element", true)
			}
		}
	case tree.KindComment:
		if !ctx.Options.Bool("ignoreInJavadoc") && strings.HasPrefix(n.Text(), "/**") {
			r.checkJavadoc(ctx, n)
		}
	}
	return nil
}

func (r *methodNaming) checkName(ctx *Context, ident tree.Node, what string, fixable bool) {
	text := ident.Text()
	pattern := ctx.Options.Regex("pattern")
	if text == "" || pattern.MatchString(text) {
		return
	}
	b := ctx.Report(r.code, ident, fmt.Sprintf("%s name %q is not lowerCamelCase", what, text))
	if fixed := convention.ToLowerCamel(text); fixable && fixed != text && pattern.MatchString(fixed) && validIdentifier(fixed) {
		b.WithFix(rename(ident, fixed))
	}
	b.Emit()
}

func (r *methodNaming) checkJavadoc(ctx *Context, comment tree.Node) {
	text := comment.Text()
	pattern := ctx.Options.Regex("pattern")
	for _, m := range javadocParam.FindAllStringSubmatchIndex(text, -1) {
		from, to := m[2], m[3]
		name := text[from:to]
		if pattern.MatchString(name) {
			continue
		}
		sp := source.Span{
			File:  comment.Span().File,
			Start: comment.Start() + uint32(from), // #nosec G115 -- offsets inside a comment
			End:   comment.Start() + uint32(to),   // #nosec G115
		}
		b := ctx.ReportAt(r.code, comment, sp, fmt.Sprintf("@param name %q is not lowerCamelCase", name))
		if fixed := convention.ToLowerCamel(name); fixed != name && pattern.MatchString(fixed) {
			b.WithFix(diag.ReplaceNode("rename to "+fixed, comment, tree.CategoryComment,
				func(target tree.Node) (string, error) {
					t := target.Text()
					return t[:from] + fixed + t[to:], nil
				}).
				WithApplicability(diag.FixApplicabilitySafeWithHeuristics))
		}
		b.Emit()
	}
}
