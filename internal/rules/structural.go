package rules

import (
	"fmt"
	"regexp"
	"strings"

	"jstyle/internal/config"
	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

// magic-value: literals used directly in code are extracted into named constants.
type magicValue struct{ base }

func newMagicValue() *magicValue {
	return &magicValue{base{
		id:       "magic-value",
		code:     diag.StrMagicValue,
		family:   FamilyStructural,
		kinds:    []tree.Kind{tree.KindLiteral},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "ignore", Kind: config.OptionStringSet, Default: []string{"true", "false"}, Doc: "literal texts never reported"},
		},
	}}
}

// literalType returns the Java type of a primitive or String literal, "" otherwise.
func literalType(lit tree.Node) string {
	text := lit.Text()
	last := ""
	if text != "" {
		last = text[len(text)-1:]
	}
	switch lit.Grammar() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if last == "l" || last == "L" {
			return "long"
		}
		return "int"
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if last == "f" || last == "F" {
			return "float"
		}
		return "double"
	case "true", "false":
		return "boolean"
	case "character_literal":
		return "char"
	case "string_literal", "text_block":
		return "String"
	}
	return ""
}

var nonWordASCII = regexp.MustCompile(`[^A-Za-z0-9_]`)

// constantName derives CONST_<VALUE> from the literal text.
func constantName(text string) string {
	value := strings.ReplaceAll(text, `"`, "")
	return "CONST_" + strings.ToUpper(nonWordASCII.ReplaceAllString(value, "_"))
}

func (r *magicValue) Check(ctx *Context, lit tree.Node) error {
	typ := literalType(lit)
	if typ == "" || ctx.Options.Contains("ignore", lit.Text()) {
		return nil
	}
	// сравнения и тернарные выражения не трогаем
	if !lit.Ancestor(tree.KindBinaryExpr, tree.KindConditionalExpr).IsNil() {
		return nil
	}
	if parent := lit.Parent(); parent.Kind() == tree.KindVariableDeclarator {
		if parent.Parent().Kind() != tree.KindLocalVar {
			return nil
		}
	} else if !inCodeBody(lit) {
		return nil
	}

	ctx.Report(r.code, lit, fmt.Sprintf("magic value %s should be a named constant", lit.Text())).
		WithFix(r.fix(ctx, lit, typ)).
		Emit()
	return nil
}

// inCodeBody reports whether n sits in a block of a method, constructor or lambda.
func inCodeBody(n tree.Node) bool {
	block := n.Ancestor(tree.KindCodeBlock)
	if block.IsNil() {
		return false
	}
	return !block.Ancestor(tree.KindMethod, tree.KindConstructor, tree.KindLambda).IsNil()
}

func (r *magicValue) fix(ctx *Context, lit tree.Node, typ string) *diag.Fix {
	owner := convention.EnclosingType(lit)
	switch owner.Kind() {
	case tree.KindClass, tree.KindEnum, tree.KindRecord:
	default:
		return nil
	}
	// локальные классы недоступны по квалифицированному имени
	if !owner.Ancestor(tree.KindMethod, tree.KindConstructor, tree.KindCodeBlock, tree.KindLambda).IsNil() {
		return nil
	}
	anchor := memberAnchor(owner)
	if anchor.IsNil() {
		return nil
	}
	name, reuse := constantSlot(ctx.TypeOf(owner).Fields, constantName(lit.Text()), typ, lit.Text())
	ref := typeindex.QualifiedName(owner) + "." + name

	f := diag.ReplaceNode("extract constant "+name, lit, tree.CategoryExpression, diag.Literal(ref))
	if !reuse {
		decl := fmt.Sprintf("private static final %s %s = %s;", typ, name, lit.Text())
		insert := diag.FixStep{
			Target:     anchor.Ref(),
			Placement:  diag.PlaceAfter,
			Category:   tree.CategoryMember,
			Synthesize: diag.Literal("\n" + memberIndent(ctx.Source(), owner, anchor) + decl),
		}
		f.Steps = append([]diag.FixStep{insert}, f.Steps...)
	}
	return f.WithApplicability(diag.FixApplicabilitySafeWithHeuristics).Preferred()
}

// constantSlot picks the field a literal is extracted into. A static field
// with the same type and initializer is reused; otherwise the first free name
// of base, base_2, base_3... is taken.
func constantSlot(fields map[string]typeindex.FieldInfo, base, typ, value string) (name string, reuse bool) {
	name = base
	for i := 2; ; i++ {
		f, taken := fields[name]
		if !taken {
			return name, false
		}
		if f.Static && f.Type == typ && f.Init == value {
			return name, true
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// memberAnchor returns the token after which new members go: the body's '{',
// or for enums the ';' that ends the constant list.
func memberAnchor(owner tree.Node) tree.Node {
	body := owner.ChildOfKind(tree.KindClassBody)
	if owner.Kind() == tree.KindEnum {
		body = body.ChildOfKind(tree.KindClassBody)
		if first := body.Child(0); isPunct(first, ";") {
			return first
		}
		return tree.Node{}
	}
	if first := body.Child(0); isPunct(first, "{") {
		return first
	}
	return tree.Node{}
}

// memberIndent is the indentation of the first member on its own line, or
// the owner's indentation plus four spaces.
func memberIndent(src []byte, owner, anchor tree.Node) string {
	for m := anchor.NextSignificant(); !m.IsNil(); m = m.NextSignificant() {
		if newlineBefore(src, m.Start()) && !isPunct(m, "}") {
			return lineIndent(src, m.Start())
		}
	}
	return lineIndent(src, owner.Start()) + "    "
}

// long-literal: long literals use an upper-case L suffix.
type longLiteral struct{ base }

func newLongLiteral() *longLiteral {
	return &longLiteral{base{
		id:       "long-literal",
		code:     diag.StrLowercaseLongSuffix,
		family:   FamilyStructural,
		kinds:    []tree.Kind{tree.KindLiteral},
		severity: diag.SevWarning,
	}}
}

func (r *longLiteral) Check(ctx *Context, lit tree.Node) error {
	text := lit.Text()
	if literalType(lit) != "long" || !strings.HasSuffix(text, "l") {
		return nil
	}
	fixed := text[:len(text)-1] + "L"
	ctx.Report(r.code, lit, fmt.Sprintf("long literal %s should end with 'L'", text)).
		WithFix(diag.ReplaceNode("use "+fixed, lit, tree.CategoryExpression, diag.Literal(fixed)).
			WithApplicability(diag.FixApplicabilityAlwaysSafe).
			Preferred()).
		Emit()
	return nil
}
