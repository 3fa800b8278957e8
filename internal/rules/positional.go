package rules

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"jstyle/internal/config"
	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

func isWhitespace(n tree.Node) bool { return n.Kind() == tree.KindWhitespace }

// sameLine reports whether no newline separates the offsets a <= b.
func sameLine(src []byte, a, b uint32) bool {
	return !bytes.ContainsRune(src[a:b], '\n')
}

func insertSpace(title string, at tree.Node, p diag.Placement) *diag.Fix {
	return &diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		IsPreferred:   true,
		Steps: []diag.FixStep{{
			Target:     at.Ref(),
			Placement:  p,
			Category:   tree.CategoryTrivia,
			Synthesize: diag.Literal(" "),
		}},
	}
}

func deleteSpace(title string, ws tree.Node) *diag.Fix {
	return diag.DeleteNode(title, ws).
		WithApplicability(diag.FixApplicabilityAlwaysSafe).
		Preferred()
}

// brace-spacing: a space before '{', none inside parentheses.
type braceSpacing struct{ base }

func newBraceSpacing() *braceSpacing {
	return &braceSpacing{base{
		id:       "brace-spacing",
		code:     diag.PosBraceSpacing,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindPunct},
		severity: diag.SevWarning,
	}}
}

func (r *braceSpacing) Check(ctx *Context, tok tree.Node) error {
	switch tok.Text() {
	case "{":
		switch tok.Parent().Grammar() {
		case "array_initializer", "element_value_array_initializer":
			return nil
		}
		prev := tok.PrevLeaf()
		if prev.IsNil() || prev.Kind().IsTrivia() || isPunct(prev, "(") || isPunct(prev, "{") {
			return nil
		}
		ctx.Report(r.code, tok, "missing space before '{'").
			WithFix(insertSpace("insert a space", tok, diag.PlaceBefore)).
			Emit()
	case "(":
		next := tok.NextLeaf()
		if !isWhitespace(next) || strings.Contains(next.Text(), "\n") {
			return nil
		}
		ctx.Report(r.code, next, "space after '('").
			WithFix(deleteSpace("remove the space", next)).
			Emit()
	case ")":
		prev := tok.PrevLeaf()
		if !isWhitespace(prev) || strings.Contains(prev.Text(), "\n") {
			return nil
		}
		// "( )" is already reported at '('
		if isPunct(prev.PrevLeaf(), "(") || isPunct(nextCode(tok), "}") {
			return nil
		}
		ctx.Report(r.code, prev, "space before ')'").
			WithFix(deleteSpace("remove the space", prev)).
			Emit()
	}
	return nil
}

// brace-style: K&R braces, and "{}" for empty blocks.
type braceStyle struct{ base }

func newBraceStyle() *braceStyle {
	return &braceStyle{base{
		id:       "brace-style",
		code:     diag.PosBraceStyle,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindCodeBlock},
		severity: diag.SevWarning,
	}}
}

// continuesAfterBrace lists what may follow a closing brace on the same line.
var continuesAfterBrace = []string{"else", "catch", "finally", "while", ")", ",", ";", "."}

func (r *braceStyle) Check(ctx *Context, block tree.Node) error {
	kids := block.Children()
	if len(kids) < 2 {
		return nil
	}
	lbrace, rbrace := kids[0], kids[len(kids)-1]
	if !isPunct(lbrace, "{") || !isPunct(rbrace, "}") {
		return nil
	}
	src := ctx.Source()

	if len(block.Significant()) == 2 {
		if block.Text() == "{}" {
			return nil
		}
		b := ctx.Report(r.code, block, "empty block should be written as {}")
		if block.ChildOfKind(tree.KindComment).IsNil() {
			b.WithFix(diag.ReplaceNode("collapse to {}", block, tree.CategoryCodeBlock, diag.Literal("{}")).
				WithApplicability(diag.FixApplicabilityAlwaysSafe).
				Preferred())
		}
		b.Emit()
		return nil
	}

	if newlineBefore(src, lbrace.Start()) {
		ctx.Report(r.code, lbrace, "'{' should stay on the line of its statement").Emit()
	}
	if !newlineAfter(src, lbrace.End()) {
		ctx.Report(r.code, lbrace, "line break expected after '{'").Emit()
	}
	if !newlineBefore(src, rbrace.Start()) {
		ctx.Report(r.code, rbrace, "line break expected before '}'").Emit()
	}

	next := nextCode(rbrace)
	switch {
	case next.IsNil():
	case next.Kind() == tree.KindKeyword && next.Text() == "else":
		if newlineBefore(src, next.Start()) {
			ctx.Report(r.code, next, "'else' should follow '}' on the same line").Emit()
		}
	case sameLine(src, rbrace.End(), next.Start()) && !slices.Contains(continuesAfterBrace, next.Text()):
		ctx.Report(r.code, rbrace, "line break expected after a closing '}'").Emit()
	}
	return nil
}

// comment-spacing: exactly one space after "//".
type commentSpacing struct{ base }

func newCommentSpacing() *commentSpacing {
	return &commentSpacing{base{
		id:       "comment-spacing",
		code:     diag.PosCommentSpacing,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindComment},
		severity: diag.SevWarning,
	}}
}

func (r *commentSpacing) Check(ctx *Context, c tree.Node) error {
	text := c.Text()
	body, ok := strings.CutPrefix(text, "//")
	if !ok || body == "" {
		return nil
	}
	if body[0] == ' ' && !strings.HasPrefix(body, "  ") {
		return nil
	}
	fixed := "// " + strings.TrimLeft(body, " \t")
	ctx.Report(r.code, c, "exactly one space expected after '//'").
		WithFix(diag.ReplaceNode("normalise the comment", c, tree.CategoryComment, diag.Literal(fixed)).
			WithApplicability(diag.FixApplicabilityAlwaysSafe).
			Preferred()).
		Emit()
	return nil
}

// indentation-tab: whitespace never contains tab characters.
type indentationTab struct{ base }

func newIndentationTab() *indentationTab {
	return &indentationTab{base{
		id:       "indentation-tab",
		code:     diag.PosTabIndent,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindWhitespace},
		severity: diag.SevError,
		options: []config.OptionSpec{
			{Name: "tabWidth", Kind: config.OptionInt, Default: 4, Doc: "spaces per tab", Check: config.Positive},
		},
	}}
}

func (r *indentationTab) Check(ctx *Context, ws tree.Node) error {
	text := ws.Text()
	if !strings.Contains(text, "\t") {
		return nil
	}
	spaces := strings.ReplaceAll(text, "\t", strings.Repeat(" ", ctx.Options.Int("tabWidth")))
	ctx.Report(r.code, ws, "tab character in whitespace").
		WithFix(diag.ReplaceNode("expand tabs", ws, tree.CategoryTrivia, diag.Literal(spaces)).
			WithApplicability(diag.FixApplicabilityAlwaysSafe).
			Preferred()).
		Emit()
	return nil
}

// line-length: logical line width and where continuation lines break.
type lineLength struct{ base }

func newLineLength() *lineLength {
	return &lineLength{base{
		id:       "line-length",
		code:     diag.PosLineTooLong,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindFile},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{Name: "max", Kind: config.OptionInt, Default: 120, Doc: "maximum characters per line", Check: config.Positive},
		},
	}}
}

// lineEndOperators are checked longest first so ">>>=" is not taken for "=".
var lineEndOperators = []string{
	">>>=", "<<=", ">>=", ">>>",
	"+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=", "<<", ">>", "&&", "||",
	"+", "-", "*", "/", "%", "|", "^", "!", "~", "=", "&",
}

// operatorAtEnd returns the operator a code line ends with.
// "++" and "--" are postfix operators, not a break point.
func operatorAtEnd(line string) string {
	if strings.HasSuffix(line, "++") || strings.HasSuffix(line, "--") {
		return ""
	}
	for _, op := range lineEndOperators {
		if strings.HasSuffix(line, op) {
			return op
		}
	}
	return ""
}

// codeOnly returns src with comment bytes blanked, line breaks kept. With
// literals set the bodies of string literals and text blocks are blanked too,
// their quotes stay.
func codeOnly(root tree.Node, literals bool) []byte {
	out := bytes.Clone(root.Tree().Source())
	blank := func(from, to uint32) {
		for i := from; i < to; i++ {
			if out[i] != '\n' && out[i] != '\r' {
				out[i] = ' '
			}
		}
	}
	for _, c := range root.Find(tree.KindComment) {
		blank(c.Start(), c.End())
	}
	if !literals {
		return out
	}
	for _, lit := range root.Find(tree.KindLiteral) {
		if g := lit.Grammar(); g != "string_literal" && g != "text_block" {
			continue
		}
		quote := uint32(1)
		if bytes.HasPrefix(out[lit.Start():lit.End()], []byte(`"""`)) {
			quote = 3
		}
		if lit.End()-lit.Start() >= 2*quote {
			blank(lit.Start()+quote, lit.End()-quote)
		}
	}
	return out
}

func (r *lineLength) Check(ctx *Context, root tree.Node) error {
	limit := ctx.Options.Int("max")
	masked := codeOnly(root, false)
	// форма строки считается без содержимого строковых литералов
	shapes := bytes.SplitAfter(codeOnly(root, true), []byte("\n"))
	file := ctx.Tree.File()
	var start uint32
	for i, raw := range bytes.SplitAfter(masked, []byte("\n")) {
		body := bytes.TrimRight(raw, "\r\n")
		// #nosec G115 -- bounded by the source size
		span := source.Span{File: file, Start: start, End: start + uint32(len(body))}
		start += uint32(len(raw)) // #nosec G115
		report := func(code diag.Code, msg string) {
			ctx.ReportAt(code, root, span, msg).Emit()
		}
		if n := utf8.RuneCountInString(strings.TrimSpace(string(body))); n > limit {
			report(diag.PosLineTooLong, fmt.Sprintf("line has %d characters, limit is %d", n, limit))
		}
		line := strings.TrimSpace(string(shapes[i]))
		if line == "" {
			continue
		}
		if op := operatorAtEnd(line); op != "" {
			report(diag.PosOperatorAtLineEnd, fmt.Sprintf("line breaks after operator %q, move it to the next line", op))
		}
		if strings.HasSuffix(line, ".") {
			report(diag.PosDotAtLineEnd, "line breaks after '.', move it to the next line")
		}
		if strings.HasPrefix(line, ",") {
			report(diag.PosLeadingComma, "line starts with ',', break after the comma instead")
		}
		if strings.HasPrefix(line, "(") || strings.HasPrefix(line, ")") {
			report(diag.PosLeadingParen, "line starts with a parenthesis, do not break before it")
		}
	}
	return nil
}

// cast-spacing: no space between a cast and its operand.
type castSpacing struct{ base }

func newCastSpacing() *castSpacing {
	return &castSpacing{base{
		id:       "cast-spacing",
		code:     diag.PosCastSpacing,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindCastExpr},
		severity: diag.SevWarning,
	}}
}

func (r *castSpacing) Check(ctx *Context, cast tree.Node) error {
	ws := cast.ChildByField("value").PrevSibling()
	if !isWhitespace(ws) || !isPunct(ws.PrevSibling(), ")") {
		return nil
	}
	ctx.Report(r.code, ws, "space between a cast and its operand").
		WithFix(deleteSpace("remove the space", ws)).
		Emit()
	return nil
}

// operator-spacing: one space on each side of binary, assignment and ternary operators.
type operatorSpacing struct{ base }

func newOperatorSpacing() *operatorSpacing {
	return &operatorSpacing{base{
		id:       "operator-spacing",
		code:     diag.PosOperatorSpacing,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindBinaryExpr, tree.KindAssignExpr, tree.KindConditionalExpr},
		severity: diag.SevWarning,
	}}
}

func (r *operatorSpacing) Check(ctx *Context, expr tree.Node) error {
	var ops []tree.Node
	if expr.Kind() == tree.KindConditionalExpr {
		for _, c := range expr.Children() {
			if c.Kind() == tree.KindOperator && (c.Text() == "?" || c.Text() == ":") {
				ops = append(ops, c)
			}
		}
	} else if op := expr.ChildByField("operator"); !op.IsNil() {
		ops = append(ops, op)
	}
	for _, op := range ops {
		r.checkOperator(ctx, op)
	}
	return nil
}

// sideStep returns the step that puts exactly one space between op and
// its neighbour, or false when that side is already fine.
func sideStep(op, neighbour tree.Node, p diag.Placement) (diag.FixStep, bool) {
	switch {
	case neighbour.Kind() == tree.KindComment:
		return diag.FixStep{}, false
	case isWhitespace(neighbour):
		text := neighbour.Text()
		if text == " " || strings.Contains(text, "\n") {
			return diag.FixStep{}, false
		}
		return diag.FixStep{Target: neighbour.Ref(), Placement: diag.PlaceReplace, Category: tree.CategoryTrivia, Synthesize: diag.Literal(" ")}, true
	}
	return diag.FixStep{Target: op.Ref(), Placement: p, Category: tree.CategoryTrivia, Synthesize: diag.Literal(" ")}, true
}

func (r *operatorSpacing) checkOperator(ctx *Context, op tree.Node) {
	var steps []diag.FixStep
	if s, bad := sideStep(op, op.PrevSibling(), diag.PlaceBefore); bad {
		steps = append(steps, s)
	}
	if s, bad := sideStep(op, op.NextSibling(), diag.PlaceAfter); bad {
		steps = append(steps, s)
	}
	if len(steps) == 0 {
		return
	}
	ctx.Report(r.code, op, fmt.Sprintf("exactly one space expected around %q", op.Text())).
		WithFix(&diag.Fix{
			Title:         "normalise spacing",
			Kind:          diag.FixKindQuickFix,
			Applicability: diag.FixApplicabilityAlwaysSafe,
			IsPreferred:   true,
			Steps:         steps,
		}).
		Emit()
}

// reserved-word-spacing: control keywords are followed by a space.
type reservedWordSpacing struct{ base }

func newReservedWordSpacing() *reservedWordSpacing {
	return &reservedWordSpacing{base{
		id:       "reserved-word-spacing",
		code:     diag.PosReservedWordSpace,
		family:   FamilyPositional,
		kinds:    []tree.Kind{tree.KindKeyword},
		severity: diag.SevWarning,
		options: []config.OptionSpec{
			{
				Name:    "words",
				Kind:    config.OptionStringSet,
				Default: []string{"if", "for", "while", "do", "switch", "catch", "synchronized"},
				Doc:     "keywords that need a space after them",
			},
		},
	}}
}

func (r *reservedWordSpacing) Check(ctx *Context, kw tree.Node) error {
	if !ctx.Options.Contains("words", kw.Text()) {
		return nil
	}
	next := kw.NextLeaf()
	if next.IsNil() || next.Kind().IsTrivia() || isPunct(next, ";") {
		return nil
	}
	ctx.Report(r.code, kw, fmt.Sprintf("space expected after %q", kw.Text())).
		WithFix(insertSpace("insert a space", kw, diag.PlaceAfter)).
		Emit()
	return nil
}
