package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"jstyle/internal/convention"
	"jstyle/internal/tree"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v'
}

// newlineBefore scans back from off over blanks and reports whether a
// newline comes before any other character.
func newlineBefore(src []byte, off uint32) bool {
	for i := int(off) - 1; i >= 0; i-- {
		switch {
		case src[i] == '\n':
			return true
		case !isSpace(src[i]):
			return false
		}
	}
	return false
}

// newlineAfter scans forward from off over blanks.
func newlineAfter(src []byte, off uint32) bool {
	for i := int(off); i < len(src); i++ {
		switch {
		case src[i] == '\n':
			return true
		case !isSpace(src[i]):
			return false
		}
	}
	return false
}

// lineIndent returns the leading blanks of the line containing off.
func lineIndent(src []byte, off uint32) string {
	start := int(off)
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// spliceText replaces the part of n's text covered by sub with repl.
func spliceText(n, sub tree.Node, repl string) string {
	text := n.Text()
	from := sub.Start() - n.Start()
	to := sub.End() - n.Start()
	return text[:from] + repl + text[to:]
}

// isDeclName reports whether ident is the name of a declaration.
func isDeclName(ident tree.Node) bool {
	if ident.Kind() != tree.KindIdentifier || ident.Field() != "name" {
		return false
	}
	switch p := ident.Parent(); p.Kind() {
	case tree.KindClass, tree.KindInterface, tree.KindEnum, tree.KindRecord, tree.KindAnnotationType,
		tree.KindMethod, tree.KindConstructor, tree.KindVariableDeclarator, tree.KindParameter,
		tree.KindEnumConstant:
		return true
	}
	return false
}

// validIdentifier accepts names a rename may produce.
func validIdentifier(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || convention.IsReserved(name) || !(unicode.IsLetter(r) || r == '_' || r == '$') {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$')
	})
}

// isPunct reports whether n is the punctuation token text.
func isPunct(n tree.Node, text string) bool {
	return n.Kind() == tree.KindPunct && n.Text() == text
}

// nextCode returns the next leaf that is neither whitespace nor a comment.
func nextCode(n tree.Node) tree.Node {
	cur := n.NextLeaf()
	for !cur.IsNil() && cur.Kind().IsTrivia() {
		cur = cur.NextLeaf()
	}
	return cur
}
