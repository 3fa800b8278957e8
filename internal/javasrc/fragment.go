package javasrc

import (
	"errors"
	"fmt"
	"strings"

	"jstyle/internal/convention"
	"jstyle/internal/tree"
)

// ErrFragment is wrapped by every fragment rejection.
var ErrFragment = errors.New("fragment rejected")

type template struct {
	prefix string
	suffix string
}

const (
	fragmentClass  = "__Fragment__"
	fragmentMethod = "__fragment__"
)

var templates = map[tree.Category]template{
	tree.CategoryIdentifier:   {"class " + fragmentClass + " { Object " + fragmentMethod + " = ", "; }"},
	tree.CategoryExpression:   {"class " + fragmentClass + " { Object " + fragmentMethod + " = ", "; }"},
	tree.CategoryStatement:    {"class " + fragmentClass + " { void " + fragmentMethod + "() {\n", "\n} }"},
	tree.CategoryField:        {"class " + fragmentClass + " {\n", "\n}"},
	tree.CategoryMember:       {"class " + fragmentClass + " {\n", "\n}"},
	tree.CategoryComment:      {"class " + fragmentClass + " {\n", "\n}"},
	tree.CategoryTypeDecl:     {"", "\n"},
	tree.CategoryPackage:      {"", "\n"},
	tree.CategoryEnumConstant: {"enum " + fragmentClass + " {\n", "\n}"},
	tree.CategoryParameter:    {"class " + fragmentClass + " { void " + fragmentMethod + "(", ") {} }"},
	tree.CategoryCodeBlock:    {"class " + fragmentClass + " { void " + fragmentMethod + "() ", " }"},
}

// ParseFragment parses text as a standalone fragment of category cat.
// The fragment must parse without errors and some node must span exactly
// the text (surrounding whitespace excluded) with a category cat accepts.
func (p *Parser) ParseFragment(text string, cat tree.Category) (*tree.Fragment, error) {
	if cat == tree.CategoryTrivia {
		return parseTrivia(text)
	}
	tpl, ok := templates[cat]
	if !ok {
		return nil, fmt.Errorf("%w: no template for category %s", ErrFragment, cat)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrFragment, cat)
	}

	// грамматика принимает ключевые слова как идентификаторы
	if cat == tree.CategoryIdentifier && convention.IsReserved(trimmed) {
		return nil, fmt.Errorf("%w: %q is a reserved word", ErrFragment, trimmed)
	}

	doc := tpl.prefix + text + tpl.suffix
	t, err := p.Parse(0, "<fragment>", []byte(doc))
	if err != nil {
		return nil, err
	}
	if t.ErrorCount() > 0 {
		return nil, fmt.Errorf("%w: %q does not parse as %s", ErrFragment, text, cat)
	}

	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n\f"))
	start := uint32(len(tpl.prefix) + lead) // #nosec G115 -- fragments are small
	end := start + uint32(len(trimmed))     // #nosec G115
	for _, n := range t.Spanning(start, end) {
		if cat.Accepts(tree.CategoryOf(n)) {
			return &tree.Fragment{
				Tree:     t,
				Root:     n,
				Offset:   uint32(len(tpl.prefix)), // #nosec G115
				Category: cat,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a single %s", ErrFragment, text, cat)
}

func parseTrivia(text string) (*tree.Fragment, error) {
	if strings.TrimLeft(text, " \t\r\n\f") != "" {
		return nil, fmt.Errorf("%w: %q is not whitespace", ErrFragment, text)
	}
	b := tree.NewBuilder([]byte(text), 2)
	root := b.Add(0, tree.NodeData{Kind: tree.KindFile, Grammar: "program", Named: true})
	if text != "" {
		b.Add(root, tree.NodeData{Kind: tree.KindWhitespace, Start: 0, End: uint32(len(text))}) // #nosec G115
	}
	t, err := b.Finish(0, "<fragment>", root)
	if err != nil {
		return nil, err
	}
	n := t.Root()
	if text != "" {
		n = n.Child(0)
	}
	return &tree.Fragment{Tree: t, Root: n, Category: tree.CategoryTrivia}, nil
}
