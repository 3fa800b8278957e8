// Package javasrc adapts the tree-sitter Java grammar to tree snapshots.
package javasrc

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// ErrNoTree is returned when the grammar produced no tree at all.
var ErrNoTree = errors.New("parser produced no tree")

// Parser turns Java source into tree snapshots. It is safe for concurrent use:
// each call gets its own tree-sitter parser.
type Parser struct {
	lang *tree_sitter.Language
}

// NewParser creates a parser bound to the compiled-in Java grammar.
func NewParser() *Parser {
	return &Parser{lang: tree_sitter.NewLanguage(ts_java.Language())}
}

// Parse builds a snapshot of src. Syntax errors do not fail the parse,
// they show up as Error nodes and in ErrorCount.
func (p *Parser) Parse(file source.FileID, path string, src []byte) (*tree.Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	ts := parser.Parse(src, nil)
	if ts == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTree)
	}
	defer ts.Close()

	root := ts.RootNode()
	b := tree.NewBuilder(src, estimateNodes(len(src)))
	cursor := root.Walk()
	defer cursor.Close()

	size, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rootID, _, err := convert(b, cursor, 0, "", 0, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := b.Finish(file, path, rootID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// convert copies the cursor's current node and its subtree into b.
// Ranges are clamped into [lo, hi) so error recovery output stays well nested.
func convert(b *tree.Builder, cursor *tree_sitter.TreeCursor, parent tree.NodeID, field string, lo, hi uint32) (tree.NodeID, uint32, error) {
	n := cursor.Node()
	start, err := safecast.Conv[uint32](n.StartByte())
	if err != nil {
		return 0, 0, fmt.Errorf("start offset: %w", err)
	}
	end, err := safecast.Conv[uint32](n.EndByte())
	if err != nil {
		return 0, 0, fmt.Errorf("end offset: %w", err)
	}
	start = min(max(start, lo), hi)
	end = min(max(end, start), hi)
	grammar := n.Kind()
	named := n.IsNamed()
	kind := kindOf(grammar, named)
	if n.IsError() {
		kind = tree.KindError
	}
	id := b.Add(parent, tree.NodeData{
		Kind:    kind,
		Grammar: grammar,
		Field:   field,
		Named:   named,
		Missing: n.IsMissing(),
		Start:   start,
		End:     end,
	})
	if flattened(kind) || !cursor.GotoFirstChild() {
		return id, end, nil
	}
	next := start
	for {
		_, childEnd, err := convert(b, cursor, id, cursor.FieldName(), next, end)
		if err != nil {
			return 0, 0, err
		}
		next = childEnd
		if !cursor.GotoNextSibling() {
			break
		}
	}
	cursor.GotoParent()
	return id, end, nil
}

// примерно один узел на 4 байта исходника, с учётом пробельных листьев
func estimateNodes(size int) uint {
	n, err := safecast.Conv[uint](size / 4)
	if err != nil {
		return 0
	}
	return n + 16
}
