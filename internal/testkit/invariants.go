package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// CheckTreeInvariants runs the structural invariants every snapshot must hold:
// 1) exactly one root of kind File spanning the whole document
// 2) children are ordered, disjoint and contained in their parent
// 3) every child points back at its parent
// 4) leaf texts concatenate to the document text
func CheckTreeInvariants(t *tree.Tree) error {
	if t == nil {
		return fmt.Errorf("nil tree")
	}
	root := t.Root()
	if root.Kind() != tree.KindFile {
		return fmt.Errorf("root kind is %s, want File", root.Kind())
	}
	if !root.Parent().IsNil() {
		return fmt.Errorf("root has a parent")
	}
	size, err := safecast.Conv[uint32](len(t.Source()))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Start() != 0 || root.End() != size {
		return fmt.Errorf("root span %v does not cover document of %d bytes", root.Span(), size)
	}

	var (
		leaves  strings.Builder
		walkErr error
	)
	t.Walk(func(n tree.Node) bool {
		if walkErr != nil {
			return false
		}
		if n.End() < n.Start() {
			walkErr = fmt.Errorf("inverted span on %s", n)
			return false
		}
		cursor := n.Start()
		for _, c := range n.Children() {
			if c.Parent().ID() != n.ID() {
				walkErr = fmt.Errorf("%s does not point back to parent %s", c, n)
				return false
			}
			if c.Start() < cursor {
				walkErr = fmt.Errorf("%s overlaps previous sibling in %s", c, n)
				return false
			}
			if c.End() > n.End() {
				walkErr = fmt.Errorf("%s escapes parent %s", c, n)
				return false
			}
			if c.Start() != cursor {
				walkErr = fmt.Errorf("gap before %s in %s", c, n)
				return false
			}
			cursor = c.End()
		}
		if n.ChildCount() > 0 && cursor != n.End() {
			walkErr = fmt.Errorf("gap at end of %s", n)
			return false
		}
		if n.IsLeaf() {
			leaves.WriteString(n.Text())
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	if leaves.String() != string(t.Source()) {
		return fmt.Errorf("leaf texts do not reproduce the document")
	}
	return nil
}

// CheckSpanInFile reports a span that escapes its file version.
func CheckSpanInFile(sp source.Span, f *source.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	if sp.File != f.ID {
		return fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, f.ID)
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End < sp.Start || sp.End > size {
		return fmt.Errorf("span %v outside file of %d bytes", sp, size)
	}
	return nil
}
