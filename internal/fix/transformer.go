// Package fix applies diagnostic fixes to tree snapshots.
//
// A fix never edits a tree. Every step is resolved against the live
// snapshot, its text is synthesized and parsed as a standalone fragment of
// the step's category, and only when every step passes are the edits
// spliced into a new buffer, reparsed and committed as a new file version.
package fix

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// Provider is the parser the transformer reparses with.
type Provider interface {
	Parse(file source.FileID, path string, src []byte) (*tree.Tree, error)
	ParseFragment(text string, cat tree.Category) (*tree.Fragment, error)
}

// Edit is one resolved text change of a fix.
type Edit struct {
	Span    source.Span
	NewText string
	OldText string
	step    int
	check   tree.Category
}

// Outcome is the result of a successfully applied fix.
type Outcome struct {
	FixID string
	File  source.FileID
	Tree  *tree.Tree
	Edits []Edit
}

// Transformer applies fixes. Callers serialize Apply per file; the
// transformer itself keeps no per-file state.
type Transformer struct {
	files    *source.FileSet
	provider Provider
}

func NewTransformer(files *source.FileSet, provider Provider) *Transformer {
	return &Transformer{files: files, provider: provider}
}

// Apply applies f to snap and returns the new snapshot. On any error the
// file set is unchanged and snap stays valid.
func (t *Transformer) Apply(ctx context.Context, snap *tree.Tree, f *diag.Fix) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil || len(f.Steps) == 0 {
		return nil, &Error{Op: "resolve", Err: ErrEmptyFix}
	}
	edits, err := t.resolve(snap, f)
	if err != nil {
		return nil, err
	}
	if err := checkOverlap(edits); err != nil {
		return nil, &Error{FixID: f.ID, Op: "splice", Err: err}
	}
	buf := splice(snap.Source(), edits)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// проверочный разбор до фиксации версии
	reparsed, err := t.provider.Parse(snap.File(), snap.Path(), buf)
	if err != nil {
		return nil, &Error{FixID: f.ID, Op: "reparse", Err: err}
	}
	if reparsed.ErrorCount() > snap.ErrorCount() {
		return nil, &Error{FixID: f.ID, Op: "reparse", Err: fmt.Errorf("%w: %d > %d", ErrSyntax, reparsed.ErrorCount(), snap.ErrorCount())}
	}
	if err := checkCategories(reparsed, edits); err != nil {
		return nil, &Error{FixID: f.ID, Op: "reparse", Err: err}
	}

	// версия фиксируется последней, после неё ошибок уже нет
	id, err := t.files.Commit(snap.File(), buf)
	if err != nil {
		return nil, &Error{FixID: f.ID, Op: "commit", Err: err}
	}
	return &Outcome{FixID: f.ID, File: id, Tree: reparsed.Rebind(id), Edits: edits}, nil
}

// resolve turns every step into a text edit of snap.
func (t *Transformer) resolve(snap *tree.Tree, f *diag.Fix) ([]Edit, error) {
	edits := make([]Edit, 0, len(f.Steps))
	for i, step := range f.Steps {
		n, err := snap.Resolve(step.Target)
		if err != nil {
			return nil, err
		}
		if step.Placement == diag.PlaceDelete {
			start, end := deletionRange(n)
			edits = append(edits, Edit{
				Span:    source.Span{File: snap.File(), Start: start, End: end},
				OldText: string(snap.Source()[start:end]),
				step:    i,
			})
			continue
		}

		cat := step.Category
		if cat == tree.CategoryNone {
			cat = tree.CategoryOf(n)
		}
		if step.Placement == diag.PlaceReplace && !cat.Accepts(tree.CategoryOf(n)) {
			return nil, &Error{FixID: f.ID, Op: "resolve",
				Err: fmt.Errorf("%w: step %d targets %s, expects %s", ErrCategory, i, tree.CategoryOf(n), cat)}
		}
		if step.Synthesize == nil {
			return nil, &Error{FixID: f.ID, Op: "synthesize", Err: fmt.Errorf("step %d has no synthesizer", i)}
		}
		text, err := step.Synthesize(n)
		if err != nil {
			return nil, &Error{FixID: f.ID, Op: "synthesize", Err: err}
		}
		if _, err := t.provider.ParseFragment(text, cat); err != nil {
			return nil, &ParseFragmentError{Step: i, Category: cat, Text: text, Err: err}
		}

		e := Edit{NewText: text, step: i, check: cat}
		switch step.Placement {
		case diag.PlaceReplace:
			e.Span = n.Span()
			e.OldText = n.Text()
		case diag.PlaceBefore:
			e.Span = source.Span{File: snap.File(), Start: n.Start(), End: n.Start()}
		case diag.PlaceAfter:
			e.Span = source.Span{File: snap.File(), Start: n.End(), End: n.End()}
		default:
			return nil, &Error{FixID: f.ID, Op: "resolve", Err: fmt.Errorf("step %d: unknown placement %s", i, step.Placement)}
		}
		edits = append(edits, e)
	}
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		return edits[i].Span.End < edits[j].Span.End
	})
	return edits, nil
}

// deletionRange widens the range of a deleted member to its whole lines,
// together with a doc comment right above it.
func deletionRange(n tree.Node) (uint32, uint32) {
	start, end := n.Start(), n.End()
	switch n.Kind() {
	case tree.KindField, tree.KindMethod, tree.KindConstructor, tree.KindClass,
		tree.KindInterface, tree.KindEnum, tree.KindRecord, tree.KindAnnotationType:
	default:
		return start, end
	}
	src := n.Tree().Source()
	if prev := n.PrevSibling(); prev.Kind() == tree.KindWhitespace && strings.Count(prev.Text(), "\n") == 1 {
		if doc := prev.PrevSibling(); doc.Kind() == tree.KindComment && strings.HasPrefix(doc.Text(), "/**") {
			start = doc.Start()
		}
	}
	ls := start
	for ls > 0 && (src[ls-1] == ' ' || src[ls-1] == '\t') {
		ls--
	}
	if ls > 0 && src[ls-1] != '\n' {
		return start, end
	}
	le := end
	for int(le) < len(src) && (src[le] == ' ' || src[le] == '\t' || src[le] == '\r') {
		le++
	}
	if int(le) < len(src) && src[le] != '\n' {
		return start, end
	}
	if int(le) < len(src) {
		le++
	}
	return ls, le
}

func checkOverlap(edits []Edit) error {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if spansConflict(edits[i].Span, edits[j].Span) {
				return fmt.Errorf("%w: steps %d and %d", ErrOverlap, edits[i].step, edits[j].step)
			}
		}
	}
	return nil
}

// spansConflict reports whether two edit spans overlap.
// Spans are half-open; two insertions never conflict, an insertion conflicts
// with a span strictly containing its position.
func spansConflict(a, b source.Span) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start < a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// splice applies sorted, disjoint edits to src.
func splice(src []byte, edits []Edit) []byte {
	var b strings.Builder
	b.Grow(len(src))
	cursor := uint32(0)
	for _, e := range edits {
		b.Write(src[cursor:e.Span.Start])
		b.WriteString(e.NewText)
		cursor = e.Span.End
	}
	b.Write(src[cursor:])
	return []byte(b.String())
}

// checkCategories verifies that every replaced or inserted fragment is still
// covered by a node of its category in the reparsed file.
func checkCategories(next *tree.Tree, edits []Edit) error {
	delta := 0
	for _, e := range edits {
		start := int(e.Span.Start) + delta
		delta += len(e.NewText) - int(e.Span.End-e.Span.Start)
		if e.check == tree.CategoryNone || e.check == tree.CategoryTrivia {
			continue
		}
		trimmed := strings.TrimSpace(e.NewText)
		lead := len(e.NewText) - len(strings.TrimLeft(e.NewText, " \t\r\n\f"))
		from := uint32(start + lead)      // #nosec G115 -- bounded by the edited buffer
		to := from + uint32(len(trimmed)) // #nosec G115
		found := false
		for _, n := range next.Spanning(from, to) {
			if e.check.Accepts(tree.CategoryOf(n)) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: step %d no longer parses as %s", ErrCategory, e.step, e.check)
		}
	}
	return nil
}
