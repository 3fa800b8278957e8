package fix

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jstyle/internal/diag"
	"jstyle/internal/javasrc"
	"jstyle/internal/source"
	"jstyle/internal/testkit"
	"jstyle/internal/tree"
)

type fixture struct {
	fs   *source.FileSet
	tr   *Transformer
	snap *tree.Tree
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("A.java", []byte(src))
	p := javasrc.NewParser()
	snap, err := p.Parse(id, "A.java", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &fixture{fs: fs, tr: NewTransformer(fs, p), snap: snap}
}

// find returns the first node of kind with the given text.
func find(t *testing.T, snap *tree.Tree, kind tree.Kind, text string) tree.Node {
	t.Helper()
	for _, n := range snap.Root().Find(kind) {
		if n.Text() == text {
			return n
		}
	}
	t.Fatalf("no %s %q in %q", kind, text, snap.Source())
	return tree.Node{}
}

func TestApplyRenameCommitsNewVersion(t *testing.T) {
	f := newFixture(t, "class A { int x_ = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x_")

	out, err := f.tr.Apply(context.Background(), f.snap, diag.RenameIdentifier("rename", ident, "x"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := string(out.Tree.Source()); got != "class A { int x = 1; }" {
		t.Fatalf("unexpected text %q", got)
	}
	if err := testkit.CheckTreeInvariants(out.Tree); err != nil {
		t.Fatal(err)
	}
	if out.Tree.Gen() == f.snap.Gen() {
		t.Fatalf("new snapshot reuses generation %d", f.snap.Gen())
	}
	if !f.fs.IsLatest(out.File) || f.fs.IsLatest(f.snap.File()) {
		t.Fatalf("commit did not move the latest version")
	}
	if out.Tree.File() != out.File {
		t.Fatalf("snapshot bound to %d, committed %d", out.Tree.File(), out.File)
	}
}

func TestApplyRejectsStaleRef(t *testing.T) {
	f := newFixture(t, "class A { int x_ = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x_")
	fix := diag.RenameIdentifier("rename", ident, "x")

	out, err := f.tr.Apply(context.Background(), f.snap, fix)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	_, err = f.tr.Apply(context.Background(), out.Tree, fix)
	var stale *tree.StaleSnapshotError
	if !errors.As(err, &stale) {
		t.Fatalf("expected StaleSnapshotError, got %v", err)
	}
	if !IsStale(err) {
		t.Fatalf("IsStale(%v) = false", err)
	}
}

func TestApplyRejectsBadFragment(t *testing.T) {
	f := newFixture(t, "class A { int x_ = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x_")
	versions := f.fs.Len()

	_, err := f.tr.Apply(context.Background(), f.snap, diag.RenameIdentifier("rename", ident, "1x"))
	var pfe *ParseFragmentError
	if !errors.As(err, &pfe) {
		t.Fatalf("expected ParseFragmentError, got %v", err)
	}
	if pfe.Category != tree.CategoryIdentifier || pfe.Text != "1x" {
		t.Fatalf("unexpected error details: %+v", pfe)
	}
	if f.fs.Len() != versions {
		t.Fatalf("file set changed on a rejected fix")
	}
}

func TestApplyRejectsCategoryChange(t *testing.T) {
	f := newFixture(t, "class A { int x = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x")

	fix := diag.ReplaceNode("bad", ident, tree.CategoryStatement, diag.Literal("return;"))
	_, err := f.tr.Apply(context.Background(), f.snap, fix)
	var fe *Error
	if !errors.As(err, &fe) || !errors.Is(err, ErrCategory) {
		t.Fatalf("expected category error, got %v", err)
	}
}

func TestApplyRejectsOverlappingSteps(t *testing.T) {
	f := newFixture(t, "class A { int x = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x")

	fix := diag.RenameIdentifier("a", ident, "y").Then(diag.FixStep{
		Target:     ident.Ref(),
		Placement:  diag.PlaceReplace,
		Category:   tree.CategoryIdentifier,
		Synthesize: diag.Literal("z"),
	})
	_, err := f.tr.Apply(context.Background(), f.snap, fix)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
}

// flakyProvider parses fragments normally and fails whole-file parses once
// budget is spent.
type flakyProvider struct {
	*javasrc.Parser
	budget int
	calls  int
}

func (p *flakyProvider) Parse(file source.FileID, path string, src []byte) (*tree.Tree, error) {
	p.calls++
	if p.calls > p.budget {
		return nil, errors.New("parser gone")
	}
	return p.Parser.Parse(file, path, src)
}

func TestApplyCommitsOnlyAfterReparse(t *testing.T) {
	f := newFixture(t, "class A { int x_ = 1; }")
	ident := find(t, f.snap, tree.KindIdentifier, "x_")
	fix := diag.RenameIdentifier("rename", ident, "x")

	failing := &flakyProvider{Parser: javasrc.NewParser()}
	versions := f.fs.Len()
	if _, err := NewTransformer(f.fs, failing).Apply(context.Background(), f.snap, fix); err == nil {
		t.Fatal("expected reparse error")
	}
	if f.fs.Len() != versions || !f.fs.IsLatest(f.snap.File()) {
		t.Fatalf("failed reparse left a new version: %d -> %d", versions, f.fs.Len())
	}

	once := &flakyProvider{Parser: javasrc.NewParser(), budget: 1}
	out, err := NewTransformer(f.fs, once).Apply(context.Background(), f.snap, fix)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if once.calls != 1 {
		t.Fatalf("file parsed %d times", once.calls)
	}
	if out.Tree.File() != out.File || !f.fs.IsLatest(out.File) {
		t.Fatalf("snapshot bound to %d, committed %d", out.Tree.File(), out.File)
	}
	if err := testkit.CheckTreeInvariants(out.Tree); err != nil {
		t.Fatal(err)
	}
}

func TestApplyRejectsNewSyntaxErrors(t *testing.T) {
	f := newFixture(t, "class A { void f() { int a = 1; } }")
	semi := tree.Node{}
	for _, n := range f.snap.Root().Find(tree.KindPunct) {
		if n.Text() == ";" {
			semi = n
			break
		}
	}
	_, err := f.tr.Apply(context.Background(), f.snap, diag.DeleteNode("drop", semi))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestApplyInsertions(t *testing.T) {
	f := newFixture(t, "class A{}")
	brace := find(t, f.snap, tree.KindPunct, "{")

	fix := &diag.Fix{Title: "space", Steps: []diag.FixStep{{
		Target:     brace.Ref(),
		Placement:  diag.PlaceBefore,
		Category:   tree.CategoryTrivia,
		Synthesize: diag.Literal(" "),
	}}}
	out, err := f.tr.Apply(context.Background(), f.snap, fix)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := string(out.Tree.Source()); got != "class A {}" {
		t.Fatalf("unexpected text %q", got)
	}

	// новый член класса после '{'
	brace = find(t, out.Tree, tree.KindPunct, "{")
	member := &diag.Fix{Title: "member", Steps: []diag.FixStep{{
		Target:     brace.Ref(),
		Placement:  diag.PlaceAfter,
		Category:   tree.CategoryMember,
		Synthesize: diag.Literal(" int a; "),
	}}}
	out, err = f.tr.Apply(context.Background(), out.Tree, member)
	if err != nil {
		t.Fatalf("apply member: %v", err)
	}
	if got := string(out.Tree.Source()); got != "class A { int a; }" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDeleteMemberTakesWholeLines(t *testing.T) {
	src := "class A {\n    /** doc */\n    int a;\n    int b;\n}\n"
	f := newFixture(t, src)
	field := f.snap.Root().Find(tree.KindField)[0]

	out, err := f.tr.Apply(context.Background(), f.snap, diag.DeleteNode("drop", field))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := string(out.Tree.Source()); got != "class A {\n    int b;\n}\n" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestSpansConflict(t *testing.T) {
	span := func(s, e uint32) source.Span { return source.Span{Start: s, End: e} }
	tests := []struct {
		name string
		a, b source.Span
		want bool
	}{
		{"two insertions", span(3, 3), span(3, 3), false},
		{"insertion at start", span(3, 3), span(3, 6), false},
		{"insertion inside", span(4, 4), span(3, 6), true},
		{"insertion at end", span(6, 6), span(3, 6), false},
		{"adjacent", span(0, 3), span(3, 6), false},
		{"overlap", span(0, 4), span(3, 6), true},
		{"nested", span(0, 10), span(3, 6), true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: spansConflict = %v, want %v", tt.name, got, tt.want)
		}
		if got := spansConflict(tt.b, tt.a); got != tt.want {
			t.Errorf("%s (swapped): spansConflict = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// scanLongSuffix reports every long literal with a lower-case suffix.
func scanLongSuffix(app diag.FixApplicability) ScanFunc {
	return func(_ context.Context, snap *tree.Tree) ([]*diag.Diagnostic, error) {
		bag := diag.NewBag(0)
		r := diag.BagReporter{Bag: bag}
		for _, lit := range snap.Root().Find(tree.KindLiteral) {
			text := lit.Text()
			if !strings.HasSuffix(text, "l") {
				continue
			}
			diag.NewReportBuilder(r, diag.SevWarning, diag.StrLowercaseLongSuffix, lit.Span(), "lower-case suffix").
				WithTarget(lit).
				WithFix(diag.ReplaceNode("upper-case", lit, tree.CategoryExpression, diag.Literal(strings.TrimSuffix(text, "l")+"L")).
					WithApplicability(app)).
				Emit()
		}
		return bag.Items(), nil
	}
}

func TestApplyBatchAllRescans(t *testing.T) {
	f := newFixture(t, "class A { long a = 1l; long b = 2l; long c = 3l; }")
	scan := scanLongSuffix(diag.FixApplicabilityAlwaysSafe)
	diags, _ := scan(context.Background(), f.snap)

	res, err := f.tr.ApplyBatch(context.Background(), f.snap, diags, scan, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(res.Applied) != 3 {
		t.Fatalf("applied %d fixes, want 3", len(res.Applied))
	}
	if got := string(res.Tree.Source()); got != "class A { long a = 1L; long b = 2L; long c = 3L; }" {
		t.Fatalf("unexpected text %q", got)
	}
	left, _ := scan(context.Background(), res.Tree)
	if len(left) != 0 {
		t.Fatalf("rescan still reports %d diagnostics", len(left))
	}
}

func TestApplyBatchOnceAppliesOne(t *testing.T) {
	f := newFixture(t, "class A { long a = 1l; long b = 2l; }")
	scan := scanLongSuffix(diag.FixApplicabilityAlwaysSafe)
	diags, _ := scan(context.Background(), f.snap)

	res, err := f.tr.ApplyBatch(context.Background(), f.snap, diags, scan, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(res.Applied) != 1 || string(res.Tree.Source()) != "class A { long a = 1L; long b = 2l; }" {
		t.Fatalf("unexpected result: %d applied, %q", len(res.Applied), res.Tree.Source())
	}
}

func TestApplyBatchByID(t *testing.T) {
	f := newFixture(t, "class A { long a = 1l; long b = 2l; }")
	scan := scanLongSuffix(diag.FixApplicabilityManualReview)
	diags, _ := scan(context.Background(), f.snap)
	diags[1].ID = "second"

	res, err := f.tr.ApplyBatch(context.Background(), f.snap, diags, nil, ApplyOptions{Mode: ApplyModeID, TargetID: "second"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if got := string(res.Tree.Source()); got != "class A { long a = 1l; long b = 2L; }" {
		t.Fatalf("unexpected text %q", got)
	}

	_, err = f.tr.ApplyBatch(context.Background(), f.snap, diags, nil, ApplyOptions{Mode: ApplyModeID, TargetID: "missing"})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplyBatchSkipsUnsafe(t *testing.T) {
	f := newFixture(t, "class A { long a = 1l; }")
	scan := scanLongSuffix(diag.FixApplicabilityManualReview)
	diags, _ := scan(context.Background(), f.snap)

	res, err := f.tr.ApplyBatch(context.Background(), f.snap, diags, scan, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || !strings.Contains(res.Skipped[0].Reason, "applicability") {
		t.Fatalf("unexpected skips: %+v", res.Skipped)
	}
	if res.Tree != f.snap {
		t.Fatalf("snapshot replaced without applied fixes")
	}
}

func TestApplyBatchSkipsStaleDiagnostics(t *testing.T) {
	f := newFixture(t, "class A { long a = 1l; }")
	scan := scanLongSuffix(diag.FixApplicabilityAlwaysSafe)
	diags, _ := scan(context.Background(), f.snap)
	other := newFixture(t, "class A { long a = 1l; }")

	res, err := f.tr.ApplyBatch(context.Background(), other.snap, diags, nil, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || !IsStale(res.Skipped[0].Err) {
		t.Fatalf("unexpected skips: %+v", res.Skipped)
	}
}
