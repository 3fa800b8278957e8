package rules

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"jstyle/internal/config"
	"jstyle/internal/diag"
	"jstyle/internal/fix"
	"jstyle/internal/javasrc"
	"jstyle/internal/source"
	"jstyle/internal/testkit"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

const defaultPath = "src/main/java/A.java"

// harness runs single rules over parsed fixtures without the engine.
type harness struct {
	t      *testing.T
	fs     *source.FileSet
	parser *javasrc.Parser
	index  *typeindex.Index
	layout Layout
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:      t,
		fs:     source.NewFileSet(),
		parser: javasrc.NewParser(),
		index:  typeindex.New(),
		layout: Layout{TestRoots: []string{"src/test/java"}, SourceRoots: []string{"src/main/java", "src/test/java"}},
	}
}

// parse adds src to the file set and the type index.
func (h *harness) parse(path, src string) *tree.Tree {
	h.t.Helper()
	id := h.fs.AddVirtual(path, []byte(src))
	tr, err := h.parser.Parse(id, path, []byte(src))
	require.NoError(h.t, err)
	require.Zero(h.t, tr.ErrorCount(), "fixture must parse cleanly: %q", src)
	require.NoError(h.t, testkit.CheckTreeInvariants(tr))
	h.index.AddTree(tr)
	return tr
}

// check runs rule over every node of tr with raw options applied.
func (h *harness) check(rule Rule, tr *tree.Tree, raw map[string]any) []*diag.Diagnostic {
	h.t.Helper()
	opts, err := config.Resolve(rule.ID(), raw, rule.Options(), config.Defaults(rule.Options()))
	require.NoError(h.t, err)
	bag := diag.NewBag(0)
	ctx := NewContext(tr, Active{Rule: rule, Options: opts, Severity: rule.DefaultSeverity()}, h.index, h.layout)
	ctx.Reporter = diag.BagReporter{Bag: bag}
	tr.Walk(func(n tree.Node) bool {
		if slices.Contains(rule.Kinds(), n.Kind()) {
			require.NoError(h.t, rule.Check(ctx, n))
		}
		return true
	})
	return bag.Items()
}

func (h *harness) run(rule Rule, src string) (*tree.Tree, []*diag.Diagnostic) {
	h.t.Helper()
	tr := h.parse(defaultPath, src)
	return tr, h.check(rule, tr, nil)
}

// apply applies the preferred fix of d and reindexes the result.
func (h *harness) apply(tr *tree.Tree, d *diag.Diagnostic) *tree.Tree {
	h.t.Helper()
	f := d.PreferredFix()
	require.NotNil(h.t, f, "diagnostic %q has no fix", d.Message)
	out, err := fix.NewTransformer(h.fs, h.parser).Apply(context.Background(), tr, f)
	require.NoError(h.t, err)
	require.NoError(h.t, testkit.CheckTreeInvariants(out.Tree))
	h.index.AddTree(out.Tree)
	return out.Tree
}

// fixAll applies the first available fix, rescans and repeats until no
// diagnostic carries a fix.
func (h *harness) fixAll(rule Rule, tr *tree.Tree, raw map[string]any) *tree.Tree {
	h.t.Helper()
	for range 50 {
		ds := h.check(rule, tr, raw)
		i := slices.IndexFunc(ds, (*diag.Diagnostic).HasFix)
		if i < 0 {
			return tr
		}
		tr = h.apply(tr, ds[i])
	}
	h.t.Fatalf("%s did not converge: %q", rule.ID(), tr.Source())
	return nil
}

func codes(ds []*diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

// spanText returns the source covered by the primary span of d.
func spanText(tr *tree.Tree, d *diag.Diagnostic) string {
	return string(tr.Source()[d.Primary.Start:d.Primary.End])
}
