package driver

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstyle/internal/config"
	"jstyle/internal/convention"
	"jstyle/internal/diag"
	"jstyle/internal/fix"
	"jstyle/internal/javasrc"
	"jstyle/internal/rules"
	"jstyle/internal/testkit"
	"jstyle/internal/tree"
)

func spanText(t *testing.T, w *Workspace, path string, d *diag.Diagnostic) string {
	t.Helper()
	src, err := w.Source(path)
	require.NoError(t, err)
	return string(src[d.Primary.Start:d.Primary.End])
}

func TestBooleanFieldRename(t *testing.T) {
	w := newWorkspace(t)
	const path = "src/main/java/Account.java"
	ds := openChecked(t, w, path, "class Account {\n    private boolean isActive;\n}\n")
	require.Len(t, ds, 1)
	assert.Equal(t, "boolean-naming", ds[0].Rule)
	assert.Equal(t, "isActive", spanText(t, w, path, ds[0]))

	require.NoError(t, w.ApplyFix(context.Background(), ds[0].ID))
	assert.Equal(t, "class Account {\n    private boolean hasActive;\n}\n", textOf(t, w, path))
}

func TestMagicValueExtraction(t *testing.T) {
	w := newWorkspace(t)
	const path = "src/main/java/Calc.java"
	ds := openChecked(t, w, path, "class Calc {\n    int f() {\n        int x = 42;\n        return x;\n    }\n}\n")
	require.Len(t, ds, 1)
	assert.Equal(t, "magic-value", ds[0].Rule)
	assert.Equal(t, "42", spanText(t, w, path, ds[0]))

	require.NoError(t, w.ApplyFix(context.Background(), ds[0].ID))
	assert.Equal(t, `class Calc {
    private static final int CONST_42 = 42;
    int f() {
        int x = Calc.CONST_42;
        return x;
    }
}
`, textOf(t, w, path))

	res, err := w.Check(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics())
}

func TestMagicValueInComparisonIsAllowed(t *testing.T) {
	w := newWorkspace(t, "magic-value")
	ds := openChecked(t, w, "src/main/java/Calc.java", "class Calc {\n    boolean f(int x) {\n        return x == 42;\n    }\n}\n")
	assert.Empty(t, ds)
}

func TestArrayBracketsMoveToType(t *testing.T) {
	w := newWorkspace(t)
	const path = "src/main/java/Names.java"
	ds := openChecked(t, w, path, "class Names {\n    private String names[];\n}\n")
	require.Len(t, ds, 1)
	assert.Equal(t, "array-definition", ds[0].Rule)
	assert.Equal(t, "names", spanText(t, w, path, ds[0]))

	require.NoError(t, w.ApplyFix(context.Background(), ds[0].ID))
	assert.Equal(t, "class Names {\n    private String[] names;\n}\n", textOf(t, w, path))
}

func TestConstantRename(t *testing.T) {
	w := newWorkspace(t)
	const path = "src/main/java/Limits.java"
	ds := openChecked(t, w, path, "class Limits {\n    private static final int maxRetryCount = 3;\n}\n")
	require.Len(t, ds, 1)
	assert.Equal(t, "constant-naming", ds[0].Rule)

	require.NoError(t, w.ApplyFix(context.Background(), ds[0].ID))
	assert.Equal(t, "class Limits {\n    private static final int MAX_RETRY_COUNT = 3;\n}\n", textOf(t, w, path))
}

func TestOneIdentifierTwoRules(t *testing.T) {
	w := newWorkspace(t)
	const path = "src/main/java/User.java"
	ds := openChecked(t, w, path, "class User {\n    int _user名;\n}\n")
	require.Len(t, ds, 2)

	byRule := make(map[string]*diag.Diagnostic, 2)
	for _, d := range ds {
		byRule[d.Rule] = d
		assert.Equal(t, "_user名", spanText(t, w, path, d))
		assert.True(t, d.HasFix(), d.Rule)
	}
	require.Contains(t, byRule, "naming-convention")
	require.Contains(t, byRule, "mixed-script")
	assert.NotEqual(t, byRule["naming-convention"].ID, byRule["mixed-script"].ID)

	// каждое исправление применимо само по себе
	for rule, want := range map[string]string{"naming-convention": "int user名;", "mixed-script": "int _user;"} {
		w := newWorkspace(t)
		ds := openChecked(t, w, path, "class User {\n    int _user名;\n}\n")
		i := slices.IndexFunc(ds, func(d *diag.Diagnostic) bool { return d.Rule == rule })
		require.GreaterOrEqual(t, i, 0)
		require.NoError(t, w.ApplyFix(context.Background(), ds[i].ID))
		assert.Contains(t, textOf(t, w, path), want, rule)
	}
}

// fixture has at least one fixable violation for every rule with a fix.
const fixture = `package com.acme;

class Shape {
    int area() {
        return 0;
    }
}

class Circle extends Shape {
    private boolean isRound;
    private static final int maxRetryCount = 3;
    private String names[];
    int _count;
    int user名;
    long big = 1l;

    int Do_Work() {
        int x = 42;
        if(x>1) {
            return x;
        }
        return (int)  x;
    }

    int area() {
        //no space
        return 1;
    }
}
`

// Every fix is checked on a fresh workspace so that earlier fixes do not
// hide later diagnostics.
func eachFix(t *testing.T, fn func(w *Workspace, path string, d *diag.Diagnostic)) {
	t.Helper()
	const path = "src/main/java/com/acme/Circle.java"
	seed := newWorkspace(t)
	ds := openChecked(t, seed, path, fixture)
	require.NotEmpty(t, ds)
	fixed := 0
	for i, d := range ds {
		if !d.HasFix() {
			continue
		}
		fixed++
		w := newWorkspace(t)
		again := openChecked(t, w, path, fixture)
		require.Len(t, again, len(ds))
		require.Equal(t, d.ID, again[i].ID)
		fn(w, path, again[i])
	}
	require.NotZero(t, fixed)
}

func TestFixesAreIdempotent(t *testing.T) {
	eachFix(t, func(w *Workspace, path string, d *diag.Diagnostic) {
		ctx := context.Background()
		before, err := w.Source(path)
		require.NoError(t, err)
		if err := w.ApplyFix(ctx, d.ID); err != nil {
			t.Errorf("%s %s: %v", d.Rule, d.ID, err)
			return
		}
		after, err := w.Snapshot(path)
		require.NoError(t, err)
		require.NoError(t, testkit.CheckTreeInvariants(after))
		assert.NotEqual(t, string(before), string(after.Source()), d.Rule)
		assert.Zero(t, after.ErrorCount(), d.Rule)

		res, err := w.Check(ctx, path)
		require.NoError(t, err)
		for _, n := range res.Diagnostics() {
			if n.Rule != d.Rule {
				continue
			}
			if n.Primary.Start == d.Primary.Start && n.Message == d.Message {
				t.Errorf("%s still reported after its fix: %s", d.Rule, n.Message)
			}
		}
	})
}

func TestFixesPreserveCategory(t *testing.T) {
	eachFix(t, func(w *Workspace, path string, d *diag.Diagnostic) {
		snap, err := w.Snapshot(path)
		require.NoError(t, err)
		type replaced struct {
			cat  tree.Category
			text string
		}
		var want []replaced
		f := d.PreferredFix()
		for _, step := range f.Steps {
			if step.Placement != diag.PlaceReplace {
				continue
			}
			n, err := snap.Resolve(step.Target)
			require.NoError(t, err)
			assert.Equal(t, tree.CategoryOf(n), step.Category, "%s replaces a %s", d.Rule, tree.CategoryOf(n))
			text, err := step.Synthesize(n)
			require.NoError(t, err)
			if text = strings.TrimSpace(text); text != "" {
				want = append(want, replaced{cat: tree.CategoryOf(n), text: text})
			}
		}

		tr := fix.NewTransformer(w.Files(), javasrc.NewParser())
		out, err := tr.Apply(context.Background(), snap, f)
		require.NoError(t, err, d.Rule)
		for _, r := range want {
			found := false
			out.Tree.Walk(func(n tree.Node) bool {
				if !found && tree.CategoryOf(n) == r.cat && strings.TrimSpace(n.Text()) == r.text {
					found = true
				}
				return !found
			})
			assert.True(t, found, "%s: no %s node %q after the fix", d.Rule, r.cat, r.text)
		}
	})
}

// exploding fails on identifiers named boom.
type exploding struct{ panics bool }

func (exploding) ID() string                     { return "exploding" }
func (exploding) Code() diag.Code                { return diag.EngPredicateFailed }
func (exploding) Family() rules.Family           { return rules.FamilyStructural }
func (exploding) Kinds() []tree.Kind             { return []tree.Kind{tree.KindIdentifier} }
func (exploding) DefaultSeverity() diag.Severity { return diag.SevWarning }
func (exploding) Options() []config.OptionSpec   { return nil }

func (e exploding) Check(ctx *rules.Context, n tree.Node) error {
	if n.Text() != "boom" {
		return nil
	}
	// частичный вывод не должен попасть в результат
	ctx.Report(diag.EngPredicateFailed, n, "half done").Emit()
	if e.panics {
		panic("boom")
	}
	return fmt.Errorf("cannot check %s", n.Text())
}

func TestFailingRuleIsIsolated(t *testing.T) {
	for _, panics := range []bool{false, true} {
		t.Run(fmt.Sprintf("panics=%v", panics), func(t *testing.T) {
			all := registryOf(t, "boolean-naming", "constant-naming").All()
			reg, err := rules.NewRegistry(append(all, exploding{panics: panics})...)
			require.NoError(t, err)
			log, hook := test.NewNullLogger()
			w := New(Options{Registry: reg, Logger: log})

			const path = "src/main/java/Flags.java"
			_, err = w.Open(path, []byte("class Flags {\n    boolean isOpen;\n    int boom;\n    static final int maxSize = 1;\n}\n"))
			require.NoError(t, err)
			res, err := w.Check(context.Background(), path)
			require.NoError(t, err)

			rulesSeen := make([]string, 0, 2)
			for _, d := range res.Diagnostics() {
				rulesSeen = append(rulesSeen, d.Rule)
			}
			assert.Equal(t, []string{"boolean-naming", "constant-naming"}, rulesSeen)
			require.Len(t, res.Failures, 1)
			pe := res.Failures[0]
			assert.Equal(t, "exploding", pe.Rule)
			assert.Equal(t, panics, pe.Panic != nil)

			warns := 0
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warns++
					assert.Equal(t, "exploding", e.Data["rule"])
				}
			}
			assert.Equal(t, 1, warns)
		})
	}
}

func TestNamingFixesRoundTrip(t *testing.T) {
	w := newWorkspace(t, "constant-naming", "method-naming", "class-naming", "naming-convention", "boolean-naming")
	const path = "src/main/java/com/acme/Circle.java"
	openChecked(t, w, path, `class user_info {
    private static final int maxRetryCount = 3;
    private boolean isOpen;
    int _count;

    int Do_Work() {
        return 0;
    }
}
`)
	res, err := w.ApplyFixes(context.Background(), path, fix.ApplyOptions{
		Mode:             fix.ApplyModeAll,
		MaxApplicability: diag.FixApplicabilityManualReview,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Applied)

	after, err := w.Check(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, after.Diagnostics(), "fixed names must satisfy the rules that produced them")

	for _, name := range []string{"MAX_RETRY_COUNT", "doWork", "UserInfo"} {
		assert.Contains(t, textOf(t, w, path), name)
	}
	for _, name := range []string{"maxRetryCount", "user_info", "Do_Work", "MAX_RETRY_COUNT", "doWork"} {
		assert.Equal(t, convention.ToConstantCase(name), convention.ToConstantCase(convention.ToConstantCase(name)))
		assert.Equal(t, convention.ToLowerCamel(name), convention.ToLowerCamel(convention.ToLowerCamel(name)))
		assert.Equal(t, convention.ToUpperCamel(name), convention.ToUpperCamel(convention.ToUpperCamel(name)))
	}
}
