// Package engine walks a tree snapshot once and dispatches every node to
// the rules registered for its kind.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"jstyle/internal/diag"
	"jstyle/internal/rules"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

// Options configure an Engine.
type Options struct {
	// Index resolves supertypes across files. Nil means a per-file view only.
	Index  *typeindex.Index
	Layout rules.Layout
	Logger logrus.FieldLogger
	// MaxDiagnostics caps the result bag, 0 means no cap.
	MaxDiagnostics int
}

// Engine holds the dispatch table of one activated rule set. It is
// immutable after New and safe for concurrent Run calls on different trees.
type Engine struct {
	table [tree.KindCount][]rules.Active
	opts  Options
	log   logrus.FieldLogger
}

// Result is the outcome of one scan.
type Result struct {
	Tree     *tree.Tree
	Bag      *diag.Bag
	Failures []*PredicateError
	Nodes    int
}

// Diagnostics returns the sorted diagnostics.
func (r *Result) Diagnostics() []*diag.Diagnostic { return r.Bag.Items() }

func New(active []rules.Active, opts Options) *Engine {
	e := &Engine{opts: opts, log: opts.Logger}
	if e.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		e.log = l
	}
	if e.opts.Index == nil {
		e.opts.Index = typeindex.New()
	}
	for _, a := range active {
		for _, k := range a.Rule.Kinds() {
			e.table[k] = append(e.table[k], a)
		}
	}
	return e
}

// RulesFor returns the rules dispatched for kind, in registration order.
func (e *Engine) RulesFor(kind tree.Kind) []rules.Active {
	if int(kind) >= tree.KindCount {
		return nil
	}
	return e.table[kind]
}

// Run visits every node of t once in pre-order. A failing rule is recorded
// in Result.Failures and does not stop the scan; cancellation does.
func (e *Engine) Run(ctx context.Context, t *tree.Tree) (*Result, error) {
	res := &Result{Tree: t, Bag: diag.NewBag(e.opts.MaxDiagnostics)}
	log := e.log.WithFields(logrus.Fields{"path": t.Path(), "gen": t.Gen()})

	contexts := make(map[string]*rules.Context)
	sink := diag.BagReporter{Bag: res.Bag}
	var buf diag.Buffer
	var runErr error

	t.Walk(func(n tree.Node) bool {
		if runErr != nil {
			return false
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			return false
		}
		res.Nodes++
		for _, a := range e.RulesFor(n.Kind()) {
			rc, ok := contexts[a.Rule.ID()]
			if !ok {
				rc = rules.NewContext(t, a, e.opts.Index, e.opts.Layout)
				contexts[a.Rule.ID()] = rc
			}
			buf.Reset()
			rc.Reporter = &buf
			if perr := invoke(rc, a.Rule, n); perr != nil {
				res.Failures = append(res.Failures, perr)
				log.WithFields(logrus.Fields{"rule": perr.Rule, "node": n.String()}).
					WithError(perr).Warn("rule failed")
				continue
			}
			buf.Flush(sink)
		}
		return true
	})
	if runErr != nil {
		return nil, runErr
	}
	if t.ErrorCount() > 0 {
		reportSyntax(t, sink)
	}

	res.Bag.Sort()
	assignIDs(res.Bag.Items())
	log.WithFields(logrus.Fields{"nodes": res.Nodes, "diagnostics": res.Bag.Len()}).Debug("scan finished")
	return res, nil
}

// reportSyntax records the first syntax error of t. Rules still ran over
// the recovered tree.
func reportSyntax(t *tree.Tree, r diag.Reporter) {
	var bad tree.Node
	t.Walk(func(n tree.Node) bool {
		if !bad.IsNil() {
			return false
		}
		if n.Kind() == tree.KindError || n.Missing() {
			bad = n
			return false
		}
		return true
	})
	if bad.IsNil() {
		return
	}
	msg := fmt.Sprintf("file has %d syntax error(s), results may be incomplete", t.ErrorCount())
	diag.NewReportBuilder(r, diag.SevError, diag.EngSyntaxError, bad.Span(), msg).
		WithRule("syntax").
		WithTarget(bad).
		Emit()
}

// invoke runs one predicate, turning an error or a panic into a PredicateError.
func invoke(rc *rules.Context, r rules.Rule, n tree.Node) (perr *PredicateError) {
	defer func() {
		if p := recover(); p != nil {
			perr = &PredicateError{
				Rule:  r.ID(),
				Node:  n.Ref(),
				Kind:  n.Kind(),
				Span:  n.Span(),
				Err:   fmt.Errorf("panic: %v\n%s", p, debug.Stack()),
				Panic: p,
			}
		}
	}()
	if err := r.Check(rc, n); err != nil {
		return &PredicateError{Rule: r.ID(), Node: n.Ref(), Kind: n.Kind(), Span: n.Span(), Err: err}
	}
	return nil
}

// assignIDs gives every diagnostic the id <CODE>-<file>-<start>-<n>, where n
// counts diagnostics sharing the prefix, and names unnamed fixes after it.
func assignIDs(ds []*diag.Diagnostic) {
	seen := make(map[string]int, len(ds))
	for _, d := range ds {
		prefix := fmt.Sprintf("%s-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start)
		d.ID = fmt.Sprintf("%s-%d", prefix, seen[prefix])
		seen[prefix]++
		for i, f := range d.Fixes {
			if f != nil && f.ID == "" {
				f.ID = fmt.Sprintf("%s.%d", d.ID, i)
			}
		}
	}
}
