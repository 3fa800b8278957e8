package rules

import (
	"jstyle/internal/config"
	"jstyle/internal/diag"
	"jstyle/internal/source"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

// Context is what a rule sees while checking one file.
// It is not safe for concurrent use; the engine drives one file at a time.
type Context struct {
	Tree     *tree.Tree
	Options  config.Options
	Severity diag.Severity
	Layout   Layout
	// Reporter receives the diagnostics of the current invocation.
	Reporter diag.Reporter

	rule  Rule
	index *typeindex.Index
	types map[tree.NodeID]*typeindex.TypeInfo
}

// NewContext binds a rule to one snapshot. A nil index behaves as empty.
func NewContext(t *tree.Tree, a Active, ix *typeindex.Index, layout Layout) *Context {
	if ix == nil {
		ix = typeindex.New()
	}
	return &Context{
		Tree:     t,
		Options:  a.Options,
		Severity: a.Severity,
		Layout:   layout,
		Reporter: diag.NopReporter{},
		rule:     a.Rule,
		index:    ix,
	}
}

func (c *Context) Rule() Rule                 { return c.rule }
func (c *Context) Index() *typeindex.Index    { return c.index }
func (c *Context) Source() []byte             { return c.Tree.Source() }
func (c *Context) Path() string               { return c.Tree.Path() }
func (c *Context) Text(sp source.Span) string { return string(c.Tree.Source()[sp.Start:sp.End]) }

// Report starts a diagnostic anchored at n with n's span as primary.
func (c *Context) Report(code diag.Code, n tree.Node, msg string) *diag.ReportBuilder {
	return c.ReportAt(code, n, n.Span(), msg)
}

// ReportAt starts a diagnostic anchored at target with a custom primary span.
func (c *Context) ReportAt(code diag.Code, target tree.Node, primary source.Span, msg string) *diag.ReportBuilder {
	return diag.NewReportBuilder(c.Reporter, c.Severity, code, primary, msg).
		WithRule(c.rule.ID()).
		WithTarget(target)
}

// TypeOf describes a type declaration of this snapshot, memoized per file.
func (c *Context) TypeOf(decl tree.Node) *typeindex.TypeInfo {
	if c.types == nil {
		c.types = make(map[tree.NodeID]*typeindex.TypeInfo)
	}
	if ti, ok := c.types[decl.ID()]; ok {
		return ti
	}
	ti := typeindex.Describe(decl)
	c.types[decl.ID()] = ti
	return ti
}
