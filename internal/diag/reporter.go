package diag

import (
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

// Reporter: минимальный контракт получения диагностик от правил.
// Реализации: BagReporter, Buffer, DedupReporter, NopReporter.
type Reporter interface {
	Report(d *Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, msg),
	}
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// WithRule records the reporting rule id.
func (b *ReportBuilder) WithRule(id string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Rule = id
	return b
}

// WithTarget anchors the diagnostic at node n of the current snapshot.
func (b *ReportBuilder) WithTarget(n tree.Node) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Target = n.Ref()
	return b
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithFix appends a fix, nil fixes are ignored.
func (b *ReportBuilder) WithFix(fix *Fix) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithFix(fix)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		d := b.diag
		b.reporter.Report(&d)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d *Diagnostic) {
	if r.Bag == nil || d == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(*Diagnostic) {}

// Buffer holds diagnostics of one rule invocation until they are committed.
// It is not safe for concurrent use.
type Buffer struct {
	items []*Diagnostic
}

func (b *Buffer) Report(d *Diagnostic) {
	if d != nil {
		b.items = append(b.items, d)
	}
}

func (b *Buffer) Len() int { return len(b.items) }

// Flush forwards buffered diagnostics to r and empties the buffer.
func (b *Buffer) Flush(r Reporter) {
	for _, d := range b.items {
		r.Report(d)
	}
	b.Reset()
}

// Reset drops buffered diagnostics.
func (b *Buffer) Reset() {
	clear(b.items)
	b.items = b.items[:0]
}
