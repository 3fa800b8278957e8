package diag

import (
	"jstyle/internal/source"
	"jstyle/internal/tree"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is valid only for the snapshot generation recorded in Target.
type Diagnostic struct {
	ID       string
	Rule     string
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Target   tree.Ref
	Notes    []Note
	Fixes    []*Fix
}

// Gen returns the snapshot generation the diagnostic was computed against.
func (d *Diagnostic) Gen() uint64 { return d.Target.Gen }

// HasFix reports whether at least one fix is attached.
func (d *Diagnostic) HasFix() bool { return len(d.Fixes) > 0 }

// PreferredFix returns the fix marked preferred, or the first one.
func (d *Diagnostic) PreferredFix() *Fix {
	for _, f := range d.Fixes {
		if f.IsPreferred {
			return f
		}
	}
	if len(d.Fixes) > 0 {
		return d.Fixes[0]
	}
	return nil
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(fix *Fix) Diagnostic {
	if fix != nil {
		d.Fixes = append(d.Fixes, fix)
	}
	return d
}
