package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"jstyle/internal/diag"
	"jstyle/internal/source"
)

// LocationJSON is a span in the JSON output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixStepJSON describes one step of a fix. Steps are anchored at nodes, so
// only their shape is known before the fix is applied.
type FixStepJSON struct {
	Placement string `json:"placement"`
	Category  string `json:"category,omitempty"`
}

type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Steps         []FixStepJSON `json:"steps,omitempty"`
}

type DiagnosticJSON struct {
	ID       string       `json:"id"`
	Rule     string       `json:"rule,omitempty"`
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON and msgpack output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(f, fs, pathMode)
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// sortedFixes puts the preferred and safest fixes first.
func sortedFixes(fixes []*diag.Fix) []*diag.Fix {
	out := slices.DeleteFunc(slices.Clone(fixes), func(f *diag.Fix) bool { return f == nil })
	slices.SortStableFunc(out, func(a, b *diag.Fix) int {
		switch {
		case a.IsPreferred != b.IsPreferred:
			if a.IsPreferred {
				return -1
			}
			return 1
		case a.Applicability != b.Applicability:
			return int(a.Applicability) - int(b.Applicability)
		case a.Kind != b.Kind:
			return int(a.Kind) - int(b.Kind)
		}
		return 0
	})
	return out
}

// BuildDiagnosticsOutput builds the output structure without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	diagnostics := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		dj := DiagnosticJSON{
			ID:       d.ID,
			Rule:     d.Rule,
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				})
			}
		}
		if opts.IncludeFixes {
			for _, fx := range sortedFixes(d.Fixes) {
				fj := FixJSON{
					ID:            fx.ID,
					Title:         fx.Title,
					Kind:          fx.Kind.String(),
					Applicability: fx.Applicability.String(),
					IsPreferred:   fx.IsPreferred,
				}
				for _, st := range fx.Steps {
					sj := FixStepJSON{Placement: st.Placement.String()}
					if st.Placement != diag.PlaceDelete {
						sj.Category = st.Category.String()
					}
					fj.Steps = append(fj.Steps, sj)
				}
				dj.Fixes = append(dj.Fixes, fj)
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
