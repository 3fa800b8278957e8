package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"jstyle/internal/diag"
	"jstyle/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int // строки контекста вокруг основной
	PathMode  PathMode
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures the JSON and msgpack output.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

// Format names an output renderer.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatShort   Format = "short"
	FormatJSON    Format = "json"
	FormatSarif   Format = "sarif"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every renderer name.
var Formats = []Format{FormatPretty, FormatShort, FormatJSON, FormatSarif, FormatMsgpack}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Options bundles the settings of every renderer.
type Options struct {
	Pretty PrettyOpts
	JSON   JSONOpts
	Sarif  SarifRunMeta
}

// Render writes bag in format. The bag is expected to be sorted.
func Render(w io.Writer, format Format, bag *diag.Bag, fs *source.FileSet, opts Options) error {
	switch format {
	case FormatPretty:
		return Pretty(w, bag, fs, opts.Pretty)
	case FormatShort:
		return Short(w, bag, fs)
	case FormatJSON:
		return JSON(w, bag, fs, opts.JSON)
	case FormatSarif:
		return Sarif(w, bag, fs, opts.Sarif)
	case FormatMsgpack:
		return Msgpack(w, bag, fs, opts.JSON)
	}
	return fmt.Errorf("unknown format %q", format)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
