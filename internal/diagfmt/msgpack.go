package diagfmt

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"jstyle/internal/diag"
	"jstyle/internal/source"
)

// Msgpack writes the JSON output structure as msgpack, for hosts that read
// diagnostics from a pipe. Field names follow the json tags.
func Msgpack(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

// ReadMsgpack decodes output written by Msgpack.
func ReadMsgpack(r io.Reader) (DiagnosticsOutput, error) {
	var out DiagnosticsOutput
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	err := dec.Decode(&out)
	return out, err
}
