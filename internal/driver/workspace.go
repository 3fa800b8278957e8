// Package driver hosts the engine: it keeps the live snapshot of every open
// file, runs scans over files and directories, applies fixes and watches
// a project for changes.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"jstyle/internal/config"
	"jstyle/internal/diag"
	"jstyle/internal/engine"
	"jstyle/internal/fix"
	"jstyle/internal/javasrc"
	"jstyle/internal/rules"
	"jstyle/internal/source"
	"jstyle/internal/tree"
	"jstyle/internal/typeindex"
)

var (
	// ErrUnknownDiagnostic is returned for an id no scan produced.
	ErrUnknownDiagnostic = errors.New("unknown diagnostic")
	// ErrNotOpen is returned for a path the workspace does not hold.
	ErrNotOpen = errors.New("file is not open")
)

// Options configure a Workspace.
type Options struct {
	Config *config.Config
	// Registry defaults to every built-in rule.
	Registry *rules.Registry
	Logger   logrus.FieldLogger
	// WriteBack saves fixed files to disk. Virtual files are never written.
	WriteBack bool
}

// Workspace owns the snapshots of a set of files. Every file has one
// writer at a time: scans take its snapshot and fixes replace it under the
// file's lock, so a fix never races a scan of the same file.
type Workspace struct {
	files       *source.FileSet
	parser      *javasrc.Parser
	index       *typeindex.Index
	engine      *engine.Engine
	transformer *fix.Transformer
	cfg         *config.Config
	layout      rules.Layout
	log         logrus.FieldLogger
	writeBack   bool
	configErr   error

	mu   sync.Mutex
	docs map[string]*document
}

// document is the live state of one path.
type document struct {
	mu     sync.Mutex
	path   string
	tree   *tree.Tree
	result *engine.Result // last scan, possibly of an older snapshot
}

// New builds a workspace. Configuration errors do not fail it: the affected
// options keep their defaults and the errors are kept in ConfigErrors.
func New(opts Options) *Workspace {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = rules.Default()
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}

	active, cfgErr := reg.Activate(cfg)
	if cfgErr != nil {
		log.WithError(cfgErr).Warn("configuration problems, defaults kept")
	}
	layout := rules.Layout{Root: cfg.Root, TestRoots: cfg.TestRoots, SourceRoots: cfg.SourceRoots}
	files := source.NewFileSetWithBase(cfg.Root)
	parser := javasrc.NewParser()
	index := typeindex.New()

	return &Workspace{
		files:  files,
		parser: parser,
		index:  index,
		engine: engine.New(active, engine.Options{
			Index:          index,
			Layout:         layout,
			Logger:         log,
			MaxDiagnostics: cfg.MaxDiagnostics,
		}),
		transformer: fix.NewTransformer(files, parser),
		cfg:         cfg,
		layout:      layout,
		log:         log,
		writeBack:   opts.WriteBack,
		configErr:   cfgErr,
		docs:        make(map[string]*document),
	}
}

func (w *Workspace) Files() *source.FileSet     { return w.files }
func (w *Workspace) Index() *typeindex.Index    { return w.index }
func (w *Workspace) Config() *config.Config     { return w.cfg }
func (w *Workspace) Engine() *engine.Engine     { return w.engine }
func (w *Workspace) ConfigErrors() error        { return w.configErr }
func (w *Workspace) Logger() logrus.FieldLogger { return w.log }

// Open adds src under path as an in-memory file and parses it. Opening a
// path again replaces its snapshot.
func (w *Workspace) Open(path string, src []byte) (*tree.Tree, error) {
	id := w.files.AddVirtual(path, src)
	return w.install(id)
}

// Load reads path from disk and parses it.
func (w *Workspace) Load(path string) (*tree.Tree, error) {
	id, err := w.files.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", diag.EngIOError.ID(), err)
	}
	return w.install(id)
}

// Close forgets path.
func (w *Workspace) Close(path string) {
	path = source.NormalizePath(path)
	w.mu.Lock()
	delete(w.docs, path)
	w.mu.Unlock()
	w.index.RemovePath(path)
}

func (w *Workspace) install(id source.FileID) (*tree.Tree, error) {
	f := w.files.Get(id)
	t, err := w.parser.Parse(id, f.Path, f.Content)
	if err != nil {
		return nil, err
	}
	doc := w.doc(f.Path, true)
	doc.mu.Lock()
	doc.tree = t
	doc.mu.Unlock()
	w.index.AddTree(t)
	w.log.WithFields(logrus.Fields{"path": f.Path, "gen": t.Gen()}).Debug("snapshot installed")
	return t, nil
}

func (w *Workspace) doc(path string, create bool) *document {
	path = source.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.docs[path]
	if !ok && create {
		d = &document{path: path}
		w.docs[path] = d
	}
	return d
}

// Paths returns the open paths in sorted order.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.docs))
	for p := range w.docs {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Snapshot returns the live snapshot of path.
func (w *Workspace) Snapshot(path string) (*tree.Tree, error) {
	d := w.doc(path, false)
	if d == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotOpen)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotOpen)
	}
	return d.tree, nil
}

// Source returns the current text of path.
func (w *Workspace) Source(path string) ([]byte, error) {
	t, err := w.Snapshot(path)
	if err != nil {
		return nil, err
	}
	return t.Source(), nil
}

// Check scans the live snapshot of path.
func (w *Workspace) Check(ctx context.Context, path string) (*engine.Result, error) {
	d := w.doc(path, false)
	if d == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotOpen)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return w.checkLocked(ctx, d)
}

func (w *Workspace) checkLocked(ctx context.Context, d *document) (*engine.Result, error) {
	if d.tree == nil {
		return nil, fmt.Errorf("%s: %w", d.path, ErrNotOpen)
	}
	res, err := w.engine.Run(ctx, d.tree)
	if err != nil {
		return nil, err
	}
	d.result = res
	return res, nil
}

// Diagnostics returns the diagnostics of the last scan of path, nil when
// the file changed since.
func (w *Workspace) Diagnostics(path string) []*diag.Diagnostic {
	d := w.doc(path, false)
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil || d.result.Tree != d.tree {
		return nil
	}
	return d.result.Diagnostics()
}

// lookup finds the document whose last scan produced id, which may be a
// diagnostic id or the id of one of its fixes.
func (w *Workspace) lookup(id string) (*document, *diag.Diagnostic, *diag.Fix) {
	w.mu.Lock()
	docs := make([]*document, 0, len(w.docs))
	for _, d := range w.docs {
		docs = append(docs, d)
	}
	w.mu.Unlock()

	for _, d := range docs {
		d.mu.Lock()
		res := d.result
		d.mu.Unlock()
		if res == nil {
			continue
		}
		for _, dg := range res.Diagnostics() {
			if dg.ID == id {
				return d, dg, dg.PreferredFix()
			}
			for _, f := range dg.Fixes {
				if f != nil && f.ID == id {
					return d, dg, f
				}
			}
		}
	}
	return nil, nil, nil
}

// ApplyFix applies the preferred fix of the diagnostic id (or the fix with
// that id) to the live snapshot. A diagnostic of an older snapshot yields
// *tree.StaleSnapshotError; the caller has to rescan.
func (w *Workspace) ApplyFix(ctx context.Context, id string) error {
	d, dg, f := w.lookup(id)
	if d == nil {
		return fmt.Errorf("%q: %w", id, ErrUnknownDiagnostic)
	}
	if f == nil {
		return &fix.Error{FixID: id, Op: "resolve", Err: fix.ErrNoFixes}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return fmt.Errorf("%s: %w", d.path, ErrNotOpen)
	}
	if dg.Target.Gen != d.tree.Gen() {
		return &tree.StaleSnapshotError{Ref: dg.Target, Current: d.tree.Gen()}
	}
	out, err := w.transformer.Apply(ctx, d.tree, f)
	if err != nil {
		w.log.WithFields(logrus.Fields{"path": d.path, "rule": dg.Rule}).WithError(err).Info("fix rejected")
		return err
	}
	w.log.WithFields(logrus.Fields{"path": d.path, "rule": dg.Rule, "gen": out.Tree.Gen()}).Debug("fix applied")
	return w.commitLocked(d, out.Tree)
}

// ApplyFixes runs a batch of fixes over path, scanning first when the last
// scan is stale.
func (w *Workspace) ApplyFixes(ctx context.Context, path string, opts fix.ApplyOptions) (*fix.ApplyResult, error) {
	d := w.doc(path, false)
	if d == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotOpen)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.result == nil || d.result.Tree != d.tree {
		if _, err := w.checkLocked(ctx, d); err != nil {
			return nil, err
		}
	}
	scan := func(ctx context.Context, t *tree.Tree) ([]*diag.Diagnostic, error) {
		w.index.AddTree(t)
		res, err := w.engine.Run(ctx, t)
		if err != nil {
			return nil, err
		}
		return res.Diagnostics(), nil
	}
	res, err := w.transformer.ApplyBatch(ctx, d.tree, d.result.Diagnostics(), scan, opts)
	if res != nil && res.Tree != d.tree {
		if cerr := w.commitLocked(d, res.Tree); cerr != nil {
			return res, cerr
		}
	}
	return res, err
}

// commitLocked installs a fixed snapshot and writes it back when enabled.
func (w *Workspace) commitLocked(d *document, t *tree.Tree) error {
	d.tree = t
	w.index.AddTree(t)
	if !w.writeBack {
		return nil
	}
	return w.saveLocked(d)
}

// Save writes the current text of path to disk. Virtual files are skipped.
func (w *Workspace) Save(path string) error {
	d := w.doc(path, false)
	if d == nil {
		return fmt.Errorf("%s: %w", path, ErrNotOpen)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return w.saveLocked(d)
}

func (w *Workspace) saveLocked(d *document) error {
	f := w.files.Get(d.tree.File())
	if f == nil || f.Flags&source.FileVirtual != 0 {
		return nil
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", diag.EngIOError.ID(), err)
	}
	if err := os.WriteFile(f.Path, f.DiskBytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("%s: %w", diag.EngIOError.ID(), err)
	}
	w.log.WithField("path", f.Path).Debug("file written")
	return nil
}
