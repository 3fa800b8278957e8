package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"jstyle/internal/diag"
	"jstyle/internal/engine"
	"jstyle/internal/observ"
	"jstyle/internal/tree"
)

// ScanOptions configure a directory scan.
type ScanOptions struct {
	// Jobs bounds the worker count, 0 means GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
	// Timer, when set, records the load, index and check phases.
	Timer *observ.Timer
}

// FileResult is the scan outcome of one file. Err is set when the file
// could not be read or parsed; Result is nil then.
type FileResult struct {
	Path   string
	Result *engine.Result
	Err    error
}

// ScanResult aggregates a directory scan.
type ScanResult struct {
	Files    []FileResult
	Bag      *diag.Bag
	Failures []*engine.PredicateError
}

// ListFiles returns the Java files a scan of root would visit.
func (w *Workspace) ListFiles(root string) ([]string, error) {
	return listJavaFiles(root, w.cfg.Exclude)
}

// ScanDir loads every Java file under root, indexes all of them and then
// checks each one. Load and check fan out over Jobs workers; the index is
// complete before the first check so relational rules see every type.
func (w *Workspace) ScanDir(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	begin, end := opts.phases()
	listIdx := begin("load")
	files, err := w.ListFiles(root)
	end(listIdx, fmt.Sprintf("files=%d", len(files)))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}
	return w.scanFiles(ctx, files, opts, begin, end)
}

// ScanFiles is ScanDir over an explicit file list.
func (w *Workspace) ScanFiles(ctx context.Context, files []string, opts ScanOptions) (*ScanResult, error) {
	begin, end := opts.phases()
	return w.scanFiles(ctx, files, opts, begin, end)
}

func (o ScanOptions) phases() (func(string) int, func(int, string)) {
	begin := func(name string) int {
		if o.Timer == nil {
			return -1
		}
		return o.Timer.Begin(name)
	}
	end := func(idx int, note string) {
		if o.Timer != nil && idx >= 0 {
			o.Timer.End(idx, note)
		}
	}
	return begin, end
}

func (w *Workspace) scanFiles(ctx context.Context, files []string, opts ScanOptions, begin func(string) int, end func(int, string)) (*ScanResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = max(1, min(jobs, len(files)))
	results := make([]FileResult, len(files))
	trees := make([]*tree.Tree, len(files))

	// индексы слотов уникальны для каждой горутины, мьютекс не нужен
	loadIdx := begin("parse")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
			t, err := w.Load(path)
			results[i].Path = path
			if err != nil {
				results[i].Err = err
				emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				w.log.WithField("path", path).WithError(err).Warn("file skipped")
				return nil
			}
			results[i].Path = t.Path()
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	end(loadIdx, fmt.Sprintf("files=%d", len(files)))
	end(begin("index"), fmt.Sprintf("types=%d", w.index.Len()))

	checkIdx := begin("check")
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range files {
		if trees[i] == nil {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			path := results[i].Path
			emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusWorking})
			res, err := w.Check(gctx, path)
			if err != nil {
				emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			results[i].Result = res
			emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusDone, Elapsed: time.Since(start), Diagnostics: res.Bag.Len()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ScanResult{Files: results, Bag: diag.NewBag(w.cfg.MaxDiagnostics)}
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		out.Bag.Merge(r.Result.Bag)
		out.Failures = append(out.Failures, r.Result.Failures...)
	}
	out.Bag.Sort()
	end(checkIdx, fmt.Sprintf("diags=%d", out.Bag.Len()))
	return out, nil
}
