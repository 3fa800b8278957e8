package fix

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"jstyle/internal/diag"
	"jstyle/internal/tree"
)

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

func (m ApplyMode) String() string {
	switch m {
	case ApplyModeOnce:
		return "once"
	case ApplyModeAll:
		return "all"
	case ApplyModeID:
		return "id"
	}
	return "unknown"
}

// ParseMode maps a CLI mode name to ApplyMode.
func ParseMode(s string) (ApplyMode, error) {
	switch s {
	case "once":
		return ApplyModeOnce, nil
	case "all":
		return ApplyModeAll, nil
	case "id":
		return ApplyModeID, nil
	}
	return 0, fmt.Errorf("unknown fix mode %q", s)
}

// DefaultMaxIterations bounds the apply-rescan loop of ApplyModeAll.
const DefaultMaxIterations = 200

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode ApplyMode
	// TargetID is a diagnostic id or a fix id, for ApplyModeID.
	TargetID string
	// MaxApplicability is the least safe applicability the once and all
	// modes accept. The zero value accepts only always-safe fixes.
	MaxApplicability diag.FixApplicability
	MaxIterations    int
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Rule          string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	Path          string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
	Err    error
}

// ApplyResult aggregates applied fixes, skipped ones, and the final snapshot.
type ApplyResult struct {
	Applied    []AppliedFix
	Skipped    []SkippedFix
	Tree       *tree.Tree
	Iterations int
}

// ScanFunc recomputes diagnostics for a snapshot after a fix was applied.
type ScanFunc func(ctx context.Context, t *tree.Tree) ([]*diag.Diagnostic, error)

type candidate struct {
	diag  *diag.Diagnostic
	fix   *diag.Fix
	id    string
	order int
}

// ApplyBatch selects fixes from diagnostics of snap according to opts and
// applies them one at a time. In ApplyModeAll every applied fix is followed
// by a rescan, since it invalidates all other diagnostics of the file.
func (t *Transformer) ApplyBatch(ctx context.Context, snap *tree.Tree, diagnostics []*diag.Diagnostic, scan ScanFunc, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{Tree: snap}
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	failed := make(map[string]bool)

	for {
		cands, skips := gatherCandidates(result.Tree, diagnostics)
		if result.Iterations == 0 {
			result.Skipped = append(result.Skipped, skips...)
		}
		sortCandidates(cands)
		selected, selectionSkips := selectCandidates(cands, opts, failed)
		if result.Iterations == 0 || opts.Mode != ApplyModeAll {
			result.Skipped = append(result.Skipped, selectionSkips...)
		}

		applied := false
		for _, cand := range selected {
			out, err := t.Apply(ctx, result.Tree, cand.fix)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, ctxErr
				}
				failed[failureKey(cand)] = true
				result.Skipped = append(result.Skipped, SkippedFix{ID: cand.id, Title: cand.fix.Title, Reason: err.Error(), Err: err})
				if opts.Mode == ApplyModeID {
					return result, err
				}
				continue
			}
			result.Tree = out.Tree
			result.Applied = append(result.Applied, AppliedFix{
				ID:            cand.id,
				Title:         cand.fix.Title,
				Rule:          cand.diag.Rule,
				Code:          cand.diag.Code,
				Message:       cand.diag.Message,
				Applicability: cand.fix.Applicability,
				Path:          snap.Path(),
				EditCount:     len(out.Edits),
			})
			applied = true
			break
		}
		result.Iterations++

		if !applied || opts.Mode != ApplyModeAll {
			break
		}
		if result.Iterations >= limit {
			result.Skipped = append(result.Skipped, SkippedFix{Reason: fmt.Sprintf("stopped after %d iterations", limit)})
			break
		}
		if scan == nil {
			break
		}
		next, err := scan(ctx, result.Tree)
		if err != nil {
			return result, fmt.Errorf("rescan: %w", err)
		}
		diagnostics = next
	}

	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates builds the candidate list from diagnostics of the live snapshot.
// Fixes without an id get one derived from the diagnostic code and position.
func gatherCandidates(snap *tree.Tree, diagnostics []*diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seen := make(map[string]bool)

	order := 0
	for _, d := range diagnostics {
		if d == nil || len(d.Fixes) == 0 {
			continue
		}
		if d.Target.Gen != snap.Gen() {
			skips = append(skips, SkippedFix{ID: d.ID, Title: d.Message, Reason: "diagnostic belongs to an older snapshot",
				Err: &tree.StaleSnapshotError{Ref: d.Target, Current: snap.Gen()}})
			continue
		}
		for idx, f := range d.Fixes {
			id := f.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if len(f.Steps) == 0 {
				skips = append(skips, SkippedFix{ID: id, Title: f.Title, Reason: "fix has no steps"})
				continue
			}
			if seen[id] {
				skips = append(skips, SkippedFix{ID: id, Title: f.Title, Reason: "duplicate fix id"})
				continue
			}
			seen[id] = true
			cands = append(cands, candidate{diag: d, fix: f, id: id, order: order})
			order++
		}
	}
	return cands, skips
}

// sortCandidates sorts the candidate slice in-place to produce a deterministic
// selection order: file, span start, span end, insertion order, code,
// preferred first, fix id and title.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if candidates[i].order != candidates[j].order {
			return candidates[i].order < candidates[j].order
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if candidates[i].fix.IsPreferred != candidates[j].fix.IsPreferred {
			return candidates[i].fix.IsPreferred
		}
		if candidates[i].id != candidates[j].id {
			return candidates[i].id < candidates[j].id
		}
		return candidates[i].fix.Title < candidates[j].fix.Title
	})
}

// selectCandidates returns the candidates to try, in order. Only the first
// one that applies is used per iteration.
func selectCandidates(candidates []candidate, opts ApplyOptions, failed map[string]bool) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.id == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		// id диагностики: берём предпочтительный fix
		for _, cand := range candidates {
			if cand.diag.ID == opts.TargetID && cand.fix == cand.diag.PreferredFix() {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	case ApplyModeOnce, ApplyModeAll:
		selected := make([]candidate, 0, len(candidates))
		skipped := make([]SkippedFix, 0)
		for _, cand := range candidates {
			if failed[failureKey(cand)] {
				continue
			}
			if cand.fix.Applicability > opts.MaxApplicability {
				skipped = append(skipped, SkippedFix{
					ID:     cand.id,
					Title:  cand.fix.Title,
					Reason: fmt.Sprintf("applicability is %s", cand.fix.Applicability),
				})
				continue
			}
			selected = append(selected, cand)
		}
		return selected, skipped
	default:
		return nil, nil
	}
}

// failureKey identifies a fix across rescans, where offsets move.
func failureKey(c candidate) string {
	return fmt.Sprintf("%s|%s|%s|%s", c.diag.Code.ID(), c.diag.Rule, c.diag.Message, c.fix.Title)
}

// IsStale reports whether err means the caller has to rescan first.
func IsStale(err error) bool {
	var stale *tree.StaleSnapshotError
	return errors.As(err, &stale)
}
