package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jstyle/internal/diag"
	"jstyle/internal/driver"
	"jstyle/internal/fix"
)

var fixCmd = newFixCommand()

func newFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] [file.java|directory]...",
		Short: "Apply available fixes",
		Long:  "Check the given files, then apply their fixes according to the chosen strategy and write the results back.",
		RunE:  runFix,
	}
	cmd.Flags().Bool("all", false, "apply fixes until none applies (default)")
	cmd.Flags().Bool("once", false, "apply the first available fix of each file")
	cmd.Flags().String("id", "", "apply the fix of one diagnostic or fix id")
	cmd.Flags().String("applicability", diag.FixApplicabilitySafeWithHeuristics.String(),
		"least safe fixes to apply (always-safe|safe-with-heuristics|manual-review)")
	cmd.Flags().Bool("unsafe", false, "same as --applicability=manual-review")
	cmd.Flags().Bool("dry-run", false, "report what would change without writing files")
	return cmd
}

func fixOptions(cmd *cobra.Command) (fix.ApplyOptions, bool, error) {
	flags := cmd.Flags()
	applyAll, err := flags.GetBool("all")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	applyOnce, err := flags.GetBool("once")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	targetID, err := flags.GetString("id")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	if targetID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, false, fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, false, fmt.Errorf("--all and --once are mutually exclusive")
	}

	opts := fix.ApplyOptions{Mode: fix.ApplyModeAll, TargetID: targetID}
	switch {
	case targetID != "":
		opts.Mode = fix.ApplyModeID
	case applyOnce:
		opts.Mode = fix.ApplyModeOnce
	}

	level, err := flags.GetString("applicability")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	if opts.MaxApplicability, err = diag.ParseApplicability(level); err != nil {
		return fix.ApplyOptions{}, false, fmt.Errorf("--applicability: %w", err)
	}
	unsafe, err := flags.GetBool("unsafe")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	if unsafe {
		opts.MaxApplicability = diag.FixApplicabilityManualReview
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return fix.ApplyOptions{}, false, err
	}
	return opts, dryRun, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	opts, dryRun, err := fixOptions(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.finish()

	w := s.workspace(!dryRun)
	res, err := s.scan(cmd.Context(), w, args, "Fixing")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, "Dry run, no files are written.")
	}

	// диагностика с id живёт только в одном файле
	if opts.Mode == fix.ApplyModeID {
		if err := w.ApplyFix(cmd.Context(), opts.TargetID); err != nil {
			if errors.Is(err, driver.ErrUnknownDiagnostic) {
				return fmt.Errorf("fix: %w: %s", err, opts.TargetID)
			}
			return fmt.Errorf("fix: %w", err)
		}
		_, err := fmt.Fprintf(out, "Applied fix [%s].\n", opts.TargetID)
		return err
	}

	fixIdx := s.timer.Begin("fix")
	total := &fix.ApplyResult{}
	var errs []error
	for _, f := range res.Files {
		if f.Err != nil || f.Result == nil || len(f.Result.Diagnostics()) == 0 {
			continue
		}
		r, err := w.ApplyFixes(cmd.Context(), f.Path, opts)
		if r != nil {
			total.Applied = append(total.Applied, r.Applied...)
			total.Skipped = append(total.Skipped, r.Skipped...)
			total.Iterations += r.Iterations
		}
		if err != nil && !errors.Is(err, fix.ErrNoFixes) {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
		}
	}
	s.timer.End(fixIdx, fmt.Sprintf("applied=%d", len(total.Applied)))

	if err := printApplyResult(out, total); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func printApplyResult(out io.Writer, res *fix.ApplyResult) error {
	if len(res.Applied) > 0 {
		if _, err := fmt.Fprintf(out, "Applied %d fix(es):\n", len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			location := item.Path
			if location == "" {
				location = "(unknown location)"
			}
			if _, err := fmt.Fprintf(out, "  %s [%s] %s: %s (%d edits, %s)\n",
				item.Title, item.ID, item.Code.ID(), location, item.EditCount, item.Applicability); err != nil {
				return err
			}
		}
	}

	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(out, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			var err error
			if skip.Title != "" {
				_, err = fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				_, err = fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
			if err != nil {
				return err
			}
		}
	}

	if len(res.Applied) == 0 {
		_, err := fmt.Fprintln(out, "No applicable fixes found.")
		return err
	}
	return nil
}
