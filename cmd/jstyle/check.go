package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"jstyle/internal/diag"
	"jstyle/internal/diagfmt"
	"jstyle/internal/driver"
	"jstyle/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.java|directory]...",
	Short: "Report style violations",
	Long:  "Parse the given Java files or directories, run every enabled rule and print the diagnostics.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.finish()

	w := s.workspace(false)
	res, err := s.scan(cmd.Context(), w, args, "Checking")
	if err != nil {
		return err
	}
	if err := s.render(w, res, os.Args[1:]); err != nil {
		return err
	}
	if res.Bag.Len() > 0 || len(res.Failures) > 0 || scanErrors(res) > 0 {
		return errViolations
	}
	return nil
}

// scan lists the files behind every path and checks them in one pass so
// the type index covers all of them.
func (s *session) scan(ctx context.Context, w *driver.Workspace, paths []string, title string) (*driver.ScanResult, error) {
	var files []string
	listIdx := s.timer.Begin("load")
	for _, p := range paths {
		found, err := w.ListFiles(p)
		if err != nil {
			s.timer.End(listIdx, "failed")
			return nil, err
		}
		files = append(files, found...)
	}
	s.timer.End(listIdx, fmt.Sprintf("files=%d", len(files)))

	opts := driver.ScanOptions{Jobs: s.jobs, Timer: s.timer}
	if len(files) < 2 || !s.ui.on(os.Stdout) {
		return w.ScanFiles(ctx, files, opts)
	}
	return runScanWithUI(ctx, title, files, w, opts)
}

type scanOutcome struct {
	result *driver.ScanResult
	err    error
}

func runScanWithUI(ctx context.Context, title string, files []string, w *driver.Workspace, opts driver.ScanOptions) (*driver.ScanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := w.ScanFiles(ctx, files, opts)
		outcomeCh <- scanOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := awaitScan(cancel, events, outcomeCh)
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

// awaitScan stops a scan whose progress view has already exited. Events are
// drained until the scanner closes the channel, otherwise a blocked send
// would keep the outcome from ever arriving.
func awaitScan(cancel context.CancelFunc, events <-chan driver.Event, outcomeCh <-chan scanOutcome) scanOutcome {
	cancel()
	for range events {
	}
	return <-outcomeCh
}

func (s *session) render(w *driver.Workspace, res *driver.ScanResult, args []string) error {
	if err := renderBag(s.out, s, w, res.Bag, args); err != nil {
		return err
	}
	for _, f := range res.Failures {
		s.log.WithField("rule", f.Rule).WithError(f).Debug("rule failure")
	}
	if n := scanErrors(res); n > 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) could not be checked\n", n)
	}
	return nil
}

func scanErrors(res *driver.ScanResult) int {
	n := 0
	for _, f := range res.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

func renderBag(out io.Writer, s *session, w *driver.Workspace, bag *diag.Bag, args []string) error {
	return diagfmt.Render(out, s.format, bag, w.Files(), s.renderOptions(args))
}
