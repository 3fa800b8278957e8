package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jstyle/internal/driver"
	"jstyle/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [directory]",
	Short: "Check a directory and recheck files as they change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", driver.DefaultDebounce, "quiet period before a changed file is rechecked")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	s, err := newSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.close()
	// progress view would fight with the running output
	s.ui = modeOff

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := s.workspace(false)
	res, err := s.scan(ctx, w, []string{root}, "Checking")
	if err != nil {
		return err
	}
	if err := s.render(w, res, os.Args[1:]); err != nil {
		return err
	}
	s.reportTimings()

	out := s.out
	return w.Watch(ctx, root, driver.WatchOptions{
		Debounce: debounce,
		OnResult: func(path string, res *engine.Result, err error) {
			switch {
			case err != nil:
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			case res == nil:
				fmt.Fprintf(out, "%s: removed\n", path)
			case res.Bag.Len() == 0:
				fmt.Fprintf(out, "%s: clean\n", path)
			default:
				if err := renderBag(out, s, w, res.Bag, os.Args[1:]); err != nil {
					s.log.WithError(err).Warn("render failed")
				}
			}
		},
	})
}
