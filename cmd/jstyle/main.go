package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jstyle/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "jstyle",
	Short:         "Java style checker with automatic fixes",
	Long:          `jstyle checks Java sources against naming, structural and layout conventions and applies the fixes it knows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errViolations makes the process exit with status 1 without printing an error.
var errViolations = errors.New("violations found")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "configuration file (default: nearest jstyle.toml or .jstyle.yaml)")
	pf.StringSlice("disable", nil, "rule ids to disable")
	pf.StringSlice("enable", nil, "rule ids to enable")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = unlimited)")
	pf.Int("jobs", 0, "max parallel workers (0 = GOMAXPROCS)")
	pf.String("format", "pretty", "output format (pretty|short|json|sarif|msgpack)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.Bool("timings", false, "show timing information")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("ui", "auto", "progress view for directory scans (auto|on|off)")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write runtime trace to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintln(os.Stderr, "jstyle:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
