package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"jstyle/internal/config"
	"jstyle/internal/diagfmt"
	"jstyle/internal/driver"
	"jstyle/internal/observ"
	"jstyle/internal/prof"
	"jstyle/internal/rules"
	"jstyle/internal/version"
)

// session is what every command needs: flags, logger, configuration and
// a workspace built from them.
type session struct {
	cfg      *config.Config
	out      io.Writer
	log      *logrus.Logger
	format   diagfmt.Format
	jobs     int
	color    bool
	ui       switchMode
	timer    *observ.Timer
	timings  bool
	registry *rules.Registry
	profile  *prof.Session
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, nil
}

// newSession reads the persistent flags and loads the configuration that
// applies to target.
func newSession(cmd *cobra.Command, target string) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	log, err := newLogger(logLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	formatName, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	format, err := diagfmt.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	colorMode, err := switchFlag(flags, "color")
	if err != nil {
		return nil, err
	}
	ui, err := switchFlag(flags, "ui")
	if err != nil {
		return nil, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, err
	}

	s := &session{
		log:      log,
		out:      cmd.OutOrStdout(),
		format:   format,
		jobs:     jobs,
		color:    colorMode.on(os.Stdout),
		ui:       ui,
		timer:    observ.NewTimer(),
		timings:  timings,
		registry: rules.Default(),
	}
	var profOpts prof.Options
	for name, dst := range map[string]*string{"cpu-profile": &profOpts.CPU, "mem-profile": &profOpts.Mem, "runtime-trace": &profOpts.Trace} {
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}
	if profOpts.Enabled() {
		if s.profile, err = prof.Start(profOpts); err != nil {
			return nil, fmt.Errorf("profiling: %w", err)
		}
	}

	cfgIdx := s.timer.Begin("config")
	s.cfg, err = loadConfig(cmd, target, s.registry, log)
	s.timer.End(cfgIdx, "")
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func loadConfig(cmd *cobra.Command, target string, reg *rules.Registry, log logrus.FieldLogger) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(target)
	}
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		// неверные опции сохраняют значения по умолчанию
		log.WithError(err).Warn("configuration problems")
	}
	if cfg.Path != "" {
		log.WithField("path", cfg.Path).Debug("configuration loaded")
	}
	if cfg.Root == "" {
		root, err := projectRoot(target)
		if err != nil {
			return nil, err
		}
		cfg.Root = root
	}

	for _, name := range []string{"disable", "enable"} {
		ids, err := flags.GetStringSlice(name)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !reg.Known(id) {
				return nil, fmt.Errorf("--%s: unknown rule %q", name, id)
			}
			cfg.SetEnabled(id, name == "enable")
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// projectRoot is the directory a scan of target is relative to.
func projectRoot(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

func (s *session) workspace(writeBack bool) *driver.Workspace {
	return driver.New(driver.Options{
		Config:    s.cfg,
		Registry:  s.registry,
		Logger:    s.log,
		WriteBack: writeBack,
	})
}

func (s *session) renderOptions(args []string) diagfmt.Options {
	return diagfmt.Options{
		Pretty: diagfmt.PrettyOpts{Color: s.color, Context: 0, PathMode: diagfmt.PathModeRelative, ShowNotes: true, ShowFixes: true},
		JSON:   diagfmt.JSONOpts{IncludePositions: true, PathMode: diagfmt.PathModeRelative, IncludeNotes: true, IncludeFixes: true},
		Sarif:  diagfmt.SarifRunMeta{ToolName: "jstyle", ToolVersion: version.Version, InvocationArgs: args},
	}
}

// finish prints the timings when asked for and stops the profilers.
func (s *session) finish() {
	s.reportTimings()
	s.close()
}

func (s *session) reportTimings() {
	s.timer.Log(s.log)
	if s.timings {
		fmt.Fprint(os.Stderr, s.timer.Summary())
	}
}

func (s *session) close() {
	if err := s.profile.Stop(); err != nil {
		s.log.WithError(err).Warn("profile not written")
	}
}
