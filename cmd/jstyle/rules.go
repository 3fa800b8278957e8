package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"jstyle/internal/diagfmt"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [directory]",
	Short: "List the known rules and their effective settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

type ruleOptionInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Default any    `json:"default"`
	Value   any    `json:"value"`
	Doc     string `json:"doc,omitempty"`
}

type ruleInfo struct {
	ID       string           `json:"id"`
	Code     string           `json:"code"`
	Family   string           `json:"family"`
	Enabled  bool             `json:"enabled"`
	Severity string           `json:"severity"`
	Title    string           `json:"title"`
	Options  []ruleOptionInfo `json:"options,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	s, err := newSession(cmd, target)
	if err != nil {
		return err
	}
	defer s.close()
	infos := s.ruleInfos()
	out := cmd.OutOrStdout()
	if s.format == diagfmt.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	return printRules(out, infos, s.color)
}

// ruleInfos merges the registry with the configuration in effect.
func (s *session) ruleInfos() []ruleInfo {
	active, err := s.registry.Activate(s.cfg)
	if err != nil {
		s.log.WithError(err).Warn("configuration problems, defaults kept")
	}
	byID := make(map[string]int, len(active))
	for i, a := range active {
		byID[a.Rule.ID()] = i
	}

	var infos []ruleInfo
	for _, r := range s.registry.All() {
		info := ruleInfo{
			ID:       r.ID(),
			Code:     r.Code().ID(),
			Family:   r.Family().String(),
			Severity: r.DefaultSeverity().String(),
			Title:    r.Code().Title(),
		}
		i, enabled := byID[r.ID()]
		info.Enabled = enabled
		if enabled {
			info.Severity = active[i].Severity.String()
		}
		for _, spec := range r.Options() {
			opt := ruleOptionInfo{Name: spec.Name, Kind: spec.Kind.String(), Default: spec.Default, Value: spec.Default, Doc: spec.Doc}
			if enabled {
				opt.Value = active[i].Options.Raw(spec.Name)
			}
			info.Options = append(info.Options, opt)
		}
		infos = append(infos, info)
	}
	return infos
}

func printRules(out io.Writer, infos []ruleInfo, colored bool) error {
	header := []string{"RULE", "CODE", "FAMILY", "SEVERITY", "OPTIONS"}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		sev := info.Severity
		if !info.Enabled {
			sev = "off"
		}
		opts := make([]string, 0, len(info.Options))
		for _, o := range info.Options {
			opts = append(opts, fmt.Sprintf("%s=%v", o.Name, o.Value))
		}
		rows = append(rows, []string{info.ID, info.Code, info.Family, sev, strings.Join(opts, " ")})
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	bold := color.New(color.Bold)
	if colored {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	line := func(row []string) string {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		return strings.TrimRight(strings.Join(cells, "  "), " ")
	}
	if _, err := fmt.Fprintln(out, bold.Sprint(line(header))); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(out, line(row)); err != nil {
			return err
		}
	}
	return nil
}
