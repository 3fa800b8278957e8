package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// switchMode is the value of a tri-state flag: --ui and --color.
type switchMode uint8

const (
	modeAuto switchMode = iota
	modeOn
	modeOff
)

var modeNames = [...]string{modeAuto: "auto", modeOn: "on", modeOff: "off"}

func (m switchMode) String() string { return modeNames[m] }

// on resolves auto against whether f is a terminal.
func (m switchMode) on(f *os.File) bool {
	if m == modeAuto {
		return isTerminal(f)
	}
	return m == modeOn
}

type stringFlags interface {
	GetString(name string) (string, error)
}

// switchFlag reads the tri-state flag name; an empty value means auto.
func switchFlag(flags stringFlags, name string) (switchMode, error) {
	raw, err := flags.GetString(name)
	if err != nil {
		return modeAuto, err
	}
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return modeAuto, nil
	}
	if i := slices.Index(modeNames[:], v); i >= 0 {
		return switchMode(i), nil // #nosec G115 -- индекс массива из трёх элементов
	}
	return modeAuto, fmt.Errorf("--%s: invalid value %q (expected %s)", name, raw, strings.Join(modeNames[:], "|"))
}
