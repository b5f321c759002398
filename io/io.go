// Package snapio decides where help, errors and logs are written and whether
// they may carry ANSI styling.
package snapio

import (
	stdio "io"
	"os"
	"strings"
)

// ColorMode selects how SupportsColor decides.
type ColorMode int

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

// ParseColorMode maps "auto", "always" or "never" to a ColorMode.
func ParseColorMode(s string) (ColorMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorModeAuto, true
	case "always", "force":
		return ColorModeAlways, true
	case "never", "none", "off":
		return ColorModeNever, true
	}
	return ColorModeAuto, false
}

// terminal is implemented per OS in term_unix.go and term_windows.go.
type terminal interface {
	isTerminal(f *os.File) bool
	enableVirtualTerminal() bool
	vtEnabled() bool
	colorLevel() int // 0=unknown, 1=16, 2=256, 3=truecolor
}

// IOManager holds the process streams and the colour policy.
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	mode     ColorMode
	level    int
	levelSet bool

	term terminal
}

// New returns a manager bound to process stdio with automatic colour.
func New() *IOManager {
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr, term: newTerminal()}
}

// WithIn sets the input reader.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; return m }

// WithOut sets the writer help and results go to.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the writer errors and diagnostics go to.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// SetColorMode replaces the colour policy.
func (m *IOManager) SetColorMode(mode ColorMode) *IOManager { m.mode = mode; return m }

// ForceColor styles output even when it is not a terminal.
func (m *IOManager) ForceColor() *IOManager { return m.SetColorMode(ColorModeAlways) }

// NoColor never styles output.
func (m *IOManager) NoColor() *IOManager { return m.SetColorMode(ColorModeNever) }

// ColorAuto styles output only for terminals, honouring NO_COLOR and FORCE_COLOR.
func (m *IOManager) ColorAuto() *IOManager { return m.SetColorMode(ColorModeAuto) }

// ForceColorLevel pins ColorLevel (0=none, 1=16, 2=256, 3=truecolor).
func (m *IOManager) ForceColorLevel(level int) *IOManager {
	m.level = level
	m.levelSet = true
	return m
}

func (m *IOManager) In() stdio.Reader  { return m.in }
func (m *IOManager) Out() stdio.Writer { return m.out }
func (m *IOManager) Err() stdio.Writer { return m.err }

// IsTTY reports whether the output writer is a terminal.
func (m *IOManager) IsTTY() bool {
	f, ok := m.out.(*os.File)
	return ok && m.term.isTerminal(f)
}

// SupportsColor reports whether ANSI sequences may be written to Out.
func (m *IOManager) SupportsColor() bool {
	switch {
	case m.mode == ColorModeNever:
		return false
	case m.mode == ColorModeAlways:
		return true
	case os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("FORCE_COLOR") != "":
		return true
	}
	if !m.IsTTY() {
		return false
	}
	if isWindows {
		return m.term.vtEnabled()
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// ColorLevel returns 0 for none, 1 for 16 colours, 2 for 256 and 3 for
// truecolor.
func (m *IOManager) ColorLevel() int {
	if m.levelSet {
		return m.level
	}
	if !m.SupportsColor() {
		return 0
	}
	if ct := os.Getenv("COLORTERM"); ct == "truecolor" || ct == "24bit" {
		return 3
	}
	term := os.Getenv("TERM")
	switch {
	case strings.Contains(term, "truecolor"), strings.Contains(term, "24bit"):
		return 3
	case strings.Contains(term, "256color"):
		return 2
	}
	if level := m.term.colorLevel(); level > 0 {
		return level
	}
	return 1
}

// EnableVirtualTerminal turns on ANSI processing for Windows consoles. It is
// a no-op elsewhere.
func (m *IOManager) EnableVirtualTerminal() bool { return m.term.enableVirtualTerminal() }

// Colorize wraps s in the SGR code when colour is supported.
func (m *IOManager) Colorize(s, code string) string {
	if !m.SupportsColor() {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (m *IOManager) Bold(s string) string  { return m.Colorize(s, "1") }
func (m *IOManager) Faint(s string) string { return m.Colorize(s, "2") }
