//nolint:testpackage // using package name 'snapio' to access unexported fields for testing
package snapio

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
		ok   bool
	}{
		{"", ColorModeAuto, true},
		{"AUTO", ColorModeAuto, true},
		{"always", ColorModeAlways, true},
		{"never", ColorModeNever, true},
		{"rainbow", ColorModeAuto, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColorMode(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestSupportsColorModes(t *testing.T) {
	var buf bytes.Buffer
	m := New().WithOut(&buf)

	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	if m.SupportsColor() {
		t.Error("Expected a buffer not to support colour in auto mode")
	}
	if m.IsTTY() {
		t.Error("Expected a buffer not to be a terminal")
	}
	if !m.ForceColor().SupportsColor() {
		t.Error("Expected ForceColor to enable colour")
	}
	if m.NoColor().SupportsColor() {
		t.Error("Expected NoColor to disable colour")
	}

	t.Setenv("FORCE_COLOR", "1")
	if !m.ColorAuto().SupportsColor() {
		t.Error("Expected FORCE_COLOR to enable colour")
	}
	t.Setenv("NO_COLOR", "1")
	if m.SupportsColor() {
		t.Error("Expected NO_COLOR to win over FORCE_COLOR")
	}
}

func TestColorLevel(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{})
	if got := m.NoColor().ColorLevel(); got != 0 {
		t.Errorf("Expected level 0 without colour, got %d", got)
	}

	m.ForceColor()
	t.Setenv("COLORTERM", "truecolor")
	if got := m.ColorLevel(); got != 3 {
		t.Errorf("Expected level 3 from COLORTERM, got %d", got)
	}
	t.Setenv("COLORTERM", "")
	t.Setenv("TERM", "xterm-256color")
	if got := m.ColorLevel(); got != 2 {
		t.Errorf("Expected level 2 from TERM, got %d", got)
	}
	if got := m.ForceColorLevel(1).ColorLevel(); got != 1 {
		t.Errorf("Expected pinned level 1, got %d", got)
	}
}

func TestStyleSprint(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{})

	if got := NewStyle().Bold().Fg(Red).Sprint(m.NoColor(), "x"); got != "x" {
		t.Errorf("Expected plain text without colour, got %q", got)
	}

	m.ForceColor()
	tests := []struct {
		name  string
		level int
		style *Style
		want  string
	}{
		{"basic", 1, NewStyle().Fg(Red), "\x1b[31mx\x1b[0m"},
		{"bright bold", 1, NewStyle().Bold().Fg(BrightBlue), "\x1b[1;94mx\x1b[0m"},
		{"background", 1, NewStyle().Bg(Green), "\x1b[42mx\x1b[0m"},
		{"indexed", 2, NewStyle().Fg(Indexed(141)), "\x1b[38;5;141mx\x1b[0m"},
		{"truecolor", 3, NewStyle().Fg(Truecolor(1, 2, 3)), "\x1b[38;2;1;2;3mx\x1b[0m"},
		{"indexed fallback", 1, NewStyle().Fg(Indexed(141).Or(Magenta)), "\x1b[35mx\x1b[0m"},
		{"truecolor to indexed", 2, NewStyle().Fg(Truecolor(1, 2, 3).Or(Indexed(9))), "\x1b[38;5;9mx\x1b[0m"},
		{"dropped", 1, NewStyle().Fg(Indexed(141)), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.ForceColorLevel(tt.level)
			if got := tt.style.Sprint(m, "x"); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestColorize(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{}).ForceColor()
	if got := m.Bold("x"); got != "\x1b[1mx\x1b[0m" {
		t.Errorf("Unexpected bold output %q", got)
	}
	if got := m.NoColor().Faint("x"); got != "x" {
		t.Errorf("Expected plain text, got %q", got)
	}
}

func TestDefaultThemeDegrades(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{}).ForceColor().ForceColorLevel(3)
	theme := DefaultTheme(m)

	m.ForceColorLevel(1)
	if got := NewStyle().Fg(theme.Error).Sprint(m, "e"); got != "\x1b[91me\x1b[0m" {
		t.Errorf("Expected truecolor theme to degrade to bright red, got %q", got)
	}
}

func TestConsole(t *testing.T) {
	var errb bytes.Buffer
	m := New().WithOut(&bytes.Buffer{}).WithErr(&errb).NoColor()
	c := NewConsole(m)

	c.Debug("hidden")
	c.Info("loaded %d commands", 3)
	c.WithPrefix(PrefixSymbols).Warning("careful")
	c.WithPrefix(PrefixPlain).WithMinLevel(LevelDebug).Debug("shown")
	c.Error("  ")

	want := "[INFO] loaded 3 commands\n▲ careful\nshown\n  \n"
	if got := errb.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestConsoleTimestamp(t *testing.T) {
	var errb bytes.Buffer
	c := NewConsole(New().WithErr(&errb).NoColor()).WithTimestamp(true)
	c.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	c.Success("done")
	if got := errb.String(); !strings.HasPrefix(got, "[OK] 03:04:05 done") {
		t.Errorf("Unexpected line %q", got)
	}
}

func TestParsePrefix(t *testing.T) {
	if p, err := ParsePrefix("symbols"); err != nil || p != PrefixSymbols {
		t.Errorf("Expected symbols, got %v (%v)", p, err)
	}
	if _, err := ParsePrefix("emoji"); err == nil {
		t.Error("Expected error for unknown prefix")
	}
}
