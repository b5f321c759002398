package snapio

import (
	"strconv"
	"strings"
)

// ColorSpec is a colour in the 16-colour, 256-colour or 24-bit space.
type ColorSpec struct {
	kind    int // 1=basic, 2=indexed, 3=truecolor
	index   int
	r, g, b uint8

	fallback *ColorSpec
}

var (
	Black   = basic(0)
	Red     = basic(1)
	Green   = basic(2)
	Yellow  = basic(3)
	Blue    = basic(4)
	Magenta = basic(5)
	Cyan    = basic(6)
	White   = basic(7)

	BrightBlack   = basic(8)
	BrightRed     = basic(9)
	BrightGreen   = basic(10)
	BrightYellow  = basic(11)
	BrightBlue    = basic(12)
	BrightMagenta = basic(13)
	BrightCyan    = basic(14)
	BrightWhite   = basic(15)
)

func basic(i int) ColorSpec { return ColorSpec{kind: 1, index: i} }

// Indexed returns a 256-colour palette entry.
func Indexed(i int) ColorSpec { return ColorSpec{kind: 2, index: i} }

// Truecolor returns a 24-bit colour.
func Truecolor(r, g, b uint8) ColorSpec { return ColorSpec{kind: 3, r: r, g: g, b: b} }

// Or sets the colour used when the terminal cannot render c.
func (c ColorSpec) Or(f ColorSpec) ColorSpec {
	c.fallback = &f
	return c
}

// code returns the SGR parameters for c at the given level, walking the
// fallback chain when c is too rich for the terminal.
func (c ColorSpec) code(bg bool, level int) string {
	base := 30
	if bg {
		base = 40
	}
	switch {
	case c.kind == 1:
		idx := min(max(c.index, 0), 15)
		if idx < 8 {
			return strconv.Itoa(base + idx)
		}
		return strconv.Itoa(base + 60 + idx - 8)
	case c.kind == 2 && level >= 2:
		return strconv.Itoa(base+8) + ";5;" + strconv.Itoa(c.index)
	case c.kind == 3 && level >= 3:
		return strconv.Itoa(base+8) + ";2;" + strconv.Itoa(int(c.r)) + ";" + strconv.Itoa(int(c.g)) + ";" + strconv.Itoa(int(c.b))
	case c.fallback != nil:
		return c.fallback.code(bg, level)
	}
	return ""
}

// Style is a fluent builder for SGR attributes and colours.
type Style struct {
	fg, bg                 *ColorSpec
	bold, faint, underline bool
}

func NewStyle() *Style                 { return &Style{} }
func (s *Style) Fg(c ColorSpec) *Style { s.fg = &c; return s }
func (s *Style) Bg(c ColorSpec) *Style { s.bg = &c; return s }
func (s *Style) Bold() *Style          { s.bold = true; return s }
func (s *Style) Faint() *Style         { s.faint = true; return s }
func (s *Style) Underline() *Style     { s.underline = true; return s }

// Sprint styles text when m supports colour and returns it unchanged
// otherwise.
func (s *Style) Sprint(m *IOManager, text string) string {
	if m == nil || !m.SupportsColor() {
		return text
	}
	prefix := s.sgr(m.ColorLevel())
	if prefix == "" {
		return text
	}
	return "\x1b[" + prefix + "m" + text + "\x1b[0m"
}

func (s *Style) sgr(level int) string {
	codes := make([]string, 0, 5)
	if s.bold {
		codes = append(codes, "1")
	}
	if s.faint {
		codes = append(codes, "2")
	}
	if s.underline {
		codes = append(codes, "4")
	}
	if s.fg != nil {
		if c := s.fg.code(false, level); c != "" {
			codes = append(codes, c)
		}
	}
	if s.bg != nil {
		if c := s.bg.code(true, level); c != "" {
			codes = append(codes, c)
		}
	}
	return strings.Join(codes, ";")
}

// Theme names the colours used for headings, messages and token classes.
type Theme struct {
	Primary, Success, Warning, Error, Info, Debug, Muted ColorSpec
}

// DefaultTheme picks the richest palette m can render. Each entry falls back
// to a bright basic colour.
func DefaultTheme(m *IOManager) Theme {
	t := Theme{
		Primary: BrightBlue,
		Success: BrightGreen,
		Warning: BrightYellow,
		Error:   BrightRed,
		Info:    BrightCyan,
		Debug:   BrightMagenta,
		Muted:   BrightBlack,
	}
	switch m.ColorLevel() {
	case 3:
		t.Primary = Truecolor(92, 148, 252).Or(BrightBlue)
		t.Success = Truecolor(80, 250, 123).Or(BrightGreen)
		t.Warning = Truecolor(255, 184, 108).Or(BrightYellow)
		t.Error = Truecolor(255, 85, 85).Or(BrightRed)
		t.Info = Truecolor(139, 233, 253).Or(BrightCyan)
		t.Debug = Truecolor(189, 147, 249).Or(BrightMagenta)
		t.Muted = Truecolor(128, 128, 128).Or(BrightBlack)
	case 2:
		t.Debug = Indexed(141).Or(BrightMagenta)
	}
	return t
}
