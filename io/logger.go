package snapio

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel orders console messages by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "OK"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Prefix selects how a console line announces its level.
type Prefix int

const (
	PrefixTagged  Prefix = iota // [WARN] message
	PrefixSymbols               // ▲ message
	PrefixPlain                 // message
)

// ParsePrefix maps "tagged", "symbols" or "plain" to a Prefix.
func ParsePrefix(s string) (Prefix, error) {
	switch strings.ToLower(s) {
	case "", "tagged":
		return PrefixTagged, nil
	case "symbols":
		return PrefixSymbols, nil
	case "plain":
		return PrefixPlain, nil
	}
	return PrefixTagged, fmt.Errorf("unknown console prefix %q", s)
}

var symbols = [...]string{"●", "◆", "✓", "▲", "✗"}

// Console writes human-facing diagnostics to the manager's Err writer,
// coloured by level when the terminal allows it.
type Console struct {
	io       *IOManager
	prefix   Prefix
	minLevel LogLevel
	withTime bool
	now      func() time.Time
}

// NewConsole returns a console that prints Info and above with tags.
func NewConsole(m *IOManager) *Console {
	return &Console{io: m, minLevel: LevelInfo, now: time.Now}
}

func (c *Console) WithPrefix(p Prefix) *Console        { c.prefix = p; return c }
func (c *Console) WithMinLevel(l LogLevel) *Console    { c.minLevel = l; return c }
func (c *Console) WithTimestamp(enabled bool) *Console { c.withTime = enabled; return c }

// Enabled reports whether messages at level are printed.
func (c *Console) Enabled(level LogLevel) bool { return level >= c.minLevel }

// Log prints one line at level. Blank messages are printed without a prefix.
func (c *Console) Log(level LogLevel, format string, args ...any) {
	if !c.Enabled(level) {
		return
	}
	fmt.Fprintln(c.io.Err(), c.format(level, fmt.Sprintf(format, args...)))
}

func (c *Console) format(level LogLevel, msg string) string {
	if strings.TrimSpace(msg) == "" {
		return msg
	}
	var parts []string
	switch c.prefix {
	case PrefixTagged:
		parts = append(parts, "["+level.String()+"]")
	case PrefixSymbols:
		if int(level) < len(symbols) {
			parts = append(parts, symbols[level])
		}
	}
	if c.withTime {
		parts = append(parts, c.now().Format("15:04:05"))
	}
	parts = append(parts, msg)
	return NewStyle().Fg(c.color(level)).Sprint(c.io, strings.Join(parts, " "))
}

func (c *Console) color(level LogLevel) ColorSpec {
	t := DefaultTheme(c.io)
	switch level {
	case LevelDebug:
		return t.Debug
	case LevelSuccess:
		return t.Success
	case LevelWarning:
		return t.Warning
	case LevelError:
		return t.Error
	}
	return t.Info
}

func (c *Console) Debug(format string, args ...any)   { c.Log(LevelDebug, format, args...) }
func (c *Console) Info(format string, args ...any)    { c.Log(LevelInfo, format, args...) }
func (c *Console) Success(format string, args ...any) { c.Log(LevelSuccess, format, args...) }
func (c *Console) Warning(format string, args ...any) { c.Log(LevelWarning, format, args...) }
func (c *Console) Error(format string, args ...any)   { c.Log(LevelError, format, args...) }
