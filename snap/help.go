package snap

import (
	"io"
	"strings"

	"github.com/dzonerzy/go-pparse/internal/pool"
)

// HelpStyle decorates parts of the help text. Nil fields leave text as is.
type HelpStyle struct {
	Heading func(string) string
	Name    func(string) string
}

func (s HelpStyle) heading(v string) string {
	if s.Heading == nil {
		return v
	}
	return s.Heading(v)
}

// name pads v to width before styling so escape codes do not break columns.
func (s HelpStyle) name(v string, width int) string {
	padded := v + strings.Repeat(" ", max(width-len(v), 0))
	if s.Name == nil {
		return padded
	}
	return s.Name(v) + padded[len(v):]
}

// HelpText renders the unstyled help of c.
func (c *Command) HelpText() string {
	var b strings.Builder
	_ = c.WriteHelp(&b, HelpStyle{})
	return b.String()
}

// WriteHelp renders the help of c to w.
func (c *Command) WriteHelp(w io.Writer, style HelpStyle) error {
	bp := pool.GetBuffer(1024)
	buf := (*bp)[:0]
	defer func() {
		*bp = buf[:0]
		pool.PutBuffer(bp)
	}()

	path := c.Path()
	buf = append(buf, style.heading("Usage:")...)
	buf = append(buf, ' ')
	buf = append(buf, path...)
	if len(c.keywords) > 0 {
		buf = append(buf, " [options]"...)
	}
	if len(c.subcommands) > 0 {
		buf = append(buf, " <command>"...)
	}
	for _, p := range c.positionals {
		buf = append(buf, ' ')
		buf = append(buf, positionalUsage(p)...)
	}
	buf = append(buf, "\n\n"...)

	if c.help != "" {
		buf = append(buf, c.help...)
		buf = append(buf, "\n\n"...)
	}

	if len(c.positionals) > 0 {
		width := 0
		for _, p := range c.positionals {
			width = max(width, len(p.Name))
		}
		buf = append(buf, style.heading("Arguments:")...)
		buf = append(buf, '\n')
		for _, p := range c.positionals {
			buf = append(buf, "  "...)
			buf = append(buf, style.name(p.Name, width)...)
			buf = append(buf, "  "...)
			buf = append(buf, p.Help...)
			if !p.Default.IsNone() {
				buf = append(buf, " (default: "...)
				buf = append(buf, p.Default.String()...)
				buf = append(buf, ')')
			}
			if !p.Required {
				buf = append(buf, " [optional]"...)
			}
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
	}

	if len(c.keywords) > 0 {
		width := 0
		for _, d := range c.keywords {
			width = max(width, len(d.DisplayName()))
		}
		buf = append(buf, style.heading("Options:")...)
		buf = append(buf, '\n')
		for _, d := range c.keywords {
			buf = append(buf, "  "...)
			buf = append(buf, style.name(d.DisplayName(), width)...)
			buf = append(buf, "  "...)
			buf = append(buf, d.Help...)
			if showDefault(d) {
				buf = append(buf, " (default: "...)
				buf = append(buf, d.Default.String()...)
				buf = append(buf, ')')
			}
			if d.Required {
				buf = append(buf, " [required]"...)
			}
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
	}

	if subs := c.Subcommands(); len(subs) > 0 {
		width := 0
		for _, s := range subs {
			width = max(width, len(s.name))
		}
		buf = append(buf, style.heading("Commands:")...)
		buf = append(buf, '\n')
		for _, s := range subs {
			buf = append(buf, "  "...)
			buf = append(buf, style.name(s.name, width)...)
			buf = append(buf, "  "...)
			buf = append(buf, s.help...)
			if len(s.aliases) > 0 {
				buf = append(buf, " (aliases: "...)
				buf = append(buf, strings.Join(s.aliases, ", ")...)
				buf = append(buf, ')')
			}
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
		buf = append(buf, "Use '"...)
		buf = append(buf, path...)
		buf = append(buf, " <command> --help' for more information on a command.\n"...)
	}

	_, err := w.Write(buf)
	return err
}

func positionalUsage(p *ArgumentDef) string {
	name := p.Name
	if p.Kind == ArgMultiple {
		name += "..."
	}
	if p.Required {
		return "<" + name + ">"
	}
	return "[" + name + "]"
}

// showDefault hides empty defaults and false switches.
func showDefault(d *ArgumentDef) bool {
	switch d.Default.Kind() {
	case ValueNone:
		return false
	case ValueBool:
		on, _ := d.Default.Bool()
		return on
	case ValueStringList:
		list, _ := d.Default.Strings()
		return len(list) > 0
	}
	return true
}
