package snap

import "strings"

// ArgKind describes how an argument consumes tokens.
type ArgKind int

const (
	// ArgFlag is a boolean switch that takes no value.
	ArgFlag ArgKind = iota
	// ArgSingle takes exactly one value.
	ArgSingle
	// ArgMultiple greedily takes values until the next flag.
	ArgMultiple
	// ArgPositional is a single-valued positional slot.
	ArgPositional
)

func (k ArgKind) String() string {
	switch k {
	case ArgFlag:
		return "flag"
	case ArgSingle:
		return "single"
	case ArgMultiple:
		return "multiple"
	case ArgPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ArgumentDef declares a keyword option or a positional slot.
type ArgumentDef struct {
	Name       string // lookup key in ParseResult
	ShortName  string // "-v", may be empty
	LongName   string // "--verbose", may be empty
	Help       string
	Kind       ArgKind
	Required   bool
	Default    ArgValue
	IsHelpFlag bool
	Negates    string // set only on generated --no-* flags
}

// DisplayName renders the def as shown in help and error messages, e.g.
// "-o, --output <value>".
func (d *ArgumentDef) DisplayName() string {
	var b strings.Builder
	b.WriteString(d.ShortName)
	if d.LongName != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.LongName)
	}
	if b.Len() == 0 {
		b.WriteString(d.Name)
	}
	switch d.Kind {
	case ArgSingle:
		b.WriteString(" <value>")
	case ArgMultiple:
		b.WriteString(" <value>...")
	}
	return b.String()
}

func (d *ArgumentDef) shortKey() string { return strings.TrimPrefix(d.ShortName, "-") }

func (d *ArgumentDef) longKey() string { return strings.TrimPrefix(d.LongName, "--") }

// normalizeShort accepts "v" or "-v".
func normalizeShort(name string) string {
	if name == "" || strings.HasPrefix(name, "-") {
		return name
	}
	return "-" + name
}

// normalizeLong accepts "verbose" or "--verbose".
func normalizeLong(name string) string {
	if name == "" || strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + strings.TrimPrefix(name, "-")
}

// ArgBuilder configures one argument fluently. The argument is registered
// when Back is called or when the parent builder declares its next item.
type ArgBuilder struct {
	def        ArgumentDef
	positional bool
	parent     *CommandBuilder
	done       bool
}

// Short sets the short name ("v" or "-v").
func (b *ArgBuilder) Short(name string) *ArgBuilder {
	b.def.ShortName = normalizeShort(name)
	return b
}

// Long sets the long name ("verbose" or "--verbose").
func (b *ArgBuilder) Long(name string) *ArgBuilder {
	b.def.LongName = normalizeLong(name)
	return b
}

// Required marks the argument as mandatory.
func (b *ArgBuilder) Required() *ArgBuilder {
	b.def.Required = true
	return b
}

// Optional clears the required marker.
func (b *ArgBuilder) Optional() *ArgBuilder {
	b.def.Required = false
	return b
}

// Default sets the value used when the argument is not given. Setting a
// default on a positional makes it optional.
func (b *ArgBuilder) Default(v ArgValue) *ArgBuilder {
	b.def.Default = v
	if b.positional {
		b.def.Required = false
	}
	return b
}

// Back registers the argument and returns the parent command builder.
func (b *ArgBuilder) Back() *CommandBuilder {
	b.parent.flush()
	return b.parent
}

func (b *ArgBuilder) register() {
	if b.done {
		return
	}
	b.done = true
	var err error
	if b.positional {
		err = b.parent.command.AddPositional(b.def)
	} else {
		err = b.parent.command.AddKeyword(b.def)
	}
	b.parent.record(err)
}
