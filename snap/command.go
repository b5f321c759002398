package snap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dzonerzy/go-pparse/internal/intern"
	"github.com/dzonerzy/go-pparse/middleware"
)

// HandlerFunc runs after a successful parse; its return value becomes the
// result's exit code.
type HandlerFunc func(res *ParseResult) int

const helpName = "help"

// Command is a node of the grammar tree. It owns its keyword options,
// positional slots and subcommands.
type Command struct {
	name    string
	help    string
	aliases []string

	keywords    []*ArgumentDef // declaration order, help first
	positionals []*ArgumentDef
	names       map[string]*ArgumentDef // keyword and positional names
	shorts      map[string]*ArgumentDef // short name without "-"
	longs       map[string]*ArgumentDef // long name without "--"

	subcommands map[string]*Command
	parent      *Command

	handler    HandlerFunc
	middleware []middleware.Middleware
}

// NewCommand creates a detached command with the built-in help flag.
func NewCommand(name, help string) *Command {
	c := &Command{
		name:        intern.Intern(name),
		help:        help,
		names:       make(map[string]*ArgumentDef),
		shorts:      make(map[string]*ArgumentDef),
		longs:       make(map[string]*ArgumentDef),
		subcommands: make(map[string]*Command),
	}
	c.insertKeyword(&ArgumentDef{
		Name:       helpName,
		ShortName:  "-h",
		LongName:   "--help",
		Help:       "Show this help message and exit",
		Kind:       ArgFlag,
		Default:    BoolValue(false),
		IsHelpFlag: true,
	})
	return c
}

// Name returns the command name.
func (c *Command) Name() string { return c.name }

// Help returns the one-line description.
func (c *Command) Help() string { return c.help }

// Description is an alias of Help.
func (c *Command) Description() string { return c.help }

// Aliases returns the alternative names.
func (c *Command) Aliases() []string { return append([]string(nil), c.aliases...) }

// Parent returns the enclosing command, or nil for the root.
func (c *Command) Parent() *Command { return c.parent }

// Path returns the space separated names from the root, e.g. "git commit".
func (c *Command) Path() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.Path() + " " + c.name
}

// Keywords returns copies of the keyword definitions in declaration order.
func (c *Command) Keywords() []ArgumentDef {
	out := make([]ArgumentDef, len(c.keywords))
	for i, d := range c.keywords {
		out[i] = *d
	}
	return out
}

// Positionals returns copies of the positional definitions in order.
func (c *Command) Positionals() []ArgumentDef {
	out := make([]ArgumentDef, len(c.positionals))
	for i, d := range c.positionals {
		out[i] = *d
	}
	return out
}

// Keyword looks up a keyword definition by name.
func (c *Command) Keyword(name string) (ArgumentDef, bool) {
	d, ok := c.names[name]
	if !ok || c.isPositional(d) {
		return ArgumentDef{}, false
	}
	return *d, true
}

// Subcommand returns the direct subcommand called name, ignoring aliases.
func (c *Command) Subcommand(name string) *Command { return c.subcommands[name] }

// Subcommands returns the direct subcommands sorted by name.
func (c *Command) Subcommands() []*Command {
	names := make([]string, 0, len(c.subcommands))
	for name := range c.subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Command, len(names))
	for i, name := range names {
		out[i] = c.subcommands[name]
	}
	return out
}

// HasHandler reports whether a handler is attached.
func (c *Command) HasHandler() bool { return c.handler != nil }

func (c *Command) isPositional(d *ArgumentDef) bool {
	for _, p := range c.positionals {
		if p == d {
			return true
		}
	}
	return false
}

// AddKeyword registers a keyword option. A Flag whose long name is set and
// whose default is true also gets a "--no-<name>" companion; both are
// registered or neither is.
func (c *Command) AddKeyword(def ArgumentDef) error {
	def.ShortName = normalizeShort(def.ShortName)
	def.LongName = normalizeLong(def.LongName)
	def.IsHelpFlag = false
	if def.Kind == ArgPositional {
		def.Kind = ArgSingle
	}
	if def.Kind == ArgFlag && def.Default.IsNone() {
		def.Default = BoolValue(false)
	}
	if err := validateNames(&def); err != nil {
		return err
	}

	defs := []*ArgumentDef{&def}
	if neg := negationFor(&def); neg != nil {
		defs = append(defs, neg)
	}
	if err := c.checkKeywords(defs); err != nil {
		return err
	}
	for _, d := range defs {
		c.insertKeyword(d)
	}
	return nil
}

// AddPositional appends a positional slot. Flag kinds are rejected; Single
// is stored as ArgPositional.
func (c *Command) AddPositional(def ArgumentDef) error {
	switch def.Kind {
	case ArgFlag:
		return fmt.Errorf("%w: %q", ErrPositionalFlag, def.Name)
	case ArgSingle:
		def.Kind = ArgPositional
	}
	if def.ShortName != "" || def.LongName != "" {
		return fmt.Errorf("%w: positional %q cannot have option names", ErrInvalidName, def.Name)
	}
	def.IsHelpFlag = false
	if err := validateNames(&def); err != nil {
		return err
	}
	if def.Name == helpName {
		return fmt.Errorf("%w: %q", ErrReservedName, def.Name)
	}
	if _, dup := c.names[def.Name]; dup {
		return fmt.Errorf("%w: name %q in %q", ErrDuplicateArgument, def.Name, c.Path())
	}
	def.Name = intern.Intern(def.Name)
	d := def
	c.positionals = append(c.positionals, &d)
	c.names[d.Name] = &d
	return nil
}

// AddSubcommand attaches sub below c. Names and aliases must be unique among
// siblings.
func (c *Command) AddSubcommand(sub *Command) error {
	if sub == nil || sub.name == "" {
		return fmt.Errorf("%w: empty command name", ErrInvalidName)
	}
	if sub.parent != nil {
		return fmt.Errorf("%w: %q", ErrCommandAttached, sub.name)
	}
	for p := c; p != nil; p = p.parent {
		if p == sub {
			return fmt.Errorf("%w: %q would contain itself", ErrCommandAttached, sub.name)
		}
	}
	if _, dup := c.subcommands[sub.name]; dup {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateSubcommand, sub.name, c.Path())
	}
	if owner := c.aliasOwner(sub.name, nil); owner != nil {
		return fmt.Errorf("%w: %q is an alias of %q", ErrAliasConflict, sub.name, owner.name)
	}
	for _, alias := range sub.aliases {
		if err := c.checkAlias(alias, sub); err != nil {
			return err
		}
	}
	sub.parent = c
	c.subcommands[sub.name] = sub
	return nil
}

// AddAlias adds an alternative name. It fails when a sibling already uses
// alias as its name or alias.
func (c *Command) AddAlias(alias string) error {
	if alias == "" || strings.ContainsAny(alias, " \t\n") {
		return fmt.Errorf("%w: alias %q", ErrInvalidName, alias)
	}
	if alias == c.name {
		return nil
	}
	for _, a := range c.aliases {
		if a == alias {
			return nil
		}
	}
	if c.parent != nil {
		if err := c.parent.checkAlias(alias, c); err != nil {
			return err
		}
	}
	c.aliases = append(c.aliases, intern.Intern(alias))
	return nil
}

// SetHandler attaches the function run on a successful parse.
func (c *Command) SetHandler(fn HandlerFunc) { c.handler = fn }

// Use appends middleware run around this command's handler.
func (c *Command) Use(mw ...middleware.Middleware) {
	c.middleware = append(c.middleware, mw...)
}

// checkAlias verifies that alias, about to belong to child, is not a name
// or alias of another child of c.
func (c *Command) checkAlias(alias string, child *Command) error {
	if other, ok := c.subcommands[alias]; ok && other != child {
		return fmt.Errorf("%w: %q is the name of a command in %q", ErrAliasConflict, alias, c.Path())
	}
	if owner := c.aliasOwner(alias, child); owner != nil {
		return fmt.Errorf("%w: %q is already an alias of %q", ErrAliasConflict, alias, owner.name)
	}
	return nil
}

// aliasOwner returns the child of c, other than skip, that lists alias.
func (c *Command) aliasOwner(alias string, skip *Command) *Command {
	for _, sub := range c.subcommands {
		if sub == skip {
			continue
		}
		for _, a := range sub.aliases {
			if a == alias {
				return sub
			}
		}
	}
	return nil
}

func (c *Command) checkKeywords(defs []*ArgumentDef) error {
	seenNames := make(map[string]bool, len(defs))
	seenShort := make(map[string]bool, len(defs))
	seenLong := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Name == helpName {
			return fmt.Errorf("%w: %q", ErrReservedName, d.Name)
		}
		if _, dup := c.names[d.Name]; dup || seenNames[d.Name] {
			return fmt.Errorf("%w: name %q in %q", ErrDuplicateArgument, d.Name, c.Path())
		}
		seenNames[d.Name] = true
		if k := d.shortKey(); k != "" {
			if _, dup := c.shorts[k]; dup || seenShort[k] {
				return fmt.Errorf("%w: short name %q in %q", ErrDuplicateArgument, d.ShortName, c.Path())
			}
			seenShort[k] = true
		}
		if k := d.longKey(); k != "" {
			if _, dup := c.longs[k]; dup || seenLong[k] {
				return fmt.Errorf("%w: long name %q in %q", ErrDuplicateArgument, d.LongName, c.Path())
			}
			seenLong[k] = true
		}
	}
	return nil
}

func (c *Command) insertKeyword(d *ArgumentDef) {
	d.Name = intern.Intern(d.Name)
	c.keywords = append(c.keywords, d)
	c.names[d.Name] = d
	if k := d.shortKey(); k != "" {
		c.shorts[intern.Intern(k)] = d
	}
	if k := d.longKey(); k != "" {
		c.longs[intern.Intern(k)] = d
	}
}

func validateNames(d *ArgumentDef) error {
	if d.Name == "" || strings.ContainsAny(d.Name, " \t\n") {
		return fmt.Errorf("%w: argument name %q", ErrInvalidName, d.Name)
	}
	if d.ShortName != "" && d.shortKey() == "" {
		return fmt.Errorf("%w: short name %q", ErrInvalidName, d.ShortName)
	}
	if d.LongName != "" && d.longKey() == "" {
		return fmt.Errorf("%w: long name %q", ErrInvalidName, d.LongName)
	}
	return nil
}

// negationFor returns the "--no-<name>" companion of a true-by-default flag.
func negationFor(d *ArgumentDef) *ArgumentDef {
	if d.Kind != ArgFlag || d.LongName == "" || d.Negates != "" {
		return nil
	}
	if on, _ := d.Default.Bool(); !on {
		return nil
	}
	return &ArgumentDef{
		Name:     "no_" + d.Name,
		LongName: "--no-" + d.longKey(),
		Help:     "Disable " + d.LongName,
		Kind:     ArgFlag,
		Default:  BoolValue(false),
		Negates:  d.Name,
	}
}

// CommandBuilder declares a command fluently. Registration errors are
// collected on the App and reported by App.Err.
type CommandBuilder struct {
	command *Command
	app     *App
	parent  *CommandBuilder
	pending *ArgBuilder
}

// flush registers the argument currently being configured, if any.
func (c *CommandBuilder) flush() {
	if c.pending != nil {
		c.pending.register()
		c.pending = nil
	}
}

func (c *CommandBuilder) record(err error) {
	if err != nil && c.app != nil {
		c.app.errs = append(c.app.errs, err)
	}
}

func (c *CommandBuilder) newArg(name, help string, kind ArgKind, positional bool) *ArgBuilder {
	c.flush()
	b := &ArgBuilder{
		def:        ArgumentDef{Name: name, Help: help, Kind: kind, Required: positional},
		positional: positional,
		parent:     c,
	}
	c.pending = b
	return b
}

// Flag declares a boolean switch, false by default.
func (c *CommandBuilder) Flag(name, help string) *ArgBuilder {
	return c.newArg(name, help, ArgFlag, false)
}

// Option declares a keyword option taking one value.
func (c *CommandBuilder) Option(name, help string) *ArgBuilder {
	return c.newArg(name, help, ArgSingle, false)
}

// List declares a keyword option that collects values until the next flag.
func (c *CommandBuilder) List(name, help string) *ArgBuilder {
	return c.newArg(name, help, ArgMultiple, false)
}

// Arg declares a required single positional. Give it a Default or call
// Optional to make it optional.
func (c *CommandBuilder) Arg(name, help string) *ArgBuilder {
	return c.newArg(name, help, ArgPositional, true)
}

// Args declares a required variadic positional.
func (c *CommandBuilder) Args(name, help string) *ArgBuilder {
	return c.newArg(name, help, ArgMultiple, true)
}

// Command declares a subcommand and returns its builder. Use Back to
// return to this builder.
func (c *CommandBuilder) Command(name, help string) *CommandBuilder {
	c.flush()
	sub := NewCommand(name, help)
	c.record(c.command.AddSubcommand(sub))
	b := &CommandBuilder{command: sub, app: c.app, parent: c}
	if c.app != nil {
		c.app.builders = append(c.app.builders, b)
	}
	return b
}

// Alias adds alternative names for this command.
func (c *CommandBuilder) Alias(aliases ...string) *CommandBuilder {
	c.flush()
	for _, a := range aliases {
		c.record(c.command.AddAlias(a))
	}
	return c
}

// Handler sets the function run when this command is the dispatched one.
func (c *CommandBuilder) Handler(fn HandlerFunc) *CommandBuilder {
	c.flush()
	c.command.SetHandler(fn)
	return c
}

// Use adds middleware around this command's handler.
func (c *CommandBuilder) Use(mw ...middleware.Middleware) *CommandBuilder {
	c.flush()
	c.command.Use(mw...)
	return c
}

// Back returns the parent command builder, or c itself for the root.
func (c *CommandBuilder) Back() *CommandBuilder {
	c.flush()
	if c.parent == nil {
		return c
	}
	return c.parent
}

// App returns the owning application.
func (c *CommandBuilder) App() *App {
	c.flush()
	return c.app
}

// Build finishes pending declarations and returns the command.
func (c *CommandBuilder) Build() *Command {
	c.flush()
	return c.command
}
