//nolint:testpackage // using package name 'snap' to access unexported fields for testing
package snap

import (
	"errors"
	"testing"
)

func TestAddKeywordErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []ArgumentDef
		want error
	}{
		{
			name: "reserved help",
			defs: []ArgumentDef{{Name: "help", Kind: ArgFlag}},
			want: ErrReservedName,
		},
		{
			name: "help short taken",
			defs: []ArgumentDef{{Name: "host", ShortName: "-h", Kind: ArgSingle}},
			want: ErrDuplicateArgument,
		},
		{
			name: "duplicate name",
			defs: []ArgumentDef{{Name: "out", Kind: ArgSingle}, {Name: "out", Kind: ArgFlag}},
			want: ErrDuplicateArgument,
		},
		{
			name: "duplicate long",
			defs: []ArgumentDef{{Name: "a", LongName: "--x", Kind: ArgFlag}, {Name: "b", LongName: "x", Kind: ArgFlag}},
			want: ErrDuplicateArgument,
		},
		{
			name: "empty name",
			defs: []ArgumentDef{{Name: "", Kind: ArgFlag}},
			want: ErrInvalidName,
		},
		{
			name: "dash only long name",
			defs: []ArgumentDef{{Name: "x", LongName: "--", Kind: ArgFlag}},
			want: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand("tool", "")
			var err error
			for _, d := range tt.defs {
				if err = cmd.AddKeyword(d); err != nil {
					break
				}
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAddKeywordNormalizes(t *testing.T) {
	cmd := NewCommand("tool", "")
	if err := cmd.AddKeyword(ArgumentDef{Name: "level", ShortName: "l", LongName: "level", Kind: ArgPositional}); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if err := cmd.AddKeyword(ArgumentDef{Name: "quiet", LongName: "--quiet", Kind: ArgFlag}); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}

	d, _ := cmd.Keyword("level")
	if d.ShortName != "-l" || d.LongName != "--level" || d.Kind != ArgSingle {
		t.Errorf("Unexpected normalized definition: %+v", d)
	}
	q, _ := cmd.Keyword("quiet")
	if b, ok := q.Default.Bool(); !ok || b {
		t.Errorf("Expected flag default false, got %v", q.Default)
	}
	if _, ok := cmd.Keyword("no_quiet"); ok {
		t.Error("Expected no negation for a false-by-default flag")
	}
	kws := cmd.Keywords()
	if len(kws) != 3 || !kws[0].IsHelpFlag {
		t.Errorf("Expected help first and 3 keywords, got %d", len(kws))
	}
}

func TestNegationCollisionIsAtomic(t *testing.T) {
	cmd := NewCommand("tool", "")
	if err := cmd.AddKeyword(ArgumentDef{Name: "no_color", Kind: ArgFlag}); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	err := cmd.AddKeyword(ArgumentDef{Name: "color", LongName: "--color", Kind: ArgFlag, Default: BoolValue(true)})
	if !errors.Is(err, ErrDuplicateArgument) {
		t.Fatalf("Expected duplicate argument, got %v", err)
	}
	if _, ok := cmd.Keyword("color"); ok {
		t.Error("Expected 'color' not to be registered after a negation collision")
	}
	if _, ok := cmd.longs["color"]; ok {
		t.Error("Expected '--color' not to be registered after a negation collision")
	}
}

func TestNegationIsNotNegated(t *testing.T) {
	cmd := NewCommand("tool", "")
	if err := cmd.AddKeyword(ArgumentDef{Name: "cache", LongName: "cache", Kind: ArgFlag, Default: BoolValue(true)}); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if _, ok := cmd.Keyword("no_no_cache"); ok {
		t.Error("Expected negation flags not to be negated again")
	}
	d, _ := cmd.Keyword("no_cache")
	if d.Help != "Disable --cache" {
		t.Errorf("Expected generated help, got %q", d.Help)
	}
}

func TestAddPositionalErrors(t *testing.T) {
	cmd := NewCommand("tool", "")
	if err := cmd.AddPositional(ArgumentDef{Name: "on", Kind: ArgFlag}); !errors.Is(err, ErrPositionalFlag) {
		t.Errorf("Expected ErrPositionalFlag, got %v", err)
	}
	if err := cmd.AddPositional(ArgumentDef{Name: "help", Kind: ArgPositional}); !errors.Is(err, ErrReservedName) {
		t.Errorf("Expected ErrReservedName, got %v", err)
	}
	if err := cmd.AddPositional(ArgumentDef{Name: "src", LongName: "--src", Kind: ArgPositional}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
	if err := cmd.AddPositional(ArgumentDef{Name: "src", Kind: ArgSingle}); err != nil {
		t.Fatalf("AddPositional: %v", err)
	}
	if err := cmd.AddPositional(ArgumentDef{Name: "src", Kind: ArgPositional}); !errors.Is(err, ErrDuplicateArgument) {
		t.Errorf("Expected ErrDuplicateArgument, got %v", err)
	}
	if p := cmd.Positionals(); len(p) != 1 || p[0].Kind != ArgPositional {
		t.Errorf("Expected one ArgPositional slot, got %+v", p)
	}
	if _, ok := cmd.Keyword("src"); ok {
		t.Error("Expected positional not to be reported as a keyword")
	}
}

func TestAddSubcommandErrors(t *testing.T) {
	root := NewCommand("git", "")
	add := NewCommand("add", "")
	if err := root.AddSubcommand(add); err != nil {
		t.Fatalf("AddSubcommand: %v", err)
	}
	if err := root.AddSubcommand(NewCommand("add", "")); !errors.Is(err, ErrDuplicateSubcommand) {
		t.Errorf("Expected ErrDuplicateSubcommand, got %v", err)
	}
	if err := NewCommand("other", "").AddSubcommand(add); !errors.Is(err, ErrCommandAttached) {
		t.Errorf("Expected ErrCommandAttached, got %v", err)
	}
	if err := add.AddSubcommand(root); !errors.Is(err, ErrCommandAttached) {
		t.Errorf("Expected cycle to be rejected, got %v", err)
	}
	if err := root.AddSubcommand(NewCommand("", "")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
	if add.Parent() != root || add.Path() != "git add" {
		t.Errorf("Expected 'git add', got %q", add.Path())
	}
}

func TestAliasConflicts(t *testing.T) {
	root := NewCommand("git", "")
	commit := NewCommand("commit", "")
	checkout := NewCommand("checkout", "")
	for _, c := range []*Command{commit, checkout} {
		if err := root.AddSubcommand(c); err != nil {
			t.Fatalf("AddSubcommand: %v", err)
		}
	}

	if err := commit.AddAlias("ci"); err != nil {
		t.Fatalf("AddAlias: %v", err)
	}
	if err := commit.AddAlias("ci"); err != nil {
		t.Errorf("Expected repeated alias to be a no-op, got %v", err)
	}
	if err := checkout.AddAlias("ci"); !errors.Is(err, ErrAliasConflict) {
		t.Errorf("Expected alias conflict with sibling alias, got %v", err)
	}
	if err := checkout.AddAlias("commit"); !errors.Is(err, ErrAliasConflict) {
		t.Errorf("Expected alias conflict with sibling name, got %v", err)
	}
	if err := root.AddSubcommand(NewCommand("ci", "")); !errors.Is(err, ErrAliasConflict) {
		t.Errorf("Expected name conflict with sibling alias, got %v", err)
	}

	pending := NewCommand("cherry-pick", "")
	if err := pending.AddAlias("co"); err != nil {
		t.Fatalf("AddAlias on detached command: %v", err)
	}
	if err := checkout.AddAlias("co"); err != nil {
		t.Fatalf("AddAlias: %v", err)
	}
	if err := root.AddSubcommand(pending); !errors.Is(err, ErrAliasConflict) {
		t.Errorf("Expected alias conflict on attach, got %v", err)
	}
	if got := commit.Aliases(); len(got) != 1 || got[0] != "ci" {
		t.Errorf("Expected aliases [ci], got %v", got)
	}
}

func TestBuilderRecordsErrors(t *testing.T) {
	app := New("tool", "")
	app.Flag("help", "")
	app.Command("run", "").Alias("r")
	app.Command("remove", "").Alias("r")
	app.Command("run", "")

	err := app.Err()
	if !errors.Is(err, ErrReservedName) {
		t.Errorf("Expected ErrReservedName in %v", err)
	}
	if !errors.Is(err, ErrAliasConflict) {
		t.Errorf("Expected ErrAliasConflict in %v", err)
	}
	if !errors.Is(err, ErrDuplicateSubcommand) {
		t.Errorf("Expected ErrDuplicateSubcommand in %v", err)
	}
}

func TestBuilderFlushesPendingArguments(t *testing.T) {
	app := New("tool", "")
	sub := app.Command("serve", "")
	sub.Option("port", "").Long("port").Default(IntValue(8080))
	app.Flag("quiet", "").Short("q")

	if err := app.Err(); err != nil {
		t.Fatalf("Unexpected registration error: %v", err)
	}
	if _, ok := app.Root().Keyword("quiet"); !ok {
		t.Error("Expected root flag to be registered")
	}
	d, ok := app.Root().Subcommand("serve").Keyword("port")
	if !ok {
		t.Fatal("Expected subcommand option to be registered")
	}
	if n, _ := d.Default.Int(); n != 8080 {
		t.Errorf("Expected default 8080, got %d", n)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		def  ArgumentDef
		want string
	}{
		{ArgumentDef{Name: "v", ShortName: "-v", LongName: "--verbose", Kind: ArgFlag}, "-v, --verbose"},
		{ArgumentDef{Name: "o", ShortName: "-o", Kind: ArgSingle}, "-o <value>"},
		{ArgumentDef{Name: "f", LongName: "--file", Kind: ArgMultiple}, "--file <value>..."},
		{ArgumentDef{Name: "input", Kind: ArgPositional}, "input"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.def.DisplayName(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
