// Package grammar loads command-line grammars from YAML, TOML or JSON files
// and builds snap applications from them.
package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("unknown grammar format")
	ErrInvalid       = errors.New("invalid grammar")
)

// Format is a grammar file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Command describes one node of the tree. The root's Name is the program
// name.
type Command struct {
	Name      string     `yaml:"name"                toml:"name"                json:"name"`
	Help      string     `yaml:"help,omitempty"      toml:"help,omitempty"      json:"help,omitempty"`
	Aliases   []string   `yaml:"aliases,omitempty"   toml:"aliases,omitempty"   json:"aliases,omitempty"`
	Options   []Option   `yaml:"options,omitempty"   toml:"options,omitempty"   json:"options,omitempty"`
	Arguments []Argument `yaml:"arguments,omitempty" toml:"arguments,omitempty" json:"arguments,omitempty"`
	Commands  []Command  `yaml:"commands,omitempty"  toml:"commands,omitempty"  json:"commands,omitempty"`
}

// Option is a keyword argument. Kind is "flag", "single" or "multiple";
// empty means single. Env names a variable whose text overrides Default.
type Option struct {
	Name     string `yaml:"name"               toml:"name"               json:"name"`
	Short    string `yaml:"short,omitempty"    toml:"short,omitempty"    json:"short,omitempty"`
	Long     string `yaml:"long,omitempty"     toml:"long,omitempty"     json:"long,omitempty"`
	Help     string `yaml:"help,omitempty"     toml:"help,omitempty"     json:"help,omitempty"`
	Kind     string `yaml:"kind,omitempty"     toml:"kind,omitempty"     json:"kind,omitempty"`
	Required bool   `yaml:"required,omitempty" toml:"required,omitempty" json:"required,omitempty"`
	Default  any    `yaml:"default,omitempty"  toml:"default,omitempty"  json:"default,omitempty"`
	Env      string `yaml:"env,omitempty"      toml:"env,omitempty"      json:"env,omitempty"`
}

// Argument is a positional slot. Arguments are required unless Optional is
// set or a Default is given.
type Argument struct {
	Name     string `yaml:"name"               toml:"name"               json:"name"`
	Help     string `yaml:"help,omitempty"     toml:"help,omitempty"     json:"help,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty" toml:"variadic,omitempty" json:"variadic,omitempty"`
	Optional bool   `yaml:"optional,omitempty" toml:"optional,omitempty" json:"optional,omitempty"`
	Default  any    `yaml:"default,omitempty"  toml:"default,omitempty"  json:"default,omitempty"`
}

// Load reads and decodes the grammar at path.
func Load(path string) (*Command, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Decode reads a grammar in the given format. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (*Command, error) {
	var g Command
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&g)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, keys[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if g.Name == "" {
		return nil, fmt.Errorf("%w: root command has no name", ErrInvalid)
	}
	return &g, nil
}

// Encode writes g in the given format.
func Encode(w io.Writer, g *Command, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(g)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
