package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dzonerzy/go-pparse/lexer"
	"github.com/dzonerzy/go-pparse/snap"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", f)
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(w)
}

type tokenView struct {
	Kind   string `json:"kind"   yaml:"kind"`
	Text   string `json:"text"   yaml:"text"`
	Start  int    `json:"start"  yaml:"start"`
	End    int    `json:"end"    yaml:"end"`
	Line   int    `json:"line"   yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

func tokenViews(src *lexer.Source, toks []lexer.Token) []tokenView {
	views := make([]tokenView, len(toks))
	for i, tok := range toks {
		loc := src.LocationAt(tok.Span().Start)
		views[i] = tokenView{
			Kind:   tok.Kind().String(),
			Text:   tok.String(),
			Start:  tok.Span().Start,
			End:    tok.Span().End,
			Line:   loc.Line,
			Column: loc.Column,
		}
	}
	return views
}

type errorView struct {
	Type    string `json:"type"           yaml:"type"`
	Message string `json:"message"        yaml:"message"`
	Flag    string `json:"flag,omitempty" yaml:"flag,omitempty"`
	Arg     string `json:"arg,omitempty"  yaml:"arg,omitempty"`
	Command string `json:"command"        yaml:"command"`
	Start   int    `json:"start"          yaml:"start"`
	End     int    `json:"end"            yaml:"end"`
}

type resultView struct {
	Status       string         `json:"status"                  yaml:"status"`
	Command      string         `json:"command"                 yaml:"command"`
	ExitCode     int            `json:"exit_code"               yaml:"exit_code"`
	Keywords     map[string]any `json:"keywords,omitempty"      yaml:"keywords,omitempty"`
	Positionals  []any          `json:"positionals,omitempty"   yaml:"positionals,omitempty"`
	Error        *errorView     `json:"error,omitempty"         yaml:"error,omitempty"`
	HandlerError string         `json:"handler_error,omitempty" yaml:"handler_error,omitempty"`
}

func newResultView(res *snap.ParseResult, code int) resultView {
	v := resultView{
		Status:   res.Status.String(),
		Command:  res.CommandPath(),
		ExitCode: code,
	}
	if len(res.Keywords) > 0 {
		v.Keywords = make(map[string]any, len(res.Keywords))
		for name, val := range res.Keywords {
			v.Keywords[name] = val.Interface()
		}
	}
	for _, val := range res.Positionals {
		v.Positionals = append(v.Positionals, val.Interface())
	}
	if pe := res.Err; pe != nil {
		v.Error = &errorView{
			Type:    string(pe.Type),
			Message: pe.Message,
			Flag:    pe.Flag,
			Arg:     pe.Arg,
			Command: pe.Command,
			Start:   pe.Span.Start,
			End:     pe.Span.End,
		}
	}
	if res.HandlerErr != nil {
		v.HandlerError = res.HandlerErr.Error()
	}
	return v
}

// writeResultText prints one "name = value" line per bound value, sorted.
func writeResultText(w io.Writer, v resultView) error {
	if _, err := fmt.Fprintf(w, "status: %s\ncommand: %s\nexit code: %d\n", v.Status, v.Command, v.ExitCode); err != nil {
		return err
	}
	for _, name := range sortedKeys(v.Keywords) {
		fmt.Fprintf(w, "  %s = %v\n", name, v.Keywords[name])
	}
	for i, p := range v.Positionals {
		fmt.Fprintf(w, "  [%d] = %v\n", i, p)
	}
	if v.Error != nil {
		fmt.Fprintf(w, "error (%s): %s\n", v.Error.Type, v.Error.Message)
	}
	if v.HandlerError != "" {
		fmt.Fprintf(w, "handler error: %s\n", v.HandlerError)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
