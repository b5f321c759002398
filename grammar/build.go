package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dzonerzy/go-pparse/middleware"
	"github.com/dzonerzy/go-pparse/snap"
)

type buildConfig struct {
	lookupEnv  func(string) (string, bool)
	handler    func(path string) snap.HandlerFunc
	middleware []middleware.Middleware
}

// BuildOption customizes Build.
type BuildOption func(*buildConfig)

// WithEnv replaces os.LookupEnv for options that name an env variable.
func WithEnv(lookup func(string) (string, bool)) BuildOption {
	return func(c *buildConfig) { c.lookupEnv = lookup }
}

// WithHandler attaches the handler returned for each command path. A nil
// handler leaves the command without one.
func WithHandler(fn func(path string) snap.HandlerFunc) BuildOption {
	return func(c *buildConfig) { c.handler = fn }
}

// WithMiddleware wraps every handler of the built app.
func WithMiddleware(mw ...middleware.Middleware) BuildOption {
	return func(c *buildConfig) { c.middleware = append(c.middleware, mw...) }
}

// Build turns g into an application. Grammar errors and registration
// errors are returned together.
func Build(g *Command, opts ...BuildOption) (*snap.App, error) {
	cfg := &buildConfig{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(cfg)
	}

	app := snap.New(g.Name, g.Help)
	if len(cfg.middleware) > 0 {
		app.Use(cfg.middleware...)
	}
	var errs []error
	declare(app.CommandBuilder, g, g.Name, cfg, &errs)
	if err := app.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return app, nil
}

func declare(b *snap.CommandBuilder, c *Command, path string, cfg *buildConfig, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, fmt.Errorf("%w: %s: "+format, append([]any{ErrInvalid, path}, args...)...))
	}

	for _, o := range c.Options {
		kind, ok := optionKind(o.Kind)
		if !ok {
			fail("option %q: unknown kind %q", o.Name, o.Kind)
			continue
		}
		def, err := toValue(o.Default, kind)
		if err != nil {
			fail("option %q: %v", o.Name, err)
			continue
		}
		if o.Env != "" {
			if text, set := cfg.lookupEnv(o.Env); set {
				if def, err = snap.ParseValue(text, kind); err != nil {
					fail("option %q: $%s: %w", o.Name, o.Env, err)
					continue
				}
			}
		}

		var ab *snap.ArgBuilder
		switch kind {
		case snap.ArgFlag:
			ab = b.Flag(o.Name, o.Help)
		case snap.ArgMultiple:
			ab = b.List(o.Name, o.Help)
		default:
			ab = b.Option(o.Name, o.Help)
		}
		short, long := o.Short, o.Long
		if short == "" && long == "" {
			long = strings.ReplaceAll(o.Name, "_", "-")
		}
		if short != "" {
			ab.Short(short)
		}
		if long != "" {
			ab.Long(long)
		}
		if o.Required {
			ab.Required()
		}
		if !def.IsNone() {
			ab.Default(def)
		}
	}

	for _, a := range c.Arguments {
		kind := snap.ArgPositional
		if a.Variadic {
			kind = snap.ArgMultiple
		}
		def, err := toValue(a.Default, kind)
		if err != nil {
			fail("argument %q: %v", a.Name, err)
			continue
		}
		var ab *snap.ArgBuilder
		if a.Variadic {
			ab = b.Args(a.Name, a.Help)
		} else {
			ab = b.Arg(a.Name, a.Help)
		}
		if a.Optional {
			ab.Optional()
		}
		if !def.IsNone() {
			ab.Default(def)
		}
	}

	if cfg.handler != nil {
		if h := cfg.handler(path); h != nil {
			b.Handler(h)
		}
	}

	for i := range c.Commands {
		sub := &c.Commands[i]
		sb := b.Command(sub.Name, sub.Help)
		if len(sub.Aliases) > 0 {
			sb.Alias(sub.Aliases...)
		}
		declare(sb, sub, path+" "+sub.Name, cfg, errs)
	}
}

func optionKind(s string) (snap.ArgKind, bool) {
	switch strings.ToLower(s) {
	case "", "single", "option":
		return snap.ArgSingle, true
	case "flag", "bool":
		return snap.ArgFlag, true
	case "multiple", "list":
		return snap.ArgMultiple, true
	}
	return 0, false
}

// toValue converts a decoded default. Decoders disagree on number types:
// YAML yields int, TOML int64 and JSON json.Number.
func toValue(raw any, kind snap.ArgKind) (snap.ArgValue, error) {
	var v snap.ArgValue
	switch x := raw.(type) {
	case nil:
		return snap.NoneValue(), nil
	case bool:
		v = snap.BoolValue(x)
	case int:
		v = snap.IntValue(int64(x))
	case int64:
		v = snap.IntValue(x)
	case uint64:
		if x > math.MaxInt64 {
			return v, fmt.Errorf("default %d out of 64-bit signed range", x)
		}
		v = snap.IntValue(int64(x))
	case float64:
		v = snap.FloatValue(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			v = snap.IntValue(n)
		} else if f, err := x.Float64(); err == nil {
			v = snap.FloatValue(f)
		} else {
			return v, fmt.Errorf("bad number %q", x)
		}
	case string:
		v = snap.StringValue(x)
	case []string:
		v = snap.StringListValue(x)
	case []any:
		list := make([]string, len(x))
		for i, item := range x {
			list[i] = fmt.Sprint(item)
		}
		v = snap.StringListValue(list)
	default:
		return v, fmt.Errorf("unsupported default %T", raw)
	}

	switch {
	case kind == snap.ArgFlag && v.Kind() != snap.ValueBool:
		return v, fmt.Errorf("flag default must be true or false, got %s", v)
	case kind == snap.ArgMultiple && v.Kind() == snap.ValueString:
		s, _ := v.Str()
		return snap.StringListValue([]string{s}), nil
	case kind == snap.ArgMultiple && v.Kind() != snap.ValueStringList:
		return v, fmt.Errorf("list default must be a list, got %s", v)
	case kind != snap.ArgMultiple && v.Kind() == snap.ValueStringList:
		return v, fmt.Errorf("list default on a single-valued argument")
	}
	return v, nil
}
