package middleware

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ValidatorFunc is a business-logic check run before the handler. Structural
// checks (required options, value kinds) belong to the parser.
type ValidatorFunc func(res Result) error

// NamedValidator associates a human-readable name with a ValidatorFunc for
// clearer error reporting.
type NamedValidator struct {
	Name string
	Fn   ValidatorFunc
}

// Custom wraps an arbitrary ValidatorFunc with a name for reporting.
func Custom(name string, fn ValidatorFunc) NamedValidator {
	return NamedValidator{Name: name, Fn: fn}
}

// File returns a NamedValidator that ensures the given string arguments name
// existing files.
func File(names ...string) NamedValidator {
	return NamedValidator{Name: "file_exists", Fn: FileExists(names...)}
}

// Dir returns a NamedValidator that ensures the given string arguments name
// existing directories.
func Dir(names ...string) NamedValidator {
	return NamedValidator{Name: "directory_exists", Fn: DirectoryExists(names...)}
}

// Validate composes validators into a single Middleware. Validators run in
// the order given; the first failure stops the handler.
//
// Example:
//
//	cmd.Use(middleware.Validate(
//	    middleware.Custom("port_range", checkPort),
//	    middleware.File("config"),
//	))
func Validate(validators ...NamedValidator) Middleware {
	return func(next Handler) Handler {
		return func(res Result) (int, error) {
			for _, v := range validators {
				if v.Fn == nil {
					continue
				}
				if err := runValidator(v.Name, v.Fn, res); err != nil {
					return 0, err
				}
			}
			return next(res)
		}
	}
}

// Validator runs the validators registered through WithCustomValidators,
// sorted by name.
func Validator(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	names := make([]string, 0, len(config.CustomValidators))
	for name := range config.CustomValidators {
		names = append(names, name)
	}
	sort.Strings(names)
	validators := make([]NamedValidator, 0, len(names))
	for _, name := range names {
		validators = append(validators, NamedValidator{Name: name, Fn: config.CustomValidators[name]})
	}
	return Validate(validators...)
}

// WithCustomValidators adds custom validators to the middleware config
func WithCustomValidators(validators map[string]ValidatorFunc) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		if config.CustomValidators == nil {
			config.CustomValidators = make(map[string]ValidatorFunc)
		}
		for name, validator := range validators {
			config.CustomValidators[name] = validator
		}
	}
}

func runValidator(name string, fn ValidatorFunc, res Result) error {
	err := fn(res)
	if err == nil {
		return nil
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return &ValidationError{
		Field:   name,
		Message: "validation failed",
		Cause:   err,
	}
}

// ConditionalRequired makes names required when condition returns nil.
func ConditionalRequired(condition ValidatorFunc, names ...string) ValidatorFunc {
	return func(res Result) error {
		if condition(res) != nil {
			return nil
		}
		var missing []string
		for _, name := range names {
			if !res.Has(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{
				Field:   strings.Join(missing, ", "),
				Message: fmt.Sprintf("arguments required when condition is met: %s", strings.Join(missing, ", ")),
			}
		}
		return nil
	}
}

// FileExists creates a validator that ensures string arguments point to
// existing files. Unset arguments are skipped.
func FileExists(names ...string) ValidatorFunc {
	return pathValidator("file", validateFileExists, names)
}

// DirectoryExists creates a validator that ensures string arguments point to
// existing directories. Unset arguments are skipped.
func DirectoryExists(names ...string) ValidatorFunc {
	return pathValidator("directory", validateDirectoryExists, names)
}

func pathValidator(what string, check func(string) error, names []string) ValidatorFunc {
	return func(res Result) error {
		for _, name := range names {
			path, ok := res.String(name)
			if !ok || path == "" {
				continue
			}
			if err := check(path); err != nil {
				return &ValidationError{
					Field:   name,
					Value:   path,
					Message: fmt.Sprintf("%s validation failed for '%s'", what, name),
					Cause:   err,
				}
			}
		}
		return nil
	}
}

func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
