package snap

import (
	"fmt"
	"strings"

	"github.com/dzonerzy/go-pparse/lexer"
)

// JoinArgs turns an argv slice into a command line for the lexer. Arguments
// that already lex as one flag, word or number are kept as typed; anything
// else is quoted so it reaches the parser as a single string literal.
// "--name=value" keeps the flag bare and quotes only the value.
func JoinArgs(args []string) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		if strings.HasPrefix(arg, "--") {
			if name, value, ok := strings.Cut(arg, "="); ok && isBareToken(name) {
				b.WriteString(name)
				b.WriteByte('=')
				b.WriteString(quoteArg(value))
				continue
			}
		}
		b.WriteString(quoteArg(arg))
	}
	return b.String()
}

func quoteArg(arg string) string {
	if isBareToken(arg) {
		return arg
	}
	var b strings.Builder
	b.Grow(len(arg) + 2)
	b.WriteByte('"')
	for i := 0; i < len(arg); i++ {
		switch c := arg[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// isBareToken reports whether arg lexes as exactly one flag, identifier,
// keyword or number spanning the whole text.
func isBareToken(arg string) bool {
	if arg == "" {
		return false
	}
	toks, err := lexer.TokenizeString(arg, "<argv>")
	if err != nil || len(toks) != 2 {
		return false
	}
	tok := toks[0]
	if sp := tok.Span(); sp.Start != 0 || sp.End != len(arg) {
		return false
	}
	switch k := tok.Kind(); {
	case k.IsFlag(), k.IsKeyword():
		return true
	case k == lexer.KindIdentifier, k == lexer.KindIntLiteral, k == lexer.KindFloatLiteral:
		return true
	}
	return false
}

// ParseValue converts text to the value an argument of kind would bind if
// text were typed on the command line. Flags accept true or false, Single
// and positional slots take exactly one token and lists take every token
// as text.
func ParseValue(text string, kind ArgKind) (ArgValue, error) {
	toks, err := lexer.TokenizeString(text, "<value>")
	if err != nil {
		return ArgValue{}, err
	}
	toks = toks[:len(toks)-1]

	if kind == ArgMultiple {
		list := make([]string, 0, len(toks))
		for i := range toks {
			s, ok := tokenText(&toks[i])
			if !ok {
				return ArgValue{}, fmt.Errorf("%w: %q is not a list item", ErrInvalidValue, toks[i].Lexeme())
			}
			list = append(list, s)
		}
		return ArgValue{kind: ValueStringList, list: list}, nil
	}

	if len(toks) != 1 {
		return ArgValue{}, fmt.Errorf("%w: expected one value in %q", ErrInvalidValue, text)
	}
	v, ok := tokenValue(&toks[0])
	switch {
	case !ok:
		return ArgValue{}, fmt.Errorf("%w: %q", ErrInvalidValue, text)
	case kind == ArgFlag && v.Kind() != ValueBool:
		return ArgValue{}, fmt.Errorf("%w: flag expects true or false, got %q", ErrInvalidValue, text)
	}
	return v, nil
}
