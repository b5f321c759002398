package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Kind identifies the type of a token.
type Kind int

const (
	KindEOF Kind = iota

	// Keywords
	KindIf
	KindElse
	KindFor
	KindIn
	KindWhile
	KindBreak
	KindReturn
	KindInt
	KindBool
	KindString
	KindAnd
	KindOr
	KindNot
	KindTrue
	KindFalse

	// Operators
	KindAssign      // =
	KindPlus        // +
	KindMinus       // -
	KindDoubleMinus // --
	KindTimes       // *
	KindDivide      // /
	KindModulo      // %
	KindShl         // <<
	KindShr         // >>
	KindLess        // <
	KindGreater     // >
	KindLessEq      // <=
	KindGreaterEq   // >=
	KindEq          // ==
	KindNotEq       // !=
	KindBang        // !

	// Punctuation
	KindLParen   // (
	KindRParen   // )
	KindLBrace   // {
	KindRBrace   // }
	KindLBracket // [
	KindRBracket // ]
	KindSemi     // ;
	KindColon    // :
	KindComma    // ,
	KindDot      // .

	// Payload-carrying kinds
	KindIdentifier
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindShortFlag
	KindLongFlag
)

// fixedText holds the printed form of every kind without a payload.
var fixedText = map[Kind]string{
	KindEOF:         "<EOF>",
	KindIf:          "if",
	KindElse:        "else",
	KindFor:         "for",
	KindIn:          "in",
	KindWhile:       "while",
	KindBreak:       "break",
	KindReturn:      "return",
	KindInt:         "int",
	KindBool:        "bool",
	KindString:      "string",
	KindAnd:         "and",
	KindOr:          "or",
	KindNot:         "not",
	KindTrue:        "true",
	KindFalse:       "false",
	KindAssign:      "=",
	KindPlus:        "+",
	KindMinus:       "-",
	KindDoubleMinus: "--",
	KindTimes:       "*",
	KindDivide:      "/",
	KindModulo:      "%",
	KindShl:         "<<",
	KindShr:         ">>",
	KindLess:        "<",
	KindGreater:     ">",
	KindLessEq:      "<=",
	KindGreaterEq:   ">=",
	KindEq:          "==",
	KindNotEq:       "!=",
	KindBang:        "!",
	KindLParen:      "(",
	KindRParen:      ")",
	KindLBrace:      "{",
	KindRBrace:      "}",
	KindLBracket:    "[",
	KindRBracket:    "]",
	KindSemi:        ";",
	KindColon:       ":",
	KindComma:       ",",
	KindDot:         ".",
}

var payloadNames = map[Kind]string{
	KindIdentifier:    "identifier",
	KindIntLiteral:    "integer literal",
	KindFloatLiteral:  "float literal",
	KindStringLiteral: "string literal",
	KindShortFlag:     "short flag",
	KindLongFlag:      "long flag",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := payloadNames[k]; ok {
		return name
	}
	if text, ok := fixedText[k]; ok {
		return "'" + text + "'"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool { return k >= KindIf && k <= KindFalse }

// IsFlag reports whether k is a short or long flag.
func (k Kind) IsFlag() bool { return k == KindShortFlag || k == KindLongFlag }

// Base is the radix an integer literal was written in.
type Base int

const (
	Dec Base = 10
	Hex Base = 16
	Bin Base = 2
)

// ErrWrongKind is returned when a payload is requested from a token of
// a kind that does not carry it.
var ErrWrongKind = errors.New("token payload not available for this kind")

// Token is a single lexical unit. Payload accessors only succeed for the
// kinds that carry the payload.
type Token struct {
	kind   Kind
	span   Span
	lexeme string // full source text of the span
	name   string // identifier or flag name, raw string contents
	ival   int64
	fval   float64
	base   Base
	exp    bool
	str    *lazyString
}

type lazyString struct {
	once sync.Once
	raw  string
	val  string
}

func (l *lazyString) value() string {
	l.once.Do(func() { l.val = unescape(l.raw) })
	return l.val
}

// Kind returns the token kind.
func (t Token) Kind() Kind { return t.kind }

// Span returns the byte range the token occupies in its source.
func (t Token) Span() Span { return t.span }

// Lexeme returns the exact source text of the token.
func (t Token) Lexeme() string { return t.lexeme }

// IsFlag reports whether the token is a short or long flag.
func (t Token) IsFlag() bool { return t.kind.IsFlag() }

func (t Token) wrongKind(want string) error {
	return fmt.Errorf("%w: %s requested from %s", ErrWrongKind, want, t.kind)
}

// Name returns the text of an identifier, or a flag name without dashes.
func (t Token) Name() (string, error) {
	switch t.kind {
	case KindIdentifier, KindShortFlag, KindLongFlag:
		return t.name, nil
	default:
		return "", t.wrongKind("name")
	}
}

// Int returns the value of an integer literal.
func (t Token) Int() (int64, error) {
	if t.kind != KindIntLiteral {
		return 0, t.wrongKind("integer value")
	}
	return t.ival, nil
}

// Base returns the radix of an integer literal.
func (t Token) Base() (Base, error) {
	if t.kind != KindIntLiteral {
		return 0, t.wrongKind("integer base")
	}
	return t.base, nil
}

// Float returns the value of a float literal.
func (t Token) Float() (float64, error) {
	if t.kind != KindFloatLiteral {
		return 0, t.wrongKind("float value")
	}
	return t.fval, nil
}

// HasExponent reports whether a float literal was written with e/E.
func (t Token) HasExponent() (bool, error) {
	if t.kind != KindFloatLiteral {
		return false, t.wrongKind("exponent marker")
	}
	return t.exp, nil
}

// RawString returns the undecoded contents of a string literal.
func (t Token) RawString() (string, error) {
	if t.kind != KindStringLiteral {
		return "", t.wrongKind("string contents")
	}
	return t.name, nil
}

// StringValue returns the decoded contents of a string literal. Escape
// sequences are decoded on the first call and cached.
func (t Token) StringValue() (string, error) {
	if t.kind != KindStringLiteral || t.str == nil {
		return "", t.wrongKind("string value")
	}
	return t.str.value(), nil
}

// String renders the token the way it would be written on a command line.
func (t Token) String() string {
	switch t.kind {
	case KindShortFlag:
		return "-" + t.name
	case KindLongFlag:
		return "--" + t.name
	case KindIdentifier:
		return t.name
	case KindStringLiteral:
		return quote(t.name)
	case KindIntLiteral:
		switch t.base {
		case Hex:
			return "0x" + strconv.FormatInt(t.ival, 16)
		case Bin:
			return "0b" + strconv.FormatInt(t.ival, 2)
		default:
			return strconv.FormatInt(t.ival, 10)
		}
	case KindFloatLiteral:
		if t.exp {
			return strconv.FormatFloat(t.fval, 'e', -1, 64)
		}
		return strconv.FormatFloat(t.fval, 'g', -1, 64)
	}
	if text, ok := fixedText[t.kind]; ok {
		return text
	}
	return "<" + t.kind.String() + ">"
}

// unescape decodes the escapes accepted by the lexer. The raw text has
// already been validated.
func unescape(raw string) string {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			b.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default: // \\ and \"
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

// quote re-renders raw string contents with visible escapes.
func quote(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 2)
	b.WriteByte('"')
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			i++
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		case c == '\\':
			b.WriteByte('\\')
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			b.WriteString("�")
		}
	}
	b.WriteByte('"')
	return b.String()
}
