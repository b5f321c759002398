package lexer

// LexErrorKind classifies tokenization failures.
type LexErrorKind int

const (
	InvalidChar LexErrorKind = iota
	UnclosedString
	UnknownEscape
	IntOutOfRange
	IncompleteInt
	FloatOutOfRange
	InvalidFloat
)

func (k LexErrorKind) String() string {
	switch k {
	case InvalidChar:
		return "invalid character"
	case UnclosedString:
		return "unclosed string literal"
	case UnknownEscape:
		return "unknown escape character"
	case IntOutOfRange:
		return "integer literal out of 64-bit range"
	case IncompleteInt:
		return "incomplete integer literal"
	case FloatOutOfRange:
		return "floating-point literal out of range"
	case InvalidFloat:
		return "invalid floating-point literal"
	default:
		return "unknown lexer error"
	}
}

// LexError reports the first failure met while tokenizing. Tokenization
// stops at the first error; no partial token stream is returned.
type LexError struct {
	Kind     LexErrorKind
	Location Location
}

func (e *LexError) Error() string {
	return e.Location.String() + ": " + e.Kind.String()
}

func newLexError(kind LexErrorKind, loc Location) *LexError {
	return &LexError{Kind: kind, Location: loc}
}
