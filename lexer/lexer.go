package lexer

import (
	"errors"
	"strconv"
	"strings"
)

// keywords maps reserved words to their kinds.
var keywords = map[string]Kind{
	"if":     KindIf,
	"else":   KindElse,
	"for":    KindFor,
	"in":     KindIn,
	"while":  KindWhile,
	"break":  KindBreak,
	"return": KindReturn,
	"int":    KindInt,
	"bool":   KindBool,
	"string": KindString,
	"and":    KindAnd,
	"or":     KindOr,
	"not":    KindNot,
	"true":   KindTrue,
	"false":  KindFalse,
}

// singles maps bytes that always form a one-character token.
var singles = map[byte]Kind{
	'+': KindPlus,
	'*': KindTimes,
	'%': KindModulo,
	'(': KindLParen,
	')': KindRParen,
	'{': KindLBrace,
	'}': KindRBrace,
	'[': KindLBracket,
	']': KindRBracket,
	';': KindSemi,
	':': KindColon,
	',': KindComma,
	'.': KindDot,
}

// Tokenize scans the whole source. On success the returned slice ends with
// exactly one EOF token. On failure it returns a *LexError and no tokens.
func Tokenize(src *Source) ([]Token, error) {
	s := &scanner{
		src:  src.text,
		loc:  Location{Filename: src.filename, Line: 1, Column: 1},
		toks: make([]Token, 0, len(src.text)/5+1),
	}
	for {
		s.skipTrivia()
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		s.toks = append(s.toks, tok)
		if tok.kind == KindEOF {
			return s.toks, nil
		}
	}
}

// TokenizeString is a shorthand for Tokenize(FromString(text, filename)).
func TokenizeString(text, filename string) ([]Token, error) {
	return Tokenize(FromString(text, filename))
}

type scanner struct {
	src  string
	pos  int
	loc  Location
	toks []Token
}

func (s *scanner) cur() byte { return s.at(s.pos) }

func (s *scanner) peek(n int) byte { return s.at(s.pos + n) }

func (s *scanner) at(i int) byte {
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) next() {
	if s.pos < len(s.src) {
		s.loc = advance(s.loc, s.src[s.pos])
		s.pos++
	}
}

func (s *scanner) skipTrivia() {
	for !s.atEnd() {
		switch s.cur() {
		case ' ', '\t', '\n', '\r':
			s.next()
		case '/':
			if s.peek(1) != '/' {
				return
			}
			for !s.atEnd() && s.cur() != '\n' {
				s.next()
			}
		default:
			return
		}
	}
}

func (s *scanner) simple(kind Kind, start int) Token {
	return Token{kind: kind, span: Span{start, s.pos}, lexeme: s.src[start:s.pos]}
}

func (s *scanner) nextToken() (Token, error) {
	start := s.pos
	startLoc := s.loc
	if s.atEnd() {
		return Token{kind: KindEOF, span: Span{start, start}}, nil
	}

	c := s.cur()
	if kind, ok := singles[c]; ok {
		s.next()
		return s.simple(kind, start), nil
	}

	switch c {
	case '-':
		return s.lexDash(start)
	case '/':
		if isIdentCont(s.peek(1)) {
			return s.lexIdentifier(start), nil
		}
		s.next()
		return s.simple(KindDivide, start), nil
	case '<':
		return s.lexCompare(start, '<', KindLess, KindShl, KindLessEq), nil
	case '>':
		return s.lexCompare(start, '>', KindGreater, KindShr, KindGreaterEq), nil
	case '=':
		s.next()
		if s.cur() == '=' {
			s.next()
			return s.simple(KindEq, start), nil
		}
		return s.simple(KindAssign, start), nil
	case '!':
		s.next()
		if s.cur() == '=' {
			s.next()
			return s.simple(KindNotEq, start), nil
		}
		return s.simple(KindBang, start), nil
	case '"':
		return s.lexString(start)
	}

	if isDecDigit(c) {
		return s.lexNumber(start)
	}
	if isIdentStart(c) {
		return s.lexIdentifier(start), nil
	}
	return Token{}, newLexError(InvalidChar, startLoc)
}

// lexCompare handles <, <<, <= and their > counterparts.
func (s *scanner) lexCompare(start int, self byte, single, double, orEq Kind) Token {
	s.next()
	switch s.cur() {
	case self:
		s.next()
		return s.simple(double, start)
	case '=':
		s.next()
		return s.simple(orEq, start)
	}
	return s.simple(single, start)
}

func (s *scanner) lexDash(start int) (Token, error) {
	s.next()
	if s.cur() == '-' {
		s.next()
		c := s.cur()
		switch {
		case isIdentStart(c):
			return s.lexLongFlag(start), nil
		case !isIdentCont(c) && !isDecDigit(c):
			return s.simple(KindDoubleMinus, start), nil
		default:
			return Token{}, newLexError(InvalidChar, s.loc)
		}
	}
	if isIdentStart(s.cur()) || isDecDigit(s.cur()) {
		nameStart := s.pos
		for isIdentCont(s.cur()) {
			s.next()
		}
		tok := s.simple(KindShortFlag, start)
		tok.name = s.src[nameStart:s.pos]
		return tok, nil
	}
	return s.simple(KindMinus, start), nil
}

// lexLongFlag scans a flag name after "--". Dashes are allowed inside the
// name; '=' is left for the caller.
func (s *scanner) lexLongFlag(start int) Token {
	nameStart := s.pos
	for isIdentCont(s.cur()) || s.cur() == '-' {
		s.next()
	}
	tok := s.simple(KindLongFlag, start)
	tok.name = s.src[nameStart:s.pos]
	return tok
}

func (s *scanner) lexIdentifier(start int) Token {
	s.next()
	for isIdentCont(s.cur()) {
		s.next()
	}
	text := s.src[start:s.pos]
	if kind, ok := keywords[text]; ok {
		return s.simple(kind, start)
	}
	tok := s.simple(KindIdentifier, start)
	tok.name = text
	return tok
}

func (s *scanner) lexString(start int) (Token, error) {
	openLoc := s.loc
	s.next()
	contentStart := s.pos
	for {
		if s.atEnd() {
			return Token{}, newLexError(UnclosedString, openLoc)
		}
		c := s.cur()
		if c == '\n' {
			return Token{}, newLexError(UnclosedString, s.loc)
		}
		if c == '"' {
			break
		}
		if c == '\\' {
			escLoc := s.loc
			s.next()
			if s.atEnd() || s.cur() == '\n' {
				return Token{}, newLexError(UnclosedString, escLoc)
			}
			switch s.cur() {
			case 'n', 'r', 't', '\\', '"', '0':
			default:
				return Token{}, newLexError(UnknownEscape, s.loc)
			}
		}
		s.next()
	}
	raw := s.src[contentStart:s.pos]
	s.next() // closing quote
	tok := s.simple(KindStringLiteral, start)
	tok.name = raw
	tok.str = &lazyString{raw: raw}
	return tok, nil
}

func (s *scanner) lexNumber(start int) (Token, error) {
	startLoc := s.loc
	base := Dec
	isFloat, hasExp := false, false
	var digits strings.Builder

	if s.cur() == '0' {
		switch p := s.peek(1); {
		case p == 'x' || p == 'X':
			base = Hex
		case p == 'b' || p == 'B':
			base = Bin
		case !isDecDigit(p) && p != '.' && p != 'e' && p != 'E':
			s.next()
			tok := s.simple(KindIntLiteral, start)
			tok.base = Dec
			return tok, nil
		}
		if base != Dec {
			s.next()
			s.next()
			if !isDigitIn(s.cur(), base) {
				return Token{}, newLexError(IncompleteInt, s.loc)
			}
		}
	}

	s.consumeDigits(&digits, base)

	if base == Dec {
		if s.cur() == '.' && isDecDigit(s.peek(1)) {
			isFloat = true
			digits.WriteByte('.')
			s.next()
			s.consumeDigits(&digits, Dec)
		}
		if c := s.cur(); c == 'e' || c == 'E' {
			p1, p2 := s.peek(1), s.peek(2)
			if isDecDigit(p1) || ((p1 == '+' || p1 == '-') && isDecDigit(p2)) {
				isFloat, hasExp = true, true
				digits.WriteByte(c)
				s.next()
				if s.cur() == '+' || s.cur() == '-' {
					digits.WriteByte(s.cur())
					s.next()
				}
				s.consumeDigits(&digits, Dec)
			}
		}
	} else if c := s.cur(); c == '.' || c == 'e' || c == 'E' {
		return Token{}, newLexError(InvalidChar, s.loc)
	}

	endLoc := s.loc
	tok := s.simple(KindIntLiteral, start)
	text := digits.String()

	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Token{}, newLexError(FloatOutOfRange, endLoc)
			}
			return Token{}, newLexError(InvalidFloat, startLoc)
		}
		tok.kind = KindFloatLiteral
		tok.fval = v
		tok.exp = hasExp
		return tok, nil
	}

	if text == "" {
		return Token{}, newLexError(IncompleteInt, startLoc)
	}
	v, err := strconv.ParseInt(text, int(base), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Token{}, newLexError(IntOutOfRange, endLoc)
		}
		return Token{}, newLexError(IncompleteInt, startLoc)
	}
	tok.ival = v
	tok.base = base
	return tok, nil
}

// consumeDigits appends digits of base to b, dropping '_' separators.
func (s *scanner) consumeDigits(b *strings.Builder, base Base) {
	for c := s.cur(); c == '_' || isDigitIn(c, base); c = s.cur() {
		if c != '_' {
			b.WriteByte(c)
		}
		s.next()
	}
}

func isDecDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDecDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDigitIn(c byte, base Base) bool {
	switch base {
	case Hex:
		return isHexDigit(c)
	case Bin:
		return c == '0' || c == '1'
	default:
		return isDecDigit(c)
	}
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '$' || c == '_' || c == '/'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDecDigit(c) || c == '.'
}
