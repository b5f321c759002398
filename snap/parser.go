package snap

import (
	"context"
	"fmt"

	"github.com/dzonerzy/go-pparse/internal/intern"
	"github.com/dzonerzy/go-pparse/lexer"
	"github.com/dzonerzy/go-pparse/middleware"
)

// parser is the state threaded through recursive Command.parse calls. The
// token slice and the command tree are only read.
type parser struct {
	ctx   context.Context
	toks  []lexer.Token
	pos   int
	exits *ExitCodeManager
}

// Parse binds tokens against c and its subcommands. A trailing EOF token is
// ignored. The handler of the dispatched command runs on success.
func (c *Command) Parse(tokens []lexer.Token) *ParseResult {
	return parseTokens(context.Background(), c, tokens, nil)
}

func parseTokens(ctx context.Context, root *Command, tokens []lexer.Token, exits *ExitCodeManager) *ParseResult {
	if n := len(tokens); n > 0 && tokens[n-1].Kind() == lexer.KindEOF {
		tokens = tokens[:n-1]
	}
	if exits == nil {
		exits = newExitCodeManager()
	}
	p := &parser{ctx: ctx, toks: tokens, exits: exits}
	if target, path := root.helpTarget(tokens, 0, root.Path()); target != nil {
		return target.newResult(p, path).helpRequested()
	}
	return root.parse(p, root.Path())
}

func (p *parser) more() bool { return p.pos < len(p.toks) }

func (p *parser) peek() *lexer.Token { return &p.toks[p.pos] }

// skipAssign consumes a '=' written directly after flag, as in --out=x.
func (p *parser) skipAssign(flag *lexer.Token) bool {
	if p.more() && p.peek().Kind() == lexer.KindAssign && p.peek().Span().Start == flag.Span().End {
		p.pos++
		return true
	}
	return false
}

// newResult starts a result for c with every keyword at its default.
func (c *Command) newResult(p *parser, path string) *ParseResult {
	res := newParseResult(c, path)
	res.ctx = p.ctx
	for _, d := range c.keywords {
		if !d.IsHelpFlag {
			res.Keywords[d.Name] = d.Default
		}
	}
	return res
}

func (c *Command) parse(p *parser, path string) *ParseResult {
	res := c.newResult(p, path)

	seen := make(map[string]bool, len(c.keywords))
	owned := make(map[string]bool)
	next := 0

	for p.more() {
		tok := p.peek()
		if tok.IsFlag() {
			if done := c.bindFlag(p, res, path, seen, owned); done {
				return res
			}
			continue
		}

		sub, matches := c.dispatchTarget(tok)
		if matches > 1 {
			return res.fail(c.parseError(ErrorTypeAmbiguousAlias, path, tok, "ambiguous alias: %s", tok.Lexeme()))
		}
		if sub != nil {
			p.pos++
			return sub.parse(p, path+" "+sub.name)
		}

		if next >= len(c.positionals) {
			pe := c.parseError(ErrorTypeUnexpectedArgument, path, tok, "unexpected argument: %s", tok)
			pe.Arg = tok.Lexeme()
			return res.fail(pe)
		}
		d := c.positionals[next]
		if d.Kind == ArgMultiple {
			first, ok := tokenText(tok)
			if !ok {
				return res.fail(c.parseError(ErrorTypeInvalidValue, path, tok, "invalid value for positional argument '%s'", d.Name))
			}
			p.pos++
			list := []string{first}
			for p.more() && !p.peek().IsFlag() {
				s, ok := tokenText(p.peek())
				if !ok {
					break
				}
				list = append(list, s)
				p.pos++
			}
			res.Positionals = append(res.Positionals, ArgValue{kind: ValueStringList, list: list})
		} else {
			v, ok := tokenValue(tok)
			if !ok {
				return res.fail(c.parseError(ErrorTypeInvalidValue, path, tok, "invalid value for positional argument '%s'", d.Name))
			}
			p.pos++
			res.Positionals = append(res.Positionals, v)
		}
		next++
	}

	for _, d := range c.keywords {
		if d.Required && !d.IsHelpFlag && !seen[d.Name] {
			pe := c.parseError(ErrorTypeMissingRequired, path, nil, "missing required option: %s", d.DisplayName())
			pe.Flag = d.DisplayName()
			return res.fail(pe)
		}
	}
	for _, d := range c.positionals[next:] {
		if d.Required {
			return res.fail(c.parseError(ErrorTypeMissingRequired, path, nil, "missing required positional argument: %s", d.Name))
		}
		res.Positionals = append(res.Positionals, d.Default)
	}

	c.invoke(p, res)
	return res
}

// bindFlag handles the flag token at the cursor. It reports true when the
// result is final (help or error).
func (c *Command) bindFlag(p *parser, res *ParseResult, path string, seen, owned map[string]bool) bool {
	tok := p.peek()
	name, _ := tok.Name()

	var d *ArgumentDef
	if tok.Kind() == lexer.KindShortFlag {
		d = c.shorts[name]
		if d == nil && len(name) > 1 {
			return c.bindCluster(p, res, path, name, seen)
		}
	} else {
		d = c.longs[name]
	}
	if d == nil {
		pe := c.parseError(ErrorTypeUnknownFlag, path, tok, "unknown option: %s", tok)
		pe.Flag = tok.String()
		res.fail(pe)
		return true
	}
	if d.IsHelpFlag {
		res.helpRequested()
		return true
	}

	flag := *tok
	p.pos++
	seen[d.Name] = true

	if d.Kind == ArgFlag {
		v := true
		if p.skipAssign(&flag) {
			b, ok := boolToken(p)
			if !ok {
				res.fail(c.valueError(ErrorTypeInvalidValue, path, d, &flag, "invalid value for option %s"))
				return true
			}
			v = b
		}
		res.Keywords[d.Name] = BoolValue(v)
		return false
	}

	p.skipAssign(&flag)
	if !p.more() || p.peek().IsFlag() {
		res.fail(c.valueError(ErrorTypeMissingValue, path, d, &flag, "option %s requires a value"))
		return true
	}

	if d.Kind == ArgSingle {
		v, ok := tokenValue(p.peek())
		if !ok {
			res.fail(c.valueError(ErrorTypeInvalidValue, path, d, p.peek(), "invalid value for option %s"))
			return true
		}
		p.pos++
		res.Keywords[d.Name] = v
		return false
	}

	first, ok := tokenText(p.peek())
	if !ok {
		res.fail(c.valueError(ErrorTypeInvalidValue, path, d, p.peek(), "invalid value for option %s"))
		return true
	}
	p.pos++
	list := res.Keywords[d.Name]
	if !owned[d.Name] {
		// the first occurrence replaces the default
		list = ArgValue{kind: ValueStringList}
		owned[d.Name] = true
	}
	list = list.appendString(first)
	for p.more() && !p.peek().IsFlag() {
		s, ok := tokenText(p.peek())
		if !ok {
			break
		}
		list = list.appendString(s)
		p.pos++
	}
	res.Keywords[d.Name] = list
	return false
}

// bindCluster sets every one-character flag of a "-xyz" cluster.
func (c *Command) bindCluster(p *parser, res *ParseResult, path, name string, seen map[string]bool) bool {
	tok := p.peek()
	defs := make([]*ArgumentDef, 0, len(name))
	for i := 0; i < len(name); i++ {
		ch := intern.InternByte(name[i])
		d := c.shorts[ch]
		if d == nil {
			pe := c.parseError(ErrorTypeUnknownFlag, path, tok, "unknown option in combined flags: -%s", ch)
			pe.Flag = "-" + ch
			res.fail(pe)
			return true
		}
		if d.IsHelpFlag {
			res.helpRequested()
			return true
		}
		if d.Kind != ArgFlag {
			pe := c.parseError(ErrorTypeMissingValue, path, tok, "option -%s requires a value and cannot be combined", ch)
			pe.Flag = "-" + ch
			res.fail(pe)
			return true
		}
		defs = append(defs, d)
	}
	p.pos++
	for _, d := range defs {
		seen[d.Name] = true
		res.Keywords[d.Name] = BoolValue(true)
	}
	return false
}

// helpTarget scans toks from i the way parse consumes them and returns
// the command whose help flag is given, with its path. Help wins over every
// error. Option values and words taken by a variadic positional never
// dispatch; a word that does dispatch continues the scan in the subcommand.
func (c *Command) helpTarget(toks []lexer.Token, i int, path string) (*Command, string) {
	next := 0
	for ; i < len(toks); i++ {
		tok := &toks[i]
		if tok.IsFlag() {
			d, help := c.lookupFlag(tok)
			if help {
				return c, path
			}
			if d == nil {
				continue
			}
			assign := i+1 < len(toks) && toks[i+1].Kind() == lexer.KindAssign &&
				toks[i+1].Span().Start == tok.Span().End
			if assign {
				i++
			}
			switch {
			case d.Kind == ArgMultiple:
				i = skipWords(toks, i)
			case d.Kind == ArgSingle || assign:
				if i+1 < len(toks) && !toks[i+1].IsFlag() {
					i++
				}
			}
			continue
		}

		if sub, n := c.dispatchTarget(tok); n == 1 {
			return sub.helpTarget(toks, i+1, path+" "+sub.name)
		}
		if next < len(c.positionals) {
			if c.positionals[next].Kind == ArgMultiple {
				i = skipWords(toks, i)
			}
			next++
		}
	}
	return nil, ""
}

// lookupFlag resolves a flag token the way bindFlag does. help reports a
// help flag, given alone or inside a cluster.
func (c *Command) lookupFlag(tok *lexer.Token) (d *ArgumentDef, help bool) {
	name, _ := tok.Name()
	if tok.Kind() == lexer.KindLongFlag {
		d = c.longs[name]
		return d, d != nil && d.IsHelpFlag
	}
	if d = c.shorts[name]; d != nil {
		return d, d.IsHelpFlag
	}
	for j := 0; j < len(name); j++ {
		if h := c.shorts[intern.InternByte(name[j])]; h != nil && h.IsHelpFlag {
			return nil, true
		}
	}
	return nil, false
}

// skipWords returns the index of the last token of the non-flag run after i.
func skipWords(toks []lexer.Token, i int) int {
	for i+1 < len(toks) && !toks[i+1].IsFlag() {
		i++
	}
	return i
}

// dispatchTarget resolves a word token to a subcommand, by name first and
// then by alias. matches counts the aliased commands found.
func (c *Command) dispatchTarget(tok *lexer.Token) (sub *Command, matches int) {
	if len(c.subcommands) == 0 {
		return nil, 0
	}
	if k := tok.Kind(); k != lexer.KindIdentifier && !k.IsKeyword() {
		return nil, 0
	}
	word := tok.Lexeme()
	if s, ok := c.subcommands[word]; ok {
		return s, 1
	}
	for _, s := range c.subcommands {
		for _, a := range s.aliases {
			if a == word {
				sub = s
				matches++
				break
			}
		}
	}
	return sub, matches
}

// invoke runs the handler through the middleware of c and its ancestors.
func (c *Command) invoke(p *parser, res *ParseResult) {
	if c.handler == nil {
		return
	}
	handler := func(middleware.Result) (int, error) {
		return c.handler(res), nil
	}
	code, err := c.middlewareChain().Apply(handler)(res)
	res.ExitCode = code
	if err != nil {
		res.HandlerErr = err
		res.ExitCode = p.exits.resolve(err)
	}
}

func (c *Command) middlewareChain() middleware.MiddlewareChain {
	var chain middleware.MiddlewareChain
	if c.parent != nil {
		chain = c.parent.middlewareChain()
	}
	return chain.Use(c.middleware...)
}

func (c *Command) parseError(typ ErrorType, path string, tok *lexer.Token, format string, args ...any) *ParseError {
	pe := &ParseError{
		Type:           typ,
		Message:        fmt.Sprintf(format, args...),
		Command:        path,
		CurrentCommand: c,
	}
	if tok != nil {
		pe.Span = tok.Span()
	}
	return pe
}

func (c *Command) valueError(typ ErrorType, path string, d *ArgumentDef, tok *lexer.Token, format string) *ParseError {
	pe := c.parseError(typ, path, tok, format, d.DisplayName())
	pe.Flag = d.DisplayName()
	return pe
}

// tokenValue converts a value token for a Single option or positional:
// literals keep their type, words become text.
func tokenValue(tok *lexer.Token) (ArgValue, bool) {
	switch tok.Kind() {
	case lexer.KindIntLiteral:
		v, _ := tok.Int()
		return IntValue(v), true
	case lexer.KindFloatLiteral:
		v, _ := tok.Float()
		return FloatValue(v), true
	case lexer.KindTrue:
		return BoolValue(true), true
	case lexer.KindFalse:
		return BoolValue(false), true
	}
	s, ok := tokenText(tok)
	if !ok {
		return ArgValue{}, false
	}
	return StringValue(s), true
}

// tokenText converts a token for a list target. Literals keep their source
// spelling; operators and punctuation have no text.
func tokenText(tok *lexer.Token) (string, bool) {
	switch k := tok.Kind(); {
	case k == lexer.KindStringLiteral:
		s, err := tok.StringValue()
		return s, err == nil
	case k == lexer.KindIdentifier, k == lexer.KindIntLiteral, k == lexer.KindFloatLiteral, k.IsKeyword():
		return tok.Lexeme(), true
	}
	return "", false
}

func boolToken(p *parser) (bool, bool) {
	if !p.more() {
		return false, false
	}
	switch p.peek().Kind() {
	case lexer.KindTrue:
		p.pos++
		return true, true
	case lexer.KindFalse:
		p.pos++
		return false, true
	}
	return false, false
}
