// Package lexer turns command lines and small scripts into span-tracked
// tokens consumed by the snap parse engine.
package lexer

import (
	"fmt"
	"os"
)

// tabWidth is the number of columns a tab advances.
const tabWidth = 4

// Location identifies a position in a Source (1-based line and column).
type Location struct {
	Filename string
	Line     int
	Column   int
}

// String renders the location as "file (line:col)".
func (l Location) String() string {
	name := l.Filename
	if name == "" {
		name = "<string>"
	}
	return fmt.Sprintf("%s (%d:%d)", name, l.Line, l.Column)
}

// Span is a half-open byte range [Start, End) into a Source.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Source owns the immutable text being scanned. Token payloads are
// substrings of it and stay valid as long as the Source is reachable.
type Source struct {
	filename string
	text     string
}

// FromString wraps text. An empty filename prints as "<string>".
func FromString(text, filename string) *Source {
	return &Source{filename: filename, text: text}
}

// FromBytes copies data into a new Source.
func FromBytes(data []byte, filename string) *Source {
	return &Source{filename: filename, text: string(data)}
}

// FromFile reads the whole file at path.
func FromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	return FromBytes(data, path), nil
}

// Filename returns the name the source was created with.
func (s *Source) Filename() string { return s.filename }

// Text returns the full source text.
func (s *Source) Text() string { return s.text }

// Len returns the size of the source in bytes.
func (s *Source) Len() int { return len(s.text) }

// Slice returns the text covered by span. Out-of-range spans are clamped.
func (s *Source) Slice(span Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// LocationAt recomputes the line and column of a byte offset.
func (s *Source) LocationAt(offset int) Location {
	loc := Location{Filename: s.filename, Line: 1, Column: 1}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	for i := 0; i < offset; i++ {
		loc = advance(loc, s.text[i])
	}
	return loc
}

func advance(loc Location, c byte) Location {
	switch c {
	case '\n':
		loc.Line++
		loc.Column = 1
	case '\t':
		loc.Column += tabWidth
	default:
		loc.Column++
	}
	return loc
}
