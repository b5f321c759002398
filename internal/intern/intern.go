// Package intern provides string interning for go-pparse
// Used when registering argument and command names, and by the parser to
// look up single characters of a short-flag cluster without allocating.
package intern

import (
	"sync"
)

// StringInterner provides thread-safe string interning
type StringInterner struct {
	strings map[string]string
	mutex   sync.RWMutex
}

// NewStringInterner creates a new string interner with optional pre-allocated capacity
func NewStringInterner(capacity int) *StringInterner {
	if capacity <= 0 {
		capacity = 64
	}
	return &StringInterner{
		strings: make(map[string]string, capacity),
	}
}

// Intern returns the canonical copy of s.
func (si *StringInterner) Intern(s string) string {
	si.mutex.RLock()
	interned, exists := si.strings[s]
	si.mutex.RUnlock()
	if exists {
		return interned
	}

	si.mutex.Lock()
	defer si.mutex.Unlock()
	if interned, exists := si.strings[s]; exists {
		return interned
	}
	si.strings[s] = s
	return s
}

// InternByte returns a one-character string for b. Letters and digits come
// from a static table.
func (si *StringInterner) InternByte(b byte) string {
	switch {
	case b >= 'a' && b <= 'z':
		return singleCharStrings[b-'a']
	case b >= 'A' && b <= 'Z':
		return singleCharStrings[26+b-'A']
	case b >= '0' && b <= '9':
		return singleCharStrings[52+b-'0']
	}
	return si.Intern(string(rune(b)))
}

// PreIntern adds names up front.
func (si *StringInterner) PreIntern(names []string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()
	for _, s := range names {
		si.strings[s] = s
	}
}

// a-z (0-25), A-Z (26-51), 0-9 (52-61)
var singleCharStrings = [62]string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
}

// CommonNames are pre-interned: the built-in help flag plus names most
// grammars declare.
var CommonNames = []string{
	"help", "h", "-h", "--help", "verbose", "v", "output", "o",
	"input", "i", "file", "f", "count", "c", "debug", "d", "quiet", "q",
}

// GlobalInterner is the process-wide interner.
var GlobalInterner = func() *StringInterner {
	si := NewStringInterner(128)
	si.PreIntern(CommonNames)
	return si
}()

// Intern interns a string using the global interner
func Intern(s string) string {
	return GlobalInterner.Intern(s)
}

// InternByte interns a single byte using the global interner
func InternByte(b byte) string {
	return GlobalInterner.InternByte(b)
}
