package intern

import (
	"sync"
	"testing"
	"unsafe"
)

func (si *StringInterner) size() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()
	return len(si.strings)
}

func sameBacking(a, b string) bool {
	return len(a) == len(b) && (len(a) == 0 || unsafe.StringData(a) == unsafe.StringData(b))
}

func TestStringInterner_Intern(t *testing.T) {
	interner := NewStringInterner(0)

	first := interner.Intern(string([]byte("output")))
	second := interner.Intern(string([]byte("output")))
	if !sameBacking(first, second) {
		t.Errorf("Expected the canonical copy to be returned")
	}
	if interner.size() != 1 {
		t.Errorf("Expected 1 interned string, got %d", interner.size())
	}
}

func TestStringInterner_InternByte(t *testing.T) {
	interner := NewStringInterner(0)

	tests := []struct {
		input    byte
		expected string
	}{
		{'a', "a"},
		{'Z', "Z"},
		{'5', "5"},
		{'$', "$"},
	}
	for _, tt := range tests {
		if got := interner.InternByte(tt.input); got != tt.expected {
			t.Errorf("InternByte(%c) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	// only the non-table byte lands in the map
	if interner.size() != 1 {
		t.Errorf("Expected 1 interned string, got %d", interner.size())
	}
}

func TestStringInterner_PreIntern(t *testing.T) {
	interner := NewStringInterner(4)
	interner.PreIntern([]string{"verbose", "output", "verbose"})
	if interner.size() != 2 {
		t.Errorf("Expected 2 strings, got %d", interner.size())
	}
}

func TestStringInterner_Concurrent(t *testing.T) {
	interner := NewStringInterner(0)

	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				results[i] = interner.Intern(string([]byte("no-cache")))
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		if !sameBacking(r, results[0]) {
			t.Fatalf("Concurrent interning returned different copies")
		}
	}
	if count := interner.size(); count != 1 {
		t.Errorf("Expected 1 string after concurrent operations, got %d", count)
	}
}

func TestCommonNamesPreInterned(t *testing.T) {
	before := GlobalInterner.size()
	for _, name := range CommonNames {
		if Intern(name) != name {
			t.Errorf("Common name %q not returned unchanged", name)
		}
	}
	if GlobalInterner.size() != before {
		t.Errorf("Expected no new entries for pre-interned names")
	}
	if InternByte('h') != "h" {
		t.Errorf("Expected h")
	}
}
