package matcher

import "fmt"

// ExpressionMatcher is a streaming matcher over a stream of symbols
// (bytes, runes, or arbitrary comparable integers), constructed with a
// mapping {key -> pattern}. Patterns must be non-empty, unique, and
// suffix-free (no pattern may be a suffix of another) — construction
// panics otherwise, since a suffix-ambiguous pattern set can never be
// disambiguated by any input and is always a caller bug, per
// spec.md §4.2.
//
// StringExpressionMatcher (see string.go) is the common specialization
// where the symbol type is byte and patterns are given as plain
// strings — the shape spec.md §4.4 uses to detect "//", "/*", "*/".
type ExpressionMatcher[K comparable, S comparable] struct {
	keys     []K
	patterns [][]S
	active   []progress[K]
}

type progress[K comparable] struct {
	keyIdx int
	pos    int
}

// NewExpressionMatcher validates and constructs a matcher from the
// given key -> pattern mapping.
func NewExpressionMatcher[K comparable, S comparable](patterns map[K][]S) *ExpressionMatcher[K, S] {
	m := &ExpressionMatcher[K, S]{}
	for k, p := range patterns {
		if len(p) == 0 {
			panic(fmt.Sprintf("matcher: pattern for key %v is empty", k))
		}
		m.keys = append(m.keys, k)
		m.patterns = append(m.patterns, append([]S(nil), p...))
	}
	for i := range m.patterns {
		for j := range m.patterns {
			if i == j {
				continue
			}
			if equalSeq(m.patterns[i], m.patterns[j]) {
				panic(fmt.Sprintf("matcher: patterns for keys %v and %v are identical", m.keys[i], m.keys[j]))
			}
			if isSuffix(m.patterns[j], m.patterns[i]) {
				panic(fmt.Sprintf("matcher: pattern for key %v is a suffix of pattern for key %v", m.keys[j], m.keys[i]))
			}
		}
	}
	return m
}

func equalSeq[S comparable](a, b []S) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSuffix reports whether short is a suffix of long.
func isSuffix[S comparable](short, long []S) bool {
	if len(short) >= len(long) {
		return false
	}
	offset := len(long) - len(short)
	for i := range short {
		if short[i] != long[offset+i] {
			return false
		}
	}
	return true
}

// Next consumes one symbol. It returns the key of any pattern that
// completed on this symbol and true, or the zero key and false if none
// did. It panics if more than one pattern completes on the same
// symbol — the suffix-freedom invariant enforced at construction
// guarantees this cannot happen for a valid pattern set, so reaching it
// signals a matcher bug, not a normal miss.
func (m *ExpressionMatcher[K, S]) Next(sym S) (K, bool) {
	for i := range m.patterns {
		m.active = append(m.active, progress[K]{keyIdx: i, pos: 0})
	}

	next := m.active[:0]
	var completedIdx = -1
	completedCount := 0
	for _, p := range m.active {
		pat := m.patterns[p.keyIdx]
		if pat[p.pos] != sym {
			continue
		}
		newPos := p.pos + 1
		if newPos == len(pat) {
			completedCount++
			completedIdx = p.keyIdx
			continue
		}
		next = append(next, progress[K]{keyIdx: p.keyIdx, pos: newPos})
	}
	m.active = next

	if completedCount > 1 {
		panic("matcher: more than one pattern completed on the same symbol")
	}
	if completedCount == 1 {
		return m.keys[completedIdx], true
	}
	var zero K
	return zero, false
}

// Reset clears all in-progress partial matches.
func (m *ExpressionMatcher[K, S]) Reset() { m.active = nil }

// MaxExpressionLength returns the length of the longest registered
// pattern, the minimum lookahead a caller must be prepared to retain
// when using this matcher to split a buffer (see lexer.EmitRetainSuffix).
func (m *ExpressionMatcher[K, S]) MaxExpressionLength() int {
	max := 0
	for _, p := range m.patterns {
		if len(p) > max {
			max = len(p)
		}
	}
	return max
}
