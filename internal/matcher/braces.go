package matcher

import "fmt"

// BracesMatcher is a stack-based balanced-bracket tracker. It is
// constructed with a list of (open, close) single-character pairs;
// every open and every close across the whole list must be unique.
// Non-bracket characters are rejected — callers pre-filter with
// IsBrace before calling Next, exactly as spec.md §4.3 requires.
type BracesMatcher struct {
	openToClose map[rune]rune
	closeToOpen map[rune]rune
	stack       []rune
}

// Pair is one (open, close) bracket pair.
type Pair struct {
	Open  rune
	Close rune
}

// NewBracesMatcher validates pairs and constructs a fresh matcher.
// Construction-time validation is strict: it panics if any open or
// close character repeats across the pair list (per spec.md §4.3,
// "all opens/closes must be unique").
func NewBracesMatcher(pairs []Pair) *BracesMatcher {
	openToClose := make(map[rune]rune, len(pairs))
	closeToOpen := make(map[rune]rune, len(pairs))
	seen := make(map[rune]bool, len(pairs)*2)
	for _, p := range pairs {
		if seen[p.Open] {
			panic(fmt.Sprintf("matcher: duplicate brace character %q", p.Open))
		}
		if seen[p.Close] {
			panic(fmt.Sprintf("matcher: duplicate brace character %q", p.Close))
		}
		seen[p.Open] = true
		seen[p.Close] = true
		openToClose[p.Open] = p.Close
		closeToOpen[p.Close] = p.Open
	}
	return &BracesMatcher{openToClose: openToClose, closeToOpen: closeToOpen}
}

// IsBrace reports whether ch is one of the registered open or close
// characters.
func (m *BracesMatcher) IsBrace(ch rune) bool {
	if _, ok := m.openToClose[ch]; ok {
		return true
	}
	_, ok := m.closeToOpen[ch]
	return ok
}

// Next consumes one bracket character, pushing on an open and popping
// on a matching close. It returns the resulting depth. It panics on a
// mismatched close, an underflowing close, or a non-bracket character —
// per spec.md §4.3 these are caller contract violations, not recoverable
// input errors (callers must pre-filter with IsBrace).
func (m *BracesMatcher) Next(ch rune) int {
	if close, ok := m.openToClose[ch]; ok {
		m.stack = append(m.stack, close)
		return len(m.stack)
	}
	if _, ok := m.closeToOpen[ch]; ok {
		if len(m.stack) == 0 {
			panic(fmt.Sprintf("matcher: unmatched closing brace %q (stack empty)", ch))
		}
		top := m.stack[len(m.stack)-1]
		if top != ch {
			panic(fmt.Sprintf("matcher: mismatched closing brace: expected %q, got %q", top, ch))
		}
		m.stack = m.stack[:len(m.stack)-1]
		return len(m.stack)
	}
	panic(fmt.Sprintf("matcher: %q is not a registered brace character", ch))
}

// CurrentDepth returns the current nesting depth without consuming
// anything.
func (m *BracesMatcher) CurrentDepth() int { return len(m.stack) }

// Reset clears all tracked depth, returning the matcher to its initial
// state.
func (m *BracesMatcher) Reset() { m.stack = m.stack[:0] }
