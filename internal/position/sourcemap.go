package position

import "strings"

// LineIndex precomputes line-start byte offsets for a source string so
// flat offset <-> Index conversions don't rescan the source on every
// call. It implements Lines.
type LineIndex struct {
	source      string
	lineStarts  []int // byte offset of the first character of each line
}

// NewLineIndex builds a LineIndex over source. Lines are split on '\n';
// a source not ending in '\n' still has its final (partial) line
// indexed — callers that need the §3 "every physical line terminated by
// a logical '\n'" guarantee normalize the source before building this.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, lineStarts: starts}
}

func (li *LineIndex) LineCount() int { return len(li.lineStarts) }

func (li *LineIndex) LineLen(line int) int {
	start := li.lineStarts[line]
	var end int
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1] - 1 // exclude the '\n' itself
	} else {
		end = len(li.source)
	}
	if end < start {
		end = start
	}
	return end - start
}

// AtOffset converts a flat byte offset into a line/char Index. An
// offset equal to len(source) maps onto the last line: (LineCount()-1,
// 0) when source ends in '\n', otherwise the end of the final line. It
// never yields the (LineCount(), 0) sentinel.
func (li *LineIndex) AtOffset(offset int) Index {
	// binary search for the last line whose start is <= offset
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Index{Line: lo, Char: offset - li.lineStarts[lo]}
}

// ToOffset converts a line/char Index back into a flat byte offset.
func (li *LineIndex) ToOffset(idx Index) int {
	if idx.Line >= len(li.lineStarts) {
		return len(li.source)
	}
	return li.lineStarts[idx.Line] + idx.Char
}

// NormalizeTrailingNewline appends '\n' when source does not already
// end with one, per spec.md §3's "every physical line terminated by a
// logical '\n' sentinel appended by the parser front-end".
func NormalizeTrailingNewline(source string) string {
	if source == "" || strings.HasSuffix(source, "\n") {
		return source
	}
	return source + "\n"
}
