// Package pydetect implements grammar.Detector for Python source, per
// spec.md §4.6: an indentation-aware line machine that classifies each
// physical statement/block at TOP_LEVEL and CLASSES scope, plus the
// argument splitter for FUNCTION_DECLARATION.
package pydetect

import (
	"strings"

	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/position"
)

// DetectIndentUnit scans source for its Python indentation unit. A
// file whose indented lines ever use a tab is tab-indented and uses
// config.PythonTabIndentUnit; otherwise the widest candidate in
// config.PythonIndentCandidates for which at most
// config.PythonIndentMismatchTolerance of observed indent widths are
// non-multiples wins. A line mixing tabs and spaces in its own leading
// run is a fatal ErrL002 — the only error pydetect itself can raise,
// since everything else it does is pure classification.
func DetectIndentUnit(source string) (unit int, tabIndent bool, err error) {
	lines := position.NewLineIndex(source)
	var widths []int
	tabSeen, spaceSeen := false, false

	offset := 0
	for _, line := range strings.Split(source, "\n") {
		lineStart := offset
		offset += len(line) + 1

		i := 0
		sawTab, sawSpace := false, false
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			if line[i] == '\t' {
				sawTab = true
			} else {
				sawSpace = true
			}
			i++
		}
		if sawTab && sawSpace {
			idx := lines.AtOffset(lineStart)
			return 0, false, diagnostics.NewParsingError(diagnostics.PhaseLexer, diagnostics.ErrL002, position.Range{Start: idx, End: idx})
		}
		if i == len(line) {
			continue // blank or whitespace-only line doesn't count
		}
		if sawTab {
			tabSeen = true
		}
		if sawSpace {
			spaceSeen = true
			widths = append(widths, i)
		}
	}

	if tabSeen && !spaceSeen {
		return config.PythonTabIndentUnit, true, nil
	}
	for _, cand := range config.PythonIndentCandidates {
		if len(widths) == 0 {
			return cand, false, nil
		}
		mismatches := 0
		for _, w := range widths {
			if w%cand != 0 {
				mismatches++
			}
		}
		if float64(mismatches)/float64(len(widths)) <= config.PythonIndentMismatchTolerance {
			return cand, false, nil
		}
	}
	return config.PythonIndentCandidates[len(config.PythonIndentCandidates)-1], false, nil
}
