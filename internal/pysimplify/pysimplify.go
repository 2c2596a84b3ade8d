// Package pysimplify implements flattenPython, the Python half of
// spec.md §6's flatten<Lang> operation: parse, then render the
// re-indented simplification-mode view via internal/treetoken.
package pysimplify

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/pydetect"
	"github.com/codeglass/structlens/internal/treetoken"
)

// Flatten parses source and renders its simplification-mode view.
// indentUnit defaults to config.DefaultSimplificationIndent when empty.
func Flatten(source string, indentUnit string) ([]treetoken.TreeToken, error) {
	root, err := pydetect.Parse(source)
	if err != nil {
		return nil, err
	}
	return treetoken.FlattenSimplified(root, indentUnit), nil
}

// FlattenSubtree renders only the subtree rooted at node (an ancestor
// path plus node itself, both already obtained from a prior Parse),
// preceded by its ancestors' opening lines.
func FlattenSubtree(path []ast.Node, node ast.Node, indentUnit string) []treetoken.TreeToken {
	return treetoken.FlattenSimplifiedSubtree(path, node, indentUnit)
}
