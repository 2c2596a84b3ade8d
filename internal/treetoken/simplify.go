package treetoken

import (
	"strings"

	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/config"
)

// simplify walks a tree the way the teacher's CodePrinter walks an
// expression tree (bytes.Buffer + indent int, one Visit method per
// node kind), except it builds a TreeToken list instead of a single
// string and never looks at source text at all: every line it emits
// is synthesized from a node's own stored definition text, never a
// byte range. Ranges are therefore left nil throughout — re-indented,
// brace-normalized output no longer corresponds character-for-character
// to any source span, so claiming one would mislead a caller doing
// range-based hover; OriginalNode carries the same information a
// Range would have been used for.
type simplify struct {
	indent int
	unit   string
	out    []TreeToken
}

func (s *simplify) emit(kind Kind, node ast.Node, text string) {
	s.out = append(s.out, TreeToken{
		Text:         strings.Repeat(s.unit, s.indent) + text + "\n",
		TokenType:    kind,
		OriginalNode: node,
	})
}

// opensBlock reports whether definition text ends in a brace-style
// block opener, the one place this walker distinguishes brace-delimited
// source (TypeScript's "{") from indentation-delimited source (Python's
// bare ":"): brace languages get a matching scaffold closer, indentation
// languages rely on the indent level alone, exactly as their own syntax
// does.
func opensBlock(definitionText string) bool {
	return strings.HasSuffix(strings.TrimRight(definitionText, " \t"), "{")
}

func (s *simplify) VisitTopLevel(n *ast.TopLevel) {
	for _, c := range n.Children() {
		c.Accept(s)
	}
}

func (s *simplify) VisitReferences(n *ast.References) {
	s.emit(KindReferences, n, n.ReferenceText())
}

func (s *simplify) VisitComments(n *ast.Comments) {
	if n.IsMultiLine() {
		s.emit(KindComments, n, "/* "+n.CommentContents()+" */")
		return
	}
	s.emit(KindComments, n, "// "+n.CommentContents())
}

func (s *simplify) VisitAttributes(n *ast.Attributes) {
	text := n.AttributeName()
	if typ, ok := n.AttributeType(); ok {
		text += ": " + typ
	}
	s.emit(KindAttribute, n, text)
}

// VisitArgument and VisitFunctionDeclaration are unreachable here:
// VisitFunctions emits a function's stored definition text (signature
// and arguments together) as one line and never descends into its
// FunctionDeclaration/Argument children. They exist only to satisfy
// ast.Visitor.
func (s *simplify) VisitArgument(n *ast.Argument)                     {}
func (s *simplify) VisitFunctionDeclaration(n *ast.FunctionDeclaration) {}

func (s *simplify) VisitClasses(n *ast.Classes) {
	header := n.ClassDefinitionText()
	s.emit(KindClass, n, header)
	s.indent++
	children := n.Children()
	if len(children) == 0 {
		s.emit(KindClass, n, "…")
	} else {
		for _, c := range children {
			c.Accept(s)
		}
	}
	s.indent--
	if opensBlock(header) {
		s.emit(KindClass, n, "}")
	}
}

func (s *simplify) VisitFunctions(n *ast.Functions) {
	header := n.FunctionDefinitionText()
	if !n.HasFunctionBody() {
		s.emit(KindFunction, n, header)
		return
	}
	if opensBlock(header) {
		s.emit(KindFunction, n, header+" … }")
	} else {
		s.emit(KindFunction, n, header+" …")
	}
}

func (s *simplify) VisitFunctionGroups(n *ast.FunctionGroups) {
	if comment, ok := n.Comment(); ok {
		comment.Accept(s)
	}
	if fn := n.Function(); fn != nil {
		fn.Accept(s)
	}
}

// emitHeaderOnly emits just n's own opening line, at the walker's
// current indent, without descending into its children — used to
// render the ancestor prefixes of FlattenSimplifiedSubtree. Ancestors
// that aren't Classes or Functions (References, Attributes, Comments
// never have descendants worth entering) contribute nothing.
func (s *simplify) emitHeaderOnly(n ast.Node) {
	switch t := n.(type) {
	case *ast.Classes:
		s.emit(KindClass, t, t.ClassDefinitionText())
	case *ast.Functions:
		s.emit(KindFunction, t, t.FunctionDefinitionText())
	}
}

// FlattenSimplifiedSubtree renders only the subtree rooted at node,
// preceded by the opening line of each of its ancestors in path (root
// down to, but excluding, node) at their own indent depth — the
// simplification-mode half of spec.md §4.8's tokenizeSubtree. Unlike
// FlattenSimplified this never closes the ancestor scaffolds; it's a
// contextual excerpt, not a full reconstruction.
func FlattenSimplifiedSubtree(path []ast.Node, node ast.Node, indentUnit string) []TreeToken {
	if indentUnit == "" {
		indentUnit = config.DefaultSimplificationIndent
	}
	s := &simplify{unit: indentUnit}
	for i, anc := range path {
		s.indent = i
		s.emitHeaderOnly(anc)
	}
	s.indent = len(path)
	node.Accept(s)
	return s.out
}

// FlattenSimplified renders root as the re-indented, minimized view of
// spec.md §4.8's simplification mode: function signatures, class
// shells, attributes, and comments only, with class and (where the
// source is brace-delimited) function bodies collapsed to a single
// elided span. indentUnit defaults to config.DefaultSimplificationIndent
// when empty.
func FlattenSimplified(root *ast.TopLevel, indentUnit string) []TreeToken {
	if indentUnit == "" {
		indentUnit = config.DefaultSimplificationIndent
	}
	s := &simplify{unit: indentUnit}
	root.Accept(s)
	return s.out
}
