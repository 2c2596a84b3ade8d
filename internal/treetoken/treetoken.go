// Package treetoken implements the flat-token views over a parsed
// tree: faithful-mode flattening at five fidelity levels (spec.md
// §4.8), plus the subtree/replace/target-node operations, and the
// error case a structurally sound tree should never trigger.
package treetoken

import (
	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/diagnostics"
	"github.com/codeglass/structlens/internal/position"
)

// Kind tags a flattened token's origin.
type Kind string

const (
	KindTopLevel           Kind = "TOP_LEVEL"
	KindReferences         Kind = "REFERENCES"
	KindFunctionGroup      Kind = "FUNCTION_GROUP"
	KindFunction           Kind = "FUNCTION"
	KindFunctionDefinition Kind = "FUNCTION_DEFINITION"
	KindComments           Kind = "COMMENTS"
	KindClass              Kind = "CLASS"
	KindAttribute          Kind = "ATTRIBUTE"
	KindArgument           Kind = "ARGUMENT"
	KindOthers             Kind = "OTHERS"
)

// TreeToken is one flattened span. Range is nil for scaffolding text
// (simplification-mode indentation and body ellipses) that doesn't
// correspond to a literal source span; OriginalNode is nil for the
// same scaffolding and for OTHERS gap filler.
type TreeToken struct {
	Text         string
	TokenType    Kind
	Range        *position.Range
	OriginalNode ast.Node
}

// Fidelity is a faithful-mode detail level: higher levels recurse
// deeper into the tree instead of emitting a node's full text whole.
type Fidelity int

const (
	FidelityNone Fidelity = iota
	FidelityTopLevelOnly
	FidelityFunctionsAndClasses
	FidelityFunctionsAndClassesAndArguments
	FidelityEverything
)

func kindOf(n ast.Node) Kind {
	switch n.(type) {
	case *ast.TopLevel:
		return KindTopLevel
	case *ast.References:
		return KindReferences
	case *ast.Classes:
		return KindClass
	case *ast.Functions:
		return KindFunction
	case *ast.FunctionGroups:
		return KindFunctionGroup
	case *ast.FunctionDeclaration:
		return KindFunctionDefinition
	case *ast.Argument:
		return KindArgument
	case *ast.Attributes:
		return KindAttribute
	case *ast.Comments:
		return KindComments
	default:
		return KindOthers
	}
}

// faithful walks a tree exactly once, in source order, emitting one
// TreeToken per visited span and an OTHERS filler for every gap
// between them. It implements ast.Visitor the way the teacher's
// TreePrinter implements it: one method per node kind, writing into
// shared state instead of returning a value.
type faithful struct {
	lines        *position.LineIndex
	source       string
	fidelity     Fidelity
	excludeInner bool
	prevEnd      position.Index
	out          []TreeToken
	err          error

	// set only by TokenizeReplaceNode/TokenizeTargetNode.
	replaceTarget  ast.Node
	replaceText    string
	placeholderIdx *int
}

func (f *faithful) slice(r position.Range) string {
	return f.source[f.lines.ToOffset(r.Start):f.lines.ToOffset(r.End)]
}

// emitGapTo emits the unowned span between prevEnd and end as OTHERS,
// then advances prevEnd to end. A no-op if the two already coincide.
func (f *faithful) emitGapTo(end position.Index) {
	if f.err != nil {
		return
	}
	if position.Less(end, f.prevEnd) {
		f.err = diagnostics.NewImplError(diagnostics.PhaseTreeToken, diagnostics.ErrT001, position.Range{Start: end, End: f.prevEnd})
		return
	}
	if position.Less(f.prevEnd, end) {
		r := position.Range{Start: f.prevEnd, End: end}
		f.out = append(f.out, TreeToken{Text: f.slice(r), TokenType: KindOthers, Range: &r})
	}
	f.prevEnd = end
}

// emitWhole emits n's entire own range as a single ranged token and
// terminates descent into it.
func (f *faithful) emitWhole(n ast.Node, kind Kind) {
	f.emitGapTo(n.Range().Start)
	if f.err != nil {
		return
	}
	r := n.Range()
	f.out = append(f.out, TreeToken{Text: f.slice(r), TokenType: kind, Range: &r, OriginalNode: n})
	f.prevEnd = r.End
}

// emitStructural emits the span [from, to) tagged as kind and owned by
// n (used for a split node's own header/trailer text, the part of its
// range not covered by any child). A no-op span is silently skipped.
func (f *faithful) emitStructural(from, to position.Index, kind Kind, n ast.Node) {
	if f.err != nil {
		return
	}
	r := position.Range{Start: from, End: to}
	if !r.Empty() {
		f.out = append(f.out, TreeToken{Text: f.slice(r), TokenType: kind, Range: &r, OriginalNode: n})
	}
	f.prevEnd = to
}

// visitChild dispatches to n's own Visit method, unless n is the
// configured replacement target, in which case its whole span is
// swapped for literal replacement text instead of being descended
// into (TokenizeReplaceNode/TokenizeTargetNode).
func (f *faithful) visitChild(n ast.Node) {
	if f.err != nil {
		return
	}
	if f.replaceTarget != nil && n == f.replaceTarget {
		f.emitGapTo(n.Range().Start)
		if f.err != nil {
			return
		}
		r := n.Range()
		idx := len(f.out)
		f.out = append(f.out, TreeToken{Text: f.replaceText, TokenType: kindOf(n), Range: &r, OriginalNode: n})
		f.prevEnd = r.End
		if f.placeholderIdx != nil {
			*f.placeholderIdx = idx
		}
		return
	}
	if f.replaceTarget != nil {
		// an ancestor of the target is always split, whatever the
		// fidelity, so the walk reaches the target itself.
		for p := f.replaceTarget.Parent(); p != nil; p = p.Parent() {
			if p == n {
				f.splitNode(n, kindOf(n))
				return
			}
		}
	}
	n.Accept(f)
}

// splitNode emits n's children in order, with n's own text outside
// their combined span (the "prefix"/"suffix" of spec.md §4.8) tagged
// as kind. A childless node degenerates to a whole emission.
func (f *faithful) splitNode(n ast.Node, kind Kind) {
	children := n.Children()
	if len(children) == 0 {
		f.emitWhole(n, kind)
		return
	}
	f.emitGapTo(n.Range().Start)
	if f.err != nil {
		return
	}
	first := children[0]
	f.emitStructural(n.Range().Start, first.Range().Start, kind, n)
	if f.err != nil {
		return
	}
	for _, c := range children {
		f.visitChild(c)
		if f.err != nil {
			return
		}
	}
	last := children[len(children)-1]
	f.emitStructural(last.Range().End, n.Range().End, kind, n)
}

func (f *faithful) splitClasses() bool {
	return f.excludeInner && f.fidelity >= FidelityFunctionsAndClasses
}

func (f *faithful) splitFunctions() bool {
	return f.excludeInner && f.fidelity >= FidelityFunctionsAndClassesAndArguments
}

func (f *faithful) VisitTopLevel(n *ast.TopLevel) {
	if f.fidelity == FidelityNone {
		f.emitWhole(n, KindTopLevel)
		return
	}
	f.emitGapTo(n.Range().Start)
	if f.err != nil {
		return
	}
	for _, c := range n.Children() {
		f.visitChild(c)
		if f.err != nil {
			return
		}
	}
	f.emitGapTo(n.Range().End)
}

func (f *faithful) VisitReferences(n *ast.References) { f.emitWhole(n, KindReferences) }
func (f *faithful) VisitComments(n *ast.Comments)      { f.emitWhole(n, KindComments) }
func (f *faithful) VisitAttributes(n *ast.Attributes)  { f.emitWhole(n, KindAttribute) }
func (f *faithful) VisitArgument(n *ast.Argument)      { f.emitWhole(n, KindArgument) }

func (f *faithful) VisitClasses(n *ast.Classes) {
	if !f.splitClasses() {
		f.emitWhole(n, KindClass)
		return
	}
	f.splitNode(n, KindClass)
}

func (f *faithful) VisitFunctions(n *ast.Functions) {
	if !f.splitFunctions() {
		f.emitWhole(n, KindFunction)
		return
	}
	f.splitNode(n, KindFunction)
}

func (f *faithful) VisitFunctionDeclaration(n *ast.FunctionDeclaration) {
	f.splitNode(n, KindFunctionDefinition)
}

// VisitFunctionGroups implements the doc-comment de-duplication rule
// of spec.md §4.8. A FunctionGroups' Comments child and its Functions
// child do not always have disjoint ranges: a Python-like detector's
// doc comment is lifted out of the function's own body (spec.md §4.5),
// so the Comments child's range sits inside the Functions child's own
// full range rather than before it. The containment check below is
// what keeps that comment's source text from being printed twice —
// once as the lifted Comments child, once as part of Functions' own
// span — so it is load-bearing, not defensive.
func (f *faithful) VisitFunctionGroups(n *ast.FunctionGroups) {
	if !f.splitFunctions() {
		f.emitWhole(n, KindFunctionGroup)
		return
	}
	fn := n.Function()
	comment, hasComment := n.Comment()
	if !hasComment {
		if fn != nil {
			f.visitChild(fn)
		}
		return
	}
	if fn != nil && position.Contains(fn.Range(), comment.Range()) {
		f.visitChild(fn)
		return
	}
	f.emitGapTo(n.Range().Start)
	if f.err != nil {
		return
	}
	f.visitChild(comment)
	if f.err != nil {
		return
	}
	if fn != nil {
		f.visitChild(fn)
	}
	if f.err != nil {
		return
	}
	f.emitGapTo(n.Range().End)
}

// FlattenFaithfully flattens root into a token list whose concatenated
// Text fields exactly reproduce source, at the given fidelity and
// excludeInnerRangeIfPossible setting.
func FlattenFaithfully(root *ast.TopLevel, source string, fidelity Fidelity, excludeInnerRangeIfPossible bool) ([]TreeToken, error) {
	f := &faithful{
		lines:        position.NewLineIndex(source),
		source:       source,
		fidelity:     fidelity,
		excludeInner: excludeInnerRangeIfPossible,
	}
	f.visitChild(root)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// TokenizeSubtree flattens only the subtree rooted at node, optionally
// preceded by the header/prefix text of each node along path (its
// ancestors from the tree root down to, but excluding, node itself) —
// enough for a caller to show node in context without re-flattening
// everything around it. The faithful tokenizer never re-indents; a
// caller wanting a re-indented view uses the simplification tokenizers
// instead.
func TokenizeSubtree(path []ast.Node, node ast.Node, source string, fidelity Fidelity, excludeInnerRangeIfPossible bool) []TreeToken {
	f := &faithful{
		lines:        position.NewLineIndex(source),
		source:       source,
		fidelity:     fidelity,
		excludeInner: excludeInnerRangeIfPossible,
	}
	if len(path) == 0 {
		f.prevEnd = node.Range().Start
	} else {
		f.prevEnd = path[0].Range().Start
		for i, anc := range path {
			var next ast.Node = node
			if i+1 < len(path) {
				next = path[i+1]
			}
			f.emitStructural(anc.Range().Start, next.Range().Start, kindOf(anc), anc)
		}
	}
	node.Accept(f)
	return f.out
}

// TokenizeReplaceNode flattens root but substitutes replacement for
// target's own entire span instead of descending into it.
func TokenizeReplaceNode(root *ast.TopLevel, source string, fidelity Fidelity, excludeInnerRangeIfPossible bool, target ast.Node, replacement string) ([]TreeToken, error) {
	f := &faithful{
		lines:         position.NewLineIndex(source),
		source:        source,
		fidelity:      fidelity,
		excludeInner:  excludeInnerRangeIfPossible,
		replaceTarget: target,
		replaceText:   replacement,
	}
	f.visitChild(root)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// TokenizeTargetNode is TokenizeReplaceNode with a caller-chosen
// placeholder string, additionally reporting the placeholder token's
// index in the returned slice so a caller can splice a richer view
// back in at that exact position.
func TokenizeTargetNode(root *ast.TopLevel, source string, fidelity Fidelity, excludeInnerRangeIfPossible bool, target ast.Node, placeholder string) ([]TreeToken, int, error) {
	idx := -1
	f := &faithful{
		lines:          position.NewLineIndex(source),
		source:         source,
		fidelity:       fidelity,
		excludeInner:   excludeInnerRangeIfPossible,
		replaceTarget:  target,
		replaceText:    placeholder,
		placeholderIdx: &idx,
	}
	f.visitChild(root)
	if f.err != nil {
		return nil, -1, f.err
	}
	return f.out, idx, nil
}
