// Package ast implements the coarse AST node model of spec.md §3: a
// tagged sum over eight node variants (plus the TopLevel root), each
// carrying a source Range, an optional tighter InnerRange, ordered
// owned Children, a non-owning Parent back-reference, a 0-based
// SiblingRank, a lazily-derived Depth, and a deterministic NodeID.
package ast

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/codeglass/structlens/internal/position"
)

// Kind tags which of the fixed variant set a Node is.
type Kind string

const (
	KindTopLevel            Kind = "TopLevel"
	KindReferences          Kind = "References"
	KindClasses             Kind = "Classes"
	KindFunctions           Kind = "Functions"
	KindFunctionGroups      Kind = "FunctionGroups"
	KindFunctionDeclaration Kind = "FunctionDeclaration"
	KindArgument            Kind = "Argument"
	KindAttributes          Kind = "Attributes"
	KindComments            Kind = "Comments"
)

// Visitor is the double-dispatch contract the tree tokenizer (and any
// other AST consumer) walks the tree through — one method per variant,
// matching the teacher's prettyprinter.Visitor shape.
type Visitor interface {
	VisitTopLevel(*TopLevel)
	VisitReferences(*References)
	VisitClasses(*Classes)
	VisitFunctions(*Functions)
	VisitFunctionGroups(*FunctionGroups)
	VisitFunctionDeclaration(*FunctionDeclaration)
	VisitArgument(*Argument)
	VisitAttributes(*Attributes)
	VisitComments(*Comments)
}

// Node is the common interface every variant satisfies.
type Node interface {
	Kind() Kind
	Range() position.Range
	InnerRange() *position.Range
	Parent() Node
	Children() []Node
	SiblingRank() int
	Depth() int
	ID() uuid.UUID
	Accept(v Visitor)
}

// idNamespace roots the deterministic v5 NodeID derivation; its exact
// value is arbitrary (any fixed UUID works) but must never change,
// since changing it would change every NodeID across every re-parse.
var idNamespace = uuid.MustParse("2f5f3b3a-7c1e-4b7a-8b3a-5f3a7c1e4b7a")

func computeID(kind Kind, rng position.Range, parentID uuid.UUID) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%s", kind, rng, parentID)
	return uuid.NewSHA1(idNamespace, []byte(key))
}

type base struct {
	kind        Kind
	rng         position.Range
	inner       *position.Range
	children    []Node
	parent      Node
	siblingRank int
	id          uuid.UUID
}

func (b *base) Kind() Kind                      { return b.kind }
func (b *base) Range() position.Range           { return b.rng }
func (b *base) InnerRange() *position.Range     { return b.inner }
func (b *base) Parent() Node                    { return b.parent }
func (b *base) Children() []Node                { return b.children }
func (b *base) SiblingRank() int                { return b.siblingRank }
func (b *base) ID() uuid.UUID                    { return b.id }

func (b *base) Depth() int {
	d := 0
	n := b.parent
	for n != nil {
		d++
		n = n.Parent()
	}
	return d
}

// unexported mutation contracts — satisfied by every variant through
// embedding *base, never exposed on the public Node interface. Only
// this package and Attach/SetInnerRange below may mutate a node after
// construction, per spec.md §3's Lifecycle rule.
type childAppender interface{ appendChild(c Node) }
type parentSetter interface{ setParent(p Node, rank int) }

func (b *base) appendChild(c Node) { b.children = append(b.children, c) }
func (b *base) setParent(p Node, rank int) {
	b.parent = p
	b.siblingRank = rank
	b.id = computeID(b.kind, b.rng, p.ID())
}

// Attach appends child as parent's next child in insertion order,
// setting the child's Parent back-reference, SiblingRank, and
// recomputing its NodeID now that its parent is known. Panics if
// child.Range() is not contained in parent.Range() (invariant 1, §8).
func Attach(parent Node, child Node) {
	if !position.Contains(parent.Range(), child.Range()) {
		panic(fmt.Sprintf("ast: child range %s not contained in parent range %s", child.Range(), parent.Range()))
	}
	ca, ok := parent.(childAppender)
	if !ok {
		panic(fmt.Sprintf("ast: %T cannot have children attached", parent))
	}
	ca.appendChild(child)
	rank := len(parent.Children()) - 1
	ps, ok := child.(parentSetter)
	if !ok {
		panic(fmt.Sprintf("ast: %T cannot be attached as a child", child))
	}
	ps.setParent(parent, rank)
}

// SetInnerRange installs the node's body range (prefix = before-body,
// suffix = after-body). Panics if inner is not contained in the node's
// own range (invariant 3, §8).
func SetInnerRange(n Node, inner position.Range) {
	b, ok := n.(interface{ setInner(position.Range) })
	if !ok {
		panic(fmt.Sprintf("ast: %T has no inner range", n))
	}
	if !position.Contains(n.Range(), inner) {
		panic(fmt.Sprintf("ast: inner range %s not contained in node range %s", inner, n.Range()))
	}
	b.setInner(inner)
}

func (b *base) setInner(r position.Range) { b.inner = &r }

// ---- TopLevel ----

// TopLevel is the AST root; it never has a parent.
type TopLevel struct{ base }

func NewTopLevel(rng position.Range) *TopLevel {
	n := &TopLevel{base{kind: KindTopLevel, rng: rng}}
	n.id = computeID(KindTopLevel, rng, uuid.Nil)
	return n
}
func (n *TopLevel) Accept(v Visitor) { v.VisitTopLevel(n) }

// ---- References ----

// References is a single import/export statement.
type References struct {
	base
	referenceText   string
	refRelativePath string
}

func NewReferences(rng position.Range, referenceText, refRelativePath string) *References {
	return &References{base: base{kind: KindReferences, rng: rng}, referenceText: referenceText, refRelativePath: refRelativePath}
}
func (n *References) Accept(v Visitor)         { v.VisitReferences(n) }
func (n *References) ReferenceText() string    { return n.referenceText }
func (n *References) RefRelativePath() string  { return n.refRelativePath }

// ---- Classes ----

// Classes is a class definition; its InnerRange covers the class body.
type Classes struct {
	base
	classType           *string
	classDefinitionText string
}

func NewClasses(rng position.Range, classType *string, classDefinitionText string) *Classes {
	return &Classes{base: base{kind: KindClasses, rng: rng}, classType: classType, classDefinitionText: classDefinitionText}
}
func (n *Classes) Accept(v Visitor)              { v.VisitClasses(n) }
func (n *Classes) ClassType() (string, bool) {
	if n.classType == nil {
		return "", false
	}
	return *n.classType, true
}
func (n *Classes) ClassDefinitionText() string { return n.classDefinitionText }

// ---- Functions ----

// Functions is a free function or method definition; its InnerRange
// covers the function body. HasFunctionBody is assertable once, after
// construction, by the grammar parser once the body has been scanned.
type Functions struct {
	base
	functionDefinitionText string
	hasFunctionBody        bool
}

func NewFunctions(rng position.Range, functionDefinitionText string) *Functions {
	return &Functions{base: base{kind: KindFunctions, rng: rng}, functionDefinitionText: functionDefinitionText}
}
func (n *Functions) Accept(v Visitor)                 { v.VisitFunctions(n) }
func (n *Functions) FunctionDefinitionText() string   { return n.functionDefinitionText }
func (n *Functions) HasFunctionBody() bool            { return n.hasFunctionBody }
func (n *Functions) SetHasFunctionBody(has bool)      { n.hasFunctionBody = has }

// ---- FunctionGroups ----

// FunctionGroups synthetically bundles a doc-comment with its adjacent
// Functions node. It has either exactly one Functions child, or one
// Comments child followed by one Functions child (invariant 7, §8).
type FunctionGroups struct{ base }

func NewFunctionGroups(rng position.Range) *FunctionGroups {
	return &FunctionGroups{base{kind: KindFunctionGroups, rng: rng}}
}
func (n *FunctionGroups) Accept(v Visitor) { v.VisitFunctionGroups(n) }

// HasDocComment reports whether this group's first child is a Comments
// node (its doc comment) rather than the Functions node directly.
func (n *FunctionGroups) HasDocComment() bool {
	return len(n.children) == 2
}

// Comment returns the group's doc comment, if present.
func (n *FunctionGroups) Comment() (*Comments, bool) {
	if !n.HasDocComment() {
		return nil, false
	}
	c, ok := n.children[0].(*Comments)
	return c, ok
}

// Function returns the group's wrapped Functions node.
func (n *FunctionGroups) Function() *Functions {
	idx := 0
	if n.HasDocComment() {
		idx = 1
	}
	if idx >= len(n.children) {
		return nil
	}
	f, _ := n.children[idx].(*Functions)
	return f
}

// ---- FunctionDeclaration ----

// FunctionDeclaration is a function's header; its children are zero or
// more Argument nodes.
type FunctionDeclaration struct{ base }

func NewFunctionDeclaration(rng position.Range) *FunctionDeclaration {
	return &FunctionDeclaration{base{kind: KindFunctionDeclaration, rng: rng}}
}
func (n *FunctionDeclaration) Accept(v Visitor) { v.VisitFunctionDeclaration(n) }

// Arguments returns the declaration's Argument children in order.
func (n *FunctionDeclaration) Arguments() []*Argument {
	out := make([]*Argument, 0, len(n.children))
	for _, c := range n.children {
		if a, ok := c.(*Argument); ok {
			out = append(out, a)
		}
	}
	return out
}

// ---- Argument ----

// Argument is one parameter of a FunctionDeclaration.
type Argument struct {
	base
	argumentName string
	argumentType *string
}

func NewArgument(rng position.Range, name string, typ *string) *Argument {
	return &Argument{base: base{kind: KindArgument, rng: rng}, argumentName: name, argumentType: typ}
}
func (n *Argument) Accept(v Visitor)      { v.VisitArgument(n) }
func (n *Argument) ArgumentName() string  { return n.argumentName }
func (n *Argument) ArgumentType() (string, bool) {
	if n.argumentType == nil {
		return "", false
	}
	return *n.argumentType, true
}

// ---- Attributes ----

// Attributes is a class field declaration.
type Attributes struct {
	base
	attributeName string
	attributeType *string
}

func NewAttributes(rng position.Range, name string, typ *string) *Attributes {
	return &Attributes{base: base{kind: KindAttributes, rng: rng}, attributeName: name, attributeType: typ}
}
func (n *Attributes) Accept(v Visitor)      { v.VisitAttributes(n) }
func (n *Attributes) AttributeName() string { return n.attributeName }
func (n *Attributes) AttributeType() (string, bool) {
	if n.attributeType == nil {
		return "", false
	}
	return *n.attributeType, true
}

// ---- Comments ----

// Comments is a single comment, with its delimiters stripped.
type Comments struct {
	base
	isMultiLine     bool
	commentContents string
}

func NewComments(rng position.Range, isMultiLine bool, contents string) *Comments {
	return &Comments{base: base{kind: KindComments, rng: rng}, isMultiLine: isMultiLine, commentContents: contents}
}
func (n *Comments) Accept(v Visitor)          { v.VisitComments(n) }
func (n *Comments) IsMultiLine() bool         { return n.isMultiLine }
func (n *Comments) CommentContents() string   { return n.commentContents }
