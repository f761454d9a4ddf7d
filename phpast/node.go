package phpast

// The AST the analyzer works on. The parser package lowers tree-sitter
// trees into these nodes; everything above the parse boundary dispatches on
// Kind instead of grammar names.

type Kind int

const (
	Unknown Kind = iota
	SourceFile

	// Declarations
	NamespaceDecl
	UseDecl
	ClassDecl
	InterfaceDecl
	FunctionDecl
	MethodDecl
	PropertyDecl
	ClassConstDecl
	ConstDecl
	Parameter
	ClosureUse

	// Statements
	Block
	ExpressionStmt
	ReturnStmt

	// Expressions
	Variable
	Assign
	FunctionCall
	MethodCall
	PropertyFetch
	StaticCall
	StaticPropertyFetch
	ClassConstFetch
	New
	AnonClass
	Clone
	Ternary
	Coalesce
	BinaryOp
	UnaryOp
	Cast
	ArrayLiteral
	ArrayElement
	ArrayIndex
	Include
	InstanceOf
	Isset
	Empty
	Closure
	ArrowFunction
	ConstFetch
	IntLiteral
	FloatLiteral
	StringLiteral
	InterpolatedString
	BoolLiteral
	NullLiteral

	// Name is an identifier in type or class position.
	Name
)

var kindNames = map[Kind]string{
	Unknown:             "Unknown",
	SourceFile:          "SourceFile",
	NamespaceDecl:       "NamespaceDecl",
	UseDecl:             "UseDecl",
	ClassDecl:           "ClassDecl",
	InterfaceDecl:       "InterfaceDecl",
	FunctionDecl:        "FunctionDecl",
	MethodDecl:          "MethodDecl",
	PropertyDecl:        "PropertyDecl",
	ClassConstDecl:      "ClassConstDecl",
	ConstDecl:           "ConstDecl",
	Parameter:           "Parameter",
	ClosureUse:          "ClosureUse",
	Block:               "Block",
	ExpressionStmt:      "ExpressionStmt",
	ReturnStmt:          "ReturnStmt",
	Variable:            "Variable",
	Assign:              "Assign",
	FunctionCall:        "FunctionCall",
	MethodCall:          "MethodCall",
	PropertyFetch:       "PropertyFetch",
	StaticCall:          "StaticCall",
	StaticPropertyFetch: "StaticPropertyFetch",
	ClassConstFetch:     "ClassConstFetch",
	New:                 "New",
	AnonClass:           "AnonClass",
	Clone:               "Clone",
	Ternary:             "Ternary",
	Coalesce:            "Coalesce",
	BinaryOp:            "BinaryOp",
	UnaryOp:             "UnaryOp",
	Cast:                "Cast",
	ArrayLiteral:        "ArrayLiteral",
	ArrayElement:        "ArrayElement",
	ArrayIndex:          "ArrayIndex",
	Include:             "Include",
	InstanceOf:          "InstanceOf",
	Isset:               "Isset",
	Empty:               "Empty",
	Closure:             "Closure",
	ArrowFunction:       "ArrowFunction",
	ConstFetch:          "ConstFetch",
	IntLiteral:          "IntLiteral",
	FloatLiteral:        "FloatLiteral",
	StringLiteral:       "StringLiteral",
	InterpolatedString:  "InterpolatedString",
	BoolLiteral:         "BoolLiteral",
	NullLiteral:         "NullLiteral",
	Name:                "Name",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

type Point struct {
	Row    uint32
	Column uint32
}

type Span struct {
	StartByte uint32
	EndByte   uint32
	Start     Point
	End       Point
}

// Node is one AST node. Children are ordered as in source; Role names the
// slot a child fills in its parent ("left", "object", "name", ...).
// Parent and PrevSibling are attached by Attach after parsing.
type Node struct {
	Kind        Kind
	Role        string
	Parent      *Node
	PrevSibling *Node
	Children    []*Node

	// Name is the bare declared or referenced identifier, without
	// namespace. NamespacedName is the parse-time resolution of a
	// referenced name against the enclosing namespace and use imports,
	// in canonical leading-backslash form. Empty for dynamic names.
	Name           string
	NamespacedName string

	// Operator holds the token for BinaryOp/UnaryOp and the target type
	// for Cast ("string", "int", ...).
	Operator string

	// Value is the literal source text for scalar literals.
	Value string

	// Doc is the docblock immediately preceding a declaration.
	Doc string

	Static bool

	Span Span
}

func (n *Node) ChildByRole(role string) *Node {
	for _, c := range n.Children {
		if c.Role == role {
			return c
		}
	}
	return nil
}

func (n *Node) ChildrenByRole(role string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// IsFunctionLike reports whether the node introduces a variable scope.
func (n *Node) IsFunctionLike() bool {
	switch n.Kind {
	case FunctionDecl, MethodDecl, Closure, ArrowFunction:
		return true
	}
	return false
}

// Attach populates Parent and PrevSibling links in a single walk.
func Attach(root *Node) {
	if root == nil {
		return
	}
	var prev *Node
	for _, c := range root.Children {
		c.Parent = root
		c.PrevSibling = prev
		prev = c
		Attach(c)
	}
}

// Walk calls fn for every node in pre-order. fn returning false prunes the
// subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// NodeAt returns the innermost node whose span contains the byte offset.
func NodeAt(root *Node, offset uint32) *Node {
	if root == nil || offset < root.Span.StartByte || offset >= root.Span.EndByte {
		return nil
	}
	for _, c := range root.Children {
		if inner := NodeAt(c, offset); inner != nil {
			return inner
		}
	}
	return root
}

// EnclosingFunction returns the nearest function-like ancestor, or nil at
// file scope.
func (n *Node) EnclosingFunction() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.IsFunctionLike() {
			return p
		}
	}
	return nil
}

// EnclosingNamespace returns the namespace declaration the node sits in, or
// nil in the global namespace.
func (n *Node) EnclosingNamespace() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == NamespaceDecl {
			return p
		}
	}
	return nil
}

// EnclosingClass returns the nearest class or interface declaration.
func (n *Node) EnclosingClass() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == ClassDecl || p.Kind == InterfaceDecl || p.Kind == AnonClass {
			return p
		}
	}
	return nil
}
