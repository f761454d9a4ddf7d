package phpast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/phpast"
)

func TestAttachLinks(t *testing.T) {
	a := &phpast.Node{Kind: phpast.ExpressionStmt}
	b := &phpast.Node{Kind: phpast.ExpressionStmt}
	c := &phpast.Node{Kind: phpast.ReturnStmt}
	root := &phpast.Node{Kind: phpast.SourceFile, Children: []*phpast.Node{a, b, c}}

	phpast.Attach(root)

	assert.Nil(t, root.Parent)
	assert.Same(t, root, a.Parent)
	assert.Same(t, root, c.Parent)
	assert.Nil(t, a.PrevSibling)
	assert.Same(t, a, b.PrevSibling)
	assert.Same(t, b, c.PrevSibling)
}

func TestChildByRole(t *testing.T) {
	left := &phpast.Node{Kind: phpast.Variable, Role: "left", Name: "x"}
	right := &phpast.Node{Kind: phpast.IntLiteral, Role: "right", Value: "1"}
	assign := &phpast.Node{Kind: phpast.Assign, Children: []*phpast.Node{left, right}}

	assert.Same(t, left, assign.ChildByRole("left"))
	assert.Same(t, right, assign.ChildByRole("right"))
	assert.Nil(t, assign.ChildByRole("cond"))
}

func TestNodeAt(t *testing.T) {
	inner := &phpast.Node{Kind: phpast.Variable, Span: phpast.Span{StartByte: 5, EndByte: 7}}
	outer := &phpast.Node{Kind: phpast.ExpressionStmt, Span: phpast.Span{StartByte: 0, EndByte: 10}, Children: []*phpast.Node{inner}}
	root := &phpast.Node{Kind: phpast.SourceFile, Span: phpast.Span{StartByte: 0, EndByte: 20}, Children: []*phpast.Node{outer}}

	require.NotNil(t, phpast.NodeAt(root, 6))
	assert.Same(t, inner, phpast.NodeAt(root, 6))
	assert.Same(t, outer, phpast.NodeAt(root, 2))
	assert.Same(t, root, phpast.NodeAt(root, 15))
	assert.Nil(t, phpast.NodeAt(root, 25))
}

func TestEnclosingFunction(t *testing.T) {
	use := &phpast.Node{Kind: phpast.Variable, Name: "x"}
	body := &phpast.Node{Kind: phpast.Block, Role: "body", Children: []*phpast.Node{use}}
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "f", Children: []*phpast.Node{body}}
	root := &phpast.Node{Kind: phpast.SourceFile, Children: []*phpast.Node{fn}}
	phpast.Attach(root)

	assert.Same(t, fn, use.EnclosingFunction())
	assert.Nil(t, fn.EnclosingFunction())
}
