package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/phpast"
)

func TestNearestPrecedingAssignmentWins(t *testing.T) {
	first := assignStmt("a", intLit("1"))
	second := assignStmt("a", strLit(`"x"`))
	use := varUse("a")
	sourceFile(first, second, nd(phpast.ExpressionStmt, "", roled("expression", use)))

	def := analysis.VariableDefinition(use)
	require.NotNil(t, def)
	assert.Same(t, second.Children[0], def)
}

func TestNoDefinition(t *testing.T) {
	use := varUse("missing")
	sourceFile(assignStmt("other", intLit("1")), nd(phpast.ExpressionStmt, "", roled("expression", use)))

	assert.Nil(t, analysis.VariableDefinition(use))
}

func TestParameterDefines(t *testing.T) {
	param := &phpast.Node{Kind: phpast.Parameter, Role: "parameter", Name: "x"}
	use := varUse("x")
	body := nd(phpast.Block, "body", nd(phpast.ExpressionStmt, "", roled("expression", use)))
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "f", Children: []*phpast.Node{param, body}}
	sourceFile(fn)

	assert.Same(t, param, analysis.VariableDefinition(use))
}

// The walk must not cross function boundaries: an outer assignment is
// invisible inside a function body.
func TestLookupStopsAtFunctionBoundary(t *testing.T) {
	outer := assignStmt("x", intLit("1"))
	use := varUse("x")
	body := nd(phpast.Block, "body", nd(phpast.ExpressionStmt, "", roled("expression", use)))
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "f", Children: []*phpast.Node{body}}
	sourceFile(outer, fn)

	assert.Nil(t, analysis.VariableDefinition(use))
}

func TestClosureCaptureDefines(t *testing.T) {
	capture := &phpast.Node{Kind: phpast.ClosureUse, Role: "use", Name: "x"}
	use := varUse("x")
	body := nd(phpast.Block, "body", nd(phpast.ExpressionStmt, "", roled("expression", use)))
	closure := &phpast.Node{Kind: phpast.Closure, Children: []*phpast.Node{capture, body}}
	sourceFile(assignStmt("x", intLit("5")), nd(phpast.ExpressionStmt, "", roled("expression", closure)))

	assert.Same(t, capture, analysis.VariableDefinition(use))
}

func TestAssignmentInsideNestedBlockFound(t *testing.T) {
	assign := assignStmt("x", intLit("2"))
	use := varUse("x")
	inner := nd(phpast.Block, "", assign, nd(phpast.ExpressionStmt, "", roled("expression", use)))
	sourceFile(inner)

	assert.Same(t, assign.Children[0], analysis.VariableDefinition(use))
}

func TestLaterAssignmentDoesNotDefineEarlierUse(t *testing.T) {
	use := varUse("x")
	sourceFile(
		nd(phpast.ExpressionStmt, "", roled("expression", use)),
		assignStmt("x", intLit("1")),
	)

	assert.Nil(t, analysis.VariableDefinition(use))
}
