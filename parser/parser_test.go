package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/parser"
	"github.com/carn181/phplsp/phpast"
)

func parse(t *testing.T, src string) *phpast.Node {
	t.Helper()
	root, _ := parser.New().Parse([]byte(src))
	require.NotNil(t, root)
	phpast.Attach(root)
	return root
}

func findAll(root *phpast.Node, kind phpast.Kind) []*phpast.Node {
	var out []*phpast.Node
	phpast.Walk(root, func(n *phpast.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestParseFunction(t *testing.T) {
	root := parse(t, "<?php\nfunction foo($x) { return $x; }\n")

	fns := findAll(root, phpast.FunctionDecl)
	require.Len(t, fns, 1)
	assert.Equal(t, "foo", fns[0].Name)

	params := fns[0].ChildrenByRole("parameter")
	require.Len(t, params, 1)
	assert.Equal(t, "x", params[0].Name)
	require.NotNil(t, fns[0].ChildByRole("body"))
}

func TestParseClassWithMembers(t *testing.T) {
	root := parse(t, `<?php
class Foo {
	public $name;
	const LIMIT = 10;
	public function bar(): string { return "x"; }
}
`)

	classes := findAll(root, phpast.ClassDecl)
	require.Len(t, classes, 1)
	assert.Equal(t, "Foo", classes[0].Name)

	methods := findAll(root, phpast.MethodDecl)
	require.Len(t, methods, 1)
	assert.Equal(t, "bar", methods[0].Name)
	ret := methods[0].ChildByRole("return_type")
	require.NotNil(t, ret)
	assert.Equal(t, "string", ret.Name)

	props := findAll(root, phpast.PropertyDecl)
	require.Len(t, props, 1)
	assert.Equal(t, "name", props[0].Name)

	consts := findAll(root, phpast.ClassConstDecl)
	require.Len(t, consts, 1)
	assert.Equal(t, "LIMIT", consts[0].Name)
}

func TestNamespaceResolution(t *testing.T) {
	root := parse(t, `<?php
namespace App;

use Lib\Helper;

new Helper();
new Other();
new \Fully\Qualified();
`)

	news := findAll(root, phpast.New)
	require.Len(t, news, 3)

	assert.Equal(t, `\Lib\Helper`, news[0].ChildByRole("class").NamespacedName)
	assert.Equal(t, `\App\Other`, news[1].ChildByRole("class").NamespacedName)
	assert.Equal(t, `\Fully\Qualified`, news[2].ChildByRole("class").NamespacedName)
}

func TestUnbracedNamespaceEnclosesDeclarations(t *testing.T) {
	root := parse(t, "<?php\nnamespace App;\nfunction helper() {}\n")

	fns := findAll(root, phpast.FunctionDecl)
	require.Len(t, fns, 1)
	assert.Equal(t, analysis.FQN(`\App\helper`), analysis.DefinitionFQN(fns[0]))
}

func TestFunctionCallCarriesNamespacedName(t *testing.T) {
	root := parse(t, "<?php\nnamespace App;\nstrlen($s);\n")

	calls := findAll(root, phpast.FunctionCall)
	require.Len(t, calls, 1)
	callee := calls[0].ChildByRole("function")
	require.NotNil(t, callee)
	assert.Equal(t, "strlen", callee.Name)
	assert.Equal(t, `\App\strlen`, callee.NamespacedName)
}

func TestVariableChainEndToEnd(t *testing.T) {
	root := parse(t, "<?php\n$a = 5;\n$b = $a;\n$c = $b;\n$c;\n")

	uses := findAll(root, phpast.Variable)
	require.NotEmpty(t, uses)
	last := uses[len(uses)-1]
	require.Equal(t, "c", last.Name)

	got := analysis.NewResolver(nil).TypeOf(last)
	assert.Equal(t, "int", got.String())
}

func TestMethodCallShape(t *testing.T) {
	root := parse(t, "<?php\n$foo->bar(1, 2);\n")

	calls := findAll(root, phpast.MethodCall)
	require.Len(t, calls, 1)
	call := calls[0]
	require.NotNil(t, call.ChildByRole("object"))
	require.NotNil(t, call.ChildByRole("name"))
	assert.Equal(t, "bar", call.ChildByRole("name").Name)
	assert.Len(t, call.ChildrenByRole("argument"), 2)
}

func TestTernaryShape(t *testing.T) {
	root := parse(t, "<?php\n$x = $c ? 1 : \"a\";\n")

	ternaries := findAll(root, phpast.Ternary)
	require.Len(t, ternaries, 1)
	ternary := ternaries[0]
	require.NotNil(t, ternary.ChildByRole("cond"))
	require.NotNil(t, ternary.ChildByRole("then"))
	require.NotNil(t, ternary.ChildByRole("else"))

	got := analysis.NewResolver(nil).TypeOf(ternary)
	assert.Equal(t, "int|string", got.String())
}

func TestSyntaxErrorProducesDiagnostic(t *testing.T) {
	_, diags := parser.New().Parse([]byte("<?php\nfunction ( {\n"))
	assert.NotEmpty(t, diags)
}

func TestDocblockAttaches(t *testing.T) {
	root := parse(t, `<?php
/**
 * Does a thing.
 * @return string
 */
function thing() {}
`)

	fns := findAll(root, phpast.FunctionDecl)
	require.Len(t, fns, 1)
	assert.Contains(t, fns[0].Doc, "@return string")
}
