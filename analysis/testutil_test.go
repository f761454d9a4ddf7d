package analysis_test

import (
	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

// AST builders for parser-independent tests.

func nd(kind phpast.Kind, role string, children ...*phpast.Node) *phpast.Node {
	return &phpast.Node{Kind: kind, Role: role, Children: children}
}

func nameRef(role, bare, namespaced string) *phpast.Node {
	return &phpast.Node{Kind: phpast.Name, Role: role, Name: bare, NamespacedName: namespaced}
}

func varUse(name string) *phpast.Node {
	return &phpast.Node{Kind: phpast.Variable, Name: name}
}

func intLit(v string) *phpast.Node {
	return &phpast.Node{Kind: phpast.IntLiteral, Value: v}
}

func strLit(v string) *phpast.Node {
	return &phpast.Node{Kind: phpast.StringLiteral, Value: v}
}

func roled(role string, n *phpast.Node) *phpast.Node {
	n.Role = role
	return n
}

// assignStmt wraps $name = rhs in an expression statement, the shape
// statements take in parsed trees.
func assignStmt(name string, rhs *phpast.Node) *phpast.Node {
	return nd(phpast.ExpressionStmt, "",
		nd(phpast.Assign, "expression",
			roled("left", varUse(name)),
			roled("right", rhs),
		),
	)
}

func sourceFile(children ...*phpast.Node) *phpast.Node {
	root := nd(phpast.SourceFile, "", children...)
	phpast.Attach(root)
	return root
}

// fakeParser serves canned trees keyed by source text, standing in for the
// tree-sitter collaborator.
type fakeParser struct {
	trees map[string]*phpast.Node
}

func (f fakeParser) Parse(content []byte) (*phpast.Node, []transport.Diagnostic) {
	if root, ok := f.trees[string(content)]; ok {
		return root, nil
	}
	return &phpast.Node{Kind: phpast.SourceFile}, nil
}

type fakeFiles map[util.Path][]byte

func (f fakeFiles) Read(path util.Path) ([]byte, error) {
	if content, ok := f[path]; ok {
		return content, nil
	}
	return nil, errNotFound
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var errNotFound = notFoundError{}

// mapSource is a DefinitionSource backed by a plain map, for resolver
// tests that need no graph.
type mapSource map[analysis.FQN]*analysis.Definition

func (m mapSource) Definition(fqn analysis.FQN) *analysis.Definition { return m[fqn] }

func defWithType(fqn analysis.FQN, kind analysis.SymbolKind, t analysis.Type) *analysis.Definition {
	return &analysis.Definition{
		Symbol: analysis.SymbolInformation{Kind: kind, FQN: fqn, DeclaredType: t},
	}
}
