package analysis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/phpast"
)

func TestMain(m *testing.M) {
	logging.Logger = slog.Default()
	os.Exit(m.Run())
}

// newFixture wires a project over canned trees. Each source key parses to
// the tree built by its constructor, so tests control the AST exactly.
func newFixture(trees map[string]*phpast.Node, files fakeFiles) *analysis.Project {
	return analysis.NewProject(fakeParser{trees: trees}, files)
}

func globalStrlenTree() *phpast.Node {
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "strlen"}
	return sourceFile(fn)
}

func TestNamespaceFallback(t *testing.T) {
	call := nd(phpast.FunctionCall, "", nameRef("function", "strlen", `\App\strlen`))
	appTree := sourceFile(&phpast.Node{
		Kind: phpast.NamespaceDecl, Name: "App",
		Children: []*phpast.Node{nd(phpast.ExpressionStmt, "", roled("expression", call))},
	})
	phpast.Attach(appTree)

	p := newFixture(map[string]*phpast.Node{
		"app":    appTree,
		"global": globalStrlenTree(),
	}, nil)

	ctx := context.Background()
	p.OpenDocument(ctx, "file:///app.php", []byte("app"))
	p.OpenDocument(ctx, "file:///global.php", []byte("global"))

	def, err := p.DefinitionForNode(call)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, analysis.FQN(`\strlen`), def.Symbol.FQN)
	assert.Equal(t, "file:///global.php", string(def.Document.URI()))
}

// Static member references never fall back to the global namespace.
func TestNoFallbackForStaticCalls(t *testing.T) {
	call := nd(phpast.StaticCall, "",
		nameRef("class", "Thing", `\App\Thing`),
		nameRef("name", "method", ""),
	)
	appTree := sourceFile(nd(phpast.ExpressionStmt, "", roled("expression", call)))

	method := &phpast.Node{Kind: phpast.MethodDecl, Name: "method", Role: "member"}
	globalTree := sourceFile(&phpast.Node{Kind: phpast.ClassDecl, Name: "Thing", Children: []*phpast.Node{method}})

	p := newFixture(map[string]*phpast.Node{
		"app":    appTree,
		"global": globalTree,
	}, nil)

	ctx := context.Background()
	p.OpenDocument(ctx, "file:///app.php", []byte("app"))
	p.OpenDocument(ctx, "file:///global.php", []byte("global"))

	// \Thing::method() exists, but the reference names \App\Thing.
	def, err := p.DefinitionForNode(call)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestCloseRemovesDefinitionsAndReferrers(t *testing.T) {
	call := nd(phpast.StaticCall, "",
		nameRef("class", "B", `\B`),
		nameRef("name", "m", ""),
	)
	aTree := sourceFile(nd(phpast.ExpressionStmt, "", roled("expression", call)))

	method := &phpast.Node{Kind: phpast.MethodDecl, Name: "m", Role: "member"}
	bTree := sourceFile(&phpast.Node{Kind: phpast.ClassDecl, Name: "B", Children: []*phpast.Node{method}})

	p := newFixture(map[string]*phpast.Node{"a": aTree, "b": bTree}, nil)

	ctx := context.Background()
	p.OpenDocument(ctx, "file:///a.php", []byte("a"))
	p.OpenDocument(ctx, "file:///b.php", []byte("b"))

	def, err := p.DefinitionForNode(call)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, analysis.FQN(`\B::m()`), def.Symbol.FQN)

	refs := p.ReferencesTo(`\B::m()`)
	require.Len(t, refs, 1)
	assert.Equal(t, "file:///a.php", string(refs[0].URI()))

	p.CloseDocument("file:///b.php")

	def, err = p.DefinitionForNode(call)
	require.NoError(t, err)
	assert.Nil(t, def)
	assert.Empty(t, p.Graph().DefinitionsOf("file:///b.php"))
}

// Every local definition owns a graph entry pointing back at its document.
func TestGraphMatchesLocalMaps(t *testing.T) {
	method := &phpast.Node{Kind: phpast.MethodDecl, Name: "m", Role: "member"}
	tree := sourceFile(
		&phpast.Node{Kind: phpast.ClassDecl, Name: "C", Children: []*phpast.Node{method}},
		&phpast.Node{Kind: phpast.FunctionDecl, Name: "f"},
	)

	p := newFixture(map[string]*phpast.Node{"src": tree}, nil)
	doc := p.OpenDocument(context.Background(), "file:///c.php", []byte("src"))
	require.NotNil(t, doc)
	require.NotEmpty(t, doc.Definitions)

	for fqn := range doc.Definitions {
		def := p.Definition(fqn)
		require.NotNil(t, def, "graph missing %s", fqn)
		assert.Equal(t, doc.URI(), def.Document.URI())
	}
}

func TestUpdateSameTextKeepsDocument(t *testing.T) {
	tree := sourceFile(&phpast.Node{Kind: phpast.FunctionDecl, Name: "f"})
	p := newFixture(map[string]*phpast.Node{"src": tree}, nil)

	ctx := context.Background()
	first := p.OpenDocument(ctx, "file:///f.php", []byte("src"))
	second := p.UpdateDocument(ctx, "file:///f.php", []byte("src"))

	assert.Same(t, first, second)
	assert.True(t, p.Graph().IsDefined(`\f`))
}

func TestUpdateReplacesDefinitions(t *testing.T) {
	oldTree := sourceFile(&phpast.Node{Kind: phpast.FunctionDecl, Name: "old"})
	newTree := sourceFile(&phpast.Node{Kind: phpast.FunctionDecl, Name: "new"})
	p := newFixture(map[string]*phpast.Node{"v1": oldTree, "v2": newTree}, nil)

	ctx := context.Background()
	p.OpenDocument(ctx, "file:///f.php", []byte("v1"))
	require.True(t, p.Graph().IsDefined(`\old`))

	p.UpdateDocument(ctx, "file:///f.php", []byte("v2"))
	assert.False(t, p.Graph().IsDefined(`\old`))
	assert.True(t, p.Graph().IsDefined(`\new`))
}

func TestDefinitionForVariableIsContractViolation(t *testing.T) {
	use := varUse("x")
	sourceFile(nd(phpast.ExpressionStmt, "", roled("expression", use)))

	p := newFixture(nil, nil)
	_, err := p.DefinitionForNode(use)
	assert.ErrorIs(t, err, analysis.ErrVariableNode)
}

func TestLoadDocumentFromDisk(t *testing.T) {
	p := newFixture(
		map[string]*phpast.Node{"lib": globalStrlenTree()},
		fakeFiles{"/lib.php": []byte("lib")},
	)

	doc, err := p.LoadDocument(context.Background(), "file:///lib.php")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, p.Graph().IsDefined(`\strlen`))

	// Loaded documents stay out of the open set but remain queryable.
	got, ok := p.GetDocument("file:///lib.php")
	assert.True(t, ok)
	assert.Same(t, doc, got)
}

func TestLoadDocumentUnavailable(t *testing.T) {
	p := newFixture(nil, fakeFiles{})
	_, err := p.LoadDocument(context.Background(), "file:///gone.php")
	assert.Error(t, err)

	_, ok := p.GetDocument("file:///gone.php")
	assert.False(t, ok)
}

func TestOpenPromotesLoadedDocument(t *testing.T) {
	tree := globalStrlenTree()
	p := newFixture(
		map[string]*phpast.Node{"lib": tree},
		fakeFiles{"/lib.php": []byte("lib")},
	)

	ctx := context.Background()
	_, err := p.LoadDocument(ctx, "file:///lib.php")
	require.NoError(t, err)

	opened := p.OpenDocument(ctx, "file:///lib.php", []byte("lib"))
	require.NotNil(t, opened)
	assert.True(t, p.Graph().IsDefined(`\strlen`))

	// Closing now must clear the graph: the loaded copy is gone.
	p.CloseDocument("file:///lib.php")
	assert.False(t, p.Graph().IsDefined(`\strlen`))
}
