package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/phpast"
)

func TestFQNForms(t *testing.T) {
	class := analysis.NamespacedFQN("App", "User")
	assert.Equal(t, analysis.FQN(`\App\User`), class)
	assert.Equal(t, analysis.FQN(`\App\User::load()`), analysis.MethodFQN(class, "load"))
	assert.Equal(t, analysis.FQN(`\App\User::name`), analysis.MemberFQN(class, "name"))
	assert.Equal(t, analysis.FQN(`\App\User::$cache`), analysis.StaticPropertyFQN(class, "cache"))
	assert.Equal(t, analysis.FQN(`\strlen`), analysis.NamespacedFQN("", "strlen"))
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, analysis.FQN(`\strlen`), analysis.FQN(`\App\strlen`).StripNamespace())
	assert.Equal(t, analysis.FQN(`\strlen`), analysis.FQN(`\strlen`).StripNamespace())
	// Member names never strip.
	assert.Equal(t, analysis.FQN(`\App\User::load()`), analysis.FQN(`\App\User::load()`).StripNamespace())
}

func TestDefinitionFQN(t *testing.T) {
	method := &phpast.Node{Kind: phpast.MethodDecl, Name: "bar", Role: "member"}
	prop := &phpast.Node{Kind: phpast.PropertyDecl, Name: "name", Role: "member"}
	staticProp := &phpast.Node{Kind: phpast.PropertyDecl, Name: "cache", Role: "member", Static: true}
	classConst := &phpast.Node{Kind: phpast.ClassConstDecl, Name: "LIMIT", Role: "member"}
	class := &phpast.Node{Kind: phpast.ClassDecl, Name: "Foo", Children: []*phpast.Node{method, prop, staticProp, classConst}}
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "helper"}
	ns := &phpast.Node{Kind: phpast.NamespaceDecl, Name: "App", Children: []*phpast.Node{class, fn}}
	sourceFile(ns)

	assert.Equal(t, analysis.FQN(`\App\Foo`), analysis.DefinitionFQN(class))
	assert.Equal(t, analysis.FQN(`\App\Foo::bar()`), analysis.DefinitionFQN(method))
	assert.Equal(t, analysis.FQN(`\App\Foo::name`), analysis.DefinitionFQN(prop))
	assert.Equal(t, analysis.FQN(`\App\Foo::$cache`), analysis.DefinitionFQN(staticProp))
	assert.Equal(t, analysis.FQN(`\App\Foo::LIMIT`), analysis.DefinitionFQN(classConst))
	assert.Equal(t, analysis.FQN(`\App\helper`), analysis.DefinitionFQN(fn))
}

func TestDefinitionFQNGlobalNamespace(t *testing.T) {
	fn := &phpast.Node{Kind: phpast.FunctionDecl, Name: "strlen"}
	sourceFile(fn)
	assert.Equal(t, analysis.FQN(`\strlen`), analysis.DefinitionFQN(fn))
}

func TestAnonymousClassMembersHaveNoFQN(t *testing.T) {
	method := &phpast.Node{Kind: phpast.MethodDecl, Name: "run", Role: "member"}
	anon := &phpast.Node{Kind: phpast.AnonClass, Role: "class", Children: []*phpast.Node{method}}
	sourceFile(nd(phpast.New, "", anon))

	assert.Equal(t, analysis.FQN(""), analysis.DefinitionFQN(method))
}
