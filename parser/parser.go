// Package parser turns PHP source into the analyzer's AST. tree-sitter
// does the heavy lifting; the lowering in convert.go resolves namespaces
// and use imports so name references carry their namespaced form.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
)

type Parser struct {
	language *tree_sitter.Language
	parser   *tree_sitter.Parser
	mu       sync.Mutex
}

func New() *Parser {
	language := tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	p := tree_sitter.NewParser()
	p.SetLanguage(language)
	return &Parser{language: language, parser: p}
}

// Parse builds the AST and the syntax diagnostics for content. The tree is
// error-tolerant: diagnostics never abort the conversion, so partial trees
// still index.
func (p *Parser) Parse(content []byte) (*phpast.Node, []transport.Diagnostic) {
	p.mu.Lock()
	tree := p.parser.Parse(content, nil)
	p.parser.Reset()
	p.mu.Unlock()
	defer tree.Close()

	diagnostics := p.syntaxDiagnostics(content, tree)

	c := newConverter(content)
	root := c.convertSource(tree.RootNode())
	return root, diagnostics
}

// syntaxDiagnostics reports every ERROR and MISSING node.
func (p *Parser) syntaxDiagnostics(content []byte, tree *tree_sitter.Tree) []transport.Diagnostic {
	query, err := tree_sitter.NewQuery(p.language, "(ERROR) @error\n(MISSING) @missing")
	if err != nil {
		return nil
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	diagnostics := []transport.Diagnostic{}
	matches := cursor.Matches(query, tree.RootNode(), content)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			start := node.StartPosition()
			end := node.EndPosition()

			var msg string
			if node.Kind() != "ERROR" {
				msg = fmt.Sprintf("missing %q", node.GrammarName())
			} else {
				msg = fmt.Sprintf("unexpected %q", node.Utf8Text(content))
			}

			diagnostics = append(diagnostics, transport.Diagnostic{
				Range: transport.Range{
					Start: transport.Position{Line: uint32(start.Row), Character: uint32(start.Column)},
					End:   transport.Position{Line: uint32(end.Row), Character: uint32(end.Column)},
				},
				Message:  msg,
				Severity: transport.SeverityError,
				Source:   "phplsp",
			})
		}
	}
	return diagnostics
}
