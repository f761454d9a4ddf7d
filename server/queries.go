package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

// nodeAtPosition maps a protocol position to the innermost AST node of the
// open document.
func (s *Server) nodeAtPosition(params transport.TextDocumentPositionParams) (*analysis.Document, *phpast.Node, error) {
	uri := util.URI(params.TextDocument.URI)
	doc, ok := s.Project.GetDocument(uri)
	if !ok {
		return nil, nil, fmt.Errorf("document not open: %s", uri)
	}
	offset, err := PositionToOffset(params.Position, string(doc.Content), string(s.encoding))
	if err != nil {
		return nil, nil, err
	}
	return doc, phpast.NodeAt(doc.Root, uint32(offset)), nil
}

// referenceTarget lifts the cursor's node to the reference the queries
// operate on: a member name belongs to its member expression, everything
// else stands for itself.
func referenceTarget(node *phpast.Node) *phpast.Node {
	if node == nil {
		return nil
	}
	if node.Kind == phpast.Name && node.Role == "name" && node.Parent != nil {
		switch node.Parent.Kind {
		case phpast.MethodCall, phpast.PropertyFetch,
			phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
			return node.Parent
		}
	}
	return node
}

func Definition(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	var params transport.DefinitionParams
	if err := json.Unmarshal(par, &params); err != nil {
		return nil, err
	}

	doc, node, err := s.nodeAtPosition(params.TextDocumentPositionParams)
	if err != nil {
		return nil, err
	}
	node = referenceTarget(node)
	if node == nil {
		return []byte("null"), nil
	}

	// Variables resolve lexically inside their function; the symbol graph
	// never sees them.
	if node.Kind == phpast.Variable {
		def := analysis.VariableDefinition(node)
		if def == nil {
			return []byte("null"), nil
		}
		return json.Marshal(transport.Location{
			URI:   transport.DocumentURI(doc.Handle.URI),
			Range: analysis.RangeOf(def),
		})
	}

	def, err := s.Project.DefinitionForNode(node)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return []byte("null"), nil
	}
	return json.Marshal(def.Symbol.Location)
}

func Hover(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	var params transport.HoverParams
	if err := json.Unmarshal(par, &params); err != nil {
		return nil, err
	}

	_, node, err := s.nodeAtPosition(params.TextDocumentPositionParams)
	if err != nil {
		return nil, err
	}
	node = referenceTarget(node)
	if node == nil {
		return []byte("null"), nil
	}

	var rendered string
	if node.Kind == phpast.Variable {
		t := s.Project.TypeOfExpression(node)
		rendered = fmt.Sprintf("```php\n$%s\n```\n\nType: `%s`", node.Name, t)
	} else {
		def, err := s.Project.DefinitionForNode(node)
		if err != nil {
			return nil, err
		}
		if def == nil {
			// Fall back to expression typing for things without a
			// graph entry.
			t := s.Project.TypeOfExpression(node)
			if analysis.TypeEqual(t, analysis.Mixed) {
				return []byte("null"), nil
			}
			rendered = fmt.Sprintf("Type: `%s`", t)
		} else {
			rendered = renderSymbol(def)
		}
	}

	return json.Marshal(transport.Hover{
		Contents: transport.MarkupContent{Kind: transport.Markdown, Value: rendered},
	})
}

func renderSymbol(def *analysis.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "```php\n%s %s\n```", def.Symbol.Kind, def.Symbol.FQN)
	if def.Symbol.DeclaredType != nil {
		fmt.Fprintf(&b, "\n\nType: `%s`", def.Symbol.DeclaredType)
	}
	if def.Node != nil && def.Node.Doc != "" {
		b.WriteString("\n\n")
		b.WriteString(docSummary(def.Node.Doc))
	}
	return b.String()
}

func docSummary(doc string) string {
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if strings.HasPrefix(line, "@") {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func References(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	var params transport.ReferenceParams
	if err := json.Unmarshal(par, &params); err != nil {
		return nil, err
	}

	_, node, err := s.nodeAtPosition(params.TextDocumentPositionParams)
	if err != nil {
		return nil, err
	}
	node = referenceTarget(node)
	if node == nil || node.Kind == phpast.Variable {
		return []byte("[]"), nil
	}

	// Definition sites name their own symbol; reference sites resolve it.
	fqn := analysis.DefinitionFQN(node)
	var def *analysis.Definition
	if fqn == "" {
		def, err = s.Project.DefinitionForNode(node)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return []byte("[]"), nil
		}
		fqn = def.Symbol.FQN
	} else {
		def = s.Project.Definition(fqn)
	}

	locations := s.referenceLocations(fqn)
	if params.Context.IncludeDeclaration && def != nil {
		locations = append(locations, def.Symbol.Location)
	}
	logging.Logger.Info("references", "fqn", fqn, "count", len(locations))
	return json.Marshal(locations)
}

// referenceLocations scans the referrer documents for the nodes that
// resolve to fqn, including call sites that bind through the global-
// namespace fallback.
func (s *Server) referenceLocations(fqn analysis.FQN) []transport.Location {
	locations := []transport.Location{}
	for _, doc := range s.Project.ReferencesTo(fqn) {
		res := analysis.NewResolver(s.Project)
		phpast.Walk(doc.Root, func(n *phpast.Node) bool {
			var rng transport.Range
			switch n.Kind {
			case phpast.Name:
				// Member names report through their parent expression.
				if referenceTarget(n) != n {
					return true
				}
				rng = analysis.RangeOf(n)
			case phpast.ConstFetch:
				rng = analysis.RangeOf(n)
			case phpast.MethodCall, phpast.PropertyFetch,
				phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
				rng = analysis.RangeOf(n)
				if name := n.ChildByRole("name"); name != nil {
					rng = analysis.RangeOf(name)
				}
			default:
				return true
			}

			rf := res.ReferenceFQN(n)
			if rf == "" {
				return true
			}
			match := rf == fqn
			if !match && rf.StripNamespace() == fqn &&
				analysis.NamespaceFallbackApplies(n) && !s.Project.Graph().IsDefined(rf) {
				match = true
			}
			if match {
				locations = append(locations, transport.Location{
					URI:   transport.DocumentURI(doc.Handle.URI),
					Range: rng,
				})
			}
			return true
		})
	}
	return locations
}
