package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

func DocumentSymbols(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	var params transport.DocumentSymbolParams
	if err := json.Unmarshal(par, &params); err != nil {
		return nil, err
	}

	uri := util.URI(params.TextDocument.URI)
	doc, ok := s.Project.GetDocument(uri)
	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}

	return json.Marshal(outline(doc.Root))
}

// outline builds the nested symbol tree for a container node.
func outline(container *phpast.Node) []transport.DocumentSymbol {
	symbols := []transport.DocumentSymbol{}
	if container == nil {
		return symbols
	}
	for _, n := range container.Children {
		switch n.Kind {
		case phpast.NamespaceDecl:
			symbols = append(symbols, transport.DocumentSymbol{
				Name:           n.Name,
				Kind:           transport.SymbolNamespace,
				Range:          analysis.RangeOf(n),
				SelectionRange: analysis.RangeOf(n),
				Children:       outline(n),
			})
		case phpast.ClassDecl, phpast.InterfaceDecl:
			kind := transport.SymbolClass
			if n.Kind == phpast.InterfaceDecl {
				kind = transport.SymbolInterface
			}
			symbols = append(symbols, transport.DocumentSymbol{
				Name:           n.Name,
				Kind:           kind,
				Range:          analysis.RangeOf(n),
				SelectionRange: analysis.RangeOf(n),
				Children:       outline(n),
			})
		case phpast.FunctionDecl, phpast.MethodDecl:
			kind := transport.SymbolFunction
			if n.Kind == phpast.MethodDecl {
				kind = transport.SymbolMethod
			}
			symbols = append(symbols, transport.DocumentSymbol{
				Name:           n.Name,
				Kind:           kind,
				Range:          analysis.RangeOf(n),
				SelectionRange: analysis.RangeOf(n),
			})
		case phpast.PropertyDecl:
			symbols = append(symbols, transport.DocumentSymbol{
				Name:           "$" + n.Name,
				Kind:           transport.SymbolProperty,
				Range:          analysis.RangeOf(n),
				SelectionRange: analysis.RangeOf(n),
			})
		case phpast.ConstDecl, phpast.ClassConstDecl:
			symbols = append(symbols, transport.DocumentSymbol{
				Name:           n.Name,
				Kind:           transport.SymbolConstant,
				Range:          analysis.RangeOf(n),
				SelectionRange: analysis.RangeOf(n),
			})
		}
	}
	return symbols
}
