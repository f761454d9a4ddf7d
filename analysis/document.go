package analysis

import (
	"crypto/sha256"

	"github.com/carn181/phplsp/docblock"
	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

type SymbolKind int

const (
	ClassSymbol SymbolKind = iota
	InterfaceSymbol
	FunctionSymbol
	MethodSymbol
	PropertySymbol
	ConstantSymbol
)

var symbolKindNames = map[SymbolKind]string{
	ClassSymbol:     "class",
	InterfaceSymbol: "interface",
	FunctionSymbol:  "function",
	MethodSymbol:    "method",
	PropertySymbol:  "property",
	ConstantSymbol:  "constant",
}

func (k SymbolKind) String() string {
	if s, ok := symbolKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// SymbolInformation describes one definition.
type SymbolInformation struct {
	Kind     SymbolKind
	FQN      FQN
	Location transport.Location
	// DeclaredType is the signature or docblock type: the return type for
	// callables, the value type otherwise. Nil when undeclared.
	DeclaredType Type
}

// Definition pairs symbol information with the owning document and the
// defining AST node.
type Definition struct {
	Symbol   SymbolInformation
	Document *Document
	Node     *phpast.Node
}

// Document is the per-URI index: the parsed AST plus the local maps the
// symbol graph is fed from.
type Document struct {
	Handle  util.Handle
	Content []byte
	Root    *phpast.Node

	// Hash of Content; updates with identical text short-circuit.
	Hash [sha256.Size]byte

	// Definitions maps each FQN declared in this document to its
	// definition. References is the set of FQNs this document mentions.
	Definitions map[FQN]*Definition
	References  map[FQN]struct{}

	Diagnostics []transport.Diagnostic
}

func newDocument(handle util.Handle, content []byte, root *phpast.Node, diags []transport.Diagnostic) *Document {
	d := &Document{
		Handle:      handle,
		Content:     content,
		Root:        root,
		Definitions: map[FQN]*Definition{},
		References:  map[FQN]struct{}{},
		Diagnostics: diags,
	}
	phpast.Attach(root)
	d.collectDefinitions()
	return d
}

func (d *Document) DefinitionByFQN(fqn FQN) *Definition {
	return d.Definitions[fqn]
}

func (d *Document) DefinitionNodeByFQN(fqn FQN) *phpast.Node {
	if def := d.Definitions[fqn]; def != nil {
		return def.Node
	}
	return nil
}

func (d *Document) URI() util.URI { return d.Handle.URI }

func RangeOf(n *phpast.Node) transport.Range {
	return transport.Range{
		Start: transport.Position{Line: n.Span.Start.Row, Character: n.Span.Start.Column},
		End:   transport.Position{Line: n.Span.End.Row, Character: n.Span.End.Column},
	}
}

func (d *Document) collectDefinitions() {
	phpast.Walk(d.Root, func(n *phpast.Node) bool {
		kind, ok := definitionKind(n)
		if !ok {
			return true
		}
		fqn := DefinitionFQN(n)
		if fqn == "" {
			return true
		}
		d.Definitions[fqn] = &Definition{
			Symbol: SymbolInformation{
				Kind: kind,
				FQN:  fqn,
				Location: transport.Location{
					URI:   transport.DocumentURI(d.Handle.URI),
					Range: RangeOf(n),
				},
				DeclaredType: declaredType(n),
			},
			Document: d,
			Node:     n,
		}
		return true
	})
}

func definitionKind(n *phpast.Node) (SymbolKind, bool) {
	switch n.Kind {
	case phpast.ClassDecl:
		return ClassSymbol, true
	case phpast.InterfaceDecl:
		return InterfaceSymbol, true
	case phpast.FunctionDecl:
		return FunctionSymbol, true
	case phpast.MethodDecl:
		return MethodSymbol, true
	case phpast.PropertyDecl:
		return PropertySymbol, true
	case phpast.ClassConstDecl, phpast.ConstDecl:
		return ConstantSymbol, true
	}
	return 0, false
}

// declaredType reads the declared or documented type of a definition.
// Signature hints win over docblocks.
func declaredType(n *phpast.Node) Type {
	resolve := func(name string) FQN {
		return NamespacedFQN(enclosingNamespaceName(n), name)
	}

	switch n.Kind {
	case phpast.FunctionDecl, phpast.MethodDecl:
		if hint := n.ChildByRole("return_type"); hint != nil {
			return typeFromHint(hint)
		}
		if n.Doc != "" {
			if s := docblock.Parse(n.Doc).ReturnType(); s != "" {
				return ParseTypeString(s, resolve)
			}
		}
	case phpast.PropertyDecl:
		if hint := n.ChildByRole("type"); hint != nil {
			return typeFromHint(hint)
		}
		if n.Doc != "" {
			if s := docblock.Parse(n.Doc).VarType(); s != "" {
				return ParseTypeString(s, resolve)
			}
		}
	case phpast.ConstDecl, phpast.ClassConstDecl:
		if v := n.ChildByRole("value"); v != nil {
			if t := literalType(v); t != nil {
				return t
			}
		}
	}
	return nil
}

// typeFromHint converts a signature type node. The parser resolves class
// names in hints against use imports, so NamespacedName is authoritative.
func typeFromHint(n *phpast.Node) Type {
	if n.Kind != phpast.Name {
		return Mixed
	}
	if n.NamespacedName != "" {
		return ParseTypeString(n.NamespacedName, nil)
	}
	return ParseTypeString(n.Name, nil)
}

func literalType(n *phpast.Node) Type {
	switch n.Kind {
	case phpast.IntLiteral:
		return Integer
	case phpast.FloatLiteral:
		return Float
	case phpast.StringLiteral, phpast.InterpolatedString:
		return StringType
	case phpast.BoolLiteral:
		return Boolean
	case phpast.NullLiteral:
		return Null
	}
	return nil
}

// collectReferences records every FQN this document mentions. Member
// references resolve their receiver through res; unresolvable receivers
// contribute nothing. Unqualified function and constant references record
// their global-namespace fallback too, so referrer queries see call sites
// that bind through the fallback.
func (d *Document) collectReferences(res *Resolver) {
	d.References = map[FQN]struct{}{}
	add := func(fqn FQN) {
		if fqn != "" {
			d.References[fqn] = struct{}{}
		}
	}

	phpast.Walk(d.Root, func(n *phpast.Node) bool {
		switch n.Kind {
		case phpast.Name:
			// Member and callee names report through their parents;
			// unresolved names (scalar hints, self/static) carry no FQN.
			if n.Role == "name" || n.NamespacedName == "" || n.NamespacedName[0] == '?' {
				return true
			}
			if p := n.Parent; p != nil {
				switch p.Kind {
				case phpast.FunctionCall, phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
					return true
				}
			}
			add(referenceName(n))
		case phpast.FunctionCall:
			if callee := n.ChildByRole("function"); callee != nil && callee.Kind == phpast.Name {
				fqn := referenceName(callee)
				add(fqn)
				add(fqn.StripNamespace())
			}
		case phpast.ConstFetch:
			switch n.Name {
			case "true", "false", "null":
				return true
			}
			fqn := referenceName(n)
			add(fqn)
			add(fqn.StripNamespace())
		case phpast.MethodCall, phpast.PropertyFetch,
			phpast.StaticCall, phpast.StaticPropertyFetch, phpast.ClassConstFetch:
			add(res.memberFQN(n))
		}
		return true
	})
}
