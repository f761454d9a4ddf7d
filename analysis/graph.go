package analysis

import (
	"sync"

	"github.com/carn181/phplsp/util"
)

// Graph is the project-level symbol index: which document defines each FQN
// and which documents mention it. It holds URI strings and borrowed
// definition records, never AST ownership. Mutated only by the document
// update pipeline; reads are guarded for in-flight queries.
type Graph struct {
	mu sync.RWMutex

	// definitions: FQN to its single defining document's record. Last
	// writer wins across edits; no multi-definition aggregation.
	definitions map[FQN]*Definition

	// referrers: FQN to the set of document URIs mentioning it.
	referrers map[FQN]map[util.URI]struct{}

	// definedBy is the reverse index used to clear a closing document's
	// definitions without scanning the whole graph.
	definedBy map[util.URI]map[FQN]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		definitions: map[FQN]*Definition{},
		referrers:   map[FQN]map[util.URI]struct{}{},
		definedBy:   map[util.URI]map[FQN]struct{}{},
	}
}

// SetDefinition records fqn as defined by def's document. Last writer wins.
func (g *Graph) SetDefinition(fqn FQN, def *Definition) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setDefinition(fqn, def)
}

// RemoveDefinition drops fqn and its referrer set. No-op when absent.
func (g *Graph) RemoveDefinition(fqn FQN) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeDefinition(fqn)
}

// AddReferrer records that the document at uri mentions fqn. Idempotent.
func (g *Graph) AddReferrer(fqn FQN, uri util.URI) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addReferrer(fqn, uri)
}

// RemoveReferrer is a no-op when the entry is absent.
func (g *Graph) RemoveReferrer(fqn FQN, uri util.URI) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeReferrer(fqn, uri)
}

// UpdateDocument publishes a document's delta in one step: observers see
// either the complete old entries for this URI or the complete new ones.
// old is nil on first publish.
func (g *Graph) UpdateDocument(old, updated *Document) {
	g.mu.Lock()
	defer g.mu.Unlock()

	uri := updated.URI()
	if old != nil {
		for fqn := range old.Definitions {
			if _, kept := updated.Definitions[fqn]; !kept {
				g.removeDefinition(fqn)
			}
		}
		for fqn := range old.References {
			if _, kept := updated.References[fqn]; !kept {
				g.removeReferrer(fqn, uri)
			}
		}
	}
	for fqn, def := range updated.Definitions {
		g.setDefinition(fqn, def)
	}
	for fqn := range updated.References {
		g.addReferrer(fqn, uri)
	}
}

// RemoveDocument clears everything the document contributed: its
// definitions (with their referrer sets) and its membership in other
// symbols' referrer sets.
func (g *Graph) RemoveDocument(doc *Document) {
	g.mu.Lock()
	defer g.mu.Unlock()

	uri := doc.URI()
	for fqn := range g.definedBy[uri] {
		g.removeDefinition(fqn)
	}
	for fqn := range doc.References {
		g.removeReferrer(fqn, uri)
	}
	delete(g.definedBy, uri)
}

func (g *Graph) setDefinition(fqn FQN, def *Definition) {
	if old, ok := g.definitions[fqn]; ok {
		delete(g.definedBy[old.Document.URI()], fqn)
	}
	g.definitions[fqn] = def

	uri := def.Document.URI()
	if _, ok := g.definedBy[uri]; !ok {
		g.definedBy[uri] = map[FQN]struct{}{}
	}
	g.definedBy[uri][fqn] = struct{}{}
}

func (g *Graph) removeDefinition(fqn FQN) {
	if old, ok := g.definitions[fqn]; ok {
		uri := old.Document.URI()
		delete(g.definedBy[uri], fqn)
		if len(g.definedBy[uri]) == 0 {
			delete(g.definedBy, uri)
		}
	}
	delete(g.definitions, fqn)
	delete(g.referrers, fqn)
}

func (g *Graph) addReferrer(fqn FQN, uri util.URI) {
	if _, ok := g.referrers[fqn]; !ok {
		g.referrers[fqn] = map[util.URI]struct{}{}
	}
	g.referrers[fqn][uri] = struct{}{}
}

func (g *Graph) removeReferrer(fqn FQN, uri util.URI) {
	if set, ok := g.referrers[fqn]; ok {
		delete(set, uri)
		if len(set) == 0 {
			delete(g.referrers, fqn)
		}
	}
}

func (g *Graph) IsDefined(fqn FQN) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.definitions[fqn]
	return ok
}

func (g *Graph) Definition(fqn FQN) *Definition {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.definitions[fqn]
}

// Referrers returns the URIs of documents mentioning fqn.
func (g *Graph) Referrers(fqn FQN) []util.URI {
	g.mu.RLock()
	defer g.mu.RUnlock()

	uris := make([]util.URI, 0, len(g.referrers[fqn]))
	for uri := range g.referrers[fqn] {
		uris = append(uris, uri)
	}
	return uris
}

// DefinitionsOf returns the FQNs currently owned by uri.
func (g *Graph) DefinitionsOf(uri util.URI) []FQN {
	g.mu.RLock()
	defer g.mu.RUnlock()

	fqns := make([]FQN, 0, len(g.definedBy[uri]))
	for fqn := range g.definedBy[uri] {
		fqns = append(fqns, fqn)
	}
	return fqns
}
