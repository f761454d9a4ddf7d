package analysis

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/phpast"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

// Parser is the collaborator turning source text into an AST plus
// diagnostics. It must tolerate errors and return partial trees.
type Parser interface {
	Parse(content []byte) (*phpast.Node, []transport.Diagnostic)
}

// ContentProvider reads documents the editor has not sent us.
type ContentProvider interface {
	Read(path util.Path) ([]byte, error)
}

// ErrVariableNode is the contract violation of asking the project for the
// definition of a variable: variables are function-scoped and resolve
// through VariableDefinition, never through the symbol graph.
var ErrVariableNode = errors.New("variable nodes resolve through the scope resolver, not the symbol graph")

// loadedDocuments bounds how many on-disk documents stay indexed after the
// query that loaded them completes.
const loadedDocuments = 512

// Project owns the open-document set, the loaded-document cache and the
// symbol graph, and serves the semantic queries. Document mutations are
// serialized; queries read a snapshot consistent with the last applied
// update.
type Project struct {
	mu     sync.RWMutex
	parser Parser
	files  ContentProvider
	graph  *Graph

	// open holds editor-managed documents. loaded holds documents pulled
	// from disk for cross-file resolution; eviction drops their graph
	// entries.
	open   map[util.URI]*Document
	loaded *lru.Cache[util.URI, *Document]
}

func NewProject(parser Parser, files ContentProvider) *Project {
	p := &Project{
		parser: parser,
		files:  files,
		graph:  NewGraph(),
		open:   map[util.URI]*Document{},
	}
	p.loaded, _ = lru.NewWithEvict(loadedDocuments, func(uri util.URI, doc *Document) {
		p.graph.RemoveDocument(doc)
		logging.Logger.Info("evicted loaded document", "uri", uri)
	})
	return p
}

func (p *Project) Graph() *Graph { return p.graph }

// build parses content into a fresh document and fills its local maps.
// No locks held: parsing is the slow part of the pipeline.
func (p *Project) build(handle util.Handle, content []byte) *Document {
	root, diags := p.parser.Parse(content)
	doc := newDocument(handle, content, root, diags)
	doc.Hash = sha256.Sum256(content)
	doc.collectReferences(NewResolver(p))
	return doc
}

// OpenDocument registers editor-supplied content and publishes its graph
// entries. Reopening an already-open URI behaves like an update.
func (p *Project) OpenDocument(ctx context.Context, uri util.URI, content []byte) *Document {
	handle, err := util.FromURI(uri)
	if err != nil {
		logging.Logger.Error("invalid URI", "uri", uri, "error", err)
		return nil
	}
	doc := p.build(handle, content)
	if ctx.Err() != nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.open[uri]
	if old == nil {
		// Promote a previously loaded copy so the delta is exact.
		if prev, ok := p.loaded.Peek(uri); ok {
			old = prev
			p.loaded.Remove(uri)
		}
	}
	p.graph.UpdateDocument(old, doc)
	p.open[uri] = doc
	return doc
}

// UpdateDocument replaces an open document's content, re-parses and
// publishes the delta atomically. Unknown URIs are opened.
func (p *Project) UpdateDocument(ctx context.Context, uri util.URI, content []byte) *Document {
	p.mu.RLock()
	old := p.open[uri]
	p.mu.RUnlock()

	if old != nil && old.Hash == sha256.Sum256(content) {
		// Same text parses to the same maps.
		return old
	}
	if old == nil {
		return p.OpenDocument(ctx, uri, content)
	}

	handle := old.Handle
	doc := p.build(handle, content)
	if ctx.Err() != nil {
		// Cancelled parses leave the graph unchanged.
		return old
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.graph.UpdateDocument(p.open[uri], doc)
	p.open[uri] = doc
	return doc
}

// CloseDocument drops an open document and everything it contributed to
// the graph. In-flight queries holding the document finish against the
// stale copy.
func (p *Project) CloseDocument(uri util.URI) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, ok := p.open[uri]
	if !ok {
		return
	}
	delete(p.open, uri)
	p.graph.RemoveDocument(doc)
}

// GetDocument returns the open or loaded document at uri without touching
// the disk.
func (p *Project) GetDocument(uri util.URI) (*Document, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if doc, ok := p.open[uri]; ok {
		return doc, true
	}
	return p.loaded.Get(uri)
}

// LoadDocument reads uri from the content provider, indexes it, and parks
// it in the loaded cache. It never promotes into the open set; that is
// OpenDocument's job.
func (p *Project) LoadDocument(ctx context.Context, uri util.URI) (*Document, error) {
	if doc, ok := p.GetDocument(uri); ok {
		return doc, nil
	}
	handle, err := util.FromURI(uri)
	if err != nil {
		return nil, err
	}
	content, err := p.files.Read(handle.Path)
	if err != nil {
		// Missing and unreadable files look the same to queries.
		return nil, err
	}

	doc := p.build(handle, content)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if open, ok := p.open[uri]; ok {
		return open, nil
	}
	if prev, ok := p.loaded.Peek(uri); ok {
		p.graph.UpdateDocument(prev, doc)
	} else {
		p.graph.UpdateDocument(nil, doc)
	}
	p.loaded.Add(uri, doc)
	return doc, nil
}

// RefreshDocument re-reads a loaded document from disk after an external
// change. Open documents are editor-owned and left alone.
func (p *Project) RefreshDocument(ctx context.Context, uri util.URI) {
	p.mu.RLock()
	_, isOpen := p.open[uri]
	prev, isLoaded := p.loaded.Peek(uri)
	p.mu.RUnlock()
	if isOpen {
		return
	}

	handle, err := util.FromURI(uri)
	if err != nil {
		return
	}
	content, err := p.files.Read(handle.Path)
	if err != nil {
		p.EvictDocument(uri)
		return
	}
	if isLoaded && prev.Hash == sha256.Sum256(content) {
		return
	}

	doc := p.build(handle, content)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.open[uri]; ok {
		return
	}
	old, _ := p.loaded.Peek(uri)
	p.graph.UpdateDocument(old, doc)
	p.loaded.Add(uri, doc)
}

// EvictDocument drops a loaded document and its graph entries, as when the
// file disappears from disk. Open documents are unaffected.
func (p *Project) EvictDocument(uri util.URI) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// The eviction callback clears the graph.
	p.loaded.Remove(uri)
}

// Definition implements DefinitionSource for resolvers.
func (p *Project) Definition(fqn FQN) *Definition {
	return p.graph.Definition(fqn)
}

// DefinitionForNode resolves a reference node to the definition it points
// to. Nil without error means unresolved. Asking for a variable is a
// programmer error.
//
// Unqualified function and constant references that miss fall back to the
// global namespace, mirroring the language's call-site resolution.
func (p *Project) DefinitionForNode(node *phpast.Node) (*Definition, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind == phpast.Variable {
		return nil, ErrVariableNode
	}

	res := NewResolver(p)
	fqn := res.ReferenceFQN(node)
	if fqn == "" {
		return nil, nil
	}
	if def := p.graph.Definition(fqn); def != nil {
		return def, nil
	}
	if NamespaceFallbackApplies(node) {
		if def := p.graph.Definition(fqn.StripNamespace()); def != nil {
			return def, nil
		}
	}
	return nil, nil
}

// NamespaceFallbackApplies limits global-namespace fallback to function
// calls and constant fetches and the names directly under them. Whether
// the name was written qualified is not checked.
func NamespaceFallbackApplies(node *phpast.Node) bool {
	switch node.Kind {
	case phpast.FunctionCall, phpast.ConstFetch:
		return true
	}
	if p := node.Parent; p != nil {
		switch p.Kind {
		case phpast.FunctionCall, phpast.ConstFetch:
			return true
		}
	}
	return false
}

// DefinitionDocument resolves fqn to its owning document through the
// graph's URI indirection.
func (p *Project) DefinitionDocument(fqn FQN) (*Document, bool) {
	def := p.graph.Definition(fqn)
	if def == nil {
		return nil, false
	}
	return p.GetDocument(def.Document.URI())
}

// TypeOfExpression infers the static type of any expression node.
func (p *Project) TypeOfExpression(node *phpast.Node) Type {
	return NewResolver(p).TypeOf(node)
}

// ReferencesTo returns the documents whose referrer entries mention fqn.
func (p *Project) ReferencesTo(fqn FQN) []*Document {
	var docs []*Document
	for _, uri := range p.graph.Referrers(fqn) {
		if doc, ok := p.GetDocument(uri); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// OpenDocuments snapshots the open set.
func (p *Project) OpenDocuments() []*Document {
	p.mu.RLock()
	defer p.mu.RUnlock()

	docs := make([]*Document, 0, len(p.open))
	for _, doc := range p.open {
		docs = append(docs, doc)
	}
	return docs
}
