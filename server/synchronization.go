package server

import (
	"context"
	"encoding/json"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

func TextDocumentOpen(ctx context.Context, s *Server, par json.RawMessage) error {
	var params transport.DidOpenTextDocumentParams
	if err := json.Unmarshal(par, &params); err != nil {
		return err
	}

	uri := util.URI(params.TextDocument.URI)
	doc := s.Project.OpenDocument(ctx, uri, []byte(params.TextDocument.Text))
	logging.Logger.Info("opened", "uri", uri)

	if doc != nil {
		s.sendDiagnostics(doc)
	}
	return nil
}

// TextDocumentChange applies full or incremental content changes in the
// order the client sent them, then re-indexes once.
func TextDocumentChange(ctx context.Context, s *Server, par json.RawMessage) error {
	var params transport.DidChangeTextDocumentParams
	if err := json.Unmarshal(par, &params); err != nil {
		return err
	}

	uri := util.URI(params.TextDocument.URI)
	doc, ok := s.Project.GetDocument(uri)
	if !ok {
		logging.Logger.Error("change for unopened document", "uri", uri)
		return nil
	}

	content := string(doc.Content)
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			content = change.Text
			continue
		}
		applied, err := ApplyIncrementalChange(*change.Range, change.Text, content, string(s.encoding))
		if err != nil {
			logging.Logger.Error("bad incremental change", "uri", uri, "error", err)
			return err
		}
		content = applied
	}

	updated := s.Project.UpdateDocument(ctx, uri, []byte(content))
	if updated != nil {
		s.sendDiagnostics(updated)
	}
	return nil
}

func TextDocumentClose(ctx context.Context, s *Server, par json.RawMessage) error {
	var params transport.DidCloseTextDocumentParams
	if err := json.Unmarshal(par, &params); err != nil {
		return err
	}

	uri := util.URI(params.TextDocument.URI)
	s.Project.CloseDocument(uri)
	logging.Logger.Info("closed", "uri", uri)

	// Clear stale squiggles for the closed document.
	if s.diagChan != nil {
		s.diagChan <- transport.PublishDiagnosticsParams{
			URI:         transport.DocumentURI(uri),
			Diagnostics: []transport.Diagnostic{},
		}
	}
	return nil
}
