package server

import (
	"context"
	"encoding/json"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/transport"
)

// publishDiagnostics drains the diagnostics channel onto the transport.
// One writer goroutine keeps notifications ordered.
func (s *Server) publishDiagnostics(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case diag, ok := <-s.diagChan:
			if !ok {
				return
			}
			content, err := json.Marshal(diag)
			if err != nil {
				logging.Logger.Error("marshaling diagnostics", "error", err)
				continue
			}
			if err := s.Transport.WriteNotif("textDocument/publishDiagnostics", content); err != nil {
				logging.Logger.Error("writing diagnostics", "error", err)
			}
		}
	}
}

func (s *Server) sendDiagnostics(doc *analysis.Document) {
	if s.diagChan == nil {
		return
	}
	diags := doc.Diagnostics
	if diags == nil {
		diags = []transport.Diagnostic{}
	}
	s.diagChan <- transport.PublishDiagnosticsParams{
		URI:         transport.DocumentURI(doc.Handle.URI),
		Diagnostics: diags,
	}
}
