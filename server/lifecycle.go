package server

import (
	"context"
	"encoding/json"
	"os"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/transport"
	"github.com/carn181/phplsp/util"
)

func Initialize(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	s.Status = Initializing
	var params transport.InitializeParams
	if err := json.Unmarshal(par, &params); err != nil {
		return nil, err
	}

	// UTF-16 is the protocol default; honor UTF-32 when the client
	// prefers it. UTF-8 offsets would bypass the conversion entirely but
	// almost no client negotiates it.
	encoding := transport.UTF16
	for _, enc := range params.Capabilities.General.PositionEncodings {
		if enc == string(transport.UTF32) {
			encoding = transport.UTF32
			break
		}
		if enc == string(transport.UTF16) {
			encoding = transport.UTF16
			break
		}
	}
	s.encoding = encoding

	result := transport.InitializeResult{
		Capabilities: transport.ServerCapabilities{
			PositionEncoding:       &encoding,
			TextDocumentSync:       transport.SyncIncremental,
			DefinitionProvider:     true,
			ReferencesProvider:     true,
			HoverProvider:          true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: &transport.ServerInfo{Name: "phplsp", Version: "0.1.0"},
	}
	s.Capabilities = result.Capabilities

	if params.RootURI != "" {
		rootPath, err := util.URI2Path(string(params.RootURI))
		if err == nil {
			s.Workspace.Root = rootPath
		}
	} else if len(params.WorkspaceFolders) > 0 {
		rootPath, err := util.URI2Path(string(params.WorkspaceFolders[0].URI))
		if err == nil {
			s.Workspace.Root = rootPath
		}
	}
	logging.Logger.Info("initialize", "root", s.Workspace.Root, "encoding", encoding)

	return json.Marshal(result)
}

func Initialized(ctx context.Context, s *Server, par json.RawMessage) error {
	s.Status = Running
	s.diagChan = make(chan transport.PublishDiagnosticsParams, 8)
	go s.publishDiagnostics(ctx)
	go s.Workspace.Start(ctx, s)
	return nil
}

func ShutdownEnd(ctx context.Context, s *Server, par json.RawMessage) (json.RawMessage, error) {
	s.Status = Shutdown
	s.Workspace.Stop()
	return []byte("null"), nil
}

func ExitEnd(ctx context.Context, s *Server, par json.RawMessage) error {
	if s.Status == Shutdown {
		s.Status = Exit
	} else {
		s.Status = ExitError
	}
	return nil
}

// diskProvider is the on-disk content provider behind LoadDocument.
type diskProvider struct{}

func (diskProvider) Read(path util.Path) ([]byte, error) {
	return os.ReadFile(path)
}
