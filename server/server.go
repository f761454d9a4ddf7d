package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/carn181/phplsp/analysis"
	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/parser"
	"github.com/carn181/phplsp/transport"
)

type ServerState int

const (
	Created ServerState = iota
	Initializing
	Running
	Shutdown
	Exit
	ExitError
)

// Server owns the transport loop and dispatches LSP methods onto the
// project index.
type Server struct {
	Capabilities transport.ServerCapabilities

	Project   *analysis.Project
	Workspace Workspace

	Status ServerState
	mu     sync.Mutex

	Transport transport.Transport

	encoding transport.PositionEncodingKind
	diagChan chan transport.PublishDiagnosticsParams
}

func (s *Server) Init(method transport.Method, addr string) error {
	s.Status = Created
	s.encoding = transport.UTF16
	s.Project = analysis.NewProject(parser.New(), diskProvider{})
	return s.Transport.Init(transport.ServerSide, method, addr)
}

func (s *Server) Run(ctx context.Context) error {
	end := make(chan error, 1)
	go s.Loop(ctx, end)
	select {
	case err := <-end:
		if err != nil {
			logging.Logger.Error("server loop ended", "error", err)
			return err
		}
		logging.Logger.Info("server exited")
		return nil
	case <-ctx.Done():
		logging.Logger.Info("canceling main loop")
		return ctx.Err()
	}
}

// Loop reads one message at a time and dispatches. Lifecycle methods run
// inline so state transitions stay ordered; everything else may run
// concurrently with the next read.
func (s *Server) Loop(ctx context.Context, end chan<- error) {
	var err error

	for s.Status != Exit && s.Status != ExitError && !s.Transport.Closed && err == nil {
		select {
		case <-ctx.Done():
			end <- ctx.Err()
			return
		default:
		}

		var msg []byte
		msg, err = s.Transport.Read()
		if err != nil || s.Transport.Closed {
			break
		}

		var method string
		method, err = transport.GetMethod(msg)
		if err != nil || method == "" {
			break
		}
		logging.Logger.Info("request", "method", method)

		if err = s.validateMethod(method); err != nil {
			logging.Logger.Error("protocol order violation", "method", method, "error", err)
			err = nil
			continue
		}

		switch method {
		case "initialize", "initialized", "shutdown", "exit":
			s.HandleMethod(ctx, method, msg)
		default:
			go s.HandleMethod(ctx, method, msg)
		}
	}

	switch {
	case s.Status == ExitError:
		end <- errors.New("exited before shutdown")
	case s.Status == Exit:
		end <- nil
	case err == nil && s.Transport.Closed:
		end <- errors.New("stream closed: got EOF")
	default:
		s.Transport.Close()
		end <- err
	}
}

func (s *Server) validateMethod(method string) error {
	switch s.Status {
	case Created:
		if method != "initialize" {
			return errors.New("server not initialized, got " + method)
		}
	case Shutdown:
		if method != "exit" {
			return errors.New("server shut down, got " + method)
		}
	}
	return nil
}

func (s *Server) HandleMethod(ctx context.Context, method string, message []byte) {
	content := transport.Content(message)

	if handler, ok := requestHandlers[method]; ok {
		var m transport.RequestMessage
		if err := json.Unmarshal(content, &m); err != nil {
			logging.Logger.Error("malformed request", "error", err)
			return
		}
		resp, err := handler(ctx, s, m.Params)
		s.respond(m.ID, resp, err)
		return
	}

	if handler, ok := notificationHandlers[method]; ok {
		var m transport.NotificationMessage
		if err := json.Unmarshal(content, &m); err != nil {
			logging.Logger.Error("malformed notification", "error", err)
			return
		}
		if err := handler(ctx, s, m.Params); err != nil {
			logging.Logger.Error("notification handler failed", "method", method, "error", err)
		}
	}
}

// respond writes the result, or an error response when the handler hit a
// contract violation. The server itself stays up either way.
func (s *Server) respond(id interface{}, result json.RawMessage, err error) {
	resp := transport.ResponseMessage{
		Message: transport.Message{Jsonrpc: "2.0"},
		ID:      id,
	}
	if err != nil {
		logging.Logger.Error("request failed", "error", err)
		resp.Error = &transport.ResponseError{
			Code:    transport.InternalError,
			Message: err.Error(),
		}
	} else {
		if len(result) == 0 {
			result = []byte("null")
		}
		resp.Result = result
	}

	msg, err := json.Marshal(resp)
	if err != nil {
		logging.Logger.Error("marshaling response", "error", err)
		return
	}
	if err := s.Transport.Write(msg); err != nil {
		logging.Logger.Error("writing response", "error", err)
	}
}

var requestHandlers = map[string]func(context.Context, *Server, json.RawMessage) (json.RawMessage, error){
	"initialize":                  Initialize,
	"shutdown":                    ShutdownEnd,
	"textDocument/definition":     Definition,
	"textDocument/references":     References,
	"textDocument/hover":          Hover,
	"textDocument/documentSymbol": DocumentSymbols,
}

var notificationHandlers = map[string]func(context.Context, *Server, json.RawMessage) error{
	"initialized":            Initialized,
	"textDocument/didOpen":   TextDocumentOpen,
	"textDocument/didChange": TextDocumentChange,
	"textDocument/didClose":  TextDocumentClose,
	"exit":                   ExitEnd,
}
