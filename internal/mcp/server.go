// Package mcp serves tools over the Model Context Protocol using
// newline-delimited JSON-RPC 2.0 on a pair of streams (usually stdio).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/RevCBH/mergetrain/internal/logger"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "mergetrain"
)

// maxLineSize bounds a single inbound message.
const maxLineSize = 4 * 1024 * 1024

// ErrUnknownTool is returned by a ToolHandler for names it does not serve.
var ErrUnknownTool = errors.New("unknown tool")

// ToolHandler supplies the tools a Server exposes.
//
// CallTool reports tool-level failures (bad branches, no merge base) as a
// result with IsError set. A returned error is a protocol failure:
// ErrUnknownTool and *ArgumentError map to invalid params, anything else to
// an internal error.
type ToolHandler interface {
	Tools() []ToolDefinition
	CallTool(ctx context.Context, name string, args json.RawMessage) (*ToolCallResult, error)
}

// ArgumentError reports tool arguments that could not be decoded or are
// missing a required field.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Server implements an MCP server over a line-oriented stream.
type Server struct {
	reader       io.Reader
	writer       io.Writer
	tools        ToolHandler
	version      string
	instructions string
	mu           sync.Mutex
	log          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(text string) Option {
	return func(s *Server) { s.instructions = text }
}

// NewServer creates a new MCP server
func NewServer(r io.Reader, w io.Writer, tools ToolHandler, opts ...Option) *Server {
	s := &Server{
		reader:  r,
		writer:  w,
		tools:   tools,
		version: "dev",
		log:     logger.With("component", "mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads requests until EOF or until ctx is canceled. Requests are
// handled one at a time in arrival order.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("server starting", "protocol", ProtocolVersion)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("context canceled, shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					s.log.Error("read error", "error", err)
					return err
				}
				s.log.Info("EOF received, shutting down")
				return nil
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	s.log.Debug("received message", "line", line)

	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Error("JSON parse error", "error", err)
		s.sendError(nil, CodeParseError, "Parse error", nil)
		return
	}
	if req.Method == "" {
		if !req.IsNotification() {
			s.sendError(req.ID, CodeInvalidRequest, "Invalid Request", nil)
		}
		return
	}

	s.handleRequest(ctx, &req)
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response needed
		s.log.Debug("initialized notification received")
	case "ping":
		s.sendResult(req, struct{}{})
	case "tools/list":
		s.sendResult(req, ToolsListResult{Tools: s.tools.Tools()})
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		if req.IsNotification() {
			s.log.Debug("ignoring notification", "method", req.Method)
			return
		}
		s.log.Warn("unknown method", "method", req.Method)
		s.sendError(req.ID, CodeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.replyError(req, CodeInvalidParams, "Invalid params", err.Error())
			return
		}
	}
	s.log.Info("client connected",
		"client", params.ClientInfo.Name,
		"clientVersion", params.ClientInfo.Version,
		"protocol", params.ProtocolVersion)

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capability{
			Tools: &ToolCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
		Instructions: s.instructions,
	}

	s.sendResult(req, result)
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		s.log.Error("failed to parse tool call params", "error", err)
		s.replyError(req, CodeInvalidParams, "Invalid params", nil)
		return
	}

	s.log.Debug("tool called", "tool", params.Name, "arguments", string(params.Arguments))

	result, err := s.tools.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var argErr *ArgumentError
		switch {
		case errors.Is(err, ErrUnknownTool):
			s.log.Warn("unknown tool", "tool", params.Name)
			s.replyError(req, CodeInvalidParams, "Unknown tool", params.Name)
		case errors.As(err, &argErr):
			s.replyError(req, CodeInvalidParams, "Invalid params", argErr.Error())
		default:
			s.log.Error("tool failed", "tool", params.Name, "error", err)
			s.replyError(req, CodeInternalError, "Internal error", err.Error())
		}
		return
	}

	s.sendResult(req, result)
}

func (s *Server) sendResult(req *JSONRPCRequest, result any) {
	if req.IsNotification() {
		return
	}
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	})
}

// replyError answers req with an error unless req is a notification, which
// never gets a response even when it fails.
func (s *Server) replyError(req *JSONRPCRequest, code int, message string, data any) {
	if req.IsNotification() {
		s.log.Debug("dropping error for notification", "method", req.Method, "error", message)
		return
	}
	s.sendError(req.ID, code, message, data)
}

func (s *Server) sendError(id json.RawMessage, code int, message string, data any) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = fmt.Fprintf(s.writer, "%s\n", data)
	if err != nil {
		s.log.Error("failed to write response", "error", err)
	} else {
		s.log.Debug("sent response", "data", string(data))
	}
}
