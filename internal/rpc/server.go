package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"planka-mcp/internal/service"
	"planka-mcp/internal/tools"
)

// ProtocolVersion is the MCP protocol revision announced by initialize.
const ProtocolVersion = "2024-11-05"

// Implementation names the server in the initialize result.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type capabilities struct {
	Tools toolsCapability `json:"tools"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
}

type toolsListResult struct {
	Tools []tools.Descriptor `json:"tools"`
}

type toolCallParams struct {
	Name      *string         `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// methodFunc handles one request method. The returned value is encoded as the result.
type methodFunc func(ctx context.Context, params json.RawMessage) (any, *Error)

// Server answers MCP requests read from a line-oriented stream.
// Requests are handled one at a time, in arrival order.
type Server struct {
	registry *tools.Registry
	svc      service.Service
	logger   *slog.Logger
	info     Implementation
	methods  map[string]methodFunc
}

// NewServer creates a server that dispatches tools/call to registry with svc.
func NewServer(registry *tools.Registry, svc service.Service, logger *slog.Logger, info Implementation) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		registry: registry,
		svc:      svc,
		logger:   logger,
		info:     info,
	}
	s.methods = map[string]methodFunc{
		"initialize": s.initialize,
		"tools/list": s.toolsList,
		"tools/call": s.toolsCall,
		"ping":       s.ping,
	}
	return s
}

// Run reads requests from in until end of input and writes one response line
// per request to out. Blank lines are skipped and a final line without a
// newline is still handled. It returns nil at end of input, the context error
// if ctx is done between lines, or the first read or write error.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	s.logger.Info("server loop started, waiting for requests on stdin")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := r.ReadBytes('\n')
		if msg := bytes.TrimSpace(line); len(msg) > 0 {
			s.logger.Debug("received message", "bytes", len(msg))
			if resp := s.HandleMessage(ctx, msg); resp != nil {
				if err := enc.Encode(resp); err != nil {
					return fmt.Errorf("writing response: %w", err)
				}
				if err := w.Flush(); err != nil {
					return fmt.Errorf("writing response: %w", err)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			s.logger.Info("end of input, shutting down")
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("reading request: %w", readErr)
		}
	}
}

// HandleMessage handles one raw message and returns the response to send,
// or nil for a notification.
func (s *Server) HandleMessage(ctx context.Context, msg []byte) *Response {
	req, perr := parseRequest(msg)
	if perr != nil {
		s.logger.Error("failed to parse request", "error", perr, "message", string(msg))
		return failure(req.ID, ParseError())
	}

	if req.IsNotification() {
		s.handleNotification(req)
		return nil
	}

	s.logger.Debug("handling request", "method", req.Method, "id", string(req.ID))
	handler, ok := s.methods[req.Method]
	if !ok {
		s.logger.Warn("unknown method", "method", req.Method)
		return failure(req.ID, MethodNotFound(req.Method))
	}

	value, rerr := handler(ctx, req.Params)
	if rerr != nil {
		s.logger.Warn("request failed", "method", req.Method, "code", rerr.Code, "message", rerr.Message)
		return failure(req.ID, rerr)
	}

	result, err := marshal(value)
	if err != nil {
		s.logger.Error("failed to encode result", "method", req.Method, "error", err)
		return failure(req.ID, InternalError(err.Error()))
	}
	return success(req.ID, result)
}

// parseRequest decodes msg. On failure the returned request still carries the
// id when msg is an object with one, so the parse error can be correlated.
func parseRequest(msg []byte) (*Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return &Request{}, err
	}

	req := &Request{ID: fields["id"]}
	if raw, ok := fields["method"]; !ok || isNull(raw) {
		return req, errors.New("missing method")
	}
	if err := json.Unmarshal(msg, req); err != nil {
		return &Request{ID: fields["id"]}, err
	}
	req.ID = fields["id"]
	return req, nil
}

func (s *Server) handleNotification(req *Request) {
	switch req.Method {
	case "notifications/initialized":
		s.logger.Info("client initialized")
	case "notifications/cancelled":
		s.logger.Info("client cancelled a request", "params", string(req.Params))
	default:
		s.logger.Warn("unknown notification", "method", req.Method)
	}
}

func (s *Server) initialize(_ context.Context, _ json.RawMessage) (any, *Error) {
	s.logger.Info("initialize", "version", s.info.Version, "protocol", ProtocolVersion)
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    capabilities{Tools: toolsCapability{ListChanged: false}},
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) toolsList(_ context.Context, _ json.RawMessage) (any, *Error) {
	catalog := s.registry.Catalog()
	s.logger.Info("listing tools", "count", len(catalog))
	return toolsListResult{Tools: catalog}, nil
}

func (s *Server) toolsCall(ctx context.Context, params json.RawMessage) (any, *Error) {
	if isNull(params) {
		s.logger.Error("tools/call without params")
		return nil, InvalidParams("Missing params")
	}

	var p toolCallParams
	if err := json.Unmarshal(params, &p); err != nil || p.Name == nil {
		s.logger.Error("invalid tools/call params", "params", string(params))
		return nil, InvalidParams("Invalid params")
	}

	var args json.RawMessage
	if !isNull(p.Arguments) {
		args = p.Arguments
	}

	name := *p.Name
	s.logger.Info("calling tool", "tool", name)
	result := s.registry.Call(ctx, s.svc, name, args)
	if result.IsError {
		s.logger.Warn("tool call failed", "tool", name, "message", result.Text())
	} else {
		s.logger.Info("tool call succeeded", "tool", name)
	}
	return result, nil
}

func (s *Server) ping(_ context.Context, _ json.RawMessage) (any, *Error) {
	return struct{}{}, nil
}

// marshal encodes v compactly without HTML escaping.
func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
