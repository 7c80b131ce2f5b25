// Package tools provides the tool interface, the registry and the kanban tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"planka-mcp/internal/output"
	"planka-mcp/internal/service"
)

// ProgrammaticCaller is the caller id allowed to invoke non-destructive tools
// from generated code.
const ProgrammaticCaller = "code_execution_20250825"

// Tool defines the interface for a callable tool.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Description returns a short human-readable description.
	Description() string

	// InputSchema returns the JSON Schema advertised for the arguments.
	// It is not used to validate calls.
	InputSchema() json.RawMessage

	// Annotations returns capability annotations, or nil.
	// Destructive tools return nil.
	Annotations() *Annotations

	// Call runs the tool. args is nil when the caller sent no arguments.
	// Failures are reported in the Result, never as a protocol error.
	Call(ctx context.Context, svc service.Service, args json.RawMessage) Result
}

// Annotations mark how a tool may be invoked.
type Annotations struct {
	AllowedCallers []string `json:"allowedCallers,omitempty"`
}

// Descriptor is a tool as listed by tools/list.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Annotations *Annotations    `json:"annotations,omitempty"`
}

// Describe builds the listing entry for t.
func Describe(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}
}

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the concatenated text content.
func (r Result) Text() string {
	var s string
	for _, c := range r.Content {
		s += c.Text
	}
	return s
}

// TextResult is a successful result carrying text.
func TextResult(text string) Result {
	return Result{Content: []Content{{Type: "text", Text: text}}}
}

// ErrorResult is an error-flagged result.
func ErrorResult(format string, args ...any) Result {
	r := TextResult(fmt.Sprintf(format, args...))
	r.IsError = true
	return r
}

func programmatic() *Annotations {
	return &Annotations{AllowedCallers: []string{ProgrammaticCaller}}
}

// respond renders v as pretty JSON, or reports err as a failure of op.
func respond(op string, v any, err error) Result {
	if err != nil {
		return ErrorResult("Failed to %s: %v", op, err)
	}
	text, err := output.JSON(v)
	if err != nil {
		return ErrorResult("Failed to %s: encoding result: %v", op, err)
	}
	return TextResult(text)
}
