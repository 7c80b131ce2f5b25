package tools

import (
	"bytes"
	"encoding/json"

	"planka-mcp/internal/output"
)

// decodeArgs decodes args into dst after checking that every required key is present.
// It returns nil on success and the error result to send otherwise.
func decodeArgs(args json.RawMessage, dst any, required ...string) *Result {
	if absent(args) {
		r := ErrorResult("%s", output.Missing(required...))
		return &r
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		r := ErrorResult("Invalid arguments: %v", err)
		return &r
	}
	for _, name := range required {
		if raw, ok := fields[name]; !ok || absent(raw) {
			r := ErrorResult("Invalid arguments: missing field `%s`", name)
			return &r
		}
	}

	if err := json.Unmarshal(args, dst); err != nil {
		r := ErrorResult("Invalid arguments: %v", err)
		return &r
	}
	return nil
}

// absent reports whether raw is empty or JSON null.
func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}


// presentString is an optional string argument that remembers whether its key
// was present, so an explicit null can be told apart from an absent key.
type presentString struct {
	Set   bool
	Value *string
}

func (p *presentString) UnmarshalJSON(b []byte) error {
	p.Set = true
	if absent(b) {
		p.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p.Value = &s
	return nil
}
