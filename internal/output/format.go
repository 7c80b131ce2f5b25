// Package output renders tool results as text.
package output

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Indent is the indentation used for pretty JSON.
const Indent = "  "

// JSON renders v as indented JSON without a trailing newline.
// HTML characters are left unescaped so names and descriptions read as written.
func JSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Missing formats the message for absent tool arguments.
// One name gives "argument", more give "arguments".
func Missing(names ...string) string {
	if len(names) == 1 {
		return "Missing required argument: " + names[0]
	}
	return "Missing required arguments: " + strings.Join(names, ", ")
}
