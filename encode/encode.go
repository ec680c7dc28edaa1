package encode

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// JSONIndented encodes a value into a writer, indenting each level with indent
func JSONIndented(w io.Writer, v interface{}, indent string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", indent)
	encoder.SetEscapeHTML(false)

	return encoder.Encode(v)
}

// JSONString renders a value as indented JSON without the trailing newline
func JSONString(v interface{}, indent string) (string, error) {
	var buf bytes.Buffer
	if err := JSONIndented(&buf, v, indent); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
