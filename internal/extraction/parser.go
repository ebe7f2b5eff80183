package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// parseModelJSON decodes the model's text payload into a generic object.
// Numbers are kept as json.Number so amounts are written exactly as returned.
func parseModelJSON(raw string) (map[string]interface{}, error) {
	clean := cleanModelJSON(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()

	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Raw: raw, Err: errors.New("unexpected data after JSON value")}
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &ParseError{Raw: raw, Err: errors.New("expected a JSON object")}
	}
	return obj, nil
}

// cleanModelJSON strips Markdown code fences the model sometimes adds even
// when structured output was requested.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])

		if end := strings.LastIndex(s, "```"); end != -1 {
			s = strings.TrimSpace(s[:end])
		}
	}

	return s
}
