package slotfill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/seu-repo/songorder/internal/domain"
)

// ResponseKey is the free-text reply every oracle payload must carry.
const ResponseKey = "response"

// Payload is a decoded oracle answer: one nullable string per requested key
// plus the conversational response.
type Payload struct {
	Fields   map[string]*string
	Response string
}

// StripFences removes a surrounding Markdown code fence (```json ... ```).
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			// single-line fence: drop the format tag up to the opening brace
			if j := strings.IndexByte(s, '{'); j >= 0 {
				s = s[j:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeObject strictly decodes a single JSON object whose keys are limited to
// keys plus "response". There is no partial recovery: anything else is a
// *domain.MalformedOracleOutputError.
func DecodeObject(raw string, keys []string) (*Payload, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, malformed("empty payload", raw)
	}
	if cleaned[0] != '{' {
		return nil, malformed("payload is not a JSON object", raw)
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, malformed(fmt.Sprintf("invalid JSON: %v", err), raw)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed("trailing data after JSON object", raw)
	}

	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}

	p := &Payload{Fields: make(map[string]*string, len(obj))}
	seenResponse := false
	for k, v := range obj {
		if k == ResponseKey {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return nil, malformed("response is null", raw)
			}
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, malformed("response is not a string", raw)
			}
			p.Response = strings.TrimSpace(s)
			seenResponse = true
			continue
		}
		if _, ok := allowed[k]; !ok {
			return nil, malformed(fmt.Sprintf("unexpected key %q", k), raw)
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			p.Fields[k] = nil
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, malformed(fmt.Sprintf("value of %q is neither string nor null", k), raw)
		}
		s = strings.TrimSpace(s)
		p.Fields[k] = &s
	}
	if !seenResponse {
		return nil, malformed("missing response", raw)
	}
	return p, nil
}

func malformed(reason, raw string) error {
	return &domain.MalformedOracleOutputError{Reason: reason, Raw: raw}
}
