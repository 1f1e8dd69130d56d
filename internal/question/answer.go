package question

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// numericKeys are probed, in order, when a keyed payload has neither
// "answer" nor "value" and the answer type is numeric.
var numericKeys = []string{"number", "numerical_value", "result"}

// ExtractAnswer normalizes a raw answer payload into one canonical
// comparable string. The payload is usually JSON: a scalar, an object
// keyed by "answer"/"value" (or, for integer/float answer types,
// "number"/"numerical_value"/"result"), or a non-empty list whose first
// element is taken. The resolution order is fixed:
//
//  1. scalar → its string form
//  2. keyed object → first matching key's value, stringified
//  3. non-empty list → first element, stringified
//  4. anything else → the whole parsed value re-encoded as JSON
//
// A payload that is not valid JSON is returned unchanged. Returns
// ok=false when no non-empty canonical answer can be produced.
func ExtractAnswer(raw string, answerType string) (string, bool) {
	if raw == "" {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		// Not JSON (or JSON with trailing garbage): the raw string is
		// already the answer.
		return raw, true
	}

	switch v := parsed.(type) {
	case map[string]any:
		if a, ok := v["answer"]; ok {
			return nonEmpty(stringify(a))
		}
		if a, ok := v["value"]; ok {
			return nonEmpty(stringify(a))
		}
		if answerType == "integer" || answerType == "float" {
			for _, key := range numericKeys {
				if a, ok := v[key]; ok {
					return nonEmpty(stringify(a))
				}
			}
		}
		return nonEmpty(stringify(v))

	case []any:
		if len(v) > 0 {
			return nonEmpty(stringify(v[0]))
		}
		return nonEmpty(stringify(v))

	default:
		return nonEmpty(stringify(v))
	}
}

// stringify renders a decoded JSON value as its canonical answer string.
// Numbers keep their source literal (json.Number), so "5.0" and "5" stay
// distinct; composite values re-encode compactly.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}
