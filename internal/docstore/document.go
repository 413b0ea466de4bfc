package docstore

import (
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Encode converts v into document fields through its JSON form. A top-level
// "id" field is dropped because the id is the document key.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("docstore: encode: value is not an object: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	delete(fields, "id")
	return fields, nil
}

// Decode fills v from the document fields, exposing the key as "id".
func (d Document) Decode(v any) error {
	fields := make(map[string]any, len(d.Data)+1)
	for k, val := range d.Data {
		fields[k] = val
	}
	fields["id"] = d.ID
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
	}
	return nil
}

// NewID returns a lexically sortable document id.
func NewID() string {
	return ulid.Make().String()
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneFields(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}
