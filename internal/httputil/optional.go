package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional tracks presence and value of a JSON field (RFC 7396 semantics),
// which a plain pointer cannot express:
//   - Present=false: field absent from JSON
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value!=nil: field has a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON is only invoked when the field is present in the JSON
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalString is the common string case
type OptionalString = Optional[string]
