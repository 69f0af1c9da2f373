package record

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Record is the persisted state of one scope: a flat mapping from field name to value.
type Record map[string]any

// Clone returns a shallow copy of the record. A nil record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	maps.Copy(out, r)
	return out
}

// Merge returns a new record with fields laid over r. Fields present in both take
// the value from fields. The receiver is not modified.
func (r Record) Merge(fields Record) Record {
	out := make(Record, len(r)+len(fields))
	maps.Copy(out, r)
	maps.Copy(out, fields)
	return out
}

// Decode converts a raw field value into T.
//
// Values read from memory usually already have the right type and are returned as is.
// Values read from a serialized store arrive in their generic shape (float64 for
// numbers, map[string]any for structs, ...) and are converted by a JSON round trip.
func Decode[T any](raw any) (T, error) {
	var out T
	if v, ok := raw.(T); ok {
		return v, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("failed to encode %T: %w", raw, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %T into %T: %w", raw, out, err)
	}
	return out, nil
}
