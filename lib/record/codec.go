package record

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// ICodec converts records to and from the bytes kept by a byte oriented store.
type ICodec interface {
	Encode(rec Record) ([]byte, error)
	Decode(data []byte) (Record, error)
	// Name returns the name used to select the codec in the configuration
	Name() string
}

// NewCodec returns the codec registered under name ("json" or "gob").
func NewCodec(name string) (ICodec, error) {
	switch name {
	case "json", "":
		return NewJSONCodec(), nil
	case "gob":
		return NewGOBCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q (available: json, gob)", name)
	}
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

type jsonCodec struct{}

// NewJSONCodec returns a codec storing records as JSON objects.
func NewJSONCodec() ICodec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(rec Record) ([]byte, error) {
	if rec == nil {
		rec = Record{}
	}
	return json.Marshal(rec)
}

func (jsonCodec) Decode(data []byte) (Record, error) {
	rec := Record{}
	if len(data) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode json record: %w", err)
	}
	if rec == nil { // the literal null
		rec = Record{}
	}
	return rec, nil
}

// --------------------------------------------------------------------------
// GOB
// --------------------------------------------------------------------------

func init() {
	// concrete types that can appear behind `any` in a record
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(Record{})
}

type gobCodec struct{}

// NewGOBCodec returns a codec storing records with encoding/gob.
// Field values must be gob encodable; nested values use the generic JSON shapes.
func NewGOBCodec() ICodec {
	return gobCodec{}
}

func (gobCodec) Name() string { return "gob" }

func (gobCodec) Encode(rec Record) ([]byte, error) {
	// gob cannot encode nil interface values; a nil field reads the same as an absent one
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		if v != nil {
			m[k] = v
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode gob record: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Decode(data []byte) (Record, error) {
	if len(data) == 0 {
		return Record{}, nil
	}
	var m map[string]any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode gob record: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
