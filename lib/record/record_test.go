package record

import (
	"reflect"
	"testing"
)

func TestMergeDoesNotMutate(t *testing.T) {
	base := Record{"a": 1, "b": 2}
	merged := base.Merge(Record{"b": 3, "c": 4})

	if !reflect.DeepEqual(merged, Record{"a": 1, "b": 3, "c": 4}) {
		t.Errorf("Unexpected merge result %v", merged)
	}
	if !reflect.DeepEqual(base, Record{"a": 1, "b": 2}) {
		t.Errorf("Merge modified the receiver: %v", base)
	}
}

func TestCloneNil(t *testing.T) {
	var r Record
	c := r.Clone()
	if c == nil || len(c) != 0 {
		t.Errorf("Expected empty non-nil clone, got %#v", c)
	}
	c["x"] = 1
	if r != nil {
		t.Errorf("Clone shares storage with nil receiver")
	}
}

type viewState struct {
	Columns []string `json:"columns"`
	Width   int      `json:"width"`
}

func TestDecode(t *testing.T) {
	t.Run("DirectType", func(t *testing.T) {
		v, err := Decode[bool](false)
		if err != nil || v != false {
			t.Errorf("Expected false, got %v (err=%v)", v, err)
		}
	})

	t.Run("JSONNumberToInt", func(t *testing.T) {
		v, err := Decode[int](float64(42))
		if err != nil || v != 42 {
			t.Errorf("Expected 42, got %v (err=%v)", v, err)
		}
	})

	t.Run("GenericShapeToStruct", func(t *testing.T) {
		raw := map[string]any{"columns": []any{"name", "date"}, "width": float64(3)}
		v, err := Decode[viewState](raw)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !reflect.DeepEqual(v, viewState{Columns: []string{"name", "date"}, Width: 3}) {
			t.Errorf("Unexpected value %+v", v)
		}
	})

	t.Run("Mismatch", func(t *testing.T) {
		if _, err := Decode[int]("not a number"); err == nil {
			t.Errorf("Expected error for mismatching type")
		}
	})
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "gob"} {
		t.Run(name, func(t *testing.T) {
			codec, err := NewCodec(name)
			if err != nil {
				t.Fatalf("NewCodec failed: %v", err)
			}
			if codec.Name() != name {
				t.Errorf("Expected codec name %s, got %s", name, codec.Name())
			}

			rec := Record{
				"theme":  "dark",
				"count":  float64(0),
				"hidden": false,
				"empty":  "",
				"nested": map[string]any{"list": []any{"a", float64(1)}},
			}
			data, err := codec.Encode(rec)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := codec.Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(decoded, rec) {
				t.Errorf("Expected %v, got %v", rec, decoded)
			}

			empty, err := codec.Decode(nil)
			if err != nil || empty == nil || len(empty) != 0 {
				t.Errorf("Expected empty record for empty input, got %v (err=%v)", empty, err)
			}

			if _, err := codec.Decode([]byte("not a record")); err == nil {
				t.Errorf("Expected error for garbage input")
			}
		})
	}

	if _, err := NewCodec("xml"); err == nil {
		t.Errorf("Expected error for unknown codec")
	}
}

func TestGOBDropsNilFields(t *testing.T) {
	codec := NewGOBCodec()
	data, err := codec.Encode(Record{"gone": nil, "kept": "x"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := decoded["gone"]; ok {
		t.Errorf("Expected nil field to be dropped, got %v", decoded)
	}
}
