package serializer

import (
	"github.com/ValentinKolb/metasync/rpc/common"
	"reflect"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Set request
		{
			MsgType: common.MsgTKVSet,
			Key:     "7-organization-42",
			Value:   []byte(`{"theme":"dark"}`),
		},

		// Get response
		{
			MsgType: common.MsgTKVGet,
			Value:   []byte(`{"theme":"dark"}`),
			Ok:      true,
		},

		// Keys response
		{
			MsgType: common.MsgTKVKeys,
			Keys:    []string{"1-organization-a", "2-organization-b", "ü-organization-ß"},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTKVInfo,
			Key:     "key",
			Value:   []byte("info"),
			Keys:    []string{"k"},
			Ok:      true,
			Err:     "err",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range testMessages() {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d mismatch:\nexpected: %+v\ngot:      %+v", i, msg, result)
				}
			}
		})
	}
}

// TestBinaryEmptyValue checks that an empty value is not confused with a missing one
func TestBinaryEmptyValue(t *testing.T) {
	s := NewBinarySerializer()

	data, err := s.Serialize(common.Message{MsgType: common.MsgTKVGet, Value: []byte{}, Ok: true})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	var result common.Message
	if err := s.Deserialize(data, &result); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	if result.Value == nil || len(result.Value) != 0 {
		t.Errorf("Expected empty non-nil value, got %#v", result.Value)
	}
}

// TestReusedMessage checks that fields of a reused message are reset
func TestReusedMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			full, _ := s.Serialize(common.Message{MsgType: common.MsgTKVKeys, Key: "k", Keys: []string{"a"}, Ok: true, Err: "e"})
			empty, _ := s.Serialize(common.Message{MsgType: common.MsgTSuccess})

			var msg common.Message
			if err := s.Deserialize(full, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if err := s.Deserialize(empty, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if !reflect.DeepEqual(msg, common.Message{MsgType: common.MsgTSuccess}) {
				t.Errorf("Expected all fields to be reset, got %+v", msg)
			}
		})
	}
}

// TestNew checks the lookup of serializers by name
func TestNew(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Error("Expected an error for an unknown serializer")
	}
}

// TestBinaryTruncated checks that every truncation of a valid message is rejected
func TestBinaryTruncated(t *testing.T) {
	s := NewBinarySerializer()

	data, err := s.Serialize(common.Message{
		MsgType: common.MsgTKVKeys,
		Key:     "key",
		Value:   []byte("value"),
		Keys:    []string{"a", "bc"},
		Err:     "err",
	})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	for n := 0; n < len(data); n++ {
		var msg common.Message
		if err := s.Deserialize(data[:n], &msg); err == nil {
			t.Errorf("Expected error for data truncated to %d bytes", n)
		}
	}
}
