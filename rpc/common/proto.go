package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Set, Get, Has, Delete
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get (response), Info (response)

	// Response only fields
	Keys []string `json:"keys,omitempty"` // Used for: Keys responses
	Ok   bool     `json:"ok,omitempty"`   // Used for: Get, Has responses
	Err  string   `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVSet}, err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return withErr(&Message{MsgType: MsgTKVDelete}, err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}, err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVHas,
		Ok:      ok,
	}, err)
}

// NewKeysRequest creates a new Keys request
func NewKeysRequest() *Message {
	return &Message{MsgType: MsgTKVKeys}
}

// NewKeysResponse creates a new Keys response
func NewKeysResponse(keys []string, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVKeys,
		Keys:    keys,
	}, err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{MsgType: MsgTKVInfo}
}

// NewInfoResponse creates a new Info response, info is the JSON encoded db.DatabaseInfo
func NewInfoResponse(info []byte, err error) *Message {
	return withErr(&Message{
		MsgType: MsgTKVInfo,
		Value:   info,
	}, err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

func withErr(msg *Message, err error) *Message {
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTKVSet:
		return "set"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVGet:
		return "get"
	case MsgTKVHas:
		return "has"
	case MsgTKVKeys:
		return "keys"
	case MsgTKVInfo:
		return "info"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "set":
		*t = MsgTKVSet
	case "delete":
		*t = MsgTKVDelete
	case "get":
		*t = MsgTKVGet
	case "has":
		*t = MsgTKVHas
	case "keys":
		*t = MsgTKVKeys
	case "info":
		*t = MsgTKVInfo
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVSet    // Set a key-value pair
	MsgTKVDelete // Delete a key-value pair
	MsgTKVGet    // Get a value by key
	MsgTKVHas    // Check if a key exists
	MsgTKVKeys   // List all keys
	MsgTKVInfo   // Database information
)
