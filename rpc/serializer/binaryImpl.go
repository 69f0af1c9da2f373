package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/metasync/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasValue byte = 1 << 1
	hasKeys  byte = 1 << 2
	hasOk    byte = 1 << 3
	hasErr   byte = 1 << 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, b.sizeBytes(msg))

	// Write message type, the flags byte is written last
	result[0] = byte(msg.MsgType)
	var flags byte = 0
	pos := 2

	if msg.Key != "" {
		flags |= hasKey
		pos = putBytes(result, pos, []byte(msg.Key))
	}

	// an empty but non nil value is kept, a Get of an empty value must stay found
	if msg.Value != nil {
		flags |= hasValue
		pos = putBytes(result, pos, msg.Value)
	}

	if msg.Keys != nil {
		flags |= hasKeys
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Keys)))
		pos += 4
		for _, key := range msg.Keys {
			pos = putBytes(result, pos, []byte(key))
		}
	}

	if msg.Ok {
		flags |= hasOk
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putBytes(result, pos, []byte(msg.Err))
	}

	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	var (
		field []byte
		err   error
	)

	msg.Key = ""
	if flags&hasKey != 0 {
		if field, pos, err = readBytes(data, pos, "key"); err != nil {
			return err
		}
		msg.Key = string(field)
	}

	msg.Value = nil
	if flags&hasValue != 0 {
		if field, pos, err = readBytes(data, pos, "value"); err != nil {
			return err
		}
		// copy, data may be a reused buffer
		msg.Value = make([]byte, len(field))
		copy(msg.Value, field)
	}

	msg.Keys = nil
	if flags&hasKeys != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for keys count")
		}
		count := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		// every key needs at least its length prefix
		if count > (len(data)-pos)/4 {
			return fmt.Errorf("data too short for %d keys", count)
		}
		msg.Keys = make([]string, 0, count)
		for i := 0; i < count; i++ {
			if field, pos, err = readBytes(data, pos, "keys"); err != nil {
				return err
			}
			msg.Keys = append(msg.Keys, string(field))
		}
	}

	msg.Ok = flags&hasOk != 0

	msg.Err = ""
	if flags&hasErr != 0 {
		if field, _, err = readBytes(data, pos, "error"); err != nil {
			return err
		}
		msg.Err = string(field)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// 4 bytes length prefix for every variable length field
	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Keys != nil {
		size += 4
		for _, key := range msg.Keys {
			size += 4 + len(key)
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}

	return size
}

// putBytes writes a length prefixed field at pos and returns the new position
func putBytes(dst []byte, pos int, field []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(field)))
	pos += 4
	copy(dst[pos:pos+len(field)], field)
	return pos + len(field)
}

// readBytes reads a length prefixed field at pos. The returned slice aliases data.
func readBytes(data []byte, pos int, name string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s length", name)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if n > len(data)-pos {
		return nil, pos, fmt.Errorf("data too short for %s data", name)
	}
	return data[pos : pos+n], pos + n, nil
}
