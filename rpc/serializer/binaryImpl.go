package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	msgType | flags | [key] | [end] | [value] | [limit] | [pairs] | [ok] | [err code] | [meta]
//
// Byte fields are written as a 4 byte big endian length followed by the data.
// Pairs are written as a 4 byte count followed by (key, value) byte fields.
// Only fields whose flag is set are present. A nil slice and an empty slice are kept apart.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey   byte = 1 << 0
	hasEnd   byte = 1 << 1
	hasValue byte = 1 << 2
	hasLimit byte = 1 << 3
	hasPairs byte = 1 << 4
	hasOk    byte = 1 << 5
	hasErr   byte = 1 << 6
	hasMeta  byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, 2, b.sizeBytes(msg))

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	if msg.Key != nil {
		flags |= hasKey
		result = appendBytes(result, msg.Key)
	}

	if msg.End != nil {
		flags |= hasEnd
		result = appendBytes(result, msg.End)
	}

	if msg.Value != nil {
		flags |= hasValue
		result = appendBytes(result, msg.Value)
	}

	if msg.Limit > 0 {
		flags |= hasLimit
		result = binary.BigEndian.AppendUint32(result, msg.Limit)
	}

	if msg.Pairs != nil {
		flags |= hasPairs
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Pairs)))
		for _, p := range msg.Pairs {
			result = appendBytes(result, p.Key)
			result = appendBytes(result, p.Value)
		}
	}

	// Ok has no payload, the flag is the value
	if msg.Ok {
		flags |= hasOk
	}

	if msg.Err != "" {
		flags |= hasErr
		result = appendBytes(result, []byte(msg.Err))
		result = binary.BigEndian.AppendUint64(result, uint64(msg.Code))
	}

	if msg.Meta != nil {
		flags |= hasMeta
		result = appendBytes(result, msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	r := reader{data: data, pos: 2}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	var err error

	msg.Key = nil
	if flags&hasKey != 0 {
		if msg.Key, err = r.bytes("key"); err != nil {
			return err
		}
	}

	msg.End = nil
	if flags&hasEnd != 0 {
		if msg.End, err = r.bytes("end"); err != nil {
			return err
		}
	}

	msg.Value = nil
	if flags&hasValue != 0 {
		if msg.Value, err = r.bytes("value"); err != nil {
			return err
		}
	}

	msg.Limit = 0
	if flags&hasLimit != 0 {
		if msg.Limit, err = r.uint32("limit"); err != nil {
			return err
		}
	}

	msg.Pairs = nil
	if flags&hasPairs != 0 {
		count, err := r.uint32("pair count")
		if err != nil {
			return err
		}
		// every pair needs at least two length fields
		if uint64(count)*8 > uint64(r.remaining()) {
			return fmt.Errorf("data too short for %d pairs", count)
		}
		msg.Pairs = make([]store.Pair, count)
		for i := range msg.Pairs {
			if msg.Pairs[i].Key, err = r.bytes("pair key"); err != nil {
				return err
			}
			if msg.Pairs[i].Value, err = r.bytes("pair value"); err != nil {
				return err
			}
		}
	}

	msg.Ok = flags&hasOk != 0

	msg.Err = ""
	msg.Code = store.RetCSuccess
	if flags&hasErr != 0 {
		errBytes, err := r.bytes("error")
		if err != nil {
			return err
		}
		code, err := r.uint64("error code")
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
		msg.Code = store.RetCode(code)
	}

	msg.Meta = nil
	if flags&hasMeta != 0 {
		if msg.Meta, err = r.bytes("meta"); err != nil {
			return err
		}
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

	if msg.Key != nil {
		size += 4 + len(msg.Key)
	}
	if msg.End != nil {
		size += 4 + len(msg.End)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Limit > 0 {
		size += 4
	}
	if msg.Pairs != nil {
		size += 4
		for _, p := range msg.Pairs {
			size += 8 + len(p.Key) + len(p.Value)
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) + 8 // length + error string + code
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// appendBytes writes a length prefixed byte field
func appendBytes(dst, field []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(field)))
	return append(dst, field...)
}

// reader walks a serialized message. All returned slices are copies.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) uint32(field string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) uint64(field string) (uint64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) bytes(field string) ([]byte, error) {
	n, err := r.uint32(field + " length")
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	// an empty field still decodes to a non nil slice
	out := make([]byte, n)
	copy(out, r.data[r.pos:])
	r.pos += int(n)
	return out, nil
}
