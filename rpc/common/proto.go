package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
//
// A nil End in a Range request is unbounded above. Serializers may not keep nil and
// empty slices apart, so clients never send a Range request with an empty End
// (such a range is empty anyway).
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   []byte `json:"key,omitempty"`   // Used for: Set, Get, Delete, Range (inclusive start)
	End   []byte `json:"end,omitempty"`   // Used for: Range (exclusive end)
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get (response)
	Limit uint32 `json:"limit,omitempty"` // Used for: Range (request)

	// Response only fields
	Pairs []store.Pair  `json:"pairs,omitempty"` // Used for: Range responses
	Ok    bool          `json:"ok,omitempty"`    // Used for: Get (found), Range (more pairs follow)
	Err   string        `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message
	Code  store.RetCode `json:"code,omitempty"`  // Return code of the error (only set with Err)

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info responses (json encoded db.DatabaseInfo)
}

// setErr stores err in the message. Store errors keep their return code.
func (m *Message) setErr(err error) {
	if err == nil {
		return
	}
	m.Err = err.Error()
	m.Code = store.RetCInternalError

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		m.Err = storeErr.Msg
		m.Code = storeErr.Code
	}
}

// Error returns the error carried by a response, nil if there is none.
func (m *Message) Error() error {
	if m.Err == "" && m.MsgType != MsgTError {
		return nil
	}
	code := m.Code
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVSet,
	}
	msg.setErr(err)
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVDelete,
	}
	msg.setErr(err)
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}
	msg.setErr(err)
	return msg
}

// NewRangeRequest creates a new Range request for at most limit pairs of [start, end)
func NewRangeRequest(start, end []byte, limit uint32) *Message {
	return &Message{
		MsgType: MsgTKVRange,
		Key:     start,
		End:     end,
		Limit:   limit,
	}
}

// NewRangeResponse creates a new Range response, more is set if further pairs follow
func NewRangeResponse(pairs []store.Pair, more bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVRange,
		Pairs:   pairs,
		Ok:      more,
	}
	msg.setErr(err)
	return msg
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{
		MsgType: MsgTKVInfo,
	}
}

// NewInfoResponse creates a new Info response
func NewInfoResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVInfo,
		Meta:    meta,
	}
	msg.setErr(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    store.RetCInvalidOperation,
	}
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
	case MsgTKVRange:
		return "range"
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
	case "range":
		*t = MsgTKVRange
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

	// IIterableStore / IInfoStore operations

	MsgTKVRange // Get a page of pairs in key order
	MsgTKVInfo  // Get information about the database of a shard
)
