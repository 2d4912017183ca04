package store

import (
	"fmt"
	"iter"

	"github.com/ValentinKolb/tKV/lib/db"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() db.KVDB

// IStore is the minimal interface for interacting with an ordered byte keyed store.
// Keys and values are opaque byte strings. Every operation returns an error so that
// remote or replicated backends can report failures; a local backend usually never fails.
type IStore interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	// An absent key is not an error.
	Get(key []byte) (value []byte, loaded bool, err error)
	// Set inserts or overwrites a key value pair.
	Set(key, value []byte) (err error)
	// Delete deletes a key value pair. Deleting an absent key is not an error.
	Delete(key []byte) (err error)
}

// Pair is a single key value pair yielded by a range scan.
type Pair struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// IIterableStore is a store that can enumerate its pairs in ascending byte order of the keys.
type IIterableStore interface {
	IStore
	// Pairs yields all pairs with start <= key < end in ascending byte order.
	// A nil start is unbounded below, a nil end is unbounded above.
	// The sequence is lazy; a backend failure is yielded as (Pair{}, err) and ends the sequence.
	Pairs(start, end []byte) iter.Seq2[Pair, error]
}

// IInfoStore is implemented by stores that can report metadata about the database underlying them.
type IInfoStore interface {
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is a *Error with the same return code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
