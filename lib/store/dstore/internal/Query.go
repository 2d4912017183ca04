package internal

import (
	"github.com/ValentinKolb/tKV/lib/store"
)

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTGet       QueryType = iota // Retrieve an entry by key.
	QueryTRange                      // Retrieve a page of entries in key order.
	QueryTGetDBInfo                  // Retrieve metadata about the database underlying the machine.
)

func (q QueryType) String() string {
	switch q {
	case QueryTGet:
		return "Get"
	case QueryTRange:
		return "Range"
	case QueryTGetDBInfo:
		return "GetDBInfo"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or ReadStale
type Query struct {
	Type  QueryType // The type of Query to perform.
	Key   []byte    // The key for Get, the inclusive start for Range (nil is unbounded).
	End   []byte    // The exclusive end for Range (nil is unbounded).
	Limit int       // The maximum number of pairs returned by Range.
}

// QueryResult is the result of a QueryTGet operation.
type QueryResult struct {
	Ok    bool
	Value []byte
}

// RangeResult is the result of a QueryTRange operation.
// More is set if the range holds further pairs after the last returned one.
type RangeResult struct {
	Pairs []store.Pair
	More  bool
}
