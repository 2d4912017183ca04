package dstore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

func newStateMachine() sm.IConcurrentStateMachine {
	return CreateStateMaschineFactory(func() db.KVDB { return maple.NewMapleDB(nil) })(1, 1)
}

func set(key, value string) []byte {
	return (&internal.Command{Type: internal.CommandTSet, Key: []byte(key), Value: []byte(value)}).Serialize()
}

func TestUpdateResults(t *testing.T) {
	fsm := newStateMachine()

	entries, err := fsm.Update([]sm.Entry{
		{Index: 1, Cmd: set("a", "1")},
		{Index: 2, Cmd: nil},
		{Index: 3, Cmd: []byte{0, 0, 0, 0, 9}},
		{Index: 4, Cmd: (&internal.Command{Type: 7, Key: []byte("x")}).Serialize()},
		{Index: 5, Cmd: (&internal.Command{Type: internal.CommandTDelete, Key: []byte("a")}).Serialize()},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	want := []store.RetCode{
		store.RetCSuccess,
		store.RetCInvalidOperation,
		store.RetCInternalError,
		store.RetCInvalidOperation,
		store.RetCSuccess,
	}
	for i, e := range entries {
		if got := store.RetCode(e.Result.Value); got != want[i] {
			t.Errorf("entry %d: expected %s, got %s (%s)", i, want[i], got, e.Result.Data)
		}
	}

	res, err := fsm.Lookup(internal.Query{Type: internal.QueryTGet, Key: []byte("a")})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if res.(internal.QueryResult).Ok {
		t.Errorf("expected a to be deleted")
	}
}

func TestLookupRange(t *testing.T) {
	fsm := newStateMachine()
	if _, err := fsm.Update([]sm.Entry{
		{Index: 1, Cmd: set("a", "1")},
		{Index: 2, Cmd: set("b", "2")},
		{Index: 3, Cmd: set("c", "3")},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	tests := []struct {
		start, end []byte
		limit      int
		keys       string
		more       bool
	}{
		{nil, nil, 10, "abc", false},
		{nil, nil, 3, "abc", false},
		{nil, nil, 2, "ab", true},
		{[]byte("b"), nil, 1, "b", true},
		{[]byte("b"), []byte("c"), 1, "b", false},
		{[]byte("d"), nil, 5, "", false},
	}

	for _, tt := range tests {
		res, err := fsm.Lookup(internal.Query{Type: internal.QueryTRange, Key: tt.start, End: tt.end, Limit: tt.limit})
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		page := res.(internal.RangeResult)

		var keys []byte
		for _, p := range page.Pairs {
			keys = append(keys, p.Key...)
		}
		if string(keys) != tt.keys || page.More != tt.more {
			t.Errorf("Range(%q, %q, %d): expected %q more=%v, got %q more=%v",
				tt.start, tt.end, tt.limit, tt.keys, tt.more, keys, page.More)
		}
	}

	_, err := fsm.Lookup(internal.Query{Type: internal.QueryTRange, Limit: 0})
	if !errors.Is(err, store.NewError(store.RetCInvalidOperation, "")) {
		t.Errorf("expected invalid operation for zero limit, got %v", err)
	}

	_, err = fsm.Lookup("not a query")
	if !errors.Is(err, store.NewError(store.RetCInternalError, "")) {
		t.Errorf("expected internal error for invalid query type, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := newStateMachine()
	if _, err := source.Update([]sm.Entry{
		{Index: 1, Cmd: set("x", "1")},
		{Index: 2, Cmd: set("y", "2")},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var buf bytes.Buffer
	if err := source.SaveSnapshot(nil, &buf, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	target := newStateMachine()
	if _, err := target.Update([]sm.Entry{{Index: 1, Cmd: set("stale", "!")}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := target.RecoverFromSnapshot(&buf, nil, nil); err != nil {
		t.Fatalf("RecoverFromSnapshot failed: %v", err)
	}

	res, _ := target.Lookup(internal.Query{Type: internal.QueryTRange, Limit: 10})
	page := res.(internal.RangeResult)
	if len(page.Pairs) != 2 || string(page.Pairs[0].Key) != "x" || string(page.Pairs[1].Value) != "2" {
		t.Errorf("unexpected state after recovery: %+v", page.Pairs)
	}
}
