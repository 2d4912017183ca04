package dstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/tKV/lib/store"
	storeTesting "github.com/ValentinKolb/tKV/lib/store/testing"
)

func TestDistributedStore(t *testing.T) {
	storeTesting.RunStoreTests(t, "dstore", func() store.IIterableStore {
		return newStore(newLocalNode(), nil, 1, time.Second, 0)
	})
}

func TestDistributedStoreSmallPages(t *testing.T) {
	storeTesting.RunStoreTests(t, "dstore(page=2)", func() store.IIterableStore {
		return newStore(newLocalNode(), nil, 1, time.Second, 2)
	})
}

func TestPairsReadsOnePagePerLimit(t *testing.T) {
	node := newLocalNode()
	s := newStore(node, nil, 1, time.Second, 10)

	for i := 0; i < 25; i++ {
		if err := s.Set([]byte(fmt.Sprintf("k%02d", i)), []byte("v")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	n := 0
	for _, err := range s.Pairs(nil, nil) {
		if err != nil {
			t.Fatalf("Pairs failed: %v", err)
		}
		n++
	}
	if n != 25 {
		t.Errorf("expected 25 pairs, got %d", n)
	}
	if node.reads != 3 {
		t.Errorf("expected 3 page reads, got %d", node.reads)
	}

	// breaking inside the first page does not fetch the next one
	node.reads = 0
	for range s.Pairs(nil, nil) {
		break
	}
	if node.reads != 1 {
		t.Errorf("expected 1 page read, got %d", node.reads)
	}
}

func TestRetryOnSystemBusy(t *testing.T) {
	node := newLocalNode()
	s := newStore(node, nil, 1, 10*time.Millisecond, 0)

	node.busy = retries - 1
	if err := s.Set([]byte("key"), []byte("value")); err != nil {
		t.Fatalf("Set should succeed after retries: %v", err)
	}

	node.busy = retries
	_, _, err := s.Get([]byte("key"))
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInternalError {
		t.Errorf("expected internal error after exhausting retries, got %v", err)
	}
}

func TestDBInfo(t *testing.T) {
	s := newStore(newLocalNode(), nil, 1, time.Second, 0)
	_ = s.Set([]byte("a"), []byte("1"))
	_ = s.Set([]byte("b"), []byte("2"))

	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.KeyCount != 2 {
		t.Errorf("expected 2 keys, got %d", info.KeyCount)
	}
}
