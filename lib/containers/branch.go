package containers

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/ValentinKolb/tKV/lib/store"
)

// Branch is a view of a store restricted to the keys starting with a fixed prefix.
// Every key passed to a Branch is relative: Get(k) reads prefix++k from the
// underlying store, and Pairs yields keys with the prefix stripped.
//
// A Branch has no state besides the prefix and never caches. Creating a branch of
// a branch targets the root store directly with the concatenated prefix.
type Branch struct {
	store  store.IStore
	prefix []byte
}

// NewBranch returns a view of s restricted to prefix. The prefix is copied.
func NewBranch(s store.IStore, prefix []byte) *Branch {
	if b, ok := s.(*Branch); ok {
		return &Branch{store: b.store, prefix: concat(b.prefix, prefix)}
	}
	return &Branch{store: s, prefix: concat(nil, prefix)}
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// prefixEnd returns the smallest key greater than every key starting with prefix,
// or nil if there is none (empty prefix or only 0xFF bytes).
func prefixEnd(prefix []byte) []byte {
	end := concat(prefix, nil)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Prefix returns a copy of the branch prefix.
func (b *Branch) Prefix() []byte {
	return concat(b.prefix, nil)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (b *Branch) Get(key []byte) ([]byte, bool, error) {
	return b.store.Get(concat(b.prefix, key))
}

func (b *Branch) Set(key, value []byte) error {
	return b.store.Set(concat(b.prefix, key), value)
}

func (b *Branch) Delete(key []byte) error {
	return b.store.Delete(concat(b.prefix, key))
}

// Pairs scans [prefix++start, prefix++end). A nil end scans to the end of the
// branch instead of the end of the store. Yielded keys are relative to the branch.
// If the underlying store cannot iterate, a single RetCUnsupportedOperation error is yielded.
func (b *Branch) Pairs(start, end []byte) iter.Seq2[store.Pair, error] {
	iterable, ok := b.store.(store.IIterableStore)
	if !ok {
		return func(yield func(store.Pair, error) bool) {
			yield(store.Pair{}, store.NewError(store.RetCUnsupportedOperation, "store does not support range scans"))
		}
	}

	lo := concat(b.prefix, start)
	var hi []byte
	if end != nil {
		hi = concat(b.prefix, end)
	} else {
		hi = prefixEnd(b.prefix)
	}

	return func(yield func(store.Pair, error) bool) {
		for pair, err := range iterable.Pairs(lo, hi) {
			if err != nil {
				yield(store.Pair{}, err)
				return
			}
			if !bytes.HasPrefix(pair.Key, b.prefix) {
				yield(store.Pair{}, store.NewError(store.RetCInternalError, fmt.Sprintf("store yielded key %x outside of range", pair.Key)))
				return
			}
			pair.Key = pair.Key[len(b.prefix):]
			if !yield(pair, nil) {
				return
			}
		}
	}
}
