package containers

import (
	"iter"

	"github.com/ValentinKolb/tKV/lib/store"
)

// Entry is a decoded key value pair yielded by container iterators.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// decodeEntries lazily decodes the pairs of a store scan.
//
// A pair whose key or value fails to decode is yielded as a *KeyValueDecodeError and
// the iteration continues; key failures take precedence over value failures.
// A store error is yielded unchanged and ends the sequence.
func decodeEntries[K, V any](
	pairs iter.Seq2[store.Pair, error],
	decodeKey func([]byte) (K, error),
	decodeValue func([]byte) (V, error),
) iter.Seq2[Entry[K, V], error] {
	return func(yield func(Entry[K, V], error) bool) {
		for pair, err := range pairs {
			if err != nil {
				yield(Entry[K, V]{}, err)
				return
			}

			key, err := decodeKey(pair.Key)
			if err != nil {
				Logger.Debugf("cannot decode entry %x: %v", pair.Key, err)
				if !yield(Entry[K, V]{}, &KeyValueDecodeError{Kind: KindKey, RawKey: pair.Key, Err: err}) {
					return
				}
				continue
			}

			value, err := decodeValue(pair.Value)
			if err != nil {
				Logger.Debugf("cannot decode entry %x: %v", pair.Key, err)
				if !yield(Entry[K, V]{}, &KeyValueDecodeError{Kind: KindValue, RawKey: pair.Key, Err: err}) {
					return
				}
				continue
			}

			if !yield(Entry[K, V]{Key: key, Value: value}, nil) {
				return
			}
		}
	}
}

// Collect drains seq. It returns all successfully decoded entries in order and the
// first error encountered (nil if there was none).
func Collect[K, V any](seq iter.Seq2[Entry[K, V], error]) ([]Entry[K, V], error) {
	var (
		entries  []Entry[K, V]
		firstErr error
	)
	for entry, err := range seq {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		entries = append(entries, entry)
	}
	return entries, firstErr
}
