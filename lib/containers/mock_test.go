package containers

import (
	"bytes"
	"iter"
	"sort"

	"github.com/ValentinKolb/tKV/lib/store"
)

// mockStore is a map backed store.IIterableStore with error injection.
type mockStore struct {
	data map[string][]byte

	getErr  error
	setErr  error
	scanErr error // yielded after scanOk pairs
	scanOk  int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(key []byte) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *mockStore) Set(key, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *mockStore) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *mockStore) Pairs(start, end []byte) iter.Seq2[store.Pair, error] {
	return func(yield func(store.Pair, error) bool) {
		keys := make([]string, 0, len(m.data))
		for k := range m.data {
			if k >= string(start) && (end == nil || k < string(end)) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		for i, k := range keys {
			if m.scanErr != nil && i == m.scanOk {
				yield(store.Pair{}, m.scanErr)
				return
			}
			v, ok := m.data[k]
			if !ok {
				continue // deleted during the scan
			}
			if !yield(store.Pair{Key: []byte(k), Value: bytes.Clone(v)}, nil) {
				return
			}
		}
	}
}

// raw returns the stored value for a raw key
func (m *mockStore) raw(key ...byte) ([]byte, bool) {
	v, ok := m.data[string(key)]
	return v, ok
}

// put writes a raw key, bypassing any container
func (m *mockStore) put(key []byte, value []byte) {
	m.data[string(key)] = value
}

// pointStore hides the Pairs method of a store
type pointStore struct {
	store.IStore
}
