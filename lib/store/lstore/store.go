package lstore

import (
	"iter"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
)

// Store is the store returned by NewLocalStore. Next to the key-value operations
// it reports information about the database it wraps.
type Store interface {
	store.IIterableStore
	store.IInfoStore
}

type storeImpl struct {
	db db.KVDB
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// It uses the db created by the factory directly.
func NewLocalStore(factory store.DBFactory) Store {
	return &storeImpl{
		db: factory(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key, value []byte) error {
	if !s.db.SupportsFeature(db.FeatureSet) {
		return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
	}
	s.db.Set(key, value)
	return nil
}

func (s *storeImpl) Delete(key []byte) error {
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	s.db.Delete(key)
	return nil
}

func (s *storeImpl) Get(key []byte) ([]byte, bool, error) {
	if !s.db.SupportsFeature(db.FeatureGet) {
		return nil, false, store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) Pairs(start, end []byte) iter.Seq2[store.Pair, error] {
	return func(yield func(store.Pair, error) bool) {
		if !s.db.SupportsFeature(db.FeatureRange) {
			yield(store.Pair{}, store.NewError(store.RetCUnsupportedOperation, "Range operation is not supported"))
			return
		}
		for k, v := range s.db.Pairs(start, end) {
			if !yield(store.Pair{Key: k, Value: v}, nil) {
				return
			}
		}
	}
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}
