package mstore

import (
	"fmt"
	"iter"
	"time"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
)

// Store is the store returned by NewMeteredStore.
type Store interface {
	store.IIterableStore
	store.IInfoStore
}

// opMetrics holds the metrics of a single operation
type opMetrics struct {
	calls    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

func newOpMetrics(set *metrics.Set, name, op string) opMetrics {
	labels := fmt.Sprintf(`{store=%q,op=%q}`, name, op)
	return opMetrics{
		calls:    set.GetOrCreateCounter("tkv_store_ops_total" + labels),
		errors:   set.GetOrCreateCounter("tkv_store_errors_total" + labels),
		duration: set.GetOrCreateHistogram("tkv_store_op_duration_seconds" + labels),
	}
}

// observe records a finished call
func (m opMetrics) observe(start time.Time, err error) {
	m.calls.Inc()
	if err != nil {
		m.errors.Inc()
	}
	m.duration.UpdateDuration(start)
}

type storeImpl struct {
	inner store.IIterableStore

	get, set, del, scan opMetrics
	scanned             *metrics.Counter
}

// NewMeteredStore wraps inner and records call counts, error counts and latency
// histograms for every operation in set. All metrics carry the label store=name.
// For Pairs the duration covers the whole scan including the consumer's loop body,
// the number of yielded pairs is counted separately.
func NewMeteredStore(inner store.IIterableStore, set *metrics.Set, name string) Store {
	return &storeImpl{
		inner:   inner,
		get:     newOpMetrics(set, name, "get"),
		set:     newOpMetrics(set, name, "set"),
		del:     newOpMetrics(set, name, "delete"),
		scan:    newOpMetrics(set, name, "pairs"),
		scanned: set.GetOrCreateCounter(fmt.Sprintf(`tkv_store_scanned_pairs_total{store=%q}`, name)),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key []byte) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(key)
	s.get.observe(start, err)
	return value, ok, err
}

func (s *storeImpl) Set(key, value []byte) error {
	start := time.Now()
	err := s.inner.Set(key, value)
	s.set.observe(start, err)
	return err
}

func (s *storeImpl) Delete(key []byte) error {
	start := time.Now()
	err := s.inner.Delete(key)
	s.del.observe(start, err)
	return err
}

func (s *storeImpl) Pairs(start, end []byte) iter.Seq2[store.Pair, error] {
	return func(yield func(store.Pair, error) bool) {
		began := time.Now()
		var scanErr error
		defer func() { s.scan.observe(began, scanErr) }()

		for pair, err := range s.inner.Pairs(start, end) {
			if err != nil {
				scanErr = err
			} else {
				s.scanned.Inc()
			}
			if !yield(pair, err) {
				return
			}
		}
	}
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	info, ok := s.inner.(store.IInfoStore)
	if !ok {
		return db.DatabaseInfo{}, store.NewError(store.RetCUnsupportedOperation, "GetDBInfo operation is not supported")
	}
	return info.GetDBInfo()
}
