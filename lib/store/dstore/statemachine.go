package dstore

import (
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// slowUpdate is the batch duration above which Update logs a warning
const slowUpdate = time.Millisecond

// stateMachine applies the replicated log of one shard to a db.KVDB
type stateMachine struct {
	shardID   uint64
	replicaID uint64
	kv        db.KVDB
}

// CreateStateMaschineFactory returns the factory passed to NodeHost.StartConcurrentReplica.
// Every replica gets its own database from dbFactory.
func CreateStateMaschineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &stateMachine{shardID: shardID, replicaID: replicaID, kv: dbFactory()}
	}
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

func result(code store.RetCode, format string, args ...any) sm.Result {
	return sm.Result{Value: uint64(code), Data: []byte(fmt.Sprintf(format, args...))}
}

// Update applies committed commands. A command that cannot be applied is
// reported in its entry's result. Update itself never fails, so a bad entry
// does not stop the replica.
func (m *stateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	start := time.Now()

	var cmd internal.Command
	for i := range entries {
		entries[i].Result = m.apply(&cmd, entries[i].Cmd)
	}

	if elapsed := time.Since(start); elapsed > slowUpdate {
		log.Warningf("shard %d: applying %d entries took %s", m.shardID, len(entries), elapsed)
	}
	return entries, nil
}

func (m *stateMachine) apply(cmd *internal.Command, data []byte) sm.Result {
	if len(data) == 0 {
		return result(store.RetCInvalidOperation, "empty command")
	}
	if err := cmd.Deserialize(data); err != nil {
		return result(store.RetCInternalError, "bad command: %v", err)
	}

	feature, err := cmd.Type.ToDBFeature()
	if err != nil {
		return result(store.RetCInvalidOperation, "%v", err)
	}
	if !m.kv.SupportsFeature(feature) {
		return result(store.RetCUnsupportedOperation, "%s is not supported by the database", cmd.Type)
	}

	if cmd.Type == internal.CommandTSet {
		m.kv.Set(cmd.Key, cmd.Value)
	} else {
		m.kv.Delete(cmd.Key)
	}
	return result(store.RetCSuccess, "%s %x", cmd.Type, cmd.Key)
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

// Lookup answers an internal.Query
func (m *stateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	switch q.Type {
	case internal.QueryTGet:
		if err := m.require(db.FeatureGet, q.Type); err != nil {
			return nil, err
		}
		val, found := m.kv.Get(q.Key)
		return internal.QueryResult{Value: val, Ok: found}, nil

	case internal.QueryTRange:
		if err := m.require(db.FeatureRange, q.Type); err != nil {
			return nil, err
		}
		if q.Limit <= 0 {
			return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("invalid range limit: %d", q.Limit))
		}
		return m.page(q.Key, q.End, q.Limit), nil

	case internal.QueryTGetDBInfo:
		return m.kv.GetInfo(), nil
	}
	return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %s", q.Type))
}

func (m *stateMachine) require(feature db.Feature, q internal.QueryType) error {
	if m.kv.SupportsFeature(feature) {
		return nil
	}
	return store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s is not supported by the database", q))
}

// page collects up to limit pairs of [start, end) and reports whether more follow
func (m *stateMachine) page(start, end []byte, limit int) internal.RangeResult {
	res := internal.RangeResult{Pairs: make([]store.Pair, 0, min(limit, 64))}
	for k, v := range m.kv.Pairs(start, end) {
		if len(res.Pairs) == limit {
			res.More = true
			break
		}
		res.Pairs = append(res.Pairs, store.Pair{Key: k, Value: v})
	}
	return res
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// PrepareSnapshot returns nothing, db.Save is consistent on its own
func (m *stateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

func (m *stateMachine) SaveSnapshot(_ interface{}, w io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if !m.kv.SupportsFeature(db.FeatureSave) {
		return fmt.Errorf("shard %d: database cannot be saved", m.shardID)
	}
	return m.kv.Save(w)
}

// RecoverFromSnapshot replaces the database content with the snapshot read from r
func (m *stateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if !m.kv.SupportsFeature(db.FeatureLoad) {
		return fmt.Errorf("shard %d: database cannot be loaded", m.shardID)
	}
	return m.kv.Load(r)
}

func (m *stateMachine) Close() error {
	return m.kv.Close()
}
