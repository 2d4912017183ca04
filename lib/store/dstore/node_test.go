package dstore

import (
	"context"
	"sync"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// localNode applies proposals directly to a single state machine. It stands in
// for a NodeHost running a one replica shard.
type localNode struct {
	mu    sync.Mutex
	fsm   sm.IConcurrentStateMachine
	index uint64

	busy  int // number of calls answered with ErrSystemBusy
	reads int // number of SyncRead calls
}

func newLocalNode() *localNode {
	factory := CreateStateMaschineFactory(func() db.KVDB { return maple.NewMapleDB(nil) })
	return &localNode{fsm: factory(1, 1)}
}

func (n *localNode) takeBusy() bool {
	if n.busy > 0 {
		n.busy--
		return true
	}
	return false
}

func (n *localNode) SyncPropose(_ context.Context, _ *client.Session, cmd []byte) (sm.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.takeBusy() {
		return sm.Result{}, dragonboat.ErrSystemBusy
	}

	n.index++
	entries, err := n.fsm.Update([]sm.Entry{{Index: n.index, Cmd: cmd}})
	if err != nil {
		return sm.Result{}, err
	}
	return entries[0].Result, nil
}

func (n *localNode) SyncRead(_ context.Context, _ uint64, query interface{}) (interface{}, error) {
	n.mu.Lock()
	n.reads++
	busy := n.takeBusy()
	n.mu.Unlock()

	if busy {
		return nil, dragonboat.ErrSystemBusy
	}
	return n.fsm.Lookup(query)
}

func (n *localNode) StaleRead(_ uint64, query interface{}) (interface{}, error) {
	return n.fsm.Lookup(query)
}
