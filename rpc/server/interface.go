package server

import (
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// IRPCServerAdapter turns a request into a call on the store of its shard.
type IRPCServerAdapter interface {
	// Handle executes req against s. Failures are reported in the returned
	// message, never as a Go error. Range and info requests need s to implement
	// store.IIterableStore or store.IInfoStore.
	Handle(req *common.Message, s store.IStore) (resp *common.Message)
}
