package server

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
)

const (
	// DefaultRangeLimit is the page size used when a range request carries no limit
	DefaultRangeLimit = 256
	// MaxRangeLimit caps the page size a client may ask for
	MaxRangeLimit = 4096
)

// NewIStoreServerAdapter creates an adapter that translates messages into store calls
func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see server.IRPCServerAdapter)
// --------------------------------------------------------------------------

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	switch req.MsgType {
	case common.MsgTKVSet:
		err := s.Set(req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTKVDelete:
		err := s.Delete(req.Key)
		return common.NewDeleteResponse(err)
	case common.MsgTKVGet:
		val, ok, err := s.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVRange:
		pairs, more, err := adapter.page(req, s)
		return common.NewRangeResponse(pairs, more, err)
	case common.MsgTKVInfo:
		meta, err := adapter.info(s)
		return common.NewInfoResponse(meta, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// page collects at most req.Limit pairs of [req.Key, req.End).
// more reports whether the range holds further pairs.
func (adapter *iStoreServerAdapterImpl) page(req *common.Message, s store.IStore) (pairs []store.Pair, more bool, err error) {
	iterable, ok := s.(store.IIterableStore)
	if !ok {
		return nil, false, store.NewError(store.RetCUnsupportedOperation, "store does not support range scans")
	}

	limit := int(req.Limit)
	if limit == 0 {
		limit = DefaultRangeLimit
	}
	limit = min(limit, MaxRangeLimit)

	pairs = make([]store.Pair, 0, min(limit, 64))
	for pair, err := range iterable.Pairs(req.Key, req.End) {
		if err != nil {
			return nil, false, err
		}
		if len(pairs) == limit {
			return pairs, true, nil
		}
		pairs = append(pairs, pair)
	}
	return pairs, false, nil
}

// info returns the json encoded database info of the store
func (adapter *iStoreServerAdapterImpl) info(s store.IStore) ([]byte, error) {
	infoStore, ok := s.(store.IInfoStore)
	if !ok {
		return nil, store.NewError(store.RetCUnsupportedOperation, "store does not report database info")
	}

	info, err := infoStore.GetDBInfo()
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode database info: %w", err)
	}
	return meta, nil
}
