package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
)

// DefaultPageSize is the number of pairs requested per range page if the config leaves it unset
const DefaultPageSize = 256

// Store is the store returned by NewRPCStore. Close releases the transport.
type Store interface {
	store.IIterableStore
	store.IInfoStore
	Close() error
}

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a config, a transport and a serializer as parameters.
// It connects the transport and returns the store.
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (Store, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &rpcStore{
		rpcClientAdapter: rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
		pageSize: uint32(pageSize),
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
	pageSize uint32
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key, value []byte) (err error) {
	req := common.NewSetRequest(key, value)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Delete(key []byte) (err error) {
	req := common.NewDeleteRequest(key)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Get(key []byte) (value []byte, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	if !resp.Ok {
		return nil, false, nil
	}
	// some serializers turn an empty value into nil
	if resp.Value == nil {
		return []byte{}, true, nil
	}
	return resp.Value, true, nil
}

// Pairs fetches the range page by page. Every page is a separate request, so the
// sequence is not a snapshot: writes between two pages may or may not be observed.
func (i *rpcStore) Pairs(start, end []byte) iter.Seq2[store.Pair, error] {
	return func(yield func(store.Pair, error) bool) {
		// an empty range is never sent, serializers may not keep an empty end apart from nil
		if end != nil && bytes.Compare(start, end) >= 0 {
			return
		}

		cursor := start
		for {
			req := common.NewRangeRequest(cursor, end, i.pageSize)
			resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
			if err != nil {
				yield(store.Pair{}, err)
				return
			}

			for _, pair := range resp.Pairs {
				if !yield(pair, nil) {
					return
				}
			}

			if !resp.Ok || len(resp.Pairs) == 0 {
				return
			}

			// the smallest key after the last one of the page
			last := resp.Pairs[len(resp.Pairs)-1].Key
			cursor = append(append(make([]byte, 0, len(last)+1), last...), 0x00)
			if end != nil && bytes.Compare(cursor, end) >= 0 {
				return
			}
		}
	}
}

func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	req := common.NewInfoRequest()
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return db.DatabaseInfo{}, fmt.Errorf("RPC IStoreAdapter - invalid database info: %w", err)
	}
	return info, nil
}

func (i *rpcStore) Close() error {
	return i.transport.Close()
}
