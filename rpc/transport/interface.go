package transport

import (
	"github.com/ValentinKolb/tKV/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc answers one encoded request for a shard with an encoded response.
// It must be safe for concurrent use.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport accepts requests and passes them to the registered handler
type IRPCServerTransport interface {
	// RegisterHandler sets the handler for all requests. It must be called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen serves config.Endpoint. It blocks until the transport fails, or returns nil after Close
	Listen(config common.ServerConfig) error
	// Close stops listening and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport sends requests to one or more server endpoints.
// Send may be called concurrently once Connect succeeded.
type IRPCClientTransport interface {
	// Connect opens the connections described by config
	Connect(config common.ClientConfig) error
	// Send delivers a request for a shard and waits for its response, retrying up to config.RetryCount times
	Send(shardId uint64, req []byte) (resp []byte, err error)
	// Close releases all connections. Pending and later calls to Send fail.
	Close() error
}
