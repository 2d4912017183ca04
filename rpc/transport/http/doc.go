// Package http implements an HTTP-based transport layer for the tKV RPC system.
// It provides concrete implementations of the transport interfaces defined in the
// parent package.
//
// Every request is a POST to <endpoint>/<shardId> whose body is the serialized
// message. The response body is the serialized reply. A non 200 status means the
// request did not reach a shard (bad shard ID, oversized body).
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. It selects endpoints
//     round-robin and retries failed requests with a fresh body.
//
//   - httpServerTransport: Implements IRPCServerTransport. It routes requests to
//     the registered handler and logs every request when the log level is debug.
//     Close stops the underlying http.Server.
//
// Thread Safety:
//
//	The client transport can be used concurrently once Connect has returned.
package http
