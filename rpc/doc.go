// Package rpc makes the stores of a tKV node reachable over the network.
// A client.Store implements the same store interfaces as a local store, so
// containers built on top of it cannot tell the difference.
//
// Subpackages:
//
//   - common: the Message type, server and client configuration, logging.
//   - serializer: Message encodings (binary, json, gob).
//   - transport: framed connections over TCP, Unix sockets or HTTP.
//   - server: routes requests to the shard stores of a node.
//   - client: the store client with connection pooling and retries.
package rpc
