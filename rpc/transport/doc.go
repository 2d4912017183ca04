// Package transport defines how encoded RPC messages travel between a tKV client
// and server. Transports move opaque byte payloads tagged with a shard id; they
// know nothing about the messages or the serializer that produced them.
//
// Implementations:
//
//   - base: Framed request multiplexing over a net.Conn, shared by tcp and unix.
//   - tcp, unix: Connectors for the base transport.
//   - http: One POST per request, the shard id is the URL path.
//
// A server transport hands every request to the ServerHandleFunc registered by
// the rpc server and writes back whatever it returns. Close makes a blocked
// Listen return nil.
package transport
