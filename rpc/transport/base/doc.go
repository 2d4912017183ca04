// Package base provides a foundation for the socket based transport layers of tKV,
// implementing core functionality for RPC communication independent of the specific
// network protocol (TCP, Unix sockets). Protocol packages only contribute a connector.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: Core client implementation that manages multiple connections
//     with round-robin load balancing. Supports multiple connections per endpoint
//     for improved throughput. A broken connection fails its pending requests and
//     is dialed again in the background.
//
//   - serverTransport: Core server implementation that accepts connections and
//     routes requests to the registered handler together with their shardID.
//
// Wire Format:
//
// Every request and response is one frame:
//
//	shardID (8) | requestID (8) | length (4) | payload
//
// All integers are big endian. The response carries the requestID of its request,
// so several requests can be in flight on one connection. Payloads are limited to 64 MiB.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per endpoint improve throughput
//     for high-load scenarios, mostly for large messages.
//
//   - Buffer Pooling: The server uses a sync.Pool to reuse read buffers.
//
//   - Worker Limit: Each server connection handles at most maxWorkersPerConn
//     requests at a time. Further frames are not read until a worker is free.
//
//   - Frame Batching: Header and payload are written with net.Buffers in a single write.
//
// Thread Safety:
//
//	Send may be called from many goroutines. The server creates a dedicated
//	goroutine for each connection and one per request in flight.
package base
