// Package client implements the RPC client of tKV. NewRPCStore returns a store that
// satisfies store.IIterableStore and store.IInfoStore and forwards every operation
// to a shard of a remote server, so typed containers can run on top of it unchanged.
//
// Key Components:
//
//   - NewRPCStore: Factory function that connects the transport and creates the store.
//
//   - Pairs: Range scans are fetched in pages of ClientConfig.PageSize pairs. The next
//     page starts right after the last key of the previous one. Pages are separate
//     requests, so a scan is not a snapshot of the shard.
//
//   - Errors: Errors reported by the server arrive as *store.Error with the return
//     code set by the server. Transport failures are returned as they are.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:8080"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	  PageSize:               256,
//	}
//
//	s, err := client.NewRPCStore(1, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.Set([]byte("mykey"), []byte("myvalue"))
//	for pair, err := range s.Pairs(nil, nil) {
//	  ...
//	}
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	The store can be used concurrently from multiple goroutines.
package client
