// Package server implements the RPC server of tKV. It owns the shards of a node,
// decodes requests from a transport, runs them against the shard's store and
// encodes the responses.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.IStore.
//
//   - NewIStoreServerAdapter: Adapter translating set, delete, get, range and info
//     requests into store calls. Range requests return one page of at most Limit
//     pairs (DefaultRangeLimit if unset, never more than MaxRangeLimit) plus a flag
//     telling whether more pairs follow.
//
//   - RPCServer: Created by NewRPCServer with a transport and a serializer. Every
//     shard store is wrapped with mstore, so all operations are counted and timed.
//     If MetricsEndpoint is set, the metrics are served on GET /metrics in the
//     Prometheus text format together with the process metrics.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalIStore},
//	  },
//	  Endpoint:        "0.0.0.0:8080",
//	  MetricsEndpoint: "0.0.0.0:9090",
//	  TimeoutSecond:   5,
//	  LogLevel:        "info",
//	}
//
//	s := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport(), serializer.NewBinarySerializer())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports two types of shards, which can be mixed within a single server:
//
//   - ShardTypeLocalIStore: A local store backed by a maple database, suitable for
//     single-node deployments or development environments.
//
//   - ShardTypeRemoteIStore: A distributed store replicated with Raft. When using this
//     type, the RAFT configuration (RTTMillisecond, SnapshotEntries, CompactionOverhead,
//     DataDir, ReplicaID, and ClusterMembers) must be set.
//
// Thread Safety:
//
//	Requests are handled concurrently across connections. RegisterStore may be
//	called while the server runs. Serve must be called only once.
package server
