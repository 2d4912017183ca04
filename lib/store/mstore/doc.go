// Package mstore implements a metered store: a decorator around any
// store.IIterableStore that records VictoriaMetrics counters and latency histograms
// for every operation.
//
// Metrics (all labelled with store and, where applicable, op):
//   - tkv_store_ops_total: calls per operation
//   - tkv_store_errors_total: failed calls per operation
//   - tkv_store_op_duration_seconds: latency histogram per operation
//   - tkv_store_scanned_pairs_total: pairs yielded by Pairs
//
// The metrics live in the metrics.Set passed to NewMeteredStore. The rpc server
// exposes that set in the Prometheus text format on its metrics endpoint.
//
// Usage Example:
//
//	set := metrics.NewSet()
//	s := mstore.NewMeteredStore(lstore.NewLocalStore(factory), set, "users")
//	_ = s.Set([]byte("k"), []byte("v"))
//	set.WritePrometheus(os.Stdout)
package mstore
