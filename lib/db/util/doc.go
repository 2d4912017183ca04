// Package util holds helpers shared by the db.KVDB engines.
//
//   - statistics.go: Stats, DistributionStats and a bucketed SizeHistogram. Engines use
//     them to estimate sizes and shard balance in their DatabaseInfo.
//   - functions.go: the seeded FNV-1a key hash that spreads keys over shards, and the
//     seed generator.
package util
