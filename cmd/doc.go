// Package cmd implements the command-line interface of tKV. It provides a
// hierarchical command structure for running the server and for working with
// a served shard as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts a tKV server with local (lstore) or replicated (dstore) shards
//   - kv: Raw key-value operations, typed item and map access, and a benchmark
//   - util: Shared flags, configuration and text codecs (internal use)
//
// Every flag can also be set with an environment variable named TKV_<FLAG>,
// for example TKV_TIMEOUT=15. Variables are also read from .env and .env.local.
//
// See tkv --help for a list of all commands.
package cmd
