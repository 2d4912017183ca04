// Package common holds the types shared by the tKV server and client.
//
// Message is the single request and response type of the RPC layer. Its
// MessageType selects the store operation (set, delete, get, range, info) or
// marks a reply as success or error. A failed operation carries the error text
// and a store.RetCode, and Message.Error turns both back into a *store.Error so
// errors.Is works against the store sentinels on the client.
//
// ServerConfig describes the shards of a node and, if any shard is replicated,
// its RAFT cluster. It converts itself into the Dragonboat configs. ClientConfig
// controls endpoints, timeouts, retries and the range page size.
//
// The logger plugs into Dragonboat's logger.SetLoggerFactory, so tKV and
// Dragonboat log through one format.
package common
