package common

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// Server Configuration
// --------------------------------------------------------------------------

type ServerShardType string

const (
	// ShardTypeLocalIStore is a shard held in memory by this node only (lstore)
	ShardTypeLocalIStore ServerShardType = "local store"
	// ShardTypeRemoteIStore is a shard replicated with RAFT across the cluster (dstore)
	ShardTypeRemoteIStore ServerShardType = "remote store"
)

type ServerShard struct {
	ShardID uint64
	Type    ServerShardType
}

// ServerConfig holds all configuration parameters for the RPC server and the RAFT cluster.
// The RAFT parameters are only used if at least one shard is of type ShardTypeRemoteIStore.
type ServerConfig struct {
	Shards []ServerShard

	// RAFT
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string // replica id -> raft address

	TimeoutSecond int64 // raft proposals and response writes
	PageSize      int   // pairs per range page of a remote store

	// Transport
	Endpoint        string
	TCPNoDelay      bool
	TCPKeepAliveSec int
	WorkersPerConn  int

	MetricsEndpoint string // empty disables /metrics

	LogLevel string
}

// RAFT timing relative to RTTMillisecond, as recommended in the RAFT paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// HasRemoteShard checks if the configuration contains any remote shards
func (c *ServerConfig) HasRemoteShard() bool {
	return slices.ContainsFunc(c.Shards, func(s ServerShard) bool {
		return s.Type == ShardTypeRemoteIStore
	})
}

// Validate reports the first inconsistency in the configuration
func (c *ServerConfig) Validate() error {
	seen := make(map[uint64]bool, len(c.Shards))
	for _, shard := range c.Shards {
		if seen[shard.ShardID] {
			return fmt.Errorf("shard %d is configured twice", shard.ShardID)
		}
		seen[shard.ShardID] = true

		if shard.Type != ShardTypeLocalIStore && shard.Type != ShardTypeRemoteIStore {
			return fmt.Errorf("invalid shard type: %s", shard.Type)
		}
	}

	if c.HasRemoteShard() {
		if _, ok := c.ClusterMembers[c.ReplicaID]; !ok {
			return fmt.Errorf("no raft address for replica %d in the cluster members", c.ReplicaID)
		}
	}

	_, err := ParseLogLevel(c.LogLevel)
	return err
}

// ToDragonboatConfig returns the RAFT configuration of one shard
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
	}
}

// ToNodeHostConfig returns the configuration of the NodeHost shared by all remote shards
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	p := &configPrinter{}

	p.section("RPC Server")
	p.field("Endpoint", c.Endpoint)
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Workers Per Connection", strconv.Itoa(c.WorkersPerConn))
	if c.MetricsEndpoint != "" {
		p.field("Metrics Endpoint", c.MetricsEndpoint)
	}
	p.field("Log Level", c.LogLevel)

	p.section("Shards")
	for _, shard := range c.Shards {
		p.field(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	if !c.HasRemoteShard() {
		return p.String()
	}

	p.section("RAFT")
	p.field("Replica ID", strconv.FormatUint(c.ReplicaID, 10))
	p.field("RAFT Address", c.ClusterMembers[c.ReplicaID])
	p.field("Round Trip Time", fmt.Sprintf("%d ms", c.RTTMillisecond))
	p.field("Election Timeout", fmt.Sprintf("%d ms", c.RTTMillisecond*electionRTTFactor))
	p.field("Heartbeat Interval", fmt.Sprintf("%d ms", c.RTTMillisecond*heartbeatRTTFactor))
	p.field("Snapshot Entries", strconv.FormatUint(c.SnapshotEntries, 10))
	p.field("Compaction Overhead", strconv.FormatUint(c.CompactionOverhead, 10))
	p.field("Range Page Size", strconv.Itoa(c.PageSize))
	p.field("Data Directory", c.DataDir)

	p.section("Cluster Members")
	ids := make([]uint64, 0, len(c.ClusterMembers))
	for id := range c.ClusterMembers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p.field(strconv.FormatUint(id, 10), c.ClusterMembers[id])
	}

	return p.String()
}

// --------------------------------------------------------------------------
// Client Configuration
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
	PageSize               int // pairs requested per range page
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	p := &configPrinter{}

	p.section("Client")
	p.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	p.field("Retry Count", strconv.Itoa(c.RetryCount))
	p.field("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))
	p.field("Range Page Size", strconv.Itoa(c.PageSize))

	p.section("Endpoints")
	for i, endpoint := range c.Endpoints {
		p.field(strconv.Itoa(i), endpoint)
	}

	return p.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// configPrinter renders upper case sections with aligned fields
type configPrinter struct {
	strings.Builder
}

func (p *configPrinter) section(title string) {
	fmt.Fprintf(p, "\n%s\n", strings.ToUpper(title))
}

func (p *configPrinter) field(name, value string) {
	fmt.Fprintf(p, "  %-24s: %s\n", name, value)
}
