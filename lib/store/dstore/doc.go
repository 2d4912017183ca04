// Package dstore implements store.IIterableStore on top of a shard replicated
// with the Dragonboat RAFT library. Every replica runs the same state machine
// over its own db.KVDB, and the RAFT log orders all writes across the cluster.
//
// Components:
//
//   - distributedStore (NewDistributedStore): The client side. It encodes
//     operations as internal.Command (writes) or internal.Query (reads) and
//     submits them through the NodeHost.
//
//   - stateMachine (CreateStateMaschineFactory): A Dragonboat
//     IConcurrentStateMachine. Update applies committed commands to the db,
//     Lookup answers queries, and the snapshot methods call db.Save / db.Load.
//
//   - internal: The binary encoding of commands and queries.
//
// Writes:
//
//	Set and Delete are proposed with SyncPropose. They return once a majority of
//	replicas has committed the entry and the local state machine applied it.
//	Proposals rejected with ErrSystemBusy are retried after a short pause.
//
// Reads:
//
//	Get and Pairs use SyncRead (ReadIndex), so they observe every write that was
//	committed before they started. GetDBInfo uses StaleRead.
//
// Range scans:
//
//	Pairs is served in pages. Each page is a Range query for at most pageSize
//	pairs of [start, end) plus a flag telling whether more follow. The next
//	page starts at the last returned key with a zero byte appended, the smallest
//	key after it. Each page is linearizable on its own, the scan as a whole is
//	not a snapshot.
//
// Snapshots:
//
//	SaveSnapshot writes the db with Save, which blocks writers only while the
//	entries are collected. A replica that restarts or joins loads the latest
//	snapshot and then replays the log entries committed after it.
//
// Usage:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	...
//	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }
//	err = nh.StartConcurrentReplica(members, false, dstore.CreateStateMaschineFactory(dbFactory), shardConfig)
//	...
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second, dstore.DefaultPageSize)
//
// A shard needs a majority of its replicas to accept writes. For data that does not need
// replication lstore is the faster choice.
package dstore
