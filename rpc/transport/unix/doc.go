// Package unix implements a transport layer for the tKV RPC system using Unix
// domain sockets. It provides fast communication for processes running on the
// same machine.
//
// This package extends the base transport layer with Unix socket-specific connectors
// while inheriting all core functionality like connection pooling, request routing,
// and error handling from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners. A stale socket file at the
//     endpoint path is removed before listening.
//
// The default buffer size is 64 KB.
package unix
