// Package tcp implements a TCP socket based transport for the tKV RPC system.
// It provides concrete implementations of the base package's connector
// interfaces for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting its
// connection pooling, buffer reuse and request routing. See the base package
// documentation for the wire format.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector.
//     Client connections always disable Nagle's algorithm.
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector.
//     Applies TCPNoDelay and TCPKeepAliveSec of the server configuration.
//
// The default server buffer size is set to 512 KB, which provides good performance
// for typical workloads, but can be customized for specific use cases.
package tcp
