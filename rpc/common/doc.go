// Package common provides the data structures shared by the RPC client, server and
// transports of metasync.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating the request and response messages of
//     every store operation (set, delete, get, has, keys, info).
//
//   - MessageType: Enumeration of all supported operation types.
//
//   - ServerConfig: Configuration of the server, most importantly the shards it
//     hosts and the store backend (lstore, fstore, sqlstore) of each shard.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that plugs into dragonboat's logger
//     package, giving all packages the format "LEVEL | name | message".
package common
