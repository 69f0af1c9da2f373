// Package rpc lets metasync writers in several processes share one store. A server
// hosts store shards, clients access a shard through an implementation of
// store.IStore.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions, implemented over HTTP.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: The RPC client implementing store.IStore.
//
//   - server: RPC server components that handle incoming requests and route them to
//     the store of the addressed shard.
package rpc
