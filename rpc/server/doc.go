// Package server implements the RPC server that hosts metasync stores for remote
// clients. It manages a set of shards, each backed by its own store, and routes
// requests to them through an adapter.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating an adapter for key-value
//     store operations, translating RPC requests to store.IStore method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalStore},
//	    {ShardID: 200, Type: common.ShardTypeSQLiteStore},
//	  },
//	  DataDir: "/var/lib/metasync",
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  http.NewHttpServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports three types of shards, which can be mixed within a single server:
//
//   - ShardTypeLocalStore: In-memory store, the content is lost on restart.
//
//   - ShardTypeFileStore: In-memory store mirrored to a snapshot file in DataDir.
//
//   - ShardTypeSQLiteStore: SQLite database file in DataDir.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	Serve is not thread-safe and should be called only once.
package server
