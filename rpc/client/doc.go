// Package client implements the RPC client of the metasync store server.
// NewRPCStore returns a store.IStore whose operations are forwarded to one shard of
// a remote server, so a metasync writer can persist into a store shared by many
// processes.
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the store.IStore
//     interface. This client forwards all operations to remote servers via the configured
//     transport layer. The returned store also implements store.ICloser.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:8080"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	// Create store client
//	s, _ := client.NewRPCStore(100, config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//
//	// Use it as the backend of a metasync writer
//	w := metasync.NewWriter(metastore.NewKVMetaStore(s, record.NewJSONCodec()))
//
// Performance Considerations:
//
//   - The choice of serializer affects performance. The binary serializer provides
//     the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
