// Package transport defines the interfaces for RPC communication between metasync
// clients and the store server. Implementations only move opaque request and
// response bytes, serialization is done by the rpc/serializer package.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to appropriate handlers.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The http sub package provides the implementation used by the metasync CLI.
package transport
