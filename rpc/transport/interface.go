package transport

import (
	"github.com/ValentinKolb/metasync/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc processes the serialized request for a shard and returns the
// serialized response. Errors travel inside the response message.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport accepts requests from clients and routes them, tagged with
// their shard id, to the registered handler.
type IRPCServerTransport interface {
	// RegisterHandler sets the handler for all shards. It must be called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen serves config.Endpoint and blocks until the listener fails
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport delivers serialized requests to one of the configured endpoints
type IRPCClientTransport interface {
	// Connect prepares the transport for config.Endpoints. No request is sent.
	Connect(config common.ClientConfig) error
	// Send delivers req to shardId and returns the raw response. Failed attempts are
	// retried on the next endpoint up to config.RetryCount times.
	Send(shardId uint64, req []byte) (resp []byte, err error)
	// Close releases idle connections
	Close() error
}
