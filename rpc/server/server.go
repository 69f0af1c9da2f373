package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/db/engines/maple"
	"github.com/ValentinKolb/metasync/lib/store"
	"github.com/ValentinKolb/metasync/lib/store/fstore"
	"github.com/ValentinKolb/metasync/lib/store/lstore"
	"github.com/ValentinKolb/metasync/lib/store/sqlstore"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/ValentinKolb/metasync/rpc/serializer"
	"github.com/ValentinKolb/metasync/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

// RPCServer hosts a set of store shards behind a transport.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

// handle decodes a request, lets the shard adapter process it and encodes the response
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var respMsg common.Message

	if shard, ok := s.shards.Load(shardId); !ok {
		respMsg = *common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = *common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		respMsg = *shard.Adapter.Handle(&msg, shard.Store)
	}

	val, err := s.serializer.Serialize(respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response for shard %d: %v", shardId, err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(
			fmt.Sprintf("failed to serialize response: %s", err),
		))
	}
	return val
}

// Init creates the configured shards and registers the request handler at the transport.
func (s *RPCServer) Init() error {
	if s.config.HasPersistentShard() {
		if err := os.MkdirAll(s.config.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Function to create a new database instance
	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }

	for _, shardConfig := range s.config.Shards {
		if _, exists := s.shards.Load(shardConfig.ShardID); exists {
			return fmt.Errorf("duplicate shard id %d", shardConfig.ShardID)
		}

		var (
			shardStore store.IStore
			err        error
		)
		switch shardConfig.Type {
		case common.ShardTypeLocalStore:
			shardStore = lstore.NewLocalStore(dbFactory)
		case common.ShardTypeFileStore:
			shardStore, err = fstore.Open(s.config.ShardPath(shardConfig))
		case common.ShardTypeSQLiteStore:
			shardStore, err = sqlstore.Open(s.config.ShardPath(shardConfig))
		default:
			err = fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
		if err != nil {
			return errors.Join(fmt.Errorf("failed to create shard %d: %w", shardConfig.ShardID, err), s.Close())
		}

		s.shards.Store(shardConfig.ShardID, serverShard{
			Store:   shardStore,
			Adapter: NewIStoreServerAdapter(),
		})
		Logger.Infof("created %s for shard %d", shardConfig.Type, shardConfig.ShardID)
	}

	s.transport.RegisterHandler(s.handle)
	Logger.Infof("metasync server setup completed successfully")
	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *RPCServer) Serve() error {
	Logger.Infof("Created RPC Server")
	Logger.Infof(s.config.String())

	if err := s.Init(); err != nil {
		return err
	}
	defer s.Close()
	return s.transport.Listen(s.config)
}

// Close releases the resources (files, database connections) of all shards.
func (s *RPCServer) Close() error {
	var errs []error
	s.shards.Range(func(id uint64, shard serverShard) bool {
		if c, ok := shard.Store.(store.ICloser); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("shard %d: %w", id, err))
			}
		}
		s.shards.Delete(id)
		return true
	})
	return errors.Join(errs...)
}
