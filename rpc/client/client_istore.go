package client

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/store"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/ValentinKolb/metasync/rpc/serializer"
	"github.com/ValentinKolb/metasync/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value []byte) (err error) {
	if value == nil {
		value = []byte{}
	}
	_, err = i.invoke(common.NewSetRequest(key, value))
	return err
}

func (i *rpcStore) Delete(key string) (err error) {
	_, err = i.invoke(common.NewDeleteRequest(key))
	return err
}

func (i *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	resp, err := i.invoke(common.NewGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	// some serializers drop empty values
	if resp.Ok && resp.Value == nil {
		resp.Value = []byte{}
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) Has(key string) (loaded bool, err error) {
	resp, err := i.invoke(common.NewHasRequest(key))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Keys() (keys []string, err error) {
	resp, err := i.invoke(common.NewKeysRequest())
	if err != nil {
		return nil, err
	}
	if resp.Keys == nil {
		return []string{}, nil
	}
	return resp.Keys, nil
}

func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	resp, err := i.invoke(common.NewInfoRequest())
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	if err := json.Unmarshal(resp.Value, &info); err != nil {
		return db.DatabaseInfo{}, fmt.Errorf("failed to decode db info: %w", err)
	}
	return info, nil
}

// Close closes the transport of the store
func (i *rpcStore) Close() error {
	return i.transport.Close()
}
