package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/metasync/lib/metastore"
	"github.com/ValentinKolb/metasync/lib/metasync"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/store"
	storetesting "github.com/ValentinKolb/metasync/lib/store/testing"
	"github.com/ValentinKolb/metasync/rpc/client"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/ValentinKolb/metasync/rpc/serializer"
	"github.com/ValentinKolb/metasync/rpc/transport"
	httptransport "github.com/ValentinKolb/metasync/rpc/transport/http"
)

// captureTransport records the handler registered by the server instead of listening
type captureTransport struct {
	handler transport.ServerHandleFunc
}

func (c *captureTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	c.handler = handler
}

func (c *captureTransport) Listen(common.ServerConfig) error {
	return nil
}

// startServer runs an RPC server with the given shards behind an httptest server
func startServer(t *testing.T, s serializer.IRPCSerializer, shards ...common.ServerShard) *httptest.Server {
	t.Helper()

	capture := &captureTransport{}
	srv := NewRPCServer(common.ServerConfig{
		Shards:   shards,
		DataDir:  t.TempDir(),
		LogLevel: "info",
	}, capture, s)
	if err := srv.Init(); err != nil {
		t.Fatalf("failed to init server: %v", err)
	}

	ts := httptest.NewServer(httptransport.NewHandler(capture.handler, false))
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func newClient(t *testing.T, ts *httptest.Server, shardId uint64, s serializer.IRPCSerializer) store.IStore {
	t.Helper()

	c, err := client.NewRPCStore(shardId, common.ClientConfig{
		Endpoints:     []string{ts.URL},
		TimeoutSecond: 5,
		RetryCount:    2,
	}, httptransport.NewHttpClientTransport(), s)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() {
		c.(store.ICloser).Close()
	})
	return c
}

func TestRPCStore(t *testing.T) {
	serializers := map[string]func() serializer.IRPCSerializer{
		"binary": serializer.NewBinarySerializer,
		"json":   serializer.NewJSONSerializer,
	}
	shardTypes := []common.ServerShardType{
		common.ShardTypeLocalStore,
		common.ShardTypeFileStore,
		common.ShardTypeSQLiteStore,
	}

	for name, factory := range serializers {
		for _, shardType := range shardTypes {
			storetesting.RunIStoreTests(t, name+"-"+string(shardType), func(t *testing.T) store.IStore {
				ts := startServer(t, factory(), common.ServerShard{ShardID: 1, Type: shardType})
				return newClient(t, ts, 1, factory())
			})
		}
	}
}

func TestUnknownShard(t *testing.T) {
	s := serializer.NewBinarySerializer()
	ts := startServer(t, s, common.ServerShard{ShardID: 1, Type: common.ShardTypeLocalStore})
	c := newClient(t, ts, 2, s)

	if err := c.Set("k", []byte("v")); err == nil || !strings.Contains(err.Error(), "shard 2 not found") {
		t.Errorf("Expected shard not found error, got %v", err)
	}
}

func TestDuplicateShard(t *testing.T) {
	srv := NewRPCServer(common.ServerConfig{
		Shards: []common.ServerShard{
			{ShardID: 1, Type: common.ShardTypeLocalStore},
			{ShardID: 1, Type: common.ShardTypeLocalStore},
		},
	}, &captureTransport{}, serializer.NewBinarySerializer())

	if err := srv.Init(); err == nil {
		t.Errorf("Expected error for duplicate shard id")
	}
}

func TestGetDBInfo(t *testing.T) {
	s := serializer.NewBinarySerializer()
	ts := startServer(t, s, common.ServerShard{ShardID: 1, Type: common.ShardTypeSQLiteStore})
	c := newClient(t, ts, 1, s)

	c.Set("a", []byte("1"))
	info, err := c.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.Entries != 1 || info.DbType != "sqlite" {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestWriterOverRPC(t *testing.T) {
	s := serializer.NewBinarySerializer()
	ts := startServer(t, s, common.ServerShard{ShardID: 7, Type: common.ShardTypeFileStore})
	meta := metastore.NewKVMetaStore(newClient(t, ts, 7, s), record.NewJSONCodec())
	ctx := context.Background()

	w := metasync.NewWriter(meta)
	w.Stage("1-organization-a", "theme", "dark")
	w.Stage("1-organization-a", "zoom", 0)
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rec, found, err := meta.GetItem(ctx, "1-organization-a")
	if err != nil || !found {
		t.Fatalf("Expected record, got found=%v err=%v", found, err)
	}
	if rec["theme"] != "dark" || rec["zoom"] != float64(0) {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := serializer.NewBinarySerializer()
	ts := startServer(t, s, common.ServerShard{ShardID: 1, Type: common.ShardTypeLocalStore})
	newClient(t, ts, 1, s).Set("k", []byte("v"))

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `metasync_rpc_requests_total{shard="1"}`) {
		t.Errorf("Expected request counter in metrics output:\n%s", body)
	}
}

func TestShardPath(t *testing.T) {
	c := common.ServerConfig{DataDir: "/data"}
	got := c.ShardPath(common.ServerShard{ShardID: 3, Type: common.ShardTypeFileStore})
	if got != filepath.Join("/data", "shard-3.snapshot") {
		t.Errorf("Unexpected path %s", got)
	}
}
