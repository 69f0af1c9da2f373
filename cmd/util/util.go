package util

import (
	"fmt"
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/db/engines/maple"
	"github.com/ValentinKolb/metasync/lib/metastore"
	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/ValentinKolb/metasync/lib/store"
	"github.com/ValentinKolb/metasync/lib/store/fstore"
	"github.com/ValentinKolb/metasync/lib/store/lstore"
	"github.com/ValentinKolb/metasync/lib/store/sqlstore"
	"github.com/ValentinKolb/metasync/rpc/client"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/ValentinKolb/metasync/rpc/serializer"
	"github.com/ValentinKolb/metasync/rpc/transport"
	"github.com/ValentinKolb/metasync/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by viper
	EnvPrefix = "metasync"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read METASYNC_* environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "http://localhost:8080", WrapString("The address of the metasync server. Multiple endpoints can be specified as a comma-separated list, requests are balanced round-robin"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous idle connections kept per endpoint"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request"))

	key = "shard"
	cmd.PersistentFlags().Int(key, 100, WrapString("ID of the shard to connect to (remote store only)"))
}

// SetupStoreFlags adds the flags selecting the backing store of a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "store"
	cmd.PersistentFlags().String(key, "file", WrapString("The store holding the records (remote, sqlite, file, memory)"))

	key = "path"
	cmd.PersistentFlags().String(key, "metasync.snapshot", WrapString("Path of the database file for the sqlite and file stores"))

	key = "codec"
	cmd.PersistentFlags().String(key, "json", WrapString("Encoding of the stored records (json, gob)"))
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond:          viper.GetInt("timeout"),
		RetryCount:             viper.GetInt("transport-retries"),
		Endpoints:              strings.Split(viper.GetString("transport-endpoints"), ","),
		ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	return serializer.New(viper.GetString("serializer"))
}

// GetTransport creates the client transport. HTTP is the only transport metasync ships.
func GetTransport() (transport.IRPCClientTransport, error) {
	return http.NewHttpClientTransport(), nil
}

// GetShardID retrieves the configured shard ID
func GetShardID() uint64 {
	return uint64(viper.GetInt("shard"))
}

// GetCodec creates the record codec based on configuration
func GetCodec() (record.ICodec, error) {
	return record.NewCodec(viper.GetString("codec"))
}

// OpenMetaStore opens the store selected by the --store flag and wraps it into a meta store.
// The caller must Close the returned store.
func OpenMetaStore() (*metastore.KVMetaStore, error) {
	codec, err := GetCodec()
	if err != nil {
		return nil, err
	}

	var s store.IStore
	switch kind := viper.GetString("store"); kind {
	case "remote":
		s, err = openRemoteStore()
	case "sqlite":
		s, err = sqlstore.Open(viper.GetString("path"))
	case "file":
		s, err = fstore.Open(viper.GetString("path"))
	case "memory":
		s = lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	default:
		err = fmt.Errorf("invalid store %s, must be one of remote, sqlite, file, memory", kind)
	}
	if err != nil {
		return nil, err
	}

	return metastore.NewKVMetaStore(s, codec), nil
}

func openRemoteStore() (store.IStore, error) {
	s, err := GetSerializer()
	if err != nil {
		return nil, err
	}
	t, err := GetTransport()
	if err != nil {
		return nil, err
	}
	return client.NewRPCStore(GetShardID(), *GetClientConfig(), t, s)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
