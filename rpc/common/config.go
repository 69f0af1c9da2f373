package common

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerShardType selects the store backend of a shard
type ServerShardType string

const (
	ShardTypeLocalStore  ServerShardType = "lstore"   // in-memory, lost on restart
	ShardTypeFileStore   ServerShardType = "fstore"   // in-memory with a snapshot file
	ShardTypeSQLiteStore ServerShardType = "sqlstore" // SQLite database file
)

// ParseShardType converts the configuration name of a shard type.
func ParseShardType(s string) (ServerShardType, error) {
	switch t := ServerShardType(strings.ToLower(strings.TrimSpace(s))); t {
	case ShardTypeLocalStore, ShardTypeFileStore, ShardTypeSQLiteStore:
		return t, nil
	default:
		return "", fmt.Errorf("invalid shard type %q, must be one of %s, %s, %s",
			s, ShardTypeLocalStore, ShardTypeFileStore, ShardTypeSQLiteStore)
	}
}

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type is the store backend of the shard
	Type ServerShardType
}

// ServerConfig holds all configuration parameters of the RPC server.
type ServerConfig struct {
	Shards []ServerShard

	// Directory for the data files of fstore and sqlstore shards
	DataDir string

	// Timeout of a single request
	TimeoutSecond int64

	// HTTP api settings
	Endpoint string

	// Logging configuration
	LogLevel string
}

// ShardPath returns the data file of a persistent shard.
func (c *ServerConfig) ShardPath(shard ServerShard) string {
	switch shard.Type {
	case ShardTypeSQLiteStore:
		return filepath.Join(c.DataDir, fmt.Sprintf("shard-%d.db", shard.ShardID))
	default:
		return filepath.Join(c.DataDir, fmt.Sprintf("shard-%d.snapshot", shard.ShardID))
	}
}

// HasPersistentShard checks if the configuration contains any shard writing to DataDir
func (c *ServerConfig) HasPersistentShard() bool {
	for _, shard := range c.Shards {
		if shard.Type != ShardTypeLocalStore {
			return true
		}
	}
	return false
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Shards
	addSection("Shards")
	for _, shard := range c.Shards {
		value := string(shard.Type)
		if shard.Type != ShardTypeLocalStore {
			value = fmt.Sprintf("%s (%s)", value, c.ShardPath(shard))
		}
		addField(strconv.FormatUint(shard.ShardID, 10), value)
	}

	if c.HasPersistentShard() {
		addSection("Storage")
		addField("Data Directory", c.DataDir)
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
