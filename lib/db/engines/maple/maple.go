package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/metasync/lib/db"
	"github.com/ValentinKolb/metasync/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/metasync/lib/db/util"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Snapshot format version
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory database with sharded data
type mapleImpl struct {
	mu        sync.RWMutex      // guards shards and seed against Load
	numShards int               // Number of shards
	seed      uint64            // Seed for hash function
	shards    []*internal.Shard // Array of shards
	currIndex atomic.Uint64     // Highest write index seen
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	return &mapleImpl{
		numShards: opts.NumShards,
		seed:      util.GenerateSeed(),
		shards:    newShards(opts.NumShards),
	}
}

// newShards creates numShards empty shards
func newShards(numShards int) []*internal.Shard {
	hasher := createIdentityHasher()
	shards := make([]*internal.Shard, numShards)
	for i := 0; i < numShards; i++ {
		shards[i] = internal.NewShard(hasher)
	}
	return shards
}

// --------------------------------------------------------------------------
// Hash Helper Functions
// --------------------------------------------------------------------------

// createIdentityHasher creates a hash function that combines a key with a seed
func createIdentityHasher() func(util.UintKey, uint64) uint64 {
	return func(key util.UintKey, mapSeed uint64) uint64 {
		return uint64(key) ^ mapSeed
	}
}

// locate returns the hashed key and the shard responsible for it.
// The caller must hold maple.mu (read).
func (maple *mapleImpl) locate(key string) (util.UintKey, *internal.Shard) {
	intKey := util.HashString(key, maple.seed)
	return intKey, internal.GetShard(intKey, maple.shards)
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key, value, and writeIndex.
// Writes with an index lower than the stored one are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(key string, value []byte, writeIndex uint64) {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	maple.setWriteIdx(writeIndex)
	intKey, shard := maple.locate(key)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false // stale write
		}
		return internal.Entry{Key: key, Value: valueCopy, Index: writeIndex}, false
	})
}

// Delete removes an entry with the specified key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key string, writeIndex uint64) {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	maple.setWriteIdx(writeIndex)
	intKey, shard := maple.locate(key)

	shard.Data.Compute(intKey, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false // stale delete
		}
		return old, true
	})
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	intKey, shard := maple.locate(key)
	entry, ok := shard.Data.Load(intKey)
	if !ok || entry.Key != key {
		return nil, false
	}

	data := make([]byte, len(entry.Value))
	copy(data, entry.Value)
	return data, true
}

// Has checks if a key exists in the database.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(key string) bool {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	intKey, shard := maple.locate(key)
	entry, ok := shard.Data.Load(intKey)
	return ok && entry.Key == key
}

// Keys returns all keys stored in the database.
//
// Thread-safety: This method is thread-safe. Keys written concurrently may or may not be included.
func (maple *mapleImpl) Keys() []string {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	var keys []string
	for _, shard := range maple.shards {
		shard.Data.Range(func(_ util.UintKey, entry internal.Entry) bool {
			keys = append(keys, entry.Key)
			return true
		})
	}
	return keys
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer.
// Concurrent writes are allowed during Save, they may or may not be part of the snapshot.
//
// Format: magic | version(u8) | seed(u64) | count(u64) | count * (index(u64) keyLen(u32) key valueLen(u32) value)
func (maple *mapleImpl) Save(w io.Writer) error {
	maple.mu.RLock()
	var entries []internal.Entry
	for _, shard := range maple.shards {
		shard.Data.Range(func(_ util.UintKey, entry internal.Entry) bool {
			entries = append(entries, entry)
			return true
		})
	}
	seed := maple.seed
	maple.mu.RUnlock()

	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 64*1024)

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, seed); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := binary.Write(bw, binary.LittleEndian, entry.Index); err != nil {
			return err
		}
		if err := writeBytes(bw, []byte(entry.Key)); err != nil {
			return err
		}
		if err := writeBytes(bw, entry.Value); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Load restores a database from the reader, replacing the current content.
// On error the current content is left untouched.
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	var seed, count uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	// Build the new shards before swapping them in
	shards := newShards(maple.numShards)
	var maxIndex uint64
	for i := uint64(0); i < count; i++ {
		var index uint64
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return err
		}
		key, err := readBytes(br)
		if err != nil {
			return err
		}
		value, err := readBytes(br)
		if err != nil {
			return err
		}

		intKey := util.HashString(string(key), seed)
		internal.GetShard(intKey, shards).Data.Store(intKey, internal.Entry{
			Key:   string(key),
			Value: value,
			Index: index,
		})
		if index > maxIndex {
			maxIndex = index
		}
	}

	maple.mu.Lock()
	maple.shards = shards
	maple.seed = seed
	maple.currIndex.Store(0)
	maple.setWriteIdx(maxIndex)
	maple.mu.Unlock()

	return nil
}

// writeBytes writes a length prefixed byte slice
func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// readBytes reads a length prefixed byte slice
func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	entries := 0
	sizeBytes := 0
	shardSizes := make([]float64, len(maple.shards))
	for i, shard := range maple.shards {
		shard.Data.Range(func(_ util.UintKey, entry internal.Entry) bool {
			sizeBytes += len(entry.Key) + len(entry.Value) + 8
			return true
		})
		shardSizes[i] = float64(shard.Data.Size())
		entries += shard.Data.Size()
	}

	meta := &struct {
		CurrentWriteIndex uint64                 `json:"current_write_index"`
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
	}{
		CurrentWriteIndex: maple.currIndex.Load(),
		ShardCount:        len(maple.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		Entries:   entries,
		DbType:    db.ImplMaple,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
			db.FeatureKeys, db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureKeys |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close is a no-op, maple holds no background resources
func (maple *mapleImpl) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Index Management
// --------------------------------------------------------------------------

// setWriteIdx updates the current index only if the new index is greater.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) setWriteIdx(newIdx uint64) {
	for {
		currIdx := maple.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if maple.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}
