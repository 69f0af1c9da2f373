package util

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fall back to the clock, only if the system random source is unavailable
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// UintKey is an efficient key type based on uint64 for internal hash representation
type UintKey uint64

// HashString generates a hash value for a string with a seed
// This function uses the FNV-1a hash algorithm, which is fast and has good distribution
func HashString(s string, seed uint64) UintKey {

	// FNV-1a hash with seed incorporation
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	// Start with the offset combined with our seed for uniqueness
	hash := uint64(offset64) ^ seed

	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}

	return UintKey(hash)
}

// --------------------------------------------------------------------------
// Distribution Statistics
// --------------------------------------------------------------------------

// DistributionStats describes how evenly entries are spread over shards
type DistributionStats struct {
	Min                 float64 `json:"min"`
	Max                 float64 `json:"max"`
	Mean                float64 `json:"mean"`
	StdDeviation        float64 `json:"std_deviation"`
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats computes quality metrics for the given shard sizes.
// A quality of 1 means all shards hold the same number of entries.
func NewDistributionStats(shardSizes []float64) DistributionStats {
	if len(shardSizes) == 0 {
		return DistributionStats{}
	}

	minV, maxV, sum := shardSizes[0], shardSizes[0], 0.0
	for _, v := range shardSizes {
		sum += v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	mean := sum / float64(len(shardSizes))

	var sumSquaredDiffs float64
	for _, v := range shardSizes {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(shardSizes)))

	// lower coefficient of variation and higher min/max ratio -> better distribution
	var cv float64
	if mean > 0 {
		cv = stdDev / mean
	}
	minMaxRatio := 1.0
	if maxV > 0 {
		minMaxRatio = minV / maxV
	}

	return DistributionStats{
		Min:                 minV,
		Max:                 maxV,
		Mean:                mean,
		StdDeviation:        stdDev,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + minMaxRatio*0.5,
	}
}
