package util

import "testing"

func TestHashStringSeeded(t *testing.T) {
	if HashString("scope", 1) == HashString("scope", 2) {
		t.Errorf("Expected different seeds to produce different hashes")
	}
	if HashString("scope", 7) != HashString("scope", 7) {
		t.Errorf("Expected hashing to be deterministic for the same seed")
	}
}

func TestNewDistributionStats(t *testing.T) {
	tests := []struct {
		name        string
		sizes       []float64
		wantMean    float64
		wantQuality float64
	}{
		{"empty", nil, 0, 0},
		{"even", []float64{4, 4, 4, 4}, 4, 1},
		{"all empty shards", []float64{0, 0}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewDistributionStats(tt.sizes)
			if stats.Mean != tt.wantMean {
				t.Errorf("Expected mean %v, got %v", tt.wantMean, stats.Mean)
			}
			if stats.DistributionQuality != tt.wantQuality {
				t.Errorf("Expected quality %v, got %v", tt.wantQuality, stats.DistributionQuality)
			}
		})
	}

	skewed := NewDistributionStats([]float64{0, 10})
	if skewed.DistributionQuality >= 1 {
		t.Errorf("Expected skewed distribution to have quality < 1, got %v", skewed.DistributionQuality)
	}
}
