// Package aggregate rolls per-query demand samples up into per-facet
// statistics.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Sample is the demand observed for one query. A failed provider call is
// recorded as a zero sample.
type Sample struct {
	Volume    int
	CPC       float64
	KD        int
	InSuggest bool
}

// Metrics are the statistics of a facet's samples, rounded for display:
// median to 1 decimal, suggest rate to 4, CPC to 2 and KD to 1.
type Metrics struct {
	VolumeTotal     int     `json:"volumeTotal"`
	VolumeMedian    float64 `json:"volumeMedian"`
	SuggestRate     float64 `json:"suggestRate"`
	CPCWeightedMean float64 `json:"cpcWeightedMean"`
	KDMean          float64 `json:"kdMean"`
}

// Aggregate computes Metrics over samples. No samples yields zeros.
func Aggregate(samples []Sample) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	volumes := make([]float64, len(samples))
	cpcs := make([]float64, len(samples))
	kds := make([]float64, len(samples))
	total := 0
	suggested := 0
	for i, s := range samples {
		volumes[i] = float64(s.Volume)
		cpcs[i] = s.CPC
		kds[i] = float64(s.KD)
		total += s.Volume
		if s.InSuggest {
			suggested++
		}
	}

	return Metrics{
		VolumeTotal:     total,
		VolumeMedian:    scalar.Round(Median(volumes), 1),
		SuggestRate:     scalar.Round(float64(suggested)/float64(len(samples)), 4),
		CPCWeightedMean: scalar.Round(WeightedMean(cpcs, volumes), 2),
		KDMean:          scalar.Round(stat.Mean(kds, nil), 1),
	}
}

// Median returns the middle value of values, or the mean of the two middle
// values for an even count. values is not modified; empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// WeightedMean averages values weighted by weights. A non-positive total
// weight falls back to the plain mean; empty input yields 0.
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if floats.Sum(weights) <= 0 {
		return stat.Mean(values, nil)
	}
	return stat.Mean(values, weights)
}
