package chart

import (
	"math"
	"sort"

	"solar_ingest/internal/model"
)

// WattHours integrates power-like samples over time. Each sample's value is
// multiplied by the hours elapsed since the previous sample, so the first
// sample contributes nothing. Samples are sorted first, which makes the
// result independent of input order.
func WattHours(samples []model.Sample) float64 {
	if len(samples) < 2 {
		return 0
	}

	sorted := make([]model.Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var total float64
	for i := 1; i < len(sorted); i++ {
		hours := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Seconds() / 3600
		total += sorted[i].Value * hours
	}
	return total
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
