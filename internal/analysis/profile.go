package analysis

import (
	"solar_ingest/internal/clean"
	"solar_ingest/internal/model"
)

// Profile is the hourly intensity shape of an export.
type Profile struct {
	// Mean holds the average positive intensity for each hour [0-23].
	Mean [24]float64
	// Factor is Mean normalized so the peak hour is 1.0.
	Factor [24]float64
	// Counts is the number of readings behind each hour's mean.
	Counts   [24]int
	PeakHour int
}

// HourlyProfile averages intensity per hour of day. Zero and negative
// readings and values above the filter threshold are skipped.
func HourlyProfile(records []model.Record, f clean.Filter) Profile {
	var sum [24]float64
	var p Profile

	for _, r := range records {
		v, ok := f.Policy.Intensity(r.Fields[model.ColumnValue])
		if !ok || v <= 0 || v > f.Threshold {
			continue
		}
		h := r.Timestamp.Hour()
		sum[h] += v
		p.Counts[h]++
	}

	var peak float64
	for h := 0; h < 24; h++ {
		if p.Counts[h] == 0 {
			continue
		}
		p.Mean[h] = sum[h] / float64(p.Counts[h])
		if p.Mean[h] > peak {
			peak = p.Mean[h]
			p.PeakHour = h
		}
	}

	if peak > 0 {
		for h := 0; h < 24; h++ {
			p.Factor[h] = p.Mean[h] / peak
		}
	}
	return p
}
