// Package analysis produces the offline summary and chart series for a
// single export, independent of the upload path.
package analysis

import (
	"sort"
	"time"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/model"
)

// Summary describes the daytime readings of one export.
type Summary struct {
	TotalReadings   int
	DaytimeReadings int
	Average         float64
	Max             float64
	Min             float64
	Outliers        int
}

// Summarize computes intensity statistics over daytime records. Values
// above the filter threshold are counted as outliers and left out of the
// average, max and min.
func Summarize(records []model.Record, f clean.Filter) Summary {
	s := Summary{TotalReadings: len(records), DaytimeReadings: len(records)}

	var sum float64
	valid := 0
	for _, r := range records {
		v, ok := f.Policy.Intensity(r.Fields[model.ColumnValue])
		if !ok {
			continue
		}
		if v > f.Threshold {
			s.Outliers++
			continue
		}
		if valid == 0 || v > s.Max {
			s.Max = v
		}
		if valid == 0 || v < s.Min {
			s.Min = v
		}
		sum += v
		valid++
	}

	if valid > 0 {
		s.Average = sum / float64(valid)
	}
	return s
}

// Point is one bucket of the analysis chart.
type Point struct {
	Label string
	Value float64
}

// Series is the analysis chart: one averaged value per bucket, capped at the
// threshold, with the uncapped averages of capped buckets listed as outliers.
type Series struct {
	Points   []Point
	Outliers []Point
}

// LabelLayout formats analysis bucket labels.
const LabelLayout = "2006-01-02 15:04:05"

// ChartData averages records into width-wide buckets floored from midnight.
func ChartData(records []model.Record, width time.Duration, f clean.Filter) Series {
	binner := clean.NewBinner(width)
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)

	for _, r := range records {
		v, ok := f.Policy.Intensity(r.Fields[model.ColumnValue])
		if !ok {
			continue
		}
		bucket := binner.Floor(r.Timestamp)
		sums[bucket] += v
		counts[bucket]++
	}

	buckets := make([]time.Time, 0, len(sums))
	for b := range sums {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	var out Series
	for _, b := range buckets {
		avg := sums[b] / float64(counts[b])
		label := b.Format(LabelLayout)
		if avg > f.Threshold {
			out.Outliers = append(out.Outliers, Point{Label: label, Value: avg})
			avg = f.Threshold
		}
		out.Points = append(out.Points, Point{Label: label, Value: avg})
	}
	return out
}

// Daytime keeps the records inside the filter's daylight window.
func Daytime(records []model.Record, f clean.Filter) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Daylight(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}
