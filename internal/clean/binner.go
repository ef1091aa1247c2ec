package clean

import (
	"sort"
	"time"

	"solar_ingest/internal/model"
)

// Selection is the representative record chosen for one interval.
// Candidates counts every record that fell into the interval.
type Selection struct {
	Interval   model.Interval
	Record     model.Record
	Candidates int
}

// Binner downsamples records to one per device and fixed-width interval.
type Binner struct {
	Width time.Duration
}

func NewBinner(width time.Duration) Binner {
	return Binner{Width: width}
}

// Floor returns the start of the Width-aligned bucket containing t, counted
// from midnight of t's day.
func (b Binner) Floor(t time.Time) time.Time {
	day := model.Day(t)
	since := t.Sub(day)
	return day.Add(since - since%b.Width)
}

// Bin returns one selection per device and interval, ordered by device and
// then interval start. Within an interval the record closest to the interval
// start wins; ties go to the earlier record in sorted order.
func (b Binner) Bin(records []model.Record) []Selection {
	if len(records) == 0 || b.Width <= 0 {
		return nil
	}

	byDevice := make(map[string][]model.Record)
	var devices []string
	for _, r := range records {
		if _, ok := byDevice[r.Device]; !ok {
			devices = append(devices, r.Device)
		}
		byDevice[r.Device] = append(byDevice[r.Device], r)
	}
	sort.Strings(devices)

	var out []Selection
	for _, device := range devices {
		out = append(out, b.sweep(byDevice[device])...)
	}
	return out
}

// sweep walks records in time order with a reference that only moves
// forward, so gaps in the data never produce buckets.
func (b Binner) sweep(records []model.Record) []Selection {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []Selection
	iv := model.Interval{Start: b.Floor(sorted[0].Timestamp), Width: b.Width}
	var cur *Selection
	var best time.Duration

	for _, r := range sorted {
		for !iv.Contains(r.Timestamp) {
			iv.Start = iv.End()
		}

		dist := absDuration(r.Timestamp.Sub(iv.Start))
		if cur == nil || !cur.Interval.Start.Equal(iv.Start) {
			out = append(out, Selection{Interval: iv, Record: r})
			cur = &out[len(out)-1]
			best = dist
		} else if dist < best {
			cur.Record = r
			best = dist
		}
		cur.Candidates++
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
