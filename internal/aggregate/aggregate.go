// Package aggregate groups binned selections into per-device, per-day units.
package aggregate

import (
	"sort"
	"time"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/model"
)

type dayKey struct {
	date   time.Time
	device string
}

// Group buckets selections by the calendar date of their interval and then
// by device. Days come back ordered by date and device, rows by timestamp.
// Each day's header is the sorted union of the field names seen that day.
func Group(selections []clean.Selection) []model.DeviceDay {
	days := make(map[dayKey]*model.DeviceDay)
	fields := make(map[dayKey]map[string]bool)
	var keys []dayKey

	for _, s := range selections {
		k := dayKey{date: model.Day(s.Interval.Start), device: s.Record.Device}
		day, ok := days[k]
		if !ok {
			day = &model.DeviceDay{Device: k.device, Date: k.date}
			days[k] = day
			fields[k] = map[string]bool{model.ColumnDevice: true}
			keys = append(keys, k)
		}
		day.Records = append(day.Records, s.Record)
		for _, name := range s.Record.FieldNames() {
			fields[k][name] = true
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].device < keys[j].device
	})

	out := make([]model.DeviceDay, 0, len(keys))
	for _, k := range keys {
		day := days[k]
		sort.SliceStable(day.Records, func(i, j int) bool {
			return day.Records[i].Timestamp.Before(day.Records[j].Timestamp)
		})
		day.Header = sortedKeys(fields[k])
		out = append(out, *day)
	}
	return out
}

// UniqueDates returns the distinct dates covered by days, oldest first.
func UniqueDates(days []model.DeviceDay) []time.Time {
	var dates []time.Time
	for _, d := range days {
		if len(dates) == 0 || !dates[len(dates)-1].Equal(d.Date) {
			dates = append(dates, d.Date)
		}
	}
	return dates
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
