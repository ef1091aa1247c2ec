package chart

import (
	"errors"
	"log"
	"sort"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/metrics"
	"solar_ingest/internal/model"
)

// Label layouts for the two chart scopes.
const (
	LabelAllDates = "2006-01-02 15:04"
	LabelOneDate  = "15:04"
)

var ErrNoData = errors.New("no data available")

// Source is the read side of the processed store.
type Source interface {
	Catalog() (model.Catalog, error)
	Load(e model.CatalogEntry) (model.DeviceDay, error)
}

// Payload is everything a chart page needs.
type Payload struct {
	Chart
	Date      string             `json:"date,omitempty"`
	WattHours map[string]float64 `json:"watt_hours"`
	Failed    []string           `json:"failed,omitempty"`
	Malformed []string           `json:"malformed,omitempty"`
}

// Builder turns processed files into chart payloads.
type Builder struct {
	source Source
	policy clean.IntensityPolicy
}

func NewBuilder(source Source, policy clean.IntensityPolicy) *Builder {
	return &Builder{source: source, policy: policy}
}

// All charts every processed file with minute-precision labels.
func (b *Builder) All() (Payload, error) {
	c, err := b.source.Catalog()
	if err != nil {
		return Payload{}, err
	}
	p := b.build(c.Entries, LabelAllDates)
	p.Malformed = c.Malformed
	return p, nil
}

// ForDate charts one DD-MM-YYYY date with HH:MM labels. It returns ErrNoData
// when no device has a file for the date.
func (b *Builder) ForDate(date string) (Payload, error) {
	c, err := b.source.Catalog()
	if err != nil {
		return Payload{}, err
	}
	entries := c.ForDate(date)
	if len(entries) == 0 {
		return Payload{}, ErrNoData
	}
	p := b.build(entries, LabelOneDate)
	p.Date = date
	return p, nil
}

// build reads each entry independently. A file that cannot be read is
// logged and counts as no data for its device.
func (b *Builder) build(entries []model.CatalogEntry, layout string) Payload {
	series := make(map[string]*Series)
	wh := make(map[string]float64)
	var failed []string

	for _, e := range entries {
		s, ok := series[e.Device]
		if !ok {
			s = &Series{Device: e.Device}
			series[e.Device] = s
			wh[e.Device] = 0
		}

		day, err := b.source.Load(e)
		if err != nil {
			log.Printf("Failed to read %s: %v", e.Name, err)
			metrics.ViewReadFailures.Inc()
			failed = append(failed, e.Name)
			continue
		}

		samples := b.samples(day)
		for _, smp := range samples {
			s.Add(smp.Timestamp.Format(layout), smp.Value)
		}
		wh[e.Device] += WattHours(samples)
	}

	devices := make([]string, 0, len(series))
	for d := range series {
		devices = append(devices, d)
	}
	sort.Strings(devices)

	ordered := make([]Series, 0, len(devices))
	for _, d := range devices {
		ordered = append(ordered, *series[d])
		wh[d] = Round2(wh[d])
	}

	return Payload{
		Chart:     Align(ordered),
		WattHours: wh,
		Failed:    failed,
	}
}

// samples converts a day's rows under the intensity policy. Rows the policy
// rejects are skipped.
func (b *Builder) samples(day model.DeviceDay) []model.Sample {
	out := make([]model.Sample, 0, len(day.Records))
	for _, r := range day.Records {
		v, ok := b.policy.Intensity(r.Fields[model.ColumnValue])
		if !ok {
			continue
		}
		out = append(out, model.Sample{Timestamp: r.Timestamp, Value: v})
	}
	return out
}
