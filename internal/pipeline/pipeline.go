// Package pipeline runs an uploaded batch through parsing, cleaning, binning
// and persistence.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"solar_ingest/internal/aggregate"
	"solar_ingest/internal/clean"
	"solar_ingest/internal/ingest"
	"solar_ingest/internal/metrics"
	"solar_ingest/internal/model"
)

// ErrSave marks a batch that parsed but could not be persisted.
var ErrSave = errors.New("saving processed file")

// Writer persists one device/day.
type Writer interface {
	Save(day model.DeviceDay) (string, error)
}

// Report summarizes one ingested batch.
type Report struct {
	Device      string
	RowsRead    int
	Nighttime   int
	Outliers    int
	Invalid     int
	Binned      int
	Kept        int
	Dates       []time.Time
	Files       []string
	ProcessedAt time.Time
}

// Dropped is the number of rows removed by the filter. Rows collapsed by the
// binner are counted separately in Binned.
func (r Report) Dropped() int {
	return r.Nighttime + r.Outliers + r.Invalid
}

// Ingester owns the cleaning stages for the upload path.
type Ingester struct {
	filter clean.Filter
	binner clean.Binner
	writer Writer
	now    func() time.Time
}

func New(filter clean.Filter, binner clean.Binner, writer Writer) *Ingester {
	return &Ingester{filter: filter, binner: binner, writer: writer, now: time.Now}
}

// IngestFile decodes, parses and ingests an export for device. Nothing is
// written if any row fails to parse.
func (in *Ingester) IngestFile(path, device string) (Report, error) {
	if err := model.CheckDevice(device); err != nil {
		return Report{Device: device}, err
	}
	records, err := ingest.ReadFile(path, device)
	if err != nil {
		return Report{Device: device}, err
	}
	return in.Ingest(device, records)
}

// Ingest filters, bins, groups and writes already-parsed records.
func (in *Ingester) Ingest(device string, records []model.Record) (Report, error) {
	report := Report{Device: device, RowsRead: len(records), ProcessedAt: in.now()}
	metrics.RowsRead.Add(float64(len(records)))

	kept, counts := in.filter.Apply(records)
	report.Nighttime = counts[clean.Nighttime]
	report.Outliers = counts[clean.Outlier]
	report.Invalid = counts[clean.Invalid]
	for _, v := range []clean.Verdict{clean.Nighttime, clean.Outlier, clean.Invalid} {
		metrics.RowsDropped.WithLabelValues(v.String()).Add(float64(counts[v]))
	}

	selections := in.binner.Bin(kept)
	report.Kept = len(selections)
	for _, sel := range selections {
		report.Binned += sel.Candidates - 1
	}
	metrics.RowsDropped.WithLabelValues("binned").Add(float64(report.Binned))

	days := aggregate.Group(selections)
	report.Dates = aggregate.UniqueDates(days)

	for _, day := range days {
		path, err := in.writer.Save(day)
		if err != nil {
			return report, fmt.Errorf("%w %s: %w", ErrSave, day.FileName(), err)
		}
		report.Files = append(report.Files, path)
		metrics.FilesWritten.Inc()
	}

	return report, nil
}
