package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"solar_ingest/internal/model"
)

// Encode writes a device/day in the canonical processed format: the header
// row followed by one row per record, cells taken verbatim from the record.
func Encode(w io.Writer, day model.DeviceDay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(day.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(day.Header))
	for _, r := range day.Records {
		for i, col := range day.Header {
			if col == model.ColumnDevice {
				row[i] = day.Device
			} else {
				row[i] = r.Fields[col]
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %s: %w", r.Timestamp.Format(model.TimestampLayout), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Decode reads a processed file. The Device column is dropped from Fields
// and device is used as the record label instead. A header without Date,
// Time or Value 1 is rejected before any row is read.
func Decode(r io.Reader, device string) (model.DeviceDay, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return model.DeviceDay{}, fmt.Errorf("reading header: %w", err)
	}

	for _, col := range model.RequiredColumns {
		if !slices.Contains(header, col) {
			return model.DeviceDay{}, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	day := model.DeviceDay{Device: device, Header: header}
	lineNum := 1

	for {
		lineNum++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.DeviceDay{}, fmt.Errorf("reading line %d: %w", lineNum, err)
		}

		fields := make(model.RawRecord, len(header))
		for i, col := range header {
			if col != model.ColumnDevice {
				fields[col] = row[i]
			}
		}

		ts, err := model.ParseTimestamp(fields[model.ColumnDate], fields[model.ColumnTime])
		if err != nil {
			return model.DeviceDay{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
		day.Records = append(day.Records, model.Record{Timestamp: ts, Device: device, Fields: fields})
	}

	return day, nil
}
