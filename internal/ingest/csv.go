package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"solar_ingest/internal/model"
)

var ErrMissingColumn = errors.New("missing required column")

// CSVParser parses intensity exports.
//
// Expected format (extra columns are carried through untouched):
//
//	Date,Time,Value 1
//	2024-06-01,06:00:00,80
//
// The device is not part of the file; it is supplied by the uploader.
type CSVParser struct {
	Device string
}

func NewCSVParser(device string) *CSVParser {
	return &CSVParser{Device: device}
}

// Parse is all-or-nothing: one row with an unusable Date/Time fails the
// whole batch.
func (p *CSVParser) Parse(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	header = normalizeHeader(header)
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var records []model.Record
	lineNum := 1

	for {
		lineNum++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}
		if isBlank(row) {
			continue
		}

		record, err := p.parseRecord(header, row, lineNum)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func validateHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range model.RequiredColumns {
		if !present[col] {
			return fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (p *CSVParser) parseRecord(header, row []string, lineNum int) (model.Record, error) {
	fields := make(model.RawRecord, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		} else {
			fields[name] = ""
		}
	}

	ts, err := model.ParseTimestamp(fields[model.ColumnDate], fields[model.ColumnTime])
	if err != nil {
		return model.Record{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	return model.Record{
		Timestamp: ts,
		Device:    p.Device,
		Fields:    fields,
	}, nil
}
