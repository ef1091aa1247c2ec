package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Column names every uploaded export must carry.
const (
	ColumnDate   = "Date"
	ColumnTime   = "Time"
	ColumnValue  = "Value 1"
	ColumnDevice = "Device"
)

// RequiredColumns lists the columns a raw export cannot be parsed without.
var RequiredColumns = []string{ColumnDate, ColumnTime, ColumnValue}

const (
	// TimestampLayout combines the Date and Time columns.
	TimestampLayout = "2006-01-02 15:04:05"
	// FileDateLayout is the date part of a processed file name.
	FileDateLayout = "02-01-2006"
)

// RawRecord maps column name to the original cell text.
type RawRecord map[string]string

// Record is a parsed row tagged with its device. Fields keeps every column in
// its original string form so that writing it back is lossless.
type Record struct {
	Timestamp time.Time
	Device    string
	Fields    RawRecord
}

// Get returns a column value. The Device column always reports the external
// device label.
func (r Record) Get(column string) string {
	if column == ColumnDevice {
		return r.Device
	}
	return r.Fields[column]
}

// FieldNames returns the record's column names, including Device, sorted.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields)+1)
	hasDevice := false
	for name := range r.Fields {
		if name == ColumnDevice {
			hasDevice = true
		}
		names = append(names, name)
	}
	if !hasDevice {
		names = append(names, ColumnDevice)
	}
	sort.Strings(names)
	return names
}

// Interval is the half-open bucket [Start, Start+Width).
type Interval struct {
	Start time.Time
	Width time.Duration
}

func (i Interval) End() time.Time {
	return i.Start.Add(i.Width)
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End())
}

// DeviceDay is the unit of persistence: one device on one calendar date.
type DeviceDay struct {
	Device  string
	Date    time.Time
	Header  []string
	Records []Record
}

// FileName returns the processed file name for the device/day.
func (d DeviceDay) FileName() string {
	return FileName(d.Device, d.Date)
}

// Sample is one reading read back from a processed file.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

var (
	ErrMalformedName = errors.New("malformed processed file name")
	ErrInvalidDevice = errors.New("invalid device name")
)

// FileName builds "{device}_{DD-MM-YYYY}.csv".
func FileName(device string, date time.Time) string {
	return fmt.Sprintf("%s_%s.csv", device, date.Format(FileDateLayout))
}

// ParseFileName splits a processed file name into device and date. The date
// is taken after the last underscore so device names may contain underscores.
func ParseFileName(name string) (string, time.Time, error) {
	base, ok := strings.CutSuffix(name, ".csv")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q has no .csv suffix", ErrMalformedName, name)
	}
	idx := strings.LastIndex(base, "_")
	if idx <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: %q has no device_date separator", ErrMalformedName, name)
	}
	date, err := ParseFileDate(base[idx+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q: %v", ErrMalformedName, name, err)
	}
	return base[:idx], date, nil
}

// ParseFileDate parses a DD-MM-YYYY date as midnight UTC.
func ParseFileDate(s string) (time.Time, error) {
	return time.ParseInLocation(FileDateLayout, s, time.UTC)
}

// CheckDevice rejects device labels that cannot safely become part of a
// file name.
func CheckDevice(device string) error {
	switch {
	case strings.TrimSpace(device) == "":
		return fmt.Errorf("%w: empty", ErrInvalidDevice)
	case device == "." || device == "..":
		return fmt.Errorf("%w: %q", ErrInvalidDevice, device)
	case strings.ContainsAny(device, `/\:*?"<>|`+"\x00"):
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidDevice, device)
	}
	return nil
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseTimestamp combines a Date and a Time cell into a UTC timestamp.
func ParseTimestamp(date, clock string) (time.Time, error) {
	s := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	ts, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return ts, nil
}

// TimeRange spans the first and last sample of a set of readings.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
