package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_ingest/internal/model"
)

var (
	june1 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june2 = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
)

func makeDay(device string, date time.Time, values ...string) model.DeviceDay {
	day := model.DeviceDay{
		Device: device,
		Date:   date,
		Header: []string{"Date", "Device", "Time", "Value 1"},
	}
	for i, v := range values {
		ts := date.Add(6*time.Hour + time.Duration(i)*5*time.Minute)
		day.Records = append(day.Records, model.Record{
			Timestamp: ts,
			Device:    device,
			Fields: model.RawRecord{
				"Date":    ts.Format("2006-01-02"),
				"Time":    ts.Format("15:04:05"),
				"Value 1": v,
			},
		})
	}
	return day
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, makeDay("D1", june1, "80", "85.5")))

	want := "Date,Device,Time,Value 1\n" +
		"2024-06-01,D1,06:00:00,80\n" +
		"2024-06-01,D1,06:05:00,85.5\n"
	assert.Equal(t, want, buf.String())
}

func TestEncode_MissingFieldIsEmpty(t *testing.T) {
	day := makeDay("D1", june1, "80")
	day.Header = []string{"Date", "Device", "Time", "Unit", "Value 1"}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, day))
	assert.Contains(t, buf.String(), "2024-06-01,D1,06:00:00,,80\n")
}

func TestDecode_RoundTrip(t *testing.T) {
	orig := makeDay("D1", june1, "80", "n/a")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, orig))

	day, err := Decode(&buf, "D1")
	require.NoError(t, err)
	assert.Equal(t, orig.Header, day.Header)
	require.Len(t, day.Records, 2)
	assert.Equal(t, orig.Records[0].Timestamp, day.Records[0].Timestamp)
	assert.Equal(t, "n/a", day.Records[1].Fields["Value 1"])
	assert.Equal(t, "D1", day.Records[1].Get("Device"))
}

func TestDecode_MissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
	}{
		{"no value", "Date,Device,Time\n2024-06-01,D1,06:00:00\n", "Value 1"},
		{"no time", "Date,Device,Value 1\n2024-06-01,D1,80\n", "Time"},
		{"header only", "Device,Time,Value 1\n", "Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), "D1")
			assert.ErrorIs(t, err, ErrMissingColumn)
			assert.ErrorContains(t, err, tt.column)
		})
	}
}

func TestStore_LoadRejectsFileWithoutValueColumn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "D1_01-06-2024.csv"),
		[]byte("Date,Device,Time\n2024-06-01,D1,06:00:00\n"), 0o644))
	s := New(dir)

	c, err := s.Catalog()
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)

	_, err = s.Load(c.Entries[0])
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestStore_SaveAndCatalog(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "processed"))

	path, err := s.Save(makeDay("D1", june1, "80"))
	require.NoError(t, err)
	assert.Equal(t, "D1_01-06-2024.csv", filepath.Base(path))

	_, err = s.Save(makeDay("D2", june1, "90"))
	require.NoError(t, err)
	_, err = s.Save(makeDay("D1", june2, "70"))
	require.NoError(t, err)

	c, err := s.Catalog()
	require.NoError(t, err)
	require.Len(t, c.Entries, 3)
	assert.Equal(t, []string{"02-06-2024", "01-06-2024"}, c.Dates())
	assert.Equal(t, []string{"D1", "D2"}, c.Devices("01-06-2024"))
	assert.Empty(t, c.Malformed)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Save(makeDay("D1", june1, "80", "81", "82"))
	require.NoError(t, err)
	path, err := s.Save(makeDay("D1", june1, "10"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Device,Time,Value 1\n2024-06-01,D1,06:00:00,10\n", string(data))
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.Save(makeDay("D1", june1, "80", "81"))
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = s.Save(makeDay("D1", june1, "80", "81"))
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStore_SaveRejectsUnsafeDevice(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(makeDay("../escape", june1, "1"))
	assert.ErrorIs(t, err, model.ErrInvalidDevice)
}

func TestStore_CatalogMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Empty(t, c.Entries)
}

func TestStore_CatalogReportsMalformed(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	_, err := s.Save(makeDay("D1", june1, "80"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Len(t, c.Entries, 1)
	assert.Equal(t, []string{"garbage.csv"}, c.Malformed)
}

func TestStore_Load(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(makeDay("D1", june1, "80", "85"))
	require.NoError(t, err)

	c, err := s.Catalog()
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)

	day, err := s.Load(c.Entries[0])
	require.NoError(t, err)
	assert.Equal(t, "D1", day.Device)
	assert.Equal(t, june1, day.Date)
	require.Len(t, day.Records, 2)
	assert.Equal(t, "85", day.Records[1].Fields["Value 1"])

	_, err = s.Load(model.CatalogEntry{Device: "D9", Date: june1, Name: "D9_01-06-2024.csv"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Load(model.CatalogEntry{Name: "../D1_01-06-2024.csv"})
	assert.Error(t, err)
}

func TestStore_DeleteOneDevice(t *testing.T) {
	s := New(t.TempDir())
	_, _ = s.Save(makeDay("D1", june1, "80"))
	_, _ = s.Save(makeDay("D2", june1, "80"))

	removed, err := s.Delete("01-06-2024", "D1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D1_01-06-2024.csv"}, removed)

	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"D2"}, c.Devices("01-06-2024"))
}

func TestStore_DeleteWholeDate(t *testing.T) {
	s := New(t.TempDir())
	_, _ = s.Save(makeDay("D1", june1, "80"))
	_, _ = s.Save(makeDay("D2", june1, "80"))
	_, _ = s.Save(makeDay("D1", june2, "80"))

	removed, err := s.Delete("01-06-2024", "")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	c, err := s.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"02-06-2024"}, c.Dates())
}

func TestStore_DeleteNothing(t *testing.T) {
	s := New(t.TempDir())
	_, _ = s.Save(makeDay("D1", june1, "80"))

	_, err := s.Delete("05-06-2024", "")
	assert.ErrorIs(t, err, ErrNothingToDelete)

	_, err = s.Delete("01-06-2024", "D2")
	assert.ErrorIs(t, err, ErrNothingToDelete)
}
