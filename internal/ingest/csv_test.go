package ingest

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_ingest/internal/model"
)

func TestCSVParser_Parse(t *testing.T) {
	input := `Date,Time,Value 1
2024-06-01,06:00:00,80
2024-06-01,12:30:15,640.25`

	parser := NewCSVParser("D1")
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "D1", records[0].Device)
	assert.Equal(t, time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC), records[0].Timestamp)
	assert.Equal(t, "80", records[0].Fields[model.ColumnValue])

	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 15, 0, time.UTC), records[1].Timestamp)
	assert.Equal(t, "640.25", records[1].Fields[model.ColumnValue])
}

func TestCSVParser_KeepsExtraColumns(t *testing.T) {
	input := `Date,Time,Value 1,Value 2,Unit
2024-06-01,06:00:00,80,,W/m2`

	records, err := NewCSVParser("D1").Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "W/m2", records[0].Fields["Unit"])
	value2, ok := records[0].Fields["Value 2"]
	assert.True(t, ok)
	assert.Empty(t, value2)
}

func TestCSVParser_DeviceOverridesColumn(t *testing.T) {
	input := `Date,Time,Value 1,Device
2024-06-01,06:00:00,80,from-file`

	records, err := NewCSVParser("uploaded").Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "uploaded", records[0].Get(model.ColumnDevice))
}

func TestCSVParser_MissingColumn(t *testing.T) {
	input := `Date,Value 1
2024-06-01,80`

	_, err := NewCSVParser("D1").Parse(strings.NewReader(input))

	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Time")
}

func TestCSVParser_BadTimestampFailsBatch(t *testing.T) {
	input := `Date,Time,Value 1
2024-06-01,06:00:00,80
2024-06-01,6 o'clock,90
2024-06-01,07:00:00,100`

	records, err := NewCSVParser("D1").Parse(strings.NewReader(input))

	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCSVParser_SkipsBlankLines(t *testing.T) {
	input := "Date,Time,Value 1\n2024-06-01,06:00:00,80\n,,\n2024-06-01,06:05:00,81\n"

	records, err := NewCSVParser("D1").Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCSVParser_EmptyInput(t *testing.T) {
	_, err := NewCSVParser("D1").Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVParser_SampleFile(t *testing.T) {
	f, err := os.Open("testdata/intensity_sample.csv")
	require.NoError(t, err)
	defer f.Close()

	records, err := NewCSVParser("roof").Parse(f)

	require.NoError(t, err)
	require.Len(t, records, 6)
	for _, r := range records {
		assert.Equal(t, "roof", r.Device)
		assert.Equal(t, "W/m2", r.Fields["Unit"])
	}
	assert.Equal(t, "412.5", records[5].Fields[model.ColumnValue])
}
