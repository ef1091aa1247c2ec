package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/model"
)

func rec(h, m int, value string) model.Record {
	ts := time.Date(2024, 6, 1, h, m, 0, 0, time.UTC)
	return model.Record{
		Timestamp: ts,
		Device:    "D1",
		Fields:    model.RawRecord{"Date": "2024-06-01", "Time": ts.Format("15:04:05"), "Value 1": value},
	}
}

func TestDaytime(t *testing.T) {
	records := []model.Record{rec(5, 0, "1"), rec(6, 0, "2"), rec(18, 0, "3"), rec(18, 30, "4")}
	day := Daytime(records, clean.NewFilter())
	require.Len(t, day, 2)
	assert.Equal(t, "2", day[0].Fields["Value 1"])
}

func TestSummarize(t *testing.T) {
	records := []model.Record{rec(6, 0, "100"), rec(7, 0, "300"), rec(8, 0, "1500"), rec(9, 0, "200")}

	s := Summarize(records, clean.NewFilter())

	assert.Equal(t, 4, s.TotalReadings)
	assert.Equal(t, 4, s.DaytimeReadings)
	assert.Equal(t, 1, s.Outliers)
	assert.InDelta(t, 200.0, s.Average, 0.001)
	assert.InDelta(t, 300.0, s.Max, 0.001)
	assert.InDelta(t, 100.0, s.Min, 0.001)
}

func TestSummarize_AllOutliers(t *testing.T) {
	s := Summarize([]model.Record{rec(9, 0, "5000")}, clean.NewFilter())
	assert.Equal(t, 1, s.Outliers)
	assert.Zero(t, s.Average)
	assert.Zero(t, s.Max)
	assert.Zero(t, s.Min)
}

func TestChartData_TenMinuteAverages(t *testing.T) {
	records := []model.Record{
		rec(6, 1, "100"),
		rec(6, 9, "200"),
		rec(6, 10, "50"),
		rec(7, 0, "1800"),
		rec(7, 5, "1000"),
	}

	series := ChartData(records, 10*time.Minute, clean.NewFilter())

	require.Len(t, series.Points, 3)
	assert.Equal(t, "2024-06-01 06:00:00", series.Points[0].Label)
	assert.InDelta(t, 150.0, series.Points[0].Value, 0.001)
	assert.Equal(t, "2024-06-01 06:10:00", series.Points[1].Label)
	assert.InDelta(t, 50.0, series.Points[1].Value, 0.001)

	assert.InDelta(t, 1000.0, series.Points[2].Value, 0.001)
	require.Len(t, series.Outliers, 1)
	assert.Equal(t, "2024-06-01 07:00:00", series.Outliers[0].Label)
	assert.InDelta(t, 1400.0, series.Outliers[0].Value, 0.001)
}
