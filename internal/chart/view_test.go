package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/model"
)

type fakeSource struct {
	catalog model.Catalog
	days    map[string]model.DeviceDay
	broken  map[string]bool
}

func (f *fakeSource) Catalog() (model.Catalog, error) {
	return f.catalog, nil
}

func (f *fakeSource) Load(e model.CatalogEntry) (model.DeviceDay, error) {
	if f.broken[e.Name] {
		return model.DeviceDay{}, errors.New("disk on fire")
	}
	return f.days[e.Name], nil
}

func (f *fakeSource) add(device string, date time.Time, rows map[string]string) {
	name := model.FileName(device, date)
	f.catalog.Add(model.CatalogEntry{Device: device, Date: date, Name: name})

	day := model.DeviceDay{Device: device, Date: date}
	for clock, v := range rows {
		ts, _ := model.ParseTimestamp(date.Format("2006-01-02"), clock)
		day.Records = append(day.Records, model.Record{
			Timestamp: ts,
			Device:    device,
			Fields:    model.RawRecord{"Date": date.Format("2006-01-02"), "Time": clock, "Value 1": v},
		})
	}
	if f.days == nil {
		f.days = make(map[string]model.DeviceDay)
	}
	f.days[name] = day
}

var (
	june1 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june2 = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
)

func TestBuilder_ForDate(t *testing.T) {
	src := &fakeSource{}
	src.add("D1", june1, map[string]string{"06:00:00": "10", "07:00:00": "20"})
	src.add("D2", june1, map[string]string{"06:02:00": "5"})
	src.add("D1", june2, map[string]string{"06:00:00": "99"})

	p, err := NewBuilder(src, clean.LaxIntensity).ForDate("01-06-2024")
	require.NoError(t, err)

	assert.Equal(t, "01-06-2024", p.Date)
	assert.Equal(t, []string{"06:00", "06:02", "07:00"}, p.Labels)
	require.Len(t, p.Datasets, 2)
	assert.Equal(t, "D1", p.Datasets[0].Device)
	assert.Nil(t, p.Datasets[0].Data[1])
	assert.InDelta(t, 20.0, *p.Datasets[0].Data[2], 0.001)

	assert.InDelta(t, 20.0, p.WattHours["D1"], 0.001)
	assert.InDelta(t, 0.0, p.WattHours["D2"], 0.001)
}

func TestBuilder_ForDateNoData(t *testing.T) {
	src := &fakeSource{}
	src.add("D1", june1, map[string]string{"06:00:00": "10"})

	_, err := NewBuilder(src, clean.LaxIntensity).ForDate("09-09-2024")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuilder_AllSumsPerDayIntegrals(t *testing.T) {
	src := &fakeSource{}
	src.add("D1", june1, map[string]string{"06:00:00": "10", "07:00:00": "20"})
	src.add("D1", june2, map[string]string{"06:00:00": "30", "06:30:00": "40"})

	p, err := NewBuilder(src, clean.LaxIntensity).All()
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-01 06:00", "2024-06-01 07:00", "2024-06-02 06:00", "2024-06-02 06:30"}, p.Labels)
	// The overnight gap is not integrated: 20*1 + 40*0.5.
	assert.InDelta(t, 40.0, p.WattHours["D1"], 0.001)
}

func TestBuilder_UnreadableFileIsZeroData(t *testing.T) {
	src := &fakeSource{broken: map[string]bool{"D2_01-06-2024.csv": true}}
	src.add("D1", june1, map[string]string{"06:00:00": "10"})
	src.add("D2", june1, map[string]string{"06:00:00": "10"})

	p, err := NewBuilder(src, clean.LaxIntensity).ForDate("01-06-2024")
	require.NoError(t, err)

	require.Len(t, p.Datasets, 2)
	assert.Equal(t, "D2", p.Datasets[1].Device)
	for _, v := range p.Datasets[1].Data {
		assert.Nil(t, v)
	}
	assert.Zero(t, p.WattHours["D2"])
	assert.Equal(t, []string{"D2_01-06-2024.csv"}, p.Failed)
}

func TestBuilder_IntensityPolicy(t *testing.T) {
	src := &fakeSource{}
	src.add("D1", june1, map[string]string{"06:00:00": "10", "07:00:00": "n/a"})

	lax, err := NewBuilder(src, clean.LaxIntensity).ForDate("01-06-2024")
	require.NoError(t, err)
	require.NotNil(t, lax.Datasets[0].Data[1])
	assert.Zero(t, *lax.Datasets[0].Data[1])

	strict, err := NewBuilder(src, clean.StrictIntensity).ForDate("01-06-2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"06:00"}, strict.Labels)
}
