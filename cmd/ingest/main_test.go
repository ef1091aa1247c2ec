package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"solar_ingest/internal/pipeline"
)

func TestPrintReport(t *testing.T) {
	r := pipeline.Report{
		Device:    "D1",
		RowsRead:  10,
		Nighttime: 3,
		Outliers:  1,
		Binned:    2,
		Kept:      4,
		Dates: []time.Time{
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		Files: []string{"processed/D1_01-06-2024.csv", "processed/D1_02-06-2024.csv"},
	}

	var buf bytes.Buffer
	printReport(&buf, "export.csv", r)
	out := buf.String()

	assert.Contains(t, out, "export.csv (D1)")
	assert.Contains(t, out, "Rows read:          10")
	assert.Contains(t, out, "Binned away:        2")
	assert.Contains(t, out, "Unique dates:       2")
	assert.Contains(t, out, "    02-06-2024\n")
	assert.Contains(t, out, "Wrote processed/D1_01-06-2024.csv")
	assert.NotContains(t, out, "Invalid dropped")
}
