package ingest

import (
	"io"

	"solar_ingest/internal/model"
)

// Parser reads sensor data from a source and returns typed records.
type Parser interface {
	Parse(r io.Reader) ([]model.Record, error)
}
