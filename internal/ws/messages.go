package ws

import (
	"encoding/json"
	"time"

	"solar_ingest/internal/model"
	"solar_ingest/internal/pipeline"
)

// Message types.
const (
	// Client -> Server
	TypeCatalogRefresh = "catalog:refresh"

	// Server -> Client
	TypeCatalogLoaded = "catalog:loaded"
	TypeDataIngested  = "data:ingested"
	TypeDataDeleted   = "data:deleted"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Server -> Client messages

type DateInfo struct {
	Date    string   `json:"date"`
	Devices []string `json:"devices"`
}

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CatalogPayload struct {
	Dates     []DateInfo     `json:"dates"`
	Malformed []string       `json:"malformed,omitempty"`
	Range     *TimeRangeInfo `json:"range,omitempty"`
}

type IngestedPayload struct {
	Device    string   `json:"device"`
	Dates     []string `json:"dates"`
	RowsRead  int      `json:"rows_read"`
	Kept      int      `json:"kept"`
	Binned    int      `json:"binned"`
	Nighttime int      `json:"nighttime"`
	Outliers  int      `json:"outliers"`
	Timestamp string   `json:"timestamp"`
}

type DeletedPayload struct {
	Date   string   `json:"date"`
	Device string   `json:"device,omitempty"`
	Files  []string `json:"files"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func CatalogFromModel(c model.Catalog) CatalogPayload {
	dates := c.Dates()
	p := CatalogPayload{
		Dates:     make([]DateInfo, 0, len(dates)),
		Malformed: c.Malformed,
	}
	for _, d := range dates {
		p.Dates = append(p.Dates, DateInfo{Date: d, Devices: c.Devices(d)})
	}
	if tr, ok := c.Range(); ok {
		p.Range = &TimeRangeInfo{
			Start: tr.Start.Format(model.FileDateLayout),
			End:   tr.End.Format(model.FileDateLayout),
		}
	}
	return p
}

func IngestedFromReport(r pipeline.Report) IngestedPayload {
	dates := make([]string, 0, len(r.Dates))
	for _, d := range r.Dates {
		dates = append(dates, d.Format(model.FileDateLayout))
	}
	return IngestedPayload{
		Device:    r.Device,
		Dates:     dates,
		RowsRead:  r.RowsRead,
		Kept:      r.Kept,
		Binned:    r.Binned,
		Nighttime: r.Nighttime,
		Outliers:  r.Outliers,
		Timestamp: r.ProcessedAt.UTC().Format(time.RFC3339),
	}
}
