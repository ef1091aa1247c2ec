package ws

import (
	"log"

	"solar_ingest/internal/pipeline"
)

// Bridge turns ingest and delete events into hub broadcasts. It satisfies
// the web package's Notifier.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnIngest(r pipeline.Report) {
	if err := b.hub.Publish(TypeDataIngested, IngestedFromReport(r)); err != nil {
		log.Printf("Error publishing ingest of %s: %v", r.Device, err)
	}
}

func (b *Bridge) OnDelete(date, device string, files []string) {
	err := b.hub.Publish(TypeDataDeleted, DeletedPayload{
		Date:   date,
		Device: device,
		Files:  files,
	})
	if err != nil {
		log.Printf("Error publishing delete of %s: %v", date, err)
	}
}
