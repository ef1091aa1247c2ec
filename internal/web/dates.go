package web

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const msgDeleteFailed = "Failed to delete data. Please try again."

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	flashes := popFlash(w, r)

	c, err := s.store.Catalog()
	if err != nil {
		log.Printf("Error listing processed files: %v", err)
		redirectWithFlash(w, r, "/", Flash{categoryError, fmt.Sprintf("Error listing dates: %v", err)})
		return
	}
	if len(c.Malformed) > 0 {
		flashes = append(flashes, malformedFlash(c.Malformed))
	}

	dates := c.Dates()
	rows := make([]dateRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, dateRow{Date: d, Devices: c.Devices(d)})
	}

	s.render(w, "dates.html", pageData{
		Title:   "Processed dates",
		Flashes: flashes,
		Dates:   rows,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	device := strings.TrimSpace(r.FormValue("device_name"))

	removed, err := s.store.Delete(date, device)
	if len(removed) > 0 && s.notifier != nil {
		s.notifier.OnDelete(date, device, removed)
	}
	if err != nil {
		log.Printf("Error deleting %s (device %q): %v", date, device, err)
		redirectWithFlash(w, r, "/dates", Flash{categoryError, msgDeleteFailed})
		return
	}

	log.Printf("Deleted %s", strings.Join(removed, ", "))
	msg := fmt.Sprintf("All data for %s has been deleted.", date)
	if device != "" {
		msg = fmt.Sprintf("Data for device %s on %s has been deleted.", device, date)
	}
	redirectWithFlash(w, r, "/dates", Flash{categorySuccess, msg})
}

func malformedFlash(names []string) Flash {
	return Flash{categoryWarning, "Ignored files with unexpected names: " + strings.Join(names, ", ")}
}
