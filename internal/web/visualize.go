package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"solar_ingest/internal/chart"
	"solar_ingest/internal/ws"
)

const msgNoDateData = "No data available for this date."

func (s *Server) payload(r *http.Request) (chart.Payload, error) {
	if date, ok := mux.Vars(r)["date"]; ok {
		return s.charts.ForDate(date)
	}
	return s.charts.All()
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	p, err := s.payload(r)
	switch {
	case errors.Is(err, chart.ErrNoData):
		redirectWithFlash(w, r, "/dates", Flash{categoryError, msgNoDateData})
		return
	case err != nil:
		log.Printf("Error building chart: %v", err)
		redirectWithFlash(w, r, "/", Flash{categoryError, "Processed data could not be loaded."})
		return
	}

	flashes := popFlash(w, r)
	for _, name := range p.Failed {
		flashes = append(flashes, Flash{categoryError, "Error reading the file " + name + "."})
	}
	if len(p.Malformed) > 0 {
		flashes = append(flashes, malformedFlash(p.Malformed))
	}

	title := "All dates"
	if p.Date != "" {
		title = p.Date
	}
	s.render(w, "visualize.html", pageData{
		Title:   title,
		Flashes: flashes,
		Chart:   &p,
	})
}

func (s *Server) handleVisualizeAPI(w http.ResponseWriter, r *http.Request) {
	p, err := s.payload(r)
	switch {
	case errors.Is(err, chart.ErrNoData):
		writeError(w, http.StatusNotFound, msgNoDateData)
		return
	case err != nil:
		log.Printf("Error building chart: %v", err)
		writeError(w, http.StatusInternalServerError, "processed data could not be loaded")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCatalogAPI(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Catalog()
	if err != nil {
		log.Printf("Error listing processed files: %v", err)
		writeError(w, http.StatusInternalServerError, "processed files could not be listed")
		return
	}
	writeJSON(w, http.StatusOK, ws.CatalogFromModel(c))
}
