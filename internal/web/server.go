// Package web serves the upload form, the processed-date listing and the
// chart pages.
package web

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"solar_ingest/internal/chart"
	"solar_ingest/internal/config"
	"solar_ingest/internal/metrics"
	"solar_ingest/internal/model"
	"solar_ingest/internal/pipeline"
)

// Ingester runs a staged upload through the cleaning pipeline.
type Ingester interface {
	IngestFile(path, device string) (pipeline.Report, error)
}

// Store is the part of the processed store the handlers touch directly.
type Store interface {
	Catalog() (model.Catalog, error)
	Delete(date, device string) ([]string, error)
}

// Charts builds chart payloads from processed files.
type Charts interface {
	All() (chart.Payload, error)
	ForDate(date string) (chart.Payload, error)
}

// Notifier is told about every change to the processed directory.
type Notifier interface {
	OnIngest(r pipeline.Report)
	OnDelete(date, device string, files []string)
}

type Server struct {
	cfg      config.ServerConfig
	ingester Ingester
	store    Store
	charts   Charts
	notifier Notifier
	pages    map[string]*template.Template
}

func New(cfg config.ServerConfig, ingester Ingester, store Store, charts Charts, notifier Notifier) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Server{
		cfg:      cfg,
		ingester: ingester,
		store:    store,
		charts:   charts,
		notifier: notifier,
		pages:    pages,
	}, nil
}

// Router registers every page and API route. Callers may add more routes
// (WebSocket, metrics) to the returned router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/uploads/{filename}", s.handleUploaded).Methods(http.MethodGet)

	r.HandleFunc("/dates", s.handleDates).Methods(http.MethodGet)
	r.HandleFunc("/delete/{date}", s.handleDelete).Methods(http.MethodPost)

	r.HandleFunc("/visualize", s.handleVisualize).Methods(http.MethodGet)
	r.HandleFunc("/visualize/{date}", s.handleVisualize).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", s.handleCatalogAPI).Methods(http.MethodGet)
	api.HandleFunc("/visualize", s.handleVisualizeAPI).Methods(http.MethodGet)
	api.HandleFunc("/visualize/{date}", s.handleVisualizeAPI).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
