package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solar_ingest/internal/chart"
	"solar_ingest/internal/clean"
	"solar_ingest/internal/config"
	"solar_ingest/internal/pipeline"
	"solar_ingest/internal/store"
	"solar_ingest/internal/web"
	"solar_ingest/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	uploadDir := flag.String("upload-dir", cfg.Server.UploadDir, "directory for staged uploads")
	processedDir := flag.String("processed-dir", cfg.Server.ProcessedDir, "directory for cleaned device/day files")
	flag.Parse()

	cfg.Server.Addr = *addr
	cfg.Server.UploadDir = *uploadDir
	cfg.Server.ProcessedDir = *processedDir

	handler, err := newHandler(cfg)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.LoggingHandler(os.Stdout, handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s (uploads %s, processed %s)",
			cfg.Server.Addr, cfg.Server.UploadDir, cfg.Server.ProcessedDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newHandler wires the store, pipeline, chart builder and WebSocket hub
// behind one router.
func newHandler(cfg *config.Config) (http.Handler, error) {
	dataStore := store.New(cfg.Server.ProcessedDir)

	c, err := dataStore.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading processed directory: %w", err)
	}
	if tr, ok := c.Range(); ok {
		log.Printf("Processed data: %d files, %s to %s", len(c.Entries),
			tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02"))
	}
	if len(c.Malformed) > 0 {
		log.Printf("Ignoring %d files with unexpected names in %s", len(c.Malformed), dataStore.Dir())
	}

	ingester := pipeline.New(
		cfg.Cleaning.Filter(),
		clean.NewBinner(cfg.Cleaning.IngestInterval),
		dataStore,
	)
	charts := chart.NewBuilder(dataStore, cfg.Cleaning.IntensityPolicy)

	hub := ws.NewHub()
	bridge := ws.NewBridge(hub)

	srv, err := web.New(cfg.Server, ingester, dataStore, charts, bridge)
	if err != nil {
		return nil, err
	}

	router := srv.Router()
	router.Handle("/ws", ws.NewHandler(hub, dataStore))
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router, nil
}
