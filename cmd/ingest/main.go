package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"solar_ingest/internal/clean"
	"solar_ingest/internal/config"
	"solar_ingest/internal/model"
	"solar_ingest/internal/pipeline"
	"solar_ingest/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	processedDir := flag.String("processed-dir", cfg.Server.ProcessedDir, "directory for cleaned device/day files")
	device := flag.String("device", "", "device name to tag the readings with")
	flag.Parse()

	if *device == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest -device NAME [-processed-dir DIR] FILE.csv...")
		os.Exit(2)
	}

	ingester := pipeline.New(
		cfg.Cleaning.Filter(),
		clean.NewBinner(cfg.Cleaning.IngestInterval),
		store.New(*processedDir),
	)

	failed := 0
	for _, path := range flag.Args() {
		report, err := ingester.IngestFile(path, *device)
		if err != nil {
			log.Printf("Failed to ingest %s: %v", path, err)
			failed++
			continue
		}
		printReport(os.Stdout, path, report)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printReport(w io.Writer, path string, r pipeline.Report) {
	fmt.Fprintf(w, "%s (%s)\n", path, r.Device)
	fmt.Fprintf(w, "  Rows read:          %d\n", r.RowsRead)
	fmt.Fprintf(w, "  Nighttime dropped:  %d\n", r.Nighttime)
	fmt.Fprintf(w, "  Outliers dropped:   %d\n", r.Outliers)
	if r.Invalid > 0 {
		fmt.Fprintf(w, "  Invalid dropped:    %d\n", r.Invalid)
	}
	fmt.Fprintf(w, "  Binned away:        %d\n", r.Binned)
	fmt.Fprintf(w, "  Interval rows kept: %d\n", r.Kept)
	fmt.Fprintf(w, "  Unique dates:       %d\n", len(r.Dates))
	for _, d := range r.Dates {
		fmt.Fprintf(w, "    %s\n", d.Format(model.FileDateLayout))
	}
	for _, f := range r.Files {
		fmt.Fprintf(w, "  Wrote %s\n", f)
	}
}
