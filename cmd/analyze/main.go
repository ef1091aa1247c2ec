package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"solar_ingest/internal/analysis"
	"solar_ingest/internal/clean"
	"solar_ingest/internal/config"
	"solar_ingest/internal/ingest"
	"solar_ingest/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	file := flag.String("file", "", "CSV export to analyze")
	width := flag.Duration("interval", cfg.Cleaning.AnalysisInterval, "chart bucket width")
	chartOut := flag.String("chart-out", "", "write chart data as JSON to this file")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	records, err := ingest.ReadFile(*file, "analysis")
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	filter := cfg.Cleaning.Filter()
	report := analyze(records, filter, *width)
	printReport(os.Stdout, *file, report)

	if *chartOut != "" {
		if err := writeChart(*chartOut, report.Chart); err != nil {
			log.Fatalf("Failed to write chart data: %v", err)
		}
		fmt.Printf("  Chart data written to %s\n", *chartOut)
	}
}

type report struct {
	Summary      analysis.Summary
	NightRemoved int
	Chart        analysis.Series
	Profile      analysis.Profile
	Range        model.TimeRange
}

func analyze(records []model.Record, f clean.Filter, width time.Duration) report {
	daytime := analysis.Daytime(records, f)
	r := report{
		Summary:      analysis.Summarize(daytime, f),
		NightRemoved: len(records) - len(daytime),
		Chart:        analysis.ChartData(daytime, width, f),
		Profile:      analysis.HourlyProfile(daytime, f),
	}
	for i, rec := range daytime {
		if i == 0 || rec.Timestamp.Before(r.Range.Start) {
			r.Range.Start = rec.Timestamp
		}
		if rec.Timestamp.After(r.Range.End) {
			r.Range.End = rec.Timestamp
		}
	}
	return r
}

func printReport(w io.Writer, name string, r report) {
	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Solar Intensity Analysis: %s\n", name)
	if !r.Range.Start.IsZero() {
		fmt.Fprintf(w, "  Data: %s to %s\n",
			r.Range.Start.Format(model.TimestampLayout), r.Range.End.Format(model.TimestampLayout))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Nighttime readings removed: %d\n", r.NightRemoved)
	fmt.Fprintf(w, "  Total readings:             %d\n", s.TotalReadings)
	fmt.Fprintf(w, "  Daytime readings:           %d\n", s.DaytimeReadings)
	fmt.Fprintf(w, "  Average intensity:          %.2f\n", s.Average)
	fmt.Fprintf(w, "  Max intensity:              %.2f\n", s.Max)
	fmt.Fprintf(w, "  Min intensity:              %.2f\n", s.Min)
	fmt.Fprintf(w, "  Outliers:                   %d\n", s.Outliers)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Chart points:               %d\n", len(r.Chart.Points))
	fmt.Fprintf(w, "  Chart outliers:             %d\n", len(r.Chart.Outliers))

	p := r.Profile
	if p.Counts[p.PeakHour] == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Hourly profile (peak %02d:00)\n", p.PeakHour)
	for h := 0; h < 24; h++ {
		if p.Counts[h] == 0 {
			continue
		}
		fmt.Fprintf(w, "    %02d:00  %8.2f  %4.0f%%  (%d readings)\n", h, p.Mean[h], p.Factor[h]*100, p.Counts[h])
	}
}

type chartJSON struct {
	Labels   []string       `json:"labels"`
	Values   []float64      `json:"values"`
	Outliers []outlierPoint `json:"outliers"`
}

type outlierPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func writeChart(path string, s analysis.Series) error {
	out := chartJSON{
		Labels:   make([]string, 0, len(s.Points)),
		Values:   make([]float64, 0, len(s.Points)),
		Outliers: make([]outlierPoint, 0, len(s.Outliers)),
	}
	for _, p := range s.Points {
		out.Labels = append(out.Labels, p.Label)
		out.Values = append(out.Values, p.Value)
	}
	for _, p := range s.Outliers {
		out.Outliers = append(out.Outliers, outlierPoint{Label: p.Label, Value: p.Value})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
