package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"solar_ingest/internal/clean"
)

type Config struct {
	Server   ServerConfig
	Cleaning CleaningConfig
}

type ServerConfig struct {
	Addr           string
	UploadDir      string
	ProcessedDir   string
	MaxUploadBytes int64
}

// CleaningConfig holds the thresholds and bucket widths shared by the
// ingestion and analysis paths. The two paths have their own widths.
type CleaningConfig struct {
	DayStart         time.Duration
	DayEnd           time.Duration
	OutlierThreshold float64
	IntensityPolicy  clean.IntensityPolicy
	IngestInterval   time.Duration
	AnalysisInterval time.Duration
}

// Filter builds the daylight/outlier filter for this configuration.
func (c CleaningConfig) Filter() clean.Filter {
	return clean.Filter{
		DayStart:  c.DayStart,
		DayEnd:    c.DayEnd,
		Threshold: c.OutlierThreshold,
		Policy:    c.IntensityPolicy,
	}
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":5000",
			UploadDir:      "uploads",
			ProcessedDir:   "processed",
			MaxUploadBytes: 16 << 20,
		},
		Cleaning: CleaningConfig{
			DayStart:         6 * time.Hour,
			DayEnd:           18 * time.Hour,
			OutlierThreshold: clean.DefaultOutlierThreshold,
			IntensityPolicy:  clean.LaxIntensity,
			IngestInterval:   5 * time.Minute,
			AnalysisInterval: 10 * time.Minute,
		},
	}
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	d := Default()

	dayStart, err := getEnvAsClock("DAY_START", d.Cleaning.DayStart)
	if err != nil {
		return nil, err
	}
	dayEnd, err := getEnvAsClock("DAY_END", d.Cleaning.DayEnd)
	if err != nil {
		return nil, err
	}
	if dayEnd < dayStart {
		return nil, fmt.Errorf("DAY_END %s is before DAY_START %s", formatClock(dayEnd), formatClock(dayStart))
	}

	policy, err := clean.ParseIntensityPolicy(getEnv("INTENSITY_POLICY", string(d.Cleaning.IntensityPolicy)))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", d.Server.Addr),
			UploadDir:      getEnv("UPLOAD_DIR", d.Server.UploadDir),
			ProcessedDir:   getEnv("PROCESSED_DIR", d.Server.ProcessedDir),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", d.Server.MaxUploadBytes),
		},
		Cleaning: CleaningConfig{
			DayStart:         dayStart,
			DayEnd:           dayEnd,
			OutlierThreshold: getEnvAsFloat("OUTLIER_THRESHOLD", d.Cleaning.OutlierThreshold),
			IntensityPolicy:  policy,
			IngestInterval:   getEnvAsDuration("INGEST_INTERVAL", d.Cleaning.IngestInterval),
			AnalysisInterval: getEnvAsDuration("ANALYSIS_INTERVAL", d.Cleaning.AnalysisInterval),
		},
	}

	if config.Cleaning.IngestInterval <= 0 || config.Cleaning.AnalysisInterval <= 0 {
		return nil, fmt.Errorf("bucket intervals must be positive")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsClock reads an HH:MM or HH:MM:SS time of day as an offset from
// midnight. A malformed value is an error, not the default.
func getEnvAsClock(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	return ParseClock(valueStr)
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parsing clock %q: want HH:MM[:SS]", s)
	}
	limits := []int{24, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}

	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("parsing clock %q: bad field %q", s, p)
		}
		d += time.Duration(n) * units[i]
	}
	if d > 24*time.Hour {
		return 0, fmt.Errorf("parsing clock %q: past midnight", s)
	}
	return d, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
