package clean

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"solar_ingest/internal/model"
)

// DefaultOutlierThreshold is the intensity ceiling above which a reading is
// dropped.
const DefaultOutlierThreshold = 1000.0

// IntensityPolicy decides what a non-numeric intensity cell means.
type IntensityPolicy string

const (
	// LaxIntensity reads a non-numeric intensity as 0, which always passes
	// the outlier check.
	LaxIntensity IntensityPolicy = "lax"
	// StrictIntensity drops rows whose intensity is not a number.
	StrictIntensity IntensityPolicy = "strict"
)

// ParseIntensityPolicy accepts "lax" or "strict".
func ParseIntensityPolicy(s string) (IntensityPolicy, error) {
	switch p := IntensityPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case LaxIntensity, StrictIntensity:
		return p, nil
	}
	return "", fmt.Errorf("unknown intensity policy %q", s)
}

// Intensity returns the numeric value of a cell under the policy. NaN and
// infinities count as non-numeric. ok is false only when the strict policy
// rejects the cell.
func (p IntensityPolicy) Intensity(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p != StrictIntensity
	}
	return v, true
}

// Verdict is the outcome of filtering one record.
type Verdict int

const (
	Kept Verdict = iota
	Nighttime
	Outlier
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Kept:
		return "kept"
	case Nighttime:
		return "nighttime"
	case Outlier:
		return "outlier"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Filter keeps daylight readings at or below the outlier threshold. DayStart
// and DayEnd are offsets from midnight and both bounds are inclusive.
type Filter struct {
	DayStart  time.Duration
	DayEnd    time.Duration
	Threshold float64
	Policy    IntensityPolicy
}

// NewFilter returns the 06:00-18:00, 1000-ceiling, lax filter.
func NewFilter() Filter {
	return Filter{
		DayStart:  6 * time.Hour,
		DayEnd:    18 * time.Hour,
		Threshold: DefaultOutlierThreshold,
		Policy:    LaxIntensity,
	}
}

// Daylight reports whether t's time of day lies inside [DayStart, DayEnd].
func (f Filter) Daylight(t time.Time) bool {
	tod := t.Sub(model.Day(t))
	return tod >= f.DayStart && tod <= f.DayEnd
}

// Check classifies a record. The daylight check runs first so a nighttime
// outlier is counted as nighttime.
func (f Filter) Check(r model.Record) Verdict {
	if !f.Daylight(r.Timestamp) {
		return Nighttime
	}
	v, ok := f.Policy.Intensity(r.Fields[model.ColumnValue])
	if !ok {
		return Invalid
	}
	if !(v <= f.Threshold) {
		return Outlier
	}
	return Kept
}

// Counts tallies filter verdicts.
type Counts map[Verdict]int

// Apply returns the kept records in input order and the verdict tally.
func (f Filter) Apply(records []model.Record) ([]model.Record, Counts) {
	counts := make(Counts, 4)
	kept := make([]model.Record, 0, len(records))
	for _, r := range records {
		v := f.Check(r)
		counts[v]++
		if v == Kept {
			kept = append(kept, r)
		}
	}
	return kept, counts
}
