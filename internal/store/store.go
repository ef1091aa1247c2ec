package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"solar_ingest/internal/model"
)

var (
	ErrNotFound        = errors.New("processed file not found")
	ErrNothingToDelete = errors.New("no processed files match")
	ErrMissingColumn   = errors.New("processed file lacks a required column")
	errUnsafeEntryName = errors.New("unsafe catalog entry name")
)

// Store keeps processed device/day files in a flat directory. It does no
// locking: two writers of the same device/day race and the last one wins.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the processed directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a device/day file, replacing any previous file for the same
// device and date. It returns the written path.
func (s *Store) Save(day model.DeviceDay) (string, error) {
	if err := model.CheckDevice(day.Device); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed directory: %w", err)
	}

	path := filepath.Join(s.dir, day.FileName())
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	if err := Encode(tmp, day); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("replacing %s: %w", path, err)
	}
	return path, nil
}

// Catalog lists the processed directory. A missing directory is an empty
// catalog. Non-CSV files are ignored; CSV files that do not follow the
// naming contract are reported in Malformed.
func (s *Store) Catalog() (model.Catalog, error) {
	var c model.Catalog

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading processed directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		device, date, err := model.ParseFileName(entry.Name())
		if err != nil {
			c.Malformed = append(c.Malformed, entry.Name())
			continue
		}
		c.Add(model.CatalogEntry{Device: device, Date: date, Name: entry.Name()})
	}
	return c, nil
}

// Load reads a processed file back into a DeviceDay.
func (s *Store) Load(e model.CatalogEntry) (model.DeviceDay, error) {
	path, err := s.path(e)
	if err != nil {
		return model.DeviceDay{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.DeviceDay{}, fmt.Errorf("%w: %s", ErrNotFound, e.Name)
	}
	if err != nil {
		return model.DeviceDay{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	day, err := Decode(f, e.Device)
	if err != nil {
		return model.DeviceDay{}, fmt.Errorf("reading %s: %w", e.Name, err)
	}
	day.Date = e.Date
	return day, nil
}

// Delete removes one device's file for a date, or every file for the date
// when device is empty. date is in DD-MM-YYYY form. It stops at the first
// failure and returns the names removed so far.
func (s *Store) Delete(date, device string) ([]string, error) {
	c, err := s.Catalog()
	if err != nil {
		return nil, err
	}

	var targets []model.CatalogEntry
	if device != "" {
		if e, ok := c.Find(device, date); ok {
			targets = append(targets, e)
		}
	} else {
		targets = c.ForDate(date)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: date %q device %q", ErrNothingToDelete, date, device)
	}

	var removed []string
	for _, e := range targets {
		path, err := s.path(e)
		if err != nil {
			return removed, err
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("deleting %s: %w", e.Name, err)
		}
		removed = append(removed, e.Name)
	}
	return removed, nil
}

func (s *Store) path(e model.CatalogEntry) (string, error) {
	if e.Name == "" || filepath.Base(e.Name) != e.Name {
		return "", fmt.Errorf("%w: %q", errUnsafeEntryName, e.Name)
	}
	return filepath.Join(s.dir, e.Name), nil
}
