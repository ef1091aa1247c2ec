package model

import (
	"sort"
	"time"
)

// CatalogEntry locates one processed device/day file.
type CatalogEntry struct {
	Device string
	Date   time.Time
	Name   string
}

// DateKey returns the entry's date in file name form.
func (e CatalogEntry) DateKey() string {
	return e.Date.Format(FileDateLayout)
}

// Catalog indexes the processed directory by device and date. File names
// that do not follow the naming contract are kept in Malformed rather than
// failing the whole listing.
type Catalog struct {
	Entries   []CatalogEntry
	Malformed []string
}

// Add records an entry, keeping Entries ordered by date, then device.
func (c *Catalog) Add(e CatalogEntry) {
	idx := sort.Search(len(c.Entries), func(i int) bool {
		return entryLess(e, c.Entries[i])
	})
	c.Entries = append(c.Entries, CatalogEntry{})
	copy(c.Entries[idx+1:], c.Entries[idx:])
	c.Entries[idx] = e
}

func entryLess(a, b CatalogEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Device < b.Device
}

// Dates returns the distinct dates, newest first, in DD-MM-YYYY form.
func (c Catalog) Dates() []string {
	var dates []string
	for i := len(c.Entries) - 1; i >= 0; i-- {
		key := c.Entries[i].DateKey()
		if len(dates) == 0 || dates[len(dates)-1] != key {
			dates = append(dates, key)
		}
	}
	return dates
}

// ForDate returns the entries whose date equals the DD-MM-YYYY key.
func (c Catalog) ForDate(date string) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range c.Entries {
		if e.DateKey() == date {
			out = append(out, e)
		}
	}
	return out
}

// Devices returns the sorted device names present on a date.
func (c Catalog) Devices(date string) []string {
	var devices []string
	for _, e := range c.ForDate(date) {
		devices = append(devices, e.Device)
	}
	return devices
}

// Find looks up a single device/date entry.
func (c Catalog) Find(device, date string) (CatalogEntry, bool) {
	for _, e := range c.Entries {
		if e.Device == device && e.DateKey() == date {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Range returns the first and last dates in the catalog.
func (c Catalog) Range() (TimeRange, bool) {
	if len(c.Entries) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{
		Start: c.Entries[0].Date,
		End:   c.Entries[len(c.Entries)-1].Date,
	}, true
}
