package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func testCatalog() Catalog {
	var c Catalog
	c.Add(CatalogEntry{Device: "D2", Date: day(1), Name: "D2_01-06-2024.csv"})
	c.Add(CatalogEntry{Device: "D1", Date: day(2), Name: "D1_02-06-2024.csv"})
	c.Add(CatalogEntry{Device: "D1", Date: day(1), Name: "D1_01-06-2024.csv"})
	return c
}

func TestCatalog_AddKeepsOrder(t *testing.T) {
	c := testCatalog()
	require.Len(t, c.Entries, 3)
	assert.Equal(t, "D1_01-06-2024.csv", c.Entries[0].Name)
	assert.Equal(t, "D2_01-06-2024.csv", c.Entries[1].Name)
	assert.Equal(t, "D1_02-06-2024.csv", c.Entries[2].Name)
}

func TestCatalog_Dates(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, []string{"02-06-2024", "01-06-2024"}, c.Dates())
	assert.Empty(t, Catalog{}.Dates())
}

func TestCatalog_Devices(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, []string{"D1", "D2"}, c.Devices("01-06-2024"))
	assert.Equal(t, []string{"D1"}, c.Devices("02-06-2024"))
	assert.Empty(t, c.Devices("03-06-2024"))
}

func TestCatalog_Find(t *testing.T) {
	c := testCatalog()

	e, ok := c.Find("D2", "01-06-2024")
	require.True(t, ok)
	assert.Equal(t, "D2_01-06-2024.csv", e.Name)

	_, ok = c.Find("D2", "02-06-2024")
	assert.False(t, ok)
}

func TestCatalog_Range(t *testing.T) {
	_, ok := Catalog{}.Range()
	assert.False(t, ok)

	tr, ok := testCatalog().Range()
	require.True(t, ok)
	assert.Equal(t, day(1), tr.Start)
	assert.Equal(t, day(2), tr.End)
}
