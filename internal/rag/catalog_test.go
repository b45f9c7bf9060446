package rag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() CatalogRecord {
	return CatalogRecord{
		ID:             "plant-001",
		Name:           "Monstera Deliciosa",
		Description:    "A climbing plant with large, fenestrated leaves.",
		ScientificName: "Monstera deliciosa",
		Care: Care{
			Light:                  "Bright, indirect light",
			Water:                  "Water when the top inch of soil is dry",
			Soil:                   "Well-draining aroid mix",
			TemperatureAndHumidity: "18-27C, medium to high humidity",
			Tips:                   "Wipe leaves monthly and provide a moss pole",
		},
	}
}

func TestRenderRecordDeterministic(t *testing.T) {
	r := sampleRecord()

	first, err := RenderRecord(r)
	require.NoError(t, err)
	second, err := RenderRecord(r)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, r.ID, first.ID)
}

func TestRenderRecordText(t *testing.T) {
	chunk, err := RenderRecord(sampleRecord())
	require.NoError(t, err)

	assert.Contains(t, chunk.Text, "Plant name: Monstera Deliciosa")
	assert.Contains(t, chunk.Text, "Scientific name: Monstera deliciosa")
	assert.Contains(t, chunk.Text, "Care, light levels: Bright, indirect light")
	assert.Contains(t, chunk.Text, "Care, tips: Wipe leaves monthly")
	assert.Equal(t, "catalog", chunk.Metadata["source"])
}

func TestRenderRecordMissingFields(t *testing.T) {
	cases := map[string]func(*CatalogRecord){
		"name":        func(r *CatalogRecord) { r.Name = "" },
		"description": func(r *CatalogRecord) { r.Description = "" },
		"scientific":  func(r *CatalogRecord) { r.ScientificName = "" },
		"light":       func(r *CatalogRecord) { r.Care.Light = "" },
		"water":       func(r *CatalogRecord) { r.Care.Water = "  " },
		"soil":        func(r *CatalogRecord) { r.Care.Soil = "" },
		"temperature": func(r *CatalogRecord) { r.Care.TemperatureAndHumidity = "" },
		"tips":        func(r *CatalogRecord) { r.Care.Tips = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := sampleRecord()
			mutate(&r)

			_, err := RenderRecord(r)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestRenderCatalogStopsOnBadRecord(t *testing.T) {
	good := sampleRecord()
	bad := sampleRecord()
	bad.ID = "plant-002"
	bad.Care.Water = ""

	_, err := RenderCatalog([]CatalogRecord{good, bad})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plants.json")
	payload := `[{"id":"plant-001","name":"Monstera","description":"Big leaves.",
		"scientific_name":"Monstera deliciosa",
		"care":{"light":"bright","water":"weekly","soil":"airy",
		"temperature_and_humidity":"warm","tips":"mist"}}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	records, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "plant-001", records[0].ID)
	assert.Equal(t, "weekly", records[0].Care.Water)
}

func TestLoadCatalogNotFound(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCatalogParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadCatalog(path)
	assert.ErrorIs(t, err, ErrParse)
}
