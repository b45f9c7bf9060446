package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CatalogRecord is one plant in the store catalog. Records are loaded once at
// startup and treated as immutable for the process lifetime.
type CatalogRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ScientificName string `json:"scientific_name"`
	Care           Care   `json:"care"`
}

// Care holds the per-plant care attributes.
type Care struct {
	Light                  string `json:"light"`
	Water                  string `json:"water"`
	Soil                   string `json:"soil"`
	TemperatureAndHumidity string `json:"temperature_and_humidity"`
	Tips                   string `json:"tips"`
}

// Chunk is one unit of retrievable text. The ID uniquely identifies the
// source record or policy section; re-deriving the same source always yields
// the same ID and text.
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LoadCatalog reads the plant catalog from a JSON file.
func LoadCatalog(path string) ([]CatalogRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var records []CatalogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return records, nil
}

// RenderRecord converts a catalog record into its retrievable text chunk.
// The rendering is deterministic: a fixed order of labeled fields, so the
// same record always produces byte-identical text. An empty required field
// is an error rather than a blank substitution, because retrieval quality
// depends on every chunk being complete.
func RenderRecord(r CatalogRecord) (Chunk, error) {
	fields := []struct {
		label, value string
	}{
		{"id", r.ID},
		{"name", r.Name},
		{"description", r.Description},
		{"scientific_name", r.ScientificName},
		{"care.light", r.Care.Light},
		{"care.water", r.Care.Water},
		{"care.soil", r.Care.Soil},
		{"care.temperature_and_humidity", r.Care.TemperatureAndHumidity},
		{"care.tips", r.Care.Tips},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return Chunk{}, fmt.Errorf("%w: %s (record %q)", ErrMissingField, f.label, r.ID)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Plant name: %s\n", r.Name)
	fmt.Fprintf(&b, "Description: %s\n", r.Description)
	fmt.Fprintf(&b, "Scientific name: %s\n", r.ScientificName)
	fmt.Fprintf(&b, "Care, light levels: %s\n", r.Care.Light)
	fmt.Fprintf(&b, "Care, water needs: %s\n", r.Care.Water)
	fmt.Fprintf(&b, "Care, soil: %s\n", r.Care.Soil)
	fmt.Fprintf(&b, "Care, preferred temperature and humidity: %s\n", r.Care.TemperatureAndHumidity)
	fmt.Fprintf(&b, "Care, tips: %s", r.Care.Tips)

	return Chunk{
		ID:   r.ID,
		Text: b.String(),
		Metadata: map[string]string{
			"source": "catalog",
			"name":   r.Name,
		},
	}, nil
}

// RenderCatalog renders every record in order. It fails on the first
// incomplete record so a bad catalog never produces a partial chunk set.
func RenderCatalog(records []CatalogRecord) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(records))
	for _, r := range records {
		c, err := RenderRecord(r)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}
