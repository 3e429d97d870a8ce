package tolls

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Dataset is the versioned toll-facility document produced by the rate ingestion pipeline.
type Dataset struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Timezone    string     `json:"timezone,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	Facilities  []Facility `json:"facilities"`
}

// ParseDataset decodes a JSON dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode toll dataset: %w", err)
	}
	return &ds, nil
}

// ParseDatasetJSON5 decodes a hand-edited JSON5 dataset (comments, trailing commas, unquoted keys).
func ParseDatasetJSON5(data []byte) (*Dataset, error) {
	var raw interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json5 toll dataset: %w", err)
	}
	canonical, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize json5 toll dataset: %w", err)
	}
	return ParseDataset(canonical)
}

// Encode serializes the dataset in the same indented layout the ingestion pipeline writes.
func (ds *Dataset) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReadDataset reads a dataset file; files ending in .json5 are decoded as JSON5.
func ReadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read toll dataset %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json5") {
		return ParseDatasetJSON5(data)
	}
	return ParseDataset(data)
}
