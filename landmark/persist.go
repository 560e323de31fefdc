// File: persist.go
// Role: JSON persistence for the landmark Table. Uses
// goccy/go-json as a drop-in, faster replacement for encoding/json — same
// Marshal/Unmarshal/NewEncoder/NewDecoder surface, adopted the way
// vanderheijden86-beadwork and smantzavinos-beads_viewer depend on it for
// their own JSON-heavy persistence.

package landmark

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Save writes t as JSON to path.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("landmark: create %q: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("landmark: encode table: %w", err)
	}

	return nil
}

// Load reads a landmark Table from a JSON file at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("landmark: read %q: %w", path, err)
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("landmark: decode %q: %w", path, err)
	}
	if t.Distances == nil {
		t.Distances = map[string]map[string]float64{}
	}

	return &t, nil
}
