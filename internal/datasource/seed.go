package datasource

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// LoadSeed reads a JSON array of dorm records. Records may use any of the
// field spellings the normalizer understands.
func LoadSeed(path string) ([]model.RawRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var recs []model.RawRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return recs, nil
}
