// Package sampledata embeds the demo fixtures internal/source/sample
// reads from, replacing original_source/layers/sensor.py's
// load_emails/load_github_prs/load_health_data/load_finance_data file
// reads from data/sample_*.json with compiled-in JSON, the same
// embed.FS approach pkg/database/client.go uses for its migrations.
package sampledata

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// Load unmarshals one embedded fixture file (without its .json
// extension — "emails", "github_prs", "health_records",
// "transactions") into a slice of items.
func Load(name string) ([]map[string]any, error) {
	raw, err := fixturesFS.ReadFile(fmt.Sprintf("fixtures/%s.json", name))
	if err != nil {
		return nil, fmt.Errorf("sampledata: load %s: %w", name, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("sampledata: parse %s: %w", name, err)
	}
	return items, nil
}
