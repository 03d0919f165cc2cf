package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered preview in previews.json.
type ManifestEntry struct {
	Name  string `json:"name"`
	Stem  string `json:"stem"`
	Image string `json:"image"`
}

// WriteManifest writes the successful results as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{Name: r.Name, Stem: r.Stem, Image: r.Image})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
