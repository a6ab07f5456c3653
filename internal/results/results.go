// Package results defines the crawl result record and its JSON persistence.
//
// A crawl run produces an ordered list of records, serialized as a JSON
// array. The same file is read back by the process stage, so Save and Load
// must round-trip records unchanged.
package results

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Result is a single crawled page.
type Result struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
	Title string `json:"title"`
}

// Save writes records to path as an indented JSON array, creating parent
// directories as needed. The file is written to a temporary sibling first
// and renamed into place so a crashed run never leaves a truncated file.
func Save(records []Result, path string) error {
	if records == nil {
		records = []Result{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	tmp := path + ".tmp-" + uuid.New().String()[:8]
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move results into place: %w", err)
	}

	return nil
}

// Load reads a JSON array of records from path.
func Load(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var records []Result
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}

	for i, r := range records {
		if r.URL == "" {
			return nil, fmt.Errorf("results file %s: record %d has no url", path, i)
		}
	}

	return records, nil
}

// Slug derives a markdown filename stem from a URL path: slashes become
// underscores, an empty path becomes "index", and anything from the first
// dot on is dropped so extensions like .html never leak into the name.
func Slug(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "index"
	}

	slug := strings.Trim(parsed.Path, "/")
	if slug == "" {
		return "index"
	}
	slug = strings.ReplaceAll(slug, "/", "_")
	if i := strings.Index(slug, "."); i >= 0 {
		slug = slug[:i]
	}
	if slug == "" {
		return "index"
	}

	return slug
}

// Domain extracts the host from a URL with any "www." prefix and port
// stripped. Used for naming the per-site output directory.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(parsed.Host, "www.")
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}

	return host
}
