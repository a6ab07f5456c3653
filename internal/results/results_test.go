package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "root path", url: "https://example.com/", want: "index"},
		{name: "no path", url: "https://example.com", want: "index"},
		{name: "single segment", url: "https://example.com/docs", want: "docs"},
		{name: "nested path", url: "https://example.com/docs/getting-started/install", want: "docs_getting-started_install"},
		{name: "html extension stripped", url: "https://example.com/docs/api.html", want: "docs_api"},
		{name: "trailing slash trimmed", url: "https://example.com/docs/guide/", want: "docs_guide"},
		{name: "query ignored", url: "https://example.com/search?q=go", want: "search"},
		{name: "dot in directory name truncates", url: "https://example.com/v1.2/intro", want: "v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.url))
			// Deterministic: repeated derivation gives the same name.
			assert.Equal(t, Slug(tt.url), Slug(tt.url))
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain host", url: "https://example.com/docs", want: "example.com"},
		{name: "www stripped", url: "https://www.example.com/", want: "example.com"},
		{name: "port stripped", url: "http://example.com:8080/docs", want: "example.com"},
		{name: "www and port", url: "http://www.example.com:3000", want: "example.com"},
		{name: "empty url", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Domain(tt.url))
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	records := []Result{
		{URL: "https://example.com/", Depth: 0, Title: "Home"},
		{URL: "https://example.com/docs", Depth: 1, Title: "Docs"},
		{URL: "https://example.com/docs/api", Depth: 2, Title: ""},
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "results.json")
	require.NoError(t, Save(records, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Save(nil, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, Save([]Result{{URL: "https://example.com"}}, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.json", entries[0].Name())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("record without url", func(t *testing.T) {
		path := filepath.Join(dir, "nourl.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"depth": 1, "title": "x"}]`), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
