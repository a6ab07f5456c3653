package convert

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepcrawl/internal/results"
)

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("md"))
	assert.True(t, ValidFormat("md-fit"))
	assert.False(t, ValidFormat("html"))
	assert.False(t, ValidFormat(""))
}

func TestRunInvokesConverterPerURL(t *testing.T) {
	dir := t.TempDir()
	records := []results.Result{
		{URL: "https://example.com/", Depth: 0},
		{URL: "https://example.com/docs", Depth: 1},
	}

	var calls [][]string
	p := New(Options{
		Format:      FormatMDFit,
		MarkdownDir: dir,
		Converter:   "crwl",
		SourceURL:   "https://example.com/",
	}, nil)
	p.SetOutput(&bytes.Buffer{})
	p.runCmd = func(ctx context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}

	summary, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, filepath.Join(dir, "example.com"), summary.OutputDir)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{
		"crwl", "crawl", "https://example.com/",
		"-o", "md-fit",
		"-O", filepath.Join(dir, "example.com", "index.md"),
	}, calls[0])
	assert.Equal(t, []string{
		"crwl", "crawl", "https://example.com/docs",
		"-o", "md-fit",
		"-O", filepath.Join(dir, "example.com", "docs.md"),
	}, calls[1])
}

func TestRunContinuesAfterConverterFailure(t *testing.T) {
	records := []results.Result{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/c"},
	}

	var attempted []string
	p := New(Options{
		Format:      FormatMD,
		MarkdownDir: t.TempDir(),
		Converter:   "crwl",
	}, nil)
	p.SetOutput(&bytes.Buffer{})
	p.runCmd = func(ctx context.Context, name string, args ...string) error {
		url := args[1]
		attempted = append(attempted, url)
		if strings.HasSuffix(url, "/b") {
			return fmt.Errorf("exit status 1")
		}
		return nil
	}

	summary, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Errors)
	// The failing URL must not halt the remaining batch.
	assert.Len(t, attempted, 3)
}

func TestRunDomainFallsBackToFirstRecord(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{
		Format:      FormatMD,
		MarkdownDir: dir,
		Converter:   "crwl",
	}, nil)
	p.SetOutput(&bytes.Buffer{})
	p.runCmd = func(ctx context.Context, name string, args ...string) error { return nil }

	summary, err := p.Run(context.Background(), []results.Result{
		{URL: "https://www.other.org/page"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "other.org"), summary.OutputDir)
}

func TestRunEmptyBatchSucceeds(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{Format: FormatMD, MarkdownDir: dir, Converter: "crwl"}, nil)
	out := &bytes.Buffer{}
	p.SetOutput(out)
	p.runCmd = func(ctx context.Context, name string, args ...string) error {
		t.Fatal("converter must not run for an empty batch")
		return nil
	}

	summary, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Errors)
	// No domain can be derived, so output lands in the base directory.
	assert.Equal(t, dir, summary.OutputDir)
	assert.Contains(t, out.String(), "Found 0 URLs to process")
}

func TestBuiltinJSONFormat(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{
		Format:      FormatJSON,
		MarkdownDir: dir,
		Converter:   BuiltinConverter,
		SourceURL:   "https://example.com/",
	}, nil)
	p.SetOutput(&bytes.Buffer{})

	record := results.Result{URL: "https://example.com/docs", Depth: 1, Title: "Docs"}
	summary, err := p.Run(context.Background(), []results.Result{record})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	data, err := os.ReadFile(filepath.Join(summary.OutputDir, "docs.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "https://example.com/docs"`)
	assert.Contains(t, string(data), `"depth": 1`)
}

func TestBuiltinMarkdownFormats(t *testing.T) {
	page := `<html><head><title>Guide</title></head><body>
		<nav><a href="/">navigation chrome</a></nav>
		<main><h1>The Guide</h1><p>Main body text.</p></main>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	t.Run("md-fit keeps only main content", func(t *testing.T) {
		dir := t.TempDir()
		p := New(Options{
			Format:      FormatMDFit,
			MarkdownDir: dir,
			Converter:   BuiltinConverter,
			SourceURL:   server.URL,
		}, nil)
		p.SetOutput(&bytes.Buffer{})

		summary, err := p.Run(context.Background(), []results.Result{{URL: server.URL + "/guide"}})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Processed)

		data, err := os.ReadFile(filepath.Join(summary.OutputDir, "guide.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "The Guide")
		assert.Contains(t, string(data), "Main body text.")
		assert.NotContains(t, string(data), "navigation chrome")
	})

	t.Run("md keeps the whole document", func(t *testing.T) {
		dir := t.TempDir()
		p := New(Options{
			Format:      FormatMD,
			MarkdownDir: dir,
			Converter:   BuiltinConverter,
			SourceURL:   server.URL,
		}, nil)
		p.SetOutput(&bytes.Buffer{})

		summary, err := p.Run(context.Background(), []results.Result{{URL: server.URL + "/guide"}})
		require.NoError(t, err)
		require.Equal(t, 1, summary.Processed)

		data, err := os.ReadFile(filepath.Join(summary.OutputDir, "guide.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "navigation chrome")
		assert.Contains(t, string(data), "Main body text.")
	})
}

func TestBuiltinCountsFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	p := New(Options{
		Format:      FormatMD,
		MarkdownDir: t.TempDir(),
		Converter:   BuiltinConverter,
		SourceURL:   server.URL,
	}, nil)
	p.SetOutput(&bytes.Buffer{})

	summary, err := p.Run(context.Background(), []results.Result{
		{URL: server.URL + "/a"},
		{URL: server.URL + "/b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 2, summary.Errors)
}
