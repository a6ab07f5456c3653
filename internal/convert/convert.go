// Package convert turns crawled URLs into markdown files.
//
// Each record from a results file becomes one file under a domain-named
// subdirectory of the markdown directory. Conversion is delegated to an
// external converter binary by default; the builtin converter fetches the
// page itself and converts it with html-to-markdown.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"deepcrawl/internal/results"
)

// BuiltinConverter selects the in-process HTML to markdown converter
// instead of an external binary.
const BuiltinConverter = "builtin"

// Output formats accepted by the converter.
const (
	FormatJSON  = "json"
	FormatMD    = "md"
	FormatMDFit = "md-fit"
)

// ValidFormat reports whether format is one of json, md or md-fit.
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatMD, FormatMDFit:
		return true
	}
	return false
}

// Options configures a processing run.
type Options struct {
	// Format is the output format passed to the converter: json, md or md-fit
	Format string
	// MarkdownDir is the base directory for converted files
	MarkdownDir string
	// Converter is the external converter command, or BuiltinConverter
	Converter string
	// SourceURL names the crawled site; used to pick the output subdirectory.
	// When empty the domain of the first record is used instead.
	SourceURL string
	// UserAgent is sent by the builtin converter when fetching pages
	UserAgent string
}

// Summary reports the outcome of a processing run.
type Summary struct {
	Processed int
	Errors    int
	OutputDir string
}

// Processor converts a batch of crawl records to markdown files.
type Processor struct {
	opts    Options
	logger  *log.Logger
	out     io.Writer
	runCmd  func(ctx context.Context, name string, args ...string) error
	builtin *builtin
}

// New creates a Processor. A nil logger discards log output.
func New(opts Options, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Processor{
		opts:    opts,
		logger:  logger,
		out:     os.Stdout,
		runCmd:  runCommand,
		builtin: newBuiltin(opts.UserAgent),
	}
}

// SetOutput redirects the per-URL progress lines, primarily for tests.
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// Run converts every record to a file under the output directory. A failed
// conversion is logged and counted; the remaining records are still
// processed. An empty batch succeeds trivially with a zero summary. Run
// fails outright only when the output directory cannot be created.
func (p *Processor) Run(ctx context.Context, records []results.Result) (Summary, error) {
	domain := results.Domain(p.opts.SourceURL)
	if domain == "" && len(records) > 0 {
		domain = results.Domain(records[0].URL)
	}

	outputDir := p.opts.MarkdownDir
	if domain != "" {
		outputDir = filepath.Join(outputDir, domain)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(p.out, "Found %d URLs to process\n", len(records))
	fmt.Fprintf(p.out, "Output directory: %s\n", outputDir)

	summary := Summary{OutputDir: outputDir}
	for i, record := range records {
		outputPath := filepath.Join(outputDir, results.Slug(record.URL)+".md")
		fmt.Fprintf(p.out, "Processing %d/%d: %s\n", i+1, len(records), record.URL)

		if err := p.convertOne(ctx, record, outputPath); err != nil {
			summary.Errors++
			fmt.Fprintf(p.out, "  %s %s: %v\n", color.RedString("✗"), record.URL, err)
			p.logger.Error("conversion failed", "url", record.URL, "err", err)
			continue
		}

		summary.Processed++
		fmt.Fprintf(p.out, "  %s Created %s\n", color.GreenString("✓"), outputPath)
	}

	return summary, nil
}

// convertOne produces the output file for a single record.
func (p *Processor) convertOne(ctx context.Context, record results.Result, outputPath string) error {
	if p.opts.Converter == BuiltinConverter {
		return p.convertBuiltin(ctx, record, outputPath)
	}

	return p.runCmd(ctx, p.opts.Converter, "crawl", record.URL,
		"-o", p.opts.Format,
		"-O", outputPath)
}

// convertBuiltin handles the record in-process instead of shelling out.
func (p *Processor) convertBuiltin(ctx context.Context, record results.Result, outputPath string) error {
	if p.opts.Format == FormatJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		return os.WriteFile(outputPath, data, 0644)
	}

	markdown, err := p.builtin.Convert(ctx, record.URL, p.opts.Format)
	if err != nil {
		return err
	}

	return os.WriteFile(outputPath, []byte(markdown), 0644)
}

// runCommand executes the external converter, surfacing a tail of its
// stderr on failure.
func runCommand(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 200 {
			msg = msg[len(msg)-200:]
		}
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}
