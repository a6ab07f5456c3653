package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepcrawl/internal/cache"
	"deepcrawl/internal/convert"
	"deepcrawl/internal/crawler"
	"deepcrawl/internal/prompt"
	"deepcrawl/internal/results"
)

const (
	defaultResultsFile = "results.json"
	defaultDelay       = 500 * time.Millisecond
)

// options carries the resolved pipeline settings for one run.
type options struct {
	Interactive     bool
	Mode            string
	ResultsFile     string
	URL             string
	MaxDepth        int
	MaxPages        int
	Keywords        []string
	IncludeExternal bool
	Output          string
}

func optionsFromFlags(cmd *cobra.Command) options {
	var opts options
	opts.Interactive, _ = cmd.Flags().GetBool("interactive")
	opts.Mode, _ = cmd.Flags().GetString("mode")
	opts.ResultsFile, _ = cmd.Flags().GetString("results-file")
	opts.URL, _ = cmd.Flags().GetString("url")
	opts.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	opts.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	opts.Keywords, _ = cmd.Flags().GetStringSlice("keywords")
	opts.IncludeExternal, _ = cmd.Flags().GetBool("include-external")
	opts.Output, _ = cmd.Flags().GetString("output")
	return opts
}

// newRunLogger builds the run logger tagged with a short run ID.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "deepcrawl",
	})
	if viper.GetBool("verbose") {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger.With("run", uuid.New().String()[:8])
}

// runPipeline dispatches the crawl and process stages based on --mode.
func runPipeline(cmd *cobra.Command, args []string) error {
	opts := optionsFromFlags(cmd)

	// No flags and no args means the user just typed the command name:
	// fall into interactive mode, as with an explicit --interactive.
	if opts.Interactive || (cmd.Flags().NFlag() == 0 && len(args) == 0) {
		if err := configureInteractively(&opts); err != nil {
			return err
		}
	}

	switch opts.Mode {
	case "crawl", "process", "both":
	default:
		return fmt.Errorf("invalid mode %q: must be crawl, process or both", opts.Mode)
	}
	if !convert.ValidFormat(opts.Output) {
		return fmt.Errorf("invalid output format %q: must be json, md or md-fit", opts.Output)
	}

	logger := newRunLogger()

	if opts.Mode == "process" {
		fmt.Printf("Processing existing results from: %s\n", opts.ResultsFile)
		if _, err := os.Stat(opts.ResultsFile); err != nil {
			return fmt.Errorf("results file not found: %s", opts.ResultsFile)
		}
		if err := runProcess(cmd, opts, logger); err != nil {
			return fmt.Errorf("error during processing: %w", err)
		}
		fmt.Println("\nProcessing completed successfully!")
		return nil
	}

	if opts.URL == "" {
		return fmt.Errorf("URL is required for crawling: provide a starting URL with --url")
	}

	if err := runCrawl(cmd, opts, logger); err != nil {
		return fmt.Errorf("error during crawl: %w", err)
	}

	if opts.Mode == "both" && opts.Output != convert.FormatJSON {
		fmt.Printf("Processing URLs to %s format...\n", opts.Output)
		if err := runProcess(cmd, opts, logger); err != nil {
			return fmt.Errorf("error during processing: %w", err)
		}
	}

	fmt.Println("\nDeepcrawl completed successfully!")
	return nil
}

// runCrawl crawls from opts.URL and writes the results file.
func runCrawl(cmd *cobra.Command, opts options, logger *log.Logger) error {
	fmt.Printf("Starting deep crawl of %s\n", color.CyanString(opts.URL))
	fmt.Printf("Max depth: %d, Max pages: %d\n", opts.MaxDepth, opts.MaxPages)

	config := crawler.DefaultConfig()
	config.MaxDepth = opts.MaxDepth
	config.MaxPages = opts.MaxPages
	config.IncludeExternal = opts.IncludeExternal
	config.Keywords = opts.Keywords
	config.UserAgent = viper.GetString("user-agent")
	config.RequestDelay = viper.GetDuration("delay")

	// The cache is best effort: a failure to open it degrades to an
	// uncached crawl rather than aborting the run.
	var store *cache.Cache
	if path := viper.GetString("cache"); path != "" {
		var err error
		store, err = cache.Open(path)
		if err != nil {
			logger.Warn("crawl cache unavailable", "path", path, "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithSuffix(" crawling..."), spinner.WithWriter(os.Stderr))
	if !viper.GetBool("verbose") {
		s.Start()
	}

	c := crawler.New(config, store, logger)
	records, err := c.Crawl(cmd.Context(), opts.URL)
	s.Stop()
	if err != nil {
		return err
	}

	fmt.Printf("Crawled %d pages\n", len(records))

	if err := results.Save(records, opts.ResultsFile); err != nil {
		return err
	}
	abs, err := filepath.Abs(opts.ResultsFile)
	if err != nil {
		abs = opts.ResultsFile
	}
	fmt.Printf("Results saved to %s\n", abs)

	return nil
}

// runProcess converts every URL in the results file to a markdown file.
func runProcess(cmd *cobra.Command, opts options, logger *log.Logger) error {
	records, err := results.Load(opts.ResultsFile)
	if err != nil {
		return err
	}

	processor := convert.New(convert.Options{
		Format:      opts.Output,
		MarkdownDir: viper.GetString("markdown-dir"),
		Converter:   viper.GetString("converter"),
		SourceURL:   opts.URL,
		UserAgent:   viper.GetString("user-agent"),
	}, logger)

	summary, err := processor.Run(cmd.Context(), records)
	if err != nil {
		return err
	}

	renderSummary(summary)
	return nil
}

// renderSummary prints the processing outcome as a table.
func renderSummary(summary convert.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Processed", "Errors", "Output Directory"})
	t.AppendRow(table.Row{summary.Processed, summary.Errors, summary.OutputDir})
	t.Render()

	if summary.Errors > 0 {
		fmt.Println(color.YellowString("Processing complete: %d created, %d errors", summary.Processed, summary.Errors))
	} else {
		fmt.Println(color.GreenString("Processing complete: %d created, no errors", summary.Processed))
	}
}

// configureInteractively prompts for the pipeline options, showing current
// values as defaults.
func configureInteractively(opts *options) error {
	fmt.Println("\n=== Deepcrawl Interactive Configuration ===")

	p := prompt.New(os.Stdin, os.Stdout)

	url, err := p.String("Enter starting URL", firstNonEmpty(opts.URL, "https://docs.example.com"))
	if err != nil {
		return err
	}
	opts.URL = url

	if opts.MaxDepth, err = p.Int("Maximum crawl depth", opts.MaxDepth); err != nil {
		return err
	}
	if opts.MaxPages, err = p.Int("Maximum pages to crawl", opts.MaxPages); err != nil {
		return err
	}
	if opts.Keywords, err = p.Keywords("Keywords to prioritize (comma-separated, leave empty for none)", opts.Keywords); err != nil {
		return err
	}
	if opts.IncludeExternal, err = p.YesNo("Include external domains?", opts.IncludeExternal); err != nil {
		return err
	}

	formats := []string{convert.FormatJSON, convert.FormatMD, convert.FormatMDFit}
	descriptions := []string{
		"Only save URLs to the results file without processing",
		"Process URLs from the results file into full markdown",
		"Process URLs from the results file into optimized markdown",
	}
	if opts.Output, err = p.Select("Select output format:", formats, descriptions, opts.Output); err != nil {
		return err
	}

	fmt.Println("\nConfiguration complete. Starting process...")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
