package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepcrawl/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "deepcrawl",
	Aliases: []string{"dc"},
	Short:   "Deep web crawler and markdown processor",
	Long: `Deepcrawl crawls a website from a starting URL, saves the discovered
URLs to a JSON results file, and converts each one into a markdown file.

The two stages can run together (the default) or separately:

  deepcrawl --url https://docs.example.com --max-depth 2
  deepcrawl --mode crawl --url https://docs.example.com
  deepcrawl --mode process --results-file results.json

Run with no arguments or with --interactive to be prompted for options.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.deepcrawl/config.yaml)")

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().String("markdown-dir", "markdown_output", "Base directory for markdown output")
	rootCmd.PersistentFlags().String("converter", "crwl", "Converter command, or 'builtin' for the internal converter")
	rootCmd.PersistentFlags().String("cache", filepath.Join(home, ".deepcrawl", "crawl.db"), "Path to the crawl cache database")
	rootCmd.PersistentFlags().String("user-agent", "Mozilla/5.0 (compatible; deepcrawl/1.0)", "User-Agent header for HTTP requests")
	rootCmd.PersistentFlags().Duration("delay", defaultDelay, "Minimum delay between requests to the same host")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	viper.BindPFlag("markdown-dir", rootCmd.PersistentFlags().Lookup("markdown-dir"))
	viper.BindPFlag("converter", rootCmd.PersistentFlags().Lookup("converter"))
	viper.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))
	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("delay", rootCmd.PersistentFlags().Lookup("delay"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.Flags().BoolP("interactive", "i", false, "Run in interactive mode with prompts for options")
	rootCmd.Flags().String("mode", "both", "Operation mode: crawl, process or both")
	rootCmd.Flags().String("results-file", defaultResultsFile, "Path to the results JSON file")
	rootCmd.Flags().StringP("url", "u", "", "Starting URL for crawling")
	rootCmd.Flags().IntP("max-depth", "d", 2, "Maximum levels to crawl from the starting URL")
	rootCmd.Flags().IntP("max-pages", "p", 50, "Maximum pages to crawl")
	rootCmd.Flags().StringSliceP("keywords", "k", nil, "Keywords to prioritize during crawling (comma-separated)")
	rootCmd.Flags().Bool("include-external", false, "Include links to external domains")
	rootCmd.Flags().StringP("output", "o", "md-fit", "Output format: json, md or md-fit")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configPath := filepath.Join(home, ".deepcrawl")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Create config file if it doesn't exist
		if err := os.MkdirAll(configPath, os.ModePerm); err != nil {
			fmt.Fprintln(os.Stderr, "Error creating config directory:", err)
			os.Exit(1)
		}
		configFile := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := viper.SafeWriteConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintln(os.Stderr, "Error writing config file:", err)
					os.Exit(1)
				}
			}
		}
	}

	viper.SetEnvPrefix("DEEPCRAWL")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
