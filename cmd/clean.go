package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deepcrawl/internal/cache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes all entries from the crawl cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			reader := bufio.NewReader(os.Stdin)
			fmt.Println(color.RedString("WARNING: This will delete all cached crawl data and is not recoverable."))
			fmt.Print("Are you sure you want to continue? (yes/no): ")

			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			if strings.TrimSpace(strings.ToLower(response)) != "yes" {
				fmt.Println("Clean operation cancelled.")
				return nil
			}
		}

		store, err := cache.Open(viper.GetString("cache"))
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer store.Close()

		n, err := store.Len()
		if err != nil {
			return err
		}
		if err := store.Clean(); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}

		fmt.Printf("Cache cleaned: %d entries removed.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
