package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"deepcrawl/internal/results"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the URLs in a results file",
	RunE: func(cmd *cobra.Command, args []string) error {
		resultsFile, _ := cmd.Flags().GetString("results-file")

		records, err := results.Load(resultsFile)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "URL", "Depth", "Title"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignLeft, WidthMax: 80},
			{Number: 4, Align: text.AlignLeft, WidthMax: 50},
		})

		for i, record := range records {
			t.AppendRow(table.Row{i + 1, record.URL, record.Depth, record.Title})
		}
		t.Render()

		fmt.Printf("%d URLs in %s\n", len(records), resultsFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("results-file", defaultResultsFile, "Path to the results JSON file")
}
