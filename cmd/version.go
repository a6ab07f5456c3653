package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"deepcrawl/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		shortFlag, _ := cmd.Flags().GetBool("short")

		switch {
		case jsonFlag:
			fmt.Println(version.JSON())
		case shortFlag:
			fmt.Println(version.Short())
		default:
			fmt.Println(version.Detailed())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "Output version information in JSON format")
	versionCmd.Flags().BoolP("short", "s", false, "Output short version only")
}
