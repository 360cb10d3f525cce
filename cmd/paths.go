package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where tubehack keeps its config, prompts and scratch files",
	Example: `  tubehack paths`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, p := range [][2]string{
			{"config", config.ConfigDir},
			{"prompts", config.PromptsDir},
			{"data", config.DataDir},
			{"cache", config.CacheDir},
			{"temp", config.TempDir},
			{"mcp log", internal.MCPLogPath(config.CacheDir)},
		} {
			fmt.Fprintf(w, "%s\t%s\n", p[0], p[1])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
