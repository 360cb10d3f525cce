package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// metadataCmd prints what the watch page says about a video
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get title and thumbnail of a YouTube video",
	Example: `  # Get metadata from YouTube video
  tubehack metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubehack metadata tAP1eZYEuKA

  # Indented JSON written to a file
  tubehack metadata tAP1eZYEuKA --pretty -o metadata.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := videoArg(args[0])
		if err != nil {
			return err
		}

		metadata := internal.NewApp(config).Metadata(cmd.Context(), ref)
		if metadata.Error != "" {
			// title and thumbnail fall back to placeholders
			fmt.Fprintf(os.Stderr, "Warning: %s\n", metadata.Error)
		}

		pretty, _ := cmd.Flags().GetBool("pretty")
		outputFile, _ := cmd.Flags().GetString("output")
		return printJSON(metadata, pretty, outputFile)
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
