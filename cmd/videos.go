package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// videosCmd lists what a channel page or a search returns
var videosCmd = &cobra.Command{
	Use:   "videos --channel URL | --search QUERY",
	Short: "List the videos found on a channel page or in search results",
	Example: `  # Latest videos of a channel
  tubehack videos --channel https://www.youtube.com/@example

  # Search results as JSON
  tubehack videos --search "home espresso" --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("channel")
		search, _ := cmd.Flags().GetString("search")
		if (channel == "") == (search == "") {
			return errors.New("give exactly one of --channel or --search")
		}

		app := internal.NewApp(config)
		listings, err := app.ListVideos(cmd.Context(), channel, search)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return internal.ErrNoVideos
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(listings, true, "")
		}

		for i, l := range listings {
			fmt.Printf("%d. %s\n   %s\n", i+1, l.Title, l.URL)
		}
		return nil
	},
}

func init() {
	videosCmd.Flags().String("channel", "", "Channel URL")
	videosCmd.Flags().String("search", "", "Search query")
	videosCmd.Flags().Bool("json", false, "Print JSON")
	rootCmd.AddCommand(videosCmd)
}
