package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript [YouTube URL or ID]",
	Short: "Get the captions of a YouTube video",
	Example: `  # Print the captions
  tubehack transcript "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubehack transcript tAP1eZYEuKA

  # Save transcript to file
  tubehack transcript tAP1eZYEuKA -o transcript.txt

  # List the caption tracks
  tubehack transcript tAP1eZYEuKA --list

  # Transcribe the audio if no captions are available (costs money)
  tubehack transcript https://www.youtube.com/shorts/abcdefghijk --fallback-audio`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		if list, _ := cmd.Flags().GetBool("list"); list {
			ref, err := videoArg(args[0])
			if err != nil {
				return err
			}
			tracks, err := app.CaptionTracks(cmd.Context(), ref.ID)
			if err != nil {
				return fmt.Errorf("listing caption tracks: %w", err)
			}
			return printJSON(tracks, true, "")
		}

		transcript, err := fetchTranscript(cmd, app, args[0])
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return internal.WriteOutput(outputFile, transcript)
		}

		fmt.Println(transcript)
		return nil
	},
}

func init() {
	internal.AddAudioFlags(transcriptCmd)
	internal.AddGenerationFlags(transcriptCmd)
	transcriptCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	transcriptCmd.Flags().Bool("list", false, "List the available caption tracks")
	rootCmd.AddCommand(transcriptCmd)
}
