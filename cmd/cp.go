package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy the captions of a YouTube video to the clipboard",
	Example: `  # Copy the captions
  tubehack cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  tubehack cp tAP1eZYEuKA

  # Transcribe the audio if no captions are available (costs money)
  tubehack cp tAP1eZYEuKA --fallback-audio`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := fetchTranscript(cmd, app, args[0])
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		app.UI().Println("Transcript copied to clipboard")
		return nil
	},
}

func init() {
	internal.AddAudioFlags(cpCmd)
	internal.AddGenerationFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
