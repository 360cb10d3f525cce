package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
	"github.com/rtzll/tubehack/internal/scrape"
)

// videoArg parses a video URL or id argument
func videoArg(arg string) (scrape.VideoRef, error) {
	input := internal.ParseInput(arg)
	if input.Kind == internal.InputVideo {
		return input.Ref(), nil
	}
	if suggestion := input.SuggestCorrection(commandNames()); suggestion != "" {
		return scrape.VideoRef{}, fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID: %s", arg, suggestion)
	}
	return scrape.VideoRef{}, fmt.Errorf("not a YouTube video URL or ID: %s", arg)
}

// fetchTranscript retrieves the captions for arg and, when allowed or
// confirmed, falls back to transcribing the audio.
func fetchTranscript(cmd *cobra.Command, app *internal.App, arg string) (string, error) {
	ref, err := videoArg(arg)
	if err != nil {
		return "", err
	}

	transcript, _, err := app.Transcript(cmd.Context(), ref, false)
	if err == nil {
		return transcript, nil
	}
	if !errors.Is(err, internal.ErrNoTranscript) {
		return "", err
	}

	fallbackAudio, _ := cmd.Flags().GetBool("fallback-audio")
	if !fallbackAudio && !internal.AskUser("No captions found. Transcribe the audio instead ($$$)?") {
		return "", err
	}

	if err := internal.ValidateGenerationRequirements(cmd, config); err != nil {
		return "", err
	}
	// the provider flags may have changed the config
	app = internal.NewApp(config)

	transcript, _, err = app.Transcript(cmd.Context(), ref, true)
	return transcript, err
}

// printJSON writes v to outputFile, or stdout when it is empty.
func printJSON(v any, pretty bool, outputFile string) error {
	encode := json.Marshal
	if pretty {
		encode = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	if outputFile != "" {
		return internal.WriteOutput(outputFile, string(data))
	}
	fmt.Println(string(data))
	return nil
}
