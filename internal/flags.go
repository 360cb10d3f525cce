package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddGenerationFlags adds flags related to the generation provider
func AddGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Generation provider (gemini or openai)")
	cmd.Flags().StringP("model", "m", "", "Model to use for generation")
	cmd.Flags().StringP("language", "l", "", "Language of the generated text")
	cmd.Flags().StringP("script-prompt", "p", "", "Custom script prompt (template string or file path)")
}

// AddAudioFlags adds flags related to audio transcription
func AddAudioFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("fallback-audio", false, "Transcribe the audio if no captions are available (costs money)")
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	config.Verbose = verbose
	return nil
}

// ValidateGenerationRequirements applies the provider, model and language
// flags to config and checks the provider can be used.
func ValidateGenerationRequirements(cmd *cobra.Command, config *Config) error {
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		if provider != config.Provider {
			// the configured model belongs to the other provider
			config.Model = ""
		}
		config.Provider = provider
	}
	if err := ValidateProvider(config.Provider); err != nil {
		return err
	}
	if err := ValidateAPIKey(config.Provider, config.APIKey()); err != nil {
		return err
	}

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		config.Model = model
	}
	if config.Model == "" {
		config.Model = DefaultModel(config.Provider)
	}
	if err := ValidateModel(config.Provider, config.Model); err != nil {
		return fmt.Errorf("invalid model: %w", err)
	}

	if language, _ := cmd.Flags().GetString("language"); language != "" {
		config.OutputLanguage = language
	}
	if prompt, _ := cmd.Flags().GetString("script-prompt"); prompt != "" {
		config.ScriptPrompt = prompt
	}
	return nil
}
