package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// directCmd generates ideas and a script from a theme, without videos
var directCmd = &cobra.Command{
	Use:   "direct --theme THEME",
	Short: "Plan content and write a script from a theme alone",
	Example: `  # Plans and a 5000 character script on a theme
  tubehack direct --theme "cold brew at home"

  # Add reference notes and a length target, stop after the plans
  tubehack direct --theme "cold brew at home" --reference "ratio 1:8, 12h" --target-chars 3000 --stop-after ideas`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, _ := cmd.Flags().GetString("theme")
		if theme == "" {
			return internal.ErrThemeRequired
		}
		reference, _ := cmd.Flags().GetString("reference")
		stopAfter, _ := cmd.Flags().GetString("stop-after")
		if stopAfter != string(internal.StageIdeas) && stopAfter != string(internal.StageScript) {
			return errors.New("--stop-after must be ideas or script")
		}
		req, err := scriptRequest(cmd)
		if err != nil {
			return err
		}

		if err := internal.ValidateGenerationRequirements(cmd, config); err != nil {
			return err
		}
		app := internal.NewApp(config)
		if err := app.OverrideScriptPrompt(config.ScriptPrompt); err != nil {
			return err
		}

		ctx := cmd.Context()
		session := internal.NewSession()
		if err := app.Workflow().GenerateIdeasDirect(ctx, session, theme, reference, req.TargetChars); err != nil {
			return err
		}
		// the clamped target now lives in the session's length statistics
		req.TargetChars = 0

		return finishScript(ctx, cmd, app, session, req, stopAfter)
	},
}

func init() {
	directCmd.Flags().String("theme", "", "Theme for the content plans (required)")
	directCmd.Flags().String("reference", "", "Reference notes for the plans")
	addScriptFlags(directCmd)
	directCmd.Flags().String("stop-after", string(internal.StageScript), "Last stage to run (ideas or script)")
	internal.AddGenerationFlags(directCmd)
	rootCmd.AddCommand(directCmd)
}
