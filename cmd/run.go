package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

var stopAfterStages = []string{
	string(internal.StageAnalysis),
	string(internal.StagePatterns),
	string(internal.StageIdeas),
	string(internal.StageScript),
}

// runCmd runs the full pipeline; the root command does the same
var runCmd = &cobra.Command{
	Use:   "run [YouTube URL...]",
	Short: "Analyze videos, extract their pattern, plan content and write a script",
	Example: `  # Run every stage on one video
  tubehack run "https://www.youtube.com/shorts/abcdefghijk"

  # Several links in one argument, separated by commas or newlines
  tubehack run "https://youtu.be/tAP1eZYEuKA,https://youtu.be/dQw4w9WgXcQ" --theme "morning routines"

  # Write the script to a file with a custom length target
  tubehack run --channel https://www.youtube.com/@example --target-chars 8000 -o script.md`,
	Args: cobra.ArbitraryArgs,
	RunE: runPipeline,
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("channel", "", "Channel URL to take the latest videos from")
	cmd.Flags().String("search", "", "Search query to take videos from")
	cmd.Flags().String("theme", "", "Theme for the content plans (default: proposed by the model)")
	addScriptFlags(cmd)
	cmd.Flags().String("stop-after", string(internal.StageScript),
		"Last stage to run ("+strings.Join(stopAfterStages, ", ")+")")
}

func addScriptFlags(cmd *cobra.Command) {
	cmd.Flags().Int("plan", 1, "Plan to write the script for (1-3)")
	cmd.Flags().Int("title-index", 1, "Title of the plan to use (1-3)")
	cmd.Flags().String("title", "", "Script title, overriding the plan's title")
	cmd.Flags().String("thumbnail-word", "", "Thumbnail word, overriding the plan's")
	cmd.Flags().Int("target-chars", 0, "Script length in characters (default: average transcript length)")
	cmd.Flags().Bool("copy", false, "Copy the final result to the clipboard")
	cmd.Flags().StringP("output", "o", "", "Write the final result to a file")
}

func scriptRequest(cmd *cobra.Command) (internal.ScriptRequest, error) {
	plan, _ := cmd.Flags().GetInt("plan")
	titleIndex, _ := cmd.Flags().GetInt("title-index")
	if plan < 1 || plan > internal.PlanCount {
		return internal.ScriptRequest{}, fmt.Errorf("--plan must be between 1 and %d", internal.PlanCount)
	}
	if titleIndex < 1 || titleIndex > 3 {
		return internal.ScriptRequest{}, errors.New("--title-index must be between 1 and 3")
	}
	title, _ := cmd.Flags().GetString("title")
	thumbnailWord, _ := cmd.Flags().GetString("thumbnail-word")
	targetChars, _ := cmd.Flags().GetInt("target-chars")
	if targetChars < 0 {
		return internal.ScriptRequest{}, errors.New("--target-chars must not be negative")
	}
	return internal.ScriptRequest{
		Plan:          plan,
		TitleIndex:    titleIndex,
		Title:         title,
		ThumbnailWord: thumbnailWord,
		TargetChars:   targetChars,
	}, nil
}

// splitArgs separates video links from a channel link and rejects
// arguments that look like mistyped commands.
func splitArgs(args []string) (urls []string, channel string, err error) {
	for _, arg := range args {
		for _, part := range internal.SplitInputs(arg) {
			input := internal.ParseInput(part)
			switch input.Kind {
			case internal.InputVideo:
				urls = append(urls, input.URL)
			case internal.InputChannel:
				if channel != "" {
					return nil, "", errors.New("only one channel can be analyzed at a time")
				}
				channel = input.URL
			case internal.InputCommand:
				return nil, "", fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID: %s",
					part, input.SuggestCorrection(commandNames()))
			default:
				return nil, "", input.Error
			}
		}
	}
	return urls, channel, nil
}

func commandNames() []string {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	return names
}

func runPipeline(cmd *cobra.Command, args []string) error {
	stopAfter, _ := cmd.Flags().GetString("stop-after")
	if !slices.Contains(stopAfterStages, stopAfter) {
		return fmt.Errorf("--stop-after must be one of %s", strings.Join(stopAfterStages, ", "))
	}
	req, err := scriptRequest(cmd)
	if err != nil {
		return err
	}

	urls, channel, err := splitArgs(args)
	if err != nil {
		return err
	}
	if flagChannel, _ := cmd.Flags().GetString("channel"); flagChannel != "" {
		channel = flagChannel
	}
	search, _ := cmd.Flags().GetString("search")
	if len(urls) == 0 && channel == "" && search == "" {
		return errors.New("give at least one video URL, --channel or --search")
	}

	if err := internal.ValidateGenerationRequirements(cmd, config); err != nil {
		return err
	}
	app := internal.NewApp(config)
	if err := app.OverrideScriptPrompt(config.ScriptPrompt); err != nil {
		return err
	}

	ctx := cmd.Context()
	refs, err := app.ResolveRefs(ctx, urls, channel, search)
	if err != nil {
		return err
	}

	session := internal.NewSession()
	activeSession.Store(session)
	defer activeSession.Store(nil)

	wf := app.Workflow()
	app.UI().Printf("Analyzing %d videos\n", len(refs))
	err = wf.Analyze(ctx, session, refs)
	stopped := errors.Is(err, internal.ErrStopped)
	if err != nil && !stopped {
		return err
	}
	printMarkdown(app, "# Analysis\n\n"+internal.FormatAnalyses(session.Analyses))
	if stopped {
		app.UI().Printf("Stopped after %d of %d videos\n", len(session.Analyses), len(refs))
		return nil
	}
	if len(session.Successful()) == 0 {
		return internal.ErrNoAnalyses
	}
	if stopAfter == string(internal.StageAnalysis) {
		return nil
	}

	if err := wf.ExtractPatterns(ctx, session); err != nil {
		return err
	}
	if stopAfter == string(internal.StagePatterns) {
		return deliver(cmd, app, internal.FormatPatterns(session.Patterns))
	}
	printMarkdown(app, "# Pattern\n\n"+internal.FormatPatterns(session.Patterns))

	theme, _ := cmd.Flags().GetString("theme")
	if err := wf.GenerateIdeas(ctx, session, theme); err != nil {
		return err
	}

	return finishScript(ctx, cmd, app, session, req, stopAfter)
}

// finishScript shows the ideas and, unless stopping there, writes the script.
func finishScript(ctx context.Context, cmd *cobra.Command, app *internal.App, session *internal.Session, req internal.ScriptRequest, stopAfter string) error {
	if stopAfter == string(internal.StageIdeas) {
		return deliver(cmd, app, session.Ideas.Text)
	}
	printMarkdown(app, "# Ideas\n\n"+session.Ideas.Text)

	result, err := app.Workflow().GenerateScript(ctx, session, req)
	if err != nil {
		return err
	}
	if result.Verdict() != internal.VerdictWithin {
		app.UI().Printf("Note: script length is %s\nSection allocation:\n%s", result.Summary(), internal.FormatAllocation(result.Allocation))
	} else {
		app.UI().Verbose("Section allocation:\n%s", internal.FormatAllocation(result.Allocation))
	}
	return deliver(cmd, app, internal.FormatScript(result))
}

// printMarkdown renders an intermediate stage result unless quiet
func printMarkdown(app *internal.App, content string) {
	if config.Quiet {
		return
	}
	rendered, err := internal.RenderMarkdown(content)
	if err != nil {
		app.UI().Verbose("Rendering markdown: %v\n", err)
		rendered = content
	}
	fmt.Println(rendered)
}

// deliver writes the final result to the --output file, the clipboard, or stdout
func deliver(cmd *cobra.Command, app *internal.App, content string) error {
	outputFile, _ := cmd.Flags().GetString("output")
	copyResult, _ := cmd.Flags().GetBool("copy")

	if outputFile != "" {
		if err := internal.WriteOutput(outputFile, content); err != nil {
			return err
		}
		app.UI().Printf("Wrote %s\n", outputFile)
	}
	if copyResult {
		if err := clipboard.WriteAll(content); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		app.UI().Println("Copied to clipboard")
	}
	if outputFile != "" || copyResult {
		return nil
	}

	rendered, err := internal.RenderMarkdown(content)
	if err != nil {
		rendered = content
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	addPipelineFlags(runCmd)
	internal.AddGenerationFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
