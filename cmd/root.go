package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtzll/tubehack/internal"
)

var (
	config *internal.Config

	// activeSession is the session of a running pipeline, if any. The first
	// interrupt stops its analysis between videos.
	activeSession atomic.Pointer[internal.Session]
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tubehack [YouTube URL...]",
	Short: "Turn a handful of YouTube videos into content plans and a script",
	Long: `tubehack studies up to five YouTube videos and writes new content from them.

Videos come from direct links, a channel page (--channel) or a search (--search).
Titles, thumbnails and captions are scraped from the public pages; short videos
without captions can be transcribed from their audio.

The material then goes through four generation stages:
  1. analysis of each video
  2. the shared pattern across the videos, with transcript length statistics
  3. three content plans with titles and thumbnail wording
  4. a full script sized to the average transcript length

Generation uses Gemini by default, or OpenAI with --provider openai.`,
	Example: `  # Analyze two videos and write a script
  tubehack "https://www.youtube.com/watch?v=tAP1eZYEuKA" https://youtu.be/dQw4w9WgXcQ

  # Use the latest videos of a channel and set the theme
  tubehack --channel https://www.youtube.com/@example --theme "budget travel"

  # Stop after the pattern extraction
  tubehack --search "home espresso" --stop-after patterns

  # Pick plan 2, title 3 and copy the script to the clipboard
  tubehack tAP1eZYEuKA --plan 2 --title-index 3 --copy`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			config.Quiet = true
		}
		return internal.HandleVerboseFlag(cmd, config)
	},
	Args: cobra.ArbitraryArgs,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultPrompts(config.PromptsDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompts: %v\n", err)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		if session := activeSession.Load(); session != nil && sig == os.Interrupt {
			session.Stop()
			fmt.Fprintln(os.Stderr, "\nStopping after the current video. Press Ctrl+C again to quit.")
			<-sigCh
		}
		fmt.Println("\nReceived interrupt signal. Cleaning up and shutting down...")

		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	// set here: runPipeline lists rootCmd's subcommands
	rootCmd.RunE = runPipeline
	addPipelineFlags(rootCmd)
	internal.AddGenerationFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print the final result")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
