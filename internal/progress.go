package internal

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output)
type UIManager interface {
	// Progress bars
	NewProgressBar(total int, description string) ProgressBar
	NewSpinner(description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...any)

	// Status messages
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Set(current int)
	Advance()
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	verbose bool
	quiet   bool
	tty     bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	fd := os.Stdout.Fd()
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
		tty:     isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// NewQuietUIManager returns a UI that prints nothing, for MCP and tests.
func NewQuietUIManager() UIManager {
	return &StandardUIManager{quiet: true}
}

func (ui *StandardUIManager) silent() bool {
	return ui.quiet || !ui.tty
}

// NewProgressBar counts videos through a stage
func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.silent() {
		return &termBar{progressbar.DefaultSilent(int64(total))}
	}
	return &termBar{progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)}
}

// NewSpinner shows activity for a single generation call of unknown length.
func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.silent() {
		return &termBar{progressbar.DefaultSilent(-1)}
	}
	return &termBar{progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)}
}

func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose && !ui.quiet {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Println(args...)
	}
}

// termBar adapts progressbar to ProgressBar. Render errors only concern the
// terminal and are dropped.
type termBar struct {
	pb *progressbar.ProgressBar
}

func (b *termBar) Set(current int) { _ = b.pb.Set(current) }
func (b *termBar) Advance() { _ = b.pb.Add(1) }
func (b *termBar) Describe(description string) { b.pb.Describe(description) }
func (b *termBar) Finish() { _ = b.pb.Finish() }
