package internal

import (
	"fmt"
	"strings"

	"github.com/rtzll/tubehack/internal/scrape"
)

// InputKind classifies a command line argument
type InputKind int

const (
	InputUnknown InputKind = iota
	InputVideo
	InputChannel
	InputCommand
)

// String returns a human-readable representation of the input kind
func (k InputKind) String() string {
	switch k {
	case InputVideo:
		return "video"
	case InputChannel:
		return "channel"
	case InputCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ParsedInput represents the result of parsing a command line argument
type ParsedInput struct {
	Kind          InputKind
	OriginalInput string
	URL           string
	ID            string
	Error         error
}

// ParseInput classifies a positional argument as a video link or bare id,
// a channel link, or a probable mistyped command.
func ParseInput(arg string) ParsedInput {
	arg = strings.TrimSpace(arg)
	p := ParsedInput{OriginalInput: arg}

	if id, ok := scrape.ExtractVideoID(arg); ok {
		p.Kind, p.ID, p.URL = InputVideo, id, arg
		return p
	}
	if scrape.IsValidVideoID(arg) {
		p.Kind, p.ID, p.URL = InputVideo, arg, scrape.WatchURL(arg)
		return p
	}
	if isChannelURL(arg) {
		p.Kind, p.URL = InputChannel, scrape.NormalizeChannelURL(arg)
		return p
	}
	if IsLikelyCommand(arg) {
		p.Kind = InputCommand
		p.Error = fmt.Errorf("unknown command %q", arg)
		return p
	}

	p.Error = fmt.Errorf("not a YouTube video or channel: %s", arg)
	return p
}

// Ref returns the video reference for a video input
func (p ParsedInput) Ref() scrape.VideoRef {
	return scrape.VideoRef{ID: p.ID, SourceURL: p.URL}
}

// IsValid returns true if the input names a video or channel
func (p ParsedInput) IsValid() bool {
	return p.Error == nil && (p.Kind == InputVideo || p.Kind == InputChannel)
}

// SuggestCorrection provides helpful suggestions for invalid inputs
func (p ParsedInput) SuggestCorrection(availableCommands []string) string {
	if p.Kind != InputCommand {
		return ""
	}

	input := strings.ToLower(p.OriginalInput)
	var suggestions []string

	for _, cmd := range availableCommands {
		if strings.Contains(cmd, input) || strings.Contains(input, cmd) {
			suggestions = append(suggestions, cmd)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Sprintf("did you mean: %s", strings.Join(suggestions, ", "))
	}

	return "use --help to see available commands"
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 10 && !strings.Contains(arg, "/") && !scrape.IsValidVideoID(arg)
}

func isChannelURL(arg string) bool {
	if !strings.Contains(arg, "youtube.com/") {
		return false
	}
	for _, marker := range []string{"/@", "/channel/", "/c/", "/user/"} {
		if strings.Contains(arg, marker) {
			return true
		}
	}
	return false
}
