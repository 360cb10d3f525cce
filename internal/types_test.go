package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		input string
		kind  InputKind
		id    string
		url   string
	}{
		{"https://www.youtube.com/watch?v=tAP1eZYEuKA", InputVideo, "tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA"},
		{"https://youtu.be/tAP1eZYEuKA", InputVideo, "tAP1eZYEuKA", "https://youtu.be/tAP1eZYEuKA"},
		{"https://www.youtube.com/shorts/tAP1eZYEuKA", InputVideo, "tAP1eZYEuKA", "https://www.youtube.com/shorts/tAP1eZYEuKA"},
		{" tAP1eZYEuKA ", InputVideo, "tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA"},
		{"https://www.youtube.com/@somebody", InputChannel, "", "https://www.youtube.com/@somebody/videos"},
		{"https://www.youtube.com/channel/UC123", InputChannel, "", "https://www.youtube.com/channel/UC123/videos"},
		{"trascript", InputCommand, "", ""},
		{"https://example.com/page", InputUnknown, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := ParseInput(tt.input)
			assert.Equal(t, tt.kind, p.Kind, p.Kind.String())
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.url, p.URL)
			assert.Equal(t, tt.kind == InputVideo || tt.kind == InputChannel, p.IsValid())
		})
	}
}

func TestParsedInputRef(t *testing.T) {
	ref := ParseInput("https://www.youtube.com/shorts/tAP1eZYEuKA").Ref()
	assert.Equal(t, "tAP1eZYEuKA", ref.ID)
	assert.True(t, ref.IsShort())
}

func TestSuggestCorrection(t *testing.T) {
	commands := []string{"run", "direct", "transcript", "metadata", "videos"}

	assert.Equal(t, "did you mean: transcript", ParseInput("transcrip").SuggestCorrection(commands))
	assert.Equal(t, "use --help to see available commands", ParseInput("xyz").SuggestCorrection(commands))
	assert.Empty(t, ParseInput("tAP1eZYEuKA").SuggestCorrection(commands))
}
