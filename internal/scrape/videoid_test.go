package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch extra params first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch extra params after", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"mobile watch", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/abc_DEF-123", "abc_DEF-123", true},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ \n", "dQw4w9WgXcQ", true},
		{"id too short", "https://www.youtube.com/watch?v=short", "", false},
		{"channel", "https://www.youtube.com/@somechannel", "", false},
		{"not youtube", "https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIsShortURL(t *testing.T) {
	assert.True(t, IsShortURL("https://www.youtube.com/shorts/abc_DEF-123"))
	assert.False(t, IsShortURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
}

func TestIsValidVideoID(t *testing.T) {
	assert.True(t, IsValidVideoID("dQw4w9WgXcQ"))
	assert.False(t, IsValidVideoID("dQw4w9WgXc"))
	assert.False(t, IsValidVideoID("dQw4w9WgXc!"))
}
