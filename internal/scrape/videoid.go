package scrape

import (
	"regexp"
	"strings"
)

// videoIDPatterns are tried in order; the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#\s]*?&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
}

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video identifier out of a watch,
// short, embed or shorts link.
func ExtractVideoID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}

// IsValidVideoID reports whether id has the shape of a video identifier.
func IsValidVideoID(id string) bool {
	return videoIDRE.MatchString(id)
}

// IsShortURL reports whether the URL points at short-form content.
func IsShortURL(rawURL string) bool {
	return strings.Contains(rawURL, "shorts")
}

// WatchURL returns the canonical watch page URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ShortsURL returns the canonical shorts page URL for id.
func ShortsURL(id string) string {
	return "https://www.youtube.com/shorts/" + id
}
