package scrape

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
)

// Embedded state variables assigned in inline page scripts.
const (
	InitialData           = "ytInitialData"
	InitialPlayerResponse = "ytInitialPlayerResponse"
)

// assignmentForms are the ways a page has been seen to assign the state
// object, from most to least specific. Each must end right before the
// opening brace.
var assignmentForms = []string{
	`var\s+%s\s*=\s*`,
	`window\[\s*["']%s["']\s*\]\s*=\s*`,
	`window\.%s\s*=\s*`,
	`\b%s\s*=\s*`,
}

var (
	locatorMu    sync.Mutex
	locatorCache = map[string][]*regexp.Regexp{}
)

func locatorPatterns(variable string) []*regexp.Regexp {
	locatorMu.Lock()
	defer locatorMu.Unlock()

	if patterns, ok := locatorCache[variable]; ok {
		return patterns
	}
	quoted := regexp.QuoteMeta(variable)
	patterns := make([]*regexp.Regexp, 0, len(assignmentForms))
	for _, form := range assignmentForms {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(form, quoted)+`\{`))
	}
	locatorCache[variable] = patterns
	return patterns
}

// LocateRaw finds the JSON object assigned to variable inside the page
// markup and returns its raw bytes. A candidate that is not valid JSON is
// skipped; if no candidate decodes the result is not found.
func LocateRaw(html []byte, variable string) ([]byte, bool) {
	for _, re := range locatorPatterns(variable) {
		for _, loc := range re.FindAllIndex(html, -1) {
			start := loc[1] - 1 // the opening brace
			candidate := cutObject(html[start:])
			if candidate != nil && json.Valid(candidate) {
				return candidate, true
			}
		}
	}
	return nil, false
}

// Locate finds and decodes the object assigned to variable.
func Locate(html []byte, variable string) (*Node, bool) {
	raw, ok := LocateRaw(html, variable)
	if !ok {
		return nil, false
	}
	root, err := Decode(raw)
	if err != nil {
		return nil, false
	}
	return root, true
}

// cutObject returns the balanced {...} prefix of b, honouring string
// literals and escapes, or nil if the object never closes.
func cutObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
