package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// PlanCount is the number of plans requested from the ideas stage.
const PlanCount = 3

// PlanIdeas holds what could be recovered for one plan.
type PlanIdeas struct {
	Titles        []string `json:"titles"`
	ThumbnailWord string   `json:"thumbnail_word"`
}

// ParsedIdeas maps plan numbers 1..PlanCount to their ideas. Every plan key
// is present; plans the parser could not read have empty values.
type ParsedIdeas map[int]PlanIdeas

type planPatterns struct {
	titles    *regexp.Regexp
	thumbnail *regexp.Regexp
}

var ideaPatterns = buildIdeaPatterns()

func buildIdeaPatterns() []planPatterns {
	patterns := make([]planPatterns, PlanCount+1)
	for n := 1; n <= PlanCount; n++ {
		heading := fmt.Sprintf(`(?:企画案|Plan)\s*%d(?:\D|$)`, n)
		patterns[n] = planPatterns{
			titles: regexp.MustCompile(`(?s)` + heading +
				`.*?(?:タイトル案|Title ideas?)` +
				`.*?1\.\s*(.+?)(?:\n|$).*?2\.\s*(.+?)(?:\n|$).*?3\.\s*(.+?)(?:\n|$)`),
			thumbnail: regexp.MustCompile(`(?s)` + heading +
				`.*?(?:メインテキスト|Main text)\**\s*[：:]\s*(.+?)(?:\n|$)`),
		}
	}
	return patterns
}

// ParseIdeas extracts three titles and a thumbnail word per plan from
// generated text. It never fails: unmatched plans stay empty.
func ParseIdeas(text string) ParsedIdeas {
	parsed := make(ParsedIdeas, PlanCount)
	for n := 1; n <= PlanCount; n++ {
		plan := PlanIdeas{Titles: []string{}}

		if m := ideaPatterns[n].titles.FindStringSubmatch(text); m != nil {
			plan.Titles = []string{
				strings.TrimSpace(m[1]),
				strings.TrimSpace(m[2]),
				strings.TrimSpace(m[3]),
			}
		}
		if m := ideaPatterns[n].thumbnail.FindStringSubmatch(text); m != nil {
			plan.ThumbnailWord = strings.Trim(strings.TrimSpace(m[1]), "[]「」* ")
		}

		parsed[n] = plan
	}
	return parsed
}

// Pick returns title number titleIndex (1-based) and the thumbnail word of
// plan. Missing entries come back empty.
func (p ParsedIdeas) Pick(plan, titleIndex int) (title, thumbnailWord string) {
	ideas, ok := p[plan]
	if !ok {
		return "", ""
	}
	if titleIndex >= 1 && titleIndex <= len(ideas.Titles) {
		title = ideas.Titles[titleIndex-1]
	}
	return title, ideas.ThumbnailWord
}
