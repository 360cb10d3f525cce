package internal

import (
	"fmt"
	"strings"
)

// FormatAnalyses renders the stage 1 records as markdown.
func FormatAnalyses(records []AnalysisRecord) string {
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, r.Video.DisplayTitle())
		fmt.Fprintf(&sb, "- URL: %s\n", r.Video.URL)
		if r.Success {
			kind := "long-form"
			if r.IsShort {
				kind = "short"
			}
			transcript := "none"
			if r.HasTranscript {
				transcript = fmt.Sprintf("%d characters (%s)", r.CharCount, r.TranscriptSource)
			}
			fmt.Fprintf(&sb, "- Format: %s\n- Transcript: %s\n\n%s\n\n", kind, transcript, strings.TrimSpace(r.Analysis))
			continue
		}
		fmt.Fprintf(&sb, "- Failed: %s\n\n", r.Error)
	}
	return sb.String()
}

// FormatPatterns renders the stage 2 result with its statistics.
func FormatPatterns(p PatternSummary) string {
	var sb strings.Builder
	if p.CharStats.IsZero() {
		sb.WriteString("Transcript length: no transcripts\n\n")
	} else {
		fmt.Fprintf(&sb, "Transcript length: average %d, max %d, min %d characters\n\n",
			p.CharStats.Avg, p.CharStats.Max, p.CharStats.Min)
	}
	sb.WriteString(strings.TrimSpace(p.Text))
	sb.WriteString("\n")
	return sb.String()
}

// FormatScript renders the stage 4 result with its title header, which is
// also what --copy and --output write.
func FormatScript(r *ScriptResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nThumbnail word: %s\nLength: %s\n\n", r.Title, r.ThumbnailWord, r.Summary())
	sb.WriteString(strings.TrimSpace(r.Text))
	sb.WriteString("\n")
	return sb.String()
}

// FormatAllocation lists the section minimums of a script target.
func FormatAllocation(a Allocation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target %d characters\n", a.Target)
	for _, s := range a.Sections {
		fmt.Fprintf(&sb, "  %-18s %6d (1/%d)\n", s.Name, s.Chars, s.Divisor)
	}
	fmt.Fprintf(&sb, "  %-18s %6d", "Total", a.Total())
	if overflow := a.Overflow(); overflow > 0 {
		fmt.Fprintf(&sb, " (%d over target)", overflow)
	}
	sb.WriteString("\n")
	return sb.String()
}
