package internal

import "unicode/utf8"

// Script length bounds
const (
	DefaultTargetChars = 5000
	MinTargetChars     = 1000
	MaxTargetChars     = 20000
)

// CharStats summarises transcript lengths in characters.
type CharStats struct {
	Avg int `json:"avg"`
	Max int `json:"max"`
	Min int `json:"min"`
}

// IsZero reports whether no lengths contributed.
func (s CharStats) IsZero() bool {
	return s == CharStats{}
}

// ComputeCharStats returns the floor mean, maximum and minimum of the
// positive counts. Zero counts do not contribute.
func ComputeCharStats(counts []int) CharStats {
	var stats CharStats
	sum, n := 0, 0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		if n == 0 || c > stats.Max {
			stats.Max = c
		}
		if n == 0 || c < stats.Min {
			stats.Min = c
		}
		sum += c
		n++
	}
	if n > 0 {
		stats.Avg = sum / n
	}
	return stats
}

// TitleStats summarises title lengths in characters.
type TitleStats struct {
	Avg int `json:"avg"`
	Max int `json:"max"`
	Min int `json:"min"`
}

// ComputeTitleStats measures titles in runes
func ComputeTitleStats(titles []string) TitleStats {
	var stats TitleStats
	if len(titles) == 0 {
		return stats
	}
	sum := 0
	for i, title := range titles {
		n := utf8.RuneCountInString(title)
		if i == 0 || n > stats.Max {
			stats.Max = n
		}
		if i == 0 || n < stats.Min {
			stats.Min = n
		}
		sum += n
	}
	stats.Avg = sum / len(titles)
	return stats
}

// Section is one part of the script with its minimum length.
type Section struct {
	Name    string `json:"name"`
	Divisor int    `json:"divisor"`
	Chars   int    `json:"chars"`
}

// scriptSections lists the script parts in order with the fraction of the
// target each one receives (1/Divisor).
var scriptSections = []Section{
	{Name: "Hook", Divisor: 8},
	{Name: "CTA 1", Divisor: 20},
	{Name: "Introduction", Divisor: 8},
	{Name: "Main point 1", Divisor: 5},
	{Name: "Main point 2", Divisor: 5},
	{Name: "CTA 2", Divisor: 20},
	{Name: "Main point 3", Divisor: 5},
	{Name: "Pitfalls", Divisor: 10},
	{Name: "Recap", Divisor: 10},
	{Name: "CTA 3 and ending", Divisor: 15},
}

// Allocation is the per-section split of a script target. The fractions
// add up to more than one, so Total may exceed Target; the excess is
// reported by Overflow.
type Allocation struct {
	Target   int       `json:"target"`
	Sections []Section `json:"sections"`
}

// Apportion splits target across the script sections by integer division.
func Apportion(target int) Allocation {
	sections := make([]Section, len(scriptSections))
	for i, s := range scriptSections {
		s.Chars = target / s.Divisor
		sections[i] = s
	}
	return Allocation{Target: target, Sections: sections}
}

// Total is the sum of the section minimums
func (a Allocation) Total() int {
	total := 0
	for _, s := range a.Sections {
		total += s.Chars
	}
	return total
}

// Overflow is how far Total exceeds Target, or zero.
func (a Allocation) Overflow() int {
	return max(a.Total()-a.Target, 0)
}

// ClampTarget bounds a requested script length; zero selects the default.
func ClampTarget(target int) int {
	if target == 0 {
		return DefaultTargetChars
	}
	return min(max(target, MinTargetChars), MaxTargetChars)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
