// Package metric classifies the unlabelled numeric lines on a doctor card.
//
// A card shows up to three metric blocks (experience, satisfaction, review
// count) with no reliable label, so each value is classified by shape.
// Shapes are tried in a fixed order because a bare number (review count) is
// the least specific and must not shadow the other two.
package metric

import (
	"regexp"
	"strings"
)

// Field names a metric slot on a card.
type Field string

const (
	Experience   Field = "experience"
	Satisfaction Field = "satisfaction_rate"
	Reviews      Field = "reviews"
)

// Kind is the outcome of classifying one line.
type Kind int

const (
	Unclassified Kind = iota
	Matched
)

// Outcome is the tagged result of Classify.
type Outcome struct {
	Kind  Kind
	Field Field
	Value string
}

// Metrics holds the three classified card values. Empty means absent.
type Metrics struct {
	Experience   string
	Satisfaction string
	Reviews      string
}

var (
	reExperience = regexp.MustCompile(`(?i)(\d+\s*(?:yrs?|years?|yr))`)
	rePercent    = regexp.MustCompile(`(\d{1,3}\s*%)`)
	reYearWord   = regexp.MustCompile(`(?i)yr|year`)
	reLetter     = regexp.MustCompile(`[A-Za-z]`)
	reDigit      = regexp.MustCompile(`\d`)
	reCount      = regexp.MustCompile(`\d+(?:,\d{3})*`)

	// Repair patterns are word-bounded, so they are stricter than the
	// classification ones.
	reRepairYears   = regexp.MustCompile(`(?i)\b\d+\s*(?:yrs?|years?)\b`)
	reRepairPercent = regexp.MustCompile(`\b\d{1,3}\s*%`)
	reCleanInteger  = regexp.MustCompile(`^\d+(?:,\d{3})*$`)
	reGroupedCount  = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)$`)
)

// Classify decides which metric a single line encodes.
func Classify(line string) Outcome {
	s := strings.TrimSpace(line)
	if s == "" {
		return Outcome{}
	}
	if m := reExperience.FindString(s); m != "" {
		return Outcome{Kind: Matched, Field: Experience, Value: strings.TrimSpace(m)}
	}
	if m := rePercent.FindString(s); m != "" {
		return Outcome{Kind: Matched, Field: Satisfaction, Value: strings.TrimSpace(m)}
	}
	if isReviewCount(s) {
		return Outcome{Kind: Matched, Field: Reviews, Value: reCount.FindString(s)}
	}
	return Outcome{}
}

// isReviewCount reports whether s looks like a bare, optionally grouped
// integer with nothing else that could make it a year or percentage.
func isReviewCount(s string) bool {
	if reYearWord.MatchString(s) || strings.Contains(s, "%") {
		return false
	}
	return reDigit.MatchString(s) && !reLetter.MatchString(s)
}

// FromLines classifies each candidate value in card order. A later value for
// the same field replaces an earlier one.
func FromLines(lines []string) Metrics {
	var m Metrics
	for _, line := range lines {
		out := Classify(line)
		if out.Kind != Matched {
			continue
		}
		m = m.with(out.Field, out.Value)
	}
	return m
}

func (m Metrics) with(f Field, v string) Metrics {
	switch f {
	case Experience:
		m.Experience = v
	case Satisfaction:
		m.Satisfaction = v
	case Reviews:
		m.Reviews = v
	}
	return m
}

// Repair fixes a review count that actually carries another metric or
// garbage. It returns a new value; applying it twice equals applying it once.
func Repair(m Metrics) Metrics {
	if m.Reviews != "" {
		rev := strings.TrimSpace(m.Reviews)
		switch {
		case reRepairYears.MatchString(rev):
			m.Experience = reRepairYears.FindString(rev)
			m.Reviews = ""
		case reRepairPercent.MatchString(rev):
			m.Satisfaction = reRepairPercent.FindString(rev)
			m.Reviews = ""
		case reLetter.MatchString(rev) && !reCleanInteger.MatchString(rev):
			m.Reviews = ""
		}
	}
	if m.Reviews != "" && !reGroupedCount.MatchString(strings.TrimSpace(m.Reviews)) {
		m.Reviews = ""
	}
	return m
}
