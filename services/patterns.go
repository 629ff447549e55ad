package services

import (
	"regexp"
	"strings"
)

// fieldPatterns extract well-formed values for structured purposes
// straight from retrieved text
var fieldPatterns = map[string]*regexp.Regexp{
	PurposeEmail:    regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	PurposePhone:    regexp.MustCompile(`(?:\+?\d{1,2}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}|\b\d{3}[\s.\-]\d{4}\b`),
	PurposeZipCode:  regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
	PurposeLinkedIn: regexp.MustCompile(`(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9_\-]+/?`),
	PurposeGitHub:   regexp.MustCompile(`(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_\-]+/?`),
	PurposeWebsite:  regexp.MustCompile(`https?://[^\s<>",;)]+`),
	PurposeDate:     regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`),
}

// ExtractPattern scans text for the first value matching a purpose's
// pattern. Returns false when the purpose has no pattern or no match.
func ExtractPattern(purpose, text string) (string, bool) {
	re, ok := fieldPatterns[purpose]
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(re.FindString(text))
	if value == "" {
		return "", false
	}
	return value, true
}

var digitRe = regexp.MustCompile(`\d`)

// ValidateValue checks whether a synthesized value has the shape a
// purpose requires. Used to boost or dampen confidence, never to reject.
func ValidateValue(purpose, value string) bool {
	switch purpose {
	case PurposeEmail:
		return fieldPatterns[PurposeEmail].MatchString(value)
	case PurposePhone:
		return len(digitRe.FindAllString(value, -1)) >= 7
	case PurposeZipCode:
		return fieldPatterns[PurposeZipCode].MatchString(value)
	case PurposeLinkedIn, PurposeGitHub, PurposeWebsite:
		return strings.Contains(value, ".")
	default:
		return value != ""
	}
}
