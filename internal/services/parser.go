package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/developia-II/tree-rater-backend/internal/models"
)

const (
	labelAestheticsScore        = "Aesthetics Score:"
	labelAestheticsExplanation  = "Aesthetics Explanation:"
	labelOriginalityScore       = "Originality Score:"
	labelOriginalityExplanation = "Originality Explanation:"
	labelGreatFeature           = "Great Feature:"
	labelImprovements           = "Improvements:"
)

var (
	leadingNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	improvementLine = regexp.MustCompile(`^\d\.`)
	improvementMark = regexp.MustCompile(`^\d\.\s*`)
)

// ParseRating extracts a Rating from the oracle's reply. Extraction is
// best-effort: the first line starting with a label wins, a missing field
// takes its zero value and a non-numeric score becomes 0. Scores are not
// clamped. Only an empty reply is an error.
func ParseRating(raw string) (models.Rating, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.Rating{}, ErrUnparseable
	}
	lines := strings.Split(text, "\n")

	return models.Rating{
		Aesthetics: models.ScoreSection{
			Score:       scoreField(lines, labelAestheticsScore),
			Explanation: textField(lines, labelAestheticsExplanation),
		},
		Originality: models.ScoreSection{
			Score:       scoreField(lines, labelOriginalityScore),
			Explanation: textField(lines, labelOriginalityExplanation),
		},
		GreatFeatures: textField(lines, labelGreatFeature),
		Improvements:  improvements(lines),
	}, nil
}

func findLine(lines []string, label string) (string, bool) {
	for _, l := range lines {
		if strings.HasPrefix(l, label) {
			return l, true
		}
	}
	return "", false
}

// value is the segment between the first and second colon of the line.
func value(line string) string {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func textField(lines []string, label string) string {
	l, ok := findLine(lines, label)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value(l))
}

func scoreField(lines []string, label string) float64 {
	l, ok := findLine(lines, label)
	if !ok {
		return 0
	}
	return leadingFloat(value(l))
}

// leadingFloat parses the numeric prefix of s after leading whitespace, so
// "4/5" yields 4 and "four" yields 0.
func leadingFloat(s string) float64 {
	m := leadingNumber.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// improvements collects numbered lines after the Improvements header, or
// from the top when the header is missing.
func improvements(lines []string) []string {
	start := 0
	for i, l := range lines {
		if strings.HasPrefix(l, labelImprovements) {
			start = i + 1
			break
		}
	}

	out := []string{}
	for _, l := range lines[start:] {
		t := strings.TrimSpace(l)
		if !improvementLine.MatchString(t) {
			continue
		}
		out = append(out, strings.TrimSpace(improvementMark.ReplaceAllString(t, "")))
	}
	return out
}
