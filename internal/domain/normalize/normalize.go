// Package normalize turns raw OCR text into validated field values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Plausible range of a single match score once the flame icon artifact is removed.
const (
	minSingleScore = 1000
	maxSingleScore = 9999

	artifactLength = 5
	artifactDigit  = '1'
)

var (
	nicknameNoise = regexp.MustCompile(`[^\p{L}\p{N}_\x{4E00}-\x{9FFF}]`) //nolint:gochecknoglobals // compiled once
	nonDigits     = regexp.MustCompile(`[^0-9]`)                         //nolint:gochecknoglobals // compiled once
)

// CleanNickname keeps word characters and CJK ideographs only.
func CleanNickname(text string) string {
	return strings.TrimSpace(nicknameNoise.ReplaceAllString(text, ""))
}

// CleanNumber strips everything but digits and parses the rest. Full width
// digits from CJK recognition models count as digits.
// For the single high score field a spurious leading 1 read from the flame icon
// is removed when the remaining four digits form a plausible score.
// Unparseable input yields 0.
func CleanNumber(text string, isSingleScore bool) int {
	digits := nonDigits.ReplaceAllString(width.Narrow.String(text), "")
	if digits == "" {
		return 0
	}

	if isSingleScore && len(digits) == artifactLength && digits[0] == artifactDigit {
		if corrected, err := strconv.Atoi(digits[1:]); err == nil &&
			corrected >= minSingleScore && corrected <= maxSingleScore {
			return corrected
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
