// Package normalize turns raw free-form user text into typed survey values.
// Every function is pure and never returns an error: callers re-prompt on a
// false ok instead of propagating failures.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	countryCode = "7"
	trunkPrefix = "8"
)

var (
	ratingRe = regexp.MustCompile(`^\d{1,2}$`)
	digitsRe = regexp.MustCompile(`\d+`)
	nonDigit = regexp.MustCompile(`\D`)
	letterRe = regexp.MustCompile(`[A-Za-zА-Яа-яЁё]`)
)

// ParseRating parses a 0..10 satisfaction rating. The input must be one or
// two decimal digits after trimming, nothing else.
func ParseRating(text string) (int, bool) {
	t := strings.TrimSpace(text)
	if !ratingRe.MatchString(t) {
		return 0, false
	}
	v, err := strconv.Atoi(t)
	if err != nil || v < 0 || v > 10 {
		return 0, false
	}
	return v, true
}

// ExtractTaxIDs scans text for a tax identifier (first digit run of length
// 10 or 12) and a registration code (first remaining run whose length falls
// in [secondaryMin, secondaryMax] and differs from the primary). When nothing
// recognizable is found the trimmed input is preserved verbatim as the
// primary id so that the submission is never lost.
func ExtractTaxIDs(text string, secondaryMin, secondaryMax int) (primary, secondary string) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return "", ""
	}

	runs := digitsRe.FindAllString(raw, -1)

	for _, run := range runs {
		if len(run) == 10 || len(run) == 12 {
			primary = run
			break
		}
	}
	for _, run := range runs {
		if len(run) >= secondaryMin && len(run) <= secondaryMax && run != primary {
			secondary = run
			break
		}
	}

	// Keep the raw input whenever the primary id is missing.
	if primary == "" {
		return raw, secondary
	}
	return primary, secondary
}

// NormalizeTaxID accepts a bare tax identifier: exactly 10 or 12 digits.
func NormalizeTaxID(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if nonDigit.MatchString(t) {
		return "", false
	}
	if len(t) != 10 && len(t) != 12 {
		return "", false
	}
	return t, true
}

// NormalizePhone reduces the input to digits and normalizes it to the
// +7XXXXXXXXXX form. Ten digits are treated as a domestic subscriber number,
// a leading trunk "8" is replaced with the country code.
func NormalizePhone(text string) (string, bool) {
	digits := nonDigit.ReplaceAllString(strings.TrimSpace(text), "")
	if digits == "" {
		return "", false
	}

	if len(digits) == 10 {
		digits = countryCode + digits
	}
	if len(digits) == 11 && strings.HasPrefix(digits, trunkPrefix) {
		digits = countryCode + digits[1:]
	}

	if len(digits) == 11 && strings.HasPrefix(digits, countryCode) {
		return "+" + digits, true
	}
	return "", false
}

// HasLetters reports whether the text contains Latin or Cyrillic letters.
// Identifier steps use it to reject natural-language answers.
func HasLetters(text string) bool {
	return letterRe.MatchString(text)
}
