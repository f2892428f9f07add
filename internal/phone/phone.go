// Package phone finds and canonicalizes phone numbers in listing text.
package phone

import (
	"regexp"
	"strings"
)

const (
	// MinDigits and MaxDigits bound the digit count of an accepted
	// number after stripping separators.
	MinDigits = 8
	MaxDigits = 15
)

// Source pages mix at least three regional conventions with
// inconsistent separators. Shapes are tried in order; the first match
// in document order wins.
var shapes = []*regexp.Regexp{
	// International or local prefix followed by grouped digits:
	// +41 22 345 67 89, 0033 1 42 68 53 00, 02 123 45 67
	regexp.MustCompile(`(?:(?:\+|00)\d{1,3}[\s\-.]?|0\d[\s\-.]?)(?:[\s\-.]?\d{2,3}){4}`),
	// French domestic five-group format: 01 42 68 53 00
	regexp.MustCompile(`0\d[\s\-]?\d{2}[\s\-]?\d{2}[\s\-]?\d{2}[\s\-]?\d{2}`),
	// US parenthesized area code: (212) 555-0147
	regexp.MustCompile(`\(\d{3}\)[\s\-]?\d{3}[\s\-]?\d{4}`),
}

var nonPhoneRunes = regexp.MustCompile(`[^\d+]`)

// Normalize canonicalizes a phone-like string to digits with an
// optional leading +. It returns "" when the input does not hold a
// plausible number. Normalize is idempotent: feeding its own output
// back yields the same value.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	cleaned := nonPhoneRunes.ReplaceAllString(raw, "")
	// A + is only meaningful in front.
	if i := strings.LastIndex(cleaned, "+"); i > 0 {
		cleaned = strings.ReplaceAll(cleaned, "+", "")
	}

	// 00 international prefix convention rewritten to + form.
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}

	// Bare French country code without + collapses to domestic form.
	if strings.HasPrefix(cleaned, "33") && len(cleaned) == 11 {
		cleaned = "0" + cleaned[2:]
	}

	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < MinDigits || len(digits) > MaxDigits {
		return ""
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}

// First scans free text for the first syntactically valid phone number
// and returns its normalized form, or "" when none is found.
func First(text string) string {
	if text == "" {
		return ""
	}

	best := -1
	found := ""
	for _, re := range shapes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if best >= 0 && loc[0] >= best {
				continue
			}
			if normalized := Normalize(text[loc[0]:loc[1]]); normalized != "" {
				best = loc[0]
				found = normalized
			}
		}
	}
	return found
}
