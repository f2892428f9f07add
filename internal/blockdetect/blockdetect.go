// Package blockdetect recognizes anti-automation interstitials served
// in place of real results.
package blockdetect

import "strings"

// Signal describes which signature tripped the detector.
type Signal string

const (
	SignalNone     Signal = ""
	SignalURL      Signal = "url"
	SignalTitle    Signal = "title"
	SignalBodyText Signal = "body_text"
	SignalElement  Signal = "element"
)

// URL path markers of challenge/verification interstitials.
var urlMarkers = []string{
	"/sorry",
	"/challenge",
	"/verify",
}

// Short phrases matched against the page title.
var titlePhrases = []string{
	"captcha",
	"not a robot",
	"unusual traffic",
	"robot check",
	"verification",
}

// Sentence-level phrases matched against the full page text.
var bodyPhrases = []string{
	"checks to see if it's really you",
	"our systems have detected unusual traffic",
	"to continue, please type the characters",
	"why did this happen",
}

// Structural selectors of known challenge widgets.
var elementSelectors = []string{
	"#captcha-form",
	".g-recaptcha",
	"form[action*='sorry']",
	"input[name='captcha']",
	"#recaptcha-anchor",
}

// Detect inspects a rendered page's URL, title, and text for block
// signatures. hasElement resolves a CSS selector against the live DOM;
// a nil func skips the structural checks. Detect is pure: the caller
// decides how to abort.
func Detect(pageURL, title, bodyText string, hasElement func(selector string) bool) (bool, Signal) {
	lowerURL := strings.ToLower(pageURL)
	for _, marker := range urlMarkers {
		if strings.Contains(lowerURL, marker) {
			return true, SignalURL
		}
	}

	lowerTitle := strings.ToLower(title)
	for _, phrase := range titlePhrases {
		if strings.Contains(lowerTitle, phrase) {
			return true, SignalTitle
		}
	}

	lowerBody := strings.ToLower(bodyText)
	for _, phrase := range bodyPhrases {
		if strings.Contains(lowerBody, phrase) {
			return true, SignalBodyText
		}
	}

	if hasElement != nil {
		for _, sel := range elementSelectors {
			if hasElement(sel) {
				return true, SignalElement
			}
		}
	}

	return false, SignalNone
}
