package blockdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_URLMarker(t *testing.T) {
	blocked, sig := Detect("https://www.google.com/sorry/index?continue=x", "Results", "", nil)
	assert.True(t, blocked)
	assert.Equal(t, SignalURL, sig)
}

func TestDetect_UnusualTrafficTitle(t *testing.T) {
	blocked, sig := Detect(
		"https://www.google.com/search?q=bakery",
		"Our systems have detected unusual traffic from your computer network",
		"", nil,
	)
	assert.True(t, blocked)
	assert.Equal(t, SignalTitle, sig)
}

func TestDetect_BodyPhrase(t *testing.T) {
	body := "This page checks to see if it's really you sending the requests, and not a robot."
	blocked, sig := Detect("https://www.google.com/search?q=bakery", "bakery - Search", body, nil)
	assert.True(t, blocked)
	assert.Equal(t, SignalBodyText, sig)
}

func TestDetect_StructuralSelector(t *testing.T) {
	has := func(sel string) bool { return sel == ".g-recaptcha" }
	blocked, sig := Detect("https://www.google.com/search?q=bakery", "bakery - Search", "results below", has)
	assert.True(t, blocked)
	assert.Equal(t, SignalElement, sig)
}

func TestDetect_OrdinaryResultsPage(t *testing.T) {
	blocked, sig := Detect(
		"https://www.google.com/search?q=bakery+paris&udm=1&start=0",
		"bakery paris - Google Search",
		"Boulangerie Martin 01 42 68 53 00 open now",
		func(string) bool { return false },
	)
	assert.False(t, blocked)
	assert.Equal(t, SignalNone, sig)
}

func TestDetect_NilElementLookup(t *testing.T) {
	blocked, _ := Detect("https://example.com/results", "results", "plain page", nil)
	assert.False(t, blocked)
}
