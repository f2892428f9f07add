package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsSeparators(t *testing.T) {
	assert.Equal(t, "0142685300", Normalize("01 42 68 53 00"))
	assert.Equal(t, "0212345678", Normalize("02-12.34 56-78"))
}

func TestNormalize_InternationalPrefix(t *testing.T) {
	assert.Equal(t, "+41223456789", Normalize("0041 22 345 67 89"))
	assert.Equal(t, "+41223456789", Normalize("+41 22 345 67 89"))
}

func TestNormalize_FrenchCountryCodeWithoutPlus(t *testing.T) {
	assert.Equal(t, "0142685300", Normalize("33142685300"))
}

func TestNormalize_RejectsOutOfBand(t *testing.T) {
	assert.Empty(t, Normalize("1234567"))            // 7 digits
	assert.Empty(t, Normalize("+1234567890123456")) // 16 digits
	assert.Empty(t, Normalize(""))
	assert.Empty(t, Normalize("call us"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"01 42 68 53 00",
		"0041 22 345 67 89",
		"+1 (212) 555-0147",
		"(212) 555-0147",
		"33142685300",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if once == "" {
			continue
		}
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFirst_PicksEarliestValidMatch(t *testing.T) {
	text := "Boulangerie Martin · 4.5 stars · 01 42 68 53 00 · open until 19:00 · (212) 555-0147"
	assert.Equal(t, "0142685300", First(text))
}

func TestFirst_USFormat(t *testing.T) {
	assert.Equal(t, "2125550147", First("Call (212) 555-0147 today"))
}

func TestFirst_SkipsInvalidShapeHits(t *testing.T) {
	// Matches a shape but normalizes outside the digit band.
	assert.Empty(t, First("opening hours 08 30 to 19 00"))
}

func TestFirst_NoMatch(t *testing.T) {
	assert.Empty(t, First("Bakery with fresh bread daily"))
}
