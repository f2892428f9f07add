// Package extract turns heterogeneous result-page DOM fragments into
// candidate business records using ordered selector-fallback chains.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/phone"
)

var (
	floatRe    = regexp.MustCompile(`[\d]+[.,]?\d*`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// Items enumerates the candidate item fragments of a results page.
// Item strategies are tried in priority order; the first one yielding
// any elements wins for that page. A page where no strategy matches
// simply contributes zero items.
func Items(doc *goquery.Document, kind Kind) []*goquery.Selection {
	for _, sel := range selectorSets[kind].items {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		items := make([]*goquery.Selection, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			items = append(items, s)
		})
		return items
	}
	return nil
}

// Record extracts a candidate business record from one item fragment.
// ok is false only when the surface requires an up-front name and none
// resolved; every other missing field degrades to its zero value. The
// caller still applies the acceptance rule (non-sentinel name plus a
// phone inside the digit band).
func Record(item *goquery.Selection, kind Kind) (rec model.BusinessRecord, ok bool) {
	set := selectorSets[kind]

	rec.Name = firstText(item, set.name)
	if rec.Name == "" {
		if set.requireName {
			return model.BusinessRecord{}, false
		}
		rec.Name = model.NameSentinel
	}

	rec.Phone = resolvePhone(item, set)
	rec.Image = resolveImage(item, set.image)
	rec.Rating = parseRating(firstText(item, set.rating))
	rec.Reviews = parseReviews(firstText(item, set.reviews))
	rec.Category = firstText(item, set.category)

	if set.entityCard != "" {
		rec.Latitude, rec.Longitude = resolveGeo(item, set)
	}

	return rec, true
}

// firstText returns the trimmed text of the first selector in the
// chain matching an element with non-empty text.
func firstText(item *goquery.Selection, chain []string) string {
	for _, sel := range chain {
		text := strings.TrimSpace(item.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// resolvePhone prefers an explicit phone-bearing leaf, then scans the
// aggregate item text, then narrows to known contact regions.
func resolvePhone(item *goquery.Selection, set selectorSet) string {
	for _, sel := range set.phoneLeaf {
		leaf := strings.TrimSpace(item.Find(sel).First().Text())
		if leaf == "" {
			continue
		}
		if p := phone.First(leaf); p != "" {
			return p
		}
		if p := phone.Normalize(leaf); p != "" {
			return p
		}
	}

	if p := phone.First(itemText(item)); p != "" {
		return p
	}

	for _, sel := range set.contactRegions {
		var found string
		item.Find(sel).EachWithBreak(func(_ int, region *goquery.Selection) bool {
			found = phone.First(itemText(region))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// itemText flattens a fragment to space-separated visible text so
// numbers split across inline elements stay apart.
func itemText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "#text" {
			if t := strings.TrimSpace(n.Text()); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if t := itemText(n); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// resolveImage walks the image chain preferring eagerly-loaded
// absolute URLs over lazy-load placeholders, keeping a base64 inline
// image only as the last resort. Protocol-relative URLs come back
// normalized to https.
func resolveImage(item *goquery.Selection, chain []string) string {
	base64Fallback := ""
	for _, sel := range chain {
		img := item.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range []string{"src", "data-src"} {
			raw, exists := img.Attr(attr)
			if !exists {
				continue
			}
			raw = strings.TrimSpace(raw)
			switch {
			case strings.HasPrefix(raw, "//"):
				return "https:" + raw
			case strings.HasPrefix(raw, "http"):
				return raw
			case strings.HasPrefix(raw, "data:image") && base64Fallback == "":
				base64Fallback = raw
			}
		}
	}
	return base64Fallback
}

func resolveGeo(item *goquery.Selection, set selectorSet) (*float64, *float64) {
	card := item
	if !item.Is(set.entityCard) {
		card = item.Find(set.entityCard).First()
	}
	raw, _ := card.Attr(set.entityAttr)
	return decodeEntity(raw)
}

// parseRating reads the leading decimal out of rating text, tolerating
// comma decimals. Unparsable text yields zero, never an error.
func parseRating(text string) float64 {
	m := floatRe.FindString(text)
	if m == "" {
		return 0
	}
	r, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return r
}

func parseReviews(text string) int {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
