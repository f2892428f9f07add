package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

const searchItem = `
<div class="g">
  <h3 class="LC20lb">Boulangerie Martin</h3>
  <div class="rllt__details">
    <span>12 Rue de la Paix, Paris</span>
    <span>01 42 68 53 00</span>
  </div>
  <span class="rtng">4,5</span>
  <span aria-label="1 203 reviews">(1 203)</span>
  <div class="YhemCb">Bakery</div>
  <img class="YQ4gaf" data-src="//maps.example.com/photo/martin.jpg">
</div>`

func TestItems_FirstStrategyWins(t *testing.T) {
	d := doc(t, `<html><body>
		<div class="g"><h3>A</h3></div>
		<div class="g"><h3>B</h3></div>
		<div class="tF2Cxc"><h3>C</h3></div>
	</body></html>`)

	items := Items(d, KindSearch)
	assert.Len(t, items, 2)
}

func TestItems_FallsThroughToLaterStrategy(t *testing.T) {
	d := doc(t, `<html><body><div class="tF2Cxc"><h3>Only</h3></div></body></html>`)
	items := Items(d, KindSearch)
	assert.Len(t, items, 1)
}

func TestItems_NoStrategyMatches(t *testing.T) {
	d := doc(t, `<html><body><p>nothing here</p></body></html>`)
	assert.Empty(t, Items(d, KindSearch))
}

func TestRecord_SearchItem(t *testing.T) {
	d := doc(t, "<html><body>"+searchItem+"</body></html>")
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	rec, ok := Record(items[0], KindSearch)
	require.True(t, ok)

	assert.Equal(t, "Boulangerie Martin", rec.Name)
	assert.Equal(t, "0142685300", rec.Phone)
	assert.Equal(t, "https://maps.example.com/photo/martin.jpg", rec.Image)
	assert.InDelta(t, 4.5, rec.Rating, 0.001)
	assert.Equal(t, 1203, rec.Reviews)
	assert.Equal(t, "Bakery", rec.Category)
	assert.True(t, rec.HasName())
}

func TestRecord_MissingNameRejectedForSearch(t *testing.T) {
	d := doc(t, `<html><body><div class="g"><span>01 42 68 53 00</span></div></body></html>`)
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	_, ok := Record(items[0], KindSearch)
	assert.False(t, ok)
}

func TestRecord_MissingNameDefaultsToSentinelForMaps(t *testing.T) {
	d := doc(t, `<html><body><a class="listings-item"><span class="longNum">0041 22 345 67 89</span></a></body></html>`)
	items := Items(d, KindMapPanel)
	require.Len(t, items, 1)

	rec, ok := Record(items[0], KindMapPanel)
	require.True(t, ok)
	assert.Equal(t, model.NameSentinel, rec.Name)
	assert.False(t, rec.HasName())
	assert.Equal(t, "+41223456789", rec.Phone)
}

func TestRecord_PhoneFromContactRegionFallback(t *testing.T) {
	d := doc(t, `<html><body><div class="g">
		<h3>Cafe Central</h3>
		<div class="rllt__details"><span>(212) 555-0147</span></div>
	</div></body></html>`)
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	rec, ok := Record(items[0], KindSearch)
	require.True(t, ok)
	assert.Equal(t, "2125550147", rec.Phone)
}

func TestRecord_NoPhoneYieldsEmpty(t *testing.T) {
	d := doc(t, `<html><body><div class="g"><h3>Phoneless Cafe</h3><span>open daily</span></div></body></html>`)
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	rec, ok := Record(items[0], KindSearch)
	require.True(t, ok)
	assert.Empty(t, rec.Phone)
}

func TestResolveImage_PrefersAbsoluteOverBase64(t *testing.T) {
	d := doc(t, `<html><body><div class="g">
		<h3>Img Cafe</h3>
		<img class="YQ4gaf" src="data:image/png;base64,iVBOR">
		<img class="XNo5Ab" src="https://cdn.example.com/cafe.jpg">
	</div></body></html>`)
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	rec, _ := Record(items[0], KindSearch)
	assert.Equal(t, "https://cdn.example.com/cafe.jpg", rec.Image)
}

func TestResolveImage_Base64AsLastResort(t *testing.T) {
	d := doc(t, `<html><body><div class="g">
		<h3>Inline Cafe</h3>
		<img class="YQ4gaf" src="data:image/png;base64,iVBOR">
	</div></body></html>`)
	items := Items(d, KindSearch)
	require.Len(t, items, 1)

	rec, _ := Record(items[0], KindSearch)
	assert.Equal(t, "data:image/png;base64,iVBOR", rec.Image)
}

func TestParseRating_Unparsable(t *testing.T) {
	assert.Zero(t, parseRating("no rating yet"))
	assert.InDelta(t, 4.7, parseRating("4.7 stars"), 0.001)
	assert.InDelta(t, 4.2, parseRating("4,2"), 0.001)
}

func TestParseReviews_Unparsable(t *testing.T) {
	assert.Zero(t, parseReviews("be the first to review"))
	assert.Equal(t, 204, parseReviews("(204)"))
}
