package extract

// selectorSet holds the ordered fallback chains for one surface kind.
// Result markup shifts often; chains are tried top to bottom and the
// first hit wins, so adding a new layout is a data change.
type selectorSet struct {
	// items are tried in priority order; the first selector yielding
	// any elements supplies the page's item list.
	items []string
	// name chains; empty trimmed text falls through to the next.
	name []string
	// requireName rejects the item outright when no name resolves;
	// otherwise the sentinel is used and disqualifies the record later.
	requireName bool
	// phoneLeaf selectors point at an explicit phone-bearing element,
	// preferred over free-text scanning when present.
	phoneLeaf []string
	// contactRegions narrow the phone search when the aggregate item
	// text yields nothing.
	contactRegions []string
	image          []string
	rating         []string
	reviews        []string
	category       []string
	// entityCard locates the element carrying the entity-encoded JSON
	// payload in entityAttr (map surfaces only).
	entityCard string
	entityAttr string
}

var selectorSets = map[Kind]selectorSet{
	KindSearch: {
		items: []string{
			"div.g",
			"div[data-sokoban-container]",
			"div.w7Dbne",
			"div.VkpGBb",
			"div.MUxGbd",
			"div.tF2Cxc",
			"div.yuRUbf",
		},
		name: []string{
			"span.OSrXXb",
			"h3.LC20lb",
			"h3",
			"h2",
			"div.vk_bk",
			"span[role='heading']",
			"div.dBln1c",
			"div.CNf3nf",
			"div.cXedhc",
		},
		requireName: true,
		contactRegions: []string{
			"div.rllt__details",
			"div.s",
			"div.I6TXqe",
			"span.OSrXXb",
		},
		image:    []string{"img.YQ4gaf", "img.XNo5Ab", "img.rISBZc", "img"},
		rating:   []string{"span.rtng", "span[aria-hidden='true']"},
		reviews:  []string{"span[aria-label*='review']"},
		category: []string{"div.YhemCb", "div.yuRUbf", "div.CCgQ5"},
	},
	KindLocal: {
		items: []string{
			"li.b_algo",
			"div.b_entityTP",
			"div.lc_content",
		},
		name: []string{
			"h2 a",
			"div.lc_title",
			"a.lc_nameLink",
			"h2",
		},
		requireName: true,
		contactRegions: []string{
			"div.b_factrow",
			"div.lc_detailsRow",
			"p",
		},
		image:    []string{"img.lc_img", "img.rms_img", "img"},
		rating:   []string{"span.csrc + span", "div.lc_rating"},
		reviews:  []string{"span[aria-label*='review']", "a.lc_reviews"},
		category: []string{"span.lc_categoryText", "div.b_factrow"},
	},
	KindMapPanel: {
		items: []string{
			"a.listings-item",
			"div.listings-item",
		},
		name: []string{
			"div.b_factrow.b_topTitle",
			"h2.listingTitle",
			"div.listings-item-title",
		},
		requireName: false,
		phoneLeaf: []string{
			"div.b_factrow.phone",
			"span.longNum",
		},
		contactRegions: []string{
			"div.b_factrow",
		},
		image:      []string{"img.listings-img", "img"},
		rating:     []string{"span.csrc + span"},
		reviews:    []string{"span.reviewCount"},
		category:   []string{"span.categoryText"},
		entityCard: "a.listings-item",
		entityAttr: "data-entity",
	},
}

// ItemStrategies exposes the ordered item selectors for a kind, for
// the driver's wait and count operations.
func ItemStrategies(kind Kind) []string {
	return selectorSets[kind].items
}
