package wiki

// Category classifies a document. A translation's category always matches its
// parent's.
type Category int

const (
	CategoryTroubleshooting Category = 10
	CategoryHowTo           Category = 20
	CategoryHowToContribute Category = 30
	CategoryAdministration  Category = 40
	CategoryNavigation      Category = 50
	CategoryTemplates       Category = 60
)

// Categories lists the valid category values.
var Categories = []Category{
	CategoryTroubleshooting,
	CategoryHowTo,
	CategoryHowToContribute,
	CategoryAdministration,
	CategoryNavigation,
	CategoryTemplates,
}

// DefaultIACategories are the information-architecture categories whose
// documents participate in related-content lookups.
var DefaultIACategories = []Category{CategoryTroubleshooting, CategoryHowTo}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Significance grades how much a revision changed its document. The first
// revision of a document has no significance (nil).
type Significance int

const (
	SignificanceTypo   Significance = 10
	SignificanceMedium Significance = 20
	SignificanceMajor  Significance = 30
)

// TemplateTitlePrefix marks template documents by title.
const TemplateTitlePrefix = "Template:"

const (
	// RedirectHTMLPrefix is how a rendered redirect document's HTML begins.
	RedirectHTMLPrefix = `<p>REDIRECT <a`

	// RedirectContentTemplate formats the wiki content of a redirect
	// revision; the argument is the target document's title.
	RedirectContentTemplate = "REDIRECT [[%s]]"

	// RedirectTitleTemplate and RedirectSlugTemplate format synthesized
	// title/slug variants for redirect stubs. Arguments: old value, counter.
	RedirectTitleTemplate = "%s Redirect %d"
	RedirectSlugTemplate  = "%s-redirect-%d"
)

// Attribute names accepted by rename tracking and collision checks.
const (
	AttrTitle = "title"
	AttrSlug  = "slug"
)
