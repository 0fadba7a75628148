package wiki

import (
	"context"
	"fmt"

	models "github.com/Haizul/kitsune/internal/domain/models/wiki"
	wikiRepo "github.com/Haizul/kitsune/internal/domain/repositories/wiki"
)

// RedirectAttrGenerator produces the title or slug for a redirect stub left
// behind by a rename.
type RedirectAttrGenerator struct {
	docRepo wikiRepo.DocumentRepository
}

// NewRedirectAttrGenerator creates a new generator.
func NewRedirectAttrGenerator(docRepo wikiRepo.DocumentRepository) *RedirectAttrGenerator {
	return &RedirectAttrGenerator{docRepo: docRepo}
}

// Generate returns the redirect's value for attr (wiki.AttrTitle or
// wiki.AttrSlug). When the attribute is changing in the current operation,
// the tracked old value is reused so existing links keep working. Otherwise
// a unique variant is synthesized from template, which takes the current
// value and an integer suffix; the unmodified current value is never
// returned.
func (g *RedirectAttrGenerator) Generate(ctx context.Context, doc *models.Document, attr, template string) (string, error) {
	if old, ok := doc.OldAttr(attr); ok {
		return old, nil
	}

	// Synthesize a variant nothing in this locale uses yet. The check is
	// racy by nature; the storage uniqueness constraint is the backstop.
	for i := 1; ; i++ {
		candidate := fmt.Sprintf(template, doc.Attr(attr), i)
		exists, err := g.docRepo.ExistsWithAttr(ctx, doc.Locale, attr, candidate, "")
		if err != nil {
			return "", fmt.Errorf("generate redirect %s: %w", attr, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
