// Package resolver turns a configuration document into the ordered, fully
// defaulted section list a renderer consumes. Resolution is a pure function of
// its input: deep-equal documents always produce structurally identical
// output, so re-running it on every state change is safe and cheap.
package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"

	"vitrine/internal/storefront/merge"
	"vitrine/internal/storefront/models"
	"vitrine/internal/storefront/registry"
)

// Resolve produces the render-ready section sequence for a document.
//
// Order comes from SectionOrder, falling back to the registry's canonical
// order when absent or empty. Hidden built-ins and dangling custom block
// references emit nothing - a dangling reference is an expected transient
// state while an author reorders faster than they delete, never an error.
// A built-in id appearing twice renders its first occurrence only.
func Resolve(doc models.ConfigurationDocument) []models.ResolvedSection {
	order := doc.SectionOrder
	if len(order) == 0 {
		order = registry.CanonicalOrder()
	}

	sections := make([]models.ResolvedSection, 0, len(order))
	seenBuiltin := make(map[models.SectionID]struct{})

	for _, id := range order {
		if id.IsCustomRef() {
			block, ok := doc.BlockByID(string(id))
			if !ok {
				continue
			}
			desc, ok := registry.DescribeKind(block.Kind)
			if !ok {
				continue
			}
			sections = append(sections, models.ResolvedSection{
				ID:    id,
				Kind:  desc.Kind,
				Props: merge.Merge(desc.Defaults, block.Config),
			})
			continue
		}

		desc, ok := registry.Describe(id)
		if !ok {
			continue
		}
		if _, dup := seenBuiltin[id]; dup {
			continue
		}
		seenBuiltin[id] = struct{}{}
		if !doc.Visible(desc.VisibilityKey) {
			continue
		}
		sections = append(sections, models.ResolvedSection{
			ID:    id,
			Kind:  desc.Kind,
			Props: merge.Merge(desc.Defaults, builtinConfig(doc, id)),
		})
	}
	return sections
}

// ResolveTheme fills the theme tokens. All three always come back non-empty;
// unknown button shapes degrade to the default rather than passing garbage to
// the styling layer.
func ResolveTheme(doc models.ConfigurationDocument) models.ResolvedTheme {
	theme := models.ResolvedTheme{
		PaletteID:    doc.Theme.PaletteID,
		ButtonShape:  doc.Theme.ButtonShape,
		FontFamilyID: doc.Theme.FontFamilyID,
	}
	if theme.PaletteID == "" {
		theme.PaletteID = registry.DefaultPaletteID
	}
	if !theme.ButtonShape.Valid() {
		theme.ButtonShape = registry.DefaultButtonShape
	}
	if theme.FontFamilyID == "" {
		theme.FontFamilyID = registry.DefaultFontFamilyID
	}
	return theme
}

// Fingerprint returns a stable hash of a resolved page. Canonical JSON keeps
// the hash independent of map iteration order, so equal pages always hash
// equal - the render endpoint uses this as an ETag.
func Fingerprint(sections []models.ResolvedSection, theme models.ResolvedTheme) string {
	raw, err := json.Marshal(struct {
		Sections []models.ResolvedSection `json:"sections"`
		Theme    models.ResolvedTheme     `json:"theme"`
	}{Sections: sections, Theme: theme})
	if err != nil {
		return ""
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// builtinConfig returns the authored sub-struct backing a built-in section.
func builtinConfig(doc models.ConfigurationDocument, id models.SectionID) map[string]any {
	switch id {
	case models.SectionHero:
		return doc.Hero
	case models.SectionPromoBanner:
		return doc.PromoBanner
	case models.SectionFooter:
		return doc.Footer
	case models.SectionFeaturedProducts:
		return doc.FeaturedProducts
	default:
		return nil
	}
}
