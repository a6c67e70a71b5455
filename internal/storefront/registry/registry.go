// Package registry is the static catalog of render contracts: which sections
// exist, their default props, and the canonical page order. Adding a new
// custom block kind means adding one entry here; nothing else changes.
package registry

import "vitrine/internal/storefront/models"

// Descriptor is the render contract for one section or block kind.
type Descriptor struct {
	// Kind selects the component that renders this section.
	Kind string
	// RequiredInputs names the props a renderer cannot do without. Defaults
	// must cover every one of them so an empty config still renders.
	RequiredInputs []string
	// Defaults is the full default payload. Resolution overlays authored
	// values on top of a copy of this map.
	Defaults map[string]any
	// VisibilityKey, when set, is the id whose visibility flag gates the
	// section. Only built-in sections have one; custom blocks are shown by
	// being referenced.
	VisibilityKey models.SectionID
}

// Theme token defaults. Missing tokens always resolve to these, never to an
// empty value.
const (
	DefaultPaletteID    = "classic"
	DefaultButtonShape  = models.ButtonRounded
	DefaultFontFamilyID = "sans"
)

var builtins = map[models.SectionID]Descriptor{
	models.SectionHero: {
		Kind:           "hero",
		RequiredInputs: []string{"headline"},
		Defaults: map[string]any{
			"headline":   "Welcome to our shop",
			"subheading": "",
			"imageUrl":   "",
			"ctaLabel":   "Shop now",
		},
		VisibilityKey: models.SectionHero,
	},
	models.SectionPromoBanner: {
		Kind:           "promo-banner",
		RequiredInputs: []string{"text"},
		Defaults: map[string]any{
			"text":    "",
			"enabled": false,
			"linkUrl": "",
		},
		VisibilityKey: models.SectionPromoBanner,
	},
	models.SectionFeaturedProducts: {
		Kind:           "featured-products",
		RequiredInputs: []string{"title"},
		Defaults: map[string]any{
			"title":      "Featured products",
			"productIds": []any{},
			"maxItems":   float64(8),
		},
		VisibilityKey: models.SectionFeaturedProducts,
	},
	models.SectionFooter: {
		Kind:           "footer",
		RequiredInputs: nil,
		Defaults: map[string]any{
			"aboutText":  "",
			"showSocial": true,
			"links":      []any{},
		},
		VisibilityKey: models.SectionFooter,
	},
}

var blockKinds = map[models.BlockKind]Descriptor{
	models.KindTestimonials: {
		Kind:           string(models.KindTestimonials),
		RequiredInputs: []string{"title"},
		Defaults: map[string]any{
			"title":   "What our customers say",
			"entries": []any{},
		},
	},
	models.KindInstagramGallery: {
		Kind:           string(models.KindInstagramGallery),
		RequiredInputs: []string{"handle"},
		Defaults: map[string]any{
			"handle":   "",
			"imageUrl": "",
			"columns":  float64(3),
		},
	},
	models.KindFAQ: {
		Kind:           string(models.KindFAQ),
		RequiredInputs: []string{"title"},
		Defaults: map[string]any{
			"title":    "Frequently asked questions",
			"subtitle": "Everything you need to know",
			"items":    []any{},
		},
	},
	models.KindVideo: {
		Kind:           string(models.KindVideo),
		RequiredInputs: []string{"videoUrl"},
		Defaults: map[string]any{
			"videoUrl": "",
			"caption":  "",
			"autoplay": false,
		},
	},
	models.KindTextAndImage: {
		Kind:           string(models.KindTextAndImage),
		RequiredInputs: []string{"text"},
		Defaults: map[string]any{
			"text":          "",
			"imageUrl":      "",
			"imagePosition": "left",
		},
	},
}

// canonicalOrder is the page layout used when a document carries no explicit
// SectionOrder.
var canonicalOrder = []models.SectionID{
	models.SectionPromoBanner,
	models.SectionHero,
	models.SectionFeaturedProducts,
	models.SectionFooter,
}

// Describe returns the contract for a built-in section id.
func Describe(id models.SectionID) (Descriptor, bool) {
	d, ok := builtins[id]
	return d, ok
}

// DescribeKind returns the contract for a custom block kind.
func DescribeKind(kind models.BlockKind) (Descriptor, bool) {
	d, ok := blockKinds[kind]
	return d, ok
}

// CanonicalOrder returns a copy of the default section order.
func CanonicalOrder() []models.SectionID {
	out := make([]models.SectionID, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// BuiltinIDs returns the known built-in section ids (unspecified order).
func BuiltinIDs() []models.SectionID {
	out := make([]models.SectionID, 0, len(builtins))
	for id := range builtins {
		out = append(out, id)
	}
	return out
}
