// Package models defines the configuration document a merchant authors for
// their storefront. It is pure data: the engine never mutates a document in
// place, every resolution step derives a new view.
package models

import (
	"encoding/json"
	"strings"

	dErrors "vitrine/pkg/domain-errors"
)

// SectionID names one renderable page section. Built-in sections use bare
// identifiers; custom block references carry the CustomBlockPrefix.
type SectionID string

// Built-in section identifiers.
const (
	SectionHero             SectionID = "hero"
	SectionPromoBanner      SectionID = "promo-banner"
	SectionFeaturedProducts SectionID = "featured-products"
	SectionFooter           SectionID = "footer"
)

// CustomBlockPrefix is the reserved prefix distinguishing custom block
// references from built-in section ids inside SectionOrder.
const CustomBlockPrefix = "custom_"

// IsCustomRef reports whether the id references a custom block rather than a
// built-in section.
func (id SectionID) IsCustomRef() bool {
	return strings.HasPrefix(string(id), CustomBlockPrefix)
}

// ButtonShape is the closed set of button silhouettes a theme may pick.
type ButtonShape string

const (
	ButtonRounded ButtonShape = "rounded"
	ButtonPill    ButtonShape = "pill"
	ButtonSquare  ButtonShape = "square"
)

// Valid reports whether the shape is one of the known values.
func (s ButtonShape) Valid() bool {
	switch s {
	case ButtonRounded, ButtonPill, ButtonSquare:
		return true
	}
	return false
}

// ThemeSettings carries the theme tokens. Absent fields resolve to engine-wide
// defaults at consumption time; consumers never see an empty token.
type ThemeSettings struct {
	PaletteID    string      `json:"paletteId,omitempty"`
	ButtonShape  ButtonShape `json:"buttonShape,omitempty"`
	FontFamilyID string      `json:"fontFamilyId,omitempty"`
}

// BlockKind is the closed set of merchant-authorable section kinds.
type BlockKind string

const (
	KindTestimonials     BlockKind = "testimonials"
	KindInstagramGallery BlockKind = "instagram-gallery"
	KindFAQ              BlockKind = "faq"
	KindVideo            BlockKind = "video"
	KindTextAndImage     BlockKind = "text-and-image"
)

// Valid reports whether the kind is one of the known values.
func (k BlockKind) Valid() bool {
	switch k {
	case KindTestimonials, KindInstagramGallery, KindFAQ, KindVideo, KindTextAndImage:
		return true
	}
	return false
}

// CustomBlock is one merchant-authored section instance. Config carries the
// kind-specific payload; fields the merchant left out fall back to the
// registry defaults for the kind at resolve time.
type CustomBlock struct {
	ID     string         `json:"id"`
	Kind   BlockKind      `json:"kind"`
	Config map[string]any `json:"config,omitempty"`
}

// Validate checks the authoring-time invariants of a single block.
func (b CustomBlock) Validate() error {
	if !strings.HasPrefix(b.ID, CustomBlockPrefix) {
		return dErrors.New(dErrors.CodeBadRequest, "custom block id must carry the custom_ prefix")
	}
	if !b.Kind.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown custom block kind")
	}
	return nil
}

// ConfigurationDocument is the root aggregate for one storefront. All fields
// are optional: an empty document renders the default page.
type ConfigurationDocument struct {
	Theme            ThemeSettings      `json:"theme,omitzero"`
	SectionOrder     []SectionID        `json:"sectionOrder,omitempty"`
	VisibilityFlags  map[SectionID]bool `json:"visibilityFlags,omitempty"`
	CustomBlocks     []CustomBlock      `json:"customBlocks,omitempty"`
	PromoBanner      map[string]any     `json:"promoBanner,omitempty"`
	Hero             map[string]any     `json:"hero,omitempty"`
	Footer           map[string]any     `json:"footer,omitempty"`
	FeaturedProducts map[string]any     `json:"featuredProducts,omitempty"`
}

// DefaultDocument is the document a shop starts from before the merchant
// touches anything.
func DefaultDocument() ConfigurationDocument {
	return ConfigurationDocument{}
}

// BlockByID looks up a custom block by its id.
func (d ConfigurationDocument) BlockByID(id string) (CustomBlock, bool) {
	for _, b := range d.CustomBlocks {
		if b.ID == id {
			return b, true
		}
	}
	return CustomBlock{}, false
}

// Visible reports the visibility flag for a built-in section, defaulting to
// true when the flag is absent.
func (d ConfigurationDocument) Visible(id SectionID) bool {
	if v, ok := d.VisibilityFlags[id]; ok {
		return v
	}
	return true
}

// Validate checks authoring-time invariants: valid enum values and unique
// custom block ids. Resolution never needs a valid document; this gate exists
// only so authors hear about mistakes at save time.
func (d ConfigurationDocument) Validate() error {
	if d.Theme.ButtonShape != "" && !d.Theme.ButtonShape.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown button shape")
	}
	seen := make(map[string]struct{}, len(d.CustomBlocks))
	for _, b := range d.CustomBlocks {
		if err := b.Validate(); err != nil {
			return err
		}
		if _, dup := seen[b.ID]; dup {
			return dErrors.New(dErrors.CodeBadRequest, "duplicate custom block id")
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy through a JSON round trip. Documents are small;
// correctness beats allocation counting here.
func (d ConfigurationDocument) Clone() ConfigurationDocument {
	raw, err := json.Marshal(d)
	if err != nil {
		return ConfigurationDocument{}
	}
	var out ConfigurationDocument
	if err := json.Unmarshal(raw, &out); err != nil {
		return ConfigurationDocument{}
	}
	return out
}
