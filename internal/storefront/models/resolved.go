package models

// ResolvedSection is one render-ready section instance. It is ephemeral:
// rebuilt on every resolve pass, never persisted.
type ResolvedSection struct {
	// ID is the value that appeared in SectionOrder (built-in id or
	// custom block reference).
	ID SectionID `json:"id"`
	// Kind selects the render contract: the built-in section name or the
	// custom block kind.
	Kind string `json:"kind"`
	// Props is the fully-defaulted payload for the kind. Every key the
	// registry declares a default for is present.
	Props map[string]any `json:"props"`
}

// ResolvedTheme is the fully-defaulted theme. All three tokens are guaranteed
// non-empty.
type ResolvedTheme struct {
	PaletteID    string      `json:"paletteId"`
	ButtonShape  ButtonShape `json:"buttonShape"`
	FontFamilyID string      `json:"fontFamilyId"`
}
