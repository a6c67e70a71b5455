// Package theme projects resolved theme tokens onto a styling surface:
// CSS custom properties served ahead of the component tree. Components read
// tokens through the variables, never hardcoded values, so applying a new
// palette touches nothing but this projection.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"vitrine/internal/storefront/models"
	"vitrine/internal/storefront/registry"
)

// Palette is one named color scheme.
type Palette struct {
	Primary    string
	Secondary  string
	Background string
	Text       string
	Accent     string
}

var palettes = map[string]Palette{
	"classic": {
		Primary:    "#1a1a2e",
		Secondary:  "#16213e",
		Background: "#ffffff",
		Text:       "#1f2933",
		Accent:     "#e94560",
	},
	"forest": {
		Primary:    "#2d6a4f",
		Secondary:  "#40916c",
		Background: "#f8f9fa",
		Text:       "#1b4332",
		Accent:     "#d8f3dc",
	},
	"dusk": {
		Primary:    "#22223b",
		Secondary:  "#4a4e69",
		Background: "#f2e9e4",
		Text:       "#22223b",
		Accent:     "#c9ada7",
	},
}

var fontStacks = map[string]string{
	"sans":  `"Inter", "Helvetica Neue", Arial, sans-serif`,
	"serif": `"Lora", Georgia, serif`,
	"mono":  `"JetBrains Mono", "Courier New", monospace`,
}

var buttonRadii = map[models.ButtonShape]string{
	models.ButtonRounded: "6px",
	models.ButtonPill:    "999px",
	models.ButtonSquare:  "0",
}

// Projection is the computed set of CSS custom properties for one theme.
type Projection struct {
	Variables map[string]string
}

// Project maps resolved theme tokens to CSS custom properties. Unknown token
// values fall back to the registry defaults so the styling layer never
// receives a blank variable.
func Project(t models.ResolvedTheme) Projection {
	palette, ok := palettes[t.PaletteID]
	if !ok {
		palette = palettes[registry.DefaultPaletteID]
	}
	font, ok := fontStacks[t.FontFamilyID]
	if !ok {
		font = fontStacks[registry.DefaultFontFamilyID]
	}
	radius, ok := buttonRadii[t.ButtonShape]
	if !ok {
		radius = buttonRadii[registry.DefaultButtonShape]
	}
	return Projection{Variables: map[string]string{
		"--color-primary":    palette.Primary,
		"--color-secondary":  palette.Secondary,
		"--color-background": palette.Background,
		"--color-text":       palette.Text,
		"--color-accent":     palette.Accent,
		"--font-family":      font,
		"--button-radius":    radius,
	}}
}

// CSS renders the projection as a :root rule. Variables are sorted so the
// output is deterministic for a given configuration.
func (p Projection) CSS() string {
	names := make([]string, 0, len(p.Variables))
	for name := range p.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %s;\n", name, p.Variables[name])
	}
	b.WriteString("}\n")
	return b.String()
}
