// Package schema validates authored configuration documents at the save
// boundary. The render path never consults it: a document that fails here is
// rejected back to the author, while anything already stored always renders
// via defaulting.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dErrors "vitrine/pkg/domain-errors"
)

const schemaURL = "https://vitrine.schemas.local/configuration.schema.json"

const configurationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "theme": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "paletteId": {"type": "string"},
        "buttonShape": {"enum": ["rounded", "pill", "square"]},
        "fontFamilyId": {"type": "string"}
      }
    },
    "sectionOrder": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "visibilityFlags": {
      "type": "object",
      "additionalProperties": {"type": "boolean"}
    },
    "customBlocks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "kind"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^custom_"},
          "kind": {"enum": ["testimonials", "instagram-gallery", "faq", "video", "text-and-image"]},
          "config": {"type": "object"}
        }
      }
    },
    "promoBanner": {"type": "object"},
    "hero": {"type": "object"},
    "footer": {"type": "object"},
    "featuredProducts": {"type": "object"}
  }
}`

var compiled = mustCompile()

func mustCompile() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(configurationSchema)); err != nil {
		panic(fmt.Sprintf("configuration schema load failed: %v", err))
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("configuration schema compile failed: %v", err))
	}
	return s
}

// ValidateBytes checks raw authored JSON against the configuration schema.
// Violations come back as bad_request domain errors for the author.
func ValidateBytes(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "configuration is not valid JSON")
	}
	if err := compiled.Validate(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "configuration does not match schema")
	}
	return nil
}
