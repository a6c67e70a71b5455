// Package merge implements the override merge used by live preview: a partial
// override document is laid over a base configuration without discarding
// untouched nested fields.
//
// The rule is deliberately asymmetric. Objects merge key by key, recursively.
// Arrays replace wholesale - sectionOrder and customBlocks included. Partial
// array edits are not a supported use case; callers send the full array.
// Diffing arrays instead would change which blocks disappear during live
// edits, so this asymmetry is a correctness contract, not a style choice.
package merge

import (
	"encoding/json"
	"errors"

	"vitrine/internal/storefront/models"
)

// Merge lays override onto base and returns the result. Neither input is
// mutated. A malformed override (nil, or not an object at the root as produced
// by FromJSON) merges as a no-op: the render path must never receive an error
// from here.
func Merge(base, override map[string]any) map[string]any {
	if override == nil {
		return cloneMap(base)
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range override {
		bv, exists := out[k]
		bm, baseIsMap := bv.(map[string]any)
		om, overrideIsMap := v.(map[string]any)
		if exists && baseIsMap && overrideIsMap {
			out[k] = Merge(bm, om)
			continue
		}
		// Override wins outright: scalars, arrays, nulls, type changes.
		out[k] = cloneValue(v)
	}
	return out
}

// FromJSON decodes raw override bytes into a merge-ready map. Anything that is
// not a JSON object at the root comes back nil, which Merge treats as a no-op.
func FromJSON(raw []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// DocumentToMap converts a typed document into the generic map form the merge
// operates on.
func DocumentToMap(doc models.ConfigurationDocument) map[string]any {
	raw, err := json.Marshal(doc)
	if err != nil {
		return map[string]any{}
	}
	m := FromJSON(raw)
	if m == nil {
		return map[string]any{}
	}
	return m
}

// DocumentFromMap converts the generic map form back into a typed document.
// Fields that no longer fit the schema are dropped rather than failing: a
// bad override degrades, it never breaks rendering.
func DocumentFromMap(m map[string]any) models.ConfigurationDocument {
	raw, err := json.Marshal(m)
	if err != nil {
		return models.ConfigurationDocument{}
	}
	var doc models.ConfigurationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// A type mismatch on one field must not wipe the rest of the
		// document; encoding/json keeps decoding past the bad field, so
		// doc still holds everything that fit the schema.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return doc
		}
		return models.ConfigurationDocument{}
	}
	return doc
}

// Apply merges a raw override document onto a typed base configuration.
// This is the single entry point the preview path uses.
func Apply(base models.ConfigurationDocument, override map[string]any) models.ConfigurationDocument {
	if override == nil {
		return base.Clone()
	}
	return DocumentFromMap(Merge(DocumentToMap(base), override))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
