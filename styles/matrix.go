// Package styles holds the static compatibility data and the pure helpers
// used to assemble and annotate outfits: the style compatibility matrix,
// the outfit compatibility checks and the wardrobe/outfit item adapter.
// Everything here is plain in-memory data, built once at startup and never
// mutated, so all functions are safe to call concurrently.
package styles

import (
	"fmt"
	"strings"
)

// StyleCompatibilityMatrix maps a normalized style tag to the set of styles
// it can be combined with. Every key lists itself. The relation is read
// one-directionally from the requested style's list, so symmetry is a data
// authoring concern, not enforced here.
var StyleCompatibilityMatrix = map[string][]string{
	"casual":          {"casual", "streetwear", "athleisure", "minimalist", "preppy", "vintage"},
	"formal":          {"formal", "business casual", "old money", "minimalist"},
	"business casual": {"business casual", "formal", "preppy", "minimalist", "old money"},
	"streetwear":      {"streetwear", "casual", "athleisure", "y2k", "grunge"},
	"athleisure":      {"athleisure", "casual", "streetwear", "minimalist"},
	"minimalist":      {"minimalist", "casual", "formal", "business casual", "old money"},
	"bohemian":        {"bohemian", "vintage", "romantic", "casual"},
	"vintage":         {"vintage", "bohemian", "casual", "old money", "dark academia"},
	"preppy":          {"preppy", "business casual", "casual", "old money"},
	"old money":       {"old money", "formal", "preppy", "minimalist", "vintage", "dark academia"},
	"dark academia":   {"dark academia", "old money", "vintage", "grunge"},
	"y2k":             {"y2k", "streetwear", "grunge"},
	"grunge":          {"grunge", "streetwear", "y2k", "dark academia", "edgy"},
	"romantic":        {"romantic", "bohemian", "vintage"},
	"edgy":            {"edgy", "grunge", "streetwear"},
}

// NormalizeStyle trims whitespace and lowercases a style tag so lookups
// tolerate how users and the LLM spell them.
func NormalizeStyle(style string) string {
	return strings.ToLower(strings.TrimSpace(style))
}

// CompatibleStyles returns the compatible set for a style, or an empty
// slice when the matrix has never heard of it. Unknown styles still match
// themselves through the direct check in StylesCompatible.
func CompatibleStyles(style string) []string {
	compatible, ok := StyleCompatibilityMatrix[NormalizeStyle(style)]
	if !ok {
		return []string{}
	}
	return compatible
}

// StylesCompatible reports whether b can be worn with a. Checked from a's
// list only.
func StylesCompatible(a, b string) bool {
	na := NormalizeStyle(a)
	nb := NormalizeStyle(b)
	if na == nb {
		return true
	}
	for _, compatible := range CompatibleStyles(na) {
		if compatible == nb {
			return true
		}
	}
	return false
}

// StyleMatches reports whether an item tagged with itemStyles fits a
// requested style. An empty request or an untagged item never blocks the
// match.
func StyleMatches(requestedStyle string, itemStyles []string) bool {
	if NormalizeStyle(requestedStyle) == "" {
		return true
	}
	if len(itemStyles) == 0 {
		return true
	}
	requested := NormalizeStyle(requestedStyle)
	for _, itemStyle := range itemStyles {
		if NormalizeStyle(itemStyle) == requested {
			return true
		}
	}
	for _, compatible := range CompatibleStyles(requested) {
		for _, itemStyle := range itemStyles {
			if NormalizeStyle(itemStyle) == compatible {
				return true
			}
		}
	}
	return false
}

// ValidateStyleMatrix asserts that every matrix key is normalized, lists
// itself, and only lists normalized values. It does not require symmetry.
// Meant for a startup sanity check and tests.
func ValidateStyleMatrix() error {
	for key, compatible := range StyleCompatibilityMatrix {
		if key != NormalizeStyle(key) {
			return fmt.Errorf("style matrix key %q is not normalized", key)
		}
		selfListed := false
		for _, value := range compatible {
			if value != NormalizeStyle(value) {
				return fmt.Errorf("style matrix entry %q -> %q is not normalized", key, value)
			}
			if value == key {
				selfListed = true
			}
		}
		if !selfListed {
			return fmt.Errorf("style matrix key %q does not list itself as compatible", key)
		}
	}
	return nil
}
