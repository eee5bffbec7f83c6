package styles

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of a single compatibility check. Checks
// never fail hard: missing data means "no opinion" and mismatches land in
// Warnings for the UI to surface however it wants.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Warnings []string `json:"warnings"`
}

// UserProfile carries the optional styling attributes of the user. Empty
// string means the user never set the field and the corresponding check is
// skipped.
type UserProfile struct {
	Gender        string `json:"gender"`
	SkinTone      string `json:"skin_tone"`
	BodyType      string `json:"body_type"`
	FitPreference string `json:"fit_preference"`
}

// materialCompatibility lists, per material, the materials it pairs well
// with. Looked up symmetrically: a pair only warns when neither side lists
// the other.
var materialCompatibility = map[string][]string{
	"cotton":    {"denim", "linen", "wool", "silk"},
	"denim":     {"cotton", "leather", "wool"},
	"leather":   {"denim", "cotton", "wool"},
	"silk":      {"cotton", "wool", "cashmere"},
	"wool":      {"cotton", "denim", "silk", "cashmere", "leather"},
	"linen":     {"cotton", "silk"},
	"cashmere":  {"silk", "wool"},
	"polyester": {"cotton", "denim"},
}

// seasonMaterials lists the materials that feel right in each season.
var seasonMaterials = map[string][]string{
	"spring": {"cotton", "denim", "linen", "polyester"},
	"summer": {"cotton", "linen", "silk", "polyester"},
	"fall":   {"wool", "denim", "leather", "cotton", "cashmere"},
	"winter": {"wool", "cashmere", "leather", "denim"},
}

// skinToneColors lists recommended colors per skin tone. Matching is by
// substring so "light blue" satisfies a "blue" recommendation.
var skinToneColors = map[string][]string{
	"warm":    {"olive", "orange", "brown", "gold", "coral", "cream", "beige"},
	"cool":    {"blue", "purple", "pink", "emerald", "gray", "white"},
	"neutral": {"blue", "green", "white", "black", "gray", "navy"},
	"deep":    {"white", "yellow", "red", "cobalt", "fuchsia"},
	"fair":    {"navy", "burgundy", "emerald", "charcoal", "blue"},
	"olive":   {"green", "brown", "cream", "rust", "teal"},
}

// bodyTypeFits lists the fits that flatter each body type.
var bodyTypeFits = map[string][]string{
	"hourglass":         {"fitted", "tailored", "wrap"},
	"pear":              {"a-line", "relaxed", "fitted"},
	"apple":             {"relaxed", "straight", "empire"},
	"rectangle":         {"fitted", "structured", "layered"},
	"athletic":          {"fitted", "straight", "relaxed"},
	"inverted triangle": {"a-line", "relaxed", "straight"},
}

func validResult() ValidationResult {
	return ValidationResult{IsValid: true, Warnings: []string{}}
}

// mergeResults concatenates warnings and ANDs the valid flags.
func mergeResults(results ...ValidationResult) ValidationResult {
	merged := validResult()
	for _, result := range results {
		merged.IsValid = merged.IsValid && result.IsValid
		merged.Warnings = append(merged.Warnings, result.Warnings...)
	}
	return merged
}

// CheckMaterialCompatibility compares every pair of items against the
// material map. Items without a material are skipped.
func CheckMaterialCompatibility(items []ClothingItem) ValidationResult {
	result := validResult()
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a := NormalizeStyle(items[i].Material)
			b := NormalizeStyle(items[j].Material)
			if a == "" || b == "" || a == b {
				continue
			}
			if materialsListed(a, b) || materialsListed(b, a) {
				continue
			}
			result.IsValid = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s and %s may not pair well together", a, b))
		}
	}
	return result
}

func materialsListed(material, candidate string) bool {
	for _, compatible := range materialCompatibility[material] {
		if compatible == candidate {
			return true
		}
	}
	return false
}

// CheckWeatherAppropriateness warns per item when its material is off for
// the season. An unknown season has an empty accepted list, so every item
// with a material warns.
func CheckWeatherAppropriateness(items []ClothingItem, season string) ValidationResult {
	result := validResult()
	if strings.TrimSpace(season) == "" {
		return result
	}
	accepted := seasonMaterials[strings.ToLower(strings.TrimSpace(season))]
	for _, item := range items {
		material := NormalizeStyle(item.Material)
		if material == "" {
			continue
		}
		found := false
		for _, ok := range accepted {
			if ok == material {
				found = true
				break
			}
		}
		if !found {
			result.IsValid = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s may not be ideal for %s", item.Name, strings.ToLower(season)))
		}
	}
	return result
}

// CheckSkinToneCompatibility warns per item whose color contains none of
// the recommended colors for the user's skin tone. No-op when the profile
// has no skin tone.
func CheckSkinToneCompatibility(items []ClothingItem, profile UserProfile) ValidationResult {
	result := validResult()
	skinTone := NormalizeStyle(profile.SkinTone)
	if skinTone == "" {
		return result
	}
	recommended := skinToneColors[skinTone]
	for _, item := range items {
		color := NormalizeStyle(item.Color)
		if color == "" {
			continue
		}
		found := false
		for _, rec := range recommended {
			if strings.Contains(color, rec) {
				found = true
				break
			}
		}
		if !found {
			result.IsValid = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s (%s) may not complement your skin tone", item.Name, color))
		}
	}
	return result
}

// CheckBodyTypeFit warns per item whose fit is outside the recommended
// fits for the user's body type, and independently when it conflicts with
// an explicit fit preference.
func CheckBodyTypeFit(items []ClothingItem, profile UserProfile) ValidationResult {
	result := validResult()
	bodyType := NormalizeStyle(profile.BodyType)
	fitPreference := NormalizeStyle(profile.FitPreference)
	recommended := bodyTypeFits[bodyType]
	for _, item := range items {
		fit := NormalizeStyle(item.Fit)
		if fit == "" {
			continue
		}
		if bodyType != "" {
			found := false
			for _, rec := range recommended {
				if rec == fit {
					found = true
					break
				}
			}
			if !found {
				result.IsValid = false
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s (%s fit) may not flatter a %s body type", item.Name, fit, bodyType))
			}
		}
		if fitPreference != "" && fit != fitPreference {
			result.IsValid = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s (%s fit) differs from your preferred %s fit", item.Name, fit, fitPreference))
		}
	}
	return result
}

// CheckGenderAppropriateness warns per item whose gender target is set,
// not unisex, and differs from the profile gender. No-op without a
// profile gender.
func CheckGenderAppropriateness(items []ClothingItem, profile UserProfile) ValidationResult {
	result := validResult()
	gender := NormalizeStyle(profile.Gender)
	if gender == "" {
		return result
	}
	for _, item := range items {
		itemGender := NormalizeStyle(item.Gender)
		if itemGender == "" || itemGender == "unisex" || itemGender == gender {
			continue
		}
		result.IsValid = false
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s is tagged for %s", item.Name, itemGender))
	}
	return result
}

// ValidateOutfitCompatibility runs every check over the candidate items
// and merges the results. Pure function of its inputs; it annotates, it
// never blocks.
func ValidateOutfitCompatibility(items []ClothingItem, profile UserProfile, season string) ValidationResult {
	return mergeResults(
		CheckMaterialCompatibility(items),
		CheckWeatherAppropriateness(items, season),
		CheckSkinToneCompatibility(items, profile),
		CheckBodyTypeFit(items, profile),
		CheckGenderAppropriateness(items, profile),
	)
}
