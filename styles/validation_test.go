package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialCompatibilitySymmetricLookup(t *testing.T) {
	// Cotton does not list leather, but leather lists cotton, so the pair
	// passes through the symmetric lookup.
	items := []ClothingItem{
		{Name: "Tee", Material: "cotton"},
		{Name: "Jacket", Material: "leather"},
	}
	result := CheckMaterialCompatibility(items)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestMaterialCompatibilityMismatch(t *testing.T) {
	items := []ClothingItem{
		{Name: "Blouse", Material: "silk"},
		{Name: "Jeans", Material: "denim"},
	}
	result := CheckMaterialCompatibility(items)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "silk")
	assert.Contains(t, result.Warnings[0], "denim")
}

func TestMaterialCompatibilityUnknownSkipped(t *testing.T) {
	items := []ClothingItem{
		{Name: "Tee", Material: "cotton"},
		{Name: "Mystery", Material: ""},
	}
	result := CheckMaterialCompatibility(items)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestWeatherAppropriateness(t *testing.T) {
	items := []ClothingItem{
		{Name: "Wool Coat", Material: "wool"},
		{Name: "Linen Shirt", Material: "linen"},
	}
	result := CheckWeatherAppropriateness(items, "Summer")
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Wool Coat")
}

func TestWeatherAppropriatenessUnknownSeasonWarnsEverything(t *testing.T) {
	items := []ClothingItem{{Name: "Tee", Material: "cotton"}}
	result := CheckWeatherAppropriateness(items, "monsoon")
	assert.False(t, result.IsValid)
	assert.Len(t, result.Warnings, 1)
}

func TestWeatherAppropriatenessNoSeason(t *testing.T) {
	items := []ClothingItem{{Name: "Wool Coat", Material: "wool"}}
	result := CheckWeatherAppropriateness(items, "")
	assert.True(t, result.IsValid)
}

func TestSkinToneSubstringMatch(t *testing.T) {
	profile := UserProfile{SkinTone: "cool"}
	items := []ClothingItem{
		{Name: "Shirt", Color: "light blue"},
		{Name: "Scarf", Color: "mustard"},
	}
	result := CheckSkinToneCompatibility(items, profile)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Scarf")
}

func TestSkinToneNoProfile(t *testing.T) {
	items := []ClothingItem{{Name: "Scarf", Color: "mustard"}}
	result := CheckSkinToneCompatibility(items, UserProfile{})
	assert.True(t, result.IsValid)
}

func TestBodyTypeFit(t *testing.T) {
	profile := UserProfile{BodyType: "pear"}
	items := []ClothingItem{
		{Name: "Dress", Fit: "a-line"},
		{Name: "Blazer", Fit: "structured"},
	}
	result := CheckBodyTypeFit(items, profile)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Blazer")
}

func TestBodyTypeFitPreferenceIndependent(t *testing.T) {
	// Fit preference warns even when the body type check passes.
	profile := UserProfile{BodyType: "pear", FitPreference: "relaxed"}
	items := []ClothingItem{{Name: "Dress", Fit: "a-line"}}
	result := CheckBodyTypeFit(items, profile)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "preferred relaxed fit")
}

func TestBodyTypeFitNoProfile(t *testing.T) {
	items := []ClothingItem{{Name: "Blazer", Fit: "structured"}}
	result := CheckBodyTypeFit(items, UserProfile{})
	assert.True(t, result.IsValid)
}

func TestGenderAppropriateness(t *testing.T) {
	profile := UserProfile{Gender: "female"}
	items := []ClothingItem{
		{Name: "Tee", Gender: "unisex"},
		{Name: "Oxford", Gender: "male"},
		{Name: "Skirt", Gender: ""},
	}
	result := CheckGenderAppropriateness(items, profile)
	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Oxford")
}

func TestGenderAppropriatenessNoProfile(t *testing.T) {
	items := []ClothingItem{{Name: "Oxford", Gender: "male"}}
	result := CheckGenderAppropriateness(items, UserProfile{})
	assert.True(t, result.IsValid)
}

func TestValidateOutfitCompatibilityMerges(t *testing.T) {
	profile := UserProfile{SkinTone: "cool", Gender: "female"}
	items := []ClothingItem{
		{Name: "Blouse", Material: "silk", Color: "blue"},
		{Name: "Jeans", Material: "denim", Color: "mustard", Gender: "male"},
	}
	result := ValidateOutfitCompatibility(items, profile, "summer")
	assert.False(t, result.IsValid)
	// silk+denim pair, denim off-season for summer, mustard off skin tone,
	// male-tagged jeans.
	assert.Len(t, result.Warnings, 4)
}

func TestValidateOutfitCompatibilityEmptyInputs(t *testing.T) {
	result := ValidateOutfitCompatibility(nil, UserProfile{}, "")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}
