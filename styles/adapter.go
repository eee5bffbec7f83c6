package styles

import (
	"strings"
	"time"
)

// OutfitItem is the compact item shape embedded inside a generated outfit
// response. Category carries a single style string because that is all the
// composer reports back.
type OutfitItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Style    string `json:"style"`
	Color    string `json:"color"`
	ImageURL string `json:"imageUrl"`
	UserID   string `json:"user_id"`
}

// ClothingItem is the rich wardrobe-side item shape. Fit and Gender are
// optional metadata consumed by the compatibility checks; items without
// them simply skip those checks.
type ClothingItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Color        string   `json:"color"`
	Brand        string   `json:"brand"`
	ImageURL     string   `json:"imageUrl"`
	UserID       string   `json:"user_id"`
	Season       string   `json:"season"`
	IsFavorite   bool     `json:"isFavorite"`
	WearCount    int      `json:"wearCount"`
	LastWorn     string   `json:"lastWorn"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
	Size         string   `json:"size"`
	Material     string   `json:"material"`
	Condition    string   `json:"condition"`
	Price        float64  `json:"price"`
	PurchaseDate string   `json:"purchaseDate"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
	Fit          string   `json:"fit,omitempty"`
	Gender       string   `json:"gender,omitempty"`
}

// clothingTypes is the fixed clothing type enumeration. Anything outside
// it normalizes to "other" so no item is ever left unmapped.
var clothingTypes = map[string]bool{
	"shirt":     true,
	"top":       true,
	"pants":     true,
	"bottom":    true,
	"dress":     true,
	"skirt":     true,
	"jacket":    true,
	"sweater":   true,
	"shoes":     true,
	"accessory": true,
	"other":     true,
}

// NormalizeClothingType maps a raw category string onto the enumeration,
// falling back to "other" for anything unknown.
func NormalizeClothingType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if clothingTypes[normalized] {
		return normalized
	}
	return "other"
}

// Adapter converts between the two item shapes. Clock feeds the timestamp
// defaults of ToClothingItem; it is injected so conversions can be made
// deterministic in tests instead of baking time.Now into the output.
type Adapter struct {
	Clock func() time.Time
}

// NewAdapter returns an adapter on the real clock.
func NewAdapter() *Adapter {
	return &Adapter{Clock: time.Now}
}

func (a *Adapter) now() string {
	clock := a.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Format(time.RFC3339)
}

// ToClothingItem expands an outfit item into the wardrobe shape, filling
// every wardrobe-only field with a neutral default. The conversion is
// lossy on purpose; only the shared fields carry over.
func (a *Adapter) ToClothingItem(item OutfitItem) ClothingItem {
	now := a.now()
	return ClothingItem{
		ID:         item.ID,
		Name:       item.Name,
		Type:       NormalizeClothingType(item.Category),
		Color:      item.Color,
		Brand:      "",
		ImageURL:   item.ImageURL,
		UserID:     item.UserID,
		Season:     "",
		IsFavorite: false,
		WearCount:  0,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tags:       []string{},
	}
}

// ToOutfitItem narrows a wardrobe item into the outfit shape. Style is
// always empty: the wardrobe shape has no singular style field to draw
// from, only tag lists, and the composer owns that field.
func (a *Adapter) ToOutfitItem(item ClothingItem) OutfitItem {
	return OutfitItem{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Type,
		Style:    "",
		Color:    item.Color,
		ImageURL: item.ImageURL,
		UserID:   item.UserID,
	}
}

// ItemExistsInWardrobe checks membership by id only. Outfits keep
// snapshots of their items, so everything but the id may have drifted.
func ItemExistsInWardrobe(item OutfitItem, wardrobe []ClothingItem) bool {
	for _, candidate := range wardrobe {
		if candidate.ID == item.ID {
			return true
		}
	}
	return false
}

// FilterValidItems keeps the outfit items still present in the wardrobe.
func FilterValidItems(items []OutfitItem, wardrobe []ClothingItem) []OutfitItem {
	valid := []OutfitItem{}
	for _, item := range items {
		if ItemExistsInWardrobe(item, wardrobe) {
			valid = append(valid, item)
		}
	}
	return valid
}

// GetInvalidItems returns the outfit items whose wardrobe entry is gone.
func GetInvalidItems(items []OutfitItem, wardrobe []ClothingItem) []OutfitItem {
	invalid := []OutfitItem{}
	for _, item := range items {
		if !ItemExistsInWardrobe(item, wardrobe) {
			invalid = append(invalid, item)
		}
	}
	return invalid
}
