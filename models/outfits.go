package models

import (
	"fmt"
	"time"

	"fitcheckapi/styles"

	"github.com/lib/pq"
)

// Outfit is created pending by the generate endpoint and completed by the
// worker. Items are stored as snapshots so outfits survive wardrobe edits;
// staleness is detected per request through the styles adapter.
type Outfit struct {
	JsonModel
	Name     string `json:"name"`
	Occasion string `json:"occasion"`
	Style    string `json:"style"`
	Mood     string `json:"mood"`
	Season   string `json:"season"`

	UserAccountID uint         `json:"-"`
	UserAccount   UserAccount  `json:"-"`
	Items         []OutfitItem `gorm:"foreignKey:OutfitID" json:"items"`

	ConfidenceScore *float64 `json:"confidence_score"`
	Reasoning       *string  `gorm:"type:text" json:"reasoning"`

	IsFavorite bool       `gorm:"default:false" json:"is_favorite"`
	WearCount  int        `gorm:"default:0" json:"wear_count"`
	LastWorn   *time.Time `json:"last_worn"`

	// compatibility warnings produced at generation time
	Warnings pq.StringArray `gorm:"type:text[]" json:"warnings"`

	// user avatar at the point of generation
	GeneratedWithAvatarURL string `json:"generated_with_avatar_url"`

	PreviewImageURL *string `json:"preview_image_url"`

	Status                 string   `json:"status"`   // pending, completed, failed
	Duration               *float64 `json:"duration"` // in seconds
	LLMModel               *string  `json:"llm_model"`
	LLMInputTokenCount     *int32   `json:"llm_input_token_usage"`
	LLMOutputTokenCount    *int32   `json:"llm_output_token_usage"`
	LLMTotalTokenCount     *int32   `json:"llm_total_token_usage"`
	LLMThoughtsTokenCount  *int32   `json:"llm_thoughts_token_count"`
	LLMThoughts            *string  `gorm:"type:text" json:"llm_thoughts"`
	GenerationRetryTimes   int      `json:"generation_retry_times"`
	GenerationErrorMessage *string  `json:"generation_error_message"`
}

// OutfitItem is the persisted snapshot of a wardrobe item at generation
// time. Mirrors the wire shape in the styles package.
type OutfitItem struct {
	JsonModel
	OutfitID       uint   `json:"-"`
	WardrobeItemID uint   `json:"wardrobe_item_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Style          string `json:"style"`
	Color          string `json:"color"`
	ImageURL       string `json:"image_url"`
	OwnerID        uint   `json:"-"`
}

// ToWireItem converts the snapshot row into the adapter's wire shape.
func (item *OutfitItem) ToWireItem() styles.OutfitItem {
	return styles.OutfitItem{
		ID:       fmt.Sprint(item.WardrobeItemID),
		Name:     item.Name,
		Category: item.Category,
		Style:    item.Style,
		Color:    item.Color,
		ImageURL: item.ImageURL,
		UserID:   fmt.Sprint(item.OwnerID),
	}
}

// SnapshotOutfitItem captures a wardrobe item as an outfit snapshot.
func SnapshotOutfitItem(outfitID uint, item WardrobeItem, style string) OutfitItem {
	snapshot := OutfitItem{
		OutfitID:       outfitID,
		WardrobeItemID: item.ID,
		Name:           item.Name,
		Category:       styles.NormalizeClothingType(item.ClothingType),
		Style:          styles.NormalizeStyle(style),
		Color:          item.Color,
		OwnerID:        item.OwnerID,
	}
	if item.ImageURL != nil {
		snapshot.ImageURL = *item.ImageURL
	}
	return snapshot
}

type OutfitFeedback struct {
	JsonModel
	OutfitID      uint           `json:"outfit_id"`
	Outfit        Outfit         `json:"-"`
	UserAccountID uint           `json:"-"`
	UserAccount   UserAccount    `json:"-"`
	Rating        int            `json:"rating"` // 1..5
	Comment       *string        `gorm:"type:text" json:"comment"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
}
