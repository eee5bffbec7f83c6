package models

import (
	"fmt"
	"time"

	"fitcheckapi/styles"

	"github.com/lib/pq"
)

type WardrobeItem struct {
	JsonModel
	Name         string      `json:"name"`
	Description  *string     `gorm:"type:text" json:"description"`
	ClothingType string      `json:"clothing_type"` // shirt, pants, dress, skirt, jacket, sweater, shoes, accessory, other
	Color        string      `json:"color"`
	Brand        string      `json:"brand"`
	Material     string      `json:"material"`
	Size         string      `json:"size"`
	Condition    string      `json:"condition"` // new, good, worn
	Fit          string      `json:"fit"`       // fitted, relaxed, straight, ...
	Gender       string      `json:"gender"`    // unisex, female, male
	Season       string      `json:"season"`    // spring, summer, fall, winter, all
	Price        *float64    `json:"price"`
	PurchaseDate *time.Time  `json:"purchase_date"`
	Notes        *string     `gorm:"type:text" json:"notes"`
	Owner        UserAccount `json:"-"`
	OwnerID      uint        `json:"-"`

	StyleTags pq.StringArray `gorm:"type:text[]" json:"style_tags"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`

	IsFavorite bool       `gorm:"default:false" json:"is_favorite"`
	WearCount  int        `gorm:"default:0" json:"wear_count"`
	LastWorn   *time.Time `json:"last_worn"`

	Status              string  `json:"status"`            // temporary, in_closet
	ImageStatus         string  `json:"image_status"`      // draft, uploaded
	ProcessingStatus    string  `json:"processing_status"` // idle, pending, analyzing, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
	ImageURL            *string `json:"image_url"`
}

// ToClothingItem bridges the stored row into the wire shape the styles
// package validates and adapts.
func (item *WardrobeItem) ToClothingItem() styles.ClothingItem {
	clothing := styles.ClothingItem{
		ID:         fmt.Sprint(item.ID),
		Name:       item.Name,
		Type:       styles.NormalizeClothingType(item.ClothingType),
		Color:      item.Color,
		Brand:      item.Brand,
		UserID:     fmt.Sprint(item.OwnerID),
		Season:     item.Season,
		IsFavorite: item.IsFavorite,
		WearCount:  item.WearCount,
		Size:       item.Size,
		Material:   item.Material,
		Condition:  item.Condition,
		Fit:        item.Fit,
		Gender:     item.Gender,
		Tags:       append([]string{}, item.Tags...),
		CreatedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ImageURL != nil {
		clothing.ImageURL = *item.ImageURL
	}
	if item.Notes != nil {
		clothing.Notes = *item.Notes
	}
	if item.Price != nil {
		clothing.Price = *item.Price
	}
	if item.PurchaseDate != nil {
		clothing.PurchaseDate = item.PurchaseDate.UTC().Format(time.RFC3339)
	}
	if item.LastWorn != nil {
		clothing.LastWorn = item.LastWorn.UTC().Format(time.RFC3339)
	}
	return clothing
}
