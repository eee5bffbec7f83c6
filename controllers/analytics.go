package controllers

import (
	"net/http"

	"fitcheckapi/models"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type AnalyticsController struct {
}

type typeCountOut struct {
	ClothingType string `json:"clothing_type"`
	DisplayName  string `json:"display_name"`
	Count        int64  `json:"count"`
}

type materialCountOut struct {
	Material string `json:"material"`
	Count    int64  `json:"count"`
}

type itemSummaryOut struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ClothingType string `json:"clothing_type"`
	WearCount    int    `json:"wear_count"`
}

type outfitSummaryOut struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Occasion  string `json:"occasion"`
	WearCount int    `json:"wear_count"`
}

func (controller *AnalyticsController) AnalyticsRoutes(g *echo.Group) {
	g.GET("/wardrobe", controller.WardrobeStats)
	g.GET("/outfits", controller.OutfitStats)
}

func (controller *AnalyticsController) WardrobeStats(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	closet := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND status = ?", user.ID, "in_closet")

	var totalItems int64
	if err := closet.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}

	var favoriteCount int64
	if err := closet.Session(&gorm.Session{}).Where("is_favorite = ?", true).Count(&favoriteCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}

	titleCaser := cases.Title(language.English)

	var typeRows []struct {
		ClothingType string
		Count        int64
	}
	if err := closet.Session(&gorm.Session{}).Select("clothing_type, count(*) as count").Group("clothing_type").Order("count desc").Scan(&typeRows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}
	typeCounts := []typeCountOut{}
	for _, row := range typeRows {
		typeCounts = append(typeCounts, typeCountOut{
			ClothingType: row.ClothingType,
			DisplayName:  titleCaser.String(row.ClothingType),
			Count:        row.Count,
		})
	}

	var materialRows []struct {
		Material string
		Count    int64
	}
	if err := closet.Session(&gorm.Session{}).Select("material, count(*) as count").Where("material <> ''").Group("material").Order("count desc").Scan(&materialRows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}
	materialCounts := []materialCountOut{}
	for _, row := range materialRows {
		materialCounts = append(materialCounts, materialCountOut{Material: row.Material, Count: row.Count})
	}

	var mostWornItems []models.WardrobeItem
	if err := db.Where("owner_id = ? AND status = ? AND wear_count > 0", user.ID, "in_closet").Order("wear_count desc").Limit(5).Find(&mostWornItems).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}
	mostWorn := []itemSummaryOut{}
	for _, item := range mostWornItems {
		mostWorn = append(mostWorn, itemSummaryOut{ID: item.ID, Name: item.Name, ClothingType: item.ClothingType, WearCount: item.WearCount})
	}

	var neverWornCount int64
	if err := closet.Session(&gorm.Session{}).Where("wear_count = 0").Count(&neverWornCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_items":           totalItems,
		"favorite_count":        favoriteCount,
		"by_clothing_type":      typeCounts,
		"material_distribution": materialCounts,
		"most_worn":             mostWorn,
		"never_worn_count":      neverWornCount,
	})
}

func (controller *AnalyticsController) OutfitStats(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	owned := db.Model(&models.Outfit{}).Where("user_account_id = ?", user.ID)

	var totalOutfits int64
	if err := owned.Session(&gorm.Session{}).Count(&totalOutfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := owned.Session(&gorm.Session{}).Select("status, count(*) as count").Group("status").Scan(&statusRows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}
	byStatus := map[string]int64{}
	for _, row := range statusRows {
		byStatus[row.Status] = row.Count
	}

	var favoriteCount int64
	if err := owned.Session(&gorm.Session{}).Where("is_favorite = ?", true).Count(&favoriteCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}

	// average over completed outfits only, score is null while pending
	var avgConfidence *float64
	if err := owned.Session(&gorm.Session{}).Select("avg(confidence_score)").Where("status = ?", "completed").Scan(&avgConfidence).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}

	var mostWornOutfits []models.Outfit
	if err := db.Where("user_account_id = ? AND wear_count > 0", user.ID).Order("wear_count desc").Limit(5).Find(&mostWornOutfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}
	mostWorn := []outfitSummaryOut{}
	for _, outfit := range mostWornOutfits {
		mostWorn = append(mostWorn, outfitSummaryOut{ID: outfit.ID, Name: outfit.Name, Occasion: outfit.Occasion, WearCount: outfit.WearCount})
	}

	var avgRating *float64
	if err := db.Model(&models.OutfitFeedback{}).Select("avg(rating)").Where("user_account_id = ?", user.ID).Scan(&avgRating).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_outfits":      totalOutfits,
		"by_status":          byStatus,
		"favorite_count":     favoriteCount,
		"average_confidence": avgConfidence,
		"average_rating":     avgRating,
		"most_worn":          mostWorn,
	})
}
