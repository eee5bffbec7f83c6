package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"fitcheckapi/models"
	"fitcheckapi/services"
	"fitcheckapi/styles"
	"fitcheckapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Free plan cap on total generated outfits.
const freeOutfitLimit = 5

type GenerateOutfitIn struct {
	Occasion string `json:"occasion" validate:"required,max=100"`
	Style    string `json:"style" validate:"omitempty,max=50"`
	Mood     string `json:"mood" validate:"omitempty,max=50"`
	Season   string `json:"season" validate:"omitempty,season"`
}

type UpdateOutfitIn struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Occasion *string `json:"occasion" validate:"omitempty,max=100"`
	Style    *string `json:"style" validate:"omitempty,max=50"`
	ItemIDs  []uint  `json:"item_ids" validate:"omitempty,max=10"`
}

type OutfitFeedbackIn struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment *string  `json:"comment" validate:"omitempty,max=1000"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type OutfitItemOut struct {
	WardrobeItemID uint   `json:"wardrobe_item_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Style          string `json:"style"`
	Color          string `json:"color"`
	IsStale        bool   `json:"is_stale"`
}

type OutfitOut struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Occasion        string          `json:"occasion"`
	Style           string          `json:"style"`
	Mood            string          `json:"mood"`
	Season          string          `json:"season"`
	Status          string          `json:"status"`
	Items           []OutfitItemOut `json:"items"`
	ConfidenceScore *float64        `json:"confidence_score"`
	Reasoning       *string         `json:"reasoning"`
	Warnings        []string        `json:"warnings"`
	IsFavorite      bool            `json:"is_favorite"`
	WearCount       int             `json:"wear_count"`
	LastWorn        *string         `json:"last_worn"`
	PreviewUrl      *string         `json:"preview_url"`
	CreatedAt       string          `json:"created_at"`
}

type OutfitsController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.Generate)
	g.GET("/list", controller.ListOutfits)
	g.GET("/:outfitId", controller.GetOutfit)
	g.PUT("/:outfitId", controller.UpdateOutfit)
	g.DELETE("/:outfitId", controller.DeleteOutfit)
	g.POST("/:outfitId/favorite", controller.ToggleFavorite)
	g.POST("/:outfitId/worn", controller.MarkWorn)
	g.POST("/:outfitId/feedback", controller.SubmitFeedback)
}

func (controller *OutfitsController) Generate(c echo.Context) error {
	var req GenerateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	if !user.FullBodyAvatarSet {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Please set up your full body avatar first to generate outfits"})
	}

	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if user.Subscription == nil || *user.Subscription == "free" {
		var totalOutfitCount int64
		if err := db.Model(&models.Outfit{}).Where("user_account_id = ?", user.ID).Count(&totalOutfitCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
		}
		fmt.Printf("[User %v] Free plan, outfit count: %v", user.ID, totalOutfitCount)
		if totalOutfitCount >= freeOutfitLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of total %v outfits, please subscribe", freeOutfitLimit)})
		}
	}

	if user.EnforcedDailyOutfitLimit != nil {
		var dailyOutfitCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.Outfit{}).Where("user_account_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailyOutfitCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get outfit data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, outfit count: %v", user.ID, dailyOutfitCount)
		if dailyOutfitCount >= int64(*user.EnforcedDailyOutfitLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily outfits. Please wait for the next day.", *user.EnforcedDailyOutfitLimit)})
		}
	}

	var closetItemCount int64
	if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND status = ? AND processing_status = ?", user.ID, "in_closet", "completed").Count(&closetItemCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
	}
	if closetItemCount < 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please add at least a couple of processed items to your closet first"})
	}

	avatarURL := ""
	if user.UserFullBodyImageURL != nil {
		avatarURL = *user.UserFullBodyImageURL
	}
	outfit := models.Outfit{
		Occasion:               req.Occasion,
		Style:                  styles.NormalizeStyle(req.Style),
		Mood:                   req.Mood,
		Season:                 req.Season,
		UserAccountID:          user.ID,
		Status:                 "pending",
		GeneratedWithAvatarURL: avatarURL,
	}
	if err := db.Create(&outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create outfit, please try again"})
	}

	task, err := tasks.NewOutfitGenerationTask(outfit.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not generate outfit, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not generate outfit, please try again"})
	}
	fmt.Println("[Queue] Generate outfit task submitted, Outfit ID: ", outfit.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":     outfit.ID,
		"status": outfit.Status,
	})
}

// outfitResponse flattens an outfit with snapshot items; invalidIDs marks
// snapshots whose backing wardrobe item no longer exists.
func outfitResponse(outfit models.Outfit, invalidIDs map[uint]bool, previewUrl *string) OutfitOut {
	items := []OutfitItemOut{}
	for _, item := range outfit.Items {
		items = append(items, OutfitItemOut{
			WardrobeItemID: item.WardrobeItemID,
			Name:           item.Name,
			Category:       item.Category,
			Style:          item.Style,
			Color:          item.Color,
			IsStale:        invalidIDs[item.WardrobeItemID],
		})
	}
	out := OutfitOut{
		ID:              outfit.ID,
		Name:            outfit.Name,
		Occasion:        outfit.Occasion,
		Style:           outfit.Style,
		Mood:            outfit.Mood,
		Season:          outfit.Season,
		Status:          outfit.Status,
		Items:           items,
		ConfidenceScore: outfit.ConfidenceScore,
		Reasoning:       outfit.Reasoning,
		Warnings:        append([]string{}, outfit.Warnings...),
		IsFavorite:      outfit.IsFavorite,
		WearCount:       outfit.WearCount,
		PreviewUrl:      previewUrl,
		CreatedAt:       outfit.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if outfit.LastWorn != nil {
		lastWorn := outfit.LastWorn.Format("2006-01-02T15:04:05Z")
		out.LastWorn = &lastWorn
	}
	return out
}

// currentWardrobeWire loads the user's closet as adapter wire items for
// staleness checks against outfit snapshots.
func currentWardrobeWire(db *gorm.DB, userID uint) ([]styles.ClothingItem, error) {
	var wardrobeItems []models.WardrobeItem
	if err := db.Where("owner_id = ? AND status = ?", userID, "in_closet").Find(&wardrobeItems).Error; err != nil {
		return nil, err
	}
	wardrobe := make([]styles.ClothingItem, 0, len(wardrobeItems))
	for i := range wardrobeItems {
		wardrobe = append(wardrobe, wardrobeItems[i].ToClothingItem())
	}
	return wardrobe, nil
}

func invalidSnapshotIDs(outfit models.Outfit, wardrobe []styles.ClothingItem) map[uint]bool {
	wireItems := make([]styles.OutfitItem, 0, len(outfit.Items))
	for i := range outfit.Items {
		wireItems = append(wireItems, outfit.Items[i].ToWireItem())
	}
	invalidIDs := map[uint]bool{}
	for _, invalid := range styles.GetInvalidItems(wireItems, wardrobe) {
		for i := range outfit.Items {
			if fmt.Sprint(outfit.Items[i].WardrobeItemID) == invalid.ID {
				invalidIDs[outfit.Items[i].WardrobeItemID] = true
			}
		}
	}
	return invalidIDs
}

// populatePresignedPreviews resolves preview image URLs through the cache
// with the direct R2 failsafe, concurrently per outfit.
func (controller *OutfitsController) populatePresignedPreviews(ctx context.Context, outfits []models.Outfit) []*string {
	previews := make([]*string, len(outfits))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	var wg sync.WaitGroup
	for i, outfit := range outfits {
		if outfit.PreviewImageURL == nil || *outfit.PreviewImageURL == "" {
			continue
		}
		wg.Add(1)
		go func(index int, objectKey string) {
			defer wg.Done()
			url, err := controller.URLCache.GetReadURL(ctx, objectKey)
			if err == nil {
				previews[index] = &url
				return
			}
			log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("failure_type", "cache_system")
				scope.SetExtra("objectKey", objectKey)
				sentry.CaptureException(err)
			})
			fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
			if fallbackErr != nil {
				log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
				sentry.CaptureException(fallbackErr)
				return
			}
			previews[index] = &fallbackUrl
		}(i, *outfit.PreviewImageURL)
	}
	wg.Wait()
	return previews
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var outfits []models.Outfit
	if err := db.Preload("Items").Where("user_account_id = ?", user.ID).Order("created_at desc").Find(&outfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfits"})
	}

	wardrobe, err := currentWardrobeWire(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	previews := controller.populatePresignedPreviews(c.Request().Context(), outfits)

	responses := []OutfitOut{}
	for i, outfit := range outfits {
		responses = append(responses, outfitResponse(outfit, invalidSnapshotIDs(outfit, wardrobe), previews[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"outfits": responses,
	})
}

func fetchOwnOutfit(c echo.Context, db *gorm.DB, user models.UserAccount, preloadItems bool) (*models.Outfit, error) {
	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid outfit id"})
	}
	var outfit models.Outfit
	query := db.Where("id = ? AND user_account_id = ?", outfitId, user.ID)
	if preloadItems {
		query = query.Preload("Items")
	}
	result := query.Limit(1).Find(&outfit)
	if result.Error != nil {
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfit"})
	}
	if result.RowsAffected == 0 {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	return &outfit, nil
}

func (controller *OutfitsController) GetOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, true)
	if outfit == nil {
		return errResp
	}

	wardrobe, err := currentWardrobeWire(db, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	previews := controller.populatePresignedPreviews(c.Request().Context(), []models.Outfit{*outfit})
	return c.JSON(http.StatusOK, outfitResponse(*outfit, invalidSnapshotIDs(*outfit, wardrobe), previews[0]))
}

func (controller *OutfitsController) UpdateOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, true)
	if outfit == nil {
		return errResp
	}

	var req UpdateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if req.Name != nil {
		outfit.Name = *req.Name
	}
	if req.Occasion != nil {
		outfit.Occasion = *req.Occasion
	}
	if req.Style != nil {
		outfit.Style = styles.NormalizeStyle(*req.Style)
	}

	// Empty list keeps the current snapshots, gorm rejects empty-slice creates.
	if len(req.ItemIDs) > 0 {
		var wardrobeItems []models.WardrobeItem
		if err := db.Where("id IN ? AND owner_id = ? AND status = ?", req.ItemIDs, user.ID, "in_closet").Find(&wardrobeItems).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
		}
		if len(wardrobeItems) != len(req.ItemIDs) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Some items are no longer in your closet"})
		}
		if err := db.Where("outfit_id = ?", outfit.ID).Delete(&models.OutfitItem{}).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
		}
		snapshots := []models.OutfitItem{}
		for _, item := range wardrobeItems {
			snapshots = append(snapshots, models.SnapshotOutfitItem(outfit.ID, item, outfit.Style))
		}
		if err := db.Create(&snapshots).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
		}
		outfit.Items = snapshots
	}

	if err := db.Save(outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
	}
	return c.JSON(http.StatusOK, outfitResponse(*outfit, map[uint]bool{}, nil))
}

func (controller *OutfitsController) DeleteOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, false)
	if outfit == nil {
		return errResp
	}

	if err := db.Where("outfit_id = ?", outfit.ID).Delete(&models.OutfitItem{}).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete outfit, please try again"})
	}
	if err := db.Delete(outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete outfit, please try again"})
	}
	fmt.Println("Outfit deleted ", outfit.ID, " for user ", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}

func (controller *OutfitsController) ToggleFavorite(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, false)
	if outfit == nil {
		return errResp
	}

	outfit.IsFavorite = !outfit.IsFavorite
	if err := db.Save(outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          outfit.ID,
		"is_favorite": outfit.IsFavorite,
	})
}

func (controller *OutfitsController) MarkWorn(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, true)
	if outfit == nil {
		return errResp
	}

	now := time.Now()
	outfit.WearCount = outfit.WearCount + 1
	outfit.LastWorn = &now
	if err := db.Save(outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update outfit, please try again"})
	}

	// wearing the outfit counts as wearing every item in it
	for _, snapshot := range outfit.Items {
		var item models.WardrobeItem
		result := db.Where("id = ? AND owner_id = ?", snapshot.WardrobeItemID, user.ID).Limit(1).Find(&item)
		if result.Error != nil || result.RowsAffected == 0 {
			continue
		}
		item.WearCount = item.WearCount + 1
		item.LastWorn = &now
		db.Save(&item)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         outfit.ID,
		"wear_count": outfit.WearCount,
		"last_worn":  outfit.LastWorn,
	})
}

func (controller *OutfitsController) SubmitFeedback(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	outfit, errResp := fetchOwnOutfit(c, db, user, false)
	if outfit == nil {
		return errResp
	}

	var req OutfitFeedbackIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	feedback := models.OutfitFeedback{
		OutfitID:      outfit.ID,
		UserAccountID: user.ID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		Tags:          pq.StringArray(req.Tags),
	}
	if err := db.Create(&feedback).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save feedback, please try again"})
	}
	fmt.Println("Feedback saved for outfit ", outfit.ID, " rating ", req.Rating)
	return c.JSON(http.StatusCreated, feedback)
}
