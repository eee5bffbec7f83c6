package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fitcheckapi/models"
	"fitcheckapi/services"
	"fitcheckapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Free plan cap on the total closet size.
const freeWardrobeItemLimit = 20

// Request structs for validation
type CreateWardrobeItemIn struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	FileName     *string  `json:"file_name" validate:"required,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
	ClothingType string   `json:"clothing_type" validate:"required,clothing_type"`
	Color        string   `json:"color" validate:"omitempty,max=50"`
	Brand        string   `json:"brand" validate:"omitempty,max=100"`
	Material     string   `json:"material" validate:"omitempty,max=50"`
	Season       string   `json:"season" validate:"omitempty,season"`
	Gender       string   `json:"gender" validate:"omitempty,max=20"`
	Size         string   `json:"size" validate:"omitempty,max=20"`
	Fit          string   `json:"fit" validate:"omitempty,max=30"`
	StyleTags    []string `json:"style_tags" validate:"omitempty,max=10,dive,max=50"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	AddToCloset  *bool    `json:"add_to_closet" validate:"required"`
}

type UpdateWardrobeItemIn struct {
	Name         *string  `json:"name" validate:"omitempty,max=100"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
	ClothingType *string  `json:"clothing_type" validate:"omitempty,clothing_type"`
	Color        *string  `json:"color" validate:"omitempty,max=50"`
	Brand        *string  `json:"brand" validate:"omitempty,max=100"`
	Material     *string  `json:"material" validate:"omitempty,max=50"`
	Season       *string  `json:"season" validate:"omitempty,season"`
	Gender       *string  `json:"gender" validate:"omitempty,max=20"`
	Size         *string  `json:"size" validate:"omitempty,max=20"`
	Fit          *string  `json:"fit" validate:"omitempty,max=30"`
	StyleTags    []string `json:"style_tags" validate:"omitempty,max=10,dive,max=50"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// Response structs
type WardrobeItemResponse struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	ClothingType        string   `json:"clothing_type"`
	Color               string   `json:"color"`
	Brand               string   `json:"brand"`
	Material            string   `json:"material"`
	Season              string   `json:"season"`
	Gender              string   `json:"gender"`
	Size                string   `json:"size"`
	Fit                 string   `json:"fit"`
	StyleTags           []string `json:"style_tags"`
	Tags                []string `json:"tags"`
	IsFavorite          bool     `json:"is_favorite"`
	WearCount           int      `json:"wear_count"`
	LastWorn            *string  `json:"last_worn"`
	Status              string   `json:"status"`
	ProcessingStatus    string   `json:"processing_status"`
	ProcessErrorMessage *string  `json:"process_error_message"`
	Uri                 *string  `json:"uri,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeListResponse struct {
	Tops        []WardrobeItemResponse `json:"tops"`
	Bottoms     []WardrobeItemResponse `json:"bottoms"`
	Dresses     []WardrobeItemResponse `json:"dresses"`
	Outerwear   []WardrobeItemResponse `json:"outerwear"`
	Shoes       []WardrobeItemResponse `json:"shoes"`
	Accessories []WardrobeItemResponse `json:"accessories"`
	Other       []WardrobeItemResponse `json:"other"`
}

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.POST("/bulk-import", controller.BulkImport)
	g.GET("/list", controller.ListItems)
	g.GET("/:itemId", controller.GetItem)
	g.PUT("/:itemId", controller.UpdateItem)
	g.DELETE("/:itemId", controller.DeleteItem)
	g.POST("/:itemId/favorite", controller.ToggleFavorite)
	g.POST("/:itemId/worn", controller.MarkWorn)
}

// checkItemLimits enforces the free plan total and the per-user daily cap.
// Returns a non-nil response error when the user is over a limit.
func checkItemLimits(c echo.Context, db *gorm.DB, user models.UserAccount, adding int) error {
	if user.Subscription == nil || *user.Subscription == "free" {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Free plan, item count: %v", user.ID, totalItemCount)
		if totalItemCount+int64(adding) > freeWardrobeItemLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of total %v items, please subscribe", freeWardrobeItemLimit)})
		}
	}

	if user.EnforcedDailyItemLimit != nil {
		var dailyItemCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailyItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, item count: %v", user.ID, dailyItemCount)
		if dailyItemCount+int64(adding) > int64(*user.EnforcedDailyItemLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily items. Please wait for the next day.", *user.EnforcedDailyItemLimit)})
		}
	}
	return nil
}

func enqueueItemProcessing(c echo.Context, asynqClient *asynq.Client, itemID uint) error {
	task, err := tasks.NewWardrobeItemProcessingTask(itemID)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return err
	}
	fmt.Println("[Queue] Process item task submitted, Item ID: ", itemID, " Task ID: ", info.ID)
	return nil
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	// Validate request
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// Get user and db from context
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.IsAllowedImageExtension(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, this image format is not supported"})
	}
	if err := checkItemLimits(c, db, user, 1); err != nil {
		return err
	}

	item := models.WardrobeItem{
		Name:         req.Name,
		Description:  req.Description,
		ClothingType: req.ClothingType,
		Color:        req.Color,
		Brand:        req.Brand,
		Material:     req.Material,
		Season:       req.Season,
		Gender:       req.Gender,
		Size:         req.Size,
		Fit:          req.Fit,
		StyleTags:    pq.StringArray(req.StyleTags),
		Tags:         pq.StringArray(req.Tags),
		OwnerID:      user.ID,
		Status:       "temporary",
		ImageStatus:  "draft",
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	var uploadUrl string
	var presignErr error
	// todo clean and map the same file name as in FE UI otherwise **FAIL**
	safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, *req.FileName)

	uploadUrl, presignErr = controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	item.ImageURL = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating item with attachment",
		})
	}
	// Save to database
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}
	if req.AddToCloset != nil && *req.AddToCloset {
		item.Status = "in_closet"
		item.ProcessingStatus = "pending"
		if err := db.Save(&item).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item status, please try again"})
		}
		if err := enqueueItemProcessing(c, asynqClient, item.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
		}
	}

	// Prepare response
	response := WardrobeItemCreatedResponse{
		Item:          itemResponse(item, nil),
		FileUploadUrl: uploadUrl,
	}

	return c.JSON(http.StatusCreated, response)
}

func (controller *WardrobeController) BulkImport(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please attach a zip file with your item photos"})
	}
	src, err := fileHeader.Open()
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to read the uploaded file, please try again"})
	}
	defer src.Close()
	zipBytes, err := io.ReadAll(src)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to read the uploaded file, please try again"})
	}

	imagePaths, err := services.ExtractZipImages(zipBytes, fileHeader.Filename, user.ID)
	if err != nil {
		fmt.Printf("[User: %v] Bulk import rejected: %v\n", user.ID, err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read item photos from the archive, please check the file"})
	}
	defer func() {
		for _, path := range imagePaths {
			os.Remove(path)
		}
	}()

	if err := checkItemLimits(c, db, user, len(imagePaths)); err != nil {
		return err
	}

	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	var created []WardrobeItemResponse
	for _, imagePath := range imagePaths {
		imgBytes, err := os.ReadFile(imagePath)
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[User: %v] error reading extracted image %s: %v", user.ID, imagePath, err))
			continue
		}
		safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, filepath.Base(imagePath))
		uploadUrl, err := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[User: %v] error presigning bulk image %s: %v", user.ID, safeFileName, err))
			continue
		}
		_, statusCode, err := controller.AWSService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, imgBytes)
		if err != nil || statusCode >= 300 {
			sentry.CaptureException(fmt.Errorf("[User: %v] error uploading bulk image %s: %v (status %d)", user.ID, safeFileName, err, statusCode))
			continue
		}

		item := models.WardrobeItem{
			OwnerID:          user.ID,
			Status:           "in_closet",
			ImageStatus:      "uploaded",
			ProcessingStatus: "pending",
			ImageURL:         &safeFileName,
		}
		if err := db.Create(&item).Error; err != nil {
			sentry.CaptureException(err)
			continue
		}
		if err := enqueueItemProcessing(c, asynqClient, item.ID); err != nil {
			continue
		}
		created = append(created, itemResponse(item, nil))
	}

	if len(created) == 0 {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Could not import any items from the archive, please try again"})
	}
	fmt.Printf("[User: %v] Bulk imported %d of %d items\n", user.ID, len(created), len(imagePaths))
	return c.JSON(http.StatusCreated, echo.Map{
		"imported": len(created),
		"items":    created,
	})
}

func itemResponse(item models.WardrobeItem, uri *string) WardrobeItemResponse {
	resp := WardrobeItemResponse{
		ID:                  item.ID,
		Name:                item.Name,
		Description:         item.Description,
		ClothingType:        item.ClothingType,
		Color:               item.Color,
		Brand:               item.Brand,
		Material:            item.Material,
		Season:              item.Season,
		Gender:              item.Gender,
		Size:                item.Size,
		Fit:                 item.Fit,
		StyleTags:           append([]string{}, item.StyleTags...),
		Tags:                append([]string{}, item.Tags...),
		IsFavorite:          item.IsFavorite,
		WearCount:           item.WearCount,
		Status:              item.Status,
		ProcessingStatus:    item.ProcessingStatus,
		ProcessErrorMessage: item.ProcessErrorMessage,
		Uri:                 uri,
		CreatedAt:           item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:           item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if item.LastWorn != nil {
		lastWorn := item.LastWorn.Format("2006-01-02T15:04:05Z")
		resp.LastWorn = &lastWorn
	}
	return resp
}

// populatePresignedItemImages takes raw wardrobe models and enriches them with presigned URLs concurrently.
// This version includes a failsafe for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				// Attempt to get the URL from the cache service first.
				url, err := controller.URLCache.GetReadURL(ctx, objectKey)

				if err == nil {
					// SUCCESS: The cache system worked (either a hit or a miss+load).
					imageUrl = url
				} else {
					// FAILURE: The cache system itself failed! This is an exceptional event.
					// We will now trigger our manual failsafe.
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					// Failsafe: Bypass the cache and call the AWS service directly.
					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						// The fallback also failed. This is a critical error.
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl remains empty, but we don't fail the entire request.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = itemResponse(item, &imageUrl)
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ? AND status = ?", user.ID, "in_closet").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := WardrobeListResponse{
		Tops:        []WardrobeItemResponse{},
		Bottoms:     []WardrobeItemResponse{},
		Dresses:     []WardrobeItemResponse{},
		Outerwear:   []WardrobeItemResponse{},
		Shoes:       []WardrobeItemResponse{},
		Accessories: []WardrobeItemResponse{},
		Other:       []WardrobeItemResponse{},
	}

	for _, resp := range processedResponses {
		switch resp.ClothingType {
		case "shirt", "top", "sweater":
			response.Tops = append(response.Tops, resp)
		case "pants", "bottom", "skirt":
			response.Bottoms = append(response.Bottoms, resp)
		case "dress":
			response.Dresses = append(response.Dresses, resp)
		case "jacket":
			response.Outerwear = append(response.Outerwear, resp)
		case "shoes":
			response.Shoes = append(response.Shoes, resp)
		case "accessory":
			response.Accessories = append(response.Accessories, resp)
		default:
			response.Other = append(response.Other, resp)
		}
	}

	return c.JSON(http.StatusOK, response)
}

// fetchOwnItem loads an item by path param and verifies ownership.
func fetchOwnItem(c echo.Context, db *gorm.DB, user models.UserAccount) (*models.WardrobeItem, error) {
	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}
	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if result.Error != nil {
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch item"})
	}
	if result.RowsAffected == 0 {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	return &item, nil
}

func (controller *WardrobeController) GetItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	item, errResp := fetchOwnItem(c, db, user)
	if item == nil {
		return errResp
	}
	responses := controller.populatePresignedItemImages(c.Request().Context(), []models.WardrobeItem{*item})
	return c.JSON(http.StatusOK, responses[0])
}

func (controller *WardrobeController) UpdateItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	item, errResp := fetchOwnItem(c, db, user)
	if item == nil {
		return errResp
	}

	var req UpdateWardrobeItemIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.ClothingType != nil {
		item.ClothingType = *req.ClothingType
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.Material != nil {
		item.Material = *req.Material
	}
	if req.Season != nil {
		item.Season = *req.Season
	}
	if req.Gender != nil {
		item.Gender = *req.Gender
	}
	if req.Size != nil {
		item.Size = *req.Size
	}
	if req.Fit != nil {
		item.Fit = *req.Fit
	}
	if req.StyleTags != nil {
		item.StyleTags = pq.StringArray(req.StyleTags)
	}
	if req.Tags != nil {
		item.Tags = pq.StringArray(req.Tags)
	}

	if err := db.Save(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item, please try again"})
	}
	return c.JSON(http.StatusOK, itemResponse(*item, nil))
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	item, errResp := fetchOwnItem(c, db, user)
	if item == nil {
		return errResp
	}

	if err := db.Delete(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete item, please try again"})
	}
	fmt.Println("Item deleted ", item.ID, " for user ", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}

func (controller *WardrobeController) ToggleFavorite(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	item, errResp := fetchOwnItem(c, db, user)
	if item == nil {
		return errResp
	}

	item.IsFavorite = !item.IsFavorite
	if err := db.Save(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item, please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          item.ID,
		"is_favorite": item.IsFavorite,
	})
}

func (controller *WardrobeController) MarkWorn(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)
	item, errResp := fetchOwnItem(c, db, user)
	if item == nil {
		return errResp
	}

	now := time.Now()
	item.WearCount = item.WearCount + 1
	item.LastWorn = &now
	if err := db.Save(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item, please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         item.ID,
		"wear_count": item.WearCount,
		"last_worn":  item.LastWorn,
	})
}
