package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fitcheckapi/models"
	"fitcheckapi/services"
	"fitcheckapi/styles"
	"fitcheckapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type OutfitGenerationPayload struct {
	OutfitID uint `json:"outfit_id"`
}
type ItemProcessingPayload struct {
	ItemID uint `json:"item_id"`
}
type AvatarGenerationPayload struct {
	UserID uint `json:"user_id"`
}

// NewOutfitGenerationTask enqueues an outfit for the stylist worker.
func NewOutfitGenerationTask(outfitID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitGenerationPayload{OutfitID: outfitID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:outfit", payload), nil

}

func NewWardrobeItemProcessingTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ItemProcessingPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:process_item", payload), nil

}

func NewFullBodyAvatarGenerateTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(AvatarGenerationPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:avatar", payload), nil

}

func getWardrobeItemImage(awsService services.AWSServiceProvider, item models.WardrobeItem) ([]byte, string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fmt.Printf("[Item: %v] Bucket name: %s\n", item.ID, bucketName)
	if item.ImageURL == nil {
		return nil, "", fmt.Errorf("[Item: %v] Image URL is nil", item.ID)
	}
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, *item.ImageURL)
	fileName := filepath.Base(*item.ImageURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting presigned URL for file %s", item.ID, *item.ImageURL))
		return nil, fileName, err
	}
	fmt.Printf("Downloading... %s\n", fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", item.ID, *item.ImageURL, err))
		return nil, fileName, err
	}

	return fileBytes, fileName, nil
}

// downloadToTempFile fetches an R2 object into a local temp file, the genai
// upload helpers only accept paths.
func downloadToTempFile(awsService services.AWSServiceProvider, objectKey string) (string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, objectKey)
	if err != nil {
		return "", err
	}
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		return "", err
	}
	return services.CreateTempFile(fileBytes, filepath.Base(objectKey))
}

// outfitCandidate is the trimmed item shape fed to the composer prompt.
type outfitCandidate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Color     string   `json:"color"`
	Material  string   `json:"material"`
	Season    string   `json:"season"`
	StyleTags []string `json:"style_tags"`
}

// HandleWardrobeItemProcessingTask analyzes an uploaded item photo and fills
// in the catalog attributes the user left empty.
func HandleWardrobeItemProcessingTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.LLMStylistProvider,
	awsService services.AWSServiceProvider) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload ItemProcessingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Processing\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving item for processing %v", payload.ItemID))
		return res.Error
	}
	if item.ProcessingStatus == "completed" {
		fmt.Printf("[Item: %v] Already analyzed\n", payload.ItemID)
		return nil
	}

	fileBytes, fileName, err := getWardrobeItemImage(awsService, item)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read the item photo, please upload it again", false)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting item image: %v", payload.ItemID, err))
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	filePath, err := services.CreateTempFile(fileBytes, fileName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on creating temp file %s: %v", payload.ItemID, fileName, err))
		return err
	}
	defer os.Remove(filePath)

	item.ProcessingStatus = "analyzing"
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on saving item mid analysis %v", payload.ItemID, err))
		return err
	}

	model := services.Flash25
	fmt.Printf("[Item: %v] Model: %s\n", payload.ItemID, model.String())
	llmResponse, err := stylist.AnalyzeItem(filePath, model)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveItemProcessingFail(db, item, "Sorry, this photo contains content that we cannot process.", false)
			sentry.CaptureException(fmt.Errorf("[Item: %v] Content violation on analyzing item: %v", payload.ItemID, err))
			return nil
		}
		saveItemProcessingFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on analyzing item %s: %v", payload.ItemID, *item.ImageURL, err))
		return err
	}
	if llmResponse == nil {
		saveItemProcessingFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Response is nil but no error provided on analyzing item", payload.ItemID))
		return fmt.Errorf("[Item: %v] Response is nil but no error provided on analyzing item", payload.ItemID)
	}

	cleanContent := services.StripJSONFences(llmResponse.Response)
	fmt.Printf("[Item: %v] LLM Processed: %q, IT: %d, OT: %d, TT: %d, TOT: %d\n", payload.ItemID, cleanContent, llmResponse.InputTokenCount, llmResponse.OutputTokenCount, llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount)
	var analysis services.ItemAnalysisResponse
	if err := json.Unmarshal([]byte(cleanContent), &analysis); err != nil {
		fmt.Printf("[Item: %v] Error on parsing Gemini %s AI json %s", payload.ItemID, model.String(), llmResponse.Response)
		saveItemProcessingFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on parsing Gemini %s AI json %s", payload.ItemID, model.String(), llmResponse.Response))
		return err
	}
	if analysis.Name == "NO_ITEM" {
		saveItemProcessingFail(db, item, "We could not find a clothing item on this photo, please upload another one", false)
		return nil
	}

	// Only fill what the user left empty, manual input wins.
	if item.Name == "" {
		item.Name = analysis.Name
	}
	if item.ClothingType == "" || item.ClothingType == "other" {
		item.ClothingType = styles.NormalizeClothingType(analysis.ClothingType)
	}
	if item.Color == "" {
		item.Color = analysis.Color
	}
	if item.Material == "" {
		item.Material = analysis.Material
	}
	if item.Season == "" {
		item.Season = analysis.Season
	}
	if item.Gender == "" {
		item.Gender = analysis.Gender
	}
	if len(item.StyleTags) == 0 {
		for _, tag := range analysis.StyleTags {
			item.StyleTags = append(item.StyleTags, styles.NormalizeStyle(tag))
		}
	}
	if item.Description == nil && analysis.Description != "" {
		item.Description = services.StrPointer(analysis.Description)
	}
	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil

	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Analysis finished succesfully..\n", payload.ItemID)
	return nil
}

// HandleOutfitGenerationTask runs the whole generation pipeline: filter the
// closet by style, let the model compose, snapshot the picks, validate
// compatibility and render a preview.
func HandleOutfitGenerationTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.LLMStylistProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload OutfitGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Outfit: %v] Start Processing\n", payload.OutfitID)
	startTime := time.Now()

	var outfit models.Outfit
	res := db.Joins("UserAccount").First(&outfit, payload.OutfitID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving outfit for processing %v", payload.OutfitID))
		return res.Error
	}
	if outfit.Status == "completed" {
		fmt.Printf("[Outfit: %v] Already generated\n", payload.OutfitID)
		return nil
	}
	user := outfit.UserAccount

	var wardrobe []models.WardrobeItem
	// Only analyzed items carry the color/material/style data the composer needs,
	// matching the gate on the generate endpoint.
	result := db.Where("owner_id = ? and status = ? and processing_status = ?", outfit.UserAccountID, "in_closet", "completed").Find(&wardrobe)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error fetching wardrobe: %v", payload.OutfitID, result.Error))
		return result.Error
	}
	if len(wardrobe) == 0 {
		saveOutfitGenerationFail(db, outfit, "Your closet is empty, add a few items first", false)
		return nil
	}

	// Pre-filter by style compatibility so the model never sees items that
	// clash with the requested style.
	var candidates []outfitCandidate
	itemsByID := map[string]models.WardrobeItem{}
	for _, item := range wardrobe {
		if !styles.StyleMatches(outfit.Style, item.StyleTags) {
			continue
		}
		id := fmt.Sprint(item.ID)
		itemsByID[id] = item
		candidates = append(candidates, outfitCandidate{
			ID:        id,
			Name:      item.Name,
			Type:      styles.NormalizeClothingType(item.ClothingType),
			Color:     item.Color,
			Material:  item.Material,
			Season:    item.Season,
			StyleTags: item.StyleTags,
		})
	}
	fmt.Printf("[Outfit: %v] %d of %d closet items match style %q\n", payload.OutfitID, len(candidates), len(wardrobe), outfit.Style)
	if len(candidates) == 0 {
		saveOutfitGenerationFail(db, outfit, fmt.Sprintf("No items in your closet match the %s style", outfit.Style), false)
		return nil
	}

	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error marshaling candidates: %v", payload.OutfitID, err))
		return err
	}

	brief := services.OutfitBrief{
		Occasion:        outfit.Occasion,
		Style:           outfit.Style,
		Mood:            outfit.Mood,
		Season:          outfit.Season,
		Gender:          user.StyleProfile.Gender,
		SkinTone:        user.StyleProfile.SkinTone,
		BodyType:        user.StyleProfile.BodyType,
		FitPreference:   user.StyleProfile.FitPreference,
		PreferredStyles: user.StyleProfile.PreferredStyles,
	}
	model := services.Flash25
	modelString := model.String()
	fmt.Printf("[Outfit: %v] Model: %s\n", payload.OutfitID, modelString)

	llmResponse, err := stylist.ComposeOutfit(brief, string(candidatesJSON), model)
	if err != nil {
		saveOutfitGenerationFail(db, outfit, "Failed to compose the outfit, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error on composing outfit: %v", payload.OutfitID, err))
		return err
	}
	if llmResponse == nil {
		saveOutfitGenerationFail(db, outfit, "Failed to compose the outfit, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Response is nil but no error provided on composing", payload.OutfitID))
		return fmt.Errorf("[Outfit: %v] Response is nil but no error provided on composing", payload.OutfitID)
	}

	cleanContent := services.StripJSONFences(llmResponse.Response)
	fmt.Printf("[Outfit: %v] LLM Processed: %q, IT: %d, OT: %d, TT: %d, TOT: %d, Thoughts: %s..\n", payload.OutfitID, cleanContent, llmResponse.InputTokenCount, llmResponse.OutputTokenCount, llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount, llmResponse.Thoughts)
	var composition services.OutfitCompositionResponse
	if err := json.Unmarshal([]byte(cleanContent), &composition); err != nil {
		fmt.Printf("[Outfit: %v] Error on parsing Gemini %s AI json %s", payload.OutfitID, modelString, llmResponse.Response)
		saveOutfitGenerationFail(db, outfit, "Failed to compose the outfit, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error on parsing Gemini %s AI json %s", payload.OutfitID, modelString, llmResponse.Response))
		return err
	}
	if len(composition.ItemIDs) == 0 {
		message := "Your closet does not have enough matching items for this request"
		if composition.Reasoning != "" {
			message = composition.Reasoning
		}
		saveOutfitGenerationFail(db, outfit, message, false)
		return nil
	}

	var chosenItems []models.WardrobeItem
	for _, id := range composition.ItemIDs {
		item, ok := itemsByID[id]
		if !ok {
			// Model hallucinated an id, drop it and keep the rest.
			fmt.Printf("[Outfit: %v] Composer returned unknown item id %q\n", payload.OutfitID, id)
			sentry.CaptureException(fmt.Errorf("[Outfit: %v] Composer returned unknown item id %q", payload.OutfitID, id))
			continue
		}
		chosenItems = append(chosenItems, item)
	}
	if len(chosenItems) == 0 {
		saveOutfitGenerationFail(db, outfit, "Failed to compose the outfit, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Composer returned only unknown item ids: %v", payload.OutfitID, composition.ItemIDs))
		return fmt.Errorf("[Outfit: %v] Composer returned only unknown item ids", payload.OutfitID)
	}

	// Regeneration replaces previous snapshots.
	if err := db.Where("outfit_id = ?", outfit.ID).Delete(&models.OutfitItem{}).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error deleting previous snapshots: %v", payload.OutfitID, err))
		return err
	}
	var snapshots []models.OutfitItem
	for _, item := range chosenItems {
		snapshots = append(snapshots, models.SnapshotOutfitItem(outfit.ID, item, outfit.Style))
	}
	if err := db.CreateInBatches(snapshots, 100).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Outfit: %v] Error saving snapshots: %v", payload.OutfitID, err))
		return err
	}

	// Compatibility warnings are advisory, they never block the outfit.
	var wireItems []styles.ClothingItem
	for _, item := range chosenItems {
		wireItems = append(wireItems, item.ToClothingItem())
	}
	profile := styles.UserProfile{
		Gender:        user.StyleProfile.Gender,
		SkinTone:      user.StyleProfile.SkinTone,
		BodyType:      user.StyleProfile.BodyType,
		FitPreference: user.StyleProfile.FitPreference,
	}
	validation := styles.ValidateOutfitCompatibility(wireItems, profile, outfit.Season)
	fmt.Printf("[Outfit: %v] Compatibility: valid=%v warnings=%d\n", payload.OutfitID, validation.IsValid, len(validation.Warnings))

	if composition.Name != "" {
		outfit.Name = composition.Name
	}
	outfit.Reasoning = services.StrPointer(composition.Reasoning)
	if composition.ConfidenceScore > 0 {
		outfit.ConfidenceScore = &composition.ConfidenceScore
	}
	outfit.Warnings = validation.Warnings
	outfit.Status = "completed"
	outfit.LLMModel = &modelString
	outfit.LLMInputTokenCount = &llmResponse.InputTokenCount
	outfit.LLMOutputTokenCount = &llmResponse.OutputTokenCount
	outfit.LLMThoughtsTokenCount = &llmResponse.ThoughtsTokenCount
	outfit.LLMTotalTokenCount = &llmResponse.TotalTokenCount
	outfit.LLMThoughts = services.StrPointer(llmResponse.Thoughts)
	outfit.GenerationErrorMessage = nil

	// Preview needs the standardized avatar, skip silently when unset.
	if user.FullBodyAvatarSet && user.UserFullBodyImageURL != nil {
		previewKey, previewErr := generateOutfitPreview(db, stylist, awsService, &outfit, user, chosenItems)
		if previewErr != nil {
			fmt.Printf("[Outfit: %v] Preview generation failed: %v\n", payload.OutfitID, previewErr)
			sentry.CaptureException(fmt.Errorf("[Outfit: %v] Preview generation failed: %v", payload.OutfitID, previewErr))
		} else {
			outfit.PreviewImageURL = &previewKey
			outfit.GeneratedWithAvatarURL = *user.UserFullBodyImageURL
		}
	} else {
		fmt.Printf("[Outfit: %v] No full body avatar set, skipping preview\n", payload.OutfitID)
	}

	duration := time.Since(startTime).Seconds()
	outfit.Duration = &duration

	tx := db.Save(&outfit)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving outfit %v", payload.OutfitID))
		return tx.Error
	}
	fmt.Printf("[Outfit: %v] Generation finished succesfully in %.1fs\n", payload.OutfitID, duration)
	services.SendNotification(fbApp, db, outfit.UserAccountID, "Your outfit is ready", fmt.Sprintf("%s is waiting for you", outfit.Name), map[string]string{"outfit_id": fmt.Sprintf("%d", outfit.ID), "type": "outfit_generated"})
	return nil
}

func generateOutfitPreview(db *gorm.DB, stylist services.LLMStylistProvider, awsService services.AWSServiceProvider, outfit *models.Outfit, user models.UserAccount, items []models.WardrobeItem) (string, error) {
	avatarPath, err := downloadToTempFile(awsService, *user.UserFullBodyImageURL)
	if err != nil {
		return "", fmt.Errorf("error downloading avatar: %v", err)
	}
	defer os.Remove(avatarPath)

	var itemPaths []string
	defer func() {
		for _, path := range itemPaths {
			os.Remove(path)
		}
	}()
	for _, item := range items {
		if item.ImageURL == nil {
			continue
		}
		path, err := downloadToTempFile(awsService, *item.ImageURL)
		if err != nil {
			fmt.Printf("[Outfit: %v] Error downloading item %v image: %v\n", outfit.ID, item.ID, err)
			continue
		}
		itemPaths = append(itemPaths, path)
	}
	if len(itemPaths) == 0 {
		return "", fmt.Errorf("no item images available for preview")
	}

	llmResponse, err := stylist.GeneratePreview(avatarPath, itemPaths, services.Flash25Image)
	if err != nil {
		return "", err
	}
	if len(llmResponse.Images) == 0 {
		return "", fmt.Errorf("no preview image returned: %s", llmResponse.Response)
	}

	previewBytes, err := services.WhitenBackgroundFeathered(llmResponse.Images[0], 190, 230, 0.6)
	if err != nil {
		fmt.Printf("[Outfit: %v] Whitening failed, using raw preview: %v\n", outfit.ID, err)
		previewBytes = llmResponse.Images[0]
	}

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	previewKey := fmt.Sprintf("outfits/outfit-%v-preview.png", outfit.ID)
	uploadUrl, err := awsService.PresignLink(context.Background(), bucketName, previewKey)
	if err != nil {
		return "", fmt.Errorf("error presigning preview upload: %v", err)
	}
	respBody, statusCode, err := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, previewBytes)
	fmt.Printf("[Outfit: %v] Preview R2 upload size %v, response body: %s, status code: %d\n", outfit.ID, len(previewBytes), respBody, statusCode)
	if err != nil || statusCode >= 300 {
		return "", fmt.Errorf("error uploading preview: %v (status %d)", err, statusCode)
	}
	return previewKey, nil
}

// HandleAvatarGenerationTask converts the photo the user uploaded into the
// standardized full-body avatar used by outfit previews.
func HandleAvatarGenerationTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.LLMStylistProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	var payload AvatarGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Avatar: %v] Start Processing\n", payload.UserID)

	var user models.UserAccount
	res := db.First(&user, payload.UserID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving user for avatar processing %v", payload.UserID))
		return res.Error
	}
	if user.UserFullBodyImageURL == nil {
		saveAvatarGenerationFail(db, user, "No photo uploaded, please try again", false)
		return nil
	}

	photoPath, err := downloadToTempFile(awsService, *user.UserFullBodyImageURL)
	if err != nil {
		saveAvatarGenerationFail(db, user, "Failed to read your photo, please upload it again", true)
		sentry.CaptureException(fmt.Errorf("[Avatar: %v] Error downloading photo: %v", payload.UserID, err))
		return err
	}
	defer os.Remove(photoPath)

	llmResponse, err := stylist.GenerateAvatar(photoPath, services.Flash25Image)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveAvatarGenerationFail(db, user, "Sorry, this photo contains content that we cannot process.", false)
			return nil
		}
		saveAvatarGenerationFail(db, user, "Failed to create your avatar, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Avatar: %v] Error on generating avatar: %v", payload.UserID, err))
		return err
	}
	if strings.Contains(llmResponse.Response, "NO_PERSON") || len(llmResponse.Images) == 0 {
		saveAvatarGenerationFail(db, user, "We could not find a person on this photo, please upload another one", false)
		return nil
	}

	avatarBytes, err := services.WhitenBackgroundFeathered(llmResponse.Images[0], 190, 230, 0.6)
	if err != nil {
		fmt.Printf("[Avatar: %v] Whitening failed, using raw avatar: %v\n", payload.UserID, err)
		avatarBytes = llmResponse.Images[0]
	}

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	avatarKey := fmt.Sprintf("fullbodyavatars/%v/avatar.png", user.ID)
	uploadUrl, err := awsService.PresignLink(context.Background(), bucketName, avatarKey)
	if err != nil {
		saveAvatarGenerationFail(db, user, "Failed to save your avatar, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Avatar: %v] Error presigning avatar upload: %v", payload.UserID, err))
		return err
	}
	respBody, statusCode, err := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, avatarBytes)
	fmt.Printf("[Avatar: %v] R2 upload size %v, response body: %s, status code: %d\n", payload.UserID, len(avatarBytes), respBody, statusCode)
	if err != nil || statusCode >= 300 {
		saveAvatarGenerationFail(db, user, "Failed to save your avatar, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Avatar: %v] Error uploading avatar: %v (status %d)", payload.UserID, err, statusCode))
		return err
	}

	user.UserFullBodyImageURL = &avatarKey
	user.FullBodyAvatarSet = true
	user.FullBodyAvatarStatus = "completed"
	user.FullBodyAvatarProcessingErrorMessage = nil
	if err := db.Save(&user).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving user avatar %v", payload.UserID))
		return err
	}
	fmt.Printf("[Avatar: %v] Avatar generation finished succesfully..\n", payload.UserID)
	services.SendNotification(fbApp, db, user.ID, "Your avatar is ready", "You can now generate outfit previews on your avatar", map[string]string{"type": "avatar_generated"})
	return nil
}

func saveAvatarGenerationFail(db *gorm.DB, user models.UserAccount, msg string, shouldRetry bool) error {
	user.AvatarProcessRetryTimes = user.AvatarProcessRetryTimes + 1
	user.FullBodyAvatarProcessingErrorMessage = &msg
	if !shouldRetry || user.AvatarProcessRetryTimes >= 3 {

		user.FullBodyAvatarStatus = "failed"
	}
	tx := db.Save(&user)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Avatar %v] Error on saving user for failed status", user.ID))
		return tx.Error
	}
	return nil
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {

		item.ProcessingStatus = "failed"
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

func saveOutfitGenerationFail(db *gorm.DB, outfit models.Outfit, msg string, shouldRetry bool) error {
	outfit.GenerationRetryTimes = outfit.GenerationRetryTimes + 1
	outfit.GenerationErrorMessage = &msg
	if !shouldRetry || outfit.GenerationRetryTimes >= 3 {

		outfit.Status = "failed"
		telegram.NotifyOps(fmt.Sprintf("🛑 Outfit %v generation failed for user %v: %s", outfit.ID, outfit.UserAccountID, msg))
	}
	tx := db.Save(&outfit)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Outfit %v] Error on saving outfit for failed status", outfit.ID))
		return tx.Error
	}
	return nil
}

// ScheduledStyleDigestTask nudges users with a fit check reminder, picking
// one of their completed outfits.
func ScheduledStyleDigestTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {

	fmt.Printf("[Style Digest] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? and receive_notifications = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Style Digest] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Style Digest] Found %d users to send notifications\n", len(users))

	for _, user := range users {
		err := sendStyleDigestToUser(ctx, db, fbApp, user.ID)
		if err != nil {
			fmt.Printf("[Style Digest] Failed to send to user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Style Digest] Failed to send to user %d: %v", user.ID, err))
			continue
		}
		fmt.Printf("[Style Digest] Successfully sent digest to user %d\n", user.ID)
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}

func sendStyleDigestToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, userID uint) error {
	var outfits []models.Outfit
	result := db.Where("user_account_id = ? AND status = ?", userID, "completed").Find(&outfits)

	if result.Error != nil {
		return fmt.Errorf("error fetching user outfits: %v", result.Error)
	}

	if len(outfits) == 0 {
		fmt.Printf("[Style Digest] No completed outfits found for user %d\n", userID)
		return nil
	}

	// Pick a random outfit
	randomOutfit := outfits[time.Now().Unix()%int64(len(outfits))]

	title := "👗 Fit check time!"
	message := fmt.Sprintf("How about wearing %s today?", randomOutfit.Name)

	if len(message) > 100 {
		message = message[:97] + "..."
	}

	fmt.Println("[Style Digest] Sending notification to user", userID, "for outfit", randomOutfit.ID)
	services.SendNotification(fbApp, db, userID, title, message, map[string]string{"outfit_id": fmt.Sprintf("%d", randomOutfit.ID), "type": "style_digest"})

	return nil
}
