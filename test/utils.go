package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"fitcheckapi/models"
	"fitcheckapi/services"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func Int32Pointer(i int32) *int32 {
	return &i
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	freePlan := string(models.Free)
	user := &models.UserAccount{
		Name:         "OurName",
		Email:        "email@example.com",
		GoogleID:     "12232",
		Platform:     models.PlatformIOS,
		LastIp:       "123.122.122.122",
		Status:       "FINISHED_AUTH",
		AvatarURL:    "pictureurl",
		Subscription: &freePlan,
	}
	db.Create(&user)

	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	return user
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	freePlan := string(models.Free)
	user := &models.UserAccount{
		Name:         userName,
		Email:        email,
		GoogleID:     "12232",
		Platform:     models.PlatformIOS,
		LastIp:       "123.122.122.122",
		Status:       "FINISHED_AUTH",
		AvatarURL:    "pictureurl",
		Subscription: &freePlan,
	}
	db.Create(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)
	return user
}

// FakeUserWithAvatar builds a FINISHED_AUTH user whose full body avatar is
// already processed, so outfit generation is not blocked.
func FakeUserWithAvatar(db *gorm.DB) *models.UserAccount {
	user := FakeUser(db)
	avatarKey := "fullbodyavatars/1/avatar.jpg"
	user.FullBodyAvatarSet = true
	user.FullBodyAvatarStatus = "completed"
	user.UserFullBodyImageURL = &avatarKey
	db.Save(user)
	return user
}

func FakeWardrobeItem(db *gorm.DB, ownerID uint, name string, clothingType string) *models.WardrobeItem {
	imageKey := fmt.Sprintf("wardrobe/%v/%s.jpg", ownerID, strings.ReplaceAll(strings.ToLower(name), " ", "-"))
	item := &models.WardrobeItem{
		Name:             name,
		ClothingType:     clothingType,
		Color:            "blue",
		Material:         "cotton",
		Season:           "all",
		Gender:           "unisex",
		OwnerID:          ownerID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "completed",
		ImageURL:         &imageKey,
	}
	db.Create(&item)
	return item
}

func Contains(items []string, lookFor string) bool {

	for i := 0; i < len(items); i++ {

		if items[i] == lookFor {
			return true
		}
	}
	return false
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2026-05-11T06:50:56Z",
		"request_date_ms": 1778827856322,
		"subscriber": {
		  "entitlements": {
			"pro": {
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "product_identifier": "prostandard",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2026-05-11T06:49:05Z"
			}
		  },
		  "first_seen": "2026-05-07T12:41:57Z",
		  "last_seen": "2026-05-10T20:43:21Z",
		  "management_url": "https://play.google.com/store/account/subscriptions",
		  "non_subscriptions": {},
		  "original_app_user_id": "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f",
		  "original_application_version": null,
		  "original_purchase_date": null,
		  "other_purchases": {},
		  "subscriptions": {
			"prostandard": {
			  "auto_resume_date": null,
			  "billing_issues_detected_at": null,
			  "expires_date": "2029-05-11T06:51:15Z",
			  "grace_period_expires_date": null,
			  "is_sandbox": true,
			  "original_purchase_date": "2026-05-11T06:49:05Z",
			  "period_type": "normal",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2026-05-11T06:49:05Z",
			  "refunded_at": null,
			  "store": "play_store",
			  "store_transaction_id": "GPA.3308-7668-0800-70257",
			  "unsubscribe_detected_at": null
			}
		  }
		}
	  }
	  `

	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	// Simulate a successful upload
	return url, 204, nil
}

// URLCacheMock always misses so tests go through the direct presign path.
type URLCacheMock struct {
	MockUrl string
}

func (m *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return m.MockUrl, nil
}

type StylistMock struct{}

func (m StylistMock) AnalyzeItem(itemImagePath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{Response: `{
		"name": "Blue Oxford Shirt",
		"clothing_type": "shirt",
		"color": "blue",
		"material": "cotton",
		"season": "all",
		"gender": "unisex",
		"style_tags": ["casual", "smart-casual"],
		"description": "Light blue oxford cotton shirt with button-down collar."
		}`,

		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m StylistMock) ComposeOutfit(brief services.OutfitBrief, candidatesJSON string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{Response: `{
		"name": "Smart Casual Friday",
		"item_ids": ["1", "2"],
		"reasoning": "The oxford shirt pairs with the chinos for a relaxed office look.",
		"confidence_score": 0.87
		}`,

		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m StylistMock) GeneratePreview(personAvatarPath string, itemImagePaths []string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{
		Response:           "preview",
		Images:             [][]byte{[]byte("fake-preview-image-bytes")},
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m StylistMock) GenerateAvatar(personPhotoPath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{
		Response:           "avatar",
		Images:             [][]byte{[]byte("fake-avatar-image-bytes")},
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}
