package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"fitcheckapi/dbhelper"
	"fitcheckapi/models"
	"fitcheckapi/services"
	"fitcheckapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

// pickingStylist composes from the actual candidate list instead of the
// canned ids of the shared mock.
type pickingStylist struct {
	test.StylistMock
}

func (m pickingStylist) ComposeOutfit(brief services.OutfitBrief, candidatesJSON string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	var candidates []outfitCandidate
	if err := json.Unmarshal([]byte(candidatesJSON), &candidates); err != nil {
		return nil, err
	}
	ids := []string{}
	for i, candidate := range candidates {
		if i >= 2 {
			break
		}
		ids = append(ids, candidate.ID)
	}
	composition := services.OutfitCompositionResponse{
		Name:            "Smart Casual Friday",
		ItemIDs:         ids,
		Reasoning:       "The shirt pairs with the chinos for a relaxed office look.",
		ConfidenceScore: 0.87,
	}
	payload, _ := json.Marshal(composition)
	return &services.LLMResponse{
		Response:         string(payload),
		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

func TestOutfitGenerationPayloadRoundTrip(t *testing.T) {
	task, err := NewOutfitGenerationTask(42)
	require.NoError(t, err)
	assert.Equal(t, "generate:outfit", task.Type())

	var payload OutfitGenerationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, uint(42), payload.OutfitID)
}

func TestWardrobeItemProcessingTask(t *testing.T) {
	fmt.Println("Starting TestWardrobeItemProcessingTask")
	os.Setenv("GOOGLE_API_KEY", "fake-key-for-tests")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-image-bytes"))
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "pending",
		ImageURL:         stringPtr(fmt.Sprintf("wardrobe/%v/shirt.jpg", user.ID)),
	}
	db.Create(&item)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleWardrobeItemProcessingTask(context.Background(), fakeTask, db, test.StylistMock{}, awsServiceMock)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	assert.Equal(t, "completed", updated.ProcessingStatus)
	assert.Equal(t, "Blue Oxford Shirt", updated.Name)
	assert.Equal(t, "shirt", updated.ClothingType)
	assert.Equal(t, "blue", updated.Color)
	assert.Equal(t, "cotton", updated.Material)
	assert.Contains(t, []string(updated.StyleTags), "casual")
	assert.NotNil(t, updated.Description)
}

func TestWardrobeItemProcessingKeepsManualInput(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key-for-tests")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-image-bytes"))
	}))
	defer mockServer.Close()

	item := models.WardrobeItem{
		Name:             "My Favorite Shirt",
		ClothingType:     "sweater",
		Color:            "red",
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "pending",
		ImageURL:         stringPtr(fmt.Sprintf("wardrobe/%v/shirt.jpg", user.ID)),
	}
	db.Create(&item)

	fakeTask, err := NewWardrobeItemProcessingTask(item.ID)
	require.NoError(t, err)

	err = HandleWardrobeItemProcessingTask(context.Background(), fakeTask, db, test.StylistMock{}, &test.AWSProviderMock{MockUrl: mockServer.URL})
	assert.NoError(t, err)

	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	// the analysis never overrides what the user typed in
	assert.Equal(t, "My Favorite Shirt", updated.Name)
	assert.Equal(t, "sweater", updated.ClothingType)
	assert.Equal(t, "red", updated.Color)
	// but fills the blanks
	assert.Equal(t, "cotton", updated.Material)
}

func TestOutfitGenerationTask(t *testing.T) {
	fmt.Println("Starting TestOutfitGenerationTask")
	os.Setenv("GOOGLE_API_KEY", "fake-key-for-tests")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserWithAvatar(db)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-image-bytes"))
	}))
	defer mockServer.Close()

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")

	outfit := models.Outfit{
		Occasion:      "office",
		Style:         "casual",
		Season:        "all",
		UserAccountID: user.ID,
		Status:        "pending",
	}
	db.Create(&outfit)

	fakeTask, err := NewOutfitGenerationTask(outfit.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleOutfitGenerationTask(context.Background(), fakeTask, db, pickingStylist{}, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.Outfit
	db.First(&updated, outfit.ID)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "Smart Casual Friday", updated.Name)
	assert.NotNil(t, updated.ConfidenceScore)
	assert.NotNil(t, updated.Reasoning)
	assert.NotNil(t, updated.Duration)
	assert.NotNil(t, updated.PreviewImageURL)

	var snapshots []models.OutfitItem
	db.Where("outfit_id = ?", outfit.ID).Find(&snapshots)
	assert.Len(t, snapshots, 2)
	snapshotIDs := []uint{snapshots[0].WardrobeItemID, snapshots[1].WardrobeItemID}
	assert.Contains(t, snapshotIDs, shirt.ID)
	assert.Contains(t, snapshotIDs, pants.ID)
}

func TestOutfitGenerationSkipsUnanalyzedItems(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key-for-tests")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserWithAvatar(db)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-image-bytes"))
	}))
	defer mockServer.Close()

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	// Still waiting for analysis, has no color/material data yet.
	unanalyzed := test.FakeWardrobeItem(db, user.ID, "Mystery Jacket", "jacket")
	unanalyzed.ProcessingStatus = "pending"
	db.Save(unanalyzed)

	outfit := models.Outfit{
		Occasion:      "office",
		Style:         "casual",
		Season:        "all",
		UserAccountID: user.ID,
		Status:        "pending",
	}
	db.Create(&outfit)

	fakeTask, err := NewOutfitGenerationTask(outfit.ID)
	require.NoError(t, err)

	err = HandleOutfitGenerationTask(context.Background(), fakeTask, db, pickingStylist{}, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
	assert.NoError(t, err)

	var snapshots []models.OutfitItem
	db.Where("outfit_id = ?", outfit.ID).Find(&snapshots)
	require.Len(t, snapshots, 2)
	for _, snapshot := range snapshots {
		assert.NotEqual(t, unanalyzed.ID, snapshot.WardrobeItemID)
	}
	snapshotIDs := []uint{snapshots[0].WardrobeItemID, snapshots[1].WardrobeItemID}
	assert.Contains(t, snapshotIDs, shirt.ID)
	assert.Contains(t, snapshotIDs, pants.ID)
}

func TestOutfitGenerationEmptyCloset(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-key-for-tests")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserWithAvatar(db)

	outfit := models.Outfit{
		Occasion:      "office",
		Style:         "casual",
		UserAccountID: user.ID,
		Status:        "pending",
	}
	db.Create(&outfit)

	fakeTask, err := NewOutfitGenerationTask(outfit.ID)
	require.NoError(t, err)

	err = HandleOutfitGenerationTask(context.Background(), fakeTask, db, pickingStylist{}, &test.AWSProviderMock{}, nil)
	assert.NoError(t, err)

	var updated models.Outfit
	db.First(&updated, outfit.ID)
	assert.Equal(t, "failed", updated.Status)
	assert.NotNil(t, updated.GenerationErrorMessage)
}

func TestAvatarGenerationTask(t *testing.T) {
	fmt.Println("Starting TestAvatarGenerationTask")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-photo-bytes"))
	}))
	defer mockServer.Close()

	photoKey := fmt.Sprintf("fullbodyavatars/%v/upload.jpg", user.ID)
	user.UserFullBodyImageURL = &photoKey
	user.FullBodyAvatarStatus = "processing"
	db.Save(user)

	fakeTask, err := NewFullBodyAvatarGenerateTask(user.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleAvatarGenerationTask(context.Background(), fakeTask, db, test.StylistMock{}, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.True(t, updated.FullBodyAvatarSet)
	assert.Equal(t, "completed", updated.FullBodyAvatarStatus)
	assert.Equal(t, fmt.Sprintf("fullbodyavatars/%v/avatar.png", user.ID), *updated.UserFullBodyImageURL)
}

func TestStyleDigestNoOutfits(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)
	user.ReceiveNotifications = true
	db.Save(user)

	task := asynq.NewTask("generate:style_digest", []byte{})
	err := ScheduledStyleDigestTask(context.Background(), task, db, nil)
	assert.NoError(t, err)
}
