package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"fitcheckapi/dbhelper"
	"fitcheckapi/models"
	"fitcheckapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fakeCompletedOutfit(db *gorm.DB, user *models.UserAccount, items []models.WardrobeItem) *models.Outfit {
	confidence := 0.87
	reasoning := "The shirt pairs with the chinos."
	outfit := &models.Outfit{
		Name:            "Smart Casual Friday",
		Occasion:        "office",
		Style:           "smart-casual",
		Season:          "all",
		UserAccountID:   user.ID,
		Status:          "completed",
		ConfidenceScore: &confidence,
		Reasoning:       &reasoning,
	}
	db.Create(outfit)
	for _, item := range items {
		snapshot := models.SnapshotOutfitItem(outfit.ID, item, outfit.Style)
		db.Create(&snapshot)
		outfit.Items = append(outfit.Items, snapshot)
	}
	return outfit
}

func TestGenerateOutfitNoAvatarForbidden(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := GenerateOutfitIn{
		Occasion: "office",
		Style:    "smart-casual",
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "avatar")
}

func TestGenerateOutfitMissingOccasion(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUserWithAvatar(db)

	reqBody := GenerateOutfitIn{
		Style: "smart-casual",
	}
	req := test.NewJSONAuthRequest("POST", "/closet/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOutfitsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt, *pants})

	req := test.NewJSONAuthRequest("GET", "/closet/outfits/list", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Outfits []OutfitOut `json:"outfits"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Outfits, 1)
	require.Equal(t, "Smart Casual Friday", response.Outfits[0].Name)
	require.Len(t, response.Outfits[0].Items, 2)
	for _, item := range response.Outfits[0].Items {
		require.False(t, item.IsStale)
	}
}

func TestGetOutfitMarksStaleItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt, *pants})

	// removing a wardrobe item leaves the outfit snapshot stale
	db.Delete(pants)

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response OutfitOut
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Items, 2)
	staleByID := map[uint]bool{}
	for _, item := range response.Items {
		staleByID[item.WardrobeItemID] = item.IsStale
	}
	require.False(t, staleByID[shirt.ID])
	require.True(t, staleByID[pants.ID])
}

func TestGetOutfitNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")

	shirt := test.FakeWardrobeItem(db, other.ID, "Not Yours", "shirt")
	outfit := fakeCompletedOutfit(db, other, []models.WardrobeItem{*shirt})

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOutfitRename(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt})

	reqBody := UpdateOutfitIn{
		Name: StrPointer("Renamed Look"),
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Outfit
	db.First(&updated, outfit.ID)
	require.Equal(t, "Renamed Look", updated.Name)
}

func TestUpdateOutfitSwapItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	sweater := test.FakeWardrobeItem(db, user.ID, "Wool Sweater", "sweater")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt, *pants})

	reqBody := UpdateOutfitIn{
		ItemIDs: []uint{sweater.ID, pants.ID},
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshots []models.OutfitItem
	db.Where("outfit_id = ?", outfit.ID).Find(&snapshots)
	require.Len(t, snapshots, 2)
	ids := []uint{snapshots[0].WardrobeItemID, snapshots[1].WardrobeItemID}
	require.Contains(t, ids, sweater.ID)
	require.Contains(t, ids, pants.ID)
}

func TestUpdateOutfitEmptyItemListKeepsSnapshots(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt, *pants})

	reqBody := UpdateOutfitIn{
		Name:    StrPointer("Renamed Look"),
		ItemIDs: []uint{},
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshots []models.OutfitItem
	db.Where("outfit_id = ?", outfit.ID).Find(&snapshots)
	require.Len(t, snapshots, 2)
	var updated models.Outfit
	db.First(&updated, outfit.ID)
	require.Equal(t, "Renamed Look", updated.Name)
}

func TestUpdateOutfitRejectsForeignItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	foreign := test.FakeWardrobeItem(db, other.ID, "Not Yours", "pants")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt})

	reqBody := UpdateOutfitIn{
		ItemIDs: []uint{foreign.ID},
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOutfitOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt})

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/closet/outfits/%v", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var count int64
	db.Model(&models.Outfit{}).Where("id = ?", outfit.ID).Count(&count)
	require.Equal(t, int64(0), count)
	db.Model(&models.OutfitItem{}).Where("outfit_id = ?", outfit.ID).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestMarkOutfitWornBumpsItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	pants := test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt, *pants})

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/outfits/%v/worn", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updatedOutfit models.Outfit
	db.First(&updatedOutfit, outfit.ID)
	require.Equal(t, 1, updatedOutfit.WearCount)

	var updatedItem models.WardrobeItem
	db.First(&updatedItem, shirt.ID)
	require.Equal(t, 1, updatedItem.WearCount)
	require.NotNil(t, updatedItem.LastWorn)
}

func TestSubmitOutfitFeedbackOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt})

	reqBody := OutfitFeedbackIn{
		Rating:  4,
		Comment: StrPointer("Loved it, a bit warm for summer"),
		Tags:    []string{"comfortable", "stylish"},
	}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/outfits/%v/feedback", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var feedback models.OutfitFeedback
	db.Where("outfit_id = ?", outfit.ID).First(&feedback)
	require.Equal(t, 4, feedback.Rating)
	require.Equal(t, user.ID, feedback.UserAccountID)
}

func TestSubmitOutfitFeedbackInvalidRating(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	shirt := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	outfit := fakeCompletedOutfit(db, user, []models.WardrobeItem{*shirt})

	reqBody := OutfitFeedbackIn{
		Rating: 9,
	}
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/outfits/%v/feedback", outfit.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
