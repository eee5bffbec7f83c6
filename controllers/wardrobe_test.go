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
)

func TestCreateWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	// Prepare request payload
	reqBody := CreateWardrobeItemIn{
		Name:         "Blue Oxford Shirt",
		Description:  StrPointer("Light blue oxford shirt"),
		ClothingType: "shirt",
		Color:        "blue",
		Material:     "cotton",
		Season:       "all",
		FileName:     StrPointer("test-image.jpg"),
		AddToCloset:  BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/closet/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, "Expected status code 201 Created, got %d", rec.Code)

	var response WardrobeItemCreatedResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, reqBody.Name, response.Item.Name)
	require.Equal(t, reqBody.Description, response.Item.Description)
	require.Equal(t, reqBody.ClothingType, response.Item.ClothingType)
	require.Equal(t, "temporary", response.Item.Status)
	require.Contains(t, response.FileUploadUrl, "https://fakebucketurl.com/")
}

func TestCreateWardrobeItemInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	// Prepare invalid request payload (missing required fields)
	reqBody := CreateWardrobeItemIn{
		Name: "Blue Oxford Shirt",
		// ClothingType missing
		FileName:    StrPointer("test.jpg"),
		AddToCloset: BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/closet/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "clothing_type")
}

func TestCreateWardrobeItemBadExtension(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := CreateWardrobeItemIn{
		Name:         "Exe file",
		ClothingType: "shirt",
		FileName:     StrPointer("not-an-image.exe"),
		AddToCloset:  BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/closet/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateWardrobeItemUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	test.FakeUser(db)

	reqBody := CreateWardrobeItemIn{
		Name:         "Blue Oxford Shirt",
		ClothingType: "shirt",
		FileName:     StrPointer("test.jpg"),
		AddToCloset:  BoolPointer(false),
	}
	req := test.NewJSONAuthRequest("POST", "/closet/wardrobe/create", "", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateWardrobeItemFreeLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	for i := 0; i < freeWardrobeItemLimit; i++ {
		test.FakeWardrobeItem(db, user.ID, fmt.Sprintf("Item %d", i), "shirt")
	}

	reqBody := CreateWardrobeItemIn{
		Name:         "One Too Many",
		ClothingType: "shirt",
		FileName:     StrPointer("test.jpg"),
		AddToCloset:  BoolPointer(false),
	}
	req := test.NewJSONAuthRequest("POST", "/closet/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListWardrobeGrouped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{MockUrl: "https://cached.example.com/item.jpg"})
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")
	test.FakeWardrobeItem(db, user.ID, "Chinos", "pants")
	test.FakeWardrobeItem(db, user.ID, "Sneakers", "shoes")

	req := test.NewJSONAuthRequest("GET", "/closet/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response WardrobeListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 1)
	require.Len(t, response.Bottoms, 1)
	require.Len(t, response.Shoes, 1)
	require.Len(t, response.Dresses, 0)
	require.Equal(t, "Oxford Shirt", response.Tops[0].Name)
	require.NotNil(t, response.Tops[0].Uri)
	require.Equal(t, "https://cached.example.com/item.jpg", *response.Tops[0].Uri)
}

func TestListWardrobeEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/closet/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response WardrobeListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 0)
	require.Len(t, response.Other, 0)
}

func TestListWardrobeDoesNotLeakOtherUsers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")

	test.FakeWardrobeItem(db, other.ID, "Not Yours", "shirt")

	req := test.NewJSONAuthRequest("GET", "/closet/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response WardrobeListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 0)
}

func TestGetWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response WardrobeItemResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, item.ID, response.ID)
	require.Equal(t, "Oxford Shirt", response.Name)
}

func TestGetWardrobeItemNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")
	item := test.FakeWardrobeItem(db, other.ID, "Not Yours", "shirt")

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/closet/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")

	reqBody := UpdateWardrobeItemIn{
		Name:  StrPointer("Renamed Shirt"),
		Color: StrPointer("white"),
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/closet/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	require.Equal(t, "Renamed Shirt", updated.Name)
	require.Equal(t, "white", updated.Color)
	// untouched fields stay
	require.Equal(t, "cotton", updated.Material)
}

func TestDeleteWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/closet/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var count int64
	db.Model(&models.WardrobeItem{}).Where("id = ?", item.ID).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestToggleFavoriteItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/wardrobe/%v/favorite", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	require.True(t, updated.IsFavorite)

	// toggling again flips it back
	req = test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/wardrobe/%v/favorite", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	db.First(&updated, item.ID)
	require.False(t, updated.IsFavorite)
}

func TestMarkItemWorn(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "Oxford Shirt", "shirt")

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/closet/wardrobe/%v/worn", item.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.WardrobeItem
	db.First(&updated, item.ID)
	require.Equal(t, 1, updated.WearCount)
	require.NotNil(t, updated.LastWorn)
}
