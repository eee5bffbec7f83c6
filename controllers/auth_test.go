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

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const fakeGoogleIdToken = "eyJhbGciOiJSUzI1NiIsImtpZCI6IjJkOWE1ZWY1YjEyNjIzYzkxNjcxYTcwOTNjYjMyMzMzM2NkMDdkMDkiLCJ0eXAiOiJKV1QifQ.fakebody.fakesignature"

func TestAuthGoogle(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	param := models.GoogleAuthSignIn{
		IdToken:  fakeGoogleIdToken,
		Platform: "ios",
	}
	req := test.NewJSONRequest("POST", "/auth/google/v2?verify=true", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)

	assert.Equal(t, "fake@example.com", resp["email"], resp)
	assert.Equal(t, true, resp["new"], resp)
	assert.Equal(t, "pictureurl", resp["avatar"], resp)
	assert.NotEmpty(t, resp["access_token"], resp)

	var user models.UserAccount

	db.First(&user, "email = ?", "fake@example.com")

	assert.Equal(t, "fake@example.com", user.Email)
	assert.Equal(t, "STARTED_AUTH", user.Status)
	assert.Equal(t, models.PlatformIOS, user.Platform)

	param_2 := models.SignUpIn{
		IdToken:  fakeGoogleIdToken,
		Platform: "ios",
		ProfileIn: models.ProfileIn{
			Name: "My Name",
		},
	}
	req_2 := test.NewJSONRequest("POST", "/auth/google/v2", param_2)
	rec_2 := httptest.NewRecorder()

	e.ServeHTTP(rec_2, req_2)

	var resp2 echo.Map
	json.Unmarshal(rec_2.Body.Bytes(), &resp2)

	db.First(&user, "email = ?", "fake@example.com")

	assert.Equal(t, "fake@example.com", user.Email)
	assert.Equal(t, "FINISHED_AUTH", user.Status)
	assert.Equal(t, models.PlatformIOS, user.Platform)
	assert.Equal(t, "My Name", user.Name)
	assert.NotNil(t, user.Subscription)
	assert.Equal(t, string(models.Free), *user.Subscription)

	// signing in again for an already finished user returns the same account
	param_3 := models.GoogleAuthSignIn{
		IdToken:  fakeGoogleIdToken,
		Platform: "ios",
	}
	req_3 := test.NewJSONRequest("POST", "/auth/google/v2?verify=true", param_3)
	rec_3 := httptest.NewRecorder()

	e.ServeHTTP(rec_3, req_3)

	var resp3 echo.Map
	json.Unmarshal(rec_3.Body.Bytes(), &resp3)

	assert.Equal(t, fmt.Sprint(resp3["id"]), fmt.Sprint(user.ID), rec_3.Body.String())
	assert.Equal(t, false, resp3["new"], rec_3.Body.String())
}

func TestRefreshToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	userDb := test.FakeUserV2(db, "name", "refresh@fitcheck.app")
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(userDb.ID))
	if err != nil {
		fmt.Println("Error generating refesh", err)
	}
	param := echo.Map{
		"refresh_token": refreshToken,
	}
	req := test.NewJSONRequest("POST", "/auth/refresh-token", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

}

func TestRefreshTokenGarbage(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	param := echo.Map{
		"refresh_token": "definitely-not-a-jwt",
	}
	req := test.NewJSONRequest("POST", "/auth/refresh-token", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRegisterPushToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	param := models.UserPushIn{
		Token:    "new-fcm-token",
		Platform: "android",
	}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", strconv.FormatUint(uint64(user.ID), 10), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? AND token = ?", user.ID, "new-fcm-token").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLogoutRemovesPushToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	var existing models.UserPushToken
	db.Where("user_account_id = ?", user.ID).First(&existing)

	param := models.UserPushIn{
		Token:    existing.Token,
		Platform: "android",
	}
	req := test.NewJSONAuthRequest("POST", "/auth/logout", strconv.FormatUint(uint64(user.ID), 10), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAccountMarksDate(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/auth/delete-account", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.NotNil(t, updated.ConfirmedDeleteDate)
}
