package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitcheckapi/dbhelper"
	"fitcheckapi/models"
	"fitcheckapi/test"

	"github.com/stretchr/testify/assert"
)

func TestWebhookBody(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := map[string]interface{}{
		"event": map[string]interface{}{
			"app_id":                      "app70fd013e95",
			"app_user_id":                 fmt.Sprint(user.ID),
			"commission_percentage":       nil,
			"country_code":                "US",
			"currency":                    nil,
			"entitlement_id":              nil,
			"entitlement_ids":             nil,
			"environment":                 "SANDBOX",
			"event_timestamp_ms":          1715405366686,
			"expiration_at_ms":            1715412566686,
			"id":                          "791C890E-B8AD-46C9-8290-13EAF5F14C9F",
			"is_family_share":             nil,
			"offer_code":                  nil,
			"original_app_user_id":        "7f680253-003b-4073-b4f3-5d1df7cd9a67",
			"original_transaction_id":     nil,
			"period_type":                 "NORMAL",
			"presented_offering_id":       nil,
			"price":                       nil,
			"price_in_purchased_currency": nil,
			"product_id":                  "test_product",
			"purchased_at_ms":             1715405366686,
			"store":                       "PLAY_STORE",
			"takehome_percentage":         nil,
			"tax_percentage":              nil,
			"transaction_id":              nil,
			"type":                        "INITIAL_PURCHASE",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", fmt.Sprintf("Bearer %s", "fake"), data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updatedUser models.UserAccount
	db.First(&updatedUser, user.ID)

	assert.NotNil(t, updatedUser.Subscription)
	assert.Equal(t, string(models.Pro), *updatedUser.Subscription)
	assert.NotNil(t, updatedUser.ExpirationDate)
}

func TestWebhookBadToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := map[string]interface{}{
		"event": map[string]interface{}{
			"app_user_id": fmt.Sprint(user.ID),
			"type":        "INITIAL_PURCHASE",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer wrong", data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookTransferSkipped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := map[string]interface{}{
		"event": map[string]interface{}{
			"app_user_id": fmt.Sprint(user.ID),
			"type":        "TRANSFER",
		},
	}
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", fmt.Sprintf("Bearer %s", "fake"), data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var updatedUser models.UserAccount
	db.First(&updatedUser, user.ID)
	// transfer never touches the stored plan
	assert.Equal(t, string(models.Free), *updatedUser.Subscription)
}
