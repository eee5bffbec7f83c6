package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"fitcheckapi/models"
	"fitcheckapi/services"
	"fitcheckapi/styles"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ProfileController struct {
	AWSService services.AWSServiceProvider
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)

		fullbodyAvatarUrl := user.UserFullBodyImageURL
		if user.UserFullBodyImageURL != nil && *user.UserFullBodyImageURL != "" {

			bucketName := services.GetEnv("R2_BUCKET_NAME", "")
			avatarR2URL, err := controller.AWSService.GetPresignedR2FileReadURL(context.
				Background(), bucketName, *user.UserFullBodyImageURL,
			)

			if err != nil {
				log.Printf("CRITICAL:  R2 avatar could not fetch for key '%s': %v", *user.UserFullBodyImageURL, err)
				sentry.CaptureException(err)
				// url stays the raw key, we don't fail the entire request.
			} else {
				fullbodyAvatarUrl = &avatarR2URL
			}
		}
		return c.JSON(http.StatusOK, models.UserMeOut{
			Id:                   UIntToStr(user.ID),
			Name:                 user.Name,
			Email:                user.Email,
			AvatarURL:            user.AvatarURL,
			Subscription:         user.Subscription,
			ReceiveNotifications: user.ReceiveNotifications,
			FullBodyAvatarSet:    user.FullBodyAvatarSet,
			FullBodyAvatarUrl:    fullbodyAvatarUrl,
			StyleProfile:         user.StyleProfile,
		})
	})

	g.POST("/settings", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		var settingsIn = new(models.UserSettingsIn)
		db := c.Get("__db").(*gorm.DB)
		if err := c.Bind(settingsIn); err != nil {
			return err
		}
		user.ReceiveNotifications = settingsIn.ReceiveNotifications
		db.Save(&user)
		return c.JSON(http.StatusOK, settingsIn)

	})

	g.GET("/style-profile", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		return c.JSON(http.StatusOK, user.StyleProfile)
	})

	g.PUT("/style-profile", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)
		var profileIn = new(models.StyleProfileIn)
		if err := c.Bind(profileIn); err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if err := c.Validate(profileIn); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		if profileIn.Gender != nil {
			user.StyleProfile.Gender = *profileIn.Gender
		}
		if profileIn.SkinTone != nil {
			user.StyleProfile.SkinTone = *profileIn.SkinTone
		}
		if profileIn.BodyType != nil {
			user.StyleProfile.BodyType = *profileIn.BodyType
		}
		if profileIn.FitPreference != nil {
			user.StyleProfile.FitPreference = *profileIn.FitPreference
		}
		if profileIn.PreferredStyles != nil {
			normalized := []string{}
			for _, style := range profileIn.PreferredStyles {
				// silently drop tags the matrix has never heard of
				if len(styles.CompatibleStyles(style)) == 0 {
					continue
				}
				normalized = append(normalized, styles.NormalizeStyle(style))
			}
			user.StyleProfile.PreferredStyles = normalized
		}

		if err := db.Save(&user).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save your style profile, please try again"})
		}
		fmt.Println("Style profile updated for user ", user.ID)
		return c.JSON(http.StatusOK, user.StyleProfile)
	})
}
