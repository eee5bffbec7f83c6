package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"fitcheckapi/models"
	"fitcheckapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	firebaseApp *firebase.App,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
	urlCache services.URLCacheServiceProvider,
) *echo.Echo {

	fmt.Println(firebaseApp, "Firebase app")
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("clothing_type", models.ValidateClothingType)
	v.RegisterValidation("season", models.ValidateSeason)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	authGroup := e.Group("auth")

	authController := AuthController{Google: googleService, FirebaseApp: firebaseApp, AWSService: awsService}
	authController.AuthRoutes(authGroup)

	closetGroup := e.Group("/closet", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)

	wardrobeController := WardrobeController{AWSService: awsService, FirebaseApp: firebaseApp, URLCache: urlCache}
	wardrobeGroup := closetGroup.Group("/wardrobe")
	wardrobeController.WardrobeRoutes(wardrobeGroup)

	outfitsController := OutfitsController{AWSService: awsService, FirebaseApp: firebaseApp, URLCache: urlCache}
	outfitsGroup := closetGroup.Group("/outfits")
	outfitsController.OutfitRoutes(outfitsGroup)

	profileController := ProfileController{AWSService: awsService}
	profileGroup := closetGroup.Group("/profile")
	profileController.ProfileRoutes(profileGroup)

	analyticsController := AnalyticsController{}
	analyticsGroup := closetGroup.Group("/analytics")
	analyticsController.AnalyticsRoutes(analyticsGroup)

	webhooksController := WebhooksController{Google: googleService, FirebaseApp: firebaseApp}
	webhookGroup := e.Group("/webhooks")
	webhooksController.SetupRoutes(webhookGroup)

	return e
}
