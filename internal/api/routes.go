package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"instavibe/internal/api/middleware"
	"instavibe/internal/auth"
	"instavibe/internal/orchestrator"
	"instavibe/internal/storage"
)

// RegisterRoutes wires the API routes, without the /api prefix.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	generator orchestrator.Generator,
	imageDelay time.Duration,
	maxCarousels int,
	clamdAddr string,
	clamdEnabled bool,
) {
	carouselHandler := NewCarouselHandler(db, asynqClient, storageClient, redisClient, generator, imageDelay, maxCarousels)
	catalogHandler := NewCatalogHandler()
	wsHandler := NewWsHandler(redisClient, authService, logger, nil)
	assetHandler := NewAssetHandler(storageClient, logger, clamdAddr, clamdEnabled)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/catalog", catalogHandler.GetCatalog)

		carouselGroup := v1.Group("/carousels")
		carouselGroup.Use(authMiddleware)
		{
			carouselGroup.POST("", carouselHandler.CreateCarousel)
			carouselGroup.GET("", carouselHandler.ListCarousels)
			carouselGroup.GET("/latest", carouselHandler.GetLatestCarousel)
			carouselGroup.GET("/:id", carouselHandler.GetCarousel)
			carouselGroup.PUT("/:id", carouselHandler.UpdateCarousel)
			carouselGroup.DELETE("/:id", carouselHandler.DeleteCarousel)

			carouselGroup.POST("/:id/generate", carouselHandler.GenerateCarousel)
			carouselGroup.POST("/:id/slides", carouselHandler.AddSlide)
			carouselGroup.POST("/:id/slides/:slideId/regenerate", carouselHandler.RegenerateSlideField)
			carouselGroup.PATCH("/:id/slides/:slideId", carouselHandler.EditSlideField)
			carouselGroup.POST("/:id/slides/:slideId/image", carouselHandler.RegenerateSlideImage)
			carouselGroup.POST("/:id/images", carouselHandler.GenerateImages)

			carouselGroup.PATCH("/:id/style", carouselHandler.UpdateStyle)
			carouselGroup.PATCH("/:id/layout", carouselHandler.UpdateLayout)
			carouselGroup.PATCH("/:id/caption", carouselHandler.UpdateCaption)

			carouselGroup.POST("/:id/export", carouselHandler.ExportCarousel)
			carouselGroup.POST("/:id/slides/:slideId/export", carouselHandler.ExportSlide)
			carouselGroup.GET("/:id/download-link", carouselHandler.GetDownloadLink)
			carouselGroup.GET("/:id/print-data", carouselHandler.GetPrintData)
		}

		assetGroup := v1.Group("/assets")
		assetGroup.Use(authMiddleware)
		{
			assetGroup.POST("/upload", assetHandler.UploadAsset)
			assetGroup.GET("", assetHandler.ListAssets)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
		}
	}
}
