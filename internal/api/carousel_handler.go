package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"instavibe/internal/api/middleware"
	"instavibe/internal/carousel"
	"instavibe/internal/database"
	"instavibe/internal/export"
	"instavibe/internal/gemini"
	"instavibe/internal/layout"
	"instavibe/internal/orchestrator"
	"instavibe/internal/storage"
	"instavibe/internal/style"
	"instavibe/internal/tasks"
)

const (
	defaultSlideCount = 5
	maxSlideCount     = 10

	// Text generation requests allowed per user per minute.
	generateRateLimit  = 30
	generateRateWindow = time.Minute
)

// CarouselHandler serves carousel CRUD, generation and export requests.
type CarouselHandler struct {
	db           *gorm.DB
	asynqClient  *asynq.Client
	storage      *storage.Client
	redisClient  *redis.Client
	generator    orchestrator.Generator
	imageDelay   time.Duration
	maxCarousels int

	mu     sync.Mutex
	orches map[uint]*orchestrator.Orchestrator
}

func NewCarouselHandler(
	db *gorm.DB,
	asynqClient *asynq.Client,
	storageClient *storage.Client,
	redisClient *redis.Client,
	generator orchestrator.Generator,
	imageDelay time.Duration,
	maxCarousels int,
) *CarouselHandler {
	return &CarouselHandler{
		db:           db,
		asynqClient:  asynqClient,
		storage:      storageClient,
		redisClient:  redisClient,
		generator:    generator,
		imageDelay:   imageDelay,
		maxCarousels: maxCarousels,
		orches:       map[uint]*orchestrator.Orchestrator{},
	}
}

var errInvalidCarouselID = errors.New("invalid carousel id")

type createCarouselRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Vibe        string `json:"vibe" binding:"required"`
	AspectRatio string `json:"aspectRatio" binding:"required"`
	Language    string `json:"language"`
}

type updateCarouselRequest struct {
	Title    string         `json:"title" binding:"required"`
	Document datatypes.JSON `json:"document" binding:"required"`
}

type carouselListItem struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	PreviewImageURL string    `json:"preview_image_url,omitempty"`
	Status          string    `json:"status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type carouselResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Document        datatypes.JSON `json:"document"`
	PreviewImageURL string         `json:"preview_image_url,omitempty"`
	Status          string         `json:"status,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateCarousel starts a fresh carousel with the default global style. The
// slides stay empty until the first generation request.
func (h *CarouselHandler) CreateCarousel(c *gin.Context) {
	var req createCarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()

	var count int64
	if err := h.db.WithContext(ctx).
		Model(&database.Carousel{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		Internal(c, "failed to count carousels")
		return
	}
	if h.maxCarousels > 0 && count >= int64(h.maxCarousels) {
		Forbidden(c, "carousel limit reached")
		return
	}

	language := req.Language
	if language == "" {
		language = "pt-BR"
	}
	doc := carousel.NewDocument(req.Topic, carousel.Vibe(req.Vibe), carousel.AspectRatio(req.AspectRatio), language)
	raw, err := json.Marshal(doc)
	if err != nil {
		Internal(c, "failed to encode document")
		return
	}

	record := database.Carousel{
		Title:    doc.Title,
		Document: datatypes.JSON(raw),
		UserID:   userID,
		Status:   "draft",
	}
	if err := h.db.WithContext(ctx).Create(&record).Error; err != nil {
		Internal(c, "failed to create carousel")
		return
	}

	if err := h.setActiveCarouselID(ctx, userID, &record.ID); err != nil {
		Internal(c, "failed to mark active carousel")
		return
	}

	c.JSON(http.StatusCreated, newCarouselResponse(record))
}

// GetLatestCarousel returns the user's active carousel, falling back to the
// most recently edited one, or a fresh default document if none exist.
func (h *CarouselHandler) GetLatestCarousel(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	record, err := h.findActiveOrLatestCarousel(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			doc := carousel.NewDocument("", "", carousel.RatioPortrait, "pt-BR")
			raw, _ := json.Marshal(doc)
			c.JSON(http.StatusOK, carouselResponse{
				ID:       0,
				Title:    "",
				Document: datatypes.JSON(raw),
			})
			return
		}
		Internal(c, "failed to query latest carousel")
		return
	}

	c.JSON(http.StatusOK, newCarouselResponse(*record))
}

// ListCarousels lists the user's carousels, newest first.
func (h *CarouselHandler) ListCarousels(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var records []database.Carousel
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		Internal(c, "failed to list carousels")
		return
	}

	items := make([]carouselListItem, 0, len(records))
	for _, r := range records {
		items = append(items, carouselListItem{
			ID:              r.ID,
			Title:           r.Title,
			PreviewImageURL: r.PreviewImageURL,
			Status:          r.Status,
			CreatedAt:       r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetCarousel returns one carousel and marks it active.
func (h *CarouselHandler) GetCarousel(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	if err := h.setActiveCarouselID(c.Request.Context(), userID, &record.ID); err != nil {
		Internal(c, "failed to mark active carousel")
		return
	}

	c.JSON(http.StatusOK, newCarouselResponse(*record))
}

// UpdateCarousel overwrites the stored document snapshot. This is the editor
// autosave path; the whole document replaces the previous one.
func (h *CarouselHandler) UpdateCarousel(c *gin.Context) {
	var req updateCarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	var doc carousel.Document
	if err := json.Unmarshal(req.Document, &doc); err != nil {
		BadRequest(c, "malformed carousel document")
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(record).Updates(map[string]any{
		"title":    req.Title,
		"document": req.Document,
	}).Error; err != nil {
		Internal(c, "failed to update carousel")
		return
	}

	if err := h.db.WithContext(ctx).First(record, record.ID).Error; err != nil {
		Internal(c, "failed to reload carousel")
		return
	}

	if err := h.setActiveCarouselID(ctx, userID, &record.ID); err != nil {
		Internal(c, "failed to mark active carousel")
		return
	}

	c.JSON(http.StatusOK, newCarouselResponse(*record))
}

// DeleteCarousel removes a carousel and its stored objects, then falls back
// to the most recent remaining one as active.
func (h *CarouselHandler) DeleteCarousel(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Delete(&database.Carousel{}, record.ID).Error; err != nil {
		Internal(c, "failed to delete carousel")
		return
	}

	if err := h.storage.DeletePrefix(ctx, fmt.Sprintf("thumbnails/carousel/%d/", record.ID)); err != nil {
		middleware.LoggerFromContext(c).Warn("delete carousel thumbnails failed", "error", err)
	}

	h.mu.Lock()
	delete(h.orches, record.ID)
	h.mu.Unlock()

	if err := h.assignLatestCarouselAsActive(ctx, userID); err != nil {
		Internal(c, "failed to update active carousel")
		return
	}

	c.Status(http.StatusNoContent)
}

type generateRequest struct {
	SlideCount int `json:"slideCount"`
}

// GenerateCarousel runs the full batch text generation for a carousel:
// skeleton slides first, then the generated text merged in by position.
func (h *CarouselHandler) GenerateCarousel(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	count := req.SlideCount
	if count <= 0 {
		count = defaultSlideCount
	}
	if count > maxSlideCount {
		count = maxSlideCount
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if !h.allowGeneration(ctx, record.UserID) {
			return nil, errRateLimited
		}
		if err := h.orchestratorFor(record.ID).GenerateBatch(ctx, doc, count); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

// AddSlide appends one generated slide to an existing carousel.
func (h *CarouselHandler) AddSlide(c *gin.Context) {
	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if !h.allowGeneration(ctx, record.UserID) {
			return nil, errRateLimited
		}
		slide, err := h.orchestratorFor(record.ID).AddSlide(ctx, doc)
		if err != nil {
			return nil, err
		}
		return slide, nil
	})
}

type regenerateFieldRequest struct {
	Field string `json:"field" binding:"required"`
}

// RegenerateSlideField rewrites one slide's title or body.
func (h *CarouselHandler) RegenerateSlideField(c *gin.Context) {
	var req regenerateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	slideID, err := strconv.Atoi(c.Param("slideId"))
	if err != nil {
		BadRequest(c, "invalid slide id")
		return
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if !h.allowGeneration(ctx, record.UserID) {
			return nil, errRateLimited
		}
		text, err := h.orchestratorFor(record.ID).RegenerateField(ctx, doc, slideID, carousel.TextField(req.Field))
		if err != nil {
			return nil, err
		}
		return gin.H{"text": text}, nil
	})
}

type editSlideRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// EditSlideField writes one slide text field directly. The imageUrl field
// binds a previously uploaded asset to the slide; the value must be an
// object key under the caller's own slide-assets prefix.
func (h *CarouselHandler) EditSlideField(c *gin.Context) {
	var req editSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	slideID, err := strconv.Atoi(c.Param("slideId"))
	if err != nil {
		BadRequest(c, "invalid slide id")
		return
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if req.Field == "imageUrl" {
			if !isValidSlideAssetObjectKey(record.UserID, req.Value) {
				return nil, errInvalidAssetKey
			}
			if err := doc.SetImage(slideID, req.Value); err != nil {
				return nil, err
			}
			return doc, nil
		}
		if err := doc.SetField(slideID, carousel.TextField(req.Field), req.Value); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

type updateStyleRequest struct {
	Scope   string `json:"scope" binding:"required"`
	SlideID *int   `json:"slideId"`
	Field   string `json:"field" binding:"required"`
	Value   any    `json:"value"`
}

// UpdateStyle writes one style field, globally or into one slide's override.
func (h *CarouselHandler) UpdateStyle(c *gin.Context) {
	var req updateStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if err := doc.UpdateStyle(carousel.Scope(req.Scope), req.SlideID, style.Field(req.Field), req.Value); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

type updateLayoutRequest struct {
	Scope   string `json:"scope" binding:"required"`
	SlideID *int   `json:"slideId"`
	Anchor  string `json:"anchor" binding:"required"`
}

// UpdateLayout applies a text anchor, globally or to one slide.
func (h *CarouselHandler) UpdateLayout(c *gin.Context) {
	var req updateLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		if err := doc.SetLayout(carousel.Scope(req.Scope), req.SlideID, layout.TextAnchor(req.Anchor)); err != nil {
			return nil, err
		}
		return doc, nil
	})
}

type updateCaptionRequest struct {
	Caption string `json:"caption"`
}

// UpdateCaption writes the carousel's companion caption.
func (h *CarouselHandler) UpdateCaption(c *gin.Context) {
	var req updateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	h.withDocument(c, func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error) {
		doc.Caption = req.Caption
		return doc, nil
	})
}

// GenerateImages enqueues the sequential image batch for every slide still
// missing an image and returns immediately.
func (h *CarouselHandler) GenerateImages(c *gin.Context) {
	h.enqueueImageTask(c, nil)
}

// RegenerateSlideImage enqueues the regeneration of one slide's image.
func (h *CarouselHandler) RegenerateSlideImage(c *gin.Context) {
	slideID, err := strconv.Atoi(c.Param("slideId"))
	if err != nil {
		BadRequest(c, "invalid slide id")
		return
	}
	h.enqueueImageTask(c, &slideID)
}

func (h *CarouselHandler) enqueueImageTask(c *gin.Context, slideID *int) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	var task *asynq.Task
	if slideID != nil {
		task, err = tasks.NewSlideImageTask(record.ID, *slideID, correlationID)
	} else {
		task, err = tasks.NewImageBatchTask(record.ID, correlationID)
	}
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(3))
	if err != nil {
		Internal(c, "failed to enqueue image generation")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "image generation request accepted",
		"task_id": info.ID,
	})
}

// ExportCarousel enqueues the PNG export of a carousel and returns 202.
func (h *CarouselHandler) ExportCarousel(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewCarouselExportTask(record.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue export")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(record).
		Update("status", "exporting").Error; err != nil {
		Internal(c, "failed to update carousel status")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"task_id": info.ID,
	})
}

// ExportSlide enqueues the PNG download of one slide. The result is delivered
// over the notification channel; the stored archive is not touched.
func (h *CarouselHandler) ExportSlide(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	slideID, err := strconv.Atoi(c.Param("slideId"))
	if err != nil {
		BadRequest(c, "invalid slide id")
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewSlideExportTask(record.ID, slideID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(3))
	if err != nil {
		Internal(c, "failed to enqueue slide export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "slide export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink builds a presigned URL for the finished export archive,
// with a content-disposition filename derived from the carousel title.
func (h *CarouselHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	if record.ArchiveURL == "" {
		Conflict(c, "export not ready")
		return
	}

	filename := export.ArchiveName(record.Title) + ".zip"
	signedURL, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), record.ArchiveURL, 5*time.Minute, map[string]string{
		"response-content-disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// GetPrintData returns the resolved render geometry for every slide, the
// payload the print page consumes.
func (h *CarouselHandler) GetPrintData(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.getCarouselForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	var doc carousel.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		Internal(c, "failed to decode carousel")
		return
	}

	c.JSON(http.StatusOK, export.BuildPrintData(&doc))
}

var (
	errRateLimited     = errors.New("too many generation requests")
	errInvalidAssetKey = errors.New("image value must be an uploaded asset key")
)

// withDocument loads the carousel, decodes its document, runs the mutation
// and persists the updated snapshot before responding.
func (h *CarouselHandler) withDocument(c *gin.Context, fn func(ctx context.Context, record *database.Carousel, doc *carousel.Document) (any, error)) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	record, err := h.getCarouselForUser(ctx, c.Param("id"), userID)
	if err != nil {
		respondCarouselLookupError(c, err)
		return
	}

	var doc carousel.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		Internal(c, "failed to decode carousel")
		return
	}

	result, err := fn(ctx, record, &doc)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	raw, err := json.Marshal(&doc)
	if err != nil {
		Internal(c, "failed to encode document")
		return
	}
	if err := h.db.WithContext(ctx).Model(record).Updates(map[string]any{
		"title":    doc.Title,
		"document": datatypes.JSON(raw),
	}).Error; err != nil {
		Internal(c, "failed to persist carousel")
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errRateLimited), errors.Is(err, gemini.ErrRateLimited):
		Error(c, http.StatusTooManyRequests, "generation rate limit exceeded")
	case errors.Is(err, orchestrator.ErrBusy):
		Conflict(c, "generation already in flight")
	case errors.Is(err, orchestrator.ErrNoTopic):
		BadRequest(c, "topic is required before generating")
	case errors.Is(err, carousel.ErrSlideNotFound):
		NotFound(c, "slide not found")
	case errors.Is(err, gemini.ErrUnauthorized):
		Error(c, http.StatusBadGateway, "generation backend rejected credentials")
	case errors.Is(err, gemini.ErrMalformed):
		Error(c, http.StatusBadGateway, "generation backend returned malformed content")
	default:
		BadRequest(c, err.Error())
	}
}

func respondCarouselLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidCarouselID):
		BadRequest(c, "invalid carousel id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "carousel not found")
	default:
		Internal(c, "failed to query carousel")
	}
}

// allowGeneration enforces a per-user sliding window over generation calls.
func (h *CarouselHandler) allowGeneration(ctx context.Context, userID uint) bool {
	if h.redisClient == nil {
		return true
	}
	key := fmt.Sprintf("genrate:%d", userID)
	count, err := bumpRateWindow(ctx, h.redisClient, key, generateRateWindow)
	if err != nil {
		// Redis trouble should not block editing; fail open.
		return true
	}
	return count <= generateRateLimit
}

func (h *CarouselHandler) orchestratorFor(carouselID uint) *orchestrator.Orchestrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	if orch, ok := h.orches[carouselID]; ok {
		return orch
	}
	orch := orchestrator.New(h.generator, slog.Default(), h.imageDelay)
	h.orches[carouselID] = orch
	return orch
}

func (h *CarouselHandler) setActiveCarouselID(ctx context.Context, userID uint, carouselID *uint) error {
	if h.redisClient == nil {
		return nil
	}
	key := fmt.Sprintf("active_carousel:%d", userID)
	if carouselID == nil {
		return h.redisClient.Del(ctx, key).Err()
	}
	return h.redisClient.Set(ctx, key, *carouselID, 0).Err()
}

func (h *CarouselHandler) activeCarouselID(ctx context.Context, userID uint) (uint, bool) {
	if h.redisClient == nil {
		return 0, false
	}
	key := fmt.Sprintf("active_carousel:%d", userID)
	val, err := h.redisClient.Get(ctx, key).Uint64()
	if err != nil {
		return 0, false
	}
	return uint(val), true
}

func (h *CarouselHandler) assignLatestCarouselAsActive(ctx context.Context, userID uint) error {
	var record database.Carousel
	err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return h.setActiveCarouselID(ctx, userID, nil)
	case err != nil:
		return err
	default:
		return h.setActiveCarouselID(ctx, userID, &record.ID)
	}
}

func (h *CarouselHandler) findActiveOrLatestCarousel(ctx context.Context, userID uint) (*database.Carousel, error) {
	if activeID, ok := h.activeCarouselID(ctx, userID); ok {
		var record database.Carousel
		err := h.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", activeID, userID).
			First(&record).Error
		if err == nil {
			return &record, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var latest database.Carousel
	err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = h.setActiveCarouselID(ctx, userID, nil)
		}
		return nil, err
	}

	if err := h.setActiveCarouselID(ctx, userID, &latest.ID); err != nil {
		return nil, err
	}
	return &latest, nil
}

func (h *CarouselHandler) getCarouselForUser(ctx context.Context, idParam string, userID uint) (*database.Carousel, error) {
	carouselID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidCarouselID
	}

	var record database.Carousel
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(carouselID), userID).
		First(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func newCarouselResponse(record database.Carousel) carouselResponse {
	return carouselResponse{
		ID:              record.ID,
		Title:           record.Title,
		Document:        record.Document,
		PreviewImageURL: record.PreviewImageURL,
		Status:          record.Status,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
