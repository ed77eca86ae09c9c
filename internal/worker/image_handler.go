package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"instavibe/internal/carousel"
	"instavibe/internal/database"
	"instavibe/internal/errcode"
	"instavibe/internal/orchestrator"
	"instavibe/internal/storage"
	"instavibe/internal/tasks"
)

// ImageBatchTaskHandler consumes image-batch tasks: it generates an image
// for every slide missing one, strictly one request at a time, persisting
// and notifying after each slide so the editor updates incrementally.
type ImageBatchTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	generator   orchestrator.Generator
	logger      *slog.Logger
	imageDelay  time.Duration
}

func NewImageBatchTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	redisClient *redis.Client,
	generator orchestrator.Generator,
	logger *slog.Logger,
	imageDelay time.Duration,
) *ImageBatchTaskHandler {
	return &ImageBatchTaskHandler{
		db:          db,
		storage:     storage,
		redisClient: redisClient,
		generator:   generator,
		logger:      logger,
		imageDelay:  imageDelay,
	}
}

// ProcessTask implements asynq.Handler. Per-slide failures are folded into
// the final notification instead of failing the task; only infrastructure
// errors (DB, payload) bubble up to asynq's retry.
func (h *ImageBatchTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger

	var payload tasks.ImageBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("carousel_id", int(payload.CarouselID)),
	)
	log.Info("starting image batch task")

	var record database.Carousel
	if err := h.db.WithContext(ctx).First(&record, payload.CarouselID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("carousel not found, skipping task")
			return nil
		}
		log.Error("query carousel failed", slog.Any("error", err))
		return err
	}

	var doc carousel.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		log.Error("unmarshal carousel document failed", slog.Any("error", err))
		return err
	}

	gen := &storingGenerator{
		Generator: h.generator,
		storage:   h.storage,
		userID:    record.UserID,
	}
	orch := orchestrator.New(gen, log, h.imageDelay)

	if payload.SlideID != nil {
		return h.regenerateSingle(ctx, orch, &record, &doc, *payload.SlideID, payload.CorrelationID, log)
	}

	var failed []int
	results := orch.GenerateMissingImages(ctx, &doc, func(res orchestrator.ImageResult) {
		if res.Err != nil {
			failed = append(failed, res.SlideID)
		}
		if err := h.persistSlideImage(ctx, record.ID, &doc, res.SlideID, res.Err); err != nil {
			log.Error("persist carousel after slide failed",
				slog.Int("slide_id", res.SlideID), slog.Any("error", err))
			return
		}

		slideID := res.SlideID
		notify := CarouselNotifyMessage{
			Event:         EventSlideImage,
			Status:        "completed",
			CarouselID:    record.ID,
			SlideID:       &slideID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.OK,
		}
		if res.Err != nil {
			notify.Status = "error"
			notify.ErrorCode = errcode.SystemError
			notify.ErrorMessage = strings.TrimSpace(res.Err.Error())
		}
		if err := publishNotify(ctx, h.redisClient, record.UserID, notify); err != nil {
			log.Error("publish slide notification failed", slog.Any("error", err))
		}
	})

	notify := CarouselNotifyMessage{
		Event:         EventImageBatch,
		Status:        "completed",
		CarouselID:    record.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if len(failed) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "some slide images failed to generate"
		notify.SkippedSlides = failed
	}
	if err := publishNotify(ctx, h.redisClient, record.UserID, notify); err != nil {
		log.Error("publish batch notification failed", slog.Any("error", err))
		return err
	}

	log.Info("image batch task completed",
		slog.Int("generated", len(results)-len(failed)),
		slog.Int("failed", len(failed)),
	)
	return nil
}

// regenerateSingle replaces one slide's image. A generation failure is
// reported through the notification channel, not asynq's retry, so the
// previous image survives.
func (h *ImageBatchTaskHandler) regenerateSingle(
	ctx context.Context,
	orch *orchestrator.Orchestrator,
	record *database.Carousel,
	doc *carousel.Document,
	slideID int,
	correlationID string,
	log *slog.Logger,
) error {
	genErr := orch.RegenerateImage(ctx, doc, slideID)
	if err := h.persistSlideImage(ctx, record.ID, doc, slideID, genErr); err != nil {
		log.Error("persist carousel failed", slog.Any("error", err))
		return err
	}

	notify := CarouselNotifyMessage{
		Event:         EventSlideImage,
		Status:        "completed",
		CarouselID:    record.ID,
		SlideID:       &slideID,
		CorrelationID: correlationID,
		ErrorCode:     errcode.OK,
	}
	if genErr != nil {
		notify.Status = "error"
		notify.ErrorCode = errcode.SystemError
		notify.ErrorMessage = strings.TrimSpace(genErr.Error())
		log.Warn("slide image regeneration failed",
			slog.Int("slide_id", slideID), slog.Any("error", genErr))
	}
	return publishNotify(ctx, h.redisClient, record.UserID, notify)
}

// persistSlideImage writes one slide's outcome into the stored document.
// The batch runs for minutes while the editor keeps autosaving, so the
// worker's own snapshot is stale by the time a slide completes; only the
// keyed mutation is applied to a fresh copy of the row, never the whole
// snapshot.
func (h *ImageBatchTaskHandler) persistSlideImage(ctx context.Context, carouselID uint, snapshot *carousel.Document, slideID int, genErr error) error {
	return h.persistSlideMutation(ctx, carouselID, func(doc *carousel.Document) error {
		if genErr != nil {
			return doc.SetLoading(slideID, false)
		}
		slide, ok := snapshot.Slide(slideID)
		if !ok {
			return doc.SetLoading(slideID, false)
		}
		return doc.SetImage(slideID, slide.ImageURL)
	})
}

func (h *ImageBatchTaskHandler) persistSlideMutation(ctx context.Context, carouselID uint, mutate func(doc *carousel.Document) error) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record database.Carousel
		if err := tx.First(&record, carouselID).Error; err != nil {
			return err
		}
		var doc carousel.Document
		if err := json.Unmarshal(record.Document, &doc); err != nil {
			return err
		}
		if err := mutate(&doc); err != nil {
			return err
		}
		raw, err := json.Marshal(&doc)
		if err != nil {
			return err
		}
		return tx.Model(&record).Update("document", datatypes.JSON(raw)).Error
	})
}
