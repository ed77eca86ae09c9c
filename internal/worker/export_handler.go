package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"instavibe/internal/carousel"
	"instavibe/internal/database"
	"instavibe/internal/errcode"
	"instavibe/internal/export"
	"instavibe/internal/storage"
	"instavibe/internal/tasks"
)

const archivePresignTTL = 7 * 24 * time.Hour

// ExportTaskHandler consumes carousel export tasks: it renders every slide
// to PNG in a headless browser and uploads the zip archive.
type ExportTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	renderer    *export.Renderer
	fonts       *export.FontProvider
	logger      *slog.Logger
}

func NewExportTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	redisClient *redis.Client,
	renderer *export.Renderer,
	fonts *export.FontProvider,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		db:          db,
		storage:     storage,
		redisClient: redisClient,
		renderer:    renderer,
		fonts:       fonts,
		logger:      logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.CarouselExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("carousel_id", int(payload.CarouselID)),
	)
	log.Info("starting carousel export task")

	var record database.Carousel
	if err := h.db.WithContext(ctx).First(&record, payload.CarouselID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("carousel not found, skipping task")
			return nil
		}
		log.Error("query carousel failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(record.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := CarouselNotifyMessage{
			Event:         EventExport,
			Status:        "error",
			CarouselID:    record.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publishNotify(ctx, h.redisClient, record.UserID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	var doc carousel.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		log.Error("unmarshal carousel document failed", slog.Any("error", err))
		return err
	}

	printData := export.BuildPrintData(&doc)
	script, err := export.BuildPrintDataScript(printData)
	if err != nil {
		log.Error("build print data script failed", slog.Any("error", err))
		return err
	}

	fontCSS, err := h.fonts.CSS(ctx, printData.Fonts)
	if err != nil {
		log.Warn("fetch font css failed, exporting with fallback fonts", slog.Any("error", err))
		fontCSS = ""
	}

	if payload.SlideID != nil {
		return h.exportSingleSlide(ctx, log, &record, &doc, payload, script, fontCSS)
	}

	slideIDs := make([]int, 0, len(doc.Slides))
	for _, s := range doc.Slides {
		slideIDs = append(slideIDs, s.ID)
	}

	captured, err := h.renderer.CaptureSlides(script, fontCSS, slideIDs)
	if err != nil {
		log.Error("capture slides failed", slog.Any("error", err))
		return err
	}

	archive, err := export.BuildArchive(captured)
	if err != nil {
		log.Error("build archive failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("exports/%d/%s/%s.zip",
		record.UserID, uuid.NewString(), export.ArchiveName(doc.Title))
	if _, err := h.storage.UploadFile(ctx, objectName,
		bytes.NewReader(archive), int64(len(archive)), "application/zip"); err != nil {
		log.Error("upload archive failed", slog.Any("error", err))
		return err
	}

	archiveURL, err := h.storage.GeneratePresignedURL(ctx, objectName, archivePresignTTL)
	if err != nil {
		log.Error("generate archive presigned url failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).Model(&record).Updates(map[string]any{
		"archive_url": objectName,
		"status":      "completed",
	}).Error; err != nil {
		log.Error("update carousel failed", slog.Any("error", err))
		return err
	}

	notify := CarouselNotifyMessage{
		Event:         EventExport,
		Status:        "completed",
		CarouselID:    record.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		ArchiveURL:    archiveURL,
	}
	if skipped := skippedSlideIDs(slideIDs, captured); len(skipped) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "some slides failed to render and were skipped"
		notify.SkippedSlides = skipped
		log.Warn("archive built with skipped slides", slog.Any("skipped", skipped))
	}
	if err := publishNotify(ctx, h.redisClient, record.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	if err := h.storePreviewImage(ctx, &record, captured); err != nil {
		log.Warn("store carousel preview failed", slog.Any("error", err))
	}

	log.Info("carousel export task completed",
		slog.Int("slides", len(captured)),
		slog.String("object", objectName),
	)
	return nil
}

// exportSingleSlide renders one slide and delivers its PNG as a presigned
// download over the notify channel. The carousel row is left untouched; the
// single-slide path is ephemeral and never becomes the stored archive.
func (h *ExportTaskHandler) exportSingleSlide(
	ctx context.Context,
	log *slog.Logger,
	record *database.Carousel,
	doc *carousel.Document,
	payload tasks.CarouselExportPayload,
	script, fontCSS string,
) error {
	slideID := *payload.SlideID
	log = log.With(slog.Int("slide_id", slideID))

	if _, ok := doc.Slide(slideID); !ok {
		log.Warn("slide not found, skipping single-slide export")
		notify := CarouselNotifyMessage{
			Event:         EventExport,
			Status:        "error",
			CarouselID:    record.ID,
			SlideID:       &slideID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.ResourceMissing,
			ErrorMessage:  "slide not found",
		}
		return publishNotify(ctx, h.redisClient, record.UserID, notify)
	}

	captured, err := h.renderer.CaptureSlides(script, fontCSS, []int{slideID})
	if err != nil {
		log.Error("capture slide failed", slog.Any("error", err))
		return err
	}
	if len(captured) == 0 {
		return fmt.Errorf("slide %d failed to render", slideID)
	}

	objectName := fmt.Sprintf("exports/%d/%s/slide-%d.png",
		record.UserID, uuid.NewString(), slideID+1)
	png := captured[0].PNG
	if _, err := h.storage.UploadFile(ctx, objectName,
		bytes.NewReader(png), int64(len(png)), "image/png"); err != nil {
		log.Error("upload slide png failed", slog.Any("error", err))
		return err
	}

	downloadURL, err := h.storage.GeneratePresignedURL(ctx, objectName, archivePresignTTL)
	if err != nil {
		log.Error("generate slide presigned url failed", slog.Any("error", err))
		return err
	}

	notify := CarouselNotifyMessage{
		Event:         EventExport,
		Status:        "completed",
		CarouselID:    record.ID,
		SlideID:       &slideID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		ArchiveURL:    downloadURL,
	}
	if err := publishNotify(ctx, h.redisClient, record.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("single-slide export completed", slog.String("object", objectName))
	return nil
}

// storePreviewImage keeps the cover capture around as the carousel's list
// thumbnail.
func (h *ExportTaskHandler) storePreviewImage(ctx context.Context, record *database.Carousel, captured []export.CapturedSlide) error {
	if len(captured) == 0 {
		return nil
	}
	cover := captured[0].PNG

	objectName := fmt.Sprintf("thumbnails/carousel/%d/cover.png", record.ID)
	if _, err := h.storage.UploadFile(ctx, objectName,
		bytes.NewReader(cover), int64(len(cover)), "image/png"); err != nil {
		return fmt.Errorf("upload preview image: %w", err)
	}

	presignedURL, err := h.storage.GeneratePresignedURL(ctx, objectName, archivePresignTTL)
	if err != nil {
		return fmt.Errorf("generate preview presigned url: %w", err)
	}

	if err := h.db.WithContext(ctx).Model(record).
		Update("preview_image_url", presignedURL).Error; err != nil {
		return fmt.Errorf("update carousel preview url: %w", err)
	}
	return nil
}

func skippedSlideIDs(requested []int, captured []export.CapturedSlide) []int {
	got := make(map[int]struct{}, len(captured))
	for _, c := range captured {
		got[c.SlideID] = struct{}{}
	}
	var skipped []int
	for _, id := range requested {
		if _, ok := got[id]; !ok {
			skipped = append(skipped, id)
		}
	}
	return skipped
}

func publishNotify(ctx context.Context, client *redis.Client, userID uint, notify CarouselNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
