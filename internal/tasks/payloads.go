// Package tasks defines the asynq task types shared by the API (producer)
// and the worker (consumer).
package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeCarouselExport = "carousel:export"
	TypeImageBatch     = "carousel:image_batch"
)

// CarouselExportPayload identifies the carousel to render and archive. A
// non-nil SlideID narrows the task to a single-slide PNG download instead of
// the zip archive.
type CarouselExportPayload struct {
	CarouselID    uint   `json:"carousel_id"`
	SlideID       *int   `json:"slide_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// NewCarouselExportTask builds an export task for one carousel.
func NewCarouselExportTask(id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CarouselExportPayload{
		CarouselID:    id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCarouselExport, payload), nil
}

// NewSlideExportTask builds a task rendering one slide to a downloadable PNG.
func NewSlideExportTask(id uint, slideID int, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CarouselExportPayload{
		CarouselID:    id,
		SlideID:       &slideID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCarouselExport, payload), nil
}

// ImageBatchPayload identifies the carousel whose missing slide images
// should be generated. A non-nil SlideID narrows the task to regenerating
// that one slide's image.
type ImageBatchPayload struct {
	CarouselID    uint   `json:"carousel_id"`
	SlideID       *int   `json:"slide_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// NewImageBatchTask builds an image-batch task for one carousel.
func NewImageBatchTask(id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageBatchPayload{
		CarouselID:    id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageBatch, payload), nil
}

// NewSlideImageTask builds a task regenerating one slide's image.
func NewSlideImageTask(id uint, slideID int, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageBatchPayload{
		CarouselID:    id,
		SlideID:       &slideID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageBatch, payload), nil
}
