// Package orchestrator sequences calls to the generative backend and applies
// their results to a carousel document. Each generation unit (batch text,
// slide add, field rewrite, image batch) isolates its own failure; nothing
// here throws across component boundaries.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"instavibe/internal/carousel"
	"instavibe/internal/gemini"
)

// Generator is the slice of the generative backend the orchestrator needs.
// *gemini.Client satisfies it; tests install fakes.
type Generator interface {
	GenerateBatchText(ctx context.Context, topic string, vibe carousel.Vibe, count int, language string) (gemini.BatchText, error)
	GenerateNextSlideText(ctx context.Context, topic string, vibe carousel.Vibe, existingCount int, language string) (carousel.GeneratedSlide, error)
	RegenerateField(ctx context.Context, field carousel.TextField, topic string, vibe carousel.Vibe, otherFieldText, currentText, language string) (string, error)
	GenerateImage(ctx context.Context, prompt string, ratio carousel.AspectRatio) (string, error)
}

// ErrBusy means the targeted unit already has a request in flight.
var ErrBusy = errors.New("orchestrator: generation already in flight")

// ErrNoTopic means an incremental generation was requested before any topic
// was set.
var ErrNoTopic = errors.New("orchestrator: no topic set")

type fieldKey struct {
	slideID int
	field   carousel.TextField
}

// Orchestrator drives generation for one carousel session.
type Orchestrator struct {
	gen        Generator
	logger     *slog.Logger
	imageDelay time.Duration

	mu         sync.Mutex
	busyFields map[fieldKey]struct{}
	addBusy    bool
}

// New builds an orchestrator. imageDelay is the fixed pause between
// consecutive image requests of a batch.
func New(gen Generator, logger *slog.Logger, imageDelay time.Duration) *Orchestrator {
	if imageDelay <= 0 {
		imageDelay = 1500 * time.Millisecond
	}
	return &Orchestrator{
		gen:        gen,
		logger:     logger,
		imageDelay: imageDelay,
		busyFields: map[fieldKey]struct{}{},
	}
}

// GenerateBatch resets the deck to count skeleton slides, requests the full
// batch text and merges it into the skeletons by position. Ids are assigned
// before the request so the editor can bind to them immediately. If the
// request fails before anything was generated, the deck is cleared again.
func (o *Orchestrator) GenerateBatch(ctx context.Context, doc *carousel.Document, count int) error {
	if doc.Topic == "" {
		return ErrNoTopic
	}
	doc.InitBatch(count)

	batch, err := o.gen.GenerateBatchText(ctx, doc.Topic, doc.Vibe, count, doc.Language)
	if err != nil {
		doc.Slides = nil
		return fmt.Errorf("generate batch text: %w", err)
	}

	doc.ApplyGeneratedText(batch.Slides)
	doc.Caption = batch.Caption
	o.logger.Info("batch text generated",
		slog.String("topic", doc.Topic),
		slog.Int("slides", len(doc.Slides)),
	)
	return nil
}

// AddSlide appends exactly one generated slide. Only permitted when a topic
// is set and no other add is in flight; a failed request leaves the deck
// unchanged.
func (o *Orchestrator) AddSlide(ctx context.Context, doc *carousel.Document) (carousel.Slide, error) {
	if doc.Topic == "" {
		return carousel.Slide{}, ErrNoTopic
	}

	o.mu.Lock()
	if o.addBusy {
		o.mu.Unlock()
		return carousel.Slide{}, ErrBusy
	}
	o.addBusy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.addBusy = false
		o.mu.Unlock()
	}()

	content, err := o.gen.GenerateNextSlideText(ctx, doc.Topic, doc.Vibe, len(doc.Slides), doc.Language)
	if err != nil {
		return carousel.Slide{}, fmt.Errorf("generate next slide: %w", err)
	}
	return doc.AppendSlide(content), nil
}

// RegenerateField rewrites one (slide, field) pair. The pair is exclusive
// with itself while in flight; other fields and slides stay editable. The
// other field's text is sent as rewrite context. A completion whose target
// slide no longer exists is dropped.
func (o *Orchestrator) RegenerateField(ctx context.Context, doc *carousel.Document, slideID int, field carousel.TextField) (string, error) {
	if field != carousel.FieldTitle && field != carousel.FieldBody {
		return "", fmt.Errorf("orchestrator: field %q cannot be regenerated", field)
	}
	slide, ok := doc.Slide(slideID)
	if !ok {
		return "", fmt.Errorf("%w: id %d", carousel.ErrSlideNotFound, slideID)
	}

	key := fieldKey{slideID: slideID, field: field}
	o.mu.Lock()
	if _, busy := o.busyFields[key]; busy {
		o.mu.Unlock()
		return "", ErrBusy
	}
	o.busyFields[key] = struct{}{}
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.busyFields, key)
		o.mu.Unlock()
	}()

	otherText, currentText := slide.Body, slide.Title
	if field == carousel.FieldBody {
		otherText, currentText = slide.Title, slide.Body
	}

	newText, err := o.gen.RegenerateField(ctx, field, doc.Topic, doc.Vibe, otherText, currentText, doc.Language)
	if err != nil {
		return "", fmt.Errorf("regenerate %s: %w", field, err)
	}

	// The deck may have been reset while the request was in flight; a
	// stale completion must not resurrect content on a different deck.
	if _, ok := doc.Slide(slideID); !ok {
		return "", fmt.Errorf("%w: id %d gone after completion", carousel.ErrSlideNotFound, slideID)
	}
	if err := doc.SetField(slideID, field, newText); err != nil {
		return "", err
	}
	return newText, nil
}

// ImageResult reports one slide's outcome within an image batch.
type ImageResult struct {
	SlideID int
	Err     error
}

// GenerateMissingImages renders an image for every slide without one,
// strictly sequentially with a fixed inter-request delay to respect
// upstream rate limits. A per-slide failure clears that slide's loading
// flag and moves on; completed slides are never rolled back. The returned
// results are in slide order. onSlide, when non-nil, runs after each
// slide's mutation so the caller can persist and notify incrementally.
func (o *Orchestrator) GenerateMissingImages(ctx context.Context, doc *carousel.Document, onSlide func(ImageResult)) []ImageResult {
	var pending []int
	for _, s := range doc.Slides {
		if s.ImageURL == "" && s.ImagePrompt != "" {
			pending = append(pending, s.ID)
			_ = doc.SetLoading(s.ID, true)
		}
	}

	limiter := rate.NewLimiter(rate.Every(o.imageDelay), 1)
	results := make([]ImageResult, 0, len(pending))

	for _, id := range pending {
		if err := limiter.Wait(ctx); err != nil {
			// Context gone: unwind the loading flags and stop.
			for _, rest := range pending[len(results):] {
				_ = doc.SetLoading(rest, false)
			}
			return results
		}
		res := ImageResult{SlideID: id, Err: o.generateImageFor(ctx, doc, id)}
		results = append(results, res)
		if onSlide != nil {
			onSlide(res)
		}
	}
	return results
}

// RegenerateImage renders a new image for one slide, replacing any existing
// one. Failure clears the loading flag and leaves the previous image alone.
func (o *Orchestrator) RegenerateImage(ctx context.Context, doc *carousel.Document, slideID int) error {
	if _, ok := doc.Slide(slideID); !ok {
		return fmt.Errorf("%w: id %d", carousel.ErrSlideNotFound, slideID)
	}
	_ = doc.SetLoading(slideID, true)
	return o.generateImageFor(ctx, doc, slideID)
}

func (o *Orchestrator) generateImageFor(ctx context.Context, doc *carousel.Document, slideID int) error {
	slide, ok := doc.Slide(slideID)
	if !ok {
		return fmt.Errorf("%w: id %d", carousel.ErrSlideNotFound, slideID)
	}

	url, err := o.gen.GenerateImage(ctx, slide.ImagePrompt, doc.AspectRatio)
	if err != nil {
		_ = doc.SetLoading(slideID, false)
		o.logger.Warn("image generation failed",
			slog.Int("slide_id", slideID),
			slog.Any("error", err),
		)
		return err
	}

	// Guard by id: the deck may have been reset mid-flight.
	if _, ok := doc.Slide(slideID); !ok {
		return fmt.Errorf("%w: id %d gone after completion", carousel.ErrSlideNotFound, slideID)
	}
	return doc.SetImage(slideID, url)
}
