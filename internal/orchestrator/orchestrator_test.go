package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"instavibe/internal/carousel"
	"instavibe/internal/gemini"
)

type fakeGenerator struct {
	mu sync.Mutex

	batchFn func(count int) (gemini.BatchText, error)
	nextFn  func(existing int) (carousel.GeneratedSlide, error)
	fieldFn func(field carousel.TextField, otherText, currentText string) (string, error)
	imageFn func(prompt string) (string, error)

	imageCalls []string
	fieldCalls int

	// release, when non-nil, blocks field regeneration until closed.
	release chan struct{}
}

func (f *fakeGenerator) GenerateBatchText(ctx context.Context, topic string, vibe carousel.Vibe, count int, language string) (gemini.BatchText, error) {
	if f.batchFn == nil {
		return gemini.BatchText{}, errors.New("unexpected batch call")
	}
	return f.batchFn(count)
}

func (f *fakeGenerator) GenerateNextSlideText(ctx context.Context, topic string, vibe carousel.Vibe, existingCount int, language string) (carousel.GeneratedSlide, error) {
	if f.nextFn == nil {
		return carousel.GeneratedSlide{}, errors.New("unexpected next-slide call")
	}
	return f.nextFn(existingCount)
}

func (f *fakeGenerator) RegenerateField(ctx context.Context, field carousel.TextField, topic string, vibe carousel.Vibe, otherFieldText, currentText, language string) (string, error) {
	f.mu.Lock()
	f.fieldCalls++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.fieldFn == nil {
		return "", errors.New("unexpected field call")
	}
	return f.fieldFn(field, otherFieldText, currentText)
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string, ratio carousel.AspectRatio) (string, error) {
	f.mu.Lock()
	f.imageCalls = append(f.imageCalls, prompt)
	f.mu.Unlock()
	if f.imageFn == nil {
		return "", errors.New("unexpected image call")
	}
	return f.imageFn(prompt)
}

func newTestOrchestrator(gen Generator) *Orchestrator {
	return New(gen, slog.New(slog.DiscardHandler), time.Millisecond)
}

func testDoc() carousel.Document {
	return carousel.NewDocument("ideias de marketing", carousel.VibeBold, carousel.RatioPortrait, "pt-BR")
}

func TestGenerateBatch(t *testing.T) {
	gen := &fakeGenerator{
		batchFn: func(count int) (gemini.BatchText, error) {
			slides := make([]carousel.GeneratedSlide, count)
			for i := range slides {
				slides[i] = carousel.GeneratedSlide{
					Title:       fmt.Sprintf("t%d", i),
					Body:        fmt.Sprintf("b%d", i),
					ImagePrompt: fmt.Sprintf("p%d", i),
				}
			}
			return gemini.BatchText{Slides: slides, Caption: "legenda"}, nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()

	if err := o.GenerateBatch(context.Background(), &doc, 3); err != nil {
		t.Fatal(err)
	}
	if len(doc.Slides) != 3 {
		t.Fatalf("slide count = %d", len(doc.Slides))
	}
	if doc.Slides[2].Title != "t2" || doc.Slides[2].ID != 2 {
		t.Errorf("slide 2 = %+v", doc.Slides[2])
	}
	if doc.Caption != "legenda" {
		t.Errorf("caption = %q", doc.Caption)
	}
}

func TestGenerateBatchFailureClearsDeck(t *testing.T) {
	gen := &fakeGenerator{
		batchFn: func(int) (gemini.BatchText, error) {
			return gemini.BatchText{}, gemini.ErrRateLimited
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()

	err := o.GenerateBatch(context.Background(), &doc, 5)
	if !errors.Is(err, gemini.ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
	if len(doc.Slides) != 0 {
		t.Errorf("%d skeleton slides survived the failure", len(doc.Slides))
	}
}

func TestGenerateBatchRequiresTopic(t *testing.T) {
	o := newTestOrchestrator(&fakeGenerator{})
	doc := carousel.Document{}

	if err := o.GenerateBatch(context.Background(), &doc, 5); !errors.Is(err, ErrNoTopic) {
		t.Errorf("err = %v, want ErrNoTopic", err)
	}
}

func TestAddSlide(t *testing.T) {
	gen := &fakeGenerator{
		nextFn: func(existing int) (carousel.GeneratedSlide, error) {
			return carousel.GeneratedSlide{Title: fmt.Sprintf("slide %d", existing+1)}, nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)

	s, err := o.AddSlide(context.Background(), &doc)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != 2 || s.Title != "slide 3" {
		t.Errorf("slide = %+v", s)
	}
	if len(doc.Slides) != 3 {
		t.Errorf("slide count = %d", len(doc.Slides))
	}
}

func TestAddSlideFailureLeavesDeck(t *testing.T) {
	gen := &fakeGenerator{
		nextFn: func(int) (carousel.GeneratedSlide, error) {
			return carousel.GeneratedSlide{}, gemini.ErrMalformed
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)

	if _, err := o.AddSlide(context.Background(), &doc); !errors.Is(err, gemini.ErrMalformed) {
		t.Fatalf("err = %v", err)
	}
	if len(doc.Slides) != 2 {
		t.Errorf("failed add changed the deck: %d slides", len(doc.Slides))
	}
}

func TestAddSlideRequiresTopic(t *testing.T) {
	o := newTestOrchestrator(&fakeGenerator{})
	doc := carousel.Document{}

	if _, err := o.AddSlide(context.Background(), &doc); !errors.Is(err, ErrNoTopic) {
		t.Errorf("err = %v, want ErrNoTopic", err)
	}
}

func TestRegenerateFieldPassesOtherFieldAsContext(t *testing.T) {
	var gotOther, gotCurrent string
	gen := &fakeGenerator{
		fieldFn: func(field carousel.TextField, other, current string) (string, error) {
			gotOther, gotCurrent = other, current
			return "novo corpo", nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)
	doc.Slides[1].Title = "titulo atual"
	doc.Slides[1].Body = "corpo atual"

	text, err := o.RegenerateField(context.Background(), &doc, 1, carousel.FieldBody)
	if err != nil {
		t.Fatal(err)
	}
	if text != "novo corpo" {
		t.Errorf("text = %q", text)
	}
	if gotOther != "titulo atual" || gotCurrent != "corpo atual" {
		t.Errorf("context = (%q, %q)", gotOther, gotCurrent)
	}
	if doc.Slides[1].Body != "novo corpo" {
		t.Errorf("slide body = %q", doc.Slides[1].Body)
	}
	if doc.Slides[1].Title != "titulo atual" {
		t.Error("title changed by a body rewrite")
	}
}

func TestRegenerateFieldRejectsImagePrompt(t *testing.T) {
	o := newTestOrchestrator(&fakeGenerator{})
	doc := testDoc()
	doc.InitBatch(1)

	if _, err := o.RegenerateField(context.Background(), &doc, 0, carousel.FieldImagePrompt); err == nil {
		t.Error("imagePrompt regeneration accepted")
	}
}

func TestRegenerateFieldBusyExclusion(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{
		release: release,
		fieldFn: func(carousel.TextField, string, string) (string, error) {
			return "rewritten", nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := o.RegenerateField(context.Background(), &doc, 0, carousel.FieldTitle)
		done <- err
	}()
	<-started
	for {
		gen.mu.Lock()
		calls := gen.fieldCalls
		gen.mu.Unlock()
		if calls > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Same pair is exclusive.
	if _, err := o.RegenerateField(context.Background(), &doc, 0, carousel.FieldTitle); !errors.Is(err, ErrBusy) {
		t.Errorf("same-pair err = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	// The pair frees up after completion.
	if _, err := o.RegenerateField(context.Background(), &doc, 0, carousel.FieldTitle); err != nil {
		t.Errorf("pair still busy after completion: %v", err)
	}
}

func TestRegenerateFieldDropsStaleCompletion(t *testing.T) {
	doc := testDoc()
	doc.InitBatch(3)
	gen := &fakeGenerator{
		fieldFn: func(carousel.TextField, string, string) (string, error) {
			// The deck is reset while the request is in flight.
			doc.InitBatch(1)
			return "stale text", nil
		},
	}
	o := newTestOrchestrator(gen)

	_, err := o.RegenerateField(context.Background(), &doc, 2, carousel.FieldTitle)
	if !errors.Is(err, carousel.ErrSlideNotFound) {
		t.Fatalf("err = %v, want ErrSlideNotFound", err)
	}
	if doc.Slides[0].Title == "stale text" {
		t.Error("stale completion written into the new deck")
	}
}

func TestGenerateMissingImages(t *testing.T) {
	gen := &fakeGenerator{
		imageFn: func(prompt string) (string, error) {
			if prompt == "p1" {
				return "", gemini.ErrRateLimited
			}
			return "https://cdn/" + prompt + ".png", nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(3)
	for i := range doc.Slides {
		doc.Slides[i].ImagePrompt = fmt.Sprintf("p%d", i)
	}
	doc.Slides[0].ImageURL = "https://cdn/existing.png"

	var seen []ImageResult
	results := o.GenerateMissingImages(context.Background(), &doc, func(r ImageResult) {
		seen = append(seen, r)
	})

	if len(results) != 2 {
		t.Fatalf("results = %+v, want only the two slides without images", results)
	}
	if results[0].SlideID != 1 || results[0].Err == nil {
		t.Errorf("result 0 = %+v, want slide 1 failed", results[0])
	}
	if results[1].SlideID != 2 || results[1].Err != nil {
		t.Errorf("result 1 = %+v, want slide 2 ok", results[1])
	}
	if len(seen) != 2 {
		t.Errorf("onSlide called %d times", len(seen))
	}

	if doc.Slides[0].ImageURL != "https://cdn/existing.png" {
		t.Error("existing image replaced")
	}
	if doc.Slides[1].ImageURL != "" || doc.Slides[1].IsLoadingImage {
		t.Errorf("failed slide = %+v, want no image and loading cleared", doc.Slides[1])
	}
	if doc.Slides[2].ImageURL != "https://cdn/p2.png" || doc.Slides[2].IsLoadingImage {
		t.Errorf("succeeded slide = %+v", doc.Slides[2])
	}
	if len(gen.imageCalls) != 2 {
		t.Errorf("image calls = %v", gen.imageCalls)
	}
}

func TestGenerateMissingImagesSkipsEmptyPrompts(t *testing.T) {
	gen := &fakeGenerator{
		imageFn: func(prompt string) (string, error) {
			return "https://cdn/x.png", nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)
	doc.Slides[1].ImagePrompt = "only this one"

	results := o.GenerateMissingImages(context.Background(), &doc, nil)
	if len(results) != 1 || results[0].SlideID != 1 {
		t.Errorf("results = %+v", results)
	}
}

func TestGenerateMissingImagesCancelUnwindsLoading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{
		imageFn: func(prompt string) (string, error) {
			cancel()
			return "https://cdn/first.png", nil
		},
	}
	o := New(gen, slog.New(slog.DiscardHandler), 50*time.Millisecond)
	doc := testDoc()
	doc.InitBatch(3)
	for i := range doc.Slides {
		doc.Slides[i].ImagePrompt = fmt.Sprintf("p%d", i)
	}

	results := o.GenerateMissingImages(ctx, &doc, nil)
	if len(results) != 1 {
		t.Fatalf("results = %+v, want the batch cut short after one slide", results)
	}
	if doc.Slides[0].ImageURL != "https://cdn/first.png" {
		t.Error("completed slide rolled back")
	}
	for _, s := range doc.Slides[1:] {
		if s.IsLoadingImage {
			t.Errorf("slide %d still marked loading after cancel", s.ID)
		}
	}
}

func TestRegenerateImage(t *testing.T) {
	gen := &fakeGenerator{
		imageFn: func(prompt string) (string, error) {
			return "https://cdn/new.png", nil
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(2)
	doc.Slides[1].ImagePrompt = "beach"
	doc.Slides[1].ImageURL = "https://cdn/old.png"

	if err := o.RegenerateImage(context.Background(), &doc, 1); err != nil {
		t.Fatal(err)
	}
	if doc.Slides[1].ImageURL != "https://cdn/new.png" {
		t.Errorf("image = %q", doc.Slides[1].ImageURL)
	}

	if err := o.RegenerateImage(context.Background(), &doc, 9); !errors.Is(err, carousel.ErrSlideNotFound) {
		t.Errorf("missing slide err = %v", err)
	}
}

func TestRegenerateImageFailureKeepsPrevious(t *testing.T) {
	gen := &fakeGenerator{
		imageFn: func(prompt string) (string, error) {
			return "", gemini.ErrRateLimited
		},
	}
	o := newTestOrchestrator(gen)
	doc := testDoc()
	doc.InitBatch(1)
	doc.Slides[0].ImagePrompt = "beach"
	doc.Slides[0].ImageURL = "https://cdn/old.png"

	err := o.RegenerateImage(context.Background(), &doc, 0)
	if !errors.Is(err, gemini.ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
	if doc.Slides[0].ImageURL != "https://cdn/old.png" {
		t.Error("previous image lost on failure")
	}
	if doc.Slides[0].IsLoadingImage {
		t.Error("loading flag not cleared")
	}
}
