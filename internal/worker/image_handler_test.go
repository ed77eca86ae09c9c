package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"instavibe/internal/carousel"
	"instavibe/internal/database"
)

func setupImageHandlerTest(t *testing.T) (*ImageBatchTaskHandler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&database.User{}, &database.Carousel{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	h := NewImageBatchTaskHandler(db, nil, nil, nil, slog.New(slog.DiscardHandler), 0)
	return h, db
}

func seedImageCarousel(t *testing.T, db *gorm.DB, slides int) database.Carousel {
	t.Helper()
	doc := carousel.NewDocument("cafe especial", carousel.VibeBold, carousel.RatioPortrait, "pt-BR")
	doc.InitBatch(slides)
	for i := range doc.Slides {
		doc.Slides[i].Title = fmt.Sprintf("t%d", i)
		doc.Slides[i].Body = fmt.Sprintf("b%d", i)
		doc.Slides[i].ImagePrompt = fmt.Sprintf("p%d", i)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	record := database.Carousel{
		Title:    doc.Title,
		Document: raw,
		UserID:   1,
		Status:   "draft",
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatal(err)
	}
	return record
}

func loadImageCarouselDoc(t *testing.T, db *gorm.DB, id uint) carousel.Document {
	t.Helper()
	var record database.Carousel
	if err := db.First(&record, id).Error; err != nil {
		t.Fatal(err)
	}
	var doc carousel.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func saveImageCarouselDoc(t *testing.T, db *gorm.DB, id uint, doc *carousel.Document) {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&database.Carousel{}).Where("id = ?", id).
		Update("document", raw).Error; err != nil {
		t.Fatal(err)
	}
}

func TestPersistSlideImageKeepsConcurrentEdits(t *testing.T) {
	h, db := setupImageHandlerTest(t)
	record := seedImageCarousel(t, db, 2)

	// Worker snapshot taken at task start.
	snapshot := loadImageCarouselDoc(t, db, record.ID)

	// Editor autosave lands while the batch is running.
	edited := loadImageCarouselDoc(t, db, record.ID)
	if err := edited.SetField(0, carousel.FieldTitle, "titulo editado"); err != nil {
		t.Fatal(err)
	}
	saveImageCarouselDoc(t, db, record.ID, &edited)

	if err := snapshot.SetImage(1, "images/1/slide-1.png"); err != nil {
		t.Fatal(err)
	}
	if err := h.persistSlideImage(context.Background(), record.ID, &snapshot, 1, nil); err != nil {
		t.Fatalf("persistSlideImage: %v", err)
	}

	stored := loadImageCarouselDoc(t, db, record.ID)
	if got := stored.Slides[0].Title; got != "titulo editado" {
		t.Errorf("slide 0 title = %q, want the concurrent edit kept", got)
	}
	if got := stored.Slides[1].ImageURL; got != "images/1/slide-1.png" {
		t.Errorf("slide 1 image url = %q", got)
	}
	if stored.Slides[1].IsLoadingImage {
		t.Error("slide 1 loading flag not cleared")
	}
}

func TestPersistSlideImageFailureClearsLoadingOnly(t *testing.T) {
	h, db := setupImageHandlerTest(t)
	record := seedImageCarousel(t, db, 2)

	stored := loadImageCarouselDoc(t, db, record.ID)
	if err := stored.SetLoading(0, true); err != nil {
		t.Fatal(err)
	}
	if err := stored.SetField(1, carousel.FieldBody, "corpo editado"); err != nil {
		t.Fatal(err)
	}
	saveImageCarouselDoc(t, db, record.ID, &stored)

	snapshot := loadImageCarouselDoc(t, db, record.ID)
	genErr := errors.New("image backend unavailable")
	if err := h.persistSlideImage(context.Background(), record.ID, &snapshot, 0, genErr); err != nil {
		t.Fatalf("persistSlideImage: %v", err)
	}

	after := loadImageCarouselDoc(t, db, record.ID)
	if after.Slides[0].IsLoadingImage {
		t.Error("loading flag not cleared after failure")
	}
	if after.Slides[0].ImageURL != "" {
		t.Errorf("failed slide gained image url %q", after.Slides[0].ImageURL)
	}
	if got := after.Slides[1].Body; got != "corpo editado" {
		t.Errorf("slide 1 body = %q, want the concurrent edit kept", got)
	}
}

func TestPersistSlideImageMissingSlide(t *testing.T) {
	h, db := setupImageHandlerTest(t)
	record := seedImageCarousel(t, db, 1)
	snapshot := loadImageCarouselDoc(t, db, record.ID)

	err := h.persistSlideImage(context.Background(), record.ID, &snapshot, 9, nil)
	if !errors.Is(err, carousel.ErrSlideNotFound) {
		t.Fatalf("err = %v, want ErrSlideNotFound", err)
	}

	after := loadImageCarouselDoc(t, db, record.ID)
	if got := after.Slides[0].Title; got != "t0" {
		t.Errorf("slide 0 title = %q, row should be untouched", got)
	}
}
