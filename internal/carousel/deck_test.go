package carousel

import (
	"errors"
	"testing"

	"instavibe/internal/layout"
	"instavibe/internal/style"
)

func TestInitBatch(t *testing.T) {
	doc := NewDocument("marketing digital", VibeBold, RatioPortrait, "pt-BR")
	doc.InitBatch(5)

	if len(doc.Slides) != 5 {
		t.Fatalf("slide count = %d", len(doc.Slides))
	}
	for i, s := range doc.Slides {
		if s.ID != i {
			t.Errorf("slide %d has id %d", i, s.ID)
		}
		if s.Layout != layout.AnchorCenter {
			t.Errorf("slide %d anchor = %s", i, s.Layout)
		}
		if s.Title != "" || s.Body != "" {
			t.Errorf("slide %d not a skeleton: %+v", i, s)
		}
	}
	if !doc.Slides[0].IsCover() || doc.Slides[1].IsCover() {
		t.Error("cover detection wrong")
	}
}

func TestApplyGeneratedText(t *testing.T) {
	var doc Document
	doc.InitBatch(3)
	doc.Slides[1].Layout = layout.AnchorTopLeft
	doc.Slides[2].CustomStyle = &style.Override{TitleSize: style.Some(40.0)}

	doc.ApplyGeneratedText([]GeneratedSlide{
		{Title: "a", Body: "aa", ImagePrompt: "pa"},
		{Title: "b", Body: "bb", ImagePrompt: "pb"},
		{Title: "c", Body: "cc", ImagePrompt: "pc"},
		{Title: "extra", Body: "extra", ImagePrompt: "extra"},
	})

	if len(doc.Slides) != 3 {
		t.Fatalf("extra generated item grew the deck: %d slides", len(doc.Slides))
	}
	if doc.Slides[0].Title != "a" || doc.Slides[2].Body != "cc" {
		t.Errorf("text not applied by position: %+v", doc.Slides)
	}
	if doc.Slides[1].Layout != layout.AnchorTopLeft {
		t.Error("layout lost")
	}
	if doc.Slides[2].CustomStyle == nil {
		t.Error("override record lost")
	}
	if doc.Slides[2].ID != 2 {
		t.Error("id changed")
	}
}

func TestApplyGeneratedTextShortBatch(t *testing.T) {
	var doc Document
	doc.InitBatch(3)
	doc.ApplyGeneratedText([]GeneratedSlide{{Title: "only"}})

	if doc.Slides[0].Title != "only" {
		t.Error("first slide not filled")
	}
	if doc.Slides[1].Title != "" || doc.Slides[2].Title != "" {
		t.Error("unfilled skeletons gained text")
	}
}

func TestAppendSlide(t *testing.T) {
	var doc Document
	doc.InitBatch(2)

	s := doc.AppendSlide(GeneratedSlide{Title: "novo", Body: "corpo", ImagePrompt: "prompt"})
	if s.ID != 2 {
		t.Errorf("appended id = %d, want 2", s.ID)
	}
	if s.Layout != layout.AnchorCenter {
		t.Errorf("appended anchor = %s", s.Layout)
	}
	if len(doc.Slides) != 3 {
		t.Fatalf("slide count = %d", len(doc.Slides))
	}

	s = doc.AppendSlide(GeneratedSlide{Title: "outro"})
	if s.ID != 3 {
		t.Errorf("second appended id = %d, want 3", s.ID)
	}
}

func TestSetField(t *testing.T) {
	var doc Document
	doc.InitBatch(2)

	if err := doc.SetField(1, FieldTitle, "editado"); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetField(1, FieldImagePrompt, "sunset beach"); err != nil {
		t.Fatal(err)
	}
	if doc.Slides[1].Title != "editado" || doc.Slides[1].ImagePrompt != "sunset beach" {
		t.Errorf("fields not written: %+v", doc.Slides[1])
	}

	if err := doc.SetField(9, FieldTitle, "x"); !errors.Is(err, ErrSlideNotFound) {
		t.Errorf("missing slide error = %v", err)
	}
	if err := doc.SetField(0, TextField("mood"), "x"); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestSetImageClearsLoading(t *testing.T) {
	var doc Document
	doc.InitBatch(1)

	if err := doc.SetLoading(0, true); err != nil {
		t.Fatal(err)
	}
	if !doc.Slides[0].IsLoadingImage {
		t.Fatal("loading flag not set")
	}

	if err := doc.SetImage(0, "https://cdn/img.png"); err != nil {
		t.Fatal(err)
	}
	if doc.Slides[0].ImageURL != "https://cdn/img.png" {
		t.Errorf("image url = %q", doc.Slides[0].ImageURL)
	}
	if doc.Slides[0].IsLoadingImage {
		t.Error("loading flag survived image arrival")
	}
}

func TestSetLayoutScopes(t *testing.T) {
	var doc Document
	doc.InitBatch(3)

	if err := doc.SetLayout(ScopeGlobal, nil, layout.AnchorBottomLeft); err != nil {
		t.Fatal(err)
	}
	for i, s := range doc.Slides {
		if s.Layout != layout.AnchorBottomLeft {
			t.Errorf("slide %d anchor = %s", i, s.Layout)
		}
	}

	id := 1
	if err := doc.SetLayout(ScopeIndividual, &id, layout.AnchorTopRight); err != nil {
		t.Fatal(err)
	}
	if doc.Slides[1].Layout != layout.AnchorTopRight {
		t.Error("target slide not updated")
	}
	if doc.Slides[0].Layout != layout.AnchorBottomLeft || doc.Slides[2].Layout != layout.AnchorBottomLeft {
		t.Error("individual update leaked to other slides")
	}

	if err := doc.SetLayout(ScopeGlobal, nil, layout.TextAnchor("bogus")); err == nil {
		t.Error("invalid anchor accepted")
	}
	missing := 9
	if err := doc.SetLayout(ScopeIndividual, &missing, layout.AnchorCenter); !errors.Is(err, ErrSlideNotFound) {
		t.Errorf("missing slide error = %v", err)
	}
}

func TestUpdateStyleScopes(t *testing.T) {
	doc := NewDocument("t", VibeMinimalist, RatioSquare, "pt-BR")
	doc.InitBatch(2)

	if err := doc.UpdateStyle(ScopeGlobal, nil, style.FieldTitleSize, 34.0); err != nil {
		t.Fatal(err)
	}
	if doc.GlobalStyle.TitleSize != 34 {
		t.Errorf("global TitleSize = %v", doc.GlobalStyle.TitleSize)
	}

	id := 1
	if err := doc.UpdateStyle(ScopeIndividual, &id, style.FieldTitleSize, 20.0); err != nil {
		t.Fatal(err)
	}
	if doc.Slides[1].CustomStyle == nil {
		t.Fatal("override record not created")
	}
	if v, set := doc.Slides[1].CustomStyle.TitleSize.Get(); !set || v != 20 {
		t.Errorf("override TitleSize = %v set=%v", v, set)
	}
	if doc.Slides[0].CustomStyle != nil {
		t.Error("override leaked to another slide")
	}
	if doc.GlobalStyle.TitleSize != 34 {
		t.Error("individual edit changed the global style")
	}

	effective := doc.Slides[1].EffectiveStyle(doc.GlobalStyle)
	if effective.TitleSize != 20 {
		t.Errorf("effective TitleSize = %v, want the override", effective.TitleSize)
	}
	effective = doc.Slides[0].EffectiveStyle(doc.GlobalStyle)
	if effective.TitleSize != 34 {
		t.Errorf("effective TitleSize = %v, want the global", effective.TitleSize)
	}
}

func TestGeometryUsesCoverEmphasis(t *testing.T) {
	doc := NewDocument("t", VibeNeon, RatioPortrait, "pt-BR")
	doc.InitBatch(2)

	cover := doc.Geometry(doc.Slides[0])
	inner := doc.Geometry(doc.Slides[1])
	if cover.Title.FontSizePx <= inner.Title.FontSizePx {
		t.Errorf("cover title %v not larger than inner %v", cover.Title.FontSizePx, inner.Title.FontSizePx)
	}
}
