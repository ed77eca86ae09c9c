package export

import (
	"encoding/json"
	"strings"
	"testing"

	"instavibe/internal/carousel"
	"instavibe/internal/style"
)

func printTestDoc() carousel.Document {
	doc := carousel.NewDocument("receitas veganas", carousel.VibePastel, carousel.RatioPortrait, "pt-BR")
	doc.InitBatch(3)
	doc.ApplyGeneratedText([]carousel.GeneratedSlide{
		{Title: "Capa", Body: "sub", ImagePrompt: "pa"},
		{Title: "Dica 1", Body: "texto", ImagePrompt: "pb"},
		{Title: "Dica 2", Body: "texto", ImagePrompt: "pc"},
	})
	doc.Slides[1].ImageURL = "https://cdn/1.png"
	doc.Caption = "legenda #vegan"
	return doc
}

func TestBuildPrintData(t *testing.T) {
	doc := printTestDoc()
	data := BuildPrintData(&doc)

	if data.Title != "receitas veganas" || data.AspectRatio != carousel.RatioPortrait {
		t.Errorf("header = %q/%q", data.Title, data.AspectRatio)
	}
	if data.Caption != "legenda #vegan" {
		t.Errorf("caption = %q", data.Caption)
	}
	if len(data.Slides) != 3 {
		t.Fatalf("slide count = %d", len(data.Slides))
	}
	if data.Slides[1].ImageURL != "https://cdn/1.png" {
		t.Errorf("image url = %q", data.Slides[1].ImageURL)
	}

	// Cover emphasis is resolved into the geometry, not left to the page.
	if data.Slides[0].Geometry.Title.FontSizePx <= data.Slides[1].Geometry.Title.FontSizePx {
		t.Error("cover geometry not emphasized")
	}
}

func TestBuildPrintDataDedupesFonts(t *testing.T) {
	doc := printTestDoc()
	data := BuildPrintData(&doc)

	want := []string{"Inter, sans-serif", "Montserrat, sans-serif"}
	if len(data.Fonts) != len(want) {
		t.Fatalf("fonts = %v", data.Fonts)
	}
	for i, f := range want {
		if data.Fonts[i] != f {
			t.Errorf("fonts[%d] = %q, want %q", i, data.Fonts[i], f)
		}
	}
}

func TestBuildPrintDataCollectsOverrideFonts(t *testing.T) {
	doc := printTestDoc()
	doc.Slides[2].CustomStyle = &style.Override{
		TitleFont: style.Some("Oswald, sans-serif"),
	}

	data := BuildPrintData(&doc)
	found := false
	for _, f := range data.Fonts {
		if f == "Oswald, sans-serif" {
			found = true
		}
	}
	if !found {
		t.Errorf("override font missing from %v", data.Fonts)
	}
}

func TestBuildPrintDataScript(t *testing.T) {
	doc := printTestDoc()
	script, err := BuildPrintDataScript(BuildPrintData(&doc))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(script, "window.__PRINT_DATA__") {
		t.Error("script does not install the payload global")
	}
	if !strings.Contains(script, "JSON.parse(") {
		t.Error("payload not wrapped in JSON.parse")
	}

	// The quoted literal must decode back to the payload JSON.
	start := strings.Index(script, `JSON.parse("`)
	end := strings.LastIndex(script, `")`)
	if start < 0 || end < 0 {
		t.Fatalf("script shape unexpected: %s", script)
	}
	quoted := script[start+len("JSON.parse(") : end+1]
	var raw string
	if err := json.Unmarshal([]byte(quoted), &raw); err != nil {
		t.Fatalf("embedded literal not a JSON string: %v", err)
	}
	var decoded PrintData
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("embedded payload not valid JSON: %v", err)
	}
	if len(decoded.Slides) != 3 || decoded.Title != "receitas veganas" {
		t.Errorf("decoded payload = %+v", decoded)
	}
}
