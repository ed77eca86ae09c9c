package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestBuildArchive(t *testing.T) {
	data, err := BuildArchive([]CapturedSlide{
		{SlideID: 0, PNG: []byte("png-zero")},
		{SlideID: 2, PNG: []byte("png-two")},
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.File) != 2 {
		t.Fatalf("entry count = %d", len(r.File))
	}

	entries := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = string(content)
	}

	if entries["slide-1.png"] != "png-zero" {
		t.Errorf("slide-1.png = %q", entries["slide-1.png"])
	}
	// Slide id 2 keeps its position; the missing slide 1 leaves a gap.
	if entries["slide-3.png"] != "png-two" {
		t.Errorf("slide-3.png = %q", entries["slide-3.png"])
	}
	if _, ok := entries["slide-2.png"]; ok {
		t.Error("gap was renumbered away")
	}
}

func TestBuildArchiveEmpty(t *testing.T) {
	if _, err := BuildArchive(nil); !errors.Is(err, ErrNothingCaptured) {
		t.Errorf("err = %v, want ErrNothingCaptured", err)
	}
}

func TestArchiveName(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Meu Carrossel!", "meu_carrossel_"},
		{"5 Dicas de SEO", "5_dicas_de_seo"},
		{"Produtividade", "produtividade"},
		{"", "carousel_export"},
		{"!!!", "carousel_export"},
		{"___", "carousel_export"},
		{"Férias 2026", "f_rias_2026"},
	}
	for _, c := range cases {
		if got := ArchiveName(c.title); got != c.want {
			t.Errorf("ArchiveName(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}
