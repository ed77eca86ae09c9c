package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrNothingCaptured means no slide produced an image, so there is nothing
// to archive.
var ErrNothingCaptured = errors.New("export: no slides captured")

const fallbackArchiveName = "carousel_export"

// BuildArchive packs captured slides into a zip. Entry names carry the
// slide's 1-based position, derived from its id; a skipped slide leaves a
// gap in the numbering rather than renumbering the rest.
func BuildArchive(slides []CapturedSlide) ([]byte, error) {
	if len(slides) == 0 {
		return nil, ErrNothingCaptured
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, s := range slides {
		entry, err := w.Create(fmt.Sprintf("slide-%d.png", s.SlideID+1))
		if err != nil {
			return nil, fmt.Errorf("create zip entry: %w", err)
		}
		if _, err := entry.Write(s.PNG); err != nil {
			return nil, fmt.Errorf("write zip entry: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName derives the download filename from the carousel title:
// lowercased, every non-alphanumeric character replaced by an underscore. An
// empty or fully non-alphanumeric title falls back to a fixed name. The
// ".zip" extension is not included.
func ArchiveName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if strings.Trim(name, "_") == "" {
		return fallbackArchiveName
	}
	return name
}
