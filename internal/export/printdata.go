package export

import (
	"encoding/json"
	"fmt"
	"strconv"

	"instavibe/internal/carousel"
	"instavibe/internal/layout"
)

// PrintSlide is one slide of the print payload: content plus fully resolved
// geometry, so the print page renders without any style logic of its own.
type PrintSlide struct {
	ID       int                   `json:"id"`
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	ImageURL string                `json:"imageUrl,omitempty"`
	Geometry layout.RenderGeometry `json:"geometry"`
}

// PrintData is the payload injected into the frontend print page as
// window.__PRINT_DATA__.
type PrintData struct {
	Title       string               `json:"title"`
	AspectRatio carousel.AspectRatio `json:"aspectRatio"`
	Caption     string               `json:"caption"`
	Slides      []PrintSlide         `json:"slides"`
	Fonts       []string             `json:"fonts"`
}

// BuildPrintData resolves every slide of the document into print geometry.
func BuildPrintData(doc *carousel.Document) PrintData {
	data := PrintData{
		Title:       doc.Title,
		AspectRatio: doc.AspectRatio,
		Caption:     doc.Caption,
		Slides:      make([]PrintSlide, 0, len(doc.Slides)),
	}

	seen := make(map[string]struct{})
	for _, s := range doc.Slides {
		effective := s.EffectiveStyle(doc.GlobalStyle)
		data.Slides = append(data.Slides, PrintSlide{
			ID:       s.ID,
			Title:    s.Title,
			Body:     s.Body,
			ImageURL: s.ImageURL,
			Geometry: layout.ComputeGeometry(effective, s.Layout, s.IsCover()),
		})
		for _, family := range []string{effective.TitleFont, effective.BodyFont} {
			if family == "" {
				continue
			}
			if _, ok := seen[family]; ok {
				continue
			}
			seen[family] = struct{}{}
			data.Fonts = append(data.Fonts, family)
		}
	}
	return data
}

// BuildPrintDataScript produces the browser-side bootstrap that installs the
// payload as window.__PRINT_DATA__. strconv.Quote plus JSON.parse keeps the
// embedded JSON safe inside the script literal.
func BuildPrintDataScript(data PrintData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal print data: %w", err)
	}
	quoted := strconv.Quote(string(raw))
	return fmt.Sprintf(`() => { window.__PRINT_DATA__ = JSON.parse(%s); }`, quoted), nil
}
