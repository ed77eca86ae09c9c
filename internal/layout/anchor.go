// Package layout turns a merged slide style plus a text anchor into the
// concrete box model the print page renders from.
package layout

// TextAnchor places the content block in one of nine zones of the slide.
type TextAnchor string

const (
	AnchorCenter       TextAnchor = "center"
	AnchorTopLeft      TextAnchor = "top_left"
	AnchorTopCenter    TextAnchor = "top_center"
	AnchorTopRight     TextAnchor = "top_right"
	AnchorMiddleLeft   TextAnchor = "middle_left"
	AnchorMiddleRight  TextAnchor = "middle_right"
	AnchorBottomLeft   TextAnchor = "bottom_left"
	AnchorBottomCenter TextAnchor = "bottom_center"
	AnchorBottomRight  TextAnchor = "bottom_right"
)

// Alignment is the CSS flex triple that positions the content block.
type Alignment struct {
	JustifyContent string `json:"justifyContent"`
	AlignItems     string `json:"alignItems"`
	TextAlign      string `json:"textAlign"`
}

var anchorAlignments = map[TextAnchor]Alignment{
	AnchorCenter:       {"center", "center", "center"},
	AnchorTopLeft:      {"flex-start", "flex-start", "left"},
	AnchorTopCenter:    {"flex-start", "center", "center"},
	AnchorTopRight:     {"flex-start", "flex-end", "right"},
	AnchorMiddleLeft:   {"center", "flex-start", "left"},
	AnchorMiddleRight:  {"center", "flex-end", "right"},
	AnchorBottomLeft:   {"flex-end", "flex-start", "left"},
	AnchorBottomCenter: {"flex-end", "center", "center"},
	AnchorBottomRight:  {"flex-end", "flex-end", "right"},
}

// Anchors returns the nine anchors in reading order.
func Anchors() []TextAnchor {
	return []TextAnchor{
		AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
		AnchorMiddleLeft, AnchorCenter, AnchorMiddleRight,
		AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight,
	}
}

// Valid reports whether a is one of the nine anchors.
func (a TextAnchor) Valid() bool {
	_, ok := anchorAlignments[a]
	return ok
}

// Alignment maps the anchor to its flex triple. Unknown values fall back to
// the centered layout so the resolver stays total.
func (a TextAnchor) Alignment() Alignment {
	if al, ok := anchorAlignments[a]; ok {
		return al
	}
	return anchorAlignments[AnchorCenter]
}
