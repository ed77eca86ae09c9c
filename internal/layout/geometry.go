package layout

import (
	"fmt"
	"strconv"

	"instavibe/internal/style"
)

// Cover slides get a fixed, non-configurable emphasis over the configured
// font sizes.
const (
	coverTitleFactor = 1.5
	coverBodyFactor  = 1.2
)

// Canvas padding around the content block; dropped entirely for edge-to-edge
// containers so a 100%-wide box really reaches the slide borders.
const canvasPaddingPx = 32.0

// BoxStyle is the resolved background box of the container or of one region.
type BoxStyle struct {
	Background string  `json:"background"`
	Padding    string  `json:"padding"`
	RadiusPx   float64 `json:"radiusPx"`
	Width      string  `json:"width,omitempty"`
	// HeightPct > 0 pins the box height and vertically centers its children.
	HeightPct      float64 `json:"heightPct,omitempty"`
	BackdropFilter string  `json:"backdropFilter,omitempty"`
	Shadow         bool    `json:"shadow"`
}

// TextStyle is the resolved typography and flow placement of one region.
type TextStyle struct {
	FontFamily string  `json:"fontFamily"`
	FontSizePx float64 `json:"fontSizePx"`
	Color      string  `json:"color"`
	Scale      float64 `json:"scale"`
	// Offsets are flow margins, not transforms, so a region background
	// stretches with the moved text.
	MarginLeftPx float64 `json:"marginLeftPx"`
	MarginTopPx  float64 `json:"marginTopPx"`
	// Extra spacing under the title when it has no box of its own.
	MarginBottomPx float64 `json:"marginBottomPx,omitempty"`
	// Box is non-nil when this region renders its own background.
	Box *BoxStyle `json:"box,omitempty"`
}

// ImageStyle is the resolved transform of the slide's background image.
type ImageStyle struct {
	Filter    string `json:"filter"`
	Transform string `json:"transform"`
	// Repeat switches from cover-fit to vertical tiling at full width.
	Repeat             bool   `json:"repeat"`
	BackgroundRepeat   string `json:"backgroundRepeat,omitempty"`
	BackgroundSize     string `json:"backgroundSize,omitempty"`
	BackgroundPosition string `json:"backgroundPosition,omitempty"`
}

// RenderGeometry is the full visual box model of one slide, ready to be
// serialized into the print page. It carries no style semantics of its own;
// everything is already resolved to concrete CSS values.
type RenderGeometry struct {
	Alignment       Alignment  `json:"alignment"`
	CanvasPaddingPx float64    `json:"canvasPaddingPx"`
	ContainerWidth  string     `json:"containerWidth"`
	ContainerBox    *BoxStyle  `json:"containerBox,omitempty"`
	ShowTitle       bool       `json:"showTitle"`
	ShowBody        bool       `json:"showBody"`
	Title           TextStyle  `json:"title"`
	Body            TextStyle  `json:"body"`
	Image           ImageStyle `json:"image"`
}

// ComputeGeometry resolves a merged style and anchor into concrete geometry.
// Total: out-of-range inputs are rendered as-is, clamping is the editor's
// concern.
func ComputeGeometry(s style.SlideStyle, anchor TextAnchor, isCover bool) RenderGeometry {
	g := RenderGeometry{
		Alignment:       anchor.Alignment(),
		CanvasPaddingPx: canvasPaddingPx,
		ContainerWidth:  pct(s.ContainerWidth),
		ShowTitle:       s.ShowTitle,
		ShowBody:        s.ShowBody,
	}
	if s.ContainerWidth >= 100 {
		g.CanvasPaddingPx = 0
	}

	containerBox := containerBoxStyle(s)
	switch s.ContainerScope {
	case style.ScopeTitle:
		g.Title.Box = &containerBox
	case style.ScopeBody:
		g.Body.Box = &containerBox
	default:
		g.ContainerBox = &containerBox
	}

	titleSize := s.TitleSize
	bodySize := s.BodySize
	if isCover {
		titleSize *= coverTitleFactor
		bodySize *= coverBodyFactor
	}

	g.Title.FontFamily = s.TitleFont
	g.Title.FontSizePx = titleSize
	g.Title.Color = s.TitleColor
	g.Title.Scale = s.TitleScale / 100
	g.Title.MarginLeftPx = s.TitleOffsetX
	g.Title.MarginTopPx = s.TitleOffsetY
	if g.Title.Box == nil && s.ShowBody {
		g.Title.MarginBottomPx = 12
	}
	if s.TitleBgEnabled {
		box := regionBoxStyle(s.TitleBgColor, s.TitleBgOpacity, s.TitleBgGradient,
			s.TitleBgRadius, s.TitleBgWidth, s.TitleBgPaddingX, s.TitleBgPaddingY)
		g.Title.Box = mergeRegionBox(g.Title.Box, box)
	}

	g.Body.FontFamily = s.BodyFont
	g.Body.FontSizePx = bodySize
	g.Body.Color = s.BodyColor
	g.Body.Scale = s.BodyScale / 100
	g.Body.MarginLeftPx = s.BodyOffsetX
	// The title precedes the body in flow, so its offset drags the body
	// along. Subtracting it keeps the body's on-screen position independent
	// of where the title was moved.
	if s.ShowTitle {
		g.Body.MarginTopPx = s.BodyOffsetY - s.TitleOffsetY
	} else {
		g.Body.MarginTopPx = s.BodyOffsetY
	}
	if s.BodyBgEnabled {
		box := regionBoxStyle(s.BodyBgColor, s.BodyBgOpacity, s.BodyBgGradient,
			s.BodyBgRadius, s.BodyBgWidth, s.BodyBgPaddingX, s.BodyBgPaddingY)
		g.Body.Box = mergeRegionBox(g.Body.Box, box)
	}

	g.Image = imageStyle(s)
	return g
}

func containerBoxStyle(s style.SlideStyle) BoxStyle {
	box := BoxStyle{
		Background: containerFill(s),
		Padding:    "24px",
		RadiusPx:   s.ContainerRadius,
		Shadow:     !s.IsTransparent,
	}
	// Edge-to-edge slides cannot show rounding.
	if s.ContainerWidth >= 100 {
		box.RadiusPx = 0
	}
	if s.IsTransparent {
		box.Padding = "0"
	}
	if s.ContainerBlur > 0 {
		box.BackdropFilter = fmt.Sprintf("blur(%spx)", num(s.ContainerBlur))
	}
	if s.ContainerHeight > 0 {
		box.HeightPct = s.ContainerHeight
	}
	return box
}

func containerFill(s style.SlideStyle) string {
	if s.IsTransparent {
		return "transparent"
	}
	if s.ContainerGradient != nil {
		return *s.ContainerGradient
	}
	return hexToRGBA(s.ContainerColor, s.ContainerOpacity)
}

func regionBoxStyle(color string, opacity float64, gradient *string, radius, width, padX, padY float64) *BoxStyle {
	fill := hexToRGBA(color, opacity)
	if gradient != nil {
		fill = *gradient
	}
	box := &BoxStyle{
		Background: fill,
		Padding:    fmt.Sprintf("%spx %spx", num(padY), num(padX)),
		RadiusPx:   radius,
		Width:      "fit-content",
		Shadow:     true,
	}
	if width > 0 {
		box.Width = pct(width)
	}
	return box
}

// When the container scope routes the shared box onto a region that also has
// its own background enabled, the region's explicit background wins; the two
// presentation paths are mutually exclusive.
func mergeRegionBox(scoped, own *BoxStyle) *BoxStyle {
	if own != nil {
		return own
	}
	return scoped
}

func imageStyle(s style.SlideStyle) ImageStyle {
	img := ImageStyle{
		Filter: fmt.Sprintf("brightness(%s%%) saturate(%s%%)",
			num(s.ImageBrightness), num(s.ImageSaturation)),
		Transform: fmt.Sprintf("scale(%s) translate(%s%%, %s%%)",
			num(s.ImageScale/100), num(s.ImageOffsetX), num(s.ImageOffsetY)),
		Repeat: s.ImageRepeat,
	}
	if s.ImageRepeat {
		img.BackgroundRepeat = "repeat-y"
		img.BackgroundSize = "100% auto"
		img.BackgroundPosition = "top center"
	}
	return img
}

// hexToRGBA converts "#rrggbb" plus an opacity scalar into an rgba() value.
// Malformed colors degrade to black at the requested opacity.
func hexToRGBA(hex string, opacity float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return fmt.Sprintf("rgba(0, 0, 0, %s)", num(opacity))
	}
	r, err1 := strconv.ParseUint(hex[1:3], 16, 8)
	g, err2 := strconv.ParseUint(hex[3:5], 16, 8)
	b, err3 := strconv.ParseUint(hex[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Sprintf("rgba(0, 0, 0, %s)", num(opacity))
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, num(opacity))
}

func pct(v float64) string {
	return num(v) + "%"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
