package style

// SlideStyle is the canonical style record shared by every slide. Fields are
// grouped into four regions: title, body, container and image. The zero value
// is not meaningful; use Default().
type SlideStyle struct {
	ShowTitle bool `json:"showTitle"`
	ShowBody  bool `json:"showBody"`

	// Title region.
	TitleFont       string  `json:"titleFont"`
	TitleSize       float64 `json:"titleSize"`
	TitleColor      string  `json:"titleColor"`
	TitleOffsetX    float64 `json:"titleOffsetX"`
	TitleOffsetY    float64 `json:"titleOffsetY"`
	TitleScale      float64 `json:"titleScale"`
	TitleBgEnabled  bool    `json:"titleBgEnabled"`
	TitleBgColor    string  `json:"titleBgColor"`
	TitleBgOpacity  float64 `json:"titleBgOpacity"`
	TitleBgGradient *string `json:"titleBgGradient"`
	TitleBgRadius   float64 `json:"titleBgRadius"`
	TitleBgWidth    float64 `json:"titleBgWidth"` // 0 = fit content, >0 = % of parent
	TitleBgPaddingX float64 `json:"titleBgPaddingX"`
	TitleBgPaddingY float64 `json:"titleBgPaddingY"`

	// Body region.
	BodyFont       string  `json:"bodyFont"`
	BodySize       float64 `json:"bodySize"`
	BodyColor      string  `json:"bodyColor"`
	BodyOffsetX    float64 `json:"bodyOffsetX"`
	BodyOffsetY    float64 `json:"bodyOffsetY"`
	BodyScale      float64 `json:"bodyScale"`
	BodyBgEnabled  bool    `json:"bodyBgEnabled"`
	BodyBgColor    string  `json:"bodyBgColor"`
	BodyBgOpacity  float64 `json:"bodyBgOpacity"`
	BodyBgGradient *string `json:"bodyBgGradient"`
	BodyBgRadius   float64 `json:"bodyBgRadius"`
	BodyBgWidth    float64 `json:"bodyBgWidth"` // 0 = fit content, >0 = % of parent
	BodyBgPaddingX float64 `json:"bodyBgPaddingX"`
	BodyBgPaddingY float64 `json:"bodyBgPaddingY"`

	// Container region (the box wrapping title and/or body).
	ContainerColor    string         `json:"containerColor"`
	ContainerOpacity  float64        `json:"containerOpacity"`
	ContainerBlur     float64        `json:"containerBlur"`
	ContainerRadius   float64        `json:"containerRadius"`
	ContainerWidth    float64        `json:"containerWidth"`
	ContainerHeight   float64        `json:"containerHeight"` // 0 = auto
	ContainerScope    ContainerScope `json:"containerScope"`
	ContainerGradient *string        `json:"containerGradient"`
	IsTransparent     bool           `json:"isTransparent"`

	// Image region.
	ImageBrightness float64 `json:"imageBrightness"`
	ImageSaturation float64 `json:"imageSaturation"`
	ImageScale      float64 `json:"imageScale"`
	ImageOffsetX    float64 `json:"imageOffsetX"`
	ImageOffsetY    float64 `json:"imageOffsetY"`
	ImageRepeat     bool    `json:"imageRepeat"`
}

// ContainerScope selects whether the container background wraps title and
// body jointly, or only one of them (the other region then stands free).
type ContainerScope string

const (
	ScopeBoth  ContainerScope = "both"
	ScopeTitle ContainerScope = "title"
	ScopeBody  ContainerScope = "body"
)

// Default returns the style every new carousel starts from.
func Default() SlideStyle {
	return SlideStyle{
		ShowTitle: true,
		ShowBody:  true,

		TitleFont:       "Inter, sans-serif",
		TitleSize:       28,
		TitleColor:      "#ffffff",
		TitleScale:      100,
		TitleBgColor:    "#000000",
		TitleBgOpacity:  1,
		TitleBgRadius:   8,
		TitleBgPaddingX: 16,
		TitleBgPaddingY: 8,

		BodyFont:       "Montserrat, sans-serif",
		BodySize:       16,
		BodyColor:      "#e4e4e7",
		BodyScale:      100,
		BodyBgColor:    "#000000",
		BodyBgOpacity:  1,
		BodyBgRadius:   8,
		BodyBgPaddingX: 16,
		BodyBgPaddingY: 8,

		ContainerColor:   "#000000",
		ContainerOpacity: 0.6,
		ContainerBlur:    4,
		ContainerRadius:  12,
		ContainerWidth:   100,
		ContainerHeight:  0,
		ContainerScope:   ScopeBoth,

		ImageBrightness: 100,
		ImageSaturation: 100,
		ImageScale:      100,
	}
}

// FontOption is one entry of the font catalogue exposed to the editor.
type FontOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FontOptions lists the fonts loaded by the Google Fonts stylesheet.
var FontOptions = []FontOption{
	{Label: "Inter", Value: "Inter, sans-serif"},
	{Label: "Montserrat", Value: "Montserrat, sans-serif"},
	{Label: "Playfair", Value: `"Playfair Display", serif`},
	{Label: "Merriweather", Value: "Merriweather, serif"},
	{Label: "Oswald", Value: "Oswald, sans-serif"},
	{Label: "Pacifico", Value: "Pacifico, cursive"},
	{Label: "Roboto Mono", Value: `"Roboto Mono", monospace`},
	{Label: "Abril Fatface", Value: `"Abril Fatface", cursive`},
}

// GradientPreset is a named CSS gradient offered by the editor.
type GradientPreset struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var GradientPresets = []GradientPreset{
	{Name: "Sunset", Value: "linear-gradient(135deg, #f6d365 0%, #fda085 100%)"},
	{Name: "Ocean", Value: "linear-gradient(135deg, #a18cd1 0%, #fbc2eb 100%)"},
	{Name: "Purple", Value: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"},
	{Name: "Nature", Value: "linear-gradient(135deg, #84fab0 0%, #8fd3f4 100%)"},
	{Name: "Dark", Value: "linear-gradient(135deg, #232526 0%, #414345 100%)"},
	{Name: "Glass", Value: "linear-gradient(135deg, rgba(255,255,255,0.4) 0%, rgba(255,255,255,0.1) 100%)"},
	{Name: "Instagram", Value: "linear-gradient(45deg, #f09433 0%, #e6683c 25%, #dc2743 50%, #cc2366 75%, #bc1888 100%)"},
	{Name: "Midnight", Value: "linear-gradient(to right, #0f2027, #203a43, #2c5364)"},
}
