package style

import "encoding/json"

// Opt is an optional field of an Override. Absent JSON keys leave it unset,
// an explicit null counts as set (needed for clearing gradients per slide).
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a set optional.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsZero reports whether the field is unset, so `omitzero` drops it.
func (o Opt[T]) IsZero() bool {
	return !o.set
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	return json.Unmarshal(data, &o.value)
}

// Override is a partial SlideStyle. Every field present wins over the global
// style for that field; absent fields fall through. The JSON shape mirrors
// SlideStyle key-for-key.
type Override struct {
	ShowTitle Opt[bool] `json:"showTitle,omitzero"`
	ShowBody  Opt[bool] `json:"showBody,omitzero"`

	TitleFont       Opt[string]  `json:"titleFont,omitzero"`
	TitleSize       Opt[float64] `json:"titleSize,omitzero"`
	TitleColor      Opt[string]  `json:"titleColor,omitzero"`
	TitleOffsetX    Opt[float64] `json:"titleOffsetX,omitzero"`
	TitleOffsetY    Opt[float64] `json:"titleOffsetY,omitzero"`
	TitleScale      Opt[float64] `json:"titleScale,omitzero"`
	TitleBgEnabled  Opt[bool]    `json:"titleBgEnabled,omitzero"`
	TitleBgColor    Opt[string]  `json:"titleBgColor,omitzero"`
	TitleBgOpacity  Opt[float64] `json:"titleBgOpacity,omitzero"`
	TitleBgGradient Opt[*string] `json:"titleBgGradient,omitzero"`
	TitleBgRadius   Opt[float64] `json:"titleBgRadius,omitzero"`
	TitleBgWidth    Opt[float64] `json:"titleBgWidth,omitzero"`
	TitleBgPaddingX Opt[float64] `json:"titleBgPaddingX,omitzero"`
	TitleBgPaddingY Opt[float64] `json:"titleBgPaddingY,omitzero"`

	BodyFont       Opt[string]  `json:"bodyFont,omitzero"`
	BodySize       Opt[float64] `json:"bodySize,omitzero"`
	BodyColor      Opt[string]  `json:"bodyColor,omitzero"`
	BodyOffsetX    Opt[float64] `json:"bodyOffsetX,omitzero"`
	BodyOffsetY    Opt[float64] `json:"bodyOffsetY,omitzero"`
	BodyScale      Opt[float64] `json:"bodyScale,omitzero"`
	BodyBgEnabled  Opt[bool]    `json:"bodyBgEnabled,omitzero"`
	BodyBgColor    Opt[string]  `json:"bodyBgColor,omitzero"`
	BodyBgOpacity  Opt[float64] `json:"bodyBgOpacity,omitzero"`
	BodyBgGradient Opt[*string] `json:"bodyBgGradient,omitzero"`
	BodyBgRadius   Opt[float64] `json:"bodyBgRadius,omitzero"`
	BodyBgWidth    Opt[float64] `json:"bodyBgWidth,omitzero"`
	BodyBgPaddingX Opt[float64] `json:"bodyBgPaddingX,omitzero"`
	BodyBgPaddingY Opt[float64] `json:"bodyBgPaddingY,omitzero"`

	ContainerColor    Opt[string]         `json:"containerColor,omitzero"`
	ContainerOpacity  Opt[float64]        `json:"containerOpacity,omitzero"`
	ContainerBlur     Opt[float64]        `json:"containerBlur,omitzero"`
	ContainerRadius   Opt[float64]        `json:"containerRadius,omitzero"`
	ContainerWidth    Opt[float64]        `json:"containerWidth,omitzero"`
	ContainerHeight   Opt[float64]        `json:"containerHeight,omitzero"`
	ContainerScope    Opt[ContainerScope] `json:"containerScope,omitzero"`
	ContainerGradient Opt[*string]        `json:"containerGradient,omitzero"`
	IsTransparent     Opt[bool]           `json:"isTransparent,omitzero"`

	ImageBrightness Opt[float64] `json:"imageBrightness,omitzero"`
	ImageSaturation Opt[float64] `json:"imageSaturation,omitzero"`
	ImageScale      Opt[float64] `json:"imageScale,omitzero"`
	ImageOffsetX    Opt[float64] `json:"imageOffsetX,omitzero"`
	ImageOffsetY    Opt[float64] `json:"imageOffsetY,omitzero"`
	ImageRepeat     Opt[bool]    `json:"imageRepeat,omitzero"`
}

// Resolve merges an optional per-slide override into the global style.
// Pure and total: a nil or empty override yields the global style unchanged.
// Callers must resolve on every read; the result is never cached.
func Resolve(global SlideStyle, override *Override) SlideStyle {
	out := global
	if override != nil {
		override.applyTo(&out)
	}
	return out
}

func (o *Override) applyTo(s *SlideStyle) {
	setIf(o.ShowTitle, &s.ShowTitle)
	setIf(o.ShowBody, &s.ShowBody)

	setIf(o.TitleFont, &s.TitleFont)
	setIf(o.TitleSize, &s.TitleSize)
	setIf(o.TitleColor, &s.TitleColor)
	setIf(o.TitleOffsetX, &s.TitleOffsetX)
	setIf(o.TitleOffsetY, &s.TitleOffsetY)
	setIf(o.TitleScale, &s.TitleScale)
	setIf(o.TitleBgEnabled, &s.TitleBgEnabled)
	setIf(o.TitleBgColor, &s.TitleBgColor)
	setIf(o.TitleBgOpacity, &s.TitleBgOpacity)
	setIf(o.TitleBgGradient, &s.TitleBgGradient)
	setIf(o.TitleBgRadius, &s.TitleBgRadius)
	setIf(o.TitleBgWidth, &s.TitleBgWidth)
	setIf(o.TitleBgPaddingX, &s.TitleBgPaddingX)
	setIf(o.TitleBgPaddingY, &s.TitleBgPaddingY)

	setIf(o.BodyFont, &s.BodyFont)
	setIf(o.BodySize, &s.BodySize)
	setIf(o.BodyColor, &s.BodyColor)
	setIf(o.BodyOffsetX, &s.BodyOffsetX)
	setIf(o.BodyOffsetY, &s.BodyOffsetY)
	setIf(o.BodyScale, &s.BodyScale)
	setIf(o.BodyBgEnabled, &s.BodyBgEnabled)
	setIf(o.BodyBgColor, &s.BodyBgColor)
	setIf(o.BodyBgOpacity, &s.BodyBgOpacity)
	setIf(o.BodyBgGradient, &s.BodyBgGradient)
	setIf(o.BodyBgRadius, &s.BodyBgRadius)
	setIf(o.BodyBgWidth, &s.BodyBgWidth)
	setIf(o.BodyBgPaddingX, &s.BodyBgPaddingX)
	setIf(o.BodyBgPaddingY, &s.BodyBgPaddingY)

	setIf(o.ContainerColor, &s.ContainerColor)
	setIf(o.ContainerOpacity, &s.ContainerOpacity)
	setIf(o.ContainerBlur, &s.ContainerBlur)
	setIf(o.ContainerRadius, &s.ContainerRadius)
	setIf(o.ContainerWidth, &s.ContainerWidth)
	setIf(o.ContainerHeight, &s.ContainerHeight)
	setIf(o.ContainerScope, &s.ContainerScope)
	setIf(o.ContainerGradient, &s.ContainerGradient)
	setIf(o.IsTransparent, &s.IsTransparent)

	setIf(o.ImageBrightness, &s.ImageBrightness)
	setIf(o.ImageSaturation, &s.ImageSaturation)
	setIf(o.ImageScale, &s.ImageScale)
	setIf(o.ImageOffsetX, &s.ImageOffsetX)
	setIf(o.ImageOffsetY, &s.ImageOffsetY)
	setIf(o.ImageRepeat, &s.ImageRepeat)
}

func setIf[T any](opt Opt[T], dst *T) {
	if v, ok := opt.Get(); ok {
		*dst = v
	}
}
