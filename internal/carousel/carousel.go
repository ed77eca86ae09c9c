// Package carousel holds the slide deck: the live working copy the editor
// and the generation pipeline mutate. Persistence is a point-in-time
// snapshot of the Document; there is no live binding to storage.
package carousel

import (
	"instavibe/internal/layout"
	"instavibe/internal/style"
)

// Vibe is the visual/tonal direction threaded through every generation
// prompt.
type Vibe string

const (
	VibeMinimalist   Vibe = "Minimalista"
	VibeBold         Vibe = "Bold & Moderno"
	VibeRetro        Vibe = "Retro 90s"
	VibeNeon         Vibe = "Cyberpunk Neon"
	VibePastel       Vibe = "Pastel Soft"
	VibeProfessional Vibe = "Corporativo"
	VibeDarkMode     Vibe = "Dark Luxury"
)

// AspectRatio is the slide canvas ratio. The generative image backend only
// supports a small closed set; unsupported values degrade to the nearest.
type AspectRatio string

const (
	RatioSquare   AspectRatio = "1:1"
	RatioPortrait AspectRatio = "4:5"
	RatioStory    AspectRatio = "9:16"
)

// Slide is one card of the carousel. The id is assigned at creation as the
// slide's index in the batch and is never reused or renumbered.
type Slide struct {
	ID             int              `json:"id"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	ImagePrompt    string           `json:"imagePrompt"`
	ImageURL       string           `json:"imageUrl,omitempty"`
	IsLoadingImage bool             `json:"isLoadingImage"`
	Layout         layout.TextAnchor `json:"layout"`
	CustomStyle    *style.Override  `json:"customStyle,omitempty"`
}

// IsCover reports whether the slide gets the fixed cover emphasis.
func (s Slide) IsCover() bool {
	return s.ID == 0
}

// EffectiveStyle merges the global style with the slide's override. Computed
// on every read; never cached.
func (s Slide) EffectiveStyle(global style.SlideStyle) style.SlideStyle {
	return style.Resolve(global, s.CustomStyle)
}

// Document is the persisted shape of a carousel: generation inputs, the
// slides, the caption and the global style.
type Document struct {
	Title       string           `json:"title"`
	Topic       string           `json:"topic"`
	Vibe        Vibe             `json:"vibe"`
	AspectRatio AspectRatio      `json:"aspectRatio"`
	Language    string           `json:"language"`
	Caption     string           `json:"caption"`
	Slides      []Slide          `json:"slides"`
	GlobalStyle style.SlideStyle `json:"globalStyle"`
}

// NewDocument returns an empty carousel with the default global style.
func NewDocument(topic string, vibe Vibe, ratio AspectRatio, language string) Document {
	return Document{
		Title:       topic,
		Topic:       topic,
		Vibe:        vibe,
		AspectRatio: ratio,
		Language:    language,
		GlobalStyle: style.Default(),
	}
}
