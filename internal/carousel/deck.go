package carousel

import (
	"errors"
	"fmt"

	"instavibe/internal/layout"
	"instavibe/internal/style"
)

// Scope says whether an edit targets every slide or one specific slide.
type Scope string

const (
	ScopeGlobal     Scope = "global"
	ScopeIndividual Scope = "individual"
)

// TextField names the editable text fields of a slide.
type TextField string

const (
	FieldTitle       TextField = "title"
	FieldBody        TextField = "body"
	FieldImagePrompt TextField = "imagePrompt"
)

var ErrSlideNotFound = errors.New("carousel: slide not found")

// GeneratedSlide is the text payload the generative backend returns for one
// slide.
type GeneratedSlide struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ImagePrompt string `json:"imagePrompt"`
}

// InitBatch replaces the deck with n skeleton slides carrying sequential ids
// 0..n-1, empty text and the centered anchor. The skeletons exist before any
// text returns so the editor has stable ids to bind to.
func (d *Document) InitBatch(n int) {
	slides := make([]Slide, 0, n)
	for i := 0; i < n; i++ {
		slides = append(slides, Slide{ID: i, Layout: layout.AnchorCenter})
	}
	d.Slides = slides
}

// ApplyGeneratedText fills the skeleton content fields in place, matched by
// position. Ids, layout and any override records survive; extra generated
// items beyond the current deck are dropped.
func (d *Document) ApplyGeneratedText(generated []GeneratedSlide) {
	for i := range d.Slides {
		if i >= len(generated) {
			break
		}
		d.Slides[i].Title = generated[i].Title
		d.Slides[i].Body = generated[i].Body
		d.Slides[i].ImagePrompt = generated[i].ImagePrompt
	}
}

// AppendSlide adds one slide with id = current length. Ids are dense and
// strictly increasing by append order; nothing ever renumbers them.
// Individual slides are never deleted, only the whole carousel is reset, so
// an id is also never reused.
func (d *Document) AppendSlide(content GeneratedSlide) Slide {
	s := Slide{
		ID:          len(d.Slides),
		Title:       content.Title,
		Body:        content.Body,
		ImagePrompt: content.ImagePrompt,
		Layout:      layout.AnchorCenter,
	}
	d.Slides = append(d.Slides, s)
	return s
}

// Slide returns a pointer to the slide with the given id.
func (d *Document) Slide(id int) (*Slide, bool) {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return &d.Slides[i], true
		}
	}
	return nil, false
}

// SetField writes one text field of one slide.
func (d *Document) SetField(id int, field TextField, value string) error {
	s, ok := d.Slide(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrSlideNotFound, id)
	}
	switch field {
	case FieldTitle:
		s.Title = value
	case FieldBody:
		s.Body = value
	case FieldImagePrompt:
		s.ImagePrompt = value
	default:
		return fmt.Errorf("carousel: unknown text field %q", field)
	}
	return nil
}

// SetImage stores the slide's image location and clears its loading flag.
func (d *Document) SetImage(id int, url string) error {
	s, ok := d.Slide(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrSlideNotFound, id)
	}
	s.ImageURL = url
	s.IsLoadingImage = false
	return nil
}

// SetLoading flips the slide's image-loading flag.
func (d *Document) SetLoading(id int, loading bool) error {
	s, ok := d.Slide(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrSlideNotFound, id)
	}
	s.IsLoadingImage = loading
	return nil
}

// SetLayout applies an anchor either to every slide or to one slide,
// depending on scope. A nil target with individual scope is rejected.
func (d *Document) SetLayout(scope Scope, id *int, anchor layout.TextAnchor) error {
	if !anchor.Valid() {
		return fmt.Errorf("carousel: invalid anchor %q", anchor)
	}
	if scope == ScopeGlobal || id == nil {
		for i := range d.Slides {
			d.Slides[i].Layout = anchor
		}
		return nil
	}
	s, ok := d.Slide(*id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrSlideNotFound, *id)
	}
	s.Layout = anchor
	return nil
}

// UpdateStyle writes one style field. Global scope (or a missing target)
// writes into the global style; individual scope writes into the target
// slide's override record, creating it on first use.
func (d *Document) UpdateStyle(scope Scope, id *int, field style.Field, value any) error {
	if scope == ScopeGlobal || id == nil {
		return style.SetGlobal(&d.GlobalStyle, field, value)
	}
	s, ok := d.Slide(*id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrSlideNotFound, *id)
	}
	if s.CustomStyle == nil {
		s.CustomStyle = &style.Override{}
	}
	return s.CustomStyle.Set(field, value)
}

// Geometry resolves the slide's effective style and anchor into the concrete
// box model used by the renderer.
func (d *Document) Geometry(s Slide) layout.RenderGeometry {
	return layout.ComputeGeometry(s.EffectiveStyle(d.GlobalStyle), s.Layout, s.IsCover())
}
