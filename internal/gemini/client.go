// Package gemini is the client for the generative text/image backend. It
// speaks the REST generateContent API directly and hides the retry, fallback
// and response-parsing rules from the rest of the service.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"instavibe/internal/carousel"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Model ids. The pro models are tried first; flash is the degraded path when
// pro is unavailable to the caller's key or quota.
const (
	textModel          = "gemini-3-pro-preview"
	textFallbackModel  = "gemini-3-flash-preview"
	imageModel         = "gemini-3-pro-image-preview"
	imageFallbackModel = "gemini-2.5-flash-image"
)

// Options tunes retry behaviour. Zero values get sensible defaults.
type Options struct {
	BaseURL     string
	MaxRetries  int           // rate-limit retries per request
	BaseBackoff time.Duration // doubled after every attempt
	HTTPTimeout time.Duration
}

// Client calls the generative backend.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	maxRetries  int
	baseBackoff time.Duration
}

// NewClient builds a client. The API key belongs to the user session; an
// empty key still constructs (requests will fail with ErrUnauthorized).
func NewClient(apiKey string, logger *slog.Logger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 2 * time.Second
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 90 * time.Second
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: opts.HTTPTimeout},
		logger:      logger,
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.BaseBackoff,
	}
}

// BatchText is the result of a full-batch text generation.
type BatchText struct {
	Slides  []carousel.GeneratedSlide
	Caption string
}

// GenerateBatchText requests exactly count slides plus a caption. Item 0 is
// written as the cover slide (hook title + benefit subtitle).
func (c *Client) GenerateBatchText(ctx context.Context, topic string, vibe carousel.Vibe, count int, language string) (BatchText, error) {
	system := fmt.Sprintf(
		"You are a social media marketing and design specialist. "+
			"You write highly engaging Instagram carousel scripts and matching captions. "+
			"Tone of voice: %s. Language: %s.", vibe, language)

	prompt := fmt.Sprintf(
		"Create the full content for an Instagram carousel post about: %q.\n\n"+
			"1. Create exactly %d slides:\n"+
			"   - SLIDE 1 (COVER): a short high-impact hook title plus a short subtitle in the body field summarizing the post's benefit.\n"+
			"   - SLIDES 2 to %d: explanatory content, title plus a short direct body text.\n"+
			"   - For ALL slides: a visual prompt in ENGLISH for generating the image (style %s, no text in the image).\n\n"+
			"2. Create an engaging caption: a hook on the first line, a call to action at the end, and 5-10 relevant hashtags.\n\n"+
			"Respond as JSON: {\"slides\": [{\"title\", \"body\", \"imagePrompt\"}], \"caption\"}.",
		topic, count, count, vibe)

	text, err := c.generateTextWithFallback(ctx, system, prompt, 0)
	if err != nil {
		return BatchText{}, err
	}

	var parsed struct {
		Slides  []carousel.GeneratedSlide `json:"slides"`
		Caption string                    `json:"caption"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return BatchText{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parsed.Slides) == 0 {
		return BatchText{}, fmt.Errorf("%w: no slides in response", ErrMalformed)
	}
	if len(parsed.Slides) > count {
		parsed.Slides = parsed.Slides[:count]
	}
	return BatchText{Slides: parsed.Slides, Caption: parsed.Caption}, nil
}

// GenerateNextSlideText requests the content of one additional slide that
// continues the existing script.
func (c *Client) GenerateNextSlideText(ctx context.Context, topic string, vibe carousel.Vibe, existingCount int, language string) (carousel.GeneratedSlide, error) {
	system := fmt.Sprintf(
		"You are a social media marketing and design specialist continuing an existing carousel script. "+
			"Tone of voice: %s. Language: %s.", vibe, language)

	prompt := fmt.Sprintf(
		"The carousel is about: %q. There are already %d slides.\n"+
			"Create the content for the NEXT slide (slide number %d) as a logical continuation.\n"+
			"Provide a short catchy title, a short body text and a visual prompt in ENGLISH (style %s, no text).\n"+
			"Respond as JSON: {\"title\", \"body\", \"imagePrompt\"}.",
		topic, existingCount, existingCount+1, vibe)

	text, err := c.generateTextWithFallback(ctx, system, prompt, 0)
	if err != nil {
		return carousel.GeneratedSlide{}, err
	}

	var parsed carousel.GeneratedSlide
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return carousel.GeneratedSlide{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if parsed.Title == "" && parsed.Body == "" {
		return carousel.GeneratedSlide{}, fmt.Errorf("%w: empty slide content", ErrMalformed)
	}
	return parsed, nil
}

// RegenerateField rewrites one text field of one slide. The other field's
// current text is sent as context to bias the rewrite.
func (c *Client) RegenerateField(ctx context.Context, field carousel.TextField, topic string, vibe carousel.Vibe, otherFieldText, currentText, language string) (string, error) {
	system := fmt.Sprintf(
		"You are an expert Instagram copywriter rewriting parts of a carousel slide to make it more engaging. "+
			"Tone of voice: %s. Language: %s. "+
			"Answer ONLY with the new text, no quotes or explanations.", vibe, language)

	var contextLine, ask string
	if field == carousel.FieldTitle {
		contextLine = fmt.Sprintf("The slide's current body text is: %q.", otherFieldText)
		ask = "Rewrite the TITLE (short, punchy)."
	} else {
		contextLine = fmt.Sprintf("The slide's current title is: %q.", otherFieldText)
		ask = "Rewrite the BODY TEXT (concise, direct, easy to read)."
	}

	prompt := fmt.Sprintf(
		"The post is about: %q.\n%s\n%s\nCurrent text to improve: %q.\nProduce a creative, different alternative.",
		topic, contextLine, ask, currentText)

	// Single-field edits go straight to flash: latency matters more than
	// polish here.
	text, err := c.generateText(ctx, textFallbackModel, system, prompt, 0.9)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if text == "" {
		return "", fmt.Errorf("%w: empty rewrite", ErrMalformed)
	}
	return text, nil
}

// GenerateImage renders one slide illustration and returns it as a data URI.
// Unsupported aspect ratios degrade to the nearest value the model accepts.
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio carousel.AspectRatio) (string, error) {
	data, mime, err := c.generateImageOnce(ctx, imageModel, prompt, imageAspect(ratio))
	if err == nil {
		return fmt.Sprintf("data:%s;base64,%s", mime, data), nil
	}
	if !shouldFallback(err) {
		return "", err
	}
	c.logger.Warn("image model unavailable, falling back",
		slog.String("model", imageModel), slog.Any("error", err))

	data, mime, fbErr := c.generateImageOnce(ctx, imageFallbackModel, prompt, imageAspect(ratio))
	if fbErr != nil {
		return "", err // surface the original failure
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, data), nil
}

// imageAspect maps the carousel ratio onto the closed set the image models
// accept. 4:5 is not supported and degrades to 3:4.
func imageAspect(ratio carousel.AspectRatio) string {
	switch ratio {
	case carousel.RatioPortrait:
		return "3:4"
	case carousel.RatioStory:
		return "9:16"
	default:
		return "1:1"
	}
}

// --- transport ---

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64      `json:"temperature,omitempty"`
	ResponseMimeType string       `json:"responseMimeType,omitempty"`
	ImageConfig      *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateTextWithFallback(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	text, err := c.generateText(ctx, textModel, system, prompt, temperature)
	if err == nil {
		return text, nil
	}
	if !shouldFallback(err) {
		return "", err
	}
	c.logger.Warn("text model unavailable, falling back",
		slog.String("model", textModel), slog.Any("error", err))
	text, fbErr := c.generateText(ctx, textFallbackModel, system, prompt, temperature)
	if fbErr != nil {
		return "", err
	}
	return text, nil
}

// Pro being forbidden or exhausted for this key is exactly when flash is
// worth a try; anything else fails the same way on every model.
func shouldFallback(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnauthorized)
}

func (c *Client) generateText(ctx context.Context, model, system, prompt string, temperature float64) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:      temperature,
			ResponseMimeType: "application/json",
		},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if temperature > 0 {
		// Free-text rewrites must not be forced into JSON.
		req.GenerationConfig.ResponseMimeType = ""
	}

	resp, err := c.call(ctx, model, req)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformed)
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text part", ErrMalformed)
	}
	return text, nil
}

func (c *Client) generateImageOnce(ctx context.Context, model, prompt, aspect string) (data, mime string, err error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: aspect},
		},
	}
	resp, err := c.call(ctx, model, req)
	if err != nil {
		return "", "", err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data, p.InlineData.MimeType, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: no image data in response", ErrMalformed)
}

// call posts one generateContent request, retrying rate limits with
// exponential backoff up to the configured ceiling. Authorization failures
// and malformed payloads are never retried.
func (c *Client) call(ctx context.Context, model string, reqBody generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	backoff := c.baseBackoff
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("rate limited, backing off",
				slog.String("model", model),
				slog.Int("attempt", attempt),
				slog.Duration("wait", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := c.doRequest(ctx, url, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string, payload []byte) (*generateResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(truncate(body, 200)))
	case httpResp.StatusCode == http.StatusUnauthorized, httpResp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, httpResp.StatusCode)
	default:
		return nil, fmt.Errorf("backend status %d: %s", httpResp.StatusCode, strings.TrimSpace(truncate(body, 200)))
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
