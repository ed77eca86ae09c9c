// Package export turns a carousel into downloadable PNGs: it renders the
// frontend print page in headless chromium, captures each slide card and
// packs the captures into a zip archive.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// CapturedSlide is one rendered slide image, tagged with the slide id it
// came from.
type CapturedSlide struct {
	SlideID int
	PNG     []byte
}

// Renderer drives a headless browser session against the frontend print
// page and screenshots individual slide cards.
type Renderer struct {
	logger       *slog.Logger
	printPageURL string
	pageTimeout  time.Duration
}

func NewRenderer(logger *slog.Logger, printPageURL string) *Renderer {
	return &Renderer{
		logger:       logger,
		printPageURL: printPageURL,
		pageTimeout:  90 * time.Second,
	}
}

// CaptureSlides opens the print page, injects the resolved print data, waits
// for the render-ready signal and screenshots each requested slide card. A
// slide whose card node is missing is skipped, not failed; the export
// proceeds with whatever rendered.
func (r *Renderer) CaptureSlides(printDataScript string, fontCSS string, slideIDs []int) (_ []CapturedSlide, err error) {
	page, cleanup, err := r.openPrintPage(printDataScript, fontCSS)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	captured := make([]CapturedSlide, 0, len(slideIDs))
	for _, id := range slideIDs {
		selector := fmt.Sprintf("#slide-card-%d", id)
		element, findErr := page.Timeout(5 * time.Second).Element(selector)
		if findErr != nil {
			r.logger.Warn("slide card not found, skipping",
				slog.Int("slide_id", id),
				slog.String("selector", selector),
			)
			continue
		}
		png, shotErr := element.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		if shotErr != nil {
			r.logger.Warn("slide screenshot failed, skipping",
				slog.Int("slide_id", id),
				slog.Any("error", shotErr),
			)
			continue
		}
		captured = append(captured, CapturedSlide{SlideID: id, PNG: png})
	}
	return captured, nil
}

func (r *Renderer) openPrintPage(printDataScript, fontCSS string) (_ *rod.Page, cleanup func(), err error) {
	cleanup = func() {}

	r.logger.Info("export: navigating to print page", slog.String("url", r.printPageURL))

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer func() {
		if err != nil {
			launch.Cleanup()
		}
	}()

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Timeout(r.pageTimeout)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}

	page := browser.MustPage(r.printPageURL)
	cleanup = func() {
		if page != nil {
			_ = page.Close()
		}
		_ = browser.Close()
		launch.Cleanup()
	}

	page.MustWaitLoad()

	if printDataScript != "" {
		r.logger.Info("export: injecting print data")
		if _, evalErr := page.Timeout(10 * time.Second).Eval(printDataScript); evalErr != nil {
			return nil, cleanup, fmt.Errorf("inject print data: %w", evalErr)
		}
	}

	r.logger.Info("export: waiting for render signal (#export-render-ready)")
	if _, waitErr := page.Timeout(30 * time.Second).Element("#export-render-ready"); waitErr != nil {
		return nil, cleanup, fmt.Errorf("wait render ready: %w", waitErr)
	}

	if fontCSS != "" {
		// Inlining the font CSS keeps the capture independent of the
		// browser's network access to the font provider.
		if styleErr := page.AddStyleTag("", fontCSS); styleErr != nil {
			r.logger.Warn("export: font css injection failed, continue", slog.Any("error", styleErr))
		}
	}

	// Wait out webfont loading so captures don't use fallback metrics.
	if _, evalErr := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); evalErr != nil {
		r.logger.Warn("export: document.fonts.ready wait failed, continue", slog.Any("error", evalErr))
	}

	// Strip interactive chrome before capture. Nodes opt out of export by
	// carrying data-export-role="exclude"; slide images get crossorigin
	// set so the capture isn't tainted.
	page.MustEval(`() => {
	  document.querySelectorAll('[data-export-role="exclude"]').forEach(n => n.remove());
	  document.querySelectorAll('img').forEach(img => {
	    if (!img.crossOrigin) img.crossOrigin = 'anonymous';
	  });
	}`)

	page.MustWaitIdle()
	return page, cleanup, nil
}
