package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the rune count below which statically fetched text is
// treated as an unrendered single-page app.
const MinContentLength = 200

// selectorWait bounds how long the browser waits for the job description
// container before taking whatever has rendered.
const selectorWait = 8 * time.Second

// ShouldUseBrowser reports whether the extracted text is too short.
func ShouldUseBrowser(extractedText string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(extractedText)) < MinContentLength
}

// NewBrowserRenderer returns a Renderer backed by headless Chrome. On known
// job boards it waits for the platform's description container; elsewhere it
// waits for the body. Requires Chrome or Chromium on the host.
func NewBrowserRenderer(timeout time.Duration, userAgent string, logger *slog.Logger) Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, pageURL string) (string, error) {
		return renderPage(ctx, pageURL, timeout, userAgent, logger)
	}
}

func renderPage(ctx context.Context, pageURL string, timeout time.Duration, userAgent string, logger *slog.Logger) (string, error) {
	platform := DetectPlatform(pageURL)
	logger.Debug("rendering page in headless browser", "url", pageURL, "platform", platform)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(pageURL), chromedp.WaitReady("body")); err != nil {
		return "", fmt.Errorf("browser navigation failed: %w", err)
	}

	if platform != PlatformUnknown {
		waitCtx, cancelWait := context.WithTimeout(browserCtx, selectorWait)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(PlatformContentSelectors(platform)[0], chromedp.ByQuery))
		cancelWait()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("browser wait failed: %w", err)
		}
		if err != nil {
			logger.Debug("description container did not appear, using rendered page", "url", pageURL)
		}
	} else if err := chromedp.Run(browserCtx, chromedp.Sleep(2*time.Second)); err != nil {
		return "", fmt.Errorf("browser wait failed: %w", err)
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	logger.Debug("rendered page", "url", pageURL, "html_bytes", len(html))
	return html, nil
}
