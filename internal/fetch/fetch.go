// Package fetch retrieves job description pages and reduces them to text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/career-agent/internal/ingestion"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 20 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CareerAgent/1.0)"

// maxBodyBytes bounds the HTML read from a page.
const maxBodyBytes = 5 << 20

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Renderer returns the HTML of a page after client-side rendering.
type Renderer func(ctx context.Context, url string) (string, error)

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// UseBrowser re-renders pages whose static HTML yields too little text.
	UseBrowser bool
	// Render overrides the headless browser used when UseBrowser is set.
	Render Renderer
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		out.Logger = slog.Default()
		return out
	}
	*out = *o
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Render == nil {
		out.Render = NewBrowserRenderer(out.Timeout, out.UserAgent, out.Logger)
	}
	return out
}

// Page retrieves the HTML of a URL. A non-200 response returns the result
// together with an *Error.
func Page(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	return result, nil
}

// JobDescription fetches a job posting and returns its cleaned text. Platform
// selectors pick the description block; with UseBrowser set, pages that yield
// less than MinContentLength characters are re-rendered in a headless browser.
func JobDescription(ctx context.Context, urlStr string, opts *Options) (string, error) {
	opts = opts.withDefaults()
	platform := DetectPlatform(urlStr)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)
	logger := opts.Logger.With("url", urlStr, "platform", string(platform))

	result, err := Page(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}
	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	logger.Debug("extracted job description", "html_bytes", len(result.HTML), "text_chars", len(text))

	if opts.UseBrowser && ShouldUseBrowser(text) {
		logger.Info("content too short, rendering with browser", "text_chars", len(text))
		rendered, renderErr := opts.Render(ctx, urlStr)
		if renderErr != nil {
			logger.Warn("browser rendering failed, using static content", "error", renderErr)
		} else if browserText, extractErr := ExtractMainText(rendered, content, noise...); extractErr == nil && len(browserText) > len(text) {
			text = browserText
		}
	}

	text = ingestion.CleanText(text)
	if text == "" {
		return "", &Error{URL: urlStr, Message: "no job description text found"}
	}
	return text, nil
}

// ExtractMainText parses HTML and returns the main body text with one line per
// block element and list items rendered as "- " bullets. Noise elements are
// removed first; the first matching content selector wins, falling back to body.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, iframe, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()
	if noiseSelector := strings.Join(noiseSelectors, ", "); noiseSelector != "" {
		doc.Find(noiseSelector).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	mainContent.Find("br").ReplaceWithHtml("\n")
	mainContent.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n- ")
	})
	mainContent.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, section, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(mainContent.Text()), nil
}

// JobPostingSelectors returns selectors for job board pages without a
// platform-specific layout.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".job-detail",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims each line, collapses inner runs of spaces and drops
// blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}
