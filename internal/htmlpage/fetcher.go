// Package htmlpage fetches pages directly over HTTP and extracts their
// metadata and body without a third-party scrape API.
package htmlpage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"faithlog/internal/domain"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const (
	clientTimeout = 30 * time.Second
	maxBodyBytes  = 5 << 20
	userAgent     = "faithlog/1.0 (+resource ingestion)"
)

// HTTPError represents a non-2xx response for a fetched page.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	client    *http.Client
	converter *md.Converter
	log       *slog.Logger
}

func New(log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: clientTimeout},
		converter: md.NewConverter("", true, nil),
		log:       log,
	}
}

// Fetch ignores the credential; the page is requested directly.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, _ string) (*domain.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"pageURL", pageURL)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return f.extract(pageURL, doc), nil
}

func (f *Fetcher) extract(pageURL string, doc *goquery.Document) *domain.Page {
	title := metaContent(doc, `meta[property="og:title"]`)
	if title == "" {
		title = strings.TrimSpace(doc.Find("head title").First().Text())
	}

	description := metaContent(doc, `meta[name="description"]`)
	if description == "" {
		description = metaContent(doc, `meta[property="og:description"]`)
	}

	body := doc.Find("body")
	body.Find("script, style, noscript, nav, footer").Remove()

	return &domain.Page{
		URL:         pageURL,
		Title:       title,
		Description: description,
		Markdown:    strings.TrimSpace(f.converter.Convert(body)),
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")

	return strings.TrimSpace(content)
}
