package firecrawl

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

	"faithlog/internal/domain"
)

const (
	DefaultBaseURL = "https://api.firecrawl.dev"

	scrapePath          = "/v1/scrape"
	clientTimeout       = 60 * time.Second
	errorBodyExcerptLen = 512
)

var ErrUnsuccessful = errors.New("scrape API reported no success")

// StatusError is returned for non-2xx responses of the scrape API.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scrape API returned HTTP %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: clientTimeout},
		log:     log,
	}
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool        `json:"success"`
	Data    *scrapeData `json:"data"`
	Error   string      `json:"error"`
}

type scrapeData struct {
	Metadata *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"metadata"`
	Markdown string `json:"markdown"`
}

// Fetch scrapes pageURL as markdown. The credential is sent as a bearer
// token without validation.
func (c *Client) Fetch(ctx context.Context, pageURL string, credential string) (*domain.Page, error) {
	body, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"pageURL", pageURL)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyExcerptLen))

		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        pageURL,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	var parsed scrapeResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !parsed.Success || parsed.Data == nil {
		if parsed.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, parsed.Error)
		}

		return nil, ErrUnsuccessful
	}

	page := &domain.Page{
		URL:      pageURL,
		Markdown: parsed.Data.Markdown,
	}
	if parsed.Data.Metadata != nil {
		page.Title = parsed.Data.Metadata.Title
		page.Description = parsed.Data.Metadata.Description
	}

	return page, nil
}
