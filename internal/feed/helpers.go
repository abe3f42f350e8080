package feed

import (
	"net/url"
	"strings"
	"time"

	"faithlog/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

type entry struct {
	input   domain.ResourceInput
	content string
}

// parseItem converts a feed item into a news resource. Items without a link
// or published before cutoff are skipped. Items without a date are kept.
func parseItem(item *gofeed.Item, source string, cutoff time.Time) (entry, bool) {
	if item == nil {
		return entry{}, false
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		return entry{}, false
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published != nil && published.Before(cutoff) {
		return entry{}, false
	}

	title := plainText(item.Title)
	if title == "" {
		title = domain.DefaultResourceTitle
	}

	description := plainText(item.Description)
	if description != "" {
		description = fallbackDescription(description)
	}

	return entry{
		input: domain.ResourceInput{
			Title:       title,
			URL:         link,
			Description: description,
			Source:      source,
			Category:    domain.CategoryNews,
		},
		content: plainText(item.Content),
	}, true
}

// feedSource is the host of the site the feed belongs to, falling back to
// the host of the feed URL itself.
func feedSource(parsed *gofeed.Feed, feedURL string) string {
	for _, raw := range []string{parsed.Link, feedURL} {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}

		if host := u.Hostname(); host != "" {
			return host
		}
	}

	return feedURL
}

// plainText strips markup from feed fields, which are often HTML, and
// collapses whitespace.
func plainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

func fallbackDescription(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return domain.DefaultResourceDescription
	}

	runes := []rune(normalized)
	if len(runes) <= fallbackDescriptionChars {
		return normalized
	}

	return strings.TrimSpace(string(runes[:fallbackDescriptionChars])) + "..."
}
