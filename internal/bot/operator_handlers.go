package bot

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"faithlog/internal/domain"
	"faithlog/internal/markdown"

	"mvdan.cc/xurls/v2"
)

const (
	operatorOnlyText = "⛔ This command is for operators only\\."
	addUsageText     = "✖️ Usage: /add URL CATEGORY TITLE"
)

func (b *Bot) handleOperatorCommand(
	ctx context.Context,
	chatID int64,
	caller domain.UserID,
	command string,
	args string,
) error {
	switch command {
	case "/scrape":
		return b.handleScrapeCommand(ctx, chatID, caller)
	case "/status":
		return b.handleStatusCommand(ctx, chatID)
	default:
		return b.handleAddCommand(ctx, chatID, caller, args)
	}
}

// handleScrapeCommand runs a scrape with the configured credential. The run
// outlives the update timeout so the job always reaches a final status.
func (b *Bot) handleScrapeCommand(ctx context.Context, chatID int64, caller domain.UserID) error {
	return b.withSpinner(ctx, chatID, func() error {
		result, err := b.svc.Scrape(context.WithoutCancel(ctx), caller, b.credential)
		if err != nil {
			return b.replyFailed(ctx, chatID, fmt.Errorf("scrape: %w", err))
		}

		b.log.InfoContext(ctx, "Scrape is started from chat",
			"userID", caller,
			"jobID", result.JobID,
			"success", result.Success,
			"itemsScraped", result.ItemsScraped)

		return b.sendMessageWithKeyboard(ctx, chatID, formatScrapeResult(result), b.returnKeyboard)
	})
}

func (b *Bot) handleStatusCommand(ctx context.Context, chatID int64) error {
	job, err := b.svc.LatestScrapeJob(ctx)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get latest scrape job: %w", err))
	}

	return b.sendMessageWithKeyboard(ctx, chatID, formatScrapeJob(job), b.returnKeyboard)
}

func (b *Bot) handleAddCommand(ctx context.Context, chatID int64, caller domain.UserID, args string) error {
	in, ok := parseAddArgs(args)
	if !ok {
		return b.sendMessageWithKeyboard(ctx, chatID, addUsageText, b.categoryKeyboard)
	}

	id, err := b.svc.AddResource(ctx, caller, in)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("add resource: %w", err))
	}

	return b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf("✅ Resource \\#%d %s is added\\.", id, markdown.Link(in.Title, in.URL)),
		b.returnKeyboard,
	)
}

// parseAddArgs reads "URL CATEGORY TITLE". The URL may appear anywhere in
// args; a missing title falls back to the default one.
func parseAddArgs(args string) (domain.ResourceInput, bool) {
	link := xurls.Strict().FindString(args)
	if link == "" {
		return domain.ResourceInput{}, false
	}

	rest := strings.Replace(args, link, "", 1)
	category, title := splitFirstWord(rest)
	category = strings.ToLower(category)

	if !slices.Contains(resourceCategories(), category) {
		return domain.ResourceInput{}, false
	}

	if title == "" {
		title = domain.DefaultResourceTitle
	}

	source := link
	if u, err := url.Parse(link); err == nil && u.Hostname() != "" {
		source = u.Hostname()
	}

	return domain.ResourceInput{
		Title:       title,
		URL:         link,
		Description: domain.DefaultResourceDescription,
		Source:      source,
		Category:    category,
	}, true
}
