package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"faithlog/internal/domain"
	"faithlog/internal/markdown"

	"github.com/go-telegram/bot/models"
)

const welcomeText = `🙏 *Welcome to Faithlog\!*

I help you keep track of your walk of faith:

– /resources \[category\] – latest faith resources
– /pray CATEGORY TEXT – save a prayer intention
– /prayers – your prayer intentions
– /answered ID – mark a prayer as answered
– /forget ID – remove a prayer intention
– /visit CHURCH \| NOTES – record a church visit
– /visits – your church visits
– /unvisit ID – remove a visit
– /notifications – your notifications
– /read ID or /read all – mark notifications as read

You will also get a gentle prayer reminder from time to time\.`

const (
	emptyResourcesText     = "✖️ No resources yet\\. Check back soon\\."
	emptyPrayersText       = "✖️ You have no prayer intentions yet\\. Add one with /pray\\."
	emptyVisitsText        = "✖️ You have no church visits yet\\. Record one with /visit\\."
	emptyNotificationsText = "✖️ You have no notifications\\."
	notFoundText           = "✖️ Not found\\."
	idUsageText            = "✖️ Send the ID number shown in the list\\."
	visitUsageText         = "✖️ Usage: /visit CHURCH \\| NOTES"
	readUsageText          = "✖️ Usage: /read ID or /read all"
)

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleResourcesCommand(ctx context.Context, chatID int64, category string) error {
	category = strings.ToLower(strings.TrimSpace(category))

	resources, err := b.svc.Resources(ctx, category)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get resources: %w", err))
	}

	if len(resources) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, emptyResourcesText, b.categoryKeyboard)
	}

	return b.sendMessages(ctx, chatID, formatResourcesAsMessages(resources, category), b.categoryKeyboard)
}

func (b *Bot) handlePrayCommand(ctx context.Context, chatID int64, caller domain.UserID, args string) error {
	category, intention := splitFirstWord(args)

	id, err := b.svc.AddPrayer(ctx, caller, intention, category)
	if errors.Is(err, domain.ErrInvalidValue) || errors.Is(err, domain.ErrEmptyField) {
		return b.sendMessageWithKeyboard(ctx, chatID, prayUsageText(), b.returnKeyboard)
	}
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("add prayer: %w", err))
	}

	return b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf("✅ Prayer intention \\#%d is saved\\. We are praying with you\\.", id),
		b.returnKeyboard,
	)
}

func (b *Bot) handlePrayersCommand(ctx context.Context, chatID int64, caller domain.UserID) error {
	prayers, err := b.svc.Prayers(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get prayers: %w", err))
	}

	if len(prayers) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, emptyPrayersText, b.returnKeyboard)
	}

	stats, err := b.svc.PrayerStats(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get prayer stats: %w", err))
	}

	return b.sendMessages(ctx, chatID, formatPrayersAsMessages(prayers, stats), b.returnKeyboard)
}

// handleIDCommand runs fn for the record id given in args and reports the
// outcome. Records of other users are reported as not found.
func (b *Bot) handleIDCommand(
	ctx context.Context,
	chatID int64,
	caller domain.UserID,
	args string,
	fn func(ctx context.Context, caller domain.UserID, id int64) error,
	successText string,
) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendMessageWithKeyboard(ctx, chatID, idUsageText, b.returnKeyboard)
	}

	err = fn(ctx, caller, id)
	if errors.Is(err, domain.ErrNotFound) {
		return b.sendMessageWithKeyboard(ctx, chatID, notFoundText, b.returnKeyboard)
	}
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("update record (ID = %d): %w", id, err))
	}

	return b.sendMessageWithKeyboard(ctx, chatID, successText, b.returnKeyboard)
}

func (b *Bot) handleVisitCommand(ctx context.Context, chatID int64, caller domain.UserID, args string) error {
	church, notes, _ := strings.Cut(args, "|")
	church = strings.TrimSpace(church)

	_, err := b.svc.AddVisit(ctx, caller, church, time.Time{}, notes)
	if errors.Is(err, domain.ErrEmptyField) {
		return b.sendMessageWithKeyboard(ctx, chatID, visitUsageText, b.returnKeyboard)
	}
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("add visit: %w", err))
	}

	return b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf("⛪ Visit to *%s* is recorded\\.", markdown.EscapeV2(church)),
		b.returnKeyboard,
	)
}

func (b *Bot) handleVisitsCommand(ctx context.Context, chatID int64, caller domain.UserID) error {
	visits, err := b.svc.Visits(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get visits: %w", err))
	}

	if len(visits) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, emptyVisitsText, b.returnKeyboard)
	}

	stats, err := b.svc.VisitStats(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get visit stats: %w", err))
	}

	return b.sendMessages(ctx, chatID, formatVisitsAsMessages(visits, stats), b.returnKeyboard)
}

func (b *Bot) handleNotificationsCommand(ctx context.Context, chatID int64, caller domain.UserID) error {
	notifications, err := b.svc.Notifications(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("get notifications: %w", err))
	}

	if len(notifications) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, emptyNotificationsText, b.returnKeyboard)
	}

	unread, err := b.svc.UnreadCount(ctx, caller)
	if err != nil {
		return b.replyFailed(ctx, chatID, fmt.Errorf("count unread notifications: %w", err))
	}

	return b.sendMessages(ctx, chatID, formatNotificationsAsMessages(notifications, unread), b.returnKeyboard)
}

func (b *Bot) handleReadCommand(ctx context.Context, chatID int64, caller domain.UserID, args string) error {
	if strings.EqualFold(strings.TrimSpace(args), "all") {
		updated, err := b.svc.MarkAllRead(ctx, caller)
		if err != nil {
			return b.replyFailed(ctx, chatID, fmt.Errorf("mark all notifications read: %w", err))
		}

		return b.sendMessageWithKeyboard(
			ctx,
			chatID,
			fmt.Sprintf("✅ %d notifications are marked as read\\.", updated),
			b.returnKeyboard,
		)
	}

	if strings.TrimSpace(args) == "" {
		return b.sendMessageWithKeyboard(ctx, chatID, readUsageText, b.returnKeyboard)
	}

	return b.handleIDCommand(ctx, chatID, caller, args, b.svc.MarkRead, "✅ Notification is marked as read\\.")
}

func (b *Bot) sendMessages(
	ctx context.Context,
	chatID int64,
	messages []string,
	keyboard *models.InlineKeyboardMarkup,
) error {
	var errs []error

	for _, message := range messages {
		if err := b.sendMessageWithKeyboard(ctx, chatID, message, keyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

func prayUsageText() string {
	return fmt.Sprintf(
		"✖️ Usage: /pray CATEGORY TEXT\n\nCategories: %s\\.",
		markdown.EscapeV2(strings.Join(domain.PrayerCategories, ", ")),
	)
}

func parseID(args string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args), "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ID: %w", err)
	}

	return id, nil
}

func splitFirstWord(s string) (string, string) {
	s = strings.TrimSpace(s)

	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}
