package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"faithlog/internal/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID := callbackChatID(callback)
	caller := domain.UserID(callback.From.ID)
	data := strings.TrimSpace(callback.Data)

	switch data {
	case "menu":
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleMenuCommand(ctx, chatID)
		})
	case "menu_resources":
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleResourcesCommand(ctx, chatID, "")
		})
	case "menu_prayers":
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handlePrayersCommand(ctx, chatID, caller)
		})
	case "menu_visits":
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleVisitsCommand(ctx, chatID, caller)
		})
	case "menu_notifications":
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleNotificationsCommand(ctx, chatID, caller)
		})
	}

	if category, ok := strings.CutPrefix(data, resourcesCategoryCallbackPrefix); ok {
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleResourcesCommand(ctx, chatID, category)
		})
	}

	return b.answerCallback(ctx, callback, "")
}

func (b *Bot) withEmptyCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if err := b.answerCallback(ctx, callback, ""); err != nil {
		errs = append(errs, err)
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) answerCallback(ctx context.Context, callback *models.CallbackQuery, text string) error {
	if _, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return nil
}
