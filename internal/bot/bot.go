// Package bot is the Telegram front end. A Telegram user id is used as the
// caller identity for every service call.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"faithlog/internal/domain"
	"faithlog/internal/markdown"
	"faithlog/internal/ratelimiter"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const updateProcessingTimeout = 60 * time.Second

type Service interface {
	Resources(ctx context.Context, category string) ([]domain.Resource, error)
	AddResource(ctx context.Context, caller domain.UserID, in domain.ResourceInput) (int64, error)
	Scrape(ctx context.Context, caller domain.UserID, credential string) (domain.ScrapeResult, error)
	LatestScrapeJob(ctx context.Context) (*domain.ScrapeJob, error)

	AddPrayer(ctx context.Context, caller domain.UserID, intention string, category string) (int64, error)
	Prayers(ctx context.Context, caller domain.UserID) ([]domain.PrayerIntention, error)
	PrayerStats(ctx context.Context, caller domain.UserID) (domain.PrayerStats, error)
	MarkPrayerAnswered(ctx context.Context, caller domain.UserID, id int64) error
	RemovePrayer(ctx context.Context, caller domain.UserID, id int64) error

	AddVisit(ctx context.Context, caller domain.UserID, churchName string, visitDate time.Time, notes string) (int64, error)
	Visits(ctx context.Context, caller domain.UserID) ([]domain.ChurchVisit, error)
	VisitStats(ctx context.Context, caller domain.UserID) (domain.VisitStats, error)
	RemoveVisit(ctx context.Context, caller domain.UserID, id int64) error

	Notifications(ctx context.Context, caller domain.UserID) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, caller domain.UserID) (int64, error)
	MarkRead(ctx context.Context, caller domain.UserID, id int64) error
	MarkAllRead(ctx context.Context, caller domain.UserID) (int64, error)
}

// telegramAPI covers the calls that are not rate limited.
type telegramAPI interface {
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type Bot struct {
	client           *bot.Bot
	api              telegramAPI
	sender           ratelimiter.Sender
	rateLimiter      *ratelimiter.RateLimiter
	svc              Service
	operators        []int64
	credential       string
	menuKeyboard     *models.InlineKeyboardMarkup
	returnKeyboard   *models.InlineKeyboardMarkup
	categoryKeyboard *models.InlineKeyboardMarkup
	log              *slog.Logger
}

// New connects to Telegram. Operators may run scrapes and add resources;
// credential is the scrape credential used for runs started from chat.
func New(
	token string,
	svc Service,
	operators []int64,
	credential string,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(svc, operators, credential, log)

	client, err := bot.New(
		strings.TrimSpace(token),
		bot.WithDefaultHandler(b.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram client error",
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	b.client = client
	b.api = client
	b.rateLimiter = ratelimiter.New(client, log)
	b.sender = b.rateLimiter

	return b, nil
}

func newBot(svc Service, operators []int64, credential string, log *slog.Logger) *Bot {
	return &Bot{
		svc:              svc,
		operators:        operators,
		credential:       credential,
		menuKeyboard:     getMenuKeyboard(),
		returnKeyboard:   getReturnKeyboard(),
		categoryKeyboard: getCategoryKeyboard(),
		log:              log,
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is started")

	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

// Deliver sends a stored notification to the private chat of userID.
func (b *Bot) Deliver(ctx context.Context, userID domain.UserID, message string) error {
	text := "🔔 " + markdown.EscapeV2(message)

	if err := b.sendMessageWithKeyboard(ctx, int64(userID), text, b.returnKeyboard); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil {
			b.log.DebugContext(updateCtx, "Message without sender is skipped",
				"chatID", message.Chat.ID)

			return
		}

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"userID", message.From.ID,
				"chatType", message.Chat.Type,
				"messageID", message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", callbackChatID(callback),
				"userID", callback.From.ID,
				"data", callback.Data)
		}
	}
}

func (b *Bot) isOperator(userID int64) bool {
	return slices.Contains(b.operators, userID)
}

func callbackChatID(callback *models.CallbackQuery) int64 {
	switch {
	case callback.Message.Message != nil:
		return callback.Message.Message.Chat.ID
	case callback.Message.InaccessibleMessage != nil:
		return callback.Message.InaccessibleMessage.Chat.ID
	default:
		return callback.From.ID
	}
}
