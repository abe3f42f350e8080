package bot

import (
	"context"
	"strings"
	"unicode"

	"faithlog/internal/domain"

	"github.com/go-telegram/bot/models"
)

const unknownText = `✖️ Unknown command\. Send /help to see what I can do\.`

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	caller := domain.UserID(message.From.ID)
	command, args := parseCommand(message.Text)

	switch command {
	case "/start", "/help":
		return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
	case "/menu":
		return b.handleMenuCommand(ctx, chatID)
	case "/resources":
		return b.handleResourcesCommand(ctx, chatID, args)
	case "/pray":
		return b.handlePrayCommand(ctx, chatID, caller, args)
	case "/prayers":
		return b.handlePrayersCommand(ctx, chatID, caller)
	case "/answered":
		return b.handleIDCommand(ctx, chatID, caller, args, b.svc.MarkPrayerAnswered, "✅ Praise God\\! Prayer is marked as answered\\.")
	case "/forget":
		return b.handleIDCommand(ctx, chatID, caller, args, b.svc.RemovePrayer, "🗑 Prayer intention is removed\\.")
	case "/visit":
		return b.handleVisitCommand(ctx, chatID, caller, args)
	case "/visits":
		return b.handleVisitsCommand(ctx, chatID, caller)
	case "/unvisit":
		return b.handleIDCommand(ctx, chatID, caller, args, b.svc.RemoveVisit, "🗑 Visit is removed\\.")
	case "/notifications":
		return b.handleNotificationsCommand(ctx, chatID, caller)
	case "/read":
		return b.handleReadCommand(ctx, chatID, caller, args)
	case "/scrape", "/status", "/add":
		if !b.isOperator(message.From.ID) {
			b.log.DebugContext(ctx, "User is not an operator",
				"userID", message.From.ID,
				"username", message.From.Username,
				"command", command)

			return b.sendMessageWithKeyboard(ctx, chatID, operatorOnlyText, b.returnKeyboard)
		}

		return b.handleOperatorCommand(ctx, chatID, caller, command, args)
	default:
		return b.sendMessageWithKeyboard(ctx, chatID, unknownText, b.menuKeyboard)
	}
}

// parseCommand splits "/cmd@bot_name args" into a lowercase command and
// its trimmed arguments. Text that is not a command yields an empty command.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		command, args = text[:i], text[i:]
	}

	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}
