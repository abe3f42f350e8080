package bot

import (
	"faithlog/internal/domain"

	"github.com/go-telegram/bot/models"
)

const (
	categoryKeyboardRowSize         = 2
	resourcesCategoryCallbackPrefix = "resources_"
)

func getReturnKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⬅️ Return to menu", CallbackData: "menu"}},
		},
	}
}

func getMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📖 Resources", CallbackData: "menu_resources"},
				{Text: "🙏 Prayers", CallbackData: "menu_prayers"},
			},
			{
				{Text: "⛪ Visits", CallbackData: "menu_visits"},
				{Text: "🔔 Notifications", CallbackData: "menu_notifications"},
			},
		},
	}
}

func resourceCategories() []string {
	return []string{
		domain.CategoryNews,
		domain.CategoryInspiration,
		domain.CategoryEvents,
		domain.CategoryTestimonies,
	}
}

func getCategoryKeyboard() *models.InlineKeyboardMarkup {
	categories := resourceCategories()

	var keyboard [][]models.InlineKeyboardButton

	for i := 0; i < len(categories); i += categoryKeyboardRowSize {
		var row []models.InlineKeyboardButton

		for j := i; j < i+categoryKeyboardRowSize && j < len(categories); j++ {
			row = append(row, models.InlineKeyboardButton{
				Text:         categories[j],
				CallbackData: resourcesCategoryCallbackPrefix + categories[j],
			})
		}

		keyboard = append(keyboard, row)
	}

	keyboard = append(keyboard, []models.InlineKeyboardButton{
		{Text: "⬅️ Return to menu", CallbackData: "menu"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
