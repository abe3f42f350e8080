package bot

import (
	"fmt"
	"strings"

	"faithlog/internal/domain"
	"faithlog/internal/markdown"
)

const (
	telegramMessageMaxLength = 4096
	maxDescriptionRunes      = 300
	dateLayout               = "2 Jan 2006"
	timeLayout               = "2 Jan 2006 15:04 UTC"
)

// splitMessages packs entries into as few messages as fit the Telegram
// length limit. Every message after the first starts with continueHeader.
func splitMessages(header string, continueHeader string, entries []string) []string {
	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString(header)
	headerLength := currentMessage.Len()

	for _, entry := range entries {
		if currentMessage.Len()+len(entry) > telegramMessageMaxLength && currentMessage.Len() > headerLength {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
			currentMessage.WriteString(continueHeader)
			headerLength = currentMessage.Len()
		}

		currentMessage.WriteString(entry)
	}

	if currentMessage.Len() > headerLength {
		messages = append(messages, currentMessage.String())
	}

	return messages
}

func formatResourcesAsMessages(resources []domain.Resource, category string) []string {
	header := "📖 *Latest resources*\n\n"
	if category != "" {
		header = fmt.Sprintf("📖 *Latest resources: %s*\n\n", markdown.EscapeV2(category))
	}

	entries := make([]string, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, fmt.Sprintf("– *%s*\n%s\n_%s · %s_\n\n",
			markdown.Link(r.Title, r.URL),
			markdown.EscapeV2(truncate(r.Description, maxDescriptionRunes)),
			markdown.EscapeV2(r.Source),
			markdown.EscapeV2(r.Category),
		))
	}

	return splitMessages(header, "📖 *Latest resources \\(continue\\)*\n\n", entries)
}

func formatPrayersAsMessages(prayers []domain.PrayerIntention, stats domain.PrayerStats) []string {
	header := fmt.Sprintf("🙏 *Prayer intentions* \\(%d total, %d answered\\)\n\n", stats.Total, stats.Answered)

	entries := make([]string, 0, len(prayers))
	for _, p := range prayers {
		mark := "🕯"
		if p.IsAnswered {
			mark = "✅"
		}

		entries = append(entries, fmt.Sprintf("%s \\#%d _%s_\n%s\n\n",
			mark,
			p.ID,
			markdown.EscapeV2(p.Category),
			markdown.EscapeV2(p.Intention),
		))
	}

	return splitMessages(header, "🙏 *Prayer intentions \\(continue\\)*\n\n", entries)
}

func formatVisitsAsMessages(visits []domain.ChurchVisit, stats domain.VisitStats) []string {
	header := fmt.Sprintf("⛪ *Church visits* \\(%d total, %d this month\\)\n\n", stats.Total, stats.ThisMonth)

	entries := make([]string, 0, len(visits))
	for _, v := range visits {
		entry := fmt.Sprintf("\\#%d *%s* – %s\n",
			v.ID,
			markdown.EscapeV2(v.ChurchName),
			markdown.EscapeV2(v.VisitDate.UTC().Format(dateLayout)),
		)
		if v.Notes != nil {
			entry += "_" + markdown.EscapeV2(*v.Notes) + "_\n"
		}

		entries = append(entries, entry+"\n")
	}

	return splitMessages(header, "⛪ *Church visits \\(continue\\)*\n\n", entries)
}

func formatNotificationsAsMessages(notifications []domain.Notification, unread int64) []string {
	header := fmt.Sprintf("🔔 *Notifications* \\(%d unread\\)\n\n", unread)

	entries := make([]string, 0, len(notifications))
	for _, n := range notifications {
		mark := "⚪"
		if !n.IsRead {
			mark = "🔵"
		}

		entries = append(entries, fmt.Sprintf("%s \\#%d %s\n_%s_\n\n",
			mark,
			n.ID,
			markdown.EscapeV2(n.Message),
			markdown.EscapeV2(n.CreatedAt.UTC().Format(timeLayout)),
		))
	}

	return splitMessages(header, "🔔 *Notifications \\(continue\\)*\n\n", entries)
}

func formatScrapeJob(job *domain.ScrapeJob) string {
	if job == nil {
		return "✖️ No scrape has run yet\\."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛠 *Latest scrape job*\n\nID: `%s`\nStatus: *%s*\nItems: %d\n",
		job.ID,
		markdown.EscapeV2(string(job.Status)),
		job.ItemsScraped,
	)

	if job.StartedAt != nil {
		fmt.Fprintf(&b, "Started: %s\n", markdown.EscapeV2(job.StartedAt.UTC().Format(timeLayout)))
	}
	if job.CompletedAt != nil {
		fmt.Fprintf(&b, "Finished: %s\n", markdown.EscapeV2(job.CompletedAt.UTC().Format(timeLayout)))
	}
	if job.Error != nil {
		fmt.Fprintf(&b, "Error: %s\n", markdown.EscapeV2(*job.Error))
	}

	return b.String()
}

func formatScrapeResult(result domain.ScrapeResult) string {
	if !result.Success {
		return "❌ Scrape failed: " + markdown.EscapeV2(result.Error)
	}

	return fmt.Sprintf("✅ Scrape is completed, %d new resources\\.", result.ItemsScraped)
}

func truncate(s string, maxRunes int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
