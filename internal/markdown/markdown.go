// Package markdown builds Telegram MarkdownV2 text.
package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const (
	mdV2SpecialChars  = `._[](){}#|!+-=*~>` + "`" + `\`
	mdV2LinkURLChars  = `)\`
	ellipsis          = "\\.\\.\\."
	maxLinkTitleRunes = 120
)

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup  = lookup(mdV2SpecialChars)
	linkURLLook = lookup(mdV2LinkURLChars)
)

// EscapeV2 escapes every character that has a meaning in MarkdownV2 text.
func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// Link renders an inline link. The title is escaped and cut to a readable
// length; inside the URL only ')' and '\' are escaped.
func Link(title string, url string) string {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" {
		title = url
	}

	escapedTitle := EscapeV2(title)
	if runes := []rune(title); len(runes) > maxLinkTitleRunes {
		escapedTitle = EscapeV2(string(runes[:maxLinkTitleRunes])) + ellipsis
	}

	return "[" + escapedTitle + "](" + escape(url, &linkURLLook) + ")"
}

func escape(input string, table *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if table[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if table[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}
