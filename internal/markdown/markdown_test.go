package markdown

import (
	"strings"
	"testing"
)

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Daily prayer", want: "Daily prayer"},
		{name: "punctuation", in: "Hope! (Part 1).", want: `Hope\! \(Part 1\)\.`},
		{name: "backslash", in: `a\b`, want: `a\\b`},
		{name: "markup", in: "*bold* _it_ `code`", want: "\\*bold\\* \\_it\\_ \\`code\\`"},
		{name: "unicode", in: "Молитва · 🙏", want: "Молитва · 🙏"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeV2(tt.in); got != tt.want {
				t.Fatalf("EscapeV2(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLink(t *testing.T) {
	got := Link("Faith & Hope.", "https://example.com/a_(b)")
	want := `[Faith & Hope\.](https://example.com/a_(b\))`

	if got != want {
		t.Fatalf("Link() = %q, want %q", got, want)
	}

	if got = Link("  ", "https://example.com"); got != `[https://example\.com](https://example.com)` {
		t.Fatalf("expected URL as title, got %q", got)
	}

	long := Link(strings.Repeat("a", maxLinkTitleRunes+10), "https://example.com")
	if !strings.HasPrefix(long, "["+strings.Repeat("a", maxLinkTitleRunes)+ellipsis+"]") {
		t.Fatalf("expected truncated title, got %q", long)
	}
}
