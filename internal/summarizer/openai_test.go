package summarizer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"faithlog/internal/summarizer"

	"github.com/openai/openai-go/v3/option"
)

const completedResponse = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1760000000,
  "model": "gpt-5-mini-2025-08-07",
  "status": "completed",
  "output": [{
    "type": "message",
    "id": "msg_1",
    "role": "assistant",
    "status": "completed",
    "content": [{
      "type": "output_text",
      "text": "  A reflection on daily prayer\nand community.  ",
      "annotations": []
    }]
  }]
}`

func TestSummarizeSendsTitleAndContent(t *testing.T) {
	var (
		mu   sync.Mutex
		body map[string]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/responses") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		raw, _ := io.ReadAll(r.Body)

		mu.Lock()
		_ = json.Unmarshal(raw, &body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completedResponse))
	}))
	defer server.Close()

	s := summarizer.NewOpenAISummarizer("test-key",
		option.WithBaseURL(server.URL+"/"),
		option.WithMaxRetries(0))

	got, err := s.Summarize(context.Background(), summarizer.Input{
		Title:     "Daily prayer",
		Text:      "Long article body",
		SourceURL: "https://example.com/a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "A reflection on daily prayer and community." {
		t.Fatalf("unexpected description: %q", got)
	}

	mu.Lock()
	defer mu.Unlock()

	input, _ := body["input"].(string)
	for _, want := range []string{"Title:\nDaily prayer", "Source:\nhttps://example.com/a", "Content:\nLong article body"} {
		if !strings.Contains(input, want) {
			t.Fatalf("expected prompt to contain %q, got %q", want, input)
		}
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := summarizer.NewOpenAISummarizer("test-key", option.WithBaseURL("http://127.0.0.1:0/"))

	if _, err := s.Summarize(context.Background(), summarizer.Input{Text: "   "}); err == nil {
		t.Fatal("expected error for empty input")
	}
}
