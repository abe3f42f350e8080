package firecrawl_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"faithlog/internal/firecrawl"

	"github.com/stretchr/testify/require"
)

func TestFetchSendsRequestAndParsesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/scrape", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			URL     string   `json:"url"`
			Formats []string `json:"formats"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "https://www.desiringgod.org/", body.URL)
		require.Equal(t, []string{"markdown"}, body.Formats)

		_, _ = w.Write([]byte(`{"success":true,"data":{"metadata":{"title":"Desiring God","description":"Articles"},"markdown":"# Hello"}}`))
	}))
	defer server.Close()

	client := firecrawl.New(server.URL, slog.Default())

	page, err := client.Fetch(context.Background(), "https://www.desiringgod.org/", "secret")
	require.NoError(t, err)
	require.Equal(t, "Desiring God", page.Title)
	require.Equal(t, "Articles", page.Description)
	require.Equal(t, "# Hello", page.Markdown)
}

func TestFetchMissingMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"body"}}`))
	}))
	defer server.Close()

	page, err := firecrawl.New(server.URL, slog.Default()).Fetch(context.Background(), "https://example.com", "k")
	require.NoError(t, err)
	require.Empty(t, page.Title)
	require.Empty(t, page.Description)
	require.Equal(t, "body", page.Markdown)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid token"}`,
			checkFn: func(t *testing.T, err error) {
				var statusErr *firecrawl.StatusError
				require.ErrorAs(t, err, &statusErr)
				require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
			},
		},
		{
			name:   "success false",
			status: http.StatusOK,
			body:   `{"success":false,"error":"blocked"}`,
			checkFn: func(t *testing.T, err error) {
				require.ErrorIs(t, err, firecrawl.ErrUnsuccessful)
			},
		},
		{
			name:   "missing data",
			status: http.StatusOK,
			body:   `{"success":true}`,
			checkFn: func(t *testing.T, err error) {
				require.ErrorIs(t, err, firecrawl.ErrUnsuccessful)
			},
		},
		{
			name:   "malformed payload",
			status: http.StatusOK,
			body:   `{"success":`,
			checkFn: func(t *testing.T, err error) {
				require.Error(t, err)
				require.False(t, errors.Is(err, firecrawl.ErrUnsuccessful))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			}))
			defer server.Close()

			page, err := firecrawl.New(server.URL, slog.Default()).Fetch(context.Background(), "https://example.com", "k")
			require.Nil(t, page)
			test.checkFn(t, err)
		})
	}
}
