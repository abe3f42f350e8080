package summarizer

import (
	"context"
)

// Input describes the payload for a description request.
type Input struct {
	// Title is the resource title, used as context only.
	Title string
	// Text contains the plain text or markdown body to describe.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
}

// Summarizer produces a short resource description for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
