package faith

import (
	"context"
	"errors"
	"fmt"

	"faithlog/internal/domain"
)

// DemoResources are inserted by the seed command to populate an empty list.
//
//nolint:gochecknoglobals // Fixed seed data, never mutated.
var DemoResources = []domain.ResourceInput{
	{
		Title:       "The Power of Daily Prayer",
		URL:         "https://example.com/daily-prayer",
		Description: "Discover how establishing a daily prayer routine can transform your spiritual life and bring you closer to God.",
		Source:      "Faith Today",
		Category:    domain.CategoryInspiration,
	},
	{
		Title:       "Finding Community in Modern Church",
		URL:         "https://example.com/modern-church",
		Description: "Explore how churches are adapting to meet the needs of contemporary believers while staying true to tradition.",
		Source:      "Church Life",
		Category:    domain.CategoryNews,
	},
	{
		Title:       "Testimonies of Answered Prayers",
		URL:         "https://example.com/testimonies",
		Description: "Real stories from believers who experienced God's faithfulness through answered prayers.",
		Source:      "Revival Stories",
		Category:    domain.CategoryTestimonies,
	},
}

// SeedDemo adds DemoResources through the manual path. Running it twice
// adds them twice, like any manual insert.
func (s *Service) SeedDemo(ctx context.Context, caller domain.UserID) (int, error) {
	var (
		added int
		errs  []error
	)

	for _, in := range DemoResources {
		if _, err := s.AddResource(ctx, caller, in); err != nil {
			errs = append(errs, fmt.Errorf("add demo resource (URL = %s): %w", in.URL, err))
			continue
		}
		added++
	}

	return added, errors.Join(errs...)
}
