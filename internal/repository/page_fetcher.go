package repository

import "context"

// PageFetcher retrieves the HTML document behind a section locator.
type PageFetcher interface {
	// Fetch returns the page body. Transport failures, timeouts and non-2xx
	// statuses are all reported as errors.
	Fetch(ctx context.Context, url string) (string, error)
}
