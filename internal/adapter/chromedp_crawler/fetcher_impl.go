package chromedp_crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome before handing back their HTML.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	cancels       []context.CancelFunc
	mu            sync.Mutex
	timeout       time.Duration
	logger        *zap.Logger
}

// NewChromedpFetcher creates a PageFetcher using chromedp. One allocator is pre-warmed per
// concurrent worker.
func NewChromedpFetcher(maxConcurrency int, pageLoadTimeout time.Duration, userAgent string, logger *zap.Logger) *ChromedpFetcher {
	f := &ChromedpFetcher{
		timeout: pageLoadTimeout,
		logger:  logger,
	}
	f.allocatorPool = &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)
			allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
			f.mu.Lock()
			f.cancels = append(f.cancels, cancel)
			f.mu.Unlock()
			return allocCtx
		},
	}

	for i := 0; i < maxConcurrency; i++ {
		allocCtx := f.allocatorPool.Get().(context.Context)
		f.allocatorPool.Put(allocCtx)
	}

	return f
}

// Fetch navigates to the URL, waits for the body and returns the rendered document.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	f.logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(htmlContent)))
	return htmlContent, nil
}

// Close shuts down every browser the pool started.
func (f *ChromedpFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cancel := range f.cancels {
		cancel()
	}
	f.cancels = nil
}

var _ repository.PageFetcher = (*ChromedpFetcher)(nil)
