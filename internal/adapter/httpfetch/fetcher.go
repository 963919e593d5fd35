package httpfetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/pkg/proxy"
)

// Options configures the static page fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Proxies is optional; nil or empty keeps the environment's proxy settings.
	Proxies *proxy.Manager
	Logger  *zap.Logger
}

// Fetcher downloads static pages with a plain GET.
type Fetcher struct {
	client *resty.Client
}

// New creates a PageFetcher backed by resty.
func New(opts Options) repository.PageFetcher {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	if opts.Logger != nil {
		client.SetLogger(opts.Logger.Sugar())
	}
	if opts.Proxies != nil && opts.Proxies.Len() > 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = opts.Proxies.ProxyFunc(http.ProxyFromEnvironment)
		client.SetTransport(transport)
	}

	return &Fetcher{client: client}
}

// Fetch issues a single GET and returns the body. Any status outside 2xx is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", err
	}

	if !res.IsSuccess() {
		code := res.StatusCode()
		kind := "Unexpected Status"
		switch {
		case code >= http.StatusInternalServerError:
			kind = "Server Error"
		case code >= http.StatusBadRequest:
			kind = "Client Error"
		}
		return "", fmt.Errorf("%d %s: %s for url: %s", code, kind, http.StatusText(code), url)
	}

	return res.String(), nil
}
