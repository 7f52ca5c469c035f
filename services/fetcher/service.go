package fetcher

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/tracing"
)

const (
	maxBodyBytes = 2 * 1024 * 1024
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type httpFetcher struct {
	client *http.Client
}

// NewHttpFetcher builds the production fetcher. Tries https first, falls
// back to plain http, and caps the body at 2 MB.
func NewHttpFetcher(timeout time.Duration) interfaces.FetcherService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, domain string) (string, map[string]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HttpFetcher.Fetch")
	defer span.Finish()
	tracing.TagDomain(span, domain)

	body, headers, httpsErr := f.fetchURL(ctx, "https://"+domain)
	if httpsErr == nil {
		return body, headers, nil
	}

	body, headers, httpErr := f.fetchURL(ctx, "http://"+domain)
	if httpErr == nil {
		return body, headers, nil
	}

	err := errors.Wrapf(httpsErr, "fetch %s failed over https and http", domain)
	tracing.TraceErr(span, err)
	return "", nil, err
}

func (f *httpFetcher) fetchURL(ctx context.Context, url string) (string, map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", nil, errors.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		// keep every Set-Cookie, the detector matches cookie names on the
		// joined value
		headers[name] = strings.Join(values, "; ")
	}

	return string(raw), headers, nil
}
