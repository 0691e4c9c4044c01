package catalog

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/telemetry"
	"maeto-catalog/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 4
)

const report_fetcher_fetch = "fetcher.fetch"

// FetchResult is the outcome of a single GET, Err is set if and only if the
// request failed, the status was not 2xx or the body was not parseable html.
type FetchResult struct {
	URL        string
	StatusCode int
	Doc        *goquery.Document
	Err        error
}

func (r FetchResult) OK() bool {
	return r.Err == nil && r.Doc != nil
}

// Fetcher loads and parses a page.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

type HTTPFetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond <= 0 disables the limiter.
	RequestsPerSecond float64
	// Dump receives every response when set.
	Dump restyutil.Output
}

// HTTPFetcher implements Fetcher with resty.
type HTTPFetcher struct {
	http *resty.Client
	tel  telemetry.API
}

func NewHTTPFetcher(opts HTTPFetcherOptions, tel telemetry.API) HTTPFetcher {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("fetcher", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel)
	if opts.Dump != nil {
		restyutil.Dump(client, opts.Dump)
	}

	return HTTPFetcher{http: client, tel: tel}
}

func (f HTTPFetcher) Fetch(ctx context.Context, url string) FetchResult {
	result := FetchResult{URL: url}

	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		result.Err = fmt.Errorf("get %s: %w", url, err)
		return result
	}
	result.StatusCode = res.StatusCode()
	if !res.IsSuccess() {
		result.Err = fmt.Errorf("get %s: unexpected status %s", url, res.Status())
		return result
	}

	body, err := charset.NewReader(bytes.NewReader(res.Body()), res.Header().Get("content-type"))
	if err != nil {
		f.tel.ReportWarning(report_fetcher_fetch, fmt.Errorf("detect charset: %w", err), url)
		body = bytes.NewReader(res.Body())
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		result.Err = fmt.Errorf("parse %s: %w", url, err)
		return result
	}
	result.Doc = doc
	return result
}
