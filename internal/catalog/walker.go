package catalog

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"time"

	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/chrono"
	"maeto-catalog/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultMaxPages  = 20
	DefaultPageDelay = 500 * time.Millisecond
)

const (
	report_walker_first_page = "walker.first-page"
	report_walker_next_page  = "walker.next-page"
	report_walker_pages      = "walker.pages"
)

var tracer = otel.Tracer("maeto/catalog")

type HaltReason int

const (
	// HaltNone means the walk has not finished.
	HaltNone HaltReason = iota
	// HaltNoResults means the first page loaded but had no listings.
	HaltNoResults
	// HaltSearchFailed means the first page could not be loaded.
	HaltSearchFailed
	// HaltExhausted means no candidate url for the next page had new listings.
	HaltExhausted
	// HaltCeiling means the page limit was reached.
	HaltCeiling
	// HaltCanceled means the context was canceled mid walk.
	HaltCanceled
	// HaltStopped means the consumer stopped iterating.
	HaltStopped
)

func (h HaltReason) String() string {
	switch h {
	case HaltNone:
		return "none"
	case HaltNoResults:
		return "no-results"
	case HaltSearchFailed:
		return "search-failed"
	case HaltExhausted:
		return "exhausted"
	case HaltCeiling:
		return "ceiling"
	case HaltCanceled:
		return "canceled"
	case HaltStopped:
		return "stopped"
	}
	return fmt.Sprintf("HaltReason(%d)", int(h))
}

type Outcome int

const (
	OutcomeAccepted Outcome = iota
	// OutcomeEmpty means the page loaded without listings.
	OutcomeEmpty
	// OutcomeDuplicate means every listing on the page was already seen.
	OutcomeDuplicate
	// OutcomeFailed means the page could not be loaded.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeEmpty:
		return "empty"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Attempt is a single url tried for a page.
type Attempt struct {
	URL     string
	Outcome Outcome
	Err     error
}

// Page is an accepted results page.
type Page struct {
	Number   int
	URL      string
	Nodes    []*goquery.Selection
	Attempts []Attempt
}

type WalkerOptions struct {
	// SearchPath is the url the `q` parameter is added to.
	SearchPath *url.URL
	// Strategies defaults to DefaultStrategies.
	Strategies []URLStrategy
	// MaxPages defaults to DefaultMaxPages.
	MaxPages int
	// PageDelay is waited before every attempt after the first page, a
	// negative value disables it.
	PageDelay time.Duration
}

// Walker finds the results pages of a search.
type Walker struct {
	fetcher Fetcher
	chrono  chrono.API
	tel     telemetry.API
	opts    WalkerOptions
}

func NewWalker(fetcher Fetcher, clock chrono.API, tel telemetry.API, opts WalkerOptions) *Walker {
	assert.NotNil(fetcher)
	assert.NotNil(clock)
	assert.NotNil(tel)
	if opts.SearchPath == nil {
		panic("walker needs a search path")
	}

	if len(opts.Strategies) == 0 {
		opts.Strategies = DefaultStrategies()
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.PageDelay == 0 {
		opts.PageDelay = DefaultPageDelay
	}

	return &Walker{
		fetcher: fetcher,
		chrono:  clock,
		tel:     telemetry.NewScopedAPI("walker", tel),
		opts:    opts,
	}
}

// SearchURL returns the url of the first results page for `term`.
func (w *Walker) SearchURL(term string) string {
	return SearchURL(*w.opts.SearchPath, term)
}

// Start prepares a walk over the results of `term`, nothing is fetched until
// the pages are iterated.
func (w *Walker) Start(term string) *Walk {
	return &Walk{walker: w, term: term}
}

// Walk is a single, non-restartable pass over the results pages of a search.
type Walk struct {
	walker  *Walker
	term    string
	started bool

	halt      HaltReason
	exhausted []Attempt
	pages     int
}

func (w *Walk) Term() string {
	return w.term
}

// Halt reports why the walk ended, it is HaltNone until iteration is over.
func (w *Walk) Halt() HaltReason {
	return w.halt
}

// Exhausted returns the attempts made for the page that could not be found
// when the walk halted with HaltExhausted.
func (w *Walk) Exhausted() []Attempt {
	return w.exhausted
}

// PageCount returns the number of pages yielded.
func (w *Walk) PageCount() int {
	return w.pages
}

// Pages yields accepted pages in order. Only the first call does anything.
func (w *Walk) Pages(ctx context.Context) iter.Seq[Page] {
	return func(yield func(Page) bool) {
		if w.started {
			return
		}
		w.started = true

		ctx, span := tracer.Start(ctx, "walker:Walk")
		defer span.End()
		span.SetAttributes(attribute.String("search.term", w.term))
		defer func() {
			span.SetAttributes(
				attribute.String("walk.halt", w.halt.String()),
				attribute.Int("walk.pages", w.pages),
			)
			w.walker.tel.ReportCount(report_walker_pages, int64(w.pages))
		}()

		w.halt = w.walk(ctx, yield)
	}
}

func (w *Walk) walk(ctx context.Context, yield func(Page) bool) HaltReason {
	walker := w.walker
	if ctx.Err() != nil {
		return HaltCanceled
	}

	seen := map[string]struct{}{}
	firstURL := walker.SearchURL(w.term)
	first, nodes := walker.attempt(ctx, firstURL, 1, seen)
	switch first.Outcome {
	case OutcomeFailed:
		if ctx.Err() != nil {
			return HaltCanceled
		}
		walker.tel.ReportWarning(report_walker_first_page, first.Err, w.term)
		return HaltSearchFailed
	case OutcomeEmpty:
		walker.tel.ReportDebug("no results", w.term)
		return HaltNoResults
	}

	page := Page{Number: 1, URL: firstURL, Nodes: nodes, Attempts: []Attempt{first}}
	rememberIdentifiers(seen, nodes)
	w.pages++
	if !yield(page) {
		return HaltStopped
	}

	search, err := url.Parse(firstURL)
	if err != nil {
		// firstURL is built from a parsed url
		panic(err)
	}

	for number := 2; number <= walker.opts.MaxPages; number++ {
		var attempts []Attempt
		accepted := false

		for _, strategy := range walker.opts.Strategies {
			if walker.opts.PageDelay > 0 {
				err := walker.chrono.Sleep(ctx, walker.opts.PageDelay)
				if err != nil {
					return HaltCanceled
				}
			} else if ctx.Err() != nil {
				return HaltCanceled
			}

			candidate := strategy.Build(*search, number)
			attempt, nodes := walker.attempt(ctx, candidate, number, seen)
			attempts = append(attempts, attempt)
			walker.tel.ReportDebug(
				"page candidate",
				number,
				strategy.Name,
				candidate,
				attempt.Outcome.String(),
			)
			if attempt.Outcome != OutcomeAccepted {
				continue
			}

			page = Page{Number: number, URL: candidate, Nodes: nodes, Attempts: attempts}
			accepted = true
			break
		}

		if !accepted {
			if ctx.Err() != nil {
				return HaltCanceled
			}
			w.exhausted = attempts
			walker.tel.ReportDebug("pagination exhausted", w.term, number)
			return HaltExhausted
		}

		rememberIdentifiers(seen, page.Nodes)
		w.pages++
		if !yield(page) {
			return HaltStopped
		}
	}

	walker.tel.ReportWarning(
		report_walker_next_page,
		fmt.Errorf("page limit of %d reached", walker.opts.MaxPages),
		w.term,
	)
	return HaltCeiling
}

// attempt fetches a single candidate and classifies it, duplicates are only
// possible after the first page.
func (w *Walker) attempt(ctx context.Context, link string, number int, seen map[string]struct{}) (Attempt, []*goquery.Selection) {
	ctx, span := tracer.Start(ctx, "walker:attempt")
	defer span.End()
	span.SetAttributes(
		attribute.String("page.url", link),
		attribute.Int("page.number", number),
	)

	result := w.fetcher.Fetch(ctx, link)
	if !result.OK() {
		span.RecordError(result.Err)
		return Attempt{URL: link, Outcome: OutcomeFailed, Err: result.Err}, nil
	}

	var nodes []*goquery.Selection
	result.Doc.Find(ListingSelector).Each(func(_ int, node *goquery.Selection) {
		nodes = append(nodes, node)
	})
	span.SetAttributes(attribute.Int("page.listings", len(nodes)))

	if len(nodes) == 0 {
		return Attempt{URL: link, Outcome: OutcomeEmpty}, nil
	}
	if number > 1 && !hasNewIdentifier(seen, nodes) {
		return Attempt{URL: link, Outcome: OutcomeDuplicate}, nil
	}
	return Attempt{URL: link, Outcome: OutcomeAccepted}, nodes
}

func hasNewIdentifier(seen map[string]struct{}, nodes []*goquery.Selection) bool {
	for _, node := range nodes {
		sku := Identifier(node)
		if sku == "" {
			continue
		}
		if _, ok := seen[sku]; !ok {
			return true
		}
	}
	return false
}

func rememberIdentifiers(seen map[string]struct{}, nodes []*goquery.Selection) {
	for _, node := range nodes {
		sku := Identifier(node)
		if sku != "" {
			seen[sku] = struct{}{}
		}
	}
}
