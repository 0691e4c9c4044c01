package catalog

import (
	"context"
	"net/url"
	"strings"
	"time"

	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/chrono"
	"maeto-catalog/internal/components/telemetry"
	"maeto-catalog/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultDetailDelay = time.Second
	// SpecsTableSelector matches the technical specifications table of a
	// product page.
	SpecsTableSelector = "#product-description-table-attributes"
)

const (
	report_enricher_lookup = "enricher.lookup"
	report_enricher_fetch  = "enricher.fetch"
	report_enricher_link   = "enricher.resolve-link"
)

// SpecsLookup returns the non-empty specs already stored for a sku, ok is
// false if there are none.
type SpecsLookup interface {
	Specs(ctx context.Context, sku string) (specs Specs, ok bool, err error)
}

type EnricherOptions struct {
	// BaseURL is what relative detail links are resolved against.
	BaseURL *url.URL
	// DetailDelay is waited before every detail page request, a negative value
	// disables it.
	DetailDelay time.Duration
}

// Enricher adds technical specifications to products.
type Enricher struct {
	fetcher Fetcher
	lookup  SpecsLookup
	chrono  chrono.API
	tel     telemetry.API
	opts    EnricherOptions
}

func NewEnricher(fetcher Fetcher, lookup SpecsLookup, clock chrono.API, tel telemetry.API, opts EnricherOptions) *Enricher {
	assert.NotNil(fetcher)
	assert.NotNil(lookup)
	assert.NotNil(clock)
	assert.NotNil(tel)
	if opts.BaseURL == nil {
		panic("enricher needs a base url")
	}

	if opts.DetailDelay == 0 {
		opts.DetailDelay = DefaultDetailDelay
	}

	return &Enricher{
		fetcher: fetcher,
		lookup:  lookup,
		chrono:  clock,
		tel:     telemetry.NewScopedAPI("enricher", tel),
		opts:    opts,
	}
}

// Enrich returns the specs of a product, reusing stored specs when there are
// some and loading the detail page at `href` otherwise.
func (e *Enricher) Enrich(ctx context.Context, sku, href string) SpecResult {
	ctx, span := tracer.Start(ctx, "enricher:Enrich")
	defer span.End()
	span.SetAttributes(attribute.String("product.sku", sku))

	result := e.enrich(ctx, sku, href)
	span.SetAttributes(
		attribute.String("specs.status", result.Status.String()),
		attribute.Int("specs.count", len(result.Specs)),
	)
	return result
}

func (e *Enricher) enrich(ctx context.Context, sku, href string) SpecResult {
	if sku != "" {
		specs, ok, err := e.lookup.Specs(ctx, sku)
		if err != nil {
			e.tel.ReportWarning(report_enricher_lookup, err, sku)
		} else if ok {
			return SpecResult{Status: SpecsReused, Specs: specs}
		}
	}

	if strings.TrimSpace(href) == "" {
		return SpecResult{Status: SpecsNoURL, Specs: Specs{}}
	}
	link, err := htmlutil.ResolveLink(e.opts.BaseURL, href)
	if err != nil {
		e.tel.ReportWarning(report_enricher_link, err, sku, href)
		return SpecResult{Status: SpecsNoURL, Specs: Specs{}}
	}

	if e.opts.DetailDelay > 0 {
		err = e.chrono.Sleep(ctx, e.opts.DetailDelay)
		if err != nil {
			return SpecResult{Status: SpecsFailed, Specs: Specs{}}
		}
	}

	page := e.fetcher.Fetch(ctx, link)
	if !page.OK() {
		e.tel.ReportWarning(report_enricher_fetch, page.Err, sku)
		return SpecResult{Status: SpecsFailed, Specs: Specs{}}
	}

	table := page.Doc.Find(SpecsTableSelector)
	if table.Length() == 0 {
		e.tel.ReportDebug("no specs table", sku, link)
		return SpecResult{Status: SpecsMissing, Specs: Specs{}}
	}
	return SpecResult{Status: SpecsFetched, Specs: ParseSpecsTable(table.First())}
}

// ParseSpecsTable reads the first two cells of every row as a key/value pair,
// rows where either cell is blank are skipped and later rows win on repeated keys.
func ParseSpecsTable(table *goquery.Selection) Specs {
	specs := Specs{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		key := htmlutil.NormalizeText(cells.Eq(0).Text())
		value := htmlutil.NormalizeText(cells.Eq(1).Text())
		if key == "" || value == "" {
			return
		}
		specs[key] = value
	})
	return specs
}
