package catalog

import (
	"context"
	"fmt"

	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

const report_crawler_products = "crawler.products"

// CrawlResult is everything a single search found, in page order.
type CrawlResult struct {
	Term     string
	Products []Product
	Halt     HaltReason
	Pages    int
	// Specs counts products per spec status.
	Specs map[SpecStatus]int
}

// SpecSummary is a one-line account of where the products' specs came from.
func (r CrawlResult) SpecSummary() string {
	unavailable := r.Specs[SpecsMissing] + r.Specs[SpecsFailed] + r.Specs[SpecsNoURL]
	return fmt.Sprintf(
		"specs: %d fetched, %d reused, %d missing/failed (%d products)",
		r.Specs[SpecsFetched], r.Specs[SpecsReused], unavailable, len(r.Products),
	)
}

// Crawler runs a search end to end: it walks the results pages, extracts every
// listing and enriches it with specs.
type Crawler struct {
	walker   *Walker
	enricher *Enricher
	tel      telemetry.API
}

func NewCrawler(walker *Walker, enricher *Enricher, tel telemetry.API) *Crawler {
	assert.NotNil(walker)
	assert.NotNil(enricher)
	assert.NotNil(tel)

	return &Crawler{
		walker:   walker,
		enricher: enricher,
		tel:      telemetry.NewScopedAPI("crawler", tel),
	}
}

// Crawl never fails, a search that could not be completed returns what was
// found so far and says why it stopped in Halt.
func (c *Crawler) Crawl(ctx context.Context, term string) CrawlResult {
	ctx, span := tracer.Start(ctx, "crawler:Crawl")
	defer span.End()
	span.SetAttributes(attribute.String("search.term", term))

	result := CrawlResult{
		Term:  term,
		Specs: map[SpecStatus]int{},
	}

	walk := c.walker.Start(term)
	for page := range walk.Pages(ctx) {
		c.tel.ReportDebug("page", term, page.Number, len(page.Nodes))
		for _, node := range page.Nodes {
			product := Extract(node)
			product.SearchTerm = term
			product.Specs = c.enricher.Enrich(ctx, product.SKU, product.DetailURL)
			result.Specs[product.Specs.Status]++
			result.Products = append(result.Products, product)
		}
	}
	result.Halt = walk.Halt()
	result.Pages = walk.PageCount()

	span.SetAttributes(
		attribute.Int("crawl.products", len(result.Products)),
		attribute.String("crawl.halt", result.Halt.String()),
	)
	c.tel.ReportCount(report_crawler_products, int64(len(result.Products)))
	return result
}
