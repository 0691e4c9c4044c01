package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/telemetry"
)

const (
	report_session_search = "session.search"
	report_session_upsert = "session.upsert"
)

var exitWords = []string{"sair", "exit"}

// IsExit reports whether the user asked to leave the session.
func IsExit(term string) bool {
	term = strings.TrimSpace(term)
	for _, word := range exitWords {
		if strings.EqualFold(term, word) {
			return true
		}
	}
	return false
}

type Searcher interface {
	Crawl(ctx context.Context, term string) catalog.CrawlResult
}

type Upserter interface {
	UpsertMany(ctx context.Context, products []catalog.Product, term string) (catalog.UpsertResult, error)
}

type Options struct {
	// Spinner draws a spinner while a search runs.
	Spinner bool
}

// Report is the outcome of a single search.
type Report struct {
	Crawl  catalog.CrawlResult
	Upsert catalog.UpsertResult
}

// Session is the interactive search loop.
type Session struct {
	searcher Searcher
	upserter Upserter
	prompt   Prompter
	out      io.Writer
	tel      telemetry.API
	opts     Options
}

func New(searcher Searcher, upserter Upserter, prompt Prompter, out io.Writer, tel telemetry.API, opts Options) *Session {
	assert.NotNil(searcher)
	assert.NotNil(upserter)
	assert.NotNil(prompt)
	assert.NotNil(out)
	assert.NotNil(tel)

	return &Session{
		searcher: searcher,
		upserter: upserter,
		prompt:   prompt,
		out:      out,
		tel:      telemetry.NewScopedAPI("session", tel),
		opts:     opts,
	}
}

func (s *Session) separator() {
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
}

// Run asks for search terms until the user types an exit word, input runs out
// or the context is canceled.
func (s *Session) Run(ctx context.Context) error {
	s.separator()
	fmt.Fprintln(s.out, "Maeto product catalog")
	fmt.Fprintf(s.out, "Type a product to search for, or '%s' to quit.\n", exitWords[0])
	s.separator()

	for {
		if ctx.Err() != nil {
			return nil
		}

		term, err := s.prompt.Ask("\nProduct to search: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "\nBye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read search term: %w", err)
		}

		term = strings.TrimSpace(term)
		if IsExit(term) {
			fmt.Fprintln(s.out, "Bye!")
			return nil
		}
		if term == "" {
			fmt.Fprintln(s.out, "Please type the name of a product.")
			continue
		}

		_, err = s.Search(ctx, term)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) crawl(ctx context.Context, term string) catalog.CrawlResult {
	if s.opts.Spinner {
		spinner := StartSpinner(s.out, "Searching")
		defer spinner.Stop()
	}
	return s.searcher.Crawl(ctx, term)
}

// Search runs a single search, prints what it found and stores it.
func (s *Session) Search(ctx context.Context, term string) (Report, error) {
	var report Report

	fmt.Fprintf(s.out, "\nSearching for: %s\n", term)
	report.Crawl = s.crawl(ctx, term)

	switch report.Crawl.Halt {
	case catalog.HaltCanceled:
		fmt.Fprintln(s.out, "Search interrupted.")
		return report, ctx.Err()
	case catalog.HaltSearchFailed:
		s.tel.ReportWarning(report_session_search, "search page unreachable", term)
		fmt.Fprintln(s.out, "The store could not be reached, try again later.")
		return report, nil
	}
	if len(report.Crawl.Products) == 0 {
		fmt.Fprintln(s.out, "No products found.")
		return report, nil
	}

	fmt.Fprintf(s.out, "\nFound %d products in total:\n", len(report.Crawl.Products))
	RenderProducts(s.out, report.Crawl.Products)
	fmt.Fprintln(s.out, report.Crawl.SpecSummary())

	upserted, err := s.upserter.UpsertMany(ctx, report.Crawl.Products, term)
	report.Upsert = upserted
	if err != nil {
		s.tel.ReportBroken(report_session_upsert, err, term)
		return report, fmt.Errorf("store products: %w", err)
	}

	fmt.Fprintf(s.out, "\n%d new products added to the database.\n", upserted.Inserted)
	fmt.Fprintf(s.out, "%d existing products updated.\n", upserted.Updated)
	if upserted.Skipped > 0 {
		fmt.Fprintf(s.out, "%d products without a SKU were skipped.\n", upserted.Skipped)
	}
	if upserted.Failed > 0 {
		fmt.Fprintf(s.out, "%d products could not be saved.\n", upserted.Failed)
	}
	s.separator()

	return report, nil
}
