package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"maeto-catalog/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestCrawlAndUpsert(t *testing.T) {
	site := testutil.NewSite(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/":
			if pageNumber(r) > 1 {
				testutil.WriteHTML(w, testutil.ResultsPage())
				return
			}
			testutil.WriteHTML(w, testutil.ResultsPage(
				testutil.Listing{
					SKU:               "A1",
					Title:             "Mouse A1",
					Price:             "R$ 100,00",
					PriceAlt:          "R$ 90,00",
					InstallmentAmount: "R$ 10,00",
					InstallmentCount:  "10x",
					Href:              "/mouse-a1/p",
				},
				testutil.Listing{
					SKU:   "A2",
					Title: "Mouse A2",
					Price: "R$ 50,00",
					Href:  "mouse-a2/p",
				},
			))
		case "/mouse-a1/p":
			testutil.WriteHTML(w, testutil.DetailPage([][]string{{"Marca", "Maeto"}}))
		case "/mouse-a2/p":
			testutil.WriteHTML(w, testutil.DetailPage(nil))
		default:
			http.NotFound(w, r)
		}
	})

	clock := testutil.NewClock(t0)
	tel := testutil.NewTelemetry(t)
	store := NewStore(testutil.OpenMemoryDB(t), clock, tel)
	fetcher := NewHTTPFetcher(HTTPFetcherOptions{}, tel)
	crawler := NewCrawler(
		NewWalker(fetcher, clock, tel, WalkerOptions{SearchPath: site.ParseURL(t, "/search/")}),
		NewEnricher(fetcher, store, clock, tel, EnricherOptions{BaseURL: site.ParseURL(t, "")}),
		tel,
	)
	ctx := context.Background()

	first := crawler.Crawl(ctx, "mouse")
	require.Equal(t, HaltExhausted, first.Halt)
	require.Equal(t, 1, first.Pages)
	require.Len(t, first.Products, 2)
	require.Equal(t, "A1", first.Products[0].SKU)
	require.Equal(t, "mouse", first.Products[0].SearchTerm)
	require.Equal(t, Specs{"Marca": "Maeto"}, first.Products[0].Specs.Specs)
	require.Equal(t, map[SpecStatus]int{SpecsFetched: 1, SpecsMissing: 1}, first.Specs)
	require.Equal(t, "specs: 1 fetched, 0 reused, 1 missing/failed (2 products)", first.SpecSummary())

	result, err := store.UpsertMany(ctx, first.Products, "mouse")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, UpsertResult{Inserted: 2}, result)
	require.Equal(t, 1, site.RequestCount("/mouse-a1/p"))
	require.Equal(t, 1, site.RequestCount("/mouse-a2/p"))

	clock.Advance(time.Minute)
	second := crawler.Crawl(ctx, "mouse")
	require.Equal(t, map[SpecStatus]int{SpecsReused: 1, SpecsMissing: 1}, second.Specs)
	require.Equal(t, "specs: 0 fetched, 1 reused, 1 missing/failed (2 products)", second.SpecSummary())
	// stored specs are reused, empty ones are looked up again
	require.Equal(t, 1, site.RequestCount("/mouse-a1/p"))
	require.Equal(t, 2, site.RequestCount("/mouse-a2/p"))

	result, err = store.UpsertMany(ctx, second.Products, "mouse")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, UpsertResult{Updated: 2}, result)

	rec, err := store.Get(ctx, "A1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, t0.Unix(), rec.FirstSeenAt.Unix())
	require.Equal(t, t0.Add(time.Minute).Unix(), rec.LastUpdatedAt.Unix())
	require.Equal(t, Specs{"Marca": "Maeto"}, rec.Specs)
}

func TestCrawlSearchFailed(t *testing.T) {
	site := testutil.NewSite(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	clock := testutil.NewClock(t0)
	tel := testutil.NewTelemetry(t)
	fetcher := NewHTTPFetcher(HTTPFetcherOptions{}, tel)
	crawler := NewCrawler(
		NewWalker(fetcher, clock, tel, WalkerOptions{SearchPath: site.ParseURL(t, "/search/")}),
		NewEnricher(fetcher, &fakeLookup{}, clock, tel, EnricherOptions{BaseURL: site.ParseURL(t, "")}),
		tel,
	)

	result := crawler.Crawl(context.Background(), "mouse")
	require.Equal(t, HaltSearchFailed, result.Halt)
	require.Empty(t, result.Products)
	require.Equal(t, 0, result.Pages)
}
