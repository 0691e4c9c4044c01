package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"maeto-catalog/internal/testutil"

	"github.com/stretchr/testify/require"
)

type walkerEnv struct {
	site   *testutil.Site
	clock  *testutil.Clock
	tel    *testutil.Telemetry
	walker *Walker
}

// newWalkerEnv serves `pages(n)` as results page n for whatever pagination
// parameter the request used, n = 0 is a page that is not any of them.
func newWalkerEnv(t *testing.T, handler http.HandlerFunc) walkerEnv {
	site := testutil.NewSite(t, handler)
	clock := testutil.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	tel := testutil.NewTelemetry(t)
	fetcher := NewHTTPFetcher(HTTPFetcherOptions{Timeout: 5 * time.Second}, tel)
	walker := NewWalker(fetcher, clock, tel, WalkerOptions{
		SearchPath: site.ParseURL(t, "/search/"),
	})
	return walkerEnv{site: site, clock: clock, tel: tel, walker: walker}
}

func pageNumber(r *http.Request) int {
	query := r.URL.Query()
	for _, param := range []string{"page", "p"} {
		if v := query.Get(param); v != "" {
			n, _ := strconv.Atoi(v)
			return n
		}
	}
	for _, param := range []string{"start", "offset"} {
		if v := query.Get(param); v != "" {
			n, _ := strconv.Atoi(v)
			return n/DefaultPageSize + 1
		}
	}
	return 1
}

func pageOfListings(page, count int) string {
	listings := make([]testutil.Listing, count)
	for i := range listings {
		listings[i] = testutil.Listing{
			SKU:   fmt.Sprintf("P%d-%d", page, i),
			Title: fmt.Sprintf("product %d on page %d", i, page),
		}
	}
	return testutil.ResultsPage(listings...)
}

func collectPages(t *testing.T, walk *Walk) []Page {
	var pages []Page
	for page := range walk.Pages(context.Background()) {
		pages = append(pages, page)
	}
	return pages
}

func TestNewWalkerWithoutSearchPath(t *testing.T) {
	tel := testutil.NewTelemetry(t)
	require.PanicsWithValue(t, "walker needs a search path", func() {
		NewWalker(NewHTTPFetcher(HTTPFetcherOptions{}, tel), testutil.NewClock(t0), tel, WalkerOptions{})
	})
}

func TestWalkStopsAtCeiling(t *testing.T) {
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, pageOfListings(pageNumber(r), 3))
	})

	walk := env.walker.Start("mouse")
	pages := collectPages(t, walk)

	require.Len(t, pages, DefaultMaxPages)
	require.Equal(t, HaltCeiling, walk.Halt())
	require.Equal(t, DefaultMaxPages, walk.PageCount())
	for i, page := range pages {
		require.Equal(t, i+1, page.Number)
		require.Len(t, page.Nodes, 3)
	}
	// the first strategy always works, so exactly one request per page
	require.Len(t, env.site.Requests(), DefaultMaxPages)
	require.Len(t, env.clock.Slept(), DefaultMaxPages-1)
	for _, d := range env.clock.Slept() {
		require.Equal(t, DefaultPageDelay, d)
	}
}

func TestWalkStopsOnDuplicatePages(t *testing.T) {
	// the site ignores every pagination parameter and always serves page 1
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, pageOfListings(1, 5))
	})

	walk := env.walker.Start("mouse")
	pages := collectPages(t, walk)

	require.Len(t, pages, 1)
	require.Equal(t, HaltExhausted, walk.Halt())

	requests := env.site.Requests()
	require.Len(t, requests, 1+len(DefaultStrategies()))
	for _, u := range requests {
		require.Less(t, pageNumber(&http.Request{URL: u}), 6)
	}

	exhausted := walk.Exhausted()
	require.Len(t, exhausted, len(DefaultStrategies()))
	for _, attempt := range exhausted {
		require.Equal(t, OutcomeDuplicate, attempt.Outcome)
	}
}

func TestWalkFallsBackToLaterStrategies(t *testing.T) {
	// only `start` pagination works, and only up to page 3
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("page") != "":
			http.Error(w, "not found", http.StatusNotFound)
		case query.Get("p") != "":
			testutil.WriteHTML(w, testutil.ResultsPage())
		case query.Get("start") != "":
			n := pageNumber(r)
			if n > 3 {
				testutil.WriteHTML(w, testutil.ResultsPage())
				return
			}
			testutil.WriteHTML(w, pageOfListings(n, 2))
		case query.Get("offset") != "":
			testutil.WriteHTML(w, pageOfListings(1, 2))
		default:
			testutil.WriteHTML(w, pageOfListings(1, 2))
		}
	})

	walk := env.walker.Start("mouse")
	pages := collectPages(t, walk)

	require.Len(t, pages, 3)
	require.Equal(t, HaltExhausted, walk.Halt())

	outcomes := []Outcome{}
	for _, attempt := range pages[1].Attempts {
		outcomes = append(outcomes, attempt.Outcome)
	}
	require.Equal(t, []Outcome{OutcomeFailed, OutcomeEmpty, OutcomeAccepted}, outcomes)
	require.Contains(t, pages[2].URL, "start=60")

	outcomes = []Outcome{}
	for _, attempt := range walk.Exhausted() {
		outcomes = append(outcomes, attempt.Outcome)
	}
	require.Equal(t, []Outcome{OutcomeFailed, OutcomeEmpty, OutcomeEmpty, OutcomeDuplicate}, outcomes)
}

func TestWalkFirstPageOutcomes(t *testing.T) {
	t.Run("no results", func(t *testing.T) {
		env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteHTML(w, testutil.ResultsPage())
		})
		walk := env.walker.Start("nothing")
		require.Empty(t, collectPages(t, walk))
		require.Equal(t, HaltNoResults, walk.Halt())
		require.Len(t, env.site.Requests(), 1)
		require.Empty(t, env.clock.Slept())
	})

	t.Run("search failed", func(t *testing.T) {
		env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})
		walk := env.walker.Start("mouse")
		require.Empty(t, collectPages(t, walk))
		require.Equal(t, HaltSearchFailed, walk.Halt())
		require.Len(t, env.site.Requests(), 1)
	})
}

func TestWalkSearchURL(t *testing.T) {
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, testutil.ResultsPage())
	})
	collectPages(t, env.walker.Start("mouse sem fio"))

	requests := env.site.Requests()
	require.Len(t, requests, 1)
	require.Equal(t, "/search/", requests[0].Path)
	require.Equal(t, "mouse sem fio", requests[0].Query().Get("q"))
}

func TestWalkConsumerStops(t *testing.T) {
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, pageOfListings(pageNumber(r), 1))
	})

	walk := env.walker.Start("mouse")
	count := 0
	for range walk.Pages(context.Background()) {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, HaltStopped, walk.Halt())
	require.Len(t, env.site.Requests(), 2)

	// a walk cannot be restarted
	require.Empty(t, collectPages(t, walk))
	require.Len(t, env.site.Requests(), 2)
}

func TestWalkCanceled(t *testing.T) {
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, pageOfListings(pageNumber(r), 1))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	walk := env.walker.Start("mouse")
	for range walk.Pages(ctx) {
		cancel()
	}
	require.Equal(t, HaltCanceled, walk.Halt())
	require.Len(t, env.site.Requests(), 1)
}

func TestEveryStartFetchesFromPageOne(t *testing.T) {
	env := newWalkerEnv(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteHTML(w, pageOfListings(1, 1))
	})

	for i := 0; i < 2; i++ {
		walk := env.walker.Start("mouse")
		require.Len(t, collectPages(t, walk), 1)
		require.Equal(t, HaltExhausted, walk.Halt())
	}
	require.Equal(t, 2*(1+len(DefaultStrategies())), env.site.RequestCount("/search/"))
}
