package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"maeto-catalog/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	specs map[string]Specs
	err   error
	calls int
}

func (f *fakeLookup) Specs(ctx context.Context, sku string) (Specs, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	specs, ok := f.specs[sku]
	return specs, ok, nil
}

type enricherEnv struct {
	site     *testutil.Site
	clock    *testutil.Clock
	lookup   *fakeLookup
	enricher *Enricher
}

func newEnricherEnv(t *testing.T, lookup *fakeLookup) enricherEnv {
	site := testutil.NewSite(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mouse-a1/p":
			testutil.WriteHTML(w, testutil.DetailPage([][]string{
				{"Marca", " Maeto "},
				{"Conexão", "USB", "ignored cell"},
				{"", "no key"},
				{"Sem valor", ""},
				{"just one cell"},
				{"Cor", "Preto & Azul"},
				{"Garantia\u00a0", "12\u00a0meses"},
			}))
		case "/mouse-a2/p":
			testutil.WriteHTML(w, testutil.DetailPage(nil))
		case "/mouse-empty/p":
			testutil.WriteHTML(w, testutil.DetailPage([][]string{}))
		default:
			http.NotFound(w, r)
		}
	})
	clock := testutil.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	tel := testutil.NewTelemetry(t)
	enricher := NewEnricher(
		NewHTTPFetcher(HTTPFetcherOptions{}, tel),
		lookup,
		clock,
		tel,
		EnricherOptions{BaseURL: site.ParseURL(t, "")},
	)
	return enricherEnv{site: site, clock: clock, lookup: lookup, enricher: enricher}
}

func TestNewEnricherWithoutBaseURL(t *testing.T) {
	tel := testutil.NewTelemetry(t)
	require.PanicsWithValue(t, "enricher needs a base url", func() {
		NewEnricher(NewHTTPFetcher(HTTPFetcherOptions{}, tel), &fakeLookup{}, testutil.NewClock(t0), tel, EnricherOptions{})
	})
}

func TestEnrichParsesSpecsTable(t *testing.T) {
	env := newEnricherEnv(t, &fakeLookup{})

	result := env.enricher.Enrich(context.Background(), "A1", "/mouse-a1/p")
	require.Equal(t, SpecsFetched, result.Status)
	diff := cmp.Diff(Specs{
		"Marca":    "Maeto",
		"Conexão":  "USB",
		"Cor":      "Preto & Azul",
		"Garantia": "12 meses",
	}, result.Specs)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []time.Duration{DefaultDetailDelay}, env.clock.Slept())
	require.Equal(t, 1, env.lookup.calls)
}

func TestEnrichReusesStoredSpecs(t *testing.T) {
	stored := Specs{"Marca": "Maeto"}
	env := newEnricherEnv(t, &fakeLookup{specs: map[string]Specs{"A1": stored}})

	result := env.enricher.Enrich(context.Background(), "A1", "/mouse-a1/p")
	require.Equal(t, SpecsReused, result.Status)
	require.Equal(t, stored, result.Specs)
	require.Empty(t, env.site.Requests())
	require.Empty(t, env.clock.Slept())
}

func TestEnrichOutcomes(t *testing.T) {
	table := []struct {
		name     string
		sku      string
		href     string
		expected SpecStatus
		requests int
	}{
		{name: "no table", sku: "A2", href: "/mouse-a2/p", expected: SpecsMissing, requests: 1},
		{name: "empty table", sku: "A3", href: "/mouse-empty/p", expected: SpecsFetched, requests: 1},
		{name: "not found", sku: "A4", href: "/gone/p", expected: SpecsFailed, requests: 1},
		{name: "no link", sku: "A5", href: "  ", expected: SpecsNoURL, requests: 0},
		{name: "unusable link", sku: "A6", href: "javascript:void(0)", expected: SpecsNoURL, requests: 0},
		{name: "relative link without slash", sku: "", href: "mouse-a2/p", expected: SpecsMissing, requests: 1},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			env := newEnricherEnv(t, &fakeLookup{})
			result := env.enricher.Enrich(context.Background(), row.sku, row.href)
			require.Equal(t, row.expected, result.Status)
			require.NotNil(t, result.Specs)
			require.Empty(t, result.Specs)
			require.Len(t, env.site.Requests(), row.requests)
		})
	}
}

func TestEnrichSkipsLookupWithoutSku(t *testing.T) {
	env := newEnricherEnv(t, &fakeLookup{})
	env.enricher.Enrich(context.Background(), "", "/mouse-a1/p")
	require.Equal(t, 0, env.lookup.calls)
}

func TestEnrichLookupFailureFetches(t *testing.T) {
	env := newEnricherEnv(t, &fakeLookup{err: errors.New("database is locked")})

	result := env.enricher.Enrich(context.Background(), "A1", "/mouse-a1/p")
	require.Equal(t, SpecsFetched, result.Status)
	require.Len(t, env.site.Requests(), 1)
}

func TestSpecsEncoding(t *testing.T) {
	require.Equal(t, "{}", Specs(nil).Encode())
	require.Equal(t, "{}", Specs{}.Encode())
	require.Equal(
		t,
		`{"Conexão":"USB","Cor":"Preto & Azul","Marca":"Maeto"}`,
		Specs{"Marca": "Maeto", "Cor": "Preto & Azul", "Conexão": "USB"}.Encode(),
	)

	decoded, err := DecodeSpecs(`{"Cor":"Preto & Azul"}`)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Specs{"Cor": "Preto & Azul"}, decoded)

	_, err = DecodeSpecs(`{"Cor":`)
	require.Error(t, err)
}

func TestSpecResultStored(t *testing.T) {
	specs := Specs{"Marca": "Maeto"}
	require.Equal(t, `{"Marca":"Maeto"}`, SpecResult{Status: SpecsFetched, Specs: specs}.stored().String)
	require.Equal(t, `{"Marca":"Maeto"}`, SpecResult{Status: SpecsReused, Specs: specs}.stored().String)
	require.Equal(t, "{}", SpecResult{Status: SpecsMissing, Specs: Specs{}}.stored().String)
	require.True(t, SpecResult{Status: SpecsMissing}.stored().Valid)
	require.False(t, SpecResult{Status: SpecsFailed, Specs: Specs{}}.stored().Valid)
	require.False(t, SpecResult{Status: SpecsNoURL, Specs: Specs{}}.stored().Valid)
}
