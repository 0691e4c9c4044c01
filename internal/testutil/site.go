package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Listing describes one product on a fake results page, empty fields are
// left out of the markup.
type Listing struct {
	SKU               string
	Title             string
	Price             string
	PriceAlt          string
	InstallmentAmount string
	InstallmentCount  string
	Href              string
}

func (l Listing) render(out *strings.Builder) {
	out.WriteString(`<div class="item">`)
	if l.SKU != "" {
		fmt.Fprintf(out, `<div class="product" data-sku="%s">`, html.EscapeString(l.SKU))
	} else {
		out.WriteString(`<div class="product">`)
	}
	if l.Href != "" {
		fmt.Fprintf(out, `<a href="%s">`, html.EscapeString(l.Href))
	}
	if l.Title != "" {
		fmt.Fprintf(out, `<div class="product-list-name"><h2> %s </h2></div>`, html.EscapeString(l.Title))
	}
	if l.Href != "" {
		out.WriteString(`</a>`)
	}
	if l.Price != "" {
		fmt.Fprintf(out, `<div class="price"><span class="to-price">%s</span></div>`, html.EscapeString(l.Price))
	}
	if l.PriceAlt != "" {
		fmt.Fprintf(out, `<div class="cash-payment-container"><span class="to-price">%s</span></div>`, html.EscapeString(l.PriceAlt))
	}
	if l.InstallmentCount != "" || l.InstallmentAmount != "" {
		out.WriteString(`<div class="installments">`)
		if l.InstallmentCount != "" {
			fmt.Fprintf(out, `<span class="installments-number">%s</span>`, html.EscapeString(l.InstallmentCount))
		}
		if l.InstallmentAmount != "" {
			fmt.Fprintf(out, ` de <span class="installments-amount">%s</span>`, html.EscapeString(l.InstallmentAmount))
		}
		out.WriteString(`</div>`)
	}
	out.WriteString(`</div></div>`)
}

// ResultsPage renders a search results page with the given listings.
func ResultsPage(listings ...Listing) string {
	var out strings.Builder
	out.WriteString(`<html><head><meta charset="utf-8"></head><body><div class="products">`)
	for _, l := range listings {
		l.render(&out)
	}
	out.WriteString(`</div></body></html>`)
	return out.String()
}

// DetailPage renders a product page, a nil `rows` leaves out the specs table.
func DetailPage(rows [][]string) string {
	var out strings.Builder
	out.WriteString(`<html><head><meta charset="utf-8"></head><body><h1>product</h1>`)
	if rows != nil {
		out.WriteString(`<table id="product-description-table-attributes"><tbody>`)
		for _, row := range rows {
			out.WriteString(`<tr>`)
			for _, cell := range row {
				fmt.Fprintf(&out, `<td>%s</td>`, html.EscapeString(cell))
			}
			out.WriteString(`</tr>`)
		}
		out.WriteString(`</tbody></table>`)
	}
	out.WriteString(`</body></html>`)
	return out.String()
}

// Site is a fake store front that records every request it gets.
type Site struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*url.URL
}

func NewSite(t testing.TB, handler http.HandlerFunc) *Site {
	site := &Site{}
	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.requests = append(site.requests, r.URL)
		site.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(site.Close)
	return site
}

// Requests returns the url of every request received, in order.
func (s *Site) Requests() []*url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*url.URL(nil), s.requests...)
}

// RequestCount returns the number of requests received for `path`.
func (s *Site) RequestCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, u := range s.requests {
		if u.Path == path {
			count++
		}
	}
	return count
}

// ParseURL parses the server url joined with `path`.
func (s *Site) ParseURL(t testing.TB, path string) *url.URL {
	u, err := url.Parse(s.Server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func WriteHTML(w http.ResponseWriter, body string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	fmt.Fprint(w, body)
}
