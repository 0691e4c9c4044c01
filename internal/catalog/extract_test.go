package catalog

import (
	"strings"
	"testing"

	"maeto-catalog/internal/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

func listingNodes(t testing.TB, page string) []*goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	var nodes []*goquery.Selection
	doc.Find(ListingSelector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes
}

func TestExtract(t *testing.T) {
	table := []struct {
		name     string
		page     string
		expected Product
	}{
		{
			name: "full listing",
			page: testutil.ResultsPage(testutil.Listing{
				SKU:               "A1",
				Title:             "Mouse  Gamer\n RGB",
				Price:             "R$ 120,00",
				PriceAlt:          "R$ 108,00",
				InstallmentAmount: "R$ 12,00",
				InstallmentCount:  "10x",
				Href:              "/mouse-gamer-rgb/p",
			}),
			expected: Product{
				SKU:               "A1",
				Title:             "Mouse Gamer RGB",
				Price:             "R$ 120,00",
				PriceAlt:          "R$ 108,00",
				InstallmentAmount: "R$ 12,00",
				InstallmentCount:  "10x",
				DetailURL:         "/mouse-gamer-rgb/p",
			},
		},
		{
			name:     "every selector misses",
			page:     `<div class="item"><span>nothing here</span></div>`,
			expected: Product{},
		},
		{
			name: "sku on the listing node itself",
			page: `<div class="item" data-sku=" B7 "><div class="product-list-name"><a>Teclado</a></div></div>`,
			expected: Product{
				SKU:   "B7",
				Title: "Teclado",
			},
		},
		{
			name: "cash price without a main price",
			page: `<div class="item"><div class="product" data-sku="C1">` +
				`<div class="cash-payment-container"><b class="to-price">R$ 9,00</b></div></div></div>`,
			expected: Product{
				SKU:      "C1",
				Price:    "R$ 9,00",
				PriceAlt: "R$ 9,00",
			},
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			nodes := listingNodes(t, row.page)
			if len(nodes) != 1 {
				t.Fatalf("expected a single listing, got %d", len(nodes))
			}
			diff := cmp.Diff(row.expected, Extract(nodes[0]))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExtractNilNode(t *testing.T) {
	diff := cmp.Diff(Product{}, Extract(nil))
	if diff != "" {
		t.Fatal(diff)
	}
	if Identifier(nil) != "" {
		t.Fatal("expected no identifier for a nil node")
	}
}

func TestLookupRecovers(t *testing.T) {
	out := lookup(func() string {
		panic("selector blew up")
	})
	if out != "" {
		t.Fatalf("expected empty string, got %q", out)
	}
}
