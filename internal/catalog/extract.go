package catalog

import (
	"strings"

	"maeto-catalog/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ListingSelector matches one product listing on a search results page.
const ListingSelector = ".item"

type listingField struct {
	selector string
	set      func(p *Product, value string)
}

// order matters only for readability, every field is looked up independently.
var listingFields = []listingField{
	{
		selector: ".product-list-name *",
		set:      func(p *Product, v string) { p.Title = v },
	},
	{
		selector: ".cash-payment-container .to-price",
		set:      func(p *Product, v string) { p.PriceAlt = v },
	},
	{
		selector: ".to-price",
		set:      func(p *Product, v string) { p.Price = v },
	},
	{
		selector: ".installments-amount",
		set:      func(p *Product, v string) { p.InstallmentAmount = v },
	},
	{
		selector: ".installments-number",
		set:      func(p *Product, v string) { p.InstallmentCount = v },
	},
}

// lookup runs fn, turning a panic into "".
func lookup(fn func() string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	return fn()
}

// Extract reads the listing fields out of a single listing node, any field
// that cannot be found is left empty.
func Extract(node *goquery.Selection) Product {
	var p Product
	if node == nil {
		return p
	}

	for _, field := range listingFields {
		field.set(&p, lookup(func() string {
			return htmlutil.FirstText(node.Find(field.selector))
		}))
	}
	p.DetailURL = lookup(func() string {
		href, _ := node.Find("a[href]").First().Attr("href")
		return strings.TrimSpace(href)
	})
	p.SKU = Identifier(node)

	return p
}

// Identifier returns the sku of a listing node: the data-sku of the first
// `.product` inside it, or the node's own data-sku.
func Identifier(node *goquery.Selection) string {
	if node == nil {
		return ""
	}
	return lookup(func() string {
		sku, ok := node.Find(".product[data-sku]").First().Attr("data-sku")
		if !ok {
			sku, _ = node.Attr("data-sku")
		}
		return strings.TrimSpace(sku)
	})
}
