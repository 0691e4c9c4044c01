package session

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"maeto-catalog/internal/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const titleWidth = 50

func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func installments(count, amount string) string {
	return strings.TrimSpace(count + " " + amount)
}

func specsCell(specs catalog.Specs, known bool) string {
	if !known {
		return "-"
	}
	return fmt.Sprint(len(specs))
}

// RenderProducts prints the products found by a search.
func RenderProducts(out io.Writer, products []catalog.Product) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"#", "SKU", "Title", "Price", "PIX", "Installments", "Specs"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: titleWidth},
	})
	for i, p := range products {
		known := p.Specs.Status != catalog.SpecsFailed && p.Specs.Status != catalog.SpecsNoURL
		t.AppendRow(table.Row{
			i + 1,
			p.SKU,
			p.Title,
			p.Price,
			p.PriceAlt,
			installments(p.InstallmentCount, p.InstallmentAmount),
			specsCell(p.Specs.Specs, known),
		})
	}
	t.Render()
}

// RenderRecords prints stored products.
func RenderRecords(out io.Writer, records []catalog.Record) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"SKU", "Title", "Price", "PIX", "Installments", "Search", "First seen", "Updated"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: titleWidth},
	})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.SKU,
			r.Title,
			r.Price,
			r.PriceAlt,
			installments(r.InstallmentCount, r.InstallmentAmount),
			r.SearchTerm,
			r.FirstSeenAt.Format(time.DateTime),
			r.LastUpdatedAt.Format(time.DateTime),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d products", len(records))})
	t.Render()
}

// RenderRecord prints a single stored product followed by its specs.
func RenderRecord(out io.Writer, r catalog.Record) {
	t := NewTable(out)
	t.AppendRows([]table.Row{
		{"SKU", r.SKU},
		{"Title", r.Title},
		{"Price", r.Price},
		{"PIX", r.PriceAlt},
		{"Installments", installments(r.InstallmentCount, r.InstallmentAmount)},
		{"Search", r.SearchTerm},
		{"First seen", r.FirstSeenAt.Format(time.DateTime)},
		{"Updated", r.LastUpdatedAt.Format(time.DateTime)},
	})
	t.Render()

	if r.Specs == nil {
		fmt.Fprintln(out, "Technical specifications have not been fetched yet.")
		return
	}
	if len(r.Specs) == 0 {
		fmt.Fprintln(out, "This product has no technical specifications.")
		return
	}

	keys := make([]string, 0, len(r.Specs))
	for k := range r.Specs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	specs := NewTable(out)
	specs.AppendHeader(table.Row{"Specification", "Value"})
	for _, k := range keys {
		specs.AppendRow(table.Row{k, r.Specs[k]})
	}
	specs.Render()
}
