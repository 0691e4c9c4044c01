package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "  Mouse   Gamer\n\t RGB ", expected: "Mouse Gamer RGB"},
		{input: "R$ 199,90", expected: "R$ 199,90"},
		{input: "12x\u200b", expected: "12x"},
		{input: "R$\u00a0199,90", expected: "R$ 199,90"},
		{input: "\u00a0Cor:\u00a0\u00a0 Preto\u2009", expected: "Cor: Preto"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, NormalizeText(row.input))
	}
}

func TestFirstText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><p class="a"> one <b>two</b> </p><p class="a">three</p></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "one two", FirstText(doc.Find("p.a")))
	require.Equal(t, "", FirstText(doc.Find("p.missing")))
	require.Equal(t, "", FirstText(nil))
}

func TestResolveLink(t *testing.T) {
	base, err := url.Parse("https://www.lojamaeto.com")
	if err != nil {
		t.Fatal(err)
	}

	table := []struct {
		href     string
		expected string
		fails    bool
	}{
		{href: "https://www.lojamaeto.com/mouse-x/p", expected: "https://www.lojamaeto.com/mouse-x/p"},
		{href: "/mouse-x/p", expected: "https://www.lojamaeto.com/mouse-x/p"},
		{href: "mouse-x/p", expected: "https://www.lojamaeto.com/mouse-x/p"},
		{href: "  /mouse-x/p?sku=1 ", expected: "https://www.lojamaeto.com/mouse-x/p?sku=1"},
		{href: "https://WWW.LojaMaeto.com/a", expected: "https://www.lojamaeto.com/a"},
		{href: "", fails: true},
		{href: "javascript:void(0)", fails: true},
	}
	for _, row := range table {
		resolved, err := ResolveLink(base, row.href)
		if row.fails {
			require.Error(t, err, row.href)
			continue
		}
		require.NoError(t, err, row.href)
		require.Equal(t, row.expected, resolved, row.href)
	}
}
