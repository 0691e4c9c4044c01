package htmlutil

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizeText trims the text and collapses inner whitespace into single
// spaces, non-ASCII spaces like U+00A0 included.
func NormalizeText(text string) string {
	text = removeNonPrintable(text)
	return strings.Join(strings.Fields(text), " ")
}

// FirstText returns the normalized text of the first node in the selection,
// or "" if the selection is empty.
func FirstText(sel *goquery.Selection) string {
	if sel == nil || len(sel.Nodes) == 0 {
		return ""
	}
	return NormalizeText(GetText(sel.Nodes[0]))
}

// ResolveLink resolves `href` against `base` and normalizes the result,
// absolute links are kept as they are (apart from normalization).
func ResolveLink(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported link scheme '%s'", resolved.Scheme)
	}
	return purell.NormalizeURL(resolved, purell.FlagsSafe), nil
}
